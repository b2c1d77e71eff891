package ecs

// Store tracks entity generations and free ids. Destroyed ids are recycled
// with a bumped generation so stale handles never alias a new entity.
type Store struct {
	gen   []generation
	free  []entityID
	alive int
}

func (s *Store) Create() Entity {
	if s == nil {
		return Nil
	}
	var id entityID
	if len(s.free) > 0 {
		id = s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]
	} else {
		s.gen = append(s.gen, 1)
		id = entityID(len(s.gen))
	}
	s.alive++
	return makeEntity(id, s.gen[id-1])
}

// Destroy retires e. It reports false when e was already dead.
func (s *Store) Destroy(e Entity) bool {
	if !s.IsAlive(e) {
		return false
	}
	idx := e.id() - 1
	s.gen[idx]++
	s.free = append(s.free, e.id())
	s.alive--
	return true
}

func (s *Store) IsAlive(e Entity) bool {
	if s == nil || !e.Valid() || int(e.id()) > len(s.gen) {
		return false
	}
	return s.gen[e.id()-1] == e.generation()
}

// Len returns the number of live entities.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return s.alive
}
