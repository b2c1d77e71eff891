package ecs

// SparseSet is a cache-friendly storage for values keyed by Entity.
// Lookups compare the full handle, so a value stored for an older
// generation of a slot is never returned for the newer one.
type SparseSet[T any] struct {
	denseEntities []Entity
	denseValues   []T
	sparse        []int
}

// Has returns true if the entity exists in the set.
func (s *SparseSet[T]) Has(e Entity) bool {
	if s == nil || !e.Valid() || int(e.id())-1 >= len(s.sparse) {
		return false
	}
	idx := s.sparse[e.id()-1]
	return idx >= 0 && idx < len(s.denseEntities) && s.denseEntities[idx] == e
}

// Get returns the value for e.
func (s *SparseSet[T]) Get(e Entity) (T, bool) {
	var zero T
	if !s.Has(e) {
		return zero, false
	}
	return s.denseValues[s.sparse[e.id()-1]], true
}

// Set inserts or updates the value for e.
func (s *SparseSet[T]) Set(e Entity, v T) {
	if s == nil || !e.Valid() {
		return
	}
	id := int(e.id())
	for id-1 >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	idx := s.sparse[id-1]
	if idx >= 0 && idx < len(s.denseEntities) && s.denseEntities[idx].id() == e.id() {
		// same slot, possibly a newer generation: overwrite in place
		s.denseEntities[idx] = e
		s.denseValues[idx] = v
		return
	}
	s.denseEntities = append(s.denseEntities, e)
	s.denseValues = append(s.denseValues, v)
	s.sparse[id-1] = len(s.denseEntities) - 1
}

// Remove deletes the value for e if present.
func (s *SparseSet[T]) Remove(e Entity) bool {
	if !s.Has(e) {
		return false
	}
	idx := s.sparse[e.id()-1]
	last := len(s.denseEntities) - 1
	lastEntity := s.denseEntities[last]

	s.denseEntities[idx] = lastEntity
	s.denseValues[idx] = s.denseValues[last]
	s.sparse[lastEntity.id()-1] = idx

	var zero T
	s.denseValues[last] = zero
	s.denseEntities = s.denseEntities[:last]
	s.denseValues = s.denseValues[:last]
	s.sparse[e.id()-1] = -1
	return true
}

// Len returns the number of stored values.
func (s *SparseSet[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.denseEntities)
}

// Entities returns the dense entity list. The slice is owned by the set.
func (s *SparseSet[T]) Entities() []Entity {
	if s == nil {
		return nil
	}
	return s.denseEntities
}

// Values returns the dense value list. The slice is owned by the set.
func (s *SparseSet[T]) Values() []T {
	if s == nil {
		return nil
	}
	return s.denseValues
}
