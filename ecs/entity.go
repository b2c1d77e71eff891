package ecs

import "strconv"

// Entity is a generational handle: the low 32 bits index the store, the
// high 32 bits hold the generation the index had when the handle was issued.
type Entity uint64

// Nil is the zero handle. It is never issued by a Store.
const Nil Entity = 0

type entityID uint32
type generation uint32

const entityIDBits = 32

func makeEntity(id entityID, gen generation) Entity {
	return Entity(uint64(gen)<<entityIDBits | uint64(id))
}

func (e Entity) id() entityID {
	return entityID(uint32(e))
}

func (e Entity) generation() generation {
	return generation(uint32(uint64(e) >> entityIDBits))
}

// Index returns the slot index of the handle.
func (e Entity) Index() uint32 {
	return uint32(e.id())
}

func (e Entity) String() string {
	return strconv.FormatUint(uint64(e.id()), 10) + "v" + strconv.FormatUint(uint64(e.generation()), 10)
}

func (e Entity) Valid() bool {
	return e.id() > 0
}

// Less orders handles by slot index, then generation.
func Less(a, b Entity) bool {
	if a.id() != b.id() {
		return a.id() < b.id()
	}
	return a.generation() < b.generation()
}
