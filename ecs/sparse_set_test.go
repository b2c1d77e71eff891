package ecs

import "testing"

func toSet(ents []Entity) map[Entity]struct{} {
	m := make(map[Entity]struct{}, len(ents))
	for _, e := range ents {
		m[e] = struct{}{}
	}
	return m
}

func TestSparseSetOperations(t *testing.T) {
	var store Store
	e1 := store.Create()
	e2 := store.Create()
	e3 := store.Create()

	tests := []struct {
		name  string
		run   func(s *SparseSet[string])
		check func(t *testing.T, s *SparseSet[string])
	}{
		{
			name: "set_and_get",
			run:  func(s *SparseSet[string]) { s.Set(e1, "a") },
			check: func(t *testing.T, s *SparseSet[string]) {
				v, ok := s.Get(e1)
				if !ok || v != "a" {
					t.Fatalf("expected a, got %q ok=%v", v, ok)
				}
			},
		},
		{
			name: "overwrite",
			run: func(s *SparseSet[string]) {
				s.Set(e1, "a")
				s.Set(e1, "b")
			},
			check: func(t *testing.T, s *SparseSet[string]) {
				if v, _ := s.Get(e1); v != "b" || s.Len() != 1 {
					t.Fatalf("expected single value b, got %q len=%d", v, s.Len())
				}
			},
		},
		{
			name: "remove_middle_keeps_others",
			run: func(s *SparseSet[string]) {
				s.Set(e1, "a")
				s.Set(e2, "b")
				s.Set(e3, "c")
				s.Remove(e2)
			},
			check: func(t *testing.T, s *SparseSet[string]) {
				set := toSet(s.Entities())
				if _, ok := set[e2]; ok {
					t.Fatalf("e2 should be removed")
				}
				if v, ok := s.Get(e3); !ok || v != "c" {
					t.Fatalf("e3 lost after swap remove: %q ok=%v", v, ok)
				}
				if v, ok := s.Get(e1); !ok || v != "a" {
					t.Fatalf("e1 lost after swap remove: %q ok=%v", v, ok)
				}
			},
		},
		{
			name: "remove_missing",
			run:  func(s *SparseSet[string]) {},
			check: func(t *testing.T, s *SparseSet[string]) {
				if s.Remove(e1) {
					t.Fatalf("removing an absent entity should report false")
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := &SparseSet[string]{}
			tc.run(s)
			tc.check(t, s)
		})
	}
}

func TestSparseSetIgnoresStaleGeneration(t *testing.T) {
	var store Store
	old := store.Create()
	s := &SparseSet[int]{}
	s.Set(old, 1)
	s.Remove(old)
	store.Destroy(old)

	fresh := store.Create()
	s.Set(fresh, 2)
	if s.Has(old) {
		t.Fatalf("stale handle must not resolve")
	}
	if v, ok := s.Get(fresh); !ok || v != 2 {
		t.Fatalf("expected 2 for fresh handle, got %v ok=%v", v, ok)
	}
}
