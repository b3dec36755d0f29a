package graph

// Store is an append-only set of triples indexed by subject. It grows
// monotonically for the lifetime of one run and is never persisted.
//
// A subject that has at least one triple is considered resolved; the
// Navigator will not fetch it again. The store itself performs no network
// access and is not safe for concurrent mutation.
type Store struct {
	bySubject map[Identifier][]Triple
	size      int
}

// NewStore creates an empty triple store.
func NewStore() *Store {
	return &Store{bySubject: make(map[Identifier][]Triple)}
}

// Add appends one triple to the store. Duplicate triples are kept; callers
// only ever enumerate objects, where duplicates are harmless.
func (s *Store) Add(t Triple) {
	s.bySubject[t.Subject] = append(s.bySubject[t.Subject], t)
	s.size++
}

// AddAll appends a batch of triples and returns how many were added.
func (s *Store) AddAll(triples []Triple) int {
	for _, t := range triples {
		s.Add(t)
	}
	return len(triples)
}

// HasSubject reports whether any triple has id as its subject.
func (s *Store) HasSubject(id Identifier) bool {
	return len(s.bySubject[id]) > 0
}

// Objects returns the objects of all (id, predicate) triples, in insertion
// order. The result is empty when the subject is unknown.
func (s *Store) Objects(id, predicate Identifier) []Object {
	var out []Object
	for _, t := range s.bySubject[id] {
		if t.Predicate == predicate {
			out = append(out, t.Object)
		}
	}
	return out
}

// Len returns the total number of triples in the store.
func (s *Store) Len() int { return s.size }
