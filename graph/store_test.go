package graph

import "testing"

func TestStoreAddAndObjects(t *testing.T) {
	s := NewStore()

	if s.HasSubject("http://example.org/a") {
		t.Error("empty store should have no subjects")
	}

	a := Identifier("http://example.org/a")
	name := Identifier("http://example.org/name")
	link := Identifier("http://example.org/link")

	s.Add(Triple{Subject: a, Predicate: name, Object: Literal{Value: "Alpha", Language: "en"}})
	s.Add(Triple{Subject: a, Predicate: link, Object: Identifier("http://example.org/b")})
	s.Add(Triple{Subject: a, Predicate: link, Object: Identifier("http://example.org/c")})

	if !s.HasSubject(a) {
		t.Error("subject a should be present")
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}

	objs := s.Objects(a, link)
	if len(objs) != 2 {
		t.Fatalf("Objects(a, link) returned %d objects, want 2", len(objs))
	}
	if objs[0] != Identifier("http://example.org/b") || objs[1] != Identifier("http://example.org/c") {
		t.Errorf("Objects(a, link) out of order: %v", objs)
	}

	names := s.Objects(a, name)
	if len(names) != 1 {
		t.Fatalf("Objects(a, name) returned %d objects, want 1", len(names))
	}
	lit, ok := names[0].(Literal)
	if !ok {
		t.Fatalf("expected Literal object, got %T", names[0])
	}
	if lit.Value != "Alpha" || lit.Language != "en" {
		t.Errorf("unexpected literal %+v", lit)
	}

	if got := s.Objects("http://example.org/missing", link); len(got) != 0 {
		t.Errorf("unknown subject should yield no objects, got %v", got)
	}
}

func TestLiteralVariants(t *testing.T) {
	tests := []struct {
		name        string
		lit         Literal
		hasLanguage bool
	}{
		{"plain", Literal{Value: "x"}, false},
		{"language tagged", Literal{Value: "x", Language: "en"}, true},
		{"typed", Literal{Value: "1.5", Datatype: "http://www.w3.org/2001/XMLSchema#double"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.lit.HasLanguage() != tt.hasLanguage {
				t.Errorf("HasLanguage() = %v, want %v", tt.lit.HasLanguage(), tt.hasLanguage)
			}
		})
	}
}
