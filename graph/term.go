// Package graph provides an in-memory accumulating triple store and the
// on-demand navigation primitives used to walk a remote linked-data graph.
package graph

// Identifier is an opaque, globally unique resource reference. It keys all
// subject lookups and doubles as the literal value for identifier fields.
type Identifier string

// String returns the identifier's IRI.
func (id Identifier) String() string { return string(id) }

// Object is the object position of a triple: either another Identifier or a
// Literal. The interface is sealed so a switch over both variants is total.
type Object interface {
	object()
}

func (Identifier) object() {}
func (Literal) object()    {}

// Literal is a plain, language-tagged, or datatyped literal value.
type Literal struct {
	Value    string
	Language string     // empty for language-neutral literals
	Datatype Identifier // empty for plain and language-tagged literals
}

// String returns the literal's lexical value.
func (l Literal) String() string { return l.Value }

// HasLanguage reports whether the literal carries a language tag.
func (l Literal) HasLanguage() bool { return l.Language != "" }

// Triple is a subject-predicate-object statement, the atomic unit of the
// graph.
type Triple struct {
	Subject   Identifier
	Predicate Identifier
	Object    Object
}
