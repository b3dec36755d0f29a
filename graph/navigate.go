package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c360studio/semexhibit/vocabulary"
)

// Resolver retrieves the triples describing one identifier from the remote
// graph. Implementations own throttling and retries; the Navigator only
// decides when a fetch is needed.
type Resolver interface {
	Fetch(ctx context.Context, id Identifier) ([]Triple, error)
}

// Navigator layers on-demand resolution over a Store: ensure a subject is
// present, else fetch it, and follow fixed predicate paths through the
// lazily growing graph.
type Navigator struct {
	store    *Store
	resolver Resolver
	logger   *slog.Logger
}

// NewNavigator creates a navigator over store using resolver for on-demand
// fetches.
func NewNavigator(store *Store, resolver Resolver, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Navigator{store: store, resolver: resolver, logger: logger}
}

// Store returns the underlying triple store.
func (n *Navigator) Store() *Store { return n.store }

// Ensure makes sure the graph holds triples with id as subject, fetching
// them if absent. It is idempotent: an already-resolved identifier is a
// no-op and triggers no fetch.
func (n *Navigator) Ensure(ctx context.Context, id Identifier) error {
	if n.store.HasSubject(id) {
		return nil
	}
	triples, err := n.resolver.Fetch(ctx, id)
	if err != nil {
		return fmt.Errorf("resolve <%s>: %w", id, err)
	}
	added := n.store.AddAll(triples)
	n.logger.Debug("resolved subject", "id", string(id), "triples", added)
	return nil
}

// Objects returns the objects already recorded for (id, predicate). It
// never triggers a fetch.
func (n *Navigator) Objects(id, predicate Identifier) []Object {
	return n.store.Objects(id, predicate)
}

// IsType reports whether the graph holds an rdf:type assertion typing id as
// rdfType. It does not fetch; the typing triple, if any, is expected from a
// prior Ensure.
func (n *Navigator) IsType(id, rdfType Identifier) bool {
	for _, o := range n.store.Objects(id, Identifier(vocabulary.RDFType)) {
		if oid, ok := o.(Identifier); ok && oid == rdfType {
			return true
		}
	}
	return false
}

// frame is one pending hop of a Drill traversal.
type frame struct {
	id    Identifier
	depth int
}

// Drill follows a sequence of predicates from id and returns the terminal
// identifiers, depth-first and order-preserving. Each hop ensures the
// current subject is resolved and fans out over every identifier object of
// the hop's predicate; literal objects cannot be traversed and are skipped.
// An empty path yields id itself.
//
// No cycle detection is performed: a cycle along the path predicates would
// not terminate. The paths used are short, fixed, and configuration-owned,
// never derived from user input, so this is accepted.
func (n *Navigator) Drill(ctx context.Context, id Identifier, path []Identifier) ([]Identifier, error) {
	var out []Identifier
	stack := []frame{{id: id, depth: 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth == len(path) {
			out = append(out, f.id)
			continue
		}
		if err := n.Ensure(ctx, f.id); err != nil {
			return nil, err
		}
		objs := n.store.Objects(f.id, path[f.depth])
		// Pushed in reverse so the stack pops in graph order.
		for i := len(objs) - 1; i >= 0; i-- {
			if oid, ok := objs[i].(Identifier); ok {
				stack = append(stack, frame{id: oid, depth: f.depth + 1})
			}
		}
	}
	return out, nil
}
