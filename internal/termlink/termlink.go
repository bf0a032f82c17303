// Package termlink implements the TermLink graph: an in-memory directed
// graph of term nodes connected by structural subterm relationships,
// backing the TermLink premise-formation strategy and the
// backward-chaining subgoal dependency view (SPEC_FULL.md component N).
// It generalizes the teacher's Graph-of-Thoughts controller
// (internal/modes/graph.go, built on dominikbraun/graph) from thought
// vertices to term nodes.
package termlink

import (
	"fmt"

	dgraph "github.com/dominikbraun/graph"

	"github.com/automenta/senars/internal/types"
)

// Link records the weighted structural relationship between two terms:
// a term links to each of its direct components (for a statement, its
// subject and predicate). No edge joins a subject to its predicate.
type Link struct {
	From, To string
	Weight   float64
}

// vertexHash identifies a graph node by its term's canonical string.
func vertexHash(key string) string { return key }

// Graph is the term structural-link graph.
type Graph struct {
	g     dgraph.Graph[string, string]
	terms map[string]*types.Term
}

// New creates an empty directed TermLink graph.
func New() *Graph {
	return &Graph{
		g:     dgraph.New(vertexHash, dgraph.Directed()),
		terms: make(map[string]*types.Term),
	}
}

// AddTerm ensures term has a vertex in the graph and links it to its
// direct components (for statements, subject and predicate), recursing
// into each component. Every edge has weight 1.0, whatever its depth.
func (tl *Graph) AddTerm(term *types.Term) error {
	key := term.String()
	if _, exists := tl.terms[key]; exists {
		return nil
	}
	if err := tl.g.AddVertex(key); err != nil && err != dgraph.ErrVertexAlreadyExists {
		return fmt.Errorf("termlink: add vertex %s: %w", key, err)
	}
	tl.terms[key] = term

	for _, c := range term.Components() {
		if err := tl.AddTerm(c); err != nil {
			return err
		}
		if err := tl.link(key, c.String(), 1.0); err != nil {
			return err
		}
	}
	if term.Kind() == types.Statement {
		if s := term.Subject(); s != nil {
			if err := tl.AddTerm(s); err != nil {
				return err
			}
			if err := tl.link(key, s.String(), 1.0); err != nil {
				return err
			}
		}
		if p := term.Predicate(); p != nil {
			if err := tl.AddTerm(p); err != nil {
				return err
			}
			if err := tl.link(key, p.String(), 1.0); err != nil {
				return err
			}
		}
	}
	return nil
}

func (tl *Graph) link(from, to string, weight float64) error {
	err := tl.g.AddEdge(from, to, dgraph.EdgeWeight(int(weight*1000)))
	if err != nil && err != dgraph.ErrEdgeAlreadyExists {
		return fmt.Errorf("termlink: add edge %s->%s: %w", from, to, err)
	}
	return nil
}

// Neighbors returns the term keys directly linked from term (its
// components, plus subject/predicate for statements).
func (tl *Graph) Neighbors(term *types.Term) ([]string, error) {
	key := term.String()
	adj, err := tl.g.AdjacencyMap()
	if err != nil {
		return nil, fmt.Errorf("termlink: adjacency map: %w", err)
	}
	edges, ok := adj[key]
	if !ok {
		return nil, nil
	}
	out := make([]string, 0, len(edges))
	for target := range edges {
		out = append(out, target)
	}
	return out, nil
}

// Weight returns the structural link weight from "from" directly to "to",
// or (0, false) if no such edge exists — used by the TermLink strategy to
// prioritize candidate pairs by structural proximity.
func (tl *Graph) Weight(from, to *types.Term) (float64, bool) {
	edge, err := tl.g.Edge(from.String(), to.String())
	if err != nil {
		return 0, false
	}
	return float64(edge.Properties.Weight) / 1000, true
}

// Contains reports whether term has a vertex in the graph.
func (tl *Graph) Contains(term *types.Term) bool {
	_, exists := tl.terms[term.String()]
	return exists
}

// RemoveTerm removes term's vertex and all edges touching it. It does
// not remove the component terms themselves, since they may be shared
// by other parents still present in the graph.
func (tl *Graph) RemoveTerm(term *types.Term) error {
	key := term.String()
	if _, exists := tl.terms[key]; !exists {
		return nil
	}
	delete(tl.terms, key)
	if err := tl.g.RemoveVertex(key); err != nil && err != dgraph.ErrVertexNotFound {
		return fmt.Errorf("termlink: remove vertex %s: %w", key, err)
	}
	return nil
}

// Size returns the number of term vertices in the graph.
func (tl *Graph) Size() int { return len(tl.terms) }

// PathExists reports whether a directed structural path connects from
// to to — used by backward chaining to check subgoal reachability.
func (tl *Graph) PathExists(from, to *types.Term) (bool, error) {
	path, err := dgraph.ShortestPath(tl.g, from.String(), to.String())
	if err != nil {
		if err == dgraph.ErrTargetNotReachable {
			return false, nil
		}
		return false, fmt.Errorf("termlink: shortest path: %w", err)
	}
	return len(path) > 0, nil
}
