package termlink

import "testing"

import "github.com/automenta/senars/internal/types"

func TestAddTerm_LinksComponents(t *testing.T) {
	f := types.NewTermFactory()
	a := f.Atomic("a")
	b := f.Atomic("b")
	compound, err := f.Compound(types.OpProduct, a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g := New()
	if err := g.AddTerm(compound); err != nil {
		t.Fatalf("AddTerm failed: %v", err)
	}

	if !g.Contains(compound) || !g.Contains(a) || !g.Contains(b) {
		t.Fatal("expected compound and both components to be present")
	}

	neighbors, err := g.Neighbors(compound)
	if err != nil {
		t.Fatalf("Neighbors failed: %v", err)
	}
	if len(neighbors) != 2 {
		t.Fatalf("Neighbors(compound) = %v, want 2 entries", neighbors)
	}
}

func TestAddTerm_LinksStatementSubjectPredicate(t *testing.T) {
	f := types.NewTermFactory()
	bird := f.Atomic("bird")
	animal := f.Atomic("animal")
	statement, err := f.Statement(types.Inheritance, bird, animal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g := New()
	if err := g.AddTerm(statement); err != nil {
		t.Fatalf("AddTerm failed: %v", err)
	}

	ok, err := g.PathExists(statement, bird)
	if err != nil {
		t.Fatalf("PathExists failed: %v", err)
	}
	if !ok {
		t.Fatal("expected a structural path from the statement to its subject")
	}
}

func TestAddTerm_IsIdempotent(t *testing.T) {
	f := types.NewTermFactory()
	a := f.Atomic("a")

	g := New()
	if err := g.AddTerm(a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.AddTerm(a); err != nil {
		t.Fatalf("second AddTerm should be a no-op, got error: %v", err)
	}
	if g.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", g.Size())
	}
}

func TestRemoveTerm(t *testing.T) {
	f := types.NewTermFactory()
	a := f.Atomic("a")

	g := New()
	g.AddTerm(a)
	if err := g.RemoveTerm(a); err != nil {
		t.Fatalf("RemoveTerm failed: %v", err)
	}
	if g.Contains(a) {
		t.Fatal("expected term to be gone after RemoveTerm")
	}
}

func TestPathExists_NoPathBetweenUnrelatedTerms(t *testing.T) {
	f := types.NewTermFactory()
	a := f.Atomic("a")
	b := f.Atomic("b")

	g := New()
	g.AddTerm(a)
	g.AddTerm(b)

	ok, err := g.PathExists(a, b)
	if err != nil {
		t.Fatalf("PathExists failed: %v", err)
	}
	if ok {
		t.Fatal("expected no path between two unrelated atomic terms")
	}
}
