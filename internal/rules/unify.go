package rules

import (
	"github.com/automenta/senars/internal/truth"
	"github.com/automenta/senars/internal/types"
)

// Substitution maps a variable term's canonical name to the term it is
// bound to.
type Substitution map[string]*types.Term

// Unify attempts first-order unification of a and b, returning the most
// general substitution that makes them equal, or (nil, false) if no such
// substitution exists. Occur-check prevents a variable from binding to a
// term that contains it (spec.md §4.H: "first-order unification with
// occur-check when variables appear in terms").
func Unify(a, b *types.Term) (Substitution, bool) {
	sub := Substitution{}
	if unify(a, b, sub) {
		return sub, true
	}
	return nil, false
}

func unify(a, b *types.Term, sub Substitution) bool {
	a = resolve(a, sub)
	b = resolve(b, sub)

	if a.Equals(b) {
		return true
	}
	if a.IsVariable() {
		return bind(a, b, sub)
	}
	if b.IsVariable() {
		return bind(b, a, sub)
	}
	if a.Kind() != b.Kind() {
		return false
	}
	if a.Kind() == types.Atomic {
		return false // distinct atoms, neither a variable
	}
	if a.Kind() == types.Compound && a.Operator() != b.Operator() {
		return false
	}
	if a.Kind() == types.Statement && a.Copula() != b.Copula() {
		return false
	}
	ac, bc := a.Components(), b.Components()
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if !unify(ac[i], bc[i], sub) {
			return false
		}
	}
	return true
}

// bind records variable v := term in sub, refusing if term contains v
// (occur-check) or any variable already bound transitively to v.
func bind(v, term *types.Term, sub Substitution) bool {
	if occurs(v, term, sub) {
		return false
	}
	sub[v.String()] = term
	return true
}

// occurs reports whether v appears within term, following existing
// bindings.
func occurs(v, term *types.Term, sub Substitution) bool {
	term = resolve(term, sub)
	if term.Equals(v) {
		return true
	}
	for _, c := range term.Components() {
		if occurs(v, c, sub) {
			return true
		}
	}
	return false
}

// resolve follows t's binding chain in sub, if t is a bound variable.
func resolve(t *types.Term, sub Substitution) *types.Term {
	for t.IsVariable() {
		bound, ok := sub[t.String()]
		if !ok {
			return t
		}
		t = bound
	}
	return t
}

// Substitute rebuilds term with every variable replaced by its binding in
// sub (unbound variables are left as-is), interning the result through f.
func Substitute(f *types.TermFactory, term *types.Term, sub Substitution) (*types.Term, error) {
	resolved := resolve(term, sub)
	if resolved.IsVariable() {
		return resolved, nil
	}
	switch resolved.Kind() {
	case types.Atomic:
		return resolved, nil
	case types.Compound:
		components := resolved.Components()
		rebuilt := make([]*types.Term, len(components))
		for i, c := range components {
			next, err := Substitute(f, c, sub)
			if err != nil {
				return nil, err
			}
			rebuilt[i] = next
		}
		return f.Compound(resolved.Operator(), rebuilt...)
	case types.Statement:
		components := resolved.Components()
		subject, err := Substitute(f, components[0], sub)
		if err != nil {
			return nil, err
		}
		predicate, err := Substitute(f, components[1], sub)
		if err != nil {
			return nil, err
		}
		return f.Statement(resolved.Copula(), subject, predicate)
	default:
		return resolved, nil
	}
}

// VariableUnificationRule derives a ground belief from a variable-bearing
// statement belief and a ground statement belief that unifies with it:
// <$x-->bird>. + <robin-->bird>. |- <robin-->bird>. with the variable
// resolved to the ground binding. This is the engine's resolution step for
// first-order variables (spec.md §4.H).
type VariableUnificationRule struct{}

func (VariableUnificationRule) Name() string { return "variable-unification" }
func (VariableUnificationRule) Copulas() []types.Copula {
	return []types.Copula{types.Inheritance, types.Similarity, types.Implication, types.Equivalence}
}
func (VariableUnificationRule) Operators() []types.Operator { return nil }

func (VariableUnificationRule) Apply(primary, secondary *types.Task, ctx Context) (*types.Task, bool) {
	if secondary == nil || primary.Truth == nil || secondary.Truth == nil {
		return nil, false
	}
	variableTask, groundTask := primary, secondary
	if !containsVariable(primary.Term) {
		variableTask, groundTask = secondary, primary
	}
	if !containsVariable(variableTask.Term) || containsVariable(groundTask.Term) {
		return nil, false
	}

	sub, ok := Unify(variableTask.Term, groundTask.Term)
	if !ok {
		return nil, false
	}
	concl, err := Substitute(ctx.Factory, variableTask.Term, sub)
	if err != nil {
		return nil, false
	}
	if !concl.Equals(groundTask.Term) {
		return nil, false
	}
	tv := truth.Revision(*variableTask.Truth, *groundTask.Truth)
	return combine(concl, variableTask, groundTask, tv, ctx)
}

func containsVariable(t *types.Term) bool {
	if t.IsVariable() {
		return true
	}
	for _, c := range t.Components() {
		if containsVariable(c) {
			return true
		}
	}
	return false
}
