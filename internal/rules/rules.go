// Package rules implements the engine's rule set: syllogistic
// inference over inheritance/implication statements, belief revision,
// structural decomposition, and variable unification with occur-check
// (spec.md §4.H). The Rule interface and pattern-indexed registry
// generalize the pack's OpenCog-style InferenceRule contract
// (other_examples' cognitive-inference-engine.go.go: GetPriority/
// CanApply/Apply) from atomspace atoms to NARS statement terms.
package rules

import (
	"github.com/automenta/senars/internal/budget"
	"github.com/automenta/senars/internal/stamp"
	"github.com/automenta/senars/internal/truth"
	"github.com/automenta/senars/internal/types"
)

// Context carries what a rule needs beyond its two premises: the term
// factory (for interning conclusion terms), the current logical step,
// and the evidential-base length bound.
type Context struct {
	Factory           *types.TermFactory
	Now               uint64
	MaxEvidenceLength int
	DecayFactor       float64
}

// Rule derives at most one conclusion task from a primary task and an
// optional secondary premise. Rules never mutate their inputs — they
// construct new tasks (spec.md §4.H: "Rules must never mutate input
// tasks; they produce new ones.").
type Rule interface {
	// Name identifies the rule for diagnostics and effectiveness
	// accounting.
	Name() string
	// Copulas lists the primary task's statement copulas this rule
	// dispatches on; empty means "not copula-dispatched".
	Copulas() []types.Copula
	// Operators lists the primary task's compound operators this rule
	// dispatches on; empty means "not operator-dispatched".
	Operators() []types.Operator
	// Apply attempts the rule given a primary task and a candidate
	// secondary task (nil for unary rules). It returns the derived task
	// and true on success, or (nil, false) when the shapes don't match
	// or the evidential bases conflict.
	Apply(primary, secondary *types.Task, ctx Context) (*types.Task, bool)
}

// Registry dispatches candidate rules by the primary task's term shape
// so that a typical cycle inspects O(1) candidates per pair (spec.md
// §4.H: "pattern-indexed on operators").
type Registry struct {
	byCopula   map[types.Copula][]Rule
	byOperator map[types.Operator][]Rule
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byCopula:   make(map[types.Copula][]Rule),
		byOperator: make(map[types.Operator][]Rule),
	}
}

// Register indexes r under every copula/operator it declares.
func (r *Registry) Register(rule Rule) {
	for _, c := range rule.Copulas() {
		r.byCopula[c] = append(r.byCopula[c], rule)
	}
	for _, op := range rule.Operators() {
		r.byOperator[op] = append(r.byOperator[op], rule)
	}
}

// CandidatesFor returns the rules that might apply to a task whose
// term is primaryTerm.
func (r *Registry) CandidatesFor(primaryTerm *types.Term) []Rule {
	switch primaryTerm.Kind() {
	case types.Statement:
		return r.byCopula[primaryTerm.Copula()]
	case types.Compound:
		return r.byOperator[primaryTerm.Operator()]
	default:
		return nil
	}
}

// combine merges two premises' stamps and budgets into a conclusion
// task. It returns (nil, false) if the evidential bases overlap
// (spec.md §3: "two tasks must not be combined ... if their
// evidential bases overlap").
func combine(term *types.Term, a, b *types.Task, conclusionTruth truth.Truth, ctx Context) (*types.Task, bool) {
	mergedStamp, ok := stamp.Merge(a.Stamp, b.Stamp, ctx.Now, ctx.MaxEvidenceLength)
	if !ok {
		return nil, false
	}
	derivedBudget := budget.Derive(a.Budget, b.Budget, conclusionTruth, ctx.DecayFactor)
	task, err := types.NewTask(term, types.BeliefTask, &conclusionTruth, mergedStamp, derivedBudget)
	if err != nil {
		return nil, false
	}
	return task, true
}

// DeductionRule: A-->M, M-->B |- A-->B.
type DeductionRule struct{}

func (DeductionRule) Name() string             { return "deduction" }
func (DeductionRule) Copulas() []types.Copula   { return []types.Copula{types.Inheritance} }
func (DeductionRule) Operators() []types.Operator { return nil }

func (DeductionRule) Apply(primary, secondary *types.Task, ctx Context) (*types.Task, bool) {
	if secondary == nil || primary.Truth == nil || secondary.Truth == nil {
		return nil, false
	}
	p, s := primary.Term, secondary.Term
	if p.Kind() != types.Statement || s.Kind() != types.Statement {
		return nil, false
	}
	if p.Copula() != types.Inheritance || s.Copula() != types.Inheritance {
		return nil, false
	}
	if !p.Predicate().Equals(s.Subject()) {
		return nil, false
	}
	concl, err := ctx.Factory.Statement(types.Inheritance, p.Subject(), s.Predicate())
	if err != nil {
		return nil, false
	}
	tv := truth.Deduction(*primary.Truth, *secondary.Truth)
	return combine(concl, primary, secondary, tv, ctx)
}

// InductionRule: A-->M, B-->M |- A-->B (shared predicate).
type InductionRule struct{}

func (InductionRule) Name() string               { return "induction" }
func (InductionRule) Copulas() []types.Copula     { return []types.Copula{types.Inheritance} }
func (InductionRule) Operators() []types.Operator { return nil }

func (InductionRule) Apply(primary, secondary *types.Task, ctx Context) (*types.Task, bool) {
	if secondary == nil || primary.Truth == nil || secondary.Truth == nil {
		return nil, false
	}
	p, s := primary.Term, secondary.Term
	if p.Kind() != types.Statement || s.Kind() != types.Statement {
		return nil, false
	}
	if p.Copula() != types.Inheritance || s.Copula() != types.Inheritance {
		return nil, false
	}
	if !p.Predicate().Equals(s.Predicate()) || p.Subject().Equals(s.Subject()) {
		return nil, false
	}
	concl, err := ctx.Factory.Statement(types.Inheritance, p.Subject(), s.Subject())
	if err != nil {
		return nil, false
	}
	tv := truth.Induction(*primary.Truth, *secondary.Truth)
	return combine(concl, primary, secondary, tv, ctx)
}

// AbductionRule: M-->A, M-->B |- A-->B (shared subject).
type AbductionRule struct{}

func (AbductionRule) Name() string               { return "abduction" }
func (AbductionRule) Copulas() []types.Copula     { return []types.Copula{types.Inheritance} }
func (AbductionRule) Operators() []types.Operator { return nil }

func (AbductionRule) Apply(primary, secondary *types.Task, ctx Context) (*types.Task, bool) {
	if secondary == nil || primary.Truth == nil || secondary.Truth == nil {
		return nil, false
	}
	p, s := primary.Term, secondary.Term
	if p.Kind() != types.Statement || s.Kind() != types.Statement {
		return nil, false
	}
	if p.Copula() != types.Inheritance || s.Copula() != types.Inheritance {
		return nil, false
	}
	if !p.Subject().Equals(s.Subject()) || p.Predicate().Equals(s.Predicate()) {
		return nil, false
	}
	concl, err := ctx.Factory.Statement(types.Inheritance, p.Predicate(), s.Predicate())
	if err != nil {
		return nil, false
	}
	tv := truth.Abduction(*primary.Truth, *secondary.Truth)
	return combine(concl, primary, secondary, tv, ctx)
}

// ComparisonRule: A-->M, B-->M |- A<->B (shared predicate, symmetric
// strength).
type ComparisonRule struct{}

func (ComparisonRule) Name() string               { return "comparison" }
func (ComparisonRule) Copulas() []types.Copula     { return []types.Copula{types.Inheritance} }
func (ComparisonRule) Operators() []types.Operator { return nil }

func (ComparisonRule) Apply(primary, secondary *types.Task, ctx Context) (*types.Task, bool) {
	if secondary == nil || primary.Truth == nil || secondary.Truth == nil {
		return nil, false
	}
	p, s := primary.Term, secondary.Term
	if p.Kind() != types.Statement || s.Kind() != types.Statement {
		return nil, false
	}
	if p.Copula() != types.Inheritance || s.Copula() != types.Inheritance {
		return nil, false
	}
	if !p.Predicate().Equals(s.Predicate()) || p.Subject().Equals(s.Subject()) {
		return nil, false
	}
	concl, err := ctx.Factory.Statement(types.Similarity, p.Subject(), s.Subject())
	if err != nil {
		return nil, false
	}
	tv := truth.Comparison(*primary.Truth, *secondary.Truth)
	return combine(concl, primary, secondary, tv, ctx)
}

// AnalogyRule: A-->B, B<->C |- A-->C.
type AnalogyRule struct{}

func (AnalogyRule) Name() string               { return "analogy" }
func (AnalogyRule) Copulas() []types.Copula     { return []types.Copula{types.Inheritance, types.Similarity} }
func (AnalogyRule) Operators() []types.Operator { return nil }

func (AnalogyRule) Apply(primary, secondary *types.Task, ctx Context) (*types.Task, bool) {
	if secondary == nil || primary.Truth == nil || secondary.Truth == nil {
		return nil, false
	}
	inheritance, similarity := primary, secondary
	if inheritance.Term.Copula() != types.Inheritance {
		inheritance, similarity = secondary, primary
	}
	p, s := inheritance.Term, similarity.Term
	if p.Copula() != types.Inheritance || s.Copula() != types.Similarity {
		return nil, false
	}
	if !p.Predicate().Equals(s.Subject()) {
		return nil, false
	}
	concl, err := ctx.Factory.Statement(types.Inheritance, p.Subject(), s.Predicate())
	if err != nil {
		return nil, false
	}
	tv := truth.Analogy(*inheritance.Truth, *similarity.Truth)
	return combine(concl, inheritance, similarity, tv, ctx)
}

// RevisionRule merges two beliefs about the identical term with
// disjoint evidential bases.
type RevisionRule struct{}

func (RevisionRule) Name() string               { return "revision" }
func (RevisionRule) Copulas() []types.Copula     { return []types.Copula{types.Inheritance, types.Similarity, types.Implication, types.Equivalence} }
func (RevisionRule) Operators() []types.Operator { return []types.Operator{types.OpConjunction, types.OpDisjunction, types.OpProduct, types.OpExtIntersection, types.OpExtUnion, types.OpDifference} }

func (RevisionRule) Apply(primary, secondary *types.Task, ctx Context) (*types.Task, bool) {
	if secondary == nil || primary.Truth == nil || secondary.Truth == nil {
		return nil, false
	}
	if primary.Term != secondary.Term {
		return nil, false
	}
	if primary.Punctuation != types.BeliefTask || secondary.Punctuation != types.BeliefTask {
		return nil, false
	}
	tv := truth.Revision(*primary.Truth, *secondary.Truth)
	return combine(primary.Term, primary, secondary, tv, ctx)
}

// ConjunctionEliminationRule: from (&&,a,b,...) infer the first
// component as a standalone belief; the other components are not
// derived (spec.md §4.H decomposition: "conjunction elimination").
type ConjunctionEliminationRule struct{}

func (ConjunctionEliminationRule) Name() string             { return "conjunction-elimination" }
func (ConjunctionEliminationRule) Copulas() []types.Copula   { return nil }
func (ConjunctionEliminationRule) Operators() []types.Operator {
	return []types.Operator{types.OpConjunction}
}

func (ConjunctionEliminationRule) Apply(primary, secondary *types.Task, ctx Context) (*types.Task, bool) {
	if secondary != nil || primary.Truth == nil {
		return nil, false
	}
	components := primary.Term.Components()
	if len(components) == 0 {
		return nil, false
	}
	tv := *primary.Truth
	derivedBudget := budget.Derive(primary.Budget, primary.Budget, tv, ctx.DecayFactor)
	task, err := types.NewTask(components[0], types.BeliefTask, &tv, primary.Stamp, derivedBudget)
	if err != nil {
		return nil, false
	}
	return task, true
}

// IntersectionDistributivityRule: (A&B)-->C is derivable from A-->C
// and B-->C via extensional-intersection truth combination, matched
// against a secondary premise sharing the predicate.
type IntersectionDistributivityRule struct{}

func (IntersectionDistributivityRule) Name() string           { return "intersection-distributivity" }
func (IntersectionDistributivityRule) Copulas() []types.Copula { return []types.Copula{types.Inheritance} }
func (IntersectionDistributivityRule) Operators() []types.Operator { return nil }

func (r IntersectionDistributivityRule) Apply(primary, secondary *types.Task, ctx Context) (*types.Task, bool) {
	if secondary == nil || primary.Truth == nil || secondary.Truth == nil {
		return nil, false
	}
	p, s := primary.Term, secondary.Term
	if p.Kind() != types.Statement || s.Kind() != types.Statement {
		return nil, false
	}
	if p.Copula() != types.Inheritance || s.Copula() != types.Inheritance {
		return nil, false
	}
	if !p.Predicate().Equals(s.Predicate()) {
		return nil, false
	}
	intersection, err := ctx.Factory.Compound(types.OpExtIntersection, p.Subject(), s.Subject())
	if err != nil {
		return nil, false
	}
	concl, err := ctx.Factory.Statement(types.Inheritance, intersection, p.Predicate())
	if err != nil {
		return nil, false
	}
	tv := truth.Intersection(*primary.Truth, *secondary.Truth)
	return combine(concl, primary, secondary, tv, ctx)
}

// Defaults returns the mandatory core rule set (spec.md §4.H).
func Defaults() []Rule {
	return []Rule{
		DeductionRule{},
		InductionRule{},
		AbductionRule{},
		ComparisonRule{},
		AnalogyRule{},
		RevisionRule{},
		ConjunctionEliminationRule{},
		IntersectionDistributivityRule{},
		VariableUnificationRule{},
	}
}
