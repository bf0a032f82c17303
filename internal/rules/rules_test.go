package rules

import (
	"testing"

	"github.com/automenta/senars/internal/budget"
	"github.com/automenta/senars/internal/stamp"
	"github.com/automenta/senars/internal/truth"
	"github.com/automenta/senars/internal/types"
)

func approxEqual(a, b, tolerance float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}

func newCtx(f *types.TermFactory) Context {
	return Context{Factory: f, Now: 10, MaxEvidenceLength: stamp.DefaultMaxEvidenceLength, DecayFactor: budget.DefaultDecayFactor}
}

func inheritanceTask(t *testing.T, f *types.TermFactory, subject, predicate string, tv truth.Truth, occurrence int64) *types.Task {
	t.Helper()
	term, err := f.Statement(types.Inheritance, f.Atomic(subject), f.Atomic(predicate))
	if err != nil {
		t.Fatalf("Statement: %v", err)
	}
	st := stamp.NewInput(0, occurrence)
	bd := budget.New(0.8, 0.9, 0.9)
	task, err := types.NewTask(term, types.BeliefTask, &tv, st, bd)
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}
	return task
}

func TestDeductionRule_Scenario(t *testing.T) {
	// spec.md §8 scenario 1: <bird-->animal>. %1.0;0.9% + <robin-->bird>.
	// %1.0;0.9% |- <robin-->animal>. %1.0;0.81%.
	f := types.NewTermFactory()
	birdAnimal := inheritanceTask(t, f, "bird", "animal", truth.New(1.0, 0.9), 1)
	robinBird := inheritanceTask(t, f, "robin", "bird", truth.New(1.0, 0.9), 2)

	rule := DeductionRule{}
	concl, ok := rule.Apply(robinBird, birdAnimal, newCtx(f))
	if !ok {
		t.Fatal("expected deduction to apply")
	}
	if concl.Term.Subject().Name() != "robin" || concl.Term.Predicate().Name() != "animal" {
		t.Fatalf("conclusion term = %s, want robin-->animal", concl.Term)
	}
	if !approxEqual(concl.Truth.Frequency, 1.0, 1e-9) {
		t.Fatalf("frequency = %v, want 1.0", concl.Truth.Frequency)
	}
	if !approxEqual(concl.Truth.Confidence, 0.81, 1e-9) {
		t.Fatalf("confidence = %v, want 0.81", concl.Truth.Confidence)
	}
}

func TestDeductionRule_RejectsMismatchedMiddleTerm(t *testing.T) {
	f := types.NewTermFactory()
	a := inheritanceTask(t, f, "robin", "bird", truth.New(1.0, 0.9), 1)
	b := inheritanceTask(t, f, "cat", "animal", truth.New(1.0, 0.9), 2)

	if _, ok := (DeductionRule{}).Apply(a, b, newCtx(f)); ok {
		t.Fatal("expected deduction to refuse when predicate != subject")
	}
}

func TestInductionRule_SharedPredicate(t *testing.T) {
	f := types.NewTermFactory()
	a := inheritanceTask(t, f, "robin", "bird", truth.New(1.0, 0.9), 1)
	b := inheritanceTask(t, f, "sparrow", "bird", truth.New(1.0, 0.9), 2)

	concl, ok := (InductionRule{}).Apply(a, b, newCtx(f))
	if !ok {
		t.Fatal("expected induction to apply")
	}
	if concl.Term.Subject().Name() != "robin" || concl.Term.Predicate().Name() != "sparrow" {
		t.Fatalf("conclusion term = %s, want robin-->sparrow", concl.Term)
	}
}

func TestAbductionRule_SharedSubject(t *testing.T) {
	f := types.NewTermFactory()
	a := inheritanceTask(t, f, "robin", "bird", truth.New(1.0, 0.9), 1)
	b := inheritanceTask(t, f, "robin", "flyer", truth.New(1.0, 0.9), 2)

	concl, ok := (AbductionRule{}).Apply(a, b, newCtx(f))
	if !ok {
		t.Fatal("expected abduction to apply")
	}
	if concl.Term.Subject().Name() != "bird" || concl.Term.Predicate().Name() != "flyer" {
		t.Fatalf("conclusion term = %s, want bird-->flyer", concl.Term)
	}
}

func TestComparisonRule_ProducesSimilarity(t *testing.T) {
	f := types.NewTermFactory()
	a := inheritanceTask(t, f, "robin", "bird", truth.New(1.0, 0.9), 1)
	b := inheritanceTask(t, f, "sparrow", "bird", truth.New(1.0, 0.9), 2)

	concl, ok := (ComparisonRule{}).Apply(a, b, newCtx(f))
	if !ok {
		t.Fatal("expected comparison to apply")
	}
	if concl.Term.Copula() != types.Similarity {
		t.Fatalf("copula = %v, want Similarity", concl.Term.Copula())
	}
}

func TestAnalogyRule_InheritancePlusSimilarity(t *testing.T) {
	f := types.NewTermFactory()
	ab := inheritanceTask(t, f, "a", "b", truth.New(1.0, 0.9), 1)

	bc, err := f.Statement(types.Similarity, f.Atomic("b"), f.Atomic("c"))
	if err != nil {
		t.Fatalf("Statement: %v", err)
	}
	tv := truth.New(1.0, 0.9)
	st := stamp.NewInput(0, stamp.Eternal)
	bd := budget.New(0.8, 0.9, 0.9)
	bcTask, err := types.NewTask(bc, types.BeliefTask, &tv, st, bd)
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}

	concl, ok := (AnalogyRule{}).Apply(ab, bcTask, newCtx(f))
	if !ok {
		t.Fatal("expected analogy to apply")
	}
	if concl.Term.Subject().Name() != "a" || concl.Term.Predicate().Name() != "c" {
		t.Fatalf("conclusion term = %s, want a-->c", concl.Term)
	}
}

func TestRevisionRule_Scenario(t *testing.T) {
	// Same term, %1.0;0.9% + %0.0;0.9%: equal confidences give equal
	// weights, so f = 0.5, and c = 18/19 ~= 0.9474, above either parent.
	f := types.NewTermFactory()
	term := f.Atomic("bird")

	tv1 := truth.New(1.0, 0.9)
	tv2 := truth.New(0.0, 0.9)
	st1 := stamp.NewInput(0, stamp.Eternal)
	st2 := stamp.NewInput(0, stamp.Eternal)
	bd := budget.New(0.8, 0.9, 0.9)

	a, _ := types.NewTask(term, types.BeliefTask, &tv1, st1, bd)
	b, _ := types.NewTask(term, types.BeliefTask, &tv2, st2, bd)

	concl, ok := (RevisionRule{}).Apply(a, b, newCtx(f))
	if !ok {
		t.Fatal("expected revision to apply")
	}
	if !approxEqual(concl.Truth.Frequency, 0.5, 1e-9) {
		t.Fatalf("frequency = %v, want 0.5 (equal-weight average of 1.0 and 0.0)", concl.Truth.Frequency)
	}
	if concl.Truth.Confidence <= tv1.Confidence {
		t.Fatal("expected revision to strictly increase confidence beyond either parent")
	}
}

func TestRevisionRule_RefusesOverlappingEvidence(t *testing.T) {
	f := types.NewTermFactory()
	term := f.Atomic("bird")
	tv := truth.New(1.0, 0.9)
	st := stamp.NewInput(0, stamp.Eternal)
	bd := budget.New(0.8, 0.9, 0.9)

	a, _ := types.NewTask(term, types.BeliefTask, &tv, st, bd)
	// b shares a's evidential base (same stamp), so their evidence overlaps.
	b := a.WithBudget(bd)

	if _, ok := (RevisionRule{}).Apply(a, b, newCtx(f)); ok {
		t.Fatal("expected revision to refuse tasks with overlapping evidential bases")
	}
}

func TestConjunctionEliminationRule(t *testing.T) {
	f := types.NewTermFactory()
	conj, err := f.Compound(types.OpConjunction, f.Atomic("a"), f.Atomic("b"))
	if err != nil {
		t.Fatalf("Compound: %v", err)
	}
	tv := truth.New(0.9, 0.8)
	st := stamp.NewInput(0, stamp.Eternal)
	bd := budget.New(0.8, 0.9, 0.9)
	task, err := types.NewTask(conj, types.BeliefTask, &tv, st, bd)
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}

	concl, ok := (ConjunctionEliminationRule{}).Apply(task, nil, newCtx(f))
	if !ok {
		t.Fatal("expected conjunction elimination to apply")
	}
	if concl.Term.Name() != "a" && concl.Term.Name() != "b" {
		t.Fatalf("conclusion term = %s, want a component of (&&,a,b)", concl.Term)
	}
}

func TestIntersectionDistributivityRule(t *testing.T) {
	f := types.NewTermFactory()
	a := inheritanceTask(t, f, "a", "c", truth.New(0.9, 0.8), 1)
	b := inheritanceTask(t, f, "b", "c", truth.New(0.9, 0.8), 2)

	concl, ok := (IntersectionDistributivityRule{}).Apply(a, b, newCtx(f))
	if !ok {
		t.Fatal("expected intersection-distributivity to apply")
	}
	if concl.Term.Predicate().Name() != "c" {
		t.Fatalf("conclusion predicate = %s, want c", concl.Term.Predicate())
	}
	if concl.Term.Subject().Operator() != types.OpExtIntersection {
		t.Fatalf("conclusion subject operator = %v, want OpExtIntersection", concl.Term.Subject().Operator())
	}
}

func TestUnify_BindsVariableToGroundTerm(t *testing.T) {
	f := types.NewTermFactory()
	pattern, err := f.Statement(types.Inheritance, f.Atomic("$x"), f.Atomic("bird"))
	if err != nil {
		t.Fatalf("Statement: %v", err)
	}
	ground, err := f.Statement(types.Inheritance, f.Atomic("robin"), f.Atomic("bird"))
	if err != nil {
		t.Fatalf("Statement: %v", err)
	}

	sub, ok := Unify(pattern, ground)
	if !ok {
		t.Fatal("expected unification to succeed")
	}
	bound, ok := sub["$x"]
	if !ok || bound.Name() != "robin" {
		t.Fatalf("sub[$x] = %v, want robin", bound)
	}
}

func TestUnify_OccurCheckRejectsSelfReference(t *testing.T) {
	f := types.NewTermFactory()
	v := f.Atomic("$x")
	compound, err := f.Compound(types.OpProduct, v, f.Atomic("y"))
	if err != nil {
		t.Fatalf("Compound: %v", err)
	}
	if _, ok := Unify(v, compound); ok {
		t.Fatal("expected occur-check to reject binding $x to a term containing $x")
	}
}

func TestVariableUnificationRule_ResolvesToGroundTerm(t *testing.T) {
	f := types.NewTermFactory()
	variableTerm, err := f.Statement(types.Inheritance, f.Atomic("$x"), f.Atomic("bird"))
	if err != nil {
		t.Fatalf("Statement: %v", err)
	}
	tv1 := truth.New(0.9, 0.8)
	st1 := stamp.NewInput(0, stamp.Eternal)
	bd := budget.New(0.8, 0.9, 0.9)
	variableTask, err := types.NewTask(variableTerm, types.BeliefTask, &tv1, st1, bd)
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}

	groundTask := inheritanceTask(t, f, "robin", "bird", truth.New(1.0, 0.9), 1)

	concl, ok := (VariableUnificationRule{}).Apply(variableTask, groundTask, newCtx(f))
	if !ok {
		t.Fatal("expected variable unification to apply")
	}
	if !concl.Term.Equals(groundTask.Term) {
		t.Fatalf("conclusion term = %s, want %s", concl.Term, groundTask.Term)
	}
}

func TestRegistry_DispatchesByCopulaAndOperator(t *testing.T) {
	f := types.NewTermFactory()
	reg := NewRegistry()
	for _, r := range Defaults() {
		reg.Register(r)
	}

	inheritanceTerm, err := f.Statement(types.Inheritance, f.Atomic("x"), f.Atomic("y"))
	if err != nil {
		t.Fatalf("Statement: %v", err)
	}
	candidates := reg.CandidatesFor(inheritanceTerm)
	if len(candidates) == 0 {
		t.Fatal("expected at least one candidate rule for an inheritance term")
	}

	conjTerm, err := f.Compound(types.OpConjunction, f.Atomic("x"), f.Atomic("y"))
	if err != nil {
		t.Fatalf("Compound: %v", err)
	}
	conjCandidates := reg.CandidatesFor(conjTerm)
	if len(conjCandidates) == 0 {
		t.Fatal("expected at least one candidate rule for a conjunction term")
	}

	atomCandidates := reg.CandidatesFor(f.Atomic("z"))
	if len(atomCandidates) != 0 {
		t.Fatal("expected no candidates for an atomic term")
	}
}

func TestDefaults_IncludesAllMandatoryRules(t *testing.T) {
	names := map[string]bool{}
	for _, r := range Defaults() {
		names[r.Name()] = true
	}
	for _, want := range []string{
		"deduction", "induction", "abduction", "comparison", "analogy",
		"revision", "conjunction-elimination", "intersection-distributivity",
		"variable-unification",
	} {
		if !names[want] {
			t.Fatalf("Defaults() missing rule %q", want)
		}
	}
}
