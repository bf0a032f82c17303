// Package reasoner implements the cycle engine: the facade that
// exposes the core submission API (submit_task, step, query,
// get_concept, get_stats, consolidate, register_rule, register_strategy)
// and drives the single-threaded cooperative select -> form -> apply ->
// ingest -> maintain loop over one reasoning step (spec.md §4.J, §5).
package reasoner

import (
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/automenta/senars/internal/budget"
	"github.com/automenta/senars/internal/concept"
	"github.com/automenta/senars/internal/config"
	"github.com/automenta/senars/internal/errs"
	"github.com/automenta/senars/internal/events"
	"github.com/automenta/senars/internal/memory"
	"github.com/automenta/senars/internal/rules"
	"github.com/automenta/senars/internal/stamp"
	"github.com/automenta/senars/internal/strategy"
	"github.com/automenta/senars/internal/termlink"
	"github.com/automenta/senars/internal/types"
)

// StepResult summarizes one or more stepOnce() iterations.
type StepResult struct {
	TasksDerived int
	Cycle        uint64
}

// Stats aggregates the reasoner's own counters alongside Memory's.
type Stats struct {
	Memory                   memory.Stats
	Cycle                    uint64
	TasksDerived             uint64
	PendingCollaboratorCalls int
}

// Outcome is the result a suspended collaborator call eventually hands
// back to the reasoner.
type Outcome struct {
	Task *types.Task
	Err  error
}

// PendingOutcome models the suspension point described in spec.md §5
// (ii): a rule that needs an out-of-core answer returns this instead of
// applying synchronously. The reasoner polls Await on later steps and
// treats a Deadline overrun as a Timeout outcome (spec.md §7).
type PendingOutcome struct {
	Await    <-chan Outcome
	Deadline time.Time
}

// AsyncRule is the optional capability a Rule implements when it needs
// to suspend for a collaborator's answer (spec.md §5 suspension point
// (ii)). No rule shipped in this core needs it; the mechanism exists so
// the suspension contract is provably honored, exercised by a test
// double.
type AsyncRule interface {
	rules.Rule
	ApplyAsync(primary, secondary *types.Task, ctx rules.Context, deadline time.Time) (PendingOutcome, bool)
}

type pendingCall struct {
	outcome PendingOutcome
}

// Reasoner is the single-threaded cooperative cycle engine.
type Reasoner struct {
	cfg      *config.Config
	factory  *types.TermFactory
	mem      *memory.Memory
	bus      *events.Bus
	logger   *zap.Logger
	registry *rules.Registry
	graph    *termlink.Graph
	clock    Clock
	rng      *rand.Rand

	strategies []strategy.Strategy
	pending    []pendingCall

	planCache map[string][]string
	goalDepth map[string]int

	tasksDerived uint64
}

// New creates a Reasoner. logger, clock, and rng default to a no-op
// logger, a fresh LogicalClock, and a fixed-seed PRNG (deterministic
// unless the caller supplies its own) when nil.
func New(cfg *config.Config, factory *types.TermFactory, mem *memory.Memory, bus *events.Bus, logger *zap.Logger, graph *termlink.Graph, clock Clock, rng *rand.Rand) *Reasoner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = NewLogicalClock()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Reasoner{
		cfg:       cfg,
		factory:   factory,
		mem:       mem,
		bus:       bus,
		logger:    logger,
		registry:  rules.NewRegistry(),
		graph:     graph,
		clock:     clock,
		rng:       rng,
		planCache: make(map[string][]string),
		goalDepth: make(map[string]int),
	}
}

func (r *Reasoner) publish(name events.Name, now uint64, payload any) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(events.Event{Name: name, Timestamp: now, Payload: payload})
}

// RegisterRule adds r to the dispatch registry.
func (r *Reasoner) RegisterRule(rule rules.Rule) {
	r.registry.Register(rule)
}

// RegisterStrategy adds s to the enabled premise-formation strategies.
func (r *Reasoner) RegisterStrategy(s strategy.Strategy) {
	r.strategies = append(r.strategies, s)
}

// SubmitTask admits an externally-created task without consuming a
// cycle (spec.md §6.2 submit_task). Its term is also registered with
// the TermLink graph so the TermLink strategy can discover it.
func (r *Reasoner) SubmitTask(t *types.Task) bool {
	if t == nil || t.Term == nil {
		return false
	}
	if r.graph != nil {
		_ = r.graph.AddTerm(t.Term)
	}
	return r.ingest(t, r.clock.Current())
}

// Step runs n reasoning cycles and returns the aggregate result.
func (r *Reasoner) Step(n int) StepResult {
	var derived int
	var cycle uint64
	for i := 0; i < n; i++ {
		derived += r.stepOnce()
		cycle = r.clock.Current()
	}
	return StepResult{TasksDerived: derived, Cycle: cycle}
}

// stepOnce runs exactly one select -> form -> apply -> ingest ->
// maintain cycle (spec.md §4.J).
func (r *Reasoner) stepOnce() int {
	now := r.clock.Step()
	r.logger.Debug("step started", zap.Uint64("cycle", now))
	r.publish(events.StepStart, now, nil)

	r.resolvePending(now)

	derived := 0
	if primary, primaryConcept, ok := r.selectPrimary(now); ok {
		switch primary.Punctuation {
		case types.BeliefTask:
			derived = r.forwardInfer(primary, now)
			primaryConcept.BoostActivation(0.05, now)
		case types.GoalTask:
			r.backwardChain(primary, now)
			primaryConcept.BoostActivation(0.05, now)
		case types.QuestionTask:
			r.answerQuestion(primary, now)
		}
		// A question held by the selected concept is answered in the same
		// step even when a belief or goal was chosen as the primary task.
		if primary.Punctuation != types.QuestionTask {
			if question, ok := primaryConcept.GetHighestPriorityTask(types.QuestionTask, now); ok {
				r.answerQuestion(question, now)
			}
		}
	}

	r.mem.Consolidate(now)
	r.tasksDerived += uint64(derived)
	r.logger.Debug("step finished", zap.Uint64("cycle", now), zap.Int("derived", derived))
	r.publish(events.StepEnd, now, nil)
	return derived
}

// selectPrimary chooses a concept probabilistically weighted by
// activation, then takes its highest-priority belief (preferred, for
// forward inference), else goal (backward chaining), else question
// (direct answer), leaving the task in its bag (spec.md §4.J step 1).
func (r *Reasoner) selectPrimary(now uint64) (*types.Task, *concept.Concept, bool) {
	concepts := r.mem.GetAllConcepts()
	if len(concepts) == 0 {
		return nil, nil, false
	}
	c := r.weightedSelect(concepts)

	for _, kind := range []types.Punctuation{types.BeliefTask, types.GoalTask, types.QuestionTask} {
		if task, ok := c.GetHighestPriorityTask(kind, now); ok {
			return task, c, true
		}
	}
	return nil, nil, false
}

// weightedSelect picks a concept with probability proportional to its
// activation, falling back to a uniform pick when all activations are
// non-positive.
func (r *Reasoner) weightedSelect(concepts []*concept.Concept) *concept.Concept {
	var total float64
	for _, c := range concepts {
		total += c.Activation()
	}
	if total <= 0 {
		return concepts[r.rng.Intn(len(concepts))]
	}
	target := r.rng.Float64() * total
	var cumulative float64
	for _, c := range concepts {
		cumulative += c.Activation()
		if target <= cumulative {
			return c
		}
	}
	return concepts[len(concepts)-1]
}

// forwardInfer forms candidate secondary premises via the enabled
// strategies, dispatches compatible rules against the top-K, and
// ingests every derived task (spec.md §4.J steps 2-4).
func (r *Reasoner) forwardInfer(primary *types.Task, now uint64) int {
	candidates := r.collectCandidates(primary)
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Priority > candidates[j].Priority })

	k := r.cfg.Strategy.MaxTasks
	if k > 0 && len(candidates) > k {
		candidates = candidates[:k]
	}

	ctx := rules.Context{
		Factory:           r.factory,
		Now:               now,
		MaxEvidenceLength: stamp.DefaultMaxEvidenceLength,
		DecayFactor:       budget.DefaultDecayFactor,
	}

	derived := 0
	candidateRules := r.registry.CandidatesFor(primary.Term)
	for _, cand := range candidates {
		for _, rule := range candidateRules {
			if asyncRule, isAsync := rule.(AsyncRule); isAsync {
				if pending, ok := asyncRule.ApplyAsync(primary, cand.Task, ctx, r.clock.Now().Add(5*time.Second)); ok {
					r.pending = append(r.pending, pendingCall{outcome: pending})
					continue
				}
			}
			concl, ok := rule.Apply(primary, cand.Task, ctx)
			if !ok {
				r.recordStrategyOutcome(cand.Source, false)
				continue
			}
			if r.ingest(concl, now) {
				derived++
				r.publish(events.TaskDerived, now, concl)
				r.recordStrategyOutcome(cand.Source, true)
			}
		}
	}
	return derived
}

func (r *Reasoner) collectCandidates(primary *types.Task) []strategy.Candidate {
	var out []strategy.Candidate
	for _, s := range r.strategies {
		out = append(out, s.GenerateCandidates(primary, r.mem)...)
	}
	return out
}

func (r *Reasoner) recordStrategyOutcome(source string, success bool) {
	for _, s := range r.strategies {
		if s.Name() == source {
			s.RecordOutcome(success)
			return
		}
	}
}

// ingest routes a derived task through Memory.add_task, applying
// revision instead of plain insertion when an existing belief for the
// same term has a disjoint evidential base (spec.md §4.J step 4).
func (r *Reasoner) ingest(task *types.Task, now uint64) bool {
	if task.Punctuation == types.BeliefTask {
		if c, ok := r.mem.GetConcept(task.Term); ok {
			if existing, ok := c.GetHighestPriorityTask(types.BeliefTask, now); ok && stamp.Disjoint(existing.Stamp, task.Stamp) {
				ctx := rules.Context{Factory: r.factory, Now: now, MaxEvidenceLength: stamp.DefaultMaxEvidenceLength, DecayFactor: budget.DefaultDecayFactor}
				if revised, ok := (rules.RevisionRule{}).Apply(existing, task, ctx); ok {
					c.BagFor(types.BeliefTask).Remove(existing.ID())
					return r.mem.AddTask(revised, now)
				}
			}
		}
	}
	if r.graph != nil {
		_ = r.graph.AddTerm(task.Term)
	}
	return r.mem.AddTask(task, now)
}

// backwardChain activates when the primary task is a goal: it matches
// implications/equivalences whose consequent unifies with the goal
// term, adds the antecedent as a subgoal, and caches the plan by goal
// term string up to the configured depth (spec.md §4.J). A candidate
// antecedent already structurally reachable back to the goal in the
// TermLink graph is skipped, since chaining into it would form a cyclic
// plan.
func (r *Reasoner) backwardChain(goal *types.Task, now uint64) {
	goalKey := goal.Term.String()
	if r.goalDepth[goalKey] >= r.cfg.Strategy.MaxPlanDepth {
		return
	}

	var subgoalKeys []string
	for _, c := range r.mem.GetAllConcepts() {
		for _, belief := range c.BagFor(types.BeliefTask).ItemsInPriorityOrder() {
			term := belief.Term
			if term.Kind() != types.Statement {
				continue
			}
			if term.Copula() != types.Implication && term.Copula() != types.Equivalence {
				continue
			}
			sub, ok := rules.Unify(term.Predicate(), goal.Term)
			if !ok {
				continue
			}
			antecedent, err := rules.Substitute(r.factory, term.Subject(), sub)
			if err != nil {
				continue
			}
			if belief.Truth == nil {
				continue
			}
			subStamp, ok := stamp.Merge(goal.Stamp, belief.Stamp, now, stamp.DefaultMaxEvidenceLength)
			if !ok {
				continue
			}
			subTruth := *belief.Truth
			subBudget := budget.Derive(goal.Budget, belief.Budget, subTruth, budget.DefaultDecayFactor)
			subTask, err := types.NewTask(antecedent, types.GoalTask, &subTruth, subStamp, subBudget)
			if err != nil {
				continue
			}
			if r.graph != nil && r.graph.Contains(antecedent) && r.graph.Contains(goal.Term) {
				if cyclic, err := r.graph.PathExists(antecedent, goal.Term); err == nil && cyclic {
					// antecedent already structurally depends on goal
					// (e.g. through a symmetric relation); chaining into
					// it would form a cyclic plan.
					continue
				}
			}
			if r.ingest(subTask, now) {
				key := antecedent.String()
				subgoalKeys = append(subgoalKeys, key)
				r.goalDepth[key] = r.goalDepth[goalKey] + 1
				r.publish(events.TaskDerived, now, subTask)
			}
		}
	}
	if len(subgoalKeys) > 0 {
		r.planCache[goalKey] = subgoalKeys
	}
}

// answerQuestion resolves a question task against the best-confidence
// matching belief, if any, and publishes it as a derived-task event
// within the same step (spec.md §8 scenario 5).
func (r *Reasoner) answerQuestion(question *types.Task, now uint64) {
	if belief, ok := r.Query(question.Term); ok {
		r.publish(events.TaskDerived, now, belief)
	}
}

// Query returns the best-confidence belief matching term, or (nil,
// false) (spec.md §6.2 query).
func (r *Reasoner) Query(term *types.Term) (*types.Task, bool) {
	c, ok := r.mem.GetConcept(term)
	if !ok {
		return nil, false
	}
	items := c.BagFor(types.BeliefTask).ItemsInPriorityOrder()
	if len(items) == 0 {
		return nil, false
	}
	best := items[0]
	for _, it := range items[1:] {
		if it.Truth != nil && (best.Truth == nil || it.Truth.Confidence > best.Truth.Confidence) {
			best = it
		}
	}
	return best, true
}

// GetConcept passes through to Memory.
func (r *Reasoner) GetConcept(term *types.Term) (*concept.Concept, bool) {
	return r.mem.GetConcept(term)
}

// GetStats reports the reasoner's and memory's aggregated counters.
func (r *Reasoner) GetStats() Stats {
	return Stats{
		Memory:                   r.mem.Stats(),
		Cycle:                    r.clock.Current(),
		TasksDerived:             r.tasksDerived,
		PendingCollaboratorCalls: len(r.pending),
	}
}

// Consolidate runs Memory.consolidate at the current cycle, idempotent
// when not due (spec.md §6.2).
func (r *Reasoner) Consolidate() bool {
	if r.mem.CyclesSinceConsolidation()+1 < r.cfg.Memory.ConsolidationInterval {
		return false
	}
	return r.mem.Consolidate(r.clock.Current())
}

// PlanFor returns the cached subgoal plan for a goal term, if any.
func (r *Reasoner) PlanFor(term *types.Term) ([]string, bool) {
	subgoals, ok := r.planCache[term.String()]
	return subgoals, ok
}

// ClearPlan removes any cached plan for a goal term.
func (r *Reasoner) ClearPlan(term *types.Term) {
	delete(r.planCache, term.String())
}

// resolvePending polls every suspended collaborator call: a fired
// outcome is ingested (or, on error, rejected with an event); an
// overrun deadline produces a typed Timeout outcome (spec.md §5, §7).
func (r *Reasoner) resolvePending(now uint64) {
	if len(r.pending) == 0 {
		return
	}
	remaining := r.pending[:0]
	for _, p := range r.pending {
		select {
		case outcome := <-p.outcome.Await:
			if outcome.Err != nil {
				r.publish(events.TaskRejected, now, outcome.Err)
				continue
			}
			if outcome.Task != nil && r.ingest(outcome.Task, now) {
				r.publish(events.TaskDerived, now, outcome.Task)
			}
			continue
		default:
		}
		if r.clock.Now().After(p.outcome.Deadline) {
			r.logger.Warn("collaborator call timed out", zap.Uint64("cycle", now))
			r.publish(events.TaskRejected, now, errs.New(errs.Timeout, "collaborator call exceeded its deadline"))
			continue
		}
		remaining = append(remaining, p)
	}
	r.pending = remaining
}
