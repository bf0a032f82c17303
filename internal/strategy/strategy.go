// Package strategy implements premise-formation strategies: the three
// mandatory ways a reasoning cycle forms a secondary premise once a
// primary task has been selected (spec.md §4.I). Each strategy tracks
// candidates-generated/successful-pairs counters for effectiveness
// accounting, mirroring the per-reasoner stats-struct shape the pack's
// reasoning package uses throughout (each reasoner owns a small counter
// alongside its narrow Find/Apply method), and the pack's
// cognitive-inference-engine PatternMatcher's type+name filter idiom,
// generalized here to NARS term/concept matching.
package strategy

import (
	"github.com/automenta/senars/internal/config"
	"github.com/automenta/senars/internal/memory"
	"github.com/automenta/senars/internal/termlink"
	"github.com/automenta/senars/internal/types"
)

// Candidate is a proposed secondary premise paired with a priority the
// strategy assigns it, used to rank which candidate the cycle forms a
// pair with first.
type Candidate struct {
	Task     *types.Task
	Priority float64
	Source   string // strategy name, for diagnostics
}

// Strategy proposes secondary-premise candidates to pair with a primary
// task already selected from a concept.
type Strategy interface {
	Name() string
	// GenerateCandidates returns candidate secondary premises for
	// primary, drawn from mem. Implementations must record their own
	// candidates-generated count even when the result is empty.
	GenerateCandidates(primary *types.Task, mem *memory.Memory) []Candidate
	// CandidatesGenerated and SuccessfulPairs report this strategy's
	// lifetime effectiveness counters (spec.md §8: successful_pairs <=
	// candidates_generated always holds).
	CandidatesGenerated() int64
	SuccessfulPairs() int64
	// RecordOutcome is called by the cycle each time a rule is applied
	// to a candidate this strategy proposed, with whether it succeeded.
	RecordOutcome(success bool)
}

// Default priorities for Decomposition-strategy candidates (spec.md
// §4.I defaults), mirroring config.Default()'s Strategy fields. Callers
// normally thread the live config values through instead of these.
const (
	DefaultSubjectPriority   = 0.85
	DefaultPredicatePriority = 0.85
	DefaultComponentPriority = 0.7
)

// Default compatibility scores for TaskMatch candidates (spec.md §4.I),
// mirroring config.Default()'s Strategy fields.
const (
	HighCompatibility   = 0.95
	MediumCompatibility = 0.7
	LowCompatibility    = 0.3
)

type counters struct {
	generated int64
	succeeded int64
}

func (c *counters) record(n int64) { c.generated += n }

// RecordOutcome counts a successful application against a candidate
// this strategy proposed; the count never exceeds candidates generated.
func (c *counters) RecordOutcome(success bool) {
	if success && c.succeeded < c.generated {
		c.succeeded++
	}
}

// CandidatesGenerated reports the strategy's lifetime candidate count.
func (c *counters) CandidatesGenerated() int64 { return c.generated }

// SuccessfulPairs reports the strategy's lifetime successful-pair count.
func (c *counters) SuccessfulPairs() int64 { return c.succeeded }

// DecompositionStrategy proposes a primary task's own subject,
// predicate, and component subterms as belief concepts to pair with —
// the cheapest, always-available source of secondary premises.
type DecompositionStrategy struct {
	counters
	SubjectPriority   float64
	PredicatePriority float64
	ComponentPriority float64
}

// NewDecompositionStrategy creates a DecompositionStrategy with the
// given subject/predicate/component priorities (config.StrategyConfig's
// SubjectPriority/PredicatePriority/ComponentPriority).
func NewDecompositionStrategy(subjectPriority, predicatePriority, componentPriority float64) *DecompositionStrategy {
	return &DecompositionStrategy{
		SubjectPriority:   subjectPriority,
		PredicatePriority: predicatePriority,
		ComponentPriority: componentPriority,
	}
}

func (s *DecompositionStrategy) Name() string { return "decomposition" }

func (s *DecompositionStrategy) GenerateCandidates(primary *types.Task, mem *memory.Memory) []Candidate {
	var out []Candidate
	term := primary.Term

	addFrom := func(t *types.Term, priority float64) {
		if t == nil {
			return
		}
		c, ok := mem.GetConcept(t)
		if !ok {
			return
		}
		if belief, ok := c.GetHighestPriorityTask(types.BeliefTask, 0); ok {
			out = append(out, Candidate{Task: belief, Priority: priority, Source: s.Name()})
		}
	}

	switch term.Kind() {
	case types.Statement:
		addFrom(term.Subject(), s.SubjectPriority)
		addFrom(term.Predicate(), s.PredicatePriority)
	case types.Compound:
		for _, component := range term.Components() {
			addFrom(component, s.ComponentPriority)
		}
	}

	s.record(int64(len(out)))
	return out
}

// TermLinkStrategy proposes secondary premises reachable from the
// primary task's term through the structural TermLink graph, priority
// equal to the link weight, filtered to links at or above a minimum
// priority threshold (spec.md §4.I).
type TermLinkStrategy struct {
	counters
	Graph           *termlink.Graph
	MinLinkPriority float64
	MaxLinks        int
}

// NewTermLinkStrategy creates a TermLinkStrategy over graph with the
// given filter/cap parameters.
func NewTermLinkStrategy(graph *termlink.Graph, minLinkPriority float64, maxLinks int) *TermLinkStrategy {
	return &TermLinkStrategy{Graph: graph, MinLinkPriority: minLinkPriority, MaxLinks: maxLinks}
}

func (s *TermLinkStrategy) Name() string { return "termlink" }

func (s *TermLinkStrategy) GenerateCandidates(primary *types.Task, mem *memory.Memory) []Candidate {
	var out []Candidate
	if s.Graph == nil || !s.Graph.Contains(primary.Term) {
		s.record(0)
		return nil
	}

	neighborKeys, err := s.Graph.Neighbors(primary.Term)
	if err != nil {
		s.record(0)
		return nil
	}

	for _, key := range neighborKeys {
		if s.MaxLinks > 0 && len(out) >= s.MaxLinks {
			break
		}
		neighborTerm := termForKey(mem, key)
		if neighborTerm == nil {
			continue
		}
		weight, ok := s.Graph.Weight(primary.Term, neighborTerm)
		if !ok || weight < s.MinLinkPriority {
			continue
		}
		c, ok := mem.GetConcept(neighborTerm)
		if !ok {
			continue
		}
		belief, ok := c.GetHighestPriorityTask(types.BeliefTask, 0)
		if !ok {
			continue
		}
		out = append(out, Candidate{Task: belief, Priority: weight, Source: s.Name()})
	}

	s.record(int64(len(out)))
	return out
}

// termForKey resolves a TermLink vertex key back to a live concept's
// term via the concept table (TermLink vertex keys are canonical term
// strings, matching Concept.Term.String() and Memory's concept-table
// keys).
func termForKey(mem *memory.Memory, key string) *types.Term {
	c, ok := mem.ConceptByKey(key)
	if !ok {
		return nil
	}
	return c.Term
}

// TaskMatchStrategy scores candidate concepts by structural
// compatibility with the primary task's term: a true shared middle term
// (one statement's subject or predicate chains into the other's
// predicate or subject, e.g. <A-->M> paired with <M-->B>) scores high,
// a shared subject alone or a shared predicate alone scores medium, a
// diagonal (converse) overlap scores 0.8x medium, and anything else
// scores low (spec.md §4.I).
type TaskMatchStrategy struct {
	counters
	MaxCandidates       int
	HighCompatibility   float64
	MediumCompatibility float64
	LowCompatibility    float64
}

// NewTaskMatchStrategy creates a TaskMatchStrategy capped at maxCandidates
// concepts scanned per call (0 means unbounded), scoring candidates with
// the given high/medium/low compatibility tiers (config.StrategyConfig's
// HighCompatibilityScore/MediumCompatibilityScore/LowCompatibilityScore).
func NewTaskMatchStrategy(maxCandidates int, high, medium, low float64) *TaskMatchStrategy {
	return &TaskMatchStrategy{
		MaxCandidates:       maxCandidates,
		HighCompatibility:   high,
		MediumCompatibility: medium,
		LowCompatibility:    low,
	}
}

func (s *TaskMatchStrategy) Name() string { return "task-match" }

// GenerateCandidates scans only the concepts whose term shares a
// subject or predicate component with primary (via the memory
// secondary index's ByComponent view): compatibility's every non-Low
// tier requires exactly that overlap, so the index lookup is a lossless
// narrowing of the full concept table, not a heuristic cutoff.
func (s *TaskMatchStrategy) GenerateCandidates(primary *types.Task, mem *memory.Memory) []Candidate {
	if primary.Term.Kind() != types.Statement {
		s.record(0)
		return nil
	}

	seen := make(map[string]bool)
	var keys []string
	for _, k := range mem.Index().ByComponent(primary.Term.Subject()) {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, k := range mem.Index().ByComponent(primary.Term.Predicate()) {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}

	var out []Candidate
	scanned := 0
	for _, key := range keys {
		if s.MaxCandidates > 0 && scanned >= s.MaxCandidates {
			break
		}
		c, ok := mem.ConceptByKey(key)
		if !ok {
			continue
		}
		scanned++
		if c.Term.Kind() != types.Statement || c.Term.Equals(primary.Term) {
			continue
		}
		score, ok := s.compatibility(primary.Term, c.Term)
		if !ok {
			continue
		}
		belief, ok := c.GetHighestPriorityTask(types.BeliefTask, 0)
		if !ok {
			continue
		}
		out = append(out, Candidate{Task: belief, Priority: score, Source: s.Name()})
	}

	s.record(int64(len(out)))
	return out
}

// compatibility scores how well two statement terms can serve as a
// syllogistic pair. A true middle term requires a and b to chain:
// a's predicate feeds b's subject, or b's predicate feeds a's subject
// (e.g. <robin-->bird> and <bird-->animal>, chaining through "bird").
// A pair that chains in *both* directions at once (a and b are
// converses of each other, e.g. <bird-->animal> and <animal-->bird>) is
// a degenerate two-term overlap rather than a genuine three-term A-M-B
// chain, so it scores as the diagonal tier instead. A pair sharing only
// a subject, or only a predicate, without chaining, scores medium.
func (s *TaskMatchStrategy) compatibility(a, b *types.Term) (float64, bool) {
	chainForward := a.Predicate().Equals(b.Subject())
	chainBackward := a.Subject().Equals(b.Predicate())
	switch {
	case chainForward && chainBackward:
		return 0.8 * s.MediumCompatibility, true
	case chainForward || chainBackward:
		return s.HighCompatibility, true
	}

	sharedSubject := a.Subject().Equals(b.Subject())
	sharedPredicate := a.Predicate().Equals(b.Predicate())
	if sharedSubject || sharedPredicate {
		return s.MediumCompatibility, true
	}

	return s.LowCompatibility, false
}

// Defaults assembles the three mandatory strategies (spec.md §4.I) over
// the given TermLink graph and strategy config.
func Defaults(cfg config.StrategyConfig, graph *termlink.Graph) []Strategy {
	return []Strategy{
		NewDecompositionStrategy(cfg.SubjectPriority, cfg.PredicatePriority, cfg.ComponentPriority),
		NewTermLinkStrategy(graph, cfg.MinLinkPriority, cfg.MaxLinks),
		NewTaskMatchStrategy(cfg.MaxTasks, cfg.HighCompatibilityScore, cfg.MediumCompatibilityScore, cfg.LowCompatibilityScore),
	}
}
