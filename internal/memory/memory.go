// Package memory implements Memory: the concept table, focus set,
// secondary indexes, resource tracker, and pluggable forgetting/
// consolidation policy that together form the engine's global state
// container (spec.md §3 Memory, §4.G). It generalizes the teacher's
// thread-safety and ordered-bookkeeping idioms from
// internal/storage/memory.go (map + access-time tracking) and the
// pluggable-backend-by-config pattern from internal/storage/factory.go
// (mirrored here as a pluggable forgetting strategy).
package memory

import (
	"sort"

	"go.uber.org/zap"

	"github.com/automenta/senars/internal/bag"
	"github.com/automenta/senars/internal/concept"
	"github.com/automenta/senars/internal/config"
	"github.com/automenta/senars/internal/errs"
	"github.com/automenta/senars/internal/events"
	"github.com/automenta/senars/internal/memoryidx"
	"github.com/automenta/senars/internal/snapshot"
	"github.com/automenta/senars/internal/types"
)

// Stats aggregates cumulative counters over the Memory's lifetime; they
// count events and are not decremented when concepts or tasks go away.
type Stats struct {
	ConceptsCreated   uint64
	ConceptsForgotten uint64
	TasksAdded        uint64
	TasksRejected     uint64
	Revisions         uint64
	Consolidations    uint64
}

// ForgettingStrategy selects a concept to evict when memory is at
// capacity. Returning ok=false means no eviction candidate exists.
type ForgettingStrategy interface {
	SelectVictim(concepts map[string]*concept.Concept) (term string, ok bool)
}

type priorityStrategy struct{}

// SelectVictim evicts the concept with the minimum aggregate priority
// (average of its three bags' average priorities).
func (priorityStrategy) SelectVictim(concepts map[string]*concept.Concept) (string, bool) {
	var victim string
	var victimScore float64
	found := false
	for key, c := range concepts {
		score := aggregatePriority(c)
		if !found || score < victimScore {
			victim, victimScore, found = key, score, true
		}
	}
	return victim, found
}

func aggregatePriority(c *concept.Concept) float64 {
	sum := c.BagFor(types.BeliefTask).GetAveragePriority() +
		c.BagFor(types.GoalTask).GetAveragePriority() +
		c.BagFor(types.QuestionTask).GetAveragePriority()
	return sum / 3
}

type lruStrategy struct{}

// SelectVictim evicts the concept with the oldest LastAccessed step.
func (lruStrategy) SelectVictim(concepts map[string]*concept.Concept) (string, bool) {
	var victim string
	var oldest uint64
	found := false
	for key, c := range concepts {
		if !found || c.LastAccessed() < oldest {
			victim, oldest, found = key, c.LastAccessed(), true
		}
	}
	return victim, found
}

type fifoStrategy struct{}

// SelectVictim evicts the concept with the oldest CreatedAt step.
func (fifoStrategy) SelectVictim(concepts map[string]*concept.Concept) (string, bool) {
	var victim string
	var oldest uint64
	found := false
	for key, c := range concepts {
		if !found || c.CreatedAt() < oldest {
			victim, oldest, found = key, c.CreatedAt(), true
		}
	}
	return victim, found
}

func strategyFor(policy config.ForgetPolicy) ForgettingStrategy {
	switch policy {
	case config.ForgetLRU:
		return lruStrategy{}
	case config.ForgetFIFO:
		return fifoStrategy{}
	default:
		return priorityStrategy{}
	}
}

// Memory is the engine's global concept table plus its supporting
// views. It is the sole authoritative owner of concepts (spec.md §9
// open-question resolution): the focus set and index store only term
// keys and resolve through Memory.
type Memory struct {
	cfg    *config.Config
	logger *zap.Logger
	bus    *events.Bus

	concepts map[string]*concept.Concept
	focus    map[string]struct{}
	index    *memoryidx.Index

	stats                    Stats
	cyclesSinceConsolidation int
	lastConsolidationTime    uint64
	strategy                 ForgettingStrategy
}

// New creates an empty Memory.
func New(cfg *config.Config, logger *zap.Logger, bus *events.Bus) *Memory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Memory{
		cfg:      cfg,
		logger:   logger,
		bus:      bus,
		concepts: make(map[string]*concept.Concept),
		focus:    make(map[string]struct{}),
		index:    memoryidx.New(),
		strategy: strategyFor(cfg.Memory.ForgetPolicy),
	}
}

func (m *Memory) publish(name events.Name, now uint64, payload any) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(events.Event{Name: name, Timestamp: now, Payload: payload})
}

// AddTask obtains or creates the concept for t.Term, delegates
// insertion, and updates the focus set, indexes, and resource tracker
// (spec.md §4.G). Malformed tasks (nil term) are refused silently,
// matching §4.G failure semantics.
func (m *Memory) AddTask(t *types.Task, now uint64) bool {
	if t == nil || t.Term == nil {
		m.stats.TasksRejected++
		m.publish(events.TaskRejected, now, errs.New(errs.InvalidInput, "task or task term is nil"))
		return false
	}

	key := t.Term.String()
	c, existed := m.concepts[key]
	if !existed {
		if len(m.concepts) >= m.cfg.Memory.MaxConcepts {
			if victim, ok := m.strategy.SelectVictim(m.concepts); ok {
				m.evict(victim, now)
			}
		}
		c = concept.New(t.Term, m.cfg.Memory.MaxTasksPerConcept, bagPolicyFor(m.cfg.Memory.ForgetPolicy), now)
		m.concepts[key] = c
		m.stats.ConceptsCreated++
		m.index.Add(t.Term, c.Activation(), now)
		m.publish(events.ConceptCreated, now, key)
	} else {
		m.publish(events.ConceptAccessed, now, key)
	}

	ok := c.AddTask(t, now)
	if !ok {
		m.stats.TasksRejected++
		m.publish(events.TaskRejected, now, key)
		return false
	}

	m.stats.TasksAdded++
	m.index.Reindex(t.Term, c.Activation(), now)
	if t.Budget.Priority > m.cfg.Memory.PriorityThreshold {
		m.focus[key] = struct{}{}
	}
	m.publish(events.TaskAdded, now, t)

	if m.pressure() > m.cfg.Memory.MemoryPressureThreshold && m.cfg.Memory.EnableAdaptiveForgetting {
		m.applyAdaptiveForgetting(now)
	}
	return true
}

func bagPolicyFor(policy config.ForgetPolicy) bag.EvictPolicy {
	switch policy {
	case config.ForgetLRU:
		return bag.EvictLRU
	case config.ForgetFIFO:
		return bag.EvictFIFO
	default:
		return bag.EvictLowestPriority
	}
}

func (m *Memory) pressure() float64 {
	if m.cfg.Memory.MaxConcepts == 0 {
		return 0
	}
	return float64(len(m.concepts)) / float64(m.cfg.Memory.MaxConcepts)
}

func (m *Memory) applyAdaptiveForgetting(now uint64) {
	if victim, ok := m.strategy.SelectVictim(m.concepts); ok {
		m.evict(victim, now)
	}
}

func (m *Memory) evict(key string, now uint64) {
	c, ok := m.concepts[key]
	if !ok {
		return
	}
	delete(m.concepts, key)
	delete(m.focus, key)
	m.index.Remove(c.Term)
	m.stats.ConceptsForgotten++
	m.logger.Debug("concept evicted", zap.String("term", key), zap.Uint64("cycle", now))
	m.publish(events.ConceptForgotten, now, key)
}

// GetConcept returns the concept for term, if any.
func (m *Memory) GetConcept(term *types.Term) (*concept.Concept, bool) {
	c, ok := m.concepts[term.String()]
	return c, ok
}

// ConceptByKey returns the concept whose canonical term key is key, if
// any. It lets strategies resolve memoryidx.Index and termlink.Graph
// lookups (both keyed by term string) back to a live concept without a
// full table scan.
func (m *Memory) ConceptByKey(key string) (*concept.Concept, bool) {
	c, ok := m.concepts[key]
	return c, ok
}

// RemoveConcept evicts the concept for term, if present.
func (m *Memory) RemoveConcept(term *types.Term, now uint64) bool {
	key := term.String()
	if _, ok := m.concepts[key]; !ok {
		return false
	}
	m.evict(key, now)
	return true
}

// GetAllConcepts returns every live concept.
func (m *Memory) GetAllConcepts() []*concept.Concept {
	out := make([]*concept.Concept, 0, len(m.concepts))
	for _, c := range m.concepts {
		out = append(out, c)
	}
	return out
}

// GetConceptsByCriteria returns every concept satisfying predicate.
func (m *Memory) GetConceptsByCriteria(predicate func(*concept.Concept) bool) []*concept.Concept {
	var out []*concept.Concept
	for _, c := range m.concepts {
		if predicate(c) {
			out = append(out, c)
		}
	}
	return out
}

// FocusSet returns the term keys currently in the focus set.
func (m *Memory) FocusSet() []string {
	out := make([]string, 0, len(m.focus))
	for k := range m.focus {
		out = append(out, k)
	}
	return out
}

// Stats returns the current aggregated counters.
func (m *Memory) Stats() Stats { return m.stats }

// Size returns the live concept count.
func (m *Memory) Size() int { return len(m.concepts) }

// BoostConceptActivation boosts the named concept's activation by
// delta, if it exists.
func (m *Memory) BoostConceptActivation(term *types.Term, delta float64, now uint64) {
	c, ok := m.concepts[term.String()]
	if !ok {
		return
	}
	c.BoostActivation(delta, now)
	m.index.Reindex(term, c.Activation(), now)
}

// UpdateConceptQuality overwrites the named concept's quality.
func (m *Memory) UpdateConceptQuality(term *types.Term, quality float64) {
	if c, ok := m.concepts[term.String()]; ok {
		c.UpdateQuality(quality)
	}
}

// scoredConcept pairs a concept with its composite activity score.
type scoredConcept struct {
	concept *concept.Concept
	score   float64
}

// GetMostActiveConcepts ranks concepts by a composite score over
// {activation, useCount, taskCount, quality, complexity, diversity}
// weighted by weights, returning at most limit concepts (spec.md
// §4.G).
func (m *Memory) GetMostActiveConcepts(limit int, weights config.ScoringWeights) []*concept.Concept {
	scored := make([]scoredConcept, 0, len(m.concepts))
	for _, c := range m.concepts {
		scored = append(scored, scoredConcept{concept: c, score: compositeScore(c, weights)})
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if limit > 0 && limit < len(scored) {
		scored = scored[:limit]
	}
	out := make([]*concept.Concept, len(scored))
	for i, s := range scored {
		out[i] = s.concept
	}
	return out
}

func compositeScore(c *concept.Concept, w config.ScoringWeights) float64 {
	taskCount := float64(c.TotalTasks())
	complexity := float64(c.Term.Complexity())
	diversity := diversityOf(c)
	return w.Activation*c.Activation() +
		w.UseCount*normalize(float64(c.UseCount())) +
		w.TaskCount*normalize(taskCount) +
		w.Quality*c.Quality() +
		w.Complexity*normalize(complexity) +
		w.Diversity*diversity
}

// normalize squashes an unbounded non-negative count into (0,1) via
// x/(x+1), so it combines sensibly with the already-unit-range terms
// in compositeScore.
func normalize(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return x / (x + 1)
}

// diversityOf is the fraction of the three task kinds (belief/goal/
// question) a concept currently holds at least one task of.
func diversityOf(c *concept.Concept) float64 {
	kinds := 0
	if c.BagFor(types.BeliefTask).Size() > 0 {
		kinds++
	}
	if c.BagFor(types.GoalTask).Size() > 0 {
		kinds++
	}
	if c.BagFor(types.QuestionTask).Size() > 0 {
		kinds++
	}
	return float64(kinds) / 3
}

// Consolidate runs at most once per ConsolidationInterval cycles:
// checks the concept table against the secondary index for corruption,
// decays activation and priority across all concepts, and refreshes
// indexes (spec.md §4.G). now is the current logical cycle; it returns
// whether consolidation actually ran.
func (m *Memory) Consolidate(now uint64) bool {
	m.cyclesSinceConsolidation++
	if m.cyclesSinceConsolidation < m.cfg.Memory.ConsolidationInterval {
		return false
	}
	m.logger.Debug("consolidation started", zap.Uint64("cycle", now), zap.Int("concepts", len(m.concepts)))
	m.publish(events.ConsolidationStart, now, nil)

	if err := m.checkInvariants(); err != nil {
		m.logger.Warn("memory corruption detected", zap.Error(err), zap.Uint64("cycle", now))
		m.publish(events.MemoryCorruption, now, err)
		m.rebuildIndex()
	}

	for key, c := range m.concepts {
		c.ApplyDecay(m.cfg.Memory.PriorityDecayRate)
		m.index.Reindex(c.Term, c.Activation(), c.LastAccessed())
		if c.Activation() < m.cfg.Memory.PriorityThreshold {
			delete(m.focus, key)
		}
	}

	m.cyclesSinceConsolidation = 0
	m.lastConsolidationTime = now
	m.stats.Consolidations++
	m.logger.Debug("consolidation finished", zap.Uint64("cycle", now))
	m.publish(events.ConsolidationEnd, now, nil)
	return true
}

// checkInvariants reports a Corruption error when the secondary index
// has drifted out of sync with the concept table: every live concept
// indexes exactly one term, so the two sizes disagreeing means an Add/
// Remove call was missed somewhere (spec.md §7 kind 4).
func (m *Memory) checkInvariants() error {
	if m.index.Size() != len(m.concepts) {
		return errs.New(errs.Corruption, "index size %d does not match concept count %d", m.index.Size(), len(m.concepts))
	}
	return nil
}

// rebuildIndex discards and reconstructs the secondary index from the
// concept table, the recovery spec.md §7 grants a Corruption kind: "a
// rebuild is attempted on the next consolidation".
func (m *Memory) rebuildIndex() {
	m.index = memoryidx.New()
	for _, c := range m.concepts {
		m.index.Add(c.Term, c.Activation(), c.LastAccessed())
	}
}

// LastConsolidationTime returns the logical cycle at which
// consolidation last ran.
func (m *Memory) LastConsolidationTime() uint64 { return m.lastConsolidationTime }

// CyclesSinceConsolidation returns how many cycles have elapsed since
// the last consolidation ran.
func (m *Memory) CyclesSinceConsolidation() int { return m.cyclesSinceConsolidation }

// Index exposes the secondary-index view for strategies that need
// direct lookups (e.g. TaskMatch's component lookup).
func (m *Memory) Index() *memoryidx.Index { return m.index }

// Snapshot encodes the full Memory into its structural value-form
// (spec.md §6.4), with concepts ordered by term string for a
// deterministic encoding.
func (m *Memory) Snapshot() snapshot.MemoryData {
	concepts := make([]snapshot.ConceptData, 0, len(m.concepts))
	keys := make([]string, 0, len(m.concepts))
	for key := range m.concepts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		concepts = append(concepts, m.concepts[key].Snapshot())
	}

	focus := m.FocusSet()
	sort.Strings(focus)

	return snapshot.MemoryData{
		Config:            m.cfg,
		Concepts:          concepts,
		FocusConceptTerms: focus,
		IndexSize:         m.index.Size(),
		Stats: snapshot.StatsData{
			ConceptsCreated:   m.stats.ConceptsCreated,
			ConceptsForgotten: m.stats.ConceptsForgotten,
			TasksAdded:        m.stats.TasksAdded,
			TasksRejected:     m.stats.TasksRejected,
			Revisions:         m.stats.Revisions,
			Consolidations:    m.stats.Consolidations,
		},
		ResourceTracker: snapshot.ResourceData{
			ConceptCount: len(m.concepts),
			MaxConcepts:  m.cfg.Memory.MaxConcepts,
			Pressure:     m.pressure(),
		},
		CyclesSinceConsolidation: m.cyclesSinceConsolidation,
		LastConsolidationTime:    m.lastConsolidationTime,
		Version:                  snapshot.Version,
	}
}

// Restore decodes d into a fresh Memory, re-interning every term through
// f. f should be the same TermFactory the encoded Memory used, so
// restored terms compare equal (by identity) to any other terms the
// caller already holds. Restore rejects a snapshot whose major version
// differs from the version this package produces (spec.md §6.4).
func Restore(d snapshot.MemoryData, f *types.TermFactory, logger *zap.Logger, bus *events.Bus) (*Memory, error) {
	if err := snapshot.CheckVersion(d.Version); err != nil {
		return nil, err
	}

	m := New(d.Config, logger, bus)
	m.stats = Stats{
		ConceptsCreated:   d.Stats.ConceptsCreated,
		ConceptsForgotten: d.Stats.ConceptsForgotten,
		TasksAdded:        d.Stats.TasksAdded,
		TasksRejected:     d.Stats.TasksRejected,
		Revisions:         d.Stats.Revisions,
		Consolidations:    d.Stats.Consolidations,
	}
	m.cyclesSinceConsolidation = d.CyclesSinceConsolidation
	m.lastConsolidationTime = d.LastConsolidationTime

	for _, cd := range d.Concepts {
		c, err := concept.FromSnapshot(cd, f)
		if err != nil {
			return nil, err
		}
		key := c.Term.String()
		m.concepts[key] = c
		m.index.Add(c.Term, c.Activation(), c.LastAccessed())
	}
	for _, key := range d.FocusConceptTerms {
		if _, ok := m.concepts[key]; ok {
			m.focus[key] = struct{}{}
		}
	}
	return m, nil
}
