// Package concept implements Concept: the per-term container owning
// three priority bags (beliefs, goals, questions) plus activation,
// quality, and access bookkeeping (spec.md §3 Concept, §4.F).
package concept

import (
	"github.com/automenta/senars/internal/bag"
	"github.com/automenta/senars/internal/snapshot"
	"github.com/automenta/senars/internal/types"
)

// Default per-type capacity distribution, partitioning a concept's
// total task capacity across BELIEF/GOAL/QUESTION (spec.md §3: "default
// 0.6 / 0.3 / 0.1 for BELIEF/GOAL/QUESTION").
const (
	beliefShare   = 0.6
	goalShare     = 0.3
	questionShare = 0.1
)

// Concept is the per-term memory unit.
type Concept struct {
	Term *types.Term

	beliefs   *bag.Bag[*types.Task]
	goals     *bag.Bag[*types.Task]
	questions *bag.Bag[*types.Task]

	activation   float64
	useCount     uint64
	quality      float64
	createdAt    uint64
	lastAccessed uint64

	totalCapacity int
	policy        bag.EvictPolicy
}

// New creates a Concept for term with the given total task capacity,
// reallocated 0.6/0.3/0.1 across beliefs/goals/questions, at creation
// step now.
func New(term *types.Term, totalCapacity int, policy bag.EvictPolicy, now uint64) *Concept {
	c := &Concept{
		Term:          term,
		activation:    0,
		quality:       0.5,
		createdAt:     now,
		lastAccessed:  now,
		totalCapacity: totalCapacity,
		policy:        policy,
	}
	c.allocateBags(totalCapacity, policy)
	return c
}

func (c *Concept) allocateBags(totalCapacity int, policy bag.EvictPolicy) {
	c.beliefs = bag.New[*types.Task](capacityFor(totalCapacity, beliefShare), policy)
	c.goals = bag.New[*types.Task](capacityFor(totalCapacity, goalShare), policy)
	c.questions = bag.New[*types.Task](capacityFor(totalCapacity, questionShare), policy)
}

func capacityFor(total int, share float64) int {
	n := int(float64(total)*share + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}

// BagFor returns the bag for the given punctuation.
func (c *Concept) BagFor(p types.Punctuation) *bag.Bag[*types.Task] {
	switch p {
	case types.BeliefTask:
		return c.beliefs
	case types.GoalTask:
		return c.goals
	case types.QuestionTask:
		return c.questions
	default:
		return nil
	}
}

// AddTask routes t by punctuation to the matching bag and updates
// use_count/last_accessed (spec.md §4.F).
func (c *Concept) AddTask(t *types.Task, now uint64) bool {
	b := c.BagFor(t.Punctuation)
	if b == nil {
		return false
	}
	ok := b.Add(t)
	if ok {
		c.useCount++
		c.lastAccessed = now
	}
	return ok
}

// GetHighestPriorityTask returns the top task of the bag for kind,
// marking access.
func (c *Concept) GetHighestPriorityTask(kind types.Punctuation, now uint64) (*types.Task, bool) {
	b := c.BagFor(kind)
	if b == nil {
		return nil, false
	}
	t, ok := b.Peek()
	if ok {
		c.lastAccessed = now
	}
	return t, ok
}

// TotalTasks returns |beliefs| + |goals| + |questions| (spec.md §3
// invariant).
func (c *Concept) TotalTasks() int {
	return c.beliefs.Size() + c.goals.Size() + c.questions.Size()
}

// Activation returns the concept's current activation in [0,1].
func (c *Concept) Activation() float64 { return c.activation }

// Quality returns the concept's current quality in [0,1].
func (c *Concept) Quality() float64 { return c.quality }

// UseCount returns the number of successful AddTask calls.
func (c *Concept) UseCount() uint64 { return c.useCount }

// CreatedAt returns the logical step at which the concept was created.
func (c *Concept) CreatedAt() uint64 { return c.createdAt }

// LastAccessed returns the logical step of the most recent mutating or
// access-marked read.
func (c *Concept) LastAccessed() uint64 { return c.lastAccessed }

// BoostActivation increases activation by delta, clamped to [0,1], and
// marks access (spec.md §4.F: "boost_activation(δ) increases activation
// (clamped) and marks access").
func (c *Concept) BoostActivation(delta float64, now uint64) {
	c.activation = clampUnit(c.activation + delta)
	c.lastAccessed = now
}

// UpdateQuality overwrites quality, clamped to [0,1].
func (c *Concept) UpdateQuality(q float64) {
	c.quality = clampUnit(q)
}

// ApplyDecay decays all three bags' task priorities by rate and
// multiplies activation by (1-rate) (spec.md §4.F).
func (c *Concept) ApplyDecay(rate float64) {
	decay := func(t *types.Task) *types.Task {
		return t.WithBudget(t.Budget.ApplyDecay(rate))
	}
	c.beliefs.ApplyDecay(rate, decay)
	c.goals.ApplyDecay(rate, decay)
	c.questions.ApplyDecay(rate, decay)
	c.activation *= 1 - rate
}

// EnforceCapacity reallocates the three bags' capacities under a new
// total, preserving existing tasks where they still fit. Tasks that no
// longer fit under the new per-type capacity are dropped lowest-priority
// first, whatever the configured eviction policy (spec.md §4.F:
// "reallocates pressure across the three bags using the fixed
// distribution").
func (c *Concept) EnforceCapacity(maxTotal int) {
	if maxTotal == c.totalCapacity {
		return
	}
	rebuild := func(old *bag.Bag[*types.Task], share float64) *bag.Bag[*types.Task] {
		capacity := capacityFor(maxTotal, share)
		nb := bag.New[*types.Task](capacity, c.policy)
		for i, t := range old.ItemsInPriorityOrder() {
			if i >= capacity {
				break
			}
			nb.Add(t)
		}
		return nb
	}
	c.beliefs = rebuild(c.beliefs, beliefShare)
	c.goals = rebuild(c.goals, goalShare)
	c.questions = rebuild(c.questions, questionShare)
	c.totalCapacity = maxTotal
}

// Capacity returns the concept's current total task capacity.
func (c *Concept) Capacity() int { return c.totalCapacity }

// Policy returns the eviction policy shared by the concept's three bags.
func (c *Concept) Policy() bag.EvictPolicy { return c.policy }

// Snapshot encodes c into its structural value-form (spec.md §6.4), with
// every task ordered by priority for a deterministic encoding.
func (c *Concept) Snapshot() snapshot.ConceptData {
	return snapshot.ConceptData{
		Term:         snapshot.FromTerm(c.Term),
		CreatedAt:    c.createdAt,
		LastAccessed: c.lastAccessed,
		Activation:   c.activation,
		UseCount:     c.useCount,
		Quality:      c.quality,
		Beliefs:      snapshot.FromTasks(c.beliefs.ItemsInPriorityOrder()),
		Goals:        snapshot.FromTasks(c.goals.ItemsInPriorityOrder()),
		Questions:    snapshot.FromTasks(c.questions.ItemsInPriorityOrder()),
		Capacity:     c.totalCapacity,
		Policy:       int(c.policy),
		Version:      snapshot.Version,
	}
}

// FromSnapshot decodes d back into a live Concept, re-interning its term
// and every task's term through f. It does not replay AddTask (which
// would double-count use_count and re-derive last_accessed); it restores
// the bookkeeping fields and inserts the decoded tasks directly into
// their bags.
func FromSnapshot(d snapshot.ConceptData, f *types.TermFactory) (*Concept, error) {
	if err := snapshot.CheckVersion(d.Version); err != nil {
		return nil, err
	}
	term, err := d.Term.ToTerm(f)
	if err != nil {
		return nil, err
	}
	beliefs, err := snapshot.ToTasks(d.Beliefs, f)
	if err != nil {
		return nil, err
	}
	goals, err := snapshot.ToTasks(d.Goals, f)
	if err != nil {
		return nil, err
	}
	questions, err := snapshot.ToTasks(d.Questions, f)
	if err != nil {
		return nil, err
	}

	c := &Concept{
		Term:          term,
		activation:    d.Activation,
		useCount:      d.UseCount,
		quality:       d.Quality,
		createdAt:     d.CreatedAt,
		lastAccessed:  d.LastAccessed,
		totalCapacity: d.Capacity,
		policy:        bag.EvictPolicy(d.Policy),
	}
	c.allocateBags(c.totalCapacity, c.policy)
	for _, t := range beliefs {
		c.beliefs.Add(t)
	}
	for _, t := range goals {
		c.goals.Add(t)
	}
	for _, t := range questions {
		c.questions.Add(t)
	}
	return c, nil
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
