// Package budget implements NARS budget-value arithmetic: the
// (priority, durability, quality) triple that governs task selection,
// decay resistance, and derivation cost (spec.md §3, §4.D).
package budget

import "github.com/automenta/senars/internal/truth"

// DefaultDecayFactor is applied to derived durability when no
// rule-specific factor is supplied.
const DefaultDecayFactor = 0.9

// Budget is an immutable (priority, durability, quality) triple, each
// clamped to [0,1].
type Budget struct {
	Priority   float64
	Durability float64
	Quality    float64
}

// New constructs a clamped Budget.
func New(priority, durability, quality float64) Budget {
	return Budget{
		Priority:   clampUnit(priority),
		Durability: clampUnit(durability),
		Quality:    clampUnit(quality),
	}
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

// Derive computes a derived conclusion's budget from its two parent
// budgets and the conclusion's truth, per spec.md §4.D:
//
//	priority   = (p_task * p_belief * expectation)^(1/3)
//	durability = max(d_task, d_belief) * decayFactor
//	quality    = expectation
//
// decayFactor defaults to DefaultDecayFactor when <= 0, allowing
// rule-specific decay factors to be supplied.
func Derive(task, belief Budget, conclusion truth.Truth, decayFactor float64) Budget {
	if decayFactor <= 0 {
		decayFactor = DefaultDecayFactor
	}
	expectation := conclusion.Expectation()
	priority := truth.AggregatePriority(task.Priority, belief.Priority, expectation)
	durability := maxFloat(task.Durability, belief.Durability) * decayFactor
	return New(priority, durability, expectation)
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// ApplyDecay returns a copy of b with priority decayed by rate (used by
// PriorityBag.apply_decay and Concept.apply_decay, spec.md §4.E/§4.F).
func (b Budget) ApplyDecay(rate float64) Budget {
	return New(b.Priority*(1-rate), b.Durability, b.Quality)
}
