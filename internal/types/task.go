package types

import (
	"github.com/automenta/senars/internal/budget"
	"github.com/automenta/senars/internal/stamp"
	"github.com/automenta/senars/internal/truth"
)

// Punctuation is the task kind, denoted by the trailing Narsese character.
type Punctuation string

const (
	BeliefTask  Punctuation = "."
	GoalTask    Punctuation = "!"
	QuestionTask Punctuation = "?"
)

// Task is the immutable unit of inference input and output: a term with
// punctuation, an optional truth value (required for belief/goal, absent
// for question), a stamp, and a budget (spec.md §3).
type Task struct {
	Term        *Term
	Punctuation Punctuation
	Truth       *truth.Truth // nil for QuestionTask
	Stamp       stamp.Stamp
	Budget      budget.Budget
}

// NewTask constructs a task, validating the punctuation/truth pairing.
func NewTask(term *Term, punctuation Punctuation, tv *truth.Truth, st stamp.Stamp, bd budget.Budget) (*Task, error) {
	if term == nil {
		return nil, errNilTerm
	}
	switch punctuation {
	case BeliefTask, GoalTask:
		if tv == nil {
			return nil, errMissingTruth
		}
	case QuestionTask:
		if tv != nil {
			return nil, errUnexpectedTruth
		}
	default:
		return nil, errUnknownPunctuation
	}
	return &Task{Term: term, Punctuation: punctuation, Truth: tv, Stamp: st, Budget: bd}, nil
}

// ID returns the task's identity, used for dedup/storage (spec.md §3:
// "Identity for dedup/storage uses stamp.id").
func (t *Task) ID() string { return t.Stamp.ID }

// WithBudget returns a shallow clone of t with its budget replaced.
func (t *Task) WithBudget(b budget.Budget) *Task {
	clone := *t
	clone.Budget = b
	return &clone
}

// WithTruth returns a shallow clone of t with its truth value replaced.
func (t *Task) WithTruth(tv truth.Truth) *Task {
	clone := *t
	clone.Truth = &tv
	return &clone
}

// WithStamp returns a shallow clone of t with its stamp replaced.
func (t *Task) WithStamp(s stamp.Stamp) *Task {
	clone := *t
	clone.Stamp = s
	return &clone
}

// IsEternal reports whether the task's occurrence time is the eternal tag.
func (t *Task) IsEternal() bool { return t.Stamp.OccurrenceTime == stamp.Eternal }

// ItemID and Priority let *Task satisfy bag.Item structurally, without
// internal/types importing internal/bag.
func (t *Task) ItemID() string    { return t.ID() }
func (t *Task) Priority() float64 { return t.Budget.Priority }
