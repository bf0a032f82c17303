// Package stamp implements the NARS evidential trail: the occurrence/
// creation time pair and the bounded evidential base used to detect and
// prevent rederivation-amplified confidence (spec.md §3, §4.C).
package stamp

import (
	"github.com/google/uuid"
)

// Eternal is the sentinel OccurrenceTime value meaning "no particular
// time" — the vast majority of Narsese statements are eternal.
const Eternal int64 = -1

// DefaultMaxEvidenceLength bounds the evidential base; merges truncate to
// the last this-many premise IDs of their interleaved order.
const DefaultMaxEvidenceLength = 20

// Stamp is the immutable evidence trail attached to a Task.
type Stamp struct {
	// ID uniquely identifies the task this stamp belongs to; it is the
	// identity used for dedup/storage (spec.md §3, Task).
	ID string
	// OccurrenceTime is a logical step number, or Eternal.
	OccurrenceTime int64
	// CreationTime is the logical cycle at which the task was created.
	CreationTime uint64
	// Evidence is the ordered evidential base: premise-task IDs that
	// contributed to this task, in merge order.
	Evidence []string
}

// NewInput creates a stamp for an externally-submitted task: its
// evidential base is just its own freshly generated ID.
func NewInput(creationTime uint64, occurrenceTime int64) Stamp {
	id := uuid.NewString()
	return Stamp{
		ID:             id,
		OccurrenceTime: occurrenceTime,
		CreationTime:   creationTime,
		Evidence:       []string{id},
	}
}

// Disjoint reports whether two stamps share no evidential base entries —
// the precondition for revision and most syllogistic rules (spec.md §3).
func Disjoint(a, b Stamp) bool {
	seen := make(map[string]struct{}, len(a.Evidence))
	for _, id := range a.Evidence {
		seen[id] = struct{}{}
	}
	for _, id := range b.Evidence {
		if _, ok := seen[id]; ok {
			return false
		}
	}
	return true
}

// Merge combines two stamps' evidential bases. It returns (zero, false) if
// the bases overlap. occurrenceTime follows the §4.C policy: eternal
// yields to a numeric operand; between two numeric times, the later one
// wins (no temporal rules are implemented by this core, so there is no
// rule-specific deviation to apply).
func Merge(a, b Stamp, creationTime uint64, maxLen int) (Stamp, bool) {
	if !Disjoint(a, b) {
		return Stamp{}, false
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxEvidenceLength
	}

	merged := make([]string, 0, len(a.Evidence)+len(b.Evidence))
	for i := 0; i < len(a.Evidence) || i < len(b.Evidence); i++ {
		if i < len(a.Evidence) {
			merged = append(merged, a.Evidence[i])
		}
		if i < len(b.Evidence) {
			merged = append(merged, b.Evidence[i])
		}
	}
	if len(merged) > maxLen {
		// Keep the last maxLen entries of the interleaved order.
		merged = merged[len(merged)-maxLen:]
	}

	return Stamp{
		ID:             uuid.NewString(),
		OccurrenceTime: mergeOccurrence(a.OccurrenceTime, b.OccurrenceTime),
		CreationTime:   creationTime,
		Evidence:       merged,
	}, true
}

func mergeOccurrence(a, b int64) int64 {
	switch {
	case a == Eternal && b == Eternal:
		return Eternal
	case a == Eternal:
		return b
	case b == Eternal:
		return a
	case b > a:
		return b
	default:
		return a
	}
}
