// Package snapshot implements the pure (no I/O) encode/decode between the
// engine's live in-memory values (Term, Task, Concept, Memory) and the
// structural shapes spec.md §6.4 calls out for persisted state. Writing the
// encoded value to disk, SQLite, or anywhere else is a collaborator's job
// and stays out of this core's scope (spec.md §1); this package only ever
// produces and consumes plain values.
//
// The shape mirrors the field names read off the teacher's
// internal/storage/sqlite.go schema comments, adapted from a disk-backed
// thought/branch table to the concept-indexed Memory this core actually
// has.
package snapshot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/automenta/senars/internal/budget"
	"github.com/automenta/senars/internal/stamp"
	"github.com/automenta/senars/internal/truth"
	"github.com/automenta/senars/internal/types"
)

// Version is the semver string stamped onto every snapshot this package
// produces. Deserializers accept any minor/patch but reject a differing
// major (spec.md §6.4: "Versions are semver strings; deserializers must
// accept any minor version and reject majors").
const Version = "1.0.0"

// CurrentMajor is Version's major component.
const CurrentMajor = 1

// MajorOf parses the leading major-version component of a semver string.
func MajorOf(version string) (int, error) {
	head, _, _ := strings.Cut(version, ".")
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0, fmt.Errorf("snapshot: invalid version %q: %w", version, err)
	}
	return n, nil
}

// CheckVersion rejects a snapshot whose major version differs from
// CurrentMajor.
func CheckVersion(version string) error {
	major, err := MajorOf(version)
	if err != nil {
		return err
	}
	if major != CurrentMajor {
		return fmt.Errorf("snapshot: version %q major %d is incompatible with current major %d", version, major, CurrentMajor)
	}
	return nil
}

// TermData is the structural value-form of a *types.Term: recursive enough
// to rebuild atomic, compound, and statement terms through a TermFactory
// without re-parsing Narsese (parsing itself is the out-of-scope surface
// collaborator, spec.md §1).
type TermData struct {
	Kind       string     `json:"kind"`
	Name       string     `json:"name,omitempty"`
	Operator   string     `json:"operator,omitempty"`
	Copula     string     `json:"copula,omitempty"`
	Components []TermData `json:"components,omitempty"`
}

// FromTerm recursively encodes t into its structural value-form.
func FromTerm(t *types.Term) TermData {
	comps := t.Components()
	out := TermData{
		Kind:     t.Kind().String(),
		Name:     t.Name(),
		Operator: string(t.Operator()),
		Copula:   string(t.Copula()),
	}
	if len(comps) > 0 {
		out.Components = make([]TermData, len(comps))
		for i, c := range comps {
			out.Components[i] = FromTerm(c)
		}
	}
	return out
}

// ToTerm re-interns d through f, rebuilding the original term structure.
func (d TermData) ToTerm(f *types.TermFactory) (*types.Term, error) {
	switch d.Kind {
	case "atomic":
		return f.Atomic(d.Name), nil
	case "compound":
		comps, err := decodeComponents(d.Components, f)
		if err != nil {
			return nil, err
		}
		return f.Compound(types.Operator(d.Operator), comps...)
	case "statement":
		if len(d.Components) != 2 {
			return nil, fmt.Errorf("snapshot: statement term requires exactly 2 components, got %d", len(d.Components))
		}
		comps, err := decodeComponents(d.Components, f)
		if err != nil {
			return nil, err
		}
		return f.Statement(types.Copula(d.Copula), comps[0], comps[1])
	default:
		return nil, fmt.Errorf("snapshot: unknown term kind %q", d.Kind)
	}
}

func decodeComponents(components []TermData, f *types.TermFactory) ([]*types.Term, error) {
	out := make([]*types.Term, len(components))
	for i, cd := range components {
		t, err := cd.ToTerm(f)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// TaskData is the structural value-form of a *types.Task. Truth, Stamp,
// and Budget are already plain exported-field value types, so they encode
// as themselves; only Term needs the TermData indirection.
type TaskData struct {
	Term        TermData      `json:"term"`
	Punctuation string        `json:"punctuation"`
	Truth       *truth.Truth  `json:"truth,omitempty"`
	Stamp       stamp.Stamp   `json:"stamp"`
	Budget      budget.Budget `json:"budget"`
}

// FromTask encodes t into its structural value-form.
func FromTask(t *types.Task) TaskData {
	return TaskData{
		Term:        FromTerm(t.Term),
		Punctuation: string(t.Punctuation),
		Truth:       t.Truth,
		Stamp:       t.Stamp,
		Budget:      t.Budget,
	}
}

// FromTasks encodes a slice of tasks, preserving order.
func FromTasks(tasks []*types.Task) []TaskData {
	out := make([]TaskData, len(tasks))
	for i, t := range tasks {
		out[i] = FromTask(t)
	}
	return out
}

// ToTask re-interns d.Term through f and reconstructs the task.
func (d TaskData) ToTask(f *types.TermFactory) (*types.Task, error) {
	term, err := d.Term.ToTerm(f)
	if err != nil {
		return nil, err
	}
	return types.NewTask(term, types.Punctuation(d.Punctuation), d.Truth, d.Stamp, d.Budget)
}

// ToTasks decodes a slice of TaskData, preserving order. It stops at the
// first decode error.
func ToTasks(data []TaskData, f *types.TermFactory) ([]*types.Task, error) {
	out := make([]*types.Task, len(data))
	for i, td := range data {
		t, err := td.ToTask(f)
		if err != nil {
			return nil, fmt.Errorf("snapshot: task %d: %w", i, err)
		}
		out[i] = t
	}
	return out, nil
}
