package snapshot

import "github.com/automenta/senars/internal/config"

// ConceptData is the structural value-form of a Concept, matching the
// field shape spec.md §6.4 specifies: "{term, createdAt, lastAccessed,
// activation, useCount, quality, beliefs, goals, questions, config,
// version}". Capacity/Policy stand in for the "config" field: the only
// per-concept configuration a Concept actually carries is its total task
// capacity and eviction policy (everything else comes from the engine-wide
// config.Config already captured at the Memory level).
type ConceptData struct {
	Term         TermData   `json:"term"`
	CreatedAt    uint64     `json:"createdAt"`
	LastAccessed uint64     `json:"lastAccessed"`
	Activation   float64    `json:"activation"`
	UseCount     uint64     `json:"useCount"`
	Quality      float64    `json:"quality"`
	Beliefs      []TaskData `json:"beliefs"`
	Goals        []TaskData `json:"goals"`
	Questions    []TaskData `json:"questions"`
	Capacity     int        `json:"config.capacity"`
	Policy       int        `json:"config.policy"`
	Version      string     `json:"version"`
}

// StatsData mirrors memory.Stats's fields as plain values, so this package
// never needs to import internal/memory (which itself imports this
// package to build MemoryData — the cycle the indirection avoids).
type StatsData struct {
	ConceptsCreated   uint64 `json:"conceptsCreated"`
	ConceptsForgotten uint64 `json:"conceptsForgotten"`
	TasksAdded        uint64 `json:"tasksAdded"`
	TasksRejected     uint64 `json:"tasksRejected"`
	Revisions         uint64 `json:"revisions"`
	Consolidations    uint64 `json:"consolidations"`
}

// ResourceData is the "resourceTracker" field spec.md §6.4 calls out:
// concept-count pressure against the configured cap.
type ResourceData struct {
	ConceptCount int     `json:"conceptCount"`
	MaxConcepts  int     `json:"maxConcepts"`
	Pressure     float64 `json:"pressure"`
}

// MemoryData is the structural value-form of Memory, matching spec.md
// §6.4: "{config, concepts[], focusConceptTerms[], index, stats,
// resourceTracker, cyclesSinceConsolidation, lastConsolidationTime,
// version}".
//
// IndexSize stands in for the "index" field: MemoryIndex is a pure
// function of the concept table's terms/activations/access times, so
// Restore rebuilds it by replaying Concepts rather than re-encoding its
// six internal maps — the same "rebuilt on next consolidation" tolerance
// spec.md §7 grants index inconsistencies generally.
type MemoryData struct {
	Config                   *config.Config `json:"config"`
	Concepts                 []ConceptData  `json:"concepts"`
	FocusConceptTerms        []string       `json:"focusConceptTerms"`
	IndexSize                int            `json:"index"`
	Stats                    StatsData      `json:"stats"`
	ResourceTracker          ResourceData   `json:"resourceTracker"`
	CyclesSinceConsolidation int            `json:"cyclesSinceConsolidation"`
	LastConsolidationTime    uint64         `json:"lastConsolidationTime"`
	Version                  string         `json:"version"`
}
