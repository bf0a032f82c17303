// Package memoryidx implements MemoryIndex: a set of secondary indexes
// over concept term keys, incrementally maintained as concepts are
// added to and removed from Memory. It generalizes the teacher's
// inverted contentIndex/modeIndex (internal/storage/memory.go) from
// tokenized words to term-shaped index keys.
package memoryidx

import (
	"github.com/automenta/senars/internal/types"
)

// ActivationBucketGranularity is the width of each activation bucket;
// a concept with activation 0.42 indexes under bucket 4 (i.e. [0.4,0.5)).
const ActivationBucketGranularity = 0.1

// TemporalBucketWidth is the number of logical steps per temporal
// bucket used by the last-accessed index.
const TemporalBucketWidth = 3600

// entryMeta records what an indexed term's current bucket memberships
// are, so a re-index (activation/access changed) can remove the term
// from its previous buckets before inserting into the new ones.
type entryMeta struct {
	activationBucket int
	temporalBucket   uint64
	complexity       int
	operator         types.Operator
	atomicName       string
	components       []string
}

// Index maintains six secondary views over concept term keys. It never
// owns concept data itself — the concept table in Memory is the sole
// authoritative store (spec.md §9 open-question resolution); Index only
// ever stores term keys.
type Index struct {
	byAtomicName   map[string][]string // atomic term name -> term keys
	byOperator     map[types.Operator][]string
	byComponent    map[string][]string // component term key -> parent term keys
	byComplexity   map[int][]string
	byActivation   map[int][]string // bucket = floor(activation/granularity)
	byLastAccessed map[uint64][]string

	meta map[string]entryMeta // term key -> current bucket memberships
}

// New creates an empty Index.
func New() *Index {
	return &Index{
		byAtomicName:   make(map[string][]string),
		byOperator:     make(map[types.Operator][]string),
		byComponent:    make(map[string][]string),
		byComplexity:   make(map[int][]string),
		byActivation:   make(map[int][]string),
		byLastAccessed: make(map[uint64][]string),
		meta:           make(map[string]entryMeta),
	}
}

func activationBucket(activation float64) int {
	return int(activation / ActivationBucketGranularity)
}

func temporalBucket(step uint64) uint64 {
	return step / TemporalBucketWidth
}

// Add indexes term under all six views for the given activation and
// last-accessed step. If term was already indexed, Add is a no-op —
// callers use Reindex to move a term when its activation or access
// time changes.
func (idx *Index) Add(term *types.Term, activation float64, lastAccessed uint64) {
	key := term.String()
	if _, exists := idx.meta[key]; exists {
		return
	}

	m := entryMeta{
		activationBucket: activationBucket(activation),
		temporalBucket:   temporalBucket(lastAccessed),
		complexity:       term.Complexity(),
		operator:         term.Operator(),
		atomicName:       atomicNameOf(term),
	}
	for _, c := range term.Components() {
		m.components = append(m.components, c.String())
	}
	idx.meta[key] = m

	if m.atomicName != "" {
		idx.byAtomicName[m.atomicName] = append(idx.byAtomicName[m.atomicName], key)
	}
	if m.operator != types.OpNone {
		idx.byOperator[m.operator] = append(idx.byOperator[m.operator], key)
	}
	for _, c := range m.components {
		idx.byComponent[c] = append(idx.byComponent[c], key)
	}
	idx.byComplexity[m.complexity] = append(idx.byComplexity[m.complexity], key)
	idx.byActivation[m.activationBucket] = append(idx.byActivation[m.activationBucket], key)
	idx.byLastAccessed[m.temporalBucket] = append(idx.byLastAccessed[m.temporalBucket], key)
}

func atomicNameOf(term *types.Term) string {
	if term.Kind() == types.Atomic {
		return term.Name()
	}
	return ""
}

// Remove deletes term from all six views.
func (idx *Index) Remove(term *types.Term) {
	key := term.String()
	m, exists := idx.meta[key]
	if !exists {
		return
	}
	delete(idx.meta, key)

	if m.atomicName != "" {
		idx.byAtomicName[m.atomicName] = removeKey(idx.byAtomicName[m.atomicName], key)
	}
	if m.operator != types.OpNone {
		idx.byOperator[m.operator] = removeKey(idx.byOperator[m.operator], key)
	}
	for _, c := range m.components {
		idx.byComponent[c] = removeKey(idx.byComponent[c], key)
	}
	idx.byComplexity[m.complexity] = removeKey(idx.byComplexity[m.complexity], key)
	idx.byActivation[m.activationBucket] = removeKey(idx.byActivation[m.activationBucket], key)
	idx.byLastAccessed[m.temporalBucket] = removeKey(idx.byLastAccessed[m.temporalBucket], key)
}

// Reindex moves term to its correct activation/temporal buckets after
// its activation or last-accessed step changes.
func (idx *Index) Reindex(term *types.Term, activation float64, lastAccessed uint64) {
	idx.Remove(term)
	idx.Add(term, activation, lastAccessed)
}

func removeKey(keys []string, target string) []string {
	for i, k := range keys {
		if k == target {
			return append(keys[:i], keys[i+1:]...)
		}
	}
	return keys
}

// ByAtomicName returns the term keys for an atomic term name.
func (idx *Index) ByAtomicName(name string) []string { return idx.byAtomicName[name] }

// ByOperator returns the term keys for compound terms using op.
func (idx *Index) ByOperator(op types.Operator) []string { return idx.byOperator[op] }

// ByComponent returns the term keys of compounds/statements containing
// component as a direct subterm.
func (idx *Index) ByComponent(component *types.Term) []string {
	return idx.byComponent[component.String()]
}

// ByComplexity returns the term keys with the given complexity.
func (idx *Index) ByComplexity(complexity int) []string { return idx.byComplexity[complexity] }

// ByActivationBucket returns term keys whose last-indexed activation
// fell in [bucket*granularity, (bucket+1)*granularity).
func (idx *Index) ByActivationBucket(bucket int) []string { return idx.byActivation[bucket] }

// ByTemporalBucket returns term keys last accessed within the given
// TemporalBucketWidth-sized window.
func (idx *Index) ByTemporalBucket(bucket uint64) []string { return idx.byLastAccessed[bucket] }

// Size returns the number of indexed terms.
func (idx *Index) Size() int { return len(idx.meta) }
