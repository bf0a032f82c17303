// Package events implements the engine's observable event stream: an
// in-process publish/subscribe bus with buffered, non-blocking delivery
// so the reasoning loop never stalls on a slow subscriber (spec.md
// §6.3). It generalizes the worker-pool channel idiom seen in the
// pack's inference-engine reference (task/result channels) from
// request/response pairing to fan-out broadcast.
package events

import "sync"

// Name identifies an event kind. The mandatory names are spec.md §6.3's
// exact list.
type Name string

const (
	TaskAdded          Name = "task.added"
	TaskDerived        Name = "task.derived"
	TaskRejected       Name = "task.rejected"
	ConceptCreated     Name = "concept.created"
	ConceptAccessed    Name = "concept.accessed"
	ConceptForgotten   Name = "concept.forgotten"
	ConsolidationStart Name = "consolidation.start"
	ConsolidationEnd   Name = "consolidation.end"
	StepStart          Name = "step.start"
	StepEnd            Name = "step.end"
	MemoryCorruption   Name = "memory.corruption"
)

// Event is a single observable occurrence.
type Event struct {
	Name      Name
	Timestamp uint64 // logical cycle, not wall-clock (spec.md §3 Clock note)
	Payload   any
}

// DefaultSubscriberBuffer bounds each subscriber's channel; when full,
// the oldest queued event is dropped and counted rather than blocking
// the publisher.
const DefaultSubscriberBuffer = 256

// subscriber is one registered listener's delivery channel plus its
// drop counter.
type subscriber struct {
	ch      chan Event
	dropped int64
}

// Bus is an in-process, non-blocking publish/subscribe event stream.
type Bus struct {
	mu          sync.Mutex
	subscribers map[int]*subscriber
	nextID      int
	bufferSize  int
}

// New creates a Bus whose subscriber channels are sized bufferSize (or
// DefaultSubscriberBuffer if <= 0).
func New(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = DefaultSubscriberBuffer
	}
	return &Bus{
		subscribers: make(map[int]*subscriber),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers a new listener and returns its receive channel
// and an unsubscribe function.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	sub := &subscriber{ch: make(chan Event, b.bufferSize)}
	b.subscribers[id] = sub

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if s, ok := b.subscribers[id]; ok {
			close(s.ch)
			delete(b.subscribers, id)
		}
	}
	return sub.ch, unsubscribe
}

// Publish delivers ev to every subscriber without blocking: a full
// subscriber channel has its oldest event dropped (and dropped-count
// incremented) to make room, per spec.md §6.3 — "the core never blocks
// on subscriber handling".
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subscribers {
		select {
		case sub.ch <- ev:
		default:
			select {
			case <-sub.ch:
				sub.dropped++
			default:
			}
			select {
			case sub.ch <- ev:
			default:
			}
		}
	}
}

// SubscriberCount returns the number of currently registered listeners.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}
