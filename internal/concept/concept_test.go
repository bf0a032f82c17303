package concept

import (
	"testing"

	"github.com/automenta/senars/internal/bag"
	"github.com/automenta/senars/internal/budget"
	"github.com/automenta/senars/internal/stamp"
	"github.com/automenta/senars/internal/truth"
	"github.com/automenta/senars/internal/types"
)

func newBeliefTask(t *testing.T, f *types.TermFactory, name string, priority float64) *types.Task {
	t.Helper()
	term := f.Atomic(name)
	tv := truth.New(1.0, 0.9)
	st := stamp.NewInput(0, stamp.Eternal)
	bd := budget.New(priority, 0.5, 0.5)
	task, err := types.NewTask(term, types.BeliefTask, &tv, st, bd)
	if err != nil {
		t.Fatalf("unexpected error building task: %v", err)
	}
	return task
}

func TestAddTask_RoutesByPunctuation(t *testing.T) {
	f := types.NewTermFactory()
	c := New(f.Atomic("bird"), 10, bag.EvictLowestPriority, 0)

	belief := newBeliefTask(t, f, "b1", 0.5)
	if !c.AddTask(belief, 1) {
		t.Fatal("expected belief task to be admitted")
	}
	if c.TotalTasks() != 1 {
		t.Fatalf("TotalTasks() = %d, want 1", c.TotalTasks())
	}
	if c.UseCount() != 1 {
		t.Fatalf("UseCount() = %d, want 1", c.UseCount())
	}
	if c.LastAccessed() != 1 {
		t.Fatalf("LastAccessed() = %d, want 1", c.LastAccessed())
	}
}

func TestCapacityDistribution_PartitionsTotal(t *testing.T) {
	f := types.NewTermFactory()
	c := New(f.Atomic("bird"), 10, bag.EvictLowestPriority, 0)

	if got := c.BagFor(types.BeliefTask).Size(); got != 0 {
		t.Fatalf("expected empty bags initially")
	}
	// Capacity allocation: 0.6/0.3/0.1 of 10 -> 6/3/1, rounded.
	for i := 0; i < 10; i++ {
		task := newBeliefTask(t, f, string(rune('a'+i)), float64(i)/10)
		c.AddTask(task, uint64(i))
	}
	if got := c.BagFor(types.BeliefTask).Size(); got > 6 {
		t.Fatalf("belief bag size = %d, want <= 6 (60%% of 10)", got)
	}
}

func TestBoostActivation_ClampsAndMarksAccess(t *testing.T) {
	f := types.NewTermFactory()
	c := New(f.Atomic("bird"), 10, bag.EvictLowestPriority, 0)
	c.BoostActivation(0.5, 5)
	if c.Activation() != 0.5 {
		t.Fatalf("Activation() = %v, want 0.5", c.Activation())
	}
	c.BoostActivation(0.9, 6)
	if c.Activation() != 1.0 {
		t.Fatalf("Activation() = %v, want clamped to 1.0", c.Activation())
	}
	if c.LastAccessed() != 6 {
		t.Fatalf("LastAccessed() = %d, want 6", c.LastAccessed())
	}
}

func TestApplyDecay_DecaysActivationAndTaskPriorities(t *testing.T) {
	f := types.NewTermFactory()
	c := New(f.Atomic("bird"), 10, bag.EvictLowestPriority, 0)
	c.BoostActivation(0.8, 0)

	belief := newBeliefTask(t, f, "b1", 0.8)
	c.AddTask(belief, 0)

	c.ApplyDecay(0.5)

	if c.Activation() != 0.4 {
		t.Fatalf("Activation() after decay = %v, want 0.4", c.Activation())
	}
	top, ok := c.GetHighestPriorityTask(types.BeliefTask, 1)
	if !ok {
		t.Fatal("expected a belief task to remain")
	}
	if top.Budget.Priority != 0.4 {
		t.Fatalf("decayed task priority = %v, want 0.4", top.Budget.Priority)
	}
}

func TestSnapshotFromSnapshot_RoundTrips(t *testing.T) {
	f := types.NewTermFactory()
	c := New(f.Atomic("bird"), 10, bag.EvictLowestPriority, 0)
	c.AddTask(newBeliefTask(t, f, "b1", 0.7), 1)
	c.BoostActivation(0.4, 2)
	c.UpdateQuality(0.6)

	data := c.Snapshot()
	restored, err := FromSnapshot(data, f)
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}
	if restored.TotalTasks() != c.TotalTasks() {
		t.Fatalf("restored TotalTasks() = %d, want %d", restored.TotalTasks(), c.TotalTasks())
	}
	if restored.Activation() != c.Activation() {
		t.Fatalf("restored Activation() = %v, want %v", restored.Activation(), c.Activation())
	}
	if restored.Quality() != c.Quality() {
		t.Fatalf("restored Quality() = %v, want %v", restored.Quality(), c.Quality())
	}
	if restored.UseCount() != c.UseCount() {
		t.Fatalf("restored UseCount() = %d, want %d", restored.UseCount(), c.UseCount())
	}
	if restored.Capacity() != c.Capacity() {
		t.Fatalf("restored Capacity() = %d, want %d", restored.Capacity(), c.Capacity())
	}
}

func TestFromSnapshot_RejectsIncompatibleMajorVersion(t *testing.T) {
	f := types.NewTermFactory()
	c := New(f.Atomic("bird"), 10, bag.EvictLowestPriority, 0)
	data := c.Snapshot()
	data.Version = "9.0.0"
	if _, err := FromSnapshot(data, f); err == nil {
		t.Fatal("expected FromSnapshot to reject a mismatched major version")
	}
}

func TestEnforceCapacity_PreservesHighestPriorityTasks(t *testing.T) {
	f := types.NewTermFactory()
	c := New(f.Atomic("bird"), 10, bag.EvictLowestPriority, 0)
	for i := 0; i < 6; i++ {
		task := newBeliefTask(t, f, string(rune('a'+i)), float64(i)/10)
		c.AddTask(task, 0)
	}
	c.EnforceCapacity(2) // belief share of 2 -> capacityFor(2, 0.6) = 1
	if got := c.BagFor(types.BeliefTask).Size(); got > 2 {
		t.Fatalf("belief bag size after shrink = %d, want <= 2", got)
	}
	top, ok := c.BagFor(types.BeliefTask).Peek()
	if !ok || top.Budget.Priority != float64(5)/10 {
		t.Fatalf("top belief after shrink = %v, want the priority-0.5 task", top)
	}
}
