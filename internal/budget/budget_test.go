package budget

import (
	"math"
	"testing"

	"github.com/automenta/senars/internal/truth"
)

func approxEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestNew_Clamps(t *testing.T) {
	b := New(1.5, -0.5, 2.0)
	if b.Priority != 1.0 || b.Durability != 0 || b.Quality != 1.0 {
		t.Fatalf("unexpected clamped budget: %+v", b)
	}
}

func TestDerive_UsesDefaultDecayWhenNonPositive(t *testing.T) {
	task := New(0.8, 0.5, 0.5)
	belief := New(0.6, 0.9, 0.5)
	tv := truth.New(1.0, 0.9)

	derived := Derive(task, belief, tv, 0)
	wantDurability := math.Max(task.Durability, belief.Durability) * DefaultDecayFactor
	if !approxEqual(derived.Durability, wantDurability, 1e-9) {
		t.Errorf("Durability = %v, want %v", derived.Durability, wantDurability)
	}
	if derived.Quality != tv.Expectation() {
		t.Errorf("Quality = %v, want expectation %v", derived.Quality, tv.Expectation())
	}
}

func TestDerive_PriorityIsZeroWhenAnyParentZero(t *testing.T) {
	task := New(0, 0.5, 0.5)
	belief := New(0.6, 0.9, 0.5)
	tv := truth.New(1.0, 0.9)

	derived := Derive(task, belief, tv, 0.9)
	if derived.Priority != 0 {
		t.Errorf("Priority = %v, want 0", derived.Priority)
	}
}

func TestApplyDecay(t *testing.T) {
	b := New(0.8, 0.5, 0.5)
	decayed := b.ApplyDecay(0.25)
	if !approxEqual(decayed.Priority, 0.6, 1e-9) {
		t.Errorf("Priority = %v, want 0.6", decayed.Priority)
	}
	if decayed.Durability != b.Durability || decayed.Quality != b.Quality {
		t.Errorf("ApplyDecay should only affect priority")
	}
}
