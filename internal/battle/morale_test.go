package battle

import (
	"math"
	"testing"
)

func TestBreakThreshold(t *testing.T) {
	u := testUnit(Levy, 100)

	// Full cohesion earns the bonus on the category base.
	if got := u.BreakThreshold(); math.Abs(got-0.7) > 1e-9 {
		t.Errorf("fresh levy threshold %.3f, want 0.70", got)
	}

	u.Cohesion = 0.5
	if got := u.BreakThreshold(); math.Abs(got-0.6) > 1e-9 {
		t.Errorf("low-cohesion levy threshold %.3f, want 0.60", got)
	}

	u.Fatigue = 1.0
	if got := u.BreakThreshold(); math.Abs(got-0.4) > 1e-9 {
		t.Errorf("exhausted levy threshold %.3f, want 0.40", got)
	}

	// The floor holds for every category at worst-case modifiers.
	for c := Levy; c <= Command; c++ {
		w := testUnit(c, 10)
		w.Cohesion = 0
		w.Fatigue = 1
		if got := w.BreakThreshold(); got < minBreakPoint {
			t.Errorf("%v threshold %.3f below floor", c, got)
		}
	}
}

func TestAddStressClamps(t *testing.T) {
	u := testUnit(Levy, 10)
	u.AddStress(5.0)
	if u.Stress != maxStress {
		t.Errorf("stress %.2f, want clamped at %.2f", u.Stress, maxStress)
	}
	u.AddStress(-10.0)
	if u.Stress != 0 {
		t.Errorf("stress %.2f, want clamped at 0", u.Stress)
	}
}

func TestMoraleTransition(t *testing.T) {
	u := testUnit(Levy, 100) // threshold 0.7

	u.Stress = 0.5
	if _, changed := u.moraleTransition(); changed {
		t.Error("below threshold must not transition")
	}

	u.Stress = 0.75
	stance, changed := u.moraleTransition()
	if !changed || stance != StanceShaken {
		t.Errorf("at threshold: got (%v,%v), want shaken", stance, changed)
	}

	// Already shaken, same band: no repeated transition.
	if _, changed := u.moraleTransition(); changed {
		t.Error("shaken unit in the same band must not re-transition")
	}

	u.Stress = 1.1
	stance, changed = u.moraleTransition()
	if !changed || stance != StanceRouting {
		t.Errorf("past rout margin: got (%v,%v), want routing", stance, changed)
	}

	// Routing units are handled by the rally step, not re-evaluated here.
	if _, changed := u.moraleTransition(); changed {
		t.Error("routing unit must not transition through morale evaluation")
	}
}

func TestRallyCycle(t *testing.T) {
	u := testUnit(LightInfantry, 50)
	u.Stance = StanceRouting
	u.Stress = 1.5
	u.RallyPoint = Hex{5, 5}
	u.HasRallyPoint = true

	// Still fleeing: not at the rally point yet.
	if _, changed := u.rallyStep(false); changed {
		t.Error("routing unit away from rally point must keep routing")
	}

	u.Position = Hex{5, 5}
	stance, changed := u.rallyStep(false)
	if !changed || stance != StanceRallying {
		t.Errorf("at rally point: got (%v,%v), want rallying", stance, changed)
	}

	// The cooldown must run uninterrupted.
	for i := 0; i < rallyTicksNeeded-1; i++ {
		if _, changed := u.rallyStep(false); changed {
			t.Fatalf("rally completed early at tick %d", i)
		}
	}
	stance, changed = u.rallyStep(false)
	if !changed || stance != StanceFormed {
		t.Errorf("after cooldown: got (%v,%v), want formed", stance, changed)
	}
	if want := u.BreakThreshold() * 0.5; math.Abs(u.Stress-want) > 1e-9 {
		t.Errorf("re-formed stress %.3f, want %.3f", u.Stress, want)
	}
}

func TestRallyBrokenByContact(t *testing.T) {
	u := testUnit(LightInfantry, 50)
	u.Stance = StanceRallying
	u.rallyTicks = rallyTicksNeeded - 1

	stance, changed := u.rallyStep(true)
	if !changed || stance != StanceRouting {
		t.Errorf("contact during rally: got (%v,%v), want routing", stance, changed)
	}
	if u.rallyTicks != 0 {
		t.Errorf("rally counter %d, want reset", u.rallyTicks)
	}
}

func TestRoutContagion(t *testing.T) {
	broken := testUnit(Levy, 50)
	broken.ID = 1
	broken.Position = Hex{10, 10}

	near := testUnit(Levy, 50)
	near.ID = 2
	near.Position = Hex{12, 10} // distance 2

	far := testUnit(Levy, 50)
	far.ID = 3
	far.Position = Hex{15, 10} // distance 5

	alreadyRouting := testUnit(Levy, 50)
	alreadyRouting.ID = 4
	alreadyRouting.Position = Hex{11, 10}
	alreadyRouting.Stance = StanceRouting

	affected := propagateRoutContagion(broken, []*Unit{broken, near, far, alreadyRouting})
	if len(affected) != 1 || affected[0].ID != 2 {
		t.Fatalf("affected = %v, want only the nearby formed unit", affected)
	}
	if math.Abs(near.Stress-contagionStress) > 1e-9 {
		t.Errorf("nearby stress %.3f, want %.3f", near.Stress, contagionStress)
	}
	if far.Stress != 0 || alreadyRouting.Stress != 0 {
		t.Error("far and already-routing units must be untouched")
	}
}
