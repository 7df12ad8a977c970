package battle

import "testing"

// --- Invariant helpers ---

// checkUnitBounds verifies every unit's continuous state stays in range.
func checkUnitBounds(t *testing.T, tb *TestBattle) {
	t.Helper()
	for _, u := range tb.State.allUnits() {
		if u.Stress < 0 || u.Stress > maxStress {
			t.Errorf("%s stress out of bounds: %.4f", u.Name, u.Stress)
		}
		if u.Fatigue < 0 || u.Fatigue > 1 {
			t.Errorf("%s fatigue out of bounds: %.4f", u.Name, u.Fatigue)
		}
		if u.Cohesion < 0 || u.Cohesion > 1 {
			t.Errorf("%s cohesion out of bounds: %.4f", u.Name, u.Cohesion)
		}
		if u.EffectiveStrength() < 0 || u.Casualties > u.RawStrength() {
			t.Errorf("%s strength accounting broken: raw %d, casualties %d",
				u.Name, u.RawStrength(), u.Casualties)
		}
	}
}

// checkPhasesMonotonic verifies the phase log only ever moves forward.
func checkPhasesMonotonic(t *testing.T, tb *TestBattle) {
	t.Helper()
	order := map[string]int{"planning": 0, "deployment": 1, "active": 2, "finished": 3}
	prev := -1
	for _, e := range tb.Log().Filter("phase", "enter") {
		rank, ok := order[e.Value]
		if !ok {
			t.Fatalf("unknown phase %q in log", e.Value)
		}
		if rank < prev {
			t.Errorf("phase went backward to %q", e.Value)
		}
		prev = rank
	}
}

// checkCasualtiesMatchLog verifies the result's totals agree with unit state.
func checkCasualtiesMatchLog(t *testing.T, tb *TestBattle, res Result) {
	t.Helper()
	redLost, blueLost := 0, 0
	for _, u := range tb.State.Red.Units() {
		redLost += u.Casualties
	}
	for _, u := range tb.State.Blue.Units() {
		blueLost += u.Casualties
	}
	if res.RedCasualties != redLost || res.BlueCasualties != blueLost {
		t.Errorf("result casualties %d/%d, unit state says %d/%d",
			res.RedCasualties, res.BlueCasualties, redLost, blueLost)
	}
}

// --- Scenarios ---

func meetingEngagement(seed int64) *TestBattle {
	center := Hex{25, 20}
	return NewTestBattle(
		WithSeed(seed),
		WithRedUnit("Red Line", LightInfantry, Hex{15, 20}, 100),
		WithRedUnit("Red Bows", Archers, Hex{12, 20}, 60),
		WithBlueUnit("Blue Line", LightInfantry, Hex{35, 20}, 100),
		WithBlueUnit("Blue Bows", Archers, Hex{38, 20}, 60),
		WithCourierPool(SideRed, 4),
		WithCourierPool(SideBlue, 4),
		WithWaypoints("Red Line", NewWaypoint(center, BehaviorAttackFrom)),
		WithWaypoints("Blue Line", NewWaypoint(center, BehaviorAttackFrom)),
		WithEngagementRule("Red Line", EngageAggressive),
		WithEngagementRule("Blue Line", EngageAggressive),
	)
}

func TestMeetingEngagement(t *testing.T) {
	tb := meetingEngagement(11)
	res := tb.RunUntilFinished()

	if tb.State.Phase != PhaseFinished {
		t.Fatal("battle never terminated")
	}
	if res.RedCasualties == 0 || res.BlueCasualties == 0 {
		t.Errorf("a meeting engagement must bleed both sides: %d vs %d",
			res.RedCasualties, res.BlueCasualties)
	}
	if tb.Log().Count("combat", "engagement_start") == 0 {
		t.Error("no engagement ever started")
	}
	if tb.Log().Count("combat", "exchange") == 0 {
		t.Error("no exchanges resolved")
	}
	if _, ok := tb.Log().LastOf("outcome", "battle_end"); !ok {
		t.Error("termination not logged")
	}

	checkUnitBounds(t, tb)
	checkPhasesMonotonic(t, tb)
	checkCasualtiesMatchLog(t, tb, res)
}

func TestArchersVolleyBeforeContact(t *testing.T) {
	tb := NewTestBattle(
		WithRedUnit("Bows", Archers, Hex{10, 20}, 60),
		WithBlueUnit("Target", Levy, Hex{17, 20}, 80),
	)
	tb.RunTicks(5)

	if tb.Log().Count("combat", "volley") == 0 {
		t.Fatal("archers in range and sight never loosed")
	}
	if tb.Unit("Target").Casualties == 0 {
		t.Error("volleys drew no blood")
	}
	if tb.Log().Count("combat", "engagement_start") != 0 {
		t.Error("stationary archery must not open a melee")
	}
}

func TestHoldFireNeverShoots(t *testing.T) {
	tb := NewTestBattle(
		WithRedUnit("Bows", Archers, Hex{10, 20}, 60),
		WithBlueUnit("Target", Levy, Hex{17, 20}, 80),
		WithEngagementRule("Bows", EngageHoldFire),
	)
	tb.RunTicks(10)

	if got := tb.Log().Count("combat", "volley"); got != 0 {
		t.Errorf("hold-fire archers loosed %d volleys", got)
	}
}

func TestCavalryChargeDeliversShock(t *testing.T) {
	tb := NewTestBattle(
		WithRedUnit("Horse", HeavyCavalry, Hex{10, 20}, 40),
		WithBlueUnit("Line", Levy, Hex{16, 20}, 100),
		WithWaypoints("Horse", NewWaypoint(Hex{16, 20}, BehaviorMoveTo).WithPace(PaceCharge)),
		WithEngagementRule("Horse", EngageAggressive),
	)

	hit := tb.RunUntil(func(tb *TestBattle) bool {
		return tb.Log().Count("shock", "") > 0
	}, 30)
	if hit < 0 {
		t.Fatal("charge never delivered a shock")
	}
	if tb.Unit("Line").Casualties == 0 {
		t.Error("shock drew no blood")
	}
	e, _ := tb.Log().LastOf("shock", "")
	if e.Unit != "Horse" {
		t.Errorf("shock attributed to %s, want Horse", e.Unit)
	}
	// The line faces west toward the attacker, so this is a head-on charge.
	if e.Key != "charge" {
		t.Errorf("frontal charge classified as %q", e.Key)
	}
}

func TestSkirmishersWithdrawAfterExchange(t *testing.T) {
	tb := NewTestBattle(
		WithRedUnit("Javelins", Skirmishers, Hex{10, 20}, 40),
		WithBlueUnit("Line", Levy, Hex{11, 20}, 100),
		WithEngagementRule("Javelins", EngageSkirmish),
	)
	tb.RunTicks(3)

	if tb.Log().Count("combat", "withdraw") == 0 {
		t.Fatal("skirmishers never fell back")
	}
	u := tb.Unit("Javelins")
	if u.Position.Distance(tb.Unit("Line").Position) <= 1 {
		t.Errorf("skirmishers still adjacent at %v", u.Position)
	}
}

// --- Determinism ---

func TestDeterministicReplay(t *testing.T) {
	a := meetingEngagement(42)
	b := meetingEngagement(42)
	resA := a.RunUntilFinished()
	resB := b.RunUntilFinished()

	if resA != resB {
		t.Fatalf("same seed diverged:\n%+v\n%+v", resA, resB)
	}
	if a.Log().Format() != b.Log().Format() {
		t.Fatal("same seed produced different event logs")
	}
}

func TestInvariantsAcrossSeeds(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		tb := meetingEngagement(seed)
		res := tb.RunUntilFinished()

		if tb.State.Phase != PhaseFinished {
			t.Fatalf("seed %d: battle never terminated", seed)
		}
		checkUnitBounds(t, tb)
		checkPhasesMonotonic(t, tb)
		checkCasualtiesMatchLog(t, tb, res)
	}
}
