package battle

import "testing"

func TestWaypointPlanCursor(t *testing.T) {
	plan := NewWaypointPlan(
		NewWaypoint(Hex{1, 0}, BehaviorMoveTo),
		NewWaypoint(Hex{2, 0}, BehaviorHoldAt),
	)

	wp, ok := plan.Current()
	if !ok || wp.Position != (Hex{1, 0}) {
		t.Fatalf("current = (%v,%v), want first waypoint", wp, ok)
	}
	if plan.Done() {
		t.Error("fresh plan is not done")
	}

	if !plan.Advance() {
		t.Fatal("advance over first waypoint failed")
	}
	wp, _ = plan.Current()
	if wp.Position != (Hex{2, 0}) {
		t.Errorf("current position %v, want second waypoint", wp.Position)
	}

	plan.Advance()
	if !plan.Done() {
		t.Error("plan should be exhausted")
	}
	if _, ok := plan.Current(); ok {
		t.Error("exhausted plan has no current waypoint")
	}
	if plan.Advance() {
		t.Error("advancing an exhausted plan must fail")
	}
}

func TestWaypointPlanNilSafe(t *testing.T) {
	var plan *WaypointPlan
	if !plan.Done() {
		t.Error("nil plan is done")
	}
	if _, ok := plan.Current(); ok {
		t.Error("nil plan has no current waypoint")
	}
}

func TestWaypointBuilders(t *testing.T) {
	wp := NewWaypoint(Hex{3, 3}, BehaviorAttackFrom).
		WithPace(PaceCharge).
		WithWait(WaitCondition{Kind: WaitGoCode, GoCode: "thunder"})

	if wp.Pace != PaceCharge || wp.Wait.Kind != WaitGoCode || wp.Wait.GoCode != "thunder" {
		t.Errorf("built waypoint %+v", wp)
	}
	// Builders copy, the original default stays untouched.
	base := NewWaypoint(Hex{3, 3}, BehaviorAttackFrom)
	if base.Pace != PaceQuick || base.Wait.Kind != WaitNone {
		t.Errorf("base waypoint mutated: %+v", base)
	}
}

func TestPaceScaling(t *testing.T) {
	// Faster paces cost disproportionately more fatigue per hex covered.
	paces := []Pace{PaceWalk, PaceQuick, PaceRun, PaceCharge}
	for i := 1; i < len(paces); i++ {
		slow, fast := paces[i-1], paces[i]
		if fast.SpeedMul() <= slow.SpeedMul() {
			t.Errorf("%v speed %.1f not above %v", fast, fast.SpeedMul(), slow)
		}
		slowRatio := slow.FatigueMul() / slow.SpeedMul()
		fastRatio := fast.FatigueMul() / fast.SpeedMul()
		if fastRatio < slowRatio {
			t.Errorf("%v fatigue-per-speed %.2f below %v's %.2f", fast, fastRatio, slow, slowRatio)
		}
	}
}

func TestEngagementRules(t *testing.T) {
	cases := []struct {
		rule     EngagementRule
		onSight  bool
		withdraw bool
	}{
		{EngageAggressive, true, false},
		{EngageDefensive, false, false},
		{EngageHoldFire, false, false},
		{EngageSkirmish, true, true},
	}
	for _, c := range cases {
		if got := c.rule.AttackOnSight(); got != c.onSight {
			t.Errorf("%v AttackOnSight = %v, want %v", c.rule, got, c.onSight)
		}
		if got := c.rule.WithdrawAfterExchange(); got != c.withdraw {
			t.Errorf("%v WithdrawAfterExchange = %v, want %v", c.rule, got, c.withdraw)
		}
	}
}

func TestGoCodeSubscribe(t *testing.T) {
	g := NewGoCode("thunder", GoCodeTrigger{Kind: TriggerManual})
	g.Subscribe(1)
	g.Subscribe(2)
	g.Subscribe(1)
	if len(g.Subscribers) != 2 {
		t.Errorf("subscribers %v, want deduplicated pair", g.Subscribers)
	}
	if g.Fired || g.FiredTick != -1 {
		t.Errorf("fresh go-code fired=%v tick=%d", g.Fired, g.FiredTick)
	}
}

func TestBattlePlanEngagementDefault(t *testing.T) {
	p := NewBattlePlan(SideRed)
	if got := p.EngagementFor(1); got != EngageDefensive {
		t.Errorf("default rule %v, want defensive", got)
	}
	p.SetEngagement(1, EngageSkirmish)
	if got := p.EngagementFor(1); got != EngageSkirmish {
		t.Errorf("rule %v, want skirmish", got)
	}
}

func TestContingencyPriorityOrder(t *testing.T) {
	p := NewBattlePlan(SideBlue)
	low := &Contingency{Priority: 1}
	high := &Contingency{Priority: 9}
	mid1 := &Contingency{Priority: 5}
	mid2 := &Contingency{Priority: 5}

	p.AddContingency(low)
	p.AddContingency(mid1)
	p.AddContingency(high)
	p.AddContingency(mid2)

	want := []*Contingency{high, mid1, mid2, low}
	for i, c := range p.Contingencies {
		if c != want[i] {
			t.Fatalf("contingency order wrong at %d: priorities %v", i, priorities(p.Contingencies))
		}
	}
}

func priorities(cs []*Contingency) []int {
	out := make([]int, len(cs))
	for i, c := range cs {
		out[i] = c.Priority
	}
	return out
}

func TestGoCodeLookup(t *testing.T) {
	p := NewBattlePlan(SideRed)
	g := NewGoCode("anvil", GoCodeTrigger{Kind: TriggerAtTick, Tick: 100})
	p.AddGoCode(g)

	if p.GoCode("anvil") != g {
		t.Error("registered go-code not found")
	}
	if p.GoCode("hammer") != nil {
		t.Error("unknown go-code should be nil")
	}
}
