package battle

import (
	"math"
	"testing"
)

func testUnit(category UnitCategory, strength int) *Unit {
	members := make([]CombatantID, strength)
	for i := range members {
		members[i] = CombatantID(i)
	}
	return NewUnit(0, "test", category, Hex{0, 0}, members)
}

func TestBaseCasualtyRateLookups(t *testing.T) {
	cases := []struct {
		name   string
		weapon WeaponProfile
		armor  ArmorProfile
		want   float64
	}{
		{"razor vs cloth", WeaponProfile{Edge: EdgeRazor}, ArmorProfile{Rigidity: RigidityCloth}, 0.040},
		{"razor vs plate", WeaponProfile{Edge: EdgeRazor}, ArmorProfile{Rigidity: RigidityPlate}, 0.004},
		{"sharp vs mail", WeaponProfile{Edge: EdgeSharp}, ArmorProfile{Rigidity: RigidityMail}, 0.006},
		{"piercing sharp vs mail", WeaponProfile{Edge: EdgeSharp, Piercing: true}, ArmorProfile{Rigidity: RigidityMail}, 0.015},
		{"piercing sharp vs plate", WeaponProfile{Edge: EdgeSharp, Piercing: true}, ArmorProfile{Rigidity: RigidityPlate}, 0.006},
		{"piercing sharp vs cloth", WeaponProfile{Edge: EdgeSharp, Piercing: true}, ArmorProfile{Rigidity: RigidityCloth}, 0.025},
		{"blunt heavy vs light padding", WeaponProfile{Edge: EdgeBlunt, Mass: MassHeavy}, ArmorProfile{Padding: PaddingLight}, 0.018},
		{"blunt massive vs none", WeaponProfile{Edge: EdgeBlunt, Mass: MassMassive}, ArmorProfile{Padding: PaddingNone}, 0.050},
	}
	for _, c := range cases {
		if got := BaseCasualtyRate(c.weapon, c.armor); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("%s: rate %.4f, want %.4f", c.name, got, c.want)
		}
	}
}

func TestCasualtyRatePressure(t *testing.T) {
	weapon := WeaponProfile{Edge: EdgeSharp}
	armor := ArmorProfile{Rigidity: RigidityLeather}
	base := BaseCasualtyRate(weapon, armor)

	prev := CasualtyRate(weapon, armor, -1)
	for _, p := range []float64{-0.5, 0, 0.5, 1} {
		got := CasualtyRate(weapon, armor, p)
		if got < prev {
			t.Errorf("rate not monotonic in pressure: %.5f at p=%.1f after %.5f", got, p, prev)
		}
		prev = got
	}

	if got := CasualtyRate(weapon, armor, 0); math.Abs(got-base) > 1e-9 {
		t.Errorf("neutral pressure rate %.5f, want base %.5f", got, base)
	}
	// Pressure beyond [-1,1] clamps to the same rate as the boundary.
	if CasualtyRate(weapon, armor, 5) != CasualtyRate(weapon, armor, 1) {
		t.Error("pressure above 1 should clamp")
	}
	if CasualtyRate(weapon, armor, -5) != CasualtyRate(weapon, armor, -1) {
		t.Error("pressure below -1 should clamp")
	}
}

func TestCasualtiesFor(t *testing.T) {
	cases := []struct {
		rate     float64
		strength int
		want     int
	}{
		{0.0, 100, 0},
		{0.01, 100, 1},
		{0.015, 100, 2}, // ceiling
		{0.01, 0, 0},
		{2.0, 30, 30}, // capped at strength
		{0.001, 50, 1},
	}
	for _, c := range cases {
		if got := CasualtiesFor(c.rate, c.strength); got != c.want {
			t.Errorf("CasualtiesFor(%.3f, %d) = %d, want %d", c.rate, c.strength, got, c.want)
		}
	}
}

func TestResolveExchangeBothSidesBleed(t *testing.T) {
	attacker := testUnit(LightInfantry, 100)
	defender := testUnit(LightInfantry, 100)

	res := ResolveExchange(attacker, defender, 0, ExchangeFlags{})
	if res.AttackerCasualties == 0 || res.DefenderCasualties == 0 {
		t.Fatalf("matched units at neutral pressure should both bleed: %+v", res)
	}
	if res.AttackerCasualties != res.DefenderCasualties {
		t.Errorf("matched units should bleed equally: %+v", res)
	}
	if res.AttackerStress <= 0 || res.DefenderStress <= 0 {
		t.Errorf("exchange stress must be positive: %+v", res)
	}

	// Positive pressure favors the attacker.
	shifted := ResolveExchange(attacker, defender, 1, ExchangeFlags{})
	if shifted.DefenderCasualties < res.DefenderCasualties {
		t.Errorf("pressure should not lower defender casualties: %d -> %d",
			res.DefenderCasualties, shifted.DefenderCasualties)
	}
	if shifted.AttackerCasualties > res.AttackerCasualties {
		t.Errorf("pressure should not raise attacker casualties: %d -> %d",
			res.AttackerCasualties, shifted.AttackerCasualties)
	}
}

func TestResolveExchangeFlagsRaiseStress(t *testing.T) {
	attacker := testUnit(LightInfantry, 100)
	defender := testUnit(LightInfantry, 100)

	plain := ResolveExchange(attacker, defender, 0, ExchangeFlags{})
	flanked := ResolveExchange(attacker, defender, 0, ExchangeFlags{DefenderFlanked: true})
	surrounded := ResolveExchange(attacker, defender, 0, ExchangeFlags{DefenderFlanked: true, DefenderSurrounded: true})

	if flanked.DefenderStress <= plain.DefenderStress {
		t.Error("flanked defender should take more stress")
	}
	if surrounded.DefenderStress <= flanked.DefenderStress {
		t.Error("surrounded defender should take more stress still")
	}
}

func TestResolveVolley(t *testing.T) {
	archers := testUnit(Archers, 60)
	target := testUnit(Levy, 100)

	close := ResolveVolley(archers, target, 4, 0)
	if close.Casualties == 0 {
		t.Fatal("short-range volley against unarmored levy should hit")
	}

	long := ResolveVolley(archers, target, 8, 0)
	if long.Casualties > close.Casualties {
		t.Errorf("long range volley %d worse than close %d", long.Casualties, close.Casualties)
	}

	covered := ResolveVolley(archers, target, 4, 0.9)
	if covered.Casualties >= close.Casualties {
		t.Errorf("cover should reduce volley casualties: %d vs %d", covered.Casualties, close.Casualties)
	}

	if out := ResolveVolley(archers, target, 11, 0); out.Casualties != 0 || out.Stress != 0 {
		t.Errorf("out-of-range volley should be nil: %+v", out)
	}
	if out := ResolveVolley(testUnit(Levy, 100), target, 2, 0); out.Casualties != 0 {
		t.Errorf("non-ranged unit cannot volley: %+v", out)
	}
}

func TestResolveShockCasualties(t *testing.T) {
	// Levy in line: front rank 20 of 100, no padding survival 0.3,
	// so 14 base casualties.
	levy := testUnit(Levy, 100)
	cases := []struct {
		kind ShockType
		want int
	}{
		{ShockCharge, 14},
		{ShockFlank, 9},  // 14 * 2/3
		{ShockRear, 21},  // 14 * 3/2
		{ShockAmbush, 17}, // 14 * 5/4
	}
	for _, c := range cases {
		if got := ResolveShock(levy, c.kind).Casualties; got != c.want {
			t.Errorf("%v shock on levy: %d casualties, want %d", c.kind, got, c.want)
		}
	}
}

func TestResolveShockReachHalves(t *testing.T) {
	spears := testUnit(Spearmen, 100)
	levy := testUnit(Levy, 100)

	s := ResolveShock(spears, ShockCharge)
	l := ResolveShock(levy, ShockCharge)
	// Light padding survives more of the front, reach halves the rest.
	if s.Casualties >= l.Casualties {
		t.Errorf("spearmen shock losses %d should be below levy %d", s.Casualties, l.Casualties)
	}
	if s.Casualties != 5 {
		t.Errorf("spearmen charge losses = %d, want 5", s.Casualties)
	}
}

func TestResolveShockBreakCheck(t *testing.T) {
	levy := testUnit(Levy, 100)
	if res := ResolveShock(levy, ShockCharge); res.BreakCheck {
		t.Errorf("fresh levy should not face a break check (spike %.3f)", res.StressSpike)
	}

	levy.Stress = 0.3
	if res := ResolveShock(levy, ShockCharge); !res.BreakCheck {
		t.Errorf("stressed levy should face a break check (spike %.3f)", res.StressSpike)
	}
}

func TestResolveShockStressSpikeOrdering(t *testing.T) {
	levy := testUnit(Levy, 100)
	rear := ResolveShock(levy, ShockRear).StressSpike
	ambush := ResolveShock(levy, ShockAmbush).StressSpike
	charge := ResolveShock(levy, ShockCharge).StressSpike
	flank := ResolveShock(levy, ShockFlank).StressSpike

	if !(rear > ambush && ambush > charge && charge > flank) {
		t.Errorf("spike ordering rear>ambush>charge>flank violated: %.3f %.3f %.3f %.3f",
			rear, ambush, charge, flank)
	}
}

func TestSelectLOD(t *testing.T) {
	cases := []struct {
		total         int
		focused       bool
		nearObjective bool
		want          LOD
	}{
		{500, true, false, LODIndividual},
		{500, true, true, LODIndividual},
		{500, false, true, LODElement},
		{30, false, false, LODElement},
		{100, false, false, LODUnit},
		{199, false, false, LODUnit},
		{200, false, false, LODFormation},
		{1000, false, false, LODFormation},
	}
	for _, c := range cases {
		if got := SelectLOD(c.total, c.focused, c.nearObjective); got != c.want {
			t.Errorf("SelectLOD(%d, %v, %v) = %v, want %v",
				c.total, c.focused, c.nearObjective, got, c.want)
		}
	}
}
