package battle

// TestBattle is a headless battle harness used by tests and the report
// CLI. It assembles a field, two single-formation armies and their plans
// from options, then deploys and begins the battle so callers can step it.
type TestBattle struct {
	State *BattleState

	width    int
	height   int
	seed     int64
	maxTicks int

	red        *Army
	blue       *Army
	byName     map[string]*Unit
	nextUnitID UnitID
	nextRef    CombatantID
}

// battleOptionKind controls the pass in which an option is applied.
type battleOptionKind int

const (
	optInfra battleOptionKind = iota // size, seed, terrain, objectives: applied first
	optUnit                          // add units once the state exists
	optPlan                          // plans, rules, go-codes, contingencies: applied last
)

// BattleOption is a builder function applied to a TestBattle during
// construction.
type BattleOption struct {
	kind battleOptionKind
	fn   func(*TestBattle)
}

// WithFieldSize sets the battlefield dimensions.
func WithFieldSize(w, h int) BattleOption {
	return BattleOption{optInfra, func(tb *TestBattle) {
		tb.width = w
		tb.height = h
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) BattleOption {
	return BattleOption{optInfra, func(tb *TestBattle) {
		tb.seed = seed
	}}
}

// WithMaxTicks caps RunUntilFinished.
func WithMaxTicks(n int) BattleOption {
	return BattleOption{optInfra, func(tb *TestBattle) {
		tb.maxTicks = n
	}}
}

// WithTerrain paints the base terrain of one hex.
func WithTerrain(h Hex, t Terrain) BattleOption {
	return BattleOption{optUnit, func(tb *TestBattle) {
		tb.State.Field.SetTerrain(h, t)
	}}
}

// WithElevation sets one hex's elevation tier.
func WithElevation(h Hex, tiers int) BattleOption {
	return BattleOption{optUnit, func(tb *TestBattle) {
		tb.State.Field.SetElevation(h, tiers)
	}}
}

// WithFeature stacks a terrain feature onto one hex.
func WithFeature(h Hex, f TerrainFeature) BattleOption {
	return BattleOption{optUnit, func(tb *TestBattle) {
		tb.State.Field.AddFeature(h, f)
	}}
}

// WithObjective registers a scripted objective hex.
func WithObjective(h Hex) BattleOption {
	return BattleOption{optUnit, func(tb *TestBattle) {
		tb.State.Objectives = append(tb.State.Objectives, h)
	}}
}

// WithRedUnit adds a red unit of the given category and strength.
func WithRedUnit(name string, category UnitCategory, pos Hex, strength int) BattleOption {
	return BattleOption{optUnit, func(tb *TestBattle) {
		tb.addUnit(SideRed, name, category, pos, strength)
	}}
}

// WithBlueUnit adds a blue unit of the given category and strength.
func WithBlueUnit(name string, category UnitCategory, pos Hex, strength int) BattleOption {
	return BattleOption{optUnit, func(tb *TestBattle) {
		tb.addUnit(SideBlue, name, category, pos, strength)
	}}
}

// WithHQ places a side's headquarters.
func WithHQ(side Side, h Hex) BattleOption {
	return BattleOption{optUnit, func(tb *TestBattle) {
		tb.armyFor(side).HQ = h
	}}
}

// WithCourierPool stocks a side's courier pool with n riders.
func WithCourierPool(side Side, n int) BattleOption {
	return BattleOption{optUnit, func(tb *TestBattle) {
		army := tb.armyFor(side)
		for i := 0; i < n; i++ {
			army.CourierPool = append(army.CourierPool, tb.nextCombatant())
		}
	}}
}

// WithWaypoints assigns a waypoint plan to a named unit.
func WithWaypoints(unitName string, wps ...Waypoint) BattleOption {
	return BattleOption{optPlan, func(tb *TestBattle) {
		u, ok := tb.byName[unitName]
		if !ok {
			return
		}
		tb.planForUnit(u).SetPlan(u.ID, NewWaypointPlan(wps...))
	}}
}

// WithFacing overrides a named unit's starting facing.
func WithFacing(unitName string, f Facing) BattleOption {
	return BattleOption{optPlan, func(tb *TestBattle) {
		if u, ok := tb.byName[unitName]; ok {
			u.Facing = f
		}
	}}
}

// WithEngagementRule assigns an engagement rule to a named unit.
func WithEngagementRule(unitName string, rule EngagementRule) BattleOption {
	return BattleOption{optPlan, func(tb *TestBattle) {
		u, ok := tb.byName[unitName]
		if !ok {
			return
		}
		tb.planForUnit(u).SetEngagement(u.ID, rule)
	}}
}

// WithGoCode registers a go-code on a side's plan.
func WithGoCode(side Side, g *GoCode) BattleOption {
	return BattleOption{optPlan, func(tb *TestBattle) {
		tb.State.planFor(side).AddGoCode(g)
	}}
}

// WithContingency registers a contingency on a side's plan.
func WithContingency(side Side, c *Contingency) BattleOption {
	return BattleOption{optPlan, func(tb *TestBattle) {
		tb.State.planFor(side).AddContingency(c)
	}}
}

// NewTestBattle constructs a ready-to-step battle from the given options
// in three ordered passes:
//  1. Infrastructure (field size, seed, tick cap)
//  2. Terrain and units
//  3. Plans, rules, go-codes, contingencies
//
// The battle is deployed and begun, so the first Step call is tick 1.
func NewTestBattle(opts ...BattleOption) *TestBattle {
	tb := &TestBattle{
		width:    DefaultFieldWidth,
		height:   DefaultFieldHeight,
		seed:     1,
		maxTicks: MaxBattleTicks,
		byName:   make(map[string]*Unit),
	}
	for _, o := range opts {
		if o.kind == optInfra {
			o.fn(tb)
		}
	}

	tb.State = NewBattleState(tb.seed, NewField(tb.width, tb.height))
	tb.red = &Army{Side: SideRed, HQ: Hex{0, tb.height / 2}}
	tb.blue = &Army{Side: SideBlue, HQ: Hex{tb.width - 1, tb.height / 2}}
	tb.red.Formations = []*Formation{{Name: "Red Force", Commander: tb.nextCombatant()}}
	tb.blue.Formations = []*Formation{{Name: "Blue Force", Commander: tb.nextCombatant()}}

	for _, o := range opts {
		if o.kind == optUnit {
			o.fn(tb)
		}
	}
	for _, o := range opts {
		if o.kind == optPlan {
			o.fn(tb)
		}
	}

	// Construction errors cannot happen here: the state is fresh and the
	// phase calls run in order.
	if err := tb.State.Deploy(tb.red, tb.blue); err != nil {
		panic(err)
	}
	if err := tb.State.Begin(); err != nil {
		panic(err)
	}
	return tb
}

func (tb *TestBattle) armyFor(side Side) *Army {
	if side == SideRed {
		return tb.red
	}
	return tb.blue
}

func (tb *TestBattle) planForUnit(u *Unit) *BattlePlan {
	for _, f := range tb.red.Formations {
		for _, existing := range f.Units {
			if existing.ID == u.ID {
				return tb.State.RedPlan
			}
		}
	}
	return tb.State.BluePlan
}

func (tb *TestBattle) nextCombatant() CombatantID {
	id := tb.nextRef
	tb.nextRef++
	return id
}

func (tb *TestBattle) addUnit(side Side, name string, category UnitCategory, pos Hex, strength int) {
	members := make([]CombatantID, strength)
	for i := range members {
		members[i] = tb.nextCombatant()
	}
	u := NewUnit(tb.nextUnitID, name, category, pos, members)
	tb.nextUnitID++
	u.Leader = tb.nextCombatant()
	u.HasLeader = true
	// Red deploys on the west edge, blue on the east; each side starts
	// facing its opponent.
	if side == SideBlue {
		u.Facing = FaceWest
	}

	army := tb.armyFor(side)
	f := army.Formations[0]
	f.Units = append(f.Units, u)
	tb.byName[name] = u
}

// Unit returns a unit by the name it was added with, nil when absent.
func (tb *TestBattle) Unit(name string) *Unit {
	return tb.byName[name]
}

// Log returns the battle's event log.
func (tb *TestBattle) Log() *EventLog {
	return tb.State.Log
}

// RunTicks advances the battle n ticks.
func (tb *TestBattle) RunTicks(n int) {
	for i := 0; i < n; i++ {
		tb.State.Step()
	}
}

// RunUntil steps until the predicate holds or maxTicks elapse. Returns
// the tick at which the predicate was satisfied, or -1.
func (tb *TestBattle) RunUntil(predicate func(*TestBattle) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		tb.State.Step()
		if predicate(tb) {
			return tb.State.CurrentTick()
		}
		if tb.State.Phase == PhaseFinished {
			return -1
		}
	}
	return -1
}

// RunUntilFinished steps to the battle's end (bounded by WithMaxTicks)
// and returns the result.
func (tb *TestBattle) RunUntilFinished() Result {
	for i := 0; i < tb.maxTicks && tb.State.Phase == PhaseActive; i++ {
		tb.State.Step()
	}
	return tb.State.Result
}
