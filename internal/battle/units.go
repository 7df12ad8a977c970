package battle

// Element size bounds.
const (
	MinElementSize = 5
	MaxElementSize = 10
)

// CombatantID is an opaque reference into an externally owned entity store.
// The engine never owns combatant identity or lifecycle.
type CombatantID int

// UnitID identifies a unit within a battle.
type UnitID int

// Side distinguishes the two opposing armies.
type Side int

const (
	SideRed Side = iota
	SideBlue
)

func (s Side) String() string {
	if s == SideRed {
		return "red"
	}
	return "blue"
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideRed {
		return SideBlue
	}
	return SideRed
}

// Facing is one of the six hex directions (index into the neighbor table).
type Facing int

const (
	FaceEast Facing = iota
	FaceNortheast
	FaceNorthwest
	FaceWest
	FaceSouthwest
	FaceSoutheast
)

// FormationShape is the tactical arrangement of a unit's elements. Shape
// affects the frontage fraction exposed to shock and a per-tick cohesion
// drift while moving.
type FormationShape int

const (
	ShapeLine FormationShape = iota
	ShapeColumn
	ShapeWedge
	ShapeSquare
	ShapeSkirmish
)

func (s FormationShape) String() string {
	switch s {
	case ShapeLine:
		return "line"
	case ShapeColumn:
		return "column"
	case ShapeWedge:
		return "wedge"
	case ShapeSquare:
		return "square"
	case ShapeSkirmish:
		return "skirmish"
	default:
		return "unknown"
	}
}

// frontageFraction is the share of effective strength exposed in the front
// rank, used by shock resolution.
func (s FormationShape) frontageFraction() float64 {
	switch s {
	case ShapeColumn:
		return 0.1
	case ShapeSquare:
		return 0.15
	case ShapeSkirmish:
		return 0.3
	default: // line, wedge
		return 0.2
	}
}

// Element is the smallest grouping: an ordered list of combatant refs.
type Element struct {
	Members []CombatantID
}

// Strength is the element's member count.
func (e *Element) Strength() int {
	return len(e.Members)
}

// Unit is the primary tactical actor.
type Unit struct {
	ID         UnitID
	Name       string
	Leader     CombatantID
	HasLeader  bool
	Elements   []Element
	Category   UnitCategory
	Position   Hex
	Facing     Facing
	Stance     Stance
	Shape      FormationShape
	Cohesion   float64 // [0,1]
	Fatigue    float64 // [0,1]
	Stress     float64 // [0, maxStress]
	Casualties int

	// Execution state, mutated only through cursors and counters.
	Plan           *WaypointPlan
	Engagement     EngagementRule
	RallyPoint     Hex
	HasRallyPoint  bool
	rallyTicks     int // consecutive unengaged ticks at the rally point
	lastOrderTick  int // issue tick of the last applied order
	moveProgress   float64
	tookDamageTick int // last tick this unit took casualties, -1 if never

	attackTarget    UnitID
	hasAttackTarget bool
	withdrawDest    Hex // skirmish fallback destination
	withdrawing     bool
}

// NewUnit builds a unit from externally supplied composition data.
// Members are split into elements of MaxElementSize with a final element
// no smaller than MinElementSize where the count allows.
func NewUnit(id UnitID, name string, category UnitCategory, pos Hex, members []CombatantID) *Unit {
	u := &Unit{
		ID:             id,
		Name:           name,
		Category:       category,
		Position:       pos,
		Stance:         StanceFormed,
		Shape:          ShapeLine,
		Cohesion:       1.0,
		Engagement:     EngageDefensive,
		lastOrderTick:  -1,
		tookDamageTick: -1,
	}
	for len(members) > 0 {
		n := min(MaxElementSize, len(members))
		// Avoid leaving a trailing element below the minimum.
		if rem := len(members) - n; rem > 0 && rem < MinElementSize {
			n = len(members) - MinElementSize
		}
		u.Elements = append(u.Elements, Element{Members: members[:n]})
		members = members[n:]
	}
	return u
}

// RawStrength is the total member count across elements.
func (u *Unit) RawStrength() int {
	total := 0
	for i := range u.Elements {
		total += u.Elements[i].Strength()
	}
	return total
}

// EffectiveStrength is raw strength minus casualties, floored at zero.
func (u *Unit) EffectiveStrength() int {
	s := u.RawStrength() - u.Casualties
	if s < 0 {
		return 0
	}
	return s
}

// CanFight reports whether the unit participates in combat this tick.
func (u *Unit) CanFight() bool {
	if u.Stance == StanceRouting || u.Stance == StanceRallying {
		return false
	}
	return u.EffectiveStrength() > 0
}

// Profile returns the unit's static category profile.
func (u *Unit) Profile() UnitProfile {
	return u.Category.Profile()
}

// ApplyCasualties adds n casualties, capped at current effective strength.
// Returns the number actually applied.
func (u *Unit) ApplyCasualties(n, tick int) int {
	if n <= 0 {
		return 0
	}
	if es := u.EffectiveStrength(); n > es {
		n = es
	}
	u.Casualties += n
	if n > 0 {
		u.tookDamageTick = tick
	}
	return n
}

// Formation groups units under one commander.
type Formation struct {
	Name      string
	Commander CombatantID
	Units     []*Unit
}

// EffectiveStrength is always computed from member units, never stored.
func (f *Formation) EffectiveStrength() int {
	total := 0
	for _, u := range f.Units {
		total += u.EffectiveStrength()
	}
	return total
}

// Broken reports whether at least half the formation's units are routing.
func (f *Formation) Broken() bool {
	if len(f.Units) == 0 {
		return false
	}
	routing := 0
	for _, u := range f.Units {
		if u.Stance == StanceRouting {
			routing++
		}
	}
	return routing*2 >= len(f.Units)
}

// Army is the top tier: formations plus a headquarters and courier pool.
type Army struct {
	Side        Side
	Commander   CombatantID
	HQ          Hex
	Formations  []*Formation
	CourierPool []CombatantID
}

// Units returns every unit across all formations.
func (a *Army) Units() []*Unit {
	var out []*Unit
	for _, f := range a.Formations {
		out = append(out, f.Units...)
	}
	return out
}

// Unit resolves a unit ID within this army, nil when unknown.
func (a *Army) Unit(id UnitID) *Unit {
	for _, f := range a.Formations {
		for _, u := range f.Units {
			if u.ID == id {
				return u
			}
		}
	}
	return nil
}

// EffectiveStrength sums all formations.
func (a *Army) EffectiveStrength() int {
	total := 0
	for _, f := range a.Formations {
		total += f.EffectiveStrength()
	}
	return total
}

// RawStrength sums all units' raw strength.
func (a *Army) RawStrength() int {
	total := 0
	for _, f := range a.Formations {
		for _, u := range f.Units {
			total += u.RawStrength()
		}
	}
	return total
}

// RoutingFraction is the share of units currently routing.
func (a *Army) RoutingFraction() float64 {
	units := a.Units()
	if len(units) == 0 {
		return 0
	}
	routing := 0
	for _, u := range units {
		if u.Stance == StanceRouting {
			routing++
		}
	}
	return float64(routing) / float64(len(units))
}

// TakeCourier pops a carrier from the pool, false when exhausted.
func (a *Army) TakeCourier() (CombatantID, bool) {
	if len(a.CourierPool) == 0 {
		return 0, false
	}
	c := a.CourierPool[0]
	a.CourierPool = a.CourierPool[1:]
	return c, true
}
