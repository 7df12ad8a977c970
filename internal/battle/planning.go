package battle

import "sort"

// Pace is the movement speed a waypoint is traversed at. Faster paces cost
// disproportionately more fatigue.
type Pace int

const (
	PaceWalk Pace = iota
	PaceQuick
	PaceRun
	PaceCharge
)

func (p Pace) String() string {
	switch p {
	case PaceWalk:
		return "walk"
	case PaceQuick:
		return "quick"
	case PaceRun:
		return "run"
	case PaceCharge:
		return "charge"
	default:
		return "unknown"
	}
}

// SpeedMul returns hexes-per-tick scaling for this pace.
func (p Pace) SpeedMul() float64 {
	switch p {
	case PaceWalk:
		return 0.5
	case PaceRun:
		return 1.5
	case PaceCharge:
		return 2.0
	default:
		return 1.0
	}
}

// FatigueMul returns the fatigue accumulation multiplier for this pace.
func (p Pace) FatigueMul() float64 {
	switch p {
	case PaceWalk:
		return 0.5
	case PaceRun:
		return 2.0
	case PaceCharge:
		return 4.0
	default:
		return 1.0
	}
}

// WaypointBehavior tags what a unit does on reaching a waypoint.
type WaypointBehavior int

const (
	BehaviorMoveTo WaypointBehavior = iota
	BehaviorHoldAt
	BehaviorAttackFrom
	BehaviorScanFrom
	BehaviorRallyAt
)

func (b WaypointBehavior) String() string {
	switch b {
	case BehaviorMoveTo:
		return "move_to"
	case BehaviorHoldAt:
		return "hold_at"
	case BehaviorAttackFrom:
		return "attack_from"
	case BehaviorScanFrom:
		return "scan_from"
	case BehaviorRallyAt:
		return "rally_at"
	default:
		return "unknown"
	}
}

// WaitKind discriminates waypoint wait conditions.
type WaitKind int

const (
	WaitNone WaitKind = iota
	WaitDuration
	WaitGoCode
	WaitUnitArrives
	WaitEnemySighted
	WaitAttacked
)

// WaitCondition blocks waypoint advancement until it holds.
type WaitCondition struct {
	Kind     WaitKind
	Duration int    // WaitDuration: ticks to hold after arrival
	GoCode   string // WaitGoCode: go-code name
	Unit     UnitID // WaitUnitArrives: unit that must reach this waypoint
}

// Waypoint is one step of a movement plan.
type Waypoint struct {
	Position Hex
	Behavior WaypointBehavior
	Pace     Pace
	Wait     WaitCondition
}

// NewWaypoint builds a waypoint at quick pace with no wait.
func NewWaypoint(pos Hex, behavior WaypointBehavior) Waypoint {
	return Waypoint{Position: pos, Behavior: behavior, Pace: PaceQuick}
}

// WithPace returns a copy at the given pace.
func (w Waypoint) WithPace(p Pace) Waypoint {
	w.Pace = p
	return w
}

// WithWait returns a copy gated on the given condition.
func (w Waypoint) WithWait(c WaitCondition) Waypoint {
	w.Wait = c
	return w
}

// WaypointPlan is an authored waypoint sequence. Execution mutates only the
// cursor and the arrival counter, never the waypoints themselves.
type WaypointPlan struct {
	Waypoints []Waypoint
	cursor    int
	waitTicks int // ticks spent waiting at the current waypoint
	arrived   bool
}

// NewWaypointPlan builds a plan over the given waypoints.
func NewWaypointPlan(waypoints ...Waypoint) *WaypointPlan {
	return &WaypointPlan{Waypoints: waypoints}
}

// Current returns the active waypoint, false when the plan is exhausted.
func (p *WaypointPlan) Current() (Waypoint, bool) {
	if p == nil || p.cursor >= len(p.Waypoints) {
		return Waypoint{}, false
	}
	return p.Waypoints[p.cursor], true
}

// Done reports whether every waypoint has been consumed.
func (p *WaypointPlan) Done() bool {
	return p == nil || p.cursor >= len(p.Waypoints)
}

// Advance moves the cursor to the next waypoint. Returns false when the
// plan was already exhausted.
func (p *WaypointPlan) Advance() bool {
	if p.Done() {
		return false
	}
	p.cursor++
	p.waitTicks = 0
	p.arrived = false
	return true
}

// EngagementRule gates how a unit initiates or answers combat.
type EngagementRule int

const (
	EngageAggressive EngagementRule = iota // attack on sight
	EngageDefensive                        // only answer when struck
	EngageHoldFire                         // never without explicit order
	EngageSkirmish                         // engage, then withdraw
)

func (r EngagementRule) String() string {
	switch r {
	case EngageAggressive:
		return "aggressive"
	case EngageDefensive:
		return "defensive"
	case EngageHoldFire:
		return "hold_fire"
	case EngageSkirmish:
		return "skirmish"
	default:
		return "unknown"
	}
}

// AttackOnSight reports whether this rule initiates combat on spotting.
func (r EngagementRule) AttackOnSight() bool {
	return r == EngageAggressive || r == EngageSkirmish
}

// WithdrawAfterExchange reports whether the unit pulls back after one round.
func (r EngagementRule) WithdrawAfterExchange() bool {
	return r == EngageSkirmish
}

// GoCodeTriggerKind discriminates go-code trigger conditions.
type GoCodeTriggerKind int

const (
	TriggerManual GoCodeTriggerKind = iota
	TriggerAtTick
	TriggerUnitAt
	TriggerEnemyInArea
)

// GoCodeTrigger is the condition under which a go-code fires.
type GoCodeTrigger struct {
	Kind GoCodeTriggerKind
	Tick int
	Unit UnitID
	At   Hex
	Area []Hex
}

// GoCode is a named one-shot synchronization trigger. Firing is idempotent
// and visible to every subscriber from that tick onward.
type GoCode struct {
	Name        string
	Trigger     GoCodeTrigger
	Subscribers []UnitID
	Fired       bool
	FiredTick   int
}

// NewGoCode builds an unfired go-code.
func NewGoCode(name string, trigger GoCodeTrigger) *GoCode {
	return &GoCode{Name: name, Trigger: trigger, FiredTick: -1}
}

// Subscribe adds a unit, ignoring duplicates.
func (g *GoCode) Subscribe(id UnitID) {
	for _, existing := range g.Subscribers {
		if existing == id {
			return
		}
	}
	g.Subscribers = append(g.Subscribers, id)
}

// FiredFor reports whether the code is visible as fired to the given
// unit. A code with no subscribers is a general signal anyone can act on;
// a code with subscribers is visible only to them.
func (g *GoCode) FiredFor(id UnitID) bool {
	if !g.Fired {
		return false
	}
	if len(g.Subscribers) == 0 {
		return true
	}
	for _, s := range g.Subscribers {
		if s == id {
			return true
		}
	}
	return false
}

// ContingencyTriggerKind discriminates contingency triggers.
type ContingencyTriggerKind int

const (
	ContingencyUnitBreaks ContingencyTriggerKind = iota
	ContingencyCommanderDies
	ContingencyPositionLost
	ContingencyCasualtiesExceed
	ContingencyGoCodeFired
)

// ContingencyTrigger is the condition that activates a contingency.
type ContingencyTrigger struct {
	Kind     ContingencyTriggerKind
	Unit     UnitID
	Position Hex
	Fraction float64 // ContingencyCasualtiesExceed: army casualty fraction
	GoCode   string
}

// ContingencyResponseKind discriminates contingency responses.
type ContingencyResponseKind int

const (
	RespondRetreat ContingencyResponseKind = iota
	RespondRally
	RespondSignal
	RespondDispatchOrder
)

// ContingencyResponse is what happens when a contingency activates.
type ContingencyResponse struct {
	Kind   ContingencyResponseKind
	Unit   UnitID
	Route  []Hex  // RespondRetreat
	Rally  Hex    // RespondRally
	Signal string // RespondSignal: go-code to fire
	Order  *Order // RespondDispatchOrder
}

// Contingency is a pre-planned one-shot response. Once its trigger holds it
// activates exactly once and stays activated until an explicit Reset.
type Contingency struct {
	Trigger   ContingencyTrigger
	Response  ContingencyResponse
	Priority  int
	Activated bool
}

// Reset clears the activated flag so the contingency can fire again.
func (c *Contingency) Reset() {
	c.Activated = false
}

// BattlePlan is one side's authored plan: per-unit waypoint plans and
// engagement rules, shared go-codes, and priority-ordered contingencies.
type BattlePlan struct {
	Side          Side
	WaypointPlans map[UnitID]*WaypointPlan
	Engagement    map[UnitID]EngagementRule
	GoCodes       []*GoCode
	Contingencies []*Contingency
}

// NewBattlePlan builds an empty plan for a side.
func NewBattlePlan(side Side) *BattlePlan {
	return &BattlePlan{
		Side:          side,
		WaypointPlans: make(map[UnitID]*WaypointPlan),
		Engagement:    make(map[UnitID]EngagementRule),
	}
}

// SetPlan assigns a unit's waypoint plan.
func (p *BattlePlan) SetPlan(id UnitID, plan *WaypointPlan) {
	p.WaypointPlans[id] = plan
}

// SetEngagement assigns a unit's engagement rule.
func (p *BattlePlan) SetEngagement(id UnitID, rule EngagementRule) {
	p.Engagement[id] = rule
}

// EngagementFor returns the unit's rule, defaulting to Defensive.
func (p *BattlePlan) EngagementFor(id UnitID) EngagementRule {
	if rule, ok := p.Engagement[id]; ok {
		return rule
	}
	return EngageDefensive
}

// AddGoCode registers a go-code.
func (p *BattlePlan) AddGoCode(g *GoCode) {
	p.GoCodes = append(p.GoCodes, g)
}

// GoCode looks up a go-code by name, nil when unknown.
func (p *BattlePlan) GoCode(name string) *GoCode {
	for _, g := range p.GoCodes {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// subscribeWaits registers the unit with every go-code its waypoint plan
// waits on, so the fired flag becomes visible to it.
func (p *BattlePlan) subscribeWaits(u *Unit) {
	plan := p.WaypointPlans[u.ID]
	if plan == nil {
		return
	}
	for _, wp := range plan.Waypoints {
		if wp.Wait.Kind != WaitGoCode {
			continue
		}
		if g := p.GoCode(wp.Wait.GoCode); g != nil {
			g.Subscribe(u.ID)
		}
	}
}

// AddContingency registers a contingency, keeping the list ordered by
// descending priority. Registration order breaks ties.
func (p *BattlePlan) AddContingency(c *Contingency) {
	p.Contingencies = append(p.Contingencies, c)
	sort.SliceStable(p.Contingencies, func(i, j int) bool {
		return p.Contingencies[i].Priority > p.Contingencies[j].Priority
	})
}
