package battle

import (
	"fmt"
	"math/rand"
)

// Phase is the coarse lifecycle of a battle. Phases only move forward.
type Phase int

const (
	PhasePlanning Phase = iota
	PhaseDeployment
	PhaseActive
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhasePlanning:
		return "planning"
	case PhaseDeployment:
		return "deployment"
	case PhaseActive:
		return "active"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// engagement is one active close-combat pairing. Pressure is the
// attacker's local advantage and drifts with the casualty balance.
type engagement struct {
	attacker  UnitID
	defender  UnitID
	side      Side // attacker's side
	pressure  float64
	started   int
	exchanges int
	shock     ShockType
	hasShock  bool
}

// formationRef identifies a formation across both armies. Names are only
// unique within a side.
type formationRef struct {
	side Side
	name string
}

// BattleState owns the battlefield, both armies and plans, the courier
// subsystem and the event log, and advances them one tick at a time.
// All randomness flows from the single seeded generator, so a given
// (seed, composition, plans, external orders) tuple replays identically.
type BattleState struct {
	Field      *Field
	Red        *Army
	Blue       *Army
	RedPlan    *BattlePlan
	BluePlan   *BattlePlan
	RedVision  *VisionMap
	BlueVision *VisionMap
	Couriers   *CourierSystem
	Log        *EventLog
	Phase      Phase
	Result     Result
	Objectives []Hex

	seed    int64
	rng     *rand.Rand
	tick    int
	sides   map[UnitID]Side
	holders map[Hex]Side // objective -> last side to hold it

	engagements []*engagement
	arrived     []*Order              // deliveries collected this tick
	charged     map[UnitID]bool       // units that moved at charge pace this tick
	struck      map[UnitID]bool       // units that took casualties this tick
	prevBroken  map[formationRef]bool // broken last tick, keyed per side

	focusUnit UnitID
	hasFocus  bool
}

// NewBattleState creates a battle in the Planning phase.
func NewBattleState(seed int64, field *Field) *BattleState {
	b := &BattleState{
		Field:      field,
		RedPlan:    NewBattlePlan(SideRed),
		BluePlan:   NewBattlePlan(SideBlue),
		RedVision:  NewVisionMap(SideRed),
		BlueVision: NewVisionMap(SideBlue),
		Couriers:   NewCourierSystem(),
		Log:        NewEventLog(),
		Phase:      PhasePlanning,
		seed:       seed,
		rng:        rand.New(rand.NewSource(seed)), // #nosec G404 -- simulation, must be reproducible
		sides:      make(map[UnitID]Side),
		holders:    make(map[Hex]Side),
		prevBroken: make(map[formationRef]bool),
	}
	b.Log.Add(0, "--", "--", "phase", "enter", PhasePlanning.String(), 0)
	return b
}

// Seed returns the seed this battle was created with.
func (b *BattleState) Seed() int64 {
	return b.seed
}

// CurrentTick returns the tick counter.
func (b *BattleState) CurrentTick() int {
	return b.tick
}

// SetObjectives registers scripted objective hexes.
func (b *BattleState) SetObjectives(objectives ...Hex) {
	b.Objectives = objectives
}

// SetFocus marks a unit as the point of interest for LOD selection.
func (b *BattleState) SetFocus(id UnitID) {
	b.focusUnit = id
	b.hasFocus = true
}

// Deploy installs both armies and moves to the Deployment phase. Unit
// positions become occupants and the plans' engagement rules are copied
// onto units.
func (b *BattleState) Deploy(red, blue *Army) error {
	if b.Phase != PhasePlanning {
		return fmt.Errorf("deploy: battle is in phase %s, want %s", b.Phase, PhasePlanning)
	}
	b.Red = red
	b.Blue = blue
	for _, a := range []*Army{red, blue} {
		plan := b.planFor(a.Side)
		for _, u := range a.Units() {
			b.sides[u.ID] = a.Side
			b.Field.PlaceOccupant(u.Position, u.ID)
			u.Plan = plan.WaypointPlans[u.ID]
			u.Engagement = plan.EngagementFor(u.ID)
			plan.subscribeWaits(u)
		}
	}
	b.setPhase(PhaseDeployment)
	return nil
}

// Begin moves from Deployment to Active. The first Step after Begin is
// tick 1.
func (b *BattleState) Begin() error {
	if b.Phase != PhaseDeployment {
		return fmt.Errorf("begin: battle is in phase %s, want %s", b.Phase, PhaseDeployment)
	}
	b.stepVisibility()
	b.setPhase(PhaseActive)
	return nil
}

func (b *BattleState) setPhase(p Phase) {
	b.Phase = p
	b.Log.Add(b.tick, "--", "--", "phase", "enter", p.String(), 0)
}

// IssueOrder hands a commander's order to the courier subsystem. The
// courier rides from the army's headquarters to the target unit's current
// position. With no carrier left in the pool the order dies on the desk.
func (b *BattleState) IssueOrder(side Side, order *Order) (CourierID, bool) {
	army := b.armyFor(side)
	target := army.Unit(order.Target)
	if target == nil {
		return 0, false
	}
	carrier, ok := army.TakeCourier()
	if !ok {
		b.Log.Add(b.tick, target.Name, side.String(), "courier", "pool_exhausted", order.Type.String(), 0)
		return 0, false
	}
	id := b.Couriers.Dispatch(carrier, side, order, army.HQ, target.Position)
	b.Log.Add(b.tick, target.Name, side.String(), "courier", "dispatched",
		fmt.Sprintf("%s from %s to %s", order.Type, army.HQ, target.Position), float64(id))
	return id, true
}

// FireGoCode manually fires a named go-code for a side.
func (b *BattleState) FireGoCode(side Side, name string) bool {
	g := b.planFor(side).GoCode(name)
	if g == nil || g.Fired {
		return false
	}
	g.Fired = true
	g.FiredTick = b.tick
	b.Log.Add(b.tick, "--", side.String(), "gocode", "fired", name, 0)
	return true
}

// Step advances the battle exactly one tick. Calling Step on a finished
// battle is a no-op; calling it before Begin does nothing either. The
// sub-step order is fixed and is the determinism contract.
func (b *BattleState) Step() {
	if b.Phase != PhaseActive {
		return
	}
	b.tick++
	b.charged = make(map[UnitID]bool)
	b.struck = make(map[UnitID]bool)

	b.stepCouriers()
	b.stepOrders()
	b.stepMovementAll()
	b.stepVisibility()
	b.stepContacts()
	b.stepCombat()
	b.stepMorale()
	b.stepTriggers()
	b.stepObjectives()
	b.stepTermination()
}

// Run steps until the battle finishes or maxTicks elapse, returning the
// result so far.
func (b *BattleState) Run(maxTicks int) Result {
	for i := 0; i < maxTicks && b.Phase == PhaseActive; i++ {
		b.Step()
	}
	return b.Result
}

// --- tick sub-steps ---

func (b *BattleState) stepCouriers() {
	b.Couriers.AdvanceAll()

	intercepted, lost := b.Couriers.CheckInterception(func(s Side) []*Unit {
		return b.armyFor(s.Opponent()).Units()
	}, b.rng)
	for _, c := range intercepted {
		b.Log.Add(b.tick, b.unitName(c.Order.Target), c.Side.String(), "courier", "intercepted",
			fmt.Sprintf("%s at %s", c.Order.Type, c.Position), float64(c.ID))
	}
	for _, c := range lost {
		b.Log.Add(b.tick, b.unitName(c.Order.Target), c.Side.String(), "courier", "lost",
			fmt.Sprintf("%s at %s", c.Order.Type, c.Position), float64(c.ID))
	}

	b.arrived = b.Couriers.CollectArrived()
}

// stepOrders applies delivered orders. When several orders for the same
// unit arrive together the newest issue tick wins, and anything older
// than an already-applied order is discarded: last-effective-order-wins,
// decided here and not by delivery races.
func (b *BattleState) stepOrders() {
	newest := make(map[UnitID]*Order)
	var targets []UnitID
	for _, o := range b.arrived {
		cur, ok := newest[o.Target]
		if !ok {
			targets = append(targets, o.Target)
		}
		if !ok || o.IssueTick > cur.IssueTick {
			newest[o.Target] = o
		}
	}
	for _, id := range targets {
		o := newest[id]
		u := b.unit(id)
		if u == nil {
			continue // unknown target, tolerated
		}
		if o.IssueTick < u.lastOrderTick {
			b.Log.Add(b.tick, u.Name, b.sideOf(u).String(), "order", "superseded", o.Type.String(), 0)
			continue
		}
		u.lastOrderTick = o.IssueTick
		b.applyOrder(u, o)
		b.Log.Add(b.tick, u.Name, b.sideOf(u).String(), "order", "applied", o.Type.String(), 0)
	}
	b.arrived = nil
}

func (b *BattleState) applyOrder(u *Unit, o *Order) {
	switch o.Type {
	case OrderMoveTo:
		u.Plan = NewWaypointPlan(NewWaypoint(o.Destination, BehaviorMoveTo))
		u.hasAttackTarget = false
		u.withdrawing = false
	case OrderAttack:
		u.attackTarget = o.AttackUnit
		u.hasAttackTarget = true
		u.Engagement = EngageAggressive
	case OrderDefend:
		u.Plan = NewWaypointPlan(NewWaypoint(o.Destination, BehaviorHoldAt))
		u.hasAttackTarget = false
	case OrderRetreat:
		wps := make([]Waypoint, 0, len(o.Route))
		for _, h := range o.Route {
			wps = append(wps, NewWaypoint(h, BehaviorMoveTo).WithPace(PaceRun))
		}
		u.Plan = NewWaypointPlan(wps...)
		u.Engagement = EngageHoldFire
		u.hasAttackTarget = false
	case OrderChangeFormation:
		u.Shape = o.Shape
	case OrderChangeEngagement:
		u.Engagement = o.Engagement
	case OrderExecuteGoCode:
		b.FireGoCode(b.sideOf(u), o.GoCode)
	case OrderRally:
		u.RallyPoint = u.Position
		u.HasRallyPoint = true
	case OrderHold:
		u.Plan = nil
		u.hasAttackTarget = false
		if u.Stance == StanceMoving {
			u.Stance = StanceFormed
		}
	}
}

func (b *BattleState) stepMovementAll() {
	for _, u := range b.allUnits() {
		res := b.stepMovement(u)
		if res.moved {
			b.faceToward(u, res.from, res.to)
			if res.pace == PaceCharge {
				b.charged[u.ID] = true
			}
		}
	}
}

// faceToward updates a unit's facing to its direction of travel.
func (b *BattleState) faceToward(u *Unit, from, to Hex) {
	if d, ok := directionBetween(from, to); ok {
		u.Facing = Facing(d)
	}
}

// directionBetween returns the neighbor index from a to an adjacent b.
func directionBetween(a, c Hex) (int, bool) {
	for i, n := range a.Neighbors() {
		if n == c {
			return i, true
		}
	}
	return 0, false
}

func (b *BattleState) stepVisibility() {
	redUnits := b.Red.Units()
	blueUnits := b.Blue.Units()
	b.RedVision.Recompute(b.Field, redUnits, blueUnits)
	b.BlueVision.Recompute(b.Field, blueUnits, redUnits)
}

// stepContacts rebuilds the active engagement list. Contact requires
// adjacency plus an initiator: attack-on-sight rules, an explicit attack
// order, or a charge arriving this tick. Existing pairs persist so their
// pressure carries across ticks.
func (b *BattleState) stepContacts() {
	existing := make(map[[2]UnitID]*engagement, len(b.engagements))
	for _, e := range b.engagements {
		existing[[2]UnitID{e.attacker, e.defender}] = e
	}
	b.engagements = b.engagements[:0]

	for _, red := range b.Red.Units() {
		for _, blue := range b.Blue.Units() {
			if !red.CanFight() || !blue.CanFight() {
				continue
			}
			if red.Position.Distance(blue.Position) > 1 {
				continue
			}
			if e, ok := existing[[2]UnitID{red.ID, blue.ID}]; ok {
				b.engagements = append(b.engagements, e)
				continue
			}
			if e, ok := existing[[2]UnitID{blue.ID, red.ID}]; ok {
				b.engagements = append(b.engagements, e)
				continue
			}

			attacker, defender, ok := b.pickInitiator(red, blue)
			if !ok {
				continue
			}
			e := &engagement{
				attacker: attacker.ID,
				defender: defender.ID,
				side:     b.sideOf(attacker),
				started:  b.tick,
			}
			if b.charged[attacker.ID] {
				e.shock = b.shockTypeFor(attacker, defender)
				e.hasShock = true
			}
			b.engagements = append(b.engagements, e)

			b.enterContact(attacker)
			b.enterContact(defender)
			b.Log.Add(b.tick, attacker.Name, e.side.String(), "combat", "engagement_start",
				fmt.Sprintf("vs %s at %s", defender.Name, defender.Position), 0)
		}
	}
}

// pickInitiator decides who starts the fight, charge beats rule-driven
// initiative. Two passive units stand off without combat.
func (b *BattleState) pickInitiator(red, blue *Unit) (attacker, defender *Unit, ok bool) {
	redInit := b.initiates(red, blue)
	blueInit := b.initiates(blue, red)
	switch {
	case redInit && blueInit:
		if b.charged[blue.ID] && !b.charged[red.ID] {
			return blue, red, true
		}
		return red, blue, true
	case redInit:
		return red, blue, true
	case blueInit:
		return blue, red, true
	default:
		return nil, nil, false
	}
}

func (b *BattleState) initiates(u, enemy *Unit) bool {
	if b.charged[u.ID] {
		return true
	}
	if u.hasAttackTarget && u.attackTarget == enemy.ID {
		return true
	}
	return u.Engagement.AttackOnSight()
}

// enterContact moves a unit into the Engaged stance where its current
// stance allows it. Stress states are left alone.
func (b *BattleState) enterContact(u *Unit) {
	switch u.Stance {
	case StanceFormed, StanceMoving, StancePatrol, StanceAlert:
		u.Stance = StanceEngaged
	}
}

// shockTypeFor classifies a charge by approach bearing relative to the
// defender's facing, or as an ambush when the attacker was unseen.
func (b *BattleState) shockTypeFor(attacker, defender *Unit) ShockType {
	defSide := b.sideOf(defender)
	if _, seen := b.visionFor(defSide).VisibleEnemy(attacker.ID); !seen {
		return ShockAmbush
	}
	d, ok := directionBetween(defender.Position, attacker.Position)
	if !ok {
		return ShockCharge
	}
	diff := abs(d - int(defender.Facing))
	if diff > 3 {
		diff = 6 - diff
	}
	switch diff {
	case 3:
		return ShockRear
	case 2:
		return ShockFlank
	default:
		return ShockCharge
	}
}

func (b *BattleState) stepCombat() {
	remaining := b.engagements[:0]
	for _, e := range b.engagements {
		attacker := b.unit(e.attacker)
		defender := b.unit(e.defender)
		if attacker == nil || defender == nil || !attacker.CanFight() || !defender.CanFight() {
			continue
		}

		if e.hasShock && e.exchanges == 0 {
			b.resolveShock(e, attacker, defender)
			if !defender.CanFight() {
				continue
			}
		}

		flags := ExchangeFlags{
			DefenderFlanked:    b.adjacentEnemies(defender) >= 2,
			DefenderSurrounded: b.adjacentEnemies(defender) >= 4,
		}
		res := ResolveExchange(attacker, defender, e.pressure, flags)
		e.exchanges++

		lod := b.lodFor(attacker, defender)
		defApplied := defender.ApplyCasualties(res.DefenderCasualties, b.tick)
		attApplied := attacker.ApplyCasualties(res.AttackerCasualties, b.tick)
		attacker.AddStress(res.AttackerStress)
		defender.AddStress(res.DefenderStress)
		attacker.Fatigue = clamp01(attacker.Fatigue + combatFatigue)
		defender.Fatigue = clamp01(defender.Fatigue + combatFatigue)
		if defApplied > 0 {
			b.struck[defender.ID] = true
			b.checkOfficerLoss(defender, defApplied)
		}
		if attApplied > 0 {
			b.struck[attacker.ID] = true
			b.checkOfficerLoss(attacker, attApplied)
		}

		// Pressure follows the casualty balance.
		switch {
		case defApplied > attApplied:
			e.pressure = clampPressure(e.pressure + 0.05)
		case attApplied > defApplied:
			e.pressure = clampPressure(e.pressure - 0.05)
		}

		b.Log.Add(b.tick, attacker.Name, e.side.String(), "combat", "exchange",
			fmt.Sprintf("vs %s: %d inflicted, %d taken (%s)", defender.Name, defApplied, attApplied, lod), e.pressure)

		if b.maybeWithdraw(attacker, defender) || b.maybeWithdraw(defender, attacker) {
			continue // pair dissolves; contacts rebuild next tick
		}
		remaining = append(remaining, e)
	}
	b.engagements = remaining

	b.stepVolleys()
}

func (b *BattleState) resolveShock(e *engagement, attacker, defender *Unit) {
	res := ResolveShock(defender, e.shock)
	applied := defender.ApplyCasualties(res.Casualties, b.tick)
	defender.AddStress(res.StressSpike)
	if applied > 0 {
		b.struck[defender.ID] = true
		b.checkOfficerLoss(defender, applied)
	}
	b.Log.Add(b.tick, attacker.Name, e.side.String(), "shock", e.shock.String(),
		fmt.Sprintf("vs %s: %d casualties, spike %.2f", defender.Name, applied, res.StressSpike), float64(applied))

	if res.BreakCheck {
		if stance, changed := defender.moraleTransition(); changed {
			b.logStanceBreak(defender, stance)
		}
	}
}

// checkOfficerLoss rolls leader survival after a bloody exchange. Losing
// the officer costs extra stress on top of the casualties themselves.
func (b *BattleState) checkOfficerLoss(u *Unit, casualties int) {
	if !u.HasLeader || u.EffectiveStrength() == 0 {
		return
	}
	risk := float64(casualties) / float64(u.EffectiveStrength()+casualties)
	if b.rng.Float64() < risk*0.1 {
		u.HasLeader = false
		u.AddStress(officerLossStress)
		b.Log.Add(b.tick, u.Name, b.sideOf(u).String(), "morale", "officer_lost", "leader struck down", 0)
	}
}

// maybeWithdraw pulls a skirmishing unit back after the exchange.
func (b *BattleState) maybeWithdraw(u, enemy *Unit) bool {
	if !u.Engagement.WithdrawAfterExchange() || !u.CanFight() {
		return false
	}
	d, ok := directionBetween(enemy.Position, u.Position)
	if !ok {
		return false
	}
	dest := u.Position.Neighbor(d).Neighbor(d)
	if !b.Field.InBounds(dest) {
		dest = u.Position.Neighbor(d)
	}
	if !b.Field.InBounds(dest) {
		return false
	}
	u.withdrawDest = dest
	u.withdrawing = true
	if u.Stance == StanceEngaged {
		u.Stance = StanceMoving
	}
	b.Log.Add(b.tick, u.Name, b.sideOf(u).String(), "combat", "withdraw",
		fmt.Sprintf("falls back to %s", dest), 0)
	return true
}

// stepVolleys lets unengaged ranged units shoot the nearest visible enemy
// in range and line of sight.
func (b *BattleState) stepVolleys() {
	inMelee := make(map[UnitID]bool, len(b.engagements)*2)
	for _, e := range b.engagements {
		inMelee[e.attacker] = true
		inMelee[e.defender] = true
	}

	for _, u := range b.allUnits() {
		profile := u.Profile()
		if !profile.Ranged || inMelee[u.ID] || !u.CanFight() {
			continue
		}
		if u.Engagement == EngageHoldFire {
			continue
		}
		target := b.nearestVisibleEnemy(u, profile.MissileRange)
		if target == nil {
			continue
		}
		dist := u.Position.Distance(target.Position)
		if !b.Field.LineOfSight(u.Position, target.Position) {
			continue
		}
		cover := 0.0
		if tile, ok := b.Field.At(target.Position); ok {
			cover = tile.Cover()
		}
		res := ResolveVolley(u, target, dist, cover)
		if res.Casualties == 0 && res.Stress == 0 {
			continue
		}
		applied := target.ApplyCasualties(res.Casualties, b.tick)
		target.AddStress(res.Stress)
		if applied > 0 {
			b.struck[target.ID] = true
			b.checkOfficerLoss(target, applied)
		}
		b.Log.Add(b.tick, u.Name, b.sideOf(u).String(), "combat", "volley",
			fmt.Sprintf("vs %s at range %d: %d casualties", target.Name, dist, applied), float64(applied))
	}
}

func (b *BattleState) nearestVisibleEnemy(u *Unit, maxRange int) *Unit {
	vision := b.visionFor(b.sideOf(u))
	enemyArmy := b.enemyArmyOf(u)
	var best *Unit
	bestDist := maxRange + 1
	for _, e := range enemyArmy.Units() {
		if e.EffectiveStrength() == 0 {
			continue
		}
		if _, seen := vision.VisibleEnemy(e.ID); !seen {
			continue
		}
		d := u.Position.Distance(e.Position)
		if d < bestDist {
			best = e
			bestDist = d
		}
	}
	return best
}

// stepMorale applies stress-driven stance transitions, rout contagion,
// rally progress, stress decay and the patrol/alert watch states.
func (b *BattleState) stepMorale() {
	engaged := make(map[UnitID]bool, len(b.engagements)*2)
	for _, e := range b.engagements {
		engaged[e.attacker] = true
		engaged[e.defender] = true
	}

	for _, a := range []*Army{b.Red, b.Blue} {
		for _, f := range a.Formations {
			for _, u := range f.Units {
				if u.EffectiveStrength() == 0 {
					continue
				}
				contact := engaged[u.ID] || b.struck[u.ID]

				// An engagement that dissolved releases the survivor.
				if u.Stance == StanceEngaged && !engaged[u.ID] {
					u.Stance = StanceFormed
				}

				switch u.Stance {
				case StanceRouting, StanceRallying:
					if stance, changed := u.rallyStep(contact); changed {
						b.logRally(u, stance)
					}
				default:
					if stance, changed := u.moraleTransition(); changed {
						b.logStanceBreak(u, stance)
						if stance == StanceRouting {
							if !u.HasRallyPoint {
								u.RallyPoint = a.HQ
								u.HasRallyPoint = true
							}
							for _, hit := range propagateRoutContagion(u, a.Units()) {
								b.Log.Add(b.tick, hit.Name, a.Side.String(), "morale", "contagion",
									fmt.Sprintf("shaken by %s breaking", u.Name), contagionStress)
							}
						}
					}
					if !contact {
						u.recoverStress()
						b.updateWatch(u)
					}
				}
			}

			ref := formationRef{a.Side, f.Name}
			broken := f.Broken()
			if broken && !b.prevBroken[ref] {
				b.Log.Add(b.tick, "--", a.Side.String(), "morale", "formation_broken", f.Name, 0)
			}
			b.prevBroken[ref] = broken
		}
	}
}

// updateWatch handles the patrol/alert watch stances for idle units on a
// scan waypoint. An alerted unit stands down to patrol when the enemy
// slips out of view.
func (b *BattleState) updateWatch(u *Unit) {
	onScan := false
	if wp, ok := u.Plan.Current(); ok {
		onScan = wp.Behavior == BehaviorScanFrom && u.Position == wp.Position
	}

	switch u.Stance {
	case StanceFormed:
		if onScan {
			u.Stance = StancePatrol
		}
	case StancePatrol:
		if b.enemyVisibleNear(u, visionRange(u, b.Field)) {
			u.Stance = StanceAlert
			b.Log.Add(b.tick, u.Name, b.sideOf(u).String(), "vision", "alert", "enemy sighted on watch", 0)
		}
	case StanceAlert:
		if !b.enemyVisibleNear(u, visionRange(u, b.Field)) {
			u.Stance = StancePatrol
		}
	}
}

func (b *BattleState) enemyVisibleNear(u *Unit, r int) bool {
	vision := b.visionFor(b.sideOf(u))
	for _, e := range b.enemyArmyOf(u).Units() {
		if e.EffectiveStrength() == 0 {
			continue
		}
		if _, seen := vision.VisibleEnemy(e.ID); !seen {
			continue
		}
		if u.Position.Distance(e.Position) <= r {
			return true
		}
	}
	return false
}

func (b *BattleState) logStanceBreak(u *Unit, stance Stance) {
	key := "shaken"
	if stance == StanceRouting {
		key = "broke"
	}
	b.Log.Add(b.tick, u.Name, b.sideOf(u).String(), "morale", key,
		fmt.Sprintf("stress %.2f vs threshold %.2f", u.Stress, u.BreakThreshold()), u.Stress)
}

func (b *BattleState) logRally(u *Unit, stance Stance) {
	switch stance {
	case StanceRallying:
		b.Log.Add(b.tick, u.Name, b.sideOf(u).String(), "morale", "rally_begin",
			fmt.Sprintf("reforming at %s", u.RallyPoint), 0)
	case StanceFormed:
		b.Log.Add(b.tick, u.Name, b.sideOf(u).String(), "morale", "rallied",
			fmt.Sprintf("back in order at %s", u.Position), 0)
	case StanceRouting:
		b.Log.Add(b.tick, u.Name, b.sideOf(u).String(), "morale", "rally_broken",
			"contact during rally", 0)
	}
}

// stepTriggers evaluates go-codes then contingencies for both plans.
func (b *BattleState) stepTriggers() {
	for _, plan := range []*BattlePlan{b.RedPlan, b.BluePlan} {
		for _, g := range plan.GoCodes {
			if g.Fired || !b.goCodeTriggered(plan.Side, g) {
				continue
			}
			g.Fired = true
			g.FiredTick = b.tick
			b.Log.Add(b.tick, "--", plan.Side.String(), "gocode", "fired", g.Name, 0)
		}
		for _, c := range plan.Contingencies {
			if c.Activated || !b.contingencyTriggered(plan.Side, c) {
				continue
			}
			c.Activated = true
			b.Log.Add(b.tick, "--", plan.Side.String(), "contingency", "activated",
				fmt.Sprintf("priority %d", c.Priority), float64(c.Priority))
			b.applyContingency(plan.Side, c)
		}
	}
}

func (b *BattleState) goCodeTriggered(side Side, g *GoCode) bool {
	switch g.Trigger.Kind {
	case TriggerAtTick:
		return b.tick >= g.Trigger.Tick
	case TriggerUnitAt:
		u := b.unit(g.Trigger.Unit)
		return u != nil && u.Position == g.Trigger.At
	case TriggerEnemyInArea:
		vision := b.visionFor(side)
		for _, e := range b.armyFor(side.Opponent()).Units() {
			pos, seen := vision.VisibleEnemy(e.ID)
			if !seen {
				continue
			}
			for _, h := range g.Trigger.Area {
				if pos == h {
					return true
				}
			}
		}
		return false
	default: // manual
		return false
	}
}

func (b *BattleState) contingencyTriggered(side Side, c *Contingency) bool {
	switch c.Trigger.Kind {
	case ContingencyUnitBreaks:
		u := b.unit(c.Trigger.Unit)
		return u != nil && u.Stance == StanceRouting
	case ContingencyCommanderDies:
		for _, u := range b.armyFor(side).Units() {
			if u.Category == Command && u.EffectiveStrength() == 0 {
				return true
			}
		}
		return false
	case ContingencyPositionLost:
		tile, ok := b.Field.At(c.Trigger.Position)
		if !ok {
			return false
		}
		for _, id := range tile.Occupants {
			if b.sides[id] == side.Opponent() {
				return true
			}
		}
		return false
	case ContingencyCasualtiesExceed:
		a := b.armyFor(side)
		raw := a.RawStrength()
		if raw == 0 {
			return false
		}
		lost := float64(raw-a.EffectiveStrength()) / float64(raw)
		return lost > c.Trigger.Fraction
	case ContingencyGoCodeFired:
		g := b.planFor(side).GoCode(c.Trigger.GoCode)
		return g != nil && g.Fired
	default:
		return false
	}
}

// applyContingency executes a pre-briefed response. Units know their own
// contingencies, so responses act directly instead of riding a courier.
func (b *BattleState) applyContingency(side Side, c *Contingency) {
	switch c.Response.Kind {
	case RespondRetreat:
		if u := b.unit(c.Response.Unit); u != nil {
			b.applyOrder(u, RetreatOrder(u.ID, c.Response.Route, b.tick))
		}
	case RespondRally:
		if u := b.unit(c.Response.Unit); u != nil {
			u.RallyPoint = c.Response.Rally
			u.HasRallyPoint = true
		}
	case RespondSignal:
		b.FireGoCode(side, c.Response.Signal)
	case RespondDispatchOrder:
		if c.Response.Order != nil {
			order := *c.Response.Order
			order.IssueTick = b.tick
			b.IssueOrder(side, &order)
		}
	}
}

// stepObjectives records objective captures.
func (b *BattleState) stepObjectives() {
	for _, obj := range b.Objectives {
		tile, ok := b.Field.At(obj)
		if !ok || len(tile.Occupants) == 0 {
			continue
		}
		side, contested := b.soleHolder(tile)
		if contested {
			continue
		}
		if prev, held := b.holders[obj]; !held || prev != side {
			b.holders[obj] = side
			b.Log.Add(b.tick, "--", side.String(), "outcome", "objective_taken", obj.String(), 0)
		}
	}
}

func (b *BattleState) soleHolder(tile *Tile) (Side, bool) {
	var side Side
	seen := false
	for _, id := range tile.Occupants {
		u := b.unit(id)
		if u == nil || !u.CanFight() {
			continue
		}
		s := b.sides[id]
		if seen && s != side {
			return 0, true // contested
		}
		side = s
		seen = true
	}
	if !seen {
		return 0, true
	}
	return side, false
}

func (b *BattleState) stepTermination() {
	res, over := EvaluateTermination(b.tick, b.Red, b.Blue)
	if !over {
		return
	}
	b.Result = res
	b.Log.Add(b.tick, "--", "--", "outcome", "battle_end", res.Description, float64(res.EndTick))
	b.setPhase(PhaseFinished)
}

// --- lookups ---

func (b *BattleState) allUnits() []*Unit {
	units := b.Red.Units()
	return append(units, b.Blue.Units()...)
}

func (b *BattleState) unit(id UnitID) *Unit {
	if u := b.Red.Unit(id); u != nil {
		return u
	}
	return b.Blue.Unit(id)
}

func (b *BattleState) unitName(id UnitID) string {
	if u := b.unit(id); u != nil {
		return u.Name
	}
	return "--"
}

func (b *BattleState) sideOf(u *Unit) Side {
	return b.sides[u.ID]
}

func (b *BattleState) armyFor(side Side) *Army {
	if side == SideRed {
		return b.Red
	}
	return b.Blue
}

func (b *BattleState) enemyArmyOf(u *Unit) *Army {
	return b.armyFor(b.sideOf(u).Opponent())
}

func (b *BattleState) planFor(side Side) *BattlePlan {
	if side == SideRed {
		return b.RedPlan
	}
	return b.BluePlan
}

func (b *BattleState) visionFor(side Side) *VisionMap {
	if side == SideRed {
		return b.RedVision
	}
	return b.BlueVision
}

// adjacentEnemies counts distinct enemy fighting units adjacent to u.
func (b *BattleState) adjacentEnemies(u *Unit) int {
	n := 0
	for _, e := range b.enemyArmyOf(u).Units() {
		if !e.CanFight() {
			continue
		}
		if u.Position.Distance(e.Position) == 1 {
			n++
		}
	}
	return n
}

// lodFor picks the resolution granularity for one engagement.
func (b *BattleState) lodFor(attacker, defender *Unit) LOD {
	focused := b.hasFocus && (attacker.ID == b.focusUnit || defender.ID == b.focusUnit)
	nearObjective := false
	for _, obj := range b.Objectives {
		if defender.Position.Distance(obj) <= 5 || attacker.Position.Distance(obj) <= 5 {
			nearObjective = true
			break
		}
	}
	total := attacker.EffectiveStrength() + defender.EffectiveStrength()
	return SelectLOD(total, focused, nearObjective)
}

func clampPressure(p float64) float64 {
	if p > 1 {
		return 1
	}
	if p < -1 {
		return -1
	}
	return p
}
