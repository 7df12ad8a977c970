package battle

// Movement constants.
const (
	moveFatiguePerTick = 0.001  // scaled by pace fatigue multiplier
	restRecovery       = 0.0002 // fatigue recovered per stationary tick
	marchCohesionDrift = 0.001  // cohesion lost per tick at run or charge
	holdCohesionGain   = 0.0005 // cohesion regained per stationary tick
)

// moveResult describes what a unit's movement step did.
type moveResult struct {
	moved   bool
	from    Hex
	to      Hex
	pace    Pace
	arrived bool // reached the current waypoint this tick
}

// stepMovement advances one unit along its current objective for one tick.
// Routing units ignore their plan and run for the rally point. Occupant
// lists are written only here.
func (b *BattleState) stepMovement(u *Unit) moveResult {
	if u.EffectiveStrength() == 0 {
		return moveResult{}
	}

	if u.Stance == StanceRouting {
		if !u.HasRallyPoint || u.Position == u.RallyPoint {
			return moveResult{}
		}
		return b.moveToward(u, u.RallyPoint, PaceRun)
	}
	if u.Stance == StanceRallying || u.Stance == StanceEngaged {
		return moveResult{}
	}

	// A skirmish fallback preempts the authored plan without rewriting it.
	if u.withdrawing {
		if u.Position == u.withdrawDest {
			u.withdrawing = false
		} else {
			res := b.moveToward(u, u.withdrawDest, PaceQuick)
			if u.Position == u.withdrawDest {
				u.withdrawing = false
			}
			return res
		}
	}

	// An attack order drives the unit onto its target's last known
	// position until the two stand adjacent.
	if u.hasAttackTarget {
		if res, handled := b.pursueAttackTarget(u); handled {
			return res
		}
	}

	wp, ok := u.Plan.Current()
	if !ok {
		u.restTick()
		return moveResult{}
	}

	if u.Position == wp.Position {
		b.handleWaypointArrival(u, wp)
		u.restTick()
		return moveResult{}
	}

	res := b.moveToward(u, wp.Position, wp.Pace)
	if res.moved && u.Position == wp.Position {
		res.arrived = true
		if u.Stance == StanceMoving {
			u.Stance = StanceFormed
		}
	} else if res.moved && u.Stance == StanceFormed {
		u.Stance = StanceMoving
	}
	return res
}

// pursueAttackTarget closes on an ordered attack target at charge pace.
// Returns handled=false when the target is gone or never sighted, letting
// the authored plan resume.
func (b *BattleState) pursueAttackTarget(u *Unit) (moveResult, bool) {
	enemy := b.enemyArmyOf(u).Unit(u.attackTarget)
	if enemy == nil || enemy.EffectiveStrength() == 0 {
		u.hasAttackTarget = false
		return moveResult{}, false
	}
	pos, seen := b.visionFor(b.sideOf(u)).VisibleEnemy(u.attackTarget)
	if !seen {
		return moveResult{}, false
	}
	if u.Position.Distance(pos) <= 1 {
		return moveResult{}, true // contact step takes over
	}
	return b.moveToward(u, pos, PaceCharge), true
}

// moveToward accumulates fractional movement toward dest and consumes at
// most one hex per tick. Impassable or absent next hexes stall the unit in
// place; a malformed plan is tolerated, never fatal.
func (b *BattleState) moveToward(u *Unit, dest Hex, pace Pace) moveResult {
	profile := u.Profile()

	tile, ok := b.Field.At(u.Position)
	cost := 1.0
	if ok {
		cost = tile.MoveCost()
	}
	u.moveProgress += pace.SpeedMul() * profile.SpeedMul / cost
	u.Fatigue = clamp01(u.Fatigue + moveFatiguePerTick*pace.FatigueMul())
	if pace == PaceRun || pace == PaceCharge {
		u.Cohesion = clamp01(u.Cohesion - marchCohesionDrift)
	}

	if u.moveProgress < 1.0 {
		return moveResult{}
	}
	u.moveProgress -= 1.0

	line := u.Position.LineTo(dest)
	if len(line) < 2 {
		return moveResult{}
	}
	next := line[1]
	nextTile, ok := b.Field.At(next)
	if !ok || !nextTile.Passable(profile.Mobility) {
		u.moveProgress = 0 // stalled against impassable ground
		return moveResult{}
	}

	from := u.Position
	b.Field.MoveOccupant(from, next, u.ID)
	u.Position = next
	return moveResult{moved: true, from: from, to: next, pace: pace}
}

// handleWaypointArrival evaluates the waypoint's behavior and wait
// condition once the unit stands on it, advancing the cursor when allowed.
func (b *BattleState) handleWaypointArrival(u *Unit, wp Waypoint) {
	plan := u.Plan

	switch wp.Behavior {
	case BehaviorRallyAt:
		u.RallyPoint = wp.Position
		u.HasRallyPoint = true
	case BehaviorHoldAt:
		// A hold waypoint never self-advances.
		return
	}

	if !b.waitSatisfied(u, wp.Wait, plan) {
		plan.waitTicks++
		return
	}
	plan.Advance()
}

// waitSatisfied evaluates a waypoint wait condition for a unit.
func (b *BattleState) waitSatisfied(u *Unit, c WaitCondition, plan *WaypointPlan) bool {
	switch c.Kind {
	case WaitNone:
		return true
	case WaitDuration:
		return plan.waitTicks >= c.Duration
	case WaitGoCode:
		g := b.planFor(b.sideOf(u)).GoCode(c.GoCode)
		return g != nil && g.FiredFor(u.ID)
	case WaitUnitArrives:
		other := b.unit(c.Unit)
		return other != nil && other.Position == u.Position
	case WaitEnemySighted:
		return b.visionFor(b.sideOf(u)).VisibleEnemyCount() > 0
	case WaitAttacked:
		return u.tookDamageTick >= 0
	default:
		return true
	}
}

// restTick recovers fatigue and cohesion for a stationary unit.
func (u *Unit) restTick() {
	u.Fatigue = clamp01(u.Fatigue - restRecovery)
	u.Cohesion = clamp01(u.Cohesion + holdCohesionGain)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
