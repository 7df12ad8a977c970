package battle

// Morale constants.
const (
	maxStress         = 2.0
	minBreakPoint     = 0.3   // floor for the effective threshold
	routMargin        = 0.3   // routing threshold sits this far above shaken
	cohesionBonus     = 0.1   // threshold bonus when cohesion > 0.8
	fatiguePenalty    = 0.2   // threshold penalty at full fatigue
	stressDecay       = 0.005 // per unengaged tick
	contagionStress   = 0.10  // applied to friendlies near a breaking unit
	contagionRange    = 3
	officerLossStress = 0.30
	flankStress       = 0.20
	surroundedStress  = 0.30
	rallyTicksNeeded  = 30 // consecutive unengaged ticks to complete a rally
)

// Stance is a unit's behavioral state. Transitions are driven by resolution
// and by delivered orders, never chosen freely.
type Stance int

const (
	StanceFormed Stance = iota
	StanceMoving
	StanceEngaged
	StanceShaken
	StanceRouting
	StanceRallying
	StancePatrol
	StanceAlert
)

func (s Stance) String() string {
	switch s {
	case StanceFormed:
		return "formed"
	case StanceMoving:
		return "moving"
	case StanceEngaged:
		return "engaged"
	case StanceShaken:
		return "shaken"
	case StanceRouting:
		return "routing"
	case StanceRallying:
		return "rallying"
	case StancePatrol:
		return "patrol"
	case StanceAlert:
		return "alert"
	default:
		return "unknown"
	}
}

// BreakThreshold is the stress level at which this unit becomes shaken:
// category base, plus a cohesion bonus, minus a fatigue penalty, floored so
// no unit is unbreakable or trivially breakable.
func (u *Unit) BreakThreshold() float64 {
	threshold := u.Profile().BreakBase
	if u.Cohesion > 0.8 {
		threshold += cohesionBonus
	}
	threshold -= u.Fatigue * fatiguePenalty
	if threshold < minBreakPoint {
		threshold = minBreakPoint
	}
	return threshold
}

// AddStress accumulates stress, clamped to [0, maxStress].
func (u *Unit) AddStress(delta float64) {
	u.Stress += delta
	if u.Stress > maxStress {
		u.Stress = maxStress
	}
	if u.Stress < 0 {
		u.Stress = 0
	}
}

// moraleTransition evaluates stress against thresholds and moves the unit
// through the shaken/routing part of the stance machine. Returns the new
// stance if it changed, with ok=false when no transition fired.
func (u *Unit) moraleTransition() (Stance, bool) {
	threshold := u.BreakThreshold()
	switch u.Stance {
	case StanceRouting, StanceRallying:
		return 0, false // handled by the rally step
	default:
		if u.Stress >= threshold+routMargin {
			u.Stance = StanceRouting
			return StanceRouting, true
		}
		if u.Stress >= threshold && u.Stance != StanceShaken {
			u.Stance = StanceShaken
			return StanceShaken, true
		}
	}
	return 0, false
}

// recoverStress decays stress for a unit that saw no contact this tick.
func (u *Unit) recoverStress() {
	u.AddStress(-stressDecay)
}

// rallyStep advances a routing or rallying unit. A routing unit begins to
// rally only once it stands at its rally point; the unengaged counter must
// then run a full cooldown window without new contact before the unit
// re-forms. New contact resets the counter.
func (u *Unit) rallyStep(engaged bool) (Stance, bool) {
	switch u.Stance {
	case StanceRouting:
		if engaged {
			u.rallyTicks = 0
			return 0, false
		}
		if u.HasRallyPoint && u.Position == u.RallyPoint {
			u.rallyTicks = 0
			u.Stance = StanceRallying
			return StanceRallying, true
		}
	case StanceRallying:
		if engaged {
			u.rallyTicks = 0
			u.Stance = StanceRouting
			return StanceRouting, true
		}
		u.rallyTicks++
		if u.rallyTicks >= rallyTicksNeeded {
			u.rallyTicks = 0
			u.Stress = u.BreakThreshold() * 0.5 // re-forms steadier, not fresh
			u.Stance = StanceFormed
			return StanceFormed, true
		}
	}
	return 0, false
}

// propagateRoutContagion raises stress on friendly units near a unit that
// just broke. Returns the units affected.
func propagateRoutContagion(broken *Unit, friendlies []*Unit) []*Unit {
	var affected []*Unit
	for _, u := range friendlies {
		if u.ID == broken.ID || u.Stance == StanceRouting {
			continue
		}
		if broken.Position.Distance(u.Position) <= contagionRange {
			u.AddStress(contagionStress)
			affected = append(affected, u)
		}
	}
	return affected
}
