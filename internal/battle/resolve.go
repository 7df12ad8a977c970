package battle

import "math"

// Combat constants.
const (
	pressureRateShift = 0.5 // rate shift per unit of pressure, as a fraction of base
	rateFloorMul      = 0.2 // clamp floor, as a fraction of base
	rateCeilMul       = 2.0 // clamp ceiling, as a fraction of base

	combatPresenceStress = 0.02 // being in the fight at all
	perCasualtyStress    = 0.01

	shockCasualtyStress = 0.20 // stress per casualty fraction in a shock

	rangedLongRangeMul = 0.5 // rate multiplier beyond half missile range

	combatFatigue = 0.002 // fatigue per resolved exchange
)

// edgeRateTable maps weapon edge x armor rigidity to a base per-tick
// casualty rate. Categorical lookup only, never a continuous formula.
var edgeRateTable = map[Edge][4]float64{
	//            cloth  leather mail   plate
	EdgeRazor: {0.040, 0.025, 0.010, 0.004},
	EdgeSharp: {0.025, 0.015, 0.006, 0.003},
}

// bluntRateTable maps weapon mass x armor padding to a base rate for
// weapons with no edge.
var bluntRateTable = map[WeaponMass][3]float64{
	//             none   light  heavy
	MassLight:   {0.008, 0.005, 0.003},
	MassMedium:  {0.015, 0.010, 0.006},
	MassHeavy:   {0.025, 0.018, 0.012},
	MassMassive: {0.050, 0.040, 0.030},
}

// paddingShockSurvival is the fraction of the exposed front rank that
// survives a shock impact, by padding category.
var paddingShockSurvival = map[Padding]float64{
	PaddingNone:  0.3,
	PaddingLight: 0.5,
	PaddingHeavy: 0.7,
}

// BaseCasualtyRate looks up the categorical rate for a weapon against an
// armor. A piercing weapon shifts the armor one rigidity category down
// against mail and plate; the shift is categorical, not a multiplier.
func BaseCasualtyRate(weapon WeaponProfile, armor ArmorProfile) float64 {
	if weapon.Edge == EdgeBlunt {
		return bluntRateTable[weapon.Mass][armor.Padding]
	}
	rigidity := armor.Rigidity
	if weapon.Piercing && (rigidity == RigidityMail || rigidity == RigidityPlate) {
		rigidity--
	}
	return edgeRateTable[weapon.Edge][rigidity]
}

// CasualtyRate applies the pressure shift to the base lookup. Pressure is
// clamped to [-1,1]; the shifted rate is clamped to a floor and ceiling
// proportional to the base so no advantage makes combat free or absolute.
func CasualtyRate(weapon WeaponProfile, armor ArmorProfile, pressure float64) float64 {
	base := BaseCasualtyRate(weapon, armor)
	if pressure > 1 {
		pressure = 1
	}
	if pressure < -1 {
		pressure = -1
	}
	rate := base + pressure*pressureRateShift*base
	return clampRate(rate, base)
}

func clampRate(rate, base float64) float64 {
	if rate < base*rateFloorMul {
		return base * rateFloorMul
	}
	if rate > base*rateCeilMul {
		return base * rateCeilMul
	}
	return rate
}

// CasualtiesFor converts a rate into whole casualties against a strength:
// ceiling, so any nonzero rate against a live unit draws blood, capped at
// the strength itself.
func CasualtiesFor(rate float64, strength int) int {
	if strength <= 0 || rate <= 0 {
		return 0
	}
	n := int(math.Ceil(rate * float64(strength)))
	if n > strength {
		n = strength
	}
	return n
}

// StressDelta sums the additive stress contributions of one exchange.
func StressDelta(casualties int, flanked, surrounded bool) float64 {
	delta := combatPresenceStress + float64(casualties)*perCasualtyStress
	if flanked {
		delta += flankStress
	}
	if surrounded {
		delta += surroundedStress
	}
	return delta
}

// ExchangeResult is the outcome of one sustained-combat exchange.
type ExchangeResult struct {
	AttackerCasualties int
	DefenderCasualties int
	AttackerStress     float64
	DefenderStress     float64
}

// ResolveExchange resolves one tick of sustained close combat between two
// units. Pressure expresses the attacker's local advantage; the defender
// fights back under the inverse pressure. Cover reduces nothing here:
// sustained melee is decided by the categorical tables alone.
func ResolveExchange(attacker, defender *Unit, pressure float64, flags ExchangeFlags) ExchangeResult {
	ap := attacker.Profile()
	dp := defender.Profile()

	attackRate := CasualtyRate(ap.Weapon, dp.Armor, pressure)
	counterRate := CasualtyRate(dp.Weapon, ap.Armor, -pressure)

	res := ExchangeResult{
		DefenderCasualties: CasualtiesFor(attackRate, defender.EffectiveStrength()),
		AttackerCasualties: CasualtiesFor(counterRate, attacker.EffectiveStrength()),
	}
	res.AttackerStress = StressDelta(res.AttackerCasualties, false, false)
	res.DefenderStress = StressDelta(res.DefenderCasualties, flags.DefenderFlanked, flags.DefenderSurrounded)
	return res
}

// ExchangeFlags carry positional context into an exchange.
type ExchangeFlags struct {
	DefenderFlanked    bool
	DefenderSurrounded bool
}

// VolleyResult is the outcome of a ranged volley.
type VolleyResult struct {
	Casualties int
	Stress     float64
}

// ResolveVolley resolves missile fire from a ranged unit. The rate halves
// beyond half the missile range and the target's cover subtracts
// proportionally from the final rate.
func ResolveVolley(shooter, target *Unit, dist int, cover float64) VolleyResult {
	sp := shooter.Profile()
	if !sp.Ranged || dist > sp.MissileRange {
		return VolleyResult{}
	}
	rate := BaseCasualtyRate(sp.Weapon, target.Profile().Armor)
	if dist > sp.MissileRange/2 {
		rate *= rangedLongRangeMul
	}
	rate *= 1.0 - cover
	casualties := CasualtiesFor(rate, target.EffectiveStrength())
	return VolleyResult{
		Casualties: casualties,
		Stress:     StressDelta(casualties, false, false),
	}
}

// ShockType classifies an instantaneous assault.
type ShockType int

const (
	ShockCharge ShockType = iota
	ShockFlank
	ShockRear
	ShockAmbush
)

func (s ShockType) String() string {
	switch s {
	case ShockCharge:
		return "charge"
	case ShockFlank:
		return "flank"
	case ShockRear:
		return "rear"
	case ShockAmbush:
		return "ambush"
	default:
		return "unknown"
	}
}

// stressSpike is the flat stress cost of suffering this kind of shock.
func (s ShockType) stressSpike() float64 {
	switch s {
	case ShockFlank:
		return 0.20
	case ShockRear:
		return 0.40
	case ShockAmbush:
		return 0.35
	default: // charge
		return 0.30
	}
}

// ShockResult is the outcome of a shock attack.
type ShockResult struct {
	Casualties  int
	StressSpike float64
	BreakCheck  bool // spike large enough to test the target's threshold now
}

// ResolveShock computes immediate casualties from a charge, flank, rear or
// ambush impact. Only the exposed front-rank fraction is at risk; padding
// sets how much of it survives, reach-capable categories halve the loss,
// and the shock type scales it with integer arithmetic. The stress spike
// is always large enough to be checked against the break threshold the
// same tick.
func ResolveShock(defender *Unit, kind ShockType) ShockResult {
	strength := defender.EffectiveStrength()
	front := int(float64(strength) * defender.Shape.frontageFraction())
	dp := defender.Profile()

	survival := paddingShockSurvival[dp.Armor.Padding]
	casualties := int(float64(front) * (1.0 - survival))

	if dp.ReachCapable {
		casualties /= 2
	}

	switch kind {
	case ShockFlank:
		casualties = casualties * 2 / 3
	case ShockRear:
		casualties = casualties * 3 / 2
	case ShockAmbush:
		casualties = casualties * 5 / 4
	}
	if casualties > strength {
		casualties = strength
	}

	spike := kind.stressSpike()
	if strength > 0 {
		spike += float64(casualties) / float64(strength) * shockCasualtyStress
	}
	breakCheck := defender.Stress+spike > defender.BreakThreshold()*0.7

	return ShockResult{
		Casualties:  casualties,
		StressSpike: spike,
		BreakCheck:  breakCheck,
	}
}

// LOD is the granularity an engagement is resolved at. All levels share
// the same rate tables, so switching level never biases total casualties;
// it only changes how results are grouped and reported.
type LOD int

const (
	LODIndividual LOD = iota
	LODElement
	LODUnit
	LODFormation
)

func (l LOD) String() string {
	switch l {
	case LODIndividual:
		return "individual"
	case LODElement:
		return "element"
	case LODUnit:
		return "unit"
	case LODFormation:
		return "formation"
	default:
		return "unknown"
	}
}

// LOD selection bounds.
const (
	lodElementMax = 50  // below this many combatants, element detail
	lodUnitMax    = 200 // below this, unit detail; above, formation
)

// SelectLOD picks the resolution granularity from context.
func SelectLOD(totalCombatants int, focused, nearObjective bool) LOD {
	switch {
	case focused:
		return LODIndividual
	case nearObjective || totalCombatants < lodElementMax:
		return LODElement
	case totalCombatants < lodUnitMax:
		return LODUnit
	default:
		return LODFormation
	}
}
