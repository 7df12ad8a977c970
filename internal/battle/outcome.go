package battle

// Termination constants.
const (
	MaxBattleTicks = 6000

	routDefeatFraction    = 0.8 // an army this far routed has lost
	decisiveStrengthRatio = 2.0
)

// Outcome classifies how a battle ended.
type Outcome int

const (
	OutcomeUndecided Outcome = iota
	OutcomeRedVictory
	OutcomeBlueVictory
	OutcomeDraw
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRedVictory:
		return "red_victory"
	case OutcomeBlueVictory:
		return "blue_victory"
	case OutcomeDraw:
		return "draw"
	case OutcomeUndecided:
		return "undecided"
	default:
		return "unknown"
	}
}

// Winner returns the winning side, false for draws and undecided battles.
func (o Outcome) Winner() (Side, bool) {
	switch o {
	case OutcomeRedVictory:
		return SideRed, true
	case OutcomeBlueVictory:
		return SideBlue, true
	default:
		return 0, false
	}
}

// Result is the final classification plus the numbers that justify it.
type Result struct {
	Outcome        Outcome
	Decisive       bool
	EndTick        int
	RedStrength    int
	RedRaw         int
	RedCasualties  int
	RedRouting     float64
	BlueStrength   int
	BlueRaw        int
	BlueCasualties int
	BlueRouting    float64
	Description    string
}

// EvaluateTermination checks the battle-ending conditions in fixed order:
// annihilation, mass rout, tick ceiling. Returns ok=false while the battle
// should continue.
func EvaluateTermination(tick int, red, blue *Army) (Result, bool) {
	res := Result{
		EndTick:      tick,
		RedStrength:  red.EffectiveStrength(),
		RedRaw:       red.RawStrength(),
		BlueStrength: blue.EffectiveStrength(),
		BlueRaw:      blue.RawStrength(),
		RedRouting:   red.RoutingFraction(),
		BlueRouting:  blue.RoutingFraction(),
	}
	res.RedCasualties = res.RedRaw - res.RedStrength
	res.BlueCasualties = res.BlueRaw - res.BlueStrength

	switch {
	case res.RedStrength == 0 && res.BlueStrength == 0:
		res.Outcome = OutcomeDraw
		res.Decisive = true
		res.Description = "mutual_annihilation"
		return res, true
	case res.RedStrength == 0:
		res.Outcome = OutcomeBlueVictory
		res.Decisive = true
		res.Description = "decisive_blue_victory_red_eliminated"
		return res, true
	case res.BlueStrength == 0:
		res.Outcome = OutcomeRedVictory
		res.Decisive = true
		res.Description = "decisive_red_victory_blue_eliminated"
		return res, true
	}

	redRouted := res.RedRouting > routDefeatFraction
	blueRouted := res.BlueRouting > routDefeatFraction
	switch {
	case redRouted && blueRouted:
		res.Outcome = OutcomeDraw
		res.Description = "draw_mutual_rout"
		return res, true
	case redRouted:
		res.Outcome = OutcomeBlueVictory
		res.Description = "blue_victory_red_routed"
		return res, true
	case blueRouted:
		res.Outcome = OutcomeRedVictory
		res.Description = "red_victory_blue_routed"
		return res, true
	}

	if tick >= MaxBattleTicks {
		switch {
		case float64(res.RedStrength) >= float64(res.BlueStrength)*decisiveStrengthRatio:
			res.Outcome = OutcomeRedVictory
			res.Description = "red_victory_on_time_strength_advantage"
		case float64(res.BlueStrength) >= float64(res.RedStrength)*decisiveStrengthRatio:
			res.Outcome = OutcomeBlueVictory
			res.Description = "blue_victory_on_time_strength_advantage"
		default:
			res.Outcome = OutcomeDraw
			res.Description = "draw_tick_ceiling_comparable_strength"
		}
		return res, true
	}

	return Result{}, false
}
