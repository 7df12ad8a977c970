package battle

// Vision constants.
const (
	baseVisionRange      = 8
	elevationVisionBonus = 2 // extra range per elevation tier
)

// VisState is what one army knows about a hex. Observed hexes are in
// current view; Remembered hexes were seen before; Unknown hexes never.
type VisState int

const (
	VisUnknown VisState = iota
	VisRemembered
	VisObserved
)

func (v VisState) String() string {
	switch v {
	case VisObserved:
		return "observed"
	case VisRemembered:
		return "remembered"
	default:
		return "unknown"
	}
}

// VisionMap is one army's view of the battlefield. It is recomputed every
// tick from current vision sources; Remembered is the only state that
// persists, and it is never promoted back to Observed without a live
// sighting. Consumers must treat this as the ceiling of available
// information, never as ground truth.
type VisionMap struct {
	Side  Side
	state map[Hex]VisState

	// Enemy units currently in view, rebuilt each recompute.
	visibleEnemies map[UnitID]Hex
}

// NewVisionMap creates an all-unknown vision map for a side.
func NewVisionMap(side Side) *VisionMap {
	return &VisionMap{
		Side:           side,
		state:          make(map[Hex]VisState),
		visibleEnemies: make(map[UnitID]Hex),
	}
}

// State returns what this army knows about h.
func (v *VisionMap) State(h Hex) VisState {
	return v.state[h]
}

// VisibleEnemy reports whether an enemy unit is currently observed, and
// where it was last seen this tick.
func (v *VisionMap) VisibleEnemy(id UnitID) (Hex, bool) {
	h, ok := v.visibleEnemies[id]
	return h, ok
}

// VisibleEnemyCount returns how many enemy units are currently observed.
func (v *VisionMap) VisibleEnemyCount() int {
	return len(v.visibleEnemies)
}

// visionRange returns how far a unit sees from its position.
func visionRange(u *Unit, f *Field) int {
	r := baseVisionRange + u.Profile().VisionBonus
	r += f.Elevation(u.Position) * elevationVisionBonus
	return r
}

// Recompute rebuilds the map from the army's live units. Previously
// observed hexes that fall out of view drain to Remembered.
func (v *VisionMap) Recompute(f *Field, own []*Unit, enemy []*Unit) {
	// Old sightings fade to memory first.
	for h, s := range v.state {
		if s == VisObserved {
			v.state[h] = VisRemembered
		}
	}

	inView := make(map[Hex]bool)
	for _, u := range own {
		if u.EffectiveStrength() == 0 {
			continue
		}
		for _, h := range f.VisibleFrom(u.Position, visionRange(u, f)) {
			inView[h] = true
		}
	}
	for h := range inView {
		v.state[h] = VisObserved
	}

	v.visibleEnemies = make(map[UnitID]Hex)
	for _, e := range enemy {
		if e.EffectiveStrength() == 0 {
			continue
		}
		if inView[e.Position] {
			v.visibleEnemies[e.ID] = e.Position
		}
	}
}

// Snapshot returns a copy of the per-hex state for external consumers.
func (v *VisionMap) Snapshot() map[Hex]VisState {
	out := make(map[Hex]VisState, len(v.state))
	for h, s := range v.state {
		out[h] = s
	}
	return out
}
