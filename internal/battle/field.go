package battle

// Battlefield constants.
const (
	DefaultFieldWidth  = 50
	DefaultFieldHeight = 40

	// An observer this many elevation tiers above a blocker sees over it.
	elevationSightOffset = 2
)

// Tile is one hex of the battlefield: terrain, elevation, stacked features
// and the units currently standing on it.
type Tile struct {
	Coord     Hex
	Terrain   Terrain
	Elevation int
	Features  []TerrainFeature
	Occupants []UnitID
}

// MoveCost returns the combined movement cost multiplier of terrain plus
// features. Feature costs stack additively on the base multiplier.
func (t *Tile) MoveCost() float64 {
	cost := t.Terrain.MoveCost()
	for _, f := range t.Features {
		cost += f.MoveCost()
	}
	return cost
}

// Cover returns combined cover, capped at 1.0.
func (t *Tile) Cover() float64 {
	cover := t.Terrain.Cover()
	for _, f := range t.Features {
		cover += f.Cover()
	}
	if cover > 1.0 {
		cover = 1.0
	}
	return cover
}

// BlocksSight is the OR of base terrain and every feature.
func (t *Tile) BlocksSight() bool {
	if t.Terrain.BlocksSight() {
		return true
	}
	for _, f := range t.Features {
		if f.BlocksSight() {
			return true
		}
	}
	return false
}

// Passable reports whether a mobility class can enter this tile.
func (t *Tile) Passable(m Mobility) bool {
	return t.Terrain.Passable(m)
}

// Field is the bounded hex battlefield. Hexes are addressed by axial
// coordinates with Q in [0,Width) and R in [0,Height).
type Field struct {
	Width  int
	Height int
	tiles  map[Hex]*Tile
}

// NewField creates a field of the given size, all plains at elevation zero.
func NewField(width, height int) *Field {
	f := &Field{
		Width:  width,
		Height: height,
		tiles:  make(map[Hex]*Tile, width*height),
	}
	for q := 0; q < width; q++ {
		for r := 0; r < height; r++ {
			h := Hex{q, r}
			f.tiles[h] = &Tile{Coord: h, Terrain: TerrainPlains}
		}
	}
	return f
}

// InBounds reports whether h lies on the field.
func (f *Field) InBounds(h Hex) bool {
	return h.Q >= 0 && h.Q < f.Width && h.R >= 0 && h.R < f.Height
}

// At returns the tile at h. Out-of-bounds lookups return (nil, false);
// callers treat that as an absent hex, never an error.
func (f *Field) At(h Hex) (*Tile, bool) {
	t, ok := f.tiles[h]
	return t, ok
}

// SetTerrain sets the base terrain at h. Out of bounds is a no-op.
func (f *Field) SetTerrain(h Hex, terrain Terrain) {
	if t, ok := f.tiles[h]; ok {
		t.Terrain = terrain
	}
}

// SetElevation sets the elevation tier at h. Out of bounds is a no-op.
func (f *Field) SetElevation(h Hex, elevation int) {
	if t, ok := f.tiles[h]; ok {
		t.Elevation = elevation
	}
}

// AddFeature stacks a feature onto the tile at h. Out of bounds is a no-op.
func (f *Field) AddFeature(h Hex, feature TerrainFeature) {
	if t, ok := f.tiles[h]; ok {
		t.Features = append(t.Features, feature)
	}
}

// RemoveFeature removes the first instance of feature at h, if present.
func (f *Field) RemoveFeature(h Hex, feature TerrainFeature) {
	t, ok := f.tiles[h]
	if !ok {
		return
	}
	for i, existing := range t.Features {
		if existing == feature {
			t.Features = append(t.Features[:i], t.Features[i+1:]...)
			return
		}
	}
}

// Elevation returns the elevation at h, zero when out of bounds.
func (f *Field) Elevation(h Hex) int {
	if t, ok := f.tiles[h]; ok {
		return t.Elevation
	}
	return 0
}

// ElevationDelta returns observer elevation minus target elevation.
// Callers combine this with LineOfSight: enough height looks over blockers.
func (f *Field) ElevationDelta(from, to Hex) int {
	return f.Elevation(from) - f.Elevation(to)
}

// LineOfSight reports whether from can see to. Every hex strictly between
// the endpoints is sampled along the traced line; any blocking hex breaks
// sight unless the observer holds an elevation advantage of at least
// elevationSightOffset tiers, which offsets a single blocking tier.
func (f *Field) LineOfSight(from, to Hex) bool {
	if !f.InBounds(from) || !f.InBounds(to) {
		return false
	}
	line := from.LineTo(to)
	blockers := 0
	for i := 1; i < len(line)-1; i++ {
		t, ok := f.At(line[i])
		if !ok {
			continue
		}
		if t.BlocksSight() {
			blockers++
		}
	}
	if blockers == 0 {
		return true
	}
	if blockers == 1 && f.ElevationDelta(from, to) >= elevationSightOffset {
		return true
	}
	return false
}

// VisibleFrom returns every in-bounds hex within viewRange of origin that
// has line of sight from origin.
func (f *Field) VisibleFrom(origin Hex, viewRange int) []Hex {
	var out []Hex
	for _, h := range origin.Range(viewRange) {
		if !f.InBounds(h) {
			continue
		}
		if f.LineOfSight(origin, h) {
			out = append(out, h)
		}
	}
	return out
}

// PlaceOccupant records a unit on the tile at h. Written only during the
// movement step of a tick.
func (f *Field) PlaceOccupant(h Hex, id UnitID) {
	if t, ok := f.tiles[h]; ok {
		t.Occupants = append(t.Occupants, id)
	}
}

// RemoveOccupant removes a unit from the tile at h.
func (f *Field) RemoveOccupant(h Hex, id UnitID) {
	t, ok := f.tiles[h]
	if !ok {
		return
	}
	for i, occ := range t.Occupants {
		if occ == id {
			t.Occupants = append(t.Occupants[:i], t.Occupants[i+1:]...)
			return
		}
	}
}

// MoveOccupant relocates a unit between tiles in one call.
func (f *Field) MoveOccupant(from, to Hex, id UnitID) {
	f.RemoveOccupant(from, id)
	f.PlaceOccupant(to, id)
}
