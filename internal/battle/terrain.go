package battle

// Terrain is the base ground category of a hex.
type Terrain int

const (
	TerrainPlains Terrain = iota
	TerrainForest
	TerrainDenseForest
	TerrainHills
	TerrainMountains
	TerrainRiver
	TerrainMarsh
	TerrainRoad
	TerrainBridge
	TerrainSettlement
)

func (t Terrain) String() string {
	switch t {
	case TerrainPlains:
		return "plains"
	case TerrainForest:
		return "forest"
	case TerrainDenseForest:
		return "dense_forest"
	case TerrainHills:
		return "hills"
	case TerrainMountains:
		return "mountains"
	case TerrainRiver:
		return "river"
	case TerrainMarsh:
		return "marsh"
	case TerrainRoad:
		return "road"
	case TerrainBridge:
		return "bridge"
	case TerrainSettlement:
		return "settlement"
	default:
		return "unknown"
	}
}

// Mobility classes used for impassability checks.
type Mobility int

const (
	MobilityFoot Mobility = iota
	MobilityMounted
	MobilityWheeled
)

func (m Mobility) String() string {
	switch m {
	case MobilityFoot:
		return "foot"
	case MobilityMounted:
		return "mounted"
	case MobilityWheeled:
		return "wheeled"
	default:
		return "unknown"
	}
}

// terrainProfile holds the static contributions of one terrain category.
type terrainProfile struct {
	moveCost    float64 // movement cost multiplier, 1.0 = open ground
	cover       float64 // cover fraction contributed
	blocksSight bool
	impassable  [3]bool // indexed by Mobility
}

var terrainTable = map[Terrain]terrainProfile{
	TerrainPlains:      {moveCost: 1.0, cover: 0.0},
	TerrainForest:      {moveCost: 1.5, cover: 0.3, blocksSight: true},
	TerrainDenseForest: {moveCost: 2.5, cover: 0.5, blocksSight: true, impassable: [3]bool{false, true, true}},
	TerrainHills:       {moveCost: 1.5, cover: 0.1},
	TerrainMountains:   {moveCost: 3.0, cover: 0.2, blocksSight: true, impassable: [3]bool{false, true, true}},
	TerrainRiver:       {moveCost: 3.0, cover: 0.0, impassable: [3]bool{false, false, true}},
	TerrainMarsh:       {moveCost: 2.5, cover: 0.1, impassable: [3]bool{false, true, true}},
	TerrainRoad:        {moveCost: 0.7, cover: 0.0},
	TerrainBridge:      {moveCost: 1.0, cover: 0.0},
	TerrainSettlement:  {moveCost: 1.2, cover: 0.4, blocksSight: true},
}

// MoveCost returns the base movement cost multiplier for this terrain.
func (t Terrain) MoveCost() float64 {
	return terrainTable[t].moveCost
}

// Cover returns the base cover fraction for this terrain.
func (t Terrain) Cover() float64 {
	return terrainTable[t].cover
}

// BlocksSight reports whether this terrain blocks line of sight.
func (t Terrain) BlocksSight() bool {
	return terrainTable[t].blocksSight
}

// Passable reports whether the given mobility class can enter this terrain.
func (t Terrain) Passable(m Mobility) bool {
	return !terrainTable[t].impassable[m]
}

// TerrainFeature is a stackable addition on top of a hex's base terrain.
type TerrainFeature int

const (
	FeatureStream TerrainFeature = iota
	FeatureWall
	FeatureBuilding
	FeatureRocks
	FeatureThicket
	FeatureEntrenchment
)

func (f TerrainFeature) String() string {
	switch f {
	case FeatureStream:
		return "stream"
	case FeatureWall:
		return "wall"
	case FeatureBuilding:
		return "building"
	case FeatureRocks:
		return "rocks"
	case FeatureThicket:
		return "thicket"
	case FeatureEntrenchment:
		return "entrenchment"
	default:
		return "unknown"
	}
}

type featureProfile struct {
	moveCost    float64 // additive cost on top of base terrain
	cover       float64
	blocksSight bool
}

var featureTable = map[TerrainFeature]featureProfile{
	FeatureStream:       {moveCost: 1.0, cover: 0.0},
	FeatureWall:         {moveCost: 0.5, cover: 0.4, blocksSight: true},
	FeatureBuilding:     {moveCost: 0.5, cover: 0.6, blocksSight: true},
	FeatureRocks:        {moveCost: 0.5, cover: 0.3},
	FeatureThicket:      {moveCost: 0.8, cover: 0.2, blocksSight: true},
	FeatureEntrenchment: {moveCost: 0.3, cover: 0.5},
}

// MoveCost returns the feature's additive movement cost contribution.
func (f TerrainFeature) MoveCost() float64 {
	return featureTable[f].moveCost
}

// Cover returns the feature's cover contribution.
func (f TerrainFeature) Cover() float64 {
	return featureTable[f].cover
}

// BlocksSight reports whether this feature blocks line of sight.
func (f TerrainFeature) BlocksSight() bool {
	return featureTable[f].blocksSight
}
