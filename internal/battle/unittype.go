package battle

// Edge is a weapon's sharpness category.
type Edge int

const (
	EdgeRazor Edge = iota
	EdgeSharp
	EdgeBlunt
)

func (e Edge) String() string {
	switch e {
	case EdgeRazor:
		return "razor"
	case EdgeSharp:
		return "sharp"
	case EdgeBlunt:
		return "blunt"
	default:
		return "unknown"
	}
}

// WeaponMass is a weapon's weight category, used for blunt trauma lookups.
type WeaponMass int

const (
	MassLight WeaponMass = iota
	MassMedium
	MassHeavy
	MassMassive // horse and rider, siege
)

func (m WeaponMass) String() string {
	switch m {
	case MassLight:
		return "light"
	case MassMedium:
		return "medium"
	case MassHeavy:
		return "heavy"
	case MassMassive:
		return "massive"
	default:
		return "unknown"
	}
}

// Rigidity is an armor's hardness category.
type Rigidity int

const (
	RigidityCloth Rigidity = iota
	RigidityLeather
	RigidityMail
	RigidityPlate
)

func (r Rigidity) String() string {
	switch r {
	case RigidityCloth:
		return "cloth"
	case RigidityLeather:
		return "leather"
	case RigidityMail:
		return "mail"
	case RigidityPlate:
		return "plate"
	default:
		return "unknown"
	}
}

// Padding is an armor's shock-absorption category.
type Padding int

const (
	PaddingNone Padding = iota
	PaddingLight
	PaddingHeavy
)

func (p Padding) String() string {
	switch p {
	case PaddingNone:
		return "none"
	case PaddingLight:
		return "light"
	case PaddingHeavy:
		return "heavy"
	default:
		return "unknown"
	}
}

// WeaponProfile is a unit's representative weapon: three categories plus a
// piercing flag. Outcomes come from lookup tables keyed on these, never
// from continuous stat formulas.
type WeaponProfile struct {
	Edge     Edge
	Mass     WeaponMass
	Piercing bool
}

// ArmorProfile is a unit's representative armor.
type ArmorProfile struct {
	Rigidity Rigidity
	Padding  Padding
}

// UnitCategory is the closed taxonomy of unit kinds. Behavior differences
// between categories are data in unitTypeTable, not dispatch.
type UnitCategory int

const (
	Levy UnitCategory = iota
	LightInfantry
	HeavyInfantry
	Spearmen
	Archers
	Skirmishers
	LightCavalry
	HeavyCavalry
	HorseArchers
	Scouts
	Command
)

func (c UnitCategory) String() string {
	switch c {
	case Levy:
		return "levy"
	case LightInfantry:
		return "light_infantry"
	case HeavyInfantry:
		return "heavy_infantry"
	case Spearmen:
		return "spearmen"
	case Archers:
		return "archers"
	case Skirmishers:
		return "skirmishers"
	case LightCavalry:
		return "light_cavalry"
	case HeavyCavalry:
		return "heavy_cavalry"
	case HorseArchers:
		return "horse_archers"
	case Scouts:
		return "scouts"
	case Command:
		return "command"
	default:
		return "unknown"
	}
}

// UnitProfile is the full static profile of one category.
type UnitProfile struct {
	Weapon        WeaponProfile
	Armor         ArmorProfile
	Mobility      Mobility
	SpeedMul      float64 // multiplier on pace speed
	VisionBonus   int     // added to base vision range
	BreakBase     float64 // base stress threshold before modifiers
	ReachCapable  bool    // set-to-receive weapons, mitigates shock
	Ranged        bool
	MissileRange  int
	CourierSpeedy bool // categories preferred as courier carriers
}

var unitTypeTable = map[UnitCategory]UnitProfile{
	Levy: {
		Weapon:    WeaponProfile{Edge: EdgeBlunt, Mass: MassMedium},
		Armor:     ArmorProfile{Rigidity: RigidityCloth, Padding: PaddingNone},
		Mobility:  MobilityFoot,
		SpeedMul:  1.0,
		BreakBase: 0.6,
	},
	LightInfantry: {
		Weapon:    WeaponProfile{Edge: EdgeSharp, Mass: MassMedium},
		Armor:     ArmorProfile{Rigidity: RigidityLeather, Padding: PaddingLight},
		Mobility:  MobilityFoot,
		SpeedMul:  1.1,
		BreakBase: 0.8,
	},
	HeavyInfantry: {
		Weapon:    WeaponProfile{Edge: EdgeSharp, Mass: MassHeavy},
		Armor:     ArmorProfile{Rigidity: RigidityMail, Padding: PaddingHeavy},
		Mobility:  MobilityFoot,
		SpeedMul:  0.8,
		BreakBase: 1.1,
	},
	Spearmen: {
		Weapon:       WeaponProfile{Edge: EdgeSharp, Mass: MassMedium, Piercing: true},
		Armor:        ArmorProfile{Rigidity: RigidityLeather, Padding: PaddingLight},
		Mobility:     MobilityFoot,
		SpeedMul:     0.9,
		BreakBase:    0.9,
		ReachCapable: true,
	},
	Archers: {
		Weapon:       WeaponProfile{Edge: EdgeSharp, Mass: MassLight, Piercing: true},
		Armor:        ArmorProfile{Rigidity: RigidityCloth, Padding: PaddingNone},
		Mobility:     MobilityFoot,
		SpeedMul:     1.0,
		BreakBase:    0.7,
		Ranged:       true,
		MissileRange: 10,
	},
	Skirmishers: {
		Weapon:       WeaponProfile{Edge: EdgeSharp, Mass: MassLight},
		Armor:        ArmorProfile{Rigidity: RigidityCloth, Padding: PaddingNone},
		Mobility:     MobilityFoot,
		SpeedMul:     1.2,
		BreakBase:    0.7,
		Ranged:       true,
		MissileRange: 6,
	},
	LightCavalry: {
		Weapon:        WeaponProfile{Edge: EdgeSharp, Mass: MassMedium},
		Armor:         ArmorProfile{Rigidity: RigidityLeather, Padding: PaddingLight},
		Mobility:      MobilityMounted,
		SpeedMul:      2.0,
		BreakBase:     0.8,
		CourierSpeedy: true,
	},
	HeavyCavalry: {
		Weapon:    WeaponProfile{Edge: EdgeSharp, Mass: MassMassive},
		Armor:     ArmorProfile{Rigidity: RigidityPlate, Padding: PaddingHeavy},
		Mobility:  MobilityMounted,
		SpeedMul:  1.8,
		BreakBase: 1.0,
	},
	HorseArchers: {
		Weapon:        WeaponProfile{Edge: EdgeSharp, Mass: MassLight, Piercing: true},
		Armor:         ArmorProfile{Rigidity: RigidityCloth, Padding: PaddingLight},
		Mobility:      MobilityMounted,
		SpeedMul:      2.0,
		BreakBase:     0.8,
		Ranged:        true,
		MissileRange:  8,
		CourierSpeedy: true,
	},
	Scouts: {
		Weapon:        WeaponProfile{Edge: EdgeSharp, Mass: MassLight},
		Armor:         ArmorProfile{Rigidity: RigidityCloth, Padding: PaddingNone},
		Mobility:      MobilityMounted,
		SpeedMul:      2.2,
		VisionBonus:   4,
		BreakBase:     0.7,
		CourierSpeedy: true,
	},
	Command: {
		Weapon:      WeaponProfile{Edge: EdgeSharp, Mass: MassMedium},
		Armor:       ArmorProfile{Rigidity: RigidityPlate, Padding: PaddingHeavy},
		Mobility:    MobilityMounted,
		SpeedMul:    1.5,
		VisionBonus: 2,
		BreakBase:   1.3,
	},
}

// Profile returns the static profile for a category. Unknown categories
// fall back to Levy so a bad reference never aborts resolution.
func (c UnitCategory) Profile() UnitProfile {
	if p, ok := unitTypeTable[c]; ok {
		return p
	}
	return unitTypeTable[Levy]
}
