package battle

import "math/rand"

// Courier constants.
const (
	CourierSpeed = 0.40 // hexes per tick

	interceptRange        = 2   // hexes from a watching enemy unit
	interceptChancePatrol = 0.5 // per tick inside range of a patrolling enemy
	interceptChanceAlert  = 0.7 // per tick inside range of an alerted enemy
)

// CourierID identifies a dispatched courier within a battle.
type CourierID int

// CourierStatus is the delivery state of a courier. Once a courier leaves
// EnRoute it never returns to it.
type CourierStatus int

const (
	CourierEnRoute CourierStatus = iota
	CourierArrived
	CourierIntercepted
	CourierLost
)

func (s CourierStatus) String() string {
	switch s {
	case CourierEnRoute:
		return "en_route"
	case CourierArrived:
		return "arrived"
	case CourierIntercepted:
		return "intercepted"
	case CourierLost:
		return "lost"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is final.
func (s CourierStatus) Terminal() bool {
	return s != CourierEnRoute
}

// Courier is an in-flight order carrier.
type Courier struct {
	ID       CourierID
	Carrier  CombatantID
	Side     Side
	Order    *Order
	Source   Hex
	Dest     Hex
	Position Hex
	Path     []Hex   // hexes still ahead, destination last
	Progress float64 // fractional progress toward the next hex
	Status   CourierStatus
}

// Advance accumulates speed into progress and consumes whole hexes from the
// path. The fractional remainder carries forward exactly. A zero-distance
// dispatch arrives on its first advance.
func (c *Courier) Advance(speed float64) {
	if c.Status != CourierEnRoute {
		return
	}
	c.Progress += speed
	for c.Progress >= 1.0 && len(c.Path) > 0 {
		c.Position = c.Path[0]
		c.Path = c.Path[1:]
		c.Progress -= 1.0
	}
	if len(c.Path) == 0 && c.Position == c.Dest {
		c.Status = CourierArrived
	}
}

// Intercept marks the courier caught. The order is never delivered.
func (c *Courier) Intercept() {
	if c.Status == CourierEnRoute {
		c.Status = CourierIntercepted
	}
}

// Lose marks the carrier killed in transit.
func (c *Courier) Lose() {
	if c.Status == CourierEnRoute {
		c.Status = CourierLost
	}
}

// ETA estimates remaining travel ticks at the given speed.
func (c *Courier) ETA(speed float64) int {
	if c.Status != CourierEnRoute || speed <= 0 {
		return 0
	}
	remaining := float64(len(c.Path)) - c.Progress
	ticks := int(remaining / speed)
	if float64(ticks)*speed < remaining {
		ticks++
	}
	return ticks
}

// CourierSystem owns every courier of a battle: the in-flight set plus the
// delivered and failed logs.
type CourierSystem struct {
	InFlight  []*Courier
	Delivered []*Order
	Failed    []*Courier

	nextID CourierID
}

// NewCourierSystem creates an empty courier system.
func NewCourierSystem() *CourierSystem {
	return &CourierSystem{}
}

// Dispatch wraps an order in a courier and sends it along the straight-line
// path from source to dest.
func (cs *CourierSystem) Dispatch(carrier CombatantID, side Side, order *Order, source, dest Hex) CourierID {
	id := cs.nextID
	cs.nextID++

	line := source.LineTo(dest)
	path := line[1:] // current hex is not ahead of us

	cs.InFlight = append(cs.InFlight, &Courier{
		ID:       id,
		Carrier:  carrier,
		Side:     side,
		Order:    order,
		Source:   source,
		Dest:     dest,
		Position: source,
		Path:     path,
	})
	return id
}

// AdvanceAll moves every en-route courier by one tick.
func (cs *CourierSystem) AdvanceAll() {
	for _, c := range cs.InFlight {
		c.Advance(CourierSpeed)
	}
}

// CheckInterception rolls at most one interception check per en-route
// courier against the most dangerous watching enemy within range.
// Patrolling and alerted units threaten at different probabilities; all
// rolls come from the battle's seeded generator so runs stay reproducible.
// A courier standing on a hex held by a fighting enemy unit is lost
// outright, no roll. Returns the couriers intercepted and lost this tick.
func (cs *CourierSystem) CheckInterception(enemiesOf func(Side) []*Unit, rng *rand.Rand) (intercepted, lost []*Courier) {
	for _, c := range cs.InFlight {
		if c.Status != CourierEnRoute {
			continue
		}
		enemies := enemiesOf(c.Side)
		if overrun(c.Position, enemies) {
			c.Lose()
			lost = append(lost, c)
			continue
		}
		chance, threatened := watcherChance(c.Position, enemies)
		if !threatened {
			continue
		}
		if rng.Float64() < chance {
			c.Intercept()
			intercepted = append(intercepted, c)
		}
	}
	return intercepted, lost
}

func overrun(at Hex, enemies []*Unit) bool {
	for _, u := range enemies {
		if u.Position == at && u.CanFight() {
			return true
		}
	}
	return false
}

// watcherChance returns the highest interception probability among enemy
// units watching the given hex, false when none are in range.
func watcherChance(at Hex, enemies []*Unit) (float64, bool) {
	best := 0.0
	found := false
	for _, u := range enemies {
		var chance float64
		switch u.Stance {
		case StancePatrol:
			chance = interceptChancePatrol
		case StanceAlert:
			chance = interceptChanceAlert
		default:
			continue
		}
		if u.EffectiveStrength() == 0 {
			continue
		}
		if at.Distance(u.Position) <= interceptRange && chance > best {
			best = chance
			found = true
		}
	}
	return best, found
}

// CollectArrived removes arrived couriers from the in-flight set and
// returns their orders, recording each in the delivered log exactly once.
// Terminal failures move to the failed log.
func (cs *CourierSystem) CollectArrived() []*Order {
	var arrived []*Order
	remaining := cs.InFlight[:0]
	for _, c := range cs.InFlight {
		switch c.Status {
		case CourierArrived:
			arrived = append(arrived, c.Order)
		case CourierIntercepted, CourierLost:
			cs.Failed = append(cs.Failed, c)
		default:
			remaining = append(remaining, c)
		}
	}
	cs.InFlight = remaining
	cs.Delivered = append(cs.Delivered, arrived...)
	return arrived
}

// EnRouteCount returns the number of couriers still flying.
func (cs *CourierSystem) EnRouteCount() int {
	n := 0
	for _, c := range cs.InFlight {
		if c.Status == CourierEnRoute {
			n++
		}
	}
	return n
}
