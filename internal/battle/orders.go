package battle

// OrderType discriminates order payloads.
type OrderType int

const (
	OrderMoveTo OrderType = iota
	OrderAttack
	OrderDefend
	OrderRetreat
	OrderChangeFormation
	OrderChangeEngagement
	OrderExecuteGoCode
	OrderRally
	OrderHold
)

func (t OrderType) String() string {
	switch t {
	case OrderMoveTo:
		return "move_to"
	case OrderAttack:
		return "attack"
	case OrderDefend:
		return "defend"
	case OrderRetreat:
		return "retreat"
	case OrderChangeFormation:
		return "change_formation"
	case OrderChangeEngagement:
		return "change_engagement"
	case OrderExecuteGoCode:
		return "execute_go_code"
	case OrderRally:
		return "rally"
	case OrderHold:
		return "hold"
	default:
		return "unknown"
	}
}

// Order is a commander's instruction to a unit. Orders are never applied
// directly; they travel by courier and take effect on delivery. IssueTick
// is the authority for last-effective-order-wins when deliveries cross.
type Order struct {
	Type      OrderType
	Target    UnitID
	IssueTick int

	// Payload fields, populated per Type.
	Destination Hex            // MoveTo, Defend
	AttackUnit  UnitID         // Attack
	Route       []Hex          // Retreat
	Shape       FormationShape // ChangeFormation
	Engagement  EngagementRule // ChangeEngagement
	GoCode      string         // ExecuteGoCode
}

// MoveOrder builds a move order.
func MoveOrder(target UnitID, dest Hex, tick int) *Order {
	return &Order{Type: OrderMoveTo, Target: target, Destination: dest, IssueTick: tick}
}

// AttackOrder builds an attack order against an enemy unit.
func AttackOrder(target, enemy UnitID, tick int) *Order {
	return &Order{Type: OrderAttack, Target: target, AttackUnit: enemy, IssueTick: tick}
}

// DefendOrder builds an order to hold a position.
func DefendOrder(target UnitID, at Hex, tick int) *Order {
	return &Order{Type: OrderDefend, Target: target, Destination: at, IssueTick: tick}
}

// RetreatOrder builds a retreat order along a route.
func RetreatOrder(target UnitID, route []Hex, tick int) *Order {
	return &Order{Type: OrderRetreat, Target: target, Route: route, IssueTick: tick}
}

// HoldOrder builds a hold-in-place order.
func HoldOrder(target UnitID, tick int) *Order {
	return &Order{Type: OrderHold, Target: target, IssueTick: tick}
}
