package schema

// Price is a scaled integer. The scale is defined by configuration.
type Price int64

// Quantity is a scaled integer. The scale is defined by configuration.
type Quantity int64

// Notional is a scaled integer. The scale is defined by configuration.
type Notional int64

// Fee is a scaled integer. The scale is defined by configuration.
type Fee int64

// OrderSide describes order direction. It maps 1:1 onto lob.Side: Buy
// is the book's Bid side, Sell is its Ask side.
type OrderSide uint16

const (
	OrderSideUnknown OrderSide = iota
	OrderSideBuy
	OrderSideSell
)

// OrderType describes order type, mirroring lob.OrderType at the wire
// boundary.
type OrderType uint16

const (
	OrderTypeUnknown OrderType = iota
	OrderTypeLimit
	OrderTypeMarket
	OrderTypeFAK
	OrderTypeFOK
)

// TimeInForce describes order time-in-force.
type TimeInForce uint16

const (
	TimeInForceUnknown TimeInForce = iota
	TimeInForceGTC
	TimeInForceIOC
	TimeInForceFOK
)

// FlagOwnOrder marks an OrderAdded/OrderCanceled event as touching an
// order that originated from this engine's own gateway, as opposed to
// one inferred from venue depth. Reducers use it to decide whether such
// an event moves local inventory. Print and Aggression events are not
// gated by it: their OurLifted/Lifted fields already carry our share.
const FlagOwnOrder uint16 = 1 << 0

// OrderIntent is the pre-trade request a strategy hands to the risk
// engine and, if allowed, to the gateway. It is never itself stored in
// the WAL; RiskDecision and OrderAdded/OrderCanceled are.
type OrderIntent struct {
	OrderID     uint64
	StrategyID  uint32
	SymbolID    uint32
	Side        OrderSide
	Type        OrderType
	TimeInForce TimeInForce
	Flags       uint16
	Price       Price
	Qty         Quantity
}

// RiskAction is the outcome of a risk decision.
type RiskAction uint16

const (
	RiskActionUnknown RiskAction = iota
	RiskActionAllow
	RiskActionDeny
)

// RiskReason is a coarse reason code for risk decisions.
type RiskReason uint16

const (
	RiskReasonNone RiskReason = iota
	RiskReasonKillSwitch
	RiskReasonMaxQty
	RiskReasonMaxNotional
	RiskReasonRateLimit
	RiskReasonPriceBand
	RiskReasonPositionLimit
)

// RiskDecision is the payload for EventRiskDecision.
type RiskDecision struct {
	OrderID       uint64
	StrategyID    uint32
	SymbolID      uint32
	Action        RiskAction
	Reason        RiskReason
	Flags         uint16
	Reserved      uint16
	ProposedQty   Quantity
	ProposedPrice Price
	CurrentPos    Quantity
	MaxPos        Quantity
	MaxNotional   Notional
}

// OrderAdded is the payload for EventOrderAdded: a resting order was
// accepted into a Level, either one of our own or one inferred from a
// venue depth update.
type OrderAdded struct {
	OrderID  uint64
	SymbolID uint32
	Side     OrderSide
	Flags    uint16
	Price    Price
	Qty      Quantity
	Queue    Quantity
}

// OrderCanceled is the payload for EventOrderCanceled: an order left a
// Level before trading, either via cancel_id or worst-level eviction.
type OrderCanceled struct {
	OrderID  uint64
	SymbolID uint32
	Side     OrderSide
	Flags    uint16
	Qty      Quantity
}

// Print is the payload for EventPrint: the application of an
// externally observed trade print to a Level via reduce_front.
type Print struct {
	SymbolID     uint32
	Side         OrderSide
	Flags        uint16
	Price        Price
	Traded       Quantity
	MarketVolume Quantity
	OurLifted    Quantity
}

// Aggression is the payload for EventAggression: the application of
// self-initiated order flow against a Level via walk_until_lifted.
type Aggression struct {
	SymbolID     uint32
	Side         OrderSide
	Flags        uint16
	Price        Price
	Target       Quantity
	Lifted       Quantity
	MarketVolume Quantity
	Exhausted    bool
}

// LevelSnapshot is the payload for EventLevelSnapshot: a point-in-time
// view of one Level. Snapshot files carry a list of them as the book
// view; recovery does not read them back.
type LevelSnapshot struct {
	SymbolID   uint32
	Side       OrderSide
	Flags      uint16
	Price      Price
	Size       Quantity
	OrderCount uint16
}
