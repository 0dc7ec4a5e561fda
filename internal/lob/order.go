package lob

// coldContext holds the part of an Order that is not touched on the
// hot matching path: the original size/queue at construction time and
// the caller-supplied position-effect and arrival tick. It is owned
// exclusively by the Order that points to it; cloning an Order
// duplicates coldContext rather than sharing it.
type coldContext struct {
	originalSize  Size
	originalQueue Queue
	offset        Offset
	time          Time
}

// Order is a single resting order. Price/Size/Queue/Id are the hot
// fields mutated by the Level that owns the order; OriginalSize,
// OriginalQueue, Offset and Time are cold context reached through an
// owning pointer that is never nil for a live Order.
type Order struct {
	Price Price
	Size  Size
	Queue Queue
	Id    Id

	cold *coldContext
}

// NewLimitOrder constructs a resting limit-like order with queue and
// original_queue initialized to 0. Constructing with id=0 is a
// programming error; the core assumes id != 0 for anything stored in
// a Level.
func NewLimitOrder(price Price, size Size, id Id, time Time, offset Offset) Order {
	return Order{
		Price: price,
		Size:  size,
		Queue: 0,
		Id:    id,
		cold: &coldContext{
			originalSize:  size,
			originalQueue: 0,
			offset:        offset,
			time:          time,
		},
	}
}

// NewMarketOrder constructs a market-like order: identical to
// NewLimitOrder but with price fixed at 0.
func NewMarketOrder(size Size, id Id, time Time, offset Offset) Order {
	o := NewLimitOrder(0, size, id, time, offset)
	return o
}

// OriginalSize returns the size the order was constructed with.
func (o Order) OriginalSize() Size { return o.cold.originalSize }

// OriginalQueue returns the queue value the order was constructed
// with.
func (o Order) OriginalQueue() Queue { return o.cold.originalQueue }

// Offset returns the order's position-effect tag.
func (o Order) Offset() Offset { return o.cold.offset }

// Time returns the tick the order arrived at.
func (o Order) Time() Time { return o.cold.time }

// Clone performs a deep copy: the returned Order owns a duplicate
// cold context rather than aliasing the receiver's.
func (o Order) Clone() Order {
	cold := *o.cold
	return Order{
		Price: o.Price,
		Size:  o.Size,
		Queue: o.Queue,
		Id:    o.Id,
		cold:  &cold,
	}
}

// Equal reports whether two Order values represent the same logical
// order. Identity is by id alone; two records with the same id may
// describe the order at different lifecycle stages.
func (o Order) Equal(other Order) bool {
	return o.Id == other.Id
}

// withSize returns a shallow copy of o with Size replaced. Used by
// Level to emit partial-fill records into a TradeResult: the copy
// shares cold context with the resting order, which is safe because
// cold context is only written at construction and by Level.AddOrder,
// never after the order rests in a Level.
func (o Order) withSize(size Size) Order {
	o.Size = size
	return o
}
