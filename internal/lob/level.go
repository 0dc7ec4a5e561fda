package lob

// TradeResult is the return of every fill operation: which of our
// orders were consumed and how much total volume moved at the level.
type TradeResult struct {
	// OurLifted holds, in front-to-back FIFO order, the orders that
	// belong to us and were fully or partially consumed. Each order's
	// Size reflects the quantity lifted, not its original size.
	OurLifted []Order
	// MarketVolume is the total volume that moved at the level during
	// the operation, including both our liquidity and anonymous
	// liquidity modelled by the queue fields.
	MarketVolume Size
}

// Level is a single price level on one side of the book. Shown
// governs whether resting orders contribute to Size (the publicly
// displayed volume); MaxOrds bounds the FIFO depth. All operations are
// O(MaxOrds).
type Level struct {
	side    Side
	shown   bool
	maxOrds int

	price Price
	size  Size

	orders []Order
}

// NewLevel constructs an empty level at price for the given side.
// shown and maxOrds are fixed for the level's lifetime.
func NewLevel(side Side, shown bool, maxOrds int, price Price) *Level {
	return &Level{
		side:    side,
		shown:   shown,
		maxOrds: maxOrds,
		price:   price,
		orders:  make([]Order, 0, maxOrds),
	}
}

func (l *Level) Side() Side    { return l.side }
func (l *Level) Shown() bool   { return l.shown }
func (l *Level) Price() Price  { return l.price }
func (l *Level) Size() Size    { return l.size }
func (l *Level) Len() int      { return len(l.orders) }
func (l *Level) MaxOrds() int  { return l.maxOrds }

// Orders returns the resting orders in FIFO (arrival) order. The
// returned slice is owned by the caller; mutating it does not affect
// the level.
func (l *Level) Orders() []Order {
	out := make([]Order, len(l.orders))
	copy(out, l.orders)
	return out
}

// Compare orders this level against another by price alone,
// regardless of side. Used only for cross checks.
func (l *Level) Compare(other *Level) int {
	return int(l.price) - int(other.price)
}

// ComparePrice orders this level against a bare price.
func (l *Level) ComparePrice(p Price) int {
	return int(l.price) - int(p)
}

// AddOrder appends order at the back of the FIFO. The caller must
// ensure order.Price == level.Price and order.Id != 0; violating this
// is a programming error with undefined behaviour. Returns false
// (leaving the level unchanged) if the FIFO is already at capacity.
func (l *Level) AddOrder(order Order) bool {
	if len(l.orders) >= l.maxOrds {
		return false
	}
	order.Queue = Queue(l.size)
	order.cold.originalQueue = Queue(l.size)
	l.orders = append(l.orders, order)
	if l.shown {
		l.size += order.Size
	}
	return true
}

// AddLiquidity models anonymous external liquidity that appeared
// ahead of any newly added orders: it increases Size without altering
// any existing order's Queue, since queue positions were fixed at
// insertion time.
func (l *Level) AddLiquidity(delta Size) {
	l.size += delta
}

// FindId returns the resting order with the given id, if present.
func (l *Level) FindId(id Id) (Order, bool) {
	for _, o := range l.orders {
		if o.Id == id {
			return o, true
		}
	}
	return Order{}, false
}

// CancelId removes the order with the given id, decrementing Size (if
// Shown) by its size and every following order's Queue by
// min(queue, cancelled size). Returns the removed order, or false if
// no order with that id is resting.
func (l *Level) CancelId(id Id) (Order, bool) {
	idx := -1
	for i, o := range l.orders {
		if o.Id == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Order{}, false
	}
	removed := l.orders[idx]
	if l.shown {
		l.size = subSize(l.size, removed.Size)
	}
	copy(l.orders[idx:], l.orders[idx+1:])
	l.orders = l.orders[:len(l.orders)-1]

	delta := Queue(removed.Size)
	for i := idx; i < len(l.orders); i++ {
		l.orders[i].Queue = subQueue(l.orders[i].Queue, delta)
	}
	return removed, true
}

// CancelAll empties the FIFO, zeroing Size if Shown, and returns all
// resting orders in FIFO order.
func (l *Level) CancelAll() []Order {
	out := make([]Order, len(l.orders))
	copy(out, l.orders)
	if l.shown {
		l.size = 0
	}
	l.orders = l.orders[:0]
	return out
}

// removePrefix drops the first n orders, preserving the remaining
// orders' relative order and the slice's backing capacity.
func (l *Level) removePrefix(n int) {
	if n <= 0 {
		return
	}
	remaining := copy(l.orders, l.orders[n:])
	l.orders = l.orders[:remaining]
}

// ReduceFront applies an externally observed trade print of traded
// units to the front of the level's queue: orders whose queue
// position has been reached are lifted, partially or fully, and the
// remaining orders' queues advance.
func (l *Level) ReduceFront(traded Size) TradeResult {
	if traded >= l.size {
		result := TradeResult{
			OurLifted:    l.Orders(),
			MarketVolume: l.size,
		}
		l.orders = l.orders[:0]
		l.size = 0
		return result
	}

	result := TradeResult{MarketVolume: traded}

	if l.shown {
		j := 0
		for j < len(l.orders) && Size(l.orders[j].Queue)+l.orders[j].Size <= traded {
			result.OurLifted = append(result.OurLifted, l.orders[j])
			j++
		}
		decrementStart := j
		if j < len(l.orders) && Size(l.orders[j].Queue) < traded {
			lifted := traded - Size(l.orders[j].Queue)
			result.OurLifted = append(result.OurLifted, l.orders[j].withSize(lifted))
			l.orders[j].Size = subSize(l.orders[j].Size, lifted)
			l.orders[j].Queue = 0
			decrementStart = j + 1
		}
		for k := decrementStart; k < len(l.orders); k++ {
			l.orders[k].Queue = subQueue(l.orders[k].Queue, Queue(traded))
		}
		l.removePrefix(j)
	} else {
		j := 0
		for j < len(l.orders) && Size(l.orders[j].Queue) < traded {
			result.OurLifted = append(result.OurLifted, l.orders[j])
			j++
		}
		for k := j; k < len(l.orders); k++ {
			l.orders[k].Queue = subQueue(l.orders[k].Queue, Queue(traded))
		}
		l.removePrefix(j)
	}

	l.size = subSize(l.size, traded)
	return result
}

// WalkUntilLifted simulates the trader aggressing this level: it
// consumes resting orders in FIFO order until target units of our own
// have been removed, then reports the total market volume that moved.
// If the level is exhausted first, MarketVolume reports the level's
// pre-walk size and the level is left empty; the caller is expected to
// continue on the next level.
func (l *Level) WalkUntilLifted(target Size) TradeResult {
	var result TradeResult
	selfLifted := Size(0)
	tradedVolume := Size(0)
	remaining := 0

	for remaining < len(l.orders) && selfLifted < target {
		front := l.orders[remaining]
		lift := minSize(front.Size, target-selfLifted)
		selfLifted += lift
		if l.shown {
			tradedVolume = Size(front.Queue) + lift
		} else {
			tradedVolume = Size(front.Queue)
		}

		if lift == front.Size {
			result.OurLifted = append(result.OurLifted, front)
			remaining++
		} else {
			result.OurLifted = append(result.OurLifted, front.withSize(lift))
			l.orders[remaining].Size = subSize(l.orders[remaining].Size, lift)
			l.orders[remaining].Queue = 0
		}
	}

	if selfLifted < target {
		result.MarketVolume = l.size
		l.size = 0
		l.removePrefix(remaining)
		return result
	}

	for k := remaining; k < len(l.orders); k++ {
		l.orders[k].Queue = subQueue(l.orders[k].Queue, Queue(tradedVolume))
	}
	result.MarketVolume = tradedVolume
	l.size = subSize(l.size, tradedVolume)
	l.removePrefix(remaining)
	return result
}
