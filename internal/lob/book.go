package lob

import "sort"

// SearchStrategy selects how Lob locates a Level by price.
type SearchStrategy uint8

const (
	// Linear scans from the best (back) toward the worst (front) and
	// returns the first match. Preferred when activity concentrates
	// near the top of book.
	Linear SearchStrategy = iota
	// Binary performs a lower-bound search under the side-appropriate
	// comparator.
	Binary
)

// Config bundles the construction-time parameters that shape a Lob's
// data structures. These correspond to what the original implementation
// fixes at compile time via template parameters.
type Config struct {
	// Shown governs whether Levels on this book track displayed size.
	Shown bool
	// MaxLevels bounds the number of resting price levels per side.
	// Inserting past this bound evicts the worst level.
	MaxLevels int
	// MaxOrds bounds the FIFO depth of every Level.
	MaxOrds int
	// Search selects find_level's strategy.
	Search SearchStrategy
}

// Lob is a book: two side-indexed sequences of Levels, each stored
// worst-to-best. Asks are sorted descending; bids ascending. Neither
// sequence ever holds two levels at the same price.
type Lob struct {
	cfg Config

	// asks and bids hold Levels from worst (index 0) to best (last
	// index): asks descending, bids ascending.
	asks []*Level
	bids []*Level
}

// New constructs an empty book for the given configuration.
func New(cfg Config) *Lob {
	return &Lob{
		cfg:  cfg,
		asks: make([]*Level, 0, cfg.MaxLevels),
		bids: make([]*Level, 0, cfg.MaxLevels),
	}
}

func (b *Lob) levels(side Side) []*Level {
	if side == Ask {
		return b.asks
	}
	return b.bids
}

func (b *Lob) setLevels(side Side, ls []*Level) {
	if side == Ask {
		b.asks = ls
	} else {
		b.bids = ls
	}
}

// FindLevel returns the Level resting at price on side, if any.
func (b *Lob) FindLevel(side Side, price Price) (*Level, bool) {
	ls := b.levels(side)
	if b.cfg.Search == Binary {
		i := b.locate(side, price)
		if i < len(ls) && ls[i].Price() == price {
			return ls[i], true
		}
		return nil, false
	}
	for i := len(ls) - 1; i >= 0; i-- {
		if ls[i].Price() == price {
			return ls[i], true
		}
	}
	return nil, false
}

// locate returns the index of the first level whose price is not
// worse than price under the side's ordering (a lower-bound search
// over the worst-to-best sequence). It is used both by binary
// find_level and by the insertion path, regardless of the configured
// search strategy: maintaining the sorted invariant on insert is a
// pure implementation detail, not something spec.md constrains either
// way.
func (b *Lob) locate(side Side, price Price) int {
	ls := b.levels(side)
	if side == Ask {
		// descending: worst (highest) first, best (lowest) last.
		return sort.Search(len(ls), func(i int) bool { return ls[i].Price() <= price })
	}
	// ascending: worst (lowest) first, best (highest) last.
	return sort.Search(len(ls), func(i int) bool { return ls[i].Price() >= price })
}

// AddOrder routes order to the Level at its price, creating the level
// (and evicting the worst level if the side is already at MaxLevels)
// if none exists yet. Returns false if the target level's FIFO is
// already full, or if the side is already at MaxLevels and order's
// price is worse than every resting level: such a level would only be
// created to be evicted again immediately, so the order is rejected
// rather than silently accepted and discarded.
func (b *Lob) AddOrder(side Side, order Order) bool {
	ls := b.levels(side)
	i := b.locate(side, order.Price)
	if i < len(ls) && ls[i].Price() == order.Price {
		return ls[i].AddOrder(order)
	}

	if i == 0 && len(ls) >= b.cfg.MaxLevels {
		return false
	}

	lvl := NewLevel(side, b.cfg.Shown, b.cfg.MaxOrds, order.Price)
	ls = insertAt(ls, i, lvl)
	if len(ls) > b.cfg.MaxLevels {
		ls = ls[1:]
	}
	b.setLevels(side, ls)

	lvl.AddOrder(order)
	return true
}

// insertAt inserts v at index i, shifting the tail right by one.
func insertAt(ls []*Level, i int, v *Level) []*Level {
	ls = append(ls, nil)
	copy(ls[i+1:], ls[i:])
	ls[i] = v
	return ls
}

// removeLevelAt removes the level at index i.
func removeLevelAt(ls []*Level, i int) []*Level {
	copy(ls[i:], ls[i+1:])
	return ls[:len(ls)-1]
}

// CancelId cancels an order by id, scanning every level on side from
// best to worst. Returns the cancelled order, or false if not found.
func (b *Lob) CancelId(side Side, id Id) (Order, bool) {
	ls := b.levels(side)
	for i := len(ls) - 1; i >= 0; i-- {
		if ord, ok := ls[i].CancelId(id); ok {
			b.dropIfEmpty(side, i)
			return ord, true
		}
	}
	return Order{}, false
}

// CancelIdAt cancels an order by id at a specific price only.
func (b *Lob) CancelIdAt(side Side, price Price, id Id) (Order, bool) {
	ls := b.levels(side)
	i := b.locate(side, price)
	if i >= len(ls) || ls[i].Price() != price {
		return Order{}, false
	}
	ord, ok := ls[i].CancelId(id)
	if !ok {
		return Order{}, false
	}
	b.dropIfEmpty(side, i)
	return ord, true
}

func (b *Lob) dropIfEmpty(side Side, i int) {
	ls := b.levels(side)
	if ls[i].Len() == 0 {
		b.setLevels(side, removeLevelAt(ls, i))
	}
}

// ReduceFront applies an externally observed trade print of traded
// units to the level resting at price on side. Returns the level's
// TradeResult, or a zero TradeResult if no such level exists.
func (b *Lob) ReduceFront(side Side, price Price, traded Size) TradeResult {
	lvl, ok := b.FindLevel(side, price)
	if !ok {
		return TradeResult{}
	}
	result := lvl.ReduceFront(traded)
	if lvl.Len() == 0 {
		i := b.locate(side, price)
		b.dropIfEmpty(side, i)
	}
	return result
}

// WalkUntilLifted simulates aggressing the level resting at price on
// side until target units of our own have been consumed, evicting the
// level if it empties out.
func (b *Lob) WalkUntilLifted(side Side, price Price, target Size) TradeResult {
	lvl, ok := b.FindLevel(side, price)
	if !ok {
		return TradeResult{}
	}
	result := lvl.WalkUntilLifted(target)
	if lvl.Len() == 0 {
		i := b.locate(side, price)
		b.dropIfEmpty(side, i)
	}
	return result
}

// BestLevel returns the best (highest-priority) level on side: the
// lowest ask or the highest bid.
func (b *Lob) BestLevel(side Side) (*Level, bool) {
	ls := b.levels(side)
	if len(ls) == 0 {
		return nil, false
	}
	return ls[len(ls)-1], true
}

// WorstLevel returns the worst (lowest-priority) level on side.
func (b *Lob) WorstLevel(side Side) (*Level, bool) {
	ls := b.levels(side)
	if len(ls) == 0 {
		return nil, false
	}
	return ls[0], true
}

// Levels returns the resting levels on side, worst-to-best. The
// returned slice is owned by the caller.
func (b *Lob) Levels(side Side) []*Level {
	ls := b.levels(side)
	out := make([]*Level, len(ls))
	copy(out, ls)
	return out
}
