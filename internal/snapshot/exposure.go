package snapshot

import "github.com/veloxmarkets/lobcore/internal/schema"

// ExposureReducer tracks net resting exposure of our own orders per
// symbol: the signed sum of Buy-side qty minus Sell-side qty still
// live in the book. It only reacts to events carrying
// schema.FlagOwnOrder; venue-inferred OrderAdded/OrderCanceled events
// pass through untouched. This mirrors the teacher's fill-driven
// position reducer, adapted from trade fills to Level lifecycle
// events since this core has no execution report of its own.
type ExposureReducer struct {
	bySymbol map[uint32]schema.Quantity
}

// NewExposureReducer creates an empty reducer.
func NewExposureReducer() *ExposureReducer {
	return &ExposureReducer{bySymbol: make(map[uint32]schema.Quantity)}
}

func signedQty(side schema.OrderSide, qty schema.Quantity) schema.Quantity {
	if side == schema.OrderSideSell {
		return -qty
	}
	return qty
}

func opposite(side schema.OrderSide) schema.OrderSide {
	switch side {
	case schema.OrderSideBuy:
		return schema.OrderSideSell
	case schema.OrderSideSell:
		return schema.OrderSideBuy
	default:
		return side
	}
}

// ApplyOrderAdded folds a resting-order acceptance into exposure.
func (r *ExposureReducer) ApplyOrderAdded(evt schema.OrderAdded) {
	if evt.Flags&schema.FlagOwnOrder == 0 {
		return
	}
	r.bySymbol[evt.SymbolID] += signedQty(evt.Side, evt.Qty)
}

// ApplyOrderCanceled folds a resting-order removal (before trading)
// back out of exposure.
func (r *ExposureReducer) ApplyOrderCanceled(evt schema.OrderCanceled) {
	if evt.Flags&schema.FlagOwnOrder == 0 {
		return
	}
	r.bySymbol[evt.SymbolID] -= signedQty(evt.Side, evt.Qty)
}

// ApplyPrint folds the OurLifted portion of a reduce_front print back
// out of exposure: a resting order on evt.Side being lifted shrinks
// our resting exposure on that side.
func (r *ExposureReducer) ApplyPrint(evt schema.Print) {
	if evt.OurLifted == 0 {
		return
	}
	r.bySymbol[evt.SymbolID] -= signedQty(evt.Side, evt.OurLifted)
}

// ApplyAggression folds a walk_until_lifted application into
// exposure: evt.Side is the resting side being swept, so our own
// fill lands on the opposite side.
func (r *ExposureReducer) ApplyAggression(evt schema.Aggression) {
	if evt.Lifted == 0 {
		return
	}
	r.bySymbol[evt.SymbolID] += signedQty(opposite(evt.Side), evt.Lifted)
}

// ApplySnapshot replaces tracked exposure with a snapshot.
func (r *ExposureReducer) ApplySnapshot(snap Snapshot) {
	if r.bySymbol == nil {
		r.bySymbol = make(map[uint32]schema.Quantity, len(snap.Exposures))
	} else {
		for key := range r.bySymbol {
			delete(r.bySymbol, key)
		}
	}
	for _, entry := range snap.Exposures {
		r.bySymbol[entry.SymbolID] = entry.Qty
	}
}

// Exposure returns the current net resting exposure for a symbol.
func (r *ExposureReducer) Exposure(symbolID uint32) schema.Quantity {
	return r.bySymbol[symbolID]
}

// Count returns the number of tracked symbols.
func (r *ExposureReducer) Count() int {
	return len(r.bySymbol)
}
