// Package gateway tracks the lifecycle of the trader's own resting
// orders as they pass through internal/lob. It has no opinion about
// where order flow originates (internal/sim or a real strategy) or
// where lob.TradeResult values come from (reduce_front or
// walk_until_lifted) — it only turns both into ack/fill/cancel state
// transitions the way internal/og's state machine turned exchange acks
// into order states.
package gateway

import (
	goerrors "errors"

	"github.com/yanun0323/logs"

	"github.com/veloxmarkets/lobcore/internal/lob"
	"github.com/veloxmarkets/lobcore/internal/schema"
)

var (
	ErrDuplicateOrder    = goerrors.New("order already exists")
	ErrUnknownOrder      = goerrors.New("order not found")
	ErrInvalidTransition = goerrors.New("invalid order state transition")
	ErrRejectedByBook    = goerrors.New("rejected: level at capacity")
)

// OrderState tracks the lifecycle of one of our own orders as it
// passes through internal/lob.
type OrderState uint16

const (
	OrderStateUnknown OrderState = iota
	OrderStateSent
	OrderStateAcked
	OrderStatePartFilled
	OrderStateFilled
	OrderStateCanceled
	OrderStateRejected
)

func isTerminal(state OrderState) bool {
	switch state {
	case OrderStateFilled, OrderStateCanceled, OrderStateRejected:
		return true
	default:
		return false
	}
}

// Order holds the gateway's view of one of our resting orders.
type Order struct {
	ID        lob.Id
	SymbolID  uint32
	Side      lob.Side
	Price     lob.Price
	Qty       lob.Size
	LeavesQty lob.Size
	State     OrderState
}

// Gateway is the in-process analogue of an order gateway: every order
// it submits is synchronously Acked or Rejected by internal/lob's
// add_order, since there is no network round-trip in this core.
type Gateway struct {
	orders map[lob.Id]*Order
}

// New creates an empty gateway.
func New() *Gateway {
	return &Gateway{orders: make(map[lob.Id]*Order)}
}

// Order returns the gateway's current view of an order.
func (g *Gateway) Order(id lob.Id) (*Order, bool) {
	o, ok := g.orders[id]
	return o, ok
}

// Submit adds order to book on side and records the resulting state.
// A rejection (Level FIFO at capacity) is not an error from the book's
// perspective — spec.md's error table treats it as a plain `false`
// return — but the gateway surfaces it as ErrRejectedByBook so callers
// can distinguish it from a successful Acked order.
func (g *Gateway) Submit(book *lob.Lob, side lob.Side, symbolID uint32, order lob.Order) (*Order, error) {
	if order.Id == 0 {
		return nil, ErrUnknownOrder
	}
	if _, ok := g.orders[order.Id]; ok {
		return nil, ErrDuplicateOrder
	}

	tracked := &Order{
		ID:        order.Id,
		SymbolID:  symbolID,
		Side:      side,
		Price:     order.Price,
		Qty:       order.Size,
		LeavesQty: order.Size,
		State:     OrderStateSent,
	}
	g.orders[order.Id] = tracked

	if !book.AddOrder(side, order) {
		tracked.State = OrderStateRejected
		logs.Warnf("gateway: order %d rejected, level at capacity (price=%d side=%s)", order.Id, order.Price, side)
		return tracked, ErrRejectedByBook
	}

	tracked.State = OrderStateAcked
	logs.Infof("gateway: order %d acked (price=%d size=%d side=%s)", order.Id, order.Price, order.Size, side)
	return tracked, nil
}

// Cancel cancels one of our orders at a specific price and updates its
// state. It mirrors lob.Lob.CancelIdAt's price-qualified contract.
func (g *Gateway) Cancel(book *lob.Lob, side lob.Side, price lob.Price, id lob.Id) error {
	tracked, ok := g.orders[id]
	if !ok {
		return ErrUnknownOrder
	}
	if isTerminal(tracked.State) {
		return ErrInvalidTransition
	}
	if _, ok := book.CancelIdAt(side, price, id); !ok {
		return ErrUnknownOrder
	}
	tracked.State = OrderStateCanceled
	tracked.LeavesQty = 0
	logs.Infof("gateway: order %d canceled", id)
	return nil
}

// ApplyTradeResult folds a lob.TradeResult (from reduce_front or
// walk_until_lifted) into the gateway's view of our orders: every
// entry in result.OurLifted decrements the matching order's
// LeavesQty and transitions it to PartFilled or Filled.
func (g *Gateway) ApplyTradeResult(result lob.TradeResult) []schema.OrderSide {
	var sidesTouched []schema.OrderSide
	for _, lifted := range result.OurLifted {
		tracked, ok := g.orders[lifted.Id]
		if !ok {
			continue
		}
		if isTerminal(tracked.State) {
			continue
		}
		if lifted.Size >= tracked.LeavesQty {
			tracked.LeavesQty = 0
			tracked.State = OrderStateFilled
		} else {
			tracked.LeavesQty -= lifted.Size
			tracked.State = OrderStatePartFilled
		}
		sidesTouched = append(sidesTouched, toSchemaSide(tracked.Side))
		logs.Infof("gateway: order %d lifted %d, leaves=%d, state=%d", lifted.Id, lifted.Size, tracked.LeavesQty, tracked.State)
	}
	return sidesTouched
}

func toSchemaSide(side lob.Side) schema.OrderSide {
	if side == lob.Bid {
		return schema.OrderSideBuy
	}
	return schema.OrderSideSell
}
