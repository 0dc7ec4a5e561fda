package lob

import (
	"reflect"
	"testing"
)

func mkOrder(price Price, size Size, id Id) Order {
	return NewLimitOrder(price, size, id, 0, Open)
}

func queues(orders []Order) []Queue {
	out := make([]Queue, len(orders))
	for i, o := range orders {
		out[i] = o.Queue
	}
	return out
}

func sizes(orders []Order) []Size {
	out := make([]Size, len(orders))
	for i, o := range orders {
		out[i] = o.Size
	}
	return out
}

// S1 — add/cancel round-trip.
func TestLevelAddCancelRoundTrip(t *testing.T) {
	lvl := NewLevel(Ask, true, 6, 100)

	if ok := lvl.AddOrder(mkOrder(100, 5, 1)); !ok {
		t.Fatal("add_order(1) rejected")
	}
	if lvl.Size() != 5 || !reflect.DeepEqual(queues(lvl.Orders()), []Queue{0}) {
		t.Fatalf("after first add: size=%d queues=%v", lvl.Size(), queues(lvl.Orders()))
	}

	if ok := lvl.AddOrder(mkOrder(100, 3, 2)); !ok {
		t.Fatal("add_order(2) rejected")
	}
	if lvl.Size() != 8 || !reflect.DeepEqual(queues(lvl.Orders()), []Queue{0, 5}) {
		t.Fatalf("after second add: size=%d queues=%v", lvl.Size(), queues(lvl.Orders()))
	}

	cancelled, ok := lvl.CancelId(1)
	if !ok || cancelled.Id != 1 {
		t.Fatalf("cancel_id(1) = %+v, %v", cancelled, ok)
	}
	if lvl.Size() != 3 {
		t.Fatalf("after cancel: size=%d, want 3", lvl.Size())
	}
	if got := lvl.Orders(); len(got) != 1 || got[0].Id != 2 || got[0].Size != 3 || got[0].Queue != 0 {
		t.Fatalf("after cancel: orders=%+v", got)
	}
}

func s2Level() *Level {
	lvl := NewLevel(Ask, true, 6, 100)
	lvl.AddOrder(mkOrder(100, 4, 1))
	lvl.AddOrder(mkOrder(100, 6, 2))
	lvl.AddOrder(mkOrder(100, 2, 3))
	return lvl
}

// S2 — reduce_front partial lift, Shown=true.
func TestLevelReduceFrontPartialLift(t *testing.T) {
	lvl := s2Level()
	if lvl.Size() != 12 {
		t.Fatalf("pre-state size=%d, want 12", lvl.Size())
	}

	result := lvl.ReduceFront(5)

	if len(result.OurLifted) != 2 || result.OurLifted[0].Size != 4 || result.OurLifted[1].Size != 1 {
		t.Fatalf("our_lifted=%v, want [(4),(1)]", sizes(result.OurLifted))
	}
	if result.MarketVolume != 5 {
		t.Fatalf("market_volume=%d, want 5", result.MarketVolume)
	}
	if lvl.Size() != 7 {
		t.Fatalf("level size=%d, want 7", lvl.Size())
	}
	orders := lvl.Orders()
	if len(orders) != 2 || orders[0].Size != 5 || orders[0].Queue != 0 || orders[1].Size != 2 || orders[1].Queue != 5 {
		t.Fatalf("level orders=%+v, want [(5,q=0),(2,q=5)]", orders)
	}
}

// S3 — reduce_front full sweep.
func TestLevelReduceFrontFullSweep(t *testing.T) {
	lvl := s2Level()

	result := lvl.ReduceFront(100)

	if len(result.OurLifted) != 3 {
		t.Fatalf("our_lifted len=%d, want 3", len(result.OurLifted))
	}
	if result.MarketVolume != 12 {
		t.Fatalf("market_volume=%d, want 12", result.MarketVolume)
	}
	if lvl.Len() != 0 || lvl.Size() != 0 {
		t.Fatalf("level not empty: len=%d size=%d", lvl.Len(), lvl.Size())
	}
}

// S4 — reduce_front, Shown=false.
func TestLevelReduceFrontHidden(t *testing.T) {
	lvl := NewLevel(Ask, false, 6, 100)
	lvl.AddOrder(mkOrder(100, 4, 1))
	lvl.orders[0].Queue = 3
	lvl.AddOrder(mkOrder(100, 6, 2))
	lvl.orders[1].Queue = 7
	// A hidden level's size grows only through AddLiquidity; give it
	// anonymous volume above the print so the partial path applies.
	lvl.AddLiquidity(10)

	result := lvl.ReduceFront(5)

	if len(result.OurLifted) != 1 || result.OurLifted[0].Size != 4 {
		t.Fatalf("our_lifted=%v, want [(4)]", sizes(result.OurLifted))
	}
	if result.MarketVolume != 5 {
		t.Fatalf("market_volume=%d, want 5", result.MarketVolume)
	}
	orders := lvl.Orders()
	if len(orders) != 1 || orders[0].Size != 6 || orders[0].Queue != 2 {
		t.Fatalf("level orders=%+v, want [(6,q=2)]", orders)
	}
}

// S5 — walk_until_lifted, partial last.
func TestLevelWalkUntilLiftedPartialLast(t *testing.T) {
	lvl := NewLevel(Ask, true, 6, 100)
	lvl.AddOrder(mkOrder(100, 4, 1))
	lvl.AddOrder(mkOrder(100, 6, 2))
	if lvl.Size() != 10 {
		t.Fatalf("pre-state size=%d, want 10", lvl.Size())
	}

	result := lvl.WalkUntilLifted(7)

	if len(result.OurLifted) != 2 || result.OurLifted[0].Size != 4 || result.OurLifted[1].Size != 3 {
		t.Fatalf("our_lifted=%v, want [(4),(3)]", sizes(result.OurLifted))
	}
	if result.MarketVolume != 7 {
		t.Fatalf("market_volume=%d, want 7", result.MarketVolume)
	}
	if lvl.Size() != 3 {
		t.Fatalf("level size=%d, want 3", lvl.Size())
	}
	orders := lvl.Orders()
	if len(orders) != 1 || orders[0].Size != 3 || orders[0].Queue != 0 {
		t.Fatalf("level orders=%+v, want [(3,q=0)]", orders)
	}
}

// S6 — walk_until_lifted, insufficient liquidity.
func TestLevelWalkUntilLiftedInsufficient(t *testing.T) {
	lvl := NewLevel(Ask, true, 6, 100)
	lvl.AddOrder(mkOrder(100, 2, 1))

	result := lvl.WalkUntilLifted(10)

	if len(result.OurLifted) != 1 || result.OurLifted[0].Size != 2 {
		t.Fatalf("our_lifted=%v, want [(2)]", sizes(result.OurLifted))
	}
	if result.MarketVolume != 2 {
		t.Fatalf("market_volume=%d, want 2", result.MarketVolume)
	}
	if lvl.Len() != 0 || lvl.Size() != 0 {
		t.Fatalf("level not empty after insufficient walk: len=%d size=%d", lvl.Len(), lvl.Size())
	}
}

func TestLevelAddOrderCapacity(t *testing.T) {
	lvl := NewLevel(Ask, true, 2, 100)
	if !lvl.AddOrder(mkOrder(100, 1, 1)) {
		t.Fatal("first add rejected")
	}
	if !lvl.AddOrder(mkOrder(100, 1, 2)) {
		t.Fatal("second add rejected")
	}
	if lvl.AddOrder(mkOrder(100, 1, 3)) {
		t.Fatal("third add should be rejected at capacity")
	}
	if lvl.Len() != 2 {
		t.Fatalf("len=%d, want 2 (no mutation on overflow)", lvl.Len())
	}
}

func TestLevelCancelUnknownId(t *testing.T) {
	lvl := NewLevel(Ask, true, 6, 100)
	lvl.AddOrder(mkOrder(100, 1, 1))

	if _, ok := lvl.CancelId(99); ok {
		t.Fatal("cancel_id(99) should report not found")
	}
	if lvl.Len() != 1 {
		t.Fatalf("len=%d, want 1 (unchanged)", lvl.Len())
	}
}

func TestLevelCancelAll(t *testing.T) {
	lvl := NewLevel(Ask, true, 6, 100)
	lvl.AddOrder(mkOrder(100, 1, 1))
	lvl.AddOrder(mkOrder(100, 2, 2))

	removed := lvl.CancelAll()

	if len(removed) != 2 {
		t.Fatalf("cancel_all returned %d orders, want 2", len(removed))
	}
	if lvl.Len() != 0 || lvl.Size() != 0 {
		t.Fatalf("level not empty after cancel_all: len=%d size=%d", lvl.Len(), lvl.Size())
	}
}

func TestLevelAddLiquidityDoesNotTouchQueue(t *testing.T) {
	lvl := NewLevel(Ask, true, 6, 100)
	lvl.AddOrder(mkOrder(100, 4, 1))
	lvl.AddLiquidity(10)

	if lvl.Size() != 14 {
		t.Fatalf("size=%d, want 14", lvl.Size())
	}
	orders := lvl.Orders()
	if orders[0].Queue != 0 {
		t.Fatalf("add_liquidity must not move existing queues, got %d", orders[0].Queue)
	}
}

// Queue monotonicity invariant (spec 8.1.3): for i<j, orders[i].queue <= orders[j].queue.
func TestLevelQueueMonotonic(t *testing.T) {
	lvl := NewLevel(Ask, true, 6, 100)
	for i, sz := range []Size{3, 5, 1, 2} {
		lvl.AddOrder(mkOrder(100, sz, Id(i+1)))
	}
	orders := lvl.Orders()
	for i := 1; i < len(orders); i++ {
		if orders[i-1].Queue > orders[i].Queue {
			t.Fatalf("queue monotonicity violated at %d: %+v", i, orders)
		}
	}
}
