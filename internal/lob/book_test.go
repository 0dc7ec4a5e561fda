package lob

import "testing"

func linearBook() *Lob {
	return New(Config{Shown: true, MaxLevels: 4, MaxOrds: 6, Search: Linear})
}

func binaryBook() *Lob {
	return New(Config{Shown: true, MaxLevels: 4, MaxOrds: 6, Search: Binary})
}

func TestLobOrderingAsksDescendingBidsAscending(t *testing.T) {
	for _, b := range []*Lob{linearBook(), binaryBook()} {
		b.AddOrder(Ask, mkOrder(103, 1, 1))
		b.AddOrder(Ask, mkOrder(101, 1, 2))
		b.AddOrder(Ask, mkOrder(102, 1, 3))

		asks := b.Levels(Ask)
		want := []Price{103, 102, 101}
		for i, lvl := range asks {
			if lvl.Price() != want[i] {
				t.Fatalf("asks[%d].price=%d, want %d (asks=%v)", i, lvl.Price(), want[i], pricesOf(asks))
			}
		}

		b.AddOrder(Bid, mkOrder(98, 1, 4))
		b.AddOrder(Bid, mkOrder(100, 1, 5))
		b.AddOrder(Bid, mkOrder(99, 1, 6))

		bids := b.Levels(Bid)
		wantBids := []Price{98, 99, 100}
		for i, lvl := range bids {
			if lvl.Price() != wantBids[i] {
				t.Fatalf("bids[%d].price=%d, want %d (bids=%v)", i, lvl.Price(), wantBids[i], pricesOf(bids))
			}
		}
	}
}

func pricesOf(ls []*Level) []Price {
	out := make([]Price, len(ls))
	for i, l := range ls {
		out[i] = l.Price()
	}
	return out
}

func TestLobFindLevelLinearAndBinaryAgree(t *testing.T) {
	lin := linearBook()
	bin := binaryBook()
	for _, b := range []*Lob{lin, bin} {
		b.AddOrder(Ask, mkOrder(101, 1, 1))
		b.AddOrder(Ask, mkOrder(103, 1, 2))
		b.AddOrder(Ask, mkOrder(102, 1, 3))
	}

	for _, price := range []Price{101, 102, 103, 104} {
		linLvl, linOk := lin.FindLevel(Ask, price)
		binLvl, binOk := bin.FindLevel(Ask, price)
		if linOk != binOk {
			t.Fatalf("price %d: linear found=%v, binary found=%v", price, linOk, binOk)
		}
		if linOk && linLvl.Price() != binLvl.Price() {
			t.Fatalf("price %d: linear=%d binary=%d", price, linLvl.Price(), binLvl.Price())
		}
	}
}

func TestLobBestAndWorstLevel(t *testing.T) {
	b := linearBook()
	b.AddOrder(Ask, mkOrder(103, 1, 1))
	b.AddOrder(Ask, mkOrder(101, 1, 2))
	b.AddOrder(Ask, mkOrder(102, 1, 3))

	best, ok := b.BestLevel(Ask)
	if !ok || best.Price() != 101 {
		t.Fatalf("best ask = %v, %v, want 101", best, ok)
	}
	worst, ok := b.WorstLevel(Ask)
	if !ok || worst.Price() != 103 {
		t.Fatalf("worst ask = %v, %v, want 103", worst, ok)
	}
}

func TestLobLevelCountOverflowEvictsWorst(t *testing.T) {
	b := New(Config{Shown: true, MaxLevels: 2, MaxOrds: 6, Search: Linear})
	b.AddOrder(Ask, mkOrder(103, 1, 1))
	b.AddOrder(Ask, mkOrder(102, 1, 2))
	if len(b.Levels(Ask)) != 2 {
		t.Fatalf("expected 2 levels before overflow, got %d", len(b.Levels(Ask)))
	}

	b.AddOrder(Ask, mkOrder(101, 1, 3))

	asks := b.Levels(Ask)
	if len(asks) != 2 {
		t.Fatalf("level count=%d, want 2 after overflow", len(asks))
	}
	if _, ok := b.FindLevel(Ask, 103); ok {
		t.Fatal("worst level (103) should have been evicted")
	}
	if _, ok := b.FindLevel(Ask, 101); !ok {
		t.Fatal("newly inserted best level (101) should be present")
	}
}

func TestLobLevelCountOverflowRejectsNewWorstLevel(t *testing.T) {
	b := New(Config{Shown: true, MaxLevels: 2, MaxOrds: 6, Search: Linear})
	b.AddOrder(Ask, mkOrder(103, 1, 1))
	b.AddOrder(Ask, mkOrder(102, 1, 2))

	if ok := b.AddOrder(Ask, mkOrder(104, 1, 3)); ok {
		t.Fatal("AddOrder should reject a new level that would be the worst on an already-full side")
	}

	asks := b.Levels(Ask)
	if len(asks) != 2 {
		t.Fatalf("level count=%d, want 2 (rejected order must not leave an orphaned level)", len(asks))
	}
	if _, ok := b.FindLevel(Ask, 104); ok {
		t.Fatal("rejected level (104) must not be reachable via FindLevel")
	}
	if _, ok := b.FindLevel(Ask, 103); !ok {
		t.Fatal("existing worst level (103) should be untouched by the rejected insert")
	}
	if _, ok := b.FindLevel(Ask, 102); !ok {
		t.Fatal("existing best level (102) should be untouched by the rejected insert")
	}
	if _, ok := b.CancelId(Ask, 3); ok {
		t.Fatal("rejected order (id=3) must not be cancelable: it was never accepted")
	}
}

func TestLobCancelIdAcrossLevels(t *testing.T) {
	b := linearBook()
	b.AddOrder(Ask, mkOrder(103, 1, 1))
	b.AddOrder(Ask, mkOrder(101, 2, 2))

	ord, ok := b.CancelId(Ask, 2)
	if !ok || ord.Id != 2 {
		t.Fatalf("cancel_id(2) = %+v, %v", ord, ok)
	}
	if _, ok := b.FindLevel(Ask, 101); ok {
		t.Fatal("level at 101 should have been dropped once empty")
	}
	if _, ok := b.FindLevel(Ask, 103); !ok {
		t.Fatal("level at 103 should remain")
	}
}

func TestLobCancelIdAtPriceQualified(t *testing.T) {
	b := linearBook()
	b.AddOrder(Ask, mkOrder(103, 1, 1))
	b.AddOrder(Ask, mkOrder(101, 2, 2))

	if _, ok := b.CancelIdAt(Ask, 103, 2); ok {
		t.Fatal("price-qualified cancel should miss: id 2 is not at price 103")
	}
	ord, ok := b.CancelIdAt(Ask, 101, 2)
	if !ok || ord.Id != 2 {
		t.Fatalf("CancelIdAt(101, 2) = %+v, %v", ord, ok)
	}
}

func TestLobReduceFrontDropsEmptiedLevel(t *testing.T) {
	b := linearBook()
	b.AddOrder(Ask, mkOrder(100, 4, 1))

	result := b.ReduceFront(Ask, 100, 100)
	if result.MarketVolume != 4 {
		t.Fatalf("market_volume=%d, want 4", result.MarketVolume)
	}
	if _, ok := b.FindLevel(Ask, 100); ok {
		t.Fatal("level should be removed once emptied by reduce_front")
	}
}

func TestLobWalkUntilLiftedDropsEmptiedLevel(t *testing.T) {
	b := linearBook()
	b.AddOrder(Ask, mkOrder(100, 2, 1))

	result := b.WalkUntilLifted(Ask, 100, 10)
	if result.MarketVolume != 2 {
		t.Fatalf("market_volume=%d, want 2", result.MarketVolume)
	}
	if _, ok := b.FindLevel(Ask, 100); ok {
		t.Fatal("level should be removed once emptied by walk_until_lifted")
	}
}
