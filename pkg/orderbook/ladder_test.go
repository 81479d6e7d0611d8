package orderbook

import "testing"

func TestLadderInsertOrdering(t *testing.T) {
	l := newLadder(Sell)

	a := &Order{ID: 1, Side: Sell, Price: 100, Qty: 1, Timestamp: 5, seq: 0}
	b := &Order{ID: 2, Side: Sell, Price: 100, Qty: 1, Timestamp: 3, seq: 1}
	c := &Order{ID: 3, Side: Sell, Price: 100, Qty: 1, Timestamp: 5, seq: 2}
	for _, o := range []*Order{a, b, c} {
		l.insert(o)
	}

	want := []uint32{2, 1, 3} // timestamp asc, then arrival
	i := 0
	l.each(func(o *Order) bool {
		if o.ID != want[i] {
			t.Errorf("position %d: want order %d, got %d", i, want[i], o.ID)
		}
		i++
		return true
	})
	if i != 3 {
		t.Fatalf("expected 3 orders, walked %d", i)
	}
}

func TestLadderPricePriority(t *testing.T) {
	bids := newLadder(Buy)
	asks := newLadder(Sell)

	for i, price := range []float64{99, 101, 100} {
		bids.insert(&Order{ID: uint32(i + 1), Side: Buy, Price: price, Qty: 1, Timestamp: uint64(i), seq: uint64(i)})
		asks.insert(&Order{ID: uint32(i + 4), Side: Sell, Price: price, Qty: 1, Timestamp: uint64(i), seq: uint64(i)})
	}

	if p, _ := bids.bestPrice(); p != 101 {
		t.Errorf("best bid should be highest price, got %v", p)
	}
	if p, _ := asks.bestPrice(); p != 99 {
		t.Errorf("best ask should be lowest price, got %v", p)
	}
}

func TestLadderRemoveDropsEmptyLevel(t *testing.T) {
	l := newLadder(Buy)

	top := &Order{ID: 1, Side: Buy, Price: 101, Qty: 1, Timestamp: 1, seq: 0}
	l.insert(top)
	l.insert(&Order{ID: 2, Side: Buy, Price: 100, Qty: 1, Timestamp: 2, seq: 1})

	if !l.remove(top) {
		t.Fatal("expected remove success")
	}
	// the emptied level must be gone immediately, not tombstoned
	if p, ok := l.bestPrice(); !ok || p != 100 {
		t.Fatalf("expected best price 100 right after remove, got %v (ok=%v)", p, ok)
	}
	if _, stale := l.levels[101]; stale {
		t.Fatal("emptied level left behind")
	}
	if l.len() != 1 {
		t.Fatalf("expected 1 order, got %d", l.len())
	}
}

func TestLadderRemoveFront(t *testing.T) {
	l := newLadder(Sell)

	l.insert(&Order{ID: 1, Side: Sell, Price: 100, Qty: 1, Timestamp: 1, seq: 0})
	l.insert(&Order{ID: 2, Side: Sell, Price: 100, Qty: 1, Timestamp: 2, seq: 1})
	l.insert(&Order{ID: 3, Side: Sell, Price: 101, Qty: 1, Timestamp: 3, seq: 2})

	l.removeFront()
	if f := l.front(); f == nil || f.ID != 2 {
		t.Fatalf("expected order 2 at front, got %+v", f)
	}
	l.removeFront()
	if f := l.front(); f == nil || f.ID != 3 {
		t.Fatalf("expected order 3 at front, got %+v", f)
	}
	l.removeFront()
	if l.front() != nil || l.len() != 0 {
		t.Fatal("ladder should be empty")
	}
}

func TestPriceHeapRemoveArbitrary(t *testing.T) {
	h := newPriceHeap(func(a, b float64) bool { return a < b })

	for _, p := range []float64{105, 101, 103, 102, 104} {
		h.push(p)
	}
	h.remove(101) // removing the current best must promote the next one
	if p, _ := h.peek(); p != 102 {
		t.Errorf("expected 102 after removing the min, got %v", p)
	}
	h.remove(103) // interior removal
	want := []float64{102, 104, 105}
	got := h.sorted()
	if len(got) != len(want) {
		t.Fatalf("expected %d prices, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sorted[%d]: want %v, got %v", i, want[i], got[i])
		}
	}

	// duplicate pushes collapse
	h.push(102)
	if h.Len() != 3 {
		t.Fatalf("duplicate push must be a no-op, len=%d", h.Len())
	}
}
