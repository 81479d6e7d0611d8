package orderbook

// DepthLevel is one aggregated price level: the level's own resting
// quantity plus the cumulative quantity from the top of the book through
// this level. Enough for both a level table and a cumulative depth curve.
type DepthLevel struct {
	Price  float64 `json:"price"`
	Qty    float64 `json:"quantity"`
	CumQty float64 `json:"cumulative_quantity"`
}

// Depth is a read-only projection of both ladders, best levels first.
type Depth struct {
	Bids []DepthLevel `json:"bids"`
	Asks []DepthLevel `json:"asks"`
}

// GetDepth groups each side's active orders by price, best first, truncated
// to levels per side. levels <= 0 and empty sides yield empty slices.
func (b *Book) GetDepth(levels int) Depth {
	return Depth{
		Bids: ladderDepth(b.bids, levels),
		Asks: ladderDepth(b.asks, levels),
	}
}

func ladderDepth(l *ladder, levels int) []DepthLevel {
	out := []DepthLevel{}
	if levels <= 0 {
		return out
	}
	cumulative := 0.0
	for _, price := range l.heap.sorted() {
		if len(out) == levels {
			break
		}
		q := l.levels[price]
		qty := 0.0
		for i := 0; i < q.Len(); i++ {
			qty += q.At(i).Qty
		}
		cumulative += qty
		out = append(out, DepthLevel{Price: price, Qty: qty, CumQty: cumulative})
	}
	return out
}
