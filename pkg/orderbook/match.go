package orderbook

import "go.uber.org/zap"

// qtyEpsilon retires a remainder too small to trade again. Matching
// decrements are floats; a remainder at or below this is treated as filled.
const qtyEpsilon = 1e-4

// Match is one execution. Timestamp carries the taker's timestamp (the
// later of the two orders) for audit ordering; the book keeps no trade log.
type Match struct {
	BuyOrderID  uint32  `json:"buy_order_id"`
	SellOrderID uint32  `json:"sell_order_id"`
	Price       float64 `json:"price"`
	Qty         float64 `json:"quantity"`
	Timestamp   uint64  `json:"timestamp"`
}

// MatchOrders resolves all crossed interest in one greedy price-time pass:
// while the best bid prices at or above the best ask, trade the minimum of
// the two remainders at the configured convention's price. Fully filled
// orders leave their ladder; a partial fill keeps its priority slot. The
// pass terminates in at most BidCount+AskCount iterations and returns the
// matches in execution order.
func (b *Book) MatchOrders() []Match {
	var matches []Match

	for {
		bid := b.bids.front()
		ask := b.asks.front()
		if bid == nil || ask == nil || bid.Price < ask.Price {
			break
		}

		qty := min(bid.Qty, ask.Qty)
		matches = append(matches, Match{
			BuyOrderID:  bid.ID,
			SellOrderID: ask.ID,
			Price:       b.executionPrice(bid, ask),
			Qty:         qty,
			Timestamp:   max(bid.Timestamp, ask.Timestamp),
		})

		b.applyFill(bid, qty)
		b.applyFill(ask, qty)
	}

	b.verify()

	if len(matches) > 0 {
		for _, cb := range b.callbacks {
			cb(matches)
		}
	}
	return matches
}

// executionPrice applies the book's price convention. The maker is the
// order with the earlier timestamp; the bid is treated as maker on ties.
func (b *Book) executionPrice(bid, ask *Order) float64 {
	switch b.convention {
	case PriceTaker:
		if ask.Timestamp < bid.Timestamp {
			return bid.Price
		}
		return ask.Price
	case PriceMid:
		return (bid.Price + ask.Price) / 2
	default:
		if ask.Timestamp < bid.Timestamp {
			return ask.Price
		}
		return bid.Price
	}
}

func (b *Book) applyFill(o *Order, qty float64) {
	o.Qty -= qty
	o.Filled += qty
	if o.Qty < 0 {
		b.fail("fill exceeded remaining quantity",
			zap.Uint32("order_id", o.ID), zap.Float64("qty", o.Qty))
		o.Qty = 0
	}
	if o.Qty <= qtyEpsilon {
		// fold residual dust into the fill so OrigQty stays exact
		o.Filled += o.Qty
		o.Qty = 0
		o.Status = Filled
		b.ladder(o.Side).removeFront()
		return
	}
	o.Status = PartiallyFilled
}
