// Package orderbook is an embeddable limit order book with price-time
// priority matching. A Book is purely synchronous and owns no goroutines;
// a multi-threaded host must serialize mutating calls itself, or go through
// Manager which does it with one lock per book.
package orderbook

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultCapacity limits active orders per side unless WithCapacity says
// otherwise.
const DefaultCapacity = 1000

// NoPrice is returned by the price queries when the answer is undefined
// (empty side). Callers branch on the sentinel, so it is part of the API.
const NoPrice = -1.0

// PriceConvention selects which of the two crossed orders sets the
// execution price.
type PriceConvention int

const (
	// PriceMaker executes at the resting order's price (the one with the
	// earlier timestamp; the bid on ties). The standard convention.
	PriceMaker PriceConvention = iota
	PriceTaker
	PriceMid
)

// Option configures a Book at construction time.
type Option func(*Book)

func WithCapacity(n int) Option {
	return func(b *Book) {
		if n > 0 {
			b.capacity = n
		}
	}
}

func WithPriceConvention(pc PriceConvention) Option {
	return func(b *Book) { b.convention = pc }
}

func WithLogger(log *zap.Logger) Option {
	return func(b *Book) {
		if log != nil {
			b.log = log
		}
	}
}

// WithStrictChecks makes the book panic on internal invariant violations
// instead of clamping and logging them. Meant for development and tests.
func WithStrictChecks(strict bool) Option {
	return func(b *Book) { b.strict = strict }
}

// Book holds the competing interest for one market. One instance per
// market/session; instances share nothing.
type Book struct {
	bids *ladder
	asks *ladder

	// every id seen this session, active or terminal, so duplicates and
	// repeat cancels stay deterministic after an order leaves its ladder
	orders map[uint32]*Order

	capacity   int
	convention PriceConvention
	strict     bool
	log        *zap.Logger

	callbacks []func([]Match)
	nextSeq   uint64
}

func New(opts ...Option) *Book {
	b := &Book{
		bids:       newLadder(Buy),
		asks:       newLadder(Sell),
		orders:     make(map[uint32]*Order),
		capacity:   DefaultCapacity,
		convention: PriceMaker,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddOrder validates and inserts a limit order in priority position.
// It never matches; matching is an explicit MatchOrders call.
func (b *Book) AddOrder(id uint32, side Side, price, qty float64, timestamp uint64) error {
	if err := validate(side, price, qty); err != nil {
		return err
	}
	if _, ok := b.orders[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateOrderID, id)
	}
	l := b.ladder(side)
	if l.len() >= b.capacity {
		return fmt.Errorf("%w: %s side at %d active orders", ErrCapacityExceeded, side, b.capacity)
	}

	o := &Order{
		ID:        id,
		Side:      side,
		Price:     price,
		Qty:       qty,
		Timestamp: timestamp,
		Status:    Open,
		seq:       b.nextSeq,
	}
	b.nextSeq++
	l.insert(o)
	b.orders[id] = o
	return nil
}

// LoadOrders replaces the whole book with the given orders. The call is
// all-or-nothing: the batch is validated up front and the current state is
// untouched if anything in it is rejected. Input order generates the
// tie-break sequence, so entries with equal timestamps keep their relative
// position.
func (b *Book) LoadOrders(orders []Order) error {
	var errs error
	seen := make(map[uint32]struct{}, len(orders))
	var perSide [2]int
	for i, o := range orders {
		if err := validate(o.Side, o.Price, o.Qty); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("entry %d (id=%d): %w", i, o.ID, err))
			continue
		}
		if _, dup := seen[o.ID]; dup {
			errs = multierr.Append(errs, fmt.Errorf("entry %d: %w: %d", i, ErrDuplicateOrderID, o.ID))
			continue
		}
		seen[o.ID] = struct{}{}
		perSide[o.Side]++
		if perSide[o.Side] == b.capacity+1 {
			errs = multierr.Append(errs, fmt.Errorf("entry %d: %w: %s side", i, ErrCapacityExceeded, o.Side))
		}
	}
	if errs != nil {
		return errs
	}

	b.Clear()
	for _, o := range orders {
		o := o
		o.Filled = 0
		o.Status = Open
		o.seq = b.nextSeq
		b.nextSeq++
		b.ladder(o.Side).insert(&o)
		b.orders[o.ID] = &o
	}
	return nil
}

// CancelOrder removes an active order from its ladder. Unknown and terminal
// ids return false; repeating a cancel has no effect.
func (b *Book) CancelOrder(id uint32) bool {
	o, ok := b.orders[id]
	if !ok || !o.active() {
		return false
	}
	b.ladder(o.Side).remove(o)
	o.Status = Cancelled
	return true
}

// ReplaceOrder cancels oldID and inserts a fresh order with newID on the
// same side. Price is immutable and ids are single-use, so a modify is a
// cancel plus add; the call fails without side effects if the old order is
// not active or the replacement would be rejected.
func (b *Book) ReplaceOrder(oldID, newID uint32, price, qty float64, timestamp uint64) error {
	old, ok := b.orders[oldID]
	if !ok || !old.active() {
		return fmt.Errorf("%w: order %d not active", ErrInvalidOrder, oldID)
	}
	if err := validate(old.Side, price, qty); err != nil {
		return err
	}
	if _, dup := b.orders[newID]; dup {
		return fmt.Errorf("%w: %d", ErrDuplicateOrderID, newID)
	}

	b.ladder(old.Side).remove(old)
	old.Status = Cancelled
	// cancelling freed a slot, AddOrder cannot fail now
	return b.AddOrder(newID, old.Side, price, qty, timestamp)
}

// Clear empties both ladders and forgets every id of the session.
func (b *Book) Clear() {
	b.bids.clear()
	b.asks.clear()
	b.orders = make(map[uint32]*Order)
}

func (b *Book) BidCount() int { return b.bids.len() }
func (b *Book) AskCount() int { return b.asks.len() }

func (b *Book) BestBidPrice() float64 {
	if p, ok := b.bids.bestPrice(); ok {
		return p
	}
	return NoPrice
}

func (b *Book) BestAskPrice() float64 {
	if p, ok := b.asks.bestPrice(); ok {
		return p
	}
	return NoPrice
}

func (b *Book) Spread() float64 {
	bid, okBid := b.bids.bestPrice()
	ask, okAsk := b.asks.bestPrice()
	if !okBid || !okAsk {
		return NoPrice
	}
	return ask - bid
}

func (b *Book) MidPrice() float64 {
	bid, okBid := b.bids.bestPrice()
	ask, okAsk := b.asks.bestPrice()
	if !okBid || !okAsk {
		return NoPrice
	}
	return (bid + ask) / 2
}

// Order returns a snapshot of the order with the given id, terminal ones
// included.
func (b *Book) Order(id uint32) (Order, bool) {
	o, ok := b.orders[id]
	if !ok {
		return Order{}, false
	}
	return *o, true
}

// OnTrade registers a callback fired with every non-empty MatchOrders batch.
func (b *Book) OnTrade(fn func([]Match)) {
	b.callbacks = append(b.callbacks, fn)
}

func (b *Book) ladder(side Side) *ladder {
	if side == Buy {
		return b.bids
	}
	return b.asks
}

func validate(side Side, price, qty float64) error {
	if side != Buy && side != Sell {
		return fmt.Errorf("%w: side=%d", ErrInvalidOrder, side)
	}
	if !(price > 0) || !(qty > 0) {
		return fmt.Errorf("%w: price=%v qty=%v", ErrInvalidOrder, price, qty)
	}
	return nil
}

// verify polices the internal invariants after a matching pass. A violation
// is a programming defect: strict books panic, others log and keep going so
// the host can resync its rendered state.
func (b *Book) verify() {
	b.verifyLadder(b.bids)
	b.verifyLadder(b.asks)

	bid, okBid := b.bids.bestPrice()
	ask, okAsk := b.asks.bestPrice()
	if okBid && okAsk && bid >= ask {
		b.fail("book crossed after matching",
			zap.Float64("best_bid", bid),
			zap.Float64("best_ask", ask))
	}
}

func (b *Book) verifyLadder(l *ladder) {
	var prev *Order
	l.each(func(o *Order) bool {
		if o.Qty <= 0 {
			b.fail("non-positive remaining quantity in ladder",
				zap.Uint32("order_id", o.ID), zap.Float64("qty", o.Qty))
		}
		if !o.active() {
			b.fail("terminal order resting in ladder",
				zap.Uint32("order_id", o.ID), zap.Stringer("status", o.Status))
		}
		if prev != nil && prev.Price == o.Price &&
			(prev.Timestamp > o.Timestamp ||
				(prev.Timestamp == o.Timestamp && prev.seq > o.seq)) {
			b.fail("time priority violated",
				zap.Stringer("side", l.side),
				zap.Float64("price", o.Price),
				zap.Uint32("prev_id", prev.ID),
				zap.Uint32("id", o.ID))
		}
		prev = o
		return true
	})
}

func (b *Book) fail(msg string, fields ...zap.Field) {
	if b.strict {
		b.log.Panic(msg, fields...)
	}
	b.log.Error(msg, fields...)
}
