package orderbook

// Side of the book an order rests on.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// Status tracks an order through its lifecycle. Filled and Cancelled are
// terminal: the order no longer occupies a ladder slot, but its id stays
// known to the book for the rest of the session.
type Status int

const (
	Open Status = iota
	PartiallyFilled
	Filled
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Open:
		return "OPEN"
	case PartiallyFilled:
		return "PARTIALLY_FILLED"
	case Filled:
		return "FILLED"
	default:
		return "CANCELLED"
	}
}

// Order is one unit of resting interest. ID, Side, Price and Timestamp are
// immutable after insertion; only Qty, Filled and Status change, and only
// through matching or cancellation.
type Order struct {
	ID        uint32
	Side      Side
	Price     float64
	Qty       float64 // remaining quantity
	Filled    float64 // cumulative matched quantity
	Timestamp uint64
	Status    Status

	// arrival sequence, breaks ladder ordering ties when two orders on the
	// same side carry the same price and timestamp
	seq uint64
}

func (o *Order) active() bool {
	return o.Status == Open || o.Status == PartiallyFilled
}

// OrigQty reconstructs the quantity the order was inserted with.
func (o *Order) OrigQty() float64 {
	return o.Qty + o.Filled
}
