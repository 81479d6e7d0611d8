package orderbook

import (
	"github.com/gammazero/deque"
)

// ladder is one side of the book: a price heap over the distinct prices plus
// a queue per price. Orders inside a level are kept in (timestamp, arrival)
// order, so the level front is always the next order to match.
type ladder struct {
	side   Side
	levels map[float64]*deque.Deque[*Order]
	heap   *priceHeap
	size   int
}

func newLadder(side Side) *ladder {
	less := func(a, b float64) bool { return a < b } // asks: lowest first
	if side == Buy {
		less = func(a, b float64) bool { return a > b } // bids: highest first
	}
	return &ladder{
		side:   side,
		levels: make(map[float64]*deque.Deque[*Order]),
		heap:   newPriceHeap(less),
	}
}

func (l *ladder) insert(o *Order) {
	q := l.levels[o.Price]
	if q == nil {
		q = &deque.Deque[*Order]{}
		l.levels[o.Price] = q
		l.heap.push(o.Price)
	}

	// Orders usually arrive in timestamp order, so scan from the back.
	at := q.Len()
	for at > 0 {
		prev := q.At(at - 1)
		if prev.Timestamp < o.Timestamp ||
			(prev.Timestamp == o.Timestamp && prev.seq < o.seq) {
			break
		}
		at--
	}
	q.Insert(at, o)
	l.size++
}

// front returns the highest-priority order, or nil when the side is empty.
func (l *ladder) front() *Order {
	price, ok := l.heap.peek()
	if !ok {
		return nil
	}
	return l.levels[price].Front()
}

func (l *ladder) removeFront() {
	price, ok := l.heap.peek()
	if !ok {
		return
	}
	q := l.levels[price]
	q.PopFront()
	l.size--
	if q.Len() == 0 {
		l.dropLevel(price)
	}
}

func (l *ladder) remove(o *Order) bool {
	q := l.levels[o.Price]
	if q == nil {
		return false
	}
	for i := 0; i < q.Len(); i++ {
		if q.At(i) == o {
			q.Remove(i)
			l.size--
			if q.Len() == 0 {
				l.dropLevel(o.Price)
			}
			return true
		}
	}
	return false
}

func (l *ladder) dropLevel(price float64) {
	delete(l.levels, price)
	l.heap.remove(price)
}

func (l *ladder) bestPrice() (float64, bool) {
	return l.heap.peek()
}

func (l *ladder) len() int { return l.size }

func (l *ladder) clear() {
	l.levels = make(map[float64]*deque.Deque[*Order])
	l.heap = newPriceHeap(l.heap.less)
	l.size = 0
}

// each walks the ladder in priority order until fn returns false.
func (l *ladder) each(fn func(*Order) bool) {
	for _, price := range l.heap.sorted() {
		q := l.levels[price]
		for i := 0; i < q.Len(); i++ {
			if !fn(q.At(i)) {
				return
			}
		}
	}
}
