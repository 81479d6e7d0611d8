package orderbook

import (
	"container/heap"
	"sort"
)

// priceHeap keeps the distinct prices of one side ordered. The position
// index lets a price whose level just emptied be removed eagerly, so
// best-price and depth queries never see stale levels.
type priceHeap struct {
	prices []float64
	less   func(a, b float64) bool
	pos    map[float64]int
}

func newPriceHeap(less func(a, b float64) bool) *priceHeap {
	return &priceHeap{
		prices: []float64{},
		less:   less,
		pos:    make(map[float64]int),
	}
}

func (h *priceHeap) Len() int { return len(h.prices) }

func (h *priceHeap) Less(i, j int) bool { return h.less(h.prices[i], h.prices[j]) }

func (h *priceHeap) Swap(i, j int) {
	h.prices[i], h.prices[j] = h.prices[j], h.prices[i]
	h.pos[h.prices[i]] = i
	h.pos[h.prices[j]] = j
}

func (h *priceHeap) Push(x any) {
	price := x.(float64)
	h.pos[price] = len(h.prices)
	h.prices = append(h.prices, price)
}

func (h *priceHeap) Pop() any {
	n := len(h.prices)
	price := h.prices[n-1]
	h.prices = h.prices[:n-1]
	delete(h.pos, price)
	return price
}

func (h *priceHeap) push(price float64) {
	if _, ok := h.pos[price]; !ok {
		heap.Push(h, price)
	}
}

func (h *priceHeap) remove(price float64) {
	if i, ok := h.pos[price]; ok {
		heap.Remove(h, i)
	}
}

func (h *priceHeap) peek() (float64, bool) {
	if len(h.prices) == 0 {
		return 0, false
	}
	return h.prices[0], true
}

// sorted returns every price in priority order. Heap order is only partial,
// so depth walks copy and sort.
func (h *priceHeap) sorted() []float64 {
	out := make([]float64, len(h.prices))
	copy(out, h.prices)
	sort.Slice(out, func(i, j int) bool { return h.less(out[i], out[j]) })
	return out
}
