package orderbook

import "errors"

var (
	ErrInvalidOrder     = errors.New("orderbook: invalid order")
	ErrDuplicateOrderID = errors.New("orderbook: duplicate order id")
	ErrCapacityExceeded = errors.New("orderbook: capacity exceeded")
)
