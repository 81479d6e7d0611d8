package orderbook

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager owns one Book per symbol. Books stay fully independent; the
// manager serializes calls into each one with a per-book lock, which is the
// external exclusivity a Book requires from a multi-threaded host.
type Manager struct {
	books sync.Map // symbol -> *managedBook
	opts  []Option
	log   *zap.Logger

	mu        sync.Mutex
	callbacks []func(symbol string, matches []Match)
}

type managedBook struct {
	mu   sync.Mutex
	book *Book
}

func NewManager(log *zap.Logger, opts ...Option) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{opts: opts, log: log}
}

func (m *Manager) AddOrder(symbol string, id uint32, side Side, price, qty float64, timestamp uint64) error {
	mb := m.getOrCreateBook(symbol)
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.book.AddOrder(id, side, price, qty, timestamp)
}

func (m *Manager) CancelOrder(symbol string, id uint32) bool {
	mb := m.getOrCreateBook(symbol)
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.book.CancelOrder(id)
}

func (m *Manager) MatchOrders(symbol string) []Match {
	mb := m.getOrCreateBook(symbol)
	mb.mu.Lock()
	matches := mb.book.MatchOrders()
	mb.mu.Unlock()

	if len(matches) > 0 {
		m.mu.Lock()
		cbs := make([]func(string, []Match), len(m.callbacks))
		copy(cbs, m.callbacks)
		m.mu.Unlock()
		for _, cb := range cbs {
			cb(symbol, matches)
		}
	}
	return matches
}

func (m *Manager) GetDepth(symbol string, levels int) Depth {
	mb := m.getOrCreateBook(symbol)
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.book.GetDepth(levels)
}

// Do runs fn with the symbol's book under its lock, for host operations the
// wrapper methods don't cover. fn must not retain the *Book.
func (m *Manager) Do(symbol string, fn func(*Book)) {
	mb := m.getOrCreateBook(symbol)
	mb.mu.Lock()
	defer mb.mu.Unlock()
	fn(mb.book)
}

// RegisterTradeCallback subscribes to every symbol's match batches.
func (m *Manager) RegisterTradeCallback(cb func(symbol string, matches []Match)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, cb)
}

func (m *Manager) Symbols() []string {
	var out []string
	m.books.Range(func(k, _ any) bool {
		out = append(out, k.(string))
		return true
	})
	return out
}

func (m *Manager) getOrCreateBook(symbol string) *managedBook {
	if val, ok := m.books.Load(symbol); ok {
		return val.(*managedBook)
	}

	mb := &managedBook{book: New(m.opts...)}
	actual, loaded := m.books.LoadOrStore(symbol, mb)
	if !loaded {
		m.log.Info("book created",
			zap.String("symbol", symbol),
			zap.String("session_id", uuid.NewString()))
	}
	return actual.(*managedBook)
}
