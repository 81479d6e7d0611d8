// replay feeds a recorded order session through a book and prints the match
// tape plus the final depth table. Session files are YAML scripts of
// add/cancel/replace/match steps; price and quantity are decimal strings so
// recorded values survive parsing exactly.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tradekit/lob/config"
	"github.com/tradekit/lob/pkg/logging"
	"github.com/tradekit/lob/pkg/orderbook"
)

type session struct {
	Symbol string `yaml:"symbol"`
	Steps  []step `yaml:"steps"`
}

type step struct {
	Op        string `yaml:"op"` // add, cancel, replace, match, depth
	ID        uint32 `yaml:"id"`
	NewID     uint32 `yaml:"new_id"`
	Side      string `yaml:"side"` // buy, sell
	Price     string `yaml:"price"`
	Qty       string `yaml:"qty"`
	Timestamp uint64 `yaml:"timestamp"`
	Levels    int    `yaml:"levels"`
}

func main() {
	var (
		configPath  = flag.String("config", "", "path to app config yaml")
		sessionPath = flag.String("session", "", "path to session script yaml")
		levels      = flag.Int("levels", 0, "depth levels to print (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Replay.LogLevel)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck
	ctx := logging.WithRequestID(context.Background())
	logger = logging.For(ctx, logger)

	if *sessionPath == "" {
		log.Fatal("-session is required")
	}
	sess, err := loadSession(*sessionPath)
	if err != nil {
		log.Fatalf("load session: %v", err)
	}
	if sess.Symbol == "" {
		sess.Symbol = "UNKNOWN"
	}

	depthLevels := cfg.Replay.DepthLevels
	if *levels > 0 {
		depthLevels = *levels
	}

	mgr := orderbook.NewManager(logger, cfg.Engine.Options(logger)...)
	totalMatches := 0
	totalQty := 0.0
	mgr.RegisterTradeCallback(func(symbol string, matches []orderbook.Match) {
		for _, m := range matches {
			totalMatches++
			totalQty += m.Qty
			fmt.Printf("match %s: BUY[%d] <=> SELL[%d] @ %.4f qty %.4f\n",
				symbol, m.BuyOrderID, m.SellOrderID, m.Price, m.Qty)
		}
	})

	for i, st := range sess.Steps {
		if err := apply(mgr, sess.Symbol, st, depthLevels); err != nil {
			logger.Warn("step rejected",
				zap.Int("step", i),
				zap.String("op", st.Op),
				zap.Error(err))
		}
	}

	mgr.Do(sess.Symbol, func(b *orderbook.Book) {
		fmt.Printf("\nsession %s: %d matches, total qty %.4f\n", sess.Symbol, totalMatches, totalQty)
		fmt.Printf("best bid %.4f  best ask %.4f  spread %.4f  mid %.4f\n",
			b.BestBidPrice(), b.BestAskPrice(), b.Spread(), b.MidPrice())
		printDepth(b.GetDepth(depthLevels))
	})
}

func apply(mgr *orderbook.Manager, symbol string, st step, depthLevels int) error {
	switch st.Op {
	case "add":
		price, qty, err := parseAmounts(st)
		if err != nil {
			return err
		}
		return mgr.AddOrder(symbol, st.ID, parseSide(st.Side), price, qty, st.Timestamp)
	case "cancel":
		if !mgr.CancelOrder(symbol, st.ID) {
			fmt.Printf("cancel %d: not active\n", st.ID)
		}
		return nil
	case "replace":
		price, qty, err := parseAmounts(st)
		if err != nil {
			return err
		}
		var rerr error
		mgr.Do(symbol, func(b *orderbook.Book) {
			rerr = b.ReplaceOrder(st.ID, st.NewID, price, qty, st.Timestamp)
		})
		return rerr
	case "match":
		mgr.MatchOrders(symbol)
		return nil
	case "depth":
		levels := st.Levels
		if levels == 0 {
			levels = depthLevels
		}
		printDepth(mgr.GetDepth(symbol, levels))
		return nil
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
}

func parseAmounts(st step) (price, qty float64, err error) {
	p, err := decimal.NewFromString(st.Price)
	if err != nil {
		return 0, 0, fmt.Errorf("price %q: %w", st.Price, err)
	}
	q, err := decimal.NewFromString(st.Qty)
	if err != nil {
		return 0, 0, fmt.Errorf("qty %q: %w", st.Qty, err)
	}
	return p.InexactFloat64(), q.InexactFloat64(), nil
}

func parseSide(s string) orderbook.Side {
	if strings.EqualFold(s, "sell") {
		return orderbook.Sell
	}
	return orderbook.Buy
}

func printDepth(d orderbook.Depth) {
	fmt.Println("  bids                          asks")
	fmt.Println("  price      qty      cum       price      qty      cum")
	n := len(d.Bids)
	if len(d.Asks) > n {
		n = len(d.Asks)
	}
	for i := 0; i < n; i++ {
		bid, ask := "", ""
		if i < len(d.Bids) {
			l := d.Bids[i]
			bid = fmt.Sprintf("%-10.4f %-8.4f %-8.4f", l.Price, l.Qty, l.CumQty)
		}
		if i < len(d.Asks) {
			l := d.Asks[i]
			ask = fmt.Sprintf("%-10.4f %-8.4f %-8.4f", l.Price, l.Qty, l.CumQty)
		}
		fmt.Printf("  %-29s %s\n", bid, ask)
	}
}

func loadSession(path string) (*session, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sess := &session{}
	if err := yaml.Unmarshal(raw, sess); err != nil {
		return nil, err
	}
	return sess, nil
}
