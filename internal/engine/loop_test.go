package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evankclarke/Crypto-market-maker/internal/domain"
	"github.com/evankclarke/Crypto-market-maker/internal/gateway"
	"github.com/evankclarke/Crypto-market-maker/internal/strategy"
)

type memLedger struct {
	fills   map[int64]domain.FilledOrder
	flushed bool
}

func newMemLedger() *memLedger {
	return &memLedger{fills: make(map[int64]domain.FilledOrder)}
}

func (m *memLedger) Record(orderID int64, f domain.FilledOrder) error {
	if _, ok := m.fills[orderID]; !ok {
		m.fills[orderID] = f
	}
	return nil
}

func (m *memLedger) Flush() error {
	m.flushed = true
	return nil
}

func newTestLoop(gw *gateway.Mock, clock *fakeClock, ledger Ledger, duration time.Duration) *Loop {
	quoter := strategy.NewQuoter(domain.SymbolInfo{Symbol: "COMPUSDT", MinNotional: 10}, 1000, 100)
	session := domain.NewSession("s1", "COMP", "USDT", clock.Now(), duration)
	snaps := gateway.NewSnapshotProvider(gw, "COMP", "USDT", nil)
	lc := NewLifecycle(gw, snaps, quoter, session, clock, Config{
		IdleWait:   5 * time.Second,
		StaleAfter: 15 * time.Second,
	})
	return NewLoop(gw, lc, ledger, session, clock, 1)
}

func TestLoopRunsToDeadline(t *testing.T) {
	clock := newFakeClock()
	gw := &gateway.Mock{}
	scriptMarket(gw, clock)

	// A leftover order from a previous run must be swept on entry.
	leftover := gateway.Order{ID: 1, Side: domain.SideBuy, TransactTime: clock.Now()}
	swept := false
	gw.OpenOrdersFn = func(ctx context.Context, symbol string) ([]gateway.Order, error) {
		if swept {
			return nil, nil
		}
		return []gateway.Order{leftover}, nil
	}
	gw.CancelOrderFn = func(ctx context.Context, symbol string, orderID int64) error {
		if orderID == leftover.ID {
			swept = true
		}
		return nil
	}

	var nextID int64 = 100
	gw.CreateOrderFn = func(ctx context.Context, symbol string, side domain.Side, qty, price float64) (gateway.Order, error) {
		nextID++
		return gateway.Order{ID: nextID, Side: side, TransactTime: clock.Now()}, nil
	}
	gw.AllOrdersFn = func(ctx context.Context, symbol string) ([]gateway.Order, error) {
		return []gateway.Order{
			{ID: 7, Symbol: symbol, Side: domain.SideSell, Price: 100.47,
				ExecutedQty: 1.5, Status: "FILLED", Time: clock.Now()},
			{ID: 8, Symbol: symbol, Side: domain.SideBuy, Price: 100.02,
				ExecutedQty: 0, Status: "CANCELED", Time: clock.Now()},
		}, nil
	}

	ledger := newMemLedger()
	loop := newTestLoop(gw, clock, ledger, 12*time.Second)

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !swept {
		t.Error("pre-existing order must be cancelled on entry")
	}
	if !ledger.flushed {
		t.Error("ledger must be flushed at session end")
	}
	if _, ok := ledger.fills[7]; !ok {
		t.Error("executed order 7 must be harvested into the ledger")
	}
	if _, ok := ledger.fills[8]; ok {
		t.Error("unexecuted order 8 must not reach the ledger")
	}
}

// The final drain is mandatory: transient cancel failures are retried until
// the book is flat.
func TestLoopDrainRetries(t *testing.T) {
	clock := newFakeClock()
	gw := &gateway.Mock{}
	scriptMarket(gw, clock)

	openCalls := 0
	straggler := gateway.Order{ID: 42, Side: domain.SideSell, TransactTime: clock.Now()}
	cancelled := false
	gw.OpenOrdersFn = func(ctx context.Context, symbol string) ([]gateway.Order, error) {
		openCalls++
		if openCalls == 1 || cancelled {
			// Clean slate sees nothing; after the successful cancel the
			// book is flat.
			return nil, nil
		}
		return []gateway.Order{straggler}, nil
	}
	cancelAttempts := 0
	gw.CancelOrderFn = func(ctx context.Context, symbol string, orderID int64) error {
		cancelAttempts++
		if cancelAttempts < 3 {
			return errors.New("venue hiccup")
		}
		cancelled = true
		return nil
	}

	ledger := newMemLedger()
	loop := newTestLoop(gw, clock, ledger, 0) // expired session: straight to drain

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if cancelAttempts != 3 {
		t.Errorf("cancel attempts = %d, want 3 (two failures, one success)", cancelAttempts)
	}
	if !ledger.flushed {
		t.Error("ledger must still be flushed after a retried drain")
	}
}
