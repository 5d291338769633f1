// Package engine owns the order lifecycle and the session loop: the only
// stateful, timing-sensitive part of the system. One logical thread drives
// everything; the venue serializes order state per account anyway.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/evankclarke/Crypto-market-maker/internal/domain"
	"github.com/evankclarke/Crypto-market-maker/internal/gateway"
	"github.com/evankclarke/Crypto-market-maker/internal/strategy"
)

// Config carries the cycle timing policy.
type Config struct {
	// IdleWait is the pause after acting before the next cycle.
	IdleWait time.Duration
	// StaleAfter is how long a resting order may live before it is treated
	// as drifted from fair value and reset.
	StaleAfter time.Duration
}

// withDefaults fills unset fields with the session defaults.
func (c Config) withDefaults() Config {
	if c.IdleWait == 0 {
		c.IdleWait = 5 * time.Second
	}
	if c.StaleAfter == 0 {
		c.StaleAfter = 15 * time.Second
	}
	return c
}

// Lifecycle owns the two resting orders and drives the cancel/replace state
// machine against the venue. Its central invariant: at most one resting
// order per side, and no stale order survives past the timeout window.
type Lifecycle struct {
	gw      gateway.Gateway
	snaps   *gateway.SnapshotProvider
	quoter  *strategy.Quoter
	session domain.Session
	clock   Clock
	cfg     Config

	symbol  string
	states  map[domain.Side]domain.OrderState
	resting map[domain.Side]*domain.RestingOrder
}

var bothSides = []domain.Side{domain.SideBuy, domain.SideSell}

// NewLifecycle builds the lifecycle manager for one session.
func NewLifecycle(gw gateway.Gateway, snaps *gateway.SnapshotProvider, quoter *strategy.Quoter, session domain.Session, clock Clock, cfg Config) *Lifecycle {
	l := &Lifecycle{
		gw:      gw,
		snaps:   snaps,
		quoter:  quoter,
		session: session,
		clock:   clock,
		cfg:     cfg.withDefaults(),
		symbol:  session.Symbol(),
		states:  make(map[domain.Side]domain.OrderState, 2),
		resting: make(map[domain.Side]*domain.RestingOrder, 2),
	}
	for _, side := range bothSides {
		l.states[side] = domain.OrderEmpty
	}
	return l
}

// State exposes one side's lifecycle state, mainly for tests and logging.
func (l *Lifecycle) State(side domain.Side) domain.OrderState {
	return l.states[side]
}

// Reconcile runs one cycle of the 0/1/2-open state machine. Every branch
// starts from a fresh open-orders query, so the in-memory picture is always
// re-derived from the venue and a crash-restart resynchronizes for free.
func (l *Lifecycle) Reconcile(ctx context.Context) error {
	open, err := l.gw.OpenOrders(ctx, l.symbol)
	if err != nil {
		return fmt.Errorf("open orders: %w", err)
	}
	l.syncFromOpen(open)

	switch len(open) {
	case 0:
		// Both sides filled, cancelled, or never placed: quote fresh.
		if err := l.refresh(ctx); err != nil {
			return err
		}
		l.clock.Sleep(l.cfg.IdleWait)

	case 1:
		// One side filled. Give the survivor one timeout window to trade;
		// if it is still alone afterwards it has drifted from fair value.
		l.clock.Sleep(l.cfg.StaleAfter)
		again, err := l.gw.OpenOrders(ctx, l.symbol)
		if err != nil {
			return fmt.Errorf("open orders: %w", err)
		}
		l.syncFromOpen(again)
		if len(again) == 1 {
			if err := l.CancelAll(ctx); err != nil {
				return err
			}
			if err := l.refresh(ctx); err != nil {
				return err
			}
			l.clock.Sleep(l.cfg.IdleWait)
		}

	default:
		// Neither side filled. Age the quotes against the venue clock and
		// reset both once they outlive the window.
		stale, err := l.stale(ctx)
		if err != nil {
			return err
		}
		if stale {
			if err := l.CancelAll(ctx); err != nil {
				return err
			}
			if err := l.refresh(ctx); err != nil {
				return err
			}
		}
		l.clock.Sleep(l.cfg.IdleWait)
	}
	return nil
}

// CancelAll flattens every open order for the pair. With nothing open it is
// a no-op that reports success. A failed cancel leaves that side in
// Cancelling: the order is never assumed gone until a later open-orders
// query confirms its absence.
func (l *Lifecycle) CancelAll(ctx context.Context) error {
	open, err := l.gw.OpenOrders(ctx, l.symbol)
	if err != nil {
		return fmt.Errorf("open orders: %w", err)
	}

	var firstErr error
	for _, o := range open {
		if err := l.gw.CancelOrder(ctx, l.symbol, o.ID); err != nil {
			l.states[o.Side] = domain.OrderCancelling
			slog.Warn("cancel failed, order unresolved",
				"side", o.Side, "order", o.ID, "err", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("cancel order %d: %w", o.ID, err)
			}
			continue
		}
		l.states[o.Side] = domain.OrderEmpty
		l.resting[o.Side] = nil
	}
	if firstErr != nil {
		return firstErr
	}

	for _, side := range bothSides {
		l.states[side] = domain.OrderEmpty
		l.resting[side] = nil
	}
	return nil
}

// refresh re-quotes both sides from one snapshot. A stale snapshot is not
// an error: the cycle sits out and the next one retries.
func (l *Lifecycle) refresh(ctx context.Context) error {
	err := l.replaceBoth(ctx)
	if errors.Is(err, gateway.ErrStaleSnapshot) {
		slog.Warn("stale snapshot, sitting this cycle out", "err", err)
		return nil
	}
	return err
}

func (l *Lifecycle) replaceBoth(ctx context.Context) error {
	snap, port, err := l.snaps.Snapshot(ctx)
	if err != nil {
		return err
	}
	l.placeQuote(ctx, domain.SideSell, snap, port)
	l.placeQuote(ctx, domain.SideBuy, snap, port)
	return nil
}

// placeQuote submits one side's quote. A suppressed (below-minimum) quote
// and a venue rejection both leave the side Empty for this cycle; neither
// is fatal.
func (l *Lifecycle) placeQuote(ctx context.Context, side domain.Side, snap domain.MarketSnapshot, port domain.Portfolio) {
	if l.states[side] != domain.OrderEmpty {
		return
	}
	pct := l.session.PercentCompleted(l.clock.Now())
	q := l.quoter.Quote(side, snap, port, pct)
	if q == nil {
		slog.Info("quote below minimum notional, sitting out", "side", side)
		return
	}
	ord, err := l.gw.CreateOrder(ctx, l.symbol, side, q.Size, q.Price)
	if err != nil {
		slog.Warn("order rejected", "side", side, "price", q.Price, "size", q.Size, "err", err)
		return
	}
	l.resting[side] = &domain.RestingOrder{
		ID:          ord.ID,
		ClientID:    ord.ClientID,
		Side:        side,
		Price:       q.Price,
		Size:        q.Size,
		SubmittedAt: ord.TransactTime,
	}
	l.states[side] = domain.OrderResting
	slog.Info("order placed", "side", side, "price", q.Price, "size", q.Size)
}

// stale reports whether the resting bid has outlived the timeout window,
// measured against venue server time so local clock skew can neither
// trigger nor mask a reset.
func (l *Lifecycle) stale(ctx context.Context) (bool, error) {
	o := l.resting[domain.SideBuy]
	if o == nil {
		o = l.resting[domain.SideSell]
	}
	if o == nil {
		return false, nil
	}
	elapsed, err := l.elapsedSince(ctx, o)
	if err != nil {
		return false, err
	}
	return elapsed > l.cfg.StaleAfter, nil
}

// elapsedSince is the single clock-skew-sensitive comparison in the system.
func (l *Lifecycle) elapsedSince(ctx context.Context, o *domain.RestingOrder) (time.Duration, error) {
	now, err := l.gw.ServerTime(ctx)
	if err != nil {
		return 0, fmt.Errorf("server time: %w", err)
	}
	return now.Sub(o.SubmittedAt), nil
}

// syncFromOpen re-derives both sides' states from the venue's open-orders
// view. A side absent from the view is Empty: its order filled, cancelled,
// or was never placed. This is also what resolves a side stuck in
// Cancelling after a failed cancel.
func (l *Lifecycle) syncFromOpen(open []gateway.Order) {
	seen := make(map[domain.Side]bool, 2)
	for i := range open {
		o := open[i]
		seen[o.Side] = true
		l.resting[o.Side] = o.Resting()
		l.states[o.Side] = domain.OrderResting
	}
	for _, side := range bothSides {
		if !seen[side] {
			l.resting[side] = nil
			l.states[side] = domain.OrderEmpty
		}
	}
}
