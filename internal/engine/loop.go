package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/evankclarke/Crypto-market-maker/internal/domain"
	"github.com/evankclarke/Crypto-market-maker/internal/gateway"
	"github.com/evankclarke/Crypto-market-maker/internal/infra"
)

// Ledger is the persistence collaborator for executed orders. The loop only
// appends; flushing and formats belong to the implementation.
type Ledger interface {
	Record(orderID int64, fill domain.FilledOrder) error
	Flush() error
}

// defaultHarvestEvery is how many cycles pass between order-history sweeps.
// Filled orders leave the venue's open-orders view, so the loop periodically
// walks the full history to catch them.
const defaultHarvestEvery = 200

// drainAttempts bounds the final cancel retries before giving up and
// reporting the failure.
const drainAttempts = 6

// Loop drives one session from clean slate to final drain.
type Loop struct {
	gw           gateway.Gateway
	lc           *Lifecycle
	ledger       Ledger
	session      domain.Session
	clock        Clock
	harvestEvery int
}

// NewLoop wires the session loop. harvestEvery <= 0 selects the default.
func NewLoop(gw gateway.Gateway, lc *Lifecycle, ledger Ledger, session domain.Session, clock Clock, harvestEvery int) *Loop {
	if harvestEvery <= 0 {
		harvestEvery = defaultHarvestEvery
	}
	return &Loop{
		gw:           gw,
		lc:           lc,
		ledger:       ledger,
		session:      session,
		clock:        clock,
		harvestEvery: harvestEvery,
	}
}

// Run executes the session: cancel any pre-existing orders, reconcile until
// the deadline, then drain and flush the ledger. The final drain is
// mandatory and survives cancellation of the run context.
func (l *Loop) Run(ctx context.Context) error {
	slog.Info("session starting",
		"symbol", l.session.Symbol(), "start", l.session.Start, "end", l.session.End)

	// Clean slate: orders left over from a previous run would violate the
	// one-order-per-side invariant.
	if err := l.lc.CancelAll(ctx); err != nil {
		return fmt.Errorf("clean slate: %w", err)
	}

	iter := 0
	for !l.session.Done(l.clock.Now()) {
		if ctx.Err() != nil {
			slog.Warn("run context cancelled, ending session early")
			break
		}
		iter++
		if iter >= l.harvestEvery {
			l.harvest(ctx)
			iter = 0
		}
		if err := l.lc.Reconcile(ctx); err != nil {
			slog.Warn("cycle failed", "err", err)
			l.clock.Sleep(l.lc.cfg.IdleWait)
		}
	}

	drainCtx := context.WithoutCancel(ctx)
	if err := l.drain(drainCtx); err != nil {
		return err
	}
	l.harvest(drainCtx)
	if err := l.ledger.Flush(); err != nil {
		return fmt.Errorf("flush ledger: %w", err)
	}
	slog.Info("session complete", "symbol", l.session.Symbol())
	return nil
}

// drain cancels whatever is still resting. Exiting with live orders is not
// an option, so transient cancel failures are retried with backoff.
func (l *Loop) drain(ctx context.Context) error {
	var err error
	for attempt := 0; attempt < drainAttempts; attempt++ {
		if err = l.lc.CancelAll(ctx); err == nil {
			return nil
		}
		slog.Warn("final cancel failed, retrying", "attempt", attempt, "err", err)
		l.clock.Sleep(infra.CalculateBackoff(attempt))
	}
	return fmt.Errorf("drain: %w", err)
}

// harvest appends newly-observed executed orders to the ledger. The ledger
// deduplicates by order id, so re-walking the full history is safe.
func (l *Loop) harvest(ctx context.Context) {
	all, err := l.gw.AllOrders(ctx, l.session.Symbol())
	if err != nil {
		slog.Warn("order history query failed", "err", err)
		return
	}
	for _, o := range all {
		if !o.Executed() {
			continue
		}
		fill := domain.FilledOrder{
			Time:        o.Time,
			Symbol:      o.Symbol,
			Side:        o.Side,
			ExecutedQty: o.ExecutedQty,
			Price:       o.Price,
		}
		if err := l.ledger.Record(o.ID, fill); err != nil {
			slog.Warn("ledger append failed", "order", o.ID, "err", err)
		}
	}
}
