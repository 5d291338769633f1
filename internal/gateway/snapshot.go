package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/evankclarke/Crypto-market-maker/internal/domain"
)

// ErrStaleSnapshot marks a cycle whose order book read was internally
// inconsistent (bid above ask). The caller skips the decision step and
// retries on the next cycle.
var ErrStaleSnapshot = errors.New("stale order book snapshot")

// TopSource is an optional live top-of-book cache, fed by the websocket
// stream. When it has fresh data the provider skips the REST depth call.
type TopSource interface {
	Top() (bid, ask float64, ok bool)
}

// SnapshotProvider captures the market and portfolio state as of one point
// in time. It is the only component that reads market data; everything
// downstream works from its snapshot.
type SnapshotProvider struct {
	gw    Gateway
	base  string
	quote string
	live  TopSource // may be nil
}

// NewSnapshotProvider wraps the gateway for one session's pair. live may be
// nil, in which case every snapshot goes through REST.
func NewSnapshotProvider(gw Gateway, base, quote string, live TopSource) *SnapshotProvider {
	return &SnapshotProvider{gw: gw, base: base, quote: quote, live: live}
}

func (p *SnapshotProvider) symbol() string {
	return p.base + p.quote
}

// Snapshot fetches best bid/ask, both balances and the venue clock. The
// snapshot is rejected with ErrStaleSnapshot if the book is crossed.
func (p *SnapshotProvider) Snapshot(ctx context.Context) (domain.MarketSnapshot, domain.Portfolio, error) {
	var (
		bid, ask float64
		err      error
	)
	if p.live != nil {
		var ok bool
		bid, ask, ok = p.live.Top()
		if !ok {
			bid, ask, err = p.gw.OrderBookTop(ctx, p.symbol())
		}
	} else {
		bid, ask, err = p.gw.OrderBookTop(ctx, p.symbol())
	}
	if err != nil {
		return domain.MarketSnapshot{}, domain.Portfolio{}, fmt.Errorf("order book: %w", err)
	}

	serverTime, err := p.gw.ServerTime(ctx)
	if err != nil {
		return domain.MarketSnapshot{}, domain.Portfolio{}, fmt.Errorf("server time: %w", err)
	}

	snap := domain.MarketSnapshot{BestBid: bid, BestAsk: ask, ServerTime: serverTime}
	if !snap.Valid() {
		return domain.MarketSnapshot{}, domain.Portfolio{}, fmt.Errorf("bid %v ask %v: %w", bid, ask, ErrStaleSnapshot)
	}

	baseFree, err := p.gw.Balance(ctx, p.base)
	if err != nil {
		return domain.MarketSnapshot{}, domain.Portfolio{}, fmt.Errorf("%s balance: %w", p.base, err)
	}
	quoteFree, err := p.gw.Balance(ctx, p.quote)
	if err != nil {
		return domain.MarketSnapshot{}, domain.Portfolio{}, fmt.Errorf("%s balance: %w", p.quote, err)
	}

	return snap, domain.Portfolio{BaseFree: baseFree, QuoteFree: quoteFree}, nil
}

// StartingState resolves the inputs the quoter is seeded with: the venue's
// ticker bid and the portfolio's total value at that price. Failure here is
// fatal; the session never starts without it.
func (p *SnapshotProvider) StartingState(ctx context.Context) (totalValue, bestBid float64, err error) {
	bid, _, err := p.gw.BookTicker(ctx, p.symbol())
	if err != nil {
		return 0, 0, fmt.Errorf("book ticker: %w", err)
	}
	if bid <= 0 {
		return 0, 0, fmt.Errorf("book ticker bid %v: %w", bid, ErrStaleSnapshot)
	}
	baseFree, err := p.gw.Balance(ctx, p.base)
	if err != nil {
		return 0, 0, fmt.Errorf("%s balance: %w", p.base, err)
	}
	quoteFree, err := p.gw.Balance(ctx, p.quote)
	if err != nil {
		return 0, 0, fmt.Errorf("%s balance: %w", p.quote, err)
	}
	return quoteFree + baseFree*bid, bid, nil
}
