// Package strategy computes the two-sided maker quotes. Everything here is
// pure: given a market snapshot, a portfolio and session progress, the same
// quotes come out every time. Order placement lives in internal/engine.
package strategy

import (
	"math"

	"github.com/evankclarke/Crypto-market-maker/internal/domain"
	"github.com/evankclarke/Crypto-market-maker/pkg/quant"
)

const (
	// SpreadFloor is the half-spread the quotes decay toward as the session
	// ends: near-pure market following once the deadline is close.
	SpreadFloor = 0.001

	// WidthFraction scales the observed bid-ask width into our half-spread.
	WidthFraction = 0.25

	// SkewDecay controls how fast the unbalancing side shrinks as inventory
	// drifts from the 50/50 target.
	SkewDecay = 5.0

	// CapitalFraction of starting portfolio value caps a single order.
	CapitalFraction = 0.2

	// PricePrecision is the venue tick precision for prices and sizes.
	PricePrecision = 2

	// NotionalMargin is added to the venue minimum so a quote never lands
	// exactly on the rejection boundary.
	NotionalMargin = 0.5
)

// Quoter prices and sizes the two resting quotes for one session.
// MaxOrderSize is fixed from the starting portfolio and never recomputed:
// the cap is a session risk limit, not a dynamic one.
type Quoter struct {
	Symbol       string
	MaxOrderSize float64
	MinNotional  float64
}

// NewQuoter derives the session constants from the starting portfolio value
// and the best bid observed at startup.
func NewQuoter(info domain.SymbolInfo, startingValue, startingBid float64) *Quoter {
	return &Quoter{
		Symbol:       info.Symbol,
		MaxOrderSize: CapitalFraction * startingValue / startingBid,
		MinNotional:  info.MinNotional + NotionalMargin,
	}
}

// Spread returns the half-spread fraction applied to each side of mid.
// It tightens monotonically toward SpreadFloor as pct approaches 1.
func (q *Quoter) Spread(snap domain.MarketSnapshot, pct float64) float64 {
	base := WidthFraction * snap.Width() / snap.BestBid
	return SpreadFloor + base*(1-pct)
}

// Price returns the truncated quote price for one side. Truncation biases
// both sides toward the passive direction; the maker never crosses its own
// intended price by rounding.
func (q *Quoter) Price(side domain.Side, snap domain.MarketSnapshot, pct float64) float64 {
	spread := q.Spread(snap, pct)
	return quant.Truncate(snap.Mid()*(1+side.Sign()*spread), PricePrecision)
}

// Size returns the order size for one side given current inventory skew.
// The side that rebalances the portfolio quotes at the session cap; the
// side that would deepen the skew decays exponentially. Both sides meet at
// the cap when the portfolio is perfectly balanced.
func (q *Quoter) Size(side domain.Side, p domain.Portfolio, mid float64) float64 {
	total := p.TotalValue(mid)
	if total <= 0 {
		return 0
	}
	excessQuote := 2*p.QuoteFree - total // positive when quote-heavy
	if (side == domain.SideBuy && excessQuote > 0) || (side == domain.SideSell && excessQuote < 0) {
		return q.MaxOrderSize
	}
	return q.MaxOrderSize * math.Exp(SkewDecay*side.Sign()*p.AssetRatio(mid))
}

// Quote builds the full quote for one side, or nil when the notional would
// not clear the venue minimum. A nil quote is a policy decision to sit the
// cycle out, not an error. The comparison is strict: a notional exactly at
// the minimum is still suppressed.
func (q *Quoter) Quote(side domain.Side, snap domain.MarketSnapshot, p domain.Portfolio, pct float64) *domain.Quote {
	price := q.Price(side, snap, pct)
	size := quant.Truncate(q.Size(side, p, snap.Mid()), PricePrecision)
	if price*size <= q.MinNotional {
		return nil
	}
	return &domain.Quote{Side: side, Price: price, Size: size}
}
