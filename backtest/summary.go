// Package backtest turns recorded fills into per-session trading summaries.
package backtest

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/evankclarke/Crypto-market-maker/internal/domain"
	"github.com/evankclarke/Crypto-market-maker/internal/storage"
)

// SideSummary aggregates one side of the book.
type SideSummary struct {
	Fills    int
	Quantity decimal.Decimal
	Notional decimal.Decimal
}

// VWAP is the notional-weighted average fill price, zero when nothing traded.
func (s SideSummary) VWAP() decimal.Decimal {
	if s.Quantity.IsZero() {
		return decimal.Zero
	}
	return s.Notional.Div(s.Quantity)
}

// Summary is the per-session rollup of recorded fills.
type Summary struct {
	SessionID string
	Symbol    string
	Buys      SideSummary
	Sells     SideSummary
}

// NetBase is bought quantity minus sold quantity.
func (s Summary) NetBase() decimal.Decimal {
	return s.Buys.Quantity.Sub(s.Sells.Quantity)
}

// NetQuote is quote received from sells minus quote spent on buys.
func (s Summary) NetQuote() decimal.Decimal {
	return s.Sells.Notional.Sub(s.Buys.Notional)
}

func (s Summary) String() string {
	return fmt.Sprintf(
		"session %s %s: %d buys (qty %s, vwap %s), %d sells (qty %s, vwap %s), net base %s, net quote %s",
		s.SessionID, s.Symbol,
		s.Buys.Fills, s.Buys.Quantity, s.Buys.VWAP(),
		s.Sells.Fills, s.Sells.Quantity, s.Sells.VWAP(),
		s.NetBase(), s.NetQuote(),
	)
}

// Summarize rolls up the recorded fills of one session. Aggregation runs on
// decimals so long sessions do not accumulate float drift.
func Summarize(ctx context.Context, tl *storage.TradeLog, sessionID string) (Summary, error) {
	fills, err := tl.LoadFills(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{SessionID: sessionID}
	for _, fill := range fills {
		if sum.Symbol == "" {
			sum.Symbol = fill.Symbol
		}
		qty := decimal.NewFromFloat(fill.ExecutedQty)
		notional := qty.Mul(decimal.NewFromFloat(fill.Price))

		side := &sum.Buys
		if fill.Side == domain.SideSell {
			side = &sum.Sells
		}
		side.Fills++
		side.Quantity = side.Quantity.Add(qty)
		side.Notional = side.Notional.Add(notional)
	}
	return sum, nil
}
