// Package gateway defines the venue boundary the core trades through, plus
// the snapshot provider and the in-process paper venue. Implementations own
// authentication, rate limiting and retries; the core sees every call as an
// atomic request/response that either succeeds or reports an error.
package gateway

import (
	"context"
	"time"

	"github.com/evankclarke/Crypto-market-maker/internal/domain"
)

// Order is the venue's view of an order, shared by the open-orders and
// order-history queries.
type Order struct {
	ID           int64
	ClientID     string
	Symbol       string
	Side         domain.Side
	Price        float64
	OrigQty      float64
	ExecutedQty  float64
	Status       string
	Time         time.Time // creation time on the venue
	TransactTime time.Time // last transaction time on the venue
}

// Executed reports whether any quantity of the order traded.
func (o Order) Executed() bool {
	return o.ExecutedQty != 0
}

// Resting converts the venue order into the lifecycle manager's record.
// Used both on submission and when resynchronizing after a restart.
func (o Order) Resting() *domain.RestingOrder {
	at := o.TransactTime
	if at.IsZero() {
		at = o.Time
	}
	return &domain.RestingOrder{
		ID:          o.ID,
		ClientID:    o.ClientID,
		Side:        o.Side,
		Price:       o.Price,
		Size:        o.OrigQty,
		SubmittedAt: at,
	}
}

// Gateway is the exchange boundary consumed by the core.
type Gateway interface {
	// SymbolInfo resolves pair metadata, notably the minimum notional.
	SymbolInfo(ctx context.Context, symbol string) (domain.SymbolInfo, error)

	// OrderBookTop returns the best bid and best ask from the depth feed.
	OrderBookTop(ctx context.Context, symbol string) (bid, ask float64, err error)

	// BookTicker returns the venue's cached top-of-book ticker.
	BookTicker(ctx context.Context, symbol string) (bid, ask float64, err error)

	// Balance returns the free balance of one asset.
	Balance(ctx context.Context, asset string) (float64, error)

	// OpenOrders lists the currently resting orders for the pair.
	OpenOrders(ctx context.Context, symbol string) ([]Order, error)

	// AllOrders lists the full order history for the pair, including filled
	// orders that have left the open-orders view.
	AllOrders(ctx context.Context, symbol string) ([]Order, error)

	// CreateOrder submits a post-only limit order.
	CreateOrder(ctx context.Context, symbol string, side domain.Side, qty, price float64) (Order, error)

	// CancelOrder cancels one order by venue id.
	CancelOrder(ctx context.Context, symbol string, orderID int64) error

	// ServerTime returns the venue clock. Staleness decisions diff against
	// this, never against the local clock.
	ServerTime(ctx context.Context) (time.Time, error)
}
