package gateway

import (
	"context"
	"time"

	"github.com/evankclarke/Crypto-market-maker/internal/domain"
)

// Mock is a scripted venue for tests. Unset functions return zero values,
// so a test only scripts the calls it cares about.
type Mock struct {
	SymbolInfoFn   func(ctx context.Context, symbol string) (domain.SymbolInfo, error)
	OrderBookTopFn func(ctx context.Context, symbol string) (float64, float64, error)
	BookTickerFn   func(ctx context.Context, symbol string) (float64, float64, error)
	BalanceFn      func(ctx context.Context, asset string) (float64, error)
	OpenOrdersFn   func(ctx context.Context, symbol string) ([]Order, error)
	AllOrdersFn    func(ctx context.Context, symbol string) ([]Order, error)
	CreateOrderFn  func(ctx context.Context, symbol string, side domain.Side, qty, price float64) (Order, error)
	CancelOrderFn  func(ctx context.Context, symbol string, orderID int64) error
	ServerTimeFn   func(ctx context.Context) (time.Time, error)
}

var _ Gateway = (*Mock)(nil)

func (m *Mock) SymbolInfo(ctx context.Context, symbol string) (domain.SymbolInfo, error) {
	if m.SymbolInfoFn == nil {
		return domain.SymbolInfo{Symbol: symbol}, nil
	}
	return m.SymbolInfoFn(ctx, symbol)
}

func (m *Mock) OrderBookTop(ctx context.Context, symbol string) (float64, float64, error) {
	if m.OrderBookTopFn == nil {
		return 0, 0, nil
	}
	return m.OrderBookTopFn(ctx, symbol)
}

func (m *Mock) BookTicker(ctx context.Context, symbol string) (float64, float64, error) {
	if m.BookTickerFn == nil {
		return 0, 0, nil
	}
	return m.BookTickerFn(ctx, symbol)
}

func (m *Mock) Balance(ctx context.Context, asset string) (float64, error) {
	if m.BalanceFn == nil {
		return 0, nil
	}
	return m.BalanceFn(ctx, asset)
}

func (m *Mock) OpenOrders(ctx context.Context, symbol string) ([]Order, error) {
	if m.OpenOrdersFn == nil {
		return nil, nil
	}
	return m.OpenOrdersFn(ctx, symbol)
}

func (m *Mock) AllOrders(ctx context.Context, symbol string) ([]Order, error) {
	if m.AllOrdersFn == nil {
		return nil, nil
	}
	return m.AllOrdersFn(ctx, symbol)
}

func (m *Mock) CreateOrder(ctx context.Context, symbol string, side domain.Side, qty, price float64) (Order, error) {
	if m.CreateOrderFn == nil {
		return Order{}, nil
	}
	return m.CreateOrderFn(ctx, symbol, side, qty, price)
}

func (m *Mock) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	if m.CancelOrderFn == nil {
		return nil
	}
	return m.CancelOrderFn(ctx, symbol, orderID)
}

func (m *Mock) ServerTime(ctx context.Context) (time.Time, error) {
	if m.ServerTimeFn == nil {
		return time.Time{}, nil
	}
	return m.ServerTimeFn(ctx)
}
