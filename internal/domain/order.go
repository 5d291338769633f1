package domain

import "time"

// Side identifies which half of the two-sided quote an order belongs to.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Sign maps the side onto the price axis: -1 for the bid, +1 for the ask.
// Keeping the bid/ask symmetry in one place means the mirrored pricing and
// sizing formulas cannot drift apart.
func (s Side) Sign() float64 {
	if s == SideSell {
		return 1
	}
	return -1
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// OrderState is the per-side lifecycle state owned by the lifecycle manager.
type OrderState int

const (
	OrderEmpty OrderState = iota
	OrderResting
	OrderCancelling
)

func (s OrderState) String() string {
	switch s {
	case OrderEmpty:
		return "EMPTY"
	case OrderResting:
		return "RESTING"
	case OrderCancelling:
		return "CANCELLING"
	default:
		return "UNKNOWN"
	}
}

// Quote is a computed price/size pair. It has no identity until it is
// submitted and becomes a RestingOrder.
type Quote struct {
	Side  Side
	Price float64
	Size  float64
}

// Notional is the quote's value in quote-currency terms.
func (q Quote) Notional() float64 {
	return q.Price * q.Size
}

// RestingOrder is a live post-only order on the venue. At most one exists
// per side at any time.
type RestingOrder struct {
	ID          int64
	ClientID    string
	Side        Side
	Price       float64
	Size        float64
	SubmittedAt time.Time // venue transact time, not local clock
}

// FilledOrder is an immutable record of an executed order, appended to the
// trade ledger.
type FilledOrder struct {
	Time        time.Time
	Symbol      string
	Side        Side
	ExecutedQty float64
	Price       float64
}
