package domain

import "time"

// MarketSnapshot is the top of book captured atomically at the start of a
// cycle. No quote is ever computed from a snapshot older than the current
// cycle's fetch.
type MarketSnapshot struct {
	BestBid    float64
	BestAsk    float64
	ServerTime time.Time
}

// Mid is the midpoint between the best bid and best ask.
func (m MarketSnapshot) Mid() float64 {
	return (m.BestBid + m.BestAsk) / 2
}

// Width is the bid-ask spread in price terms.
func (m MarketSnapshot) Width() float64 {
	return m.BestAsk - m.BestBid
}

// Valid reports whether the snapshot can be quoted against. A crossed book
// (bid above ask) means the two sides were read at different instants; the
// cycle skips its decision step and retries.
func (m MarketSnapshot) Valid() bool {
	return m.BestBid > 0 && m.BestAsk > 0 && m.BestBid <= m.BestAsk
}

// SymbolInfo carries the venue metadata resolved once before the session
// loop starts.
type SymbolInfo struct {
	Symbol      string
	MinNotional float64
}
