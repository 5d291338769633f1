package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/evankclarke/Crypto-market-maker/internal/domain"
)

// Paper is an in-process venue for paper-trading sessions: a random-walk
// mid price, post-only semantics, crossing fills and virtual balances. It
// lets a full session run with no API keys.
type Paper struct {
	mu sync.Mutex

	base        string
	quote       string
	minNotional float64

	mid float64
	rng *rand.Rand

	nextID   int64
	open     map[int64]*Order
	history  []*Order
	balances map[string]float64
}

var _ Gateway = (*Paper)(nil)

// NewPaper creates a paper venue seeded with the given mid price and free
// balances.
func NewPaper(base, quote string, mid, baseFree, quoteFree float64, seed int64) *Paper {
	base = strings.ToUpper(base)
	quote = strings.ToUpper(quote)
	return &Paper{
		base:        base,
		quote:       quote,
		minNotional: 10,
		mid:         mid,
		rng:         rand.New(rand.NewSource(seed)),
		open:        make(map[int64]*Order),
		balances: map[string]float64{
			base:  baseFree,
			quote: quoteFree,
		},
	}
}

// halfWidth is the simulated book's distance from mid to either side.
func (p *Paper) halfWidth() float64 {
	return p.mid * 0.001
}

func (p *Paper) bestBid() float64 { return p.mid - p.halfWidth() }
func (p *Paper) bestAsk() float64 { return p.mid + p.halfWidth() }

// step advances the random walk one tick and fills any order the new book
// crosses. Called under the lock from every market-data read, so the
// simulation only moves when the trader looks at it.
func (p *Paper) step() {
	p.mid *= 1 + p.rng.NormFloat64()*0.0005
	p.fillCrossed()
}

// setMid pins the walk to an exact price. Test hook.
func (p *Paper) setMid(mid float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mid = mid
	p.fillCrossed()
}

func (p *Paper) fillCrossed() {
	now := time.Now()
	for id, o := range p.open {
		crossed := (o.Side == domain.SideBuy && p.bestAsk() <= o.Price) ||
			(o.Side == domain.SideSell && p.bestBid() >= o.Price)
		if !crossed {
			continue
		}
		o.ExecutedQty = o.OrigQty
		o.Status = "FILLED"
		o.TransactTime = now
		if o.Side == domain.SideBuy {
			// Quote was reserved at submission; deliver the base.
			p.balances[p.base] += o.OrigQty
		} else {
			p.balances[p.quote] += o.Price * o.OrigQty
		}
		delete(p.open, id)
	}
}

func (p *Paper) SymbolInfo(ctx context.Context, symbol string) (domain.SymbolInfo, error) {
	return domain.SymbolInfo{Symbol: symbol, MinNotional: p.minNotional}, nil
}

func (p *Paper) OrderBookTop(ctx context.Context, symbol string) (float64, float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.step()
	return p.bestBid(), p.bestAsk(), nil
}

func (p *Paper) BookTicker(ctx context.Context, symbol string) (float64, float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bestBid(), p.bestAsk(), nil
}

func (p *Paper) Balance(ctx context.Context, asset string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balances[strings.ToUpper(asset)], nil
}

func (p *Paper) OpenOrders(ctx context.Context, symbol string) ([]Order, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.step()
	out := make([]Order, 0, len(p.open))
	for _, o := range p.open {
		out = append(out, *o)
	}
	return out, nil
}

func (p *Paper) AllOrders(ctx context.Context, symbol string) ([]Order, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Order, 0, len(p.history))
	for _, o := range p.history {
		out = append(out, *o)
	}
	return out, nil
}

func (p *Paper) CreateOrder(ctx context.Context, symbol string, side domain.Side, qty, price float64) (Order, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Post-only: an order that would match on arrival is rejected, mirroring
	// the venue's LIMIT_MAKER behavior.
	if side == domain.SideBuy && price >= p.bestAsk() {
		return Order{}, fmt.Errorf("paper: buy at %v would immediately match ask %v", price, p.bestAsk())
	}
	if side == domain.SideSell && price <= p.bestBid() {
		return Order{}, fmt.Errorf("paper: sell at %v would immediately match bid %v", price, p.bestBid())
	}

	if side == domain.SideBuy {
		need := price * qty
		if p.balances[p.quote] < need {
			return Order{}, fmt.Errorf("paper: insufficient %s: need %v, have %v", p.quote, need, p.balances[p.quote])
		}
		p.balances[p.quote] -= need
	} else {
		if p.balances[p.base] < qty {
			return Order{}, fmt.Errorf("paper: insufficient %s: need %v, have %v", p.base, qty, p.balances[p.base])
		}
		p.balances[p.base] -= qty
	}

	p.nextID++
	now := time.Now()
	o := &Order{
		ID:           p.nextID,
		ClientID:     fmt.Sprintf("paper-%d", p.nextID),
		Symbol:       symbol,
		Side:         side,
		Price:        price,
		OrigQty:      qty,
		Status:       "NEW",
		Time:         now,
		TransactTime: now,
	}
	p.open[o.ID] = o
	p.history = append(p.history, o)
	return *o, nil
}

func (p *Paper) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	o, ok := p.open[orderID]
	if !ok {
		return fmt.Errorf("paper: order %d not open", orderID)
	}
	o.Status = "CANCELED"
	// Release the reservation.
	if o.Side == domain.SideBuy {
		p.balances[p.quote] += o.Price * o.OrigQty
	} else {
		p.balances[p.base] += o.OrigQty
	}
	delete(p.open, orderID)
	return nil
}

func (p *Paper) ServerTime(ctx context.Context) (time.Time, error) {
	return time.Now(), nil
}
