package binance

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/evankclarke/Crypto-market-maker/internal/infra"
	"github.com/evankclarke/Crypto-market-maker/pkg/quant"
)

const DefaultWSURL = "wss://stream.binance.us:9443"

// freshFor bounds how old a streamed top may be before the engine falls
// back to REST. The stream pushes on every book change, so anything older
// usually means the connection silently died.
const freshFor = 3 * time.Second

const readTimeout = 60 * time.Second

type bookTickerEvent struct {
	Symbol   string `json:"s"`
	BidPrice string `json:"b"`
	AskPrice string `json:"a"`
}

// BookStream keeps a live best bid/ask for one symbol over the bookTicker
// websocket stream. It reconnects with backoff and exposes the last quote
// through Top.
type BookStream struct {
	url    string
	symbol string

	mu        sync.RWMutex
	bid       float64
	ask       float64
	updatedAt time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBookStream builds a stream worker for the given symbol. wsURL is the
// venue's websocket base; empty means the default endpoint.
func NewBookStream(wsURL, symbol string) *BookStream {
	if wsURL == "" {
		wsURL = DefaultWSURL
	}
	return &BookStream{
		url:    strings.TrimRight(wsURL, "/") + "/ws/" + strings.ToLower(symbol) + "@bookTicker",
		symbol: symbol,
	}
}

// Top returns the latest streamed best bid/ask. ok is false until the first
// update arrives and whenever the last update is too old to trust.
func (s *BookStream) Top() (bid, ask float64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.updatedAt.IsZero() || time.Since(s.updatedAt) > freshFor {
		return 0, 0, false
	}
	return s.bid, s.ask, true
}

// Start launches the connect/read loop.
func (s *BookStream) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.runLoop(ctx)
}

// Stop terminates the worker and waits for the read loop to exit.
func (s *BookStream) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *BookStream) runLoop(ctx context.Context) {
	defer s.wg.Done()
	retry := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn, err := s.connect(ctx)
		if err != nil {
			slog.Warn("📡 stream connect failed", "symbol", s.symbol, "err", err, "retry", retry)
			delay := infra.CalculateBackoff(retry)
			retry++

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		retry = 0
		slog.Info("📡 stream connected", "symbol", s.symbol)
		s.readLoop(ctx, conn)
		conn.Close()
	}
}

func (s *BookStream) connect(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return nil, err
	}
	// The venue pings periodically; answering keeps the read deadline moving.
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})
	return conn, nil
}

func (s *BookStream) readLoop(ctx context.Context, conn *websocket.Conn) {
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				slog.Warn("📡 stream read failed, reconnecting", "symbol", s.symbol, "err", err)
			}
			return
		}
		s.onMessage(msg)
	}
}

func (s *BookStream) onMessage(msg []byte) {
	var ev bookTickerEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		slog.Debug("stream message skipped", "symbol", s.symbol, "err", err)
		return
	}
	bid, err := quant.ParseFloat(ev.BidPrice)
	if err != nil {
		return
	}
	ask, err := quant.ParseFloat(ev.AskPrice)
	if err != nil {
		return
	}
	if bid <= 0 || ask <= 0 {
		return
	}

	s.mu.Lock()
	s.bid = bid
	s.ask = ask
	s.updatedAt = time.Now()
	s.mu.Unlock()
}
