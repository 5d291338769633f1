package binance

import (
	"testing"
	"time"
)

func TestBookStreamTop(t *testing.T) {
	s := NewBookStream("", "BTCUSDT")

	if _, _, ok := s.Top(); ok {
		t.Error("Top must not be ok before the first update")
	}

	s.onMessage([]byte(`{"s":"BTCUSDT","b":"100.00","a":"100.50"}`))
	bid, ask, ok := s.Top()
	if !ok {
		t.Fatal("Top not ok after update")
	}
	if bid != 100.00 || ask != 100.50 {
		t.Errorf("Top = %v/%v, want 100.00/100.50", bid, ask)
	}
}

func TestBookStreamStaleTop(t *testing.T) {
	s := NewBookStream("", "BTCUSDT")
	s.onMessage([]byte(`{"s":"BTCUSDT","b":"100.00","a":"100.50"}`))

	s.mu.Lock()
	s.updatedAt = time.Now().Add(-freshFor - time.Second)
	s.mu.Unlock()

	if _, _, ok := s.Top(); ok {
		t.Error("Top must not be ok once the last update aged out")
	}
}

func TestBookStreamRejectsBadUpdates(t *testing.T) {
	s := NewBookStream("", "BTCUSDT")

	s.onMessage([]byte(`not json`))
	s.onMessage([]byte(`{"s":"BTCUSDT","b":"0","a":"100.50"}`))
	s.onMessage([]byte(`{"s":"BTCUSDT","b":"abc","a":"100.50"}`))

	if _, _, ok := s.Top(); ok {
		t.Error("bad updates must not publish a top")
	}
}

func TestBookStreamURL(t *testing.T) {
	s := NewBookStream("wss://example.test:9443/", "ETHUSDT")
	want := "wss://example.test:9443/ws/ethusdt@bookTicker"
	if s.url != want {
		t.Errorf("url = %s, want %s", s.url, want)
	}
}
