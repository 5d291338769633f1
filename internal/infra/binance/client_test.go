package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/evankclarke/Crypto-market-maker/internal/domain"
	"github.com/evankclarke/Crypto-market-maker/internal/infra"
)

func newTestClient(serverURL string) *Client {
	cfg := &infra.Config{}
	cfg.Venue.RestURL = serverURL
	cfg.Venue.APIKey = "test-key"
	cfg.Venue.SecretKey = "test-secret"
	cfg.Venue.RecvWindowMS = 5000
	return NewClient(cfg)
}

func TestSymbolInfoParsesMinNotional(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/exchangeInfo" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"symbols":[{"symbol":"BTCUSDT","filters":[
			{"filterType":"PRICE_FILTER","minNotional":""},
			{"filterType":"NOTIONAL","minNotional":"10.00000000"}
		]}]}`))
	}))
	defer srv.Close()

	info, err := newTestClient(srv.URL).SymbolInfo(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("SymbolInfo: %v", err)
	}
	if info.MinNotional != 10.0 {
		t.Errorf("MinNotional = %v, want 10", info.MinNotional)
	}
}

func TestSymbolInfoUnknownSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbols":[]}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).SymbolInfo(context.Background(), "NOPEUSDT"); err == nil {
		t.Error("unknown symbol must return an error")
	}
}

func TestCreateOrderWire(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v3/order" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-MBX-APIKEY") != "test-key" {
			t.Errorf("missing api key header")
		}
		got = r.URL.Query()
		w.Write([]byte(`{"orderId":42,"clientOrderId":"abc","symbol":"BTCUSDT","side":"BUY",
			"price":"100.02","origQty":"0.25","executedQty":"0.00000000","status":"NEW",
			"transactTime":1690000000000}`))
	}))
	defer srv.Close()

	order, err := newTestClient(srv.URL).CreateOrder(context.Background(), "BTCUSDT", domain.SideBuy, 0.25, 100.02)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if got.Get("type") != "LIMIT_MAKER" {
		t.Errorf("type = %s, want LIMIT_MAKER", got.Get("type"))
	}
	if got.Get("side") != "BUY" {
		t.Errorf("side = %s, want BUY", got.Get("side"))
	}
	if got.Get("quantity") != "0.25" || got.Get("price") != "100.02" {
		t.Errorf("quantity/price = %s/%s", got.Get("quantity"), got.Get("price"))
	}
	if got.Get("newClientOrderId") == "" {
		t.Error("client order id not set")
	}
	if got.Get("signature") == "" || got.Get("timestamp") == "" {
		t.Error("request not signed")
	}

	if order.ID != 42 || order.Side != domain.SideBuy || order.Price != 100.02 {
		t.Errorf("order mapping wrong: %+v", order)
	}
	if order.Executed() {
		t.Error("zero executedQty must not count as executed")
	}
}

func TestAPIErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-2010,"msg":"Order would immediately match and take."}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateOrder(context.Background(), "BTCUSDT", domain.SideSell, 0.25, 99.00)
	if err == nil {
		t.Fatal("venue rejection must surface as an error")
	}
}

func TestBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"balances":[
			{"asset":"BTC","free":"5.00000000"},
			{"asset":"USDT","free":"500.00000000"}
		]}`))
	}))
	defer srv.Close()

	free, err := newTestClient(srv.URL).Balance(context.Background(), "USDT")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if free != 500.0 {
		t.Errorf("free = %v, want 500", free)
	}
}
