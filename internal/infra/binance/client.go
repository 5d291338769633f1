package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evankclarke/Crypto-market-maker/internal/domain"
	"github.com/evankclarke/Crypto-market-maker/internal/gateway"
	"github.com/evankclarke/Crypto-market-maker/internal/infra"
	"github.com/evankclarke/Crypto-market-maker/pkg/quant"
)

const DefaultRestURL = "https://api.binance.us"

// amountPrecision is the decimal precision used when rendering order
// quantities and prices onto the wire.
const amountPrecision = 2

// Client is the REST gateway against the venue. Every call goes through the
// shared rate limiter and circuit breaker; the core never talks to the
// venue directly.
type Client struct {
	baseURL    string
	httpClient *http.Client
	signer     *Signer
	limiter    *infra.RateLimiter
	breaker    *infra.CircuitBreaker
	recvWindow int64
}

var _ gateway.Gateway = (*Client)(nil)

// NewClient builds the venue client from config.
func NewClient(cfg *infra.Config) *Client {
	baseURL := cfg.Venue.RestURL
	if baseURL == "" {
		baseURL = DefaultRestURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		signer:     NewSigner(cfg.Venue.APIKey, cfg.Venue.SecretKey),
		limiter:    infra.NewRateLimiter(20, 10),
		breaker:    infra.NewCircuitBreaker("venue-rest", 5, 30*time.Second),
		recvWindow: cfg.Venue.RecvWindowMS,
	}
}

// Close wipes the credentials from memory.
func (c *Client) Close() {
	c.signer.Wipe()
}

// do performs one request. Signed endpoints get timestamp, recvWindow and
// the HMAC signature appended; the signature covers exactly the query
// string that goes on the wire.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, signed bool, out any) error {
	c.limiter.Wait()
	return c.breaker.Do(func() error {
		if params == nil {
			params = url.Values{}
		}
		if signed {
			params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
			params.Set("recvWindow", strconv.FormatInt(c.recvWindow, 10))
		}
		query := params.Encode()
		if signed {
			query += "&signature=" + c.signer.Sign(query)
		}

		reqURL := c.baseURL + path
		if query != "" {
			reqURL += "?" + query
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
		if err != nil {
			return err
		}
		if signed {
			req.Header.Set("X-MBX-APIKEY", c.signer.APIKey())
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			var apiErr apiError
			if json.Unmarshal(body, &apiErr) == nil && apiErr.Msg != "" {
				return fmt.Errorf("%s %s: venue error %d: %s", method, path, apiErr.Code, apiErr.Msg)
			}
			return fmt.Errorf("%s %s: http %d", method, path, resp.StatusCode)
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%s %s: decode: %w", method, path, err)
		}
		return nil
	})
}

func (c *Client) SymbolInfo(ctx context.Context, symbol string) (domain.SymbolInfo, error) {
	params := url.Values{"symbol": {symbol}}
	var resp exchangeInfoResponse
	if err := c.do(ctx, http.MethodGet, "/api/v3/exchangeInfo", params, false, &resp); err != nil {
		return domain.SymbolInfo{}, err
	}
	for _, s := range resp.Symbols {
		if s.Symbol != symbol {
			continue
		}
		info := domain.SymbolInfo{Symbol: symbol}
		for _, f := range s.Filters {
			// Older API versions call the filter MIN_NOTIONAL, newer ones NOTIONAL.
			if f.FilterType == "MIN_NOTIONAL" || f.FilterType == "NOTIONAL" {
				v, err := quant.ParseFloat(f.MinNotional)
				if err != nil {
					return domain.SymbolInfo{}, fmt.Errorf("minNotional: %w", err)
				}
				info.MinNotional = v
			}
		}
		return info, nil
	}
	return domain.SymbolInfo{}, fmt.Errorf("symbol %s not found on venue", symbol)
}

func (c *Client) OrderBookTop(ctx context.Context, symbol string) (float64, float64, error) {
	params := url.Values{"symbol": {symbol}, "limit": {"5"}}
	var resp depthResponse
	if err := c.do(ctx, http.MethodGet, "/api/v3/depth", params, false, &resp); err != nil {
		return 0, 0, err
	}
	if len(resp.Bids) == 0 || len(resp.Asks) == 0 || len(resp.Bids[0]) == 0 || len(resp.Asks[0]) == 0 {
		return 0, 0, fmt.Errorf("depth for %s is empty", symbol)
	}
	bid, err := quant.ParseFloat(resp.Bids[0][0])
	if err != nil {
		return 0, 0, err
	}
	ask, err := quant.ParseFloat(resp.Asks[0][0])
	if err != nil {
		return 0, 0, err
	}
	return bid, ask, nil
}

func (c *Client) BookTicker(ctx context.Context, symbol string) (float64, float64, error) {
	params := url.Values{"symbol": {symbol}}
	var resp bookTickerResponse
	if err := c.do(ctx, http.MethodGet, "/api/v3/ticker/bookTicker", params, false, &resp); err != nil {
		return 0, 0, err
	}
	bid, err := quant.ParseFloat(resp.BidPrice)
	if err != nil {
		return 0, 0, err
	}
	ask, err := quant.ParseFloat(resp.AskPrice)
	if err != nil {
		return 0, 0, err
	}
	return bid, ask, nil
}

func (c *Client) Balance(ctx context.Context, asset string) (float64, error) {
	var resp accountResponse
	if err := c.do(ctx, http.MethodGet, "/api/v3/account", nil, true, &resp); err != nil {
		return 0, err
	}
	for _, b := range resp.Balances {
		if b.Asset == asset {
			return quant.ParseFloat(b.Free)
		}
	}
	return 0, fmt.Errorf("asset %s not in account", asset)
}

func (c *Client) OpenOrders(ctx context.Context, symbol string) ([]gateway.Order, error) {
	params := url.Values{"symbol": {symbol}}
	var resp []orderResponse
	if err := c.do(ctx, http.MethodGet, "/api/v3/openOrders", params, true, &resp); err != nil {
		return nil, err
	}
	return toGatewayOrders(resp)
}

func (c *Client) AllOrders(ctx context.Context, symbol string) ([]gateway.Order, error) {
	params := url.Values{"symbol": {symbol}}
	var resp []orderResponse
	if err := c.do(ctx, http.MethodGet, "/api/v3/allOrders", params, true, &resp); err != nil {
		return nil, err
	}
	return toGatewayOrders(resp)
}

func (c *Client) CreateOrder(ctx context.Context, symbol string, side domain.Side, qty, price float64) (gateway.Order, error) {
	params := url.Values{
		"symbol":           {symbol},
		"side":             {string(side)},
		"type":             {"LIMIT_MAKER"}, // post-only: never takes liquidity
		"quantity":         {quant.FormatAmount(qty, amountPrecision)},
		"price":            {quant.FormatAmount(price, amountPrecision)},
		"newClientOrderId": {uuid.NewString()},
		"newOrderRespType": {"RESULT"},
	}
	var resp orderResponse
	if err := c.do(ctx, http.MethodPost, "/api/v3/order", params, true, &resp); err != nil {
		return gateway.Order{}, err
	}
	return resp.toGateway()
}

func (c *Client) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	params := url.Values{
		"symbol":  {symbol},
		"orderId": {strconv.FormatInt(orderID, 10)},
	}
	return c.do(ctx, http.MethodDelete, "/api/v3/order", params, true, nil)
}

func (c *Client) ServerTime(ctx context.Context) (time.Time, error) {
	var resp serverTimeResponse
	if err := c.do(ctx, http.MethodGet, "/api/v3/time", nil, false, &resp); err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(resp.ServerTime), nil
}

func toGatewayOrders(resp []orderResponse) ([]gateway.Order, error) {
	out := make([]gateway.Order, 0, len(resp))
	for _, o := range resp {
		g, err := o.toGateway()
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}
