package binance

import (
	"time"

	"github.com/evankclarke/Crypto-market-maker/internal/domain"
	"github.com/evankclarke/Crypto-market-maker/internal/gateway"
	"github.com/evankclarke/Crypto-market-maker/pkg/quant"
)

// Wire types for the venue's JSON. All numbers arrive as strings and are
// parsed at this boundary only.

type apiError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

type exchangeInfoResponse struct {
	Symbols []struct {
		Symbol  string `json:"symbol"`
		Filters []struct {
			FilterType  string `json:"filterType"`
			MinNotional string `json:"minNotional"`
		} `json:"filters"`
	} `json:"symbols"`
}

type depthResponse struct {
	Bids [][]string `json:"bids"` // [price, qty], best first
	Asks [][]string `json:"asks"`
}

type bookTickerResponse struct {
	BidPrice string `json:"bidPrice"`
	AskPrice string `json:"askPrice"`
}

type accountResponse struct {
	Balances []struct {
		Asset string `json:"asset"`
		Free  string `json:"free"`
	} `json:"balances"`
}

type serverTimeResponse struct {
	ServerTime int64 `json:"serverTime"`
}

type orderResponse struct {
	OrderID       int64  `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
	Symbol        string `json:"symbol"`
	Side          string `json:"side"`
	Price         string `json:"price"`
	OrigQty       string `json:"origQty"`
	ExecutedQty   string `json:"executedQty"`
	Status        string `json:"status"`
	Time          int64  `json:"time"`
	TransactTime  int64  `json:"transactTime"`
}

// toGateway converts the wire order into the gateway's view.
func (o orderResponse) toGateway() (gateway.Order, error) {
	price, err := quant.ParseFloat(o.Price)
	if err != nil {
		return gateway.Order{}, err
	}
	origQty, err := quant.ParseFloat(o.OrigQty)
	if err != nil {
		return gateway.Order{}, err
	}
	executedQty, err := quant.ParseFloat(o.ExecutedQty)
	if err != nil {
		return gateway.Order{}, err
	}
	return gateway.Order{
		ID:           o.OrderID,
		ClientID:     o.ClientOrderID,
		Symbol:       o.Symbol,
		Side:         domain.Side(o.Side),
		Price:        price,
		OrigQty:      origQty,
		ExecutedQty:  executedQty,
		Status:       o.Status,
		Time:         msToTime(o.Time),
		TransactTime: msToTime(o.TransactTime),
	}, nil
}

func msToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
