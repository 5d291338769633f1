package backtest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/evankclarke/Crypto-market-maker/internal/domain"
	"github.com/evankclarke/Crypto-market-maker/internal/storage"
)

func TestSummarize(t *testing.T) {
	dir := t.TempDir()
	tl, err := storage.NewTradeLog(filepath.Join(dir, "fills.db"), filepath.Join(dir, "fills.csv"), "s1")
	if err != nil {
		t.Fatal(err)
	}
	defer tl.Close()

	base := time.UnixMilli(1690000000000)
	fills := []struct {
		id    int64
		side  domain.Side
		qty   float64
		price float64
	}{
		{1, domain.SideBuy, 0.25, 100.02},
		{2, domain.SideBuy, 0.25, 99.98},
		{3, domain.SideSell, 0.30, 100.47},
	}
	for i, f := range fills {
		err := tl.Record(f.id, domain.FilledOrder{
			Time:        base.Add(time.Duration(i) * time.Minute),
			Symbol:      "BTCUSDT",
			Side:        f.side,
			ExecutedQty: f.qty,
			Price:       f.price,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	sum, err := Summarize(context.Background(), tl, "s1")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if sum.Symbol != "BTCUSDT" {
		t.Errorf("Symbol = %s", sum.Symbol)
	}
	if sum.Buys.Fills != 2 || sum.Sells.Fills != 1 {
		t.Errorf("fill counts = %d/%d, want 2/1", sum.Buys.Fills, sum.Sells.Fills)
	}
	if got := sum.Buys.Quantity.String(); got != "0.5" {
		t.Errorf("buy qty = %s, want 0.5", got)
	}
	if got := sum.Buys.VWAP().String(); got != "100" {
		t.Errorf("buy vwap = %s, want 100", got)
	}
	if got := sum.NetBase().String(); got != "0.2" {
		t.Errorf("net base = %s, want 0.2", got)
	}
	// Sold 0.30 @ 100.47 = 30.141, bought 0.5 @ 100 = 50.
	if got := sum.NetQuote().String(); got != "-19.859" {
		t.Errorf("net quote = %s, want -19.859", got)
	}
}

func TestSummarizeEmptySession(t *testing.T) {
	dir := t.TempDir()
	tl, err := storage.NewTradeLog(filepath.Join(dir, "fills.db"), filepath.Join(dir, "fills.csv"), "s1")
	if err != nil {
		t.Fatal(err)
	}
	defer tl.Close()

	sum, err := Summarize(context.Background(), tl, "nope")
	if err != nil {
		t.Fatal(err)
	}
	if sum.Buys.Fills != 0 || sum.Sells.Fills != 0 {
		t.Errorf("empty session must summarize to zero: %+v", sum)
	}
	if !sum.Buys.VWAP().IsZero() {
		t.Error("VWAP of empty side must be zero")
	}
}
