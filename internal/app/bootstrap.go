// Package app wires config, venue, strategy and engine into a runnable maker.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evankclarke/Crypto-market-maker/internal/domain"
	"github.com/evankclarke/Crypto-market-maker/internal/engine"
	"github.com/evankclarke/Crypto-market-maker/internal/gateway"
	"github.com/evankclarke/Crypto-market-maker/internal/infra"
	"github.com/evankclarke/Crypto-market-maker/internal/infra/binance"
	"github.com/evankclarke/Crypto-market-maker/internal/storage"
	"github.com/evankclarke/Crypto-market-maker/internal/strategy"
)

// Paper mode starts every session from the same synthetic book and balances
// so runs are comparable.
const (
	paperMid       = 100.25
	paperBaseFree  = 5.0
	paperQuoteFree = 500.0
)

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config   *infra.Config
	Session  domain.Session
	Loop     *engine.Loop
	TradeLog *storage.TradeLog

	dataDir string
	client  *binance.Client
	stream  *binance.BookStream
	unlock  func()
}

// NewBootstrap creates an empty Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads config, sets up logging and claims the workspace.
func (b *Bootstrap) Initialize() error {
	cfg, err := infra.LoadConfig(infra.ResolveConfigPath())
	if err != nil {
		return err
	}
	b.Config = cfg

	slog.SetDefault(infra.NewLogger(cfg))
	slog.Info("🚀 Bootstrapping market maker", "mode", cfg.Trading.Mode)

	workDir := infra.GetWorkspaceDir()
	b.dataDir = filepath.Join(workDir, "data", cfg.Trading.Mode)
	if err := infra.EnsureDir(b.dataDir); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	// One maker per workspace: a second process quoting the same account
	// would violate the one-order-per-side invariant.
	unlock, err := infra.CreateLockFile(workDir)
	if err != nil {
		return err
	}
	b.unlock = unlock
	return nil
}

// Assemble builds the full gateway-strategy-engine chain for one session.
func (b *Bootstrap) Assemble(ctx context.Context, params SessionParams) error {
	cfg := b.Config
	session := domain.NewSession(uuid.NewString(), params.Base, params.Quote, time.Now(), params.Duration)
	b.Session = session

	var gw gateway.Gateway
	var live gateway.TopSource
	switch cfg.Trading.Mode {
	case "real":
		client := binance.NewClient(cfg)
		stream := binance.NewBookStream(cfg.Venue.WSURL, session.Symbol())
		stream.Start(ctx)
		b.client = client
		b.stream = stream
		gw, live = client, stream
	default:
		gw = gateway.NewPaper(params.Base, params.Quote, paperMid, paperBaseFree, paperQuoteFree, time.Now().UnixNano())
	}

	snaps := gateway.NewSnapshotProvider(gw, params.Base, params.Quote, live)

	info, err := gw.SymbolInfo(ctx, session.Symbol())
	if err != nil {
		return fmt.Errorf("symbol info: %w", err)
	}
	totalValue, bestBid, err := snaps.StartingState(ctx)
	if err != nil {
		return fmt.Errorf("starting state: %w", err)
	}
	quoter := strategy.NewQuoter(info, totalValue, bestBid)
	slog.Info("📐 quoter sized",
		"symbol", session.Symbol(),
		"totalValue", totalValue,
		"maxOrderSize", quoter.MaxOrderSize,
		"minNotional", info.MinNotional)

	csvName := fmt.Sprintf("fills-%s-%s.csv", strings.ToLower(session.Symbol()), session.Start.UTC().Format("20060102-150405"))
	tradeLog, err := storage.NewTradeLog(
		filepath.Join(b.dataDir, "fills.db"),
		filepath.Join(b.dataDir, csvName),
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("trade log: %w", err)
	}
	b.TradeLog = tradeLog

	lifecycle := engine.NewLifecycle(gw, snaps, quoter, session, engine.RealClock(), engine.Config{
		IdleWait:   time.Duration(cfg.Trading.IdleWaitSec) * time.Second,
		StaleAfter: time.Duration(cfg.Trading.OrderTimeoutSec) * time.Second,
	})
	b.Loop = engine.NewLoop(gw, lifecycle, tradeLog, session, engine.RealClock(), cfg.Trading.HarvestEvery)

	slog.Info("✅ session assembled",
		"session", session.ID,
		"symbol", session.Symbol(),
		"until", session.End.Format(time.RFC3339))
	return nil
}

// Shutdown releases everything claimed during startup.
func (b *Bootstrap) Shutdown() {
	if b.stream != nil {
		b.stream.Stop()
	}
	if b.client != nil {
		b.client.Close()
	}
	if b.TradeLog != nil {
		if err := b.TradeLog.Close(); err != nil {
			slog.Warn("trade log close failed", "err", err)
		}
	}
	if b.unlock != nil {
		b.unlock()
	}
}
