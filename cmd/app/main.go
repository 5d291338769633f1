package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/evankclarke/Crypto-market-maker/internal/app"
	"github.com/evankclarke/Crypto-market-maker/internal/infra"
)

func main() {
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Shutdown()

	infra.PrintBanner(bootstrap.Config)

	params, err := app.ReadSessionParams(os.Stdin, os.Stdout)
	if err != nil {
		slog.Error("❌ Invalid session parameters", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.Assemble(ctx, params); err != nil {
		slog.Error("❌ Session assembly failed", slog.Any("error", err))
		os.Exit(1)
	}

	slog.InfoContext(ctx, "✨ Maker running. Press Ctrl+C to stop early.")

	if err := bootstrap.Loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("❌ Session ended with error", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("👋 Session complete")
}
