// Replay prints trading summaries from a recorded fills database.
//
// Usage:
//
//	replay -db _workspace/data/paper/fills.db [-session <id>]
//
// Without -session it summarizes every session in the database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/evankclarke/Crypto-market-maker/backtest"
	"github.com/evankclarke/Crypto-market-maker/internal/storage"
)

func main() {
	dbPath := flag.String("db", "", "path to the fills database")
	sessionID := flag.String("session", "", "session id to summarize (default: all)")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay -db <fills.db> [-session <id>]")
		os.Exit(2)
	}

	if err := run(*dbPath, *sessionID); err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
}

func run(dbPath, sessionID string) error {
	ctx := context.Background()

	tl, err := storage.NewTradeLog(dbPath, os.DevNull, "")
	if err != nil {
		return err
	}
	defer tl.Close()

	sessions := []string{sessionID}
	if sessionID == "" {
		sessions, err = tl.Sessions(ctx)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("no sessions recorded")
			return nil
		}
	}

	for _, id := range sessions {
		sum, err := backtest.Summarize(ctx, tl, id)
		if err != nil {
			return err
		}
		fmt.Println(sum)
	}
	return nil
}
