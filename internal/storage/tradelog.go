// Package storage persists executed fills in SQLite and exports them as CSV.
package storage

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/evankclarke/Crypto-market-maker/internal/domain"
	"github.com/evankclarke/Crypto-market-maker/pkg/quant"
)

var csvHeader = []string{"time", "symbol", "side", "executedQty", "price"}

// TradeLog records executed fills for one session. Fills are keyed by venue
// order id, so harvesting the same history window twice never duplicates a
// row. Flush exports the session's fills to CSV, oldest first.
type TradeLog struct {
	db        *sql.DB
	sessionID string
	csvPath   string

	mu   sync.Mutex
	seen map[int64]struct{}
}

// NewTradeLog opens (or creates) the fills database with WAL mode enabled.
func NewTradeLog(dbPath, csvPath, sessionID string) (*TradeLog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=-2000;", // 2MB cache
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS fills (
			session_id   TEXT NOT NULL,
			order_id     INTEGER NOT NULL,
			ts           INTEGER NOT NULL,
			symbol       TEXT NOT NULL,
			side         TEXT NOT NULL,
			executed_qty REAL NOT NULL,
			price        REAL NOT NULL,
			PRIMARY KEY (session_id, order_id)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create fills table: %w", err)
	}

	return &TradeLog{
		db:        db,
		sessionID: sessionID,
		csvPath:   csvPath,
		seen:      make(map[int64]struct{}),
	}, nil
}

// Record stores one executed fill. Re-recording an order id is a no-op.
func (t *TradeLog) Record(orderID int64, fill domain.FilledOrder) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seen[orderID]; ok {
		return nil
	}

	_, err := t.db.Exec(
		"INSERT INTO fills (session_id, order_id, ts, symbol, side, executed_qty, price) VALUES (?, ?, ?, ?, ?, ?, ?) ON CONFLICT DO NOTHING",
		t.sessionID, orderID, fill.Time.UnixMilli(), fill.Symbol, string(fill.Side), fill.ExecutedQty, fill.Price,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fill: %w", err)
	}

	t.seen[orderID] = struct{}{}
	return nil
}

// Flush writes the session's fills to the CSV path, oldest first. Safe to
// call more than once; each call rewrites the file from the database.
func (t *TradeLog) Flush() error {
	fills, err := t.LoadFills(context.Background(), t.sessionID)
	if err != nil {
		return err
	}

	f, err := os.Create(t.csvPath)
	if err != nil {
		return fmt.Errorf("failed to create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, fill := range fills {
		row := []string{
			fill.Time.UTC().Format(time.RFC3339),
			fill.Symbol,
			string(fill.Side),
			quant.FormatAmount(fill.ExecutedQty, 8),
			quant.FormatAmount(fill.Price, 8),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// LoadFills returns a session's fills ordered by execution time.
func (t *TradeLog) LoadFills(ctx context.Context, sessionID string) ([]domain.FilledOrder, error) {
	rows, err := t.db.QueryContext(ctx,
		"SELECT ts, symbol, side, executed_qty, price FROM fills WHERE session_id = ? ORDER BY ts ASC, order_id ASC",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query fills: %w", err)
	}
	defer rows.Close()

	var fills []domain.FilledOrder
	for rows.Next() {
		var ts int64
		var side string
		var fill domain.FilledOrder
		if err := rows.Scan(&ts, &fill.Symbol, &side, &fill.ExecutedQty, &fill.Price); err != nil {
			return nil, fmt.Errorf("failed to scan fill: %w", err)
		}
		fill.Time = time.UnixMilli(ts)
		fill.Side = domain.Side(side)
		fills = append(fills, fill)
	}
	return fills, rows.Err()
}

// Sessions lists the distinct session ids present in the database.
func (t *TradeLog) Sessions(ctx context.Context) ([]string, error) {
	rows, err := t.db.QueryContext(ctx, "SELECT DISTINCT session_id FROM fills ORDER BY session_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the underlying database.
func (t *TradeLog) Close() error {
	return t.db.Close()
}
