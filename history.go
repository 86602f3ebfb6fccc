// FILE: history.go
// Package main – Decision history in SQLite.
//
// Every simulate call (CLI or API) appends one row so the dashboard can show
// how recommendations moved with weather and fresh data. The pure-Go
// modernc driver keeps the binary cgo-free.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const historySchema = `CREATE TABLE IF NOT EXISTS decisions (
	id                 TEXT PRIMARY KEY,
	created_at         TEXT NOT NULL,
	model_run_id       TEXT NOT NULL,
	condition          TEXT NOT NULL,
	weather_modifier   REAL NOT NULL,
	units_no_promo     REAL NOT NULL,
	units_promo        REAL NOT NULL,
	profit_no_promo    REAL NOT NULL,
	profit_promo       REAL NOT NULL,
	recommendation     TEXT NOT NULL
)`

// historyTimeFormat is fixed-width so text ordering matches time ordering.
const historyTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// DecisionRecord is one stored decision.
type DecisionRecord struct {
	ID         string         `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	ModelRunID string         `json:"model_run_id"`
	Condition  string         `json:"condition"`
	Result     DecisionResult `json:"result"`
}

// History wraps the decisions table.
type History struct {
	db *sql.DB
}

// OpenHistory opens (and creates if needed) the database at path.
func OpenHistory(path string) (*History, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history: %w", err)
	}
	return &History{db: db}, nil
}

func (h *History) Close() error { return h.db.Close() }

// Record stores res and returns the saved record with its new id.
func (h *History) Record(ctx context.Context, runID, condition string, res DecisionResult) (DecisionRecord, error) {
	rec := DecisionRecord{
		ID:         uuid.New().String(),
		CreatedAt:  time.Now().UTC(),
		ModelRunID: runID,
		Condition:  condition,
		Result:     res,
	}
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO decisions (id, created_at, model_run_id, condition, weather_modifier,
			units_no_promo, units_promo, profit_no_promo, profit_promo, recommendation)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.Format(historyTimeFormat), runID, condition, res.WeatherModifier,
		res.UnitsNoPromo, res.UnitsPromo, res.ProfitNoPromo, res.ProfitPromo, string(res.Recommendation))
	if err != nil {
		return DecisionRecord{}, fmt.Errorf("record decision: %w", err)
	}
	return rec, nil
}

// Recent returns up to limit records, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]DecisionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, created_at, model_run_id, condition, weather_modifier,
			units_no_promo, units_promo, profit_no_promo, profit_promo, recommendation
		 FROM decisions ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DecisionRecord
	for rows.Next() {
		var rec DecisionRecord
		var created, reco string
		if err := rows.Scan(&rec.ID, &created, &rec.ModelRunID, &rec.Condition, &rec.Result.WeatherModifier,
			&rec.Result.UnitsNoPromo, &rec.Result.UnitsPromo, &rec.Result.ProfitNoPromo, &rec.Result.ProfitPromo, &reco); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(historyTimeFormat, created)
		rec.Result.Recommendation = Recommendation(reco)
		out = append(out, rec)
	}
	return out, rows.Err()
}
