package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/paperline/paperline/internal/core"
	"github.com/paperline/paperline/internal/engine"
)

var _ BarStore = (*SQLiteStore)(nil)
var _ RunStore = (*SQLiteStore)(nil)

// SQLiteStore implements BarStore and RunStore on a single SQLite
// database. Prices travel as decimal strings so no precision is lost
// through the round-trip.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS bars (
	symbol    TEXT    NOT NULL,
	timeframe TEXT    NOT NULL,
	ts        INTEGER NOT NULL,
	open      TEXT    NOT NULL,
	high      TEXT    NOT NULL,
	low       TEXT    NOT NULL,
	close     TEXT    NOT NULL,
	volume    INTEGER NOT NULL,
	PRIMARY KEY (symbol, timeframe, ts)
);
CREATE INDEX IF NOT EXISTS idx_bars_ts ON bars (ts);

CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	generator    TEXT    NOT NULL,
	state        TEXT    NOT NULL,
	final_equity TEXT    NOT NULL,
	started_at   INTEGER NOT NULL,
	finished_at  INTEGER NOT NULL,
	payload      BLOB    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs (started_at);
`

// NewSQLiteStore opens (or creates) the database at dbPath and applies
// the schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveBars(ctx context.Context, bars []core.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.WrapError(core.ErrStoreFailed, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO bars
		(symbol, timeframe, ts, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return core.WrapError(core.ErrStoreFailed, err)
	}
	defer stmt.Close()

	for _, bar := range bars {
		if err := bar.Validate(); err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx,
			bar.Symbol, string(bar.Timeframe), bar.Timestamp.UTC().Unix(),
			bar.Open.String(), bar.High.String(), bar.Low.String(), bar.Close.String(),
			bar.Volume)
		if err != nil {
			return core.WrapError(core.ErrStoreFailed, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return core.WrapError(core.ErrStoreFailed, err)
	}
	return nil
}

func (s *SQLiteStore) FetchBars(ctx context.Context, universe []string, start, end time.Time) ([]core.Bar, error) {
	if len(universe) == 0 {
		return nil, core.ErrEmptyUniverse
	}
	query := `SELECT symbol, timeframe, ts, open, high, low, close, volume
		FROM bars WHERE ts >= ? AND ts <= ? AND symbol IN (?` + strings.Repeat(",?", len(universe)-1) + `)
		ORDER BY ts, symbol`
	args := make([]any, 0, len(universe)+2)
	args = append(args, start.UTC().Unix(), end.UTC().Unix())
	for _, sym := range universe {
		args = append(args, sym)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	defer rows.Close()

	var bars []core.Bar
	for rows.Next() {
		var bar core.Bar
		var timeframe string
		var ts int64
		var open, high, low, closePx string
		if err := rows.Scan(&bar.Symbol, &timeframe, &ts, &open, &high, &low, &closePx, &bar.Volume); err != nil {
			return nil, core.WrapError(core.ErrStoreFailed, err)
		}
		bar.Timeframe = core.Timeframe(timeframe)
		bar.Timestamp = time.Unix(ts, 0).UTC()
		if bar.Open, err = decimal.NewFromString(open); err != nil {
			return nil, core.WrapError(core.ErrStoreFailed, err)
		}
		if bar.High, err = decimal.NewFromString(high); err != nil {
			return nil, core.WrapError(core.ErrStoreFailed, err)
		}
		if bar.Low, err = decimal.NewFromString(low); err != nil {
			return nil, core.WrapError(core.ErrStoreFailed, err)
		}
		if bar.Close, err = decimal.NewFromString(closePx); err != nil {
			return nil, core.WrapError(core.ErrStoreFailed, err)
		}
		bars = append(bars, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	return bars, nil
}

func (s *SQLiteStore) Symbols(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT symbol FROM bars ORDER BY symbol`)
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, core.WrapError(core.ErrStoreFailed, err)
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, result *engine.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return core.WrapError(core.ErrStoreFailed, err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO runs
		(run_id, generator, state, final_equity, started_at, finished_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, result.Generator, string(result.State),
		result.FinalEquity.String(),
		result.StartedAt.UTC().UnixMilli(), result.FinishedAt.UTC().UnixMilli(),
		payload)
	if err != nil {
		return core.WrapError(core.ErrStoreFailed, err)
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*engine.Result, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM runs WHERE run_id = ?`, runID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, core.ErrNoData
	}
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	var result engine.Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	return &result, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, generator, state, final_equity, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var summary RunSummary
		var state, equity string
		var startedMs, finishedMs int64
		if err := rows.Scan(&summary.RunID, &summary.Generator, &state, &equity, &startedMs, &finishedMs); err != nil {
			return nil, core.WrapError(core.ErrStoreFailed, err)
		}
		summary.State = engine.State(state)
		if summary.FinalEquity, err = decimal.NewFromString(equity); err != nil {
			return nil, core.WrapError(core.ErrStoreFailed, err)
		}
		summary.StartedAt = time.UnixMilli(startedMs).UTC()
		summary.FinishedAt = time.UnixMilli(finishedMs).UTC()
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}
