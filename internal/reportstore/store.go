// Package reportstore persists finished-battle reports to SQLite so the
// CLI can aggregate results across runs.
package reportstore

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Garsondee/Line-of-Battle/internal/battle"
)

//go:embed schema.sql
var schemaSQL string

// Store is a SQLite-backed archive of battle reports.
type Store struct {
	db *sql.DB
}

// Report is one stored battle summary.
type Report struct {
	ID        int64
	Seed      int64
	Result    battle.Result
	CreatedAt time.Time
}

// Open opens (or creates) the database at path and applies the schema.
// An empty path opens an in-memory database.
func Open(path string) (*Store, error) {
	dsn := "file::memory:?cache=shared&_pragma=foreign_keys(1)"
	if path != "" {
		dsn = fmt.Sprintf(
			"file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)",
			path,
		)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveReport stores a finished battle's result and full event log, and
// returns the assigned battle ID.
func (s *Store) SaveReport(ctx context.Context, seed int64, res battle.Result, events []battle.Event) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	const insertBattle = `
		INSERT INTO battles (seed, outcome, decisive, description, end_tick,
			red_strength, red_raw, red_casualties, red_routing,
			blue_strength, blue_raw, blue_casualties, blue_routing, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := tx.ExecContext(ctx, insertBattle,
		seed,
		res.Outcome.String(),
		res.Decisive,
		res.Description,
		res.EndTick,
		res.RedStrength,
		res.RedRaw,
		res.RedCasualties,
		res.RedRouting,
		res.BlueStrength,
		res.BlueRaw,
		res.BlueCasualties,
		res.BlueRouting,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert battle: %w", err)
	}
	battleID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("battle id: %w", err)
	}

	const insertEvent = `
		INSERT INTO events (battle_id, tick, unit, side, category, key, value, num_val)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	stmt, err := tx.PrepareContext(ctx, insertEvent)
	if err != nil {
		return 0, fmt.Errorf("prepare event insert: %w", err)
	}
	defer stmt.Close()
	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, battleID,
			e.Tick, e.Unit, e.Side, e.Category, e.Key, e.Value, e.NumVal); err != nil {
			return 0, fmt.Errorf("insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return battleID, nil
}

// ListReports returns stored battle summaries, newest first.
func (s *Store) ListReports(ctx context.Context) ([]Report, error) {
	const query = `
		SELECT id, seed, outcome, decisive, description, end_tick,
			red_strength, red_raw, red_casualties, red_routing,
			blue_strength, blue_raw, blue_casualties, blue_routing, created_at
		FROM battles
		ORDER BY id DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list battles: %w", err)
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		var r Report
		var outcome, createdAt string
		if err := rows.Scan(&r.ID, &r.Seed, &outcome, &r.Result.Decisive, &r.Result.Description, &r.Result.EndTick,
			&r.Result.RedStrength, &r.Result.RedRaw, &r.Result.RedCasualties, &r.Result.RedRouting,
			&r.Result.BlueStrength, &r.Result.BlueRaw, &r.Result.BlueCasualties, &r.Result.BlueRouting,
			&createdAt); err != nil {
			return nil, fmt.Errorf("scan battle: %w", err)
		}
		r.Result.Outcome = parseOutcome(outcome)
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			r.CreatedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadEvents returns the full event log of one stored battle in order.
func (s *Store) LoadEvents(ctx context.Context, battleID int64) ([]battle.Event, error) {
	const query = `
		SELECT tick, unit, side, category, key, value, num_val
		FROM events
		WHERE battle_id = ?
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query, battleID)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	defer rows.Close()

	var out []battle.Event
	for rows.Next() {
		var e battle.Event
		if err := rows.Scan(&e.Tick, &e.Unit, &e.Side, &e.Category, &e.Key, &e.Value, &e.NumVal); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func parseOutcome(s string) battle.Outcome {
	switch s {
	case "red_victory":
		return battle.OutcomeRedVictory
	case "blue_victory":
		return battle.OutcomeBlueVictory
	case "draw":
		return battle.OutcomeDraw
	default:
		return battle.OutcomeUndecided
	}
}
