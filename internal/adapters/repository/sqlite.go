package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Pure-Go SQLite driver, registered as "sqlite".
	_ "github.com/glebarez/go-sqlite"

	"github.com/frostline/restcurve/internal/domain/model"
)

const dateLayout = "2006-01-02"

const schema = `
CREATE TABLE IF NOT EXISTS game_records (
	record_id           TEXT PRIMARY KEY,
	entity_id           TEXT NOT NULL,
	season              TEXT,
	game_date           TEXT,
	location            TEXT,
	playoff             INTEGER NOT NULL DEFAULT 0,
	goals_for           REAL,
	goals_against       REAL,
	xgoals_for          REAL,
	xgoals_against      REAL,
	shots_faced         REAL,
	goals_allowed       REAL,
	xgoals_faced        REAL,
	low_danger_shots    REAL,
	low_danger_goals    REAL,
	medium_danger_shots REAL,
	medium_danger_goals REAL,
	high_danger_shots   REAL,
	high_danger_goals   REAL,
	cumulative_games    REAL
);
CREATE INDEX IF NOT EXISTS idx_game_records_entity ON game_records (entity_id, game_date);
`

const insertSQL = `
INSERT OR REPLACE INTO game_records (
	record_id, entity_id, season, game_date, location, playoff,
	goals_for, goals_against, xgoals_for, xgoals_against,
	shots_faced, goals_allowed, xgoals_faced,
	low_danger_shots, low_danger_goals,
	medium_danger_shots, medium_danger_goals,
	high_danger_shots, high_danger_goals,
	cumulative_games
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectColumns = `
	record_id, entity_id, season, game_date, location, playoff,
	goals_for, goals_against, xgoals_for, xgoals_against,
	shots_faced, goals_allowed, xgoals_faced,
	low_danger_shots, low_danger_goals,
	medium_danger_shots, medium_danger_goals,
	high_danger_shots, high_danger_goals,
	cumulative_games`

// SQLiteStore persists the game log in a local SQLite database so ingested
// datasets survive restarts.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and
// ensures the schema exists.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Add inserts records in a single transaction.
func (s *SQLiteStore) Add(ctx context.Context, records ...model.GameRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		var date any
		if r.HasDate() {
			date = r.GameDate.UTC().Format(dateLayout)
		}
		if _, err := stmt.ExecContext(ctx,
			r.RecordID, r.EntityID, r.Season, date, string(r.Location), boolInt(r.Playoff),
			nullable(r.GoalsFor), nullable(r.GoalsAgainst), nullable(r.XGoalsFor), nullable(r.XGoalsAgainst),
			nullable(r.ShotsFaced), nullable(r.GoalsAllowed), nullable(r.XGoalsFaced),
			nullable(r.LowDangerShots), nullable(r.LowDangerGoals),
			nullable(r.MediumDangerShots), nullable(r.MediumDangerGoals),
			nullable(r.HighDangerShots), nullable(r.HighDangerGoals),
			nullable(r.CumulativeGames),
		); err != nil {
			return fmt.Errorf("insert record %s: %w", r.RecordID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

// All returns every stored record ordered by entity then date.
func (s *SQLiteStore) All(ctx context.Context) ([]model.GameRecord, error) {
	return s.query(ctx,
		"SELECT "+selectColumns+" FROM game_records ORDER BY entity_id, game_date, record_id")
}

// Entity returns one entity's records ordered by date.
func (s *SQLiteStore) Entity(ctx context.Context, entityID string) ([]model.GameRecord, error) {
	records, err := s.query(ctx,
		"SELECT "+selectColumns+" FROM game_records WHERE entity_id = ? ORDER BY game_date, record_id",
		entityID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEntityNotFound
	}
	return records, nil
}

// Entities lists all entity ids, sorted ascending.
func (s *SQLiteStore) Entities(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT entity_id FROM game_records ORDER BY entity_id")
	if err != nil {
		return nil, fmt.Errorf("query entities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan entity id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM game_records").Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]model.GameRecord, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.GameRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRecord(rows *sql.Rows) (model.GameRecord, error) {
	var (
		r        model.GameRecord
		date     sql.NullString
		location sql.NullString
		playoff  int
		floats   [14]sql.NullFloat64
	)
	if err := rows.Scan(
		&r.RecordID, &r.EntityID, &r.Season, &date, &location, &playoff,
		&floats[0], &floats[1], &floats[2], &floats[3],
		&floats[4], &floats[5], &floats[6],
		&floats[7], &floats[8], &floats[9], &floats[10], &floats[11], &floats[12],
		&floats[13],
	); err != nil {
		return model.GameRecord{}, fmt.Errorf("scan record: %w", err)
	}

	if date.Valid && date.String != "" {
		t, err := time.Parse(dateLayout, date.String)
		if err == nil {
			r.GameDate = t
		}
	}
	r.Location = model.Location(location.String)
	r.Playoff = playoff != 0

	targets := []**float64{
		&r.GoalsFor, &r.GoalsAgainst, &r.XGoalsFor, &r.XGoalsAgainst,
		&r.ShotsFaced, &r.GoalsAllowed, &r.XGoalsFaced,
		&r.LowDangerShots, &r.LowDangerGoals,
		&r.MediumDangerShots, &r.MediumDangerGoals,
		&r.HighDangerShots, &r.HighDangerGoals,
		&r.CumulativeGames,
	}
	for i, t := range targets {
		if floats[i].Valid {
			v := floats[i].Float64
			*t = &v
		}
	}
	return r, nil
}

func nullable(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
