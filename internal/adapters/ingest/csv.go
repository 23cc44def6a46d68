// Package ingest reads MoneyPuck-style CSV exports into game records.
//
// Team-label canonicalization is assumed to have been applied upstream;
// ingest only trims whitespace. Rows with an unparsable date are kept with a
// zero date and surfaced through the skip counters, so the rest-interval
// stage can exclude them per entity instead of ingest silently dropping the
// whole game.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frostline/restcurve/internal/domain/model"
	"github.com/frostline/restcurve/pkg/logger"
	"github.com/frostline/restcurve/pkg/metrics"
)

// Date layouts seen in the source exports, most common first.
var dateLayouts = []string{"20060102", "2006-01-02", time.RFC3339}

// Result is the outcome of reading one CSV stream.
type Result struct {
	Records []model.GameRecord

	// UnparsableDates counts rows whose date column could not be parsed.
	// Those records are retained with a zero date.
	UnparsableDates int

	// Duplicates counts rows suppressed because an identical
	// (entity, date, location) row was already seen in this stream.
	Duplicates int
}

// ReadTeamGames parses a team-level game log. Required columns: playerTeam
// and gameDate; their absence fails the whole batch. Rows whose position or
// situation columns exist but are not team-level/all-strength are filtered
// out, matching the upstream export's intent.
func ReadTeamGames(ctx context.Context, r io.Reader) (Result, error) {
	rows, header, err := readAll(r)
	if err != nil {
		return Result{}, err
	}
	if err := requireColumns(header, "playerTeam", "gameDate"); err != nil {
		return Result{}, err
	}

	log := logger.Named("ingest")
	var res Result
	seen := newSeenSet()

	for _, row := range rows {
		if v, ok := field(header, row, "position"); ok && v != "Team Level" {
			continue
		}
		if v, ok := field(header, row, "situation"); ok && v != "all" {
			continue
		}

		entity, _ := field(header, row, "playerTeam")
		if entity == "" {
			continue
		}

		rec := model.GameRecord{
			RecordID: uuid.NewString(),
			EntityID: entity,
		}
		if v, ok := field(header, row, "season"); ok {
			rec.Season = v
		}
		if v, ok := field(header, row, "home_or_away"); ok {
			rec.Location = model.Location(strings.ToUpper(v))
		}
		if v, ok := field(header, row, "playoffGame"); ok {
			rec.Playoff = v == "1"
		}

		rawDate, _ := field(header, row, "gameDate")
		date, ok := parseDate(rawDate)
		if !ok {
			res.UnparsableDates++
			log.Debug(ctx, "unparsable game date",
				logger.String("entity", entity),
				logger.String("game_date", rawDate),
			)
		} else {
			rec.GameDate = date
		}

		rec.GoalsFor = floatField(header, row, "goalsFor")
		rec.GoalsAgainst = floatField(header, row, "goalsAgainst")
		rec.XGoalsFor = floatField(header, row, "xGoalsFor")
		rec.XGoalsAgainst = floatField(header, row, "xGoalsAgainst")

		if seen.seenAndRecord(entity, rawDate, string(rec.Location)) {
			res.Duplicates++
			continue
		}
		res.Records = append(res.Records, rec)
	}

	recordCounters(res)
	return res, nil
}

// ReadGoalieGames parses a goalie log. Required columns: name and season.
// The gameDate column is optional: season-aggregate exports carry none, and
// their records simply never enter rest-interval computation.
func ReadGoalieGames(ctx context.Context, r io.Reader) (Result, error) {
	rows, header, err := readAll(r)
	if err != nil {
		return Result{}, err
	}
	if err := requireColumns(header, "name", "season"); err != nil {
		return Result{}, err
	}

	log := logger.Named("ingest")
	var res Result
	seen := newSeenSet()

	for _, row := range rows {
		if v, ok := field(header, row, "situation"); ok && v != "all" {
			continue
		}

		entity, _ := field(header, row, "name")
		if entity == "" {
			continue
		}

		rec := model.GameRecord{
			RecordID: uuid.NewString(),
			EntityID: entity,
		}
		rec.Season, _ = field(header, row, "season")

		rawDate, hasDate := field(header, row, "gameDate")
		if hasDate && rawDate != "" {
			if date, ok := parseDate(rawDate); ok {
				rec.GameDate = date
			} else {
				res.UnparsableDates++
				log.Debug(ctx, "unparsable game date",
					logger.String("entity", entity),
					logger.String("game_date", rawDate),
				)
			}
		}

		rec.GoalsAllowed = floatField(header, row, "goals")
		rec.ShotsFaced = floatField(header, row, "xOnGoal")
		rec.XGoalsFaced = floatField(header, row, "xGoals")
		rec.CumulativeGames = floatField(header, row, "games_played")
		rec.LowDangerShots = floatField(header, row, "lowDangerShots")
		rec.LowDangerGoals = floatField(header, row, "lowDangerGoals")
		rec.MediumDangerShots = floatField(header, row, "mediumDangerShots")
		rec.MediumDangerGoals = floatField(header, row, "mediumDangerGoals")
		rec.HighDangerShots = floatField(header, row, "highDangerShots")
		rec.HighDangerGoals = floatField(header, row, "highDangerGoals")

		if seen.seenAndRecord(entity, rec.Season, rawDate) {
			res.Duplicates++
			continue
		}
		res.Records = append(res.Records, rec)
	}

	recordCounters(res)
	return res, nil
}

// LoadTeamFile reads a team game log from disk.
func LoadTeamFile(ctx context.Context, path string) (Result, error) {
	return loadFile(ctx, path, ReadTeamGames)
}

// LoadGoalieFile reads a goalie log from disk.
func LoadGoalieFile(ctx context.Context, path string) (Result, error) {
	return loadFile(ctx, path, ReadGoalieGames)
}

func loadFile(ctx context.Context, path string, read func(context.Context, io.Reader) (Result, error)) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrOpenDataset, err)
	}
	defer func() { _ = f.Close() }()
	return read(ctx, f)
}

func readAll(r io.Reader) ([][]string, map[string]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // upstream exports occasionally carry ragged rows

	all, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrReadCSV, err)
	}
	if len(all) == 0 {
		return nil, nil, ErrEmptyDataset
	}

	header := make(map[string]int, len(all[0]))
	for i, name := range all[0] {
		header[strings.TrimSpace(name)] = i
	}
	return all[1:], header, nil
}

func requireColumns(header map[string]int, names ...string) error {
	for _, n := range names {
		if _, ok := header[n]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingColumn, n)
		}
	}
	return nil
}

func field(header map[string]int, row []string, name string) (string, bool) {
	i, ok := header[name]
	if !ok || i >= len(row) {
		return "", ok
	}
	return strings.TrimSpace(row[i]), true
}

func floatField(header map[string]int, row []string, name string) *float64 {
	v, _ := field(header, row, name)
	if v == "" || strings.EqualFold(v, "na") || strings.EqualFold(v, "nan") {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func recordCounters(res Result) {
	metrics.RecordIngested(len(res.Records))
	metrics.RecordSkipped("unparsable_date", res.UnparsableDates)
	metrics.RecordSkipped("duplicate", res.Duplicates)
}
