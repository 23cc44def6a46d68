// Package model contains domain models passed between layers.
package model

import "time"

// Location indicates where an entity played a game.
type Location string

// Location values as they appear in the upstream dataset.
const (
	LocationHome    Location = "HOME"
	LocationAway    Location = "AWAY"
	LocationUnknown Location = ""
)

// GameRecord is one row of the game log: a single game for a single entity
// (a team or a goalie). Raw counting stats are pointers so that an absent
// value stays distinguishable from zero.
type GameRecord struct {
	RecordID string    // unique id, assigned at ingest when the source has none
	EntityID string    // team or goalie identifier, stable grouping key
	Season   string    // season label, e.g. "2023"
	GameDate time.Time // zero when the source date was missing or unparsable
	Location Location  // optional home/away indicator
	Playoff  bool      // playoff game flag

	// Team-level counting stats.
	GoalsFor      *float64
	GoalsAgainst  *float64
	XGoalsFor     *float64
	XGoalsAgainst *float64

	// Goalie counting stats.
	ShotsFaced   *float64
	GoalsAllowed *float64
	XGoalsFaced  *float64 // expected goals against the goalie

	// Danger-tier shot quality splits.
	LowDangerShots    *float64
	LowDangerGoals    *float64
	MediumDangerShots *float64
	MediumDangerGoals *float64
	HighDangerShots   *float64
	HighDangerGoals   *float64

	// CumulativeGames is the entity's games-played counter within the
	// season, used by the workload segmenter.
	CumulativeGames *float64
}

// HasDate reports whether the record carries a usable game date.
func (r GameRecord) HasDate() bool {
	return !r.GameDate.IsZero()
}

// DerivedMetrics holds per-record scalar metrics computed from raw counting
// stats. Fields are nil when the metric is undefined for the record, either
// because an optional input was missing or because a ratio denominator was
// not positive. Raw stats are never mutated.
type DerivedMetrics struct {
	Win      *bool    // goals for > goals against; ties are losses
	GoalDiff *float64 // goals for minus goals against
	XGShare  *float64 // xGF / (xGF + xGA), fraction in [0,1]

	SavePct *float64 // 1 - goals allowed / shots faced
	GSAx    *float64 // expected goals faced minus goals allowed

	LowDangerSavePct    *float64
	MediumDangerSavePct *float64
	HighDangerSavePct   *float64
}

// Float returns a pointer to v. Convenience for building records.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
