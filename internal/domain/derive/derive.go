// Package derive computes per-record outcome metrics from raw counting stats.
//
// Every ratio goes through a denominator guard: a non-positive denominator
// yields a nil metric, never zero, infinity or NaN. Missing optional inputs
// degrade the specific metric to nil; missing required inputs fail the single
// record with a MissingFieldError. All functions are pure and never mutate
// their input.
package derive

import (
	"github.com/frostline/restcurve/internal/domain/model"
)

// Metric names a derived metric that can be aggregated and ranked.
type Metric string

// Canonical metric names. One formula per metric; historical variants from
// the source data pipelines are intentionally not preserved.
const (
	MetricWin      Metric = "win"
	MetricGoalDiff Metric = "goal_diff"
	MetricXGShare  Metric = "xg_share"
	MetricSavePct  Metric = "save_pct"
	MetricGSAx     Metric = "gsax"
)

// Valid reports whether m is a known metric name.
func (m Metric) Valid() bool {
	switch m {
	case MetricWin, MetricGoalDiff, MetricXGShare, MetricSavePct, MetricGSAx:
		return true
	}
	return false
}

// Value extracts the metric's scalar value from d. Win is mapped to 1/0 so
// that its mean reads as a win rate. Returns nil when the metric is
// undefined for the record.
func (m Metric) Value(d model.DerivedMetrics) *float64 {
	switch m {
	case MetricWin:
		if d.Win == nil {
			return nil
		}
		v := 0.0
		if *d.Win {
			v = 1.0
		}
		return &v
	case MetricGoalDiff:
		return d.GoalDiff
	case MetricXGShare:
		return d.XGShare
	case MetricSavePct:
		return d.SavePct
	case MetricGSAx:
		return d.GSAx
	}
	return nil
}

// TeamMetrics derives win flag, goal differential and expected-goal share
// for a team-level record. GoalsFor and GoalsAgainst are required; the
// expected-goal columns are optional and only degrade XGShare when absent.
func TeamMetrics(r model.GameRecord) (model.DerivedMetrics, error) {
	if r.GoalsFor == nil {
		return model.DerivedMetrics{}, &MissingFieldError{Field: "goals_for", RecordID: r.RecordID}
	}
	if r.GoalsAgainst == nil {
		return model.DerivedMetrics{}, &MissingFieldError{Field: "goals_against", RecordID: r.RecordID}
	}

	d := model.DerivedMetrics{
		Win:      model.Bool(*r.GoalsFor > *r.GoalsAgainst), // ties count as losses
		GoalDiff: model.Float(*r.GoalsFor - *r.GoalsAgainst),
	}

	if r.XGoalsFor != nil && r.XGoalsAgainst != nil {
		d.XGShare = safeRatio(*r.XGoalsFor, *r.XGoalsFor+*r.XGoalsAgainst)
	}

	return d, nil
}

// GoalieMetrics derives save percentage, GSAx and danger-tier save
// percentages for a goalie record. GoalsAllowed is required; shots faced and
// expected goals are optional and degrade only the metrics that need them.
func GoalieMetrics(r model.GameRecord) (model.DerivedMetrics, error) {
	if r.GoalsAllowed == nil {
		return model.DerivedMetrics{}, &MissingFieldError{Field: "goals_allowed", RecordID: r.RecordID}
	}

	var d model.DerivedMetrics

	if r.ShotsFaced != nil {
		if ratio := safeRatio(*r.GoalsAllowed, *r.ShotsFaced); ratio != nil {
			d.SavePct = model.Float(1 - *ratio)
		}
	}
	if r.XGoalsFaced != nil {
		d.GSAx = model.Float(*r.XGoalsFaced - *r.GoalsAllowed)
	}

	d.LowDangerSavePct = tierSavePct(r.LowDangerGoals, r.LowDangerShots)
	d.MediumDangerSavePct = tierSavePct(r.MediumDangerGoals, r.MediumDangerShots)
	d.HighDangerSavePct = tierSavePct(r.HighDangerGoals, r.HighDangerShots)

	return d, nil
}

// tierSavePct computes 1 - goals/shots for one danger tier, nil when either
// input is missing or the tier saw no shots.
func tierSavePct(goals, shots *float64) *float64 {
	if goals == nil || shots == nil {
		return nil
	}
	ratio := safeRatio(*goals, *shots)
	if ratio == nil {
		return nil
	}
	return model.Float(1 - *ratio)
}

// safeRatio divides num by denom, returning nil when denom is not positive.
// A zero-shot, zero-goal game must surface as "no data", not a perfect 1.0
// that would silently skew an aggregate mean.
func safeRatio(num, denom float64) *float64 {
	if denom <= 0 {
		return nil
	}
	return model.Float(num / denom)
}
