// Package workload partitions one entity's season into ordinal fatigue
// segments based on cumulative games played, the season-long analogue of
// rest bucketing.
package workload

import (
	"sort"

	"github.com/frostline/restcurve/internal/domain/model"
)

// Label identifies a season segment.
type Label string

// Segment labels, early to late.
const (
	LabelQ1    Label = "Q1"
	LabelQ2    Label = "Q2"
	LabelQ3    Label = "Q3"
	LabelQ4    Label = "Q4"
	LabelEarly Label = "early-season"
	LabelLate  Label = "late-season"
	LabelAll   Label = "all-games"
)

// Explicit cutovers for how finely a season can be segmented. Quartiles need
// at least three games per segment to say anything; below that the season
// falls back to halves and then to a single segment. A season with fewer
// than 2 records always collapses to all-games rather than erroring.
const (
	QuartileMinGames = 12
	HalfMinGames     = 6
)

// Assignment tags one input record (by index) with its segment.
type Assignment struct {
	Index int
	Label Label
}

// Summary is the per-segment mean of one metric, in segment order.
type Summary struct {
	Label Label `json:"segment_label"`

	// SampleCount is the number of records in the segment; MetricCount the
	// number with a defined value.
	SampleCount int      `json:"sample_count"`
	MetricCount int      `json:"metric_count"`
	Mean        *float64 `json:"metric_mean"`
}

// Segments picks the segment layout for a season of n games using the
// explicit cutovers above.
func Segments(n int) []Label {
	switch {
	case n >= QuartileMinGames:
		return []Label{LabelQ1, LabelQ2, LabelQ3, LabelQ4}
	case n >= HalfMinGames:
		return []Label{LabelEarly, LabelLate}
	default:
		return []Label{LabelAll}
	}
}

// Assign orders one entity's season records by their cumulative games-played
// counter (stable on ties, records without a counter sort first in input
// order) and splits them into equal-frequency segments. The input is never
// mutated.
func Assign(records []model.GameRecord) []Assignment {
	n := len(records)
	if n == 0 {
		return nil
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ga, gb := records[idx[a]].CumulativeGames, records[idx[b]].CumulativeGames
		if ga == nil || gb == nil {
			return gb != nil
		}
		return *ga < *gb
	})

	labels := Segments(n)
	q := len(labels)
	out := make([]Assignment, n)
	for pos, i := range idx {
		// Equal-frequency split: segment k covers positions
		// [k*n/q, (k+1)*n/q), so segment sizes differ by at most one.
		seg := pos * q / n
		out[pos] = Assignment{Index: i, Label: labels[seg]}
	}
	return out
}

// Summarize computes the per-segment mean of one metric. values[i] is the
// metric value of records[i] as passed to Assign, nil when undefined. Every
// segment of the chosen layout is emitted, in order, even when empty.
func Summarize(assignments []Assignment, values []*float64) []Summary {
	labels := Segments(len(assignments))

	acc := make(map[Label]*Summary, len(labels))
	for _, l := range labels {
		acc[l] = &Summary{Label: l}
	}

	for _, a := range assignments {
		row, ok := acc[a.Label]
		if !ok {
			continue
		}
		row.SampleCount++
		if a.Index < len(values) && values[a.Index] != nil {
			row.MetricCount++
			if row.Mean == nil {
				row.Mean = model.Float(0)
			}
			*row.Mean += *values[a.Index]
		}
	}

	out := make([]Summary, 0, len(labels))
	for _, l := range labels {
		row := *acc[l]
		if row.MetricCount > 0 {
			m := *row.Mean / float64(row.MetricCount)
			row.Mean = &m
		}
		out = append(out, row)
	}
	return out
}
