package rest

import (
	"sort"
	"time"

	"github.com/frostline/restcurve/internal/domain/model"
)

const hoursPerDay = 24

// Interval is the rest information attached to one game record after the
// entity's games have been ordered by date.
type Interval struct {
	// Index is the position of the record in the caller's input slice, so
	// results can be joined back without copying records.
	Index int

	// DaysRest is the number of calendar days since the entity's previous
	// game. It is nil for the entity's first chronological game: there is
	// no prior game, and coercing to 0 would fabricate a back-to-back.
	DaysRest *int
}

// Result carries the per-entity intervals along with the number of records
// that were excluded because they had no usable date.
type Result struct {
	Intervals []Interval
	Skipped   int
}

// Intervals orders one entity's records by game date and computes the gap in
// days to each immediately preceding game. The sort is stable: records
// sharing a calendar date keep their input order, since some sources carry
// multiple dated entries that are not truly simultaneous. Records without a
// usable date are excluded from the ordering entirely and reported in
// Result.Skipped rather than being assigned an arbitrary position.
//
// The input slice is not mutated; a new Result is returned on every call.
func Intervals(records []model.GameRecord) Result {
	idx := make([]int, 0, len(records))
	skipped := 0
	for i, r := range records {
		if !r.HasDate() {
			skipped++
			continue
		}
		idx = append(idx, i)
	}

	sort.SliceStable(idx, func(a, b int) bool {
		return records[idx[a]].GameDate.Before(records[idx[b]].GameDate)
	})

	out := make([]Interval, len(idx))
	for pos, i := range idx {
		iv := Interval{Index: i}
		if pos > 0 {
			prev := records[idx[pos-1]].GameDate
			d := daysBetween(prev, records[i].GameDate)
			iv.DaysRest = &d
		}
		out[pos] = iv
	}

	return Result{Intervals: out, Skipped: skipped}
}

// GroupByEntity splits a mixed record slice into per-entity index groups,
// preserving input order within each group. Entity keys are returned sorted
// for deterministic iteration.
func GroupByEntity(records []model.GameRecord) (map[string][]int, []string) {
	groups := make(map[string][]int)
	for i, r := range records {
		groups[r.EntityID] = append(groups[r.EntityID], i)
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return groups, keys
}

// daysBetween returns the whole calendar days from a to b. Dates are
// truncated to UTC midnight first so that timezone or timestamp noise in the
// source cannot shift a gap across a day boundary.
func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / hoursPerDay)
}
