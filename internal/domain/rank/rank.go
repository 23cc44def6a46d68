// Package rank scores entities by how sensitive their performance is to
// playing on low rest versus high rest.
package rank

import (
	"sort"

	"github.com/frostline/restcurve/internal/domain/aggregate"
	"github.com/frostline/restcurve/internal/domain/rest"
)

// Score is one entity's rest-sensitivity row. Sensitivity is the signed
// difference HighRestMean - LowRestMean: positive means the entity performs
// better with more rest.
type Score struct {
	EntityID     string  `json:"entity_id"`
	LowRestMean  float64 `json:"low_rest_mean"`
	HighRestMean float64 `json:"high_rest_mean"`
	Sensitivity  float64 `json:"sensitivity"`
}

// Rank computes sensitivity scores from entity-scoped bucket summaries. For
// each entity it takes the observation-weighted mean of the target metric
// across the low-rest bucket set and across the high-rest bucket set. An
// entity with zero observations on either side is omitted entirely;
// defaulting its missing side to 0 would rank it as falsely insensitive.
//
// Output is sorted by sensitivity descending, ties broken by entity id
// ascending.
func Rank(entities []aggregate.EntitySummary, low, high []rest.Bucket) []Score {
	out := make([]Score, 0, len(entities))
	for _, e := range entities {
		lowMean, lowN := weightedMean(e.Summaries, low)
		highMean, highN := weightedMean(e.Summaries, high)
		if lowN == 0 || highN == 0 {
			continue
		}
		out = append(out, Score{
			EntityID:     e.EntityID,
			LowRestMean:  lowMean,
			HighRestMean: highMean,
			Sensitivity:  highMean - lowMean,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Sensitivity != out[j].Sensitivity {
			return out[i].Sensitivity > out[j].Sensitivity
		}
		return out[i].EntityID < out[j].EntityID
	})
	return out
}

// weightedMean averages the bucket means in the subset, weighted by each
// bucket's defined-observation count. Returns the total observation count so
// callers can enforce the exclusion rule.
func weightedMean(summaries []aggregate.Summary, subset []rest.Bucket) (float64, int) {
	want := make(map[rest.Bucket]struct{}, len(subset))
	for _, b := range subset {
		want[b] = struct{}{}
	}

	var sum float64
	var n int
	for _, s := range summaries {
		if _, ok := want[s.Bucket]; !ok {
			continue
		}
		if s.Mean == nil || s.MetricCount == 0 {
			continue
		}
		sum += *s.Mean * float64(s.MetricCount)
		n += s.MetricCount
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}
