// Package aggregate groups per-game metric samples by rest bucket and
// produces stable, bucket-ordered summary tables.
package aggregate

import (
	"sort"

	"github.com/frostline/restcurve/internal/domain/rest"
)

// Sample is one (entity, bucket, metric value) observation. Value is nil
// when the metric was undefined for the underlying record; such samples
// still count toward the bucket's sample count but not toward its mean.
type Sample struct {
	EntityID string
	Bucket   rest.Bucket
	Value    *float64
}

// Summary is one output row per rest bucket.
type Summary struct {
	Bucket rest.Bucket `json:"bucket"`

	// SampleCount is the number of game records that landed in the bucket.
	SampleCount int `json:"sample_count"`

	// MetricCount is the number of those records with a defined metric
	// value; Mean and Sum are taken over exactly these.
	MetricCount int `json:"metric_count"`

	// Mean is nil when the bucket holds no defined values. An empty bucket
	// must stay visible as "no data", which is not the same as zero.
	Mean *float64 `json:"metric_mean"`

	Sum float64 `json:"metric_sum"`
}

// EntitySummary is an entity-scoped bucket table.
type EntitySummary struct {
	EntityID  string    `json:"entity_id"`
	Summaries []Summary `json:"summaries"`
}

// ByBucket aggregates samples across all entities. The result always holds
// exactly one row per canonical bucket, in canonical order, including empty
// buckets with a zero count and nil mean.
func ByBucket(samples []Sample) []Summary {
	acc := make(map[rest.Bucket]*Summary, len(rest.Buckets()))
	for _, b := range rest.Buckets() {
		acc[b] = &Summary{Bucket: b}
	}

	for _, s := range samples {
		row, ok := acc[s.Bucket]
		if !ok {
			// Unknown bucket values cannot occur via rest.Classify; drop
			// rather than invent a category.
			continue
		}
		row.SampleCount++
		if s.Value != nil {
			row.MetricCount++
			row.Sum += *s.Value
		}
	}

	out := make([]Summary, 0, len(rest.Buckets()))
	for _, b := range rest.Buckets() {
		row := *acc[b]
		if row.MetricCount > 0 {
			m := row.Sum / float64(row.MetricCount)
			row.Mean = &m
		}
		out = append(out, row)
	}
	return out
}

// ByEntity aggregates samples per entity, one canonical bucket table each,
// with entities ordered by id for deterministic output.
func ByEntity(samples []Sample) []EntitySummary {
	grouped := make(map[string][]Sample)
	for _, s := range samples {
		grouped[s.EntityID] = append(grouped[s.EntityID], s)
	}

	ids := make([]string, 0, len(grouped))
	for id := range grouped {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]EntitySummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, EntitySummary{
			EntityID:  id,
			Summaries: ByBucket(grouped[id]),
		})
	}
	return out
}
