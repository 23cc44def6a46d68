// Package app provides the core analytics service consumed by the HTTP API.
//
// The service owns the game-log store and recomputes every answer from the
// raw records on each call: there is no cached derived state, so the same
// input always produces the same output regardless of prior calls. Callers
// that want memoization own it themselves, keyed by their filter parameters.
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/frostline/restcurve/internal/adapters/repository"
	"github.com/frostline/restcurve/internal/domain/aggregate"
	"github.com/frostline/restcurve/internal/domain/derive"
	"github.com/frostline/restcurve/internal/domain/model"
	"github.com/frostline/restcurve/internal/domain/rank"
	"github.com/frostline/restcurve/internal/domain/rest"
	"github.com/frostline/restcurve/internal/domain/workload"
	"github.com/frostline/restcurve/pkg/logger"
	"github.com/frostline/restcurve/pkg/metrics"
)

// Filter narrows which records a query sees. Zero values mean "no filter".
type Filter struct {
	EntityID        string         `json:"entity_id,omitempty"`
	Season          string         `json:"season,omitempty"`
	Location        model.Location `json:"location,omitempty"`
	IncludePlayoffs bool           `json:"include_playoffs,omitempty"`
}

func (f Filter) match(r model.GameRecord) bool {
	if f.EntityID != "" && r.EntityID != f.EntityID {
		return false
	}
	if f.Season != "" && r.Season != f.Season {
		return false
	}
	if f.Location != model.LocationUnknown && r.Location != f.Location {
		return false
	}
	if !f.IncludePlayoffs && r.Playoff {
		return false
	}
	return true
}

// RestSummary is the league-wide answer for one metric: one row per
// canonical rest bucket plus the skip count required by the rest-interval
// contract.
type RestSummary struct {
	Metric         derive.Metric       `json:"metric"`
	Summaries      []aggregate.Summary `json:"summaries"`
	TotalRecords   int                 `json:"total_records"`
	SkippedRecords int                 `json:"skipped_records"`
}

// EntityRestSummary scopes the bucket tables by entity.
type EntityRestSummary struct {
	Metric         derive.Metric             `json:"metric"`
	Entities       []aggregate.EntitySummary `json:"entities"`
	SkippedRecords int                       `json:"skipped_records"`
}

// SegmentedSeries is one entity's season broken into workload segments.
type SegmentedSeries struct {
	EntityID string             `json:"entity_id"`
	Season   string             `json:"season"`
	Metric   derive.Metric      `json:"metric"`
	Segments []workload.Summary `json:"segments"`
}

// Service implements the analytics operations.
type Service struct {
	store      repository.Store
	thresholds rest.Thresholds
	lowRest    []rest.Bucket
	highRest   []rest.Bucket
	shardCount int
	logger     logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the game-log store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithThresholds overrides the bucket threshold table. Only tests should
// need this; production uses the canonical table.
func WithThresholds(t rest.Thresholds) Option {
	return func(s *Service) { s.thresholds = t }
}

// WithLowRestBuckets sets the "tired" bucket set for rankings.
func WithLowRestBuckets(buckets []rest.Bucket) Option {
	return func(s *Service) {
		if len(buckets) > 0 {
			s.lowRest = buckets
		}
	}
}

// WithHighRestBuckets sets the "rested" bucket set for rankings.
func WithHighRestBuckets(buckets []rest.Bucket) Option {
	return func(s *Service) {
		if len(buckets) > 0 {
			s.highRest = buckets
		}
	}
}

// WithShardCount bounds the per-entity computation concurrency.
func WithShardCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.shardCount = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Without options it uses an in-memory store, the
// canonical thresholds and the default tired/rested bucket sets.
func New(opts ...Option) *Service {
	s := &Service{
		store:      repository.NewMemStore(),
		thresholds: rest.CanonicalThresholds,
		lowRest:    rest.LowRest(),
		highRest:   rest.HighRest(),
		shardCount: runtime.NumCPU(),
		logger:     logger.Named("app"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest appends records to the game log.
func (s *Service) Ingest(ctx context.Context, records []model.GameRecord) error {
	if err := s.store.Add(ctx, records...); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	s.logger.Info(ctx, "records ingested", logger.Int("count", len(records)))
	return nil
}

// RestSummaryByBucket aggregates the metric across all matching records,
// conditioned on rest bucket, in canonical bucket order.
func (s *Service) RestSummaryByBucket(ctx context.Context, metric derive.Metric, f Filter) (RestSummary, error) {
	start := time.Now()
	defer func() { metrics.RecordPipelineRun("rest_summary", time.Since(start).Seconds()) }()

	samples, skipped, total, err := s.collectSamples(ctx, metric, f)
	if err != nil {
		return RestSummary{}, err
	}
	return RestSummary{
		Metric:         metric,
		Summaries:      aggregate.ByBucket(samples),
		TotalRecords:   total,
		SkippedRecords: skipped,
	}, nil
}

// RestSummaryByEntity aggregates the metric per entity and bucket.
func (s *Service) RestSummaryByEntity(ctx context.Context, metric derive.Metric, f Filter) (EntityRestSummary, error) {
	start := time.Now()
	defer func() { metrics.RecordPipelineRun("entity_rest_summary", time.Since(start).Seconds()) }()

	samples, skipped, _, err := s.collectSamples(ctx, metric, f)
	if err != nil {
		return EntityRestSummary{}, err
	}
	return EntityRestSummary{
		Metric:         metric,
		Entities:       aggregate.ByEntity(samples),
		SkippedRecords: skipped,
	}, nil
}

// SensitivityRanking ranks entities by how much the metric improves between
// the configured low-rest and high-rest bucket sets. Entities without
// observations on both sides are omitted. limit <= 0 means no cap.
func (s *Service) SensitivityRanking(ctx context.Context, metric derive.Metric, f Filter, limit int) ([]rank.Score, error) {
	start := time.Now()
	defer func() { metrics.RecordPipelineRun("sensitivity_ranking", time.Since(start).Seconds()) }()

	samples, _, _, err := s.collectSamples(ctx, metric, f)
	if err != nil {
		return nil, err
	}
	scores := rank.Rank(aggregate.ByEntity(samples), s.lowRest, s.highRest)
	if limit > 0 && len(scores) > limit {
		scores = scores[:limit]
	}
	return scores, nil
}

// SeasonSegments partitions one entity's season by cumulative workload and
// returns the per-segment mean of the metric. A short season collapses to
// coarser segments rather than failing.
func (s *Service) SeasonSegments(ctx context.Context, entityID, season string, metric derive.Metric) (SegmentedSeries, error) {
	start := time.Now()
	defer func() { metrics.RecordPipelineRun("season_segments", time.Since(start).Seconds()) }()

	if !metric.Valid() {
		return SegmentedSeries{}, fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}

	records, err := s.store.Entity(ctx, entityID)
	if err != nil {
		return SegmentedSeries{}, fmt.Errorf("load entity %s: %w", entityID, err)
	}
	if season != "" {
		filtered := records[:0:0]
		for _, r := range records {
			if r.Season == season {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}
	if len(records) == 0 {
		return SegmentedSeries{}, fmt.Errorf("entity %s season %s: %w", entityID, season, ErrNoRecords)
	}

	values := make([]*float64, len(records))
	for i, r := range records {
		values[i] = s.metricValue(ctx, r, metric)
	}

	assignments := workload.Assign(records)
	return SegmentedSeries{
		EntityID: entityID,
		Season:   season,
		Metric:   metric,
		Segments: workload.Summarize(assignments, values),
	}, nil
}

// Stats returns service counters for monitoring.
func (s *Service) Stats(ctx context.Context) (map[string]any, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("store count: %w", err)
	}
	entities, err := s.store.Entities(ctx)
	if err != nil {
		return nil, fmt.Errorf("store entities: %w", err)
	}
	return map[string]any{
		"records":     count,
		"entities":    len(entities),
		"shard_count": s.shardCount,
		"low_rest":    s.lowRest,
		"high_rest":   s.highRest,
	}, nil
}

// collectSamples runs the full derive -> intervals -> classify pipeline over
// the filtered game log and returns bucketed metric samples. Entities are
// processed concurrently; results merge in deterministic entity order and
// the aggregator restores canonical bucket order afterwards.
func (s *Service) collectSamples(ctx context.Context, metric derive.Metric, f Filter) (samples []aggregate.Sample, skipped, total int, err error) {
	if !metric.Valid() {
		return nil, 0, 0, fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}

	records, err := s.store.All(ctx)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("load records: %w", err)
	}

	filtered := make([]model.GameRecord, 0, len(records))
	for _, r := range records {
		if f.match(r) {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return nil, 0, 0, nil
	}

	groups, keys := rest.GroupByEntity(filtered)
	results := make([]entityResult, len(keys))

	workers := s.shardCount
	if workers > len(keys) {
		workers = len(keys)
	}
	jobs := make(chan int)
	done := make(chan struct{})

	for w := 0; w < workers; w++ {
		go func() {
			for ki := range jobs {
				select {
				case <-ctx.Done():
					// Drain remaining jobs; caller sees ctx.Err below.
					continue
				default:
				}
				entity := make([]model.GameRecord, 0, len(groups[keys[ki]]))
				for _, i := range groups[keys[ki]] {
					entity = append(entity, filtered[i])
				}
				results[ki] = s.entitySamples(ctx, entity, metric)
			}
			done <- struct{}{}
		}()
	}
	for ki := range keys {
		jobs <- ki
	}
	close(jobs)
	for w := 0; w < workers; w++ {
		<-done
	}

	if err := ctx.Err(); err != nil {
		return nil, 0, 0, fmt.Errorf("pipeline cancelled: %w", err)
	}

	for _, r := range results {
		samples = append(samples, r.samples...)
		skipped += r.skipped
	}
	metrics.RecordSkipped("unparsable_date", skipped)
	return samples, skipped, len(filtered), nil
}

// entityResult is one entity's share of the pipeline output.
type entityResult struct {
	samples []aggregate.Sample
	skipped int
}

// entitySamples computes one entity's bucketed samples.
func (s *Service) entitySamples(ctx context.Context, records []model.GameRecord, metric derive.Metric) (res entityResult) {
	ivs := rest.Intervals(records)
	res.skipped = ivs.Skipped

	for _, iv := range ivs.Intervals {
		bucket, ok := s.thresholds.Classify(iv.DaysRest)
		if !ok {
			// First game of the entity: no prior game, no bucket.
			continue
		}
		r := records[iv.Index]
		res.samples = append(res.samples, aggregate.Sample{
			EntityID: r.EntityID,
			Bucket:   bucket,
			Value:    s.metricValue(ctx, r, metric),
		})
	}
	return res
}

// metricValue derives the metric for one record, degrading to nil on a
// missing required field. The record still occupies its bucket so sample
// counts stay honest.
func (s *Service) metricValue(ctx context.Context, r model.GameRecord, metric derive.Metric) *float64 {
	var (
		d   model.DerivedMetrics
		err error
	)
	switch metric {
	case derive.MetricSavePct, derive.MetricGSAx:
		d, err = derive.GoalieMetrics(r)
	default:
		d, err = derive.TeamMetrics(r)
	}
	if err != nil {
		var missing *derive.MissingFieldError
		if errors.As(err, &missing) {
			metrics.RecordSkipped("missing_field", 1)
			s.logger.Debug(ctx, "record missing required field",
				logger.String("record_id", r.RecordID),
				logger.String("field", missing.Field),
			)
		}
		return nil
	}
	return metric.Value(d)
}
