// Package api declares HTTP contracts and route registration helpers for
// the dashboard-facing read API. The analytics core stays a library; these
// handlers only parse parameters, call the service and encode JSON.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/frostline/restcurve/internal/app"
	"github.com/frostline/restcurve/internal/domain/derive"
	"github.com/frostline/restcurve/internal/domain/model"
	"github.com/frostline/restcurve/internal/domain/rank"
)

// Dependencies required by the HTTP handlers. An interface bundle keeps the
// handler layer loosely coupled to the service implementation.
type Dependencies interface {
	RestSummaryByBucket(ctx context.Context, metric derive.Metric, f app.Filter) (app.RestSummary, error)
	RestSummaryByEntity(ctx context.Context, metric derive.Metric, f app.Filter) (app.EntityRestSummary, error)
	SensitivityRanking(ctx context.Context, metric derive.Metric, f app.Filter, limit int) ([]rank.Score, error)
	SeasonSegments(ctx context.Context, entityID, season string, metric derive.Metric) (app.SegmentedSeries, error)
	Ingest(ctx context.Context, records []model.GameRecord) error
	Stats(ctx context.Context) (map[string]any, error)
}

// Server wires HTTP routes for the analytics API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	summaryHandler  *SummaryHandler
	rankingHandler  *RankingHandler
	segmentsHandler *SegmentsHandler
	recordsHandler  *RecordsHandler
}

// NewServer creates an API server with all handlers.
func NewServer(deps Dependencies, maxRankingLimit int) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		summaryHandler:  NewSummaryHandler(deps),
		rankingHandler:  NewRankingHandler(deps, maxRankingLimit),
		segmentsHandler: NewSegmentsHandler(deps),
		recordsHandler:  NewRecordsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/rest/summary", MetricsMiddleware(s.summaryHandler.HandleGetSummary, "rest_summary"))
	mux.HandleFunc("/rest/ranking", MetricsMiddleware(s.rankingHandler.HandleGetRanking, "rest_ranking"))
	mux.HandleFunc("/workload/segments", MetricsMiddleware(s.segmentsHandler.HandleGetSegments, "workload_segments"))
	mux.HandleFunc("/records", MetricsMiddleware(s.recordsHandler.HandlePostRecords, "records"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// queryFilter parses the shared filter parameters.
func queryFilter(r *http.Request) app.Filter {
	q := r.URL.Query()
	return app.Filter{
		EntityID:        q.Get("entity"),
		Season:          q.Get("season"),
		Location:        model.Location(q.Get("location")),
		IncludePlayoffs: q.Get("playoffs") == "1",
	}
}

// queryMetric parses the metric parameter, defaulting to win rate.
func queryMetric(r *http.Request) (derive.Metric, bool) {
	m := derive.Metric(r.URL.Query().Get("metric"))
	if m == "" {
		m = derive.MetricWin
	}
	return m, m.Valid()
}
