package api

import (
	"fmt"
	"net/http"
	"strconv"
)

// RankingHandler serves the rest-sensitivity ranking.
type RankingHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewRankingHandler creates a new ranking handler.
func NewRankingHandler(deps Dependencies, maxLimit int) *RankingHandler {
	return &RankingHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetRanking handles GET /rest/ranking?metric=win&limit=N.
func (h *RankingHandler) HandleGetRanking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	metric, ok := queryMetric(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_metric",
			fmt.Errorf("%w: unknown metric %q", ErrBadRequest, metric))
		return
	}

	limit := h.maxLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
			return
		}
		limit = n
	}

	scores, err := h.deps.SensitivityRanking(r.Context(), metric, queryFilter(r), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if len(scores) == 0 {
		writeError(w, http.StatusNotFound, "no_data", ErrNoData)
		return
	}
	writeJSON(w, http.StatusOK, scores)
}
