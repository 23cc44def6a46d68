package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/frostline/restcurve/internal/adapters/repository"
	"github.com/frostline/restcurve/internal/app"
)

// SegmentsHandler serves season workload segments for a single entity.
type SegmentsHandler struct {
	deps Dependencies
}

// NewSegmentsHandler creates a new segments handler.
func NewSegmentsHandler(deps Dependencies) *SegmentsHandler {
	return &SegmentsHandler{deps: deps}
}

// HandleGetSegments handles GET /workload/segments?entity=X&season=Y.
func (h *SegmentsHandler) HandleGetSegments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	entity := r.URL.Query().Get("entity")
	if entity == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: entity is required", ErrBadRequest))
		return
	}
	metric, ok := queryMetric(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_metric",
			fmt.Errorf("%w: unknown metric %q", ErrBadRequest, metric))
		return
	}

	out, err := h.deps.SeasonSegments(r.Context(), entity, r.URL.Query().Get("season"), metric)
	if err != nil {
		if errors.Is(err, repository.ErrEntityNotFound) || errors.Is(err, app.ErrNoRecords) {
			writeError(w, http.StatusNotFound, "no_data", ErrNoData)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
