package api

import (
	"fmt"
	"net/http"
)

// SummaryHandler serves bucket-conditioned metric summaries.
type SummaryHandler struct {
	deps Dependencies
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps Dependencies) *SummaryHandler {
	return &SummaryHandler{deps: deps}
}

// HandleGetSummary handles GET /rest/summary. With by=entity the response
// carries one bucket table per entity; otherwise a single league-wide table.
func (h *SummaryHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
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
	f := queryFilter(r)

	if r.URL.Query().Get("by") == "entity" {
		out, err := h.deps.RestSummaryByEntity(r.Context(), metric, f)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err)
			return
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	out, err := h.deps.RestSummaryByBucket(r.Context(), metric, f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if out.TotalRecords == 0 {
		writeError(w, http.StatusNotFound, "no_data", ErrNoData)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
