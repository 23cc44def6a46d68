package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frostline/restcurve/internal/domain/model"
)

// RecordsHandler accepts game records over HTTP for callers that do not go
// through the CSV loaders.
type RecordsHandler struct {
	deps Dependencies
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps Dependencies) *RecordsHandler {
	return &RecordsHandler{deps: deps}
}

// recordRequest mirrors the JSON shape for POST /records.
type recordRequest struct {
	RecordID string `json:"record_id"`
	EntityID string `json:"entity_id"`
	Season   string `json:"season"`
	GameDate string `json:"game_date"` // YYYY-MM-DD, empty when unknown
	Location string `json:"location"`
	Playoff  bool   `json:"playoff"`

	GoalsFor      *float64 `json:"goals_for"`
	GoalsAgainst  *float64 `json:"goals_against"`
	XGoalsFor     *float64 `json:"xgoals_for"`
	XGoalsAgainst *float64 `json:"xgoals_against"`

	ShotsFaced   *float64 `json:"shots_faced"`
	GoalsAllowed *float64 `json:"goals_allowed"`
	XGoalsFaced  *float64 `json:"xgoals_faced"`

	CumulativeGames *float64 `json:"cumulative_games"`
}

func (r recordRequest) validate() error {
	if strings.TrimSpace(r.EntityID) == "" {
		return fmt.Errorf("%w: missing entity_id", ErrBadRequest)
	}
	if r.GameDate != "" {
		if _, err := time.Parse("2006-01-02", r.GameDate); err != nil {
			return fmt.Errorf("%w: invalid game_date; must be YYYY-MM-DD", ErrBadRequest)
		}
	}
	return nil
}

func (r recordRequest) toModel() model.GameRecord {
	rec := model.GameRecord{
		RecordID:        r.RecordID,
		EntityID:        strings.TrimSpace(r.EntityID),
		Season:          r.Season,
		Location:        model.Location(strings.ToUpper(r.Location)),
		Playoff:         r.Playoff,
		GoalsFor:        r.GoalsFor,
		GoalsAgainst:    r.GoalsAgainst,
		XGoalsFor:       r.XGoalsFor,
		XGoalsAgainst:   r.XGoalsAgainst,
		ShotsFaced:      r.ShotsFaced,
		GoalsAllowed:    r.GoalsAllowed,
		XGoalsFaced:     r.XGoalsFaced,
		CumulativeGames: r.CumulativeGames,
	}
	if rec.RecordID == "" {
		rec.RecordID = uuid.NewString()
	}
	if r.GameDate != "" {
		if t, err := time.Parse("2006-01-02", r.GameDate); err == nil {
			rec.GameDate = t
		}
	}
	return rec
}

type ackResponse struct {
	Status   string `json:"status"`
	Accepted int    `json:"accepted"`
}

// HandlePostRecords handles POST /records with a JSON array of records.
func (h *RecordsHandler) HandlePostRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var reqs []recordRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json",
			fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if len(reqs) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: empty record list", ErrBadRequest))
		return
	}

	records := make([]model.GameRecord, 0, len(reqs))
	for _, req := range reqs {
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_record", err)
			return
		}
		records = append(records, req.toModel())
	}

	if err := h.deps.Ingest(r.Context(), records); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Accepted: len(records)})
}
