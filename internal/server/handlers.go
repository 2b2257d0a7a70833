package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/shotcaller/internal/importer"
	"github.com/meltforce/shotcaller/internal/models"
	"github.com/meltforce/shotcaller/internal/storage"
	"github.com/meltforce/shotcaller/internal/timeline"
	"github.com/meltforce/shotcaller/internal/validate"
)

// maxDocumentBytes bounds workout documents accepted over HTTP.
const maxDocumentBytes = 4 << 20

// invalidResponse is returned with 422 when a document fails validation.
type invalidResponse struct {
	Error  string           `json:"error"`
	Errors []validate.Error `json:"errors"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, validate.Validate(body))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	seed, ok := parseSeed(w, r)
	if !ok {
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	wk, ok := parseWorkout(w, body)
	if !ok {
		return
	}
	tl, ok := s.generate(w, wk, seed)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, tl)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.ListWorkouts(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if rows == nil {
		rows = []models.WorkoutRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	wk, ok := parseWorkout(w, body)
	if !ok {
		return
	}
	row, err := importer.Row(wk, userIDFromContext(r), "api")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	row.ID = uuid.New()

	inserted, err := s.db.InsertWorkout(r.Context(), row)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if !inserted {
		writeJSON(w, http.StatusConflict, map[string]string{"error": fmt.Sprintf("workout %q already exists", row.Name)})
		return
	}
	writeJSON(w, http.StatusCreated, row)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	row, err := s.db.GetWorkout(r.Context(), id, userIDFromContext(r))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleUpdateWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	wk, ok := parseWorkout(w, body)
	if !ok {
		return
	}
	row, err := importer.Row(wk, userIDFromContext(r), "api")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	row.ID = id
	if err := s.db.UpdateWorkout(r.Context(), row); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.db.DeleteWorkout(r.Context(), id, userIDFromContext(r)); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTimelines(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	rows, err := s.db.ListTimelines(r.Context(), id, userIDFromContext(r), queryInt(r, "limit", 50))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if rows == nil {
		rows = []models.TimelineRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleGenerateStored generates a timeline for a stored workout and keeps it.
func (s *Server) handleGenerateStored(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	seed, ok := parseSeed(w, r)
	if !ok {
		return
	}
	uid := userIDFromContext(r)

	row, err := s.db.GetWorkout(r.Context(), id, uid)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	wk, err := row.Decode()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	tl, ok := s.generate(w, wk, seed)
	if !ok {
		return
	}

	stored := &models.TimelineRow{
		ID:        uuid.New(),
		WorkoutID: id,
		UserID:    uid,
		Seed:      tl.Seed,
		Stats:     tl.Stats,
		Events:    tl.Events,
	}
	if err := s.db.InsertTimeline(r.Context(), stored); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

// handleSaveTimeline stores a timeline generated elsewhere, such as by a
// remote MCP session.
func (s *Server) handleSaveTimeline(w http.ResponseWriter, r *http.Request) {
	var row models.TimelineRow
	if err := json.NewDecoder(io.LimitReader(r.Body, maxDocumentBytes)).Decode(&row); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if row.WorkoutID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workout_id is required"})
		return
	}
	row.ID = uuid.New()
	row.UserID = userIDFromContext(r)
	row.Stats = timeline.Summarize(row.Events)
	if err := s.db.InsertTimeline(r.Context(), &row); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, row)
}

func (s *Server) handleGetTimeline(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	row, err := s.db.GetTimeline(r.Context(), id, userIDFromContext(r))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	if s.mcp == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "mcp not enabled"})
		return
	}
	s.mcp.ServeHTTP(w, r)
}

// generate runs the timeline generator and writes an error response on failure.
func (s *Server) generate(w http.ResponseWriter, wk *models.Workout, seed *int64) (*models.Timeline, bool) {
	opts := s.gen
	opts.Seed = seed
	tl, err := timeline.Generate(wk, opts)
	if err != nil {
		if errors.Is(err, timeline.ErrIterationLimit) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return nil, false
		}
		s.log.Error("generating timeline", "workout", wk.Name, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return nil, false
	}
	if tl.Stats.Truncated {
		s.log.Warn("timeline truncated", "workout", wk.Name, "events", len(tl.Events))
	}
	return tl, true
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	s.log.Error("storage error", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading body: " + err.Error()})
		return nil, false
	}
	return body, true
}

// parseWorkout validates a document and writes 422 with the problems when
// it is rejected.
func parseWorkout(w http.ResponseWriter, body []byte) (*models.Workout, bool) {
	wk, res := validate.Parse(body)
	if !res.IsValid {
		writeJSON(w, http.StatusUnprocessableEntity, invalidResponse{Error: "invalid workout", Errors: res.Errors})
		return nil, false
	}
	return wk, true
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func parseSeed(w http.ResponseWriter, r *http.Request) (*int64, bool) {
	v := r.URL.Query().Get("seed")
	if v == "" {
		return nil, true
	}
	seed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "seed must be an integer"})
		return nil, false
	}
	return &seed, true
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
