package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meltforce/shotcaller/internal/importer"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetDataStats(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.db.QueryImportLogs(r.Context(), userIDFromContext(r), queryInt(r, "limit", 50))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// handleImport bulk-imports a JSON array of workout documents. Invalid
// documents are reported in the stats; the request only fails on storage
// errors. Pass ?dry_run=true to validate without writing.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var docs []json.RawMessage
	if err := json.NewDecoder(io.LimitReader(r.Body, 8*maxDocumentBytes)).Decode(&docs); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "expected a JSON array of workouts: " + err.Error()})
		return
	}

	start := time.Now()
	dryRun := r.URL.Query().Get("dry_run") == "true"
	imp := importer.New(s.db, s.log, dryRun).ForUser(userIDFromContext(r))

	var importErr error
	for i, doc := range docs {
		if importErr = imp.ImportDocument(r.Context(), fmt.Sprintf("request[%d]", i), doc); importErr != nil {
			break
		}
	}
	imp.Record(r.Context(), "api", importErr, time.Since(start))

	if importErr != nil {
		s.writeStoreError(w, importErr)
		return
	}
	writeJSON(w, http.StatusOK, imp.Stats())
}
