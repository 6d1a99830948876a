package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/pgnarchive/internal/errors"
	"github.com/vytor/pgnarchive/internal/logger"
	"github.com/vytor/pgnarchive/internal/services"
)

const defaultMaxImportBytes = 64 << 20

type Server struct {
	DB             *sql.DB
	GameService    services.GameService
	ImportService  services.ImportService
	StatsService   services.StatsService
	ExportService  services.ExportService
	ArchiveService services.ArchiveService
	MaxImportBytes int64
	RequestTimeout time.Duration
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}

// gameID reads the {id} URL parameter.
func gameID(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		logger.FromContext(r.Context()).Warn("invalid game ID: %s", idStr)
		return 0, errors.NewBadRequestError("invalid game ID")
	}
	return id, nil
}
