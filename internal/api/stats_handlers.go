package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/pgnarchive/internal/errors"
	"github.com/vytor/pgnarchive/internal/logger"
	"github.com/vytor/pgnarchive/internal/models"
)

// handleStats aggregates stored games. Listing parameters narrow the games in
// SQL; filter, expr, bin, bin_size, map and limit drive the aggregation.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	q := r.URL.Query()

	filter, err := parseGameFilter(q)
	if err != nil {
		handleError(w, r, err)
		return
	}
	filter.Limit, filter.Offset = 0, 0

	query, err := parseStatsQuery(q)
	if err != nil {
		handleError(w, r, err)
		return
	}

	bins, err := s.StatsService.Aggregate(r.Context(), filter, query)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if bins == nil {
		bins = []models.BinStat{}
	}

	log.Debug("returning %d bins", len(bins))
	writeJSON(w, r, http.StatusOK, map[string]any{
		"query": query,
		"bins":  bins,
	})
}

// handleExport writes the games matching the listing parameters to a Parquet
// file in the export directory.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter, err := parseGameFilter(q)
	if err != nil {
		handleError(w, r, err)
		return
	}
	filter.Limit, filter.Offset = 0, 0

	result, err := s.ExportService.Export(r.Context(), filter, q.Get("name"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, result)
}

func (s *Server) handleImports(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			handleError(w, r, errors.NewValidationError("limit", "must be an integer"))
			return
		}
		limit = n
	}

	summaries, err := s.ImportService.ListImports(r.Context(), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if summaries == nil {
		summaries = []models.ImportSummary{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"imports": summaries})
}

func (s *Server) handleImportDetail(w http.ResponseWriter, r *http.Request) {
	summary, err := s.ImportService.GetImport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}
