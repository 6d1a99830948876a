package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	// Imports and exports run as long as the data takes.
	r.Post("/games/import", s.handleImport)
	r.Post("/export", s.handleExport)
	r.Post("/players/{username}/import", s.handleImportPlayer)

	r.Group(func(r chi.Router) {
		if s.RequestTimeout > 0 {
			r.Use(timeoutMiddleware(s.RequestTimeout))
		}
		r.Get("/games", s.handleGames)
		r.Get("/games/{id}", s.handleGameDetail)
		r.Get("/games/{id}/pgn", s.handleGamePGN)
		r.Get("/games/{id}/positions", s.handleGamePositions)
		r.Post("/games/{id}/replay", s.handleReplayGame)
		r.Get("/stats", s.handleStats)
		r.Get("/imports", s.handleImports)
		r.Get("/imports/{id}", s.handleImportDetail)
	})

	return r
}
