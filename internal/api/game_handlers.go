package api

import (
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/pgnarchive/internal/chess"
	"github.com/vytor/pgnarchive/internal/errors"
	"github.com/vytor/pgnarchive/internal/logger"
	"github.com/vytor/pgnarchive/internal/models"
	"github.com/vytor/pgnarchive/internal/pgn"
)

// gameResponse adds the move list, which the stored model keeps binary.
type gameResponse struct {
	*models.Game
	Moves    []string `json:"moves"`
	MovesUCI []string `json:"moves_uci"`

	// id of the game on the site it was played on
	SiteGameID string `json:"site_game_id,omitempty"`
}

func newGameResponse(g *models.Game) gameResponse {
	resp := gameResponse{Game: g, MovesUCI: make([]string, len(g.Moves))}
	if g.Site != "" {
		resp.SiteGameID = pgn.ExtractGameID(g.Site)
	}
	for i, m := range g.Moves {
		resp.MovesUCI[i] = m.UCI()
	}
	san, err := chess.SANMoves(g.Moves)
	if err != nil {
		san = g.MoveList()
	}
	resp.Moves = san
	return resp
}

// handleImport stores every game of the PGN request body. Games that fail to
// parse are counted and reported in the summary without failing the request.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	limit := s.MaxImportBytes
	if limit <= 0 {
		limit = defaultMaxImportBytes
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			handleError(w, r, &errors.AppError{
				Code:    errors.ErrCodeBadRequest,
				Message: "request body too large",
				Status:  http.StatusRequestEntityTooLarge,
			})
			return
		}
		handleError(w, r, errors.NewBadRequestError("could not read request body"))
		return
	}

	source := strings.TrimSpace(r.URL.Query().Get("source"))
	if source == "" {
		source = "upload"
	}
	log = log.WithFields(map[string]any{"source": source, "bytes": len(body)})
	log.Info("starting upload import")

	summary, err := s.ImportService.ImportText(r.Context(), source, string(body))
	if err != nil {
		handleError(w, r, err)
		return
	}

	status := http.StatusCreated
	if summary.Inserted == 0 {
		status = http.StatusOK
	}
	writeJSON(w, r, status, summary)
}

// handleImportPlayer pulls the latest monthly Chess.com archives of a player.
func (s *Server) handleImportPlayer(w http.ResponseWriter, r *http.Request) {
	if s.ArchiveService == nil {
		handleError(w, r, errors.NewBadRequestError("archive imports are not enabled"))
		return
	}
	months := 0
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			handleError(w, r, errors.NewValidationError("months", "must be an integer"))
			return
		}
		months = n
	}

	username := chi.URLParam(r, "username")
	logger.FromContext(r.Context()).WithField("username", username).Info("starting archive import")

	summaries, err := s.ArchiveService.ImportPlayer(r.Context(), username, months)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if summaries == nil {
		summaries = []models.ImportSummary{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"imports": summaries})
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	q := r.URL.Query()

	filter, err := parseGameFilter(q)
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.WithFields(map[string]any{
		"player":    filter.Player,
		"result":    filter.Result,
		"order_by":  filter.OrderBy,
		"order_dir": filter.OrderDir,
	}).Debug("listing games with filters")

	games, totalCount, err := s.GameService.ListGames(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}

	page, perPage := pageParams(q)
	items := make([]gameResponse, len(games))
	for i := range games {
		items[i] = newGameResponse(&games[i])
	}

	log.Debug("found %d games", len(games))
	writeJSON(w, r, http.StatusOK, map[string]any{
		"games":       items,
		"page":        page,
		"per_page":    perPage,
		"total_pages": totalPages(totalCount, perPage),
		"total_count": totalCount,
	})
}

func (s *Server) handleGameDetail(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).WithField("game_id", id).Debug("fetching game detail")

	game, err := s.GameService.GetGame(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newGameResponse(game))
}

func (s *Server) handleGamePGN(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	text, err := s.GameService.GetPGN(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-chess-pgn; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, text); err != nil {
		logger.FromContext(r.Context()).Warn("failed to write pgn: %v", err)
	}
}

func (s *Server) handleGamePositions(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	positions, err := s.GameService.GetPositionsForGame(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Debug("found %d positions for game %d", len(positions), id)
	if positions == nil {
		positions = []models.Position{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"game_id":   id,
		"positions": positions,
	})
}

func (s *Server) handleReplayGame(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).WithField("game_id", id).Info("replay requested")

	if err := s.GameService.QueueReplay(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, map[string]any{
		"game_id": id,
		"status":  "queued",
	})
}
