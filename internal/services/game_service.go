package services

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/vytor/pgnarchive/internal/analysis"
	"github.com/vytor/pgnarchive/internal/chess"
	"github.com/vytor/pgnarchive/internal/errors"
	"github.com/vytor/pgnarchive/internal/jobs"
	"github.com/vytor/pgnarchive/internal/logger"
	"github.com/vytor/pgnarchive/internal/models"
	"github.com/vytor/pgnarchive/internal/pgn"
	"github.com/vytor/pgnarchive/internal/repository"
)

// GameService handles game-related business logic
type GameService interface {
	GetGame(ctx context.Context, id int64) (*models.Game, error)
	GetPGN(ctx context.Context, id int64) (string, error)
	ListGames(ctx context.Context, filter models.GameFilter) ([]models.Game, int, error)
	GetPositionsForGame(ctx context.Context, gameID int64) ([]models.Position, error)
	ReplayGame(ctx context.Context, gameID int64) error
	QueueReplay(ctx context.Context, gameID int64) error
}

// ReplayConfig holds configuration for game replays
type ReplayConfig struct {
	// Verify cross-checks every snapshot against the reference library.
	Verify bool
}

type gameService struct {
	gameRepo     repository.GameRepository
	positionRepo repository.PositionRepository
	jobQueue     jobs.JobQueue
	config       ReplayConfig
}

// NewGameService creates a new GameService
func NewGameService(gameRepo repository.GameRepository, positionRepo repository.PositionRepository, jobQueue jobs.JobQueue, config ReplayConfig) GameService {
	return &gameService{
		gameRepo:     gameRepo,
		positionRepo: positionRepo,
		jobQueue:     jobQueue,
		config:       config,
	}
}

func (s *gameService) GetGame(ctx context.Context, id int64) (*models.Game, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting game: id=%d", id)

	game, err := s.gameRepo.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("game", id)
		}
		log.Error("failed to get game: %v", err)
		return nil, errors.Wrap(err)
	}

	if game == nil {
		return nil, errors.NewNotFoundError("game", id)
	}

	return game, nil
}

func (s *gameService) GetPGN(ctx context.Context, id int64) (string, error) {
	game, err := s.GetGame(ctx, id)
	if err != nil {
		return "", err
	}
	text, err := pgn.Format(game)
	if err != nil {
		logger.FromContext(ctx).Error("failed to render game %d: %v", id, err)
		return "", errors.Wrap(err)
	}
	return text, nil
}

func (s *gameService) ListGames(ctx context.Context, filter models.GameFilter) ([]models.Game, int, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing games with filter: player=%q, limit=%d, offset=%d", filter.Player, filter.Limit, filter.Offset)

	games, err := s.gameRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list games: %v", err)
		return nil, 0, errors.Wrap(err)
	}

	totalCount, err := s.gameRepo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count games: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}

	return games, totalCount, nil
}

func (s *gameService) GetPositionsForGame(ctx context.Context, gameID int64) ([]models.Position, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting positions for game: game_id=%d", gameID)

	if _, err := s.GetGame(ctx, gameID); err != nil {
		return nil, err
	}

	positions, err := s.positionRepo.PositionsForGame(ctx, gameID)
	if err != nil {
		log.Error("failed to get positions: %v", err)
		return nil, errors.NewInternalError(err)
	}

	return positions, nil
}

// ReplayGame rebuilds the board after every ply of a stored game and
// replaces its stored positions. A game whose moves cannot be replayed is
// marked failed.
func (s *gameService) ReplayGame(ctx context.Context, gameID int64) error {
	log := logger.FromContext(ctx).WithPrefix("replay").WithField("game_id", gameID)
	log.Debug("starting game replay")

	game, err := s.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	log = log.WithFields(map[string]any{
		"white": game.White,
		"black": game.Black,
		"plies": len(game.Moves),
	})

	fail := func(err error) error {
		log.Warn("replay failed: %v", err)
		if uerr := s.gameRepo.UpdateStatus(ctx, gameID, models.StatusFailed); uerr != nil {
			log.Error("failed to mark game as failed: %v", uerr)
		}
		return errors.Wrap(err)
	}

	boards, err := chess.BuildBoards(game.Moves)
	if err != nil {
		return fail(err)
	}
	san, err := chess.SANMoves(game.Moves)
	if err != nil {
		return fail(err)
	}

	if s.config.Verify || game.ECOCode == "" || game.OpeningName == "" {
		if err := s.checkReference(ctx, log, game, boards); err != nil {
			return fail(err)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	positions := make([]models.Position, len(boards))
	for i, b := range boards {
		positions[i] = models.Position{GameID: gameID, Ply: i, FEN: b.FEN()}
		if i > 0 {
			m := game.Moves[i-1]
			positions[i].MovePlayed = san[i-1] + m.Annotation.String()
			positions[i].MoveUCI = m.UCI()
		}
	}

	if err := s.positionRepo.ReplaceForGame(ctx, gameID, positions); err != nil {
		log.Error("failed to store positions: %v", err)
		return errors.NewInternalError(err)
	}
	if err := s.gameRepo.UpdateStatus(ctx, gameID, models.StatusReplayed); err != nil {
		log.Error("failed to update game status: %v", err)
		return errors.NewInternalError(err)
	}

	blunders, mistakes, inaccuracies := analysis.Tally(analysis.ClassifyGame(game))
	log.Info("replay completed: %d positions, %d blunders, %d mistakes, %d inaccuracies",
		len(positions), blunders, mistakes, inaccuracies)
	return nil
}

// checkReference replays the game with the reference library, verifying our
// boards when configured and filling in a missing opening.
func (s *gameService) checkReference(ctx context.Context, log *logger.Logger, game *models.Game, boards []*chess.Board) error {
	ref, err := analysis.NewReference(game)
	if err != nil {
		if s.config.Verify {
			return err
		}
		log.Warn("reference replay unavailable, opening not detected: %v", err)
		return nil
	}

	if s.config.Verify {
		if err := ref.Verify(game, boards); err != nil {
			return err
		}
		log.Debug("replay matches reference")
	}

	if game.ECOCode != "" && game.OpeningName != "" {
		return nil
	}
	code, title, ok := ref.Opening()
	if !ok {
		return nil
	}
	if game.ECOCode != "" {
		code = game.ECOCode
	}
	if err := s.gameRepo.UpdateOpening(ctx, game.ID, code, title); err != nil {
		log.Warn("failed to update game opening: %v", err)
		return nil
	}
	game.ECOCode, game.OpeningName = code, title
	log.Debug("updated opening to %s (%s)", title, code)
	return nil
}

func (s *gameService) QueueReplay(ctx context.Context, gameID int64) error {
	log := logger.FromContext(ctx)
	log.Debug("queueing game replay: game_id=%d", gameID)

	if _, err := s.GetGame(ctx, gameID); err != nil {
		return err
	}
	if s.jobQueue == nil {
		return s.ReplayGame(ctx, gameID)
	}
	if err := s.jobQueue.EnqueueReplay(ctx, gameID); err != nil {
		log.Error("failed to queue replay: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}
