package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/pgnarchive/internal/chess"
	"github.com/vytor/pgnarchive/internal/logger"
	"github.com/vytor/pgnarchive/internal/models"
	"github.com/vytor/pgnarchive/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

var gameColumns = []string{
	"id", "import_id", "site", "white", "black", "white_elo", "black_elo",
	"white_rating_diff", "black_rating_diff", "played_on", "utc_time",
	"tc_base", "tc_increment", "tc_unlimited", "eco_code", "opening_name",
	"result", "termination", "moves", "evals", "clocks", "status", "created_at",
}

const insertGameSQL = `
INSERT INTO games (
    import_id, site, white, black, white_elo, black_elo, white_rating_diff, black_rating_diff,
    played_on, utc_time, tc_base, tc_increment, tc_unlimited, time_class, eco_code, opening_name,
    result, termination, moves, move_count, evals, clocks, status
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT DO NOTHING
`

var orderColumns = map[string]string{
	"played_at":  "played_on %[1]s, utc_time %[1]s",
	"id":         "id %[1]s",
	"move_count": "move_count %[1]s",
	"elo":        "(white_elo + black_elo) %[1]s",
}

type gameRepository struct {
	db *sql.DB
}

// NewGameRepository creates a new GameRepository implementation
func NewGameRepository(db *sql.DB) repository.GameRepository {
	return &gameRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (models.Game, error) {
	var (
		g         models.Game
		playedOn  sql.NullTime
		utcTime   int64
		tcBase    int64
		tcInc     int64
		moves     []byte
		evals     string
		clocks    string
		createdAt sql.NullTime
	)
	err := row.Scan(&g.ID, &g.ImportID, &g.Site, &g.White, &g.Black, &g.WhiteElo, &g.BlackElo,
		&g.WhiteRatingDiff, &g.BlackRatingDiff, &playedOn, &utcTime,
		&tcBase, &tcInc, &g.TimeControl.Unlimited, &g.ECOCode, &g.OpeningName,
		&g.Result, &g.Termination, &moves, &evals, &clocks, &g.Status, &createdAt)
	if err != nil {
		return g, err
	}
	if playedOn.Valid {
		g.Date = playedOn.Time.UTC()
	}
	g.UTCTime = time.Duration(utcTime) * time.Second
	g.TimeControl.Base = time.Duration(tcBase) * time.Second
	g.TimeControl.Increment = time.Duration(tcInc) * time.Second
	if createdAt.Valid {
		g.CreatedAt = createdAt.Time
	}
	if g.Moves, err = chess.DecodeMoves(moves); err != nil {
		return g, fmt.Errorf("game %d moves: %w", g.ID, err)
	}
	if err := json.Unmarshal([]byte(evals), &g.Evals); err != nil {
		return g, fmt.Errorf("game %d evals: %w", g.ID, err)
	}
	if err := json.Unmarshal([]byte(clocks), &g.Clocks); err != nil {
		return g, fmt.Errorf("game %d clocks: %w", g.ID, err)
	}
	return g, nil
}

func gameArgs(g models.Game) ([]any, error) {
	evals, err := json.Marshal(nonNil(g.Evals))
	if err != nil {
		return nil, err
	}
	clocks, err := json.Marshal(nonNil(g.Clocks))
	if err != nil {
		return nil, err
	}
	var playedOn any
	if !g.Date.IsZero() {
		playedOn = g.Date
	}
	status := g.Status
	if status == "" {
		status = models.StatusImported
	}
	return []any{
		g.ImportID, g.Site, g.White, g.Black, g.WhiteElo, g.BlackElo, g.WhiteRatingDiff, g.BlackRatingDiff,
		playedOn, int64(g.UTCTime / time.Second), int64(g.TimeControl.Base / time.Second),
		int64(g.TimeControl.Increment / time.Second), g.TimeControl.Unlimited, g.TimeControl.TimeClass(),
		g.ECOCode, g.OpeningName, g.Result, g.Termination, chess.EncodeMoves(g.Moves), len(g.Moves),
		string(evals), string(clocks), status,
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func applyGameFilter(query squirrel.SelectBuilder, filter models.GameFilter) squirrel.SelectBuilder {
	if filter.ImportID != "" {
		query = query.Where(squirrel.Eq{"import_id": filter.ImportID})
	}
	if filter.Site != "" {
		query = query.Where(squirrel.Eq{"site": filter.Site})
	}
	if filter.Player != "" {
		query = query.Where(squirrel.Or{
			squirrel.Eq{"white": filter.Player},
			squirrel.Eq{"black": filter.Player},
		})
	}
	if filter.Result != "" {
		query = query.Where(squirrel.Eq{"result": filter.Result})
	}
	if filter.Termination != "" {
		query = query.Where(squirrel.Eq{"termination": filter.Termination})
	}
	if filter.TimeClass != "" {
		query = query.Where(squirrel.Eq{"time_class": filter.TimeClass})
	}
	if filter.ECOCode != "" {
		query = query.Where(squirrel.Eq{"eco_code": filter.ECOCode})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.MinElo > 0 {
		query = query.Where(squirrel.Expr("MIN(white_elo, black_elo) >= ?", filter.MinElo))
	}
	return query
}

func (r *gameRepository) Get(ctx context.Context, id int64) (*models.Game, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("getting game: id=%d", id)

	query, args, err := sqlBuilder.Select(gameColumns...).From("games").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	g, err := scanGame(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("game not found: id=%d", id)
		} else {
			log.Error("failed to get game: %v", err)
		}
		return nil, err
	}
	log.Debug("game found: white=%s, black=%s, moves=%d", g.White, g.Black, len(g.Moves))
	return &g, nil
}

func (r *gameRepository) List(ctx context.Context, filter models.GameFilter) ([]models.Game, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("listing games with filter: import_id=%s, player=%s, result=%s, eco=%s, status=%s",
		filter.ImportID, filter.Player, filter.Result, filter.ECOCode, filter.Status)

	query := applyGameFilter(sqlBuilder.Select(gameColumns...).From("games"), filter)

	// Safe ORDER BY with validation
	order, ok := orderColumns[filter.OrderBy]
	if !ok {
		order = orderColumns["played_at"]
	}
	orderDir := "DESC"
	if filter.OrderDir == "ASC" {
		orderDir = "ASC"
	}
	query = query.OrderBy(fmt.Sprintf(order, orderDir), "id "+orderDir)

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	offset := max(filter.Offset, 0)
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	stmt, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to list games: %v", err)
		return nil, err
	}
	defer rows.Close()
	var games []models.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			log.Error("failed to scan game row: %v", err)
			return nil, err
		}
		games = append(games, g)
	}
	log.Debug("found %d games", len(games))
	return games, rows.Err()
}

func (r *gameRepository) Count(ctx context.Context, filter models.GameFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")

	stmt, args, err := applyGameFilter(sqlBuilder.Select("COUNT(*)").From("games"), filter).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&count); err != nil {
		log.Error("failed to count games: %v", err)
		return 0, err
	}
	return count, nil
}

// Insert stores a single game. A duplicate Site returns the existing ID.
func (r *gameRepository) Insert(ctx context.Context, g models.Game) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("inserting game: site=%s, white=%s, black=%s", g.Site, g.White, g.Black)

	args, err := gameArgs(g)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, insertGameSQL, args...)
	if err != nil {
		log.Error("failed to insert game: %v", err)
		return 0, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 1 {
		id, err := res.LastInsertId()
		if err == nil {
			log.Debug("game inserted: id=%d", id)
		}
		return id, err
	}
	var id int64
	err = r.db.QueryRowContext(ctx, `SELECT id FROM games WHERE site = ?`, g.Site).Scan(&id)
	if err != nil {
		log.Error("failed to get game id: %v", err)
	} else {
		log.Debug("game exists: id=%d", id)
	}
	return id, err
}

func (r *gameRepository) InsertBatch(ctx context.Context, games []models.Game) ([]int64, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("batch inserting %d games", len(games))

	if len(games) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(games))
	inserted := 0
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertGameSQL)
		if err != nil {
			log.Error("failed to prepare batch insert: %v", err)
			return err
		}
		defer stmt.Close()

		for i, g := range games {
			args, err := gameArgs(g)
			if err != nil {
				return err
			}
			res, err := stmt.ExecContext(ctx, args...)
			if err != nil {
				log.Error("failed to insert game site=%s: %v", g.Site, err)
				return err
			}
			if n, err := res.RowsAffected(); err != nil || n == 0 {
				continue
			}
			if id, err := res.LastInsertId(); err == nil {
				ids[i] = id
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("batch insert completed, %d new games inserted", inserted)
	return ids, nil
}

func (r *gameRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("updating game status: game_id=%d, status=%s", id, status)

	_, err := r.db.ExecContext(ctx, `UPDATE games SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		log.Error("failed to update game status: %v", err)
	}
	return err
}

func (r *gameRepository) UpdateOpening(ctx context.Context, id int64, ecoCode, openingName string) error {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("updating game opening: game_id=%d, eco=%s, opening=%s", id, ecoCode, openingName)

	_, err := r.db.ExecContext(ctx, `
UPDATE games
SET eco_code = ?, opening_name = ?
WHERE id = ?
`, ecoCode, openingName, id)
	if err != nil {
		log.Error("failed to update game opening: %v", err)
	}
	return err
}

// ExistingSites reports which of sites are already stored.
func (r *gameRepository) ExistingSites(ctx context.Context, sites []string) (map[string]bool, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	out := make(map[string]bool)
	if len(sites) == 0 {
		return out, nil
	}

	stmt, args, err := sqlBuilder.Select("site").From("games").Where(squirrel.Eq{"site": sites}).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to list sites: %v", err)
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			log.Error("failed to scan site: %v", err)
			return nil, err
		}
		out[site] = true
	}
	log.Debug("%d of %d sites already stored", len(out), len(sites))
	return out, rows.Err()
}
