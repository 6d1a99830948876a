package sqlite

import (
	"context"
	"database/sql"

	"github.com/vytor/pgnarchive/internal/logger"
	"github.com/vytor/pgnarchive/internal/models"
	"github.com/vytor/pgnarchive/internal/repository"
)

type positionRepository struct {
	db *sql.DB
}

// NewPositionRepository creates a new PositionRepository implementation
func NewPositionRepository(db *sql.DB) repository.PositionRepository {
	return &positionRepository{db: db}
}

// InsertBatch stores positions in one transaction. Replaying a game twice
// overwrites the earlier snapshot for each ply.
func (r *positionRepository) InsertBatch(ctx context.Context, positions []models.Position) ([]int64, error) {
	log := logger.FromContext(ctx).WithPrefix("position_repo")
	log.Debug("batch inserting %d positions", len(positions))

	if len(positions) == 0 {
		return nil, nil
	}

	var insertedIDs []int64
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		insertedIDs, err = insertPositions(ctx, log, tx, positions)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Debug("batch insert completed, %d positions inserted", len(insertedIDs))
	return insertedIDs, nil
}

// ReplaceForGame swaps every stored position of gameID for positions in a
// single transaction, so a failed write keeps the previous replay.
func (r *positionRepository) ReplaceForGame(ctx context.Context, gameID int64, positions []models.Position) error {
	log := logger.FromContext(ctx).WithPrefix("position_repo").WithField("game_id", gameID)
	log.Debug("replacing positions with %d new ones", len(positions))

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM positions WHERE game_id = ?`, gameID); err != nil {
			log.Error("failed to delete positions: %v", err)
			return err
		}
		_, err := insertPositions(ctx, log, tx, positions)
		return err
	})
}

func insertPositions(ctx context.Context, log *logger.Logger, tx *sql.Tx, positions []models.Position) ([]int64, error) {
	if len(positions) == 0 {
		return nil, nil
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO positions (game_id, ply, fen, move_played, move_uci)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(game_id, ply) DO UPDATE SET
    fen = excluded.fen,
    move_played = excluded.move_played,
    move_uci = excluded.move_uci
`)
	if err != nil {
		log.Error("failed to prepare batch insert: %v", err)
		return nil, err
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(positions))
	for _, p := range positions {
		res, err := stmt.ExecContext(ctx, p.GameID, p.Ply, p.FEN, p.MovePlayed, p.MoveUCI)
		if err != nil {
			log.Error("failed to insert position game_id=%d ply=%d: %v", p.GameID, p.Ply, err)
			return nil, err
		}
		if id, err := res.LastInsertId(); err == nil && id != 0 {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *positionRepository) PositionsForGame(ctx context.Context, gameID int64) ([]models.Position, error) {
	log := logger.FromContext(ctx).WithPrefix("position_repo")
	log.Debug("fetching positions for game: game_id=%d", gameID)

	rows, err := r.db.QueryContext(ctx, `
SELECT id, game_id, ply, fen, move_played, move_uci, created_at
FROM positions
WHERE game_id = ?
ORDER BY ply ASC
`, gameID)
	if err != nil {
		log.Error("failed to query positions: %v", err)
		return nil, err
	}
	defer rows.Close()
	var positions []models.Position
	for rows.Next() {
		var p models.Position
		if err := rows.Scan(&p.ID, &p.GameID, &p.Ply, &p.FEN, &p.MovePlayed, &p.MoveUCI, &p.CreatedAt); err != nil {
			log.Error("failed to scan position row: %v", err)
			return nil, err
		}
		positions = append(positions, p)
	}
	log.Debug("found %d positions", len(positions))
	return positions, rows.Err()
}
