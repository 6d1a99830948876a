package models

import "time"

// Position is the board after a ply. Ply 0 is the starting position and has
// no move.
type Position struct {
	ID         int64     `json:"id"`
	GameID     int64     `json:"game_id"`
	Ply        int       `json:"ply"`
	FEN        string    `json:"fen"`
	MovePlayed string    `json:"move_played"`
	MoveUCI    string    `json:"move_uci"`
	CreatedAt  time.Time `json:"created_at"`
}
