package chess

import "fmt"

// BuildBoards replays moves from the starting position. The result holds
// len(moves)+1 snapshots: the initial position followed by the board after
// each ply.
func BuildBoards(moves []Move) ([]*Board, error) {
	boards := make([]*Board, 0, len(moves)+1)
	current := NewStartingBoard()
	boards = append(boards, current)
	for i, m := range moves {
		next := current.Clone()
		if _, err := next.MovePiece(m); err != nil {
			return boards, fmt.Errorf("ply %d: %w", i+1, err)
		}
		boards = append(boards, next)
		current = next
	}
	return boards, nil
}

// ResolveMoves plays moves on a fresh starting board and returns them with
// every origin resolved. The boards are discarded.
func ResolveMoves(moves []Move) ([]Move, error) {
	b := NewStartingBoard()
	resolved := make([]Move, len(moves))
	for i, m := range moves {
		r, err := b.MovePiece(m)
		if err != nil {
			return nil, fmt.Errorf("ply %d: %w", i+1, err)
		}
		resolved[i] = r
	}
	return resolved, nil
}
