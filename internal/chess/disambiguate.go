package chess

import (
	"fmt"
	"slices"
)

// FindPossibleOrigins lists, in rank-major order, every cell matching partial
// that holds piece for the side to move and whose movement pattern reaches
// dest. Obstruction and legality are not considered.
func (b *Board) FindPossibleOrigins(piece Piece, dest Cell, partial PartialCell) []Cell {
	var origins []Cell
	for cell, pl := range b.placements {
		if pl.Piece != piece || pl.Player != b.toMove || cell == dest || !partial.Matches(cell) {
			continue
		}
		if reaches(pl, cell, dest) {
			origins = append(origins, cell)
		}
	}
	slices.SortFunc(origins, compareCells)
	return origins
}

func reaches(pl Placement, from, to Cell) bool {
	df := int(to.File) - int(from.File)
	dr := int(to.Rank) - int(from.Rank)

	switch pl.Piece {
	case Pawn:
		fwd := pl.Player.forward()
		if df == 0 {
			return dr == fwd || (dr == 2*fwd && from.Rank == pl.Player.pawnRank())
		}
		return abs(df) == 1 && dr == fwd
	case Knight:
		return isKnightJump(df, dr)
	case Bishop:
		return isDiagonal(df, dr)
	case Rook:
		return isOrthogonal(df, dr)
	case Queen:
		return isDiagonal(df, dr) || isOrthogonal(df, dr)
	case King:
		return max(abs(df), abs(dr)) == 1
	default:
		return false
	}
}

// FindOrigin resolves the origin of a move by the side to move: exactly one
// candidate from FindPossibleOrigins may have a clear path, satisfy the pawn
// capture rules and not leave its own king in check. Zero survivors yields
// ErrNoOrigin and several yield ErrAmbiguousOrigin.
func (b *Board) FindOrigin(piece Piece, dest Cell, partial PartialCell) (Cell, error) {
	var survivors []Cell
	for _, from := range b.FindPossibleOrigins(piece, dest, partial) {
		ok, err := b.isValidOrigin(piece, from, dest)
		if err != nil {
			return Cell{}, err
		}
		if ok {
			survivors = append(survivors, from)
		}
	}

	switch len(survivors) {
	case 0:
		return Cell{}, fmt.Errorf("%w: %s to %s from %q", ErrNoOrigin, piece, dest, partial.String())
	case 1:
		return survivors[0], nil
	default:
		return Cell{}, fmt.Errorf("%w: %v", ErrAmbiguousOrigin, survivors)
	}
}

func (b *Board) isValidOrigin(piece Piece, from, dest Cell) (bool, error) {
	if piece != Knight && !b.IsPathClear(from, dest) {
		return false, nil
	}

	target, occupied := b.At(dest)
	if occupied && target.Player == b.toMove {
		return false, nil
	}
	if piece == Pawn {
		if from.File != dest.File {
			if !occupied && !b.isEnPassantTarget(dest) {
				return false, nil
			}
		} else if occupied {
			return false, nil
		}
	}

	after := b.Clone()
	after.ExecuteMove(piece, from, dest)
	inCheck, err := after.IsInCheck(b.toMove)
	if err != nil {
		return false, err
	}
	return !inCheck, nil
}

// isEnPassantTarget infers en passant from the position alone: dest must be
// the square an enemy pawn skipped over with a double step, and that pawn
// must still stand directly behind it. Move history is not consulted.
func (b *Board) isEnPassantTarget(dest Cell) bool {
	enemy := b.toMove.Opponent()
	skipped := Rank(int(enemy.pawnRank()) + enemy.forward())
	if dest.Rank != skipped {
		return false
	}
	behind, ok := dest.offset(0, enemy.forward())
	if !ok {
		return false
	}
	pl, occupied := b.At(behind)
	return occupied && pl.Piece == Pawn && pl.Player == enemy
}
