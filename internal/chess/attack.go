package chess

import "fmt"

// DoesPieceCheckLoc reports whether the piece on attacker attacks target.
// Kings never satisfy it: the predicate only answers whether a king's square
// is under attack, and two kings cannot meet. Asking about an empty attacker
// square is a caller bug and panics.
func (b *Board) DoesPieceCheckLoc(attacker, target Cell) bool {
	pl, ok := b.At(attacker)
	if !ok {
		panic("chess: attack query from empty cell " + attacker.String())
	}

	df := int(target.File) - int(attacker.File)
	dr := int(target.Rank) - int(attacker.Rank)

	switch pl.Piece {
	case Pawn:
		return dr == pl.Player.forward() && abs(df) == 1
	case Knight:
		return isKnightJump(df, dr)
	case Bishop:
		return isDiagonal(df, dr) && b.IsPathClear(attacker, target)
	case Rook:
		return isOrthogonal(df, dr) && b.IsPathClear(attacker, target)
	case Queen:
		return (isDiagonal(df, dr) || isOrthogonal(df, dr)) && b.IsPathClear(attacker, target)
	default:
		return false
	}
}

// FindKingLoc returns the cell of player's king.
func (b *Board) FindKingLoc(player Player) (Cell, error) {
	for cell, pl := range b.placements {
		if pl.Piece == King && pl.Player == player {
			return cell, nil
		}
	}
	return Cell{}, fmt.Errorf("%w: %s", ErrMissingKing, player)
}

// IsInCheck reports whether any opposing piece attacks player's king.
func (b *Board) IsInCheck(player Player) (bool, error) {
	king, err := b.FindKingLoc(player)
	if err != nil {
		return false, err
	}
	enemy := player.Opponent()
	for cell, pl := range b.placements {
		if pl.Player == enemy && b.DoesPieceCheckLoc(cell, king) {
			return true, nil
		}
	}
	return false, nil
}

func isKnightJump(df, dr int) bool {
	return abs(df)+abs(dr) == 3 && df != 0 && dr != 0
}

func isDiagonal(df, dr int) bool {
	return df != 0 && abs(df) == abs(dr)
}

func isOrthogonal(df, dr int) bool {
	return (df == 0) != (dr == 0)
}
