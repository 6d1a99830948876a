package chess

import "fmt"

// Piece is a piece kind. NoPiece marks "none", e.g. an absent promotion.
type Piece uint8

const (
	NoPiece Piece = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var pieceLetters = [...]byte{' ', 'P', 'N', 'B', 'R', 'Q', 'K'}

// ParsePiece parses an uppercase PGN piece letter.
func ParsePiece(c byte) (Piece, error) {
	for p := Pawn; p <= King; p++ {
		if pieceLetters[p] == c {
			return p, nil
		}
	}
	return NoPiece, fmt.Errorf("%w: %q", ErrUnknownPiece, c)
}

func (p Piece) Valid() bool { return p <= King }

// Letter returns the uppercase PGN letter, or ' ' for NoPiece.
func (p Piece) Letter() byte {
	if !p.Valid() {
		return '?'
	}
	return pieceLetters[p]
}

func (p Piece) String() string {
	switch p {
	case NoPiece:
		return "none"
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "unknown"
	}
}

// Player is the side owning a piece or the side to move. NA is used where a
// side does not apply.
type Player uint8

const (
	NA Player = iota
	White
	Black
)

// Opponent returns the opposing side. It panics for NA, which has none.
func (p Player) Opponent() Player {
	switch p {
	case White:
		return Black
	case Black:
		return White
	default:
		panic("chess: opposing player requested for " + p.String())
	}
}

// PlayerForPly returns the side that plays the ply with the given zero-based index.
func PlayerForPly(ply int) Player {
	if ply%2 == 0 {
		return White
	}
	return Black
}

func (p Player) String() string {
	switch p {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "n/a"
	}
}

// forward is the rank direction pawns of p advance in.
func (p Player) forward() int {
	if p == White {
		return 1
	}
	return -1
}

// pawnRank returns the rank pawns of p start on.
func (p Player) pawnRank() Rank {
	if p == White {
		return Rank2
	}
	return Rank7
}

// backRank returns the rank the pieces of p start on.
func (p Player) backRank() Rank {
	if p == White {
		return Rank1
	}
	return Rank8
}

// Placement is what occupies a cell.
type Placement struct {
	Piece  Piece
	Player Player
}

// FENLetter returns the placement-string letter: uppercase for White.
func (pl Placement) FENLetter() byte {
	c := pl.Piece.Letter()
	if pl.Player == Black {
		c += 'a' - 'A'
	}
	return c
}
