package chess

import (
	"fmt"
	"slices"
	"strings"
)

// Board is a sparse piece placement plus the side to move. A Board is owned
// by one goroutine at a time; Clone it to hand a copy elsewhere.
type Board struct {
	placements map[Cell]Placement
	toMove     Player
}

// NewBoard returns an empty board with White to move.
func NewBoard() *Board {
	return &Board{placements: make(map[Cell]Placement, 32), toMove: White}
}

var backRankPieces = [8]Piece{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewStartingBoard returns the standard initial position.
func NewStartingBoard() *Board {
	b := NewBoard()
	for _, player := range []Player{White, Black} {
		for i, piece := range backRankPieces {
			f := FileA + File(i)
			b.Place(Cell{File: f, Rank: player.backRank()}, piece, player)
			b.Place(Cell{File: f, Rank: player.pawnRank()}, Pawn, player)
		}
	}
	return b
}

// Clone returns an independent copy of b.
func (b *Board) Clone() *Board {
	c := &Board{placements: make(map[Cell]Placement, len(b.placements)), toMove: b.toMove}
	for cell, pl := range b.placements {
		c.placements[cell] = pl
	}
	return c
}

func (b *Board) ToMove() Player         { return b.toMove }
func (b *Board) SetToMove(player Player) { b.toMove = player }

// Place puts piece for player on cell, replacing whatever was there.
func (b *Board) Place(cell Cell, piece Piece, player Player) {
	b.placements[cell] = Placement{Piece: piece, Player: player}
}

// Remove clears cell.
func (b *Board) Remove(cell Cell) {
	delete(b.placements, cell)
}

// At returns the placement on cell and whether the cell is occupied.
func (b *Board) At(cell Cell) (Placement, bool) {
	pl, ok := b.placements[cell]
	return pl, ok
}

func (b *Board) IsCellEmpty(cell Cell) bool {
	_, ok := b.placements[cell]
	return !ok
}

// IsPathClear reports whether every cell strictly between from and to is empty.
func (b *Board) IsPathClear(from, to Cell) bool {
	for _, cell := range GeneratePath(from, to) {
		if !b.IsCellEmpty(cell) {
			return false
		}
	}
	return true
}

// Occupied returns every occupied cell in rank-major order.
func (b *Board) Occupied() []Cell {
	cells := make([]Cell, 0, len(b.placements))
	for cell := range b.placements {
		cells = append(cells, cell)
	}
	slices.SortFunc(cells, compareCells)
	return cells
}

// Equal reports whether both boards hold the same pieces and side to move.
func (b *Board) Equal(o *Board) bool {
	if b.toMove != o.toMove || len(b.placements) != len(o.placements) {
		return false
	}
	for cell, pl := range b.placements {
		if o.placements[cell] != pl {
			return false
		}
	}
	return true
}

// ExecuteMove relocates whatever stands on from to to, with no legality
// checks. A pawn moving diagonally onto an empty cell takes en passant; a
// king moving two files also brings the rook across.
func (b *Board) ExecuteMove(piece Piece, from, to Cell) {
	if piece == Pawn && from.File != to.File && b.IsCellEmpty(to) {
		b.Remove(Cell{File: to.File, Rank: from.Rank})
	}
	b.relocate(from, to)

	if piece == King && abs(int(to.File)-int(from.File)) == 2 {
		rookFrom := Cell{File: FileH, Rank: from.Rank}
		rookTo := Cell{File: to.File - 1, Rank: from.Rank}
		if to.File < from.File {
			rookFrom.File = FileA
			rookTo.File = to.File + 1
		}
		b.relocate(rookFrom, rookTo)
	}
}

func (b *Board) relocate(from, to Cell) {
	pl, ok := b.placements[from]
	delete(b.placements, from)
	if !ok {
		delete(b.placements, to)
		return
	}
	b.placements[to] = pl
}

// MovePiece applies m for the side to move and hands the turn over. A
// partial origin is resolved with FindOrigin first; the returned move always
// carries a fully defined origin.
func (b *Board) MovePiece(m Move) (Move, error) {
	mover := b.toMove
	from, ok := m.From.Cell()
	if ok {
		pl, occupied := b.At(from)
		if !occupied || pl.Piece != m.Piece || pl.Player != mover {
			return m, fmt.Errorf("%w: %s %s from %s", ErrEmptyOrigin, mover, m.Piece, from)
		}
	} else {
		var err error
		from, err = b.FindOrigin(m.Piece, m.To, m.From)
		if err != nil {
			return m, fmt.Errorf("%s %s: %w", mover, m, err)
		}
	}

	b.ExecuteMove(m.Piece, from, m.To)
	if m.Promotion != NoPiece {
		b.Place(m.To, m.Promotion, mover)
	}
	b.toMove = mover.Opponent()

	m.From = from.Partial()
	return m, nil
}

// String draws the board from White's side, rank 8 first.
func (b *Board) String() string {
	var sb strings.Builder
	for r := Rank8; r >= Rank1; r-- {
		sb.WriteString(r.String())
		sb.WriteByte(' ')
		for f := FileA; f <= FileH; f++ {
			if pl, ok := b.At(Cell{File: f, Rank: r}); ok {
				sb.WriteByte(pl.FENLetter())
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  abcdefgh\n")
	return sb.String()
}

func compareCells(a, b Cell) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}
