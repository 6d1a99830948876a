package chess

import "fmt"

// SAN renders m, whose origin must be fully resolved, in standard algebraic
// notation for the position on b: the origin is reduced to the least that
// still identifies the moving piece. b is not modified.
func (b *Board) SAN(m Move) (string, error) {
	from, ok := m.From.Cell()
	if !ok {
		return "", fmt.Errorf("%w: origin of %s is not resolved", ErrNoOrigin, m)
	}
	out := m
	out.Annotation = NoAnnotation
	if m.IsCastle() {
		return out.String(), nil
	}

	switch {
	case m.Piece == Pawn && m.Captures:
		out.From = PartialCell{File: from.File}
	case m.Piece == Pawn:
		out.From = PartialCell{}
	default:
		out.From = b.minimalOrigin(m.Piece, from, m.To)
	}
	return out.String(), nil
}

func (b *Board) minimalOrigin(piece Piece, from, to Cell) PartialCell {
	for _, partial := range []PartialCell{
		{},
		{File: from.File},
		{Rank: from.Rank},
	} {
		if origin, err := b.FindOrigin(piece, to, partial); err == nil && origin == from {
			return partial
		}
	}
	return from.Partial()
}

// SANMoves renders a whole game of resolved moves from the starting position.
func SANMoves(moves []Move) ([]string, error) {
	b := NewStartingBoard()
	out := make([]string, len(moves))
	for i, m := range moves {
		s, err := b.SAN(m)
		if err != nil {
			return nil, fmt.Errorf("ply %d: %w", i+1, err)
		}
		if _, err := b.MovePiece(m); err != nil {
			return nil, fmt.Errorf("ply %d: %w", i+1, err)
		}
		out[i] = s
	}
	return out, nil
}
