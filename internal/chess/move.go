package chess

import "strings"

// Annotation is the move-quality suffix written after a move.
type Annotation uint8

const (
	NoAnnotation Annotation = iota
	Questionable            // ?!
	Mistake                 // ?
	Blunder                 // ??
)

func (a Annotation) String() string {
	switch a {
	case Questionable:
		return "?!"
	case Mistake:
		return "?"
	case Blunder:
		return "??"
	default:
		return ""
	}
}

// Move is one ply. To is always fully specified; From holds whatever the
// notation gave until the board resolves it.
type Move struct {
	From       PartialCell
	To         Cell
	Piece      Piece
	Captures   bool
	Checks     bool
	Mates      bool
	Annotation Annotation
	Promotion  Piece
}

// IsCastle reports whether m is a king move across two files.
func (m Move) IsCastle() bool {
	return m.Piece == King && m.From.File.Valid() && abs(int(m.To.File)-int(m.From.File)) == 2
}

// UCI renders a resolved move in long algebraic form ("e2e4", "e7e8q").
// It returns an empty string while the origin is still partial.
func (m Move) UCI() string {
	from, ok := m.From.Cell()
	if !ok {
		return ""
	}
	s := from.String() + m.To.String()
	if m.Promotion != NoPiece {
		s += strings.ToLower(string(m.Promotion.Letter()))
	}
	return s
}

// String renders m in PGN notation, keeping only as much of the origin as
// the move carries.
func (m Move) String() string {
	var sb strings.Builder
	if m.IsCastle() {
		if m.To.File == FileG {
			sb.WriteString("O-O")
		} else {
			sb.WriteString("O-O-O")
		}
	} else {
		if m.Piece != Pawn {
			sb.WriteByte(m.Piece.Letter())
		}
		sb.WriteString(m.From.String())
		if m.Captures {
			sb.WriteByte('x')
		}
		sb.WriteString(m.To.String())
		if m.Promotion != NoPiece {
			sb.WriteByte('=')
			sb.WriteByte(m.Promotion.Letter())
		}
	}
	switch {
	case m.Mates:
		sb.WriteByte('#')
	case m.Checks:
		sb.WriteByte('+')
	}
	sb.WriteString(m.Annotation.String())
	return sb.String()
}
