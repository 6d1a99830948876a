package pgn

import (
	"fmt"
	"strings"

	"github.com/vytor/pgnarchive/internal/chess"
	"github.com/vytor/pgnarchive/internal/models"
)

// ParseGame builds a game from one record. Every move is resolved against a
// board so the stored moves carry full origins. Faults and recoverable header
// errors are both returned; use chess.IsFault to tell them apart.
func ParseGame(rec Record) (*models.Game, error) {
	g := &models.Game{Status: models.StatusImported}
	for _, line := range rec.Headers {
		if err := ParseHeader(line, g); err != nil {
			return nil, err
		}
	}
	if err := ParseMovetext(rec.Movetext, g); err != nil {
		return nil, err
	}
	resolved, err := chess.ResolveMoves(g.Moves)
	if err != nil {
		return nil, err
	}
	g.Moves = resolved
	return g, nil
}

// ParseString parses a single game from its PGN text.
func ParseString(text string) (*models.Game, error) {
	pr := NewReader(strings.NewReader(text))
	rec, err := pr.Next()
	if err != nil {
		return nil, fmt.Errorf("read game: %w", err)
	}
	return ParseGame(rec)
}
