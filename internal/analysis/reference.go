package analysis

import (
	"errors"
	"fmt"
	"strings"

	refchess "github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"
	"github.com/vytor/pgnarchive/internal/chess"
	"github.com/vytor/pgnarchive/internal/models"
	"github.com/vytor/pgnarchive/internal/pgn"
)

// ErrReplayMismatch is returned when our snapshots disagree with the
// reference implementation.
var ErrReplayMismatch = errors.New("replay does not match reference")

// Reference is a game replayed by github.com/corentings/chess, used as an
// independent check on our own board model.
type Reference struct {
	game *refchess.Game
}

// NewReference replays g's moves with the reference library. The moves are
// handed over as PGN text without comments or annotations.
func NewReference(g *models.Game) (*Reference, error) {
	bare := models.Game{
		White:  g.White,
		Black:  g.Black,
		Result: g.Result,
		Moves:  make([]chess.Move, len(g.Moves)),
	}
	for i, m := range g.Moves {
		m.Annotation = chess.NoAnnotation
		bare.Moves[i] = m
	}
	text, err := pgn.Format(&bare)
	if err != nil {
		return nil, fmt.Errorf("render movetext: %w", err)
	}

	pgnOpt, err := refchess.PGN(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("reference parse: %w", err)
	}
	return &Reference{game: refchess.NewGame(pgnOpt)}, nil
}

// Verify compares boards, as returned by chess.BuildBoards for g, against the
// reference replay: the placement and side to move of every snapshot and the
// long algebraic form of every move.
func (r *Reference) Verify(g *models.Game, boards []*chess.Board) error {
	positions := r.game.Positions()
	moves := r.game.Moves()
	if len(positions) != len(boards) || len(moves) != len(g.Moves) {
		return fmt.Errorf("%w: reference has %d positions and %d moves, we have %d and %d",
			ErrReplayMismatch, len(positions), len(moves), len(boards), len(g.Moves))
	}

	for i, b := range boards {
		want := strings.Fields(positions[i].String())
		got := strings.Fields(b.FEN())
		if len(want) < 2 || want[0] != got[0] || want[1] != got[1] {
			return fmt.Errorf("%w: ply %d: reference %q, ours %q", ErrReplayMismatch, i, positions[i].String(), b.FEN())
		}
	}
	for i, m := range moves {
		if want, got := MoveToUCI(m), g.Moves[i].UCI(); want != got {
			return fmt.Errorf("%w: ply %d: reference move %s, ours %s", ErrReplayMismatch, i+1, want, got)
		}
	}
	return nil
}

// Opening looks the game up in the reference ECO book. ok is false when no
// book line matches.
func (r *Reference) Opening() (code, title string, ok bool) {
	book := opening.NewBookECO()
	found := book.Find(r.game.Moves())
	if found == nil {
		return "", "", false
	}
	return found.Code(), found.Title(), true
}

// MoveToUCI converts a reference move to long algebraic form (e.g. "e2e4",
// "e7e8q").
func MoveToUCI(move *refchess.Move) string {
	if move == nil {
		return ""
	}
	uci := squareName(move.S1()) + squareName(move.S2())
	switch move.Promo() {
	case refchess.Queen:
		uci += "q"
	case refchess.Rook:
		uci += "r"
	case refchess.Bishop:
		uci += "b"
	case refchess.Knight:
		uci += "n"
	}
	return uci
}

func squareName(sq refchess.Square) string {
	return string([]byte{byte('a' + sq.File()), byte('1' + sq.Rank())})
}
