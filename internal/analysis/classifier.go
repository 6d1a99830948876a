package analysis

import (
	"github.com/vytor/pgnarchive/internal/chess"
	"github.com/vytor/pgnarchive/internal/models"
)

// mateScore stands in for a forced mate when measuring loss, in pawns.
const mateScore = 100.0

// score converts an evaluation to pawns from White's perspective. A shorter
// mate scores higher than a longer one.
func score(e models.Eval) float64 {
	if !e.Mate {
		return e.Advantage
	}
	if e.MateIn < 0 {
		return -mateScore - float64(e.MateIn)
	}
	return mateScore - float64(e.MateIn)
}

// ClassifyMove grades a move by how much evaluation the mover gave away.
// Evaluations are from White's perspective, so a drop is a loss for White
// and a rise is a loss for Black.
func ClassifyMove(before, after models.Eval, isWhiteMove bool) chess.Annotation {
	diff := score(after) - score(before)

	loss := diff
	if isWhiteMove {
		loss = -diff
	}

	switch {
	case loss > 2:
		return chess.Blunder
	case loss > 1:
		return chess.Mistake
	case loss > 0.5:
		return chess.Questionable
	default:
		return chess.NoAnnotation
	}
}

// ClassifyGame grades every move of g from its recorded evaluations. It
// returns nil unless there is one evaluation per move. The evaluation before
// the first move is taken as level.
func ClassifyGame(g *models.Game) []chess.Annotation {
	if len(g.Evals) == 0 || len(g.Evals) != len(g.Moves) {
		return nil
	}
	out := make([]chess.Annotation, len(g.Evals))
	before := models.Eval{}
	for i, after := range g.Evals {
		out[i] = ClassifyMove(before, after, chess.PlayerForPly(i) == chess.White)
		before = after
	}
	return out
}

// Tally counts the blunders, mistakes and inaccuracies in annotations.
func Tally(annotations []chess.Annotation) (blunders, mistakes, inaccuracies int) {
	for _, a := range annotations {
		switch a {
		case chess.Blunder:
			blunders++
		case chess.Mistake:
			mistakes++
		case chess.Questionable:
			inaccuracies++
		}
	}
	return blunders, mistakes, inaccuracies
}
