package pgn

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vytor/pgnarchive/internal/chess"
	"github.com/vytor/pgnarchive/internal/models"
)

var (
	ErrBadToken      = fmt.Errorf("%w: unparseable movetext token", chess.ErrFault)
	ErrBadAnnotation = fmt.Errorf("%w: unknown move annotation", chess.ErrFault)
)

var (
	moveNumberRe = regexp.MustCompile(`^\d+\.+`)
	castleRe     = regexp.MustCompile(`^(O-O(?:-O)?|0-0(?:-0)?)([+#])?([?!]{0,2})$`)
	moveRe       = regexp.MustCompile(`^([PNBRQK])?([a-h]?[1-8]?)(x)?([a-z][0-9])(?:=?([A-Z]))?([+#])?([?!]{0,2})$`)
	nagRe        = regexp.MustCompile(`^\$\d+$`)
	evalRe       = regexp.MustCompile(`\[%eval\s+(#)?([+-]?\d+(?:\.\d+)?)(?:,\d+)?\]`)
	clockRe      = regexp.MustCompile(`\[%clk\s+(\d+):(\d{2}):(\d{2})(?:\.\d+)?\]`)
)

// ParseMoveToken turns one movetext token into a move whose origin may still
// be partial. Move numbers, NAGs and game results produce a nil move. ply is
// the zero-based index of the move, used to place castling on the right rank.
func ParseMoveToken(token string, ply int) (*chess.Move, error) {
	token = moveNumberRe.ReplaceAllString(token, "")
	switch {
	case token == "":
		return nil, nil
	case isResult(token), nagRe.MatchString(token):
		return nil, nil
	}

	if m := castleRe.FindStringSubmatch(token); m != nil {
		return parseCastle(m, ply)
	}

	m := moveRe.FindStringSubmatch(token)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrBadToken, token)
	}

	move := &chess.Move{Piece: chess.Pawn}
	if m[1] != "" {
		p, err := chess.ParsePiece(m[1][0])
		if err != nil {
			return nil, err
		}
		move.Piece = p
	}

	from, err := parsePartialCell(m[2])
	if err != nil {
		return nil, fmt.Errorf("token %q: %w", token, err)
	}
	move.From = from

	move.Captures = m[3] != ""

	if move.To, err = chess.ParseCell(m[4]); err != nil {
		return nil, fmt.Errorf("token %q: %w", token, err)
	}

	if m[5] != "" {
		promo, err := chess.ParsePiece(m[5][0])
		if err != nil {
			return nil, fmt.Errorf("token %q: %w", token, err)
		}
		if promo == chess.Pawn || promo == chess.King {
			return nil, fmt.Errorf("%w: cannot promote to %s in %q", ErrBadToken, promo, token)
		}
		move.Promotion = promo
	}

	setCheckMarker(move, m[6])
	if move.Annotation, err = parseAnnotation(m[7]); err != nil {
		return nil, fmt.Errorf("token %q: %w", token, err)
	}
	return move, nil
}

func parseCastle(m []string, ply int) (*chess.Move, error) {
	player := chess.PlayerForPly(ply)
	rank := chess.Rank1
	if player == chess.Black {
		rank = chess.Rank8
	}
	to := chess.FileG
	if len(m[1]) == len("O-O-O") {
		to = chess.FileC
	}

	move := &chess.Move{
		From:  chess.PartialCell{File: chess.FileE, Rank: rank},
		To:    chess.Cell{File: to, Rank: rank},
		Piece: chess.King,
	}
	setCheckMarker(move, m[2])
	var err error
	if move.Annotation, err = parseAnnotation(m[3]); err != nil {
		return nil, err
	}
	return move, nil
}

// parsePartialCell reads an optional file followed by an optional rank.
func parsePartialCell(s string) (chess.PartialCell, error) {
	var pc chess.PartialCell
	if s == "" {
		return pc, nil
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		f, err := chess.ParseFile(s[0])
		if err != nil {
			return pc, err
		}
		pc.File = f
		s = s[1:]
	}
	if s != "" {
		r, err := chess.ParseRank(s[0])
		if err != nil {
			return pc, err
		}
		pc.Rank = r
	}
	return pc, nil
}

func setCheckMarker(m *chess.Move, marker string) {
	switch marker {
	case "+":
		m.Checks = true
	case "#":
		m.Mates = true
	}
}

func parseAnnotation(s string) (chess.Annotation, error) {
	switch s {
	case "":
		return chess.NoAnnotation, nil
	case "?":
		return chess.Mistake, nil
	case "??":
		return chess.Blunder, nil
	case "?!":
		return chess.Questionable, nil
	default:
		return chess.NoAnnotation, fmt.Errorf("%w: %q", ErrBadAnnotation, s)
	}
}

func isResult(token string) bool {
	switch token {
	case models.ResultWhiteWins, models.ResultBlackWins, models.ResultDraw, models.ResultOngoing:
		return true
	}
	return false
}

// ParseComment scans comment text for an engine evaluation and a clock
// reading. Each is reported only if present.
func ParseComment(text string) (eval models.Eval, hasEval bool, clock time.Duration, hasClock bool) {
	if m := evalRe.FindStringSubmatch(text); m != nil {
		if m[1] == "#" {
			if n, err := strconv.Atoi(m[2]); err == nil {
				eval, hasEval = models.Eval{Mate: true, MateIn: n}, true
			}
		} else if f, err := strconv.ParseFloat(m[2], 64); err == nil {
			eval, hasEval = models.Eval{Advantage: f}, true
		}
	}
	if m := clockRe.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		secs, _ := strconv.Atoi(m[3])
		clock = time.Duration(h)*time.Hour + time.Duration(mins)*time.Minute + time.Duration(secs)*time.Second
		hasClock = true
	}
	return eval, hasEval, clock, hasClock
}

// ParseMovetext tokenizes movetext and appends the moves, evaluations and
// clock readings it finds to g. Comments run between `{` and `}`; variations
// in parentheses are skipped. Evaluations and clocks are appended in ply
// order, so an empty list means the feature is absent for the whole game.
func ParseMovetext(text string, g *models.Game) error {
	var (
		comment   strings.Builder
		inComment bool
		depth     int
	)
	// Comments inside a variation annotate the variation, not the main line.
	keep := func(body string) {
		if depth == 0 {
			appendComment(body, g)
		}
	}
	for _, tok := range strings.Fields(text) {
		if inComment {
			if before, ok := strings.CutSuffix(tok, "}"); ok {
				comment.WriteString(before)
				inComment = false
				keep(comment.String())
				comment.Reset()
				continue
			}
			comment.WriteString(tok)
			comment.WriteByte(' ')
			continue
		}

		if rest, ok := strings.CutPrefix(tok, "{"); ok {
			if body, closed := strings.CutSuffix(rest, "}"); closed {
				keep(body)
				continue
			}
			inComment = true
			comment.WriteString(rest)
			comment.WriteByte(' ')
			continue
		}

		if strings.HasPrefix(tok, "(") {
			depth += strings.Count(tok, "(")
		}
		if depth > 0 {
			depth -= strings.Count(tok, ")")
			continue
		}

		move, err := ParseMoveToken(tok, len(g.Moves))
		if err != nil {
			return fmt.Errorf("ply %d: %w", len(g.Moves)+1, err)
		}
		if move != nil {
			g.Moves = append(g.Moves, *move)
		}
	}
	return nil
}

func appendComment(text string, g *models.Game) {
	eval, hasEval, clock, hasClock := ParseComment(text)
	if hasEval {
		g.Evals = append(g.Evals, eval)
	}
	if hasClock {
		g.Clocks = append(g.Clocks, clock)
	}
}
