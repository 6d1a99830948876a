package pgn

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vytor/pgnarchive/internal/chess"
	"github.com/vytor/pgnarchive/internal/models"
)

const maxLineWidth = 79

// Format renders g as PGN text that ParseString reads back into the same
// game. Moves must carry resolved origins. Evaluations and clocks are
// written as move comments only when there is one per move.
func Format(g *models.Game) (string, error) {
	san, err := chess.SANMoves(g.Moves)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, tag := range headerTags(g) {
		sb.WriteString(HeaderLine(tag[0], tag[1]))
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')

	withEvals := len(g.Evals) == len(g.Moves) && len(g.Moves) > 0
	withClocks := len(g.Clocks) == len(g.Moves) && len(g.Moves) > 0

	tokens := make([]string, 0, 3*len(san)+1)
	commented := false
	for i, s := range san {
		switch {
		case i%2 == 0:
			tokens = append(tokens, strconv.Itoa(i/2+1)+".")
		case commented:
			tokens = append(tokens, strconv.Itoa(i/2+1)+"...")
		}
		tokens = append(tokens, s+g.Moves[i].Annotation.String())

		var parts []string
		if withEvals {
			parts = append(parts, "[%eval "+formatEval(g.Evals[i])+"]")
		}
		if withClocks {
			parts = append(parts, "[%clk "+formatClock(g.Clocks[i])+"]")
		}
		commented = len(parts) > 0
		if commented {
			tokens = append(tokens, "{", strings.Join(parts, " "), "}")
		}
	}
	tokens = append(tokens, resultOrOngoing(g.Result))

	writeWrapped(&sb, tokens)
	return sb.String(), nil
}

// HeaderLine renders one tag pair, escaping the value so ParseHeader reads
// it back unchanged.
func HeaderLine(tag, value string) string {
	return "[" + tag + ` "` + tagEscaper.Replace(value) + `"]`
}

func headerTags(g *models.Game) [][2]string {
	date := "????.??.??"
	if !g.Date.IsZero() {
		date = g.Date.Format("2006.01.02")
	}
	tags := [][2]string{
		{"Event", "?"},
		{"Date", date},
		{"Round", "?"},
		{"White", orUnknown(g.White)},
		{"Black", orUnknown(g.Black)},
		{"Result", resultOrOngoing(g.Result)},
	}
	// Site keys deduplication, so it gets no placeholder
	if g.Site != "" {
		tags = append(tags, [2]string{"Site", g.Site})
	}
	if g.UTCTime > 0 {
		secs := int(g.UTCTime / time.Second)
		tags = append(tags, [2]string{"UTCTime", fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)})
	}
	if g.WhiteElo > 0 {
		tags = append(tags, [2]string{"WhiteElo", strconv.Itoa(g.WhiteElo)})
	}
	if g.BlackElo > 0 {
		tags = append(tags, [2]string{"BlackElo", strconv.Itoa(g.BlackElo)})
	}
	if g.WhiteRatingDiff != 0 {
		tags = append(tags, [2]string{"WhiteRatingDiff", fmt.Sprintf("%+d", g.WhiteRatingDiff)})
	}
	if g.BlackRatingDiff != 0 {
		tags = append(tags, [2]string{"BlackRatingDiff", fmt.Sprintf("%+d", g.BlackRatingDiff)})
	}
	if tc := g.TimeControl.String(); tc != "" {
		tags = append(tags, [2]string{"TimeControl", tc})
	}
	if g.ECOCode != "" {
		tags = append(tags, [2]string{"ECO", g.ECOCode})
	}
	if g.OpeningName != "" {
		tags = append(tags, [2]string{"Opening", g.OpeningName})
	}
	if g.Termination != "" {
		tags = append(tags, [2]string{"Termination", g.Termination})
	}
	return tags
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

func resultOrOngoing(result string) string {
	if result == "" {
		return models.ResultOngoing
	}
	return result
}

func formatEval(e models.Eval) string {
	if e.Mate {
		return "#" + strconv.Itoa(e.MateIn)
	}
	return strconv.FormatFloat(e.Advantage, 'f', -1, 64)
}

func formatClock(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}

// writeWrapped joins tokens with spaces, breaking lines before they pass
// maxLineWidth. A comment may span a line break.
func writeWrapped(sb *strings.Builder, tokens []string) {
	width := 0
	for _, tok := range tokens {
		if width > 0 && width+1+len(tok) > maxLineWidth {
			sb.WriteByte('\n')
			width = 0
		}
		if width > 0 {
			sb.WriteByte(' ')
			width++
		}
		sb.WriteString(tok)
		width += len(tok)
	}
	sb.WriteByte('\n')
}
