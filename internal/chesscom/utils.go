package chesscom

import (
	"strings"

	"github.com/vytor/pgnarchive/internal/models"
	"github.com/vytor/pgnarchive/internal/pgn"
)

// Termination derives the Termination tag value from the per-player result
// codes, which carry more than the free text Chess.com writes in its PGN.
func Termination(mg MonthlyGame) string {
	for _, res := range []string{mg.White.Result, mg.Black.Result} {
		switch strings.ToLower(res) {
		case "timeout", "timevsinsufficient":
			return models.TerminationTimeForfeit
		case "abandoned":
			return models.TerminationAbandoned
		}
	}
	return models.TerminationNormal
}

// NormalizePGN rewrites the headers Chess.com fills differently from the
// archive format: Site becomes the game URL so games deduplicate, Termination
// comes from Termination, and daily time controls ("1/86400") become "-".
// The Link tag stands in for the URL when the archive entry has none.
func NormalizePGN(mg MonthlyGame) string {
	gameURL := mg.URL
	if gameURL == "" {
		gameURL = pgn.ParseHeaders(mg.PGN)["Link"]
	}
	lines := strings.Split(strings.ReplaceAll(mg.PGN, "\r\n", "\n"), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "[") {
			continue
		}
		switch {
		case strings.HasPrefix(trimmed, "[Site ") && gameURL != "":
			lines[i] = pgn.HeaderLine("Site", gameURL)
		case strings.HasPrefix(trimmed, "[Termination "):
			lines[i] = pgn.HeaderLine("Termination", Termination(mg))
		case strings.HasPrefix(trimmed, `[TimeControl "`) && strings.Contains(trimmed, "/"):
			lines[i] = pgn.HeaderLine("TimeControl", "-")
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// IsStandard reports whether the game was played under standard rules.
func IsStandard(mg MonthlyGame) bool {
	return mg.Rules == "" || mg.Rules == "chess"
}
