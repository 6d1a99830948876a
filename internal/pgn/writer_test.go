package pgn_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/pgnarchive/internal/pgn"
)

const annotatedGame = `[Site "https://lichess.org/cccc3333"]
[White "erin"]
[Black "frank"]
[Result "0-1"]
[UTCDate "2021.11.30"]
[UTCTime "08:05:09"]
[WhiteElo "2012"]
[BlackElo "1998"]
[WhiteRatingDiff "-6"]
[BlackRatingDiff "+7"]
[TimeControl "60+0"]
[ECO "A00"]
[Termination "Normal"]

1. f3 { [%eval -0.4] [%clk 0:01:00] } 1... e5 { [%eval -0.3] [%clk 0:01:00] }
2. g4?? { [%eval #-1] [%clk 0:00:58] } 2... Qh4# { [%eval #-1] [%clk 0:00:59] } 0-1
`

func TestFormat_RoundTrip(t *testing.T) {
	original, err := pgn.ParseString(annotatedGame)
	require.NoError(t, err)

	text, err := pgn.Format(original)
	require.NoError(t, err)

	reparsed, err := pgn.ParseString(text)
	require.NoError(t, err, text)

	assert.Equal(t, original.Site, reparsed.Site)
	assert.Equal(t, original.White, reparsed.White)
	assert.Equal(t, original.WhiteElo, reparsed.WhiteElo)
	assert.Equal(t, original.WhiteRatingDiff, reparsed.WhiteRatingDiff)
	assert.Equal(t, original.BlackRatingDiff, reparsed.BlackRatingDiff)
	assert.Equal(t, original.PlayedAt(), reparsed.PlayedAt())
	assert.Equal(t, original.TimeControl, reparsed.TimeControl)
	assert.Equal(t, original.Result, reparsed.Result)
	assert.Equal(t, original.Termination, reparsed.Termination)
	assert.Equal(t, original.Moves, reparsed.Moves)
	assert.Equal(t, original.Evals, reparsed.Evals)
	assert.Equal(t, original.Clocks, reparsed.Clocks)
}

func TestFormat_Movetext(t *testing.T) {
	g, err := pgn.ParseString(annotatedGame)
	require.NoError(t, err)

	text, err := pgn.Format(g)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(text, "[Event \"?\"]\n[Date \"2021.11.30\"]\n"))
	assert.Contains(t, text, `[UTCTime "08:05:09"]`)
	assert.Contains(t, text, `[BlackRatingDiff "+7"]`)
	assert.Contains(t, text, "2. g4?? { [%eval #-1] [%clk 0:00:58] } 2... Qh4#")
	assert.True(t, strings.HasSuffix(text, "\n"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(text), "0-1"))
	for _, line := range strings.Split(text, "\n") {
		assert.LessOrEqual(t, len(line), 79)
	}
}

func TestFormat_PartialCommentsAreDropped(t *testing.T) {
	g, err := pgn.ParseString("[Result \"*\"]\n\n1. e4 { [%eval 0.3] } e5 2. Nf3 *\n")
	require.NoError(t, err)
	require.Len(t, g.Evals, 1)

	text, err := pgn.Format(g)
	require.NoError(t, err)
	assert.NotContains(t, text, "%eval")
	assert.Contains(t, text, "1. e4 e5 2. Nf3 *")
	assert.NotContains(t, text, "[Site")
	assert.Contains(t, text, `[White "?"]`)
}

func TestFormat_EscapesTagValues(t *testing.T) {
	g, err := pgn.ParseString("[White \"O\\\"Brien\"]\n[Black \"back\\\\slash\"]\n[Result \"*\"]\n\n1. e4 *\n")
	require.NoError(t, err)
	assert.Equal(t, `O"Brien`, g.White)
	assert.Equal(t, `back\slash`, g.Black)

	text, err := pgn.Format(g)
	require.NoError(t, err)
	assert.Contains(t, text, `[White "O\"Brien"]`)

	reparsed, err := pgn.ParseString(text)
	require.NoError(t, err, text)
	assert.Equal(t, g.White, reparsed.White)
	assert.Equal(t, g.Black, reparsed.Black)
}
