package chess_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/pgnarchive/internal/chess"
)

func TestParseFileAndRank(t *testing.T) {
	f, err := chess.ParseFile('a')
	require.NoError(t, err)
	assert.Equal(t, chess.FileA, f)

	f, err = chess.ParseFile('h')
	require.NoError(t, err)
	assert.Equal(t, chess.FileH, f)

	r, err := chess.ParseRank('8')
	require.NoError(t, err)
	assert.Equal(t, chess.Rank8, r)

	for _, c := range []byte{'i', 'A', '1', 'x'} {
		_, err := chess.ParseFile(c)
		assert.ErrorIs(t, err, chess.ErrMalformedCoordinate, "file %q", c)
		assert.True(t, chess.IsFault(err))
	}
	for _, c := range []byte{'0', '9', 'a'} {
		_, err := chess.ParseRank(c)
		assert.ErrorIs(t, err, chess.ErrMalformedCoordinate, "rank %q", c)
	}
}

func TestParseCell(t *testing.T) {
	c, err := chess.ParseCell("e4")
	require.NoError(t, err)
	assert.Equal(t, chess.Cell{File: chess.FileE, Rank: chess.Rank4}, c)
	assert.Equal(t, "e4", c.String())

	_, err = chess.ParseCell("e")
	assert.ErrorIs(t, err, chess.ErrMalformedCoordinate)
	_, err = chess.ParseCell("z9")
	assert.ErrorIs(t, err, chess.ErrMalformedCoordinate)
}

func TestCellOrderingIsRankMajor(t *testing.T) {
	h1 := chess.Cell{File: chess.FileH, Rank: chess.Rank1}
	a2 := chess.Cell{File: chess.FileA, Rank: chess.Rank2}
	b2 := chess.Cell{File: chess.FileB, Rank: chess.Rank2}

	assert.True(t, h1.Less(a2))
	assert.True(t, a2.Less(b2))
	assert.False(t, b2.Less(a2))
	assert.False(t, a2.Less(a2))
}

func TestPartialCell(t *testing.T) {
	e4 := chess.Cell{File: chess.FileE, Rank: chess.Rank4}

	fileOnly := chess.PartialCell{File: chess.FileE}
	assert.False(t, fileOnly.IsFullyDefined())
	_, ok := fileOnly.Cell()
	assert.False(t, ok)
	assert.True(t, fileOnly.Matches(e4))
	assert.False(t, fileOnly.Matches(chess.Cell{File: chess.FileD, Rank: chess.Rank4}))
	assert.Equal(t, "e", fileOnly.String())

	full := e4.Partial()
	assert.True(t, full.IsFullyDefined())
	c, ok := full.Cell()
	assert.True(t, ok)
	assert.Equal(t, e4, c)

	assert.True(t, chess.PartialCell{}.Matches(e4))
}

func TestPlayerOpponent(t *testing.T) {
	assert.Equal(t, chess.Black, chess.White.Opponent())
	assert.Equal(t, chess.White, chess.Black.Opponent())
	assert.Panics(t, func() { chess.NA.Opponent() })

	assert.Equal(t, chess.White, chess.PlayerForPly(0))
	assert.Equal(t, chess.Black, chess.PlayerForPly(11))
}

func TestParsePiece(t *testing.T) {
	p, err := chess.ParsePiece('N')
	require.NoError(t, err)
	assert.Equal(t, chess.Knight, p)

	_, err = chess.ParsePiece('X')
	assert.ErrorIs(t, err, chess.ErrUnknownPiece)
}
