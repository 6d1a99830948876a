package pgn_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/pgnarchive/internal/chess"
	"github.com/vytor/pgnarchive/internal/models"
	"github.com/vytor/pgnarchive/internal/pgn"
)

func mustCell(t *testing.T, s string) chess.Cell {
	t.Helper()
	c, err := chess.ParseCell(s)
	require.NoError(t, err)
	return c
}

func TestParseMovetext_EvalsAndClocks(t *testing.T) {
	var g models.Game
	text := "1. e4 { [%eval 0.17] [%clk 1:02:30] } 1... c5 { [%eval #-1] [%clk 0:00:30] }"

	require.NoError(t, pgn.ParseMovetext(text, &g))

	require.Len(t, g.Moves, 2)
	assert.Equal(t, chess.Pawn, g.Moves[0].Piece)
	assert.Equal(t, mustCell(t, "e4"), g.Moves[0].To)
	assert.Equal(t, chess.Pawn, g.Moves[1].Piece)
	assert.Equal(t, mustCell(t, "c5"), g.Moves[1].To)

	assert.Equal(t, []models.Eval{{Advantage: 0.17}, {Mate: true, MateIn: -1}}, g.Evals)
	assert.Equal(t, []time.Duration{3750 * time.Second, 30 * time.Second}, g.Clocks)
}

func TestParseMovetext_NoComments(t *testing.T) {
	var g models.Game
	require.NoError(t, pgn.ParseMovetext("1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 1-0", &g))
	assert.Len(t, g.Moves, 6)
	assert.Empty(t, g.Evals)
	assert.Empty(t, g.Clocks)
}

func TestParseMovetext_GluedBracesAndVariations(t *testing.T) {
	var g models.Game
	text := "1. e4 {[%clk 0:03:00]} 1... e5 (1... c5 2. Nf3) {plain comment} 2. Nf3 $1 *"
	require.NoError(t, pgn.ParseMovetext(text, &g))
	require.Len(t, g.Moves, 3)
	assert.Equal(t, chess.Knight, g.Moves[2].Piece)
	assert.Equal(t, []time.Duration{3 * time.Minute}, g.Clocks)
	assert.Empty(t, g.Evals)
}

func TestParseMovetext_VariationCommentsAreSkipped(t *testing.T) {
	var g models.Game
	text := "1. e4 { [%eval 0.2] } ( 1. d4 { [%eval 9.9] [%clk 0:00:01] } ) 1... e5 { [%eval 0.3] } *"
	require.NoError(t, pgn.ParseMovetext(text, &g))
	require.Len(t, g.Moves, 2)
	assert.Equal(t, []models.Eval{{Advantage: 0.2}, {Advantage: 0.3}}, g.Evals)
	assert.Empty(t, g.Clocks)
}

func TestParseMovetext_PieceCaptures(t *testing.T) {
	var g models.Game
	require.NoError(t, pgn.ParseMovetext("1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 4. Bxc6 dxc6 5. Nxe5 Qd4 *", &g))
	require.Len(t, g.Moves, 10)
	assert.True(t, g.Moves[6].Captures)
	assert.Equal(t, chess.Bishop, g.Moves[6].Piece)
	assert.Equal(t, chess.Knight, g.Moves[8].Piece)
}

func TestParseMovetext_FaultCarriesPly(t *testing.T) {
	var g models.Game
	err := pgn.ParseMovetext("1. e4 e5 2. Nf3!", &g)
	require.Error(t, err)
	assert.ErrorIs(t, err, pgn.ErrBadAnnotation)
	assert.True(t, strings.HasPrefix(err.Error(), "ply 3"))
}

func TestParseMoveToken_Castling(t *testing.T) {
	m, err := pgn.ParseMoveToken("O-O", 6)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, chess.King, m.Piece)
	assert.Equal(t, mustCell(t, "e1").Partial(), m.From)
	assert.Equal(t, mustCell(t, "g1"), m.To)

	m, err = pgn.ParseMoveToken("O-O", 11)
	require.NoError(t, err)
	assert.Equal(t, mustCell(t, "e8").Partial(), m.From)
	assert.Equal(t, mustCell(t, "g8"), m.To)

	m, err = pgn.ParseMoveToken("O-O-O+", 3)
	require.NoError(t, err)
	assert.Equal(t, mustCell(t, "c8"), m.To)
	assert.True(t, m.Checks)

	m, err = pgn.ParseMoveToken("0-0#?!", 0)
	require.NoError(t, err)
	assert.Equal(t, mustCell(t, "g1"), m.To)
	assert.True(t, m.Mates)
	assert.Equal(t, chess.Questionable, m.Annotation)
}

func TestParseMoveToken_Ordinary(t *testing.T) {
	tests := []struct {
		token string
		want  chess.Move
	}{
		{"e4", chess.Move{Piece: chess.Pawn, To: chess.Cell{File: chess.FileE, Rank: chess.Rank4}}},
		{"exd5", chess.Move{
			Piece:    chess.Pawn,
			From:     chess.PartialCell{File: chess.FileE},
			To:       chess.Cell{File: chess.FileD, Rank: chess.Rank5},
			Captures: true,
		}},
		{"Nbd7", chess.Move{
			Piece: chess.Knight,
			From:  chess.PartialCell{File: chess.FileB},
			To:    chess.Cell{File: chess.FileD, Rank: chess.Rank7},
		}},
		{"R1a3+", chess.Move{
			Piece:  chess.Rook,
			From:   chess.PartialCell{Rank: chess.Rank1},
			To:     chess.Cell{File: chess.FileA, Rank: chess.Rank3},
			Checks: true,
		}},
		{"Qh4xe1#", chess.Move{
			Piece:    chess.Queen,
			From:     chess.PartialCell{File: chess.FileH, Rank: chess.Rank4},
			To:       chess.Cell{File: chess.FileE, Rank: chess.Rank1},
			Captures: true,
			Mates:    true,
		}},
		{"Nxe5", chess.Move{
			Piece:    chess.Knight,
			To:       chess.Cell{File: chess.FileE, Rank: chess.Rank5},
			Captures: true,
		}},
		{"Qxf7#", chess.Move{
			Piece:    chess.Queen,
			To:       chess.Cell{File: chess.FileF, Rank: chess.Rank7},
			Captures: true,
			Mates:    true,
		}},
		{"Bxc6+", chess.Move{
			Piece:    chess.Bishop,
			To:       chess.Cell{File: chess.FileC, Rank: chess.Rank6},
			Captures: true,
			Checks:   true,
		}},
		{"Kxe2", chess.Move{
			Piece:    chess.King,
			To:       chess.Cell{File: chess.FileE, Rank: chess.Rank2},
			Captures: true,
		}},
		{"Nbxd2", chess.Move{
			Piece:    chess.Knight,
			From:     chess.PartialCell{File: chess.FileB},
			To:       chess.Cell{File: chess.FileD, Rank: chess.Rank2},
			Captures: true,
		}},
		{"e8=Q", chess.Move{
			Piece:     chess.Pawn,
			To:        chess.Cell{File: chess.FileE, Rank: chess.Rank8},
			Promotion: chess.Queen,
		}},
		{"gxh1N??", chess.Move{
			Piece:      chess.Pawn,
			From:       chess.PartialCell{File: chess.FileG},
			To:         chess.Cell{File: chess.FileH, Rank: chess.Rank1},
			Captures:   true,
			Promotion:  chess.Knight,
			Annotation: chess.Blunder,
		}},
		{"12.Bb5?", chess.Move{
			Piece:      chess.Bishop,
			To:         chess.Cell{File: chess.FileB, Rank: chess.Rank5},
			Annotation: chess.Mistake,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			m, err := pgn.ParseMoveToken(tt.token, 0)
			require.NoError(t, err)
			require.NotNil(t, m)
			assert.Equal(t, tt.want, *m)
		})
	}
}

func TestParseMoveToken_NonMoves(t *testing.T) {
	for _, tok := range []string{"1.", "23...", "1-0", "0-1", "1/2-1/2", "*", "$14"} {
		m, err := pgn.ParseMoveToken(tok, 0)
		assert.NoError(t, err, tok)
		assert.Nil(t, m, tok)
	}
}

func TestParseMoveToken_Faults(t *testing.T) {
	tests := []struct {
		token string
		want  error
	}{
		{"e4!", pgn.ErrBadAnnotation},
		{"e4!!", pgn.ErrBadAnnotation},
		{"Nf3!?", pgn.ErrBadAnnotation},
		{"O-O!", pgn.ErrBadAnnotation},
		{"Zf3", pgn.ErrBadToken},
		{"e9", chess.ErrMalformedCoordinate},
		{"Nj3", chess.ErrMalformedCoordinate},
		{"e8=X", chess.ErrUnknownPiece},
		{"e8=K", pgn.ErrBadToken},
		{"hello", pgn.ErrBadToken},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			_, err := pgn.ParseMoveToken(tt.token, 0)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, chess.IsFault(err))
		})
	}
}

func TestParseComment(t *testing.T) {
	eval, hasEval, clock, hasClock := pgn.ParseComment(" [%eval -1.35] [%clk 0:09:58] ")
	assert.True(t, hasEval)
	assert.Equal(t, models.Eval{Advantage: -1.35}, eval)
	assert.True(t, hasClock)
	assert.Equal(t, 9*time.Minute+58*time.Second, clock)

	_, hasEval, _, hasClock = pgn.ParseComment("White resigns")
	assert.False(t, hasEval)
	assert.False(t, hasClock)

	eval, hasEval, _, _ = pgn.ParseComment("[%eval #4]")
	assert.True(t, hasEval)
	assert.Equal(t, models.Eval{Mate: true, MateIn: 4}, eval)
}
