package chess_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/pgnarchive/internal/chess"
)

func randomMove(rng *rand.Rand) chess.Move {
	return chess.Move{
		From: chess.PartialCell{
			File: chess.File(rng.Intn(9)),
			Rank: chess.Rank(rng.Intn(9)),
		},
		To: chess.Cell{
			File: chess.FileA + chess.File(rng.Intn(8)),
			Rank: chess.Rank1 + chess.Rank(rng.Intn(8)),
		},
		Piece:      chess.Piece(rng.Intn(7)),
		Captures:   rng.Intn(2) == 1,
		Checks:     rng.Intn(2) == 1,
		Mates:      rng.Intn(2) == 1,
		Annotation: chess.Annotation(rng.Intn(4)),
		Promotion:  chess.Piece(rng.Intn(7)),
	}
}

func TestEncodeDecodeMove_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20000; i++ {
		m := randomMove(rng)
		decoded, err := chess.DecodeMove(chess.EncodeMove(m))
		require.NoError(t, err, "move %+v", m)
		require.Equal(t, m, decoded)
	}
}

func TestEncodeMove_Layout(t *testing.T) {
	m := chess.Move{To: chess.Cell{File: chess.FileE, Rank: chess.Rank4}, Piece: chess.Pawn}
	assert.Equal(t, [chess.EncodedMoveSize]byte{0x00, 0x8c, 0x80, 0x00}, chess.EncodeMove(m))
}

func TestDecodeMove_RejectsUnknownDiscriminants(t *testing.T) {
	tests := []struct {
		name string
		blob [chess.EncodedMoveSize]byte
	}{
		{name: "reserved bits", blob: [4]byte{0x00, 0x00, 0x00, 0x01}},
		{name: "origin file code 9", blob: [4]byte{0x90, 0x00, 0x00, 0x00}},
		{name: "origin rank code 15", blob: [4]byte{0x0f, 0x00, 0x00, 0x00}},
		{name: "piece code 7", blob: [4]byte{0x00, 0x03, 0x80, 0x00}},
		{name: "promotion code 7", blob: [4]byte{0x00, 0x00, 0x03, 0x80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := chess.DecodeMove(tt.blob)
			assert.ErrorIs(t, err, chess.ErrBadEncoding)
		})
	}
}

func TestEncodeDecodeMoves(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	moves := make([]chess.Move, 50)
	for i := range moves {
		moves[i] = randomMove(rng)
	}

	blob := chess.EncodeMoves(moves)
	assert.Len(t, blob, 50*chess.EncodedMoveSize)

	decoded, err := chess.DecodeMoves(blob)
	require.NoError(t, err)
	assert.Equal(t, moves, decoded)

	empty, err := chess.DecodeMoves(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = chess.DecodeMoves(blob[:5])
	assert.ErrorIs(t, err, chess.ErrBadEncoding)
}

func TestMoveNotation(t *testing.T) {
	e7 := chess.Cell{File: chess.FileE, Rank: chess.Rank7}
	m := chess.Move{
		From:      e7.Partial(),
		To:        chess.Cell{File: chess.FileE, Rank: chess.Rank8},
		Piece:     chess.Pawn,
		Checks:    true,
		Promotion: chess.Queen,
	}
	assert.Equal(t, "e7e8q", m.UCI())
	assert.Equal(t, "e7e8=Q+", m.String())

	castle := chess.Move{
		From:  chess.Cell{File: chess.FileE, Rank: chess.Rank1}.Partial(),
		To:    chess.Cell{File: chess.FileC, Rank: chess.Rank1},
		Piece: chess.King,
	}
	assert.True(t, castle.IsCastle())
	assert.Equal(t, "O-O-O", castle.String())

	partial := chess.Move{
		From:       chess.PartialCell{File: chess.FileB},
		To:         chess.Cell{File: chess.FileD, Rank: chess.Rank2},
		Piece:      chess.Knight,
		Captures:   true,
		Annotation: chess.Questionable,
	}
	assert.Equal(t, "", partial.UCI())
	assert.Equal(t, "Nbxd2?!", partial.String())
}
