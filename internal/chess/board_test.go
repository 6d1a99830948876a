package chess_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/pgnarchive/internal/chess"
)

type BoardSuite struct {
	suite.Suite
}

func TestBoardSuite(t *testing.T) {
	suite.Run(t, new(BoardSuite))
}

func (s *BoardSuite) board(fen string) *chess.Board {
	b, err := chess.ParseFEN(fen)
	s.Require().NoError(err)
	return b
}

func (s *BoardSuite) cell(sq string) chess.Cell {
	c, err := chess.ParseCell(sq)
	s.Require().NoError(err)
	return c
}

func (s *BoardSuite) assertPlacement(b *chess.Board, sq string, piece chess.Piece, player chess.Player) {
	pl, ok := b.At(s.cell(sq))
	s.Require().True(ok, "expected a piece on %s", sq)
	s.Assert().Equal(chess.Placement{Piece: piece, Player: player}, pl, "placement on %s", sq)
}

func (s *BoardSuite) TestFindOrigin_PawnPushInCrowdedPosition() {
	b := s.board("3bR3/2pP2KN/qprn1kpB/2b1pR1N/P2n1B1P/1PP2pQ1/1r1QP2B/6q1 w - - 0 1")

	origin, err := b.FindOrigin(chess.Pawn, s.cell("a5"), chess.PartialCell{})
	s.Require().NoError(err)
	s.Assert().Equal(s.cell("a4"), origin)
}

func (s *BoardSuite) TestFindOrigin_Ambiguous() {
	b := s.board("4k3/8/8/8/8/8/8/1N2KN2 w - - 0 1")

	_, err := b.FindOrigin(chess.Knight, s.cell("d2"), chess.PartialCell{})
	s.Require().ErrorIs(err, chess.ErrAmbiguousOrigin)
	s.Assert().True(chess.IsFault(err))
	s.Assert().Contains(err.Error(), "too many possible origins found: [b1 f1]")

	origin, err := b.FindOrigin(chess.Knight, s.cell("d2"), chess.PartialCell{File: chess.FileB})
	s.Require().NoError(err)
	s.Assert().Equal(s.cell("b1"), origin)
}

func (s *BoardSuite) TestFindOrigin_NoCandidates() {
	b := chess.NewStartingBoard()

	_, err := b.FindOrigin(chess.Knight, s.cell("d4"), chess.PartialCell{})
	s.Require().ErrorIs(err, chess.ErrNoOrigin)
	s.Assert().Contains(err.Error(), "no possible origins found")
}

func (s *BoardSuite) TestFindOrigin_ExcludesPinnedPiece() {
	b := s.board("4r1k1/8/8/8/8/8/4N3/1N2K3 w - - 0 1")

	possible := b.FindPossibleOrigins(chess.Knight, s.cell("c3"), chess.PartialCell{})
	s.Assert().Equal([]chess.Cell{s.cell("b1"), s.cell("e2")}, possible)

	origin, err := b.FindOrigin(chess.Knight, s.cell("c3"), chess.PartialCell{})
	s.Require().NoError(err)
	s.Assert().Equal(s.cell("b1"), origin)
}

func (s *BoardSuite) TestFindOrigin_BlockedSlider() {
	b := chess.NewStartingBoard()

	_, err := b.FindOrigin(chess.Bishop, s.cell("e3"), chess.PartialCell{})
	s.Assert().ErrorIs(err, chess.ErrNoOrigin)

	_, err = b.FindOrigin(chess.Rook, s.cell("a3"), chess.PartialCell{})
	s.Assert().ErrorIs(err, chess.ErrNoOrigin)
}

func (s *BoardSuite) TestFindOrigin_PawnRules() {
	b := chess.NewStartingBoard()
	origin, err := b.FindOrigin(chess.Pawn, s.cell("e4"), chess.PartialCell{})
	s.Require().NoError(err)
	s.Assert().Equal(s.cell("e2"), origin)

	blocked := s.board("4k3/8/8/8/4p3/4P3/8/4K3 w - - 0 1")
	_, err = blocked.FindOrigin(chess.Pawn, s.cell("e4"), chess.PartialCell{})
	s.Assert().ErrorIs(err, chess.ErrNoOrigin, "pawns never capture straight ahead")

	jumpBlocked := s.board("4k3/8/8/8/8/4n3/4P3/4K3 w - - 0 1")
	_, err = jumpBlocked.FindOrigin(chess.Pawn, s.cell("e4"), chess.PartialCell{})
	s.Assert().ErrorIs(err, chess.ErrNoOrigin, "double step needs a clear path")

	emptyDiagonal := s.board("4k3/8/8/4P3/8/8/8/4K3 w - - 0 1")
	_, err = emptyDiagonal.FindOrigin(chess.Pawn, s.cell("d6"), chess.PartialCell{File: chess.FileE})
	s.Assert().ErrorIs(err, chess.ErrNoOrigin, "diagonal onto an empty cell needs an en passant victim")
}

func (s *BoardSuite) TestMovePiece_EnPassant() {
	b := s.board("4k3/8/8/3pP3/8/8/8/4K3 w - - 0 1")

	resolved, err := b.MovePiece(chess.Move{
		From:     chess.PartialCell{File: chess.FileE},
		To:       s.cell("d6"),
		Piece:    chess.Pawn,
		Captures: true,
	})
	s.Require().NoError(err)
	s.Assert().Equal(s.cell("e5").Partial(), resolved.From)
	s.assertPlacement(b, "d6", chess.Pawn, chess.White)
	s.Assert().True(b.IsCellEmpty(s.cell("d5")), "captured pawn is removed")
	s.Assert().True(b.IsCellEmpty(s.cell("e5")))
	s.Assert().Equal(chess.Black, b.ToMove())
}

func (s *BoardSuite) TestExecuteMove_Castling() {
	b := s.board("r3k2r/8/8/8/8/8/8/R3K2R w - - 0 1")

	b.ExecuteMove(chess.King, s.cell("e1"), s.cell("g1"))
	s.assertPlacement(b, "g1", chess.King, chess.White)
	s.assertPlacement(b, "f1", chess.Rook, chess.White)
	s.Assert().True(b.IsCellEmpty(s.cell("h1")))
	s.Assert().True(b.IsCellEmpty(s.cell("e1")))

	b.ExecuteMove(chess.King, s.cell("e8"), s.cell("c8"))
	s.assertPlacement(b, "c8", chess.King, chess.Black)
	s.assertPlacement(b, "d8", chess.Rook, chess.Black)
	s.Assert().True(b.IsCellEmpty(s.cell("a8")))
}

func (s *BoardSuite) TestMovePiece_Promotion() {
	b := s.board("8/P3k3/8/8/8/8/8/4K3 w - - 0 1")

	resolved, err := b.MovePiece(chess.Move{To: s.cell("a8"), Piece: chess.Pawn, Promotion: chess.Queen})
	s.Require().NoError(err)
	s.Assert().Equal("a7a8q", resolved.UCI())
	s.assertPlacement(b, "a8", chess.Queen, chess.White)
	s.Assert().True(b.IsCellEmpty(s.cell("a7")))
}

func (s *BoardSuite) TestMovePiece_FullOriginMustHoldPiece() {
	b := chess.NewStartingBoard()

	_, err := b.MovePiece(chess.Move{From: s.cell("e3").Partial(), To: s.cell("e4"), Piece: chess.Pawn})
	s.Assert().ErrorIs(err, chess.ErrEmptyOrigin)

	_, err = b.MovePiece(chess.Move{From: s.cell("e7").Partial(), To: s.cell("e5"), Piece: chess.Pawn})
	s.Assert().ErrorIs(err, chess.ErrEmptyOrigin, "white cannot move a black pawn")
}

func (s *BoardSuite) TestIsInCheck() {
	b := s.board("4k3/8/8/8/8/8/8/4K2r w - - 0 1")

	inCheck, err := b.IsInCheck(chess.White)
	s.Require().NoError(err)
	s.Assert().True(inCheck)

	inCheck, err = b.IsInCheck(chess.Black)
	s.Require().NoError(err)
	s.Assert().False(inCheck)

	blocked := s.board("4k3/8/8/8/8/8/8/4KB1r w - - 0 1")
	inCheck, err = blocked.IsInCheck(chess.White)
	s.Require().NoError(err)
	s.Assert().False(inCheck)

	_, err = chess.NewBoard().IsInCheck(chess.White)
	s.Assert().ErrorIs(err, chess.ErrMissingKing)
}

func (s *BoardSuite) TestDoesPieceCheckLoc() {
	b := s.board("4k3/8/8/3p4/8/5N2/8/4K3 w - - 0 1")

	s.Assert().True(b.DoesPieceCheckLoc(s.cell("d5"), s.cell("e4")), "black pawn attacks downwards")
	s.Assert().False(b.DoesPieceCheckLoc(s.cell("d5"), s.cell("e6")))
	s.Assert().False(b.DoesPieceCheckLoc(s.cell("d5"), s.cell("d4")))
	s.Assert().True(b.DoesPieceCheckLoc(s.cell("f3"), s.cell("e5")))
	s.Assert().False(b.DoesPieceCheckLoc(s.cell("f3"), s.cell("f5")))
	s.Assert().False(b.DoesPieceCheckLoc(s.cell("e1"), s.cell("e2")), "kings never attack")
	s.Assert().Panics(func() { b.DoesPieceCheckLoc(s.cell("a1"), s.cell("a2")) })
}

func (s *BoardSuite) TestCloneIsIndependent() {
	b := chess.NewStartingBoard()
	c := b.Clone()
	c.ExecuteMove(chess.Pawn, s.cell("e2"), s.cell("e4"))

	s.Assert().False(b.IsCellEmpty(s.cell("e2")))
	s.Assert().False(b.Equal(c))
}

func TestFEN_RoundTrip(t *testing.T) {
	start := chess.NewStartingBoard()
	encoded := start.FEN()
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1", encoded)

	decoded, err := chess.ParseFEN(encoded)
	require.NoError(t, err)
	assert.True(t, start.Equal(decoded))

	fromConst, err := chess.ParseFEN(chess.StartingFEN)
	require.NoError(t, err)
	assert.True(t, start.Equal(fromConst))

	crowded := "3bR3/2pP2KN/qprn1kpB/2b1pR1N/P2n1B1P/1PP2pQ1/1r1QP2B/6q1 b - - 0 1"
	b, err := chess.ParseFEN(crowded)
	require.NoError(t, err)
	assert.Equal(t, crowded, b.FEN())
	assert.Equal(t, chess.Black, b.ToMove())
}

func TestParseFEN_Errors(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{name: "empty", fen: ""},
		{name: "blank", fen: "   "},
		{name: "missing fields", fen: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w"},
		{name: "seven ranks", fen: "rnbqkbnr/pppppppp/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"},
		{name: "short rank", fen: "rnbqkbnr/ppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"},
		{name: "long rank", fen: "rnbqkbnr/ppppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"},
		{name: "unknown letter", fen: "rnbqkbnr/ppppxppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"},
		{name: "bad side", fen: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x - - 0 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := chess.ParseFEN(tt.fen)
			var fenErr *chess.FENError
			require.ErrorAs(t, err, &fenErr)
			assert.False(t, chess.IsFault(err), "placement errors are recoverable")
		})
	}
}

func TestBoardString(t *testing.T) {
	s := chess.NewStartingBoard().String()
	assert.Contains(t, s, "8 rnbqkbnr\n")
	assert.Contains(t, s, "1 RNBQKBNR\n")
	assert.Contains(t, s, "  abcdefgh\n")
}
