package chess

import (
	"encoding/binary"
	"fmt"
)

// EncodedMoveSize is the number of bytes one packed move occupies.
const EncodedMoveSize = 4

// Packed move layout (big-endian uint32):
//
//	bits 28-31  origin file, 0 = absent, 1-8 = a-h
//	bits 24-27  origin rank, 0 = absent, 1-8
//	bits 21-23  destination file, 0-7
//	bits 18-20  destination rank, 0-7
//	bits 15-17  piece moved
//	bit  14     captures
//	bit  13     checks
//	bit  12     mates
//	bits 10-11  annotation
//	bits  7-9   promotion piece, 0 = none
//	bits  0-6   reserved, always zero
const (
	fromFileShift   = 28
	fromRankShift   = 24
	toFileShift     = 21
	toRankShift     = 18
	pieceShift      = 15
	capturesBit     = 1 << 14
	checksBit       = 1 << 13
	matesBit        = 1 << 12
	annotationShift = 10
	promotionShift  = 7
	reservedMask    = 0x7f
)

// EncodeMove packs m into a fixed-size blob.
func EncodeMove(m Move) [EncodedMoveSize]byte {
	var v uint32
	v |= uint32(m.From.File) << fromFileShift
	v |= uint32(m.From.Rank) << fromRankShift
	v |= uint32(m.To.File-FileA) & 0x7 << toFileShift
	v |= uint32(m.To.Rank-Rank1) & 0x7 << toRankShift
	v |= uint32(m.Piece) << pieceShift
	if m.Captures {
		v |= capturesBit
	}
	if m.Checks {
		v |= checksBit
	}
	if m.Mates {
		v |= matesBit
	}
	v |= uint32(m.Annotation) << annotationShift
	v |= uint32(m.Promotion) << promotionShift

	var out [EncodedMoveSize]byte
	binary.BigEndian.PutUint32(out[:], v)
	return out
}

// DecodeMove is the inverse of EncodeMove. Any field value EncodeMove could
// not have produced is rejected with ErrBadEncoding.
func DecodeMove(b [EncodedMoveSize]byte) (Move, error) {
	v := binary.BigEndian.Uint32(b[:])
	if v&reservedMask != 0 {
		return Move{}, fmt.Errorf("%w: reserved bits set in %#08x", ErrBadEncoding, v)
	}

	fromFile := File(v >> fromFileShift & 0xf)
	if fromFile > FileH {
		return Move{}, fmt.Errorf("%w: origin file code %d", ErrBadEncoding, fromFile)
	}
	fromRank := Rank(v >> fromRankShift & 0xf)
	if fromRank > Rank8 {
		return Move{}, fmt.Errorf("%w: origin rank code %d", ErrBadEncoding, fromRank)
	}
	piece := Piece(v >> pieceShift & 0x7)
	if !piece.Valid() {
		return Move{}, fmt.Errorf("%w: piece code %d", ErrBadEncoding, piece)
	}
	promotion := Piece(v >> promotionShift & 0x7)
	if !promotion.Valid() {
		return Move{}, fmt.Errorf("%w: promotion code %d", ErrBadEncoding, promotion)
	}

	return Move{
		From: PartialCell{File: fromFile, Rank: fromRank},
		To: Cell{
			File: File(v>>toFileShift&0x7) + FileA,
			Rank: Rank(v>>toRankShift&0x7) + Rank1,
		},
		Piece:      piece,
		Captures:   v&capturesBit != 0,
		Checks:     v&checksBit != 0,
		Mates:      v&matesBit != 0,
		Annotation: Annotation(v >> annotationShift & 0x3),
		Promotion:  promotion,
	}, nil
}

// EncodeMoves concatenates the packed form of every move.
func EncodeMoves(moves []Move) []byte {
	out := make([]byte, 0, len(moves)*EncodedMoveSize)
	for _, m := range moves {
		b := EncodeMove(m)
		out = append(out, b[:]...)
	}
	return out
}

// DecodeMoves splits a blob produced by EncodeMoves back into moves.
func DecodeMoves(data []byte) ([]Move, error) {
	if len(data)%EncodedMoveSize != 0 {
		return nil, fmt.Errorf("%w: blob length %d is not a multiple of %d", ErrBadEncoding, len(data), EncodedMoveSize)
	}
	moves := make([]Move, 0, len(data)/EncodedMoveSize)
	for i := 0; i < len(data); i += EncodedMoveSize {
		m, err := DecodeMove([EncodedMoveSize]byte(data[i : i+EncodedMoveSize]))
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i/EncodedMoveSize, err)
		}
		moves = append(moves, m)
	}
	return moves, nil
}
