package chess

import (
	"fmt"
	"strings"
)

// StartingFEN is the placement string of the standard initial position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN decodes a placement string. Only the board and side-to-move
// fields are read; the remaining four must be present but are ignored.
// Malformed input yields a *FENError.
func ParseFEN(fen string) (*Board, error) {
	if strings.TrimSpace(fen) == "" {
		return nil, &FENError{Input: fen, Reason: "empty input"}
	}
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return nil, &FENError{Input: fen, Reason: fmt.Sprintf("expected 6 fields, got %d", len(fields))}
	}
	rows := strings.Split(fields[0], "/")
	if len(rows) != 8 {
		return nil, &FENError{Input: fen, Reason: fmt.Sprintf("expected 8 ranks, got %d", len(rows))}
	}

	b := NewBoard()
	for i, row := range rows {
		rank := Rank8 - Rank(i)
		f := FileA
		for j := 0; j < len(row); j++ {
			c := row[j]
			if c >= '1' && c <= '8' {
				f += File(c - '0')
				continue
			}
			if f > FileH {
				return nil, &FENError{Input: fen, Reason: fmt.Sprintf("rank %s describes more than 8 files", rank)}
			}
			pl, ok := placementFromLetter(c)
			if !ok {
				return nil, &FENError{Input: fen, Reason: fmt.Sprintf("unknown piece letter %q on rank %s", c, rank)}
			}
			b.placements[Cell{File: f, Rank: rank}] = pl
			f++
		}
		if f != FileH+1 {
			return nil, &FENError{Input: fen, Reason: fmt.Sprintf("rank %s does not describe 8 files", rank)}
		}
	}

	switch fields[1] {
	case "w":
		b.toMove = White
	case "b":
		b.toMove = Black
	default:
		return nil, &FENError{Input: fen, Reason: fmt.Sprintf("unknown side to move %q", fields[1])}
	}
	return b, nil
}

func placementFromLetter(c byte) (Placement, bool) {
	player := White
	if c >= 'a' && c <= 'z' {
		player = Black
		c -= 'a' - 'A'
	}
	piece, err := ParsePiece(c)
	if err != nil {
		return Placement{}, false
	}
	return Placement{Piece: piece, Player: player}, true
}

// FEN encodes b as a placement string. Castling rights, en passant target
// and move counters are not tracked and are written as "- - 0 1".
func (b *Board) FEN() string {
	return b.Placement() + " " + b.sideLetter() + " - - 0 1"
}

// Placement encodes only the board field of the placement string.
func (b *Board) Placement() string {
	var sb strings.Builder
	for r := Rank8; r >= Rank1; r-- {
		empty := 0
		for f := FileA; f <= FileH; f++ {
			pl, ok := b.At(Cell{File: f, Rank: r})
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(pl.FENLetter())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if r > Rank1 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

func (b *Board) sideLetter() string {
	if b.toMove == Black {
		return "b"
	}
	return "w"
}
