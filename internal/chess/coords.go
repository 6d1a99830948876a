// Package chess holds the board model used to resolve and replay PGN moves:
// coordinates, pieces, the packed move format, disambiguation and snapshots.
package chess

import "fmt"

// File is a board column, 1 (a) through 8 (h). Zero means "unspecified".
type File uint8

const (
	FileA File = iota + 1
	FileB
	FileC
	FileD
	FileE
	FileF
	FileG
	FileH
)

// Rank is a board row, 1 through 8. Zero means "unspecified".
type Rank uint8

const (
	Rank1 Rank = iota + 1
	Rank2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
)

// ParseFile parses a PGN file character ('a'..'h').
func ParseFile(c byte) (File, error) {
	if c < 'a' || c > 'h' {
		return 0, fmt.Errorf("%w: file %q", ErrMalformedCoordinate, c)
	}
	return File(c-'a') + FileA, nil
}

// ParseRank parses a PGN rank character ('1'..'8').
func ParseRank(c byte) (Rank, error) {
	if c < '1' || c > '8' {
		return 0, fmt.Errorf("%w: rank %q", ErrMalformedCoordinate, c)
	}
	return Rank(c-'1') + Rank1, nil
}

func (f File) Valid() bool { return f >= FileA && f <= FileH }
func (r Rank) Valid() bool { return r >= Rank1 && r <= Rank8 }

func (f File) String() string {
	if !f.Valid() {
		return "-"
	}
	return string(rune('a' + f - FileA))
}

func (r Rank) String() string {
	if !r.Valid() {
		return "-"
	}
	return string(rune('1' + r - Rank1))
}

// Cell is a fully specified square.
type Cell struct {
	File File
	Rank Rank
}

// ParseCell parses a two character square such as "e4".
func ParseCell(s string) (Cell, error) {
	if len(s) != 2 {
		return Cell{}, fmt.Errorf("%w: square %q", ErrMalformedCoordinate, s)
	}
	f, err := ParseFile(s[0])
	if err != nil {
		return Cell{}, err
	}
	r, err := ParseRank(s[1])
	if err != nil {
		return Cell{}, err
	}
	return Cell{File: f, Rank: r}, nil
}

func (c Cell) Valid() bool { return c.File.Valid() && c.Rank.Valid() }

func (c Cell) String() string { return c.File.String() + c.Rank.String() }

// Less orders cells rank-major, then by file.
func (c Cell) Less(o Cell) bool {
	if c.Rank != o.Rank {
		return c.Rank < o.Rank
	}
	return c.File < o.File
}

// offset returns the cell df files and dr ranks away, and whether it is on the board.
func (c Cell) offset(df, dr int) (Cell, bool) {
	n := Cell{File: File(int(c.File) + df), Rank: Rank(int(c.Rank) + dr)}
	return n, n.Valid()
}

// PartialCell is an origin square as written in notation. Either coordinate
// may be missing (zero).
type PartialCell struct {
	File File
	Rank Rank
}

// Partial widens a cell into a fully defined PartialCell.
func (c Cell) Partial() PartialCell {
	return PartialCell{File: c.File, Rank: c.Rank}
}

// IsFullyDefined reports whether both coordinates are present.
func (p PartialCell) IsFullyDefined() bool {
	return p.File.Valid() && p.Rank.Valid()
}

// Cell converts p into a Cell. ok is false unless p is fully defined.
func (p PartialCell) Cell() (c Cell, ok bool) {
	if !p.IsFullyDefined() {
		return Cell{}, false
	}
	return Cell{File: p.File, Rank: p.Rank}, true
}

// Matches reports whether c satisfies every coordinate present in p.
func (p PartialCell) Matches(c Cell) bool {
	if p.File != 0 && p.File != c.File {
		return false
	}
	if p.Rank != 0 && p.Rank != c.Rank {
		return false
	}
	return true
}

func (p PartialCell) String() string {
	var s string
	if p.File != 0 {
		s += p.File.String()
	}
	if p.Rank != 0 {
		s += p.Rank.String()
	}
	return s
}
