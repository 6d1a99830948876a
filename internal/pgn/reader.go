package pgn

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const maxLineSize = 4 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Record is one game as it appears in a PGN stream: its header lines and the
// joined movetext. Line is the 1-based line number where the game starts.
type Record struct {
	Headers  []string
	Movetext string
	Line     int
}

// Reader splits a multi-game PGN stream into records. Lines that are not
// valid UTF-8 are decoded as Windows-1252, which covers most legacy exports.
type Reader struct {
	scanner *bufio.Scanner
	line    int

	pending     string
	pendingLine int
	hasPending  bool
}

func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{scanner: s}
}

func decodeLine(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(out)
}

func (r *Reader) nextLine() (string, int, bool) {
	if r.hasPending {
		r.hasPending = false
		return r.pending, r.pendingLine, true
	}
	if !r.scanner.Scan() {
		return "", 0, false
	}
	r.line++
	b := r.scanner.Bytes()
	if r.line == 1 {
		b = bytes.TrimPrefix(b, utf8BOM)
	}
	return strings.TrimSpace(decodeLine(b)), r.line, true
}

func (r *Reader) unread(line string, n int) {
	r.pending, r.pendingLine, r.hasPending = line, n, true
}

// Next returns the next record, or io.EOF once the stream is exhausted.
func (r *Reader) Next() (Record, error) {
	var (
		rec       Record
		movetext  []string
		afterHead bool
	)
	for {
		line, n, ok := r.nextLine()
		if !ok {
			break
		}
		if line == "" {
			if len(movetext) > 0 {
				break
			}
			afterHead = len(rec.Headers) > 0
			continue
		}
		if isHeaderLine(line) {
			if len(movetext) > 0 || afterHead {
				// Header without a preceding blank line, or a game with no
				// movetext: either way the next game starts here.
				r.unread(line, n)
				break
			}
			if rec.Line == 0 {
				rec.Line = n
			}
			rec.Headers = append(rec.Headers, line)
			continue
		}
		if rec.Line == 0 {
			rec.Line = n
		}
		movetext = append(movetext, line)
	}

	if err := r.scanner.Err(); err != nil {
		return Record{}, err
	}
	if len(rec.Headers) == 0 && len(movetext) == 0 {
		return Record{}, io.EOF
	}
	rec.Movetext = strings.Join(movetext, " ")
	return rec, nil
}

// isHeaderLine tells tag pairs apart from wrapped movetext that happens to
// start with a comment command such as "[%clk".
func isHeaderLine(line string) bool {
	return strings.HasPrefix(line, "[") && !strings.HasPrefix(line, "[%")
}

// SplitGames reads every record from r.
func SplitGames(r io.Reader) ([]Record, error) {
	pr := NewReader(r)
	var out []Record
	for {
		rec, err := pr.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}
