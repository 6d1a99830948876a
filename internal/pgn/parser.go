package pgn

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vytor/pgnarchive/internal/chess"
	"github.com/vytor/pgnarchive/internal/models"
)

var (
	ErrUnknownTag = fmt.Errorf("%w: unknown header tag", chess.ErrFault)
	ErrBadHeader  = fmt.Errorf("%w: malformed header line", chess.ErrFault)
)

// HeaderError reports a header whose value could not be understood. It is
// recoverable: only the game carrying it is skipped.
type HeaderError struct {
	Tag   string
	Value string
	Err   error
}

func (e *HeaderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("header %s=%q: %v", e.Tag, e.Value, e.Err)
	}
	return fmt.Sprintf("header %s=%q: invalid value", e.Tag, e.Value)
}

func (e *HeaderError) Unwrap() error { return e.Err }

var errUnsupportedVariant = errors.New("only standard chess is supported")

var headerRe = regexp.MustCompile(`^\[(\w+)\s+"((?:[^"\\]|\\.)*)"\]$`)

// Tag values escape only backslash and double quote.
var (
	tagEscaper   = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	tagUnescaper = strings.NewReplacer(`\\`, `\`, `\"`, `"`)
)

// ignoredTags are accepted but carry nothing we keep.
var ignoredTags = map[string]struct{}{
	"Event":           {},
	"Round":           {},
	"WhiteTitle":      {},
	"BlackTitle":      {},
	"Annotator":       {},
	"PlyCount":        {},
	"ECOUrl":          {},
	"Link":            {},
	"StartTime":       {},
	"EndTime":         {},
	"EndDate":         {},
	"CurrentPosition": {},
	"Timezone":        {},
}

// ParseHeaders extracts header tags into a map without validating them.
func ParseHeaders(pgn string) map[string]string {
	out := map[string]string{}
	for _, line := range strings.Split(pgn, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "[") {
			continue
		}
		m := headerRe.FindStringSubmatch(line)
		if len(m) == 3 {
			out[m[1]] = tagUnescaper.Replace(m[2])
		}
	}
	return out
}

// ParseHeader applies one `[Tag "Value"]` line to g. Tags outside the
// allow-list are a fault; unreadable values of known tags are *HeaderError.
func ParseHeader(line string, g *models.Game) error {
	m := headerRe.FindStringSubmatch(strings.TrimSpace(line))
	if len(m) != 3 {
		return fmt.Errorf("%w: %q", ErrBadHeader, line)
	}
	tag, value := m[1], tagUnescaper.Replace(m[2])

	if _, ok := ignoredTags[tag]; ok {
		return nil
	}

	var err error
	switch tag {
	case "Date", "UTCDate":
		err = parseDate(value, g)
	case "UTCTime":
		err = parseUTCTime(value, g)
	case "TimeControl":
		g.TimeControl, err = ParseTimeControl(value)
	case "WhiteElo":
		g.WhiteElo, err = parseRating(value)
	case "BlackElo":
		g.BlackElo, err = parseRating(value)
	case "WhiteRatingDiff":
		g.WhiteRatingDiff, err = strconv.Atoi(value)
	case "BlackRatingDiff":
		g.BlackRatingDiff, err = strconv.Atoi(value)
	case "Site":
		g.Site = value
	case "White":
		g.White = value
	case "Black":
		g.Black = value
	case "ECO":
		g.ECOCode = value
	case "Opening":
		g.OpeningName = value
	case "Termination":
		g.Termination, err = parseTermination(value)
	case "Result":
		g.Result, err = parseResult(value)
	case "Variant":
		if value != "Standard" {
			err = errUnsupportedVariant
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownTag, tag)
	}

	if err != nil {
		return &HeaderError{Tag: tag, Value: value, Err: err}
	}
	return nil
}

func parseDate(value string, g *models.Game) error {
	if strings.Contains(value, "?") {
		return nil
	}
	d, err := time.Parse("2006.01.02", value)
	if err != nil {
		return err
	}
	g.Date = d
	return nil
}

func parseUTCTime(value string, g *models.Game) error {
	t, err := time.Parse("15:04:05", value)
	if err != nil {
		return err
	}
	g.UTCTime = time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second
	return nil
}

func parseRating(value string) (int, error) {
	if value == "?" || value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

// ParseTimeControl reads "base+increment" in seconds, or "-" for unlimited.
func ParseTimeControl(value string) (models.TimeControl, error) {
	if value == "-" {
		return models.TimeControl{Unlimited: true}, nil
	}
	if value == "?" {
		return models.TimeControl{}, nil
	}
	baseStr, incStr, found := strings.Cut(value, "+")
	if !found {
		incStr = "0"
	}
	base, err := strconv.Atoi(baseStr)
	if err != nil {
		return models.TimeControl{}, err
	}
	inc, err := strconv.Atoi(incStr)
	if err != nil {
		return models.TimeControl{}, err
	}
	if base < 0 || inc < 0 {
		return models.TimeControl{}, errors.New("negative time control")
	}
	return models.TimeControl{
		Base:      time.Duration(base) * time.Second,
		Increment: time.Duration(inc) * time.Second,
	}, nil
}

func parseTermination(value string) (string, error) {
	switch value {
	case models.TerminationNormal, models.TerminationTimeForfeit, models.TerminationAbandoned,
		models.TerminationRulesInfraction, models.TerminationUnterminated:
		return value, nil
	}
	return "", errors.New("unknown termination")
}

func parseResult(value string) (string, error) {
	switch value {
	case models.ResultWhiteWins, models.ResultBlackWins, models.ResultDraw, models.ResultOngoing:
		return value, nil
	}
	return "", errors.New("unknown result")
}

var gameIDRe = regexp.MustCompile(`^https?://[^/]+/(?:game/[^/]+/)?([0-9A-Za-z]+)/?$`)

// ExtractGameID extracts the game ID from a Site URL such as
// https://lichess.org/abcd1234 or https://www.chess.com/game/live/12345.
func ExtractGameID(url string) string {
	m := gameIDRe.FindStringSubmatch(url)
	if len(m) == 2 {
		return m[1]
	}
	return url
}
