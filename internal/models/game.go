package models

import (
	"fmt"
	"time"

	"github.com/vytor/pgnarchive/internal/chess"
)

// Game results as written in the Result tag.
const (
	ResultWhiteWins = "1-0"
	ResultBlackWins = "0-1"
	ResultDraw      = "1/2-1/2"
	ResultOngoing   = "*"
)

// Termination reasons accepted in the Termination tag.
const (
	TerminationNormal          = "Normal"
	TerminationTimeForfeit     = "Time forfeit"
	TerminationAbandoned       = "Abandoned"
	TerminationRulesInfraction = "Rules infraction"
	TerminationUnterminated    = "Unterminated"
)

// Game processing status.
const (
	StatusImported = "imported"
	StatusReplayed = "replayed"
	StatusFailed   = "failed"
)

// TimeControl is a base time plus per-move increment. Unlimited games carry
// the "-" tag value.
type TimeControl struct {
	Base      time.Duration `json:"base"`
	Increment time.Duration `json:"increment"`
	Unlimited bool          `json:"unlimited"`
}

func (tc TimeControl) String() string {
	if tc.Unlimited {
		return "-"
	}
	if tc.Base == 0 && tc.Increment == 0 {
		return ""
	}
	return fmt.Sprintf("%d+%d", int(tc.Base.Seconds()), int(tc.Increment.Seconds()))
}

// TimeClass buckets the control by estimated duration for 40 moves, the way
// most servers label games.
func (tc TimeControl) TimeClass() string {
	if tc.Unlimited {
		return "correspondence"
	}
	if tc.Base == 0 && tc.Increment == 0 {
		return "unknown"
	}
	estimate := tc.Base + 40*tc.Increment
	switch {
	case estimate < 30*time.Second:
		return "ultrabullet"
	case estimate < 3*time.Minute:
		return "bullet"
	case estimate < 8*time.Minute:
		return "blitz"
	case estimate < 25*time.Minute:
		return "rapid"
	default:
		return "classical"
	}
}

// Eval is an engine evaluation copied from a movetext comment: either a
// pawn advantage from White's side or a forced mate in MateIn moves.
type Eval struct {
	Mate      bool    `json:"mate,omitempty"`
	MateIn    int     `json:"mate_in,omitempty"`
	Advantage float64 `json:"advantage,omitempty"`
}

type Game struct {
	ID              int64           `json:"id"`
	ImportID        string          `json:"import_id"`
	Site            string          `json:"site"`
	White           string          `json:"white"`
	Black           string          `json:"black"`
	WhiteElo        int             `json:"white_elo"`
	BlackElo        int             `json:"black_elo"`
	WhiteRatingDiff int             `json:"white_rating_diff"`
	BlackRatingDiff int             `json:"black_rating_diff"`
	Date            time.Time       `json:"date"`
	UTCTime         time.Duration   `json:"utc_time"`
	TimeControl     TimeControl     `json:"time_control"`
	ECOCode         string          `json:"eco_code"`
	OpeningName     string          `json:"opening_name"`
	Result          string          `json:"result"`
	Termination     string          `json:"termination"`
	Moves           []chess.Move    `json:"-"`
	Evals           []Eval          `json:"evals"`
	Clocks          []time.Duration `json:"clocks"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PlayedAt combines the Date and UTCTime tags.
func (g *Game) PlayedAt() time.Time {
	if g.Date.IsZero() {
		return time.Time{}
	}
	return g.Date.Add(g.UTCTime)
}

// MoveList renders every move in PGN notation.
func (g *Game) MoveList() []string {
	out := make([]string, len(g.Moves))
	for i, m := range g.Moves {
		out[i] = m.String()
	}
	return out
}

// GameFilter narrows game listings. Zero values are ignored. Player matches
// either side; MinElo applies to the weaker of the two ratings.
type GameFilter struct {
	ImportID    string
	Site        string
	Player      string
	Result      string
	Termination string
	TimeClass   string
	ECOCode     string
	Status      string
	MinElo      int
	Limit       int
	Offset      int
	OrderBy     string
	OrderDir    string
}
