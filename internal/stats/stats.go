// Package stats computes summary statistics over stored games. A run keeps
// the games every Filter accepts, groups them with a Bin and measures each
// with a Map.
package stats

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/vytor/pgnarchive/internal/analysis"
	"github.com/vytor/pgnarchive/internal/models"
)

// Filter decides whether a game takes part in a run.
type Filter func(*models.Game) bool

// Map measures one game.
type Map func(*models.Game) float64

// Bin names the group a game belongs to.
type Bin func(*models.Game) string

// HasEvals keeps games with at least one engine evaluation.
func HasEvals() Filter {
	return func(g *models.Game) bool { return len(g.Evals) > 0 }
}

// HasClocks keeps games with clock readings.
func HasClocks() Filter {
	return func(g *models.Game) bool { return len(g.Clocks) > 0 }
}

// MinRating keeps games where both players are rated at least min.
func MinRating(min int) Filter {
	return func(g *models.Game) bool { return g.WhiteElo >= min && g.BlackElo >= min }
}

// TimeControlIs keeps games of one time class ("blitz", "rapid", ...).
func TimeControlIs(class string) Filter {
	return func(g *models.Game) bool { return g.TimeControl.TimeClass() == class }
}

// Termination keeps games that ended the given way.
func Termination(reason string) Filter {
	return func(g *models.Game) bool { return g.Termination == reason }
}

// AverageRating is the mean of both ratings.
func AverageRating(g *models.Game) float64 {
	return float64(g.WhiteElo+g.BlackElo) / 2
}

// RatingDiff is White's rating minus Black's.
func RatingDiff(g *models.Game) float64 {
	return float64(g.WhiteElo - g.BlackElo)
}

// MoveCount counts plies.
func MoveCount(g *models.Game) float64 {
	return float64(len(g.Moves))
}

// EvalSwing is the spread between the best and worst advantage seen in the
// game, in pawns. Mate scores are left out.
func EvalSwing(g *models.Game) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, e := range g.Evals {
		if e.Mate {
			continue
		}
		lo = math.Min(lo, e.Advantage)
		hi = math.Max(hi, e.Advantage)
	}
	if hi < lo {
		return 0
	}
	return hi - lo
}

// Blunders counts the moves graded as blunders from recorded evaluations.
func Blunders(g *models.Game) float64 {
	blunders, _, _ := analysis.Tally(analysis.ClassifyGame(g))
	return float64(blunders)
}

// RatingBucket groups by average rating in steps of size, e.g. "1800-1899".
func RatingBucket(size int) Bin {
	if size <= 0 {
		panic("stats: rating bucket size must be positive")
	}
	return func(g *models.Game) string {
		low := int(AverageRating(g)) / size * size
		return fmt.Sprintf("%d-%d", low, low+size-1)
	}
}

// TimeClass groups by time class.
func TimeClass(g *models.Game) string { return g.TimeControl.TimeClass() }

// Result groups by game result.
func Result(g *models.Game) string { return g.Result }

// Opening groups by ECO code.
func Opening(g *models.Game) string {
	if g.ECOCode == "" {
		return "unknown"
	}
	return g.ECOCode
}

// All groups every game together.
func All(*models.Game) string { return "all" }

// ParseFilter builds a built-in filter from "name" or "name:arg", e.g.
// "min_rating:1800" or "termination:Time forfeit".
func ParseFilter(def string) (Filter, error) {
	name, arg, hasArg := strings.Cut(def, ":")
	switch name {
	case "has_evals":
		return HasEvals(), nil
	case "has_clocks":
		return HasClocks(), nil
	case "min_rating":
		n, err := strconv.Atoi(arg)
		if !hasArg || err != nil {
			return nil, fmt.Errorf("filter %q needs a numeric rating", def)
		}
		return MinRating(n), nil
	case "time_class":
		if arg == "" {
			return nil, fmt.Errorf("filter %q needs a time class", def)
		}
		return TimeControlIs(arg), nil
	case "termination":
		if arg == "" {
			return nil, fmt.Errorf("filter %q needs a termination reason", def)
		}
		return Termination(arg), nil
	}
	return nil, fmt.Errorf("unknown filter %q", name)
}

// ParseMap looks up a built-in map by name. An empty name counts games.
func ParseMap(name string) (Map, error) {
	switch name {
	case "", "count":
		return func(*models.Game) float64 { return 1 }, nil
	case "average_rating":
		return AverageRating, nil
	case "rating_diff":
		return RatingDiff, nil
	case "move_count":
		return MoveCount, nil
	case "eval_swing":
		return EvalSwing, nil
	case "blunders":
		return Blunders, nil
	}
	return nil, fmt.Errorf("unknown map %q", name)
}

// ParseBin looks up a built-in bin by name. size is used by rating buckets
// and defaults to 100.
func ParseBin(name string, size int) (Bin, error) {
	switch name {
	case "", "all":
		return All, nil
	case "rating":
		if size < 0 {
			return nil, fmt.Errorf("bin size must be positive, got %d", size)
		}
		if size == 0 {
			size = 100
		}
		return RatingBucket(size), nil
	case "time_class":
		return TimeClass, nil
	case "result":
		return Result, nil
	case "opening":
		return Opening, nil
	}
	return nil, fmt.Errorf("unknown bin %q", name)
}

type accumulator struct {
	count         int
	sum, min, max float64
}

// Aggregator collects games one at a time, for callers that page through a
// large result set.
type Aggregator struct {
	filters []Filter
	bin     Bin
	mapper  Map
	bins    map[string]*accumulator
}

func NewAggregator(filters []Filter, bin Bin, mapper Map) *Aggregator {
	return &Aggregator{filters: filters, bin: bin, mapper: mapper, bins: map[string]*accumulator{}}
}

// Add reports whether g passed the filters and was counted.
func (a *Aggregator) Add(g *models.Game) bool {
	for _, f := range a.filters {
		if !f(g) {
			return false
		}
	}
	label := a.bin(g)
	v := a.mapper(g)
	acc, ok := a.bins[label]
	if !ok {
		acc = &accumulator{min: v, max: v}
		a.bins[label] = acc
	}
	acc.count++
	acc.sum += v
	acc.min = math.Min(acc.min, v)
	acc.max = math.Max(acc.max, v)
	return true
}

// Result returns one BinStat per bin, ordered by label.
func (a *Aggregator) Result() []models.BinStat {
	out := make([]models.BinStat, 0, len(a.bins))
	for label, acc := range a.bins {
		out = append(out, models.BinStat{
			Label: label,
			Count: acc.count,
			Sum:   acc.sum,
			Mean:  acc.sum / float64(acc.count),
			Min:   acc.min,
			Max:   acc.max,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Aggregate runs games through filters, bins and measures them in one go.
func Aggregate(games []models.Game, filters []Filter, bin Bin, mapper Map) []models.BinStat {
	a := NewAggregator(filters, bin, mapper)
	for i := range games {
		a.Add(&games[i])
	}
	return a.Result()
}
