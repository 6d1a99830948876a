package stats

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/vytor/pgnarchive/internal/models"
)

// GameEnv is what a filter expression sees of a game.
type GameEnv struct {
	White       string  `expr:"white"`
	Black       string  `expr:"black"`
	WhiteElo    int     `expr:"white_elo"`
	BlackElo    int     `expr:"black_elo"`
	AverageElo  float64 `expr:"average_elo"`
	Result      string  `expr:"result"`
	Termination string  `expr:"termination"`
	TimeClass   string  `expr:"time_class"`
	BaseSeconds int     `expr:"base_seconds"`
	Increment   int     `expr:"increment"`
	ECO         string  `expr:"eco"`
	Opening     string  `expr:"opening"`
	Year        int     `expr:"year"`
	Plies       int     `expr:"plies"`
	HasEvals    bool    `expr:"has_evals"`
	HasClocks   bool    `expr:"has_clocks"`
	Status      string  `expr:"status"`
}

func NewGameEnv(g *models.Game) GameEnv {
	env := GameEnv{
		White:       g.White,
		Black:       g.Black,
		WhiteElo:    g.WhiteElo,
		BlackElo:    g.BlackElo,
		AverageElo:  AverageRating(g),
		Result:      g.Result,
		Termination: g.Termination,
		TimeClass:   g.TimeControl.TimeClass(),
		BaseSeconds: int(g.TimeControl.Base.Seconds()),
		Increment:   int(g.TimeControl.Increment.Seconds()),
		ECO:         g.ECOCode,
		Opening:     g.OpeningName,
		Plies:       len(g.Moves),
		HasEvals:    len(g.Evals) > 0,
		HasClocks:   len(g.Clocks) > 0,
		Status:      g.Status,
	}
	if !g.Date.IsZero() {
		env.Year = g.Date.Year()
	}
	return env
}

// Expr compiles a boolean expression over GameEnv into a Filter, e.g.
// `white_elo > 2000 && time_class == "blitz"`. A game on which the
// expression fails at run time is filtered out.
func Expr(src string) (Filter, error) {
	program, err := expr.Compile(src, expr.Env(GameEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter expression: %w", err)
	}
	return exprFilter(program), nil
}

func exprFilter(program *vm.Program) Filter {
	return func(g *models.Game) bool {
		out, err := expr.Run(program, NewGameEnv(g))
		if err != nil {
			return false
		}
		ok, _ := out.(bool)
		return ok
	}
}
