package services_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vytor/pgnarchive/internal/errors"
	"github.com/vytor/pgnarchive/internal/export"
	"github.com/vytor/pgnarchive/internal/models"
	"github.com/vytor/pgnarchive/internal/services"
	"github.com/vytor/pgnarchive/internal/testutil/mocks"
)

func TestAggregate_RejectsBadStages(t *testing.T) {
	svc := services.NewStatsService(new(mocks.MockGameRepository))
	tests := []struct {
		name  string
		query models.StatsQuery
		field string
	}{
		{"unknown filter", models.StatsQuery{Filters: []string{"sunny"}}, "filters"},
		{"bad expr", models.StatsQuery{Expr: "white_elo >"}, "expr"},
		{"non bool expr", models.StatsQuery{Expr: "white_elo + 1"}, "expr"},
		{"unknown bin", models.StatsQuery{Bin: "weekday"}, "bin"},
		{"negative bin size", models.StatsQuery{Bin: "rating", BinSize: -5}, "bin"},
		{"unknown map", models.StatsQuery{Map: "luck"}, "map"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Aggregate(context.Background(), models.GameFilter{}, tt.query)
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
			assert.Contains(t, appErr.Message, tt.field)
		})
	}
}

func TestAggregate_PagesUntilLimit(t *testing.T) {
	ctx := context.Background()
	gameRepo := new(mocks.MockGameRepository)

	page := func(n int, result string) []models.Game {
		games := make([]models.Game, n)
		for i := range games {
			games[i] = models.Game{WhiteElo: 1500, BlackElo: 1700, Result: result}
		}
		return games
	}
	gameRepo.On("List", ctx, mock.MatchedBy(func(f models.GameFilter) bool {
		return f.Offset == 0 && f.Limit == 500 && f.OrderBy == "id" && f.Player == "ann"
	})).Return(page(500, models.ResultWhiteWins), nil).Once()
	gameRepo.On("List", ctx, mock.MatchedBy(func(f models.GameFilter) bool {
		return f.Offset == 500 && f.Limit == 100
	})).Return(page(100, models.ResultDraw), nil).Once()

	svc := services.NewStatsService(gameRepo)
	got, err := svc.Aggregate(ctx, models.GameFilter{Player: "ann"}, models.StatsQuery{
		Filters: []string{"min_rating:1400"},
		Expr:    `black_elo > white_elo`,
		Bin:     "result",
		Map:     "average_rating",
		Limit:   600,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.ResultWhiteWins, got[0].Label)
	assert.Equal(t, 500, got[0].Count)
	assert.Equal(t, models.ResultDraw, got[1].Label)
	assert.Equal(t, 100, got[1].Count)
	assert.InDelta(t, 1600, got[1].Mean, 1e-9)
	gameRepo.AssertExpectations(t)
}

func TestExport_WritesFile(t *testing.T) {
	ctx := context.Background()
	gameRepo := new(mocks.MockGameRepository)
	game := parsedGame(t, ruyLopez, 1)
	gameRepo.On("List", mock.Anything, mock.MatchedBy(func(f models.GameFilter) bool { return f.Offset == 0 })).
		Return([]models.Game{*game}, nil)

	dir := filepath.Join(t.TempDir(), "exports")
	svc := services.NewExportService(gameRepo, services.ExportConfig{Dir: dir, Parallel: 1})
	res, err := svc.Export(ctx, models.GameFilter{}, "ruy.parquet")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ruy.parquet"), res.Path)
	assert.Equal(t, 1, res.Rows)

	records, err := export.ReadParquet(res.Path, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ann", records[0].White)
}

func TestExport_GeneratesName(t *testing.T) {
	gameRepo := new(mocks.MockGameRepository)
	gameRepo.On("List", mock.Anything, mock.Anything).Return([]models.Game{}, nil)

	svc := services.NewExportService(gameRepo, services.ExportConfig{Dir: t.TempDir()})
	res, err := svc.Export(context.Background(), models.GameFilter{}, "")
	require.NoError(t, err)
	assert.Regexp(t, `^games-\d{8}-[0-9a-f]{8}\.parquet$`, filepath.Base(res.Path))
	assert.Zero(t, res.Rows)
	_, err = os.Stat(res.Path)
	assert.NoError(t, err)
}

func TestExport_RejectsBadName(t *testing.T) {
	svc := services.NewExportService(new(mocks.MockGameRepository), services.ExportConfig{Dir: t.TempDir()})
	for _, name := range []string{"../escape.parquet", "games.csv", "sub/games.parquet"} {
		_, err := svc.Export(context.Background(), models.GameFilter{}, name)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr, name)
		assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
	}
}
