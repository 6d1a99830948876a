package chesscom_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/pgnarchive/internal/chesscom"
	"github.com/vytor/pgnarchive/internal/models"
	"github.com/vytor/pgnarchive/internal/pgn"
)

const livePGN = `[Event "Live Chess"]
[Site "Chess.com"]
[Date "2024.01.05"]
[Round "-"]
[White "Ann"]
[Black "Bob"]
[Result "0-1"]
[CurrentPosition "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq -"]
[Timezone "UTC"]
[ECO "A00"]
[UTCDate "2024.01.05"]
[UTCTime "12:00:00"]
[WhiteElo "1500"]
[BlackElo "1490"]
[TimeControl "180"]
[Termination "Bob won by checkmate"]
[StartTime "12:00:00"]
[EndDate "2024.01.05"]
[EndTime "12:01:00"]
[Link "https://www.chess.com/game/live/101"]

1. f3 {[%clk 0:02:59.9]} 1... e5 {[%clk 0:02:59.1]} 2. g4 {[%clk 0:02:58.2]} 2... Qh4# {[%clk 0:02:57]} 0-1
`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/player/ann/games/archives", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"archives":["` + "http://" + r.Host + `/player/ann/games/2024/01"]}`))
	})
	mux.HandleFunc("/player/ann/games/2024/01", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"games":[{"url":"https://www.chess.com/game/live/101","pgn":` +
			jsonString(livePGN) + `,"time_class":"blitz","rules":"chess",` +
			`"white":{"username":"Ann","rating":1500,"result":"checkmated"},` +
			`"black":{"username":"Bob","rating":1490,"result":"win"}}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func jsonString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}

func TestClient_FetchArchivesAndMonthly(t *testing.T) {
	srv := newServer(t)
	c := chesscom.New(chesscom.WithBaseURL(srv.URL + "/"))

	archives, err := c.FetchArchives(context.Background(), "Ann")
	require.NoError(t, err)
	require.Equal(t, []string{srv.URL + "/player/ann/games/2024/01"}, archives)

	games, err := c.FetchMonthly(context.Background(), archives[0])
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "checkmated", games[0].White.Result)
	assert.True(t, chesscom.IsStandard(games[0]))
}

func TestClient_StatusError(t *testing.T) {
	srv := newServer(t)
	c := chesscom.New(chesscom.WithBaseURL(srv.URL))

	_, err := c.FetchArchives(context.Background(), "nobody")
	var statusErr *chesscom.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
}

func TestNormalizePGN_ParsesAsArchiveGame(t *testing.T) {
	mg := chesscom.MonthlyGame{
		URL:   "https://www.chess.com/game/live/101",
		PGN:   livePGN,
		White: chesscom.Player{Result: "checkmated"},
		Black: chesscom.Player{Result: "win"},
	}

	g, err := pgn.ParseString(chesscom.NormalizePGN(mg))
	require.NoError(t, err)
	assert.Equal(t, "https://www.chess.com/game/live/101", g.Site)
	assert.Equal(t, models.TerminationNormal, g.Termination)
	assert.Equal(t, "blitz", g.TimeControl.TimeClass())
	assert.Len(t, g.Moves, 4)
	assert.Len(t, g.Clocks, 4)
}

func TestTermination(t *testing.T) {
	tests := []struct {
		white, black string
		want         string
	}{
		{"win", "resigned", models.TerminationNormal},
		{"timeout", "win", models.TerminationTimeForfeit},
		{"timevsinsufficient", "timeout", models.TerminationTimeForfeit},
		{"abandoned", "win", models.TerminationAbandoned},
		{"agreed", "agreed", models.TerminationNormal},
	}
	for _, tt := range tests {
		mg := chesscom.MonthlyGame{White: chesscom.Player{Result: tt.white}, Black: chesscom.Player{Result: tt.black}}
		assert.Equal(t, tt.want, chesscom.Termination(mg), "%s/%s", tt.white, tt.black)
	}
}

func TestNormalizePGN_DailyTimeControl(t *testing.T) {
	mg := chesscom.MonthlyGame{PGN: "[TimeControl \"1/86400\"]\n[Result \"*\"]\n\n1. e4 *"}
	g, err := pgn.ParseString(chesscom.NormalizePGN(mg))
	require.NoError(t, err)
	assert.True(t, g.TimeControl.Unlimited)
}

func TestNormalizePGN_LinkStandsInForURL(t *testing.T) {
	mg := chesscom.MonthlyGame{PGN: livePGN}
	g, err := pgn.ParseString(chesscom.NormalizePGN(mg))
	require.NoError(t, err)
	assert.Equal(t, "https://www.chess.com/game/live/101", g.Site)
}
