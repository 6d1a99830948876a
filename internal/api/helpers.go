package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/vytor/pgnarchive/internal/errors"
	"github.com/vytor/pgnarchive/internal/models"
)

var orderByValues = map[string]bool{"played_at": true, "id": true, "move_count": true, "elo": true}

// pageParams reads page and per_page. per_page is limited to the sizes the
// listing endpoints offer.
func pageParams(q url.Values) (page, perPage int) {
	page = 1
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		page = p
	}

	perPage = 25
	switch q.Get("per_page") {
	case "10":
		perPage = 10
	case "50":
		perPage = 50
	case "100":
		perPage = 100
	}
	return page, perPage
}

// parseGameFilter builds a listing filter from query parameters. Unknown
// ordering falls back to newest first; a malformed min_elo is rejected.
func parseGameFilter(q url.Values) (models.GameFilter, error) {
	page, perPage := pageParams(q)
	filter := models.GameFilter{
		ImportID:    q.Get("import_id"),
		Site:        q.Get("site"),
		Player:      q.Get("player"),
		Result:      q.Get("result"),
		Termination: q.Get("termination"),
		TimeClass:   q.Get("time_class"),
		ECOCode:     strings.ToUpper(q.Get("eco")),
		Status:      q.Get("status"),
		Limit:       perPage,
		Offset:      (page - 1) * perPage,
		OrderBy:     q.Get("order_by"),
		OrderDir:    strings.ToUpper(q.Get("order_dir")),
	}
	if v := q.Get("min_elo"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, errors.NewValidationError("min_elo", "must be a non-negative integer")
		}
		filter.MinElo = n
	}
	if !orderByValues[filter.OrderBy] {
		filter.OrderBy = "played_at"
	}
	if filter.OrderDir != "ASC" && filter.OrderDir != "DESC" {
		filter.OrderDir = "DESC"
	}
	return filter, nil
}

// parseStatsQuery reads the aggregation stages. filter may repeat.
func parseStatsQuery(q url.Values) (models.StatsQuery, error) {
	query := models.StatsQuery{
		Filters: q["filter"],
		Expr:    q.Get("expr"),
		Bin:     q.Get("bin"),
		Map:     q.Get("map"),
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"bin_size", &query.BinSize}, {"limit", &query.Limit}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return query, errors.NewValidationError(p.name, "must be an integer")
		}
		*p.dst = n
	}
	return query, nil
}

func totalPages(total, perPage int) int {
	pages := total / perPage
	if total%perPage != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return pages
}
