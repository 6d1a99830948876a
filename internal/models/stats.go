package models

import "time"

// BinStat summarises one bin of a statistics run.
type BinStat struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// StatsQuery selects which games go into a statistics run and how they are
// binned and measured. Names refer to the built-ins of the stats package.
type StatsQuery struct {
	Filters []string `json:"filters"`
	Expr    string   `json:"expr"`
	Bin     string   `json:"bin"`
	BinSize int      `json:"bin_size"`
	Map     string   `json:"map"`
	Limit   int      `json:"limit"`
}

// ImportSummary reports the outcome of one import run.
type ImportSummary struct {
	ImportID  string    `json:"import_id"`
	Source    string    `json:"source"`
	Parsed    int       `json:"parsed"`
	Inserted  int       `json:"inserted"`
	Skipped   int       `json:"skipped"`
	Rejected  int       `json:"rejected"`
	Errors    []string  `json:"errors,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
