// Package export writes stored games to Parquet files for offline analysis.
package export

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/vytor/pgnarchive/internal/models"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

// PlyRecord holds what the movetext comments recorded for one ply. Absent
// values are written as an empty score type and a clock of -1.
type PlyRecord struct {
	Ply          int32  `parquet:"name=ply, type=INT32"`
	ScoreType    string `parquet:"name=score_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	ScoreValue   int32  `parquet:"name=score_value, type=INT32"`
	ClockSeconds int32  `parquet:"name=clock_seconds, type=INT32"`
}

// GameRecord is one exported game.
type GameRecord struct {
	ID          int64       `parquet:"name=id, type=INT64"`
	ImportID    string      `parquet:"name=import_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Site        string      `parquet:"name=site, type=BYTE_ARRAY, convertedtype=UTF8"`
	White       string      `parquet:"name=white, type=BYTE_ARRAY, convertedtype=UTF8"`
	Black       string      `parquet:"name=black, type=BYTE_ARRAY, convertedtype=UTF8"`
	WhiteElo    int32       `parquet:"name=white_elo, type=INT32"`
	BlackElo    int32       `parquet:"name=black_elo, type=INT32"`
	Result      string      `parquet:"name=result, type=BYTE_ARRAY, convertedtype=UTF8"`
	Termination string      `parquet:"name=termination, type=BYTE_ARRAY, convertedtype=UTF8"`
	TimeControl string      `parquet:"name=time_control, type=BYTE_ARRAY, convertedtype=UTF8"`
	TimeClass   string      `parquet:"name=time_class, type=BYTE_ARRAY, convertedtype=UTF8"`
	ECO         string      `parquet:"name=eco, type=BYTE_ARRAY, convertedtype=UTF8"`
	Opening     string      `parquet:"name=opening, type=BYTE_ARRAY, convertedtype=UTF8"`
	PlayedAt    int64       `parquet:"name=played_at, type=INT64"`
	MoveCount   int32       `parquet:"name=move_count, type=INT32"`
	Moves       string      `parquet:"name=moves, type=BYTE_ARRAY, convertedtype=UTF8"`
	Plies       []PlyRecord `parquet:"name=plies, type=LIST"`
}

// NewGameRecord flattens g. Moves are written in long algebraic form
// separated by spaces; PlayedAt is in Unix milliseconds, 0 when unknown.
func NewGameRecord(g *models.Game) GameRecord {
	moves := make([]string, len(g.Moves))
	for i, m := range g.Moves {
		moves[i] = m.UCI()
	}
	rec := GameRecord{
		ID:          g.ID,
		ImportID:    g.ImportID,
		Site:        g.Site,
		White:       g.White,
		Black:       g.Black,
		WhiteElo:    int32(g.WhiteElo),
		BlackElo:    int32(g.BlackElo),
		Result:      g.Result,
		Termination: g.Termination,
		TimeControl: g.TimeControl.String(),
		TimeClass:   g.TimeControl.TimeClass(),
		ECO:         g.ECOCode,
		Opening:     g.OpeningName,
		MoveCount:   int32(len(g.Moves)),
		Moves:       strings.Join(moves, " "),
	}
	if at := g.PlayedAt(); !at.IsZero() {
		rec.PlayedAt = at.UnixMilli()
	}

	n := max(len(g.Evals), len(g.Clocks))
	for i := 0; i < n; i++ {
		ply := PlyRecord{Ply: int32(i + 1), ClockSeconds: -1}
		if i < len(g.Evals) {
			e := g.Evals[i]
			if e.Mate {
				ply.ScoreType, ply.ScoreValue = "mate", int32(e.MateIn)
			} else {
				ply.ScoreType, ply.ScoreValue = "cp", int32(math.Round(e.Advantage*100))
			}
		}
		if i < len(g.Clocks) {
			ply.ClockSeconds = int32(g.Clocks[i].Seconds())
		}
		rec.Plies = append(rec.Plies, ply)
	}
	return rec
}

//go:embed schema/games.json
var schemaJSON []byte

type parquetSchema struct {
	Name   string         `json:"name"`
	Fields []parquetField `json:"fields"`
}

type parquetField struct {
	Name     string `json:"name"`
	Type     any    `json:"type"`
	Nullable bool   `json:"nullable"`
}

// WriteParquet drains records into a Snappy-compressed Parquet file at path
// and returns how many were written. The GameRecord layout is checked
// against the published schema first.
func WriteParquet(path string, records <-chan GameRecord, parallel int64) (int, error) {
	if err := validateSchema(GameRecord{}); err != nil {
		return 0, err
	}

	fileWriter, err := local.NewLocalFileWriter(path)
	if err != nil {
		return 0, err
	}
	defer fileWriter.Close()

	parquetWriter, err := writer.NewParquetWriter(fileWriter, new(GameRecord), parallel)
	if err != nil {
		return 0, err
	}
	parquetWriter.CompressionType = parquet.CompressionCodec_SNAPPY

	written := 0
	for record := range records {
		if err := parquetWriter.Write(record); err != nil {
			return written, err
		}
		written++
	}
	if err := parquetWriter.WriteStop(); err != nil {
		return written, err
	}
	return written, fileWriter.Close()
}

// ReadParquet loads every record of a file written by WriteParquet.
func ReadParquet(path string, parallel int64) ([]GameRecord, error) {
	absPath := path
	if !filepath.IsAbs(path) {
		if resolved, err := filepath.Abs(path); err == nil {
			absPath = resolved
		}
	}
	fileReader, err := local.NewLocalFileReader(absPath)
	if err != nil {
		return nil, err
	}
	defer fileReader.Close()

	parquetReader, err := reader.NewParquetReader(fileReader, new(GameRecord), parallel)
	if err != nil {
		return nil, err
	}
	defer parquetReader.ReadStop()

	num := int(parquetReader.GetNumRows())
	records := make([]GameRecord, 0, num)
	batchSize := 1024
	for offset := 0; offset < num; offset += batchSize {
		if remain := num - offset; remain < batchSize {
			batchSize = remain
		}
		batch := make([]GameRecord, batchSize)
		if err := parquetReader.Read(&batch); err != nil {
			return nil, err
		}
		records = append(records, batch...)
	}
	return records, nil
}

func validateSchema(sample any) error {
	var schema parquetSchema
	if err := json.Unmarshal(schemaJSON, &schema); err != nil {
		return fmt.Errorf("load parquet schema: %w", err)
	}
	schemaFields := make(map[string]struct{}, len(schema.Fields))
	for _, field := range schema.Fields {
		schemaFields[field.Name] = struct{}{}
	}
	structFields := structParquetFieldNames(sample)
	missing := diffKeys(schemaFields, structFields)
	extra := diffKeys(structFields, schemaFields)
	if len(missing) > 0 || len(extra) > 0 {
		return fmt.Errorf("parquet schema mismatch: missing=%v extra=%v", missing, extra)
	}
	return nil
}

func structParquetFieldNames(sample any) map[string]struct{} {
	fields := map[string]struct{}{}
	t := reflect.TypeOf(sample)
	for i := 0; i < t.NumField(); i++ {
		if name := parseParquetName(t.Field(i).Tag.Get("parquet")); name != "" {
			fields[name] = struct{}{}
		}
	}
	return fields
}

func parseParquetName(tag string) string {
	for _, part := range strings.Split(tag, ",") {
		if k, v, ok := strings.Cut(strings.TrimSpace(part), "="); ok && k == "name" {
			return v
		}
	}
	return ""
}

func diffKeys(a, b map[string]struct{}) []string {
	var diff []string
	for key := range a {
		if _, ok := b[key]; !ok {
			diff = append(diff, key)
		}
	}
	sort.Strings(diff)
	return diff
}
