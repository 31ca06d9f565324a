// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tomtom215/moviequeue/internal/metrics"
)

// DefaultNullToken marks a missing value in IMDb TSV files.
const DefaultNullToken = `\N`

// maxLineBytes bounds a single TSV line. Principal rows with long character
// lists are the widest in practice.
const maxLineBytes = 16 << 20

// ErrMissingColumn is returned when the header lacks a schema column.
var ErrMissingColumn = errors.New("ingest: missing column")

// ColumnType is the decoded type of a TSV column.
type ColumnType int

const (
	ColString ColumnType = iota
	ColInt
	ColFloat
	ColBool
	ColStringList
)

// Column declares one column of a Schema. Rows with a null or empty Key
// column are skipped; every other bad value becomes a null field.
type Column struct {
	Name string
	Type ColumnType
	Key  bool
}

// Schema lists the columns a reader decodes. Header columns not in the
// schema are ignored.
type Schema []Column

type field struct {
	str       string
	num       int64
	flt       float64
	flag      bool
	list      []string
	null      bool
	malformed bool
}

// Row is one decoded line. Accessors return ok=false for null fields and
// for columns that are not part of the schema.
type Row struct {
	index  map[string]int
	fields []field
}

func (r Row) get(col string) (field, bool) {
	i, ok := r.index[col]
	if !ok || r.fields[i].null {
		return field{}, false
	}
	return r.fields[i], true
}

// String returns a string column.
func (r Row) String(col string) (string, bool) {
	f, ok := r.get(col)
	return f.str, ok
}

// Int returns an integer column.
func (r Row) Int(col string) (int64, bool) {
	f, ok := r.get(col)
	return f.num, ok
}

// Float returns a float column.
func (r Row) Float(col string) (float64, bool) {
	f, ok := r.get(col)
	return f.flt, ok
}

// Bool returns a boolean column.
func (r Row) Bool(col string) (bool, bool) {
	f, ok := r.get(col)
	return f.flag, ok
}

// List returns a comma-separated list column.
func (r Row) List(col string) ([]string, bool) {
	f, ok := r.get(col)
	return f.list, ok
}

// Malformed reports whether col held a value that failed to parse. Such a
// field reads as null.
func (r Row) Malformed(col string) bool {
	i, ok := r.index[col]
	return ok && r.fields[i].malformed
}

// ReaderStats counts what a Reader saw.
type ReaderStats struct {
	Rows            int64 `json:"rows"`
	Emitted         int64 `json:"emitted"`
	SkippedKeys     int64 `json:"skipped_keys"`
	SkippedShape    int64 `json:"skipped_shape"`
	MalformedFields int64 `json:"malformed_fields"`
}

// Reader decodes a tab-separated file with a header row.
// Quote characters have no special meaning.
type Reader struct {
	source    string
	nullToken string
	scanner   *bufio.Scanner
	schema    Schema
	positions []int
	index     map[string]int
	width     int
	stats     ReaderStats
	line      int64
}

// NewReader reads the header from r and prepares to decode rows against
// schema. source names the input in metrics and errors.
func NewReader(r io.Reader, source string, schema Schema, nullToken string) (*Reader, error) {
	if nullToken == "" {
		nullToken = DefaultNullToken
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("%s: read header: %w", source, err)
		}
		return nil, fmt.Errorf("%s: empty input", source)
	}
	header := strings.Split(strings.TrimSuffix(scanner.Text(), "\r"), "\t")
	headerPos := make(map[string]int, len(header))
	for i, name := range header {
		headerPos[strings.TrimPrefix(name, "\ufeff")] = i
	}

	rd := &Reader{
		source:    source,
		nullToken: nullToken,
		scanner:   scanner,
		schema:    schema,
		positions: make([]int, len(schema)),
		index:     make(map[string]int, len(schema)),
		width:     len(header),
		line:      1,
	}
	for i, col := range schema {
		pos, ok := headerPos[col.Name]
		if !ok {
			return nil, fmt.Errorf("%s: %w %q", source, ErrMissingColumn, col.Name)
		}
		rd.positions[i] = pos
		rd.index[col.Name] = i
	}
	return rd, nil
}

// Next returns the next row, or io.EOF when the input is exhausted.
func (rd *Reader) Next() (Row, error) {
	for rd.scanner.Scan() {
		rd.line++
		line := strings.TrimSuffix(rd.scanner.Text(), "\r")
		if line == "" {
			continue
		}
		rd.stats.Rows++
		metrics.IngestRowsRead.WithLabelValues(rd.source).Inc()

		parts := strings.Split(line, "\t")
		if len(parts) != rd.width {
			rd.drop("shape")
			rd.stats.SkippedShape++
			continue
		}

		row, ok := rd.decode(parts)
		if !ok {
			rd.drop("missing_key")
			rd.stats.SkippedKeys++
			continue
		}
		rd.stats.Emitted++
		return row, nil
	}
	if err := rd.scanner.Err(); err != nil {
		return Row{}, fmt.Errorf("%s: line %d: %w", rd.source, rd.line+1, err)
	}
	return Row{}, io.EOF
}

func (rd *Reader) drop(reason string) {
	metrics.IngestRowsDropped.WithLabelValues(rd.source, reason).Inc()
}

func (rd *Reader) decode(parts []string) (Row, bool) {
	fields := make([]field, len(rd.schema))
	for i, col := range rd.schema {
		raw := parts[rd.positions[i]]
		if raw == rd.nullToken || raw == "" {
			if col.Key {
				return Row{}, false
			}
			fields[i].null = true
			continue
		}
		f, ok := parseField(col.Type, raw)
		if !ok {
			rd.stats.MalformedFields++
			f = field{null: true, malformed: true}
		}
		fields[i] = f
	}
	return Row{index: rd.index, fields: fields}, true
}

func parseField(t ColumnType, raw string) (field, bool) {
	switch t {
	case ColInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		return field{num: n}, err == nil
	case ColFloat:
		f, err := strconv.ParseFloat(raw, 64)
		return field{flt: f}, err == nil
	case ColBool:
		switch raw {
		case "1":
			return field{flag: true}, true
		case "0":
			return field{flag: false}, true
		}
		b, err := strconv.ParseBool(raw)
		return field{flag: b}, err == nil
	case ColStringList:
		parts := strings.Split(raw, ",")
		list := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				list = append(list, p)
			}
		}
		return field{list: list}, true
	default:
		return field{str: raw}, true
	}
}

// Stats returns the counters so far.
func (rd *Reader) Stats() ReaderStats {
	return rd.stats
}

// Each calls fn for every row until the input is exhausted or fn fails.
func (rd *Reader) Each(fn func(Row) error) error {
	for {
		row, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}
