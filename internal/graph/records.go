// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package graph

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/moviequeue/internal/models"
)

// The Decode helpers convert driver values into Go types. The driver returns
// integers as int64, floats as float64, lists as []any and maps as
// map[string]any; anything else is an ErrDecode.

func lookup(r Record, key string) (any, error) {
	v, ok := r[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing key %q", ErrDecode, key)
	}
	return v, nil
}

func mismatch(key string, want string, got any) error {
	return fmt.Errorf("%w: %q is %T, want %s", ErrDecode, key, got, want)
}

// DecodeString returns a required string value.
func DecodeString(r Record, key string) (string, error) {
	v, err := lookup(r, key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", mismatch(key, "string", v)
	}
	return s, nil
}

// DecodeOptionalString returns "" for a null or absent value.
func DecodeOptionalString(r Record, key string) (string, error) {
	v := r[key]
	if v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", mismatch(key, "string", v)
	}
	return s, nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) {
			return int64(n), true
		}
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// DecodeInt returns a required integer value.
func DecodeInt(r Record, key string) (int64, error) {
	v, err := lookup(r, key)
	if err != nil {
		return 0, err
	}
	n, ok := asInt64(v)
	if !ok {
		return 0, mismatch(key, "integer", v)
	}
	return n, nil
}

// DecodeOptionalInt returns nil for a null or absent value.
func DecodeOptionalInt(r Record, key string) (*int64, error) {
	v := r[key]
	if v == nil {
		return nil, nil
	}
	n, ok := asInt64(v)
	if !ok {
		return nil, mismatch(key, "integer", v)
	}
	return &n, nil
}

// DecodeFloat returns a required numeric value.
func DecodeFloat(r Record, key string) (float64, error) {
	v, err := lookup(r, key)
	if err != nil {
		return 0, err
	}
	f, ok := asFloat64(v)
	if !ok {
		return 0, mismatch(key, "number", v)
	}
	return f, nil
}

// DecodeOptionalFloat returns nil for a null or absent value.
func DecodeOptionalFloat(r Record, key string) (*float64, error) {
	v := r[key]
	if v == nil {
		return nil, nil
	}
	f, ok := asFloat64(v)
	if !ok {
		return nil, mismatch(key, "number", v)
	}
	return &f, nil
}

// DecodeStrings returns a list of strings. Null lists decode as empty and
// null elements are skipped.
func DecodeStrings(r Record, key string) ([]string, error) {
	v := r[key]
	switch list := v.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if item == nil {
				continue
			}
			s, ok := item.(string)
			if !ok {
				return nil, mismatch(key, "list of strings", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, mismatch(key, "list", v)
	}
}

// DecodeRecords returns a list of maps, such as the output of
// collect({...}) in Cypher, as Records.
func DecodeRecords(r Record, key string) ([]Record, error) {
	v := r[key]
	switch list := v.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]Record, 0, len(list))
		for _, item := range list {
			if item == nil {
				continue
			}
			m, ok := item.(map[string]any)
			if !ok {
				return nil, mismatch(key, "list of maps", item)
			}
			out = append(out, Record(m))
		}
		return out, nil
	case []map[string]any:
		out := make([]Record, len(list))
		for i, m := range list {
			out[i] = Record(m)
		}
		return out, nil
	default:
		return nil, mismatch(key, "list", v)
	}
}

// DecodeTime returns a temporal value. DateTime values arrive as time.Time;
// strings are parsed as RFC 3339.
func DecodeTime(r Record, key string) (time.Time, error) {
	v, err := lookup(r, key)
	if err != nil {
		return time.Time{}, err
	}
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q: %v", ErrDecode, key, err)
		}
		return parsed, nil
	default:
		return time.Time{}, mismatch(key, "datetime", v)
	}
}

// DecodeMovie reads a movie projected as
//
//	m.id AS id, m.title AS title, m.year AS year,
//	m.runtimeMinutes AS runtime, m.averageRating AS rating,
//	m.numVotes AS votes, genres
//
// Only id and title are required.
func DecodeMovie(r Record) (models.Movie, error) {
	var m models.Movie
	var err error

	if m.ID, err = DecodeString(r, "id"); err != nil {
		return m, err
	}
	if m.Title, err = DecodeOptionalString(r, "title"); err != nil {
		return m, err
	}

	year, err := DecodeOptionalInt(r, "year")
	if err != nil {
		return m, err
	}
	if year != nil {
		m.Year = int(*year)
	}

	runtime, err := DecodeOptionalInt(r, "runtime")
	if err != nil {
		return m, err
	}
	if runtime != nil {
		minutes := int(*runtime)
		m.RuntimeMinutes = &minutes
	}

	if m.AverageRating, err = DecodeOptionalFloat(r, "rating"); err != nil {
		return m, err
	}
	if m.NumVotes, err = DecodeOptionalInt(r, "votes"); err != nil {
		return m, err
	}
	if m.Genres, err = DecodeStrings(r, "genres"); err != nil {
		return m, err
	}
	return m, nil
}

// DecodeCollaborators reads a list of {id, name, type} maps, as produced by
// collect({id: p.id, name: p.name, type: type(rel)}). Entries with an
// unknown relationship type are skipped.
func DecodeCollaborators(r Record, key string) ([]models.Collaborator, error) {
	items, err := DecodeRecords(r, key)
	if err != nil {
		return nil, err
	}
	out := make([]models.Collaborator, 0, len(items))
	for _, item := range items {
		id, err := DecodeOptionalString(item, "id")
		if err != nil {
			return nil, err
		}
		if id == "" {
			continue
		}
		name, err := DecodeOptionalString(item, "name")
		if err != nil {
			return nil, err
		}
		typeName, err := DecodeOptionalString(item, "type")
		if err != nil {
			return nil, err
		}
		role, err := models.ParseRelationshipType(typeName)
		if err != nil {
			continue
		}
		out = append(out, models.Collaborator{PersonID: id, Name: name, Role: role})
	}
	return out, nil
}
