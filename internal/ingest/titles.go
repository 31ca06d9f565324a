// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package ingest

import (
	"io"
	"strings"
)

// Source names used in metrics labels.
const (
	SourceTitles       = "titles"
	SourceRatings      = "ratings"
	SourcePeople       = "people"
	SourcePrincipals   = "principals"
	SourceRelationship = "relationships"
)

var titleSchema = Schema{
	{Name: "tconst", Type: ColString, Key: true},
	{Name: "titleType", Type: ColString},
	{Name: "primaryTitle", Type: ColString},
	{Name: "isAdult", Type: ColBool},
	{Name: "startYear", Type: ColInt},
	{Name: "runtimeMinutes", Type: ColInt},
	{Name: "genres", Type: ColStringList},
}

var ratingSchema = Schema{
	{Name: "tconst", Type: ColString, Key: true},
	{Name: "averageRating", Type: ColFloat},
	{Name: "numVotes", Type: ColInt},
}

var personSchema = Schema{
	{Name: "nconst", Type: ColString, Key: true},
	{Name: "primaryName", Type: ColString},
	{Name: "birthYear", Type: ColInt},
	{Name: "deathYear", Type: ColInt},
	{Name: "primaryProfession", Type: ColStringList},
}

var principalSchema = Schema{
	{Name: "tconst", Type: ColString, Key: true},
	{Name: "nconst", Type: ColString, Key: true},
	{Name: "category", Type: ColString},
	{Name: "job", Type: ColString},
	{Name: "characters", Type: ColString},
}

// TitleRow is one row of title.basics.
type TitleRow struct {
	ID             string
	TitleType      string
	Title          string
	Adult          bool
	StartYear      *int
	RuntimeMinutes *int
	Genres         []string
}

// RatingRow is one row of title.ratings. A malformed numVotes reads as nil.
type RatingRow struct {
	ID            string
	AverageRating *float64
	NumVotes      *int64
}

// PersonRow is one row of name.basics.
type PersonRow struct {
	ID          string
	Name        string
	BirthYear   *int
	DeathYear   *int
	Professions []string
}

// PrincipalRow is one row of title.principals. Characters is the raw
// payload, "" when null.
type PrincipalRow struct {
	MovieID    string
	PersonID   string
	Category   string
	Job        string
	Characters string
}

func optInt(r Row, col string) *int {
	if n, ok := r.Int(col); ok {
		v := int(n)
		return &v
	}
	return nil
}

func optString(r Row, col string) string {
	s, _ := r.String(col)
	return s
}

// ReadTitles decodes title.basics and keeps rows whose titleType is in
// titleTypes (compared case-sensitively, as IMDb publishes them).
func ReadTitles(in io.Reader, nullToken string, titleTypes []string) ([]TitleRow, ReaderStats, error) {
	rd, err := NewReader(in, SourceTitles, titleSchema, nullToken)
	if err != nil {
		return nil, ReaderStats{}, err
	}
	keep := make(map[string]bool, len(titleTypes))
	for _, t := range titleTypes {
		keep[strings.TrimSpace(t)] = true
	}

	var out []TitleRow
	err = rd.Each(func(r Row) error {
		if !keep[optString(r, "titleType")] {
			return nil
		}
		adult, _ := r.Bool("isAdult")
		genres, _ := r.List("genres")
		id, _ := r.String("tconst")
		out = append(out, TitleRow{
			ID:             id,
			TitleType:      optString(r, "titleType"),
			Title:          optString(r, "primaryTitle"),
			Adult:          adult,
			StartYear:      optInt(r, "startYear"),
			RuntimeMinutes: optInt(r, "runtimeMinutes"),
			Genres:         genres,
		})
		return nil
	})
	return out, rd.Stats(), err
}

// ReadRatings decodes title.ratings keyed by title id.
func ReadRatings(in io.Reader, nullToken string) (map[string]RatingRow, ReaderStats, error) {
	rd, err := NewReader(in, SourceRatings, ratingSchema, nullToken)
	if err != nil {
		return nil, ReaderStats{}, err
	}

	out := make(map[string]RatingRow)
	err = rd.Each(func(r Row) error {
		id, _ := r.String("tconst")
		row := RatingRow{ID: id}
		if f, ok := r.Float("averageRating"); ok {
			row.AverageRating = &f
		}
		if n, ok := r.Int("numVotes"); ok && n >= 0 {
			row.NumVotes = &n
		}
		out[id] = row
		return nil
	})
	return out, rd.Stats(), err
}

// ReadPeople decodes name.basics, keeping the people keep accepts.
func ReadPeople(in io.Reader, nullToken string, keep func(id string) bool) ([]PersonRow, ReaderStats, error) {
	rd, err := NewReader(in, SourcePeople, personSchema, nullToken)
	if err != nil {
		return nil, ReaderStats{}, err
	}

	var out []PersonRow
	err = rd.Each(func(r Row) error {
		id, _ := r.String("nconst")
		if keep != nil && !keep(id) {
			return nil
		}
		professions, _ := r.List("primaryProfession")
		out = append(out, PersonRow{
			ID:          id,
			Name:        optString(r, "primaryName"),
			BirthYear:   optInt(r, "birthYear"),
			DeathYear:   optInt(r, "deathYear"),
			Professions: professions,
		})
		return nil
	})
	return out, rd.Stats(), err
}

// ReadPrincipals streams title.principals to fn for the movies keep accepts.
// The file is too large to hold in memory, so rows are never collected here.
func ReadPrincipals(in io.Reader, nullToken string, keep func(movieID string) bool, fn func(PrincipalRow) error) (ReaderStats, error) {
	rd, err := NewReader(in, SourcePrincipals, principalSchema, nullToken)
	if err != nil {
		return ReaderStats{}, err
	}

	err = rd.Each(func(r Row) error {
		movieID, _ := r.String("tconst")
		if keep != nil && !keep(movieID) {
			return nil
		}
		personID, _ := r.String("nconst")
		return fn(PrincipalRow{
			MovieID:    movieID,
			PersonID:   personID,
			Category:   optString(r, "category"),
			Job:        optString(r, "job"),
			Characters: optString(r, "characters"),
		})
	})
	return rd.Stats(), err
}
