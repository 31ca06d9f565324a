// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package ingest

import (
	"time"
)

// BuildStats describes one run of Pipeline.Build.
type BuildStats struct {
	Titles     ReaderStats `json:"titles"`
	Ratings    ReaderStats `json:"ratings"`
	Principals ReaderStats `json:"principals"`
	People     ReaderStats `json:"people"`

	// TitlesKept counts titles of an accepted title type.
	TitlesKept int `json:"titles_kept"`

	Selected int            `json:"selected"`
	Unranked int            `json:"unranked"`
	PerGenre map[string]int `json:"per_genre"`

	Classify ClassifyStats `json:"classify"`

	PeopleReferenced int `json:"people_referenced"`
	PeopleKept       int `json:"people_kept"`

	// Relationships counts written edges by type name.
	Relationships map[string]int `json:"relationships"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Duration returns the elapsed build time.
func (s *BuildStats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// LoadStats describes one run of Pipeline.Load.
type LoadStats struct {
	Movies        int            `json:"movies"`
	People        int            `json:"people"`
	Relationships map[string]int `json:"relationships"`

	// Resumed lists stages skipped because a checkpoint marked them done.
	Resumed []string `json:"resumed,omitempty"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Duration returns the elapsed load time.
func (s *LoadStats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Applied returns the number of rows written in this run.
func (s *LoadStats) Applied() int {
	n := s.Movies + s.People
	for _, c := range s.Relationships {
		n += c
	}
	return n
}

// RowsPerSecond returns the write rate of this run.
func (s *LoadStats) RowsPerSecond() float64 {
	secs := s.Duration().Seconds()
	if secs == 0 {
		return 0
	}
	return float64(s.Applied()) / secs
}
