// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package ingest

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/moviequeue/internal/logging"
	"github.com/tomtom215/moviequeue/internal/models"
)

// ClassifyStats counts classifier outcomes.
type ClassifyStats struct {
	Rows       int            `json:"rows"`
	Classified int            `json:"classified"`
	Dropped    int            `json:"dropped"`
	Duplicates int            `json:"duplicates"`
	ByLabel    map[string]int `json:"dropped_by_label,omitempty"`
}

// Classifier turns flat principal rows into typed participations using a
// role table. Labels the table does not map are dropped, never defaulted.
type Classifier struct {
	roles *models.RoleTable
	log   zerolog.Logger
}

// NewClassifier creates a classifier over roles.
func NewClassifier(roles *models.RoleTable) *Classifier {
	return &Classifier{roles: roles, log: logging.WithComponent(logging.ComponentIngest)}
}

type edgeKey struct {
	movie, person string
}

// Classify groups rows by relationship type. Each list keeps input order
// and holds a (movie, person) pair at most once.
func (c *Classifier) Classify(rows []PrincipalRow) (map[models.RelationshipType][]models.Participation, ClassifyStats) {
	out := make(map[models.RelationshipType][]models.Participation)
	seen := make(map[models.RelationshipType]map[edgeKey]bool)
	stats := ClassifyStats{ByLabel: make(map[string]int)}

	for _, row := range rows {
		stats.Rows++
		t, ok := c.roles.Classify(row.Category)
		if !ok {
			stats.Dropped++
			stats.ByLabel[strings.ToLower(strings.TrimSpace(row.Category))]++
			continue
		}

		key := edgeKey{movie: row.MovieID, person: row.PersonID}
		if seen[t] == nil {
			seen[t] = make(map[edgeKey]bool)
		}
		if seen[t][key] {
			stats.Duplicates++
			continue
		}
		seen[t][key] = true

		p := models.Participation{MovieID: row.MovieID, PersonID: row.PersonID, Type: t}
		if t.CarriesCharacters() {
			p.Characters = DecodeCharacters(row.Characters)
		}
		out[t] = append(out[t], p)
		stats.Classified++
	}

	if stats.Dropped > 0 {
		c.log.Info().Int("dropped", stats.Dropped).Int("labels", len(stats.ByLabel)).Msg("Dropped unrecognized roles")
		for label, n := range stats.ByLabel {
			c.log.Debug().Str("label", label).Int("rows", n).Msg("Unrecognized role")
		}
	}
	return out, stats
}

// DecodeCharacters parses a JSON list payload such as ["Rick","Morty"].
// A null, empty or unparsable payload yields an empty list.
func DecodeCharacters(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == DefaultNullToken || !strings.HasPrefix(raw, "[") {
		return []string{}
	}
	var chars []string
	if err := json.Unmarshal([]byte(raw), &chars); err != nil {
		return []string{}
	}
	out := chars[:0]
	for _, c := range chars {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
