// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package recommend

import (
	"math"
	"sort"

	"github.com/tomtom215/moviequeue/internal/models"
)

// Scorer ranks candidates against a user's collaborator influence.
type Scorer struct {
	roles   *models.RoleTable
	weights Weights
}

// NewScorer creates a scorer. Role coefficients come from roles.
func NewScorer(roles *models.RoleTable, weights Weights) *Scorer {
	if roles == nil {
		roles = models.DefaultRoleTable()
	}
	return &Scorer{roles: roles, weights: weights}
}

// Score computes the total and per-term scores of one candidate and the
// explanation that goes with them.
func (s *Scorer) Score(c Candidate, influence Influence, requested map[string]bool) ScoredMovie {
	m := c.Movie
	var scores Scores

	counted := make(map[models.CollaboratorKey]bool, len(c.Collaborators))
	var shared []models.Collaborator
	for _, collab := range c.Collaborators {
		key := collab.Key()
		if counted[key] {
			continue
		}
		w, ok := influence[key]
		if !ok {
			continue
		}
		counted[key] = true
		scores.Collaboration += s.roles.Coefficient(collab.Role) * w
		shared = append(shared, collab)
	}

	scores.Popularity = s.weights.Popularity * math.Log1p(float64(m.Votes()))
	scores.Quality = s.weights.Quality * m.Rating()

	sharedGenres := make([]string, 0, len(m.Genres))
	seenGenre := make(map[string]bool, len(m.Genres))
	for _, g := range m.Genres {
		if requested[g] && !seenGenre[g] {
			seenGenre[g] = true
			sharedGenres = append(sharedGenres, g)
		}
	}
	scores.Genre = s.weights.Genre * float64(len(sharedGenres))

	groups := GroupCollaborators(shared)
	if groups == nil {
		groups = []RoleGroup{}
	}
	return ScoredMovie{
		MovieID:             m.ID,
		Title:               m.Title,
		Year:                m.Year,
		RuntimeMinutes:      m.RuntimeMinutes,
		AverageRating:       m.AverageRating,
		NumVotes:            m.NumVotes,
		Genres:              nonNilStrings(m.Genres),
		Score:               scores.Total(),
		Scores:              scores,
		SharedGenres:        sharedGenres,
		SharedCollaborators: groups,
		Explanation:         Explain(sharedGenres, groups),
	}
}

// Rank scores every candidate and returns the best limit of them, highest
// total first. Equal totals keep candidate order.
func (s *Scorer) Rank(candidates []Candidate, influence Influence, genres []string, limit int) []ScoredMovie {
	requested := make(map[string]bool, len(genres))
	for _, g := range genres {
		requested[g] = true
	}

	scored := make([]ScoredMovie, len(candidates))
	for i, c := range candidates {
		scored[i] = s.Score(c, influence, requested)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if limit >= 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
