// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package recommend

import (
	"github.com/tomtom215/moviequeue/internal/models"
)

// AggregateInfluence sums, for every (person, role) pair, rating/maxRating
// over all movies the user rated. Low ratings contribute proportionally
// less; negative ratings contribute nothing. A pair counts once per movie.
func AggregateInfluence(rated []RatedMovie, maxRating float64, roles *models.RoleTable) Influence {
	influence := make(Influence)
	if maxRating <= 0 {
		return influence
	}

	for _, rm := range rated {
		weight := rm.Rating / maxRating
		if weight <= 0 {
			continue
		}
		seen := make(map[models.CollaboratorKey]bool, len(rm.Collaborators))
		for _, c := range rm.Collaborators {
			if c.PersonID == "" || !roles.Recognized(c.Role) {
				continue
			}
			key := c.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			influence[key] += weight
		}
	}
	return influence
}
