// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/moviequeue/internal/models"
)

// FallbackExplanation is used when nothing specific can be said.
const FallbackExplanation = "Has matching genres or collaborators."

// primaryRoles get their own clause wording and are listed first.
var primaryRoles = []models.RelationshipType{
	models.RelActedIn,
	models.RelDirected,
	models.RelComposedScoreFor,
}

func isPrimaryRole(t models.RelationshipType) bool {
	for _, p := range primaryRoles {
		if p == t {
			return true
		}
	}
	return false
}

// GroupCollaborators groups shared collaborators by role. Primary roles
// come first in fixed order, then the rest by display name. Names within a
// group are sorted and unique. People already listed under a primary role
// are left out of the other groups.
func GroupCollaborators(shared []models.Collaborator) []RoleGroup {
	byRole := make(map[models.RelationshipType]map[string]bool)
	for _, c := range shared {
		if c.Name == "" {
			continue
		}
		if byRole[c.Role] == nil {
			byRole[c.Role] = make(map[string]bool)
		}
		byRole[c.Role][c.Name] = true
	}

	var groups []RoleGroup
	primaryPeople := make(map[string]bool)
	for _, role := range primaryRoles {
		names := sortedNames(byRole[role], nil)
		if len(names) == 0 {
			continue
		}
		for _, n := range names {
			primaryPeople[n] = true
		}
		groups = append(groups, RoleGroup{Role: role, Label: role.DisplayName(), Names: names})
	}

	var others []RoleGroup
	for role, set := range byRole {
		if isPrimaryRole(role) {
			continue
		}
		names := sortedNames(set, primaryPeople)
		if len(names) == 0 {
			continue
		}
		others = append(others, RoleGroup{Role: role, Label: role.DisplayName(), Names: names})
	}
	sort.Slice(others, func(i, j int) bool {
		if others[i].Label != others[j].Label {
			return others[i].Label < others[j].Label
		}
		return others[i].Role < others[j].Role
	})
	return append(groups, others...)
}

func sortedNames(set map[string]bool, exclude map[string]bool) []string {
	names := make([]string, 0, len(set))
	for n := range set {
		if !exclude[n] {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// Explain renders the clauses shown next to a recommendation.
func Explain(sharedGenres []string, groups []RoleGroup) []string {
	var clauses []string
	if len(sharedGenres) > 0 {
		clauses = append(clauses, fmt.Sprintf("Shares %d genre(s): %s", len(sharedGenres), strings.Join(sharedGenres, ", ")))
	}
	for _, g := range groups {
		names := strings.Join(g.Names, ", ")
		switch g.Role {
		case models.RelActedIn:
			clauses = append(clauses, fmt.Sprintf("Has %d actor(s) you know: %s", len(g.Names), names))
		case models.RelDirected:
			clauses = append(clauses, "Shares director(s): "+names)
		case models.RelComposedScoreFor:
			clauses = append(clauses, "Shares composer(s): "+names)
		default:
			clauses = append(clauses, fmt.Sprintf("Shares %s(s): %s", g.Label, names))
		}
	}
	if len(clauses) == 0 {
		return []string{FallbackExplanation}
	}
	return clauses
}
