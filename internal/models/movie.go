// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package models

// Movie is a recommendable title as stored on a (:Movie) node.
//
// Optional numeric fields are pointers so that "absent" is never confused
// with zero.
type Movie struct {
	// ID is the IMDb title identifier (tconst), unique across the graph.
	ID string `json:"id"`

	Title string `json:"title"`

	// Year is the release year; 0 when unknown.
	Year int `json:"year,omitempty"`

	RuntimeMinutes *int     `json:"runtime_minutes,omitempty"`
	AverageRating  *float64 `json:"average_rating,omitempty"`
	NumVotes       *int64   `json:"num_votes,omitempty"`

	// Genres is the full genre set, including the synthetic mature category.
	Genres []string `json:"genres"`

	// Adult mirrors the isAdult flag of the source row.
	Adult bool `json:"adult,omitempty"`
}

// Votes returns the vote count or 0 when absent.
func (m *Movie) Votes() int64 {
	if m.NumVotes == nil {
		return 0
	}
	return *m.NumVotes
}

// Rating returns the average rating or 0 when absent.
func (m *Movie) Rating() float64 {
	if m.AverageRating == nil {
		return 0
	}
	return *m.AverageRating
}

// Person is a cast or crew member as stored on a (:Person) node.
type Person struct {
	// ID is the IMDb name identifier (nconst).
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	BirthYear   *int     `json:"birth_year,omitempty"`
	DeathYear   *int     `json:"death_year,omitempty"`
	Professions []string `json:"professions,omitempty"`
}

// Participation is one typed edge from a Person to a Movie.
type Participation struct {
	MovieID  string           `json:"movie_id"`
	PersonID string           `json:"person_id"`
	Type     RelationshipType `json:"type"`

	// Characters is only populated for ACTED_IN.
	Characters []string `json:"characters,omitempty"`
}

// Collaborator identifies a person in a specific capacity.
type Collaborator struct {
	PersonID string           `json:"person_id"`
	Name     string           `json:"name"`
	Role     RelationshipType `json:"role"`
}

// CollaboratorKey is the (person, role) pair influence is tracked by.
type CollaboratorKey struct {
	PersonID string
	Role     RelationshipType
}

// Key returns the (person, role) pair of c.
func (c Collaborator) Key() CollaboratorKey {
	return CollaboratorKey{PersonID: c.PersonID, Role: c.Role}
}
