// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package models

import (
	"fmt"
	"sort"
	"strings"
)

// RelationshipType is the closed set of participation edge types that may
// connect a Person to a Movie in the graph.
type RelationshipType int

const (
	// RelUnknown is the zero value and never written to the graph.
	RelUnknown RelationshipType = iota
	RelActedIn
	RelAppearedAsSelfIn
	RelDirected
	RelWrote
	RelProduced
	RelComposedScoreFor
	RelShot
	RelEdited
	RelCast
	RelDesignedProduction
	RelFeaturedInArchiveFootage
	RelFeaturedInArchiveSound
)

type relationshipInfo struct {
	name    string
	display string
}

// relationshipTable is the single authoritative description of every
// relationship type: its graph edge name and its human-readable role.
var relationshipTable = map[RelationshipType]relationshipInfo{
	RelActedIn:                  {name: "ACTED_IN", display: "Actor"},
	RelAppearedAsSelfIn:         {name: "APPEARED_AS_SELF_IN", display: "Self"},
	RelDirected:                 {name: "DIRECTED", display: "Director"},
	RelWrote:                    {name: "WROTE", display: "Writer"},
	RelProduced:                 {name: "PRODUCED", display: "Producer"},
	RelComposedScoreFor:         {name: "COMPOSED_SCORE_FOR", display: "Composer"},
	RelShot:                     {name: "SHOT", display: "Cinematographer"},
	RelEdited:                   {name: "EDITED", display: "Editor"},
	RelCast:                     {name: "CAST", display: "Casting Director"},
	RelDesignedProduction:       {name: "DESIGNED_PRODUCTION", display: "Production Designer"},
	RelFeaturedInArchiveFootage: {name: "FEATURED_IN_ARCHIVE_FOOTAGE", display: "Archive Footage Contributor"},
	RelFeaturedInArchiveSound:   {name: "FEATURED_IN_ARCHIVE_SOUND", display: "Archive Sound Contributor"},
}

var relationshipByName = func() map[string]RelationshipType {
	m := make(map[string]RelationshipType, len(relationshipTable))
	for t, info := range relationshipTable {
		m[info.name] = t
	}
	return m
}()

// AllRelationshipTypes returns every known relationship type in declaration order.
func AllRelationshipTypes() []RelationshipType {
	types := make([]RelationshipType, 0, len(relationshipTable))
	for t := RelActedIn; t <= RelFeaturedInArchiveSound; t++ {
		types = append(types, t)
	}
	return types
}

// ParseRelationshipType resolves a graph edge name such as "ACTED_IN".
// Matching is case-insensitive.
func ParseRelationshipType(name string) (RelationshipType, error) {
	t, ok := relationshipByName[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return RelUnknown, fmt.Errorf("unknown relationship type %q", name)
	}
	return t, nil
}

// Valid reports whether t is one of the known relationship types.
func (t RelationshipType) Valid() bool {
	_, ok := relationshipTable[t]
	return ok
}

// String returns the graph edge name, e.g. "DIRECTED".
func (t RelationshipType) String() string {
	if info, ok := relationshipTable[t]; ok {
		return info.name
	}
	return "UNKNOWN"
}

// DisplayName returns the human-readable role, e.g. "Cinematographer" for SHOT.
func (t RelationshipType) DisplayName() string {
	if info, ok := relationshipTable[t]; ok {
		return info.display
	}
	return titleCase(t.String())
}

// CarriesCharacters reports whether edges of this type hold character names.
func (t RelationshipType) CarriesCharacters() bool {
	return t == RelActedIn
}

// MarshalText encodes the type as its edge name.
func (t RelationshipType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("cannot marshal relationship type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes an edge name.
func (t *RelationshipType) UnmarshalText(text []byte) error {
	parsed, err := ParseRelationshipType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// titleCase turns "SOME_ROLE" into "Some Role".
func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(strings.ToLower(s), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// DefaultRoleMapping maps lower-cased participation category labels to the
// relationship type they produce. Labels absent from the table are dropped
// during classification.
func DefaultRoleMapping() map[string]string {
	return map[string]string{
		"actor":               RelActedIn.String(),
		"actress":             RelActedIn.String(),
		"self":                RelAppearedAsSelfIn.String(),
		"director":            RelDirected.String(),
		"writer":              RelWrote.String(),
		"producer":            RelProduced.String(),
		"composer":            RelComposedScoreFor.String(),
		"cinematographer":     RelShot.String(),
		"editor":              RelEdited.String(),
		"casting_director":    RelCast.String(),
		"production_designer": RelDesignedProduction.String(),
		"archive_footage":     RelFeaturedInArchiveFootage.String(),
		"archive_sound":       RelFeaturedInArchiveSound.String(),
	}
}

// DefaultRoleCoefficients returns the per-type scoring coefficients. Types not
// listed fall back to the default coefficient.
func DefaultRoleCoefficients() map[string]float64 {
	return map[string]float64{
		RelActedIn.String():          4,
		RelDirected.String():         3,
		RelWrote.String():            2,
		RelProduced.String():         2,
		RelComposedScoreFor.String(): 2,
	}
}

// RoleTable is the resolved form of the configured role mapping and
// coefficients. Classification and scoring both read from it.
type RoleTable struct {
	labels             map[string]RelationshipType
	coefficients       map[RelationshipType]float64
	defaultCoefficient float64
}

// NewRoleTable resolves a label→edge-name mapping and a coefficient table.
// Every mapped edge name and every coefficient key must be a known type.
func NewRoleTable(mapping map[string]string, coefficients map[string]float64, defaultCoefficient float64) (*RoleTable, error) {
	if len(mapping) == 0 {
		return nil, fmt.Errorf("role mapping is empty")
	}
	if defaultCoefficient < 0 {
		return nil, fmt.Errorf("default coefficient must be non-negative, got %v", defaultCoefficient)
	}

	rt := &RoleTable{
		labels:             make(map[string]RelationshipType, len(mapping)),
		coefficients:       make(map[RelationshipType]float64, len(coefficients)),
		defaultCoefficient: defaultCoefficient,
	}

	for label, name := range mapping {
		key := normalizeLabel(label)
		if key == "" {
			return nil, fmt.Errorf("role mapping contains an empty label")
		}
		t, err := ParseRelationshipType(name)
		if err != nil {
			return nil, fmt.Errorf("role %q: %w", label, err)
		}
		if existing, dup := rt.labels[key]; dup && existing != t {
			return nil, fmt.Errorf("role %q maps to both %s and %s", key, existing, t)
		}
		rt.labels[key] = t
	}

	for name, c := range coefficients {
		t, err := ParseRelationshipType(name)
		if err != nil {
			return nil, fmt.Errorf("coefficient: %w", err)
		}
		if c < 0 {
			return nil, fmt.Errorf("coefficient for %s must be non-negative, got %v", t, c)
		}
		rt.coefficients[t] = c
	}

	return rt, nil
}

// DefaultRoleTable builds the table from DefaultRoleMapping and
// DefaultRoleCoefficients with a default coefficient of 1.
func DefaultRoleTable() *RoleTable {
	rt, err := NewRoleTable(DefaultRoleMapping(), DefaultRoleCoefficients(), 1)
	if err != nil {
		panic(err)
	}
	return rt
}

// Classify returns the relationship type for a category label, or false if
// the label is not mapped.
func (rt *RoleTable) Classify(label string) (RelationshipType, bool) {
	t, ok := rt.labels[normalizeLabel(label)]
	return t, ok
}

// Coefficient returns the scoring weight for a relationship type.
func (rt *RoleTable) Coefficient(t RelationshipType) float64 {
	if c, ok := rt.coefficients[t]; ok {
		return c
	}
	return rt.defaultCoefficient
}

// Recognized reports whether collaborators in role t contribute influence.
func (rt *RoleTable) Recognized(t RelationshipType) bool {
	return t.Valid()
}

// Labels returns the mapped labels in sorted order.
func (rt *RoleTable) Labels() []string {
	labels := make([]string, 0, len(rt.labels))
	for l := range rt.labels {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
