// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package models

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestRelationshipType_StringAndParse(t *testing.T) {
	t.Parallel()

	for _, rt := range AllRelationshipTypes() {
		parsed, err := ParseRelationshipType(rt.String())
		if err != nil {
			t.Fatalf("ParseRelationshipType(%q) error = %v", rt.String(), err)
		}
		if parsed != rt {
			t.Errorf("ParseRelationshipType(%q) = %v, want %v", rt.String(), parsed, rt)
		}
	}

	if _, err := ParseRelationshipType("GAFFED"); err == nil {
		t.Error("expected error for unknown relationship type")
	}
	if got, _ := ParseRelationshipType(" acted_in "); got != RelActedIn {
		t.Errorf("parse should be case-insensitive, got %v", got)
	}
	if RelUnknown.Valid() {
		t.Error("RelUnknown must not be valid")
	}
}

func TestRelationshipType_DisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rt   RelationshipType
		want string
	}{
		{RelShot, "Cinematographer"},
		{RelEdited, "Editor"},
		{RelCast, "Casting Director"},
		{RelProduced, "Producer"},
		{RelWrote, "Writer"},
		{RelDesignedProduction, "Production Designer"},
		{RelFeaturedInArchiveSound, "Archive Sound Contributor"},
		{RelFeaturedInArchiveFootage, "Archive Footage Contributor"},
		{RelUnknown, "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.rt.DisplayName(); got != tt.want {
			t.Errorf("%v.DisplayName() = %q, want %q", tt.rt, got, tt.want)
		}
	}
}

func TestRelationshipType_JSON(t *testing.T) {
	t.Parallel()

	p := Participation{MovieID: "tt1", PersonID: "nm1", Type: RelDirected}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}

	var decoded Participation
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if decoded.Type != RelDirected {
		t.Errorf("decoded type = %v, want DIRECTED", decoded.Type)
	}
}

func TestRoleTable_Classify(t *testing.T) {
	t.Parallel()

	rt := DefaultRoleTable()

	tests := []struct {
		label string
		want  RelationshipType
		ok    bool
	}{
		{"actor", RelActedIn, true},
		{"Actress", RelActedIn, true},
		{"  director ", RelDirected, true},
		{"self", RelAppearedAsSelfIn, true},
		{"composer", RelComposedScoreFor, true},
		{"cinematographer", RelShot, true},
		{"gaffer", RelUnknown, false},
		{"", RelUnknown, false},
	}

	for _, tt := range tests {
		got, ok := rt.Classify(tt.label)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Classify(%q) = (%v, %v), want (%v, %v)", tt.label, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRoleTable_EveryLabelMapsToOneType(t *testing.T) {
	t.Parallel()

	rt := DefaultRoleTable()
	for _, label := range rt.Labels() {
		got, ok := rt.Classify(label)
		if !ok || !got.Valid() {
			t.Errorf("label %q did not resolve to a valid type", label)
		}
	}
}

func TestRoleTable_Coefficient(t *testing.T) {
	t.Parallel()

	rt := DefaultRoleTable()

	tests := []struct {
		rt   RelationshipType
		want float64
	}{
		{RelActedIn, 4},
		{RelDirected, 3},
		{RelWrote, 2},
		{RelProduced, 2},
		{RelComposedScoreFor, 2},
		{RelShot, 1},
		{RelEdited, 1},
	}

	for _, tt := range tests {
		if got := rt.Coefficient(tt.rt); got != tt.want {
			t.Errorf("Coefficient(%v) = %v, want %v", tt.rt, got, tt.want)
		}
	}
}

func TestNewRoleTable_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mapping map[string]string
		coeffs  map[string]float64
		def     float64
	}{
		{"empty mapping", map[string]string{}, nil, 1},
		{"unknown target", map[string]string{"gaffer": "LIT"}, nil, 1},
		{"conflicting labels", map[string]string{"Actor": "ACTED_IN", "actor": "DIRECTED"}, nil, 1},
		{"unknown coefficient", map[string]string{"actor": "ACTED_IN"}, map[string]float64{"LIT": 1}, 1},
		{"negative coefficient", map[string]string{"actor": "ACTED_IN"}, map[string]float64{"ACTED_IN": -1}, 1},
		{"negative default", map[string]string{"actor": "ACTED_IN"}, nil, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewRoleTable(tt.mapping, tt.coeffs, tt.def); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDiscoveryMethod_Valid(t *testing.T) {
	t.Parallel()

	for _, m := range DiscoveryMethods() {
		if !m.Valid() {
			t.Errorf("%q should be valid", m)
		}
	}
	if DiscoveryMethod("Billboard").Valid() {
		t.Error("unexpected valid discovery method")
	}
}

func TestMovie_OptionalAccessors(t *testing.T) {
	t.Parallel()

	var m Movie
	if m.Votes() != 0 || m.Rating() != 0 {
		t.Error("absent values should read as zero")
	}

	votes := int64(42)
	rating := 7.5
	m.NumVotes = &votes
	m.AverageRating = &rating
	if m.Votes() != 42 || m.Rating() != 7.5 {
		t.Errorf("got votes=%d rating=%v", m.Votes(), m.Rating())
	}
}
