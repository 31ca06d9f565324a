// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/moviequeue/internal/models"
)

func TestRelationshipFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rels := map[models.RelationshipType][]models.Participation{
		models.RelActedIn: {
			{MovieID: "tt1", PersonID: "nm1", Type: models.RelActedIn, Characters: []string{"Rick", "Morty"}},
			{MovieID: "tt1", PersonID: "nm2", Type: models.RelActedIn, Characters: []string{}},
		},
		models.RelShot: {
			{MovieID: "tt2", PersonID: "nm3", Type: models.RelShot},
		},
	}
	if err := WriteRelationshipFiles(dir, rels); err != nil {
		t.Fatalf("WriteRelationshipFiles() error = %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "ACTED_IN.tsv"))
	if err != nil {
		t.Fatalf("read ACTED_IN.tsv: %v", err)
	}
	wantRaw := "tconst\tnconst\tcharacters\n" +
		"tt1\tnm1\t[\"Rick\",\"Morty\"]\n" +
		"tt1\tnm2\t\\N\n"
	if diff := cmp.Diff(wantRaw, string(raw)); diff != "" {
		t.Errorf("ACTED_IN.tsv mismatch (-want +got):\n%s", diff)
	}

	// A stray file with an unknown type name is skipped.
	if err := os.WriteFile(filepath.Join(dir, "HELD_BOOM_FOR.tsv"), []byte("tconst\tnconst\tcharacters\ntt1\tnm9\t\\N\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadRelationshipFiles(dir)
	if err != nil {
		t.Fatalf("LoadRelationshipFiles() error = %v", err)
	}
	if diff := cmp.Diff(rels, got); diff != "" {
		t.Errorf("loaded relationships mismatch (-want +got):\n%s", diff)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			t.Errorf("temp file %s left behind", e.Name())
		}
	}
}

func TestMoviesAndPeopleFiles(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested")
	movies, people, _ := sampleData()

	if err := WriteMovies(dir, movies); err != nil {
		t.Fatalf("WriteMovies() error = %v", err)
	}
	if err := WritePeople(dir, people); err != nil {
		t.Fatalf("WritePeople() error = %v", err)
	}

	gotMovies, err := ReadMovies(dir)
	if err != nil {
		t.Fatalf("ReadMovies() error = %v", err)
	}
	if diff := cmp.Diff(movies, gotMovies); diff != "" {
		t.Errorf("movies mismatch (-want +got):\n%s", diff)
	}
	gotPeople, err := ReadPeopleFile(dir)
	if err != nil {
		t.Fatalf("ReadPeopleFile() error = %v", err)
	}
	if diff := cmp.Diff(people, gotPeople); diff != "" {
		t.Errorf("people mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRelationshipFiles_MissingDir(t *testing.T) {
	t.Parallel()

	if _, err := LoadRelationshipFiles(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestWriteRelationshipFiles_RemovesStaleTypes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	acted := []models.Participation{{MovieID: "tt1", PersonID: "nm1", Type: models.RelActedIn, Characters: []string{"Sam"}}}
	first := map[models.RelationshipType][]models.Participation{
		models.RelActedIn: acted,
		models.RelWrote:   {{MovieID: "tt1", PersonID: "nm2", Type: models.RelWrote}},
	}
	if err := WriteRelationshipFiles(dir, first); err != nil {
		t.Fatalf("first WriteRelationshipFiles() error = %v", err)
	}

	second := map[models.RelationshipType][]models.Participation{models.RelActedIn: acted}
	if err := WriteRelationshipFiles(dir, second); err != nil {
		t.Fatalf("second WriteRelationshipFiles() error = %v", err)
	}

	if _, err := os.Stat(RelationshipPath(dir, models.RelWrote)); !os.IsNotExist(err) {
		t.Errorf("WROTE.tsv from the first build still present: %v", err)
	}
	got, err := LoadRelationshipFiles(dir)
	if err != nil {
		t.Fatalf("LoadRelationshipFiles() error = %v", err)
	}
	if diff := cmp.Diff(second, got); diff != "" {
		t.Errorf("loaded relationships mismatch (-want +got):\n%s", diff)
	}
}
