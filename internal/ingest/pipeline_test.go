// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/moviequeue/internal/config"
	"github.com/tomtom215/moviequeue/internal/models"
)

const (
	fixtureTitles = "tconst\ttitleType\tprimaryTitle\toriginalTitle\tisAdult\tstartYear\tendYear\truntimeMinutes\tgenres\n" +
		"tt1\tmovie\tHeat\tHeat\t0\t1995\t\\N\t170\tAction,Crime,Drama\n" +
		"tt2\tmovie\tRonin\tRonin\t0\t1998\t\\N\t122\tAction,Crime\n" +
		"tt3\tmovie\tThief\tThief\t0\t1981\t\\N\t123\tCrime,Drama\n" +
		"tt4\tshort\tClip\tClip\t0\t2001\t\\N\t5\tAction\n" +
		"tt5\tmovie\tNight\tNight\t1\t1999\t\\N\t90\tDrama\n"

	fixtureRatings = "tconst\taverageRating\tnumVotes\n" +
		"tt1\t8.3\t700000\n" +
		"tt2\t7.2\t250000\n" +
		"tt3\t7.4\t30000\n" +
		"tt4\t6.0\t100\n" +
		"tt5\t5.1\t900\n"

	fixturePrincipals = "tconst\tordering\tnconst\tcategory\tjob\tcharacters\n" +
		"tt1\t1\tnm1\tactor\t\\N\t[\"Neil McCauley\"]\n" +
		"tt1\t2\tnm2\tactor\t\\N\t[\"Vincent Hanna\"]\n" +
		"tt1\t3\tnm3\tdirector\t\\N\t\\N\n" +
		"tt1\t4\tnm9\tgaffer\t\\N\t\\N\n" +
		"tt2\t1\tnm1\tactor\t\\N\t[\"Sam\"]\n" +
		"tt3\t1\tnm3\tdirector\t\\N\t\\N\n" +
		"tt3\t2\tnm3\twriter\t\\N\t\\N\n" +
		"tt4\t1\tnm4\tactor\t\\N\t\\N\n"

	fixturePeople = "nconst\tprimaryName\tbirthYear\tdeathYear\tprimaryProfession\tknownForTitles\n" +
		"nm1\tRobert De Niro\t1943\t\\N\tactor,producer\ttt1\n" +
		"nm2\tAl Pacino\t1940\t\\N\tactor\ttt1\n" +
		"nm3\tMichael Mann\t1943\t\\N\tdirector,writer\ttt1\n" +
		"nm4\tNobody\t\\N\t\\N\t\\N\ttt4\n" +
		"nm9\tSparky\t\\N\t\\N\t\\N\ttt1\n"
)

func writeFixtures(t *testing.T) config.IngestConfig {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"title.basics.tsv":     fixtureTitles,
		"title.ratings.tsv":    fixtureRatings,
		"title.principals.tsv": fixturePrincipals,
		"name.basics.tsv":      fixturePeople,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return config.IngestConfig{
		TitlesPath:     filepath.Join(dir, "title.basics.tsv"),
		RatingsPath:    filepath.Join(dir, "title.ratings.tsv"),
		PrincipalsPath: filepath.Join(dir, "title.principals.tsv"),
		PeoplePath:     filepath.Join(dir, "name.basics.tsv"),
		OutputDir:      filepath.Join(dir, "relationships"),
		BatchSize:      2,
		TopK:           2,
		MatureCategory: "Adult",
		NullToken:      `\N`,
		TitleTypes:     []string{"movie"},
		Parallelism:    2,
	}
}

func TestPipeline_Build(t *testing.T) {
	t.Parallel()

	cfg := writeFixtures(t)
	p := NewPipeline(cfg, nil, nil, nil)

	stats, err := p.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// Action: tt1, tt2. Adult: tt5. Crime: tt1, tt2. Drama: tt1, tt3.
	wantPerGenre := map[string]int{"Action": 2, "Adult": 1, "Crime": 2, "Drama": 2}
	if diff := cmp.Diff(wantPerGenre, stats.PerGenre); diff != "" {
		t.Errorf("per-genre mismatch (-want +got):\n%s", diff)
	}
	if stats.Selected != 4 {
		t.Errorf("Selected = %d, want 4", stats.Selected)
	}
	if stats.Classify.Dropped != 1 || stats.Classify.ByLabel["gaffer"] != 1 {
		t.Errorf("classify stats = %+v, want one gaffer dropped", stats.Classify)
	}
	// nm9 appears in a principal row of a selected movie, so it is kept.
	if stats.PeopleKept != 4 {
		t.Errorf("PeopleKept = %d, want 4", stats.PeopleKept)
	}
	if diff := cmp.Diff(map[string]int{"ACTED_IN": 3, "DIRECTED": 2, "WROTE": 1}, stats.Relationships); diff != "" {
		t.Errorf("relationship counts mismatch (-want +got):\n%s", diff)
	}

	movies, err := ReadMovies(cfg.OutputDir)
	if err != nil {
		t.Fatalf("ReadMovies() error = %v", err)
	}
	var ids []string
	for _, m := range movies {
		ids = append(ids, m.ID)
		if m.ID == "tt5" && !cmp.Equal(m.Genres, []string{"Drama", "Adult"}) {
			t.Errorf("tt5 genres = %v", m.Genres)
		}
	}
	if diff := cmp.Diff([]string{"tt1", "tt2", "tt5", "tt3"}, ids); diff != "" {
		t.Errorf("movie order mismatch (-want +got):\n%s", diff)
	}

	if _, err := os.Stat(RelationshipPath(cfg.OutputDir, models.RelWrote)); err != nil {
		t.Errorf("WROTE.tsv not written: %v", err)
	}
}

func TestPipeline_BuildMissingInput(t *testing.T) {
	t.Parallel()

	cfg := writeFixtures(t)
	cfg.RatingsPath = filepath.Join(t.TempDir(), "missing.tsv")
	if _, err := NewPipeline(cfg, nil, nil, nil).Build(context.Background()); err == nil {
		t.Error("expected an error for a missing input file")
	}
}

func TestPipeline_Load(t *testing.T) {
	t.Parallel()

	cfg := writeFixtures(t)
	g := newMergeGraph()
	progress := NewInMemoryProgress()
	p := NewPipeline(cfg, nil, g.store(), progress)

	bs, ls, err := p.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if bs.Selected != 4 || ls.Movies != 4 || ls.People != 4 {
		t.Errorf("build/load stats = %+v / %+v", bs, ls)
	}
	if diff := cmp.Diff(map[string]int{"ACTED_IN": 3, "DIRECTED": 2, "WROTE": 1}, ls.Relationships); diff != "" {
		t.Errorf("loaded relationships mismatch (-want +got):\n%s", diff)
	}
	if _, ok := g.edges["Person:nm2|ACTED_IN|Movie:tt1"]; !ok {
		t.Error("ACTED_IN edge missing")
	}

	nodes, edges := g.counts()
	if _, err := p.Load(context.Background(), false); err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if n2, e2 := g.counts(); n2 != nodes || e2 != edges {
		t.Errorf("reloading changed the graph: nodes %d→%d, edges %d→%d", nodes, n2, edges, e2)
	}
}

func TestPipeline_LoadResume(t *testing.T) {
	t.Parallel()

	cfg := writeFixtures(t)
	if _, err := NewPipeline(cfg, nil, nil, nil).Build(context.Background()); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	g := newMergeGraph()
	g.failOn = "upsert_people"
	g.failCall = 1
	progress := NewInMemoryProgress()
	p := NewPipeline(cfg, nil, g.store(), progress)

	_, err := p.Load(context.Background(), false)
	var batchErr *BatchError
	if !errors.As(err, &batchErr) || batchErr.Kind != KindPeople {
		t.Fatalf("first Load() error = %v, want a people BatchError", err)
	}

	g.failOn = ""
	moviesBefore := g.calls["upsert_movies"]

	ls, err := p.Load(context.Background(), true)
	if err != nil {
		t.Fatalf("resumed Load() error = %v", err)
	}
	if diff := cmp.Diff([]string{StageMovies}, ls.Resumed); diff != "" {
		t.Errorf("resumed stages mismatch (-want +got):\n%s", diff)
	}
	if g.calls["upsert_movies"] != moviesBefore {
		t.Error("resumed load re-applied movies")
	}

	// Everything is done now; another resume skips every stage.
	ls, err = p.Load(context.Background(), true)
	if err != nil {
		t.Fatalf("third Load() error = %v", err)
	}
	sort.Strings(ls.Resumed)
	want := []string{"movies", "people", "rel:ACTED_IN", "rel:DIRECTED", "rel:WROTE"}
	if diff := cmp.Diff(want, ls.Resumed); diff != "" {
		t.Errorf("resumed stages mismatch (-want +got):\n%s", diff)
	}
	if ls.Applied() != 0 {
		t.Errorf("Applied() = %d, want 0", ls.Applied())
	}
}

func TestPipeline_RebuildWithoutRoleDropsItsEdges(t *testing.T) {
	t.Parallel()

	cfg := writeFixtures(t)
	if _, err := NewPipeline(cfg, nil, nil, nil).Build(context.Background()); err != nil {
		t.Fatalf("first Build() error = %v", err)
	}

	mapping := models.DefaultRoleMapping()
	delete(mapping, "writer")
	roles, err := models.NewRoleTable(mapping, nil, 1)
	if err != nil {
		t.Fatalf("NewRoleTable() error = %v", err)
	}

	g := newMergeGraph()
	p := NewPipeline(cfg, roles, g.store(), NewInMemoryProgress())
	bs, ls, err := p.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, ok := bs.Relationships["WROTE"]; ok {
		t.Errorf("build classified writers: %v", bs.Relationships)
	}
	if _, ok := ls.Relationships["WROTE"]; ok {
		t.Errorf("load applied WROTE edges from a previous build: %v", ls.Relationships)
	}
	if got := g.calls["upsert_wrote"]; got != 0 {
		t.Errorf("upsert_wrote called %d times, want 0", got)
	}
}

// Relationship types load concurrently while the checkpoint is updated.
// Run with -race.
func TestPipeline_LoadParallelResume(t *testing.T) {
	t.Parallel()

	cfg := writeFixtures(t)
	cfg.Parallelism = 4
	if _, err := NewPipeline(cfg, nil, nil, nil).Build(context.Background()); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for i := 0; i < 20; i++ {
		g := newMergeGraph()
		g.failOn = "upsert_directed"
		g.failCall = 1
		p := NewPipeline(cfg, nil, g.store(), NewInMemoryProgress())

		_, err := p.Load(context.Background(), false)
		var batchErr *BatchError
		if !errors.As(err, &batchErr) || batchErr.Kind != "directed" {
			t.Fatalf("run %d: first Load() error = %v, want a directed BatchError", i, err)
		}

		g.failOn = ""
		ls, err := p.Load(context.Background(), true)
		if err != nil {
			t.Fatalf("run %d: resumed Load() error = %v", i, err)
		}
		if ls.Relationships["DIRECTED"] != 2 {
			t.Errorf("run %d: DIRECTED applied = %d, want 2", i, ls.Relationships["DIRECTED"])
		}

		got := map[string]int{}
		for key := range g.edges {
			for _, rel := range []string{"ACTED_IN", "DIRECTED", "WROTE"} {
				if strings.Contains(key, "|"+rel+"|") {
					got[rel]++
				}
			}
		}
		if diff := cmp.Diff(map[string]int{"ACTED_IN": 3, "DIRECTED": 2, "WROTE": 1}, got); diff != "" {
			t.Errorf("run %d: edges mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestPipeline_LoadWithoutStore(t *testing.T) {
	t.Parallel()

	if _, err := NewPipeline(config.IngestConfig{}, nil, nil, nil).Load(context.Background(), false); err == nil {
		t.Error("expected an error without a store")
	}
}
