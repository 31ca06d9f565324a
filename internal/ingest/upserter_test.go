// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/moviequeue/internal/graph"
	"github.com/tomtom215/moviequeue/internal/graph/graphtest"
	"github.com/tomtom215/moviequeue/internal/models"
)

// mergeGraph applies upsert statements with MERGE / ON CREATE SET
// semantics: an existing node or edge is never modified.
type mergeGraph struct {
	mu    sync.Mutex
	nodes map[string]map[string]any // "Label:key" -> properties
	edges map[string]map[string]any // "from|TYPE|to" -> properties

	// failOn makes the named statement fail at the given call number.
	failOn   string
	failCall int
	calls    map[string]int
}

func newMergeGraph() *mergeGraph {
	return &mergeGraph{
		nodes: map[string]map[string]any{},
		edges: map[string]map[string]any{},
		calls: map[string]int{},
	}
}

func (g *mergeGraph) store() *graphtest.Store {
	return &graphtest.Store{Handler: g.handle}
}

func (g *mergeGraph) mergeNode(key string, props map[string]any) {
	if _, ok := g.nodes[key]; !ok {
		g.nodes[key] = props
	}
}

func (g *mergeGraph) mergeEdge(key string, props map[string]any) {
	if _, ok := g.edges[key]; !ok {
		g.edges[key] = props
	}
}

func (g *mergeGraph) handle(_ context.Context, mode string, q graph.Query) ([]graph.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls[q.Name]++
	if q.Name == g.failOn && g.calls[q.Name] == g.failCall {
		return nil, errors.New("write conflict")
	}
	if mode == graph.ModeAuto {
		return nil, nil // schema statements
	}
	if !strings.Contains(q.Cypher, "MERGE") {
		return nil, fmt.Errorf("statement %s does not use MERGE", q.Name)
	}

	rows, _ := q.Params["rows"].([]map[string]any)
	switch q.Name {
	case "upsert_movies", "upsert_people":
		if !strings.Contains(q.Cypher, "ON CREATE SET") {
			return nil, fmt.Errorf("statement %s overwrites existing properties", q.Name)
		}
	}

	switch q.Name {
	case "upsert_movies":
		for _, row := range rows {
			id := "Movie:" + row["id"].(string)
			g.mergeNode(id, map[string]any{"title": row["title"], "votes": row["votes"]})
			for _, genre := range row["genres"].([]string) {
				g.mergeNode("Genre:"+genre, map[string]any{})
				g.mergeEdge(id+"|HAS_GENRE|Genre:"+genre, map[string]any{})
			}
		}
	case "upsert_people":
		for _, row := range rows {
			id := "Person:" + row["id"].(string)
			g.mergeNode(id, map[string]any{"name": row["name"]})
			for _, prof := range row["professions"].([]string) {
				g.mergeNode("Profession:"+prof, map[string]any{})
				g.mergeEdge(id+"|HAS_PROFESSION|Profession:"+prof, map[string]any{})
			}
		}
	default:
		relType := strings.ToUpper(strings.TrimPrefix(q.Name, "upsert_"))
		if !strings.Contains(q.Cypher, "[r:"+relType+"]") {
			return nil, fmt.Errorf("statement %s does not merge %s", q.Name, relType)
		}
		for _, row := range rows {
			person := "Person:" + row["person"].(string)
			movie := "Movie:" + row["movie"].(string)
			_, pok := g.nodes[person]
			_, mok := g.nodes[movie]
			if !pok || !mok {
				continue // MATCH finds nothing
			}
			props := map[string]any{}
			if chars, ok := row["characters"]; ok {
				props["characters"] = chars
			}
			g.mergeEdge(person+"|"+relType+"|"+movie, props)
		}
	}
	return nil, nil
}

func (g *mergeGraph) counts() (nodes, edges int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes), len(g.edges)
}

func TestChunk(t *testing.T) {
	t.Parallel()

	items := []int{1, 2, 3, 4, 5, 6, 7}
	tests := []struct {
		size int
		want [][]int
	}{
		{3, [][]int{{1, 2, 3}, {4, 5, 6}, {7}}},
		{7, [][]int{{1, 2, 3, 4, 5, 6, 7}}},
		{100, [][]int{{1, 2, 3, 4, 5, 6, 7}}},
		{1, [][]int{{1}, {2}, {3}, {4}, {5}, {6}, {7}}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, Chunk(items, tt.size)); diff != "" {
			t.Errorf("Chunk(size=%d) mismatch (-want +got):\n%s", tt.size, diff)
		}
	}
	if got := Chunk([]int(nil), 3); got != nil {
		t.Errorf("Chunk(nil) = %v, want nil", got)
	}
	if got := Chunk(items, 0); len(got) != 1 {
		t.Errorf("Chunk(size=0) should fall back to the default batch size, got %d chunks", len(got))
	}
}

func sampleData() ([]models.Movie, []models.Person, map[models.RelationshipType][]models.Participation) {
	movies := []models.Movie{
		movie("tt1", 100, "Drama", "Crime"),
		movie("tt2", 50, "Drama"),
		movie("tt3", 10, "Comedy"),
	}
	people := []models.Person{
		{ID: "nm1", Name: "Ann", Professions: []string{"actress"}},
		{ID: "nm2", Name: "Bob", Professions: []string{"director", "writer"}},
	}
	rels := map[models.RelationshipType][]models.Participation{
		models.RelActedIn: {
			{MovieID: "tt1", PersonID: "nm1", Type: models.RelActedIn, Characters: []string{"Eve"}},
			{MovieID: "tt2", PersonID: "nm1", Type: models.RelActedIn},
		},
		models.RelDirected: {
			{MovieID: "tt1", PersonID: "nm2", Type: models.RelDirected},
			{MovieID: "tt9", PersonID: "nm2", Type: models.RelDirected}, // movie not loaded
		},
	}
	return movies, people, rels
}

func applyAll(t *testing.T, u *Upserter) {
	t.Helper()
	ctx := context.Background()
	movies, people, rels := sampleData()
	if _, err := u.UpsertMovies(ctx, movies); err != nil {
		t.Fatalf("UpsertMovies() error = %v", err)
	}
	if _, err := u.UpsertPeople(ctx, people); err != nil {
		t.Fatalf("UpsertPeople() error = %v", err)
	}
	for rt, list := range rels {
		if _, err := u.UpsertParticipations(ctx, rt, list); err != nil {
			t.Fatalf("UpsertParticipations(%s) error = %v", rt, err)
		}
	}
}

func TestUpserter_Idempotent(t *testing.T) {
	t.Parallel()

	g := newMergeGraph()
	u := NewUpserter(g.store(), 2, 0)

	applyAll(t, u)
	nodes, edges := g.counts()

	// 3 movies + 3 genres + 2 people + 3 professions.
	if nodes != 11 {
		t.Errorf("nodes after first pass = %d, want 11", nodes)
	}
	// 4 HAS_GENRE + 3 HAS_PROFESSION + 2 ACTED_IN + 1 DIRECTED.
	if edges != 10 {
		t.Errorf("edges after first pass = %d, want 10", edges)
	}

	applyAll(t, u)
	n2, e2 := g.counts()
	if n2 != nodes || e2 != edges {
		t.Errorf("second pass changed the graph: nodes %d→%d, edges %d→%d", nodes, n2, edges, e2)
	}

	if got := g.edges["Person:nm1|ACTED_IN|Movie:tt1"]["characters"]; !cmp.Equal(got, []string{"Eve"}) {
		t.Errorf("ACTED_IN characters = %v", got)
	}
	if _, ok := g.edges["Person:nm2|DIRECTED|Movie:tt1"]["characters"]; ok {
		t.Error("DIRECTED edge must not carry characters")
	}
}

func TestUpserter_SameTitleTwiceLeavesOneNode(t *testing.T) {
	t.Parallel()

	g := newMergeGraph()
	u := NewUpserter(g.store(), 1, 0)

	first := movie("tt1", 100, "Drama")
	second := movie("tt1", 999, "Drama")
	second.Title = "Renamed"
	if _, err := u.UpsertMovies(context.Background(), []models.Movie{first, second}); err != nil {
		t.Fatalf("UpsertMovies() error = %v", err)
	}

	movieNodes := 0
	for key := range g.nodes {
		if strings.HasPrefix(key, "Movie:") {
			movieNodes++
		}
	}
	if movieNodes != 1 {
		t.Errorf("Movie nodes = %d, want 1", movieNodes)
	}
	if title := g.nodes["Movie:tt1"]["title"]; title != "tt1" {
		t.Errorf("title = %v, properties must only be set on create", title)
	}
}

func TestUpserter_BatchError(t *testing.T) {
	t.Parallel()

	g := newMergeGraph()
	g.failOn = "upsert_movies"
	g.failCall = 2
	u := NewUpserter(g.store(), 1, 0)

	movies, _, _ := sampleData()
	applied, err := u.UpsertMovies(context.Background(), movies)

	var batchErr *BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("error = %v, want *BatchError", err)
	}
	if batchErr.Kind != KindMovies || batchErr.Chunk != 1 {
		t.Errorf("BatchError = %+v, want movies chunk 1", batchErr)
	}
	if applied != 1 {
		t.Errorf("applied = %d, want 1", applied)
	}

	// Re-running after the failure converges on the full state.
	g.failOn = ""
	if _, err := u.UpsertMovies(context.Background(), movies); err != nil {
		t.Fatalf("retry error = %v", err)
	}
	if _, ok := g.nodes["Movie:tt3"]; !ok {
		t.Error("retry did not apply the remaining chunks")
	}
}

func TestUpserter_Statements(t *testing.T) {
	t.Parallel()

	store := &graphtest.Store{}
	u := NewUpserter(store, 100, 0)
	ctx := context.Background()

	_, _, rels := sampleData()
	if _, err := u.UpsertParticipations(ctx, models.RelDirected, rels[models.RelDirected]); err != nil {
		t.Fatalf("UpsertParticipations() error = %v", err)
	}
	if _, err := u.UpsertParticipations(ctx, models.RelationshipType(99), nil); err == nil {
		t.Error("expected an error for an invalid relationship type")
	}

	calls := store.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	c := calls[0]
	if c.Mode != graph.ModeWrite {
		t.Errorf("mode = %s, want write", c.Mode)
	}
	for _, frag := range []string{"UNWIND $rows AS row", "MERGE (p)-[r:DIRECTED]->(m)"} {
		if !strings.Contains(c.Query.Cypher, frag) {
			t.Errorf("statement missing %q:\n%s", frag, c.Query.Cypher)
		}
	}
	if strings.Contains(c.Query.Cypher, "characters") {
		t.Error("DIRECTED statement must not set characters")
	}
	if rows := c.Query.Params["rows"].([]map[string]any); len(rows) != 2 {
		t.Errorf("rows = %d, want 2", len(rows))
	}
}

func TestUpserter_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	u := NewUpserter(&graphtest.Store{}, 1, 5)
	movies, _, _ := sampleData()
	_, err := u.UpsertMovies(ctx, movies)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestUpsertMoviesCypher_PropertyNames(t *testing.T) {
	t.Parallel()

	// Readers in recommend and catalog query these names.
	for _, prop := range []string{"title", "year", "runtimeMinutes", "averageRating", "numVotes"} {
		if !strings.Contains(upsertMoviesCypher, "m."+prop+" = row.") {
			t.Errorf("movie statement does not set m.%s:\n%s", prop, upsertMoviesCypher)
		}
	}
}
