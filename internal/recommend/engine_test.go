// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/moviequeue/internal/graph"
	"github.com/tomtom215/moviequeue/internal/models"
	"github.com/tomtom215/moviequeue/internal/session"
)

// mockDataProvider implements DataProvider for testing.
type mockDataProvider struct {
	rated      map[string][]RatedMovie
	candidates []Candidate
	ratedErr   error
	candErr    error

	candidateCalls atomic.Int32
	lastGenres     []string
	lastLimit      int
	mu             sync.Mutex
}

func (m *mockDataProvider) RatedParticipations(ctx context.Context, username string) ([]RatedMovie, error) {
	if m.ratedErr != nil {
		return nil, m.ratedErr
	}
	return m.rated[username], nil
}

func (m *mockDataProvider) Candidates(ctx context.Context, username string, genres []string, limit int) ([]Candidate, error) {
	m.candidateCalls.Add(1)
	m.mu.Lock()
	m.lastGenres = genres
	m.lastLimit = limit
	m.mu.Unlock()
	if m.candErr != nil {
		return nil, m.candErr
	}
	out := m.candidates
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestEngine(t *testing.T, p DataProvider, mutate func(*Config)) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	e, err := NewEngine(cfg, nil, p)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func testSession(username string) session.Session {
	return session.Session{Username: username, RequestID: "req-1", StartedAt: time.Now()}
}

func TestNewEngine_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewEngine(nil, nil, nil); err == nil {
		t.Error("expected error for nil provider")
	}
	bad := DefaultConfig()
	bad.MaxRating = 0
	if _, err := NewEngine(bad, nil, &mockDataProvider{}); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestEngine_Recommend(t *testing.T) {
	t.Parallel()

	p := &mockDataProvider{
		rated: map[string][]RatedMovie{
			"alice": {
				{MovieID: "A", Rating: 10, Collaborators: []models.Collaborator{actor("x")}},
				{MovieID: "B", Rating: 2, Collaborators: []models.Collaborator{actor("x")}},
			},
		},
		candidates: []Candidate{
			candidate("D", 500, 7, []string{"Drama"}),
			candidate("C", 500, 7, []string{"Drama"}, actor("x")),
		},
	}
	e := newTestEngine(t, p, nil)

	resp, err := e.Recommend(context.Background(), testSession("alice"), Request{Genres: []string{" Drama ", "Drama"}})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(resp.Items) != 2 || resp.Items[0].MovieID != "C" {
		t.Fatalf("unexpected items %+v", resp.Items)
	}
	if resp.TooBroad {
		t.Error("TooBroad should be false")
	}
	md := resp.Metadata
	if md.Username != "alice" || md.RequestID != "req-1" || md.RatedMovies != 2 || md.Candidates != 2 || md.Influencers != 1 {
		t.Errorf("unexpected metadata %+v", md)
	}
	if diff := cmp.Diff([]string{"Drama"}, p.lastGenres); diff != "" {
		t.Errorf("genres passed to provider (-want +got):\n%s", diff)
	}
	if p.lastLimit != 100 {
		t.Errorf("candidate cap = %d, want 100", p.lastLimit)
	}
}

func TestEngine_EmptyGenres(t *testing.T) {
	t.Parallel()

	p := &mockDataProvider{candidates: []Candidate{candidate("tt1", 1, 1, []string{"Drama"})}}
	e := newTestEngine(t, p, nil)

	resp, err := e.Recommend(context.Background(), testSession("bob"), Request{Genres: []string{"", "  "}})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.Items == nil || len(resp.Items) != 0 {
		t.Errorf("expected empty non-nil items, got %#v", resp.Items)
	}
	if p.candidateCalls.Load() != 0 {
		t.Error("provider should not be queried for an empty genre set")
	}
}

func TestEngine_NeverReturnsRatedMovie(t *testing.T) {
	t.Parallel()

	p := &mockDataProvider{
		rated: map[string][]RatedMovie{
			"alice": {{MovieID: "tt1", Rating: 8}},
		},
		candidates: []Candidate{
			candidate("tt1", 1000, 9, []string{"Drama"}),
			candidate("tt2", 10, 5, []string{"Drama"}),
		},
	}
	e := newTestEngine(t, p, nil)

	resp, err := e.Recommend(context.Background(), testSession("alice"), Request{Genres: []string{"Drama"}})
	if err != nil {
		t.Fatal(err)
	}
	for _, it := range resp.Items {
		if it.MovieID == "tt1" {
			t.Fatal("rated movie returned as a recommendation")
		}
	}
	if len(resp.Items) != 1 {
		t.Errorf("got %d items, want 1", len(resp.Items))
	}
}

func TestEngine_Limit(t *testing.T) {
	t.Parallel()

	var cands []Candidate
	for i := 0; i < 40; i++ {
		cands = append(cands, candidate(fmt.Sprintf("tt%02d", i), int64(i), 5, []string{"Drama"}))
	}
	e := newTestEngine(t, &mockDataProvider{candidates: cands}, func(c *Config) { c.Cache.Enabled = false })

	tests := []struct {
		limit int
		want  int
	}{
		{0, 10},
		{3, 3},
		{100, MaxResultLimit},
	}
	for _, tt := range tests {
		resp, err := e.Recommend(context.Background(), testSession("u"), Request{Genres: []string{"Drama"}, Limit: tt.limit})
		if err != nil {
			t.Fatal(err)
		}
		if len(resp.Items) != tt.want {
			t.Errorf("limit %d: got %d items, want %d", tt.limit, len(resp.Items), tt.want)
		}
	}
}

func TestEngine_TooBroad(t *testing.T) {
	t.Parallel()

	exhausted := fmt.Errorf("select candidates: %w", graph.ErrResourceExhausted)
	e := newTestEngine(t, &mockDataProvider{candErr: exhausted}, nil)

	resp, err := e.Recommend(context.Background(), testSession("alice"), Request{Genres: []string{"Drama", "Comedy"}})
	if !errors.Is(err, ErrSelectionTooBroad) {
		t.Fatalf("error = %v, want ErrSelectionTooBroad", err)
	}
	if !graph.IsResourceExhausted(err) {
		t.Error("underlying cause should stay inspectable")
	}
	if resp == nil || !resp.TooBroad || len(resp.Items) != 0 {
		t.Fatalf("expected empty TooBroad response, got %+v", resp)
	}
	if got := e.Metrics().TooBroad; got != 1 {
		t.Errorf("TooBroad counter = %d, want 1", got)
	}
}

func TestEngine_ProviderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	e := newTestEngine(t, &mockDataProvider{ratedErr: boom}, nil)

	resp, err := e.Recommend(context.Background(), testSession("alice"), Request{Genres: []string{"Drama"}})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapped %v", err, boom)
	}
	if errors.Is(err, ErrSelectionTooBroad) {
		t.Error("generic failure must not look like a too-broad selection")
	}
	if resp != nil {
		t.Error("expected nil response")
	}
	if got := e.Metrics().ErrorCount; got != 1 {
		t.Errorf("ErrorCount = %d, want 1", got)
	}
}

func TestEngine_InvalidSession(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &mockDataProvider{}, nil)
	_, err := e.Recommend(context.Background(), session.Session{}, Request{Genres: []string{"Drama"}})
	if !errors.Is(err, session.ErrNoUser) {
		t.Errorf("error = %v, want ErrNoUser", err)
	}
}

func TestEngine_CacheAndInvalidate(t *testing.T) {
	t.Parallel()

	p := &mockDataProvider{candidates: []Candidate{candidate("tt1", 10, 5, []string{"Drama"})}}
	e := newTestEngine(t, p, nil)
	ctx := context.Background()
	req := Request{Genres: []string{"Drama"}}

	first, err := e.Recommend(ctx, testSession("alice"), req)
	if err != nil {
		t.Fatal(err)
	}
	if first.Metadata.CacheHit {
		t.Error("first response should not be a cache hit")
	}

	second, err := e.Recommend(ctx, testSession("alice"), req)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Metadata.CacheHit {
		t.Error("second response should be a cache hit")
	}
	if first.Metadata.CacheHit {
		t.Error("cache hit must not modify the stored response")
	}
	if got := p.candidateCalls.Load(); got != 1 {
		t.Errorf("provider called %d times, want 1", got)
	}

	// Other users are unaffected by invalidation.
	if _, err := e.Recommend(ctx, testSession("bob"), req); err != nil {
		t.Fatal(err)
	}
	if n := e.InvalidateUser("alice"); n != 1 {
		t.Errorf("InvalidateUser removed %d entries, want 1", n)
	}
	if _, err := e.Recommend(ctx, testSession("alice"), req); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Recommend(ctx, testSession("bob"), req); err != nil {
		t.Fatal(err)
	}
	if got := p.candidateCalls.Load(); got != 3 {
		t.Errorf("provider called %d times, want 3", got)
	}

	m := e.Metrics()
	if m.RequestCount != 5 || m.CacheHits != 2 || m.CacheMisses != 3 {
		t.Errorf("unexpected metrics %+v", m)
	}
}

// gatedProvider pauses the first Candidates call until release is closed.
type gatedProvider struct {
	mu         sync.Mutex
	rated      []RatedMovie
	candidates []Candidate

	gate    atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (g *gatedProvider) RatedParticipations(context.Context, string) ([]RatedMovie, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]RatedMovie(nil), g.rated...), nil
}

func (g *gatedProvider) Candidates(context.Context, string, []string, int) ([]Candidate, error) {
	if g.gate.CompareAndSwap(true, false) {
		g.entered <- struct{}{}
		<-g.release
	}
	return g.candidates, nil
}

func (g *gatedProvider) rate(movieID string, rating float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rated = append(g.rated, RatedMovie{MovieID: movieID, Rating: rating})
}

func TestEngine_InvalidateDuringComputation(t *testing.T) {
	t.Parallel()

	p := &gatedProvider{
		candidates: []Candidate{
			candidate("M1", 900, 8, []string{"Drama"}),
			candidate("M2", 100, 6, []string{"Drama"}),
		},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	p.gate.Store(true)
	e := newTestEngine(t, p, nil)
	ctx := context.Background()
	req := Request{Genres: []string{"Drama"}}

	done := make(chan error, 1)
	go func() {
		_, err := e.Recommend(ctx, testSession("alice"), req)
		done <- err
	}()

	<-p.entered
	p.rate("M1", 9)
	e.InvalidateUser("alice")
	close(p.release)
	if err := <-done; err != nil {
		t.Fatalf("in-flight Recommend() error = %v", err)
	}

	resp, err := e.Recommend(ctx, testSession("alice"), req)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.Metadata.CacheHit {
		t.Error("response computed before invalidation was served from cache")
	}
	for _, item := range resp.Items {
		if item.MovieID == "M1" {
			t.Fatal("rated movie M1 recommended after invalidation")
		}
	}

	// The fresh response is cached as usual.
	again, err := e.Recommend(ctx, testSession("alice"), req)
	if err != nil {
		t.Fatal(err)
	}
	if !again.Metadata.CacheHit {
		t.Error("expected a cache hit after a clean computation")
	}
}

func TestEngine_ClearCacheDuringComputation(t *testing.T) {
	t.Parallel()

	p := &gatedProvider{
		candidates: []Candidate{candidate("M1", 900, 8, []string{"Drama"})},
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	p.gate.Store(true)
	e := newTestEngine(t, p, nil)
	req := Request{Genres: []string{"Drama"}}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = e.Recommend(context.Background(), testSession("alice"), req)
	}()
	<-p.entered
	e.ClearCache()
	close(p.release)
	<-done

	resp, err := e.Recommend(context.Background(), testSession("alice"), req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Metadata.CacheHit {
		t.Error("response computed before ClearCache was served from cache")
	}
}

func TestEngine_CachedResponseIsolated(t *testing.T) {
	t.Parallel()

	p := &mockDataProvider{
		rated: map[string][]RatedMovie{
			"alice": {{MovieID: "A", Rating: 10, Collaborators: []models.Collaborator{actor("x")}}},
		},
		candidates: []Candidate{candidate("C", 500, 7, []string{"Drama"}, actor("x"))},
	}
	e := newTestEngine(t, p, nil)
	ctx := context.Background()
	req := Request{Genres: []string{"Drama"}}

	first, err := e.Recommend(ctx, testSession("alice"), req)
	if err != nil {
		t.Fatal(err)
	}
	want := first.clone()

	mutate := func(r *Response) {
		r.Items[0].Title = "changed"
		r.Items[0].Genres[0] = "changed"
		r.Items[0].SharedCollaborators[0].Names[0] = "changed"
		r.Metadata.Genres[0] = "changed"
		r.Items = r.Items[:0]
	}
	mutate(first)

	second, err := e.Recommend(ctx, testSession("alice"), req)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Metadata.CacheHit {
		t.Fatal("expected a cache hit")
	}
	if diff := cmp.Diff(want.Items, second.Items); diff != "" {
		t.Errorf("cached items changed by caller (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Metadata.Genres, second.Metadata.Genres); diff != "" {
		t.Errorf("cached genres changed by caller (-want +got):\n%s", diff)
	}

	mutate(second)
	third, err := e.Recommend(ctx, testSession("alice"), req)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want.Items, third.Items); diff != "" {
		t.Errorf("cache hit shares memory with the cache (-want +got):\n%s", diff)
	}
}

func TestEngine_CacheDisabled(t *testing.T) {
	t.Parallel()

	p := &mockDataProvider{candidates: []Candidate{candidate("tt1", 10, 5, []string{"Drama"})}}
	e := newTestEngine(t, p, func(c *Config) { c.Cache.Enabled = false })

	for i := 0; i < 2; i++ {
		if _, err := e.Recommend(context.Background(), testSession("alice"), Request{Genres: []string{"Drama"}}); err != nil {
			t.Fatal(err)
		}
	}
	if got := p.candidateCalls.Load(); got != 2 {
		t.Errorf("provider called %d times, want 2", got)
	}
	if n := e.InvalidateUser("alice"); n != 0 {
		t.Errorf("InvalidateUser = %d, want 0", n)
	}
}

func TestEngine_Concurrent(t *testing.T) {
	t.Parallel()

	p := &mockDataProvider{candidates: []Candidate{
		candidate("tt1", 10, 5, []string{"Drama"}),
		candidate("tt2", 20, 6, []string{"Drama"}),
	}}
	e := newTestEngine(t, p, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user := fmt.Sprintf("user%d", i%4)
			if _, err := e.Recommend(context.Background(), testSession(user), Request{Genres: []string{"Drama"}}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if got := e.Metrics().RequestCount; got != 20 {
		t.Errorf("RequestCount = %d, want 20", got)
	}
}
