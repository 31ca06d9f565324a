// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/moviequeue/internal/cache"
	"github.com/tomtom215/moviequeue/internal/graph"
	"github.com/tomtom215/moviequeue/internal/logging"
	"github.com/tomtom215/moviequeue/internal/metrics"
	"github.com/tomtom215/moviequeue/internal/models"
	"github.com/tomtom215/moviequeue/internal/session"
)

// ErrSelectionTooBroad is returned, together with an empty TooBroad
// response, when the graph runs out of memory evaluating a genre selection.
var ErrSelectionTooBroad = errors.New("recommend: genre selection too broad")

// Engine produces ranked, explained recommendations for one user at a time.
// It is safe for concurrent use.
type Engine struct {
	config   *Config
	roles    *models.RoleTable
	scorer   *Scorer
	provider DataProvider
	logger   zerolog.Logger

	// nil when caching is disabled
	cache *cache.LRU[*Response]

	// genMu orders cache writes against invalidation. A response computed
	// before InvalidateUser or ClearCache is not cached.
	genMu       sync.Mutex
	generations map[string]uint64
	epoch       uint64

	requestCount atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	tooBroad     atomic.Int64
	errorCount   atomic.Int64
}

// NewEngine creates an engine. A nil cfg uses DefaultConfig and nil roles
// use the default role table.
func NewEngine(cfg *Config, roles *models.RoleTable, provider DataProvider) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommend config: %w", err)
	}
	if provider == nil {
		return nil, errors.New("recommend: data provider is required")
	}
	if roles == nil {
		roles = models.DefaultRoleTable()
	}

	e := &Engine{
		config:   cfg.Clone(),
		roles:    roles,
		scorer:   NewScorer(roles, cfg.Weights),
		provider: provider,
		logger:   logging.WithComponent(logging.ComponentRecommend),

		generations: make(map[string]uint64),
	}
	if cfg.Cache.Enabled {
		e.cache = cache.NewLRU[*Response](cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}
	return e, nil
}

// Recommend ranks unrated movies in the requested genres for the session's
// user. An empty genre list yields an empty response and no error.
func (e *Engine) Recommend(ctx context.Context, sess session.Session, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	if err := sess.Validate(); err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	req = e.prepareRequest(req)
	logger := e.logger.With().
		Str("request_id", sess.RequestID).
		Str("username", sess.Username).
		Strs("genres", req.Genres).
		Logger()

	if len(req.Genres) == 0 {
		metrics.RecordRecommendation("empty", 0, time.Since(start))
		return e.newResponse(sess, req, start), nil
	}

	key := cacheKey(sess.Username, req)
	if resp := e.cached(key, start); resp != nil {
		logger.Debug().Msg("cache hit")
		return resp, nil
	}

	gen := e.generation(sess.Username)

	if e.config.Limits.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Limits.Timeout)
		defer cancel()
	}

	resp, candidates, err := e.compute(ctx, sess, req, start)
	if err != nil {
		if graph.IsResourceExhausted(err) {
			e.tooBroad.Add(1)
			metrics.RecordRecommendation("too_broad", candidates, time.Since(start))
			logger.Warn().Err(err).Msg("genre selection exceeded graph memory limits")

			tb := e.newResponse(sess, req, start)
			tb.TooBroad = true
			return tb, fmt.Errorf("%w: %w", ErrSelectionTooBroad, err)
		}
		e.errorCount.Add(1)
		metrics.RecordRecommendation("error", candidates, time.Since(start))
		return nil, err
	}

	outcome := "success"
	if len(resp.Items) == 0 {
		outcome = "empty"
	}
	metrics.RecordRecommendation(outcome, candidates, time.Since(start))

	if !e.store(key, sess.Username, gen, resp) {
		logger.Debug().Msg("ratings changed during computation, response not cached")
	}

	logger.Debug().
		Int("rated", resp.Metadata.RatedMovies).
		Int("candidates", candidates).
		Int("returned", len(resp.Items)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")
	return resp, nil
}

// compute runs the two graph reads and scores the result. The candidate
// count is returned for metrics even on failure.
func (e *Engine) compute(ctx context.Context, sess session.Session, req Request, start time.Time) (*Response, int, error) {
	rated, err := e.provider.RatedParticipations(ctx, sess.Username)
	if err != nil {
		return nil, 0, fmt.Errorf("load rated movies: %w", err)
	}
	influence := AggregateInfluence(rated, e.config.MaxRating, e.roles)

	candidates, err := e.provider.Candidates(ctx, sess.Username, req.Genres, e.config.Limits.MaxCandidates)
	if err != nil {
		return nil, 0, fmt.Errorf("load candidates: %w", err)
	}
	candidates = excludeRated(candidates, rated)

	resp := e.newResponse(sess, req, start)
	resp.Items = e.scorer.Rank(candidates, influence, req.Genres, req.Limit)
	resp.Metadata.RatedMovies = len(rated)
	resp.Metadata.Candidates = len(candidates)
	resp.Metadata.Influencers = len(influence)
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
	return resp, len(candidates), nil
}

// prepareRequest trims and sorts genres and applies the result limit.
func (e *Engine) prepareRequest(req Request) Request {
	seen := make(map[string]bool, len(req.Genres))
	genres := make([]string, 0, len(req.Genres))
	for _, g := range req.Genres {
		g = strings.TrimSpace(g)
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		genres = append(genres, g)
	}
	sort.Strings(genres)
	req.Genres = genres

	if req.Limit <= 0 {
		req.Limit = e.config.Limits.DefaultLimit
	}
	if req.Limit > MaxResultLimit {
		req.Limit = MaxResultLimit
	}
	return req
}

func (e *Engine) newResponse(sess session.Session, req Request, start time.Time) *Response {
	return &Response{
		Items: []ScoredMovie{},
		Metadata: ResponseMetadata{
			RequestID:   sess.RequestID,
			Username:    sess.Username,
			Genres:      req.Genres,
			LatencyMS:   time.Since(start).Milliseconds(),
			GeneratedAt: time.Now().UTC(),
		},
	}
}

// cached returns a copy of a cached response marked as a cache hit.
func (e *Engine) cached(key string, start time.Time) *Response {
	if e.cache == nil {
		return nil
	}
	resp, ok := e.cache.Get(key)
	if !ok {
		e.cacheMisses.Add(1)
		metrics.RecommendCacheMisses.Inc()
		return nil
	}
	e.cacheHits.Add(1)
	metrics.RecommendCacheHits.Inc()

	cp := resp.clone()
	cp.Metadata.CacheHit = true
	cp.Metadata.LatencyMS = time.Since(start).Milliseconds()
	return cp
}

type cacheGeneration struct {
	epoch, user uint64
}

func (e *Engine) generation(username string) cacheGeneration {
	e.genMu.Lock()
	defer e.genMu.Unlock()
	return cacheGeneration{epoch: e.epoch, user: e.generations[username]}
}

// store caches a copy of resp unless the user's entries were invalidated
// since gen was taken. It reports whether the response is cached.
func (e *Engine) store(key, username string, gen cacheGeneration, resp *Response) bool {
	if e.cache == nil {
		return true
	}
	e.genMu.Lock()
	defer e.genMu.Unlock()
	if gen != (cacheGeneration{epoch: e.epoch, user: e.generations[username]}) {
		return false
	}
	e.cache.Add(key, resp.clone())
	return true
}

// InvalidateUser drops every cached response for username. It returns the
// number of entries removed.
func (e *Engine) InvalidateUser(username string) int {
	if e.cache == nil {
		return 0
	}
	e.genMu.Lock()
	e.generations[username]++
	n := e.cache.RemovePrefix(userPrefix(username))
	e.genMu.Unlock()
	if n > 0 {
		e.logger.Debug().Str("username", username).Int("entries", n).Msg("invalidated cached recommendations")
	}
	return n
}

// ClearCache drops every cached response.
func (e *Engine) ClearCache() {
	if e.cache == nil {
		return
	}
	e.genMu.Lock()
	e.epoch++
	clear(e.generations)
	e.cache.Clear()
	e.genMu.Unlock()
}

// Metrics returns a snapshot of the engine counters.
func (e *Engine) Metrics() Metrics {
	return Metrics{
		RequestCount: e.requestCount.Load(),
		CacheHits:    e.cacheHits.Load(),
		CacheMisses:  e.cacheMisses.Load(),
		TooBroad:     e.tooBroad.Load(),
		ErrorCount:   e.errorCount.Load(),
	}
}

func userPrefix(username string) string {
	return "rec:" + username + ":"
}

// cacheKey expects genres already normalized by prepareRequest.
func cacheKey(username string, req Request) string {
	return userPrefix(username) + strings.Join(req.Genres, ",") + ":" + strconv.Itoa(req.Limit)
}

// excludeRated drops candidates the user already rated.
func excludeRated(candidates []Candidate, rated []RatedMovie) []Candidate {
	if len(rated) == 0 {
		return candidates
	}
	ratedIDs := make(map[string]bool, len(rated))
	for _, rm := range rated {
		ratedIDs[rm.MovieID] = true
	}
	out := candidates[:0:0]
	for _, c := range candidates {
		if !ratedIDs[c.Movie.ID] {
			out = append(out, c)
		}
	}
	return out
}
