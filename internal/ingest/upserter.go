// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package ingest

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/moviequeue/internal/graph"
	"github.com/tomtom215/moviequeue/internal/logging"
	"github.com/tomtom215/moviequeue/internal/metrics"
	"github.com/tomtom215/moviequeue/internal/models"
)

// Entity kinds reported in BatchError and metrics.
const (
	KindMovies = "movies"
	KindPeople = "people"
)

// DefaultBatchSize is the number of rows applied per write transaction.
const DefaultBatchSize = 100

// BatchError reports a chunk that failed to apply. Re-running the same
// chunk is safe.
type BatchError struct {
	Kind  string
	Chunk int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("upsert %s chunk %d: %v", e.Kind, e.Chunk, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Chunk splits items into contiguous slices of at most size elements. The
// slices share items' backing array.
func Chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultBatchSize
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}

const upsertMoviesCypher = `UNWIND $rows AS row
MERGE (m:Movie {id: row.id})
ON CREATE SET m.title = row.title,
              m.year = row.year,
              m.runtimeMinutes = row.runtime,
              m.averageRating = row.rating,
              m.numVotes = row.votes,
              m.adult = row.adult
FOREACH (name IN row.genres |
  MERGE (g:Genre {name: name})
  MERGE (m)-[:HAS_GENRE]->(g))`

const upsertPeopleCypher = `UNWIND $rows AS row
MERGE (p:Person {id: row.id})
ON CREATE SET p.name = row.name,
              p.birthYear = row.birthYear,
              p.deathYear = row.deathYear
FOREACH (name IN row.professions |
  MERGE (pr:Profession {name: name})
  MERGE (p)-[:HAS_PROFESSION]->(pr))`

// participationCypher builds the edge statement for t. The type name comes
// from the closed RelationshipType table, never from input text.
func participationCypher(t models.RelationshipType) string {
	set := ""
	if t.CarriesCharacters() {
		set = "\nON CREATE SET r.characters = row.characters"
	}
	return fmt.Sprintf(`UNWIND $rows AS row
MATCH (p:Person {id: row.person})
MATCH (m:Movie {id: row.movie})
MERGE (p)-[r:%s]->(m)%s`, t.String(), set)
}

// Upserter writes selected data into the graph in fixed-size chunks, one
// write transaction per chunk.
type Upserter struct {
	store     graph.Store
	batchSize int
	limiter   *rate.Limiter
	log       zerolog.Logger
}

// NewUpserter creates an upserter. writesPerSecond bounds the chunk rate;
// zero disables pacing.
func NewUpserter(store graph.Store, batchSize int, writesPerSecond float64) *Upserter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	u := &Upserter{
		store:     store,
		batchSize: batchSize,
		log:       logging.WithComponent(logging.ComponentIngest),
	}
	if writesPerSecond > 0 {
		burst := int(math.Max(1, math.Ceil(writesPerSecond)))
		u.limiter = rate.NewLimiter(rate.Limit(writesPerSecond), burst)
	}
	return u
}

// UpsertMovies merges movies with their genres. It returns the number of
// rows applied.
func (u *Upserter) UpsertMovies(ctx context.Context, movies []models.Movie) (int, error) {
	return upsert(ctx, u, KindMovies, "upsert_movies", upsertMoviesCypher, movies, movieRow)
}

// UpsertPeople merges people with their professions.
func (u *Upserter) UpsertPeople(ctx context.Context, people []models.Person) (int, error) {
	return upsert(ctx, u, KindPeople, "upsert_people", upsertPeopleCypher, people, personRow)
}

// UpsertParticipations merges edges of type t. Endpoints that are not in the
// graph are silently skipped by the MATCH clauses.
func (u *Upserter) UpsertParticipations(ctx context.Context, t models.RelationshipType, list []models.Participation) (int, error) {
	if !t.Valid() {
		return 0, fmt.Errorf("upsert participations: invalid relationship type %d", int(t))
	}
	kind := relKind(t)
	return upsert(ctx, u, kind, "upsert_"+kind, participationCypher(t), list, func(p models.Participation) map[string]any {
		row := map[string]any{"movie": p.MovieID, "person": p.PersonID}
		if t.CarriesCharacters() {
			chars := p.Characters
			if chars == nil {
				chars = []string{}
			}
			row["characters"] = chars
		}
		return row
	})
}

func relKind(t models.RelationshipType) string {
	return strings.ToLower(t.String())
}

func upsert[T any](ctx context.Context, u *Upserter, kind, name, cypher string, items []T, toRow func(T) map[string]any) (int, error) {
	applied := 0
	for i, chunk := range Chunk(items, u.batchSize) {
		if u.limiter != nil {
			if err := u.limiter.Wait(ctx); err != nil {
				return applied, &BatchError{Kind: kind, Chunk: i, Err: err}
			}
		}

		rows := make([]map[string]any, len(chunk))
		for j, item := range chunk {
			rows[j] = toRow(item)
		}

		start := time.Now()
		_, err := u.store.ExecuteWrite(ctx, graph.Query{
			Name:   name,
			Cypher: cypher,
			Params: map[string]any{"rows": rows},
		})
		metrics.RecordBatch(kind, len(chunk), time.Since(start), err)
		if err != nil {
			u.log.Error().Err(err).Str("kind", kind).Int("chunk", i).Int("size", len(chunk)).Msg("Batch upsert failed")
			return applied, &BatchError{Kind: kind, Chunk: i, Err: err}
		}
		applied += len(chunk)
	}
	return applied, nil
}

func movieRow(m models.Movie) map[string]any {
	row := map[string]any{
		"id":      m.ID,
		"title":   m.Title,
		"year":    nil,
		"runtime": nil,
		"rating":  nil,
		"votes":   nil,
		"adult":   m.Adult,
		"genres":  nonNil(m.Genres),
	}
	if m.Year != 0 {
		row["year"] = int64(m.Year)
	}
	if m.RuntimeMinutes != nil {
		row["runtime"] = int64(*m.RuntimeMinutes)
	}
	if m.AverageRating != nil {
		row["rating"] = *m.AverageRating
	}
	if m.NumVotes != nil {
		row["votes"] = *m.NumVotes
	}
	return row
}

func personRow(p models.Person) map[string]any {
	row := map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"birthYear":   nil,
		"deathYear":   nil,
		"professions": nonNil(p.Professions),
	}
	if p.BirthYear != nil {
		row["birthYear"] = int64(*p.BirthYear)
	}
	if p.DeathYear != nil {
		row["deathYear"] = int64(*p.DeathYear)
	}
	return row
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
