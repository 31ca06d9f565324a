// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package ingest

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/moviequeue/internal/config"
	"github.com/tomtom215/moviequeue/internal/graph"
	"github.com/tomtom215/moviequeue/internal/logging"
	"github.com/tomtom215/moviequeue/internal/models"
)

// Load stage names stored in checkpoints.
const (
	StageMovies = "movies"
	StagePeople = "people"
)

// RelationshipStage returns the checkpoint stage for edges of type t.
func RelationshipStage(t models.RelationshipType) string {
	return "rel:" + t.String()
}

// Pipeline turns the raw IMDb files into relationship files (Build) and
// applies those files to the graph (Load).
type Pipeline struct {
	cfg      config.IngestConfig
	roles    *models.RoleTable
	store    graph.Store
	progress ProgressTracker
	log      zerolog.Logger
}

// NewPipeline creates a pipeline. store and progress are only used by Load;
// a nil progress tracker keeps checkpoints in memory.
func NewPipeline(cfg config.IngestConfig, roles *models.RoleTable, store graph.Store, progress ProgressTracker) *Pipeline {
	if roles == nil {
		roles = models.DefaultRoleTable()
	}
	if progress == nil {
		progress = NewInMemoryProgress()
	}
	return &Pipeline{
		cfg:      cfg,
		roles:    roles,
		store:    store,
		progress: progress,
		log:      logging.WithComponent(logging.ComponentIngest),
	}
}

func openInput(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

// Build reads the raw files, selects the top movies per genre, classifies
// their principals and writes the intermediate files to the output dir.
func (p *Pipeline) Build(ctx context.Context) (*BuildStats, error) {
	stats := &BuildStats{StartTime: time.Now(), Relationships: make(map[string]int)}

	titles, err := p.readTitles(stats)
	if err != nil {
		return stats, err
	}
	ratings, err := p.readRatings(stats)
	if err != nil {
		return stats, err
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	sel := SelectTopK(JoinRatings(titles, ratings), p.cfg.TopK, p.cfg.MatureCategory)
	stats.Selected = len(sel.Movies)
	stats.Unranked = sel.Unranked
	stats.PerGenre = sel.PerGenre
	p.log.Info().Int("selected", stats.Selected).Int("genres", len(sel.PerGenre)).Int("unranked", sel.Unranked).Msg("Selected movies")

	movieIDs := make(map[string]bool, len(sel.Movies))
	for _, m := range sel.Movies {
		movieIDs[m.ID] = true
	}

	principals, personIDs, err := p.readPrincipals(ctx, stats, movieIDs)
	if err != nil {
		return stats, err
	}

	rels, cstats := NewClassifier(p.roles).Classify(principals)
	stats.Classify = cstats
	for t, list := range rels {
		stats.Relationships[t.String()] = len(list)
	}
	p.log.Info().Int("classified", cstats.Classified).Int("dropped", cstats.Dropped).Int("duplicates", cstats.Duplicates).Msg("Classified principals")

	people, err := p.readPeople(stats, personIDs)
	if err != nil {
		return stats, err
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	dir := p.cfg.OutputDir
	if err := WriteMovies(dir, sel.Movies); err != nil {
		return stats, fmt.Errorf("write movies: %w", err)
	}
	if err := WritePeople(dir, people); err != nil {
		return stats, fmt.Errorf("write people: %w", err)
	}
	if err := WriteRelationshipFiles(dir, rels); err != nil {
		return stats, err
	}

	stats.EndTime = time.Now()
	p.log.Info().Str("dir", dir).Dur("duration", stats.Duration()).Msg("Ingest complete")
	return stats, nil
}

func (p *Pipeline) readTitles(stats *BuildStats) ([]TitleRow, error) {
	f, err := openInput(p.cfg.TitlesPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	titles, rs, err := ReadTitles(f, p.cfg.NullToken, p.cfg.TitleTypes)
	stats.Titles = rs
	stats.TitlesKept = len(titles)
	if err != nil {
		return nil, fmt.Errorf("read titles: %w", err)
	}
	p.log.Info().Int64("rows", rs.Rows).Int("kept", len(titles)).Int64("skipped", rs.SkippedKeys+rs.SkippedShape).Msg("Read titles")
	return titles, nil
}

func (p *Pipeline) readRatings(stats *BuildStats) (map[string]RatingRow, error) {
	f, err := openInput(p.cfg.RatingsPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ratings, rs, err := ReadRatings(f, p.cfg.NullToken)
	stats.Ratings = rs
	if err != nil {
		return nil, fmt.Errorf("read ratings: %w", err)
	}
	p.log.Info().Int64("rows", rs.Rows).Int64("malformed", rs.MalformedFields).Msg("Read ratings")
	return ratings, nil
}

func (p *Pipeline) readPrincipals(ctx context.Context, stats *BuildStats, movieIDs map[string]bool) ([]PrincipalRow, map[string]bool, error) {
	f, err := openInput(p.cfg.PrincipalsPath)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var rows []PrincipalRow
	personIDs := make(map[string]bool)
	rs, err := ReadPrincipals(f, p.cfg.NullToken, func(id string) bool { return movieIDs[id] }, func(row PrincipalRow) error {
		if len(rows)%100000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		rows = append(rows, row)
		personIDs[row.PersonID] = true
		return nil
	})
	stats.Principals = rs
	stats.PeopleReferenced = len(personIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("read principals: %w", err)
	}
	p.log.Info().Int64("rows", rs.Rows).Int("kept", len(rows)).Int("people", len(personIDs)).Msg("Read principals")
	return rows, personIDs, nil
}

func (p *Pipeline) readPeople(stats *BuildStats, personIDs map[string]bool) ([]models.Person, error) {
	f, err := openInput(p.cfg.PeoplePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, rs, err := ReadPeople(f, p.cfg.NullToken, func(id string) bool { return personIDs[id] })
	stats.People = rs
	if err != nil {
		return nil, fmt.Errorf("read people: %w", err)
	}
	people := make([]models.Person, len(rows))
	for i, r := range rows {
		people[i] = models.Person{
			ID:          r.ID,
			Name:        r.Name,
			BirthYear:   r.BirthYear,
			DeathYear:   r.DeathYear,
			Professions: r.Professions,
		}
	}
	stats.PeopleKept = len(people)
	p.log.Info().Int64("rows", rs.Rows).Int("kept", len(people)).Msg("Read people")
	return people, nil
}

// Load applies the intermediate files to the graph: movies, then people,
// then every relationship type with bounded parallelism. With resume set,
// stages recorded in the saved checkpoint are skipped.
func (p *Pipeline) Load(ctx context.Context, resume bool) (*LoadStats, error) {
	if p.store == nil {
		return nil, fmt.Errorf("load: no graph store configured")
	}
	stats := &LoadStats{StartTime: time.Now(), Relationships: make(map[string]int)}
	dir := p.cfg.OutputDir

	if err := graph.EnsureSchema(ctx, p.store); err != nil {
		p.log.Warn().Err(err).Msg("Schema bootstrap incomplete, continuing")
	}

	cp, err := p.checkpoint(ctx, resume)
	if err != nil {
		return stats, err
	}
	var cpMu sync.Mutex
	mark := func(stage string, n int) error {
		cpMu.Lock()
		defer cpMu.Unlock()
		cp.Mark(stage, n)
		if err := p.progress.Save(ctx, cp); err != nil {
			return fmt.Errorf("save progress: %w", err)
		}
		return nil
	}

	upserter := NewUpserter(p.store, p.cfg.BatchSize, p.cfg.WritesPerSecond)

	if cp.Done(StageMovies) {
		stats.Resumed = append(stats.Resumed, StageMovies)
	} else {
		movies, err := ReadMovies(dir)
		if err != nil {
			return stats, err
		}
		n, err := upserter.UpsertMovies(ctx, movies)
		stats.Movies = n
		if err != nil {
			return stats, err
		}
		if err := mark(StageMovies, n); err != nil {
			return stats, err
		}
		p.log.Info().Int("movies", n).Msg("Loaded movies")
	}

	if cp.Done(StagePeople) {
		stats.Resumed = append(stats.Resumed, StagePeople)
	} else {
		people, err := ReadPeopleFile(dir)
		if err != nil {
			return stats, err
		}
		n, err := upserter.UpsertPeople(ctx, people)
		stats.People = n
		if err != nil {
			return stats, err
		}
		if err := mark(StagePeople, n); err != nil {
			return stats, err
		}
		p.log.Info().Int("people", n).Msg("Loaded people")
	}

	rels, err := LoadRelationshipFiles(dir)
	if err != nil {
		return stats, err
	}

	// The checkpoint is only read here; workers write it through mark.
	var pending []models.RelationshipType
	for _, t := range models.AllRelationshipTypes() {
		if _, ok := rels[t]; !ok {
			continue
		}
		if stage := RelationshipStage(t); cp.Done(stage) {
			stats.Resumed = append(stats.Resumed, stage)
			continue
		}
		pending = append(pending, t)
	}

	var statsMu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, p.cfg.Parallelism))
	for _, t := range pending {
		list, stage := rels[t], RelationshipStage(t)
		g.Go(func() error {
			n, err := upserter.UpsertParticipations(gctx, t, list)
			statsMu.Lock()
			stats.Relationships[t.String()] = n
			statsMu.Unlock()
			if err != nil {
				return err
			}
			p.log.Info().Str("type", t.String()).Int("edges", n).Msg("Loaded relationships")
			return mark(stage, n)
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	stats.EndTime = time.Now()
	p.log.Info().
		Int("applied", stats.Applied()).
		Strs("resumed", stats.Resumed).
		Float64("rows_per_sec", stats.RowsPerSecond()).
		Dur("duration", stats.Duration()).
		Msg("Load complete")
	return stats, nil
}

func (p *Pipeline) checkpoint(ctx context.Context, resume bool) (*Checkpoint, error) {
	if !resume {
		if err := p.progress.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clear progress: %w", err)
		}
		return NewCheckpoint(p.cfg.OutputDir), nil
	}
	cp, err := p.progress.Load(ctx)
	if err != nil {
		return nil, err
	}
	if cp == nil {
		p.log.Info().Msg("No saved progress, starting a fresh load")
		return NewCheckpoint(p.cfg.OutputDir), nil
	}
	if cp.Source != p.cfg.OutputDir {
		p.log.Warn().Str("saved", cp.Source).Str("current", p.cfg.OutputDir).Msg("Saved progress belongs to another directory, starting a fresh load")
		return NewCheckpoint(p.cfg.OutputDir), nil
	}
	p.log.Info().Int("stages", len(cp.Stages)).Time("started_at", cp.StartedAt).Msg("Resuming load")
	return cp, nil
}

// Run builds the intermediate files and loads them.
func (p *Pipeline) Run(ctx context.Context, resume bool) (*BuildStats, *LoadStats, error) {
	bs, err := p.Build(ctx)
	if err != nil {
		return bs, nil, err
	}
	ls, err := p.Load(ctx, resume)
	return bs, ls, err
}
