// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const progressKey = "ingest:load:progress"

// Checkpoint records which load stages have completed.
type Checkpoint struct {
	StartedAt time.Time      `json:"started_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Source    string         `json:"source"`
	Stages    map[string]int `json:"stages"`
}

// NewCheckpoint starts an empty checkpoint for the files in source.
func NewCheckpoint(source string) *Checkpoint {
	now := time.Now().UTC()
	return &Checkpoint{StartedAt: now, UpdatedAt: now, Source: source, Stages: make(map[string]int)}
}

// Done reports whether stage completed.
func (c *Checkpoint) Done(stage string) bool {
	_, ok := c.Stages[stage]
	return ok
}

// Mark records stage as completed with count applied rows.
func (c *Checkpoint) Mark(stage string, count int) {
	if c.Stages == nil {
		c.Stages = make(map[string]int)
	}
	c.Stages[stage] = count
	c.UpdatedAt = time.Now().UTC()
}

func (c *Checkpoint) clone() *Checkpoint {
	cp := *c
	cp.Stages = make(map[string]int, len(c.Stages))
	for k, v := range c.Stages {
		cp.Stages[k] = v
	}
	return &cp
}

// ProgressTracker persists a Checkpoint between runs.
type ProgressTracker interface {
	Save(ctx context.Context, cp *Checkpoint) error
	// Load returns nil, nil when nothing was saved.
	Load(ctx context.Context) (*Checkpoint, error)
	Clear(ctx context.Context) error
}

// BadgerProgress stores the checkpoint in a BadgerDB key.
type BadgerProgress struct {
	db   *badger.DB
	owns bool
}

// NewBadgerProgress uses an already open database.
func NewBadgerProgress(db *badger.DB) *BadgerProgress {
	return &BadgerProgress{db: db}
}

// OpenBadgerProgress opens (or creates) a database at path. Close releases it.
func OpenBadgerProgress(path string) (*BadgerProgress, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.ValueLogFileSize = 16 << 20
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open progress db: %w", err)
	}
	return &BadgerProgress{db: db, owns: true}, nil
}

// Save persists cp.
func (p *BadgerProgress) Save(_ context.Context, cp *Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(progressKey), data)
	})
}

// Load returns the saved checkpoint.
func (p *BadgerProgress) Load(_ context.Context) (*Checkpoint, error) {
	var cp *Checkpoint
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(progressKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			cp = &Checkpoint{}
			return json.Unmarshal(val, cp)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if cp != nil && cp.Stages == nil {
		cp.Stages = make(map[string]int)
	}
	return cp, nil
}

// Clear removes the saved checkpoint.
func (p *BadgerProgress) Clear(_ context.Context) error {
	return p.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(progressKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// Close closes the database if OpenBadgerProgress opened it.
func (p *BadgerProgress) Close() error {
	if !p.owns {
		return nil
	}
	return p.db.Close()
}

// InMemoryProgress keeps the checkpoint in memory.
type InMemoryProgress struct {
	mu sync.Mutex
	cp *Checkpoint
}

// NewInMemoryProgress creates an empty tracker.
func NewInMemoryProgress() *InMemoryProgress {
	return &InMemoryProgress{}
}

func (p *InMemoryProgress) Save(_ context.Context, cp *Checkpoint) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cp = cp.clone()
	return nil
}

func (p *InMemoryProgress) Load(_ context.Context) (*Checkpoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cp == nil {
		return nil, nil
	}
	return p.cp.clone(), nil
}

func (p *InMemoryProgress) Clear(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cp = nil
	return nil
}
