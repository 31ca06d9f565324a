// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/moviequeue/internal/config"
)

// MaxResultLimit caps the number of recommendations in one response.
const MaxResultLimit = 25

// Config holds the scoring constants and operational limits of the engine.
type Config struct {
	// MaxRating normalizes a user's rating into an influence weight.
	// Default: 10.
	MaxRating float64 `json:"max_rating"`

	Weights Weights      `json:"weights"`
	Limits  LimitsConfig `json:"limits"`
	Cache   CacheConfig  `json:"cache"`
}

// Weights scales the non-collaboration score terms.
type Weights struct {
	// Popularity multiplies log(1 + votes). Default: 2.
	Popularity float64 `json:"popularity"`

	// Quality multiplies the average rating. Default: 2.
	Quality float64 `json:"quality"`

	// Genre multiplies the number of requested genres a movie has. Default: 2.
	Genre float64 `json:"genre"`
}

// LimitsConfig bounds the work done per request.
type LimitsConfig struct {
	// MaxCandidates is applied inside the candidate query. Default: 100.
	MaxCandidates int `json:"max_candidates"`

	// DefaultLimit is the number of results when the caller asks for none.
	// Default: 10.
	DefaultLimit int `json:"default_limit"`

	// Timeout bounds one Recommend call. Default: 30s.
	Timeout time.Duration `json:"timeout"`
}

// CacheConfig controls the per-user response cache.
type CacheConfig struct {
	Enabled    bool          `json:"enabled"`
	MaxEntries int           `json:"max_entries"`
	TTL        time.Duration `json:"ttl"`
}

// DefaultConfig returns the defaults used when no configuration is given.
func DefaultConfig() *Config {
	return &Config{
		MaxRating: 10,
		Weights:   Weights{Popularity: 2, Quality: 2, Genre: 2},
		Limits: LimitsConfig{
			MaxCandidates: 100,
			DefaultLimit:  10,
			Timeout:       30 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: 1000,
			TTL:        5 * time.Minute,
		},
	}
}

// FromAppConfig converts the recommend section of the application config.
// A cache size of zero disables caching.
func FromAppConfig(rc config.RecommendConfig) *Config {
	return &Config{
		MaxRating: rc.MaxRating,
		Weights: Weights{
			Popularity: rc.PopularityWeight,
			Quality:    rc.QualityWeight,
			Genre:      rc.GenreWeight,
		},
		Limits: LimitsConfig{
			MaxCandidates: rc.MaxCandidates,
			DefaultLimit:  rc.ResultLimit,
			Timeout:       rc.Timeout,
		},
		Cache: CacheConfig{
			Enabled:    rc.CacheSize > 0,
			MaxEntries: rc.CacheSize,
			TTL:        rc.CacheTTL,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.MaxRating <= 0 {
		return fmt.Errorf("max_rating must be positive, got %v", c.MaxRating)
	}
	if c.Weights.Popularity < 0 || c.Weights.Quality < 0 || c.Weights.Genre < 0 {
		return fmt.Errorf("weights must be non-negative, got %+v", c.Weights)
	}
	if c.Limits.MaxCandidates < 1 {
		return fmt.Errorf("limits.max_candidates must be positive, got %d", c.Limits.MaxCandidates)
	}
	if c.Limits.DefaultLimit < 1 || c.Limits.DefaultLimit > MaxResultLimit {
		return fmt.Errorf("limits.default_limit must be in [1, %d], got %d", MaxResultLimit, c.Limits.DefaultLimit)
	}
	if c.Cache.Enabled && c.Cache.MaxEntries < 1 {
		return fmt.Errorf("cache.max_entries must be positive when caching is enabled, got %d", c.Cache.MaxEntries)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
