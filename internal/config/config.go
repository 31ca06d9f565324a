// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/moviequeue/internal/models"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values from defaultConfig()
//  2. Config File: optional YAML file (CONFIG_PATH, config.yaml, /etc/moviequeue/config.yaml)
//  3. Environment Variables: explicit mapping in envTransformFunc
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Neo4j     Neo4jConfig     `koanf:"neo4j"`
	Ingest    IngestConfig    `koanf:"ingest"`
	Recommend RecommendConfig `koanf:"recommend"`
	Roles     RolesConfig     `koanf:"roles"`
	Breaker   BreakerConfig   `koanf:"breaker"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// Neo4jConfig holds graph store connection settings.
//
// Environment Variables:
//   - NEO4J_URI (default: neo4j://localhost:7687)
//   - NEO4J_USER, NEO4J_PASSWORD
//   - NEO4J_DATABASE (empty = server default database)
//   - NEO4J_MAX_POOL_SIZE, NEO4J_CONNECT_TIMEOUT, NEO4J_QUERY_TIMEOUT
type Neo4jConfig struct {
	URI            string        `koanf:"uri"`
	Username       string        `koanf:"username"`
	Password       string        `koanf:"password"`
	Database       string        `koanf:"database"`
	MaxPoolSize    int           `koanf:"max_pool_size"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`

	// QueryTimeout bounds every transaction; the server aborts queries that
	// exceed it.
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

// IngestConfig controls the ingestion pipeline.
type IngestConfig struct {
	TitlesPath     string `koanf:"titles_path"`
	RatingsPath    string `koanf:"ratings_path"`
	PeoplePath     string `koanf:"people_path"`
	PrincipalsPath string `koanf:"principals_path"`

	// OutputDir receives the intermediate relationship, movie and people files.
	OutputDir string `koanf:"output_dir"`

	BatchSize int `koanf:"batch_size"`
	TopK      int `koanf:"top_k"`

	// MatureCategory is the synthetic genre added for adult titles.
	MatureCategory string `koanf:"mature_category"`

	// NullToken marks a missing value in the raw files.
	NullToken string `koanf:"null_token"`

	// TitleTypes lists the titleType values that are kept.
	TitleTypes []string `koanf:"title_types"`

	// Parallelism bounds concurrent relationship-type loads.
	Parallelism int `koanf:"parallelism"`

	// WritesPerSecond paces batch writes; 0 disables pacing.
	WritesPerSecond float64 `koanf:"writes_per_second"`

	// ProgressPath is the BadgerDB directory for stage checkpoints; empty
	// keeps checkpoints in memory only.
	ProgressPath string `koanf:"progress_path"`
}

// RecommendConfig holds scoring constants and request limits.
type RecommendConfig struct {
	// MaxRating normalizes a rating into an influence weight.
	MaxRating float64 `koanf:"max_rating"`

	// MaxCandidates caps the candidate set before scoring.
	MaxCandidates int `koanf:"max_candidates"`

	// ResultLimit is the number of recommendations returned.
	ResultLimit int `koanf:"result_limit"`

	PopularityWeight float64 `koanf:"popularity_weight"`
	QualityWeight    float64 `koanf:"quality_weight"`
	GenreWeight      float64 `koanf:"genre_weight"`

	CacheSize int           `koanf:"cache_size"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`

	// Timeout bounds a whole recommendation request.
	Timeout time.Duration `koanf:"timeout"`
}

// RolesConfig is the role taxonomy shared by classification and scoring.
type RolesConfig struct {
	// Mapping maps a lower-cased category label to a relationship type name.
	Mapping map[string]string `koanf:"mapping"`

	// Coefficients maps a relationship type name to its scoring weight.
	Coefficients map[string]float64 `koanf:"coefficients"`

	// DefaultCoefficient applies to relationship types without an entry.
	DefaultCoefficient float64 `koanf:"default_coefficient"`
}

// BreakerConfig configures the circuit breaker in front of the graph store.
type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	Timeout           time.Duration `koanf:"timeout"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RoleTable resolves the configured role taxonomy.
func (c *Config) RoleTable() (*models.RoleTable, error) {
	return models.NewRoleTable(c.Roles.Mapping, c.Roles.Coefficients, c.Roles.DefaultCoefficient)
}

// Load reads configuration from the default sources.
func Load() (*Config, error) {
	return LoadWithKoanf("")
}
