// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/moviequeue/internal/models"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/moviequeue/config.yaml",
	"/etc/moviequeue/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all defaults applied.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Neo4j: Neo4jConfig{
			URI:            "neo4j://localhost:7687",
			Username:       "neo4j",
			Password:       "",
			Database:       "", // server default database
			MaxPoolSize:    50,
			ConnectTimeout: 10 * time.Second,
			QueryTimeout:   60 * time.Second,
		},
		Ingest: IngestConfig{
			TitlesPath:      "data/title.basics.tsv",
			RatingsPath:     "data/title.ratings.tsv",
			PeoplePath:      "data/name.basics.tsv",
			PrincipalsPath:  "data/title.principals.tsv",
			OutputDir:       "data/relationships",
			BatchSize:       100,
			TopK:            250,
			MatureCategory:  "Adult",
			NullToken:       `\N`,
			TitleTypes:      []string{"movie"},
			Parallelism:     4,
			WritesPerSecond: 0, // unpaced
			ProgressPath:    "",
		},
		Recommend: RecommendConfig{
			MaxRating:        10,
			MaxCandidates:    100,
			ResultLimit:      10,
			PopularityWeight: 2,
			QualityWeight:    2,
			GenreWeight:      2,
			CacheSize:        1000,
			CacheTTL:         5 * time.Minute,
			Timeout:          30 * time.Second,
		},
		Roles: RolesConfig{
			Mapping:            models.DefaultRoleMapping(),
			Coefficients:       models.DefaultRoleCoefficients(),
			DefaultCoefficient: 1,
		},
		Breaker: BreakerConfig{
			Enabled:      true,
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      2 * time.Minute,
			MinRequests:  10,
			FailureRatio: 0.6,
		},
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8484,
			Timeout:           30 * time.Second,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: explicit path, or the first file found in the search paths
//  3. Environment Variables: Override any mapped setting
//
// Role mapping and coefficient tables from a config file replace the
// built-in tables as a whole.
func LoadWithKoanf(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional unless given explicitly)
	configPath := path
	if configPath == "" {
		configPath = findConfigFile()
	} else if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// NEO4J_URI -> neo4j.uri
	// INGEST_BATCH_SIZE -> ingest.batch_size
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"ingest.title_types",
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	"neo4j_uri":             "neo4j.uri",
	"neo4j_user":            "neo4j.username",
	"neo4j_password":        "neo4j.password",
	"neo4j_database":        "neo4j.database",
	"neo4j_max_pool_size":   "neo4j.max_pool_size",
	"neo4j_connect_timeout": "neo4j.connect_timeout",
	"neo4j_query_timeout":   "neo4j.query_timeout",

	"ingest_titles_path":     "ingest.titles_path",
	"ingest_ratings_path":    "ingest.ratings_path",
	"ingest_people_path":     "ingest.people_path",
	"ingest_principals_path": "ingest.principals_path",
	"ingest_output_dir":      "ingest.output_dir",
	"ingest_batch_size":      "ingest.batch_size",
	"ingest_top_k":           "ingest.top_k",
	"ingest_mature_category": "ingest.mature_category",
	"ingest_title_types":     "ingest.title_types",
	"ingest_parallelism":     "ingest.parallelism",
	"ingest_writes_per_sec":  "ingest.writes_per_second",
	"ingest_progress_path":   "ingest.progress_path",
	"ingest_null_token":      "ingest.null_token",

	"recommend_max_rating":        "recommend.max_rating",
	"recommend_max_candidates":    "recommend.max_candidates",
	"recommend_result_limit":      "recommend.result_limit",
	"recommend_popularity_weight": "recommend.popularity_weight",
	"recommend_quality_weight":    "recommend.quality_weight",
	"recommend_genre_weight":      "recommend.genre_weight",
	"recommend_cache_size":        "recommend.cache_size",
	"recommend_cache_ttl":         "recommend.cache_ttl",
	"recommend_timeout":           "recommend.timeout",

	"role_default_coefficient": "roles.default_coefficient",

	"breaker_enabled":       "breaker.enabled",
	"breaker_max_requests":  "breaker.max_requests",
	"breaker_interval":      "breaker.interval",
	"breaker_timeout":       "breaker.timeout",
	"breaker_min_requests":  "breaker.min_requests",
	"breaker_failure_ratio": "breaker.failure_ratio",

	"http_host":           "server.host",
	"http_port":           "server.port",
	"http_timeout":        "server.timeout",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",
	"cors_origins":        "server.cors_origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - NEO4J_URI -> neo4j.uri
//   - NEO4J_USER -> neo4j.username
//   - INGEST_TOP_K -> ingest.top_k
//   - HTTP_PORT -> server.port
//
// Unmapped keys return "" so unrelated environment variables never reach the config.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
