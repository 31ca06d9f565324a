// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateNeo4j(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateRoles(); err != nil {
		return err
	}
	if err := c.validateBreaker(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

var validNeo4jSchemes = map[string]bool{
	"neo4j": true, "neo4j+s": true, "neo4j+ssc": true,
	"bolt": true, "bolt+s": true, "bolt+ssc": true,
}

func (c *Config) validateNeo4j() error {
	if c.Neo4j.URI == "" {
		return fmt.Errorf("NEO4J_URI is required")
	}
	u, err := url.Parse(c.Neo4j.URI)
	if err != nil {
		return fmt.Errorf("NEO4J_URI is invalid: %w", err)
	}
	if !validNeo4jSchemes[u.Scheme] {
		return fmt.Errorf("NEO4J_URI scheme must be neo4j or bolt (optionally +s/+ssc), got %q", u.Scheme)
	}
	if c.Neo4j.MaxPoolSize < 1 {
		return fmt.Errorf("NEO4J_MAX_POOL_SIZE must be at least 1")
	}
	if c.Neo4j.QueryTimeout <= 0 {
		return fmt.Errorf("NEO4J_QUERY_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.BatchSize < 1 || c.Ingest.BatchSize > 10000 {
		return fmt.Errorf("INGEST_BATCH_SIZE must be between 1 and 10000")
	}
	if c.Ingest.TopK < 1 {
		return fmt.Errorf("INGEST_TOP_K must be at least 1")
	}
	if c.Ingest.Parallelism < 1 {
		return fmt.Errorf("INGEST_PARALLELISM must be at least 1")
	}
	if c.Ingest.WritesPerSecond < 0 {
		return fmt.Errorf("INGEST_WRITES_PER_SEC must not be negative")
	}
	if strings.TrimSpace(c.Ingest.MatureCategory) == "" {
		return fmt.Errorf("INGEST_MATURE_CATEGORY must not be empty")
	}
	if c.Ingest.NullToken == "" {
		return fmt.Errorf("INGEST_NULL_TOKEN must not be empty")
	}
	if len(c.Ingest.TitleTypes) == 0 {
		return fmt.Errorf("INGEST_TITLE_TYPES must list at least one title type")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.MaxRating <= 0 {
		return fmt.Errorf("RECOMMEND_MAX_RATING must be positive")
	}
	if r.MaxCandidates < 1 || r.MaxCandidates > 1000 {
		return fmt.Errorf("RECOMMEND_MAX_CANDIDATES must be between 1 and 1000")
	}
	if r.ResultLimit < 1 || r.ResultLimit > 25 {
		return fmt.Errorf("RECOMMEND_RESULT_LIMIT must be between 1 and 25")
	}
	if r.PopularityWeight < 0 || r.QualityWeight < 0 || r.GenreWeight < 0 {
		return fmt.Errorf("recommendation weights must not be negative")
	}
	if r.CacheSize < 0 {
		return fmt.Errorf("RECOMMEND_CACHE_SIZE must not be negative")
	}
	return nil
}

func (c *Config) validateRoles() error {
	if _, err := c.RoleTable(); err != nil {
		return fmt.Errorf("invalid role configuration: %w", err)
	}
	return nil
}

func (c *Config) validateBreaker() error {
	if !c.Breaker.Enabled {
		return nil
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1]")
	}
	if c.Breaker.MaxRequests == 0 {
		return fmt.Errorf("BREAKER_MAX_REQUESTS must be at least 1")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.RateLimitRequests < 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must not be negative")
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if !validLogFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
