// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

/*
Package config loads MovieQueue configuration with Koanf v2.

Sources are layered, later layers winning:

 1. Built-in defaults (defaultConfig)
 2. A YAML file: the --config flag, CONFIG_PATH, ./config.yaml or
    /etc/moviequeue/config.yaml
 3. Explicitly mapped environment variables (NEO4J_URI, INGEST_BATCH_SIZE,
    HTTP_PORT, LOG_LEVEL and friends; see envMappings)

# Sections

  - neo4j: connection, pool and query timeout for the graph store
  - ingest: raw file paths, batch size, top-K, null token, pacing, checkpoints
  - recommend: max rating, candidate cap, result limit, scoring weights, cache
  - roles: category label to relationship mapping and scoring coefficients
  - breaker: circuit breaker in front of the graph store
  - server: HTTP listener, timeout, rate limit, CORS
  - logging: zerolog level and format

Validate runs after unmarshaling and reports the first invalid setting by its
environment variable name. The role tables are checked by building a
models.RoleTable, so an unknown relationship name fails at startup rather than
during ingestion.

Example config.yaml:

	neo4j:
	  uri: neo4j://localhost:7687
	  username: neo4j
	  password: secret
	ingest:
	  batch_size: 100
	  top_k: 250
	roles:
	  coefficients:
	    ACTED_IN: 4
	    DIRECTED: 3
*/
package config
