// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/moviequeue/internal/logging"
)

// schemaStatements back every MERGE key with a uniqueness constraint, which
// also gives MERGE an index to look up.
var schemaStatements = []Query{
	{Name: "constraint_movie_id", Cypher: "CREATE CONSTRAINT movie_id IF NOT EXISTS FOR (m:Movie) REQUIRE m.id IS UNIQUE"},
	{Name: "constraint_person_id", Cypher: "CREATE CONSTRAINT person_id IF NOT EXISTS FOR (p:Person) REQUIRE p.id IS UNIQUE"},
	{Name: "constraint_genre_name", Cypher: "CREATE CONSTRAINT genre_name IF NOT EXISTS FOR (g:Genre) REQUIRE g.name IS UNIQUE"},
	{Name: "constraint_profession_name", Cypher: "CREATE CONSTRAINT profession_name IF NOT EXISTS FOR (p:Profession) REQUIRE p.name IS UNIQUE"},
	{Name: "constraint_user_username", Cypher: "CREATE CONSTRAINT user_username IF NOT EXISTS FOR (u:User) REQUIRE u.username IS UNIQUE"},
}

// EnsureSchema creates the uniqueness constraints. It is best effort: every
// statement is attempted, failures are logged, and the joined errors are
// returned for the caller to decide whether to continue.
func EnsureSchema(ctx context.Context, store Store) error {
	log := logging.WithComponent(logging.ComponentGraph)

	var errs []error
	for _, stmt := range schemaStatements {
		if _, err := store.Execute(ctx, stmt); err != nil {
			log.Warn().Err(err).Str("statement", stmt.Name).Msg("Schema statement failed")
			errs = append(errs, fmt.Errorf("%s: %w", stmt.Name, err))
			continue
		}
		log.Debug().Str("statement", stmt.Name).Msg("Schema statement applied")
	}
	return errors.Join(errs...)
}
