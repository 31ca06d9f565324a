// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/moviequeue/internal/logging"
	"github.com/tomtom215/moviequeue/internal/models"
)

// File names written next to the relationship files.
const (
	MoviesFile = "movies.jsonl"
	PeopleFile = "people.jsonl"

	relFileExt = ".tsv"
)

var relSchema = Schema{
	{Name: "tconst", Type: ColString, Key: true},
	{Name: "nconst", Type: ColString, Key: true},
	{Name: "characters", Type: ColString},
}

// writeAtomic writes path through a temp file in the same directory and
// renames it into place once fully synced.
func writeAtomic(path string, fill func(w *bufio.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriterSize(tmp, 256*1024)
	if err = fill(w); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// RelationshipPath returns the file holding edges of type t in dir.
func RelationshipPath(dir string, t models.RelationshipType) string {
	return filepath.Join(dir, t.String()+relFileExt)
}

// WriteRelationshipFiles writes one TSV per relationship type present in
// rels, in declaration order, and removes the files of every other type so
// a later load only sees this build.
func WriteRelationshipFiles(dir string, rels map[models.RelationshipType][]models.Participation) error {
	for _, t := range models.AllRelationshipTypes() {
		list, ok := rels[t]
		if !ok {
			continue
		}
		err := writeAtomic(RelationshipPath(dir, t), func(w *bufio.Writer) error {
			if _, err := w.WriteString("tconst\tnconst\tcharacters\n"); err != nil {
				return err
			}
			for _, p := range list {
				chars, err := encodeCharacters(t, p.Characters)
				if err != nil {
					return fmt.Errorf("%s %s/%s: %w", t, p.MovieID, p.PersonID, err)
				}
				if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", p.MovieID, p.PersonID, chars); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("write %s relationships: %w", t, err)
		}
	}
	return removeStaleRelationshipFiles(dir, rels)
}

func removeStaleRelationshipFiles(dir string, rels map[models.RelationshipType][]models.Participation) error {
	log := logging.WithComponent(logging.ComponentIngest)
	for _, t := range models.AllRelationshipTypes() {
		if _, ok := rels[t]; ok {
			continue
		}
		path := RelationshipPath(dir, t)
		err := os.Remove(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("remove stale %s relationships: %w", t, err)
		}
		log.Info().Str("type", t.String()).Msg("Removed relationship file from a previous build")
	}
	return nil
}

func encodeCharacters(t models.RelationshipType, chars []string) (string, error) {
	if !t.CarriesCharacters() || len(chars) == 0 {
		return DefaultNullToken, nil
	}
	data, err := json.Marshal(chars)
	if err != nil {
		return "", err
	}
	// A tab or newline inside a name would break the row.
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(string(data)), nil
}

// LoadRelationshipFiles reads every <TYPE>.tsv in dir. Files whose name is
// not a known relationship type are skipped with a warning.
func LoadRelationshipFiles(dir string) (map[models.RelationshipType][]models.Participation, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read relationships dir: %w", err)
	}
	log := logging.WithComponent(logging.ComponentIngest)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), relFileExt) || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make(map[models.RelationshipType][]models.Participation)
	for _, name := range names {
		t, err := models.ParseRelationshipType(strings.TrimSuffix(name, relFileExt))
		if err != nil {
			log.Warn().Str("file", name).Msg("Skipping file with unknown relationship type")
			continue
		}
		list, err := readRelationshipFile(filepath.Join(dir, name), t)
		if err != nil {
			return nil, err
		}
		out[t] = list
	}
	return out, nil
}

// ReadRelationshipFile reads the edges of a single type from dir.
func ReadRelationshipFile(dir string, t models.RelationshipType) ([]models.Participation, error) {
	return readRelationshipFile(RelationshipPath(dir, t), t)
}

func readRelationshipFile(path string, t models.RelationshipType) ([]models.Participation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rd, err := NewReader(f, SourceRelationship, relSchema, DefaultNullToken)
	if err != nil {
		return nil, err
	}
	var list []models.Participation
	err = rd.Each(func(r Row) error {
		movieID, _ := r.String("tconst")
		personID, _ := r.String("nconst")
		p := models.Participation{MovieID: movieID, PersonID: personID, Type: t}
		if t.CarriesCharacters() {
			raw, _ := r.String("characters")
			p.Characters = DecodeCharacters(raw)
		}
		list = append(list, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return list, nil
}

func writeJSONL[T any](path string, items []T) error {
	return writeAtomic(path, func(w *bufio.Writer) error {
		enc := json.NewEncoder(w)
		for i := range items {
			if err := enc.Encode(&items[i]); err != nil {
				return fmt.Errorf("encode line %d: %w", i+1, err)
			}
		}
		return nil
	})
}

func readJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var out []T
	dec := json.NewDecoder(f)
	for {
		var item T
		err := dec.Decode(&item)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s record %d: %w", path, len(out)+1, err)
		}
		out = append(out, item)
	}
}

// WriteMovies writes the selected movies to dir/movies.jsonl.
func WriteMovies(dir string, movies []models.Movie) error {
	return writeJSONL(filepath.Join(dir, MoviesFile), movies)
}

// ReadMovies reads dir/movies.jsonl.
func ReadMovies(dir string) ([]models.Movie, error) {
	return readJSONL[models.Movie](filepath.Join(dir, MoviesFile))
}

// WritePeople writes the kept people to dir/people.jsonl.
func WritePeople(dir string, people []models.Person) error {
	return writeJSONL(filepath.Join(dir, PeopleFile), people)
}

// ReadPeopleFile reads dir/people.jsonl.
func ReadPeopleFile(dir string) ([]models.Person, error) {
	return readJSONL[models.Person](filepath.Join(dir, PeopleFile))
}
