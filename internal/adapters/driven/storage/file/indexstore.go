// Package file provides a directory-backed vector index store.
//
// Each index is two files: <name>.<stamp>.vectors holding the binary vectors
// and <name>.json holding the metadata, which names the vectors file it
// belongs to. A save writes a fresh vectors file first and then swaps the
// metadata in with an atomic rename, so a reader sees either the old index or
// the new one.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/codec"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

const (
	metaSuffix    = ".json"
	vectorsSuffix = ".vectors"
	loadAttempts  = 3
)

// IndexStore persists indexes as files in a directory.
type IndexStore struct {
	dir string
}

// NewIndexStore creates a store rooted at dir.
// If dir is empty, defaults to ~/.docqa/data/indexes.
func NewIndexStore(dir string) (*IndexStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".docqa", "data", "indexes")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	return &IndexStore{dir: dir}, nil
}

// Dir returns the store directory.
func (s *IndexStore) Dir() string {
	return s.dir
}

// Save writes the index under name, replacing any previous one.
func (s *IndexStore) Save(ctx context.Context, name string, index *domain.VectorIndex) error {
	if err := codec.ValidateName(name); err != nil {
		return err
	}

	vectorsName := name + "." + uuid.NewString() + vectorsSuffix
	enc, err := codec.Encode(index, vectorsName)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	vectorsPath := filepath.Join(s.dir, vectorsName)
	if err := writeAtomic(vectorsPath, enc.Vectors); err != nil {
		return fmt.Errorf("write vectors: %w", err)
	}
	if err := writeAtomic(s.metaPath(name), enc.Meta); err != nil {
		_ = os.Remove(vectorsPath)
		return fmt.Errorf("write metadata: %w", err)
	}

	s.removeStale(name, vectorsName)
	return nil
}

// Load reads the index stored under name.
func (s *IndexStore) Load(ctx context.Context, name string) (*domain.VectorIndex, error) {
	if err := codec.ValidateName(name); err != nil {
		return nil, err
	}

	// A concurrent save may replace the metadata and remove the vectors file
	// between our two reads. The new metadata is complete, so read again.
	idx, err := s.load(name)
	for attempt := 1; attempt < loadAttempts && errors.Is(err, errVectorsGone); attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		idx, err = s.load(name)
	}
	if errors.Is(err, errVectorsGone) {
		return nil, fmt.Errorf("%w: vectors file for %q is missing", domain.ErrIndexCorrupt, name)
	}
	return idx, err
}

var errVectorsGone = errors.New("vectors file missing")

func (s *IndexStore) load(name string) (*domain.VectorIndex, error) {
	metaData, err := os.ReadFile(s.metaPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q in %s", domain.ErrIndexNotFound, name, s.dir)
	}
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	meta, err := codec.DecodeMeta(metaData)
	if err != nil {
		return nil, err
	}
	if filepath.Base(meta.Vectors) != meta.Vectors || !strings.HasPrefix(meta.Vectors, name+".") {
		return nil, fmt.Errorf("%w: unexpected vectors reference %q", domain.ErrIndexCorrupt, meta.Vectors)
	}

	vectors, err := os.ReadFile(filepath.Join(s.dir, meta.Vectors))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errVectorsGone
	}
	if err != nil {
		return nil, fmt.Errorf("read vectors: %w", err)
	}

	return codec.Decode(meta, vectors)
}

// Delete removes both artifacts of the index.
func (s *IndexStore) Delete(_ context.Context, name string) error {
	if err := codec.ValidateName(name); err != nil {
		return err
	}

	if err := os.Remove(s.metaPath(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove metadata: %w", err)
	}
	s.removeStale(name, "")
	return nil
}

func (s *IndexStore) metaPath(name string) string {
	return filepath.Join(s.dir, name+metaSuffix)
}

// removeStale deletes vectors files of name other than keep.
func (s *IndexStore) removeStale(name, keep string) {
	matches, err := filepath.Glob(filepath.Join(s.dir, name+".*"+vectorsSuffix))
	if err != nil {
		return
	}
	for _, m := range matches {
		base := filepath.Base(m)
		if base == keep {
			continue
		}
		// Names are validated without dots, so "a.*" cannot match index "a.b".
		if err := os.Remove(m); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("remove stale vectors %s: %v", base, err)
		}
	}
}

// writeAtomic writes data to a temp file in the same directory and renames
// it over path.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
