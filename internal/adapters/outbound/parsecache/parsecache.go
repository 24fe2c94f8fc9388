package parsecache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/loamlabs/loam/internal/domain"
)

const cacheFile = "cache.json"

// Store persists parse cache snapshots under the output directory so
// incremental runs skip re-parsing unchanged files. The cache is a pure
// optimization: a missing or corrupt file just means a cold run.
type Store struct {
	outputDir string
}

func New(outputDir string) *Store {
	if outputDir == "" {
		outputDir = ".loam"
	}
	return &Store{outputDir: outputDir}
}

func (s *Store) path(root string) string {
	return filepath.Join(root, s.outputDir, cacheFile)
}

// Load seeds cache from the persisted snapshot, if one exists.
func (s *Store) Load(root string, cache *domain.ParseCache) error {
	data, err := os.ReadFile(s.path(root))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading parse cache: %w", err)
	}

	var entries map[string]domain.CacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		// Corrupt cache: start cold rather than fail the run.
		return nil
	}
	cache.Restore(entries)
	return nil
}

func (s *Store) Save(root string, cache *domain.ParseCache) error {
	dir := filepath.Join(root, s.outputDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	data, err := json.Marshal(cache.Snapshot())
	if err != nil {
		return fmt.Errorf("encoding parse cache: %w", err)
	}
	if err := os.WriteFile(s.path(root), data, 0o644); err != nil {
		return fmt.Errorf("writing parse cache: %w", err)
	}
	return nil
}
