package profilestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/loamlabs/loam/internal/domain"
)

const (
	profileFile = "profile.json"
	logFile     = "discovery.log.json"
)

// Store implements domain.ProfileStore with JSON documents under the output
// directory (default .loam). Saves are atomic: the document is written to a
// temp file and renamed, so a failed or invalid save leaves any previous
// profile untouched.
type Store struct {
	outputDir string
}

func New(outputDir string) *Store {
	if outputDir == "" {
		outputDir = ".loam"
	}
	return &Store{outputDir: outputDir}
}

func (s *Store) profilePath(root string) string {
	return filepath.Join(root, s.outputDir, profileFile)
}

// Load reads the prior profile, or returns (nil, nil) when none exists yet.
func (s *Store) Load(root string) (*domain.CodebaseProfile, error) {
	data, err := os.ReadFile(s.profilePath(root))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	var profile domain.CodebaseProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", profileFile, err)
	}
	return &profile, nil
}

func (s *Store) Save(root string, profile *domain.CodebaseProfile, log *domain.DiscoveryLog) error {
	if err := domain.ValidateProfile(profile); err != nil {
		return fmt.Errorf("refusing to save: %w", err)
	}

	dir := filepath.Join(root, s.outputDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, profileFile), data); err != nil {
		return fmt.Errorf("writing profile: %w", err)
	}

	if log != nil {
		entries := log.Entries()
		logData, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding discovery log: %w", err)
		}
		if err := writeAtomic(filepath.Join(dir, logFile), logData); err != nil {
			return fmt.Errorf("writing discovery log: %w", err)
		}
	}
	return nil
}

func writeAtomic(dst string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
