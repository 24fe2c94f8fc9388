package configload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/loamlabs/loam/internal/domain"
)

const fileName = ".loam.yaml"

// Loader implements domain.ConfigLoader by reading .loam.yaml from the
// repository root. The document defines zone boundaries, so a malformed file
// is fatal: partial zone boundaries would silently corrupt every downstream
// phase. A missing file is fine and yields the zero config.
type Loader struct{}

func New() *Loader { return &Loader{} }

func (l *Loader) Load(root string) (domain.DiscoveryConfig, error) {
	data, err := os.ReadFile(filepath.Join(root, fileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DiscoveryConfig{}, nil
		}
		return domain.DiscoveryConfig{}, err
	}

	var cfg domain.DiscoveryConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return domain.DiscoveryConfig{}, fmt.Errorf("parsing %s: %w", fileName, err)
	}

	if err := cfg.Validate(); err != nil {
		return domain.DiscoveryConfig{}, fmt.Errorf("invalid %s: %w", fileName, err)
	}

	return cfg, nil
}
