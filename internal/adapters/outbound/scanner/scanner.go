package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/loamlabs/loam/internal/domain"
)

var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	".idea":        true,
	".vscode":      true,
	".loam":        true,
	"vendor":       true,
	"node_modules": true,
	"dist":         true,
	"build":        true,
	"bin":          true,
	"obj":          true,
	"target":       true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	".tox":         true,
}

// TreeScanner implements domain.TreeScanner by walking the filesystem.
// All access is read-only; discovery never writes inside the scanned tree.
type TreeScanner struct{}

func New() *TreeScanner {
	return &TreeScanner{}
}

func (s *TreeScanner) Scan(root string, excludes ...string) (*domain.RepoTree, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("repository root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository root %s is not a directory", absRoot)
	}

	extraSkip := make(map[string]bool, len(excludes))
	for _, e := range excludes {
		extraSkip[strings.Trim(filepath.ToSlash(e), "/")] = true
	}

	tree := &domain.RepoTree{Root: absRoot}

	err = filepath.WalkDir(absRoot, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(absRoot, p)
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if skipDirs[d.Name()] || extraSkip[rel] {
				return filepath.SkipDir
			}
			tree.Dirs = append(tree.Dirs, rel)
			return nil
		}

		tree.Files = append(tree.Files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Sorted inventory keeps every downstream phase deterministic.
	sort.Strings(tree.Files)
	sort.Strings(tree.Dirs)
	return tree, nil
}
