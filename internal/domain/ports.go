package domain

import "context"

// RepoTree is the read-only file inventory of a repository root. Paths are
// repo-relative with forward slashes, sorted.
type RepoTree struct {
	Root  string
	Files []string
	Dirs  []string
}

// TreeScanner walks a repository root and returns its file inventory.
type TreeScanner interface {
	Scan(root string, excludes ...string) (*RepoTree, error)
}

// ZoneDetector proposes non-overlapping zones from project markers.
type ZoneDetector interface {
	Detect(tree *RepoTree, log *DiscoveryLog) ([]Zone, error)
}

// LanguageProvider is the per-language capability set. One implementation per
// supported language, selected through a registry keyed by language id.
// ParseFile failures on a single file must not abort zone analysis.
type LanguageProvider interface {
	Language() string
	Extensions() []string
	DetectProject(tree *RepoTree, zone Zone) (*ProjectInfo, error)
	ParseFile(absPath, relPath string) (*SourceFile, error)
	Dependencies(tree *RepoTree, zone Zone) ([]Dependency, error)
}

// ConfigLoader reads the manual zone/contract configuration document.
type ConfigLoader interface {
	Load(root string) (DiscoveryConfig, error)
}

// ProfileStore persists the profile document and the discovery log. Save
// validates before writing and must leave any previous profile untouched on
// validation failure.
type ProfileStore interface {
	Load(root string) (*CodebaseProfile, error)
	Save(root string, profile *CodebaseProfile, log *DiscoveryLog) error
}

// InteractionDetector finds cross-zone relationships after per-zone analysis.
type InteractionDetector interface {
	Detect(ctx context.Context, tree *RepoTree, zones []Zone, sources map[string]*ZoneSource, log *DiscoveryLog) ([]Interaction, error)
}

// GitInfo exposes repository metadata for the discovery header.
type GitInfo interface {
	IsGitRepo(root string) bool
	CommitHash(root string) (string, error)
}
