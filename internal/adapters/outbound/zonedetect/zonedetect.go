package zonedetect

import (
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/loamlabs/loam/internal/domain"
)

// markerSpec is one project marker kind, scanned in priority order:
// solution-level markers first, then per-project manifests of the same
// ecosystem, then the manifests of other ecosystems.
type markerSpec struct {
	name     string // exact file name, or *.ext glob
	language string
}

var markerPriority = []markerSpec{
	{"*.sln", "csharp"},
	{"*.csproj", "csharp"},
	{"go.mod", "go"},
	{"pyproject.toml", "python"},
	{"package.json", "typescript"},
	{"pom.xml", "java"},
	{"Cargo.toml", "rust"},
}

// Detector implements domain.ZoneDetector. Detection is deterministic for a
// given file tree: markers are scanned in fixed priority order and candidate
// paths inside an already-accepted zone are dropped.
type Detector struct{}

func New() *Detector {
	return &Detector{}
}

func (d *Detector) Detect(tree *domain.RepoTree, log *domain.DiscoveryLog) ([]domain.Zone, error) {
	var accepted []domain.Zone
	usedNames := make(map[string]bool)
	zoneDirs := make(map[string]string) // dir → marker that claimed it

	for _, spec := range markerPriority {
		for _, f := range tree.Files {
			if !matchesMarker(path.Base(f), spec.name) {
				continue
			}

			dir := path.Dir(f)
			if claimedBy, ok := zoneDirs[dir]; ok {
				// Polyglot directory: two ecosystems' manifests at the same
				// level. Priority order decides; the loser is recorded.
				log.Ambiguity(f, "directory already claimed by "+claimedBy)
				continue
			}
			if insideAccepted(accepted, dir) {
				continue
			}

			if reason, ok := validateMarker(tree.Root, f, spec); !ok {
				log.SkipZone(dir, "marker "+f+": "+reason)
				continue
			}

			lang := spec.language
			if spec.name == "package.json" && !hasTypeScriptConfig(tree, dir) {
				lang = "javascript"
			}

			accepted = append(accepted, domain.Zone{
				Name:      zoneName(tree, dir, usedNames),
				Path:      dir,
				Language:  lang,
				Marker:    f,
				Detection: domain.DetectionAuto,
			})
			zoneDirs[dir] = f
		}
	}

	return accepted, nil
}

func matchesMarker(base, pattern string) bool {
	if strings.HasPrefix(pattern, "*.") {
		return strings.HasSuffix(base, pattern[1:])
	}
	return base == pattern
}

func insideAccepted(zones []domain.Zone, dir string) bool {
	for _, z := range zones {
		if z.Contains(dir) {
			return true
		}
	}
	return false
}

// validateMarker rejects malformed manifests so a broken marker file never
// produces a zone. Zone candidates are skipped, not fatal; only the manual
// configuration document gets fail-fast treatment.
func validateMarker(root, rel string, spec markerSpec) (reason string, ok bool) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return err.Error(), false
	}

	switch {
	case spec.name == "package.json":
		var v map[string]any
		if err := json.Unmarshal(data, &v); err != nil {
			return "malformed JSON: " + err.Error(), false
		}
	case spec.name == "pyproject.toml" || spec.name == "Cargo.toml":
		var v map[string]any
		if err := toml.Unmarshal(data, &v); err != nil {
			return "malformed TOML: " + err.Error(), false
		}
	case spec.name == "go.mod":
		if !strings.Contains(string(data), "module ") {
			return "no module directive", false
		}
	}
	return "", true
}

func hasTypeScriptConfig(tree *domain.RepoTree, dir string) bool {
	probe := "tsconfig.json"
	if dir != "." {
		probe = dir + "/tsconfig.json"
	}
	for _, f := range tree.Files {
		if f == probe {
			return true
		}
	}
	return false
}

// zoneName derives a stable zone name from its directory; the repository
// root takes the root directory's own name. Collisions between same-named
// directories at different depths fall back to the joined path.
func zoneName(tree *domain.RepoTree, dir string, used map[string]bool) string {
	var name string
	if dir == "." {
		name = path.Base(tree.Root)
	} else {
		name = path.Base(dir)
	}
	if used[name] && dir != "." {
		name = strings.ReplaceAll(dir, "/", "-")
	}
	used[name] = true
	return name
}
