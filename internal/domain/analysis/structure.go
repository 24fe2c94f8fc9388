// Package analysis holds the pure per-zone analyzers. Every function here
// receives immutable zone data and returns fresh values with no I/O, which is
// what makes parallel per-zone analysis safe.
package analysis

import (
	"path"
	"sort"
	"strings"

	"github.com/loamlabs/loam/internal/domain"
)

// entryPointNames are files that start a program, per language.
var entryPointNames = map[string]bool{
	"main.go":     true,
	"program.cs":  true,
	"startup.cs":  true,
	"__main__.py": true,
	"main.py":     true,
	"app.py":      true,
	"manage.py":   true,
	"index.ts":    true,
	"index.js":    true,
	"main.ts":     true,
	"server.ts":   true,
}

// testRootNames are directory names that conventionally hold tests.
var testRootNames = map[string]bool{
	"test":      true,
	"tests":     true,
	"spec":      true,
	"e2e":       true,
	"__tests__": true,
}

// AnalyzeStructure maps the zone's directories onto architectural layers and
// finds entry points and test roots. Layer membership comes from matching
// directory segments against the layer alias table.
func AnalyzeStructure(src *domain.ZoneSource, rules domain.LayerRules) domain.ZoneStructure {
	st := domain.ZoneStructure{}

	layerModules := make(map[string]map[string]bool)
	entrySet := make(map[string]bool)
	testRootSet := make(map[string]bool)

	for _, f := range src.Files {
		rel := zoneRelative(src.Zone, f.Path)
		dir := path.Dir(rel)

		base := strings.ToLower(path.Base(rel))
		if entryPointNames[base] {
			entrySet[rel] = true
		}

		for _, seg := range strings.Split(dir, "/") {
			if testRootNames[strings.ToLower(seg)] {
				testRootSet[topSegmentPath(dir, seg)] = true
			}
		}

		layer := layerForPath(dir, rules)
		if layer == "" {
			continue
		}
		if layerModules[layer] == nil {
			layerModules[layer] = make(map[string]bool)
		}
		layerModules[layer][moduleForPath(dir)] = true
	}

	for _, layer := range rules.Order {
		mods := layerModules[layer]
		if len(mods) == 0 {
			continue
		}
		names := make([]string, 0, len(mods))
		for m := range mods {
			names = append(names, m)
		}
		sort.Strings(names)
		allowed := append([]string(nil), rules.Allowed[layer]...)
		if allowed == nil {
			allowed = []string{}
		}
		st.Layers = append(st.Layers, domain.ArchitectureLayer{
			Name:        layer,
			Modules:     names,
			AllowedRefs: allowed,
		})
	}

	st.EntryPoints = sortedKeys(entrySet)
	st.TestRoots = sortedKeys(testRootSet)

	if len(st.Layers) >= 2 {
		st.Layout = "layered"
	} else {
		st.Layout = "flat"
	}

	return st
}

// layerForPath returns the canonical layer of a zone-relative directory, or
// "" when no segment names a layer. The deepest matching segment wins, so
// internal/orders/domain classifies as domain, not orders.
func layerForPath(dir string, rules domain.LayerRules) string {
	if dir == "." {
		return ""
	}
	segments := strings.Split(dir, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if layer := rules.Canonical(strings.ToLower(segments[i])); layer != "" {
			return layer
		}
	}
	return ""
}

// moduleForPath names the module a directory belongs to: the first segment
// that is not a structural prefix like src/ or internal/.
func moduleForPath(dir string) string {
	if dir == "." {
		return "."
	}
	for _, seg := range strings.Split(dir, "/") {
		switch strings.ToLower(seg) {
		case "src", "internal", "lib", "pkg":
			continue
		}
		return seg
	}
	return dir
}

// topSegmentPath returns the path prefix up to and including segment.
func topSegmentPath(dir, segment string) string {
	segments := strings.Split(dir, "/")
	for i, s := range segments {
		if strings.EqualFold(s, segment) {
			return strings.Join(segments[:i+1], "/")
		}
	}
	return dir
}

// zoneRelative strips the zone path prefix from a repo-relative path.
func zoneRelative(z domain.Zone, repoRel string) string {
	zp := strings.Trim(z.Path, "/")
	if zp == "" || zp == "." {
		return repoRel
	}
	if strings.HasPrefix(repoRel, zp+"/") {
		return strings.TrimPrefix(repoRel, zp+"/")
	}
	return repoRel
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
