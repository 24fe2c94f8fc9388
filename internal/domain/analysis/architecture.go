package analysis

import (
	"path"
	"sort"
	"strings"

	"github.com/loamlabs/loam/internal/domain"
)

// moduleNode accumulates one node of the zone dependency graph while edges
// are being resolved.
type moduleNode struct {
	dir     string
	layer   string
	imports map[string][]domain.Location // target dir → contributing locations
}

// MapArchitecture builds the zone's module dependency graph from import
// statements, classifies each node into a layer, and flags every edge the
// allowed-reference table forbids. Violations carry all contributing import
// locations, not a count.
func MapArchitecture(src *domain.ZoneSource, rules domain.LayerRules) domain.ArchitectureReport {
	files := src.SourceFiles()
	if len(files) == 0 {
		return domain.ArchitectureReport{}
	}

	nodes := make(map[string]*moduleNode)
	nodeFor := func(dir string) *moduleNode {
		n, ok := nodes[dir]
		if !ok {
			n = &moduleNode{
				dir:     dir,
				layer:   layerForPath(dir, rules),
				imports: make(map[string][]domain.Location),
			}
			nodes[dir] = n
		}
		return n
	}

	// Index for resolving imports back to zone directories.
	dirSet := make(map[string]bool)
	namespaceDir := make(map[string]string)
	for _, f := range files {
		dir := path.Dir(zoneRelative(src.Zone, f.Path))
		dirSet[dir] = true
		if f.Namespace != "" {
			namespaceDir[f.Namespace] = dir
		}
		nodeFor(dir)
	}

	modulePath := ""
	if src.Project != nil {
		modulePath = src.Project.ModulePath
	}

	for _, f := range files {
		rel := zoneRelative(src.Zone, f.Path)
		fromDir := path.Dir(rel)
		node := nodeFor(fromDir)

		for _, imp := range f.Imports {
			target, ok := resolveImport(imp.Path, fromDir, modulePath, dirSet, namespaceDir)
			if !ok || target == fromDir {
				continue
			}
			node.imports[target] = append(node.imports[target], domain.Location{File: f.Path, Line: imp.Line})
		}
	}

	report := domain.ArchitectureReport{}

	dirs := make([]string, 0, len(nodes))
	for d := range nodes {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	for _, d := range dirs {
		n := nodes[d]

		targets := make([]string, 0, len(n.imports))
		for t := range n.imports {
			targets = append(targets, t)
		}
		sort.Strings(targets)

		report.Modules = append(report.Modules, domain.GraphModule{
			Name:    moduleForPath(d),
			Path:    d,
			Layer:   n.layer,
			Imports: targets,
		})

		if n.layer == "" {
			continue // unclassified modules are never penalized
		}
		for _, t := range targets {
			toLayer := nodes[t].layer
			if toLayer == "" || rules.RefAllowed(n.layer, toLayer) {
				continue
			}
			locs := append([]domain.Location(nil), n.imports[t]...)
			sort.Slice(locs, func(i, j int) bool {
				if locs[i].File != locs[j].File {
					return locs[i].File < locs[j].File
				}
				return locs[i].Line < locs[j].Line
			})
			report.Violations = append(report.Violations, domain.ArchitectureViolation{
				FromLayer:  n.layer,
				ToLayer:    toLayer,
				FromModule: d,
				ToModule:   t,
				Severity:   rules.Severity(n.layer, toLayer),
				Locations:  locs,
			})
		}
	}

	return report
}

// resolveImport maps an import statement back to a zone-relative directory.
// Returns false for stdlib and third-party imports.
func resolveImport(impPath, fromDir, modulePath string, dirSet map[string]bool, namespaceDir map[string]string) (string, bool) {
	// Go style: module-path-prefixed import.
	if modulePath != "" {
		if impPath == modulePath {
			return ".", dirSet["."]
		}
		if strings.HasPrefix(impPath, modulePath+"/") {
			dir := strings.TrimPrefix(impPath, modulePath+"/")
			return dir, dirSet[dir]
		}
	}

	// Relative import (TypeScript/JavaScript, Python "from . import").
	if strings.HasPrefix(impPath, "./") || strings.HasPrefix(impPath, "../") || impPath == "." {
		resolved := path.Join(fromDir, impPath)
		for _, candidate := range []string{resolved, path.Dir(resolved)} {
			if dirSet[candidate] {
				return candidate, true
			}
		}
		return "", false
	}

	// Namespace import (C# using, Python absolute import). Exact namespace
	// first, then parent namespaces: "using App.Orders.Domain" resolves via
	// the longest declared prefix.
	probe := impPath
	for probe != "" {
		if dir, ok := namespaceDir[probe]; ok {
			return dir, true
		}
		idx := strings.LastIndex(probe, ".")
		if idx < 0 {
			break
		}
		probe = probe[:idx]
	}

	// Dotted path that mirrors the directory tree: orders.domain → orders/domain.
	if strings.Contains(impPath, ".") && !strings.Contains(impPath, "/") {
		dir := strings.ReplaceAll(impPath, ".", "/")
		for dir != "" && dir != "." {
			if dirSet[dir] {
				return dir, true
			}
			dir = path.Dir(dir)
		}
	}

	return "", false
}
