package provider

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/loamlabs/loam/internal/domain"
)

// TypeScriptProvider implements domain.LanguageProvider for TypeScript and
// JavaScript zones; the declaration surface the line scanner reads is shared
// between the two.
type TypeScriptProvider struct {
	language string
}

func NewTypeScriptProvider(language string) *TypeScriptProvider {
	return &TypeScriptProvider{language: language}
}

func (p *TypeScriptProvider) Language() string { return p.language }

func (p *TypeScriptProvider) Extensions() []string {
	if p.language == "javascript" {
		return []string{".js", ".jsx", ".mjs"}
	}
	return []string{".ts", ".tsx"}
}

var (
	tsImportRe    = regexp.MustCompile(`^\s*import\s+.*?from\s+['"]([^'"]+)['"]`)
	tsBareImport  = regexp.MustCompile(`^\s*import\s+['"]([^'"]+)['"]`)
	tsRequireRe   = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)
	tsClassRe     = regexp.MustCompile(`^\s*(export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+(\w+)(?:\s+extends\s+([\w.]+))?(?:\s+implements\s+([\w.,\s]+))?`)
	tsInterfaceRe = regexp.MustCompile(`^\s*(export\s+)?interface\s+(\w+)(?:\s+extends\s+([\w.]+))?`)
	tsFunctionRe  = regexp.MustCompile(`^\s*(export\s+)?(?:default\s+)?(?:async\s+)?function\s+(\w+)\s*\(([^)]*)`)
	tsDecoratorRe = regexp.MustCompile(`^\s*@(\w+)`)
	tsTestCaseRe  = regexp.MustCompile(`^\s*(?:it|test)\s*\(`)
)

func (p *TypeScriptProvider) ParseFile(absPath, relPath string) (*domain.SourceFile, error) {
	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", relPath, err)
	}
	defer f.Close()

	base := path.Base(relPath)
	sf := &domain.SourceFile{
		Path:     relPath,
		Language: p.language,
		IsTest:   strings.Contains(base, ".spec.") || strings.Contains(base, ".test."),
	}

	var pendingDecorators []string

	scan := bufio.NewScanner(f)
	scan.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scan.Scan() {
		lineNo++
		line := scan.Text()

		if m := tsDecoratorRe.FindStringSubmatch(line); m != nil {
			pendingDecorators = append(pendingDecorators, m[1])
			continue
		}

		matchedImport := false
		for _, re := range []*regexp.Regexp{tsImportRe, tsBareImport, tsRequireRe} {
			if m := re.FindStringSubmatch(line); m != nil {
				sf.Imports = append(sf.Imports, domain.Import{Path: m[1], Line: lineNo})
				matchedImport = true
				break
			}
		}
		if matchedImport {
			pendingDecorators = nil
			continue
		}

		if m := tsClassRe.FindStringSubmatch(line); m != nil {
			sf.Symbols = append(sf.Symbols, domain.Symbol{
				Name:        m[2],
				Kind:        domain.KindClass,
				Exported:    m[1] != "",
				Line:        lineNo,
				Extends:     firstNonEmpty(m[3], strings.TrimSpace(strings.Split(m[4], ",")[0])),
				Annotations: pendingDecorators,
			})
			pendingDecorators = nil
			continue
		}

		if m := tsInterfaceRe.FindStringSubmatch(line); m != nil {
			sf.Symbols = append(sf.Symbols, domain.Symbol{
				Name:     m[2],
				Kind:     domain.KindInterface,
				Exported: m[1] != "",
				Line:     lineNo,
				Extends:  m[3],
			})
			pendingDecorators = nil
			continue
		}

		if m := tsFunctionRe.FindStringSubmatch(line); m != nil {
			sym := domain.Symbol{
				Name:        m[2],
				Kind:        domain.KindFunction,
				Exported:    m[1] != "",
				Line:        lineNo,
				Annotations: pendingDecorators,
			}
			for _, param := range strings.Split(m[3], ",") {
				if idx := strings.Index(param, ":"); idx >= 0 {
					sym.Params = append(sym.Params, strings.TrimSpace(param[idx+1:]))
				}
			}
			sf.Symbols = append(sf.Symbols, sym)
			pendingDecorators = nil
			continue
		}

		if tsTestCaseRe.MatchString(line) {
			sf.TestCases++
		}

		if strings.TrimSpace(line) != "" {
			pendingDecorators = nil
		}
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", relPath, err)
	}

	sf.Lines = lineNo
	return sf, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// packageJSON is the slice of package.json this engine reads.
type packageJSON struct {
	Name            string            `json:"name"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func (p *TypeScriptProvider) DetectProject(tree *domain.RepoTree, zone domain.Zone) (*domain.ProjectInfo, error) {
	pkg, marker, err := readPackageJSON(tree, zone)
	if err != nil {
		return nil, err
	}
	name := pkg.Name
	if name == "" {
		name = path.Base(zone.Path)
	}
	return &domain.ProjectInfo{Name: name, Language: p.language, Marker: marker}, nil
}

func (p *TypeScriptProvider) Dependencies(tree *domain.RepoTree, zone domain.Zone) ([]domain.Dependency, error) {
	pkg, marker, err := readPackageJSON(tree, zone)
	if err != nil {
		return nil, err
	}

	var deps []domain.Dependency
	for _, m := range []map[string]string{pkg.Dependencies, pkg.DevDependencies} {
		names := make([]string, 0, len(m))
		for n := range m {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			deps = append(deps, domain.Dependency{Name: n, Version: m[n], Manifest: marker})
		}
	}
	return deps, nil
}

func readPackageJSON(tree *domain.RepoTree, zone domain.Zone) (*packageJSON, string, error) {
	marker := markerPath(zone, "package.json")
	data, err := os.ReadFile(filepath.Join(tree.Root, filepath.FromSlash(marker)))
	if err != nil {
		return nil, marker, fmt.Errorf("reading %s: %w", marker, err)
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, marker, fmt.Errorf("parsing %s: %w", marker, err)
	}
	return &pkg, marker, nil
}
