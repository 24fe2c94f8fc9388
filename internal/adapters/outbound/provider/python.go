package provider

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/loamlabs/loam/internal/domain"
)

// PythonProvider implements domain.LanguageProvider for Python with a line
// scanner over the declaration surface: imports, classes, defs, decorators.
type PythonProvider struct{}

func NewPythonProvider() *PythonProvider {
	return &PythonProvider{}
}

func (p *PythonProvider) Language() string { return "python" }

func (p *PythonProvider) Extensions() []string { return []string{".py"} }

var (
	pyImportRe    = regexp.MustCompile(`^\s*import\s+([\w.]+)`)
	pyFromRe      = regexp.MustCompile(`^\s*from\s+([\w.]+)\s+import`)
	pyClassRe     = regexp.MustCompile(`^(\s*)class\s+(\w+)(?:\(([\w.,\s]*)\))?\s*:`)
	pyDefRe       = regexp.MustCompile(`^(\s*)def\s+(\w+)\s*\(([^)]*)`)
	pyDecoratorRe = regexp.MustCompile(`^\s*@([\w.]+)`)
)

func (p *PythonProvider) ParseFile(absPath, relPath string) (*domain.SourceFile, error) {
	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", relPath, err)
	}
	defer f.Close()

	base := strings.TrimSuffix(path.Base(relPath), ".py")
	sf := &domain.SourceFile{
		Path:      relPath,
		Language:  "python",
		Namespace: moduleNamespace(relPath),
		IsTest:    strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test"),
	}

	var pendingDecorators []string
	currentClass := ""
	classIndent := -1

	scan := bufio.NewScanner(f)
	scan.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scan.Scan() {
		lineNo++
		line := scan.Text()

		if m := pyDecoratorRe.FindStringSubmatch(line); m != nil {
			pendingDecorators = append(pendingDecorators, m[1])
			continue
		}

		if m := pyImportRe.FindStringSubmatch(line); m != nil {
			sf.Imports = append(sf.Imports, domain.Import{Path: m[1], Line: lineNo})
			pendingDecorators = nil
			continue
		}
		if m := pyFromRe.FindStringSubmatch(line); m != nil {
			sf.Imports = append(sf.Imports, domain.Import{Path: m[1], Line: lineNo})
			pendingDecorators = nil
			continue
		}

		if m := pyClassRe.FindStringSubmatch(line); m != nil {
			sym := domain.Symbol{
				Name:        m[2],
				Kind:        domain.KindClass,
				Exported:    !strings.HasPrefix(m[2], "_"),
				Line:        lineNo,
				Annotations: pendingDecorators,
			}
			if m[3] != "" {
				bases := strings.Split(m[3], ",")
				sym.Extends = strings.TrimSpace(bases[0])
			}
			// An abstract base class is the closest Python has to an interface.
			if sym.Extends == "ABC" || sym.Extends == "abc.ABC" || strings.HasPrefix(sym.Extends, "Protocol") {
				sym.Kind = domain.KindInterface
			}
			sf.Symbols = append(sf.Symbols, sym)
			currentClass = m[2]
			classIndent = len(m[1])
			pendingDecorators = nil
			continue
		}

		if m := pyDefRe.FindStringSubmatch(line); m != nil {
			indent := len(m[1])
			sym := domain.Symbol{
				Name:        m[2],
				Kind:        domain.KindFunction,
				Exported:    !strings.HasPrefix(m[2], "_") || m[2] == "__init__",
				Line:        lineNo,
				Annotations: pendingDecorators,
			}
			if currentClass != "" && indent > classIndent {
				sym.Kind = domain.KindMethod
				sym.Owner = currentClass
			} else {
				currentClass = ""
			}
			for _, param := range strings.Split(m[3], ",") {
				param = strings.TrimSpace(param)
				if param == "" || param == "self" || param == "cls" {
					continue
				}
				// Annotated parameter: keep the type, not the name.
				if idx := strings.Index(param, ":"); idx >= 0 {
					sym.Params = append(sym.Params, strings.TrimSpace(strings.SplitN(param[idx+1:], "=", 2)[0]))
				} else {
					sym.Params = append(sym.Params, strings.SplitN(param, "=", 2)[0])
				}
			}
			sf.Symbols = append(sf.Symbols, sym)
			pendingDecorators = nil
			continue
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

// moduleNamespace converts a file path to its dotted import path:
// edge/sensors/reader.py → edge.sensors.reader.
func moduleNamespace(relPath string) string {
	p := strings.TrimSuffix(relPath, ".py")
	p = strings.TrimSuffix(p, "/__init__")
	return strings.ReplaceAll(p, "/", ".")
}

// pyProject is the slice of pyproject.toml this engine reads. Both PEP 621
// and poetry dependency styles are recognized.
type pyProject struct {
	Project struct {
		Name         string   `toml:"name"`
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name         string         `toml:"name"`
			Dependencies map[string]any `toml:"dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

func (p *PythonProvider) DetectProject(tree *domain.RepoTree, zone domain.Zone) (*domain.ProjectInfo, error) {
	proj, marker, err := readPyProject(tree, zone)
	if err != nil {
		return nil, err
	}
	name := proj.Project.Name
	if name == "" {
		name = proj.Tool.Poetry.Name
	}
	if name == "" {
		name = path.Base(zone.Path)
	}
	return &domain.ProjectInfo{Name: name, Language: "python", Marker: marker}, nil
}

func (p *PythonProvider) Dependencies(tree *domain.RepoTree, zone domain.Zone) ([]domain.Dependency, error) {
	proj, marker, err := readPyProject(tree, zone)
	if err != nil {
		return nil, err
	}

	var deps []domain.Dependency
	for _, d := range proj.Project.Dependencies {
		name, version := splitRequirement(d)
		deps = append(deps, domain.Dependency{Name: name, Version: version, Manifest: marker})
	}
	for name, v := range proj.Tool.Poetry.Dependencies {
		if name == "python" {
			continue
		}
		version := ""
		if s, ok := v.(string); ok {
			version = s
		}
		deps = append(deps, domain.Dependency{Name: name, Version: version, Manifest: marker})
	}
	return deps, nil
}

func readPyProject(tree *domain.RepoTree, zone domain.Zone) (*pyProject, string, error) {
	marker := markerPath(zone, "pyproject.toml")
	data, err := os.ReadFile(filepath.Join(tree.Root, filepath.FromSlash(marker)))
	if err != nil {
		return nil, marker, fmt.Errorf("reading %s: %w", marker, err)
	}
	var proj pyProject
	if err := toml.Unmarshal(data, &proj); err != nil {
		return nil, marker, fmt.Errorf("parsing %s: %w", marker, err)
	}
	return &proj, marker, nil
}

// splitRequirement splits a PEP 508 requirement into name and version spec.
func splitRequirement(req string) (name, version string) {
	for i, r := range req {
		if strings.ContainsRune("><=~!; [", r) {
			return strings.TrimSpace(req[:i]), strings.TrimSpace(req[i:])
		}
	}
	return strings.TrimSpace(req), ""
}
