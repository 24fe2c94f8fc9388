package provider

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/loamlabs/loam/internal/domain"
)

// CSharpProvider implements domain.LanguageProvider for C#. There is no Go
// parser for C#, so declarations are extracted with a line scanner that
// understands the flat surface this engine needs: namespaces, usings, type
// and member declarations, and attributes.
type CSharpProvider struct{}

func NewCSharpProvider() *CSharpProvider {
	return &CSharpProvider{}
}

func (p *CSharpProvider) Language() string { return "csharp" }

func (p *CSharpProvider) Extensions() []string { return []string{".cs"} }

var (
	csNamespaceRe = regexp.MustCompile(`^\s*namespace\s+([\w.]+)`)
	csUsingRe     = regexp.MustCompile(`^\s*using\s+(?:static\s+)?([\w.]+)\s*;`)
	csTypeRe      = regexp.MustCompile(`^\s*((?:(?:public|private|protected|internal|abstract|sealed|partial|static)\s+)*)(class|interface|record|struct)\s+(\w+)(?:<[^>]*>)?(?:\s*:\s*([\w.<>, ]+))?`)
	csMemberRe    = regexp.MustCompile(`^\s*((?:(?:public|private|protected|internal|static|virtual|override|async|abstract|sealed)\s+)+)([\w.<>,\[\]?]+\s+)?(\w+)\s*\(([^)]*)?`)
	csFieldRe     = regexp.MustCompile(`^\s*(?:private|protected|internal)\s+(?:readonly\s+)?[\w.<>,\[\]?]+\s+(_?\w+)\s*[=;]`)
	csAttrRe      = regexp.MustCompile(`^\s*\[(\w+)`)
)

func (p *CSharpProvider) ParseFile(absPath, relPath string) (*domain.SourceFile, error) {
	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", relPath, err)
	}
	defer f.Close()

	sf := &domain.SourceFile{
		Path:     relPath,
		Language: "csharp",
	}

	base := strings.TrimSuffix(path.Base(relPath), ".cs")
	sf.IsTest = strings.HasSuffix(base, "Test") || strings.HasSuffix(base, "Tests")

	var pendingAttrs []string
	currentType := ""

	scan := bufio.NewScanner(f)
	scan.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scan.Scan() {
		lineNo++
		line := scan.Text()

		if m := csAttrRe.FindStringSubmatch(line); m != nil {
			pendingAttrs = append(pendingAttrs, m[1])
			continue
		}

		if m := csNamespaceRe.FindStringSubmatch(line); m != nil {
			sf.Namespace = m[1]
			continue
		}

		if m := csUsingRe.FindStringSubmatch(line); m != nil {
			sf.Imports = append(sf.Imports, domain.Import{Path: m[1], Line: lineNo})
			if strings.HasPrefix(m[1], "Xunit") || strings.HasPrefix(m[1], "NUnit") {
				sf.IsTest = true
			}
			continue
		}

		if m := csTypeRe.FindStringSubmatch(line); m != nil {
			kind := domain.KindClass
			if m[2] == "interface" {
				kind = domain.KindInterface
			}
			sym := domain.Symbol{
				Name:        m[3],
				Kind:        kind,
				Exported:    strings.Contains(m[1], "public"),
				Line:        lineNo,
				Annotations: pendingAttrs,
			}
			if m[4] != "" {
				bases := strings.Split(m[4], ",")
				sym.Extends = strings.TrimSpace(bases[0])
			}
			sf.Symbols = append(sf.Symbols, sym)
			currentType = m[3]
			pendingAttrs = nil
			continue
		}

		if m := csFieldRe.FindStringSubmatch(line); m != nil {
			sf.Symbols = append(sf.Symbols, domain.Symbol{
				Name:     m[1],
				Kind:     domain.KindField,
				Exported: false,
				Line:     lineNo,
				Owner:    currentType,
			})
			pendingAttrs = nil
			continue
		}

		if m := csMemberRe.FindStringSubmatch(line); m != nil && currentType != "" {
			name := m[3]
			returns := strings.TrimSpace(m[2])
			sym := domain.Symbol{
				Name:        name,
				Kind:        domain.KindMethod,
				Exported:    strings.Contains(m[1], "public"),
				Line:        lineNo,
				Owner:       currentType,
				Returns:     returns,
				Annotations: pendingAttrs,
			}
			// Constructor: no return type and the member carries the type name.
			if returns == "" && name == currentType {
				sym.Name = "ctor"
			}
			for _, param := range strings.Split(m[4], ",") {
				fields := strings.Fields(strings.TrimSpace(param))
				if len(fields) >= 2 {
					sym.Params = append(sym.Params, fields[0])
				}
			}
			sf.Symbols = append(sf.Symbols, sym)
			pendingAttrs = nil
			continue
		}

		if strings.TrimSpace(line) != "" {
			pendingAttrs = nil
		}
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", relPath, err)
	}

	sf.Lines = lineNo
	return sf, nil
}

// csprojFile is the slice of the MSBuild project format this engine reads.
type csprojFile struct {
	ItemGroups []struct {
		PackageReferences []struct {
			Include string `xml:"Include,attr"`
			Version string `xml:"Version,attr"`
		} `xml:"PackageReference"`
		ProjectReferences []struct {
			Include string `xml:"Include,attr"`
		} `xml:"ProjectReference"`
	} `xml:"ItemGroup"`
}

var slnProjectRe = regexp.MustCompile(`Project\("\{[^}]+\}"\)\s*=\s*"([^"]+)",\s*"([^"]+)"`)

func (p *CSharpProvider) DetectProject(tree *domain.RepoTree, zone domain.Zone) (*domain.ProjectInfo, error) {
	info := &domain.ProjectInfo{Language: "csharp", Marker: zone.Marker}

	if strings.HasSuffix(zone.Marker, ".sln") {
		data, err := os.ReadFile(filepath.Join(tree.Root, filepath.FromSlash(zone.Marker)))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", zone.Marker, err)
		}
		info.Name = strings.TrimSuffix(path.Base(zone.Marker), ".sln")
		for _, m := range slnProjectRe.FindAllStringSubmatch(string(data), -1) {
			projRel := path.Join(path.Dir(zone.Marker), filepath.ToSlash(strings.ReplaceAll(m[2], `\`, "/")))
			sub := domain.SubProject{Name: m[1], Path: projRel}
			if refs, err := projectReferences(tree.Root, projRel); err == nil {
				sub.References = refs
			}
			info.SubProjects = append(info.SubProjects, sub)
		}
		return info, nil
	}

	info.Name = strings.TrimSuffix(path.Base(zone.Marker), ".csproj")
	if refs, err := projectReferences(tree.Root, zone.Marker); err == nil {
		info.SubProjects = append(info.SubProjects, domain.SubProject{
			Name:       info.Name,
			Path:       zone.Marker,
			References: refs,
		})
	}
	return info, nil
}

func projectReferences(root, projRel string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(projRel)))
	if err != nil {
		return nil, err
	}
	var proj csprojFile
	if err := xml.Unmarshal(data, &proj); err != nil {
		return nil, err
	}
	var refs []string
	for _, ig := range proj.ItemGroups {
		for _, pr := range ig.ProjectReferences {
			refs = append(refs, filepath.ToSlash(strings.ReplaceAll(pr.Include, `\`, "/")))
		}
	}
	return refs, nil
}

func (p *CSharpProvider) Dependencies(tree *domain.RepoTree, zone domain.Zone) ([]domain.Dependency, error) {
	var deps []domain.Dependency
	for _, f := range tree.Files {
		if !strings.HasSuffix(f, ".csproj") || !zone.Contains(f) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(tree.Root, filepath.FromSlash(f)))
		if err != nil {
			continue
		}
		var proj csprojFile
		if err := xml.Unmarshal(data, &proj); err != nil {
			continue
		}
		for _, ig := range proj.ItemGroups {
			for _, pr := range ig.PackageReferences {
				deps = append(deps, domain.Dependency{
					Name:     pr.Include,
					Version:  pr.Version,
					Manifest: f,
				})
			}
		}
	}
	return deps, nil
}
