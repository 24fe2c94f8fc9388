package provider

import (
	"fmt"
	"go/ast"
	goparser "go/parser"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/loamlabs/loam/internal/domain"
)

// GoProvider implements domain.LanguageProvider using go/ast.
type GoProvider struct{}

func NewGoProvider() *GoProvider {
	return &GoProvider{}
}

func (p *GoProvider) Language() string { return "go" }

func (p *GoProvider) Extensions() []string { return []string{".go"} }

func (p *GoProvider) ParseFile(absPath, relPath string) (*domain.SourceFile, error) {
	fset := token.NewFileSet()
	file, err := goparser.ParseFile(fset, absPath, nil, goparser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", relPath, err)
	}

	sf := &domain.SourceFile{
		Path:      relPath,
		Language:  "go",
		Namespace: file.Name.Name,
		IsTest:    strings.HasSuffix(relPath, "_test.go"),
	}

	for _, imp := range file.Imports {
		sf.Imports = append(sf.Imports, domain.Import{
			Path: strings.Trim(imp.Path.Value, `"`),
			Line: fset.Position(imp.Pos()).Line,
		})
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				line := fset.Position(ts.Pos()).Line
				switch t := ts.Type.(type) {
				case *ast.StructType:
					sf.Symbols = append(sf.Symbols, domain.Symbol{
						Name:     ts.Name.Name,
						Kind:     domain.KindStruct,
						Exported: ast.IsExported(ts.Name.Name),
						Line:     line,
					})
					sf.Symbols = append(sf.Symbols, structFields(fset, ts.Name.Name, t)...)
				case *ast.InterfaceType:
					sf.Symbols = append(sf.Symbols, domain.Symbol{
						Name:     ts.Name.Name,
						Kind:     domain.KindInterface,
						Exported: ast.IsExported(ts.Name.Name),
						Line:     line,
					})
				}
			}
		case *ast.FuncDecl:
			sym := domain.Symbol{
				Name:     d.Name.Name,
				Kind:     domain.KindFunction,
				Exported: ast.IsExported(d.Name.Name),
				Line:     fset.Position(d.Pos()).Line,
			}
			if d.Recv != nil && len(d.Recv.List) > 0 {
				sym.Kind = domain.KindMethod
				sym.Owner = exprString(d.Recv.List[0].Type)
			}
			if d.Type.Params != nil {
				for _, field := range d.Type.Params.List {
					t := exprString(field.Type)
					n := len(field.Names)
					if n == 0 {
						n = 1
					}
					for i := 0; i < n; i++ {
						sym.Params = append(sym.Params, t)
					}
				}
			}
			if d.Type.Results != nil && len(d.Type.Results.List) > 0 {
				// Last result carries the error-return convention.
				sym.Returns = exprString(d.Type.Results.List[len(d.Type.Results.List)-1].Type)
			}
			sf.Symbols = append(sf.Symbols, sym)
		}
	}

	sf.Lines = fset.Position(file.End()).Line
	return sf, nil
}

func structFields(fset *token.FileSet, owner string, st *ast.StructType) []domain.Symbol {
	var fields []domain.Symbol
	if st.Fields == nil {
		return nil
	}
	for _, f := range st.Fields.List {
		for _, name := range f.Names {
			fields = append(fields, domain.Symbol{
				Name:     name.Name,
				Kind:     domain.KindField,
				Exported: ast.IsExported(name.Name),
				Line:     fset.Position(name.Pos()).Line,
				Owner:    owner,
			})
		}
	}
	return fields
}

func exprString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + exprString(t.X)
	case *ast.SelectorExpr:
		return exprString(t.X) + "." + t.Sel.Name
	case *ast.ArrayType:
		return "[]" + exprString(t.Elt)
	case *ast.MapType:
		return "map[" + exprString(t.Key) + "]" + exprString(t.Value)
	case *ast.Ellipsis:
		return "..." + exprString(t.Elt)
	case *ast.FuncType:
		return "func"
	case *ast.ChanType:
		return "chan " + exprString(t.Value)
	case *ast.InterfaceType:
		return "interface{}"
	default:
		return ""
	}
}

func (p *GoProvider) DetectProject(tree *domain.RepoTree, zone domain.Zone) (*domain.ProjectInfo, error) {
	modFile := markerPath(zone, "go.mod")
	data, err := os.ReadFile(filepath.Join(tree.Root, filepath.FromSlash(modFile)))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", modFile, err)
	}

	modulePath := ""
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "module ") {
			modulePath = strings.TrimSpace(strings.TrimPrefix(line, "module "))
			break
		}
	}
	if modulePath == "" {
		return nil, fmt.Errorf("%s: no module directive", modFile)
	}

	return &domain.ProjectInfo{
		Name:       path.Base(modulePath),
		Language:   "go",
		Marker:     modFile,
		ModulePath: modulePath,
	}, nil
}

func (p *GoProvider) Dependencies(tree *domain.RepoTree, zone domain.Zone) ([]domain.Dependency, error) {
	modFile := markerPath(zone, "go.mod")
	data, err := os.ReadFile(filepath.Join(tree.Root, filepath.FromSlash(modFile)))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", modFile, err)
	}

	var deps []domain.Dependency
	inBlock := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "require ("):
			inBlock = true
		case inBlock && line == ")":
			inBlock = false
		case inBlock || strings.HasPrefix(line, "require "):
			entry := strings.TrimPrefix(line, "require ")
			if strings.Contains(entry, "// indirect") {
				continue
			}
			fields := strings.Fields(entry)
			if len(fields) >= 2 && !strings.HasPrefix(fields[0], "//") {
				deps = append(deps, domain.Dependency{
					Name:     fields[0],
					Version:  fields[1],
					Manifest: modFile,
				})
			}
		}
	}
	return deps, nil
}

// markerPath joins a zone path with a marker file name.
func markerPath(zone domain.Zone, name string) string {
	if zone.Path == "" || zone.Path == "." {
		return name
	}
	return zone.Path + "/" + name
}
