package domain

// SymbolKind classifies a parsed declaration.
type SymbolKind string

const (
	KindClass     SymbolKind = "class"
	KindStruct    SymbolKind = "struct"
	KindInterface SymbolKind = "interface"
	KindFunction  SymbolKind = "function"
	KindMethod    SymbolKind = "method"
	KindField     SymbolKind = "field"
)

// Location is a concrete source position inside the scanned repository.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// Symbol is a named, typed declaration extracted by a language provider.
type Symbol struct {
	Name        string     `json:"name"`
	Kind        SymbolKind `json:"kind"`
	Exported    bool       `json:"exported"`
	Line        int        `json:"line"`
	Owner       string     `json:"owner,omitempty"`    // receiver or containing type
	Extends     string     `json:"extends,omitempty"`  // base class / embedded interface
	Returns     string     `json:"returns,omitempty"`  // primary return type, if declared
	Params      []string   `json:"params,omitempty"`   // parameter type names
	Annotations []string   `json:"annotations,omitempty"` // attributes / decorators
}

// Import is a single import/using/require statement with its location.
type Import struct {
	Path string `json:"path"`
	Line int    `json:"line"`
}

// SourceFile is the parsed representation of one file. Providers fill what
// their language exposes; absent concepts stay zero-valued.
type SourceFile struct {
	Path      string   `json:"path"` // repo-relative
	Language  string   `json:"language"`
	Namespace string   `json:"namespace,omitempty"` // package / namespace / module
	Imports   []Import `json:"imports,omitempty"`
	Symbols   []Symbol `json:"symbols,omitempty"`
	Lines     int      `json:"lines"`
	IsTest    bool     `json:"is_test,omitempty"`
	TestCases int      `json:"test_cases,omitempty"`
}

// Dependency is one entry from a dependency manifest.
type Dependency struct {
	Name     string `json:"name"`
	Version  string `json:"version,omitempty"`
	Manifest string `json:"manifest"` // repo-relative path of the source manifest
}

// ProjectInfo is per-language project metadata for a zone.
type ProjectInfo struct {
	Name        string       `json:"name"`
	Language    string       `json:"language"`
	Marker      string       `json:"marker,omitempty"`
	ModulePath  string       `json:"module_path,omitempty"` // Go module path or equivalent
	SubProjects []SubProject `json:"sub_projects,omitempty"`
}

// SubProject is a nested project inside a zone (e.g. one csproj in a solution).
type SubProject struct {
	Name       string   `json:"name"`
	Path       string   `json:"path"`
	References []string `json:"references,omitempty"` // project-to-project references
}

// ZoneSource bundles everything the per-zone analyzers consume. It is built
// once per zone per run and never mutated by analysis.
type ZoneSource struct {
	Zone         Zone
	Project      *ProjectInfo
	Files        []*SourceFile
	Dependencies []Dependency
	AllPaths     []string // every file under the zone, source or not, repo-relative
}

// SourceFiles returns the non-test files of the zone.
func (zs *ZoneSource) SourceFiles() []*SourceFile {
	out := make([]*SourceFile, 0, len(zs.Files))
	for _, f := range zs.Files {
		if !f.IsTest {
			out = append(out, f)
		}
	}
	return out
}

// TestFiles returns the test files of the zone.
func (zs *ZoneSource) TestFiles() []*SourceFile {
	out := make([]*SourceFile, 0, len(zs.Files))
	for _, f := range zs.Files {
		if f.IsTest {
			out = append(out, f)
		}
	}
	return out
}
