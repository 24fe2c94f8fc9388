package domain

import "time"

// SchemaVersion identifies the profile document layout. Bump on any breaking
// change to the serialized shape.
const SchemaVersion = "1.0"

// Detection sources. A human-curated value is never overwritten by a later
// auto-detected one.
const (
	SourceAutoDetected = "auto-detected"
	SourceHumanCurated = "human-curated"
)

// Violation severities.
const (
	SeverityMajor = "major"
	SeverityMinor = "minor"
)

// CodebaseProfile is the complete output artifact of a discovery run.
type CodebaseProfile struct {
	SchemaVersion string                        `json:"schema_version"`
	GeneratedAt   time.Time                     `json:"generated_at"`
	Discovery     DiscoveryMetadata             `json:"discovery_metadata"`
	Languages     []LanguageSummary             `json:"languages"`
	Zones         map[string]*ZoneProfile       `json:"zones"`
	Interactions  []Interaction                 `json:"interactions"`
	Conformance   map[string]ConformanceSummary `json:"conformance_summary,omitempty"`
}

// DiscoveryMetadata describes the run that produced the profile.
type DiscoveryMetadata struct {
	DurationMS      int64    `json:"duration_ms"`
	PhasesCompleted []string `json:"phases_completed"`
	ZonesDiscovered int      `json:"zones_discovered"`
	DetectionMode   string   `json:"detection_mode"` // auto | manual | hybrid
	CommitHash      string   `json:"commit_hash,omitempty"`
	SkippedFiles    int      `json:"skipped_files"`
	SkippedZones    int      `json:"skipped_zones"`
	Partial         bool     `json:"partial,omitempty"`
}

// LanguageSummary aggregates source-file share per language across zones.
type LanguageSummary struct {
	Name       string   `json:"name"`
	Percentage float64  `json:"percentage"`
	Zones      []string `json:"zones"`
}

// ZoneProfile is the per-zone slice of the profile document.
type ZoneProfile struct {
	Language     string                         `json:"language"`
	Path         string                         `json:"path"`
	Marker       string                         `json:"marker,omitempty"`
	Detection    DetectionOrigin                `json:"detection"`
	Purpose      string                         `json:"purpose,omitempty"`
	Contracts    []string                       `json:"contracts,omitempty"`
	FileCount    int                            `json:"file_count"`
	Structure    ZoneStructure                  `json:"structure"`
	Patterns     map[string]PatternDetection    `json:"patterns,omitempty"`
	Conventions  map[string]ConventionDetection `json:"conventions,omitempty"`
	Frameworks   []string                       `json:"frameworks,omitempty"`
	Architecture ArchitectureReport             `json:"architecture"`
	Tests        TestReport                     `json:"tests"`
}

// ZoneStructure maps the zone's directories onto architectural concepts.
type ZoneStructure struct {
	Layers      []ArchitectureLayer `json:"layers,omitempty"`
	EntryPoints []string            `json:"entry_points,omitempty"`
	TestRoots   []string            `json:"test_roots,omitempty"`
	Layout      string              `json:"layout,omitempty"` // layered | flat
}

// ArchitectureLayer is a logical layer with its member modules and the set of
// layers it is allowed to reference.
type ArchitectureLayer struct {
	Name        string   `json:"name"`
	Modules     []string `json:"modules,omitempty"`
	AllowedRefs []string `json:"allowed_refs"`
}

// PatternDetection is a confidence-scored claim that a coding pattern is in
// use within a zone.
type PatternDetection struct {
	Pattern     string         `json:"pattern"`
	Detected    bool           `json:"detected"`
	Variant     string         `json:"variant,omitempty"`
	Confidence  float64        `json:"confidence"`
	AutoApply   bool           `json:"auto_apply"`         // confidence above the high threshold
	NeedsReview bool           `json:"needs_review"`       // between the two thresholds
	Evidence    map[string]int `json:"evidence,omitempty"` // signal type → matching count
	Examples    []Location     `json:"examples,omitempty"`
	Source      string         `json:"source"` // auto-detected | human-curated
}

// ConventionDetection is a learned naming/organization convention.
type ConventionDetection struct {
	Category     string               `json:"category"`
	Dominant     string               `json:"dominant"`
	Consistency  float64              `json:"consistency"`
	SampleSize   int                  `json:"sample_size"`
	Exceptions   []string             `json:"exceptions,omitempty"`
	Alternatives []AlternativePattern `json:"alternatives,omitempty"`
	Source       string               `json:"source"` // auto-detected | human-curated
}

// AlternativePattern is a non-dominant convention shape that still occurs
// often enough to report, so mixed conventions stay visible.
type AlternativePattern struct {
	Pattern   string  `json:"pattern"`
	Frequency float64 `json:"frequency"`
}

// ArchitectureReport holds the zone's module dependency graph and the edges
// that break the allowed-reference table.
type ArchitectureReport struct {
	Modules    []GraphModule           `json:"modules,omitempty"`
	Violations []ArchitectureViolation `json:"violations,omitempty"`
}

// GraphModule is one node in the zone's module dependency graph.
type GraphModule struct {
	Name    string   `json:"name"`
	Path    string   `json:"path"`
	Layer   string   `json:"layer,omitempty"`
	Imports []string `json:"imports,omitempty"` // names of referenced modules
}

// ArchitectureViolation is a disallowed dependency edge, carrying every
// concrete import location that contributes to it.
type ArchitectureViolation struct {
	FromLayer  string     `json:"from_layer"`
	ToLayer    string     `json:"to_layer"`
	FromModule string     `json:"from_module"`
	ToModule   string     `json:"to_module"`
	Severity   string     `json:"severity"`
	Locations  []Location `json:"locations"`
}

// TestReport is the static test-gap inventory for a zone.
type TestReport struct {
	Frameworks       []TestFramework `json:"frameworks,omitempty"`
	TestFiles        int             `json:"test_files"`
	TestCases        int             `json:"test_cases"`
	CoverageEstimate float64         `json:"coverage_estimate"` // static approximation, not runtime coverage
	UntestedFiles    []string        `json:"untested_files,omitempty"`
	UntestedSymbols  []string        `json:"untested_symbols,omitempty"` // "file:Symbol"
}

// TestFramework is one detected test framework with its inventory counts.
type TestFramework struct {
	Name      string `json:"name"`
	TestFiles int    `json:"test_files"`
	TestCases int    `json:"test_cases"`
}

// Interaction types.
const (
	InteractionDockerCompose = "docker_compose"
	InteractionSharedSchema  = "shared_schema"
	InteractionHTTPAPI       = "http_api"
	InteractionSharedLibrary = "shared_library"
	InteractionMessageQueue  = "message_queue"
)

// Interaction is a detected cross-zone relationship. Interactions are
// advisory: they describe coupling, they do not enforce anything.
type Interaction struct {
	ID       string            `json:"id"`
	Type     string            `json:"type"`
	FromZone string            `json:"from_zone,omitempty"`
	ToZone   string            `json:"to_zone,omitempty"`
	Zones    []string          `json:"zones,omitempty"`
	Details  map[string]string `json:"details,omitempty"`
}

// ConformanceSummary is populated by the external conformance checker, never
// by this engine. It is carried through merges untouched.
type ConformanceSummary struct {
	TotalViolations int            `json:"total_violations"`
	BySeverity      map[string]int `json:"by_severity,omitempty"`
}
