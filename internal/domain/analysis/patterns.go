package analysis

import (
	"path"
	"sort"
	"strings"

	"github.com/loamlabs/loam/internal/domain"
)

// Signal kinds and their evidence weights. An explicit marker naming the
// pattern is near-certain; a statistical majority is the weakest accepted
// signal.
const (
	signalExplicit    = "explicit"
	signalStructural  = "structural"
	signalASTShape    = "ast_shape"
	signalNaming      = "naming"
	signalStatistical = "statistical"
)

var signalWeights = map[string]float64{
	signalExplicit:    1.0,
	signalStructural:  0.8,
	signalASTShape:    0.9,
	signalNaming:      0.7,
	signalStatistical: 0.6,
}

// Pattern names.
const (
	PatternErrorHandling = "error_handling"
	PatternCQRS          = "cqrs"
	PatternRepository    = "repository"
	PatternDI            = "dependency_injection"
	PatternDDD           = "domain_driven_design"
)

// signalResult is one evaluated signal: whether it fired, how many raw
// matches contributed, and where.
type signalResult struct {
	kind     string
	matched  bool
	count    int
	examples []domain.Location
}

// ExtractPatterns runs multi-signal detection for every candidate pattern.
// Confidence is the weighted share of matching evidence among all evidence
// considered, clamped to [0,1]. Detection and auto-apply eligibility follow
// the configured thresholds; the band between them is flagged for review.
func ExtractPatterns(src *domain.ZoneSource, th domain.Thresholds) map[string]domain.PatternDetection {
	if len(src.Files) == 0 {
		return map[string]domain.PatternDetection{}
	}

	evaluators := map[string]func(*domain.ZoneSource, domain.Thresholds) ([]signalResult, string){
		PatternErrorHandling: evalErrorHandling,
		PatternCQRS:          evalCQRS,
		PatternRepository:    evalRepository,
		PatternDI:            evalDependencyInjection,
		PatternDDD:           evalDDD,
	}

	out := make(map[string]domain.PatternDetection, len(evaluators))
	for name, eval := range evaluators {
		signals, variant := eval(src, th)
		out[name] = scoreSignals(name, variant, signals, th)
	}
	return out
}

// scoreSignals folds signal results into a PatternDetection.
func scoreSignals(pattern, variant string, signals []signalResult, th domain.Thresholds) domain.PatternDetection {
	var matchedWeight, consideredWeight float64
	evidence := make(map[string]int)
	var examples []domain.Location

	for _, s := range signals {
		w := signalWeights[s.kind]
		consideredWeight += w
		if s.matched {
			matchedWeight += w
			evidence[s.kind] = s.count
			examples = append(examples, s.examples...)
		}
	}

	confidence := 0.0
	if consideredWeight > 0 {
		confidence = matchedWeight / consideredWeight
	}
	confidence = clamp01(confidence)

	sort.Slice(examples, func(i, j int) bool {
		if examples[i].File != examples[j].File {
			return examples[i].File < examples[j].File
		}
		return examples[i].Line < examples[j].Line
	})
	examples = dedupeLocations(examples)
	if len(examples) > th.MaxExamples {
		examples = examples[:th.MaxExamples]
	}

	detected := confidence > th.Detect
	pd := domain.PatternDetection{
		Pattern:     pattern,
		Detected:    detected,
		Confidence:  confidence,
		AutoApply:   confidence > th.AutoApply,
		NeedsReview: detected && confidence <= th.AutoApply,
		Evidence:    evidence,
		Examples:    examples,
		Source:      domain.SourceAutoDetected,
	}
	if detected {
		pd.Variant = variant
	}
	return pd
}

// --- error handling style ---

func evalErrorHandling(src *domain.ZoneSource, th domain.Thresholds) ([]signalResult, string) {
	explicit := signalResult{kind: signalExplicit}
	structural := signalResult{kind: signalStructural}
	astShape := signalResult{kind: signalASTShape}
	naming := signalResult{kind: signalNaming}
	statistical := signalResult{kind: signalStatistical}

	returningError := 0
	totalFuncs := 0
	exceptionTypes := 0

	for _, f := range src.SourceFiles() {
		base := strings.ToLower(path.Base(f.Path))
		if base == "errors.go" || strings.HasSuffix(base, "_errors.go") ||
			base == "errors.py" || base == "exceptions.py" ||
			strings.HasSuffix(base, "exceptions.cs") || strings.HasSuffix(base, "errors.ts") {
			structural.count++
			structural.examples = addExample(structural.examples, f.Path, 1)
		}

		for _, imp := range f.Imports {
			if imp.Path == "errors" || strings.HasSuffix(imp.Path, "/errors") ||
				strings.Contains(imp.Path, "pkg/errors") {
				explicit.count++
				explicit.examples = addExample(explicit.examples, f.Path, imp.Line)
			}
		}

		for _, s := range f.Symbols {
			switch s.Kind {
			case domain.KindFunction, domain.KindMethod:
				totalFuncs++
				if s.Returns == "error" || strings.Contains(s.Returns, "Result") {
					returningError++
				}
			case domain.KindClass, domain.KindStruct:
				if strings.HasSuffix(s.Name, "Exception") || strings.HasSuffix(s.Extends, "Exception") ||
					strings.HasSuffix(s.Name, "Error") {
					exceptionTypes++
					astShape.examples = addExample(astShape.examples, f.Path, s.Line)
				}
				if strings.HasPrefix(s.Name, "Err") {
					naming.count++
					naming.examples = addExample(naming.examples, f.Path, s.Line)
				}
			}
		}
	}

	explicit.matched = explicit.count > 0
	structural.matched = structural.count > 0
	astShape.count = exceptionTypes
	astShape.matched = exceptionTypes > 0
	naming.matched = naming.count > 0

	if totalFuncs > 0 && float64(returningError)/float64(totalFuncs) > th.Majority {
		statistical.matched = true
		statistical.count = returningError
	}

	variant := "exceptions"
	if statistical.matched || src.Zone.Language == "go" {
		variant = "error-returns"
	}

	return []signalResult{explicit, structural, astShape, naming, statistical}, variant
}

// --- CQRS ---

func evalCQRS(src *domain.ZoneSource, th domain.Thresholds) ([]signalResult, string) {
	explicit := signalResult{kind: signalExplicit}
	structural := signalResult{kind: signalStructural}
	astShape := signalResult{kind: signalASTShape}
	naming := signalResult{kind: signalNaming}
	statistical := signalResult{kind: signalStatistical}

	hasCommandsDir, hasQueriesDir := false, false
	suffixed, appClasses := 0, 0

	for _, f := range src.SourceFiles() {
		dir := strings.ToLower(path.Dir(zoneRelative(src.Zone, f.Path)))
		if containsSegment(dir, "commands") {
			hasCommandsDir = true
		}
		if containsSegment(dir, "queries") {
			hasQueriesDir = true
		}

		for _, imp := range f.Imports {
			lower := strings.ToLower(imp.Path)
			if strings.Contains(lower, "mediatr") || strings.Contains(lower, "mediator") ||
				strings.Contains(lower, "cqrs") {
				explicit.count++
				explicit.examples = addExample(explicit.examples, f.Path, imp.Line)
			}
		}

		for _, s := range f.Symbols {
			if s.Kind != domain.KindClass && s.Kind != domain.KindStruct {
				continue
			}
			if strings.Contains(s.Extends, "IRequest") || strings.Contains(s.Extends, "IRequestHandler") ||
				strings.HasSuffix(s.Extends, "CommandHandler") || strings.HasSuffix(s.Extends, "QueryHandler") {
				astShape.count++
				astShape.examples = addExample(astShape.examples, f.Path, s.Line)
			}
			isCQRSName := strings.HasSuffix(s.Name, "Command") || strings.HasSuffix(s.Name, "Query") ||
				strings.HasSuffix(s.Name, "CommandHandler") || strings.HasSuffix(s.Name, "QueryHandler")
			if isCQRSName {
				naming.count++
				naming.examples = addExample(naming.examples, f.Path, s.Line)
			}
			if containsSegment(dir, "application") || containsSegment(dir, "app") {
				appClasses++
				if isCQRSName {
					suffixed++
				}
			}
		}
	}

	explicit.matched = explicit.count > 0
	structural.matched = hasCommandsDir && hasQueriesDir
	if structural.matched {
		structural.count = 2
	}
	astShape.matched = astShape.count > 0
	naming.matched = naming.count >= 2 // one stray *Query class is not CQRS
	if appClasses > 0 && float64(suffixed)/float64(appClasses) > th.Majority {
		statistical.matched = true
		statistical.count = suffixed
	}

	variant := "command-query-split"
	if astShape.matched {
		variant = "mediator"
	}

	return []signalResult{explicit, structural, astShape, naming, statistical}, variant
}

// --- repository abstraction ---

func evalRepository(src *domain.ZoneSource, th domain.Thresholds) ([]signalResult, string) {
	explicit := signalResult{kind: signalExplicit}
	structural := signalResult{kind: signalStructural}
	astShape := signalResult{kind: signalASTShape}
	naming := signalResult{kind: signalNaming}
	statistical := signalResult{kind: signalStatistical}

	repoInterfaces, repoClasses := 0, 0
	crudClasses, repoDirClasses := 0, 0

	for _, f := range src.SourceFiles() {
		rel := zoneRelative(src.Zone, f.Path)
		dir := strings.ToLower(path.Dir(rel))
		inRepoDir := containsSegment(dir, "repository") || containsSegment(dir, "repositories") ||
			containsSegment(dir, "persistence")
		if inRepoDir {
			structural.count++
			structural.examples = addExample(structural.examples, f.Path, 1)
		}

		base := strings.ToLower(path.Base(rel))
		if strings.Contains(base, "repository") || strings.Contains(base, "_repo.") {
			naming.count++
			naming.examples = addExample(naming.examples, f.Path, 1)
		}

		for _, s := range f.Symbols {
			for _, a := range s.Annotations {
				if strings.Contains(strings.ToLower(a), "repository") {
					explicit.count++
					explicit.examples = addExample(explicit.examples, f.Path, s.Line)
				}
			}
			switch s.Kind {
			case domain.KindInterface:
				if strings.HasSuffix(s.Name, "Repository") {
					repoInterfaces++
					astShape.examples = addExample(astShape.examples, f.Path, s.Line)
				}
			case domain.KindClass, domain.KindStruct:
				if strings.HasSuffix(s.Name, "Repository") || strings.Contains(s.Extends, "Repository") {
					repoClasses++
					astShape.examples = addExample(astShape.examples, f.Path, s.Line)
				}
				if inRepoDir {
					repoDirClasses++
					if hasCRUDMethods(f, s.Name) {
						crudClasses++
					}
				}
			}
		}
	}

	explicit.matched = explicit.count > 0
	structural.matched = structural.count > 0
	astShape.count = repoInterfaces + repoClasses
	astShape.matched = repoInterfaces > 0 && repoClasses > 0
	naming.matched = naming.count > 0
	if repoDirClasses > 0 && float64(crudClasses)/float64(repoDirClasses) > th.Majority {
		statistical.matched = true
		statistical.count = crudClasses
	}

	variant := "concrete"
	if repoInterfaces > 0 {
		variant = "interface-backed"
	}

	return []signalResult{explicit, structural, astShape, naming, statistical}, variant
}

// hasCRUDMethods reports whether owner has at least two CRUD-shaped methods
// in the file.
func hasCRUDMethods(f *domain.SourceFile, owner string) bool {
	crud := 0
	for _, s := range f.Symbols {
		if s.Kind != domain.KindMethod || strings.TrimPrefix(s.Owner, "*") != owner {
			continue
		}
		for _, prefix := range []string{"Get", "Find", "List", "Save", "Add", "Create", "Update", "Delete", "Remove"} {
			if strings.HasPrefix(s.Name, prefix) || strings.HasPrefix(s.Name, strings.ToLower(prefix)) {
				crud++
				break
			}
		}
	}
	return crud >= 2
}

// --- dependency injection ---

func evalDependencyInjection(src *domain.ZoneSource, th domain.Thresholds) ([]signalResult, string) {
	explicit := signalResult{kind: signalExplicit}
	structural := signalResult{kind: signalStructural}
	astShape := signalResult{kind: signalASTShape}
	naming := signalResult{kind: signalNaming}
	statistical := signalResult{kind: signalStatistical}

	interfaces := make(map[string]bool)
	for _, f := range src.SourceFiles() {
		for _, s := range f.Symbols {
			if s.Kind == domain.KindInterface {
				interfaces[s.Name] = true
			}
		}
	}

	ctorWithIface, ctorTotal := 0, 0

	for _, f := range src.SourceFiles() {
		dir := strings.ToLower(path.Dir(zoneRelative(src.Zone, f.Path)))
		if containsSegment(dir, "di") || containsSegment(dir, "ioc") || containsSegment(dir, "container") ||
			containsSegment(dir, "wiring") {
			structural.count++
			structural.examples = addExample(structural.examples, f.Path, 1)
		}

		base := strings.ToLower(path.Base(f.Path))
		if strings.Contains(base, "module") || strings.Contains(base, "container") ||
			strings.Contains(base, "provider") {
			naming.count++
		}

		for _, imp := range f.Imports {
			lower := strings.ToLower(imp.Path)
			if strings.Contains(lower, "wire") || strings.Contains(lower, "inject") ||
				strings.Contains(lower, "dependencyinjection") || strings.Contains(lower, "injector") {
				explicit.count++
				explicit.examples = addExample(explicit.examples, f.Path, imp.Line)
			}
		}

		for _, s := range f.Symbols {
			for _, a := range s.Annotations {
				lower := strings.ToLower(a)
				if strings.Contains(lower, "inject") || strings.Contains(lower, "autowired") {
					explicit.count++
					explicit.examples = addExample(explicit.examples, f.Path, s.Line)
				}
			}
			if s.Kind == domain.KindFunction && strings.HasPrefix(s.Name, "New") && len(s.Params) > 0 {
				ctorTotal++
				for _, p := range s.Params {
					if interfaces[strings.TrimPrefix(p, "*")] {
						ctorWithIface++
						astShape.count++
						astShape.examples = addExample(astShape.examples, f.Path, s.Line)
						break
					}
				}
			}
			// C#/TS style: constructor method on the class itself.
			if s.Kind == domain.KindMethod && (s.Name == "ctor" || s.Name == "constructor" || s.Name == "__init__") && len(s.Params) > 0 {
				ctorTotal++
				for _, p := range s.Params {
					if interfaces[strings.TrimPrefix(p, "*")] {
						ctorWithIface++
						astShape.count++
						astShape.examples = addExample(astShape.examples, f.Path, s.Line)
						break
					}
				}
			}
		}
	}

	explicit.matched = explicit.count > 0
	structural.matched = structural.count > 0
	astShape.matched = astShape.count > 0
	naming.matched = naming.count > 0
	if ctorTotal > 0 && float64(ctorWithIface)/float64(ctorTotal) > th.Majority {
		statistical.matched = true
		statistical.count = ctorWithIface
	}

	return []signalResult{explicit, structural, astShape, naming, statistical}, "constructor-injection"
}

// --- domain-driven design idioms ---

func evalDDD(src *domain.ZoneSource, th domain.Thresholds) ([]signalResult, string) {
	explicit := signalResult{kind: signalExplicit}
	structural := signalResult{kind: signalStructural}
	astShape := signalResult{kind: signalASTShape}
	naming := signalResult{kind: signalNaming}
	statistical := signalResult{kind: signalStatistical}

	hasDomainDir := false
	domainClasses, richClasses := 0, 0

	for _, f := range src.SourceFiles() {
		rel := zoneRelative(src.Zone, f.Path)
		dir := strings.ToLower(path.Dir(rel))
		inDomain := containsSegment(dir, "domain") || containsSegment(dir, "entities") ||
			containsSegment(dir, "aggregates") || containsSegment(dir, "valueobjects")
		if inDomain {
			hasDomainDir = true
			structural.count++
		}

		base := strings.ToLower(path.Base(rel))
		if strings.Contains(base, "_entity") || strings.Contains(base, "aggregate") ||
			strings.Contains(base, "value_object") || strings.Contains(base, "valueobject") {
			naming.count++
			naming.examples = addExample(naming.examples, f.Path, 1)
		}

		for _, s := range f.Symbols {
			for _, a := range s.Annotations {
				lower := strings.ToLower(a)
				if strings.Contains(lower, "entity") || strings.Contains(lower, "aggregate") ||
					strings.Contains(lower, "valueobject") {
					explicit.count++
					explicit.examples = addExample(explicit.examples, f.Path, s.Line)
				}
			}
			if s.Kind != domain.KindClass && s.Kind != domain.KindStruct {
				continue
			}
			if strings.Contains(s.Extends, "AggregateRoot") || strings.Contains(s.Extends, "Entity") ||
				strings.Contains(s.Extends, "ValueObject") {
				astShape.count++
				astShape.examples = addExample(astShape.examples, f.Path, s.Line)
			}
			if inDomain {
				domainClasses++
				if hasBehavior(f, s.Name) {
					richClasses++
				}
			}
		}
	}

	explicit.matched = explicit.count > 0
	structural.matched = hasDomainDir
	astShape.matched = astShape.count > 0
	naming.matched = naming.count > 0
	if domainClasses > 0 && float64(richClasses)/float64(domainClasses) > th.Majority {
		statistical.matched = true
		statistical.count = richClasses
	}

	variant := "anemic-model"
	if statistical.matched || astShape.matched {
		variant = "rich-model"
	}

	return []signalResult{explicit, structural, astShape, naming, statistical}, variant
}

// hasBehavior reports whether the type has at least one method beyond
// trivial accessors.
func hasBehavior(f *domain.SourceFile, owner string) bool {
	for _, s := range f.Symbols {
		if s.Kind != domain.KindMethod || strings.TrimPrefix(s.Owner, "*") != owner {
			continue
		}
		lower := strings.ToLower(s.Name)
		if strings.HasPrefix(lower, "get") || strings.HasPrefix(lower, "set") {
			continue
		}
		return true
	}
	return false
}

// --- helpers ---

func addExample(examples []domain.Location, file string, line int) []domain.Location {
	return append(examples, domain.Location{File: file, Line: line})
}

func dedupeLocations(locs []domain.Location) []domain.Location {
	seen := make(map[domain.Location]bool, len(locs))
	out := locs[:0]
	for _, l := range locs {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}

func containsSegment(dir, segment string) bool {
	if dir == segment {
		return true
	}
	return strings.HasPrefix(dir, segment+"/") ||
		strings.HasSuffix(dir, "/"+segment) ||
		strings.Contains(dir, "/"+segment+"/")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
