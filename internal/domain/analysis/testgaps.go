package analysis

import (
	"path"
	"sort"
	"strings"

	"github.com/loamlabs/loam/internal/domain"
)

const maxUntestedListed = 25

// AnalyzeTestGaps inventories test files per framework, maps tests to source
// files by naming convention, and estimates coverage as the share of source
// files with at least one mapped test. This is a static approximation and is
// never a runtime coverage measurement.
func AnalyzeTestGaps(src *domain.ZoneSource) domain.TestReport {
	report := domain.TestReport{}

	sources := src.SourceFiles()
	tests := src.TestFiles()

	report.TestFiles = len(tests)

	// Framework inventory.
	frameworks := make(map[string]*domain.TestFramework)
	record := func(name string, cases int) {
		fw, ok := frameworks[name]
		if !ok {
			fw = &domain.TestFramework{Name: name}
			frameworks[name] = fw
		}
		fw.TestFiles++
		fw.TestCases += cases
	}

	for _, t := range tests {
		cases := countTestCases(t)
		report.TestCases += cases
		record(frameworkFor(t), cases)
	}

	names := make([]string, 0, len(frameworks))
	for n := range frameworks {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		report.Frameworks = append(report.Frameworks, *frameworks[n])
	}

	// Map each test file to a source file by name stem.
	testedStems := make(map[string]bool, len(tests))
	for _, t := range tests {
		testedStems[testStem(t.Path)] = true
	}

	tested := 0
	var untested []string
	for _, f := range sources {
		if testedStems[sourceStem(f.Path)] {
			tested++
			continue
		}
		untested = append(untested, f.Path)
		for _, s := range f.Symbols {
			if !s.Exported {
				continue
			}
			switch s.Kind {
			case domain.KindClass, domain.KindStruct, domain.KindInterface, domain.KindFunction:
				report.UntestedSymbols = append(report.UntestedSymbols, f.Path+":"+s.Name)
			}
		}
	}

	if len(sources) > 0 {
		report.CoverageEstimate = clamp01(float64(tested) / float64(len(sources)))
	}

	sort.Strings(untested)
	if len(untested) > maxUntestedListed {
		untested = untested[:maxUntestedListed]
	}
	report.UntestedFiles = untested

	sort.Strings(report.UntestedSymbols)
	if len(report.UntestedSymbols) > maxUntestedListed {
		report.UntestedSymbols = report.UntestedSymbols[:maxUntestedListed]
	}

	return report
}

// frameworkFor picks the test framework of a test file from its imports and
// naming, falling back to a per-language default.
func frameworkFor(f *domain.SourceFile) string {
	for _, imp := range f.Imports {
		lower := strings.ToLower(imp.Path)
		switch {
		case strings.Contains(lower, "xunit"):
			return "xunit"
		case strings.Contains(lower, "nunit"):
			return "nunit"
		case lower == "pytest" || strings.HasPrefix(lower, "pytest."):
			return "pytest"
		case lower == "unittest":
			return "unittest"
		case strings.Contains(lower, "vitest"):
			return "vitest"
		case strings.Contains(lower, "@jest") || lower == "jest":
			return "jest"
		case lower == "testing":
			return "go test"
		}
	}

	switch f.Language {
	case "go":
		return "go test"
	case "python":
		return "pytest"
	case "csharp":
		return "xunit"
	case "typescript", "javascript":
		return "jest"
	}
	return "unknown"
}

// countTestCases counts test methods in a file; providers that can't see
// method bodies pre-count cases into TestCases during parsing.
func countTestCases(f *domain.SourceFile) int {
	if f.TestCases > 0 {
		return f.TestCases
	}
	n := 0
	for _, s := range f.Symbols {
		if s.Kind != domain.KindFunction && s.Kind != domain.KindMethod {
			continue
		}
		if isTestName(s.Name) || hasTestAnnotation(s) {
			n++
		}
	}
	return n
}

func hasTestAnnotation(s domain.Symbol) bool {
	for _, a := range s.Annotations {
		lower := strings.ToLower(a)
		if strings.Contains(lower, "fact") || strings.Contains(lower, "theory") ||
			strings.Contains(lower, "test") {
			return true
		}
	}
	return false
}

// testStem normalizes a test file name back to its source stem:
// order_service_test.go → order_service, test_orders.py → orders,
// OrderServiceTests.cs → OrderService, api.spec.ts → api.
func testStem(p string) string {
	base := path.Base(p)
	stem := strings.TrimSuffix(base, path.Ext(base))
	stem = strings.TrimSuffix(stem, ".spec")
	stem = strings.TrimSuffix(stem, ".test")
	stem = strings.TrimSuffix(stem, "_test")
	stem = strings.TrimSuffix(stem, "_tests")
	stem = strings.TrimSuffix(stem, "Tests")
	stem = strings.TrimSuffix(stem, "Test")
	stem = strings.TrimPrefix(stem, "test_")
	return strings.ToLower(stem)
}

// sourceStem normalizes a source file name for test mapping.
func sourceStem(p string) string {
	base := path.Base(p)
	return strings.ToLower(strings.TrimSuffix(base, path.Ext(base)))
}
