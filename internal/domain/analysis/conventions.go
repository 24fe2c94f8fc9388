package analysis

import (
	"path"
	"sort"
	"strings"
	"unicode"

	"github.com/fatih/camelcase"

	"github.com/loamlabs/loam/internal/domain"
)

// Convention categories.
const (
	ConventionFileNames      = "file_names"
	ConventionClassNames     = "class_names"
	ConventionInterfaceNames = "interface_names"
	ConventionPrivateFields  = "private_fields"
	ConventionTestNames      = "test_names"
)

// Identifier shapes.
const (
	ShapePascalCase  = "PascalCase"
	ShapeCamelCase   = "camelCase"
	ShapeSnakeCase   = "snake_case"
	ShapeKebabCase   = "kebab-case"
	ShapeIPrefixed   = "I-prefixed"
	ShapeUnderscored = "underscore-prefixed"
	ShapeLowercase   = "lowercase"
	ShapeMixed       = "mixed"
)

const maxExceptions = 10

// InferConventions samples every matching identifier in the zone per
// category, groups by normalized shape, and reports the dominant shape with
// its consistency ratio. Alternative shapes above the configured frequency
// are reported alongside so mixed conventions stay visible.
func InferConventions(src *domain.ZoneSource, th domain.Thresholds) map[string]domain.ConventionDetection {
	samples := map[string][]string{
		ConventionFileNames:      nil,
		ConventionClassNames:     nil,
		ConventionInterfaceNames: nil,
		ConventionPrivateFields:  nil,
		ConventionTestNames:      nil,
	}

	for _, f := range src.Files {
		base := path.Base(f.Path)
		stem := strings.TrimSuffix(base, path.Ext(base))
		if !f.IsTest {
			samples[ConventionFileNames] = append(samples[ConventionFileNames], stem)
		}

		for _, s := range f.Symbols {
			switch s.Kind {
			case domain.KindClass, domain.KindStruct:
				samples[ConventionClassNames] = append(samples[ConventionClassNames], s.Name)
			case domain.KindInterface:
				samples[ConventionInterfaceNames] = append(samples[ConventionInterfaceNames], s.Name)
			case domain.KindField:
				if !s.Exported {
					samples[ConventionPrivateFields] = append(samples[ConventionPrivateFields], s.Name)
				}
			case domain.KindFunction, domain.KindMethod:
				if f.IsTest && isTestName(s.Name) {
					samples[ConventionTestNames] = append(samples[ConventionTestNames], s.Name)
				}
			}
		}
	}

	out := make(map[string]domain.ConventionDetection, len(samples))
	for category, names := range samples {
		out[category] = inferCategory(category, names, th)
	}
	return out
}

// inferCategory groups sampled identifiers by shape and builds the detection.
func inferCategory(category string, names []string, th domain.Thresholds) domain.ConventionDetection {
	cd := domain.ConventionDetection{
		Category:   category,
		SampleSize: len(names),
		Source:     domain.SourceAutoDetected,
	}
	if len(names) == 0 {
		return cd
	}

	counts := make(map[string]int)
	shapeOf := make(map[string]string, len(names))
	for _, n := range names {
		shape := classifyShape(n, category)
		counts[shape]++
		shapeOf[n] = shape
	}

	shapes := make([]string, 0, len(counts))
	for s := range counts {
		shapes = append(shapes, s)
	}
	// Highest count wins; ties break alphabetically for determinism.
	sort.Slice(shapes, func(i, j int) bool {
		if counts[shapes[i]] != counts[shapes[j]] {
			return counts[shapes[i]] > counts[shapes[j]]
		}
		return shapes[i] < shapes[j]
	})

	dominant := shapes[0]
	cd.Dominant = dominant
	cd.Consistency = clamp01(float64(counts[dominant]) / float64(len(names)))

	for _, s := range shapes[1:] {
		freq := float64(counts[s]) / float64(len(names))
		if freq >= th.AltFrequency {
			cd.Alternatives = append(cd.Alternatives, domain.AlternativePattern{
				Pattern:   s,
				Frequency: freq,
			})
		}
	}

	seen := make(map[string]bool)
	for _, n := range names {
		if shapeOf[n] == dominant || seen[n] {
			continue
		}
		seen[n] = true
		cd.Exceptions = append(cd.Exceptions, n)
	}
	sort.Strings(cd.Exceptions)
	if len(cd.Exceptions) > maxExceptions {
		cd.Exceptions = cd.Exceptions[:maxExceptions]
	}

	return cd
}

// classifyShape normalizes an identifier into its naming shape. The
// interface category gets the I-prefix check first, since IOrderRepository
// is also valid PascalCase.
func classifyShape(name, category string) string {
	if name == "" {
		return ShapeMixed
	}

	if category == ConventionInterfaceNames && len(name) >= 2 &&
		name[0] == 'I' && unicode.IsUpper(rune(name[1])) {
		return ShapeIPrefixed
	}

	if strings.HasPrefix(name, "_") {
		return ShapeUnderscored
	}
	if strings.Contains(name, "-") {
		if strings.ToLower(name) == name {
			return ShapeKebabCase
		}
		return ShapeMixed
	}
	if strings.Contains(name, "_") {
		if strings.ToLower(name) == name {
			return ShapeSnakeCase
		}
		return ShapeMixed
	}

	runes := []rune(name)
	if unicode.IsUpper(runes[0]) {
		return ShapePascalCase
	}
	// camelcase.Split distinguishes a true multi-word camelCase identifier
	// from a plain lowercase word.
	if len(camelcase.Split(name)) > 1 {
		return ShapeCamelCase
	}
	return ShapeLowercase
}

// isTestName matches test method names across the supported frameworks.
func isTestName(name string) bool {
	return strings.HasPrefix(name, "Test") ||
		strings.HasPrefix(name, "test_") ||
		strings.HasPrefix(name, "test") && len(name) > 4 ||
		strings.HasSuffix(name, "Test") ||
		strings.HasSuffix(name, "Tests")
}
