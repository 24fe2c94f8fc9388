package domain

import (
	"fmt"
	"sort"
	"strings"
)

// DetectionOrigin records how a zone entered the profile.
type DetectionOrigin string

const (
	DetectionAuto   DetectionOrigin = "auto"
	DetectionManual DetectionOrigin = "manual"
	DetectionHybrid DetectionOrigin = "hybrid"
)

// Zone is a path-bounded, language-homogeneous region of a repository.
// Zones are immutable within a run; re-detection builds a fresh set.
type Zone struct {
	Name      string          `json:"name"`
	Path      string          `json:"path"` // repo-relative, "." for the root
	Language  string          `json:"language"`
	Marker    string          `json:"marker,omitempty"`
	Detection DetectionOrigin `json:"detection"`
	Purpose   string          `json:"purpose,omitempty"`
	Contracts []string        `json:"contracts,omitempty"`
}

// Contains reports whether relPath falls inside the zone's subtree.
func (z Zone) Contains(relPath string) bool {
	zp := normalizeZonePath(z.Path)
	if zp == "." {
		return true
	}
	rp := normalizeZonePath(relPath)
	return rp == zp || strings.HasPrefix(rp, zp+"/")
}

func normalizeZonePath(p string) string {
	p = strings.Trim(strings.ReplaceAll(p, "\\", "/"), "/")
	if p == "" {
		return "."
	}
	return p
}

// ZoneEntry is one manual zone override from the configuration document.
type ZoneEntry struct {
	Path      string   `yaml:"path"      json:"path"`
	Language  string   `yaml:"language"  json:"language,omitempty"`
	Purpose   string   `yaml:"purpose"   json:"purpose,omitempty"`
	Contracts []string `yaml:"contracts" json:"contracts,omitempty"`
	Exclude   bool     `yaml:"exclude"   json:"exclude,omitempty"`
}

// MergeZones combines auto-detected zones with the manual configuration.
// A manual entry matching an auto-detected zone name overrides that zone and
// marks it hybrid; exclude removes the zone; entries with no auto match are
// appended as manual zones. The merge is pure and idempotent: applying the
// same config twice yields the same set, and the result is sorted by name.
func MergeZones(auto []Zone, manual map[string]ZoneEntry) []Zone {
	byName := make(map[string]Zone, len(auto))
	for _, z := range auto {
		byName[z.Name] = z
	}

	for name, entry := range manual {
		if entry.Exclude {
			delete(byName, name)
			continue
		}

		z, exists := byName[name]
		if exists {
			// Only an auto-detected zone becomes hybrid; re-merging a
			// manual or hybrid zone must not change its origin.
			if z.Detection == DetectionAuto {
				z.Detection = DetectionHybrid
			}
		} else {
			z = Zone{Name: name, Detection: DetectionManual}
		}
		if entry.Path != "" {
			z.Path = normalizeZonePath(entry.Path)
		}
		if entry.Language != "" {
			z.Language = entry.Language
		}
		if entry.Purpose != "" {
			z.Purpose = entry.Purpose
		}
		if len(entry.Contracts) > 0 {
			z.Contracts = append([]string(nil), entry.Contracts...)
			sort.Strings(z.Contracts)
		}
		byName[name] = z
	}

	merged := make([]Zone, 0, len(byName))
	for _, z := range byName {
		merged = append(merged, z)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Name < merged[j].Name })
	return merged
}

// CheckZoneOverlap verifies that zones are pairwise non-overlapping in path
// coverage. Manual configuration can break this invariant, and overlapping
// zone boundaries corrupt every downstream phase, so this is checked before
// any analysis runs.
func CheckZoneOverlap(zones []Zone) error {
	for i := range zones {
		for j := i + 1; j < len(zones); j++ {
			a, b := zones[i], zones[j]
			if a.Contains(b.Path) || b.Contains(a.Path) {
				return fmt.Errorf("zone %q (%s) overlaps zone %q (%s)", a.Name, a.Path, b.Name, b.Path)
			}
		}
	}
	return nil
}

// ZoneFor returns the name of the zone containing relPath, or "" when no
// zone covers it. Deeper zone paths win over shallower ones so a root zone
// never swallows paths that belong to a nested sibling.
func ZoneFor(zones []Zone, relPath string) string {
	best := ""
	bestDepth := -1
	for _, z := range zones {
		if !z.Contains(relPath) {
			continue
		}
		zp := normalizeZonePath(z.Path)
		depth := 0
		if zp != "." {
			depth = strings.Count(zp, "/") + 1
		}
		if depth > bestDepth {
			best = z.Name
			bestDepth = depth
		}
	}
	return best
}
