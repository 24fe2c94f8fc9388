package domain

import (
	"fmt"
	"sort"
)

// Diff entry kinds.
const (
	DiffAdded   = "added"
	DiffRemoved = "removed"
	DiffChanged = "changed"
)

// DiffEntry is one observed difference between two profiles.
type DiffEntry struct {
	Kind   string `json:"kind"`
	Zone   string `json:"zone,omitempty"`
	Field  string `json:"field"`
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`
}

// DiffProfiles compares two profiles zone by zone. Entries are sorted by
// zone then field so the diff is stable across runs. A nil prior profile
// reports every zone as added.
func DiffProfiles(prior, current *CodebaseProfile) []DiffEntry {
	var out []DiffEntry

	priorZones := map[string]*ZoneProfile{}
	if prior != nil {
		priorZones = prior.Zones
	}

	for name, zp := range current.Zones {
		old, ok := priorZones[name]
		if !ok {
			out = append(out, DiffEntry{Kind: DiffAdded, Zone: name, Field: "zone", After: zp.Language})
			continue
		}
		out = append(out, diffZone(name, old, zp)...)
	}
	for name := range priorZones {
		if _, ok := current.Zones[name]; !ok {
			out = append(out, DiffEntry{Kind: DiffRemoved, Zone: name, Field: "zone", Before: priorZones[name].Language})
		}
	}

	if prior != nil && len(prior.Interactions) != len(current.Interactions) {
		out = append(out, DiffEntry{
			Kind:   DiffChanged,
			Field:  "interactions",
			Before: fmt.Sprintf("%d", len(prior.Interactions)),
			After:  fmt.Sprintf("%d", len(current.Interactions)),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Zone != out[j].Zone {
			return out[i].Zone < out[j].Zone
		}
		if out[i].Field != out[j].Field {
			return out[i].Field < out[j].Field
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

func diffZone(name string, old, cur *ZoneProfile) []DiffEntry {
	var out []DiffEntry

	oldPatterns := map[string]PatternDetection{}
	for _, p := range old.Patterns {
		oldPatterns[p.Pattern] = p
	}
	for _, p := range cur.Patterns {
		prev, ok := oldPatterns[p.Pattern]
		field := "pattern." + p.Pattern
		switch {
		case !ok && p.Detected:
			out = append(out, DiffEntry{Kind: DiffAdded, Zone: name, Field: field, After: p.Variant})
		case ok && prev.Detected != p.Detected:
			out = append(out, DiffEntry{
				Kind: DiffChanged, Zone: name, Field: field,
				Before: fmt.Sprintf("detected=%t", prev.Detected),
				After:  fmt.Sprintf("detected=%t", p.Detected),
			})
		case ok && prev.Variant != p.Variant:
			out = append(out, DiffEntry{Kind: DiffChanged, Zone: name, Field: field, Before: prev.Variant, After: p.Variant})
		}
	}

	oldConv := map[string]ConventionDetection{}
	for _, c := range old.Conventions {
		oldConv[c.Category] = c
	}
	for _, c := range cur.Conventions {
		prev, ok := oldConv[c.Category]
		if ok && prev.Dominant != c.Dominant {
			out = append(out, DiffEntry{
				Kind: DiffChanged, Zone: name,
				Field:  "convention." + c.Category,
				Before: prev.Dominant,
				After:  c.Dominant,
			})
		}
	}

	oldViolations := len(old.Architecture.Violations)
	curViolations := len(cur.Architecture.Violations)
	if oldViolations != curViolations {
		out = append(out, DiffEntry{
			Kind: DiffChanged, Zone: name, Field: "violations",
			Before: fmt.Sprintf("%d", oldViolations),
			After:  fmt.Sprintf("%d", curViolations),
		})
	}

	if old.FileCount != cur.FileCount {
		out = append(out, DiffEntry{
			Kind: DiffChanged, Zone: name, Field: "file_count",
			Before: fmt.Sprintf("%d", old.FileCount),
			After:  fmt.Sprintf("%d", cur.FileCount),
		})
	}

	return out
}
