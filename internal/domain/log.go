package domain

import (
	"sort"
	"sync"
)

// Log entry kinds.
const (
	LogSkippedFile   = "skipped_file"
	LogSkippedZone   = "skipped_zone"
	LogSkippedSource = "skipped_source" // interaction source, e.g. one compose file
	LogAmbiguity     = "ambiguity"      // polyglot directory matched two markers
	LogPhase         = "phase"
)

// LogEntry is one recorded discovery event. Nothing is dropped silently:
// every skipped file, zone, or interaction source gets an entry.
type LogEntry struct {
	Kind   string `json:"kind"`
	Phase  string `json:"phase,omitempty"`
	Zone   string `json:"zone,omitempty"`
	Path   string `json:"path,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// DiscoveryLog collects run events. Safe for concurrent use: per-zone
// analysis runs in parallel and records into the shared log.
type DiscoveryLog struct {
	mu      sync.Mutex
	entries []LogEntry
}

func NewDiscoveryLog() *DiscoveryLog {
	return &DiscoveryLog{}
}

func (l *DiscoveryLog) Record(e LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

func (l *DiscoveryLog) SkipFile(zone, path, reason string) {
	l.Record(LogEntry{Kind: LogSkippedFile, Zone: zone, Path: path, Reason: reason})
}

func (l *DiscoveryLog) SkipZone(zone, reason string) {
	l.Record(LogEntry{Kind: LogSkippedZone, Zone: zone, Reason: reason})
}

func (l *DiscoveryLog) SkipSource(path, reason string) {
	l.Record(LogEntry{Kind: LogSkippedSource, Path: path, Reason: reason})
}

func (l *DiscoveryLog) Ambiguity(path, reason string) {
	l.Record(LogEntry{Kind: LogAmbiguity, Path: path, Reason: reason})
}

// Entries returns a sorted copy of the recorded events. Sorting makes the
// log deterministic even when zones were analyzed in parallel.
func (l *DiscoveryLog) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		if out[i].Zone != out[j].Zone {
			return out[i].Zone < out[j].Zone
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// Count returns how many entries of the given kind were recorded.
func (l *DiscoveryLog) Count(kind string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
