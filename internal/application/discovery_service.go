package application

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/loamlabs/loam/internal/domain"
	"github.com/loamlabs/loam/internal/domain/analysis"
)

// Discovery phases, in pipeline order.
const (
	PhaseZones        = "zones"
	PhaseStructure    = "structure"
	PhasePatterns     = "patterns"
	PhaseArchitecture = "architecture"
	PhaseConventions  = "conventions"
	PhaseTests        = "tests"
	PhaseInteractions = "interactions"
)

var phaseOrder = []string{
	PhaseZones, PhaseStructure, PhasePatterns, PhaseArchitecture,
	PhaseConventions, PhaseTests, PhaseInteractions,
}

// Options control a single discovery run.
type Options struct {
	Root   string
	Zone   string // restrict analysis to one zone
	Phase  string // run a single analysis phase
	Update bool   // require and refresh an existing profile
	DryRun bool   // analyze but do not persist
}

// Result bundles everything a discovery run produced.
type Result struct {
	Profile *domain.CodebaseProfile
	Zones   []domain.Zone
	Log     *domain.DiscoveryLog
	Diff    []domain.DiffEntry // against the prior profile, if one existed
}

// ProviderRegistry resolves a language id to its provider.
type ProviderRegistry interface {
	For(language string) (domain.LanguageProvider, bool)
}

// CacheStore persists parse cache snapshots between runs.
type CacheStore interface {
	Load(root string, cache *domain.ParseCache) error
	Save(root string, cache *domain.ParseCache) error
}

// DiscoveryService orchestrates the discovery pipeline:
// config → scan → zones → per-zone analysis → interactions → merge → persist.
type DiscoveryService struct {
	scanner      domain.TreeScanner
	detector     domain.ZoneDetector
	providers    ProviderRegistry
	configLoader domain.ConfigLoader
	store        domain.ProfileStore
	interactions domain.InteractionDetector
	git          domain.GitInfo
	cacheStore   CacheStore
	logger       *log.Logger
}

func NewDiscoveryService(
	scanner domain.TreeScanner,
	detector domain.ZoneDetector,
	providers ProviderRegistry,
	configLoader domain.ConfigLoader,
	store domain.ProfileStore,
	interactions domain.InteractionDetector,
	git domain.GitInfo,
	cacheStore CacheStore,
	logger *log.Logger,
) *DiscoveryService {
	return &DiscoveryService{
		scanner:      scanner,
		detector:     detector,
		providers:    providers,
		configLoader: configLoader,
		store:        store,
		interactions: interactions,
		git:          git,
		cacheStore:   cacheStore,
		logger:       logger,
	}
}

// Zones runs only zone detection and the manual merge, for listing.
func (s *DiscoveryService) Zones(root string) ([]domain.Zone, error) {
	cfg, err := s.configLoader.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	tree, err := s.scanner.Scan(root)
	if err != nil {
		return nil, fmt.Errorf("scanning repository: %w", err)
	}
	dlog := domain.NewDiscoveryLog()
	auto, err := s.detector.Detect(tree, dlog)
	if err != nil {
		return nil, fmt.Errorf("detecting zones: %w", err)
	}
	zones := domain.MergeZones(auto, cfg.Zones)
	if err := domain.CheckZoneOverlap(zones); err != nil {
		return nil, err
	}
	return zones, nil
}

// Discover runs the full pipeline. Config and scan failures are fatal;
// per-file and per-zone failures are logged and skipped.
func (s *DiscoveryService) Discover(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	if opts.Phase != "" && !validPhase(opts.Phase) {
		return nil, fmt.Errorf("unknown phase %q (valid: %s)", opts.Phase, strings.Join(phaseOrder, ", "))
	}

	cfg, err := s.configLoader.Load(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settings := cfg.EffectiveSettings()
	rules := cfg.EffectiveLayers()

	tree, err := s.scanner.Scan(opts.Root, settings.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("scanning repository: %w", err)
	}
	s.logger.Debug("scanned repository", "files", len(tree.Files), "dirs", len(tree.Dirs))

	dlog := domain.NewDiscoveryLog()

	auto, err := s.detector.Detect(tree, dlog)
	if err != nil {
		return nil, fmt.Errorf("detecting zones: %w", err)
	}
	zones := domain.MergeZones(auto, cfg.Zones)
	if err := domain.CheckZoneOverlap(zones); err != nil {
		return nil, fmt.Errorf("zone configuration: %w", err)
	}
	dlog.Record(domain.LogEntry{Kind: domain.LogPhase, Phase: PhaseZones})
	s.logger.Info("zones detected", "count", len(zones))

	analyzed := zones
	if opts.Zone != "" {
		analyzed = nil
		for _, z := range zones {
			if z.Name == opts.Zone {
				analyzed = []domain.Zone{z}
				break
			}
		}
		if analyzed == nil {
			return nil, fmt.Errorf("zone %q not found", opts.Zone)
		}
	}

	cache := domain.NewParseCache()
	if s.cacheStore != nil {
		if err := s.cacheStore.Load(opts.Root, cache); err != nil {
			s.logger.Warn("parse cache unavailable, running cold", "err", err)
		}
	}

	sources := s.buildSources(ctx, tree, analyzed, cache, settings.Parallelism, dlog)

	profiles := make(map[string]*domain.ZoneProfile, len(sources))
	for name, zs := range sources {
		profiles[name] = s.analyzeZone(zs, rules, settings.Thresholds, opts.Phase, dlog)
	}

	var interactions []domain.Interaction
	if phaseEnabled(opts.Phase, PhaseInteractions) {
		interactions, err = s.interactions.Detect(ctx, tree, zones, sources, dlog)
		if err != nil {
			return nil, fmt.Errorf("detecting interactions: %w", err)
		}
		dlog.Record(domain.LogEntry{Kind: domain.LogPhase, Phase: PhaseInteractions})
	}

	fresh := &domain.CodebaseProfile{
		SchemaVersion: domain.SchemaVersion,
		GeneratedAt:   start.UTC(),
		Languages:     languageSummaries(sources),
		Zones:         profiles,
		Interactions:  interactions,
	}
	fresh.Discovery = s.buildMetadata(opts, cfg, zones, dlog, opts.Phase, time.Since(start))

	prior, err := s.store.Load(opts.Root)
	if err != nil {
		s.logger.Warn("prior profile unreadable, starting fresh", "err", err)
		prior = nil
	}
	if opts.Update && prior == nil {
		return nil, fmt.Errorf("no existing profile to update; run a full discovery first")
	}

	merged := domain.MergeProfiles(prior, fresh)

	// A scoped run only re-analyzes its target; everything else carries over.
	if prior != nil && (opts.Zone != "" || opts.Phase != "") {
		for name, zp := range prior.Zones {
			if _, ok := merged.Zones[name]; !ok {
				merged.Zones[name] = zp
			}
		}
		if opts.Phase != "" {
			for name, zp := range merged.Zones {
				old, ok := prior.Zones[name]
				if !ok {
					continue
				}
				// Sections of phases that did not run keep their prior
				// values instead of the fresh zero values.
				if !phaseEnabled(opts.Phase, PhaseStructure) {
					zp.Structure = old.Structure
					zp.Frameworks = old.Frameworks
				}
				if !phaseEnabled(opts.Phase, PhasePatterns) {
					zp.Patterns = old.Patterns
				}
				if !phaseEnabled(opts.Phase, PhaseArchitecture) {
					zp.Architecture = old.Architecture
				}
				if !phaseEnabled(opts.Phase, PhaseConventions) {
					zp.Conventions = old.Conventions
				}
				if !phaseEnabled(opts.Phase, PhaseTests) {
					zp.Tests = old.Tests
				}
			}
			if !phaseEnabled(opts.Phase, PhaseInteractions) {
				merged.Interactions = prior.Interactions
			}
		}
	}

	if err := domain.ValidateProfile(merged); err != nil {
		return nil, fmt.Errorf("discovery produced an invalid profile: %w", err)
	}

	diff := domain.DiffProfiles(prior, merged)

	if !opts.DryRun {
		if err := s.store.Save(opts.Root, merged, dlog); err != nil {
			return nil, fmt.Errorf("saving profile: %w", err)
		}
		if s.cacheStore != nil {
			if err := s.cacheStore.Save(opts.Root, cache); err != nil {
				s.logger.Warn("persisting parse cache failed", "err", err)
			}
		}
	}

	hits, misses := cache.Stats()
	s.logger.Info("discovery complete",
		"zones", len(profiles),
		"interactions", len(interactions),
		"duration", time.Since(start).Round(time.Millisecond),
		"cache_hits", hits,
		"cache_misses", misses,
	)

	return &Result{Profile: merged, Zones: zones, Log: dlog, Diff: diff}, nil
}

// buildSources parses every zone's files in parallel, one task per zone.
// Zones without a registered provider and files that fail to parse are
// logged and skipped, never fatal.
func (s *DiscoveryService) buildSources(ctx context.Context, tree *domain.RepoTree, zones []domain.Zone, cache *domain.ParseCache, parallelism int, dlog *domain.DiscoveryLog) map[string]*domain.ZoneSource {
	sources := make(map[string]*domain.ZoneSource, len(zones))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for _, zone := range zones {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			zs := s.buildZoneSource(tree, zone, cache, dlog)
			if zs == nil {
				return nil
			}
			mu.Lock()
			sources[zone.Name] = zs
			mu.Unlock()
			return nil
		})
	}
	// Per-zone errors never surface as group errors; only cancellation does.
	_ = g.Wait()
	return sources
}

func (s *DiscoveryService) buildZoneSource(tree *domain.RepoTree, zone domain.Zone, cache *domain.ParseCache, dlog *domain.DiscoveryLog) *domain.ZoneSource {
	prov, ok := s.providers.For(zone.Language)
	if !ok {
		dlog.SkipZone(zone.Name, fmt.Sprintf("no provider for language %q", zone.Language))
		s.logger.Warn("skipping zone", "zone", zone.Name, "language", zone.Language)
		return nil
	}

	zs := &domain.ZoneSource{Zone: zone}

	project, err := prov.DetectProject(tree, zone)
	if err != nil {
		dlog.SkipZone(zone.Name, fmt.Sprintf("project detection: %v", err))
		return nil
	}
	zs.Project = project

	if deps, err := prov.Dependencies(tree, zone); err != nil {
		s.logger.Warn("reading dependencies failed", "zone", zone.Name, "err", err)
	} else {
		zs.Dependencies = deps
	}

	extensions := make(map[string]bool)
	for _, ext := range prov.Extensions() {
		extensions[ext] = true
	}

	for _, rel := range tree.Files {
		if !zone.Contains(rel) {
			continue
		}
		zs.AllPaths = append(zs.AllPaths, rel)
		if !extensions[path.Ext(rel)] {
			continue
		}

		abs := filepath.Join(tree.Root, filepath.FromSlash(rel))
		sf, err := s.parseWithCache(prov, cache, abs, rel)
		if err != nil {
			dlog.SkipFile(zone.Name, rel, err.Error())
			s.logger.Debug("skipping file", "path", rel, "err", err)
			continue
		}
		zs.Files = append(zs.Files, sf)
	}

	return zs
}

func (s *DiscoveryService) parseWithCache(prov domain.LanguageProvider, cache *domain.ParseCache, abs, rel string) (*domain.SourceFile, error) {
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	hash := domain.HashContent(content)
	if sf, ok := cache.Get(rel, hash); ok {
		return sf, nil
	}
	sf, err := prov.ParseFile(abs, rel)
	if err != nil {
		return nil, err
	}
	cache.Put(rel, hash, sf)
	return sf, nil
}

// analyzeZone runs the per-zone analysis phases, honoring the phase filter.
func (s *DiscoveryService) analyzeZone(zs *domain.ZoneSource, rules domain.LayerRules, th domain.Thresholds, phase string, dlog *domain.DiscoveryLog) *domain.ZoneProfile {
	zone := zs.Zone
	zp := &domain.ZoneProfile{
		Language:  zone.Language,
		Path:      zone.Path,
		Marker:    zone.Marker,
		Detection: zone.Detection,
		Purpose:   zone.Purpose,
		Contracts: zone.Contracts,
		FileCount: len(zs.Files),
	}

	if phaseEnabled(phase, PhaseStructure) {
		zp.Structure = analysis.AnalyzeStructure(zs, rules)
		zp.Frameworks = analysis.DetectFrameworks(zs.Dependencies)
		dlog.Record(domain.LogEntry{Kind: domain.LogPhase, Phase: PhaseStructure, Zone: zone.Name})
	}
	if phaseEnabled(phase, PhasePatterns) {
		zp.Patterns = analysis.ExtractPatterns(zs, th)
		dlog.Record(domain.LogEntry{Kind: domain.LogPhase, Phase: PhasePatterns, Zone: zone.Name})
	}
	if phaseEnabled(phase, PhaseArchitecture) {
		zp.Architecture = analysis.MapArchitecture(zs, rules)
		dlog.Record(domain.LogEntry{Kind: domain.LogPhase, Phase: PhaseArchitecture, Zone: zone.Name})
	}
	if phaseEnabled(phase, PhaseConventions) {
		zp.Conventions = analysis.InferConventions(zs, th)
		dlog.Record(domain.LogEntry{Kind: domain.LogPhase, Phase: PhaseConventions, Zone: zone.Name})
	}
	if phaseEnabled(phase, PhaseTests) {
		zp.Tests = analysis.AnalyzeTestGaps(zs)
		dlog.Record(domain.LogEntry{Kind: domain.LogPhase, Phase: PhaseTests, Zone: zone.Name})
	}

	return zp
}

func (s *DiscoveryService) buildMetadata(opts Options, cfg domain.DiscoveryConfig, zones []domain.Zone, dlog *domain.DiscoveryLog, phase string, elapsed time.Duration) domain.DiscoveryMetadata {
	meta := domain.DiscoveryMetadata{
		DurationMS:      elapsed.Milliseconds(),
		ZonesDiscovered: len(zones),
		DetectionMode:   detectionMode(cfg, zones),
		SkippedFiles:    dlog.Count(domain.LogSkippedFile),
		SkippedZones:    dlog.Count(domain.LogSkippedZone),
	}
	meta.Partial = meta.SkippedZones > 0 || opts.Zone != "" || phase != ""

	for _, p := range phaseOrder {
		if phaseEnabled(phase, p) {
			meta.PhasesCompleted = append(meta.PhasesCompleted, p)
		}
	}

	if s.git != nil && s.git.IsGitRepo(opts.Root) {
		if hash, err := s.git.CommitHash(opts.Root); err == nil {
			meta.CommitHash = hash
		}
	}
	return meta
}

func detectionMode(cfg domain.DiscoveryConfig, zones []domain.Zone) string {
	if len(cfg.Zones) == 0 {
		return "auto"
	}
	for _, z := range zones {
		if z.Detection == domain.DetectionAuto || z.Detection == domain.DetectionHybrid {
			return "hybrid"
		}
	}
	return "manual"
}

// languageSummaries aggregates source-file share per language across zones.
func languageSummaries(sources map[string]*domain.ZoneSource) []domain.LanguageSummary {
	counts := map[string]int{}
	zonesByLang := map[string][]string{}
	total := 0

	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		zs := sources[name]
		lang := zs.Zone.Language
		counts[lang] += len(zs.Files)
		total += len(zs.Files)
		zonesByLang[lang] = append(zonesByLang[lang], name)
	}
	if total == 0 {
		return nil
	}

	langs := make([]string, 0, len(counts))
	for l := range counts {
		langs = append(langs, l)
	}
	sort.Strings(langs)

	out := make([]domain.LanguageSummary, 0, len(langs))
	for _, l := range langs {
		out = append(out, domain.LanguageSummary{
			Name:       l,
			Percentage: float64(counts[l]) * 100 / float64(total),
			Zones:      zonesByLang[l],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Percentage != out[j].Percentage {
			return out[i].Percentage > out[j].Percentage
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func validPhase(phase string) bool {
	for _, p := range phaseOrder {
		if p == phase {
			return true
		}
	}
	return false
}

// phaseEnabled reports whether a phase runs under the filter. Zone detection
// always runs; there is nothing to analyze without boundaries.
func phaseEnabled(filter, phase string) bool {
	if phase == PhaseZones {
		return true
	}
	return filter == "" || filter == phase
}
