// Package compose detects cross-zone interactions: docker-compose service
// dependencies, shared schema directories, cross-zone project references, and
// shared message brokers. Interactions are advisory and deterministic: the
// same repository state always yields the same set with the same IDs.
package compose

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/loamlabs/loam/internal/domain"
)

var composeNames = map[string]bool{
	"docker-compose.yml":  true,
	"docker-compose.yaml": true,
	"compose.yml":         true,
	"compose.yaml":        true,
}

// Candidate names for schema directories shared across zones.
var sharedSchemaDirs = []string{"schemas", "contracts", "proto", "idl", "api"}

// Broker client packages grouped by broker. Two zones depending on the same
// broker's client are assumed to exchange messages through it.
var brokerPackages = map[string]string{
	"pika":                           "rabbitmq",
	"amqplib":                        "rabbitmq",
	"rabbitmq.client":                "rabbitmq",
	"github.com/rabbitmq/amqp091-go": "rabbitmq",
	"github.com/streadway/amqp":      "rabbitmq",
	"kafkajs":                        "kafka",
	"confluent-kafka":                "kafka",
	"confluent.kafka":                "kafka",
	"github.com/segmentio/kafka-go":  "kafka",
	"nats":                           "nats",
	"nats.py":                        "nats",
	"github.com/nats-io/nats.go":     "nats",
	"celery":                         "rabbitmq",
	"redis":                          "redis",
}

// interactionNS seeds deterministic interaction IDs. Random IDs would make
// two identical runs produce different profile bytes.
var interactionNS = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("loam.interactions"))

func interactionID(parts ...string) string {
	return uuid.NewSHA1(interactionNS, []byte(strings.Join(parts, "|"))).String()
}

// Detector implements domain.InteractionDetector.
type Detector struct{}

func New() *Detector { return &Detector{} }

func (d *Detector) Detect(ctx context.Context, tree *domain.RepoTree, zones []domain.Zone, sources map[string]*domain.ZoneSource, log *domain.DiscoveryLog) ([]domain.Interaction, error) {
	var out []domain.Interaction

	steps := []func(*domain.RepoTree, []domain.Zone, map[string]*domain.ZoneSource, *domain.DiscoveryLog) []domain.Interaction{
		d.composeInteractions,
		d.schemaInteractions,
		d.libraryInteractions,
		d.brokerInteractions,
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, step(tree, zones, sources, log)...)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// composeService mirrors the subset of the compose format this engine reads.
// build may be a plain context string or a mapping, depends_on a list or a
// mapping with conditions; custom unmarshallers absorb both shapes.
type composeService struct {
	Build       composeBuild   `yaml:"build"`
	Image       string         `yaml:"image"`
	DependsOn   composeDepends `yaml:"depends_on"`
	Environment composeEnv     `yaml:"environment"`
}

type composeBuild struct {
	Context string
}

func (b *composeBuild) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&b.Context)
	case yaml.MappingNode:
		var m struct {
			Context string `yaml:"context"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		b.Context = m.Context
		return nil
	}
	return fmt.Errorf("build: unsupported node kind %d", node.Kind)
}

type composeDepends struct {
	Services []string
}

func (d *composeDepends) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		return node.Decode(&d.Services)
	case yaml.MappingNode:
		var m map[string]yaml.Node
		if err := node.Decode(&m); err != nil {
			return err
		}
		for name := range m {
			d.Services = append(d.Services, name)
		}
		sort.Strings(d.Services)
		return nil
	}
	return fmt.Errorf("depends_on: unsupported node kind %d", node.Kind)
}

type composeEnv struct {
	Values map[string]string
}

func (e *composeEnv) UnmarshalYAML(node *yaml.Node) error {
	e.Values = map[string]string{}
	switch node.Kind {
	case yaml.MappingNode:
		return node.Decode(&e.Values)
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		for _, item := range items {
			k, v, _ := strings.Cut(item, "=")
			e.Values[k] = v
		}
		return nil
	}
	return fmt.Errorf("environment: unsupported node kind %d", node.Kind)
}

type composeFile struct {
	Services map[string]composeService `yaml:"services"`
}

func (d *Detector) composeInteractions(tree *domain.RepoTree, zones []domain.Zone, _ map[string]*domain.ZoneSource, log *domain.DiscoveryLog) []domain.Interaction {
	var out []domain.Interaction

	for _, rel := range tree.Files {
		if !composeNames[path.Base(rel)] {
			continue
		}

		data, err := os.ReadFile(filepath.Join(tree.Root, filepath.FromSlash(rel)))
		if err != nil {
			log.SkipSource(rel, err.Error())
			continue
		}
		var cf composeFile
		if err := yaml.Unmarshal(data, &cf); err != nil {
			log.SkipSource(rel, fmt.Sprintf("malformed compose file: %v", err))
			continue
		}

		serviceZone := map[string]string{}
		names := make([]string, 0, len(cf.Services))
		for name, svc := range cf.Services {
			names = append(names, name)
			if svc.Build.Context == "" {
				continue
			}
			ctxRel := path.Join(path.Dir(rel), svc.Build.Context)
			if zone := domain.ZoneFor(zones, ctxRel); zone != "" {
				serviceZone[name] = zone
			}
		}
		sort.Strings(names)

		for _, name := range names {
			svc := cf.Services[name]
			from := serviceZone[name]
			if from == "" {
				continue
			}
			for _, dep := range svc.DependsOn.Services {
				to := serviceZone[dep]
				if to == "" || to == from {
					continue
				}
				out = append(out, domain.Interaction{
					ID:       interactionID(domain.InteractionDockerCompose, from, to, name, dep),
					Type:     domain.InteractionDockerCompose,
					FromZone: from,
					ToZone:   to,
					Details: map[string]string{
						"compose_file": rel,
						"service":      name,
						"depends_on":   dep,
					},
				})
			}
			out = append(out, httpEnvInteractions(rel, name, svc, serviceZone)...)
		}
	}
	return out
}

// httpEnvInteractions reads service environment values shaped like
// http://<service>:<port> and maps the host back to a zone.
func httpEnvInteractions(composeRel, name string, svc composeService, serviceZone map[string]string) []domain.Interaction {
	from := serviceZone[name]
	var out []domain.Interaction

	keys := make([]string, 0, len(svc.Environment.Values))
	for k := range svc.Environment.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := svc.Environment.Values[k]
		rest, ok := strings.CutPrefix(v, "http://")
		if !ok {
			rest, ok = strings.CutPrefix(v, "https://")
		}
		if !ok {
			continue
		}
		host, _, _ := strings.Cut(rest, ":")
		host, _, _ = strings.Cut(host, "/")
		to := serviceZone[host]
		if to == "" || to == from {
			continue
		}
		out = append(out, domain.Interaction{
			ID:       interactionID(domain.InteractionHTTPAPI, from, to, name, k),
			Type:     domain.InteractionHTTPAPI,
			FromZone: from,
			ToZone:   to,
			Details: map[string]string{
				"compose_file": composeRel,
				"service":      name,
				"variable":     k,
				"target":       host,
			},
		})
	}
	return out
}

func (d *Detector) schemaInteractions(tree *domain.RepoTree, zones []domain.Zone, sources map[string]*domain.ZoneSource, _ *domain.DiscoveryLog) []domain.Interaction {
	var out []domain.Interaction

	dirSet := map[string]bool{}
	for _, dir := range tree.Dirs {
		dirSet[dir] = true
	}

	for _, candidate := range sharedSchemaDirs {
		// Only top-level directories outside every zone qualify as shared.
		if !dirSet[candidate] || domain.ZoneFor(zones, candidate) != "" {
			continue
		}

		var referencing []string
		for _, name := range sortedZones(sources) {
			if zoneReferencesDir(sources[name], candidate) {
				referencing = append(referencing, name)
			}
		}
		if len(referencing) < 2 {
			continue
		}

		out = append(out, domain.Interaction{
			ID:    interactionID(domain.InteractionSharedSchema, candidate, strings.Join(referencing, ",")),
			Type:  domain.InteractionSharedSchema,
			Zones: referencing,
			Details: map[string]string{
				"directory": candidate,
			},
		})
	}
	return out
}

// zoneReferencesDir reports whether any import in the zone mentions the
// directory as a path or module segment.
func zoneReferencesDir(zs *domain.ZoneSource, dir string) bool {
	for _, f := range zs.Files {
		for _, imp := range f.Imports {
			p := strings.ReplaceAll(imp.Path, ".", "/")
			for _, seg := range strings.Split(p, "/") {
				if seg == dir {
					return true
				}
			}
		}
	}
	return false
}

func (d *Detector) libraryInteractions(_ *domain.RepoTree, zones []domain.Zone, sources map[string]*domain.ZoneSource, _ *domain.DiscoveryLog) []domain.Interaction {
	var out []domain.Interaction
	seen := map[string]bool{}

	for _, from := range sortedZones(sources) {
		zs := sources[from]
		if zs.Project == nil {
			continue
		}

		// Cross-zone project references (csproj ProjectReference paths).
		for _, sub := range zs.Project.SubProjects {
			for _, ref := range sub.References {
				refRel := path.Join(path.Dir(sub.Path), ref)
				to := domain.ZoneFor(zones, refRel)
				if to == "" || to == from {
					continue
				}
				key := from + "→" + to
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, domain.Interaction{
					ID:       interactionID(domain.InteractionSharedLibrary, from, to, refRel),
					Type:     domain.InteractionSharedLibrary,
					FromZone: from,
					ToZone:   to,
					Details: map[string]string{
						"reference": refRel,
					},
				})
			}
		}

		// Imports of another zone's module path (Go multi-module repos).
		for _, to := range sortedZones(sources) {
			if to == from || seen[from+"→"+to] {
				continue
			}
			target := sources[to].Project
			if target == nil || target.ModulePath == "" {
				continue
			}
			if zoneImportsModule(zs, target.ModulePath) {
				seen[from+"→"+to] = true
				out = append(out, domain.Interaction{
					ID:       interactionID(domain.InteractionSharedLibrary, from, to, target.ModulePath),
					Type:     domain.InteractionSharedLibrary,
					FromZone: from,
					ToZone:   to,
					Details: map[string]string{
						"module": target.ModulePath,
					},
				})
			}
		}
	}
	return out
}

func zoneImportsModule(zs *domain.ZoneSource, modulePath string) bool {
	for _, f := range zs.Files {
		for _, imp := range f.Imports {
			if imp.Path == modulePath || strings.HasPrefix(imp.Path, modulePath+"/") {
				return true
			}
		}
	}
	return false
}

func (d *Detector) brokerInteractions(_ *domain.RepoTree, _ []domain.Zone, sources map[string]*domain.ZoneSource, _ *domain.DiscoveryLog) []domain.Interaction {
	byBroker := map[string][]string{}
	for _, name := range sortedZones(sources) {
		brokers := map[string]bool{}
		for _, dep := range sources[name].Dependencies {
			if broker, ok := brokerPackages[strings.ToLower(dep.Name)]; ok {
				brokers[broker] = true
			}
		}
		for broker := range brokers {
			byBroker[broker] = append(byBroker[broker], name)
		}
	}

	brokers := make([]string, 0, len(byBroker))
	for b := range byBroker {
		brokers = append(brokers, b)
	}
	sort.Strings(brokers)

	var out []domain.Interaction
	for _, broker := range brokers {
		zones := byBroker[broker]
		if len(zones) < 2 {
			continue
		}
		sort.Strings(zones)
		out = append(out, domain.Interaction{
			ID:    interactionID(domain.InteractionMessageQueue, broker, strings.Join(zones, ",")),
			Type:  domain.InteractionMessageQueue,
			Zones: zones,
			Details: map[string]string{
				"broker": broker,
			},
		})
	}
	return out
}

func sortedZones(sources map[string]*domain.ZoneSource) []string {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
