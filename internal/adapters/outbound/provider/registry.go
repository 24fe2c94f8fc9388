// Package provider holds the per-language capability implementations behind
// domain.LanguageProvider. Providers are selected through a registry keyed by
// detected language; no runtime type inspection anywhere.
package provider

import (
	"sort"

	"github.com/loamlabs/loam/internal/domain"
)

// Registry maps language ids to their providers.
type Registry struct {
	providers map[string]domain.LanguageProvider
}

// NewRegistry returns a registry with every supported language wired in.
// JavaScript zones share the TypeScript provider; the syntax surface this
// engine reads is the same.
func NewRegistry() *Registry {
	r := &Registry{providers: make(map[string]domain.LanguageProvider)}
	r.Register(NewGoProvider())
	r.Register(NewCSharpProvider())
	r.Register(NewPythonProvider())
	r.Register(NewTypeScriptProvider("typescript"))
	r.Register(NewTypeScriptProvider("javascript"))
	return r
}

func (r *Registry) Register(p domain.LanguageProvider) {
	r.providers[p.Language()] = p
}

// For returns the provider for a language id.
func (r *Registry) For(language string) (domain.LanguageProvider, bool) {
	p, ok := r.providers[language]
	return p, ok
}

// Languages lists the registered language ids, sorted.
func (r *Registry) Languages() []string {
	out := make([]string, 0, len(r.providers))
	for l := range r.providers {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
