package sources

import (
	"fmt"
	"log/slog"
)

// Registry holds the configured feeds in registration order.
// It is built once at startup and read-only during a run.
type Registry struct {
	order   []string
	sources map[string]Definition
}

// NewRegistry creates a new empty source registry.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]Definition),
	}
}

// Register adds a feed to the registry.
// Returns an error if a feed with the same name is already registered.
func (r *Registry) Register(def Definition) error {
	if _, exists := r.sources[def.Name]; exists {
		return fmt.Errorf("source already registered: %s", def.Name)
	}
	r.sources[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

// Get retrieves a feed by name.
func (r *Registry) Get(name string) (Definition, bool) {
	def, ok := r.sources[name]
	return def, ok
}

// List returns all registered feeds in registration order.
func (r *Registry) List() []Definition {
	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.sources[name])
	}
	return defs
}

// Active returns the enabled feeds in registration order.
func (r *Registry) Active() []Definition {
	var defs []Definition
	for _, def := range r.List() {
		if def.IsActive() {
			defs = append(defs, def)
		}
	}
	return defs
}

// Count returns the number of registered feeds.
func (r *Registry) Count() int {
	return len(r.sources)
}

// DefaultRegistry returns the built-in feed set: Reddit, HackerNews and ProductHunt.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, def := range []Definition{
		{
			Name: "Reddit",
			Type: TypeReddit,
			URL:  "https://reddit.com",
			Config: FeedConfig{
				Subreddits: []string{"Entrepreneur", "smallbusiness", "SaaS", "nocode", "Automation"},
				TimeFilter: "day",
				Limit:      100,
			},
		},
		{
			Name:   "HackerNews",
			Type:   TypeHackerNews,
			URL:    "https://news.ycombinator.com",
			Config: FeedConfig{APIBase: "https://hacker-news.firebaseio.com/v0", Limit: 20},
		},
		{
			Name:   "ProductHunt",
			Type:   TypeProductHunt,
			URL:    "https://www.producthunt.com",
			Config: FeedConfig{APIBase: "https://api.producthunt.com/v2/api/graphql", Limit: 20},
		},
	} {
		// names are distinct, Register cannot fail here
		_ = r.Register(def)
	}
	return r
}

// LoadRegistry builds a registry from a manifest file, or returns the
// default registry when path is empty. Duplicate names are logged and skipped.
func LoadRegistry(path string, logger *slog.Logger) (*Registry, error) {
	if path == "" {
		return DefaultRegistry(), nil
	}

	manifest, err := LoadManifest(path)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry()
	for _, def := range manifest.Sources {
		if err := registry.Register(def); err != nil {
			logger.Warn("Duplicate source name, skipping", "source", def.Name, "error", err)
			continue
		}
	}

	logger.Info("Loaded sources manifest", "path", path, "count", registry.Count(), "active", len(registry.Active()))
	return registry, nil
}
