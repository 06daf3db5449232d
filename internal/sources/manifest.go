package sources

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Feed types understood by the scrapers package
const (
	TypeReddit      = "reddit"
	TypeHackerNews  = "hackernews"
	TypeProductHunt = "producthunt"
	TypeRSS         = "rss"
)

// Definition describes one configured feed.
// Name and type are required; everything else has per-type defaults.
type Definition struct {
	Name   string     `yaml:"name" json:"name"`
	Type   string     `yaml:"type" json:"type"`
	URL    string     `yaml:"url" json:"url"`
	Active *bool      `yaml:"active" json:"active,omitempty"`
	Config FeedConfig `yaml:"config" json:"config"`
}

// FeedConfig is the per-feed tuning block. Zero values mean "use the feed default".
type FeedConfig struct {
	APIBase       string   `yaml:"api_base" json:"api_base,omitempty"`
	AuthURL       string   `yaml:"auth_url" json:"auth_url,omitempty"`
	Subreddits    []string `yaml:"subreddits" json:"subreddits,omitempty"`
	TimeFilter    string   `yaml:"time_filter" json:"time_filter,omitempty"`
	Limit         int      `yaml:"limit" json:"limit,omitempty"`
	MinEngagement int      `yaml:"min_engagement" json:"min_engagement,omitempty"`
	MaxAgeDays    int      `yaml:"max_age_days" json:"max_age_days,omitempty"`
	Keywords      []string `yaml:"keywords" json:"keywords,omitempty"`
}

// IsActive reports whether the feed is enabled. Feeds are active unless disabled explicitly.
func (d Definition) IsActive() bool {
	return d.Active == nil || *d.Active
}

// Manifest is the top-level sources.yaml document
type Manifest struct {
	Sources []Definition `yaml:"sources"`
}

// LoadManifest reads and parses a sources manifest with strict validation.
// Unknown YAML keys are rejected so typos surface at startup.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources manifest: %w", err)
	}

	var manifest Manifest
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&manifest); err != nil {
		return nil, fmt.Errorf("failed to parse sources manifest: %w", err)
	}

	for i, def := range manifest.Sources {
		if def.Name == "" {
			return nil, fmt.Errorf("source #%d missing required field: name", i+1)
		}
		if def.Type == "" {
			return nil, fmt.Errorf("source %q missing required field: type", def.Name)
		}
		if !knownType(def.Type) {
			return nil, fmt.Errorf("source %q has unknown type: %s", def.Name, def.Type)
		}
	}

	return &manifest, nil
}

func knownType(t string) bool {
	switch t {
	case TypeReddit, TypeHackerNews, TypeProductHunt, TypeRSS:
		return true
	}
	return false
}
