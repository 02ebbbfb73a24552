package ingest

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed config/sources.yaml
var sourcesYAML embed.FS

// Registry holds the configuration for the dataset sources.
type Registry struct {
	Sources []SourceConfig `yaml:"sources"`
}

// FetchConfig defines HTTP fetching configuration for a source.
type FetchConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"` // Default: 30
	MaxRetries     *int   `yaml:"max_retries,omitempty"`     // nil means 3; 0 disables retries
	ProxyURL       string `yaml:"proxy_url,omitempty"`
	AcceptLanguage string `yaml:"accept_language,omitempty"` // e.g., "es-PE,es;q=0.9"
	BlockPrivate   bool   `yaml:"block_private_networks,omitempty"`
}

// SourceConfig defines where one dataset is read from.
type SourceConfig struct {
	Kind     Kind   `yaml:"kind"`
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
	// Fetcher selects the HTTP client for http(s) locations: "http" (default) or "colly".
	Fetcher   string      `yaml:"fetcher,omitempty"`
	CacheBust bool        `yaml:"cache_bust,omitempty"`
	Fetch     FetchConfig `yaml:"fetch,omitempty"`
}

// LoadRegistry reads sources from path, falling back to the embedded
// sources.yaml when path is empty or unreadable. ${VAR} references are
// expanded from the environment, then from defaults.
func LoadRegistry(path string, defaults map[string]string) (*Registry, error) {
	var data []byte
	if path != "" {
		if b, err := os.ReadFile(path); err == nil {
			data = b
		}
	}
	if data == nil {
		b, err := sourcesYAML.ReadFile("config/sources.yaml")
		if err != nil {
			return nil, err
		}
		data = b
	}

	expanded := os.Expand(string(data), func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return defaults[key]
	})
	return ParseRegistry(expanded)
}

// ParseRegistry parses and validates registry YAML.
func ParseRegistry(content string) (*Registry, error) {
	var reg Registry
	if err := yaml.Unmarshal([]byte(content), &reg); err != nil {
		return nil, fmt.Errorf("parse sources: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate requires exactly one source per dataset kind.
func (r *Registry) Validate() error {
	seen := make(map[Kind]bool)
	for _, s := range r.Sources {
		switch s.Kind {
		case KindBeca18, KindInstitutions, KindIntegral:
		default:
			return fmt.Errorf("source %q: unknown kind %q", s.Name, s.Kind)
		}
		if seen[s.Kind] {
			return fmt.Errorf("duplicate source for %s", s.Kind)
		}
		seen[s.Kind] = true
		if strings.TrimSpace(s.Location) == "" {
			return fmt.Errorf("source %s: empty location", s.Kind)
		}
		switch s.Fetcher {
		case "", "http", "colly":
		default:
			return fmt.Errorf("source %s: unknown fetcher %q", s.Kind, s.Fetcher)
		}
	}
	for _, k := range Kinds {
		if !seen[k] {
			return fmt.Errorf("no source configured for %s", k)
		}
	}
	return nil
}

// ApplyFetchDefaults fills the timeout and retry settings a source left unset.
func (r *Registry) ApplyFetchDefaults(timeout time.Duration, maxRetries int) {
	for i := range r.Sources {
		f := &r.Sources[i].Fetch
		if f.TimeoutSeconds == 0 {
			f.TimeoutSeconds = int(timeout.Seconds())
		}
		if f.MaxRetries == nil {
			f.MaxRetries = Retries(maxRetries)
		}
	}
}

// Retries returns n as a FetchConfig.MaxRetries value.
func Retries(n int) *int { return &n }

func (c FetchConfig) retries() int {
	if c.MaxRetries == nil {
		return defaultMaxRetries
	}
	return *c.MaxRetries
}

// Source returns the configuration for kind.
func (r *Registry) Source(kind Kind) (SourceConfig, bool) {
	for _, s := range r.Sources {
		if s.Kind == kind {
			return s, true
		}
	}
	return SourceConfig{}, false
}
