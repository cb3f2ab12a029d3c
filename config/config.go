// Package config resolves which URA deployment to query and how hard
// to lean on it. Values layer up: built-in defaults, then an optional
// providers file, then the environment. Command line flags land on top
// in cmd.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	travelura "github.com/clonejo/travel-ura"
	"github.com/clonejo/travel-ura/ura"
)

// DefaultBaseURL is the deployment queried when nothing else is
// configured: the ASEAG instant endpoint this tool grew up against.
const DefaultBaseURL = "http://ivu.aseag.de/interfaces/ura/instant_V1"

// Config is everything a query run needs to know.
type Config struct {
	// BaseURL is the instant endpoint of the chosen provider.
	BaseURL string

	// Timeout bounds each stop fetch end to end.
	Timeout time.Duration

	// MaxConcurrent bounds how many stop fetches run at once.
	MaxConcurrent int
}

// Provider is one URA deployment declared in a providers file.
type Provider struct {
	Name    string `yaml:"name" validate:"required"`
	BaseURL string `yaml:"base_url" validate:"required,url"`
}

// File is a providers file: a list of deployments and, optionally,
// which one to use when none is named.
type File struct {
	Default   string     `yaml:"default"`
	Providers []Provider `yaml:"providers"`
}

// Load resolves the configuration. The path argument (or $URA_CONFIG)
// names a providers file, the provider argument (or $URA_PROVIDER)
// picks a deployment from it. $URA_BASE_URL, $URA_TIMEOUT and
// $URA_MAX_CONCURRENT override the rest.
func Load(path, provider string) (Config, error) {
	cfg := Config{
		BaseURL:       DefaultBaseURL,
		Timeout:       ura.DefaultTimeout,
		MaxConcurrent: travelura.DefaultMaxConcurrent,
	}

	if path == "" {
		path = os.Getenv("URA_CONFIG")
	}
	if provider == "" {
		provider = os.Getenv("URA_PROVIDER")
	}

	if path != "" {
		file, err := LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		p, err := file.Select(provider)
		if err != nil {
			return Config{}, err
		}
		cfg.BaseURL = p.BaseURL
	} else if provider != "" {
		return Config{}, fmt.Errorf("provider %q named but no providers file given", provider)
	}

	if v := os.Getenv("URA_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("URA_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("URA_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv("URA_MAX_CONCURRENT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("URA_MAX_CONCURRENT: %w", err)
		}
		cfg.MaxConcurrent = n
	}

	return cfg, nil
}

// LoadFile reads and validates a providers file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading providers file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(f.Providers) == 0 {
		return nil, fmt.Errorf("%s: no providers declared", path)
	}

	v := validator.New()
	seen := make(map[string]bool, len(f.Providers))
	for _, p := range f.Providers {
		if err := v.Struct(p); err != nil {
			return nil, fmt.Errorf("provider %q: %w", p.Name, err)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("provider %q declared twice", p.Name)
		}
		seen[p.Name] = true
	}

	return &f, nil
}

// Select picks a provider by name, falling back to the file's default
// and then to the first provider declared.
func (f *File) Select(name string) (Provider, error) {
	if name == "" {
		name = f.Default
	}
	if name == "" {
		return f.Providers[0], nil
	}
	for _, p := range f.Providers {
		if p.Name == name {
			return p, nil
		}
	}
	return Provider{}, fmt.Errorf("provider %q not in providers file", name)
}
