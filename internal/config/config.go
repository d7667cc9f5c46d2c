// =============================================================================
// internal/config/config.go - Resolver configuration loading
// =============================================================================
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bryanCE/digtrace/internal/resolver"
	"github.com/bryanCE/digtrace/pkg/roothints"
)

// Config is the on-disk configuration for the trace resolver
type Config struct {
	Resolver ResolverConfig `yaml:"resolver"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Duration wraps time.Duration so YAML values like "3s" parse; the yaml
// package has no built-in handling for duration strings
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// ResolverConfig holds resolution tuning knobs
type ResolverConfig struct {
	// AttemptTimeout is the timeout for a single transport attempt
	AttemptTimeout Duration `yaml:"attempt_timeout"`

	// ServerBudget is the total wall-clock time allowed per server
	ServerBudget Duration `yaml:"server_budget"`

	// OverallTimeout is the global budget for one resolution
	OverallTimeout Duration `yaml:"overall_timeout"`

	// Retries per transport per server
	Retries int `yaml:"retries"`

	MaxZoneDepth  int `yaml:"max_zone_depth"`
	MaxAliasChain int `yaml:"max_alias_chain"`
	MaxGlueDepth  int `yaml:"max_glue_depth"`
	GlueWorkers   int `yaml:"glue_workers"`

	// RootServers overrides the built-in IANA hints when non-empty
	RootServers []string `yaml:"root_servers"`

	IPv4Only bool `yaml:"ipv4_only"`
	IPv6Only bool `yaml:"ipv6_only"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	// Level is one of panic, fatal, error, warn, info, debug, trace
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	opts := resolver.DefaultOptions()
	return &Config{
		Resolver: ResolverConfig{
			AttemptTimeout: Duration(opts.AttemptTimeout),
			ServerBudget:   Duration(opts.ServerBudget),
			OverallTimeout: Duration(opts.OverallTimeout),
			Retries:        opts.Retries,
			MaxZoneDepth:   opts.MaxZoneDepth,
			MaxAliasChain:  opts.MaxAliasChain,
			MaxGlueDepth:   opts.MaxGlueDepth,
			GlueWorkers:    opts.GlueWorkers,
		},
		Logging: LoggingConfig{Level: "warn"},
	}
}

// Load reads a YAML config file, layering it over the defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for contradictions
func (c *Config) Validate() error {
	r := &c.Resolver
	if r.IPv4Only && r.IPv6Only {
		return fmt.Errorf("ipv4_only and ipv6_only are mutually exclusive")
	}
	if r.Retries < 0 {
		return fmt.Errorf("retries must not be negative")
	}
	if r.AttemptTimeout < 0 || r.ServerBudget < 0 || r.OverallTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	for _, s := range r.RootServers {
		if net.ParseIP(s) == nil {
			return fmt.Errorf("invalid root server address: %s", s)
		}
	}
	return nil
}

// Options converts the configuration into resolver options, filling in
// the root hints
func (c *Config) Options() resolver.Options {
	r := c.Resolver
	opts := resolver.Options{
		AttemptTimeout: time.Duration(r.AttemptTimeout),
		ServerBudget:   time.Duration(r.ServerBudget),
		OverallTimeout: time.Duration(r.OverallTimeout),
		Retries:        r.Retries,
		MaxZoneDepth:   r.MaxZoneDepth,
		MaxAliasChain:  r.MaxAliasChain,
		MaxGlueDepth:   r.MaxGlueDepth,
		GlueWorkers:    r.GlueWorkers,
		IPv4Only:       r.IPv4Only,
		IPv6Only:       r.IPv6Only,
	}

	if len(r.RootServers) > 0 {
		for _, s := range r.RootServers {
			if ip := net.ParseIP(s); ip != nil {
				opts.Roots = append(opts.Roots, ip)
			}
		}
	} else {
		switch {
		case r.IPv6Only:
			opts.Roots = roothints.IPv6Addresses()
		case r.IPv4Only:
			opts.Roots = roothints.IPv4Addresses()
		default:
			opts.Roots = roothints.Addresses()
		}
	}
	return opts
}
