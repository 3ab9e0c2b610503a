// Package config loads the oswatch configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pzaremba/oswatch/types"
)

// Config represents the main configuration.
type Config struct {
	Version   string    `yaml:"version"`
	Region    string    `yaml:"region"`
	OpenStack OpenStack `yaml:"openstack"`
	Collector Collector `yaml:"collector,omitempty"`
	Storage   Storage   `yaml:"storage,omitempty"`
	Emitter   Emitter   `yaml:"emitter,omitempty"`
	Telemetry Telemetry `yaml:"telemetry,omitempty"`
}

// OpenStack holds identity credentials for the collected cloud.
type OpenStack struct {
	AuthURL  string `yaml:"auth_url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Tenant   string `yaml:"tenant"`
	Domain   string `yaml:"domain,omitempty"`
}

// Duration is a time.Duration that unmarshals from values like "30m".
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

// Std converts to time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Collector controls what is collected and how often.
type Collector struct {
	Interval Duration `yaml:"interval,omitempty"`
	Jitter   bool     `yaml:"jitter,omitempty"`
	Kinds    []string `yaml:"kinds,omitempty"`
	Proxy    string   `yaml:"proxy,omitempty"`
}

// Storage points at the snapshot store directory.
type Storage struct {
	Dir string `yaml:"dir,omitempty"`
}

// Emitter configures shipping of collection reports.
type Emitter struct {
	Endpoint string        `yaml:"endpoint,omitempty"`
	Timeout  Duration `yaml:"timeout,omitempty"`
}

// Telemetry configures the OTLP export endpoint.
type Telemetry struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	Insecure bool   `yaml:"insecure,omitempty"`
}

// LoadConfig loads configuration from file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Collector.Interval == 0 {
		c.Collector.Interval = Duration(time.Hour)
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "/var/lib/oswatch"
	}
	if c.Emitter.Timeout == 0 {
		c.Emitter.Timeout = Duration(30 * time.Second)
	}
}

// Validate ensures config has required fields.
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("version is required")
	}
	if c.OpenStack.AuthURL == "" {
		return fmt.Errorf("openstack.auth_url is required")
	}
	if c.OpenStack.Username == "" {
		return fmt.Errorf("openstack.username is required")
	}
	if c.OpenStack.Password == "" {
		return fmt.Errorf("openstack.password is required")
	}
	if c.OpenStack.Tenant == "" {
		return fmt.Errorf("openstack.tenant is required")
	}
	for _, kind := range c.Collector.Kinds {
		if _, err := types.ParseKind(kind); err != nil {
			return fmt.Errorf("collector.kinds: %w", err)
		}
	}
	return nil
}

// Kinds resolves the configured resource kinds, defaulting to every
// tracked kind.
func (c *Config) Kinds() []types.Kind {
	if len(c.Collector.Kinds) == 0 {
		return types.AllKinds()
	}
	kinds := make([]types.Kind, 0, len(c.Collector.Kinds))
	for _, s := range c.Collector.Kinds {
		kinds = append(kinds, types.Kind(s))
	}
	return kinds
}
