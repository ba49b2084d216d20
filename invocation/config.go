package invocation

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/forgebuild/pluginhost/invocation/sandbox"
)

// Config is the on-disk shape of .forgeplugin.yaml, adapted one-for-one
// from the teacher's .nox.yaml (plugin/config.go).
type Config struct {
	SandboxPolicy SandboxPolicyConfig `yaml:"sandbox_policy"`
}

// SandboxPolicyConfig overrides a subset of sandbox.Policy, merged onto
// DefaultSandboxPolicy for any field left at its zero value.
type SandboxPolicyConfig struct {
	Writable    []string `yaml:"writable"`
	ReadOnly    []string `yaml:"read_only"`
	ToolSearch  []string `yaml:"tool_search"`
	NetworkKind string   `yaml:"network_kind"`
	HostPattern string   `yaml:"host_pattern"`

	RequestsPerMinute    int   `yaml:"requests_per_minute"`
	BandwidthMBPerMinute int64 `yaml:"bandwidth_mb_per_minute"`
}

// DefaultSandboxPolicy denies network access and grants no filesystem
// access beyond what a caller explicitly lists; a conservative baseline
// every loaded config is merged onto.
func DefaultSandboxPolicy() sandbox.Policy {
	return sandbox.Policy{
		Network: sandbox.NetworkPolicy{Kind: sandbox.NetworkNone},
	}
}

// LoadSandboxConfig reads a .forgeplugin.yaml file. If the file does not
// exist, it returns a default Config without error; it errors only on
// malformed YAML or a read failure other than not-exist.
func LoadSandboxConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ToPolicy converts a SandboxPolicyConfig to a runtime sandbox.Policy,
// falling back to DefaultSandboxPolicy for fields left unset.
func (c *SandboxPolicyConfig) ToPolicy() sandbox.Policy {
	p := DefaultSandboxPolicy()

	if len(c.Writable) > 0 {
		p.Writable = c.Writable
	}
	if len(c.ReadOnly) > 0 {
		p.ReadOnly = c.ReadOnly
	}
	if len(c.ToolSearch) > 0 {
		p.ToolSearch = c.ToolSearch
	}
	if c.NetworkKind != "" {
		p.Network = sandbox.NetworkPolicy{Kind: sandbox.NetworkKind(c.NetworkKind), HostPattern: c.HostPattern}
	}

	return p
}

// RateLimits returns the requests-per-minute and bandwidth-bytes-per-minute
// settings this config carries for sandbox.WithRateLimit, converting the
// configured megabyte unit to bytes.
func (c *SandboxPolicyConfig) RateLimits() (requestsPerMin int, bandwidthBytesPerMin int64) {
	return c.RequestsPerMinute, c.BandwidthMBPerMinute * 1024 * 1024
}
