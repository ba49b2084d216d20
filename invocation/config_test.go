package invocation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/forgebuild/pluginhost/invocation/sandbox"
)

func TestLoadSandboxConfig_MissingFileReturnsDefault(t *testing.T) {
	cfg, err := LoadSandboxConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadSandboxConfig() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadSandboxConfig() returned nil Config")
	}
}

func TestLoadSandboxConfig_ParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".forgeplugin.yaml")
	contents := "sandbox_policy:\n  writable:\n    - /tmp/build\n  network_kind: local-tcp-localhost\n  requests_per_minute: 30\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := LoadSandboxConfig(path)
	if err != nil {
		t.Fatalf("LoadSandboxConfig() error = %v", err)
	}
	if len(cfg.SandboxPolicy.Writable) != 1 || cfg.SandboxPolicy.Writable[0] != "/tmp/build" {
		t.Errorf("Writable = %v, want [/tmp/build]", cfg.SandboxPolicy.Writable)
	}
	if cfg.SandboxPolicy.RequestsPerMinute != 30 {
		t.Errorf("RequestsPerMinute = %d, want 30", cfg.SandboxPolicy.RequestsPerMinute)
	}
}

func TestSandboxPolicyConfig_ToPolicyMergesOntoDefault(t *testing.T) {
	cfg := SandboxPolicyConfig{NetworkKind: string(sandbox.NetworkLocalTCP)}
	policy := cfg.ToPolicy()

	if policy.Network.Kind != sandbox.NetworkLocalTCP {
		t.Errorf("Network.Kind = %q, want %q", policy.Network.Kind, sandbox.NetworkLocalTCP)
	}
	if policy.Writable != nil {
		t.Errorf("Writable = %v, want nil (default)", policy.Writable)
	}
}

func TestSandboxPolicyConfig_ToPolicyKeepsDefaultNetworkWhenUnset(t *testing.T) {
	cfg := SandboxPolicyConfig{}
	policy := cfg.ToPolicy()

	if policy.Network.Kind != sandbox.NetworkNone {
		t.Errorf("Network.Kind = %q, want %q (default)", policy.Network.Kind, sandbox.NetworkNone)
	}
}

func TestSandboxPolicyConfig_RateLimitsConvertsMegabytes(t *testing.T) {
	cfg := SandboxPolicyConfig{RequestsPerMinute: 10, BandwidthMBPerMinute: 2}
	reqs, bw := cfg.RateLimits()
	if reqs != 10 {
		t.Errorf("requestsPerMin = %d, want 10", reqs)
	}
	if bw != 2*1024*1024 {
		t.Errorf("bandwidthBytesPerMin = %d, want %d", bw, 2*1024*1024)
	}
}
