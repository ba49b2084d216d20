package sandbox

import (
	"log/slog"
	"os/exec"
)

// Enforcer maps an abstract Policy onto a platform sandboxing primitive by
// rewriting the exe/args that will actually be exec'd. Spec §4.D
// deliberately leaves the mechanism to the port; this is the seam a test
// can substitute a fake for (see WithEnforcer).
type Enforcer interface {
	// Wrap returns the exe/args to actually execute so that policy is
	// enforced by the OS. ok is false when this enforcer cannot sandbox on the
	// current platform, in which case the launcher falls back to running
	// the child unsandboxed and logging a warning.
	Wrap(exe string, args []string, policy Policy) (wrappedExe string, wrappedArgs []string, ok bool)
}

// bwrapEnforcer shells the child out through bubblewrap, translating the
// writable/read-only/tool-search lists into --bind/--ro-bind flags and the
// network policy into --unshare-net (or its absence).
type bwrapEnforcer struct {
	bwrapPath string
}

// newBwrapEnforcer looks up bwrap on PATH. It never fails construction —
// Wrap reports ok=false if bwrap was not found.
func newBwrapEnforcer() *bwrapEnforcer {
	path, err := exec.LookPath("bwrap")
	if err != nil {
		return &bwrapEnforcer{}
	}
	return &bwrapEnforcer{bwrapPath: path}
}

func (b *bwrapEnforcer) Wrap(exe string, args []string, policy Policy) (string, []string, bool) {
	if b.bwrapPath == "" {
		return "", nil, false
	}

	wrapped := []string{"--die-with-parent", "--proc", "/proc", "--dev", "/dev"}
	for _, p := range policy.ReadOnly {
		wrapped = append(wrapped, "--ro-bind", p, p)
	}
	for _, p := range policy.ToolSearch {
		wrapped = append(wrapped, "--ro-bind", p, p)
	}
	for _, p := range policy.Writable {
		wrapped = append(wrapped, "--bind", p, p)
	}

	switch policy.Network.Kind {
	case NetworkNone, "":
		wrapped = append(wrapped, "--unshare-net")
	default:
		// Local sockets, localhost TCP, the docker daemon socket and
		// host-pattern allow-lists all require a real network namespace;
		// bwrap itself has no host-pattern-aware firewall, so for those kinds
		// the child shares the host's network namespace and this enforcer
		// applies no finer-grained network restriction.
	}

	wrapped = append(wrapped, "--", exe)
	wrapped = append(wrapped, args...)
	return b.bwrapPath, wrapped, true
}

// noEnforcer runs the child unsandboxed, for platforms/tests with nothing
// better available.
type noEnforcer struct{}

func (noEnforcer) Wrap(exe string, args []string, _ Policy) (string, []string, bool) {
	return exe, args, true
}

func warnUnsandboxed(logger *slog.Logger, exe string) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("running plugin without sandbox enforcement", "executable", exe)
}
