package sandbox

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
)

// Launcher spawns compiled plugin executables under a Policy.
type Launcher struct {
	enforcer    Enforcer
	logger      *slog.Logger
	rateLimiter *RateLimiter
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithEnforcer overrides the platform sandbox enforcer, primarily for
// tests.
func WithEnforcer(e Enforcer) Option {
	return func(l *Launcher) { l.enforcer = e }
}

// WithLogger sets the logger used for sandbox-fallback warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Launcher) { l.logger = logger }
}

// WithRateLimit bounds the rate at which inbound frames from the plugin
// are delivered to the session, both by frame count and by cumulative
// frame bytes per minute. A zero value for either disables that limit.
func WithRateLimit(requestsPerMin int, bandwidthBytesPerMin int64) Option {
	return func(l *Launcher) { l.rateLimiter = NewRateLimiter(requestsPerMin, bandwidthBytesPerMin) }
}

// NewLauncher creates a Launcher. By default it enforces policy through
// bubblewrap when available on PATH, and otherwise runs unsandboxed with a
// logged warning at Spawn time (spec §4.D leaves the mechanism to the
// port — see SPEC_FULL.md's Open Question decision #1).
func NewLauncher(opts ...Option) *Launcher {
	l := &Launcher{
		enforcer: newBwrapEnforcer(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Spawn starts exe under policy and returns a Child exposing the
// bidirectional message stream, combined output, and exit future.
func (l *Launcher) Spawn(ctx context.Context, exe string, args []string, env map[string]string, cwd string, policy Policy) (*Child, error) {
	wrappedExe, wrappedArgs, ok := l.enforcer.Wrap(exe, args, policy)
	if !ok {
		warnUnsandboxed(l.logger, exe)
		wrappedExe, wrappedArgs, _ = (noEnforcer{}).Wrap(exe, args, policy)
	}

	hostToPluginR, hostToPluginW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("creating host-to-plugin pipe: %w", err)
	}
	pluginToHostR, pluginToHostW, err := os.Pipe()
	if err != nil {
		hostToPluginR.Close()
		hostToPluginW.Close()
		return nil, fmt.Errorf("creating plugin-to-host pipe: %w", err)
	}
	outputR, outputW, err := os.Pipe()
	if err != nil {
		hostToPluginR.Close()
		hostToPluginW.Close()
		pluginToHostR.Close()
		pluginToHostW.Close()
		return nil, fmt.Errorf("creating output pipe: %w", err)
	}

	cmd := exec.CommandContext(ctx, wrappedExe, wrappedArgs...)
	cmd.Dir = cwd
	cmd.Env = formatEnv(env)
	cmd.Stdout = outputW
	cmd.Stderr = outputW
	// fd 3 = messages the plugin reads from the host; fd 4 = messages the
	// plugin writes to the host. stdout/stderr stay free-form text.
	cmd.ExtraFiles = []*os.File{hostToPluginR, pluginToHostW}

	if err := cmd.Start(); err != nil {
		hostToPluginR.Close()
		hostToPluginW.Close()
		pluginToHostR.Close()
		pluginToHostW.Close()
		outputR.Close()
		outputW.Close()
		return nil, fmt.Errorf("starting plugin process %s: %w", exe, err)
	}

	// Parent doesn't need the child's ends.
	hostToPluginR.Close()
	pluginToHostW.Close()
	outputW.Close()

	c := newChild(cmd, hostToPluginW, pluginToHostR, outputR)
	c.startPumps(ctx, l.rateLimiter)
	return c, nil
}

func formatEnv(env map[string]string) []string {
	if env == nil {
		return nil
	}
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}
