// Command forgeplugin-invoke compiles and runs a single build-tool plugin
// against one on-disk package, rendering the live session as a Bubble Tea
// progress view. It exercises invocation.Accessor end to end outside of a
// real build graph, the way the teacher's cli exercises its scan engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/forgebuild/pluginhost/invocation"
	"github.com/forgebuild/pluginhost/invocation/compilecache"
	"github.com/forgebuild/pluginhost/invocation/report"
	"github.com/forgebuild/pluginhost/invocation/sandbox"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("forgeplugin-invoke", flag.ContinueOnError)

	var (
		pluginDir   string
		packagePath string
		arguments   stringSlice
		workDir     string
		configPath  string
		apiVersion  string
		quiet       bool
	)
	fs.StringVar(&pluginDir, "plugin", "", "directory containing the plugin's Go sources")
	fs.StringVar(&packagePath, "package", "", "path of the package the plugin runs against")
	fs.Var(&arguments, "arg", "argument to pass to the plugin's perform-command verb (repeatable)")
	fs.StringVar(&workDir, "workdir", "", "working directory the plugin is spawned in (created if missing)")
	fs.StringVar(&configPath, "config", ".forgeplugin.yaml", "sandbox policy config file")
	fs.StringVar(&apiVersion, "api-version", "1.0", "plugin API version advertised to the compile cache")
	fs.BoolVar(&quiet, "quiet", false, "skip the Bubble Tea view and print a JSON report instead")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if pluginDir == "" || packagePath == "" {
		fmt.Fprintln(os.Stderr, "usage: forgeplugin-invoke -plugin <dir> -package <path> [-arg v]...")
		return 2
	}

	cfg, err := invocation.LoadSandboxConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading sandbox config: %v\n", err)
		return 2
	}
	policy := cfg.SandboxPolicy.ToPolicy()
	requestsPerMin, bandwidthPerMin := cfg.SandboxPolicy.RateLimits()

	if workDir == "" {
		var err error
		workDir, err = os.MkdirTemp("", "forgeplugin-invoke-")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: creating working directory: %v\n", err)
			return 2
		}
	} else if err := os.MkdirAll(workDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error: creating working directory: %v\n", err)
		return 2
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	accessor := invocation.NewAccessor(
		invocation.WithModuleGraph(newLocalGraph(packagePath, pluginDir, apiVersion)),
		invocation.WithCompiler(goBuildCompiler),
		invocation.WithBuiltToolResolver(func(name, relativePath string) (string, bool) { return "", false }),
		invocation.WithLauncher(sandbox.NewLauncher(
			sandbox.WithLogger(logger),
			sandbox.WithRateLimit(requestsPerMin, bandwidthPerMin),
		)),
		invocation.WithAccessorLogger(logger),
	)

	spec := invocation.InvocationSpec{
		Module:     invocation.ModuleRef{Name: filepath.Base(pluginDir)},
		Action:     invocation.PerformCommandAction{Package: invocation.PackageID(packagePath), Arguments: arguments},
		WorkingDir: workDir,
		Policy:     policy,
	}

	if quiet {
		return runQuiet(accessor, spec)
	}
	return runInteractive(accessor, spec)
}

func runQuiet(accessor *invocation.Accessor, spec invocation.InvocationSpec) int {
	result, err := accessor.InvokeModule(context.Background(), spec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	data, err := report.Render(*result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: rendering report: %v\n", err)
		return 1
	}
	fmt.Println(string(data))
	if !result.Succeeded {
		return 1
	}
	return 0
}

func runInteractive(accessor *invocation.Accessor, spec invocation.InvocationSpec) int {
	m := newModel(spec.Module.Name)
	program := tea.NewProgram(m)

	go invokeAndReport(context.Background(), accessor, spec, program)

	final, err := program.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	fm, ok := final.(model)
	if !ok || fm.err != nil || fm.result == nil || !fm.result.Succeeded {
		return 1
	}
	return 0
}

// goBuildCompiler compiles sources with the host Go toolchain, grounded on
// the plugin sources living as plain .go files rather than a prebuilt
// binary — the common case for a plugin authored alongside its caller.
func goBuildCompiler(ctx context.Context, sources []compilecache.SourceFile, targetPath string) error {
	srcDir, err := os.MkdirTemp("", "forgeplugin-src-")
	if err != nil {
		return fmt.Errorf("creating source staging directory: %w", err)
	}
	defer os.RemoveAll(srcDir)

	for _, src := range sources {
		dst := filepath.Join(srcDir, src.RelativePath)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("staging %q: %w", src.RelativePath, err)
		}
		if err := os.WriteFile(dst, src.Content, 0o644); err != nil {
			return fmt.Errorf("staging %q: %w", src.RelativePath, err)
		}
	}

	// A plugin's sources aren't expected to carry their own go.mod; stage a
	// throwaway one so "go build" has a module root to work from.
	if _, err := os.Stat(filepath.Join(srcDir, "go.mod")); os.IsNotExist(err) {
		if err := os.WriteFile(filepath.Join(srcDir, "go.mod"), []byte("module plugin\n\ngo 1.25\n"), 0o644); err != nil {
			return fmt.Errorf("staging go.mod: %w", err)
		}
	}

	cmd := exec.CommandContext(ctx, "go", "build", "-o", targetPath, ".")
	cmd.Dir = srcDir
	cmd.Env = os.Environ()
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("go build: %w: %s", err, out)
	}
	return nil
}

// stringSlice accumulates repeated -arg flags.
type stringSlice []string

func (s *stringSlice) String() string { return fmt.Sprint([]string(*s)) }
func (s *stringSlice) Set(v string) error {
	*s = append(*s, v)
	return nil
}
