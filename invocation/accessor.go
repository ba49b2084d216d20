package invocation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/forgebuild/pluginhost/invocation/compilecache"
	"github.com/forgebuild/pluginhost/invocation/ctxserialize"
	"github.com/forgebuild/pluginhost/invocation/sandbox"
	"github.com/forgebuild/pluginhost/invocation/session"
	"github.com/forgebuild/pluginhost/invocation/toolbroker"
	"github.com/forgebuild/pluginhost/invocation/wire"
)

// Compiler produces a plugin executable at targetPath from its sources. It
// is invoked by the compile cache at most once per fingerprint (spec §4.C);
// how compilation actually happens (which toolchain, which flags) is the
// caller's concern, not the Accessor's.
type Compiler func(ctx context.Context, sources []compilecache.SourceFile, targetPath string) error

// QueueFunc runs fn on whatever callback queue the caller's async form
// should complete on. The default queue runs fn directly on the goroutine
// InvokeAsync spawned.
type QueueFunc func(fn func())

// InvocationSpec is everything one invoke call needs beyond the action
// itself: which plugin module to run, the build environment its
// dependencies and tool search paths are filtered against, the process
// environment it runs under, the sandbox policy to enforce, and the
// delegate observing/serving it.
type InvocationSpec struct {
	Module      ModuleRef
	Action      PluginAction
	Environment BuildEnvironment
	WorkingDir  string
	ProcessEnv  map[string]string
	Policy      sandbox.Policy
	Delegate    PluginInvocationDelegate // nil defaults to BaseDelegate{}
}

// Accessor is the facade tying the Context Serializer, Script Compiler
// Cache, Sandbox Launcher, Wire Codec and Invocation Session behind the
// single invoke(action, …) entry point (spec §2, §4.G).
type Accessor struct {
	graph             ModuleGraph
	cache             *compilecache.Cache
	launcher          *sandbox.Launcher
	compiler          Compiler
	builtToolResolver BuiltToolResolver
	hostTriple        string
	toolchainID       string
	fs                FileSystem
	logger            *slog.Logger
	queue             QueueFunc
}

// Option configures an Accessor.
type Option func(*Accessor)

func WithModuleGraph(g ModuleGraph) Option { return func(a *Accessor) { a.graph = g } }
func WithCompileCache(c *compilecache.Cache) Option { return func(a *Accessor) { a.cache = c } }
func WithLauncher(l *sandbox.Launcher) Option { return func(a *Accessor) { a.launcher = l } }
func WithCompiler(c Compiler) Option { return func(a *Accessor) { a.compiler = c } }

// WithFileSystem sets the filesystem abstraction used to create the
// plugin's working directory before it is spawned (spec §6's FileSystem
// collaborator). Without one, InvocationSpec.WorkingDir is assumed to
// already exist.
func WithFileSystem(fs FileSystem) Option { return func(a *Accessor) { a.fs = fs } }

// WithBuiltToolResolver sets the callback mapping a Built tool's name and
// build-products-relative path to its produced absolute location (spec §6).
func WithBuiltToolResolver(r BuiltToolResolver) Option {
	return func(a *Accessor) { a.builtToolResolver = r }
}

// WithHostTriple overrides the platform triple the Tool Broker filters
// binary-module artifacts against. Defaults to GOOS-GOARCH.
func WithHostTriple(triple string) Option { return func(a *Accessor) { a.hostTriple = triple } }

// WithToolchainIdentity overrides the compile cache fingerprint's
// toolchain identity component. Defaults to runtime.Version().
func WithToolchainIdentity(id string) Option { return func(a *Accessor) { a.toolchainID = id } }

func WithAccessorLogger(logger *slog.Logger) Option { return func(a *Accessor) { a.logger = logger } }

// WithCallbackQueue sets the queue InvokeAsync's completion runs on.
func WithCallbackQueue(q QueueFunc) Option { return func(a *Accessor) { a.queue = q } }

// NewAccessor builds an Accessor. WithModuleGraph, WithCompiler and
// WithBuiltToolResolver have no usable default — omitting them leaves the
// Accessor unable to resolve dependencies, compile plugins, or locate
// built tools respectively, and InvokeModule/Invoke return an error making
// that clear rather than panicking.
func NewAccessor(opts ...Option) *Accessor {
	a := &Accessor{
		cache:       compilecache.NewCache(filepath.Join(os.TempDir(), "forgeplugin", "cache")),
		launcher:    sandbox.NewLauncher(),
		hostTriple:  defaultHostTriple(),
		toolchainID: runtime.Version(),
		logger:      slog.Default(),
		queue:       func(fn func()) { fn() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func defaultHostTriple() string {
	return fmt.Sprintf("%s-%s", goos(), goarch())
}

// Invoke runs action against spec.Module and returns exited_cleanly. This
// is the blocking-completion form of invoke(action, …) (spec §4.G, §6).
func (a *Accessor) Invoke(ctx context.Context, spec InvocationSpec) (bool, error) {
	if spec.Delegate == nil {
		spec.Delegate = BaseDelegate{}
	}
	result, err := a.runSession(ctx, spec, spec.Delegate)
	if err != nil {
		return false, err
	}
	return result.ExitedCleanly, nil
}

// InvokeAsync is the suspend-and-resume form of invoke(action, …): a thin
// adapter over Invoke that runs the call on its own goroutine and
// guarantees completion runs on the configured callback queue exactly once
// (spec §4.G).
func (a *Accessor) InvokeAsync(ctx context.Context, spec InvocationSpec, completion func(bool, error)) {
	go func() {
		ok, err := a.Invoke(ctx, spec)
		a.queue(func() { completion(ok, err) })
	}()
}

// InvokeModule resolves spec.Module's owning package, derives its tool
// paths, installs BaseDelegate when spec.Delegate is nil, times the run and
// returns the full aggregated result (spec §4.G's invoke(module, action, …)
// overload).
func (a *Accessor) InvokeModule(ctx context.Context, spec InvocationSpec) (*BuildToolPluginInvocationResult, error) {
	if a.graph == nil {
		return nil, fmt.Errorf("invocation: no ModuleGraph configured")
	}
	if _, ok := a.graph.PackageForModule(spec.Module); !ok {
		return nil, &CouldNotFindPackageError{Plugin: spec.Module.Name}
	}

	if spec.Delegate == nil {
		spec.Delegate = BaseDelegate{}
	}
	start := time.Now()
	result, err := a.runSession(ctx, spec, spec.Delegate)
	if err != nil {
		return nil, err
	}
	result.Duration = time.Since(start)
	return &result, nil
}

// runSession is the shared core behind Invoke and InvokeModule: resolve
// tools, serialize context, ensure a compiled executable, spawn it
// sandboxed, and pump the session to completion.
func (a *Accessor) runSession(ctx context.Context, spec InvocationSpec, delegate PluginInvocationDelegate) (BuildToolPluginInvocationResult, error) {
	if a.graph == nil {
		return BuildToolPluginInvocationResult{}, fmt.Errorf("invocation: no ModuleGraph configured")
	}
	if a.compiler == nil {
		return BuildToolPluginInvocationResult{}, fmt.Errorf("invocation: no Compiler configured")
	}
	if a.builtToolResolver == nil {
		return BuildToolPluginInvocationResult{}, fmt.Errorf("invocation: no BuiltToolResolver configured")
	}

	if a.fs != nil && spec.WorkingDir != "" && !a.fs.Exists(spec.WorkingDir) {
		if err := a.fs.CreateDirectory(spec.WorkingDir, true); err != nil {
			return BuildToolPluginInvocationResult{}, &CouldNotCreateOutputDirectoryError{Path: spec.WorkingDir, Err: err}
		}
	}

	accessible, allPaths, builtPaths, err := a.resolveTools(spec)
	if err != nil {
		return BuildToolPluginInvocationResult{}, fmt.Errorf("resolving accessible tools: %w", err)
	}

	initial, err := a.serializeAction(spec, accessible)
	if err != nil {
		return BuildToolPluginInvocationResult{}, &CouldNotSerializePluginInputError{Err: err}
	}

	sources, err := a.graph.Sources(spec.Module)
	if err != nil {
		return BuildToolPluginInvocationResult{}, fmt.Errorf("loading plugin sources: %w", err)
	}

	fingerprint := compilecache.FingerprintInput{
		Sources:     sources,
		APIVersion:  a.graph.APIVersion(spec.Module),
		ToolchainID: a.toolchainID,
		Flags:       compileFlags(spec.Policy),
	}

	pluginName := spec.Module.Name
	exePath, skipped, err := a.cache.Ensure(ctx, fingerprint,
		func(ctx context.Context, targetPath string) error {
			return a.compiler(ctx, sources, targetPath)
		},
		func() { delegate.CompilationStarted(pluginName) },
		func(result compilecache.CompilationResult) { delegate.CompilationEnded(pluginName, result) },
	)
	if err != nil {
		return BuildToolPluginInvocationResult{}, fmt.Errorf("compiling plugin %q: %w", pluginName, err)
	}
	if skipped {
		delegate.CompilationSkipped(pluginName)
	}

	child, err := a.launcher.Spawn(ctx, exePath, nil, spec.ProcessEnv, spec.WorkingDir, spec.Policy)
	if err != nil {
		return BuildToolPluginInvocationResult{}, &RunningPluginFailedError{Err: err}
	}

	sess := session.New(child, initial, delegate, allPaths, builtPaths, a.logger)
	result, err := sess.Run(ctx)
	if err != nil {
		return BuildToolPluginInvocationResult{}, translateSessionError(err)
	}
	return result, nil
}

// resolveTools computes the Tool Broker's accessible-tool map for
// spec.Module, then derives the absolute-path lists the session needs: one
// of every accessible tool (Built entries resolved via
// a.builtToolResolver, skipped when unresolvable per spec §6), and the
// subset that came from a Built entry.
func (a *Accessor) resolveTools(spec InvocationSpec) (map[string]toolbroker.AccessibleTool, []string, []string, error) {
	deps := a.graph.Dependencies(spec.Module, spec.Environment)
	accessible, err := toolbroker.Resolve(deps, a.hostTriple)
	if err != nil {
		return nil, nil, nil, err
	}

	var allPaths, builtPaths []string
	for _, tool := range accessible {
		switch t := tool.(type) {
		case toolbroker.BuiltTool:
			abs, ok := a.builtToolResolver(t.Name, t.RelativePath)
			if !ok {
				continue
			}
			allPaths = append(allPaths, abs)
			builtPaths = append(builtPaths, abs)
		case toolbroker.VendedTool:
			allPaths = append(allPaths, t.Path)
		}
	}
	return accessible, allPaths, builtPaths, nil
}

// serializeAction flattens spec.Module's context and builds the initial
// HostToPlugin message for spec.Action, resolving every id the action
// carries through a.graph (spec §4.B).
func (a *Accessor) serializeAction(spec InvocationSpec, accessible map[string]toolbroker.AccessibleTool) (wire.HostToPlugin, error) {
	ser := ctxserialize.New()
	ser.SetPluginWorkDir(spec.WorkingDir)
	for _, dir := range a.graph.ToolSearchDirs(spec.Module) {
		ser.AddToolSearchDir(dir)
	}
	for name, tool := range accessible {
		switch t := tool.(type) {
		case toolbroker.BuiltTool:
			abs, ok := a.builtToolResolver(t.Name, t.RelativePath)
			if !ok {
				continue
			}
			ser.SetAccessibleTool(name, abs, nil, wire.ToolOriginBuilt)
		case toolbroker.VendedTool:
			ser.SetAccessibleTool(name, t.Path, t.Triples, wire.ToolOriginVended)
		}
	}

	switch act := spec.Action.(type) {
	case CreateBuildToolCommandsAction:
		pkg, ok := a.graph.Package(act.Package)
		if !ok {
			return wire.HostToPlugin{}, fmt.Errorf("unresolvable package id %q", act.Package)
		}
		pkgID := ser.SerializePackage(pkg)

		target, ok := a.graph.Target(act.Target)
		if !ok {
			return wire.HostToPlugin{}, fmt.Errorf("unresolvable target id %q", act.Target)
		}
		targetID, ok := ser.SerializeTarget(ctxserialize.Target{Name: target.Name, Package: pkg})
		if !ok {
			return wire.HostToPlugin{}, fmt.Errorf("target %q's package was not serialized", target.Name)
		}

		genSrc := serializePaths(ser, act.GeneratedSources)
		genRes := serializePaths(ser, act.GeneratedResources)
		return wire.NewCreateBuildToolCommands(ser.WireInput(), pkgID, targetID, genSrc, genRes), nil

	case CreateXcodeProjectBuildToolCommandsAction:
		proj, ok := a.graph.Project(act.Project)
		if !ok {
			return wire.HostToPlugin{}, fmt.Errorf("unresolvable project id %q", act.Project)
		}
		projID := ser.SerializeProject(proj)

		target, ok := a.graph.ProjectTarget(act.Target)
		if !ok {
			return wire.HostToPlugin{}, fmt.Errorf("unresolvable project target id %q", act.Target)
		}
		targetID, ok := ser.SerializeProjectTarget(ctxserialize.ProjectTarget{Name: target.Name, Project: proj})
		if !ok {
			return wire.HostToPlugin{}, fmt.Errorf("project target %q's project was not serialized", target.Name)
		}

		genSrc := serializePaths(ser, act.GeneratedSources)
		genRes := serializePaths(ser, act.GeneratedResources)
		return wire.NewCreateXcodeProjectBuildToolCommands(ser.WireInput(), projID, targetID, genSrc, genRes), nil

	case PerformCommandAction:
		pkg, ok := a.graph.Package(act.Package)
		if !ok {
			return wire.HostToPlugin{}, fmt.Errorf("unresolvable package id %q", act.Package)
		}
		pkgID := ser.SerializePackage(pkg)
		return wire.NewPerformCommand(ser.WireInput(), pkgID, act.Arguments), nil

	case PerformProjectCommandAction:
		proj, ok := a.graph.Project(act.Project)
		if !ok {
			return wire.HostToPlugin{}, fmt.Errorf("unresolvable project id %q", act.Project)
		}
		projID := ser.SerializeProject(proj)
		return wire.NewPerformXcodeProjectCommand(ser.WireInput(), projID, act.Arguments), nil

	default:
		return wire.HostToPlugin{}, fmt.Errorf("unknown plugin action %T", spec.Action)
	}
}

func serializePaths(ser *ctxserialize.Serializer, paths []string) []wire.PathID {
	ids := make([]wire.PathID, len(paths))
	for i, p := range paths {
		ids[i] = ser.SerializePath(p)
	}
	return ids
}

// compileFlags derives the compilation flags a sandbox policy implies —
// e.g. a plugin linked for a network-less sandbox may need different
// linker flags than one permitted localhost TCP — so the compile cache's
// fingerprint changes along with the policy (spec §4.C).
func compileFlags(policy sandbox.Policy) []string {
	flags := []string{"network=" + string(policy.Network.Kind)}
	flags = append(flags, policy.ToolSearch...)
	return flags
}

// translateSessionError maps a session.Run failure onto the exported error
// taxonomy (spec §7) where the underlying cause is distinguishable;
// anything else is wrapped as a generic running-plugin failure.
func translateSessionError(err error) error {
	if incompat := asIncompatibleVersion(err); incompat != nil {
		return &PluginUsesIncompatibleVersionError{Expected: incompat.Expected, Actual: incompat.Actual}
	}
	return &RunningPluginFailedError{Err: err}
}
