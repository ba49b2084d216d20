package invocation

import (
	"context"
	"errors"
	"testing"

	"github.com/forgebuild/pluginhost/invocation/compilecache"
	"github.com/forgebuild/pluginhost/invocation/ctxserialize"
	"github.com/forgebuild/pluginhost/invocation/sandbox"
	"github.com/forgebuild/pluginhost/invocation/toolbroker"
	"github.com/forgebuild/pluginhost/invocation/wire"
)

type fakeGraph struct {
	packages       map[PackageID]ctxserialize.Package
	targets        map[TargetID]ctxserialize.Target
	projects       map[ProjectID]ctxserialize.Project
	projectTargets map[ProjectTargetID]ctxserialize.ProjectTarget
	owningPackage  map[string]ctxserialize.Package
	dependencies   []toolbroker.Dependency
	sources        []compilecache.SourceFile
}

func (g *fakeGraph) PackageForModule(module ModuleRef) (ctxserialize.Package, bool) {
	pkg, ok := g.owningPackage[module.Name]
	return pkg, ok
}

func (g *fakeGraph) Package(id PackageID) (ctxserialize.Package, bool) {
	pkg, ok := g.packages[id]
	return pkg, ok
}

func (g *fakeGraph) Target(id TargetID) (ctxserialize.Target, bool) {
	t, ok := g.targets[id]
	return t, ok
}

func (g *fakeGraph) Project(id ProjectID) (ctxserialize.Project, bool) {
	p, ok := g.projects[id]
	return p, ok
}

func (g *fakeGraph) ProjectTarget(id ProjectTargetID) (ctxserialize.ProjectTarget, bool) {
	t, ok := g.projectTargets[id]
	return t, ok
}

func (g *fakeGraph) ToolSearchDirs(ModuleRef) []string { return []string{"/usr/local/bin"} }

func (g *fakeGraph) Dependencies(ModuleRef, BuildEnvironment) []toolbroker.Dependency {
	return g.dependencies
}

func (g *fakeGraph) Sources(ModuleRef) ([]compilecache.SourceFile, error) { return g.sources, nil }

func (g *fakeGraph) APIVersion(ModuleRef) string { return "1.0" }

func (g *fakeGraph) PluginsPerModule(BuildEnvironment) map[ModuleRef][]PluginModule { return nil }

func TestAccessor_ResolveToolsMergesBuiltAndVended(t *testing.T) {
	graph := &fakeGraph{
		dependencies: []toolbroker.Dependency{
			{Kind: toolbroker.DependencyExecutableModule, ModuleName: "codegen"},
			{Kind: toolbroker.DependencyBinaryModule, Artifacts: []toolbroker.BinaryArtifact{
				{Triple: "x86_64-unknown-linux-gnu", Executables: []toolbroker.BinaryArtifactExecutable{{Name: "protoc", Path: "/vendor/protoc"}}},
			}},
		},
	}
	a := NewAccessor(
		WithModuleGraph(graph),
		WithHostTriple("x86_64-unknown-linux-gnu"),
		WithBuiltToolResolver(func(name, relativePath string) (string, bool) {
			return "/build/products/" + relativePath, true
		}),
	)

	accessible, allPaths, builtPaths, err := a.resolveTools(InvocationSpec{Module: ModuleRef{Name: "MyPlugin"}})
	if err != nil {
		t.Fatalf("resolveTools() error = %v", err)
	}
	if len(accessible) != 2 {
		t.Fatalf("accessible = %v, want 2 entries", accessible)
	}
	if len(allPaths) != 2 {
		t.Fatalf("allPaths = %v, want 2 entries", allPaths)
	}
	if len(builtPaths) != 1 || builtPaths[0] != "/build/products/codegen" {
		t.Errorf("builtPaths = %v, want [/build/products/codegen]", builtPaths)
	}
}

func TestAccessor_ResolveToolsSkipsUnresolvableBuiltTool(t *testing.T) {
	graph := &fakeGraph{
		dependencies: []toolbroker.Dependency{
			{Kind: toolbroker.DependencyExecutableModule, ModuleName: "codegen"},
		},
	}
	a := NewAccessor(
		WithModuleGraph(graph),
		WithBuiltToolResolver(func(string, string) (string, bool) { return "", false }),
	)

	_, allPaths, builtPaths, err := a.resolveTools(InvocationSpec{Module: ModuleRef{Name: "MyPlugin"}})
	if err != nil {
		t.Fatalf("resolveTools() error = %v", err)
	}
	if len(allPaths) != 0 || len(builtPaths) != 0 {
		t.Errorf("expected an unresolvable Built tool to be omitted, got allPaths=%v builtPaths=%v", allPaths, builtPaths)
	}
}

func TestAccessor_SerializeActionPerformCommand(t *testing.T) {
	graph := &fakeGraph{
		packages: map[PackageID]ctxserialize.Package{"p": {Name: "Widgets", Path: "/repo/widgets"}},
	}
	a := NewAccessor(WithModuleGraph(graph), WithBuiltToolResolver(func(string, string) (string, bool) { return "", false }))

	msg, err := a.serializeAction(InvocationSpec{
		Module: ModuleRef{Name: "MyPlugin"},
		Action: PerformCommandAction{Package: "p", Arguments: []string{"build"}},
	}, map[string]toolbroker.AccessibleTool{})
	if err != nil {
		t.Fatalf("serializeAction() error = %v", err)
	}
	if msg.Kind != wire.KindPerformCommand {
		t.Fatalf("Kind = %q, want %q", msg.Kind, wire.KindPerformCommand)
	}
	if msg.PerformCommand.Package != 0 {
		t.Errorf("Package id = %d, want 0 (first package serialized)", msg.PerformCommand.Package)
	}
	if len(msg.PerformCommand.Input.Packages) != 1 {
		t.Errorf("WireInput.Packages = %v, want exactly one entry", msg.PerformCommand.Input.Packages)
	}
}

func TestAccessor_SerializeActionUnresolvablePackageFails(t *testing.T) {
	graph := &fakeGraph{}
	a := NewAccessor(WithModuleGraph(graph), WithBuiltToolResolver(func(string, string) (string, bool) { return "", false }))

	_, err := a.serializeAction(InvocationSpec{
		Module: ModuleRef{Name: "MyPlugin"},
		Action: PerformCommandAction{Package: "missing"},
	}, map[string]toolbroker.AccessibleTool{})
	if err == nil {
		t.Fatal("expected an error for an unresolvable package id")
	}
}

func TestAccessor_InvokeModuleFailsWithCouldNotFindPackage(t *testing.T) {
	graph := &fakeGraph{owningPackage: map[string]ctxserialize.Package{}}
	a := NewAccessor(WithModuleGraph(graph))

	_, err := a.InvokeModule(context.Background(), InvocationSpec{Module: ModuleRef{Name: "Orphan"}})
	var notFound *CouldNotFindPackageError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *CouldNotFindPackageError", err)
	}
}

func TestAccessor_RunSessionRequiresCollaborators(t *testing.T) {
	graph := &fakeGraph{owningPackage: map[string]ctxserialize.Package{"Plugin": {Name: "Plugin"}}}
	a := NewAccessor(WithModuleGraph(graph))

	_, err := a.InvokeModule(context.Background(), InvocationSpec{Module: ModuleRef{Name: "Plugin"}})
	if err == nil {
		t.Fatal("expected an error without a configured Compiler")
	}
}

func TestCompileFlags_VariesWithNetworkPolicy(t *testing.T) {
	none := compileFlags(sandbox.Policy{Network: sandbox.NetworkPolicy{Kind: sandbox.NetworkNone}})
	tcp := compileFlags(sandbox.Policy{Network: sandbox.NetworkPolicy{Kind: sandbox.NetworkLocalTCP}})

	if none[0] == tcp[0] {
		t.Errorf("expected compile flags to vary with network policy, got %v and %v", none, tcp)
	}
}
