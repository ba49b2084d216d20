package invocation

import (
	"github.com/forgebuild/pluginhost/invocation/compilecache"
	"github.com/forgebuild/pluginhost/invocation/ctxserialize"
	"github.com/forgebuild/pluginhost/invocation/toolbroker"
)

// BuildEnvironment is the platform/configuration pair dependency traversal
// and tool resolution are filtered against (spec §4.B, §4.F).
type BuildEnvironment struct {
	Platform      string
	Configuration string
}

// PluginModule describes one plugin module as seen by pluginsPerModule: the
// module it decorates plus the plugin module itself, both identified the
// way the caller's graph identifies modules.
type PluginModule struct {
	Module ModuleRef
	Plugin ModuleRef
}

// ModuleGraph is the consumed collaborator (spec §6) that knows the
// caller's package/target/project graph: how modules resolve to packages,
// what a module's plugin dependencies are, and where its sources live. The
// Accessor never walks the graph itself; every lookup here mirrors a
// `serialize(...)` or dependency-traversal operation from spec §4.B/§4.F.
type ModuleGraph interface {
	// PackageForModule resolves a plugin module to its owning package. ok
	// is false if the module has no owning package (CouldNotFindPackageError).
	PackageForModule(module ModuleRef) (ctxserialize.Package, bool)

	// Package, Target, Project and ProjectTarget resolve the ids embedded in
	// a PluginAction to the facts the Context Serializer needs. ok is false
	// for an unresolvable id (spec §4.B: "unknown/unresolvable targets
	// yield None").
	Package(id PackageID) (ctxserialize.Package, bool)
	Target(id TargetID) (ctxserialize.Target, bool)
	Project(id ProjectID) (ctxserialize.Project, bool)
	ProjectTarget(id ProjectTargetID) (ctxserialize.ProjectTarget, bool)

	// ToolSearchDirs returns the pkg-config search directories and SDK root
	// path relevant to module, in the order they should be searched.
	ToolSearchDirs(module ModuleRef) []string

	// Dependencies returns module's plugin dependencies, already filtered by
	// env, in the shape the Tool Broker understands.
	Dependencies(module ModuleRef, env BuildEnvironment) []toolbroker.Dependency

	// Sources returns a plugin module's source files for the compile cache
	// fingerprint, relative-path first (spec §4.C).
	Sources(module ModuleRef) ([]compilecache.SourceFile, error)

	// APIVersion is the plugin's declared API/tools version.
	APIVersion(module ModuleRef) string

	// PluginsPerModule satisfies the pure query operation of the same name
	// (spec §6): every module decorated by at least one plugin, in env.
	PluginsPerModule(env BuildEnvironment) map[ModuleRef][]PluginModule
}
