package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/forgebuild/pluginhost/invocation"
	"github.com/forgebuild/pluginhost/invocation/compilecache"
	"github.com/forgebuild/pluginhost/invocation/ctxserialize"
	"github.com/forgebuild/pluginhost/invocation/toolbroker"
)

// localGraph is a ModuleGraph over a single on-disk package, for driving
// one plugin invocation from the command line without a real build graph
// behind it.
type localGraph struct {
	pkg        ctxserialize.Package
	pkgID      invocation.PackageID
	pluginDir  string
	apiVersion string
	toolSearch []string
	deps       []toolbroker.Dependency
}

func newLocalGraph(packagePath, pluginDir, apiVersion string) *localGraph {
	return &localGraph{
		pkg:        ctxserialize.Package{Name: filepath.Base(packagePath), Path: packagePath},
		pkgID:      invocation.PackageID(packagePath),
		pluginDir:  pluginDir,
		apiVersion: apiVersion,
	}
}

func (g *localGraph) PackageForModule(invocation.ModuleRef) (ctxserialize.Package, bool) {
	return g.pkg, true
}

func (g *localGraph) Package(id invocation.PackageID) (ctxserialize.Package, bool) {
	if id != g.pkgID {
		return ctxserialize.Package{}, false
	}
	return g.pkg, true
}

func (g *localGraph) Target(invocation.TargetID) (ctxserialize.Target, bool) {
	return ctxserialize.Target{}, false
}

func (g *localGraph) Project(invocation.ProjectID) (ctxserialize.Project, bool) {
	return ctxserialize.Project{}, false
}

func (g *localGraph) ProjectTarget(invocation.ProjectTargetID) (ctxserialize.ProjectTarget, bool) {
	return ctxserialize.ProjectTarget{}, false
}

func (g *localGraph) ToolSearchDirs(invocation.ModuleRef) []string { return g.toolSearch }

func (g *localGraph) Dependencies(invocation.ModuleRef, invocation.BuildEnvironment) []toolbroker.Dependency {
	return g.deps
}

// Sources reads every regular file directly under pluginDir as a plugin
// source, relative paths preserved so the compile cache fingerprint
// doesn't change when the checkout moves (invocation/compilecache's
// contract).
func (g *localGraph) Sources(invocation.ModuleRef) ([]compilecache.SourceFile, error) {
	entries, err := os.ReadDir(g.pluginDir)
	if err != nil {
		return nil, fmt.Errorf("reading plugin directory %q: %w", g.pluginDir, err)
	}

	var out []compilecache.SourceFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(g.pluginDir, e.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading plugin source %q: %w", path, err)
		}
		out = append(out, compilecache.SourceFile{RelativePath: e.Name(), Content: content})
	}
	return out, nil
}

func (g *localGraph) APIVersion(invocation.ModuleRef) string { return g.apiVersion }

func (g *localGraph) PluginsPerModule(invocation.BuildEnvironment) map[invocation.ModuleRef][]invocation.PluginModule {
	return nil
}
