// Package ctxserialize flattens a live package/target/project graph into
// the dense id-keyed tables of a wire.WireInput (spec §4.B). Ids are stable
// only within one Serializer instance, never across sessions; callers must
// build a fresh Serializer per invocation.
package ctxserialize

import "github.com/forgebuild/pluginhost/invocation/wire"

// Package, Target, Project and ProjectTarget are the minimal facts the
// serializer needs about a graph node. The graph itself — module
// resolution, dependency edges — is an external collaborator's concern
// (spec §6's ModuleGraph); this package only flattens what it's handed.
type Package struct {
	Name string
	Path string
}

type Target struct {
	Name    string
	Package Package
}

type Project struct {
	Name string
	Path string
}

type ProjectTarget struct {
	Name    string
	Project Project
}

// Serializer assigns dense wire ids to paths, packages, targets, projects
// and project-targets, and accumulates the flattened tables for the final
// WireInput. It is not safe for concurrent use; the Accessor serializes
// context once per invocation, before the session starts.
type Serializer struct {
	paths    map[string]wire.PathID
	pathRows []string

	packages    map[string]wire.PackageID
	packageRows map[wire.PackageID]wire.PackageRecord

	targets    map[string]wire.TargetID
	targetRows map[wire.TargetID]wire.TargetRecord

	projects    map[string]wire.ProjectID
	projectRows map[wire.ProjectID]wire.ProjectRecord

	projectTargets    map[string]wire.ProjectTargetID
	projectTargetRows map[wire.ProjectTargetID]wire.ProjectTargetRecord

	pluginWorkDir  wire.PathID
	toolSearchDirs []wire.PathID

	accessibleTools map[string]wire.AccessibleTool
}

// New creates an empty Serializer.
func New() *Serializer {
	return &Serializer{
		paths:             make(map[string]wire.PathID),
		packages:          make(map[string]wire.PackageID),
		packageRows:       make(map[wire.PackageID]wire.PackageRecord),
		targets:           make(map[string]wire.TargetID),
		targetRows:        make(map[wire.TargetID]wire.TargetRecord),
		projects:          make(map[string]wire.ProjectID),
		projectRows:       make(map[wire.ProjectID]wire.ProjectRecord),
		projectTargets:    make(map[string]wire.ProjectTargetID),
		projectTargetRows: make(map[wire.ProjectTargetID]wire.ProjectTargetRecord),
		accessibleTools:   make(map[string]wire.AccessibleTool),
	}
}

// SerializePath assigns (or reuses) a dense id for an absolute path.
func (s *Serializer) SerializePath(path string) wire.PathID {
	if id, ok := s.paths[path]; ok {
		return id
	}
	id := wire.PathID(len(s.pathRows))
	s.paths[path] = id
	s.pathRows = append(s.pathRows, path)
	return id
}

// SerializePackage assigns (or reuses) a dense id for a package.
func (s *Serializer) SerializePackage(pkg Package) wire.PackageID {
	key := pkg.Path
	if id, ok := s.packages[key]; ok {
		return id
	}
	id := wire.PackageID(len(s.packages))
	s.packages[key] = id
	s.packageRows[id] = wire.PackageRecord{Name: pkg.Name, Path: s.SerializePath(pkg.Path)}
	return id
}

// SerializeTarget assigns a dense id for a target, keyed by name within its
// owning package. The target's package must already have been serialized
// by SerializePackage; otherwise ok is false (spec §4.B: unresolvable
// targets yield None, which callers must treat as a hard failure).
func (s *Serializer) SerializeTarget(t Target) (wire.TargetID, bool) {
	pkgID, ok := s.packages[t.Package.Path]
	if !ok {
		return 0, false
	}
	key := t.Package.Path + "\x00" + t.Name
	if id, ok := s.targets[key]; ok {
		return id, true
	}
	id := wire.TargetID(len(s.targets))
	s.targets[key] = id
	s.targetRows[id] = wire.TargetRecord{Name: t.Name, Package: pkgID}
	return id, true
}

// SerializeProject assigns (or reuses) a dense id for a project.
func (s *Serializer) SerializeProject(p Project) wire.ProjectID {
	key := p.Path
	if id, ok := s.projects[key]; ok {
		return id
	}
	id := wire.ProjectID(len(s.projects))
	s.projects[key] = id
	s.projectRows[id] = wire.ProjectRecord{Name: p.Name, Path: s.SerializePath(p.Path)}
	return id
}

// SerializeProjectTarget assigns a dense id for a project-target, keyed by
// name within its owning project. The target's project must already have
// been serialized by SerializeProject; otherwise ok is false.
func (s *Serializer) SerializeProjectTarget(t ProjectTarget) (wire.ProjectTargetID, bool) {
	projID, ok := s.projects[t.Project.Path]
	if !ok {
		return 0, false
	}
	key := t.Project.Path + "\x00" + t.Name
	if id, ok := s.projectTargets[key]; ok {
		return id, true
	}
	id := wire.ProjectTargetID(len(s.projectTargets))
	s.projectTargets[key] = id
	s.projectTargetRows[id] = wire.ProjectTargetRecord{Name: t.Name, Project: projID}
	return id, true
}

// SetPluginWorkDir records the plugin's working directory as a serialized
// path.
func (s *Serializer) SetPluginWorkDir(path string) {
	s.pluginWorkDir = s.SerializePath(path)
}

// AddToolSearchDir serializes and appends a tool search directory, in call
// order.
func (s *Serializer) AddToolSearchDir(path string) {
	s.toolSearchDirs = append(s.toolSearchDirs, s.SerializePath(path))
}

// SetAccessibleTool restates a Tool Broker result for the wire, serializing
// its absolute path.
func (s *Serializer) SetAccessibleTool(name string, absolutePath string, triples []string, origin wire.ToolOrigin) {
	s.accessibleTools[name] = wire.AccessibleTool{
		Path:    s.SerializePath(absolutePath),
		Triples: triples,
		Origin:  origin,
	}
}

// WireInput assembles the flattened tables accumulated so far into the
// snapshot sent to the plugin at session start.
func (s *Serializer) WireInput() wire.WireInput {
	paths := make(map[wire.PathID]string, len(s.pathRows))
	for path, id := range s.paths {
		paths[id] = path
	}
	packages := make(map[wire.PackageID]wire.PackageRecord, len(s.packageRows))
	for id, rec := range s.packageRows {
		packages[id] = rec
	}
	targets := make(map[wire.TargetID]wire.TargetRecord, len(s.targetRows))
	for id, rec := range s.targetRows {
		targets[id] = rec
	}
	projects := make(map[wire.ProjectID]wire.ProjectRecord, len(s.projectRows))
	for id, rec := range s.projectRows {
		projects[id] = rec
	}
	projectTargets := make(map[wire.ProjectTargetID]wire.ProjectTargetRecord, len(s.projectTargetRows))
	for id, rec := range s.projectTargetRows {
		projectTargets[id] = rec
	}
	tools := make(map[string]wire.AccessibleTool, len(s.accessibleTools))
	for name, tool := range s.accessibleTools {
		tools[name] = tool
	}

	return wire.WireInput{
		Paths:           paths,
		Packages:        packages,
		Targets:         targets,
		Products:        map[wire.ProductID]wire.ProductRecord{},
		Projects:        projects,
		ProjectTargets:  projectTargets,
		PluginWorkDir:   s.pluginWorkDir,
		ToolSearchDirs:  append([]wire.PathID(nil), s.toolSearchDirs...),
		AccessibleTools: tools,
	}
}
