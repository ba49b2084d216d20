// Package toolbroker resolves the "accessible tools" set for a plugin
// module: the {tool-name → accessible tool} map assembled from the
// plugin's dependencies, filtered by build environment (spec §4.F). It is
// stateless — every call to Resolve is independent.
package toolbroker

import (
	"errors"
	"fmt"
	"strings"
)

// AccessibleTool is a tagged variant describing a tool dependency declared
// by a plugin target, before Built entries are resolved to their produced
// location.
type AccessibleTool interface {
	isAccessibleTool()
}

// BuiltTool names a tool produced by the build itself. RelativePath is relative to
// the build products directory and is resolved to an absolute path by a
// caller-supplied BuiltToolResolver — the broker never guesses at layout.
type BuiltTool struct {
	Name         string
	RelativePath string
}

func (BuiltTool) isAccessibleTool() {}

// VendedTool names a prebuilt binary dependency, already at an absolute
// path, along with the platform triples it supports. An empty Triples
// means this entry must never be preferred over a same-named entry that
// does declare triples (spec §3 invariant).
type VendedTool struct {
	Name    string
	Path    string
	Triples []string
}

func (VendedTool) isAccessibleTool() {}

// BuiltToolResolver maps a Built tool's name and build-products-relative
// path to its produced absolute location. ok=false means the tool is not
// available and is omitted from the accessible map.
type BuiltToolResolver func(name, relativePath string) (absolutePath string, ok bool)

// DependencyKind discriminates the three dependency shapes the broker
// understands (spec §4.F).
type DependencyKind string

const (
	DependencyExecutableModule DependencyKind = "executable-module"
	DependencyBinaryModule     DependencyKind = "binary-module"
	DependencyProduct          DependencyKind = "product"
)

// BinaryArtifactExecutable is one executable described by a binary
// dependency's artifact metadata for a single triple.
type BinaryArtifactExecutable struct {
	Name string
	Path string
}

// BinaryArtifact is the artifact metadata for one platform triple carried
// by a binary-module dependency.
type BinaryArtifact struct {
	Triple      string
	Executables []BinaryArtifactExecutable
}

// Dependency is one dependency of the plugin module, already filtered by
// build environment by the caller (the environment filter itself is the
// ModuleGraph collaborator's concern, out of this package's boundary).
type Dependency struct {
	Kind DependencyKind

	// ModuleName is set for DependencyExecutableModule and
	// DependencyBinaryModule.
	ModuleName string

	// ProductName and ProductExecutableModules are set for
	// DependencyProduct: the product's name, and the names of its
	// executable modules (exactly one is required — see ErrNoSuchProduct).
	ProductName              string
	ProductExecutableModules []string

	// Artifacts is set for DependencyBinaryModule: the artifact metadata
	// across all platform triples the dependency declares.
	Artifacts []BinaryArtifact
}

// ErrNoSuchProduct is returned when a product dependency does not resolve
// to exactly one executable module.
var ErrNoSuchProduct = errors.New("toolbroker: product has no single executable module")

// RelativePath is the build-products-relative path a module name resolves
// to before the caller's BuiltToolResolver turns it into an absolute path.
func RelativePath(moduleName string) string {
	return moduleName
}

// stripVersionSuffix removes a trailing "-<version>" segment (one starting
// with a digit) from a platform triple, normalizing vended binary triples
// before they're compared against the host triple. A version glued onto the
// last segment without a dash ("macosx10.13") is kept as is.
func stripVersionSuffix(triple string) string {
	if i := strings.LastIndexByte(triple, '-'); i >= 0 {
		tail := triple[i+1:]
		if tail != "" && (tail[0] >= '0' && tail[0] <= '9') {
			return triple[:i]
		}
	}
	return triple
}

// Resolve computes the {tool-name → accessible tool} map for a plugin
// module's dependencies against hostTriple, applying spec §4.F's merge
// rule: a Vended entry with empty triples is dropped if another entry
// already exists for that name; otherwise triple lists concatenate.
func Resolve(dependencies []Dependency, hostTriple string) (map[string]AccessibleTool, error) {
	result := make(map[string]AccessibleTool)

	for _, dep := range dependencies {
		switch dep.Kind {
		case DependencyExecutableModule:
			merge(result, dep.ModuleName, BuiltTool{
				Name:         dep.ModuleName,
				RelativePath: RelativePath(dep.ModuleName),
			})

		case DependencyProduct:
			if len(dep.ProductExecutableModules) != 1 {
				return nil, fmt.Errorf("%w: product %q has %d executable modules", ErrNoSuchProduct, dep.ProductName, len(dep.ProductExecutableModules))
			}
			moduleName := dep.ProductExecutableModules[0]
			merge(result, dep.ProductName, BuiltTool{
				Name:         dep.ProductName,
				RelativePath: RelativePath(moduleName),
			})

		case DependencyBinaryModule:
			for _, artifact := range dep.Artifacts {
				if stripVersionSuffix(artifact.Triple) != stripVersionSuffix(hostTriple) {
					continue
				}
				for _, exe := range artifact.Executables {
					merge(result, exe.Name, VendedTool{
						Name:    exe.Name,
						Path:    exe.Path,
						Triples: []string{stripVersionSuffix(artifact.Triple)},
					})
				}
			}
		}
	}

	return result, nil
}

func merge(result map[string]AccessibleTool, name string, candidate AccessibleTool) {
	existing, ok := result[name]
	if !ok {
		result[name] = candidate
		return
	}

	vended, isVended := candidate.(VendedTool)
	if !isVended {
		result[name] = candidate
		return
	}
	if len(vended.Triples) == 0 {
		// An empty-triples Vended entry never overwrites an existing entry.
		return
	}
	if existingVended, ok := existing.(VendedTool); ok {
		if len(existingVended.Triples) == 0 {
			// The existing entry never declared triples, so it can't be the
			// one spec invariant 3 means to keep — the incoming entry wins
			// outright, path included, regardless of arrival order.
			result[name] = candidate
			return
		}
		existingVended.Triples = append(existingVended.Triples, vended.Triples...)
		result[name] = existingVended
		return
	}
	result[name] = candidate
}
