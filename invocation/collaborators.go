package invocation

import "github.com/forgebuild/pluginhost/invocation/toolbroker"

// FileSystem is the filesystem abstraction this package depends on instead
// of touching os directly, so callers can inject an in-memory fake in
// tests (spec §6).
type FileSystem interface {
	CreateDirectory(path string, recursive bool) error
	Exists(path string) bool
	Read(path string) ([]byte, error)
}

// BuiltToolResolver maps a Built tool's name and build-products-relative
// path to its produced absolute location. A nil *string-equivalent (empty
// string, ok=false) means the tool is not available and is omitted from the
// accessible map (spec §6, §4.F).
type BuiltToolResolver = toolbroker.BuiltToolResolver

// ModuleRef is the minimal handle a caller passes to
// Accessor.InvokeModule to identify which plugin module to run — the
// package/dependency graph itself lives entirely in the caller.
type ModuleRef struct {
	Name string
}
