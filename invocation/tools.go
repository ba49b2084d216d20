package invocation

import "github.com/forgebuild/pluginhost/invocation/toolbroker"

// AccessibleTool is a tagged variant describing a tool dependency declared
// by a plugin target, before resolution. Its canonical home is package
// toolbroker, which computes the resolved {name → tool} map; it's aliased
// here so callers of the Accessor don't need to import toolbroker directly.
type AccessibleTool = toolbroker.AccessibleTool

// BuiltTool names a tool produced by the build itself. RelativePath is relative to
// the build products directory and is resolved to an absolute path by a
// caller-supplied BuiltToolResolver (toolbroker never guesses at layout).
type BuiltTool = toolbroker.BuiltTool

// VendedTool names a prebuilt binary dependency, already at an absolute
// path, along with the platform triples it supports. An empty Triples means
// "supports everything" in the sense that it must never be preferred over a
// same-named entry that does declare triples (spec §3 invariant).
type VendedTool = toolbroker.VendedTool
