package invocation

import "github.com/forgebuild/pluginhost/invocation/session"

// ErrUnimplemented is returned by BaseDelegate's default request handlers.
// Embedding BaseDelegate and overriding only the methods a caller cares
// about is the expected way to implement PluginInvocationDelegate.
var ErrUnimplemented = session.ErrUnimplemented

// BuildOperationResult, TestOperationResult, SymbolGraphResult,
// PluginInvocationDelegate and BaseDelegate are canonically defined in
// package session, which is what actually dispatches to them; aliased here
// so callers of the Accessor don't need to import session directly.
type (
	BuildOperationResult    = session.BuildOperationResult
	TestOperationResult     = session.TestOperationResult
	SymbolGraphResult       = session.SymbolGraphResult
	PluginInvocationDelegate = session.PluginInvocationDelegate
	BaseDelegate            = session.BaseDelegate
)
