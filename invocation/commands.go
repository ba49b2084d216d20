package invocation

import "github.com/forgebuild/pluginhost/invocation/session"

// Diagnostic, CommandConfiguration, BuildCommand, PrebuildCommand and
// BuildToolPluginInvocationResult are canonically defined in package
// session (the Invocation Session is what actually produces and mutates
// them); they are aliased here so callers of the Accessor don't need to
// import session directly.
type (
	Diagnostic                      = session.Diagnostic
	CommandConfiguration             = session.CommandConfiguration
	BuildCommand                     = session.BuildCommand
	PrebuildCommand                  = session.PrebuildCommand
	BuildToolPluginInvocationResult  = session.BuildToolPluginInvocationResult
)
