// Package session owns one plugin run end-to-end: it pumps the wire
// protocol over a spawned child, routes plugin-initiated requests to a
// caller-supplied delegate, and aggregates diagnostics and commands into a
// BuildToolPluginInvocationResult (spec §4.E, "the heart" of the core).
//
// These result and delegate types are the Session's canonical home; the
// root invocation package re-exports them as type aliases so callers of
// the Accessor never need to import this package directly.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/forgebuild/pluginhost/invocation/compilecache"
)

// ErrUnimplemented is returned by BaseDelegate's default request handlers.
var ErrUnimplemented = errors.New("plugin invocation delegate: operation not implemented")

// Diagnostic is a host-side representation of a plugin-emitted diagnostic,
// or one synthesized by the session itself.
type Diagnostic struct {
	Severity string
	Message  string
	File     string // empty if absent or dropped as invalid
	Line     int    // 0 if absent
}

// CommandConfiguration describes how to run a command: display name,
// executable, arguments, environment and optional working directory.
type CommandConfiguration struct {
	DisplayName      string
	Executable       string
	Arguments        []string
	Environment      map[string]string
	WorkingDirectory string // empty means "plugin work directory"
}

// BuildCommand is a command configuration recorded for later execution by
// the enclosing build graph. InputFiles always includes every declared
// tool path for the plugin, sorted, prepended to any plugin-declared
// inputs (spec §3, §8.4).
type BuildCommand struct {
	Configuration CommandConfiguration
	InputFiles    []string
	OutputFiles   []string
}

// PrebuildCommand is a CommandConfiguration plus a single output-files
// directory the build graph scans after execution. Its executable must
// never be a Built tool path (spec §3, §8.5).
type PrebuildCommand struct {
	Configuration        CommandConfiguration
	OutputFilesDirectory string
}

// BuildToolPluginInvocationResult is the aggregate result of one plugin
// session, handed back to the caller (spec §4.G).
type BuildToolPluginInvocationResult struct {
	Succeeded        bool
	ExitedCleanly    bool
	Duration         time.Duration
	TextOutput       string
	Diagnostics      []Diagnostic
	BuildCommands    []BuildCommand
	PrebuildCommands []PrebuildCommand
}

// BuildOperationResult is the outcome of a delegate-served nested build.
type BuildOperationResult struct {
	Succeeded bool
	Output    string
}

// TestOperationResult is the outcome of a delegate-served nested test run.
type TestOperationResult struct {
	Succeeded bool
	Output    string
}

// SymbolGraphResult is the outcome of a delegate-served symbol-graph
// generation request. DirectoryPath is an absolute filesystem path; the
// session converts it to the wire's file-URL form.
type SymbolGraphResult struct {
	DirectoryPath string
}

// PluginInvocationDelegate is the capability set a caller supplies to
// observe and serve a running plugin session (spec §6). Embed BaseDelegate
// to get no-op/unimplemented defaults for methods you don't need.
type PluginInvocationDelegate interface {
	CompilationStarted(pluginName string)
	CompilationSkipped(pluginName string)
	CompilationEnded(pluginName string, result compilecache.CompilationResult)

	PluginEmittedOutput(data []byte)
	PluginEmittedDiagnostic(d Diagnostic)
	PluginEmittedProgress(message string)

	PluginDefinedBuildCommand(cmd BuildCommand)
	// PluginDefinedPrebuildCommand reports a prebuild command the plugin
	// defined; returning false vetoes it independently of the session's own
	// built-tool-executable check.
	PluginDefinedPrebuildCommand(cmd PrebuildCommand) bool

	RequestBuildOperation(ctx context.Context, subset []string, params map[string]any) (BuildOperationResult, error)
	RequestTestOperation(ctx context.Context, subset []string, params map[string]any) (TestOperationResult, error)
	RequestSymbolGraph(ctx context.Context, target string, options map[string]any) (SymbolGraphResult, error)
}

// BaseDelegate implements PluginInvocationDelegate with no-op observers and
// "unimplemented" request handlers. Embed it in a struct and override only
// what you need.
type BaseDelegate struct{}

func (BaseDelegate) CompilationStarted(string)                              {}
func (BaseDelegate) CompilationSkipped(string)                              {}
func (BaseDelegate) CompilationEnded(string, compilecache.CompilationResult) {}
func (BaseDelegate) PluginEmittedOutput([]byte)                              {}
func (BaseDelegate) PluginEmittedDiagnostic(Diagnostic)                      {}
func (BaseDelegate) PluginEmittedProgress(string)                            {}
func (BaseDelegate) PluginDefinedBuildCommand(BuildCommand)                  {}
func (BaseDelegate) PluginDefinedPrebuildCommand(PrebuildCommand) bool       { return true }

func (BaseDelegate) RequestBuildOperation(context.Context, []string, map[string]any) (BuildOperationResult, error) {
	return BuildOperationResult{}, ErrUnimplemented
}

func (BaseDelegate) RequestTestOperation(context.Context, []string, map[string]any) (TestOperationResult, error) {
	return TestOperationResult{}, ErrUnimplemented
}

func (BaseDelegate) RequestSymbolGraph(context.Context, string, map[string]any) (SymbolGraphResult, error) {
	return SymbolGraphResult{}, ErrUnimplemented
}
