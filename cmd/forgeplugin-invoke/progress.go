package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/forgebuild/pluginhost/invocation"
	"github.com/forgebuild/pluginhost/invocation/compilecache"
)

// progressDelegate observes a running plugin session and forwards every
// event to the Bubble Tea program as a tea.Msg, so the model never touches
// Accessor/session types directly. Requests the session routes to the
// delegate (nested build/test/symbol-graph operations) aren't supported by
// this demo; embedding invocation.BaseDelegate reports them as
// unimplemented rather than panicking.
type progressDelegate struct {
	invocation.BaseDelegate
	program *tea.Program
}

func (d progressDelegate) CompilationStarted(pluginName string) {
	d.program.Send(compilationStartedMsg{plugin: pluginName})
}

func (d progressDelegate) CompilationSkipped(pluginName string) {
	d.program.Send(compilationSkippedMsg{plugin: pluginName})
}

func (d progressDelegate) CompilationEnded(pluginName string, result compilecache.CompilationResult) {
	d.program.Send(compilationEndedMsg{plugin: pluginName, duration: result.Duration, err: result.Err})
}

func (d progressDelegate) PluginEmittedOutput(data []byte) {
	if len(data) == 0 {
		return
	}
	d.program.Send(pluginOutputMsg{chunk: string(data)})
}

func (d progressDelegate) PluginEmittedDiagnostic(diag invocation.Diagnostic) {
	d.program.Send(diagnosticMsg{diag: diag})
}

func (d progressDelegate) PluginEmittedProgress(message string) {
	d.program.Send(progressMsg{message: message})
}

func (d progressDelegate) PluginDefinedBuildCommand(cmd invocation.BuildCommand) {
	d.program.Send(buildCommandMsg{cmd: cmd})
}

func (d progressDelegate) PluginDefinedPrebuildCommand(cmd invocation.PrebuildCommand) bool {
	d.program.Send(prebuildCommandMsg{cmd: cmd})
	return true
}

// invokeAndReport runs spec.Action against spec.Module and delivers the
// final result (or error) to the program as a doneMsg. It runs on its own
// goroutine so the Bubble Tea event loop stays responsive while the
// plugin compiles and runs.
func invokeAndReport(ctx context.Context, accessor *invocation.Accessor, spec invocation.InvocationSpec, program *tea.Program) {
	spec.Delegate = progressDelegate{program: program}
	result, err := accessor.InvokeModule(ctx, spec)
	program.Send(doneMsg{result: result, err: err})
}
