// Package report renders a BuildToolPluginInvocationResult to a clean JSON
// document for CI logs and other on-disk artifacts, adapting the
// teacher's server/plugin_bridge.go serializePluginList/invokeResultJSON
// pattern: hand-written JSON-shaped structs instead of a dump of the
// internal wire/session types.
package report

import (
	"encoding/json"

	"github.com/forgebuild/pluginhost/invocation"
)

type resultJSON struct {
	Succeeded        bool               `json:"succeeded"`
	ExitedCleanly    bool               `json:"exited_cleanly"`
	DurationMS       int64              `json:"duration_ms"`
	TextOutput       string             `json:"text_output,omitempty"`
	Diagnostics      []diagnosticJSON   `json:"diagnostics,omitempty"`
	BuildCommands    []buildCommandJSON `json:"build_commands,omitempty"`
	PrebuildCommands []prebuildJSON     `json:"prebuild_commands,omitempty"`
}

type diagnosticJSON struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
}

type commandConfigurationJSON struct {
	DisplayName      string            `json:"display_name"`
	Executable       string            `json:"executable"`
	Arguments        []string          `json:"arguments,omitempty"`
	Environment      map[string]string `json:"environment,omitempty"`
	WorkingDirectory string            `json:"working_directory,omitempty"`
}

type buildCommandJSON struct {
	Configuration commandConfigurationJSON `json:"configuration"`
	InputFiles    []string                 `json:"input_files,omitempty"`
	OutputFiles   []string                 `json:"output_files,omitempty"`
}

type prebuildJSON struct {
	Configuration        commandConfigurationJSON `json:"configuration"`
	OutputFilesDirectory string                   `json:"output_files_directory"`
}

// Render converts result to clean JSON, stable across internal type
// renames in the invocation package.
func Render(result invocation.BuildToolPluginInvocationResult) ([]byte, error) {
	out := resultJSON{
		Succeeded:     result.Succeeded,
		ExitedCleanly: result.ExitedCleanly,
		DurationMS:    result.Duration.Milliseconds(),
		TextOutput:    result.TextOutput,
	}

	for _, d := range result.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, diagnosticJSON{
			Severity: d.Severity,
			Message:  d.Message,
			File:     d.File,
			Line:     d.Line,
		})
	}
	for _, c := range result.BuildCommands {
		out.BuildCommands = append(out.BuildCommands, buildCommandJSON{
			Configuration: convertConfig(c.Configuration),
			InputFiles:    c.InputFiles,
			OutputFiles:   c.OutputFiles,
		})
	}
	for _, p := range result.PrebuildCommands {
		out.PrebuildCommands = append(out.PrebuildCommands, prebuildJSON{
			Configuration:        convertConfig(p.Configuration),
			OutputFilesDirectory: p.OutputFilesDirectory,
		})
	}

	return json.Marshal(out)
}

func convertConfig(c invocation.CommandConfiguration) commandConfigurationJSON {
	return commandConfigurationJSON{
		DisplayName:      c.DisplayName,
		Executable:       c.Executable,
		Arguments:        c.Arguments,
		Environment:      c.Environment,
		WorkingDirectory: c.WorkingDirectory,
	}
}
