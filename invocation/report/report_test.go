package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/forgebuild/pluginhost/invocation"
)

func TestRender_RoundTripsCoreFields(t *testing.T) {
	result := invocation.BuildToolPluginInvocationResult{
		Succeeded:     true,
		ExitedCleanly: true,
		Duration:      1500 * time.Millisecond,
		TextOutput:    "hello",
		Diagnostics: []invocation.Diagnostic{
			{Severity: "warning", Message: "unused import", File: "/src/a.go", Line: 4},
		},
		BuildCommands: []invocation.BuildCommand{
			{
				Configuration: invocation.CommandConfiguration{DisplayName: "Generate", Executable: "/bin/gen"},
				InputFiles:    []string{"/tools/a", "/src/a.proto"},
				OutputFiles:   []string{"/out/a.pb.go"},
			},
		},
	}

	data, err := Render(result)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Render() produced invalid JSON: %v", err)
	}

	if decoded["duration_ms"].(float64) != 1500 {
		t.Errorf("duration_ms = %v, want 1500", decoded["duration_ms"])
	}
	if decoded["succeeded"] != true {
		t.Errorf("succeeded = %v, want true", decoded["succeeded"])
	}
	diags, ok := decoded["diagnostics"].([]any)
	if !ok || len(diags) != 1 {
		t.Fatalf("diagnostics = %v, want 1 entry", decoded["diagnostics"])
	}
}

func TestRender_OmitsEmptyCollections(t *testing.T) {
	data, err := Render(invocation.BuildToolPluginInvocationResult{})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"diagnostics", "build_commands", "prebuild_commands", "text_output"} {
		if _, present := decoded[key]; present {
			t.Errorf("expected %q to be omitted for a zero-value result", key)
		}
	}
}
