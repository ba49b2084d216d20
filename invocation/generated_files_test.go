package invocation

import (
	"strings"
	"testing"
)

type suffixRules struct {
	sourceSuffixes []string
}

func (r suffixRules) IsSource(path string) bool {
	for _, suf := range r.sourceSuffixes {
		if strings.HasSuffix(path, suf) {
			return true
		}
	}
	return false
}

func TestComputePluginGeneratedFiles_ClassifiesBySuffix(t *testing.T) {
	results := []BuildToolPluginInvocationResult{
		{
			BuildCommands: []BuildCommand{
				{OutputFiles: []string{"/out/a.go", "/out/a.png"}},
			},
		},
		{
			BuildCommands: []BuildCommand{
				{OutputFiles: []string{"/out/b.go"}},
			},
		},
	}

	out := ComputePluginGeneratedFiles("target", "6.0", results, nil, suffixRules{sourceSuffixes: []string{".go"}})

	if len(out.Sources) != 2 || len(out.Resources) != 1 {
		t.Fatalf("Sources = %v, Resources = %v", out.Sources, out.Resources)
	}
}

func TestComputePluginGeneratedFiles_DeduplicatesAcrossResults(t *testing.T) {
	results := []BuildToolPluginInvocationResult{
		{BuildCommands: []BuildCommand{{OutputFiles: []string{"/out/shared.go"}}}},
		{BuildCommands: []BuildCommand{{OutputFiles: []string{"/out/shared.go"}}}},
	}

	out := ComputePluginGeneratedFiles("target", "6.0", results, nil, suffixRules{sourceSuffixes: []string{".go"}})

	if len(out.Sources) != 1 {
		t.Fatalf("Sources = %v, want exactly one deduplicated entry", out.Sources)
	}
}

func TestComputePluginGeneratedFiles_IncludesScannedPrebuildOutputs(t *testing.T) {
	results := []BuildToolPluginInvocationResult{
		{BuildCommands: []BuildCommand{{OutputFiles: []string{"/out/a.go"}}}},
	}
	prebuildResults := []string{"/out/gen.go", "/out/gen.png", "/out/a.go"}

	out := ComputePluginGeneratedFiles("target", "6.0", results, prebuildResults, suffixRules{sourceSuffixes: []string{".go"}})

	if len(out.Sources) != 2 || len(out.Resources) != 1 {
		t.Fatalf("Sources = %v, Resources = %v", out.Sources, out.Resources)
	}
}

func TestPluginsPerModule_NilGraphReturnsNil(t *testing.T) {
	a := NewAccessor()
	if got := a.PluginsPerModule(BuildEnvironment{}); got != nil {
		t.Errorf("PluginsPerModule() = %v, want nil without a configured ModuleGraph", got)
	}
}
