package invocation

// FileRuleResolver classifies a produced file path as a source or a
// resource, the way the host's own file-rules resolver does for ordinary
// target membership (spec §6: computePluginGeneratedFiles "classifies them
// via the host's file-rules resolver").
type FileRuleResolver interface {
	IsSource(path string) bool
}

// GeneratedFiles is the result of computePluginGeneratedFiles: every output
// path produced by a target's plugin invocations, classified into sources
// and resources.
type GeneratedFiles struct {
	Sources   []string
	Resources []string
}

// ComputePluginGeneratedFiles aggregates output paths across every
// BuildCommand a target's plugins produced and every file the build graph
// found when it scanned each PrebuildCommand's OutputFilesDirectory after
// execution — prebuildCommandResults carries that already-scanned path
// list in, since the directory itself is a sentinel this layer has no
// filesystem access to walk — classifying each one via rules (spec §6:
// "aggregate output paths from all invocation results"). toolsVersion and
// target are accepted for parity with the host's invocation surface;
// gating generated-file eligibility by tools version is the build graph's
// concern on the far side of this boundary, not this layer's.
func ComputePluginGeneratedFiles(target TargetID, toolsVersion string, results []BuildToolPluginInvocationResult, prebuildCommandResults []string, rules FileRuleResolver) GeneratedFiles {
	var out GeneratedFiles
	seen := make(map[string]bool)

	classify := func(path string) {
		if seen[path] {
			return
		}
		seen[path] = true
		if rules.IsSource(path) {
			out.Sources = append(out.Sources, path)
		} else {
			out.Resources = append(out.Resources, path)
		}
	}

	for _, result := range results {
		for _, cmd := range result.BuildCommands {
			for _, path := range cmd.OutputFiles {
				classify(path)
			}
		}
	}
	for _, path := range prebuildCommandResults {
		classify(path)
	}

	return out
}

// PluginsPerModule is the pure query surface named in spec §6: every module
// decorated by at least one plugin under env, delegated to the configured
// ModuleGraph.
func (a *Accessor) PluginsPerModule(env BuildEnvironment) map[ModuleRef][]PluginModule {
	if a.graph == nil {
		return nil
	}
	return a.graph.PluginsPerModule(env)
}
