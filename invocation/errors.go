package invocation

import "fmt"

// CouldNotFindPackageError reports that a plugin module has no owning
// package in the caller's module graph.
type CouldNotFindPackageError struct {
	Plugin string
}

func (e *CouldNotFindPackageError) Error() string {
	return fmt.Sprintf("could not find package owning plugin %q", e.Plugin)
}

// CouldNotCreateOutputDirectoryError wraps a filesystem precondition
// failure encountered before the plugin was spawned.
type CouldNotCreateOutputDirectoryError struct {
	Path string
	Err  error
}

func (e *CouldNotCreateOutputDirectoryError) Error() string {
	return fmt.Sprintf("could not create output directory %q: %v", e.Path, e.Err)
}

func (e *CouldNotCreateOutputDirectoryError) Unwrap() error { return e.Err }

// CouldNotSerializePluginInputError wraps a Context Serializer failure: a
// missing id, or a path that could not be made sense of.
type CouldNotSerializePluginInputError struct {
	Err error
}

func (e *CouldNotSerializePluginInputError) Error() string {
	return fmt.Sprintf("could not serialize plugin input: %v", e.Err)
}

func (e *CouldNotSerializePluginInputError) Unwrap() error { return e.Err }

// RunningPluginFailedError wraps a spawn or I/O error encountered while the
// plugin process was running.
type RunningPluginFailedError struct {
	Err error
}

func (e *RunningPluginFailedError) Error() string {
	return fmt.Sprintf("running plugin failed: %v", e.Err)
}

func (e *RunningPluginFailedError) Unwrap() error { return e.Err }

// DecodingPluginOutputFailedError wraps a Wire Codec rejection of an
// inbound frame, carrying the offending bytes for diagnosis.
type DecodingPluginOutputFailedError struct {
	Bytes []byte
	Err   error
}

func (e *DecodingPluginOutputFailedError) Error() string {
	return fmt.Sprintf("decoding plugin output failed: %v", e.Err)
}

func (e *DecodingPluginOutputFailedError) Unwrap() error { return e.Err }

// PluginUsesIncompatibleVersionError reports a DefineBuildCommand or
// DefinePrebuildCommand config whose version does not match wire.ConfigVersion.
type PluginUsesIncompatibleVersionError struct {
	Expected int
	Actual   int
}

func (e *PluginUsesIncompatibleVersionError) Error() string {
	return fmt.Sprintf("plugin uses incompatible version: expected %d, got %d", e.Expected, e.Actual)
}
