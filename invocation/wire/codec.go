package wire

import (
	"encoding/json"
	"fmt"
)

// ConfigVersion is the ABI version every DefineBuildCommand/
// DefinePrebuildCommand config must carry. Bumping it is a coordinated
// change with the plugin side (spec §6).
const ConfigVersion = 2

// IncompatibleVersionError reports a CommandConfig whose Version does not
// match ConfigVersion.
type IncompatibleVersionError struct {
	Expected int
	Actual   int
}

func (e *IncompatibleVersionError) Error() string {
	return fmt.Sprintf("plugin uses incompatible version: expected %d, got %d", e.Expected, e.Actual)
}

// CheckVersion validates a CommandConfig's Version field against
// ConfigVersion.
func CheckVersion(cfg CommandConfig) error {
	if cfg.Version != ConfigVersion {
		return &IncompatibleVersionError{Expected: ConfigVersion, Actual: cfg.Version}
	}
	return nil
}

// Encode serializes a HostToPlugin message to its on-wire form. The codec
// itself does no framing — that is the transport's job (sandbox.Launcher).
func Encode(msg HostToPlugin) ([]byte, error) {
	if err := validateHostToPlugin(msg); err != nil {
		return nil, err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding host message: %w", err)
	}
	return data, nil
}

// Decode parses a single self-delimiting frame into a PluginToHost message.
func Decode(data []byte) (PluginToHost, error) {
	var msg PluginToHost
	if err := json.Unmarshal(data, &msg); err != nil {
		return PluginToHost{}, fmt.Errorf("decoding plugin message: %w", err)
	}
	if err := validatePluginToHost(msg); err != nil {
		return PluginToHost{}, err
	}
	return msg, nil
}

func validateHostToPlugin(msg HostToPlugin) error {
	present := 0
	matched := false
	check := func(kind Kind, ok bool) {
		if ok {
			present++
			matched = matched || kind == msg.Kind
		}
	}
	check(KindCreateBuildToolCommands, msg.CreateBuildToolCommands != nil)
	check(KindCreateXcodeProjectBuildToolCommands, msg.CreateXcodeProjectBuildToolCommands != nil)
	check(KindPerformCommand, msg.PerformCommand != nil)
	check(KindPerformXcodeProjectCommand, msg.PerformXcodeProjectCommand != nil)
	check(KindBuildOperationResponse, msg.BuildOperationResponse != nil)
	check(KindTestOperationResponse, msg.TestOperationResponse != nil)
	check(KindSymbolGraphResponse, msg.SymbolGraphResponse != nil)
	check(KindErrorResponse, msg.ErrorResponse != nil)

	if present != 1 || !matched {
		return fmt.Errorf("host message of kind %q must carry exactly one payload matching its kind, got %d", msg.Kind, present)
	}
	return nil
}

func validatePluginToHost(msg PluginToHost) error {
	present := 0
	matched := false
	check := func(kind Kind, ok bool) {
		if ok {
			present++
			matched = matched || kind == msg.Kind
		}
	}
	check(KindEmitDiagnostic, msg.EmitDiagnostic != nil)
	check(KindEmitProgress, msg.EmitProgress != nil)
	check(KindDefineBuildCommand, msg.DefineBuildCommand != nil)
	check(KindDefinePrebuildCommand, msg.DefinePrebuildCommand != nil)
	check(KindBuildOperationRequest, msg.BuildOperationRequest != nil)
	check(KindTestOperationRequest, msg.TestOperationRequest != nil)
	check(KindSymbolGraphRequest, msg.SymbolGraphRequest != nil)

	if present != 1 || !matched {
		return fmt.Errorf("plugin message of kind %q must carry exactly one payload matching its kind, got %d", msg.Kind, present)
	}
	return nil
}
