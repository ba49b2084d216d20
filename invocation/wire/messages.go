package wire

// Kind discriminates the payload carried by a HostToPlugin or PluginToHost
// envelope. The zero value is never valid on the wire.
type Kind string

// Host → plugin kinds.
const (
	KindCreateBuildToolCommands             Kind = "createBuildToolCommands"
	KindCreateXcodeProjectBuildToolCommands Kind = "createXcodeProjectBuildToolCommands"
	KindPerformCommand                      Kind = "performCommand"
	KindPerformXcodeProjectCommand          Kind = "performXcodeProjectCommand"
	KindBuildOperationResponse              Kind = "buildOperationResponse"
	KindTestOperationResponse               Kind = "testOperationResponse"
	KindSymbolGraphResponse                 Kind = "symbolGraphResponse"
	KindErrorResponse                       Kind = "errorResponse"
)

// Plugin → host kinds.
const (
	KindEmitDiagnostic       Kind = "emitDiagnostic"
	KindEmitProgress         Kind = "emitProgress"
	KindDefineBuildCommand   Kind = "defineBuildCommand"
	KindDefinePrebuildCommand Kind = "definePrebuildCommand"
	KindBuildOperationRequest Kind = "buildOperationRequest"
	KindTestOperationRequest  Kind = "testOperationRequest"
	KindSymbolGraphRequest    Kind = "symbolGraphRequest"
)

// HostToPlugin is the initial message, and the four reply kinds that
// terminate outstanding plugin-initiated requests. Exactly one of the
// pointer fields matching Kind is non-nil; Encode/Decode enforce this.
type HostToPlugin struct {
	Kind Kind `json:"kind"`

	CreateBuildToolCommands             *CreateBuildToolCommands             `json:"createBuildToolCommands,omitempty"`
	CreateXcodeProjectBuildToolCommands *CreateXcodeProjectBuildToolCommands `json:"createXcodeProjectBuildToolCommands,omitempty"`
	PerformCommand                      *PerformCommand                     `json:"performCommand,omitempty"`
	PerformXcodeProjectCommand          *PerformXcodeProjectCommand         `json:"performXcodeProjectCommand,omitempty"`
	BuildOperationResponse              *BuildOperationResponse             `json:"buildOperationResponse,omitempty"`
	TestOperationResponse               *TestOperationResponse              `json:"testOperationResponse,omitempty"`
	SymbolGraphResponse                 *SymbolGraphResponse                `json:"symbolGraphResponse,omitempty"`
	ErrorResponse                       *ErrorResponse                      `json:"errorResponse,omitempty"`
}

// PluginToHost is a single inbound frame from the plugin process. Exactly
// one of the pointer fields matching Kind is non-nil.
type PluginToHost struct {
	Kind Kind `json:"kind"`

	EmitDiagnostic        *EmitDiagnostic        `json:"emitDiagnostic,omitempty"`
	EmitProgress          *EmitProgress          `json:"emitProgress,omitempty"`
	DefineBuildCommand    *DefineBuildCommand    `json:"defineBuildCommand,omitempty"`
	DefinePrebuildCommand *DefinePrebuildCommand `json:"definePrebuildCommand,omitempty"`
	BuildOperationRequest *BuildOperationRequest `json:"buildOperationRequest,omitempty"`
	TestOperationRequest  *TestOperationRequest  `json:"testOperationRequest,omitempty"`
	SymbolGraphRequest    *SymbolGraphRequest    `json:"symbolGraphRequest,omitempty"`
}

// --- host → plugin payloads ---

type CreateBuildToolCommands struct {
	Input               WireInput `json:"input"`
	Package             PackageID `json:"package"`
	Target              TargetID  `json:"target"`
	GeneratedSources    []PathID  `json:"generatedSources"`
	GeneratedResources  []PathID  `json:"generatedResources"`
}

type CreateXcodeProjectBuildToolCommands struct {
	Input              WireInput       `json:"input"`
	Project            ProjectID       `json:"project"`
	Target             ProjectTargetID `json:"target"`
	GeneratedSources   []PathID        `json:"generatedSources"`
	GeneratedResources []PathID        `json:"generatedResources"`
}

type PerformCommand struct {
	Input     WireInput `json:"input"`
	Package   PackageID `json:"package"`
	Arguments []string  `json:"arguments"`
}

type PerformXcodeProjectCommand struct {
	Input     WireInput `json:"input"`
	Project   ProjectID `json:"project"`
	Arguments []string  `json:"arguments"`
}

type BuildOperationResponse struct {
	Succeeded bool   `json:"succeeded"`
	Output    string `json:"output,omitempty"`
	Error     string `json:"error,omitempty"`
}

type TestOperationResponse struct {
	Succeeded bool   `json:"succeeded"`
	Output    string `json:"output,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SymbolGraphResponse carries the file-URL form of the directory the host's
// toolchain wrote the requested symbol graph to.
type SymbolGraphResponse struct {
	Succeeded     bool   `json:"succeeded"`
	DirectoryPath string `json:"directoryPath,omitempty"`
	Error         string `json:"error,omitempty"`
}

// ErrorResponse terminates an outstanding request with the delegate error's
// display string, used when the delegate itself fails rather than the
// requested operation.
type ErrorResponse struct {
	Message string `json:"message"`
}

// --- plugin → host payloads ---

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityRemark  Severity = "remark"
)

type EmitDiagnostic struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	File     *string  `json:"file,omitempty"`
	Line     *int     `json:"line,omitempty"`
}

type EmitProgress struct {
	Message string `json:"message"`
}

// CommandConfig is shared by DefineBuildCommand and DefinePrebuildCommand.
// Version is the ABI marker checked against ConfigVersion by the session.
type CommandConfig struct {
	Version           int               `json:"version"`
	DisplayName       string            `json:"displayName"`
	Executable        string            `json:"executable"`
	Arguments         []string          `json:"arguments,omitempty"`
	Environment       map[string]string `json:"environment,omitempty"`
	WorkingDirectory  *string           `json:"workingDirectory,omitempty"`
}

type DefineBuildCommand struct {
	Config  CommandConfig `json:"config"`
	Inputs  []string      `json:"inputs,omitempty"`
	Outputs []string      `json:"outputs,omitempty"`
}

type DefinePrebuildCommand struct {
	Config             CommandConfig `json:"config"`
	OutputFilesDirectory string      `json:"outputFilesDirectory"`
}

type BuildOperationRequest struct {
	Subset     []string       `json:"subset,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type TestOperationRequest struct {
	Subset     []string       `json:"subset,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type SymbolGraphRequest struct {
	Target  string         `json:"target"`
	Options map[string]any `json:"options,omitempty"`
}
