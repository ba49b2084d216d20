package wire

// NewCreateBuildToolCommands builds the initial host message for the
// CreateBuildToolCommands action.
func NewCreateBuildToolCommands(input WireInput, pkg PackageID, target TargetID, genSrc, genRes []PathID) HostToPlugin {
	return HostToPlugin{
		Kind: KindCreateBuildToolCommands,
		CreateBuildToolCommands: &CreateBuildToolCommands{
			Input:              input,
			Package:            pkg,
			Target:             target,
			GeneratedSources:   genSrc,
			GeneratedResources: genRes,
		},
	}
}

// NewCreateXcodeProjectBuildToolCommands builds the initial host message for
// the CreateXcodeProjectBuildToolCommands action.
func NewCreateXcodeProjectBuildToolCommands(input WireInput, project ProjectID, target ProjectTargetID, genSrc, genRes []PathID) HostToPlugin {
	return HostToPlugin{
		Kind: KindCreateXcodeProjectBuildToolCommands,
		CreateXcodeProjectBuildToolCommands: &CreateXcodeProjectBuildToolCommands{
			Input:              input,
			Project:            project,
			Target:             target,
			GeneratedSources:   genSrc,
			GeneratedResources: genRes,
		},
	}
}

// NewPerformCommand builds the initial host message for the PerformCommand
// action.
func NewPerformCommand(input WireInput, pkg PackageID, args []string) HostToPlugin {
	return HostToPlugin{
		Kind: KindPerformCommand,
		PerformCommand: &PerformCommand{
			Input:     input,
			Package:   pkg,
			Arguments: args,
		},
	}
}

// NewPerformXcodeProjectCommand builds the initial host message for the
// PerformProjectCommand action.
func NewPerformXcodeProjectCommand(input WireInput, project ProjectID, args []string) HostToPlugin {
	return HostToPlugin{
		Kind: KindPerformXcodeProjectCommand,
		PerformXcodeProjectCommand: &PerformXcodeProjectCommand{
			Input:     input,
			Project:   project,
			Arguments: args,
		},
	}
}

// NewBuildOperationResponse builds a reply terminating an outstanding
// BuildOperationRequest.
func NewBuildOperationResponse(succeeded bool, output, errMsg string) HostToPlugin {
	return HostToPlugin{
		Kind:                   KindBuildOperationResponse,
		BuildOperationResponse: &BuildOperationResponse{Succeeded: succeeded, Output: output, Error: errMsg},
	}
}

// NewTestOperationResponse builds a reply terminating an outstanding
// TestOperationRequest.
func NewTestOperationResponse(succeeded bool, output, errMsg string) HostToPlugin {
	return HostToPlugin{
		Kind:                  KindTestOperationResponse,
		TestOperationResponse: &TestOperationResponse{Succeeded: succeeded, Output: output, Error: errMsg},
	}
}

// NewSymbolGraphResponse builds a reply terminating an outstanding
// SymbolGraphRequest. directoryPath is already in file-URL form.
func NewSymbolGraphResponse(succeeded bool, directoryPath, errMsg string) HostToPlugin {
	return HostToPlugin{
		Kind:                 KindSymbolGraphResponse,
		SymbolGraphResponse:  &SymbolGraphResponse{Succeeded: succeeded, DirectoryPath: directoryPath, Error: errMsg},
	}
}

// NewErrorResponse builds a reply carrying a delegate-side failure's display
// string, used instead of a typed response when the delegate itself errors.
func NewErrorResponse(message string) HostToPlugin {
	return HostToPlugin{
		Kind:          KindErrorResponse,
		ErrorResponse: &ErrorResponse{Message: message},
	}
}
