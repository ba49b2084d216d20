package invocation

import (
	"errors"
	"runtime"

	"github.com/forgebuild/pluginhost/invocation/wire"
)

func goos() string   { return runtime.GOOS }
func goarch() string { return runtime.GOARCH }

// asIncompatibleVersion unwraps err looking for a wire.IncompatibleVersionError,
// returning nil if none is found anywhere in the chain.
func asIncompatibleVersion(err error) *wire.IncompatibleVersionError {
	var incompat *wire.IncompatibleVersionError
	if errors.As(err, &incompat) {
		return incompat
	}
	return nil
}
