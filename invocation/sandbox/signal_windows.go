//go:build windows

package sandbox

import "os"

func sigterm() os.Signal {
	return os.Interrupt
}
