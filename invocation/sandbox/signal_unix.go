//go:build !windows

package sandbox

import (
	"os"
	"syscall"
)

func sigterm() os.Signal {
	return syscall.SIGTERM
}
