//go:build !windows && !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package cli

import (
	"os"

	"github.com/cormacgwin/goodwin-challenge/internal/logger"
)

// withEchoDisabled reads with echo on; this platform exposes no terminal API.
func withEchoDisabled(_ *os.File, read func() error) error {
	logger.Warn("password input will be echoed on this platform")
	return read()
}
