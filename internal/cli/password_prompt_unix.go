//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package cli

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

func withEchoDisabled(stdin *os.File, read func() error) error {
	if stdin == nil {
		return errors.New("stdin unavailable")
	}

	fd := int(stdin.Fd())
	saved, err := getTerminalState(fd)
	if err != nil {
		// Not a terminal, nothing is echoed.
		return read()
	}
	silent := *saved
	silent.Lflag &^= unix.ECHO
	if err := setTerminalState(fd, &silent); err != nil {
		return err
	}
	defer func() {
		_ = setTerminalState(fd, saved)
	}()

	return read()
}
