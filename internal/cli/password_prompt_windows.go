//go:build windows

package cli

import (
	"errors"
	"os"

	"golang.org/x/sys/windows"
)

func withEchoDisabled(stdin *os.File, read func() error) error {
	if stdin == nil {
		return errors.New("stdin unavailable")
	}

	handle := windows.Handle(stdin.Fd())
	var originalMode uint32
	if err := windows.GetConsoleMode(handle, &originalMode); err != nil {
		return read()
	}

	updatedMode := originalMode &^ windows.ENABLE_ECHO_INPUT
	if err := windows.SetConsoleMode(handle, updatedMode); err != nil {
		return err
	}
	defer func() {
		_ = windows.SetConsoleMode(handle, originalMode)
	}()

	return read()
}
