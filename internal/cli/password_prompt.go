package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// passwordPrompter reads secrets line by line from one buffered stdin so that
// piped input holding several answers is not lost between prompts.
type passwordPrompter struct {
	stdin  *os.File
	reader *bufio.Reader
	output io.Writer
}

func newPasswordPrompter(stdin *os.File, output io.Writer) *passwordPrompter {
	return &passwordPrompter{stdin: stdin, reader: bufio.NewReader(stdin), output: output}
}

func (prompter *passwordPrompter) prompt(label string) (string, error) {
	fmt.Fprint(prompter.output, label)

	var line string
	err := withEchoDisabled(prompter.stdin, func() error {
		raw, readErr := prompter.reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return readErr
		}
		line = strings.TrimRight(raw, "\r\n")
		return nil
	})
	fmt.Fprintln(prompter.output)
	if err != nil {
		return "", err
	}
	return line, nil
}

// promptNewPassword asks twice and requires both answers to match.
func (prompter *passwordPrompter) promptNewPassword() (string, error) {
	password, err := prompter.prompt("New password: ")
	if err != nil {
		return "", err
	}
	confirm, err := prompter.prompt("Confirm password: ")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}
