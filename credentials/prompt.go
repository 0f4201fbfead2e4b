package credentials

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// TerminalPrompter asks on the console. Passwords are read without echo.
type TerminalPrompter struct {
	In  *bufio.Reader
	Out io.Writer
	// ReadPassword is a seam for term.ReadPassword
	ReadPassword func(fd int) ([]byte, error)
	Fd           int
}

func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{
		In:           bufio.NewReader(os.Stdin),
		Out:          os.Stdout,
		ReadPassword: term.ReadPassword,
		Fd:           int(os.Stdin.Fd()),
	}
}

func (tp *TerminalPrompter) Username() (string, error) {
	if _, err := fmt.Fprint(tp.Out, "Enter your Steam username: "); err != nil {
		return "", err
	}
	line, err := tp.In.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", err
	}
	username := strings.TrimSpace(line)
	if username == "" {
		return "", errors.New("username cannot be empty")
	}
	return username, nil
}

func (tp *TerminalPrompter) Password() (string, error) {
	if _, err := fmt.Fprint(tp.Out, "Enter your Steam password: "); err != nil {
		return "", err
	}
	pw, err := tp.ReadPassword(tp.Fd)
	fmt.Fprintln(tp.Out)
	if err != nil {
		return "", err
	}
	if len(pw) == 0 {
		return "", errors.New("password cannot be empty")
	}
	return string(pw), nil
}
