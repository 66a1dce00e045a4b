package config

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

type TerminalIO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

var DefaultTermIO = TerminalIO{
	Stdin:  os.Stdin,
	Stdout: os.Stdout,
	Stderr: os.Stderr,
}

func (t *TerminalIO) Printf(msg string, args ...interface{}) {
	fmt.Fprintf(t.Stdout, msg, args...)
}

// StdoutIsTerminal reports whether Stdout is attached to a terminal. Writers
// that aren't files, such as buffers in tests, are never terminals.
func (t *TerminalIO) StdoutIsTerminal() bool {
	return isTerminal(t.Stdout)
}

// StdinIsPipe reports whether Stdin is a file that isn't a terminal, as when
// a commit message is piped in.
func (t *TerminalIO) StdinIsPipe() bool {
	f, ok := t.Stdin.(*os.File)
	if !ok || f == nil {
		return false
	}
	return !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
}

func isTerminal(v interface{}) bool {
	f, ok := v.(*os.File)
	if !ok || f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
