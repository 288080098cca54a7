// Package prompt collects the project name and option selection from the
// user.
//
// On a terminal the questions are bubbletea programs: a text input for the
// folder name and a checkbox list for the options. When stdin is not a
// terminal (a pipe, a file, a test buffer) answers are read line by line
// and the options are offered as a numbered menu.
package prompt

import (
	"errors"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/shinji-kodama/ts-scaffold/internal/model"
)

// ErrCancelled is returned when input ends or the user aborts before a
// valid answer was given.
var ErrCancelled = errors.New("prompt cancelled")

// Asker collects the answers a scaffold needs.
type Asker interface {
	// ProjectName returns initial when it is a valid folder name and asks
	// until one is given otherwise.
	ProjectName(initial string) (string, error)

	// Options asks which catalog options to enable.
	Options() (model.Selection, error)
}

// For picks the prompt mode for in: a Terminal when in is an interactive
// terminal, a line Prompter otherwise. Questions are written to out.
func For(in io.Reader, out io.Writer) Asker {
	if f, ok := in.(*os.File); ok && IsInteractive(f) {
		return NewTerminal(in, out)
	}
	return New(in, out)
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
