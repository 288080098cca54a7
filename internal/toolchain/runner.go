// Package toolchain runs the external programs a scaffold depends on:
// npm, tsc, and git.
//
// Every command runs in an explicit working directory (exec.Cmd.Dir); the
// process never changes its own working directory. Commands are echoed as
// "$ name args" before they start and inherit the caller's stdio, so the
// user sees npm's progress output live. A Runner is the seam tests replace.
package toolchain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Runner executes one external command in dir and waits for it to finish.
type Runner interface {
	Run(ctx context.Context, dir string, name string, args ...string) error
}

// CommandError describes an external command that could not be started or
// exited non-zero.
type CommandError struct {
	// Name and Args are the command as it was invoked.
	Name string
	Args []string

	// Dir is the working directory the command ran in.
	Dir string

	// ExitCode is the child's exit status, or -1 when the command never
	// started (binary not found, context already cancelled).
	ExitCode int

	Err error
}

// Error renders the command line followed by the cause.
func (e *CommandError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.CommandLine(), e.Err)
}

// Unwrap returns the underlying exec error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// CommandLine returns the command joined with spaces, as it is echoed.
func (e *CommandError) CommandLine() string {
	return commandLine(e.Name, e.Args)
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// Exec is the Runner backed by os/exec.
type Exec struct {
	// Echo receives the "$ name args" line printed before each command.
	// Nil disables echoing.
	Echo io.Writer

	// Stdin, Stdout, and Stderr are handed to the child process.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExec returns an Exec that hands stdin, stdout, and stderr to every
// child and echoes each command line to stdout.
func NewExec(stdin io.Reader, stdout, stderr io.Writer) *Exec {
	return &Exec{
		Echo:   stdout,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}
}

// Run executes name with args in dir. The child is killed if ctx is
// cancelled before it exits.
func (e *Exec) Run(ctx context.Context, dir string, name string, args ...string) error {
	if e.Echo != nil {
		fmt.Fprintf(e.Echo, "$ %s\n", commandLine(name, args))
	}

	// #nosec G204 -- the binary comes from configuration and the arguments
	// are built internally.
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (%v)", ctxErr, err)
		}
		return &CommandError{
			Name:     name,
			Args:     append([]string(nil), args...),
			Dir:      dir,
			ExitCode: code,
			Err:      err,
		}
	}
	return nil
}
