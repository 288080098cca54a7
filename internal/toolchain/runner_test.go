package toolchain

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func newTestExec() (*Exec, *bytes.Buffer, *bytes.Buffer) {
	var echo, out bytes.Buffer
	return &Exec{Echo: &echo, Stdout: &out, Stderr: &out}, &echo, &out
}

func TestExec_EchoesAndRunsInDir(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	e, echo, out := newTestExec()

	err := e.Run(context.Background(), dir, "sh", "-c", "pwd")
	require.NoError(t, err)

	assert.Equal(t, "$ sh -c pwd\n", echo.String())

	// Resolve symlinks: temp dirs on some systems live under a linked path.
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNewExec_SharesStdio(t *testing.T) {
	requireShell(t)
	var out, errOut bytes.Buffer
	e := NewExec(strings.NewReader("piped\n"), &out, &errOut)

	err := e.Run(context.Background(), t.TempDir(), "sh", "-c", "cat; echo oops >&2")
	require.NoError(t, err)

	assert.Equal(t, "$ sh -c cat; echo oops >&2\npiped\n", out.String())
	assert.Equal(t, "oops\n", errOut.String())
}

func TestExec_NonZeroExit(t *testing.T) {
	requireShell(t)
	e, _, _ := newTestExec()

	err := e.Run(context.Background(), t.TempDir(), "sh", "-c", "exit 3")
	require.Error(t, err)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 3, cmdErr.ExitCode)
	assert.Equal(t, "sh", cmdErr.Name)
	assert.Equal(t, []string{"-c", "exit 3"}, cmdErr.Args)
	assert.Contains(t, err.Error(), "sh -c exit 3 failed")
}

func TestExec_MissingBinary(t *testing.T) {
	e, echo, _ := newTestExec()

	err := e.Run(context.Background(), t.TempDir(), "ts-scaffold-no-such-binary", "--init")
	require.Error(t, err)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, -1, cmdErr.ExitCode)
	assert.Equal(t, "$ ts-scaffold-no-such-binary --init\n", echo.String())
}

func TestExec_CancelledContext(t *testing.T) {
	requireShell(t)
	e, _, _ := newTestExec()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Run(ctx, t.TempDir(), "sh", "-c", "sleep 5")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestExec_NoEcho(t *testing.T) {
	requireShell(t)
	var out bytes.Buffer
	e := &Exec{Stdout: &out}

	require.NoError(t, e.Run(context.Background(), t.TempDir(), "sh", "-c", "echo hi"))
	assert.Equal(t, "hi\n", out.String())
}
