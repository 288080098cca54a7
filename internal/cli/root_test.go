package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/ts-scaffold/internal/model"
	"github.com/shinji-kodama/ts-scaffold/internal/toolchain"
)

const testTSConfig = `{
  "compilerOptions": {
    "target": "es5",
    // "outDir": "./",
    // "rootDir": "./",
    "strict": true
  }
}
`

// stubRunner emulates npm init and tsc --init and records every command.
type stubRunner struct {
	calls []string
}

func (s *stubRunner) Run(_ context.Context, dir string, name string, args ...string) error {
	line := strings.Join(append([]string{name}, args...), " ")
	s.calls = append(s.calls, line)

	switch line {
	case "npm init -y":
		pkg := `{"name": "` + filepath.Base(dir) + `", "version": "1.0.0", "scripts": {}}`
		return os.WriteFile(filepath.Join(dir, "package.json"), []byte(pkg), 0o644)
	case "tsc --init":
		return os.WriteFile(filepath.Join(dir, "tsconfig.json"), []byte(testTSConfig), 0o644)
	}
	return nil
}

type harness struct {
	base   string
	runner *stubRunner
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// setup isolates configuration, the working directory, and the runner.
func setup(t *testing.T) *harness {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	h := &harness{
		base:   t.TempDir(),
		runner: &stubRunner{},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}

	prevRunner, prevWorkDir, prevLogger := newRunner, workDir, slog.Default()
	newRunner = func(io.Reader, io.Writer, io.Writer) toolchain.Runner { return h.runner }
	workDir = func() (string, error) { return h.base, nil }
	t.Cleanup(func() {
		newRunner, workDir = prevRunner, prevWorkDir
		slog.SetDefault(prevLogger)
	})
	return h
}

func (h *harness) execute(stdin string, args ...string) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(h.stdout)
	cmd.SetErr(h.stderr)
	return Execute(context.Background(), cmd)
}

func TestRoot_ScaffoldWithFlags(t *testing.T) {
	h := setup(t)

	code := h.execute("", "demo", "--options", "git,express", "--skip-run")
	require.Equal(t, 0, code, h.stderr.String())

	assert.Equal(t, []string{
		"npm init -y",
		"tsc --init",
		"npm install @types/node npm-run-all nodemon express @types/express",
		"git init",
	}, h.runner.calls)

	dir := filepath.Join(h.base, "demo")
	assert.FileExists(t, filepath.Join(dir, "src", "index.ts"))
	assert.FileExists(t, filepath.Join(dir, ".gitignore"))

	out := h.stdout.String()
	assert.Contains(t, out, "Next steps:")
	assert.Contains(t, out, "  cd demo\n")
	assert.Contains(t, out, "  npm run watch\n")
}

func TestRoot_PromptsForNameAndOptions(t *testing.T) {
	h := setup(t)

	code := h.execute("Not Valid\nmy-app\n3\n", "--skip-run")
	require.Equal(t, 0, code, h.stderr.String())

	assert.DirExists(t, filepath.Join(h.base, "my-app"))
	assert.Contains(t, h.runner.calls, "npm install @types/node npm-run-all nodemon ttypescript typescript-is")

	out := h.stdout.String()
	assert.Contains(t, out, "Project folder name: ")
	assert.Contains(t, out, "Select options:")

	tsconfig, err := os.ReadFile(filepath.Join(h.base, "my-app", "tsconfig.json"))
	require.NoError(t, err)
	assert.Contains(t, string(tsconfig), "typescript-is/lib/transform-inline/transformer")
}

func TestRoot_JSONOutput(t *testing.T) {
	h := setup(t)

	code := h.execute("", "api", "-o", "", "--json")
	require.Equal(t, 0, code, h.stderr.String())

	var result struct {
		Name         string            `json:"name"`
		Dir          string            `json:"dir"`
		Options      []string          `json:"options"`
		Scripts      map[string]string `json:"scripts"`
		SmokeTestRan bool              `json:"smokeTestRan"`
		NextSteps    []string          `json:"nextSteps"`
	}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &result), h.stdout.String())

	assert.Equal(t, "api", result.Name)
	assert.Equal(t, filepath.Join(h.base, "api"), result.Dir)
	assert.Empty(t, result.Options)
	assert.Equal(t, "tsc", result.Scripts["build"])
	assert.True(t, result.SmokeTestRan)
	assert.Equal(t, []string{"cd api", "code .", "npm run watch"}, result.NextSteps)
	assert.Contains(t, h.runner.calls, "npm run once")
}

func TestRoot_DryRun(t *testing.T) {
	h := setup(t)

	code := h.execute("", "demo", "-o", "ts-transformer-keys", "--dry-run")
	require.Equal(t, 0, code, h.stderr.String())

	out := h.stdout.String()
	assert.Contains(t, out, "name: demo\n")
	assert.Contains(t, out, "build: ttsc\n")
	assert.Contains(t, out, "- ts-transformer-keys/transformer\n")

	assert.Empty(t, h.runner.calls)
	assert.NoDirExists(t, filepath.Join(h.base, "demo"))
}

func TestRoot_OptionsFromConfigFile(t *testing.T) {
	h := setup(t)
	cfgPath := filepath.Join(t.TempDir(), "ts-scaffold.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("options: [git]\nskip_run: true\nnpm: pnpm\n"), 0o644))

	// pnpm is not emulated by the stub, so stop at the plan.
	code := h.execute("", "demo", "--config", cfgPath, "--dry-run", "--json")
	require.Equal(t, 0, code, h.stderr.String())

	var plan struct {
		Options  []string `json:"options"`
		Commands []string `json:"commands"`
		SkipRun  bool     `json:"skipRun"`
	}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &plan))
	assert.Equal(t, []string{"git"}, plan.Options)
	assert.True(t, plan.SkipRun)
	assert.Equal(t, "pnpm init -y", plan.Commands[0])
}

func TestRoot_ExitCodes(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		args    []string
		prepare func(h *harness)
		want    model.ExitCode
		wantErr string
	}{
		{
			name:    "unknown option",
			args:    []string{"demo", "--options", "react"},
			want:    model.ExitUsageError,
			wantErr: "invalid --options value",
		},
		{
			name:    "unknown flag",
			args:    []string{"demo", "--frobnicate"},
			want:    model.ExitUsageError,
			wantErr: "invalid flag",
		},
		{
			name:    "too many arguments",
			args:    []string{"a", "b"},
			want:    model.ExitUsageError,
			wantErr: "invalid arguments",
		},
		{
			name: "target exists",
			args: []string{"demo", "-o", ""},
			prepare: func(h *harness) {
				_ = os.Mkdir(filepath.Join(h.base, "demo"), 0o755)
			},
			want:    model.ExitUsageError,
			wantErr: "already exists",
		},
		{
			name: "current directory not empty",
			args: []string{".", "-o", ""},
			prepare: func(h *harness) {
				_ = os.WriteFile(filepath.Join(h.base, "notes.txt"), nil, 0o644)
			},
			want:    model.ExitUsageError,
			wantErr: "is not empty",
		},
		{
			name:    "name prompt closed",
			args:    []string{},
			want:    model.ExitUserCancelled,
			wantErr: "cancelled",
		},
		{
			name:    "options prompt closed",
			args:    []string{"demo"},
			want:    model.ExitUserCancelled,
			wantErr: "cancelled",
		},
		{
			name:    "missing config file",
			args:    []string{"demo", "--config", "/nonexistent/ts-scaffold.yaml"},
			want:    model.ExitUsageError,
			wantErr: "invalid configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setup(t)
			if tt.prepare != nil {
				tt.prepare(h)
			}

			code := h.execute(tt.stdin, tt.args...)
			assert.Equal(t, int(tt.want), code)
			assert.Contains(t, h.stderr.String(), tt.wantErr)
			assert.Empty(t, h.runner.calls)
		})
	}
}

func TestRoot_JSONError(t *testing.T) {
	h := setup(t)

	code := h.execute("", "demo", "--options", "react", "--json")
	assert.Equal(t, int(model.ExitUsageError), code)

	var errObj struct {
		Error struct {
			Message string `json:"message"`
			Detail  string `json:"detail"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(h.stderr.Bytes(), &errObj), h.stderr.String())
	assert.Equal(t, "invalid --options value", errObj.Error.Message)
	assert.Contains(t, errObj.Error.Detail, "react")
}
