// Package scaffold creates a TypeScript project: it checks the target
// directory, drives npm, tsc, and git through a toolchain.Runner, and writes
// the generated files.
//
// Every step runs in the project directory by explicit path. Steps run one
// after another; the first failure aborts the run and nothing already done
// is rolled back.
package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shinji-kodama/ts-scaffold/internal/model"
	"github.com/shinji-kodama/ts-scaffold/internal/npm"
	"github.com/shinji-kodama/ts-scaffold/internal/toolchain"
	"github.com/shinji-kodama/ts-scaffold/internal/tsconfig"
)

const (
	sourceDir     = "src"
	entryFile     = "index.ts"
	gitignoreFile = ".gitignore"
)

// gitignoreEntries are appended to .gitignore when git is selected.
var gitignoreEntries = []string{"node_modules", "lib"}

// Request describes one scaffold run.
type Request struct {
	// Name is the folder to create, or "." for the base directory.
	Name      string
	Selection model.Selection

	// Pins maps package names to semver constraints for npm install.
	Pins map[string]string

	// SkipRun skips the final `npm run once`.
	SkipRun bool
}

// Result reports a completed run.
type Result struct {
	Name     string          `json:"name"`
	Dir      string          `json:"dir"`
	Options  []string        `json:"options"`
	Packages []string        `json:"packages"`
	Plugins  []string        `json:"plugins,omitempty"`
	Scripts  npm.ScriptTable `json:"scripts"`

	// Structured is true when tsconfig.json had to be re-serialized.
	Structured bool `json:"structured,omitempty"`

	GitInitialized bool `json:"gitInitialized"`
	SmokeTestRan   bool `json:"smokeTestRan"`

	Warnings  []string `json:"warnings,omitempty"`
	NextSteps []string `json:"nextSteps"`
}

// Scaffolder runs scaffolds relative to a base directory.
type Scaffolder struct {
	tc      *toolchain.Toolchain
	baseDir string
	log     *slog.Logger
}

// Option configures a Scaffolder.
type Option func(*scaffolderConfig)

type scaffolderConfig struct {
	baseDir  string
	binaries toolchain.Binaries
	log      *slog.Logger
}

// WithBaseDir sets the directory project names resolve against.
// The default is the process working directory at New.
func WithBaseDir(dir string) Option {
	return func(c *scaffolderConfig) { c.baseDir = dir }
}

// WithBinaries overrides the npm, tsc, and git executables.
func WithBinaries(bin toolchain.Binaries) Option {
	return func(c *scaffolderConfig) { c.binaries = bin }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *scaffolderConfig) { c.log = l }
}

// New returns a Scaffolder that runs external commands through runner.
func New(runner toolchain.Runner, opts ...Option) *Scaffolder {
	cfg := scaffolderConfig{binaries: toolchain.DefaultBinaries()}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			cfg.baseDir = wd
		} else {
			cfg.baseDir = "."
		}
	}
	if cfg.log == nil {
		cfg.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Scaffolder{
		tc:      toolchain.New(runner, cfg.binaries),
		baseDir: cfg.baseDir,
		log:     cfg.log,
	}
}

// Check resolves the project directory for name and verifies it can be
// used: "." requires an empty base directory, any other name must not
// exist yet. Failures are usage errors; Check never modifies anything.
func (s *Scaffolder) Check(name string) (string, error) {
	if err := model.ValidateProjectName(name); err != nil {
		return "", model.WrapCLIError(model.ExitUsageError, "invalid project name", err)
	}

	if name == model.CurrentDir {
		entries, err := os.ReadDir(s.baseDir)
		if err != nil {
			return "", model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("failed to read directory %s", s.baseDir), err)
		}
		if len(entries) > 0 {
			return "", model.NewCLIError(model.ExitUsageError,
				fmt.Sprintf("current directory %s is not empty", s.baseDir))
		}
		return s.baseDir, nil
	}

	dir := filepath.Join(s.baseDir, name)
	if _, err := os.Lstat(dir); err == nil {
		return "", model.NewCLIError(model.ExitUsageError,
			fmt.Sprintf("%s already exists", dir))
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to inspect %s", dir), err)
	}
	return dir, nil
}

// Plan checks the target and resolves req without side effects.
func (s *Scaffolder) Plan(req Request) (*Plan, error) {
	dir, err := s.Check(req.Name)
	if err != nil {
		return nil, err
	}

	plan, err := NewPlan(req, dir, s.tc.Binaries())
	if err != nil {
		return nil, model.WrapCLIError(model.ExitUsageError, "invalid version pin", err)
	}
	return plan, nil
}

// Run performs the scaffold described by req.
func (s *Scaffolder) Run(ctx context.Context, req Request) (*Result, error) {
	plan, err := s.Plan(req)
	if err != nil {
		return nil, err
	}
	dir := plan.Dir
	log := s.log.With("dir", dir)

	result := &Result{
		Name:     plan.Name,
		Dir:      dir,
		Options:  plan.Options,
		Packages: plan.Packages,
		Plugins:  plan.Plugins,
		Scripts:  plan.Scripts,
	}

	if plan.createDir {
		log.Debug("creating project directory")
		if err := os.Mkdir(dir, 0o755); err != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("failed to create %s", dir), err)
		}
	}

	if err := s.tc.NPMInit(ctx, dir); err != nil {
		return nil, commandFailed("failed to initialize package.json", err)
	}
	if err := s.tc.TSCInit(ctx, dir); err != nil {
		return nil, commandFailed("failed to initialize tsconfig.json", err)
	}

	log.Debug("installing packages", "packages", plan.Packages)
	if err := s.tc.Install(ctx, dir, plan.InstallArgs); err != nil {
		return nil, commandFailed("failed to install packages", err)
	}

	if err := writeEntryFile(dir); err != nil {
		return nil, err
	}

	tsResult, err := rewriteTSConfig(dir, req.Selection)
	if err != nil {
		return nil, err
	}
	result.Structured = tsResult.Structured
	for _, w := range tsResult.Warnings {
		log.Debug(w, "file", tsconfig.FileName)
		result.Warnings = append(result.Warnings, w)
	}

	if err := rewritePackageJSON(dir, plan.Scripts); err != nil {
		return nil, err
	}

	if plan.Git {
		if err := appendGitignore(dir); err != nil {
			return nil, err
		}
		if err := s.tc.GitInit(ctx, dir); err != nil {
			return nil, commandFailed("failed to initialize git repository", err)
		}
		result.GitInitialized = true
	}

	if !plan.SkipRun {
		if err := s.tc.RunScript(ctx, dir, npm.ScriptOnce); err != nil {
			return nil, commandFailed("build-and-run smoke test failed", err)
		}
		result.SmokeTestRan = true
	}

	result.NextSteps = NextSteps(plan.Name)
	log.Debug("scaffold complete")
	return result, nil
}

// NextSteps returns the commands the user is told to run afterwards.
func NextSteps(name string) []string {
	var steps []string
	if name != model.CurrentDir {
		steps = append(steps, "cd "+name)
	}
	return append(steps, "code .", "npm run "+npm.ScriptWatch)
}

// commandFailed wraps a toolchain error as ExitCommandFailed.
func commandFailed(message string, err error) error {
	return model.WrapCLIError(model.ExitCommandFailed, message, err)
}
