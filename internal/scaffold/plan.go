package scaffold

import (
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/ts-scaffold/internal/model"
	"github.com/shinji-kodama/ts-scaffold/internal/npm"
	"github.com/shinji-kodama/ts-scaffold/internal/toolchain"
	"github.com/shinji-kodama/ts-scaffold/internal/tsconfig"
)

// Plan is everything a scaffold run will do, resolved without touching the
// filesystem or running any command. Run executes a Plan; --dry-run prints
// one.
type Plan struct {
	// Name is the requested folder name, or "." for the base directory.
	Name string `yaml:"name" json:"name"`

	// Dir is the absolute project directory every command runs in.
	Dir string `yaml:"dir" json:"dir"`

	// Options are the selected options in catalog order.
	Options []string `yaml:"options" json:"options"`

	// Packages is the resolved install list.
	Packages []string `yaml:"packages" json:"packages"`

	// InstallArgs are the npm arguments for Packages, with pinned packages
	// written as "name@range".
	InstallArgs []string `yaml:"-" json:"-"`

	// Plugins are the transformer module paths for compilerOptions.plugins.
	Plugins []string `yaml:"plugins,omitempty" json:"plugins,omitempty"`

	// Scripts is the table written to package.json "scripts".
	Scripts npm.ScriptTable `yaml:"scripts" json:"scripts"`

	// Commands lists the external commands in execution order.
	Commands []string `yaml:"commands" json:"commands"`

	// Files lists the files written by ts-scaffold itself, relative to Dir.
	Files []string `yaml:"files" json:"files"`

	// Git is true when a repository is initialized and .gitignore written.
	Git bool `yaml:"git" json:"git"`

	// SkipRun is true when the final `npm run once` is left out.
	SkipRun bool `yaml:"skipRun" json:"skipRun"`

	// createDir is false for ".", where the directory already exists.
	createDir bool
}

// NewPlan resolves a Request for the project directory dir. The only
// possible error is an invalid version pin.
func NewPlan(req Request, dir string, bin toolchain.Binaries) (*Plan, error) {
	sel := req.Selection
	bin = bin.WithDefaults()

	pkgs := npm.ResolvePackages(sel)
	installArgs, err := npm.InstallArgs(pkgs, req.Pins)
	if err != nil {
		return nil, err
	}

	p := &Plan{
		Name:        req.Name,
		Dir:         dir,
		Options:     sel.Strings(),
		Packages:    pkgs,
		InstallArgs: installArgs,
		Plugins:     tsconfig.PluginTransforms(sel),
		Scripts:     npm.BuildScripts(sel),
		Git:         sel.Has(model.OptionGit),
		SkipRun:     req.SkipRun,
		createDir:   req.Name != model.CurrentDir,
	}

	p.Commands = []string{
		bin.NPM + " init -y",
		bin.TSC + " --init",
		commandLine(bin.NPM, installArgs),
	}
	if p.Git {
		p.Commands = append(p.Commands, bin.Git+" init")
	}
	if !p.SkipRun {
		p.Commands = append(p.Commands, bin.NPM+" run "+npm.ScriptOnce)
	}

	p.Files = []string{npm.PackageFileName, tsconfig.FileName, filepath.Join(sourceDir, entryFile)}
	if p.Git {
		p.Files = append(p.Files, gitignoreFile)
	}

	return p, nil
}

// YAML renders the plan for --dry-run.
func (p *Plan) YAML() ([]byte, error) {
	out, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to render plan: %w", err)
	}
	return out, nil
}

// commandLine joins a command for display in Commands.
func commandLine(name string, args []string) string {
	line := name
	for _, a := range args {
		line += " " + a
	}
	return line
}
