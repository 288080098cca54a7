package toolchain

import "context"

// Binaries names the executables used for each tool. Values may be bare
// names resolved through PATH or absolute paths.
type Binaries struct {
	NPM string `mapstructure:"npm" json:"npm" yaml:"npm"`
	TSC string `mapstructure:"tsc" json:"tsc" yaml:"tsc"`
	Git string `mapstructure:"git" json:"git" yaml:"git"`
}

// DefaultBinaries resolves every tool through PATH.
func DefaultBinaries() Binaries {
	return Binaries{NPM: "npm", TSC: "tsc", Git: "git"}
}

// WithDefaults fills empty fields from DefaultBinaries.
func (b Binaries) WithDefaults() Binaries {
	d := DefaultBinaries()
	if b.NPM == "" {
		b.NPM = d.NPM
	}
	if b.TSC == "" {
		b.TSC = d.TSC
	}
	if b.Git == "" {
		b.Git = d.Git
	}
	return b
}

// Toolchain issues the fixed set of commands a scaffold runs.
type Toolchain struct {
	runner Runner
	bin    Binaries
}

// New returns a Toolchain that runs its commands through runner.
func New(runner Runner, bin Binaries) *Toolchain {
	return &Toolchain{runner: runner, bin: bin.WithDefaults()}
}

// Binaries returns the resolved executable names.
func (t *Toolchain) Binaries() Binaries {
	return t.bin
}

// NPMInit runs `npm init -y`, which writes a default package.json.
func (t *Toolchain) NPMInit(ctx context.Context, dir string) error {
	return t.runner.Run(ctx, dir, t.bin.NPM, "init", "-y")
}

// TSCInit runs `tsc --init`, which writes a commented tsconfig.json.
func (t *Toolchain) TSCInit(ctx context.Context, dir string) error {
	return t.runner.Run(ctx, dir, t.bin.TSC, "--init")
}

// Install runs npm with pre-built install arguments (see npm.InstallArgs).
func (t *Toolchain) Install(ctx context.Context, dir string, args []string) error {
	return t.runner.Run(ctx, dir, t.bin.NPM, args...)
}

// GitInit runs `git init`.
func (t *Toolchain) GitInit(ctx context.Context, dir string) error {
	return t.runner.Run(ctx, dir, t.bin.Git, "init")
}

// RunScript runs `npm run <script>`.
func (t *Toolchain) RunScript(ctx context.Context, dir string, script string) error {
	return t.runner.Run(ctx, dir, t.bin.NPM, "run", script)
}
