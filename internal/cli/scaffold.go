package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/ts-scaffold/internal/config"
	"github.com/shinji-kodama/ts-scaffold/internal/logger"
	"github.com/shinji-kodama/ts-scaffold/internal/model"
	"github.com/shinji-kodama/ts-scaffold/internal/prompt"
	"github.com/shinji-kodama/ts-scaffold/internal/scaffold"
	"github.com/shinji-kodama/ts-scaffold/internal/toolchain"
)

// scaffoldFlags holds the root command's own flags. Global flags (--json,
// --verbose) live in root.go.
type scaffoldFlags struct {
	// options is the --options/-o value. When the flag is given, even as an
	// empty string, it replaces both the config file's options and the
	// multi-select prompt.
	options []string

	// skipRun is --skip-run. It is bound into the configuration so a config
	// file or TS_SCAFFOLD_SKIP_RUN can set it too; the flag wins when given.
	skipRun bool

	// dryRun is --dry-run: resolve and print the plan, then exit without
	// creating anything.
	dryRun bool

	// configPath is --config. Empty means the default path, which may be
	// absent; an explicit path must exist.
	configPath string
}

// register defines the flags on cmd.
func (f *scaffoldFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.options, "options", "o", nil, "Comma-separated options to enable (skips the prompt)")
	cmd.Flags().BoolVar(&f.skipRun, "skip-run", false, "Skip the final build-and-run smoke test")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Print what would be done and exit")
	cmd.Flags().StringVar(&f.configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/ts-scaffold/config.yaml)")
}

// newRunner builds the toolchain runner. Tests replace it.
var newRunner = func(stdin io.Reader, out, errOut io.Writer) toolchain.Runner {
	return toolchain.NewExec(stdin, out, errOut)
}

// workDir returns the directory project names resolve against. Tests
// replace it.
var workDir = os.Getwd

// runScaffold is the orchestration behind the root command:
//  1. Load configuration
//  2. Ask for the folder name until it is valid
//  3. Check the target directory (before asking for options)
//  4. Resolve the selection from --options, config, or the prompt
//  5. Print the plan (--dry-run) or run the scaffold
//  6. Print the result and next steps
func runScaffold(cmd *cobra.Command, name string, flags *scaffoldFlags) error {
	cfg, err := config.Load(flags.configPath, cmd.Flags())
	if err != nil {
		return model.WrapCLIError(model.ExitUsageError, "invalid configuration", err)
	}
	if cfg.File != "" {
		VerboseLog("Config file: %s", cfg.File)
	}

	base, err := workDir()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}

	out := stdout(cmd)
	in := cmd.InOrStdin()
	p := prompt.For(in, out)
	if _, ok := p.(*prompt.Terminal); ok {
		VerboseLog("Prompt mode: terminal")
	} else {
		VerboseLog("Prompt mode: line (stdin is not a terminal)")
	}

	name, err = p.ProjectName(name)
	if err != nil {
		return promptError(err)
	}
	VerboseLog("Project name: %s", name)

	s := scaffold.New(newRunner(in, out, cmd.ErrOrStderr()),
		scaffold.WithBaseDir(base),
		scaffold.WithBinaries(cfg.Binaries),
		scaffold.WithLogger(logger.ForComponent("scaffold")),
	)

	if _, err := s.Check(name); err != nil {
		return err
	}

	sel, err := resolveSelection(cmd, flags, cfg, p)
	if err != nil {
		return err
	}
	VerboseLog("Options: %s", sel)

	req := scaffold.Request{
		Name:      name,
		Selection: sel,
		Pins:      cfg.Pins,
		SkipRun:   cfg.SkipRun,
	}

	if flags.dryRun {
		plan, err := s.Plan(req)
		if err != nil {
			return err
		}
		return printPlan(cmd.OutOrStdout(), plan)
	}

	result, err := s.Run(cmd.Context(), req)
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), result)
	return nil
}

// resolveSelection prefers --options, then the config file's options, and
// prompts only when neither is given.
func resolveSelection(cmd *cobra.Command, flags *scaffoldFlags, cfg *config.Config, p prompt.Asker) (model.Selection, error) {
	if cmd.Flags().Changed("options") {
		sel, err := model.ParseOptions(flags.options)
		if err != nil {
			return model.Selection{}, model.WrapCLIError(model.ExitUsageError, "invalid --options value", err)
		}
		return sel, nil
	}

	if cfg.OptionsSet {
		VerboseLog("Using options from configuration")
		return cfg.Selection()
	}

	sel, err := p.Options()
	if err != nil {
		return model.Selection{}, promptError(err)
	}
	return sel, nil
}

// promptError maps a prompt failure to its exit code: closed input or an
// aborted prompt is a cancellation, anything else a general error.
func promptError(err error) error {
	if errors.Is(err, prompt.ErrCancelled) {
		return model.WrapCLIError(model.ExitUserCancelled, "cancelled", err)
	}
	return model.WrapCLIError(model.ExitGeneralError, "failed to read input", err)
}

// printPlan writes the plan as YAML, or as JSON with --json.
func printPlan(w io.Writer, plan *scaffold.Plan) error {
	if jsonOutput {
		data, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "failed to render plan", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	data, err := plan.YAML()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to render plan", err)
	}
	fmt.Fprint(w, string(data))
	return nil
}

// printResult writes warnings and next steps, or the whole result as JSON
// with --json.
func printResult(w io.Writer, result *scaffold.Result) {
	if jsonOutput {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}
	fmt.Fprintf(w, "\nCreated %s\n\nNext steps:\n", result.Dir)
	for _, step := range result.NextSteps {
		fmt.Fprintf(w, "  %s\n", step)
	}
}
