// Package cli implements the cobra-based command line of ts-scaffold.
//
// The root command is the scaffold itself; there are no subcommands. This
// file defines the command, its global flags, and the error-to-exit-code
// translation. The scaffold flow lives in scaffold.go.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/ts-scaffold/internal/logger"
	"github.com/shinji-kodama/ts-scaffold/internal/model"
)

// Global flag variables. They are bound to persistent flags on the root
// command and reset to their defaults every time NewRootCommand runs.
var (
	// jsonOutput switches results and errors to JSON. Command echo and
	// child process output then go to stderr so stdout stays parseable.
	jsonOutput bool

	// verbose enables debug logging on stderr.
	verbose bool
)

// Version, Commit, and Date are injected from the main package.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCommand creates the ts-scaffold command.
func NewRootCommand() *cobra.Command {
	flags := &scaffoldFlags{}

	rootCmd := &cobra.Command{
		Use:   "ts-scaffold [folder]",
		Short: "Create a ready-to-run TypeScript project",
		Long: `ts-scaffold creates a TypeScript project in a new folder (or in the current,
empty folder when the name is "."). It runs npm init and tsc --init, installs
the selected packages, configures tsconfig.json and package.json scripts, and
finishes with a build-and-run smoke test.

Options:
  git                       initialize a Git repository with a .gitignore
  express                   add the express web framework
  typescript-is             runtime type checks (uses ttypescript)
  ts-transformer-keys       keys<T>() transformer (uses ttypescript)
  ts-transformer-enumerate  enumerate<T>() transformer (uses ttypescript)

Examples:
  ts-scaffold
  ts-scaffold my-app
  ts-scaffold my-app --options git,express
  ts-scaffold . -o typescript-is --skip-run
  ts-scaffold my-app --dry-run`,

		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return model.WrapCLIError(model.ExitUsageError, "invalid arguments", err)
			}
			return nil
		},

		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := logger.ForCLI(verbose, jsonOutput)
			cfg.Output = cmd.ErrOrStderr()
			logger.Init(cfg)
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runScaffold(cmd, name, flags)
		},
	}

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return model.WrapCLIError(model.ExitUsageError, "invalid flag", err)
	})

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	flags.register(rootCmd)

	return rootCmd
}

// Execute runs the root command and returns the process exit code.
// CLIError values carry their own code; any other error maps to 1.
func Execute(ctx context.Context, rootCmd *cobra.Command) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return int(model.ExitSuccess)
	}

	w := rootCmd.ErrOrStderr()
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		printError(w, cliErr.Message, cliErr.Err)
		return int(cliErr.Code)
	}

	printError(w, err.Error(), nil)
	return int(model.ExitGeneralError)
}

// printError writes an error as text or, with --json, as a JSON object.
func printError(w io.Writer, message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	if underlying != nil {
		fmt.Fprintf(w, "Error: %s: %v\n", message, underlying)
	} else {
		fmt.Fprintf(w, "Error: %s\n", message)
	}
}

// VerboseLog emits a debug record; it is visible only with --verbose.
func VerboseLog(format string, args ...interface{}) {
	slog.Debug(fmt.Sprintf(format, args...))
}

// stdout returns where human-facing progress goes: stdout normally, stderr
// when stdout is reserved for JSON.
func stdout(cmd *cobra.Command) io.Writer {
	if jsonOutput {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}
