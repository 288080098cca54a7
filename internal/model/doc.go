// Package model defines the domain types and value objects for the
// ts-scaffold CLI.
//
// This package contains pure data structures with no external dependencies.
// It holds the option catalog (the closed set of feature flags a user can
// select), the Selection built from those flags, project name validation,
// and the exit codes and CLIError type that carry process exit status from
// any layer up to the cobra entry point.
package model
