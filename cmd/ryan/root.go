package main

import (
	"github.com/spf13/cobra"
)

// exitError tags a returned error with the exit code SPEC_FULL.md §6
// assigns to its failure class.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

const (
	exitParseError  = 1
	exitEvalError   = 2
	exitDecodeError = 3
)

func exitCodeFor(err error) int {
	if ee, ok := err.(*exitError); ok {
		return ee.code
	}
	return 1
}

// Global flags shared by every subcommand.
var (
	flagHermetic bool
	flagNoColor  bool
	flagEnv      []string
)

// NewRootCmd builds the `ryan` command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ryan",
		Short: "ryan - a JSON-superset configuration language",
		Long: `ryan evaluates configuration files written in a JSON-superset
language with variables, pattern matching, comprehensions, template
strings, and a module import system.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().BoolVar(&flagHermetic, "hermetic", false, "disable the import subsystem entirely")
	cmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "force-disable ANSI output regardless of TTY detection")
	cmd.PersistentFlags().StringArrayVar(&flagEnv, "env", nil, "KEY=VALUE override consulted by env: imports before the real process environment (repeatable)")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newEvalCmd())

	return cmd
}
