package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tokahuke/ryan/internal/eval"
	"github.com/tokahuke/ryan/internal/imports"
	"github.com/tokahuke/ryan/internal/native"
	"github.com/tokahuke/ryan/internal/rerr"
	"github.com/tokahuke/ryan/internal/syntax"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file|->",
		Short: "evaluate a ryan file (or stdin, with -) and print its JSON rendering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, filename, err := readSource(args[0])
			if err != nil {
				return &exitError{code: exitDecodeError, err: err}
			}
			return runSource(filename, source)
		},
	}
}

func newEvalCmd() *cobra.Command {
	var expr string
	c := &cobra.Command{
		Use:   "eval",
		Short: "evaluate a single expression passed with -e",
		RunE: func(cmd *cobra.Command, args []string) error {
			if expr == "" {
				return &exitError{code: exitParseError, err: fmt.Errorf("eval requires -e '<expression>'")}
			}
			return runSource("<expr>", expr)
		},
	}
	c.Flags().StringVarP(&expr, "expr", "e", "", "expression to evaluate")
	return c
}

func readSource(path string) (source, filename string, err error) {
	if path == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(raw), "<stdin>", nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read %q: %w", path, err)
	}
	return string(raw), path, nil
}

func runSource(filename, source string) error {
	block, err := syntax.Parse(filename, source)
	if err != nil {
		return &exitError{code: exitParseError, err: fmt.Errorf("%s", renderError(err))}
	}

	e := buildEvaluator(filename)
	result, err := e.EvalBlock(e.RootScope(), block)
	if err != nil {
		return &exitError{code: exitEvalError, err: fmt.Errorf("%s", renderError(err))}
	}

	rendered, err := result.JSON()
	if err != nil {
		return &exitError{code: exitDecodeError, err: err}
	}

	out, err := json.MarshalIndent(rendered, "", "  ")
	if err != nil {
		return &exitError{code: exitDecodeError, err: err}
	}
	fmt.Println(string(out))
	return nil
}

func buildEvaluator(currentFile string) *eval.Evaluator {
	overrides := parseEnvFlag(flagEnv)
	lookup := imports.EnvLookup(func(key string) (string, bool) {
		if v, ok := overrides[key]; ok {
			return v, true
		}
		return os.LookupEnv(key)
	})

	var loader imports.Loader = imports.NewDefaultImporter(lookup)
	if flagHermetic {
		loader = imports.NoImport{}
	}

	return eval.New(native.Default(), imports.NewState(loader), currentFile)
}

func parseEnvFlag(entries []string) map[string]string {
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		out[k] = v
	}
	return out
}

// renderError prints the fatal-error context stack, with the whole
// rendered text colored red when stderr is a real terminal and
// --no-color wasn't passed.
func renderError(err error) string {
	rendered := rerr.Render(err)
	if flagNoColor || !term.IsTerminal(int(os.Stderr.Fd())) {
		return rendered
	}
	const red = "\x1b[31m"
	const reset = "\x1b[0m"
	return red + rendered + reset
}
