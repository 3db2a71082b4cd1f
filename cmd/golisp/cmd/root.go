// Package cmd implements the golisp CLI tree, structured the way the
// teacher's cmd/dwscript/cmd package is: a root command carrying version
// metadata and global flags, with run/version as subcommands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "golisp",
	Short: "A Scheme-like Lisp interpreter",
	Long: `golisp is a small Scheme-like Lisp interpreter: a tagged-value heap,
a trampolined evaluator, and a handful of special forms and primitives,
with a prelude of library procedures layered on top.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}
