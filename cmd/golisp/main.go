// Command golisp is the command-line entry point for the interpreter: a
// REPL when given no file, or a script runner when given one.
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/golisp/cmd/golisp/cmd"
	"github.com/cwbudde/golisp/internal/errors"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(errors.Internal); ok {
				if ie.Session != "" {
					fmt.Fprintf(os.Stderr, "[InternalError][session %s] %s\n", ie.Session, ie.Message)
				} else {
					fmt.Fprintf(os.Stderr, "[InternalError] %s\n", ie.Message)
				}
				os.Exit(1)
			}
			panic(r)
		}
	}()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
