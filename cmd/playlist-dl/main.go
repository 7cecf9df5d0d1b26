package main

import (
	"errors"
	"fmt"
	"os"
)

var version = "dev"

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func main() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+ee.err.Error()))
		}
		os.Exit(ee.code)
	}

	fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
	os.Exit(1)
}
