package main

import (
	"errors"

	"makeroom/internal/services"
)

const (
	exitFailure = 1
	// exitSetup marks runs that stopped before touching any file.
	exitSetup = 2
	// exitInterrupted follows the shell convention for SIGINT.
	exitInterrupted = 130
)

// exitError carries a process exit status up through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var coded *exitError
	if errors.As(err, &coded) {
		return coded.code
	}
	if services.IsSetupFailure(err) {
		return exitSetup
	}
	return exitFailure
}
