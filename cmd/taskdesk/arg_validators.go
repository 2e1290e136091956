package main

import (
	"errors"

	"github.com/spf13/cobra"
)

// argCount builds a positional-args check that fails with message when ok
// rejects the number of args.
func argCount(ok func(n int) bool, message string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if !ok(len(args)) {
			return errors.New(message)
		}
		return nil
	}
}

func requireAtLeastArgs(min int, message string) cobra.PositionalArgs {
	return argCount(func(n int) bool { return n >= min }, message)
}

func requireExactlyArgs(count int, message string) cobra.PositionalArgs {
	return argCount(func(n int) bool { return n == count }, message)
}

var requireAtLeastOneID = requireAtLeastArgs(1, "task id is required")
