// Command varspecctl drives the parse and specialize engines from
// declarative schema documents, for ad hoc inspection and fuzzing
// campaigns without writing Go. Grounded on the teacher's cli/main.go
// (cobra root command, PersistentFlags, RunE returning an error the
// caller turns into an exit code) and cmd/devcmd/main.go's named exit
// code constants.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	exitSuccess          = 0
	exitInvalidArguments = 1
	exitIOError          = 2
	exitSchemaError      = 3
	exitParseError       = 4
	exitSpecializeError  = 5
)

// cliError pairs a message with the exit code it should produce, so
// RunE can return a normal error while main still picks the right
// process exit status.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func fail(code int, format string, args ...any) error {
	return &cliError{code: code, err: fmt.Errorf(format, args...)}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "varspecctl",
		Short:         "Parse and specialize messages from a declarative variable-domain schema",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(newParseCmd())
	root.AddCommand(newSpecializeCmd())
	return root
}

func main() {
	os.Exit(run())
}

func run() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var ce *cliError
		if errors.As(err, &ce) {
			return ce.code
		}
		return exitInvalidArguments
	}
	return exitSuccess
}
