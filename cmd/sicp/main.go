package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"sicp/interpreter-go/pkg/interpreter"
)

const cliToolVersion = "sicp 0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	return newCLI(os.Stdin, os.Stdout, os.Stderr).execute(args)
}

// cli carries the streams and flags shared by every subcommand.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	trace  bool
}

func newCLI(stdin io.Reader, stdout, stderr io.Writer) *cli {
	return &cli{stdin: stdin, stdout: stdout, stderr: stderr}
}

func (c *cli) execute(args []string) int {
	root := c.rootCommand()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(c.stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "sicp",
		Short:         "Evaluate Scheme-like expressions",
		Version:       cliToolVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(c.stdin)
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)
	root.PersistentFlags().BoolVar(&c.trace, "trace", false,
		"Log definitions and procedure applications to stderr")

	root.AddCommand(c.runCommand(), c.replCommand(), c.depsCommand())
	return root
}

func (c *cli) newInterpreter(opts ...interpreter.Option) (*interpreter.Interpreter, error) {
	if c.trace {
		opts = append(opts, interpreter.WithTrace(c.stderr))
	}
	return interpreter.New(opts...)
}
