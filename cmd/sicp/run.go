package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"sicp/interpreter-go/pkg/driver"
	"sicp/interpreter-go/pkg/runtime"
)

var errManifestNotFound = errors.New("package.yml not found")

type runOptions struct {
	expression bool
	print      bool
	target     string
}

func (c *cli) runCommand() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run [files...]",
		Short: "Run source files, inline expressions, or a manifest target",
		Long: `Run code supplied on the command line or from files. With no arguments the
target named by --target (or the default target) of the nearest package.yml runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEntry(args, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.expression, "expression", "e", false,
		"Interpret arguments as expressions")
	cmd.Flags().BoolVarP(&opts.print, "print", "p", false,
		"Print expression values to stdout")
	cmd.Flags().StringVarP(&opts.target, "target", "t", "",
		"Manifest target to run when no files are given")
	return cmd
}

func (c *cli) runEntry(args []string, opts runOptions) error {
	interp, err := c.newInterpreter()
	if err != nil {
		return err
	}
	printResult := func(v runtime.Expression) {
		if opts.print && v.Kind() != runtime.KindVoid {
			fmt.Fprintln(c.stdout, v)
		}
	}

	if opts.expression {
		for _, src := range args {
			results, err := interp.EvaluateSource(src)
			for _, v := range results {
				printResult(v)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}

	program, err := c.loadProgram(args, opts.target)
	if err != nil {
		return err
	}
	_, err = interp.EvaluateProgram(program, printResult)
	return err
}

func (c *cli) loadProgram(args []string, target string) (*driver.Program, error) {
	if len(args) > 0 {
		return driver.NewLoader("").LoadFiles(args...)
	}
	manifestPath, err := driver.FindManifest(".")
	if err != nil {
		return nil, err
	}
	if manifestPath == "" {
		return nil, fmt.Errorf("sicp run requires files, -e expressions, or a manifest target (%w)", errManifestNotFound)
	}
	home, err := driver.DefaultHome()
	if err != nil {
		return nil, err
	}
	return driver.NewLoader(home).LoadTarget(manifestPath, target)
}
