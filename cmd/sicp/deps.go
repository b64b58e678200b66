package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sicp/interpreter-go/pkg/driver"
)

func (c *cli) depsCommand() *cobra.Command {
	deps := &cobra.Command{
		Use:   "deps",
		Short: "Manage manifest dependencies",
	}
	deps.AddCommand(&cobra.Command{
		Use:   "install",
		Short: "Fetch dependencies and write package.lock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDepsInstall()
		},
	})
	return deps
}

func (c *cli) runDepsInstall() error {
	manifestPath, err := driver.FindManifest(".")
	if err != nil {
		return err
	}
	if manifestPath == "" {
		return errManifestNotFound
	}
	home, err := driver.DefaultHome()
	if err != nil {
		return err
	}
	lock, err := driver.NewLoader(home).Install(manifestPath)
	if err != nil {
		return err
	}
	if len(lock.Packages) == 0 {
		fmt.Fprintln(c.stdout, "no dependencies")
		return nil
	}
	for _, pkg := range lock.Packages {
		version := pkg.Version
		if version == "" {
			version = "-"
		}
		fmt.Fprintf(c.stdout, "%s %s %s\n", pkg.Name, version, pkg.Source)
	}
	fmt.Fprintf(c.stdout, "wrote %s\n", lock.Path)
	return nil
}
