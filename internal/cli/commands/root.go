// Package commands wires up the weft command line interface.
package commands

import (
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "weft",
		Short: "Weft template tooling",
		Long: color.CyanString(`Weft - editor tooling for Weft templates

Weft dialects extend template markup with custom attributes, elements,
and expression helper objects. This tool discovers the dialects on a
project's dependency path and serves editor content assist from them.`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewLSPCommand())
	rootCmd.AddCommand(NewDialectsCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("weft %s\n", Version)
			fmt.Printf("  commit:     %s\n", GitCommit)
			fmt.Printf("  built:      %s\n", BuildDate)
			fmt.Printf("  go version: %s\n", runtime.Version())
		},
	}
}
