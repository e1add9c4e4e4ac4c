package main

import (
	"fmt"
	"os"

	"github.com/weft-lang/weft/internal/cli/commands"
)

func main() {
	rootCmd := commands.NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
