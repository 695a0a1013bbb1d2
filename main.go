package main

import (
	"fmt"
	"os"

	"github.com/denis-zhdanov/jenome/cmd"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		// the non-compliance verdict was already reported by the command
		if !errors.Is(err, cmd.ErrNotCompliant) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "jenome [subcommand]",
	Short:         "jenome\n a generic type compliance checker",
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(cmd.CheckCmd)
}
