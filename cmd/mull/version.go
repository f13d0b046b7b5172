package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mull-cli/mull/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mull version %s\n", version.Get())
	},
}
