package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mull",
	Short: "A thinking partner for hard decisions",
	Long: `Mull walks you through a structured decision-making conversation.

Four reasoning stages run in fixed order over your decision:
  Clarify    - surface what you're really deciding
  Explore    - find options you haven't considered
  Challenge  - test your assumptions
  Synthesize - compile insights, without telling you what to do

Mull never recommends. It always ends with a question; the decision
is yours.

With no arguments, launches an interactive session where you can think
through decisions one after another.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(thinkCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
