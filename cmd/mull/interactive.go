package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/mull-cli/mull/internal/config"
	"github.com/mull-cli/mull/internal/stage"
)

// runInteractive loops reading decisions from stdin and running the pipeline
// for each. The stage prompt library watches the overrides file, so prompt
// tweaks take effect between runs without restarting.
func runInteractive() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	library, err := stage.NewLibrary(cfg.PromptsFile)
	if err != nil {
		return err
	}
	defer library.Close()

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	bold.Println("mull — a thinking partner for hard decisions")
	faint.Println("Clarify → Explore → Challenge → Synthesize")
	faint.Println(`Type a decision you're wrestling with, or "exit" to quit.`)
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		bold.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		switch {
		case input == "":
			continue
		case input == "exit" || input == "quit":
			return nil
		}

		if err := runThinkWithStages(input, cfg, library.Stages()); err != nil {
			color.New(color.FgRed).Fprintf(os.Stderr, "%v\n", err)
		}
		fmt.Println()
	}
}
