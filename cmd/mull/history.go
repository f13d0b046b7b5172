package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mull-cli/mull/internal/config"
	"github.com/mull-cli/mull/internal/decision"
	"github.com/mull-cli/mull/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past thinking sessions",
	Long: `List archived runs, newest first.

Each completed run is archived locally (disable with think --no-history
or history.enabled: false in config). Use "mull history show <id>" to
reprint a full transcript.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listHistory()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one archived run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showHistory(args[0])
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
	historyCmd.AddCommand(historyShowCmd)
}

func listHistory() error {
	db, err := history.Open(config.HistoryDBPath())
	if err != nil {
		return fmt.Errorf("open history database: %w", err)
	}
	defer db.Close()

	records, err := db.ListRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No archived runs yet. Try: mull think \"<a decision>\"")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tSTATUS\tDECISION")
	for _, rec := range records {
		status := string(rec.Status)
		if rec.Status == history.RunFailed {
			status = fmt.Sprintf("failed (%s)", rec.FailureStage)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			rec.ID[:8],
			rec.StartedAt.Format("2006-01-02 15:04"),
			status,
			firstLine(rec.Input, 60),
		)
	}
	return w.Flush()
}

func showHistory(id string) error {
	db, err := history.Open(config.HistoryDBPath())
	if err != nil {
		return fmt.Errorf("open history database: %w", err)
	}
	defer db.Close()

	rec, err := db.GetRun(id)
	if err != nil {
		return err
	}

	// Rebuild a state from the record so the transcript renders the same
	// way a live run does.
	st, err := decision.New(rec.Input)
	if err != nil {
		return fmt.Errorf("archived run has unusable input: %w", err)
	}
	if rec.Clarified != "" {
		_ = st.SetClarifiedQuestion(rec.Clarified)
	}
	if len(rec.Options) > 0 {
		_ = st.SetExploredOptions(rec.Options)
	}
	if len(rec.Assumptions) > 0 {
		_ = st.SetChallengedAssumptions(rec.Assumptions)
	}
	if rec.Synthesis != "" {
		_ = st.SetSynthesis(rec.Synthesis)
	}

	fmt.Print(renderState(st))
	if rec.Status == history.RunFailed {
		color.New(color.FgRed).Printf("\nThis run failed during the %s stage.\n", rec.FailureStage)
	}
	fmt.Printf("\nRun %s · %s · %d input / %d output tokens\n",
		rec.ID[:8], rec.StartedAt.Format("2006-01-02 15:04"), rec.InputTokens, rec.OutputTokens)
	return nil
}

func firstLine(s string, limit int) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	if len(s) > limit {
		s = s[:limit-3] + "..."
	}
	return s
}
