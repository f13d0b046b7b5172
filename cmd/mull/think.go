package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mull-cli/mull/internal/config"
	"github.com/mull-cli/mull/internal/decision"
	"github.com/mull-cli/mull/internal/history"
	"github.com/mull-cli/mull/internal/llm"
	"github.com/mull-cli/mull/internal/pipeline"
	"github.com/mull-cli/mull/internal/stage"
	"github.com/mull-cli/mull/internal/tui"
)

var (
	thinkHeadless  bool
	thinkModel     string
	thinkNoStream  bool
	thinkNoHistory bool
)

var thinkCmd = &cobra.Command{
	Use:   "think <decision>",
	Short: "Think through a decision",
	Long: `Run your decision through the four reasoning stages.

Share something you're wrestling with: career, relationships, life
transitions, business decisions. The more context you give, the better
the thinking.

Example:
  mull think "Should I take the new job offer, or stay where I am?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runThink(strings.Join(args, " "))
	},
}

func init() {
	thinkCmd.Flags().BoolVar(&thinkHeadless, "headless", false, "Run without the live progress view")
	thinkCmd.Flags().StringVar(&thinkModel, "model", "", "Override the configured model for this run")
	thinkCmd.Flags().BoolVar(&thinkNoStream, "no-stream", false, "Disable token streaming")
	thinkCmd.Flags().BoolVar(&thinkNoHistory, "no-history", false, "Do not archive this run")
}

type runResult struct {
	state *decision.State
	err   error
}

func runThink(input string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	templates, err := stage.LoadTemplates(cfg.PromptsFile)
	if err != nil {
		return err
	}

	return runThinkWithStages(input, cfg, stage.All(templates))
}

// runThinkWithStages runs one pipeline pass with an already-built stage set.
// Interactive mode calls this directly so its prompt library can swap stage
// sets between runs.
func runThinkWithStages(input string, cfg *config.Config, stages []stage.Stage) error {
	completer, client, err := buildCompleter(cfg, thinkModel)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(completer, stages, pipeline.Options{
		MaxTokens:   cfg.Generation.MaxTokens,
		Temperature: cfg.Generation.Temperature,
		Stream:      cfg.Generation.Stream && !thinkNoStream,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	startedAt := time.Now()

	resultCh := make(chan runResult, 1)
	go func() {
		st, err := runner.Run(ctx, input)
		resultCh <- runResult{state: st, err: err}
	}()

	var result runResult
	if thinkHeadless {
		result = consumeHeadless(runner, resultCh)
	} else {
		result = consumeTUI(input, runner, resultCh, cancel)
	}

	if result.state != nil {
		fmt.Print(renderState(result.state))
	}

	saveHistory(cfg, result, client, startedAt)

	if result.err != nil {
		return describeFailure(result.err)
	}
	return nil
}

// consumeHeadless prints one colored status line per stage as events arrive.
func consumeHeadless(runner *pipeline.Runner, resultCh <-chan runResult) runResult {
	for ev := range runner.Events() {
		switch ev.Type {
		case pipeline.EventStageStart:
			printStageStatus("→", stageTitle(ev.Stage)+"...", color.FgCyan)
		case pipeline.EventStageDone:
			printStageStatus("✓", stageTitle(ev.Stage)+" complete", color.FgGreen)
		case pipeline.EventStageError:
			printStageStatus("✗", stageTitle(ev.Stage)+" failed", color.FgRed)
		}
	}
	return <-resultCh
}

// consumeTUI drives the live progress view, forwarding pipeline events into
// the tea program. Quitting the view cancels the run.
func consumeTUI(input string, runner *pipeline.Runner, resultCh <-chan runResult, cancel context.CancelFunc) runResult {
	model := tui.NewThinkModel(input)
	program := tea.NewProgram(model)

	done := make(chan runResult, 1)
	go func() {
		for ev := range runner.Events() {
			program.Send(tui.EventMsg{Event: ev})
		}
		result := <-resultCh
		done <- result
		program.Send(tui.DoneMsg{Err: result.err})
	}()

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "progress view error: %v\n", err)
	}
	// Quitting the view early aborts the in-flight run; the pipeline
	// surfaces the cancellation through the result.
	cancel()
	return <-done
}

func printStageStatus(symbol, message string, attr color.Attribute) {
	c := color.New(attr)
	c.Printf("%s %s\n", symbol, message)
}

func stageTitle(name decision.StageName) string {
	switch name {
	case decision.StageClarifier:
		return "Clarifying"
	case decision.StageExplorer:
		return "Exploring options"
	case decision.StageChallenger:
		return "Challenging assumptions"
	case decision.StageSynthesizer:
		return "Synthesizing"
	default:
		return string(name)
	}
}

// saveHistory archives the run transcript unless disabled. Failures are
// reported but never fail the run itself.
func saveHistory(cfg *config.Config, result runResult, client *llm.Client, startedAt time.Time) {
	if thinkNoHistory || !cfg.History.Enabled || result.state == nil {
		return
	}

	failureStage := ""
	var stageErr *pipeline.StageError
	if errors.As(result.err, &stageErr) {
		failureStage = string(stageErr.Stage)
	}

	db, err := history.Open(config.HistoryDBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open history database: %v\n", err)
		return
	}
	defer db.Close()

	inputTok, outputTok := client.Tracker().Total()
	rec := history.NewRecord(result.state, failureStage, inputTok, outputTok, startedAt)
	if err := db.SaveRun(rec); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not archive run: %v\n", err)
	}
}

// describeFailure turns a pipeline error into the message shown to the user,
// identifying which stage could not complete and why.
func describeFailure(err error) error {
	var valErr *decision.ValidationError
	if errors.As(err, &valErr) {
		return fmt.Errorf("%w\nShare something you're wrestling with. The more context you give, the better the thinking", err)
	}

	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		if errors.Is(err, pipeline.ErrCancelled) {
			return fmt.Errorf("run cancelled during the %s stage; partial progress shown above", stageErr.Stage)
		}
		return fmt.Errorf("the %s stage could not complete: %w", stageErr.Stage, stageErr.Err)
	}
	return err
}
