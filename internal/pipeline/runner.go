// Package pipeline sequences the four reasoning stages over one decision
// state. The runner is a pure sequencer: its only state is which stage is
// current, and a fresh runner is created for every run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/mull-cli/mull/internal/decision"
	"github.com/mull-cli/mull/internal/llm"
	"github.com/mull-cli/mull/internal/stage"
)

// Phase is the runner's position in the fixed stage sequence.
type Phase string

const (
	PhaseInit         Phase = "init"
	PhaseClarifying   Phase = "clarifying"
	PhaseExploring    Phase = "exploring"
	PhaseChallenging  Phase = "challenging"
	PhaseSynthesizing Phase = "synthesizing"
	PhaseDone         Phase = "done"
	PhaseFailed       Phase = "failed"
)

// phaseFor maps a stage to the phase the runner is in while executing it.
var phaseFor = map[decision.StageName]Phase{
	decision.StageClarifier:   PhaseClarifying,
	decision.StageExplorer:    PhaseExploring,
	decision.StageChallenger:  PhaseChallenging,
	decision.StageSynthesizer: PhaseSynthesizing,
}

// ErrCancelled marks a run aborted by context cancellation.
var ErrCancelled = errors.New("run cancelled")

// StageError attributes a run failure to exactly one stage.
type StageError struct {
	Stage decision.StageName
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Options configures one pipeline run.
type Options struct {
	// MaxTokens caps each stage's model output.
	MaxTokens int64
	// Temperature is passed through to every completion call.
	Temperature float64
	// Stream enables token streaming; partial text is surfaced as
	// EventStageDelta events while each stage runs.
	Stream bool
	// EventBuffer sizes the progress event channel. Defaults to 64.
	EventBuffer int
}

// DefaultOptions returns the generation parameters used when none are
// configured.
func DefaultOptions() Options {
	return Options{MaxTokens: 1024, Temperature: 0.7}
}

// Runner executes the four stages in fixed order against one decision state.
// A Runner serves exactly one call to Run.
type Runner struct {
	completer llm.Completer
	stages    []stage.Stage
	opts      Options

	phase   Phase
	emitter *emitter
}

// NewRunner creates a runner over the given completer and stages. The stages
// must be in pipeline order; stage.All provides them.
func NewRunner(completer llm.Completer, stages []stage.Stage, opts Options) *Runner {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultOptions().MaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = DefaultOptions().Temperature
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 64
	}
	return &Runner{
		completer: completer,
		stages:    stages,
		opts:      opts,
		phase:     PhaseInit,
		emitter:   newEmitter(opts.EventBuffer),
	}
}

// Events returns the progress event channel for this run. It is closed when
// Run returns.
func (r *Runner) Events() <-chan Event {
	return r.emitter.events
}

// Phase returns the runner's current phase.
func (r *Runner) Phase() Phase {
	return r.phase
}

// Run executes the pipeline for the given decision text. On success the
// returned state has all five content fields set and a four-entry stage log.
// On failure the populated prefix of the state is returned alongside the
// error so callers can show partial progress; the error identifies the
// failing stage.
func (r *Runner) Run(ctx context.Context, input string) (*decision.State, error) {
	defer r.emitter.close()

	st, err := decision.New(input)
	if err != nil {
		r.phase = PhaseFailed
		return nil, err
	}

	for _, stg := range r.stages {
		r.phase = phaseFor[stg.Name()]
		r.emitter.emit(Event{Stage: stg.Name(), Type: EventStageStart})

		result, err := r.runStage(ctx, stg, st)
		if err != nil {
			r.phase = PhaseFailed
			err = r.asStageError(stg.Name(), err)
			r.emitter.emit(Event{Stage: stg.Name(), Type: EventStageError, Text: err.Error()})
			return st, err
		}

		if err := result.Apply(st); err != nil {
			r.phase = PhaseFailed
			err = r.asStageError(stg.Name(), err)
			r.emitter.emit(Event{Stage: stg.Name(), Type: EventStageError, Text: err.Error()})
			return st, err
		}

		r.emitter.emit(Event{Stage: stg.Name(), Type: EventStageDone, Text: result.Raw})
	}

	r.phase = PhaseDone
	return st, nil
}

// runStage generates and parses one stage's output, retrying once with the
// stage's corrective hint if the first output fails to parse.
func (r *Runner) runStage(ctx context.Context, stg stage.Stage, st *decision.State) (stage.Result, error) {
	prompt := stg.Prompt(st)

	raw, err := r.generate(ctx, stg, prompt)
	if err != nil {
		return stage.Result{}, err
	}

	result, err := stg.Parse(raw)
	if err == nil {
		return result, nil
	}

	var parseErr *stage.ParseError
	if !errors.As(err, &parseErr) {
		return stage.Result{}, err
	}

	// One corrective retry: same prompt plus an explicit format reminder.
	log.Printf("[pipeline] %s output malformed (%s), retrying with corrective hint", stg.Name(), parseErr.Reason)
	corrective := prompt + "\n\nIMPORTANT: " + stg.CorrectiveHint()

	raw, err = r.generate(ctx, stg, corrective)
	if err != nil {
		return stage.Result{}, err
	}
	return stg.Parse(raw)
}

// generate performs one completion call, streaming when enabled. The stream
// is fully drained before the assembled text is returned; the runner never
// advances on partial output.
func (r *Runner) generate(ctx context.Context, stg stage.Stage, prompt string) (string, error) {
	req := llm.GenerateRequest{
		Prompt:      prompt,
		MaxTokens:   r.opts.MaxTokens,
		Temperature: r.opts.Temperature,
	}

	if !r.opts.Stream {
		return r.completer.Complete(ctx, req)
	}

	chunks, err := r.completer.Stream(ctx, req)
	if err != nil {
		return "", err
	}

	var full strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			return "", chunk.Err
		}
		full.WriteString(chunk.Text)
		r.emitter.emit(Event{Stage: stg.Name(), Type: EventStageDelta, Text: chunk.Text})
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return full.String(), nil
}

// asStageError wraps a stage failure with its stage name, converting context
// cancellation into ErrCancelled.
func (r *Runner) asStageError(name decision.StageName, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	return &StageError{Stage: name, Err: err}
}
