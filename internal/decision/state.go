// Package decision defines the state record accumulated across the four
// reasoning stages. Fields are set-once and populated in strict stage order;
// the stage log is append-only.
package decision

import (
	"fmt"
	"strings"
	"time"
)

// MinInputLength is the minimum number of characters a decision description
// must contain after trimming whitespace.
const MinInputLength = 10

// StageName identifies one of the four reasoning stages.
type StageName string

const (
	StageClarifier   StageName = "clarifier"
	StageExplorer    StageName = "explorer"
	StageChallenger  StageName = "challenger"
	StageSynthesizer StageName = "synthesizer"
)

// StageOrder is the fixed execution order of the pipeline.
var StageOrder = []StageName{StageClarifier, StageExplorer, StageChallenger, StageSynthesizer}

// ValidationError indicates the user-supplied decision text was unusable.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid decision input: " + e.Reason
}

// InvariantError indicates a programming error: a set-once field was written
// twice, or a field was written before all earlier stage fields were set.
type InvariantError struct {
	Field  string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("state invariant violated on %s: %s", e.Field, e.Reason)
}

// Assumption is one challenged assumption: the statement the user appears to
// hold and the counter-exploration of its opposite.
type Assumption struct {
	Statement string `json:"statement"`
	Counter   string `json:"counter"`
}

// LogEntry records the raw model output of one completed stage.
type LogEntry struct {
	Stage StageName `json:"stage"`
	Raw   string    `json:"raw"`
	At    time.Time `json:"at"`
}

// State is the record threaded through the pipeline. One instance is created
// per run and is exclusively owned by the runner driving that run.
type State struct {
	originalInput         string
	clarifiedQuestion     string
	exploredOptions       []string
	challengedAssumptions []Assumption
	synthesis             string
	stageLog              []LogEntry
}

// New creates a State from the raw decision description. It fails with a
// *ValidationError if the input is empty, whitespace-only, or too short to
// describe a decision.
func New(input string) (*State, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, &ValidationError{Reason: "empty or whitespace-only"}
	}
	if len(trimmed) < MinInputLength {
		return nil, &ValidationError{Reason: fmt.Sprintf("too short (minimum %d characters)", MinInputLength)}
	}
	return &State{originalInput: trimmed}, nil
}

// OriginalInput returns the raw decision description. Immutable once set.
func (s *State) OriginalInput() string {
	return s.originalInput
}

// ClarifiedQuestion returns the clarifier output, or "" if not yet set.
func (s *State) ClarifiedQuestion() string {
	return s.clarifiedQuestion
}

// ExploredOptions returns a copy of the explorer's ordered option list.
func (s *State) ExploredOptions() []string {
	out := make([]string, len(s.exploredOptions))
	copy(out, s.exploredOptions)
	return out
}

// ChallengedAssumptions returns a copy of the challenger's assumption pairs.
func (s *State) ChallengedAssumptions() []Assumption {
	out := make([]Assumption, len(s.challengedAssumptions))
	copy(out, s.challengedAssumptions)
	return out
}

// Synthesis returns the synthesizer output, or "" if not yet set.
func (s *State) Synthesis() string {
	return s.synthesis
}

// StageLog returns a copy of the audit trail, one entry per completed stage.
func (s *State) StageLog() []LogEntry {
	out := make([]LogEntry, len(s.stageLog))
	copy(out, s.stageLog)
	return out
}

// CompletedStages returns how many stages have finished.
func (s *State) CompletedStages() int {
	return len(s.stageLog)
}

// SetClarifiedQuestion sets the clarifier output. Set-once.
func (s *State) SetClarifiedQuestion(q string) error {
	if s.clarifiedQuestion != "" {
		return &InvariantError{Field: "clarified_question", Reason: "already set"}
	}
	if strings.TrimSpace(q) == "" {
		return &InvariantError{Field: "clarified_question", Reason: "empty value"}
	}
	s.clarifiedQuestion = q
	return nil
}

// SetExploredOptions sets the explorer's option list. Set-once, requires the
// clarifier output to be present and at least one option.
func (s *State) SetExploredOptions(options []string) error {
	if s.exploredOptions != nil {
		return &InvariantError{Field: "explored_options", Reason: "already set"}
	}
	if s.clarifiedQuestion == "" {
		return &InvariantError{Field: "explored_options", Reason: "clarified_question not yet set"}
	}
	if len(options) == 0 {
		return &InvariantError{Field: "explored_options", Reason: "empty option list"}
	}
	s.exploredOptions = make([]string, len(options))
	copy(s.exploredOptions, options)
	return nil
}

// SetChallengedAssumptions sets the challenger's assumption pairs. Set-once,
// requires all earlier fields and at least one pair.
func (s *State) SetChallengedAssumptions(pairs []Assumption) error {
	if s.challengedAssumptions != nil {
		return &InvariantError{Field: "challenged_assumptions", Reason: "already set"}
	}
	if s.exploredOptions == nil {
		return &InvariantError{Field: "challenged_assumptions", Reason: "explored_options not yet set"}
	}
	if len(pairs) == 0 {
		return &InvariantError{Field: "challenged_assumptions", Reason: "empty assumption list"}
	}
	s.challengedAssumptions = make([]Assumption, len(pairs))
	copy(s.challengedAssumptions, pairs)
	return nil
}

// SetSynthesis sets the final reflective text. Set-once, requires all earlier
// fields. The text must end with a question mark; directive-phrasing checks
// live in the synthesizer stage, the state only enforces the terminal shape.
func (s *State) SetSynthesis(text string) error {
	if s.synthesis != "" {
		return &InvariantError{Field: "synthesis", Reason: "already set"}
	}
	if s.challengedAssumptions == nil {
		return &InvariantError{Field: "synthesis", Reason: "challenged_assumptions not yet set"}
	}
	trimmed := strings.TrimSpace(text)
	if !strings.HasSuffix(trimmed, "?") {
		return &InvariantError{Field: "synthesis", Reason: "does not end with a question"}
	}
	s.synthesis = text
	return nil
}

// AppendLog appends one stage's raw output to the audit trail. Entries are
// never mutated after append.
func (s *State) AppendLog(stage StageName, raw string) {
	s.stageLog = append(s.stageLog, LogEntry{Stage: stage, Raw: raw, At: time.Now()})
}
