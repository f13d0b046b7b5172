package stage

import (
	"fmt"
	"strings"

	"github.com/mull-cli/mull/internal/decision"
)

// ParseError indicates a stage's model output did not match the structure
// the stage expects. The pipeline may retry the stage once with the stage's
// corrective hint appended to the prompt.
type ParseError struct {
	Stage  decision.StageName
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s output malformed: %s", e.Stage, e.Reason)
}

// Result is the structured delta a stage contributes: the raw model text for
// the stage log plus an apply function that merges the parsed fields.
type Result struct {
	Stage decision.StageName
	Raw   string

	apply func(*decision.State) error
}

// Apply merges the delta into the state and appends the stage log entry.
func (r Result) Apply(st *decision.State) error {
	if err := r.apply(st); err != nil {
		return err
	}
	st.AppendLog(r.Stage, r.Raw)
	return nil
}

// Stage is one reasoning step. Implementations are stateless; the same stage
// value may serve many pipeline runs.
type Stage interface {
	// Name returns the stage identifier.
	Name() decision.StageName

	// Prompt composes the stage prompt from fields already present in the
	// state. It never reads fields set by later stages.
	Prompt(st *decision.State) string

	// Parse converts raw model output into the stage's delta. It is
	// deterministic: the same raw text always yields the same result.
	Parse(raw string) (Result, error)

	// CorrectiveHint is the format reminder appended to the prompt when the
	// pipeline retries the stage after a ParseError.
	CorrectiveHint() string
}

// All returns the four stages in pipeline order, using the given templates.
func All(tmpl Templates) []Stage {
	tmpl = tmpl.merged()
	return []Stage{
		&Clarifier{template: tmpl.Clarifier},
		&Explorer{template: tmpl.Explorer},
		&Challenger{template: tmpl.Challenger},
		&Synthesizer{template: tmpl.Synthesizer},
	}
}

// interpolate substitutes state fields into a template. Values are trimmed so
// templates control their own surrounding whitespace.
func interpolate(template string, pairs ...string) string {
	for i := range pairs {
		if i%2 == 1 {
			pairs[i] = strings.TrimSpace(pairs[i])
		}
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// joinOptions renders the explored options the way the challenger and
// synthesizer prompts expect them.
func joinOptions(options []string) string {
	var b strings.Builder
	for i, opt := range options {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "OPTION %d: %s", i+1, opt)
	}
	return b.String()
}

// joinAssumptions renders the challenged assumptions for the synthesizer
// prompt.
func joinAssumptions(pairs []decision.Assumption) string {
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "ASSUMPTION %d: %q - %s", i+1, p.Statement, p.Counter)
	}
	return b.String()
}
