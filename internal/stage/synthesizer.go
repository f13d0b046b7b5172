package stage

import (
	"fmt"
	"strings"

	"github.com/mull-cli/mull/internal/decision"
)

// Synthesizer compiles the accumulated insights into a reflective closing.
// It reads every prior field and produces the synthesis text, which must end
// in a question and must not tell the user what to choose.
type Synthesizer struct {
	template string
}

// directivePhrases are forbidden in the synthesis. The prompt already warns
// against them; the parser enforces the rule so a drifting model cannot slip
// advice past the pipeline.
var directivePhrases = []string{
	"you should",
	"i recommend",
}

func (s *Synthesizer) Name() decision.StageName {
	return decision.StageSynthesizer
}

func (s *Synthesizer) Prompt(st *decision.State) string {
	return interpolate(s.template,
		placeholderDecision, st.OriginalInput(),
		placeholderClarified, st.ClarifiedQuestion(),
		placeholderOptions, joinOptions(st.ExploredOptions()),
		placeholderChallenges, joinAssumptions(st.ChallengedAssumptions()),
	)
}

func (s *Synthesizer) CorrectiveHint() string {
	return `Your previous answer broke the rules. Do NOT use the phrases "you should" or "I recommend" anywhere. Your final sentence MUST be a question ending with "?". Rewrite your answer accordingly.`
}

// Parse validates the reflective closing: it must be non-empty, end with a
// question mark, and contain no directive phrasing.
func (s *Synthesizer) Parse(raw string) (Result, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return Result{}, &ParseError{Stage: s.Name(), Reason: "empty output"}
	}
	if !strings.HasSuffix(cleaned, "?") {
		return Result{}, &ParseError{Stage: s.Name(), Reason: "does not end with a question"}
	}

	lowered := strings.ToLower(cleaned)
	for _, phrase := range directivePhrases {
		if strings.Contains(lowered, phrase) {
			return Result{}, &ParseError{Stage: s.Name(), Reason: fmt.Sprintf("contains directive phrasing %q", phrase)}
		}
	}

	return Result{
		Stage: s.Name(),
		Raw:   raw,
		apply: func(st *decision.State) error {
			return st.SetSynthesis(cleaned)
		},
	}, nil
}
