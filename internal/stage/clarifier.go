package stage

import (
	"regexp"
	"strings"

	"github.com/mull-cli/mull/internal/decision"
)

// Clarifier surfaces what the user is really deciding. It reads only the
// original input and produces the reframed question.
type Clarifier struct {
	template string
}

var realDecisionMarker = regexp.MustCompile(`(?i)THE REAL DECISION:?\s*`)

func (c *Clarifier) Name() decision.StageName {
	return decision.StageClarifier
}

func (c *Clarifier) Prompt(st *decision.State) string {
	return interpolate(c.template, placeholderDecision, st.OriginalInput())
}

func (c *Clarifier) CorrectiveHint() string {
	return `Your previous answer was empty or unusable. You MUST include a section headed "THE REAL DECISION:" followed by 2-3 sentences reframing the decision.`
}

// Parse extracts the reframed decision. If the output contains a
// "THE REAL DECISION" section, that section's text becomes the clarified
// question; otherwise the whole cleaned output is used.
func (c *Clarifier) Parse(raw string) (Result, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return Result{}, &ParseError{Stage: c.Name(), Reason: "empty output"}
	}

	clarified := cleaned
	if loc := realDecisionMarker.FindStringIndex(cleaned); loc != nil {
		reframed := strings.TrimSpace(cleaned[loc[1]:])
		if reframed != "" {
			clarified = reframed
		}
	}

	return Result{
		Stage: c.Name(),
		Raw:   raw,
		apply: func(st *decision.State) error {
			return st.SetClarifiedQuestion(clarified)
		},
	}, nil
}
