package stage

import (
	"regexp"
	"strings"

	"github.com/mull-cli/mull/internal/decision"
)

// Explorer generates alternatives the user has not considered. It reads the
// original input and the clarified question, and produces the ordered option
// list.
type Explorer struct {
	template string
}

var optionMarker = regexp.MustCompile(`(?mi)^\s*OPTION\s+\d+\s*:\s*`)

func (e *Explorer) Name() decision.StageName {
	return decision.StageExplorer
}

func (e *Explorer) Prompt(st *decision.State) string {
	return interpolate(e.template,
		placeholderDecision, st.OriginalInput(),
		placeholderClarified, st.ClarifiedQuestion(),
	)
}

func (e *Explorer) CorrectiveHint() string {
	return `Your previous answer did not follow the required format. List each alternative on its own section starting with "OPTION 1:", "OPTION 2:", and so on. At least one OPTION section is required.`
}

// Parse splits the output on "OPTION n:" markers into an ordered list.
// Each option keeps its title line and body as one entry.
func (e *Explorer) Parse(raw string) (Result, error) {
	markers := optionMarker.FindAllStringIndex(raw, -1)
	if len(markers) == 0 {
		return Result{}, &ParseError{Stage: e.Name(), Reason: `no "OPTION n:" sections found`}
	}

	var options []string
	for i, loc := range markers {
		end := len(raw)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		body := strings.TrimSpace(raw[loc[1]:end])
		if body != "" {
			options = append(options, body)
		}
	}
	if len(options) == 0 {
		return Result{}, &ParseError{Stage: e.Name(), Reason: "all OPTION sections were empty"}
	}

	return Result{
		Stage: e.Name(),
		Raw:   raw,
		apply: func(st *decision.State) error {
			return st.SetExploredOptions(options)
		},
	}, nil
}
