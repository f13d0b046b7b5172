package stage

import (
	"regexp"
	"strings"

	"github.com/mull-cli/mull/internal/decision"
)

// Challenger tests the assumptions behind the decision. It reads all prior
// fields and produces assumption/counter pairs.
type Challenger struct {
	template string
}

var assumptionMarker = regexp.MustCompile(`(?mi)^\s*ASSUMPTION\s+\d+\s*:\s*`)

func (c *Challenger) Name() decision.StageName {
	return decision.StageChallenger
}

func (c *Challenger) Prompt(st *decision.State) string {
	return interpolate(c.template,
		placeholderDecision, st.OriginalInput(),
		placeholderClarified, st.ClarifiedQuestion(),
		placeholderOptions, joinOptions(st.ExploredOptions()),
	)
}

func (c *Challenger) CorrectiveHint() string {
	return `Your previous answer did not follow the required format. For each assumption write a section starting with "ASSUMPTION 1:" (then 2, 3, ...) containing the assumed belief in quotes on the first line, followed by an exploration of what happens if the opposite were true. At least one ASSUMPTION section is required.`
}

// Parse pairs each "ASSUMPTION n:" statement with the counter-exploration
// text that follows it. The statement is the marker line (quotes stripped);
// the counter is everything up to the next marker.
func (c *Challenger) Parse(raw string) (Result, error) {
	markers := assumptionMarker.FindAllStringIndex(raw, -1)
	if len(markers) == 0 {
		return Result{}, &ParseError{Stage: c.Name(), Reason: `no "ASSUMPTION n:" sections found`}
	}

	var pairs []decision.Assumption
	for i, loc := range markers {
		end := len(raw)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		block := strings.TrimSpace(raw[loc[1]:end])
		if block == "" {
			continue
		}

		statement := block
		counter := ""
		if idx := strings.IndexByte(block, '\n'); idx >= 0 {
			statement = strings.TrimSpace(block[:idx])
			counter = strings.TrimSpace(block[idx+1:])
		}
		statement = strings.Trim(statement, `"“”`)
		if statement == "" {
			continue
		}
		if counter == "" {
			// Single-line block: the whole line is both claim and challenge.
			counter = statement
		}
		pairs = append(pairs, decision.Assumption{Statement: statement, Counter: counter})
	}
	if len(pairs) == 0 {
		return Result{}, &ParseError{Stage: c.Name(), Reason: "all ASSUMPTION sections were empty"}
	}

	return Result{
		Stage: c.Name(),
		Raw:   raw,
		apply: func(st *decision.State) error {
			return st.SetChallengedAssumptions(pairs)
		},
	}, nil
}
