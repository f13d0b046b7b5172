package stage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mull-cli/mull/internal/decision"
)

func newState(t *testing.T) *decision.State {
	t.Helper()
	st, err := decision.New("Should I take the new job offer?")
	require.NoError(t, err)
	return st
}

func TestClarifier_Prompt(t *testing.T) {
	clarifier := &Clarifier{template: DefaultTemplates().Clarifier}
	st := newState(t)

	prompt := clarifier.Prompt(st)
	assert.Contains(t, prompt, "USER'S DECISION: Should I take the new job offer?")
	assert.Contains(t, prompt, "THE REAL DECISION")
	assert.NotContains(t, prompt, placeholderDecision)
}

func TestClarifier_Parse(t *testing.T) {
	clarifier := &Clarifier{template: DefaultTemplates().Clarifier}

	tests := []struct {
		name          string
		raw           string
		wantClarified string
		wantErr       bool
	}{
		{
			name: "real decision section extracted",
			raw: `PROBING QUESTIONS:
1. What scares you about change?
2. What would staying cost you?
3. Whose approval are you seeking?

THE REAL DECISION:
Whether you trust yourself to handle uncertainty.`,
			wantClarified: "Whether you trust yourself to handle uncertainty.",
		},
		{
			name:          "no section marker keeps whole text",
			raw:           "What does career growth mean to you right now?",
			wantClarified: "What does career growth mean to you right now?",
		},
		{
			name:    "empty output",
			raw:     "   \n  ",
			wantErr: true,
		},
		{
			name:          "marker with empty tail keeps whole text",
			raw:           "THE REAL DECISION:",
			wantClarified: "THE REAL DECISION:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := clarifier.Parse(tt.raw)
			if tt.wantErr {
				var parseErr *ParseError
				require.ErrorAs(t, err, &parseErr)
				assert.Equal(t, decision.StageClarifier, parseErr.Stage)
				return
			}
			require.NoError(t, err)

			st := newState(t)
			require.NoError(t, result.Apply(st))
			assert.Equal(t, tt.wantClarified, st.ClarifiedQuestion())
			assert.Equal(t, 1, st.CompletedStages())
		})
	}
}

func TestClarifier_ParseIsDeterministic(t *testing.T) {
	clarifier := &Clarifier{template: DefaultTemplates().Clarifier}
	raw := "THE REAL DECISION:\nWhether you trust yourself."

	first, err := clarifier.Parse(raw)
	require.NoError(t, err)
	second, err := clarifier.Parse(raw)
	require.NoError(t, err)

	stA, stB := newState(t), newState(t)
	require.NoError(t, first.Apply(stA))
	require.NoError(t, second.Apply(stB))
	assert.Equal(t, stA.ClarifiedQuestion(), stB.ClarifiedQuestion())
}

func TestParseError_Message(t *testing.T) {
	err := &ParseError{Stage: decision.StageExplorer, Reason: "no sections"}
	assert.Contains(t, err.Error(), "explorer")
	assert.Contains(t, err.Error(), "no sections")

	var target *ParseError
	assert.True(t, errors.As(error(err), &target))
}
