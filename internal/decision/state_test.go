package decision

import (
	"errors"
	"testing"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid input", input: "Should I take the new job offer?", wantErr: false},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   \n\t  ", wantErr: true},
		{name: "too short", input: "move?", wantErr: true},
		{name: "exactly at minimum", input: "0123456789", wantErr: false},
		{name: "short after trimming", input: "   hi    ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := New(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("New(%q) expected error, got nil", tt.input)
				}
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Errorf("New(%q) error = %T, want *ValidationError", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q) unexpected error: %v", tt.input, err)
			}
			if st.OriginalInput() == "" {
				t.Error("OriginalInput is empty after successful New")
			}
		})
	}
}

func TestNew_TrimsInput(t *testing.T) {
	st, err := New("  Should I move to another city?  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.OriginalInput(); got != "Should I move to another city?" {
		t.Errorf("OriginalInput = %q, want trimmed input", got)
	}
}

func TestState_SetOnce(t *testing.T) {
	st := mustState(t)

	if err := st.SetClarifiedQuestion("What does growth mean to you?"); err != nil {
		t.Fatalf("first SetClarifiedQuestion: %v", err)
	}

	err := st.SetClarifiedQuestion("another question?")
	if err == nil {
		t.Fatal("second SetClarifiedQuestion succeeded, want invariant violation")
	}
	var invErr *InvariantError
	if !errors.As(err, &invErr) {
		t.Fatalf("error = %T, want *InvariantError", err)
	}
	if invErr.Field != "clarified_question" {
		t.Errorf("Field = %q, want clarified_question", invErr.Field)
	}

	// The original value survives the rejected write.
	if got := st.ClarifiedQuestion(); got != "What does growth mean to you?" {
		t.Errorf("ClarifiedQuestion = %q, want original value", got)
	}
}

func TestState_StrictStageOrder(t *testing.T) {
	tests := []struct {
		name string
		set  func(*State) error
	}{
		{
			name: "options before clarified",
			set: func(st *State) error {
				return st.SetExploredOptions([]string{"Accept offer"})
			},
		},
		{
			name: "assumptions before options",
			set: func(st *State) error {
				if err := st.SetClarifiedQuestion("What matters most?"); err != nil {
					return err
				}
				return st.SetChallengedAssumptions([]Assumption{{Statement: "a", Counter: "b"}})
			},
		},
		{
			name: "synthesis before assumptions",
			set: func(st *State) error {
				if err := st.SetClarifiedQuestion("What matters most?"); err != nil {
					return err
				}
				if err := st.SetExploredOptions([]string{"Accept offer"}); err != nil {
					return err
				}
				return st.SetSynthesis("What would you regret not trying?")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := mustState(t)
			err := tt.set(st)
			var invErr *InvariantError
			if !errors.As(err, &invErr) {
				t.Fatalf("error = %v (%T), want *InvariantError", err, err)
			}
		})
	}
}

func TestState_SynthesisMustEndWithQuestion(t *testing.T) {
	st := fullyPopulatedThroughChallenger(t)

	if err := st.SetSynthesis("Here is what is clearer now."); err == nil {
		t.Fatal("SetSynthesis without trailing question mark succeeded")
	}
	if err := st.SetSynthesis("What would you regret not trying?"); err != nil {
		t.Fatalf("SetSynthesis with question: %v", err)
	}
}

func TestState_EmptyDeltasRejected(t *testing.T) {
	st := mustState(t)
	if err := st.SetClarifiedQuestion("   "); err == nil {
		t.Error("empty clarified question accepted")
	}
	if err := st.SetClarifiedQuestion("What matters?"); err != nil {
		t.Fatal(err)
	}
	if err := st.SetExploredOptions(nil); err == nil {
		t.Error("empty option list accepted")
	}
	if err := st.SetExploredOptions([]string{"Stay"}); err != nil {
		t.Fatal(err)
	}
	if err := st.SetChallengedAssumptions(nil); err == nil {
		t.Error("empty assumption list accepted")
	}
}

func TestState_AccessorsReturnCopies(t *testing.T) {
	st := fullyPopulatedThroughChallenger(t)

	options := st.ExploredOptions()
	options[0] = "mutated"
	if st.ExploredOptions()[0] == "mutated" {
		t.Error("ExploredOptions returned a shared slice")
	}

	pairs := st.ChallengedAssumptions()
	pairs[0].Statement = "mutated"
	if st.ChallengedAssumptions()[0].Statement == "mutated" {
		t.Error("ChallengedAssumptions returned a shared slice")
	}
}

func TestState_StageLogAppendOnly(t *testing.T) {
	st := mustState(t)

	st.AppendLog(StageClarifier, "raw clarifier output")
	st.AppendLog(StageExplorer, "raw explorer output")

	log := st.StageLog()
	if len(log) != 2 {
		t.Fatalf("StageLog length = %d, want 2", len(log))
	}
	if log[0].Stage != StageClarifier || log[1].Stage != StageExplorer {
		t.Errorf("StageLog order = %v, %v", log[0].Stage, log[1].Stage)
	}
	if st.CompletedStages() != 2 {
		t.Errorf("CompletedStages = %d, want 2", st.CompletedStages())
	}

	// Mutating the returned copy does not touch the log.
	log[0].Raw = "mutated"
	if st.StageLog()[0].Raw != "raw clarifier output" {
		t.Error("StageLog returned a shared slice")
	}
}

func mustState(t *testing.T) *State {
	t.Helper()
	st, err := New("Should I take the new job offer?")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return st
}

func fullyPopulatedThroughChallenger(t *testing.T) *State {
	t.Helper()
	st := mustState(t)
	if err := st.SetClarifiedQuestion("What does career growth mean to you right now?"); err != nil {
		t.Fatal(err)
	}
	if err := st.SetExploredOptions([]string{"Accept offer", "Negotiate terms", "Decline and stay"}); err != nil {
		t.Fatal(err)
	}
	if err := st.SetChallengedAssumptions([]Assumption{
		{Statement: "More money means more happiness", Counter: "What if stability matters more?"},
	}); err != nil {
		t.Fatal(err)
	}
	return st
}
