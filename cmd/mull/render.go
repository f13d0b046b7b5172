package main

import (
	"fmt"
	"strings"

	"github.com/mull-cli/mull/internal/decision"
)

// renderState formats the accumulated decision state as sectioned text.
// On a failed run only the populated prefix is rendered, so the user still
// sees partial progress.
func renderState(st *decision.State) string {
	var b strings.Builder

	b.WriteString("\n")
	writeRule(&b)
	b.WriteString("YOUR DECISION\n\n")
	b.WriteString(indent(st.OriginalInput()) + "\n")

	if q := st.ClarifiedQuestion(); q != "" {
		writeRule(&b)
		b.WriteString("01 — CLARIFY\n\n")
		b.WriteString(q + "\n")
	}

	if options := st.ExploredOptions(); len(options) > 0 {
		writeRule(&b)
		b.WriteString("02 — EXPLORE\n\n")
		for i, opt := range options {
			fmt.Fprintf(&b, "Option %d: %s\n\n", i+1, opt)
		}
	}

	if pairs := st.ChallengedAssumptions(); len(pairs) > 0 {
		writeRule(&b)
		b.WriteString("03 — CHALLENGE\n\n")
		for i, p := range pairs {
			fmt.Fprintf(&b, "Assumption %d: %q\n%s\n\n", i+1, p.Statement, p.Counter)
		}
	}

	if synthesis := st.Synthesis(); synthesis != "" {
		writeRule(&b)
		b.WriteString("04 — SYNTHESIZE\n\n")
		b.WriteString(synthesis + "\n")
		writeRule(&b)
		b.WriteString("This isn't advice. It's a mirror for your thinking.\nThe decision is yours.\n")
	}

	return b.String()
}

func writeRule(b *strings.Builder) {
	b.WriteString("\n" + strings.Repeat("─", 60) + "\n\n")
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = "  " + lines[i]
	}
	return strings.Join(lines, "\n")
}
