// Package stage implements the four reasoning stages of the decision
// pipeline: clarifier, explorer, challenger, and synthesizer. Each stage
// composes a deterministic prompt from the fields already present in the
// decision state and parses the raw model output into its structured delta.
package stage

// Placeholders substituted into stage templates. Only fields populated by
// earlier stages are ever interpolated.
const (
	placeholderDecision   = "{decision}"
	placeholderClarified  = "{clarified}"
	placeholderOptions    = "{options}"
	placeholderChallenges = "{challenges}"
)

// Templates holds the prompt template for each stage. Zero-value fields fall
// back to the built-in defaults.
type Templates struct {
	Clarifier   string `yaml:"clarifier"`
	Explorer    string `yaml:"explorer"`
	Challenger  string `yaml:"challenger"`
	Synthesizer string `yaml:"synthesizer"`
}

// DefaultTemplates returns the built-in stage prompts.
func DefaultTemplates() Templates {
	return Templates{
		Clarifier:   clarifierPrompt,
		Explorer:    explorerPrompt,
		Challenger:  challengerPrompt,
		Synthesizer: synthesizerPrompt,
	}
}

// merged returns t with empty fields filled from the defaults.
func (t Templates) merged() Templates {
	def := DefaultTemplates()
	if t.Clarifier == "" {
		t.Clarifier = def.Clarifier
	}
	if t.Explorer == "" {
		t.Explorer = def.Explorer
	}
	if t.Challenger == "" {
		t.Challenger = def.Challenger
	}
	if t.Synthesizer == "" {
		t.Synthesizer = def.Synthesizer
	}
	return t
}

const clarifierPrompt = `You help people discover what they're REALLY deciding.

The surface decision often hides a deeper one. "Should I take this job?" might really be "Do I trust myself to handle change?"

USER'S DECISION: {decision}

Respond with:

PROBING QUESTIONS:
1. [First question that digs deeper]
2. [Second question about what's really at stake]
3. [Third question about underlying fears or hopes]

THE REAL DECISION:
[2-3 sentences reframing what they're actually deciding]`

const explorerPrompt = `You help people see options they haven't considered.

ORIGINAL: {decision}
REFRAMED: {clarified}

Generate 3 alternatives they might have missed. Be creative but realistic.

Respond with:

OPTION 1: [NAME]
[2 sentences on what this looks like and why it might work]

OPTION 2: [NAME]
[2 sentences on what this looks like and why it might work]

OPTION 3: [NAME]
[2 sentences on what this looks like and why it might work]`

const challengerPrompt = `You test assumptions respectfully. You're a thinking partner, not a critic.

DECISION: {decision}
REFRAMED: {clarified}
OPTIONS: {options}

Identify 3 assumptions and challenge each.

Respond with:

ASSUMPTION 1: "[What they assume]"
What if the opposite were true? [Explore this]

ASSUMPTION 2: "[What they assume]"
What if the opposite were true? [Explore this]

ASSUMPTION 3: "[What they assume]"
What if the opposite were true? [Explore this]`

const synthesizerPrompt = `You compile insights WITHOUT telling them what to choose.

CRITICAL: Never say "you should" or "I recommend." End with a question, not advice.

DECISION: {decision}
REFRAMED: {clarified}
OPTIONS: {options}
CHALLENGES: {challenges}

Respond with:

WHAT'S CLEARER NOW:
[2-3 paragraphs synthesizing the key insights]

THE CORE TENSION:
[One sentence capturing what this really comes down to]

A QUESTION TO SIT WITH:
[One powerful question to help them move forward]`
