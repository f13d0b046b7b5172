package stage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mull-cli/mull/internal/decision"
)

func TestLoadTemplates(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		tmpl, err := LoadTemplates("")
		require.NoError(t, err)
		assert.Equal(t, DefaultTemplates(), tmpl)
	})

	t.Run("missing file returns defaults", func(t *testing.T) {
		tmpl, err := LoadTemplates(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultTemplates(), tmpl)
	})

	t.Run("partial override keeps other defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prompts.yaml")
		content := "clarifier: |\n  Custom clarifier for {decision}\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		tmpl, err := LoadTemplates(path)
		require.NoError(t, err)
		assert.Equal(t, "Custom clarifier for {decision}\n", tmpl.Clarifier)
		assert.Equal(t, DefaultTemplates().Explorer, tmpl.Explorer)
		assert.Equal(t, DefaultTemplates().Challenger, tmpl.Challenger)
		assert.Equal(t, DefaultTemplates().Synthesizer, tmpl.Synthesizer)
	})

	t.Run("malformed yaml errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prompts.yaml")
		require.NoError(t, os.WriteFile(path, []byte("clarifier: [unclosed"), 0644))

		_, err := LoadTemplates(path)
		assert.Error(t, err)
	})
}

func TestAll_OrderMatchesPipeline(t *testing.T) {
	stages := All(Templates{})
	require.Len(t, stages, len(decision.StageOrder))
	for i, stg := range stages {
		assert.Equal(t, decision.StageOrder[i], stg.Name())
	}
}

func TestLibrary_ServesOverriddenTemplates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("clarifier: \"Ask about {decision}\"\n"), 0644))

	lib, err := NewLibrary(path)
	require.NoError(t, err)
	defer lib.Close()

	st, err := decision.New("Should I take the new job offer?")
	require.NoError(t, err)

	stages := lib.Stages()
	require.Len(t, stages, 4)
	assert.Equal(t, "Ask about Should I take the new job offer?", stages[0].Prompt(st))
}

func TestLibrary_NoPathUsesDefaults(t *testing.T) {
	lib, err := NewLibrary("")
	require.NoError(t, err)
	defer lib.Close()

	stages := lib.Stages()
	require.Len(t, stages, 4)
	assert.Equal(t, decision.StageClarifier, stages[0].Name())
}
