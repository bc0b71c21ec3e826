package convert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()

	assert.Equal(t, "ConvertedCobol", rules.ClassName)
	assert.Equal(t, 50, rules.MinAIOutputLength)
	assert.Contains(t, rules.Keywords, "WORKING-STORAGE")
	assert.Contains(t, rules.SkipPhrases, "here is the converted")
	assert.NotEmpty(t, rules.Prompt)
}

func TestParseRules_MergesDefaults(t *testing.T) {
	rules, err := ParseRules([]byte("keywords: [MOVE, GOBACK]\nmin_ai_output_length: 10\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"MOVE", "GOBACK"}, rules.Keywords)
	assert.Equal(t, 10, rules.MinAIOutputLength)
	assert.Equal(t, "ConvertedCobol", rules.ClassName)
	assert.Equal(t, DefaultRules().Prompt, rules.Prompt)
}

func TestParseRules_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "keywords: [MOVE"},
		{"bad class name", "class_name: 9Lives\n"},
		{"negative length", "min_ai_output_length: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRules([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadRules(t *testing.T) {
	t.Run("empty path uses defaults", func(t *testing.T) {
		rules, err := LoadRules("")
		require.NoError(t, err)
		assert.Equal(t, DefaultRules(), rules)
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte("class_name: Batch\n"), 0644))

		rules, err := LoadRules(path)
		require.NoError(t, err)
		assert.Equal(t, "Batch", rules.ClassName)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRules(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
