package domain

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDefinitions(t *testing.T) {
	defs := DefaultDefinitions()

	require.Contains(t, defs, SequenceWelcome)
	require.Contains(t, defs, SequenceOnboarding)
	require.Contains(t, defs, SequenceUpgrade)

	for name, seq := range defs {
		assert.Equal(t, name, seq.Name)
		require.NoError(t, validateSequence(seq))
	}

	// Onboarding waits for the first digest milestone.
	for _, step := range defs[SequenceOnboarding].Steps {
		assert.Equal(t, AnchorFirstDigest, step.Anchor)
	}
}

func TestSequenceStepLookup(t *testing.T) {
	seq := DefaultDefinitions()[SequenceWelcome]

	assert.Equal(t, "welcome-1", seq.Step(1).ContentID)
	assert.Equal(t, "welcome-3", seq.Step(3).ContentID)
	assert.Nil(t, seq.Step(0))
	assert.Nil(t, seq.Step(4))
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sequences.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefinitionsFromFile(t *testing.T) {
	path := writeTempFile(t, `
sequences:
  - name: winback
    steps:
      - content_id: winback-1
        subject: "We miss you"
        body: "Come back"
        anchor: entered
        offset: 3d
      - content_id: winback-2
        subject: "Still around?"
        body: "One more try"
        anchor: first_digest
        offset: 12h
`)

	defs, err := LoadDefinitions(path)
	require.NoError(t, err)
	require.Contains(t, defs, "winback")

	seq := defs["winback"]
	require.Len(t, seq.Steps, 2)
	assert.Equal(t, 3*24*time.Hour, seq.Steps[0].Offset.Duration())
	assert.Equal(t, AnchorEntered, seq.Steps[0].Anchor)
	assert.Equal(t, 12*time.Hour, seq.Steps[1].Offset.Duration())
	assert.Equal(t, AnchorFirstDigest, seq.Steps[1].Anchor)
}

func TestLoadDefinitionsRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "unknown anchor",
			content: `
sequences:
  - name: bad
    steps:
      - content_id: x
        anchor: signup
        offset: 1d
`,
		},
		{
			name: "missing content id",
			content: `
sequences:
  - name: bad
    steps:
      - anchor: entered
        offset: 1d
`,
		},
		{
			name: "no steps",
			content: `
sequences:
  - name: bad
    steps: []
`,
		},
		{
			name: "duplicate name",
			content: `
sequences:
  - name: dup
    steps:
      - {content_id: a, anchor: entered, offset: 1d}
  - name: dup
    steps:
      - {content_id: b, anchor: entered, offset: 1d}
`,
		},
		{
			name: "bad offset",
			content: `
sequences:
  - name: bad
    steps:
      - {content_id: a, anchor: entered, offset: soon}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDefinitions(writeTempFile(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadDefinitionsEmptyPathUsesDefaults(t *testing.T) {
	defs, err := LoadDefinitions("")
	require.NoError(t, err)
	assert.Contains(t, defs, SequenceWelcome)
}
