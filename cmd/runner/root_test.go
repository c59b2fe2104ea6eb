package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with args and returns the resulting error. The flag
// checks under test all fire before the application graph is wired, so no
// database is needed.
func execute(args ...string) error {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestGenerateDigestsRejectsDryRun(t *testing.T) {
	err := execute("generate-digests", "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no dry-run mode")
}

func TestSyncRejectsDryRun(t *testing.T) {
	err := execute("sync", "--source", "vault", "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no dry-run mode")
}

func TestSyncRequiresKnownSource(t *testing.T) {
	err := execute("sync", "--source", "dropbox")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pages or vault")
}

func TestNowFlagMustBeRFC3339(t *testing.T) {
	err := execute("generate-digests", "--now", "yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RFC3339")
}
