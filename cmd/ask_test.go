package cmd

import (
	"errors"
	"testing"

	"github.com/fakeyudi/parley/internal/feedback"
)

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestAskRequiresSummary(t *testing.T) {
	if err := runCommand(t, "ask"); err == nil {
		t.Error("expected an error when --summary is missing")
	}
}

func TestAskRejectsMissingProjectDirectory(t *testing.T) {
	err := runCommand(t, "ask",
		"--summary", "done",
		"--project-directory", t.TempDir()+"/does-not-exist")
	if !errors.Is(err, feedback.ErrInvalidRequest) {
		t.Errorf("got %v, want ErrInvalidRequest", err)
	}
}
