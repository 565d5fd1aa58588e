// Package feedback defines the request/result domain model for one
// interactive feedback session.
package feedback

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrInvalidRequest is returned by Validate when a request is missing
// required fields or points at a nonexistent project directory. No session
// process is spawned for an invalid request.
var ErrInvalidRequest = errors.New("invalid feedback request")

// Request carries the inputs to a feedback session. It is immutable once a
// session starts.
type Request struct {
	ProjectDirectory string   `json:"project_directory"`
	Summary          string   `json:"summary"`
	CurrentFile      string   `json:"current_file,omitempty"`
	Options          []string `json:"options,omitempty"`
}

// Validate checks required fields. ProjectDirectory must name an existing
// directory and Summary must be non-empty.
func (r Request) Validate() error {
	if strings.TrimSpace(r.ProjectDirectory) == "" {
		return fmt.Errorf("%w: project_directory is required", ErrInvalidRequest)
	}
	info, err := os.Stat(r.ProjectDirectory)
	if err != nil {
		return fmt.Errorf("%w: project_directory %q does not exist", ErrInvalidRequest, r.ProjectDirectory)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: project_directory %q is not a directory", ErrInvalidRequest, r.ProjectDirectory)
	}
	if strings.TrimSpace(r.Summary) == "" {
		return fmt.Errorf("%w: summary is required", ErrInvalidRequest)
	}
	return nil
}

// Result is the single payload a session emits. A timeout-triggered result
// is a successful result, not an error: it tells the caller to re-invoke
// rather than treat the interaction as abandoned.
type Result struct {
	InteractiveFeedback string   `json:"interactive_feedback"`
	ImagePaths          []string `json:"image_paths"`
	SelectedOptions     []string `json:"selected_options"`
	TimeoutTriggered    bool     `json:"timeout_triggered"`
}

// FirstLine returns the first line of text with surrounding space trimmed.
// Request fields are single-line by contract; callers normalize with this
// before validation.
func FirstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return strings.TrimSpace(line)
}
