package feedback_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fakeyudi/parley/internal/feedback"
)

func validRequest(t *testing.T) feedback.Request {
	t.Helper()
	return feedback.Request{
		ProjectDirectory: t.TempDir(),
		Summary:          "implemented the change",
	}
}

func TestValidate(t *testing.T) {
	req := validRequest(t)
	if err := req.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	missingDir := req
	missingDir.ProjectDirectory = filepath.Join(req.ProjectDirectory, "nope")
	if err := missingDir.Validate(); !errors.Is(err, feedback.ErrInvalidRequest) {
		t.Errorf("missing directory: got %v, want ErrInvalidRequest", err)
	}

	notDir := req
	f := filepath.Join(req.ProjectDirectory, "file")
	os.WriteFile(f, []byte("x"), 0o644)
	notDir.ProjectDirectory = f
	if err := notDir.Validate(); !errors.Is(err, feedback.ErrInvalidRequest) {
		t.Errorf("file as directory: got %v, want ErrInvalidRequest", err)
	}

	noSummary := req
	noSummary.Summary = "   "
	if err := noSummary.Validate(); !errors.Is(err, feedback.ErrInvalidRequest) {
		t.Errorf("blank summary: got %v, want ErrInvalidRequest", err)
	}
}

func TestFirstLine(t *testing.T) {
	cases := map[string]string{
		"one line":             "one line",
		"first\nsecond\nthird": "first",
		"  padded  \nrest":     "padded",
		"":                     "",
	}
	for in, want := range cases {
		if got := feedback.FirstLine(in); got != want {
			t.Errorf("FirstLine(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAssembleAppendsSelectedOptionsInOriginalOrder(t *testing.T) {
	req := validRequest(t)
	req.Options = []string{"A", "B", "C"}

	// Selection order (B then A) must not affect output order.
	res := feedback.Assemble(req, "looks good", map[int]bool{1: true, 0: true}, nil, false)

	want := "looks good\n\n[selected] A\n[selected] B"
	if res.InteractiveFeedback != want {
		t.Errorf("InteractiveFeedback = %q, want %q", res.InteractiveFeedback, want)
	}
	if len(res.SelectedOptions) != 2 || res.SelectedOptions[0] != "A" || res.SelectedOptions[1] != "B" {
		t.Errorf("SelectedOptions = %v, want [A B]", res.SelectedOptions)
	}
	if res.TimeoutTriggered {
		t.Error("TimeoutTriggered = true on a submission")
	}
}

func TestAssembleOptionsWithoutText(t *testing.T) {
	req := validRequest(t)
	req.Options = []string{"keep", "redo"}

	res := feedback.Assemble(req, "", map[int]bool{1: true}, nil, false)
	if res.InteractiveFeedback != "[selected] redo" {
		t.Errorf("InteractiveFeedback = %q", res.InteractiveFeedback)
	}
}

func TestAssembleEmptySubmission(t *testing.T) {
	res := feedback.Assemble(validRequest(t), "", nil, nil, false)

	if res.InteractiveFeedback != "" {
		t.Errorf("InteractiveFeedback = %q, want empty", res.InteractiveFeedback)
	}
	if res.ImagePaths == nil || len(res.ImagePaths) != 0 {
		t.Errorf("ImagePaths = %v, want empty non-nil", res.ImagePaths)
	}
	if len(res.SelectedOptions) != 0 {
		t.Errorf("SelectedOptions = %v, want empty", res.SelectedOptions)
	}
	if res.TimeoutTriggered {
		t.Error("TimeoutTriggered = true")
	}
}

func TestAssembleTimeoutKeepsAccumulatedState(t *testing.T) {
	req := validRequest(t)
	req.Options = []string{"keep"}

	res := feedback.Assemble(req, "partial thought", map[int]bool{0: true}, []string{"/tmp/a.png"}, true)
	if !res.TimeoutTriggered {
		t.Fatal("TimeoutTriggered = false")
	}
	if !strings.Contains(res.InteractiveFeedback, "partial thought") {
		t.Errorf("accumulated text dropped: %q", res.InteractiveFeedback)
	}
	if len(res.ImagePaths) != 1 {
		t.Errorf("ImagePaths = %v", res.ImagePaths)
	}
}

func TestAssembleExpandsFileReferences(t *testing.T) {
	req := validRequest(t)
	path := filepath.Join(req.ProjectDirectory, "svc.go")
	if err := os.WriteFile(path, []byte("alpha\nbeta\ngamma\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res := feedback.Assemble(req, "see @svc.go#2", nil, nil, false)
	if !strings.Contains(res.InteractiveFeedback, "beta") {
		t.Errorf("reference not expanded: %q", res.InteractiveFeedback)
	}
}

func TestResultFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	want := feedback.Result{
		InteractiveFeedback: "ship it",
		ImagePaths:          []string{"/tmp/one.png"},
		SelectedOptions:     []string{"keep"},
	}

	if err := feedback.WriteResult(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := feedback.ReadResult(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.InteractiveFeedback != want.InteractiveFeedback ||
		len(got.ImagePaths) != 1 || got.ImagePaths[0] != want.ImagePaths[0] ||
		len(got.SelectedOptions) != 1 || got.SelectedOptions[0] != want.SelectedOptions[0] ||
		got.TimeoutTriggered != want.TimeoutTriggered {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestReadResultRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := feedback.ReadResult(path); err == nil {
		t.Error("expected error for empty result file")
	}
}
