// Package launcher spawns and supervises the session process for one
// feedback request. Each call is an independent session: one child process,
// one result payload, no reuse.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/fakeyudi/parley/internal/feedback"
)

// ErrOrchestratorTimeout is returned when the child produced no result
// within the session timeout plus the grace margin and was force-killed.
// Distinct from a timeout_triggered result, which is a success.
var ErrOrchestratorTimeout = errors.New("feedback session exceeded orchestrator deadline")

// LaunchError means the session process failed to start or exited abnormally
// before producing a result. Output carries the captured stdout/stderr text
// so a missing dependency can be told apart from a crash.
type LaunchError struct {
	ExitCode int
	Output   string
	Err      error
}

func (e *LaunchError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("failed to launch feedback session (exit code %d): %s", e.ExitCode, e.Output)
	}
	return fmt.Sprintf("failed to launch feedback session (exit code %d): %v", e.ExitCode, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Launcher runs feedback sessions as child processes.
type Launcher struct {
	// TimeoutSeconds is the session's own countdown budget, passed to the
	// child. GraceSeconds is added on top for the orchestrator's wall-clock
	// bound, giving the session room to finish its own expiry handling.
	TimeoutSeconds int
	GraceSeconds   int
	WarningSeconds int

	// UICommand overrides the child argv prefix. Empty means re-exec the
	// current binary with the "ui" subcommand.
	UICommand []string

	Log zerolog.Logger
}

// captureLimit bounds each captured child stream.
const captureLimit = 64 * 1024

// boundedBuffer keeps the first captureLimit bytes written and drops the
// rest, so a chatty child cannot grow the diagnostic buffers without bound.
type boundedBuffer struct {
	buf       []byte
	truncated bool
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	room := captureLimit - len(b.buf)
	if room > 0 {
		if len(p) <= room {
			b.buf = append(b.buf, p...)
		} else {
			b.buf = append(b.buf, p[:room]...)
			b.truncated = true
		}
	} else if len(p) > 0 {
		b.truncated = true
	}
	return len(p), nil
}

func (b *boundedBuffer) String() string {
	if b.truncated {
		return string(b.buf) + "\n[output truncated]"
	}
	return string(b.buf)
}

// Run validates req, spawns the session process and waits for its result.
// Returns a Result (which may carry timeout_triggered=true), or one of
// feedback.ErrInvalidRequest, *LaunchError, ErrOrchestratorTimeout. A
// caller-cancelled context surfaces as a wrapped context.Canceled instead
// of ErrOrchestratorTimeout.
func (l *Launcher) Run(ctx context.Context, req feedback.Request) (feedback.Result, error) {
	if err := req.Validate(); err != nil {
		return feedback.Result{}, err
	}

	out, err := os.CreateTemp("", "parley-result-*.json")
	if err != nil {
		return feedback.Result{}, fmt.Errorf("creating result file: %w", err)
	}
	outputFile := out.Name()
	out.Close()
	defer os.Remove(outputFile)

	argv, err := l.argv(req, outputFile)
	if err != nil {
		return feedback.Result{}, err
	}

	deadline := time.Duration(l.TimeoutSeconds+l.GraceSeconds) * time.Second
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	var stdout, stderr boundedBuffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Stdin stays /dev/null: the session front end opens the controlling
	// tty itself, keeping both std streams free for diagnostics.

	// The child runs in its own process group and the whole group is killed
	// on deadline, so a grandchild holding the diagnostic pipes cannot keep
	// Run blocked past the bound. WaitDelay is the backstop for anything that
	// survives the group kill.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 2 * time.Second

	l.Log.Debug().
		Str("project_directory", req.ProjectDirectory).
		Int("timeout_seconds", l.TimeoutSeconds).
		Int("grace_seconds", l.GraceSeconds).
		Msg("spawning feedback session")

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			// The caller withdrew, not the deadline.
			l.Log.Warn().Dur("elapsed", elapsed).Msg("feedback session cancelled by caller")
			return feedback.Result{}, fmt.Errorf("feedback session cancelled: %w", ctx.Err())
		}
		// The child was force-killed after the grace margin with no result.
		l.Log.Warn().Dur("elapsed", elapsed).Msg("feedback session force-killed")
		return feedback.Result{}, ErrOrchestratorTimeout
	}

	if runErr != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		l.Log.Error().Int("exit_code", exitCode).Msg("feedback session exited abnormally")
		return feedback.Result{}, &LaunchError{
			ExitCode: exitCode,
			Output:   diagnosticText(&stdout, &stderr),
			Err:      runErr,
		}
	}

	res, err := feedback.ReadResult(outputFile)
	if err != nil {
		// Clean exit but no payload: still a launch failure from the
		// caller's perspective.
		return feedback.Result{}, &LaunchError{
			ExitCode: 0,
			Output:   diagnosticText(&stdout, &stderr),
			Err:      err,
		}
	}

	l.Log.Debug().
		Dur("elapsed", elapsed).
		Bool("timeout_triggered", res.TimeoutTriggered).
		Int("images", len(res.ImagePaths)).
		Msg("feedback session completed")
	return res, nil
}

// argv builds the child command line from the request fields.
func (l *Launcher) argv(req feedback.Request, outputFile string) ([]string, error) {
	prefix := l.UICommand
	if len(prefix) == 0 {
		self, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locating session binary: %w", err)
		}
		prefix = []string{self, "ui"}
	}

	argv := append([]string{}, prefix...)
	argv = append(argv,
		"--project-directory", req.ProjectDirectory,
		"--summary", req.Summary,
		"--output-file", outputFile,
		"--timeout", strconv.Itoa(l.TimeoutSeconds),
		"--warning", strconv.Itoa(l.WarningSeconds),
	)
	if req.CurrentFile != "" {
		argv = append(argv, "--current-file", req.CurrentFile)
	}
	for _, opt := range req.Options {
		argv = append(argv, "--option", opt)
	}
	return argv, nil
}

// diagnosticText merges the captured streams, stderr first since launch
// failures usually report there.
func diagnosticText(stdout, stderr *boundedBuffer) string {
	errText := stderr.String()
	outText := stdout.String()
	switch {
	case errText != "" && outText != "":
		return errText + "\n" + outText
	case errText != "":
		return errText
	default:
		return outText
	}
}
