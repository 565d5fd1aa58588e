// Package diag implements the operator-facing health probe. It reports
// whether the runtime pieces a feedback session needs are present; it has no
// feedback semantics of its own.
package diag

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/charmbracelet/x/term"

	"github.com/fakeyudi/parley/internal/config"
)

// Probe returns a component → status map for troubleshooting.
func Probe(cfg config.Config) map[string]string {
	checks := map[string]string{
		"go_runtime":      runtime.Version(),
		"timeout_seconds": strconv.Itoa(cfg.EffectiveTimeout()),
		"warning_seconds": strconv.Itoa(cfg.WarningSeconds),
		"grace_seconds":   strconv.Itoa(cfg.GraceSeconds),
	}

	if self, err := os.Executable(); err == nil {
		if _, statErr := os.Stat(self); statErr == nil {
			checks["session_binary"] = "ok: " + self
		} else {
			checks["session_binary"] = "missing: " + self
		}
	} else {
		checks["session_binary"] = "unresolved: " + err.Error()
	}

	if term.IsTerminal(os.Stdout.Fd()) {
		checks["terminal"] = "interactive"
	} else {
		checks["terminal"] = "not a tty"
	}

	checks["temp_dir"] = probeTempDir()

	return checks
}

// probeTempDir verifies attachment files can be created.
func probeTempDir() string {
	f, err := os.CreateTemp("", "parley-doctor-*")
	if err != nil {
		return fmt.Sprintf("not writable: %v", err)
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return "writable: " + os.TempDir()
}
