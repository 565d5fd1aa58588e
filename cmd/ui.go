package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/parley/internal/attach"
	"github.com/fakeyudi/parley/internal/countdown"
	"github.com/fakeyudi/parley/internal/feedback"
	"github.com/fakeyudi/parley/internal/prefs"
	"github.com/fakeyudi/parley/internal/tui"
)

var (
	uiProjectDir  string
	uiSummary     string
	uiCurrentFile string
	uiOptions     []string
	uiOutputFile  string
	uiTimeout     int
	uiWarning     int
)

// uiCmd is the session process. It is spawned by `ask` with the request
// fields as flags, runs the interactive front end on the controlling
// terminal, and writes exactly one result payload to the output file.
var uiCmd = &cobra.Command{
	Use:    "ui",
	Short:  "Run the feedback session front end (spawned by ask)",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := feedback.Request{
			ProjectDirectory: uiProjectDir,
			Summary:          uiSummary,
			CurrentFile:      uiCurrentFile,
			Options:          uiOptions,
		}
		if err := req.Validate(); err != nil {
			return err
		}
		if uiOutputFile == "" {
			return fmt.Errorf("--output-file is required")
		}

		// The parent captures our std streams for diagnostics; the front
		// end draws on the controlling terminal instead.
		tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
		if err != nil {
			return fmt.Errorf("cannot open controlling terminal: %w", err)
		}
		defer tty.Close()

		store, err := attach.NewStore(uuid.New().String())
		if err != nil {
			return err
		}
		// Teardown runs on every exit path so no attachment outlives the
		// session.
		defer store.Close()

		clock := countdown.New(
			time.Duration(uiTimeout)*time.Second,
			time.Duration(uiWarning)*time.Second,
		)

		pf, err := prefs.Load(req.ProjectDirectory)
		if err != nil {
			pf = prefs.Defaults()
		}

		res, err := tui.Run(tui.New(req, store, clock, pf), tty, tty)
		if err != nil {
			return fmt.Errorf("feedback session failed: %w", err)
		}

		return feedback.WriteResult(uiOutputFile, res)
	},
}

func init() {
	uiCmd.Flags().StringVar(&uiProjectDir, "project-directory", "", "project the feedback concerns")
	uiCmd.Flags().StringVar(&uiSummary, "summary", "", "one-line description shown to the user")
	uiCmd.Flags().StringVar(&uiCurrentFile, "current-file", "", "file the agent is currently editing")
	uiCmd.Flags().StringArrayVar(&uiOptions, "option", nil, "offered option (repeatable)")
	uiCmd.Flags().StringVar(&uiOutputFile, "output-file", "", "where to write the result JSON")
	uiCmd.Flags().IntVar(&uiTimeout, "timeout", 600, "session countdown budget in seconds")
	uiCmd.Flags().IntVar(&uiWarning, "warning", 120, "countdown warning threshold in seconds")
	rootCmd.AddCommand(uiCmd)
}
