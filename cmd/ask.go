package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/parley/internal/feedback"
	"github.com/fakeyudi/parley/internal/launcher"
)

var (
	askProjectDir  string
	askSummary     string
	askCurrentFile string
	askOptions     []string
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Open a feedback session and print the result as JSON",
	Long: `Opens an interactive feedback session for the given request and waits
for the human to respond. The structured result is printed to stdout as
JSON. If the session's countdown expires first, the result carries
timeout_triggered=true so the caller can re-invoke and keep the channel
alive.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectDir := feedback.FirstLine(askProjectDir)
		if projectDir == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			projectDir = cwd
		}

		req := feedback.Request{
			ProjectDirectory: projectDir,
			Summary:          feedback.FirstLine(askSummary),
			CurrentFile:      feedback.FirstLine(askCurrentFile),
			Options:          askOptions,
		}

		l := &launcher.Launcher{
			TimeoutSeconds: GetConfig().EffectiveTimeout(),
			GraceSeconds:   GetConfig().GraceSeconds,
			WarningSeconds: GetConfig().WarningSeconds,
			UICommand:      GetConfig().UICommand,
			Log:            log,
		}

		res, err := l.Run(cmd.Context(), req)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	askCmd.Flags().StringVar(&askProjectDir, "project-directory", "", "project the feedback concerns (default: cwd)")
	askCmd.Flags().StringVar(&askSummary, "summary", "", "one-line description of what the agent did")
	askCmd.Flags().StringVar(&askCurrentFile, "current-file", "", "file the agent is currently editing")
	askCmd.Flags().StringArrayVar(&askOptions, "option", nil, "offered option (repeatable, order preserved)")
	askCmd.MarkFlagRequired("summary")
	rootCmd.AddCommand(askCmd)
}
