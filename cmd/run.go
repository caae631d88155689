package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/app"
	"github.com/abhisek/studyhall/internal/screens/credential"
	"github.com/abhisek/studyhall/internal/screens/home"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the terminal app (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// runApp builds dependencies and launches the TUI.
func runApp(cmd *cobra.Command) error {
	d, err := loadDeps(cmd, true)
	if err != nil {
		return err
	}
	defer d.Close()

	status := credential.Status(cmd.Context(), d.creds)
	return app.Run(home.Deps{
		Quiz:        d.quiz,
		Tutor:       d.tutor,
		Reports:     d.reports,
		Credentials: d.creds,
		LLMTimeout:  d.gen.Timeout(),
	}, status, d.log)
}
