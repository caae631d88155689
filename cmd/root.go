package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "studyhall",
	Short: "Mock tests and an AI tutor in your terminal",
	Long:  "Studyhall runs subject mock tests and AI tutoring conversations, from the terminal or over HTTP.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, which is cancelled on
// interrupt by main.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database DSN or SQLite file path (overrides store.dsn)")
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (default: ./studyhall.yaml)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(tutorCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(credentialCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}
