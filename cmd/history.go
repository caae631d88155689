package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/quiz"
	"github.com/abhisek/studyhall/internal/tutor"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent conversations and quiz reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		convs, err := d.tutor.History(ctx)
		if err != nil {
			return fmt.Errorf("load conversations: %w", err)
		}
		reports, err := d.reports.List(ctx)
		if err != nil {
			return fmt.Errorf("load quiz reports: %w", err)
		}

		printHistory(cmd.OutOrStdout(), convs, reports)
		return nil
	},
}

func printHistory(out io.Writer, convs []tutor.Summary, reports []quiz.Report) {
	if len(convs) == 0 && len(reports) == 0 {
		fmt.Fprintln(out, "No history yet.")
		return
	}

	if len(convs) > 0 {
		fmt.Fprintln(out, "Conversations")
		fmt.Fprintln(out, strings.Repeat("─", 90))
		fmt.Fprintf(out, "%-36s  %-20s  %-10s  %5s  %s\n", "ID", "Subject", "When", "Msgs", "Last message")
		for _, c := range convs {
			fmt.Fprintf(out, "%-36s  %-20s  %-10s  %5d  %s\n",
				c.ID, truncate(c.Subject, 20), c.Timestamp, c.MessageCount, truncate(c.LastMessage, 40))
		}
	}

	if len(reports) > 0 {
		if len(convs) > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, "Quiz reports")
		fmt.Fprintln(out, strings.Repeat("─", 90))
		fmt.Fprintf(out, "%-16s  %-20s  %-12s  %-16s  %s\n", "Completed", "Subject", "Score", "Performance", "Weak areas")
		for _, r := range reports {
			fmt.Fprintf(out, "%-16s  %-20s  %-12s  %-16s  %d\n",
				r.CompletedAt.Local().Format("2006-01-02 15:04"),
				truncate(r.Subject, 20), r.Summary(), r.Performance, len(r.WeakAreas))
		}
	}
}
