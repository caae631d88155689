package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/tutor"
)

var tutorCmd = &cobra.Command{
	Use:   "tutor",
	Short: "Talk to the AI tutor",
}

var tutorSubjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "List tutoring subjects",
	Run: func(cmd *cobra.Command, args []string) {
		for _, s := range tutor.Subjects() {
			fmt.Fprintln(cmd.OutOrStdout(), s)
		}
	},
}

var tutorAskCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the tutor a single question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		resume, _ := cmd.Flags().GetString("resume")

		d, err := loadDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		return askTutor(cmd, d.tutor, subject, resume, strings.Join(args, " "))
	},
}

func askTutor(cmd *cobra.Command, e *tutor.Engine, subject, resume, question string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var s tutor.Session
	if resume != "" {
		s = e.ResumeSession(ctx, resume)
	} else {
		s = e.StartSession(ctx, subject)
	}

	if !e.SendMessage(ctx, question) {
		return errors.New("question is empty")
	}

	cur, _ := e.Current()
	reply := cur.Messages[len(cur.Messages)-1]
	fmt.Fprintf(out, "[%s] %s\n\n%s\n", s.Subject, reply.Time, reply.Text)

	if len(cur.Suggestions) > 0 {
		fmt.Fprintln(out, "\nTry asking:")
		for _, sug := range cur.Suggestions {
			fmt.Fprintf(out, "  • %s\n", sug)
		}
	}
	fmt.Fprintf(out, "\nSession: %s\n", cur.ID)
	return nil
}

func init() {
	tutorAskCmd.Flags().StringP("subject", "s", "", "Subject to study (default: General)")
	tutorAskCmd.Flags().String("resume", "", "Continue the conversation with this session ID")

	tutorCmd.AddCommand(tutorSubjectsCmd)
	tutorCmd.AddCommand(tutorAskCmd)
}
