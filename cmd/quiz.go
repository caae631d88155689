package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/quiz"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take a mock test on the command line",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")

		d, err := loadDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		return playQuiz(cmd, d.quiz, subject, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// playQuiz runs one attempt, reading answer letters from in.
func playQuiz(cmd *cobra.Command, e *quiz.Engine, subject string, in io.Reader, out io.Writer) error {
	ctx := cmd.Context()
	if err := e.Start(ctx, subject); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		snap := e.Snapshot()
		if snap.State == quiz.StateComplete || snap.Question == nil {
			break
		}
		q := snap.Question

		fmt.Fprintf(out, "\nQuestion %d of %d\n%s\n", snap.Index+1, snap.Total, q.Prompt)
		for i, opt := range q.Options {
			fmt.Fprintf(out, "  %c) %s\n", 'A'+i, opt)
		}

		option, err := readChoice(scanner, out, q.Options)
		if err != nil {
			return err
		}
		e.SelectAnswer(option)
		if err := e.CheckAnswer(); err != nil {
			return err
		}

		snap = e.Snapshot()
		if snap.Correct {
			fmt.Fprintln(out, "✓ Correct!")
		} else {
			fmt.Fprintf(out, "✗ Incorrect. The answer is: %s\n", q.CorrectOption)
		}
		if q.Explanation != "" {
			fmt.Fprintln(out, q.Explanation)
		}
		e.Advance(ctx)
	}

	r, ok := e.Report()
	if !ok {
		return errors.New("quiz ended without a report")
	}
	printReport(out, r)
	return nil
}

func readChoice(scanner *bufio.Scanner, out io.Writer, options []string) (string, error) {
	for {
		fmt.Fprint(out, "Your answer: ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		line := strings.ToUpper(strings.TrimSpace(scanner.Text()))
		if len(line) == 1 {
			if i := int(line[0] - 'A'); i >= 0 && i < len(options) {
				return options[i], nil
			}
		}
		fmt.Fprintf(out, "Enter a letter from A to %c.\n", 'A'+len(options)-1)
	}
}

func printReport(out io.Writer, r quiz.Report) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Subject:      %s\n", r.Subject)
	fmt.Fprintf(out, "Score:        %s\n", r.Summary())
	fmt.Fprintf(out, "Performance:  %s\n", r.Performance)
	if len(r.WeakAreas) == 0 {
		fmt.Fprintln(out, "Weak areas:   none")
		return
	}
	fmt.Fprintln(out, "Weak areas:")
	for _, w := range r.WeakAreas {
		fmt.Fprintf(out, "  • %s\n", w)
	}
}

func init() {
	quizCmd.Flags().StringP("subject", "s", "", "Quiz subject (default: Computer Science)")
}
