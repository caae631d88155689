package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/llm"
	"github.com/abhisek/studyhall/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded text generation requests",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent requests, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		since, _ := cmd.Flags().GetDuration("since")

		opts := store.QueryOpts{Limit: limit, Purpose: purpose}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}

		d, err := loadDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		events, err := d.store.QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		return printEvents(cmd.OutOrStdout(), events)
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full prompt and reply of one request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		d, err := loadDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		e, err := d.store.GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}
		printEvent(cmd.OutOrStdout(), e)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize token usage and estimated cost",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		byPurpose, err := store.LLMUsageByPurpose(ctx, d.store)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		byModel, err := store.LLMUsageByModel(ctx, d.store)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		return printUsage(cmd.OutOrStdout(), byPurpose, byModel)
	},
}

func printEvents(out io.Writer, events []store.LLMEvent) error {
	if len(events) == 0 {
		fmt.Fprintln(out, "No LLM events found.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTime\tPurpose\tModel\tIn\tOut\tMs\tOK")
	for _, e := range events {
		ok := "✓"
		if !e.Success {
			ok = "✗"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			e.ID, e.Timestamp.Local().Format(timeLayout), e.Purpose,
			truncate(e.Model, 28), e.InputTokens, e.OutputTokens, e.LatencyMs, ok)
	}
	return tw.Flush()
}

func printEvent(out io.Writer, e *store.LLMEvent) {
	fmt.Fprintf(out, "ID:        %d\n", e.ID)
	fmt.Fprintf(out, "Time:      %s\n", e.Timestamp.Local().Format(timeLayout))
	fmt.Fprintf(out, "Provider:  %s\n", e.Provider)
	fmt.Fprintf(out, "Model:     %s\n", e.Model)
	fmt.Fprintf(out, "Purpose:   %s\n", e.Purpose)
	fmt.Fprintf(out, "Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
	fmt.Fprintf(out, "Latency:   %dms\n", e.LatencyMs)
	fmt.Fprintf(out, "Success:   %v\n", e.Success)
	if e.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:     %s\n", e.ErrorMessage)
	}

	section := func(title, body string) {
		rule := strings.Repeat("─", 60)
		if body == "" {
			body = "(not captured)"
		}
		fmt.Fprintf(out, "\n%s\n%s\n%s\n%s\n", rule, title, rule, strings.TrimRight(body, "\n"))
	}
	section("REQUEST", e.RequestBody)
	section("RESPONSE", e.ResponseBody)
}

func printUsage(out io.Writer, byPurpose []store.PurposeUsage, byModel []store.ModelUsage) error {
	if len(byPurpose) == 0 {
		fmt.Fprintln(out, "No LLM usage recorded yet.")
		return nil
	}

	fmt.Fprintln(out, "Usage by purpose")
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Purpose\tCalls\tInput\tOutput\tTotal\tAvg ms\t")
	var calls, in, outTok int
	for _, u := range byPurpose {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t\n",
			u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.InputTokens+u.OutputTokens, u.AvgLatencyMs)
		calls += u.Calls
		in += u.InputTokens
		outTok += u.OutputTokens
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t%d\t%d\t%d\t\t\n", calls, in, outTok, in+outTok)
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(byModel) == 0 {
		return nil
	}

	fmt.Fprintln(out, "\nEstimated cost (USD)")
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Model\tCalls\tInput\tOutput\tCost\t")
	for _, u := range byModel {
		cost := "?"
		if c := llm.LookupCost(u.Model); c != nil {
			cost = formatCost(c.Cost(u.InputTokens, u.OutputTokens))
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t\n", truncate(u.Model, 32), u.Calls, u.InputTokens, u.OutputTokens, cost)
	}
	total, unknown := llm.EstimateCost(byModel)
	label := "TOTAL"
	if len(unknown) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(tw, "%s\t\t\t\t%s\t\n", label, formatCost(total))
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(unknown) > 0 {
		fmt.Fprintf(out, "\nPricing unavailable for: %s\n", strings.Join(unknown, ", "))
	}
	return nil
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show one purpose (quiz-gen, tutor-reply, tutor-suggestions)")
	llmListCmd.Flags().Duration("since", 0, "Only show events newer than this, e.g. 24h")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
