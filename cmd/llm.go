package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gitguy/gitguy/internal/llm"
	"github.com/gitguy/gitguy/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the LLM request audit log",
}

// withStore runs fn with an open audit log.
func withStore(cmd *cobra.Command, fn func(repo store.EventRepo) error) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	s, err := e.openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(s.EventRepo())
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		since, _ := cmd.Flags().GetDuration("since")

		opts := store.QueryOpts{Limit: limit, Purpose: purpose}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}

		return withStore(cmd, func(repo store.EventRepo) error {
			events, err := repo.ListLLMRequests(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No LLM requests found.")
				return nil
			}

			// Header.
			fmt.Fprintf(out, "%-5s  %-19s  %-16s  %-10s  %-28s  %-6s  %-6s  %-7s  %s\n",
				"Seq", "Timestamp", "Purpose", "Provider", "Model", "In", "Out", "Ms", "OK")
			fmt.Fprintln(out, strings.Repeat("─", 114))

			for _, e := range events {
				ok := "✓"
				if !e.Success {
					ok = "✗"
				}
				fmt.Fprintf(out, "%-5d  %-19s  %-16s  %-10s  %-28s  %-6d  %-6d  %-7d  %s\n",
					e.Sequence,
					e.Timestamp.Local().Format("2006-01-02 15:04:05"),
					truncate(e.Purpose, 16),
					e.Provider,
					truncate(e.Model, 28),
					e.InputTokens,
					e.OutputTokens,
					e.LatencyMs,
					ok,
				)
			}
			return nil
		})
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <seq>",
	Short: "View the full request and response of an LLM request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid sequence number %q: %w", args[0], err)
		}

		return withStore(cmd, func(repo store.EventRepo) error {
			e, err := repo.GetLLMRequest(cmd.Context(), seq)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("request %d not found", seq)
			}
			if err != nil {
				return fmt.Errorf("get event: %w", err)
			}

			out := cmd.OutOrStdout()
			sep := strings.Repeat("─", 60)

			fmt.Fprintf(out, "Seq:       %d\n", e.Sequence)
			fmt.Fprintf(out, "Request:   %s\n", e.RequestID)
			fmt.Fprintf(out, "Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "Provider:  %s\n", e.Provider)
			fmt.Fprintf(out, "Model:     %s\n", e.Model)
			fmt.Fprintf(out, "Purpose:   %s\n", e.Purpose)
			fmt.Fprintf(out, "Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
			fmt.Fprintf(out, "Latency:   %dms\n", e.LatencyMs)
			fmt.Fprintf(out, "Success:   %v\n", e.Success)
			if e.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:     %s\n", e.ErrorMessage)
			}

			for _, part := range []struct{ title, body string }{
				{"REQUEST", e.RequestBody},
				{"RESPONSE", e.ResponseBody},
			} {
				fmt.Fprintln(out)
				fmt.Fprintln(out, sep)
				fmt.Fprintln(out, part.title)
				fmt.Fprintln(out, sep)
				if part.body != "" {
					fmt.Fprintln(out, part.body)
				} else {
					fmt.Fprintln(out, "(not captured)")
				}
			}
			return nil
		})
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage, failures and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		since, _ := cmd.Flags().GetDuration("since")
		var opts store.QueryOpts
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}

		return withStore(cmd, func(repo store.EventRepo) error {
			stats, err := repo.UsageStats(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("query usage: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(stats) == 0 {
				fmt.Fprintln(out, "No LLM usage recorded yet.")
				return nil
			}

			fmt.Fprintln(out, "Usage by Model")
			fmt.Fprintln(out, strings.Repeat("─", 100))
			fmt.Fprintf(out, "%-10s  %-28s  %6s  %6s  %10s  %10s  %8s  %10s\n",
				"Provider", "Model", "Calls", "Failed", "Input", "Output", "Avg Ms", "Cost")
			fmt.Fprintln(out, strings.Repeat("─", 100))

			var totalCalls, totalFailed, totalIn, totalOut int
			var totalCost float64
			var unknownModels []string
			for _, st := range stats {
				costStr := "?"
				if cost := llm.LookupCost(st.Provider, st.Model); cost != nil {
					c := cost.Cost(st.InputTokens, st.OutputTokens)
					totalCost += c
					costStr = formatCost(c)
				} else {
					unknownModels = append(unknownModels, st.Model)
				}
				fmt.Fprintf(out, "%-10s  %-28s  %6d  %6d  %10d  %10d  %8.0f  %10s\n",
					st.Provider, truncate(st.Model, 28), st.Requests, st.Failures,
					st.InputTokens, st.OutputTokens, st.AvgLatencyMs, costStr)
				totalCalls += st.Requests
				totalFailed += st.Failures
				totalIn += st.InputTokens
				totalOut += st.OutputTokens
			}

			fmt.Fprintln(out, strings.Repeat("─", 100))
			label := "TOTAL"
			if len(unknownModels) > 0 {
				label = "TOTAL (partial)"
			}
			fmt.Fprintf(out, "%-40s  %6d  %6d  %10d  %10d  %8s  %10s\n",
				label, totalCalls, totalFailed, totalIn, totalOut, "", formatCost(totalCost))

			if len(unknownModels) > 0 {
				fmt.Fprintf(out, "\nPricing unavailable for: %s\n", strings.Join(unknownModels, ", "))
			}
			return nil
		})
	},
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. error-diagnosis)")
	llmListCmd.Flags().Duration("since", 0, "Only show requests newer than this (e.g. 24h)")
	llmStatsCmd.Flags().Duration("since", 0, "Only count requests newer than this (e.g. 168h)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
