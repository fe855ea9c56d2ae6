package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gitguy/gitguy/internal/diagnosis"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Inspect and test the error pattern database",
}

var patternsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known error patterns",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := patternDatabase(cmd)
		if err != nil {
			return err
		}
		category, _ := cmd.Flags().GetString("category")
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "Pattern database %s (%d patterns)\n\n", db.Version(), db.Len())
		fmt.Fprintf(out, "%-36s  %-22s  %-8s  %s\n", "ID", "Category", "Severity", "Summary")
		fmt.Fprintln(out, strings.Repeat("─", 100))

		shown := 0
		for _, e := range db.Entries() {
			if category != "" && !strings.EqualFold(string(e.Category), category) {
				continue
			}
			fmt.Fprintf(out, "%-36s  %-22s  %-8s  %s\n",
				truncate(e.ID, 36), e.Category, e.Severity, truncate(e.Summary, 60))
			shown++
		}
		if shown == 0 {
			fmt.Fprintln(out, "No patterns found.")
		}
		return nil
	},
}

var patternsMatchCmd = &cobra.Command{
	Use:   "match <error text...>",
	Short: "Show which patterns match an error message, best first",
	Long: "Runs the offline matcher only and prints every matching pattern in ranking order:\n" +
		"longest match, then earliest position, then highest severity, then database order.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := patternDatabase(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		normalized := diagnosis.Normalize(strings.Join(args, " "))
		fmt.Fprintf(out, "Normalized: %s\n\n", normalized)

		hits := diagnosis.NewMatcher(db).MatchAll(normalized)
		if len(hits) == 0 {
			fmt.Fprintln(out, "No pattern matched; diagnosis would be Unknown.")
			return nil
		}

		fmt.Fprintf(out, "%-4s  %-36s  %5s  %5s  %-8s\n", "Rank", "ID", "Len", "Pos", "Severity")
		fmt.Fprintln(out, strings.Repeat("─", 68))
		for i, h := range hits {
			fmt.Fprintf(out, "%-4d  %-36s  %5d  %5d  %-8s\n",
				i+1, truncate(h.Entry.ID, 36), h.Score, h.Position, h.Entry.Severity)
		}
		return nil
	},
}

var patternsValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a pattern file against the schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := diagnosis.LoadDatabaseFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (version %s, %d patterns)\n", args[0], db.Version(), db.Len())
		return nil
	},
}

// patternDatabase returns the configured database or the embedded one.
func patternDatabase(cmd *cobra.Command) (*diagnosis.Database, error) {
	e, err := newEnv(cmd)
	if err != nil {
		return nil, err
	}
	defer e.Close()

	db, err := e.loadDatabase()
	if err != nil {
		return nil, err
	}
	if db == nil {
		db = diagnosis.DefaultDatabase()
	}
	return db, nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func init() {
	patternsListCmd.Flags().String("category", "", "Only list patterns in this category (e.g. Network)")

	patternsCmd.AddCommand(patternsListCmd)
	patternsCmd.AddCommand(patternsMatchCmd)
	patternsCmd.AddCommand(patternsValidateCmd)
}
