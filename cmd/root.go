package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gitguy/gitguy/internal/sentry"
)

var rootCmd = &cobra.Command{
	Use:   "gitguy",
	Short: "Diagnose Git and GitHub errors",
	Long: "gitguy explains Git and GitHub error messages: what went wrong, why, and the commands that fix it.\n" +
		"It asks a configured LLM first and falls back to a curated pattern database.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// Execute runs the root command. Failures are reported to Sentry when it
// is configured.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		sentry.CaptureError(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ~/.config/gitguy/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite audit log (overrides store.path and GITGUY_DB)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides log.level)")
	rootCmd.PersistentFlags().Bool("offline", false, "Never call an LLM; use the pattern database only")

	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(conflictCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
