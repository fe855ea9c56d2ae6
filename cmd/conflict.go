package cmd

import (
	"github.com/spf13/cobra"
)

var conflictCmd = &cobra.Command{
	Use:   "conflict [scenario...]",
	Short: "Walk through resolving a merge conflict",
	Long: `Explain a merge conflict and list the steps, commands and pitfalls for
resolving it. The scenario can be git's own output or a description in
plain words. Without a model, a built-in guide for the kind of conflict
is used.`,
	Example: `  gitguy conflict "CONFLICT (content): Merge conflict in src/app.js"
  git rebase main 2>&1 | gitguy conflict
  gitguy conflict --offline "stash pop conflicts in package-lock.json" --output json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, args)
		if err != nil {
			return err
		}

		r, err := newRenderer(cmd)
		if err != nil {
			return err
		}

		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		offline, _ := cmd.Flags().GetBool("offline")
		events, closeStore := e.auditLog(cmd, offline)
		defer closeStore()

		eng, err := e.newEngine(cmd.Context(), events, offline)
		if err != nil {
			return err
		}

		stop := startSpinner(r.Format, eng.model != "")
		res := eng.service.ResolveConflict(cmd.Context(), text)
		stop()

		return r.Resolution(cmd.OutOrStdout(), res)
	},
}

func init() {
	conflictCmd.Flags().StringP("file", "f", "", "Read the scenario from a file (\"-\" for stdin)")
	conflictCmd.Flags().Bool("paste", false, "Read the scenario from the clipboard")
	conflictCmd.Flags().StringP("output", "o", "human", "Output format: human, json or yaml")
}
