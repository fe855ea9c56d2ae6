package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/gitguy/gitguy/internal/diagnosis"
	"github.com/gitguy/gitguy/internal/render"
)

// version is set via -ldflags at build time.
var version = "(devel)"

type versionInfo struct {
	Version  string `json:"version" yaml:"version"`
	Commit   string `json:"commit,omitempty" yaml:"commit,omitempty"`
	Go       string `json:"go" yaml:"go"`
	Patterns string `json:"patterns" yaml:"patterns"`
	Count    int    `json:"pattern_count" yaml:"pattern_count"`
}

func currentVersion() versionInfo {
	db := diagnosis.DefaultDatabase()
	info := versionInfo{
		Version:  version,
		Go:       runtime.Version(),
		Patterns: db.Version(),
		Count:    db.Len(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 12 {
				info.Commit = s.Value[:12]
			}
		}
	}
	return info
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gitguy and pattern database versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRenderer(cmd)
		if err != nil {
			return err
		}
		info := currentVersion()
		if r.Format != render.FormatHuman {
			return r.Value(cmd.OutOrStdout(), info)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "gitguy", info.Version)
		if info.Commit != "" {
			fmt.Fprintln(out, "commit", info.Commit)
		}
		fmt.Fprintf(out, "patterns %s (%d entries)\n", info.Patterns, info.Count)
		fmt.Fprintln(out, "go", info.Go)
		return nil
	},
}

func init() {
	versionCmd.Flags().StringP("output", "o", "human", "Output format: human, json or yaml")
}
