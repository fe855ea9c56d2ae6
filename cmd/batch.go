package cmd

import (
	"bufio"
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Diagnose several error messages separated by blank lines",
	Example: `  gitguy batch --file errors.txt --output json
  cat ci-*.log | gitguy batch --file -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		if path == "" {
			return errors.New("--file is required (\"-\" for stdin)")
		}
		input, err := readFileOrStdin(cmd, path)
		if err != nil {
			return err
		}
		blocks := splitBlocks(input)
		if len(blocks) == 0 {
			return errNoInput
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

		concurrency, _ := cmd.Flags().GetInt("concurrency")
		stop := startSpinner(r.Format, eng.model != "")
		recs := eng.service.DiagnoseBatch(cmd.Context(), blocks, concurrency)
		stop()

		return r.Records(cmd.OutOrStdout(), recs)
	},
}

// continuations start lines git prints after a blank line inside one
// message, e.g. the access-rights note under "Permission denied
// (publickey)".
var continuations = []string{"hint:", "remote:", "please make sure", "and the repository exists"}

func continuesBlock(line string) bool {
	l := strings.ToLower(strings.TrimSpace(line))
	for _, p := range continuations {
		if strings.HasPrefix(l, p) {
			return true
		}
	}
	return false
}

// splitBlocks splits input into error texts separated by one or more
// blank lines. A block starting with a continuation line stays with the
// one before it. Whitespace-only blocks are dropped.
func splitBlocks(input string) []string {
	var blocks []string
	var cur []string
	gap := false
	flush := func() {
		if len(cur) > 0 {
			blocks = append(blocks, strings.Join(cur, "\n"))
			cur = nil
		}
	}

	sc := bufio.NewScanner(strings.NewReader(input))
	sc.Buffer(make([]byte, 0, 64*1024), maxInputSize)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			gap = len(cur) > 0
			continue
		}
		if gap {
			if continuesBlock(line) {
				cur = append(cur, "")
			} else {
				flush()
			}
			gap = false
		}
		cur = append(cur, line)
	}
	flush()
	return blocks
}

func init() {
	batchCmd.Flags().StringP("file", "f", "", "File with error texts separated by blank lines (\"-\" for stdin)")
	batchCmd.Flags().StringP("output", "o", "human", "Output format: human, json or yaml")
	batchCmd.Flags().IntP("concurrency", "c", 4, "Maximum diagnoses in flight")
}
