package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gitguy/gitguy/internal/render"
	"github.com/gitguy/gitguy/internal/store"
)

// maxInputSize bounds error text read from files and stdin.
const maxInputSize = 1 << 20

var errNoInput = errors.New("no error text: pass it as arguments, with --file or --paste, or pipe it on stdin")

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose [error text...]",
	Short: "Diagnose a Git or GitHub error message",
	Example: `  gitguy diagnose "fatal: refusing to merge unrelated histories"
  git push 2>&1 | gitguy diagnose
  gitguy diagnose --file push.log --output json`,
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
		rec := eng.service.Diagnose(cmd.Context(), text)
		stop()

		return r.Record(cmd.OutOrStdout(), rec)
	},
}

// readInput takes error text from args, --file, --paste or piped stdin,
// in that order.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		return readFileOrStdin(cmd, path)
	}
	if paste, _ := cmd.Flags().GetBool("paste"); paste {
		text, err := clipboard.ReadAll()
		if err != nil {
			return "", fmt.Errorf("read clipboard: %w", err)
		}
		return text, nil
	}
	if f, ok := cmd.InOrStdin().(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return "", errNoInput
	}
	return readAll(cmd.InOrStdin())
}

// readFileOrStdin reads path, where "-" is stdin.
func readFileOrStdin(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		return readAll(cmd.InOrStdin())
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return readAll(f)
}

func readAll(r io.Reader) (string, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxInputSize+1))
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	if len(b) > maxInputSize {
		return "", fmt.Errorf("input too large (max %d bytes)", maxInputSize)
	}
	return string(b), nil
}

// newRenderer builds a renderer from --output. Color follows the terminal
// and NO_COLOR.
func newRenderer(cmd *cobra.Command) (render.Renderer, error) {
	out, _ := cmd.Flags().GetString("output")
	format, err := render.ParseFormat(out)
	if err != nil {
		return render.Renderer{}, err
	}
	return render.Renderer{
		Format: format,
		Color:  !color.NoColor && isTerminal(cmd.OutOrStdout()),
		Width:  80,
	}, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// startSpinner shows progress on stderr while a model call runs. It is a
// no-op for machine-readable output or when stderr is not a terminal.
func startSpinner(format render.Format, online bool) (stop func()) {
	if !online || format != render.FormatHuman || !isatty.IsTerminal(os.Stderr.Fd()) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " Diagnosing..."
	s.Start()
	return s.Stop
}

// auditLog opens the LLM audit log for commands that may call a model.
// Failures are logged; diagnosis works without it.
func (e *env) auditLog(cmd *cobra.Command, offline bool) (store.EventRepo, func()) {
	if offline {
		return nil, func() {}
	}
	st, err := e.openStore(cmd)
	if err != nil {
		e.log.Warn("audit log unavailable", zap.Error(err))
		return nil, func() {}
	}
	return st.EventRepo(), func() { st.Close() }
}

func init() {
	diagnoseCmd.Flags().StringP("file", "f", "", "Read error text from a file (\"-\" for stdin)")
	diagnoseCmd.Flags().Bool("paste", false, "Read error text from the clipboard")
	diagnoseCmd.Flags().StringP("output", "o", "human", "Output format: human, json or yaml")
}
