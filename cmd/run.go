package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gitguy/gitguy/internal/app"
	"github.com/gitguy/gitguy/internal/logging"
	"github.com/gitguy/gitguy/internal/store"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	// The TUI owns the terminal, so logs go to a file beside the audit log.
	if logFile, err := e.redirectLog(cmd); err != nil {
		e.log = zap.NewNop()
	} else {
		defer logFile.Close()
	}

	var events store.EventRepo
	st, err := e.openStore(cmd)
	if err != nil {
		e.log.Warn("audit log unavailable", zap.Error(err))
	} else {
		defer st.Close()
		events = st.EventRepo()
	}

	offline, _ := cmd.Flags().GetBool("offline")
	eng, err := e.newEngine(cmd.Context(), events, offline)
	if err != nil {
		return err
	}

	skipIntro, _ := cmd.Flags().GetBool("no-intro")
	return app.Run(app.Deps{
		Service:   eng.service,
		Events:    events,
		Model:     eng.model,
		SkipIntro: skipIntro,
	})
}

// redirectLog replaces the stderr logger with one appending to gitguy.log.
func (e *env) redirectLog(cmd *cobra.Command) (*os.File, error) {
	dbPath, err := e.resolveDBPath(cmd)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(filepath.Dir(dbPath), "gitguy.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log, err := logging.New(logging.Options{Level: e.cfg.Log.Level, Format: "json", Output: f})
	if err != nil {
		f.Close()
		return nil, err
	}
	e.log = log
	return f, nil
}

func init() {
	rootCmd.Flags().Bool("no-intro", false, "Skip the welcome animation")
}
