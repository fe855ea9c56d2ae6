package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gitguy/gitguy/internal/config"
	"github.com/gitguy/gitguy/internal/diagnosis"
	"github.com/gitguy/gitguy/internal/llm"
	"github.com/gitguy/gitguy/internal/logging"
	"github.com/gitguy/gitguy/internal/redact"
	"github.com/gitguy/gitguy/internal/repoctx"
	"github.com/gitguy/gitguy/internal/sentry"
	"github.com/gitguy/gitguy/internal/store"
)

// env holds what every command needs: configuration, a logger and the
// Sentry flush hook.
type env struct {
	cfg   *config.Config
	log   *zap.Logger
	flush func()
}

// newEnv loads configuration and sets up logging and error reporting.
func newEnv(cmd *cobra.Command) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	log, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	flush := sentry.Init(sentry.Options{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		Version:     version,
	})
	sentry.SetTag("command", cmd.Name())

	return &env{cfg: cfg, log: log, flush: flush}, nil
}

// Close flushes buffered logs and error reports.
func (e *env) Close() {
	_ = e.log.Sync()
	e.flush()
}

// resolveDBPath returns the audit log path using --db (highest priority),
// then store.path, then GITGUY_DB and the default XDG path.
func (e *env) resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if p := e.cfg.Store.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the audit log.
func (e *env) openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := e.resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(cmd.Context(), dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if keep := e.cfg.Store.Retention; keep > 0 {
		n, err := s.EventRepo().Prune(cmd.Context(), time.Now().Add(-keep))
		if err != nil {
			e.log.Warn("pruning audit log failed", zap.Error(err))
		} else if n > 0 {
			e.log.Debug("pruned audit log", zap.Int64("events", n), zap.Duration("retention", keep))
		}
	}
	return s, nil
}

// loadDatabase returns the configured pattern database, or nil for the
// embedded one.
func (e *env) loadDatabase() (*diagnosis.Database, error) {
	if e.cfg.Patterns.File == "" {
		return nil, nil
	}
	db, err := diagnosis.LoadDatabaseFile(e.cfg.Patterns.File)
	if err != nil {
		return nil, fmt.Errorf("load patterns.file: %w", err)
	}
	return db, nil
}

// engine is a ready diagnosis service and a label for the model behind it.
type engine struct {
	service *diagnosis.Service
	// model is "provider/model", or "" when running offline.
	model string
}

// newEngine builds the diagnosis service. A provider that cannot be
// created is logged and the engine runs offline; events may be nil.
func (e *env) newEngine(ctx context.Context, events store.EventRepo, offline bool) (*engine, error) {
	db, err := e.loadDatabase()
	if err != nil {
		return nil, err
	}

	opts := []diagnosis.Option{
		diagnosis.WithLogger(e.log),
		diagnosis.WithObserver(sentry.FallbackObserver{}),
		diagnosis.WithDiagnoserConfig(diagnosis.DiagnoserConfig{
			MaxTokens:   e.cfg.LLM.MaxTokens,
			Temperature: e.cfg.LLM.Temperature,
		}),
	}
	if e.cfg.Redact.Enabled {
		opts = append(opts, diagnosis.WithRedactor(redact.New()))
	}
	if e.cfg.RepoContext.Enabled {
		if wd, err := os.Getwd(); err == nil {
			opts = append(opts, diagnosis.WithRepoDescriber(repoctx.NewDescriber(wd)))
		}
	}

	var provider llm.Provider
	var model string
	if lc, ok := e.cfg.LLMSettings(); ok && !offline {
		p, err := llm.NewProvider(ctx, lc, events, e.log)
		if err != nil {
			e.log.Warn("LLM provider unavailable, running offline", zap.Error(err))
		} else {
			provider = p
			model = lc.Provider + "/" + lc.Model()
			opts = append(opts, diagnosis.WithTimeout(lc.Timeout))
		}
	}
	sentry.SetTag("llm", providerTag(model))

	return &engine{
		service: diagnosis.NewService(provider, db, opts...),
		model:   model,
	}, nil
}

func providerTag(model string) string {
	if model == "" {
		return "offline"
	}
	return model
}
