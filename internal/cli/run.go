package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/sentropy/internal/config"
	"github.com/roach88/sentropy/internal/engine"
	"github.com/roach88/sentropy/internal/ir"
	"github.com/roach88/sentropy/internal/metrics"
	"github.com/roach88/sentropy/internal/store"
)

// session is one command's engine together with the resources it owns.
type session struct {
	cfg     config.Config
	logger  *slog.Logger
	engine  *engine.Engine
	store   *store.Store // nil without a journal
	metrics *metrics.Collector
}

type sessionOptions struct {
	metrics bool
	// requireDB fails the command when no journal is configured.
	requireDB bool
}

// openSession resolves configuration and builds the engine. With a journal
// configured, the store is opened, the engine restored from it, and every
// later operation journaled.
func openSession(ctx context.Context, opts *RootOptions, cmd *cobra.Command, so sessionOptions) (*session, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd, cfg)

	if so.requireDB && cfg.DB == "" {
		return nil, ir.NewError(ir.KindConfiguration, "open_session", "a journal is required: pass --db or set SENTROPY_DB").
			WithDetail("field", "db")
	}

	s := &session{cfg: cfg, logger: logger}

	engOpts := append(cfg.EngineOptions(), engine.WithLogger(logger))
	if so.metrics {
		s.metrics = metrics.New()
		engOpts = append(engOpts, engine.WithMetrics(s.metrics))
	}

	if cfg.DB != "" {
		logger.Debug("opening database", "path", cfg.DB)
		st, err := store.Open(cfg.DB)
		if err != nil {
			return nil, ir.WrapError(ir.KindIO, "open_database", err)
		}
		s.store = st
		engOpts = append(engOpts, engine.WithJournal(st))
	}

	eng, err := engine.New(cfg.Precision, engOpts...)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.engine = eng

	if s.store != nil {
		snap, err := s.store.Snapshot(ctx, cfg.HistoryCap)
		if err != nil {
			s.Close()
			return nil, ir.WrapError(ir.KindIO, "read_journal", err)
		}
		if err := eng.Restore(ctx, snap); err != nil {
			s.Close()
			return nil, err
		}
	}

	return s, nil
}

// Close releases the journal, if any.
func (s *session) Close() {
	if s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
	s.store = nil
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
// Uses the command's context if available (for testing).
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
