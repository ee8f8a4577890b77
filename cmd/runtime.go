package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/fluent/internal/coach"
	"github.com/abhisek/fluent/internal/config"
	"github.com/abhisek/fluent/internal/curriculum"
	"github.com/abhisek/fluent/internal/llm"
	"github.com/abhisek/fluent/internal/logger"
	"github.com/abhisek/fluent/internal/progress"
	"github.com/abhisek/fluent/internal/store"
)

// runtime is what a command needs: config, logger, database and the
// progress store on top of it.
type runtime struct {
	cfg        *config.Config
	logger     *zap.Logger
	store      *store.Store
	progress   *progress.Store
	curriculum *curriculum.Curriculum
	loc        *time.Location
	dbPath     string
}

// setupOpts tunes newRuntime per command.
type setupOpts struct {
	// logToFile sends logs next to the database instead of stderr, for
	// commands that own the terminal.
	logToFile bool
}

func newRuntime(cmd *cobra.Command, opts setupOpts) (*runtime, error) {
	var dirs []string
	if d, _ := cmd.Flags().GetString("config"); d != "" {
		dirs = append(dirs, d)
	}
	cfg, err := config.Load(dirs...)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}

	var paths []string
	if opts.logToFile {
		paths = append(paths, filepath.Join(filepath.Dir(dbPath), "fluent.log"))
	}
	log, err := logger.New(cfg.Env, paths...)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	cur, err := curriculum.Load()
	if err != nil {
		return nil, fmt.Errorf("load curriculum: %w", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &runtime{
		cfg:    cfg,
		logger: log,
		store:  st,
		progress: progress.New(st.KVRepo(),
			progress.WithLogger(log.Named("progress")),
			progress.WithLocation(loc),
		),
		curriculum: cur,
		loc:        loc,
		dbPath:     dbPath,
	}, nil
}

func (r *runtime) Close() {
	if err := r.store.Close(); err != nil {
		r.logger.Warn("close store", zap.Error(err))
	}
	_ = r.logger.Sync()
}

// coach builds the coach. Without a configured model every answer comes
// from the local rules.
func (r *runtime) coach(ctx context.Context) *coach.Coach {
	opts := []coach.Option{coach.WithLogger(r.logger.Named("coach"))}

	provider, err := llm.NewProvider(ctx, r.cfg.LLMConfig(), r.store.EventRepo(), r.logger.Named("llm"))
	if err != nil {
		if !errors.Is(err, llm.ErrDisabled) {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		}
		r.logger.Info("coaching with local rules only", zap.Error(err))
		return coach.New(nil, opts...)
	}
	return coach.New(provider, opts...)
}

// requireProfile returns the stored profile or an error telling the user
// how to create one.
func (r *runtime) requireProfile(ctx context.Context) (*progress.UserProfile, error) {
	p, err := r.progress.Profile(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.New("no learner profile yet; run `fluent profile create <name>` first")
	}
	return p, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then FLUENT_DB or the config file, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}
