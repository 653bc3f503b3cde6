// Package cli is the taskwise command tree.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/sandeepkv93/taskwise/internal/app"
	"github.com/sandeepkv93/taskwise/internal/config"
	"github.com/sandeepkv93/taskwise/internal/logging"
	"github.com/sandeepkv93/taskwise/internal/storage"
)

var version = "0.1.0"

// flagKeys maps persistent flags to config keys.
var flagKeys = map[string]string{
	"db":        "db_path",
	"log-level": "log_level",
	"log-file":  "log_file",
}

type CLI struct {
	root *cobra.Command

	cfgFile string
	dotenv  string
	now     func() time.Time
	fs      afero.Fs

	cfg    config.RuntimeConfig
	logger *zap.Logger
	repo   *storage.SQLiteRepository
	svc    *app.Service
}

type Option func(*CLI)

// WithClock fixes the service clock.
func WithClock(now func() time.Time) Option {
	return func(c *CLI) { c.now = now }
}

func WithFS(fs afero.Fs) Option {
	return func(c *CLI) { c.fs = fs }
}

func New(opts ...Option) *CLI {
	c := &CLI{dotenv: ".env"}
	for _, opt := range opts {
		opt(c)
	}

	root := &cobra.Command{
		Use:           "taskwise",
		Short:         "TaskWise plans your week around your energy.",
		Long:          "TaskWise schedules tasks into hourly slots across the week, matching task energy to your daily energy pattern, and reports how the plan is going.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "", "config file (yaml, json or toml)")
	root.PersistentFlags().StringVar(&c.dotenv, "env-file", ".env", "dotenv file with TASKWISE_* variables")
	root.PersistentFlags().String("db", "", "database path (default taskwise.db)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	root.PersistentFlags().String("log-file", "", "also write JSON logs to this rotating file")

	root.AddCommand(
		c.taskCmd(),
		c.scheduleCmd(),
		c.optimizeCmd(),
		c.dayCmd(),
		c.remindersCmd(),
		c.historyCmd(),
		c.analyticsCmd(),
		c.settingsCmd(),
		c.watchCmd(),
		c.tuiCmd(),
	)
	c.root = root
	return c
}

// Run executes args and releases the store afterwards.
func (c *CLI) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	c.root.SetArgs(args)
	c.root.SetOut(stdout)
	c.root.SetErr(stderr)
	defer c.close()
	return c.root.ExecuteContext(ctx)
}

// Execute is the entry point for main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := New().Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "taskwise: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func (c *CLI) loadConfig(cmd *cobra.Command) error {
	v := config.New(c.cfgFile)
	if err := config.ApplyDotEnv(v, c.dotenv); err != nil {
		return err
	}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			v.Set(key, f.Value.String())
		}
	})
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// service opens the store on first use so commands like help never touch
// the database.
func (c *CLI) service(cmd *cobra.Command) (*app.Service, error) {
	if c.svc != nil {
		return c.svc, nil
	}
	if err := c.loadConfig(cmd); err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{
		Level:   c.cfg.LogLevel,
		Dev:     c.cfg.LogDev,
		File:    c.cfg.LogFile,
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}
	c.logger = logger

	repo, err := storage.OpenSQLite(c.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", c.cfg.DBPath, err)
	}
	c.repo = repo

	opts := []app.Option{
		app.WithLogger(logger),
		app.WithOptimizeDelay(c.cfg.OptimizeDelay),
		app.WithClock(c.now),
		app.WithFS(c.fs),
	}
	if start, ok, _ := c.cfg.StartDate(); ok {
		opts = append(opts, app.WithStartDate(start))
	}
	c.svc = app.New(repo, opts...)
	return c.svc, nil
}

func (c *CLI) close() {
	if c.repo != nil {
		if err := c.repo.Close(); err != nil && c.logger != nil {
			c.logger.Warn("close database", zap.Error(err))
		}
		c.repo = nil
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
	c.svc = nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// markdownStyle picks a colored glamour style only for terminals.
func markdownStyle(w io.Writer) string {
	if isTerminal(w) {
		return "dark"
	}
	return "notty"
}

var errUsage = errors.New("invalid arguments")
