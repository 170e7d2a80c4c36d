package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gitlab.com/slon/wprw/rwmetrics"
	"gitlab.com/slon/wprw/rwmutex"
	"gitlab.com/slon/wprw/workload"
)

type runFlags struct {
	configPath  string
	metricsAddr string
	logLevel    string
	cfg         workload.Config
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "rwdemo",
		Short:        "Exercise the writer-priority reader/writer lock",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	f := &runFlags{cfg: workload.DefaultConfig()}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start readers and writers against one lock and report how they were admitted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(f, cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := newLogger(f.logLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, f.metricsAddr, logger)
		},
	}

	f.bind(cmd.Flags())
	return cmd
}

func (f *runFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "YAML workload config; flags override values from the file")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "serve /metrics and /stats on this address while running")
	fs.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.IntVar(&f.cfg.Readers, "readers", f.cfg.Readers, "number of reader goroutines")
	fs.IntVar(&f.cfg.Writers, "writers", f.cfg.Writers, "number of writer goroutines")
	fs.DurationVar(&f.cfg.ReadDuration, "read-duration", f.cfg.ReadDuration, "how long each reader holds the lock")
	fs.DurationVar(&f.cfg.WriteDuration, "write-duration", f.cfg.WriteDuration, "how long each writer holds the lock")
	fs.DurationVar(&f.cfg.Stagger, "stagger", f.cfg.Stagger, "pause between launching two workers of the same role")
}

// resolveConfig loads the config file, if any, and applies explicitly set flags on top of it.
func resolveConfig(f *runFlags, fs *pflag.FlagSet) (workload.Config, error) {
	if f.configPath == "" {
		return f.cfg, f.cfg.Validate()
	}

	cfg, err := workload.LoadConfig(f.configPath)
	if err != nil {
		return cfg, err
	}
	fs.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "readers":
			cfg.Readers = f.cfg.Readers
		case "writers":
			cfg.Writers = f.cfg.Writers
		case "read-duration":
			cfg.ReadDuration = f.cfg.ReadDuration
		case "write-duration":
			cfg.WriteDuration = f.cfg.WriteDuration
		case "stagger":
			cfg.Stagger = f.cfg.Stagger
		}
	})
	return cfg, cfg.Validate()
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("bad --log-level: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func run(ctx context.Context, cfg workload.Config, metricsAddr string, logger *zap.Logger) error {
	reg := prometheus.NewRegistry()
	metrics, err := rwmetrics.New(reg)
	if err != nil {
		return err
	}
	lock := rwmutex.New(rwmutex.WithObserver(rwmutex.Tee(metrics, workload.NewLogObserver(logger))))

	if metricsAddr != "" {
		srv, err := startServer(metricsAddr, reg, lock, logger)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("server shutdown error", zap.Error(err))
			}
		}()
	}

	runner, err := workload.NewRunner(lock, cfg, workload.WithLogger(logger))
	if err != nil {
		return err
	}

	logger.Info("starting workload",
		zap.Int("readers", cfg.Readers),
		zap.Int("writers", cfg.Writers),
		zap.Duration("read_duration", cfg.ReadDuration),
		zap.Duration("write_duration", cfg.WriteDuration),
	)
	rep, err := runner.Run(ctx)
	logger.Info("workload finished",
		zap.Duration("elapsed", rep.Elapsed()),
		zap.Int("readers_ran", rep.Count(workload.RoleReader)),
		zap.Int("writers_ran", rep.Count(workload.RoleWriter)),
		zap.Int("max_concurrent_readers", rep.MaxConcurrentReaders()),
		zap.Bool("writers_overlap", rep.WritersOverlap()),
		zap.Bool("reader_writer_overlap", rep.ReaderWriterOverlap()),
		zap.Stringer("final_phase", lock.Stats().Phase),
	)
	return err
}
