package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/born-ml/born-gan/internal/config"
	"github.com/born-ml/born-gan/internal/gan"
)

type trainFlags struct {
	configPath     string
	envPath        string
	dataDir        string
	steps          int
	batchSize      int
	exportInterval int
	outputRoot     string
	seed           uint64
	progress       bool
	logLevel       string
	logFormat      string
}

func trainCommand() *cobra.Command {
	var f trainFlags
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Run the adversarial training loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return runTraining(cmd, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&f.envPath, "env", "", "env file loaded before GAN_* variables are read (default ./.env if present)")
	flags.StringVar(&f.dataDir, "data", "", "directory of real images")
	flags.IntVar(&f.steps, "steps", 0, "number of training steps, <= 0 runs until interrupted")
	flags.IntVar(&f.batchSize, "batch-size", 0, "real images per step")
	flags.IntVar(&f.exportInterval, "export-interval", 0, "export generated samples every n steps")
	flags.StringVar(&f.outputRoot, "output", "", "root directory for run output")
	flags.Uint64Var(&f.seed, "seed", 0, "seed for weight initialisation and shuffling (0 = random)")
	flags.BoolVar(&f.progress, "progress", false, "show a progress bar on stderr")
	flags.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	flags.StringVar(&f.logFormat, "log-format", "", "text or json")
	return cmd
}

// loadConfig layers the env file, config file, environment and the flags
// that were set explicitly.
func loadConfig(cmd *cobra.Command, f trainFlags) (*config.Config, error) {
	if err := config.LoadEnvFile(f.envPath); err != nil {
		return nil, err
	}
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.Data.Dir = f.dataDir
	}
	if flags.Changed("steps") {
		cfg.Train.Steps = f.steps
	}
	if flags.Changed("batch-size") {
		cfg.Train.BatchSize = f.batchSize
	}
	if flags.Changed("export-interval") {
		cfg.Train.ExportInterval = f.exportInterval
	}
	if flags.Changed("output") {
		cfg.Output.Root = f.outputRoot
	}
	if flags.Changed("seed") {
		cfg.Train.Seed = f.seed
	}
	if flags.Changed("progress") {
		cfg.Log.Progress = f.progress
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runTraining(cmd *cobra.Command, cfg *config.Config) error {
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return err
	}

	var reporters []gan.Reporter
	if cfg.Log.Progress {
		reporters = append(reporters, newProgressReporter(cmd.ErrOrStderr(), cfg.Train.Steps))
	}

	session, err := gan.Setup(cfg, logger, time.Now(), reporters...)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	defer session.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = session.Run(ctx)
	if errors.Is(err, context.Canceled) {
		session.Logger.Info("interrupted, output kept", "output_dir", session.OutputDir)
		return nil
	}
	return err
}
