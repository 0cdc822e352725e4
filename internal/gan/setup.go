package gan

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/born-gan/internal/autodiff"
	"github.com/born-ml/born-gan/internal/backend/cpu"
	"github.com/born-ml/born-gan/internal/config"
	"github.com/born-ml/born-gan/internal/dataset"
	"github.com/born-ml/born-gan/internal/model"
	"github.com/born-ml/born-gan/internal/nn"
	"github.com/born-ml/born-gan/internal/parallel"
)

// Session is a fully wired training run.
type Session struct {
	RunID     string
	OutputDir string
	Trainer   *Trainer
	Logger    *slog.Logger

	data *dataset.ImageFolder
}

// Run trains until the configured step count or cancellation.
func (s *Session) Run(ctx context.Context) error {
	s.Logger.Info("training started")
	err := s.Trainer.Run(ctx)
	s.Logger.Info("training stopped", "error", err)
	return err
}

// Close releases the data source.
func (s *Session) Close() {
	s.data.Close()
}

// Setup builds every component from cfg: data source, networks, exporter
// and reporters. now names the run directory. Extra reporters receive each
// step report after the log reporter.
func Setup(cfg *config.Config, logger *slog.Logger, now time.Time, reporters ...Reporter) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	cpuInfo := parallel.DetectCPU()
	logger.Info("cpu",
		"brand", cpuInfo.Brand,
		"physical_cores", cpuInfo.PhysicalCores,
		"logical_cores", cpuInfo.LogicalCores,
		"avx2", cpuInfo.AVX2,
		"avx512", cpuInfo.AVX512,
		"fma3", cpuInfo.FMA3,
	)

	seed := cfg.Train.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))

	start, target := cfg.Image.Start(), cfg.Image.Target()
	data, err := dataset.NewImageFolder(cfg.Data.Dir, dataset.Options{
		BatchSize: cfg.Train.BatchSize,
		Height:    target.Height,
		Width:     target.Width,
		Shuffle:   cfg.Data.Shuffle,
		Seed:      seed,
		Prefetch:  cfg.Data.Prefetch,
	})
	if err != nil {
		return nil, fmt.Errorf("setup data source: %w", err)
	}
	logger.Info("dataset", "dir", cfg.Data.Dir, "images", data.Len())

	session, err := setupModels(cfg, logger, rng, data, start, target, now, reporters)
	if err != nil {
		data.Close()
		return nil, err
	}
	session.RunID = runID
	logger.Info("run configured", "seed", seed, "output_dir", session.OutputDir,
		"batch_size", cfg.Train.BatchSize, "steps", cfg.Train.Steps,
		"export_interval", cfg.Train.ExportInterval)
	return session, nil
}

func setupModels(
	cfg *config.Config,
	logger *slog.Logger,
	rng *rand.Rand,
	data *dataset.ImageFolder,
	start, target model.Size,
	now time.Time,
	reporters []Reporter,
) (*Session, error) {
	backend := autodiff.New(cpu.New())

	gen, err := model.NewGenerator(model.GeneratorConfig{
		LatentDim:   cfg.Generator.LatentDim,
		Channels:    cfg.Generator.Channels,
		StyleLayers: cfg.Generator.LatentStyleLayers,
		Start:       start,
		Target:      target,
	}, backend, rng)
	if err != nil {
		return nil, fmt.Errorf("setup generator: %w", err)
	}
	logger.Info("generator summary\n" + gen.Summary())

	disc, err := model.NewDiscriminator(model.DiscriminatorConfig{
		Input:       target,
		Filters:     cfg.Discriminator.Filters,
		DenseUnits:  cfg.Discriminator.DenseUnits,
		Dropout:     cfg.Discriminator.Dropout,
		DropoutRate: cfg.Discriminator.DropoutRate,
		BatchNorm:   cfg.Discriminator.BatchNorm,
		Optimizer:   cfg.Discriminator.Optimizer,
	}, backend, rng)
	if err != nil {
		return nil, fmt.Errorf("setup discriminator: %w", err)
	}
	logger.Info("discriminator summary\n" + disc.Summary())

	adv, err := model.NewAdversarial(gen, disc, cfg.Generator.Optimizer)
	if err != nil {
		return nil, fmt.Errorf("setup adversarial: %w", err)
	}
	logger.Info("models",
		"generator_params", nn.CountParameters(gen.Parameters()),
		"discriminator_params", nn.CountParameters(disc.Parameters()),
		"backend", backend.Name())

	outputDir := cfg.OutputDir(now)
	exporter, err := NewImageExporter(outputDir)
	if err != nil {
		return nil, fmt.Errorf("setup exporter: %w", err)
	}

	trainer, err := NewTrainer(Options{
		BatchSize:      cfg.Train.BatchSize,
		Steps:          cfg.Train.Steps,
		ExportInterval: cfg.Train.ExportInterval,
	}, Components{
		Data:          data,
		Generator:     gen,
		Discriminator: disc,
		Adversarial:   adv,
		Exporter:      exporter,
		Sampler:       DefaultSampler(cfg.Generator.LatentDim, start, target),
		Reporter:      append(MultiReporter{NewLogReporter(logger)}, reporters...),
	})
	if err != nil {
		return nil, err
	}

	return &Session{
		OutputDir: outputDir,
		Trainer:   trainer,
		Logger:    logger,
		data:      data,
	}, nil
}
