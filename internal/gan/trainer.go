package gan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/born-ml/born-gan/internal/metrics"
	"github.com/born-ml/born-gan/internal/model"
)

// Options configures the training loop.
type Options struct {
	BatchSize      int
	Steps          int // <= 0 runs until the context is cancelled
	ExportInterval int
}

// Components are the collaborators a Trainer drives.
type Components struct {
	Data          DataSource
	Generator     Generator
	Discriminator Discriminator
	Adversarial   Adversarial
	Exporter      Exporter
	Sampler       LatentSampler
	Reporter      Reporter // optional
}

// Trainer owns the step counter and the order of operations within a step.
type Trainer struct {
	opts   Options
	c      Components
	window *metrics.Window
}

// NewTrainer validates opts and returns a trainer.
func NewTrainer(opts Options, c Components) (*Trainer, error) {
	if opts.BatchSize <= 0 {
		return nil, errors.New("trainer: batch size must be > 0")
	}
	if opts.ExportInterval <= 0 {
		return nil, errors.New("trainer: export interval must be > 0")
	}
	if c.Data == nil || c.Generator == nil || c.Discriminator == nil ||
		c.Adversarial == nil || c.Exporter == nil || c.Sampler == nil {
		return nil, errors.New("trainer: every component except the reporter is required")
	}
	if c.Reporter == nil {
		c.Reporter = MultiReporter(nil)
	}
	return &Trainer{opts: opts, c: c, window: metrics.NewWindow(metrics.DefaultWindowSize)}, nil
}

// Run executes steps 0, 1, ... until Steps is reached, a step fails or ctx
// is cancelled. Cancellation is only observed between steps; it is
// reported as ctx.Err().
func (t *Trainer) Run(ctx context.Context) error {
	for step := 0; t.opts.Steps <= 0 || step < t.opts.Steps; step++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		report, err := t.Step(ctx, step)
		if err != nil {
			return err
		}
		t.c.Reporter.Report(report)
	}
	return nil
}

// Step performs one training step:
//
//  1. pull a real batch and label it RealLabel
//  2. sample a latent batch and generate images labelled GeneratedLabel
//  3. on export steps, score the generated images and export them
//  4. train the discriminator on generated followed by real images
//  5. train the generator through the frozen discriminator on the same
//     latent batch toward RealLabel
func (t *Trainer) Step(ctx context.Context, step int) (StepReport, error) {
	dataStart := time.Now()
	realImages, err := t.c.Data.Next(ctx)
	if err != nil {
		return StepReport{}, fmt.Errorf("step %d: next batch: %w", step, err)
	}
	dataTime := time.Since(dataStart)

	n := t.opts.BatchSize
	if realImages.Dim(0) != n {
		return StepReport{}, fmt.Errorf("step %d: %w: data source returned %d images, want %d",
			step, ErrBatchMismatch, realImages.Dim(0), n)
	}

	computeStart := time.Now()
	realLabels := Labels(n, RealLabel)

	latent := t.c.Sampler(n)
	generated, err := t.c.Generator.Predict(latent)
	if err != nil {
		return StepReport{}, fmt.Errorf("step %d: generate: %w", step, err)
	}
	generatedLabels := Labels(n, GeneratedLabel)

	exported := step%t.opts.ExportInterval == 0
	if exported {
		scores, err := t.c.Discriminator.Predict(generated)
		if err != nil {
			return StepReport{}, fmt.Errorf("step %d: score samples: %w", step, err)
		}
		if err := t.c.Exporter.Export(step, generated, scores); err != nil {
			return StepReport{}, fmt.Errorf("step %d: %w", step, err)
		}
	}

	images, labels, err := Combine(generated, realImages, generatedLabels, realLabels)
	if err != nil {
		return StepReport{}, fmt.Errorf("step %d: %w", step, err)
	}

	discMetrics, err := t.c.Discriminator.TrainOnBatch(images, labels)
	if err != nil {
		return StepReport{}, fmt.Errorf("step %d: train discriminator: %w", step, err)
	}

	genMetrics, err := t.c.Adversarial.TrainOnBatch(latent, Labels(n, RealLabel))
	if err != nil {
		return StepReport{}, fmt.Errorf("step %d: train generator: %w", step, err)
	}
	computeTime := time.Since(computeStart)

	t.window.Record(n, dataTime, computeTime)
	return StepReport{
		Step:          step,
		Discriminator: discMetrics,
		Generator:     genMetrics,
		Exported:      exported,
		DataTime:      dataTime,
		ComputeTime:   computeTime,
		Window:        t.window.Snapshot(),
	}, nil
}

// DefaultSampler draws latents with model.SampleLatent.
func DefaultSampler(latentDim int, start, target model.Size) LatentSampler {
	return func(batch int) model.Latent {
		return model.SampleLatent(batch, latentDim, start, target)
	}
}
