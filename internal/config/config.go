// Package config loads the trainer configuration.
//
// Values are layered, lowest precedence first: Default(), an optional YAML
// file, then environment variables of the form GAN_<SECTION>__<KEY>
// (for example GAN_TRAIN__BATCH_SIZE=8). A .env file can seed the
// environment before loading. Command-line flags are applied on top by
// the CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/born-ml/born-gan/internal/model"
	"github.com/born-ml/born-gan/internal/optim"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete trainer configuration.
type Config struct {
	Data          DataConfig          `koanf:"data" yaml:"data"`
	Train         TrainConfig         `koanf:"train" yaml:"train"`
	Image         ImageConfig         `koanf:"image" yaml:"image"`
	Generator     GeneratorConfig     `koanf:"generator" yaml:"generator"`
	Discriminator DiscriminatorConfig `koanf:"discriminator" yaml:"discriminator"`
	Output        OutputConfig        `koanf:"output" yaml:"output"`
	Log           LogConfig           `koanf:"log" yaml:"log"`
}

// DataConfig locates the real images.
type DataConfig struct {
	Dir      string `koanf:"dir" yaml:"dir"`
	Shuffle  bool   `koanf:"shuffle" yaml:"shuffle"`
	Prefetch int    `koanf:"prefetch" yaml:"prefetch"`
}

// TrainConfig controls the training loop.
type TrainConfig struct {
	BatchSize      int    `koanf:"batch_size" yaml:"batch_size"`
	Steps          int    `koanf:"steps" yaml:"steps"` // <= 0 runs until interrupted
	ExportInterval int    `koanf:"export_interval" yaml:"export_interval"`
	Seed           uint64 `koanf:"seed" yaml:"seed"` // 0 picks a random seed
}

// ImageConfig holds the generator's start resolution and the image resolution.
type ImageConfig struct {
	StartHeight  int `koanf:"start_height" yaml:"start_height"`
	StartWidth   int `koanf:"start_width" yaml:"start_width"`
	TargetHeight int `koanf:"target_height" yaml:"target_height"`
	TargetWidth  int `koanf:"target_width" yaml:"target_width"`
}

// Start returns the generator's starting resolution.
func (c ImageConfig) Start() model.Size {
	return model.Size{Height: c.StartHeight, Width: c.StartWidth}
}

// Target returns the resolution of generated and real images.
func (c ImageConfig) Target() model.Size {
	return model.Size{Height: c.TargetHeight, Width: c.TargetWidth}
}

// GeneratorConfig sizes the generator and its composite optimizer.
type GeneratorConfig struct {
	LatentDim         int          `koanf:"latent_dim" yaml:"latent_dim"`
	Channels          int          `koanf:"channels" yaml:"channels"`
	LatentStyleLayers int          `koanf:"latent_style_layers" yaml:"latent_style_layers"`
	Optimizer         optim.Config `koanf:"optimizer" yaml:"optimizer"`
}

// DiscriminatorConfig sizes the discriminator and its optimizer.
type DiscriminatorConfig struct {
	Filters     int          `koanf:"filters" yaml:"filters"`
	DenseUnits  int          `koanf:"dense_units" yaml:"dense_units"`
	Dropout     bool         `koanf:"dropout" yaml:"dropout"`
	DropoutRate float32      `koanf:"dropout_rate" yaml:"dropout_rate"`
	BatchNorm   bool         `koanf:"batch_norm" yaml:"batch_norm"`
	Optimizer   optim.Config `koanf:"optimizer" yaml:"optimizer"`
}

// OutputConfig says where run directories are created.
type OutputConfig struct {
	Root string `koanf:"root" yaml:"root"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level    string `koanf:"level" yaml:"level"`   // debug, info, warn or error
	Format   string `koanf:"format" yaml:"format"` // text or json
	Progress bool   `koanf:"progress" yaml:"progress"`
}

// SlogLevel parses Level.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalid, c.Level)
	}
	return level, nil
}

func defaultOptimizer() optim.Config {
	return optim.Config{Name: "adam", LR: 0.002, Beta1: 0.0, Beta2: 0.99, Eps: 1e-8}
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Data: DataConfig{
			Dir:      "datasets/plants/768x512",
			Shuffle:  true,
			Prefetch: 2,
		},
		Train: TrainConfig{
			BatchSize:      4,
			Steps:          10_000_000,
			ExportInterval: 10,
		},
		Image: ImageConfig{
			StartHeight:  6,
			StartWidth:   4,
			TargetHeight: 768,
			TargetWidth:  512,
		},
		Generator: GeneratorConfig{
			LatentDim:         8,
			Channels:          16,
			LatentStyleLayers: 2,
			Optimizer:         defaultOptimizer(),
		},
		Discriminator: DiscriminatorConfig{
			Filters:     16,
			DenseUnits:  32,
			Dropout:     true,
			DropoutRate: 0.25,
			BatchNorm:   true,
			Optimizer:   defaultOptimizer(),
		},
		Output: OutputConfig{Root: "generated_images"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// OutputDir returns the run directory for a run started at now:
// {output.root}/{2006-01-02_15:04:05}_{H}x{W}.
func (c *Config) OutputDir(now time.Time) string {
	name := fmt.Sprintf("%s_%v", now.Format("2006-01-02_15:04:05"), c.Image.Target())
	return filepath.Join(c.Output.Root, name)
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch {
	case c.Data.Dir == "":
		return fmt.Errorf("%w: data.dir is required", ErrInvalid)
	case c.Data.Prefetch < 0:
		return fmt.Errorf("%w: data.prefetch must not be negative", ErrInvalid)
	case c.Train.BatchSize <= 0:
		return fmt.Errorf("%w: train.batch_size must be positive", ErrInvalid)
	case c.Train.ExportInterval <= 0:
		return fmt.Errorf("%w: train.export_interval must be positive", ErrInvalid)
	case c.Generator.LatentDim <= 0 || c.Generator.Channels <= 0:
		return fmt.Errorf("%w: generator.latent_dim and generator.channels must be positive", ErrInvalid)
	case c.Generator.LatentStyleLayers < 0:
		return fmt.Errorf("%w: generator.latent_style_layers must not be negative", ErrInvalid)
	case c.Discriminator.Filters <= 0 || c.Discriminator.DenseUnits <= 0:
		return fmt.Errorf("%w: discriminator.filters and discriminator.dense_units must be positive", ErrInvalid)
	case c.Discriminator.DropoutRate < 0 || c.Discriminator.DropoutRate >= 1:
		return fmt.Errorf("%w: discriminator.dropout_rate must be in [0, 1)", ErrInvalid)
	case c.Output.Root == "":
		return fmt.Errorf("%w: output.root is required", ErrInvalid)
	}

	if _, err := model.Doublings(c.Image.Start(), c.Image.Target()); err != nil {
		return fmt.Errorf("%w: image: %w", ErrInvalid, err)
	}
	if err := validateOptimizer("generator.optimizer", c.Generator.Optimizer); err != nil {
		return err
	}
	if err := validateOptimizer("discriminator.optimizer", c.Discriminator.Optimizer); err != nil {
		return err
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return fmt.Errorf("%w: log.format must be text or json, got %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

func validateOptimizer(key string, o optim.Config) error {
	switch strings.ToLower(o.Name) {
	case "adam":
		if o.Beta1 < 0 || o.Beta1 >= 1 || o.Beta2 < 0 || o.Beta2 >= 1 {
			return fmt.Errorf("%w: %s betas must be in [0, 1)", ErrInvalid, key)
		}
	case "sgd":
		if o.Momentum < 0 || o.Momentum >= 1 {
			return fmt.Errorf("%w: %s.momentum must be in [0, 1)", ErrInvalid, key)
		}
	default:
		return fmt.Errorf("%w: %s.name must be adam or sgd, got %q", ErrInvalid, key, o.Name)
	}
	if o.LR <= 0 {
		return fmt.Errorf("%w: %s.lr must be positive", ErrInvalid, key)
	}
	return nil
}
