package gan

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/born-gan/internal/config"
	"github.com/born-ml/born-gan/internal/dataset"
)

func writeTestImage(t *testing.T, path string, shade uint8) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 24))
	for y := range 24 {
		for x := range 16 {
			img.SetRGBA(x, y, color.RGBA{R: shade, G: uint8(x * 10), B: uint8(y * 10), A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func smallConfig(t *testing.T) *config.Config {
	t.Helper()
	dataDir := t.TempDir()
	writeTestImage(t, filepath.Join(dataDir, "a.png"), 30)
	writeTestImage(t, filepath.Join(dataDir, "b.png"), 220)

	cfg := config.Default()
	cfg.Data.Dir = dataDir
	cfg.Data.Prefetch = 1
	cfg.Train.BatchSize = 2
	cfg.Train.Steps = 1
	cfg.Train.ExportInterval = 1
	cfg.Train.Seed = 42
	cfg.Image = config.ImageConfig{StartHeight: 3, StartWidth: 2, TargetHeight: 12, TargetWidth: 8}
	cfg.Generator.LatentDim = 4
	cfg.Generator.Channels = 4
	cfg.Discriminator.Filters = 4
	cfg.Discriminator.DenseUnits = 8
	cfg.Output.Root = filepath.Join(t.TempDir(), "generated_images")
	return &cfg
}

func TestEndToEndSingleStep(t *testing.T) {
	cfg := smallConfig(t)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	var reports []StepReport
	session, err := Setup(cfg, logger, now, ReporterFunc(func(r StepReport) {
		reports = append(reports, r)
	}))
	require.NoError(t, err)
	defer session.Close()

	assert.Equal(t, filepath.Join(cfg.Output.Root, "2024-05-06_07:08:09_12x8"), session.OutputDir)
	assert.NotEmpty(t, session.RunID)
	assert.Contains(t, logs.String(), "generator summary", "summaries are logged at the default level")
	assert.Contains(t, logs.String(), "discriminator summary")
	assert.Contains(t, logs.String(), "total params")

	require.NoError(t, session.Run(context.Background()))

	entries, err := os.ReadDir(session.OutputDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Regexp(t, `^0_[01]_\d+\.\d{2}\.png$`, e.Name())
	}

	require.Len(t, reports, 1)
	r := reports[0]
	assert.Equal(t, 0, r.Step)
	assert.True(t, r.Exported)
	assert.GreaterOrEqual(t, r.Discriminator.Accuracy, float32(0))
	assert.LessOrEqual(t, r.Discriminator.Accuracy, float32(1))
	assert.GreaterOrEqual(t, r.Generator.Accuracy, float32(0))
	assert.LessOrEqual(t, r.Generator.Accuracy, float32(1))
}

func TestSetupFailsOnEmptyDataset(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Data.Dir = t.TempDir()

	_, err := Setup(cfg, nil, time.Now())
	assert.ErrorIs(t, err, dataset.ErrNoImages)
}

func TestSetupFailsOnInvalidConfig(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Train.BatchSize = 0

	_, err := Setup(cfg, nil, time.Now())
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestSetupFailsWhenRunDirExists(t *testing.T) {
	cfg := smallConfig(t)
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	require.NoError(t, os.MkdirAll(cfg.OutputDir(now), 0o755))

	_, err := Setup(cfg, nil, now)
	assert.ErrorIs(t, err, os.ErrExist)
}
