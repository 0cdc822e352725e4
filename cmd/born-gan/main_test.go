package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/born-gan/internal/config"
	"github.com/born-ml/born-gan/internal/gan"
)

func TestVersionCommand(t *testing.T) {
	root := rootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "born-gan "+version+"\n", out.String())
}

func TestFlagsOverrideConfig(t *testing.T) {
	cmd := trainCommand()
	require.NoError(t, cmd.ParseFlags([]string{
		"--data", "/tmp/faces",
		"--steps", "0",
		"--batch-size", "8",
		"--log-format", "json",
	}))

	f := trainFlags{dataDir: "/tmp/faces", steps: 0, batchSize: 8, logFormat: "json"}
	cfg, err := loadConfig(cmd, f)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/faces", cfg.Data.Dir)
	assert.Equal(t, 0, cfg.Train.Steps, "an explicit zero means unbounded")
	assert.Equal(t, 8, cfg.Train.BatchSize)
	assert.Equal(t, 10, cfg.Train.ExportInterval, "unset flags keep the configured value")
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestFlagsAreValidated(t *testing.T) {
	cmd := trainCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--batch-size", "-1"}))

	_, err := loadConfig(cmd, trainFlags{batchSize: -1})
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, config.LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "step", 3)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"step":3`)

	_, err = newLogger(&buf, config.LogConfig{Level: "chatty"})
	assert.Error(t, err)
}

func TestProgressReporterCountsSteps(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressReporter(&buf, 3)
	for i := range 2 {
		p.Report(gan.StepReport{Step: i})
	}
	assert.InDelta(t, 2.0/3.0, p.bar.State().CurrentPercent, 1e-9)
}
