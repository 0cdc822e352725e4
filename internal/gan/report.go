package gan

import (
	"log/slog"
	"time"

	"github.com/born-ml/born-gan/internal/metrics"
	"github.com/born-ml/born-gan/internal/model"
)

// StepReport describes one completed training step.
type StepReport struct {
	Step          int
	Discriminator model.Metrics
	Generator     model.Metrics
	Exported      bool
	DataTime      time.Duration
	ComputeTime   time.Duration
	Window        metrics.Snapshot
}

// Reporter receives a report after every step.
type Reporter interface {
	Report(r StepReport)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(r StepReport)

// Report calls f(r).
func (f ReporterFunc) Report(r StepReport) { f(r) }

// MultiReporter forwards every report to each reporter in order.
type MultiReporter []Reporter

// Report implements Reporter.
func (m MultiReporter) Report(r StepReport) {
	for _, rep := range m {
		rep.Report(r)
	}
}

// LogReporter logs one line per step.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a LogReporter. A nil logger uses slog.Default().
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger}
}

// Report implements Reporter.
func (l *LogReporter) Report(r StepReport) {
	l.logger.Info("step",
		"step", r.Step,
		"discriminator_accuracy", r.Discriminator.Accuracy,
		"generator_accuracy", r.Generator.Accuracy,
		"discriminator_loss", r.Discriminator.Loss,
		"generator_loss", r.Generator.Loss,
		"exported", r.Exported,
		"data_ms", r.DataTime.Milliseconds(),
		"compute_ms", r.ComputeTime.Milliseconds(),
		"images_per_sec", r.Window.ImagesPerSec,
	)
}
