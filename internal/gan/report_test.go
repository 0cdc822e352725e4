package gan

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/born-ml/born-gan/internal/model"
)

func TestLogReporterWritesOneLinePerStep(t *testing.T) {
	var buf bytes.Buffer
	rep := NewLogReporter(slog.New(slog.NewTextHandler(&buf, nil)))

	rep.Report(StepReport{
		Step:          0,
		Discriminator: model.Metrics{Loss: 0.7, Accuracy: 0.5},
		Generator:     model.Metrics{Loss: 0.6, Accuracy: 1},
		Exported:      true,
	})

	out := buf.String()
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
	assert.Contains(t, out, "step=0")
	assert.Contains(t, out, "discriminator_accuracy=0.5")
	assert.Contains(t, out, "generator_accuracy=1")
	assert.Contains(t, out, "exported=true")
}

func TestMultiReporterKeepsOrder(t *testing.T) {
	var order []string
	m := MultiReporter{
		ReporterFunc(func(StepReport) { order = append(order, "log") }),
		ReporterFunc(func(StepReport) { order = append(order, "progress") }),
	}
	m.Report(StepReport{Step: 3})
	assert.Equal(t, []string{"log", "progress"}, order)
}
