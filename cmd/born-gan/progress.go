package main

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"github.com/born-ml/born-gan/internal/gan"
)

// progressReporter advances a progress bar once per step. Unbounded runs
// get a spinner.
type progressReporter struct {
	bar *progressbar.ProgressBar
}

func newProgressReporter(w io.Writer, steps int) *progressReporter {
	total := int64(steps)
	if steps <= 0 {
		total = -1
	}
	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("training"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("steps"),
		progressbar.OptionShowIts(),
		progressbar.OptionClearOnFinish(),
	)
	return &progressReporter{bar: bar}
}

func (p *progressReporter) Report(r gan.StepReport) {
	p.bar.Describe(fmt.Sprintf("d_acc %.2f g_acc %.2f", r.Discriminator.Accuracy, r.Generator.Accuracy))
	_ = p.bar.Add(1)
}
