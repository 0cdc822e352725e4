// Package metrics accumulates per-step timing for the training loop.
package metrics

import "time"

// DefaultWindowSize is the number of steps a Window averages over when
// created with a non-positive size.
const DefaultWindowSize = 20

type entry struct {
	samples int
	data    time.Duration
	compute time.Duration
}

// Window keeps timing stats for the most recent steps.
type Window struct {
	entries []entry
	next    int
	filled  int
	total   int
}

// NewWindow creates a window over the last size steps.
func NewWindow(size int) *Window {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &Window{entries: make([]entry, size)}
}

// Record adds a new measurement, evicting the oldest once the window is
// full.
func (w *Window) Record(batchSize int, dataTime, computeTime time.Duration) {
	w.entries[w.next] = entry{samples: batchSize, data: dataTime, compute: computeTime}
	w.next = (w.next + 1) % len(w.entries)
	if w.filled < len(w.entries) {
		w.filled++
	}
	w.total++
}

// Snapshot returns aggregated metrics over the steps currently held.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{Steps: w.total}
	if w.filled == 0 {
		return snap
	}

	var samples int
	var data, compute time.Duration
	for _, e := range w.entries[:w.filled] {
		samples += e.samples
		data += e.data
		compute += e.compute
	}
	if total := data + compute; total > 0 {
		snap.ImagesPerSec = float64(samples) / total.Seconds()
	}
	snap.AvgDataMS = (data.Seconds() * 1000) / float64(w.filled)
	snap.AvgComputeMS = (compute.Seconds() * 1000) / float64(w.filled)
	return snap
}

// Reset drops every measurement.
func (w *Window) Reset() {
	clear(w.entries)
	w.next, w.filled, w.total = 0, 0, 0
}

// Snapshot represents loggable metrics.
type Snapshot struct {
	Steps        int
	ImagesPerSec float64
	AvgDataMS    float64
	AvgComputeMS float64
}
