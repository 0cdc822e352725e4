package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowSnapshot(t *testing.T) {
	w := NewWindow(4)
	w.Record(64, 20*time.Millisecond, 10*time.Millisecond)
	w.Record(64, 10*time.Millisecond, 20*time.Millisecond)

	snap := w.Snapshot()
	assert.InDelta(t, 2133.3333, snap.ImagesPerSec, 1)
	assert.InDelta(t, 15, snap.AvgDataMS, 1e-9)
	assert.InDelta(t, 15, snap.AvgComputeMS, 1e-9)
	assert.Equal(t, 2, snap.Steps)
}

func TestWindowEvictsOldest(t *testing.T) {
	w := NewWindow(2)
	w.Record(1, time.Second, 0)
	w.Record(1, 10*time.Millisecond, 0)
	w.Record(1, 30*time.Millisecond, 0)

	snap := w.Snapshot()
	assert.InDelta(t, 20, snap.AvgDataMS, 1e-9)
	assert.Equal(t, 3, snap.Steps)
}

func TestWindowReset(t *testing.T) {
	w := NewWindow(0)
	assert.Len(t, w.entries, DefaultWindowSize)

	w.Record(8, time.Millisecond, time.Millisecond)
	w.Reset()
	assert.Equal(t, Snapshot{}, w.Snapshot())
}
