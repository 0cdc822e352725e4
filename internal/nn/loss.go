package nn

import (
	"fmt"

	"github.com/born-ml/born-gan/internal/autodiff"
	"github.com/born-ml/born-gan/internal/tensor"
)

// BCELoss computes mean binary cross-entropy between probabilities in
// [0, 1] and binary targets.
//
//	loss = -mean(y*log(p) + (1-y)*log(1-p))
//
// Probabilities are clipped to [1e-7, 1-1e-7] so saturated predictions
// give a finite loss.
type BCELoss struct {
	backend *autodiff.Backend
}

// NewBCELoss creates a binary cross-entropy loss.
func NewBCELoss(backend *autodiff.Backend) *BCELoss {
	return &BCELoss{backend: backend}
}

// Forward returns the loss as a [1] tensor.
func (l *BCELoss) Forward(predictions, targets *tensor.Tensor) *tensor.Tensor {
	return l.backend.BinaryCrossEntropy(predictions, targets)
}

// BinaryAccuracy returns the fraction of predictions that land on the same
// side of 0.5 as their targets.
func BinaryAccuracy(predictions, targets *tensor.Tensor) (float32, error) {
	if !predictions.Shape().Equal(targets.Shape()) {
		return 0, fmt.Errorf("binary accuracy: predictions %v and targets %v differ in shape",
			predictions.Shape(), targets.Shape())
	}
	pd, td := predictions.Data(), targets.Data()
	if len(pd) == 0 {
		return 0, nil
	}
	correct := 0
	for i, p := range pd {
		if (p > 0.5) == (td[i] > 0.5) {
			correct++
		}
	}
	return float32(correct) / float32(len(pd)), nil
}
