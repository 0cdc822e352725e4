package nn

import (
	"fmt"

	"github.com/born-ml/born-gan/internal/autodiff"
	"github.com/born-ml/born-gan/internal/tensor"
)

// BatchNorm defaults, matching the usual Keras values.
const (
	DefaultBatchNormMomentum = 0.99
	DefaultBatchNormEpsilon  = 1e-3
)

// BatchNorm normalises every channel of [N, C, ...] input.
//
// In training mode it uses the batch statistics and folds them into
// running averages:
//
//	running = momentum*running + (1-momentum)*batch
//
// In inference mode it uses the running averages and leaves them untouched.
type BatchNorm struct {
	channels int
	momentum float32
	eps      float32
	training bool

	gamma *Parameter // [channels], starts at 1
	beta  *Parameter // [channels], starts at 0

	runningMean []float32
	runningVar  []float32

	backend *autodiff.Backend
}

// NewBatchNorm creates a batch normalisation layer in training mode.
func NewBatchNorm(channels int, backend *autodiff.Backend) *BatchNorm {
	runningVar := make([]float32, channels)
	for i := range runningVar {
		runningVar[i] = 1
	}
	return &BatchNorm{
		channels:    channels,
		momentum:    DefaultBatchNormMomentum,
		eps:         DefaultBatchNormEpsilon,
		training:    true,
		gamma:       NewParameter("gamma", tensor.Ones(tensor.Shape{channels})),
		beta:        NewParameter("beta", tensor.Zeros(tensor.Shape{channels})),
		runningMean: make([]float32, channels),
		runningVar:  runningVar,
		backend:     backend,
	}
}

// Forward normalises the input.
func (bn *BatchNorm) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) < 2 || shape[1] != bn.channels {
		panic(fmt.Sprintf("BatchNorm.Forward: expected [N, %d, ...], got shape %v", bn.channels, shape))
	}

	if !bn.training {
		out, _, _ := bn.backend.BatchNorm(input, bn.gamma.Tensor(), bn.beta.Tensor(),
			bn.runningMean, bn.runningVar, bn.eps, false)
		return out
	}

	out, mean, variance := bn.backend.BatchNorm(input, bn.gamma.Tensor(), bn.beta.Tensor(),
		nil, nil, bn.eps, true)
	for c := range bn.channels {
		bn.runningMean[c] = bn.momentum*bn.runningMean[c] + (1-bn.momentum)*mean[c]
		bn.runningVar[c] = bn.momentum*bn.runningVar[c] + (1-bn.momentum)*variance[c]
	}
	return out
}

// SetTraining switches between training and inference mode.
func (bn *BatchNorm) SetTraining(training bool) {
	bn.training = training
}

// RunningStats returns copies of the running mean and variance.
func (bn *BatchNorm) RunningStats() (mean, variance []float32) {
	return append([]float32(nil), bn.runningMean...), append([]float32(nil), bn.runningVar...)
}

// Parameters returns [gamma, beta].
func (bn *BatchNorm) Parameters() []*Parameter {
	return []*Parameter{bn.gamma, bn.beta}
}

func (bn *BatchNorm) String() string {
	return fmt.Sprintf("BatchNorm(%d)", bn.channels)
}
