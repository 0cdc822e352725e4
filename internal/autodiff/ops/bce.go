package ops

import (
	"fmt"
	"math"

	"github.com/born-ml/born-gan/internal/tensor"
)

// BCEEpsilon clips probabilities away from 0 and 1 before taking logs.
const BCEEpsilon = 1e-7

// BCEOp represents mean binary cross-entropy between probabilities and
// targets:
//
//	loss = -mean(y*log(p) + (1-y)*log(1-p)),  p clipped to [eps, 1-eps]
//
// Gradient w.r.t. p (zero where p was clipped):
//
//	d/dp = (p - y) / (p * (1 - p)) / N
type BCEOp struct {
	predictions, targets, output *tensor.Tensor
}

// BinaryCrossEntropy computes the loss and returns the op.
// The output is a [1] tensor.
func BinaryCrossEntropy(predictions, targets *tensor.Tensor) *BCEOp {
	if !predictions.Shape().Equal(targets.Shape()) {
		panic(fmt.Sprintf("bce: predictions %v and targets %v must have the same shape",
			predictions.Shape(), targets.Shape()))
	}

	var sum float64
	pd, td := predictions.Data(), targets.Data()
	for i, p := range pd {
		pc := clipProbability(float64(p))
		y := float64(td[i])
		sum -= y*math.Log(pc) + (1-y)*math.Log(1-pc)
	}

	output := tensor.Zeros(tensor.Shape{1})
	output.Data()[0] = float32(sum / float64(len(pd)))
	return &BCEOp{predictions: predictions, targets: targets, output: output}
}

// Backward returns [grad_predictions, nil].
func (op *BCEOp) Backward(outputGrad *tensor.Tensor, _ tensor.Backend) []*tensor.Tensor {
	scale := float64(outputGrad.Item()) / float64(op.predictions.NumElements())

	grad := tensor.ZerosLike(op.predictions)
	gd, pd, td := grad.Data(), op.predictions.Data(), op.targets.Data()
	for i, p := range pd {
		pv := float64(p)
		if pv < BCEEpsilon || pv > 1-BCEEpsilon {
			continue
		}
		gd[i] = float32(scale * (pv - float64(td[i])) / (pv * (1 - pv)))
	}
	return []*tensor.Tensor{grad, nil}
}

// Inputs returns [predictions, targets].
func (op *BCEOp) Inputs() []*tensor.Tensor {
	return []*tensor.Tensor{op.predictions, op.targets}
}

// Output returns the scalar loss.
func (op *BCEOp) Output() *tensor.Tensor { return op.output }

func clipProbability(p float64) float64 {
	return math.Min(math.Max(p, BCEEpsilon), 1-BCEEpsilon)
}
