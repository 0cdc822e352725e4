// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//   - New: construction from a serialisable Config
//
// Optimizers skip parameters that are frozen (nn.Parameter.Trainable is
// false) or that received no gradient.
//
// Example usage:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.DefaultAdamConfig())
//
//	backend.Tape().StartRecording()
//	loss := lossFunc.Forward(model.Forward(input), targets)
//	grads := backend.Backward(loss)
//	backend.Tape().StopRecording()
//	backend.Tape().Clear()
//
//	optimizer.Step(grads)
package optim

import (
	"errors"
	"fmt"
	"strings"

	"github.com/born-ml/born-gan/internal/nn"
	"github.com/born-ml/born-gan/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies gradient updates to all trainable parameters.
	//
	// grads is the map returned by autodiff.Backend.Backward, keyed by
	// parameter tensor.
	Step(grads map[*tensor.Tensor]*tensor.Tensor)

	// ZeroGrad clears all parameter gradients.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32
}

// ErrUnknownOptimizer is returned by New for an unrecognised name.
var ErrUnknownOptimizer = errors.New("unknown optimizer")

// Config selects and parameterises an optimizer.
type Config struct {
	Name     string  `koanf:"name" yaml:"name"` // "adam" or "sgd"
	LR       float32 `koanf:"lr" yaml:"lr"`
	Beta1    float32 `koanf:"beta1" yaml:"beta1"`
	Beta2    float32 `koanf:"beta2" yaml:"beta2"`
	Eps      float32 `koanf:"eps" yaml:"eps"`
	Momentum float32 `koanf:"momentum" yaml:"momentum"`
}

// New builds the optimizer named by cfg over params.
func New(cfg Config, params []*nn.Parameter) (Optimizer, error) {
	switch strings.ToLower(cfg.Name) {
	case "adam", "":
		return NewAdam(params, AdamConfig{LR: cfg.LR, Betas: [2]float32{cfg.Beta1, cfg.Beta2}, Eps: cfg.Eps}), nil
	case "sgd":
		return NewSGD(params, SGDConfig{LR: cfg.LR, Momentum: cfg.Momentum}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOptimizer, cfg.Name)
	}
}

// getGradient returns the gradient for a parameter the optimizer may
// update, or nil when it is frozen or took no part in the computation.
func getGradient(param *nn.Parameter, grads map[*tensor.Tensor]*tensor.Tensor) *tensor.Tensor {
	if param == nil || !param.Trainable() {
		return nil
	}
	return grads[param.Tensor()]
}
