// Package nn implements neural network modules for the GAN trainer.
//
// This package provides building blocks for constructing networks:
//   - Module interface: Base interface for all NN components
//   - Parameter: Trainable parameters with a freeze flag
//   - Linear, Conv2D: Dense and convolutional layers
//   - Activations: LeakyReLU, Sigmoid, Tanh
//   - Normalisation and regularisation: BatchNorm, Dropout
//   - Resampling: AvgPool2D, Upsample, Flatten
//   - Containers: Sequential, Residual
//   - Losses and metrics: BCELoss, BinaryAccuracy
//
// Every module computes through an *autodiff.Backend, so a forward pass run
// while the backend's tape is recording can be differentiated.
package nn

import (
	"github.com/born-ml/born-gan/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build complex architectures:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128, backend, rng),
//	    nn.NewLeakyReLU(0.2, backend),
//	    nn.NewLinear(128, 1, backend, rng),
//	)
type Module interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor) *tensor.Tensor

	// Parameters returns all parameters of this module, frozen or not.
	// Modules without weights return nil.
	Parameters() []*Parameter
}

// ModeSwitcher is implemented by modules whose forward pass differs between
// training and inference (Dropout, BatchNorm and the containers that hold
// them).
type ModeSwitcher interface {
	SetTraining(training bool)
}

// Container is implemented by modules that hold other modules.
type Container interface {
	Children() []Module
}

// SetTraining switches m and, for containers, every module it holds between
// training and inference mode. Modules without a mode are left alone.
func SetTraining(m Module, training bool) {
	if s, ok := m.(ModeSwitcher); ok {
		s.SetTraining(training)
		return
	}
	if c, ok := m.(Container); ok {
		for _, child := range c.Children() {
			SetTraining(child, training)
		}
	}
}
