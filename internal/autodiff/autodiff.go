// Package autodiff implements automatic differentiation using the decorator pattern.
//
// Backend wraps any tensor.Backend implementation and adds gradient
// tracking through a GradientTape.
//
// Architecture:
//   - Decorator pattern: Backend wraps the CPU kernels
//   - GradientTape: Records operations during forward pass
//   - ops.Operation: Each op implements its own backward pass
//   - Reverse-mode AD: Computes gradients efficiently using chain rule
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	loss := model.Forward(x) ...
//	grads := backend.Backward(loss)
//	backend.Tape().StopRecording()
//	backend.Tape().Clear()
//
// When the tape is not recording the backend is a thin pass-through, which
// is how inference calls run.
package autodiff

import (
	"math/rand/v2"

	"github.com/born-ml/born-gan/internal/autodiff/ops"
	"github.com/born-ml/born-gan/internal/tensor"
)

// Backend wraps a tensor.Backend and records differentiable operations.
type Backend struct {
	inner tensor.Backend
	tape  *GradientTape
}

var _ tensor.Backend = (*Backend)(nil)

// New creates a new Backend wrapping the given backend.
func New(inner tensor.Backend) *Backend {
	return &Backend{
		inner: inner,
		tape:  NewGradientTape(),
	}
}

// Tape returns the gradient tape for manual control.
func (b *Backend) Tape() *GradientTape {
	return b.tape
}

// Inner returns the wrapped backend for direct access.
func (b *Backend) Inner() tensor.Backend {
	return b.inner
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "Autodiff(" + b.inner.Name() + ")"
}

// Backward computes gradients of a scalar loss with respect to every tensor
// recorded on the tape since the last Clear.
func (b *Backend) Backward(loss *tensor.Tensor) map[*tensor.Tensor]*tensor.Tensor {
	return b.tape.Backward(loss, tensor.Ones(loss.Shape()), b.inner)
}

func (b *Backend) record(op ops.Operation) {
	b.tape.Record(op)
}

// Add performs element-wise addition and records the operation.
func (b *Backend) Add(x, y *tensor.Tensor) *tensor.Tensor {
	result := b.inner.Add(x, y)
	if b.tape.IsRecording() {
		b.record(ops.NewAddOp(x, y, result))
	}
	return result
}

// Sub performs element-wise subtraction and records the operation.
func (b *Backend) Sub(x, y *tensor.Tensor) *tensor.Tensor {
	result := b.inner.Sub(x, y)
	if b.tape.IsRecording() {
		b.record(ops.NewSubOp(x, y, result))
	}
	return result
}

// Mul performs element-wise multiplication and records the operation.
func (b *Backend) Mul(x, y *tensor.Tensor) *tensor.Tensor {
	result := b.inner.Mul(x, y)
	if b.tape.IsRecording() {
		b.record(ops.NewMulOp(x, y, result))
	}
	return result
}

// MulScalar multiplies by a constant and records the operation.
func (b *Backend) MulScalar(x *tensor.Tensor, s float32) *tensor.Tensor {
	result := b.inner.MulScalar(x, s)
	if b.tape.IsRecording() {
		b.record(ops.NewMulScalarOp(x, result, s))
	}
	return result
}

// AddBias adds a per-channel bias and records the operation.
func (b *Backend) AddBias(x, bias *tensor.Tensor) *tensor.Tensor {
	result := b.inner.AddBias(x, bias)
	if b.tape.IsRecording() {
		b.record(ops.NewBiasOp(x, bias, result))
	}
	return result
}

// SumBias is a backward kernel and is not recorded.
func (b *Backend) SumBias(x *tensor.Tensor) *tensor.Tensor {
	return b.inner.SumBias(x)
}

// MatMul performs matrix multiplication and records the operation.
func (b *Backend) MatMul(x, y *tensor.Tensor) *tensor.Tensor {
	result := b.inner.MatMul(x, y)
	if b.tape.IsRecording() {
		b.record(ops.NewMatMulOp(x, y, result, false))
	}
	return result
}

// MatMulTransposeA is a backward kernel and is not recorded.
func (b *Backend) MatMulTransposeA(x, y *tensor.Tensor) *tensor.Tensor {
	return b.inner.MatMulTransposeA(x, y)
}

// MatMulTransposeB computes x @ y^T and records the operation.
func (b *Backend) MatMulTransposeB(x, y *tensor.Tensor) *tensor.Tensor {
	result := b.inner.MatMulTransposeB(x, y)
	if b.tape.IsRecording() {
		b.record(ops.NewMatMulOp(x, y, result, true))
	}
	return result
}

// Reshape reshapes a tensor and records the operation.
//
// Reshape must be recorded: the result is a new tensor, and without the op
// the gradient computed for it never reaches the original.
func (b *Backend) Reshape(x *tensor.Tensor, shape tensor.Shape) *tensor.Tensor {
	result := b.inner.Reshape(x, shape)
	if b.tape.IsRecording() {
		b.record(ops.NewReshapeOp(x, result))
	}
	return result
}

// LeakyReLU applies the activation and records the operation.
func (b *Backend) LeakyReLU(x *tensor.Tensor, alpha float32) *tensor.Tensor {
	result := b.inner.LeakyReLU(x, alpha)
	if b.tape.IsRecording() {
		b.record(ops.NewLeakyReLUOp(x, result, alpha))
	}
	return result
}

// LeakyReLUBackward is a backward kernel and is not recorded.
func (b *Backend) LeakyReLUBackward(x, grad *tensor.Tensor, alpha float32) *tensor.Tensor {
	return b.inner.LeakyReLUBackward(x, grad, alpha)
}

// Tanh applies tanh and records the operation.
func (b *Backend) Tanh(x *tensor.Tensor) *tensor.Tensor {
	result := b.inner.Tanh(x)
	if b.tape.IsRecording() {
		b.record(ops.NewTanhOp(x, result))
	}
	return result
}

// Sigmoid applies the sigmoid and records the operation.
func (b *Backend) Sigmoid(x *tensor.Tensor) *tensor.Tensor {
	result := b.inner.Sigmoid(x)
	if b.tape.IsRecording() {
		b.record(ops.NewSigmoidOp(x, result))
	}
	return result
}

// Conv2D performs a stride-1 convolution and records the operation.
func (b *Backend) Conv2D(input, kernel *tensor.Tensor, padding int) *tensor.Tensor {
	result := b.inner.Conv2D(input, kernel, padding)
	if b.tape.IsRecording() {
		b.record(ops.NewConv2DOp(input, kernel, result, padding))
	}
	return result
}

// Conv2DInputBackward is a backward kernel and is not recorded.
func (b *Backend) Conv2DInputBackward(grad, kernel *tensor.Tensor, inputShape tensor.Shape, padding int) *tensor.Tensor {
	return b.inner.Conv2DInputBackward(grad, kernel, inputShape, padding)
}

// Conv2DKernelBackward is a backward kernel and is not recorded.
func (b *Backend) Conv2DKernelBackward(input, grad *tensor.Tensor, kernelShape tensor.Shape, padding int) *tensor.Tensor {
	return b.inner.Conv2DKernelBackward(input, grad, kernelShape, padding)
}

// AvgPool2D pools and records the operation.
func (b *Backend) AvgPool2D(x *tensor.Tensor, size int) *tensor.Tensor {
	result := b.inner.AvgPool2D(x, size)
	if b.tape.IsRecording() {
		b.record(ops.NewAvgPool2DOp(x, result, size))
	}
	return result
}

// AvgPool2DBackward is a backward kernel and is not recorded.
func (b *Backend) AvgPool2DBackward(grad *tensor.Tensor, inputShape tensor.Shape, size int) *tensor.Tensor {
	return b.inner.AvgPool2DBackward(grad, inputShape, size)
}

// Upsample2D upsamples and records the operation.
func (b *Backend) Upsample2D(x *tensor.Tensor, factor int) *tensor.Tensor {
	result := b.inner.Upsample2D(x, factor)
	if b.tape.IsRecording() {
		b.record(ops.NewUpsample2DOp(x, result, factor))
	}
	return result
}

// Upsample2DBackward is a backward kernel and is not recorded.
func (b *Backend) Upsample2DBackward(grad *tensor.Tensor, factor int) *tensor.Tensor {
	return b.inner.Upsample2DBackward(grad, factor)
}

// BatchNorm normalises x per channel and records the operation.
//
// In training mode the returned mean and variance are the batch
// statistics; in inference mode they are the given running statistics.
func (b *Backend) BatchNorm(x, gamma, beta *tensor.Tensor, mean, variance []float32, eps float32, training bool) (*tensor.Tensor, []float32, []float32) {
	op, batchMean, batchVar := ops.BatchNorm(x, gamma, beta, mean, variance, eps, training)
	b.record(op)
	return op.Output(), batchMean, batchVar
}

// Dropout applies inverted dropout and records the operation.
func (b *Backend) Dropout(x *tensor.Tensor, rate float32, rng *rand.Rand) *tensor.Tensor {
	op := ops.Dropout(x, rate, rng)
	b.record(op)
	return op.Output()
}

// AddNoise injects per-channel scaled noise and records the operation.
func (b *Backend) AddNoise(x, noise, strength *tensor.Tensor) *tensor.Tensor {
	op := ops.Noise(x, noise, strength)
	b.record(op)
	return op.Output()
}

// BinaryCrossEntropy computes the mean BCE loss and records the operation.
func (b *Backend) BinaryCrossEntropy(predictions, targets *tensor.Tensor) *tensor.Tensor {
	op := ops.BinaryCrossEntropy(predictions, targets)
	b.record(op)
	return op.Output()
}
