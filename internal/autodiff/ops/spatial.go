package ops

import "github.com/born-ml/born-gan/internal/tensor"

// Conv2DOp represents a stride-1 convolution: output = conv(input, kernel).
type Conv2DOp struct {
	input, kernel, output *tensor.Tensor
	padding               int
}

// NewConv2DOp creates a new Conv2DOp.
func NewConv2DOp(input, kernel, output *tensor.Tensor, padding int) *Conv2DOp {
	return &Conv2DOp{input: input, kernel: kernel, output: output, padding: padding}
}

// Backward computes [grad_input, grad_kernel].
func (op *Conv2DOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{
		backend.Conv2DInputBackward(outputGrad, op.kernel, op.input.Shape(), op.padding),
		backend.Conv2DKernelBackward(op.input, outputGrad, op.kernel.Shape(), op.padding),
	}
}

// Inputs returns [input, kernel].
func (op *Conv2DOp) Inputs() []*tensor.Tensor { return []*tensor.Tensor{op.input, op.kernel} }

// Output returns the convolution result.
func (op *Conv2DOp) Output() *tensor.Tensor { return op.output }

// AvgPool2DOp represents non-overlapping average pooling.
type AvgPool2DOp struct {
	input, output *tensor.Tensor
	size          int
}

// NewAvgPool2DOp creates a new AvgPool2DOp.
func NewAvgPool2DOp(input, output *tensor.Tensor, size int) *AvgPool2DOp {
	return &AvgPool2DOp{input: input, output: output, size: size}
}

// Backward spreads the gradient over each pooling window.
func (op *AvgPool2DOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{backend.AvgPool2DBackward(outputGrad, op.input.Shape(), op.size)}
}

// Inputs returns [input].
func (op *AvgPool2DOp) Inputs() []*tensor.Tensor { return []*tensor.Tensor{op.input} }

// Output returns the pooled tensor.
func (op *AvgPool2DOp) Output() *tensor.Tensor { return op.output }

// Upsample2DOp represents nearest-neighbour upsampling.
type Upsample2DOp struct {
	input, output *tensor.Tensor
	factor        int
}

// NewUpsample2DOp creates a new Upsample2DOp.
func NewUpsample2DOp(input, output *tensor.Tensor, factor int) *Upsample2DOp {
	return &Upsample2DOp{input: input, output: output, factor: factor}
}

// Backward sums the gradient of every upsampled block.
func (op *Upsample2DOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{backend.Upsample2DBackward(outputGrad, op.factor)}
}

// Inputs returns [input].
func (op *Upsample2DOp) Inputs() []*tensor.Tensor { return []*tensor.Tensor{op.input} }

// Output returns the upsampled tensor.
func (op *Upsample2DOp) Output() *tensor.Tensor { return op.output }
