package nn

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/born-gan/internal/autodiff"
	"github.com/born-ml/born-gan/internal/tensor"
)

// Conv2D is a stride-1 2D convolutional layer with "same" padding.
//
// Input shape:  [batch, in_channels, height, width]
// Weight shape: [out_channels, in_channels, kernel, kernel]
// Bias shape:   [out_channels]
// Output shape: [batch, out_channels, height, width]
//
// The kernel size must be odd so the spatial size is preserved. Weights use
// He initialization, biases start at zero.
//
// Example:
//
//	conv := nn.NewConv2D(3, 16, 3, backend, rng)
//	output := conv.Forward(images) // [N, 16, H, W]
type Conv2D struct {
	inChannels  int
	outChannels int
	kernelSize  int
	padding     int

	weight *Parameter // [out_channels, in_channels, kernel, kernel]
	bias   *Parameter // [out_channels]

	backend *autodiff.Backend
}

// NewConv2D creates a new convolutional layer.
func NewConv2D(inChannels, outChannels, kernelSize int, backend *autodiff.Backend, rng *rand.Rand) *Conv2D {
	if kernelSize%2 == 0 {
		panic(fmt.Sprintf("NewConv2D: kernel size must be odd, got %d", kernelSize))
	}
	fanIn := inChannels * kernelSize * kernelSize
	weightShape := tensor.Shape{outChannels, inChannels, kernelSize, kernelSize}

	return &Conv2D{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelSize:  kernelSize,
		padding:     kernelSize / 2,
		weight:      NewParameter("weight", He(fanIn, weightShape, rng)),
		bias:        NewParameter("bias", tensor.Zeros(tensor.Shape{outChannels})),
		backend:     backend,
	}
}

// Forward applies the convolution and adds the bias.
func (c *Conv2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("Conv2D.Forward: expected 4D input [N, C, H, W], got shape %v", shape))
	}
	if shape[1] != c.inChannels {
		panic(fmt.Sprintf("Conv2D.Forward: expected %d input channels, got %d", c.inChannels, shape[1]))
	}

	output := c.backend.Conv2D(input, c.weight.Tensor(), c.padding)
	return c.backend.AddBias(output, c.bias.Tensor())
}

// Parameters returns [weight, bias].
func (c *Conv2D) Parameters() []*Parameter {
	return []*Parameter{c.weight, c.bias}
}

// Weight returns the kernel parameter.
func (c *Conv2D) Weight() *Parameter {
	return c.weight
}

func (c *Conv2D) String() string {
	return fmt.Sprintf("Conv2D(%d -> %d, kernel=%dx%d)", c.inChannels, c.outChannels, c.kernelSize, c.kernelSize)
}
