package nn

import (
	"fmt"

	"github.com/born-ml/born-gan/internal/autodiff"
	"github.com/born-ml/born-gan/internal/tensor"
)

// AvgPool2D averages non-overlapping size×size windows of [N, C, H, W]
// input. H and W must be divisible by size.
type AvgPool2D struct {
	size    int
	backend *autodiff.Backend
}

// NewAvgPool2D creates an average pooling layer.
func NewAvgPool2D(size int, backend *autodiff.Backend) *AvgPool2D {
	return &AvgPool2D{size: size, backend: backend}
}

// Forward pools the input.
func (p *AvgPool2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	return p.backend.AvgPool2D(input, p.size)
}

// Parameters returns nil.
func (p *AvgPool2D) Parameters() []*Parameter { return nil }

func (p *AvgPool2D) String() string {
	return fmt.Sprintf("AvgPool2D(%d)", p.size)
}

// Upsample repeats every pixel factor×factor times (nearest neighbour).
type Upsample struct {
	factor  int
	backend *autodiff.Backend
}

// NewUpsample creates a nearest-neighbour upsampling layer.
func NewUpsample(factor int, backend *autodiff.Backend) *Upsample {
	return &Upsample{factor: factor, backend: backend}
}

// Forward upsamples the input.
func (u *Upsample) Forward(input *tensor.Tensor) *tensor.Tensor {
	return u.backend.Upsample2D(input, u.factor)
}

// Parameters returns nil.
func (u *Upsample) Parameters() []*Parameter { return nil }

func (u *Upsample) String() string {
	return fmt.Sprintf("Upsample(x%d)", u.factor)
}

// Flatten reshapes [N, ...] to [N, prod(...)].
type Flatten struct {
	backend *autodiff.Backend
}

// NewFlatten creates a flatten layer.
func NewFlatten(backend *autodiff.Backend) *Flatten {
	return &Flatten{backend: backend}
}

// Forward flattens all dimensions after the batch dimension.
func (f *Flatten) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	n := shape[0]
	return f.backend.Reshape(input, tensor.Shape{n, input.NumElements() / n})
}

// Parameters returns nil.
func (f *Flatten) Parameters() []*Parameter { return nil }

func (f *Flatten) String() string { return "Flatten" }
