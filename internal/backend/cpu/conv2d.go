package cpu

import (
	"fmt"

	"github.com/born-ml/born-gan/internal/parallel"
	"github.com/born-ml/born-gan/internal/tensor"
)

// convGeometry holds the validated dimensions of a stride-1 convolution.
type convGeometry struct {
	n, c, h, w int // input
	o, k       int // kernel
	outH, outW int
	padding    int
}

func newConvGeometry(inputShape, kernelShape tensor.Shape, padding int) convGeometry {
	if len(inputShape) != 4 || len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv2d: expected 4D input and kernel, got %v and %v", inputShape, kernelShape))
	}
	if inputShape[1] != kernelShape[1] {
		panic(fmt.Sprintf("conv2d: input channels %d != kernel channels %d", inputShape[1], kernelShape[1]))
	}
	if kernelShape[2] != kernelShape[3] {
		panic(fmt.Sprintf("conv2d: only square kernels supported, got %v", kernelShape))
	}
	g := convGeometry{
		n: inputShape[0], c: inputShape[1], h: inputShape[2], w: inputShape[3],
		o: kernelShape[0], k: kernelShape[2],
		padding: padding,
	}
	g.outH = g.h + 2*padding - g.k + 1
	g.outW = g.w + 2*padding - g.k + 1
	if g.outH <= 0 || g.outW <= 0 {
		panic(fmt.Sprintf("conv2d: kernel %d with padding %d too large for %dx%d input", g.k, padding, g.h, g.w))
	}
	return g
}

// Conv2D computes a stride-1 2D convolution (cross-correlation).
//
// Input:  [N, C, H, W]
// Kernel: [O, C, K, K]
// Output: [N, O, H+2p-K+1, W+2p-K+1]
//
// Work is split over (batch, output channel) pairs.
func (cpu *Backend) Conv2D(input, kernel *tensor.Tensor, padding int) *tensor.Tensor {
	g := newConvGeometry(input.Shape(), kernel.Shape(), padding)

	out := tensor.Zeros(tensor.Shape{g.n, g.o, g.outH, g.outW})
	od, id, kd := out.Data(), input.Data(), kernel.Data()
	plane := g.outH * g.outW

	parallel.ForBatch(g.n, g.o, func(b, oc int) {
		dst := od[(b*g.o+oc)*plane : (b*g.o+oc+1)*plane]
		for ic := 0; ic < g.c; ic++ {
			src := id[(b*g.c+ic)*g.h*g.w : (b*g.c+ic+1)*g.h*g.w]
			wk := kd[(oc*g.c+ic)*g.k*g.k : (oc*g.c+ic+1)*g.k*g.k]
			for ky := 0; ky < g.k; ky++ {
				for kx := 0; kx < g.k; kx++ {
					wv := wk[ky*g.k+kx]
					if wv == 0 {
						continue
					}
					for oy := 0; oy < g.outH; oy++ {
						iy := oy + ky - padding
						if iy < 0 || iy >= g.h {
							continue
						}
						srow := src[iy*g.w : (iy+1)*g.w]
						drow := dst[oy*g.outW : (oy+1)*g.outW]
						for ox := 0; ox < g.outW; ox++ {
							ix := ox + kx - padding
							if ix < 0 || ix >= g.w {
								continue
							}
							drow[ox] += wv * srow[ix]
						}
					}
				}
			}
		}
	}, cpu.parallel)

	return out
}
