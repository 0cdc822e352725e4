package cpu

import (
	"fmt"

	"github.com/born-ml/born-gan/internal/parallel"
	"github.com/born-ml/born-gan/internal/tensor"
)

// Conv2DInputBackward computes dL/dInput for Conv2D.
//
//	dInput[n, c, iy, ix] = sum_{o, ky, kx} grad[n, o, iy-ky+p, ix-kx+p] * kernel[o, c, ky, kx]
//
// Each (batch, input channel) plane is owned by one goroutine, so the
// scatter needs no synchronisation.
func (cpu *Backend) Conv2DInputBackward(grad, kernel *tensor.Tensor, inputShape tensor.Shape, padding int) *tensor.Tensor {
	g := newConvGeometry(inputShape, kernel.Shape(), padding)
	checkGradShape(grad, g)

	out := tensor.Zeros(inputShape)
	od, gd, kd := out.Data(), grad.Data(), kernel.Data()
	plane := g.outH * g.outW

	parallel.ForBatch(g.n, g.c, func(b, ic int) {
		dst := od[(b*g.c+ic)*g.h*g.w : (b*g.c+ic+1)*g.h*g.w]
		for oc := 0; oc < g.o; oc++ {
			src := gd[(b*g.o+oc)*plane : (b*g.o+oc+1)*plane]
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
						for ox := 0; ox < g.outW; ox++ {
							ix := ox + kx - padding
							if ix < 0 || ix >= g.w {
								continue
							}
							dst[iy*g.w+ix] += wv * src[oy*g.outW+ox]
						}
					}
				}
			}
		}
	}, cpu.parallel)

	return out
}

// Conv2DKernelBackward computes dL/dKernel for Conv2D.
//
//	dKernel[o, c, ky, kx] = sum_{n, oy, ox} grad[n, o, oy, ox] * input[n, c, oy+ky-p, ox+kx-p]
func (cpu *Backend) Conv2DKernelBackward(input, grad *tensor.Tensor, kernelShape tensor.Shape, padding int) *tensor.Tensor {
	g := newConvGeometry(input.Shape(), kernelShape, padding)
	checkGradShape(grad, g)

	out := tensor.Zeros(kernelShape)
	od, gd, id := out.Data(), grad.Data(), input.Data()
	plane := g.outH * g.outW

	parallel.ForBatch(g.o, g.c, func(oc, ic int) {
		wk := od[(oc*g.c+ic)*g.k*g.k : (oc*g.c+ic+1)*g.k*g.k]
		for b := 0; b < g.n; b++ {
			src := id[(b*g.c+ic)*g.h*g.w : (b*g.c+ic+1)*g.h*g.w]
			gp := gd[(b*g.o+oc)*plane : (b*g.o+oc+1)*plane]
			for ky := 0; ky < g.k; ky++ {
				for kx := 0; kx < g.k; kx++ {
					var s float32
					for oy := 0; oy < g.outH; oy++ {
						iy := oy + ky - padding
						if iy < 0 || iy >= g.h {
							continue
						}
						for ox := 0; ox < g.outW; ox++ {
							ix := ox + kx - padding
							if ix < 0 || ix >= g.w {
								continue
							}
							s += gp[oy*g.outW+ox] * src[iy*g.w+ix]
						}
					}
					wk[ky*g.k+kx] += s
				}
			}
		}
	}, cpu.parallel)

	return out
}

func checkGradShape(grad *tensor.Tensor, g convGeometry) {
	want := tensor.Shape{g.n, g.o, g.outH, g.outW}
	if !grad.Shape().Equal(want) {
		panic(fmt.Sprintf("conv2d backward: grad shape %v, want %v", grad.Shape(), want))
	}
}
