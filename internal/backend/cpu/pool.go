package cpu

import (
	"fmt"

	"github.com/born-ml/born-gan/internal/parallel"
	"github.com/born-ml/born-gan/internal/tensor"
)

// AvgPool2D averages non-overlapping size×size windows of x[N, C, H, W].
// H and W must be divisible by size.
func (cpu *Backend) AvgPool2D(x *tensor.Tensor, size int) *tensor.Tensor {
	n, c, h, w := dims4("avgpool2d", x.Shape())
	if size <= 0 || h%size != 0 || w%size != 0 {
		panic(fmt.Sprintf("avgpool2d: %dx%d input not divisible by window %d", h, w, size))
	}
	oh, ow := h/size, w/size
	scale := 1 / float32(size*size)

	out := tensor.Zeros(tensor.Shape{n, c, oh, ow})
	od, xd := out.Data(), x.Data()
	parallel.ForBatch(n, c, func(b, ch int) {
		src := xd[(b*c+ch)*h*w : (b*c+ch+1)*h*w]
		dst := od[(b*c+ch)*oh*ow : (b*c+ch+1)*oh*ow]
		for row := 0; row < h; row++ {
			for col := 0; col < w; col++ {
				dst[(row/size)*ow+col/size] += src[row*w+col] * scale
			}
		}
	}, cpu.parallel)
	return out
}

// AvgPool2DBackward spreads each output gradient evenly over its window.
func (cpu *Backend) AvgPool2DBackward(grad *tensor.Tensor, inputShape tensor.Shape, size int) *tensor.Tensor {
	n, c, h, w := dims4("avgpool2d backward", inputShape)
	oh, ow := h/size, w/size
	if !grad.Shape().Equal(tensor.Shape{n, c, oh, ow}) {
		panic(fmt.Sprintf("avgpool2d backward: grad shape %v does not match input %v", grad.Shape(), inputShape))
	}
	scale := 1 / float32(size*size)

	out := tensor.Zeros(inputShape)
	od, gd := out.Data(), grad.Data()
	parallel.ForBatch(n, c, func(b, ch int) {
		src := gd[(b*c+ch)*oh*ow : (b*c+ch+1)*oh*ow]
		dst := od[(b*c+ch)*h*w : (b*c+ch+1)*h*w]
		for row := 0; row < h; row++ {
			for col := 0; col < w; col++ {
				dst[row*w+col] = src[(row/size)*ow+col/size] * scale
			}
		}
	}, cpu.parallel)
	return out
}

// Upsample2D repeats every pixel of x[N, C, H, W] into a factor×factor block.
func (cpu *Backend) Upsample2D(x *tensor.Tensor, factor int) *tensor.Tensor {
	n, c, h, w := dims4("upsample2d", x.Shape())
	if factor <= 0 {
		panic(fmt.Sprintf("upsample2d: invalid factor %d", factor))
	}
	oh, ow := h*factor, w*factor

	out := tensor.Zeros(tensor.Shape{n, c, oh, ow})
	od, xd := out.Data(), x.Data()
	parallel.ForBatch(n, c, func(b, ch int) {
		src := xd[(b*c+ch)*h*w : (b*c+ch+1)*h*w]
		dst := od[(b*c+ch)*oh*ow : (b*c+ch+1)*oh*ow]
		for row := 0; row < oh; row++ {
			for col := 0; col < ow; col++ {
				dst[row*ow+col] = src[(row/factor)*w+col/factor]
			}
		}
	}, cpu.parallel)
	return out
}

// Upsample2DBackward sums the gradient of each factor×factor block.
func (cpu *Backend) Upsample2DBackward(grad *tensor.Tensor, factor int) *tensor.Tensor {
	n, c, oh, ow := dims4("upsample2d backward", grad.Shape())
	if factor <= 0 || oh%factor != 0 || ow%factor != 0 {
		panic(fmt.Sprintf("upsample2d backward: %dx%d grad not divisible by factor %d", oh, ow, factor))
	}
	h, w := oh/factor, ow/factor

	out := tensor.Zeros(tensor.Shape{n, c, h, w})
	od, gd := out.Data(), grad.Data()
	parallel.ForBatch(n, c, func(b, ch int) {
		src := gd[(b*c+ch)*oh*ow : (b*c+ch+1)*oh*ow]
		dst := od[(b*c+ch)*h*w : (b*c+ch+1)*h*w]
		for row := 0; row < oh; row++ {
			for col := 0; col < ow; col++ {
				dst[(row/factor)*w+col/factor] += src[row*ow+col]
			}
		}
	}, cpu.parallel)
	return out
}

func dims4(op string, s tensor.Shape) (int, int, int, int) {
	if len(s) != 4 {
		panic(fmt.Sprintf("%s: expected NCHW tensor, got shape %v", op, s))
	}
	return s[0], s[1], s[2], s[3]
}
