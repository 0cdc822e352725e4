package cpu

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/born-gan/internal/parallel"
	"github.com/born-ml/born-gan/internal/tensor"
)

func mustTensor(t *testing.T, data []float32, shape ...int) *tensor.Tensor {
	t.Helper()
	x, err := tensor.FromSlice(data, tensor.Shape(shape))
	require.NoError(t, err)
	return x
}

func dot(a, b *tensor.Tensor) float64 {
	var s float64
	for i, v := range a.Data() {
		s += float64(v) * float64(b.Data()[i])
	}
	return s
}

func TestElementwise(t *testing.T) {
	backend := New()
	a := mustTensor(t, []float32{1, 2, 3}, 3)
	b := mustTensor(t, []float32{4, 5, 6}, 3)

	assert.Equal(t, []float32{5, 7, 9}, backend.Add(a, b).Data())
	assert.Equal(t, []float32{-3, -3, -3}, backend.Sub(a, b).Data())
	assert.Equal(t, []float32{4, 10, 18}, backend.Mul(a, b).Data())
	assert.Equal(t, []float32{2, 4, 6}, backend.MulScalar(a, 2).Data())
	assert.Equal(t, []float32{1, 2, 3}, a.Data(), "inputs must not be modified")

	assert.Panics(t, func() { backend.Add(a, tensor.Zeros(tensor.Shape{2})) })
}

func TestBias(t *testing.T) {
	backend := New()
	x := tensor.Zeros(tensor.Shape{2, 3, 2})
	bias := mustTensor(t, []float32{1, 2, 3}, 3)

	y := backend.AddBias(x, bias)
	assert.Equal(t, []float32{1, 1, 2, 2, 3, 3, 1, 1, 2, 2, 3, 3}, y.Data())

	assert.Equal(t, []float32{4, 8, 12}, backend.SumBias(y).Data())
}

func TestMatMul(t *testing.T) {
	backend := New()
	a := mustTensor(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)
	b := mustTensor(t, []float32{7, 8, 9, 10, 11, 12}, 3, 2)

	c := backend.MatMul(a, b)
	assert.Equal(t, tensor.Shape{2, 2}, c.Shape())
	assert.Equal(t, []float32{58, 64, 139, 154}, c.Data())

	// a^T @ a and a @ a^T against explicit transposes.
	aT := mustTensor(t, []float32{1, 4, 2, 5, 3, 6}, 3, 2)
	assert.Equal(t, backend.MatMul(aT, a).Data(), backend.MatMulTransposeA(a, a).Data())
	assert.Equal(t, backend.MatMul(a, aT).Data(), backend.MatMulTransposeB(a, a).Data())

	assert.Panics(t, func() { backend.MatMul(a, a) })
}

func TestMatMulParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	a := tensor.Randn(tensor.Shape{33, 17}, rng)
	b := tensor.Randn(tensor.Shape{17, 9}, rng)

	seq := NewWithConfig(parallel.Sequential()).MatMul(a, b)
	par := NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}).MatMul(a, b)
	assert.True(t, seq.AllClose(par, 1e-5))
}

func TestActivations(t *testing.T) {
	backend := New()
	x := mustTensor(t, []float32{-2, 0, 3}, 3)

	assert.Equal(t, []float32{-0.4, 0, 3}, backend.LeakyReLU(x, 0.2).Data())
	g := mustTensor(t, []float32{1, 1, 1}, 3)
	assert.Equal(t, []float32{0.2, 0.2, 1}, backend.LeakyReLUBackward(x, g, 0.2).Data())

	s := backend.Sigmoid(mustTensor(t, []float32{0, 100, -100}, 3)).Data()
	assert.InDelta(t, 0.5, s[0], 1e-6)
	assert.InDelta(t, 1.0, s[1], 1e-6)
	assert.InDelta(t, 0.0, s[2], 1e-6)

	th := backend.Tanh(mustTensor(t, []float32{0, 1}, 2)).Data()
	assert.InDelta(t, 0.0, th[0], 1e-6)
	assert.InDelta(t, 0.7615942, th[1], 1e-6)
}

func TestConv2DKnownValues(t *testing.T) {
	backend := New()
	// 1x1x3x3 input, 1x1x2x2 kernel of ones, no padding: 2x2 window sums.
	x := mustTensor(t, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, 1, 1, 3, 3)
	k := tensor.Ones(tensor.Shape{1, 1, 2, 2})

	y := backend.Conv2D(x, k, 0)
	assert.Equal(t, tensor.Shape{1, 1, 2, 2}, y.Shape())
	assert.Equal(t, []float32{12, 16, 24, 28}, y.Data())

	// Same-padding 3x3 kernel keeps the spatial size.
	k3 := tensor.Ones(tensor.Shape{2, 1, 3, 3})
	y3 := backend.Conv2D(x, k3, 1)
	assert.Equal(t, tensor.Shape{1, 2, 3, 3}, y3.Shape())
	assert.Equal(t, float32(45), y3.At(0, 0, 1, 1))
	assert.Equal(t, float32(12), y3.At(0, 1, 0, 0))
}

// The backward kernels are the adjoints of the forward kernel:
// <g, conv(x, k)> == <dx, x> == <dk, k> for linear maps in x and k.
func TestConv2DBackwardAdjoint(t *testing.T) {
	backend := New()
	rng := rand.New(rand.NewPCG(7, 7))

	for _, padding := range []int{0, 1} {
		x := tensor.Randn(tensor.Shape{2, 3, 5, 4}, rng)
		k := tensor.Randn(tensor.Shape{4, 3, 3, 3}, rng)
		y := backend.Conv2D(x, k, padding)
		g := tensor.Randn(y.Shape(), rng)

		dx := backend.Conv2DInputBackward(g, k, x.Shape(), padding)
		dk := backend.Conv2DKernelBackward(x, g, k.Shape(), padding)

		want := dot(g, y)
		assert.InDelta(t, want, dot(dx, x), 1e-3, "padding %d input adjoint", padding)
		assert.InDelta(t, want, dot(dk, k), 1e-3, "padding %d kernel adjoint", padding)
	}
}

func TestPoolAndUpsample(t *testing.T) {
	backend := New()
	x := mustTensor(t, []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
	}, 1, 1, 2, 4)

	p := backend.AvgPool2D(x, 2)
	assert.Equal(t, tensor.Shape{1, 1, 1, 2}, p.Shape())
	assert.Equal(t, []float32{3.5, 5.5}, p.Data())

	u := backend.Upsample2D(p, 2)
	assert.Equal(t, []float32{3.5, 3.5, 5.5, 5.5, 3.5, 3.5, 5.5, 5.5}, u.Data())

	assert.Equal(t, []float32{14, 22}, backend.Upsample2DBackward(u, 2).Data())
	assert.Panics(t, func() { backend.AvgPool2D(x, 3) })
}

func TestPoolBackwardAdjoint(t *testing.T) {
	backend := New()
	rng := rand.New(rand.NewPCG(9, 9))

	x := tensor.Randn(tensor.Shape{2, 2, 4, 6}, rng)
	y := backend.AvgPool2D(x, 2)
	g := tensor.Randn(y.Shape(), rng)
	assert.InDelta(t, dot(g, y), dot(backend.AvgPool2DBackward(g, x.Shape(), 2), x), 1e-4)

	u := backend.Upsample2D(x, 2)
	gu := tensor.Randn(u.Shape(), rng)
	assert.InDelta(t, dot(gu, u), dot(backend.Upsample2DBackward(gu, 2), x), 1e-4)
}
