package nn_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/born-gan/internal/autodiff"
	"github.com/born-ml/born-gan/internal/backend/cpu"
	"github.com/born-ml/born-gan/internal/nn"
	"github.com/born-ml/born-gan/internal/tensor"
)

func newBackend() *autodiff.Backend {
	return autodiff.New(cpu.New())
}

func TestParameter(t *testing.T) {
	data, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3})
	require.NoError(t, err)
	param := nn.NewParameter("test_param", data)

	assert.Equal(t, "test_param", param.Name())
	assert.Same(t, data, param.Tensor())
	assert.Nil(t, param.Grad())
	assert.True(t, param.Trainable())

	grad := tensor.Ones(tensor.Shape{3})
	param.SetGrad(grad)
	assert.Same(t, grad, param.Grad())

	param.ZeroGrad()
	assert.Nil(t, param.Grad())
}

func TestFreezeRestoresPreviousFlags(t *testing.T) {
	a := nn.NewParameter("a", tensor.Zeros(tensor.Shape{1}))
	b := nn.NewParameter("b", tensor.Zeros(tensor.Shape{1}))
	b.SetTrainable(false)

	restore := nn.Freeze([]*nn.Parameter{a, b})
	assert.False(t, a.Trainable())
	assert.False(t, b.Trainable())
	assert.Empty(t, nn.TrainableOnly([]*nn.Parameter{a, b}))

	restore()
	assert.True(t, a.Trainable())
	assert.False(t, b.Trainable(), "a parameter frozen before stays frozen")
	assert.Equal(t, []*nn.Parameter{a}, nn.TrainableOnly([]*nn.Parameter{a, b}))
}

func TestLinearForward(t *testing.T) {
	backend := newBackend()
	layer := nn.NewLinear(2, 3, backend, rand.New(rand.NewPCG(1, 1)))
	copy(layer.Weight().Tensor().Data(), []float32{1, 0, 0, 1, 1, 1})
	copy(layer.Bias().Tensor().Data(), []float32{0.5, 0, -1})

	x, _ := tensor.FromSlice([]float32{2, 3}, tensor.Shape{1, 2})
	y := layer.Forward(x)

	assert.Equal(t, tensor.Shape{1, 3}, y.Shape())
	assert.InDeltaSlice(t, []float32{2.5, 3, 4}, y.Data(), 1e-6)
	assert.Len(t, layer.Parameters(), 2)
	assert.Panics(t, func() { layer.Forward(tensor.Zeros(tensor.Shape{1, 5})) })
}

func TestConv2DPreservesSpatialSize(t *testing.T) {
	backend := newBackend()
	conv := nn.NewConv2D(3, 8, 3, backend, rand.New(rand.NewPCG(2, 2)))

	y := conv.Forward(tensor.Ones(tensor.Shape{2, 3, 6, 4}))
	assert.Equal(t, tensor.Shape{2, 8, 6, 4}, y.Shape())
	assert.Equal(t, 8*3*3*3+8, nn.CountParameters(conv.Parameters()))
	assert.Panics(t, func() { nn.NewConv2D(3, 8, 2, backend, nil) })
}

func TestDropoutModes(t *testing.T) {
	backend := newBackend()
	drop := nn.NewDropout(0.5, backend, rand.New(rand.NewPCG(3, 3)))
	x := tensor.Ones(tensor.Shape{100})

	y := drop.Forward(x)
	zeros := 0
	for _, v := range y.Data() {
		if v == 0 {
			zeros++
		}
	}
	assert.Positive(t, zeros)

	nn.SetTraining(drop, false)
	assert.Same(t, x, drop.Forward(x))
}

func TestBatchNormRunningStats(t *testing.T) {
	backend := newBackend()
	bn := nn.NewBatchNorm(1, backend)
	x, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{4, 1})

	bn.Forward(x)
	mean, variance := bn.RunningStats()
	assert.InDelta(t, 0.01*2.5, mean[0], 1e-6)
	assert.InDelta(t, 0.99+0.01*1.25, variance[0], 1e-6)

	// Inference mode reads the running statistics without updating them.
	bn.SetTraining(false)
	bn.Forward(x)
	mean2, variance2 := bn.RunningStats()
	assert.Equal(t, mean, mean2)
	assert.Equal(t, variance, variance2)
}

func TestSetTrainingReachesNestedModules(t *testing.T) {
	backend := newBackend()
	bn := nn.NewBatchNorm(2, backend)
	drop := nn.NewDropout(0.5, backend, nil)
	model := nn.NewSequential(
		nn.NewResidual(nn.NewSequential(bn, nn.NewLeakyReLU(0.2, backend)), nil, backend),
		drop,
	)

	nn.SetTraining(model, false)
	x := tensor.Ones(tensor.Shape{2, 2, 2, 2})
	model.Forward(x)

	mean, _ := bn.RunningStats()
	assert.Equal(t, []float32{0, 0}, mean, "inference mode must not touch running stats")
}

func TestResidualAddsShortcut(t *testing.T) {
	backend := newBackend()
	block := nn.NewResidual(nn.NewLeakyReLU(0.5, backend), nil, backend)
	x, _ := tensor.FromSlice([]float32{-2, 2}, tensor.Shape{1, 2})

	y := block.Forward(x)
	assert.Equal(t, []float32{-3, 4}, y.Data())
	assert.Empty(t, block.Parameters())
}

func TestFlattenAndResampling(t *testing.T) {
	backend := newBackend()
	x := tensor.Ones(tensor.Shape{2, 3, 4, 4})

	assert.Equal(t, tensor.Shape{2, 3, 2, 2}, nn.NewAvgPool2D(2, backend).Forward(x).Shape())
	assert.Equal(t, tensor.Shape{2, 3, 8, 8}, nn.NewUpsample(2, backend).Forward(x).Shape())
	assert.Equal(t, tensor.Shape{2, 48}, nn.NewFlatten(backend).Forward(x).Shape())
}

func TestBinaryAccuracy(t *testing.T) {
	pred, _ := tensor.FromSlice([]float32{0.9, 0.2, 0.6, 0.4}, tensor.Shape{4, 1})
	targets, _ := tensor.FromSlice([]float32{1, 0, 0, 0}, tensor.Shape{4, 1})

	acc, err := nn.BinaryAccuracy(pred, targets)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, acc, 1e-6)

	_, err = nn.BinaryAccuracy(pred, tensor.Zeros(tensor.Shape{3, 1}))
	assert.Error(t, err)
}

func TestBCELossTrainsLinearClassifier(t *testing.T) {
	backend := newBackend()
	layer := nn.NewLinear(1, 1, backend, rand.New(rand.NewPCG(4, 4)))
	model := nn.NewSequential(layer, nn.NewSigmoid(backend))
	loss := nn.NewBCELoss(backend)

	x, _ := tensor.FromSlice([]float32{-2, -1, 1, 2}, tensor.Shape{4, 1})
	y, _ := tensor.FromSlice([]float32{0, 0, 1, 1}, tensor.Shape{4, 1})

	var first, last float32
	for i := range 50 {
		backend.Tape().StartRecording()
		l := loss.Forward(model.Forward(x), y)
		grads := backend.Backward(l)
		backend.Tape().StopRecording()
		backend.Tape().Clear()

		nn.AssignGrads(model.Parameters(), grads)
		for _, p := range model.Parameters() {
			pd, gd := p.Tensor().Data(), p.Grad().Data()
			for j := range pd {
				pd[j] -= 0.5 * gd[j]
			}
		}
		if i == 0 {
			first = l.Item()
		}
		last = l.Item()
	}
	assert.Less(t, last, first)
}

func TestSummaryListsLeaves(t *testing.T) {
	backend := newBackend()
	model := nn.NewSequential(
		nn.NewConv2D(3, 4, 1, backend, nil),
		nn.NewResidual(nn.NewLeakyReLU(0.2, backend), nil, backend),
	)

	layers := nn.Summary(model)
	require.Len(t, layers, 2)
	assert.Equal(t, "0", layers[0].Path)
	assert.Equal(t, "Conv2D(3 -> 4, kernel=1x1)", layers[0].Layer)
	assert.Equal(t, 16, layers[0].Params)
	assert.Equal(t, "1.0", layers[1].Path)
	assert.Contains(t, nn.FormatSummary("model", layers), "total params: 16")
}
