package optim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/born-gan/internal/nn"
	"github.com/born-ml/born-gan/internal/optim"
	"github.com/born-ml/born-gan/internal/tensor"
)

func scalarParam(t *testing.T, v float32) *nn.Parameter {
	t.Helper()
	x, err := tensor.FromSlice([]float32{v}, tensor.Shape{1})
	require.NoError(t, err)
	return nn.NewParameter("x", x)
}

func gradFor(p *nn.Parameter, g float32) map[*tensor.Tensor]*tensor.Tensor {
	grad := tensor.Full(tensor.Shape{1}, g)
	return map[*tensor.Tensor]*tensor.Tensor{p.Tensor(): grad}
}

func TestSGD_SimpleUpdate(t *testing.T) {
	param := scalarParam(t, 2)
	sgd := optim.NewSGD([]*nn.Parameter{param}, optim.SGDConfig{LR: 0.1})

	sgd.Step(gradFor(param, 1))
	assert.InDelta(t, 1.9, param.Tensor().Item(), 1e-6)
}

func TestSGD_Momentum(t *testing.T) {
	param := scalarParam(t, 0)
	sgd := optim.NewSGD([]*nn.Parameter{param}, optim.SGDConfig{LR: 1, Momentum: 0.5})

	sgd.Step(gradFor(param, 1)) // v=1
	sgd.Step(gradFor(param, 1)) // v=1.5
	assert.InDelta(t, -2.5, param.Tensor().Item(), 1e-6)
}

func TestAdam_FirstStepMovesByLR(t *testing.T) {
	param := scalarParam(t, 1)
	adam := optim.NewAdam([]*nn.Parameter{param}, optim.DefaultAdamConfig())

	// With bias correction the first step is lr * g/|g|.
	adam.Step(gradFor(param, 4))
	assert.InDelta(t, 1-0.001, param.Tensor().Item(), 1e-6)
	assert.Equal(t, 1, adam.GetTimestep())
}

func TestAdam_ZeroBeta1IsKept(t *testing.T) {
	param := scalarParam(t, 0)
	adam := optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{
		LR:    0.1,
		Betas: [2]float32{0, 0.99},
	})

	// beta1 = 0: the first moment forgets the previous gradient, so a sign
	// flip reverses the update direction immediately.
	adam.Step(gradFor(param, 1))
	after1 := param.Tensor().Item()
	adam.Step(gradFor(param, -1))
	after2 := param.Tensor().Item()

	assert.Less(t, after1, float32(0))
	assert.Greater(t, after2, after1)
}

func TestOptimizersSkipFrozenParameters(t *testing.T) {
	for _, name := range []string{"adam", "sgd"} {
		t.Run(name, func(t *testing.T) {
			frozen := scalarParam(t, 3)
			live := scalarParam(t, 3)
			opt, err := optim.New(optim.Config{Name: name, LR: 0.1, Beta1: 0.9, Beta2: 0.999}, []*nn.Parameter{frozen, live})
			require.NoError(t, err)

			restore := nn.Freeze([]*nn.Parameter{frozen})
			grads := gradFor(frozen, 1)
			grads[live.Tensor()] = tensor.Full(tensor.Shape{1}, 1)
			opt.Step(grads)
			restore()

			assert.Equal(t, float32(3), frozen.Tensor().Item())
			assert.Less(t, live.Tensor().Item(), float32(3))
		})
	}
}

func TestNewUnknownOptimizer(t *testing.T) {
	_, err := optim.New(optim.Config{Name: "lbfgs"}, nil)
	assert.ErrorIs(t, err, optim.ErrUnknownOptimizer)
}

func TestZeroGrad(t *testing.T) {
	param := scalarParam(t, 1)
	param.SetGrad(tensor.Ones(tensor.Shape{1}))
	adam := optim.NewAdam([]*nn.Parameter{param}, optim.DefaultAdamConfig())

	adam.ZeroGrad()
	assert.Nil(t, param.Grad())
	assert.InDelta(t, 0.001, adam.GetLR(), 1e-9)
}
