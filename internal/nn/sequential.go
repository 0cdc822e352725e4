package nn

import (
	"github.com/born-ml/born-gan/internal/autodiff"
	"github.com/born-ml/born-gan/internal/tensor"
)

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input:
//
//	model := nn.NewSequential(
//	    nn.NewConv2D(3, 16, 3, backend, rng),
//	    nn.NewLeakyReLU(0.2, backend),
//	)
//	output := model.Forward(input)
type Sequential struct {
	modules []Module
}

// NewSequential creates a new Sequential container.
func NewSequential(modules ...Module) *Sequential {
	return &Sequential{modules: modules}
}

// Forward applies all modules in sequence.
func (s *Sequential) Forward(input *tensor.Tensor) *tensor.Tensor {
	output := input
	for _, module := range s.modules {
		output = module.Forward(output)
	}
	return output
}

// Parameters returns the parameters of every module, in order.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// Add appends a module to the sequence.
func (s *Sequential) Add(module Module) {
	s.modules = append(s.modules, module)
}

// Len returns the number of modules.
func (s *Sequential) Len() int {
	return len(s.modules)
}

// Children returns the modules in order.
func (s *Sequential) Children() []Module {
	return s.modules
}

func (s *Sequential) String() string { return "Sequential" }

// Residual computes body(x) + shortcut(x). A nil shortcut is the identity.
type Residual struct {
	body     Module
	shortcut Module
	backend  *autodiff.Backend
}

// NewResidual creates a residual block. The body must preserve the input
// shape when shortcut is nil.
func NewResidual(body, shortcut Module, backend *autodiff.Backend) *Residual {
	return &Residual{body: body, shortcut: shortcut, backend: backend}
}

// Forward adds the body output to the shortcut output.
func (r *Residual) Forward(input *tensor.Tensor) *tensor.Tensor {
	skip := input
	if r.shortcut != nil {
		skip = r.shortcut.Forward(input)
	}
	return r.backend.Add(r.body.Forward(input), skip)
}

// Parameters returns the body parameters followed by the shortcut's.
func (r *Residual) Parameters() []*Parameter {
	params := r.body.Parameters()
	if r.shortcut != nil {
		params = append(params, r.shortcut.Parameters()...)
	}
	return params
}

// Children returns the body and, if set, the shortcut.
func (r *Residual) Children() []Module {
	if r.shortcut == nil {
		return []Module{r.body}
	}
	return []Module{r.body, r.shortcut}
}

func (r *Residual) String() string { return "Residual" }
