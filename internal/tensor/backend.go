package tensor

// Backend defines the compute kernels every backend must provide.
//
// All kernels allocate their result and leave the inputs untouched. The
// backward kernels are used by the autodiff ops to propagate gradients.
//
// Implementations:
//   - cpu.Backend: pure Go, parallelised over batch and channels
//   - autodiff.Backend: decorator that records operations on a tape
type Backend interface {
	// Name returns a human-readable backend name.
	Name() string

	// Element-wise binary operations on equally shaped tensors.
	Add(a, b *Tensor) *Tensor
	Sub(a, b *Tensor) *Tensor
	Mul(a, b *Tensor) *Tensor

	// MulScalar multiplies every element by s.
	MulScalar(x *Tensor, s float32) *Tensor

	// AddBias adds bias[C] to x[N, C, ...] broadcasting over all other dims.
	AddBias(x, bias *Tensor) *Tensor
	// SumBias reduces x[N, C, ...] to [C], the gradient of AddBias.
	SumBias(x *Tensor) *Tensor

	// Matrix operations on 2D tensors.
	MatMul(a, b *Tensor) *Tensor           // a @ b
	MatMulTransposeA(a, b *Tensor) *Tensor // a^T @ b
	MatMulTransposeB(a, b *Tensor) *Tensor // a @ b^T

	// Reshape returns a copy of x with a new shape.
	Reshape(x *Tensor, shape Shape) *Tensor

	// Activation functions.
	LeakyReLU(x *Tensor, alpha float32) *Tensor
	LeakyReLUBackward(x, grad *Tensor, alpha float32) *Tensor
	Tanh(x *Tensor) *Tensor
	Sigmoid(x *Tensor) *Tensor

	// Conv2D computes a stride-1 convolution of input[N, C, H, W] with
	// kernel[O, C, K, K] and symmetric zero padding.
	Conv2D(input, kernel *Tensor, padding int) *Tensor
	Conv2DInputBackward(grad, kernel *Tensor, inputShape Shape, padding int) *Tensor
	Conv2DKernelBackward(input, grad *Tensor, kernelShape Shape, padding int) *Tensor

	// Spatial resampling on NCHW tensors.
	AvgPool2D(x *Tensor, size int) *Tensor
	AvgPool2DBackward(grad *Tensor, inputShape Shape, size int) *Tensor
	Upsample2D(x *Tensor, factor int) *Tensor
	Upsample2DBackward(grad *Tensor, factor int) *Tensor
}
