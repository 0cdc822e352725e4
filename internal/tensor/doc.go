// Package tensor provides the dense float32 tensor used throughout the
// trainer, together with the Backend interface implemented by the compute
// backends.
//
// Tensors are plain values: shape plus row-major storage. Differentiation
// is handled one layer up by the autodiff package, which wraps a Backend
// and records every kernel call on a gradient tape.
package tensor
