package model

import (
	"fmt"

	"github.com/born-ml/born-gan/internal/tensor"
)

// Latent is one batch of generator input.
//
// Codes has shape [N, latentDim, start.Height, start.Width] and drives the
// image content; Noise has shape [N, 1, target.Height, target.Width] and is
// injected at full resolution.
type Latent struct {
	Codes *tensor.Tensor
	Noise *tensor.Tensor
}

// SampleLatent draws a fresh latent batch from N(0, 1).
//
// It uses the package-level math/rand/v2 source and keeps no state of its
// own, so consecutive calls are independent.
func SampleLatent(batch, latentDim int, start, target Size) Latent {
	return Latent{
		Codes: tensor.Randn(tensor.Shape{batch, latentDim, start.Height, start.Width}, nil),
		Noise: tensor.Randn(tensor.Shape{batch, 1, target.Height, target.Width}, nil),
	}
}

// BatchSize returns the number of latent vectors.
func (l Latent) BatchSize() int {
	if l.Codes == nil {
		return 0
	}
	return l.Codes.Dim(0)
}

func (l Latent) validate(latentDim int, start, target Size) error {
	if l.Codes == nil || l.Noise == nil {
		return fmt.Errorf("latent: %w: codes and noise are required", ErrShapeMismatch)
	}
	n := l.Codes.Dim(0)
	wantCodes := tensor.Shape{n, latentDim, start.Height, start.Width}
	if !l.Codes.Shape().Equal(wantCodes) {
		return fmt.Errorf("latent codes: %w: got %v, want %v", ErrShapeMismatch, l.Codes.Shape(), wantCodes)
	}
	wantNoise := tensor.Shape{n, 1, target.Height, target.Width}
	if !l.Noise.Shape().Equal(wantNoise) {
		return fmt.Errorf("latent noise: %w: got %v, want %v", ErrShapeMismatch, l.Noise.Shape(), wantNoise)
	}
	return nil
}
