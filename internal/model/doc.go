// Package model defines the networks trained by the GAN loop.
//
//   - Generator: maps a Latent (style codes plus pixel noise) to images in
//     [-1, 1] through a skip architecture that upsamples ×2 per block.
//   - Discriminator: a residual classifier producing one probability per
//     image, compiled with binary cross-entropy and its own optimizer.
//   - Adversarial: the generator followed by the frozen discriminator,
//     trained so the discriminator's output moves toward a target label.
//
// All three share one autodiff backend, so a composite update records the
// generator and discriminator forward passes on the same tape.
package model

import "errors"

// ErrShapeMismatch is returned when a tensor handed to a training or
// inference call does not have the shape the network was built for.
var ErrShapeMismatch = errors.New("shape mismatch")

// ErrIncompatibleSizes is returned when the target resolution is not the
// start resolution times the same power of two in both dimensions.
var ErrIncompatibleSizes = errors.New("incompatible image sizes")

// Metrics is the outcome of one training call.
type Metrics struct {
	Loss     float32
	Accuracy float32
}
