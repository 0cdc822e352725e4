// Package gan runs adversarial training.
//
// A Trainer alternates one discriminator update on a combined batch of
// generated and real images with one generator update through the frozen
// discriminator, exporting scored samples at a fixed step interval.
//
// Label convention: real images are labelled RealLabel (0), generated
// images GeneratedLabel (1), and the generator is trained toward RealLabel.
package gan

import (
	"context"
	"errors"

	"github.com/born-ml/born-gan/internal/model"
	"github.com/born-ml/born-gan/internal/nn"
	"github.com/born-ml/born-gan/internal/tensor"
)

// ErrBatchMismatch is returned when two batches that must be index aligned
// differ in size.
var ErrBatchMismatch = errors.New("batch size mismatch")

// DataSource yields real image batches forever.
type DataSource interface {
	Next(ctx context.Context) (*tensor.Tensor, error)
}

// Generator maps latent batches to images.
type Generator interface {
	Predict(latent model.Latent) (*tensor.Tensor, error)
	Parameters() []*nn.Parameter
}

// Discriminator scores images; higher means "generated".
type Discriminator interface {
	Predict(images *tensor.Tensor) (*tensor.Tensor, error)
	TrainOnBatch(images, labels *tensor.Tensor) (model.Metrics, error)
	Parameters() []*nn.Parameter
}

// Adversarial trains the generator through the frozen discriminator.
type Adversarial interface {
	TrainOnBatch(latent model.Latent, targets *tensor.Tensor) (model.Metrics, error)
}

// Exporter persists generated samples with their discriminator scores.
type Exporter interface {
	Export(step int, images, scores *tensor.Tensor) error
}

// LatentSampler draws a fresh latent batch of the given size.
type LatentSampler func(batch int) model.Latent
