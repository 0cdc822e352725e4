package model

import (
	"fmt"

	"github.com/born-ml/born-gan/internal/autodiff"
	"github.com/born-ml/born-gan/internal/nn"
	"github.com/born-ml/born-gan/internal/optim"
	"github.com/born-ml/born-gan/internal/tensor"
)

// Adversarial chains the generator into the discriminator.
//
// Its optimizer is built while the discriminator is frozen, so it only ever
// holds generator parameters. Every update freezes the discriminator again
// and runs it in inference mode: its weights, optimizer state and batch
// normalisation statistics are untouched by composite training.
type Adversarial struct {
	gen     *Generator
	disc    *Discriminator
	backend *autodiff.Backend
	loss    *nn.BCELoss
	opt     optim.Optimizer
}

// NewAdversarial compiles the composite with its own optimizer.
func NewAdversarial(gen *Generator, disc *Discriminator, cfg optim.Config) (*Adversarial, error) {
	if gen.backend != disc.backend {
		return nil, fmt.Errorf("adversarial: generator and discriminator must share a backend")
	}
	if gen.cfg.Target != disc.cfg.Input {
		return nil, fmt.Errorf("adversarial: %w: generator output %v, discriminator input %v",
			ErrShapeMismatch, gen.cfg.Target, disc.cfg.Input)
	}

	restore := nn.Freeze(disc.Parameters())
	params := nn.TrainableOnly(append(gen.Parameters(), disc.Parameters()...))
	restore()

	opt, err := optim.New(cfg, params)
	if err != nil {
		return nil, fmt.Errorf("adversarial: %w", err)
	}

	return &Adversarial{
		gen:     gen,
		disc:    disc,
		backend: gen.backend,
		loss:    nn.NewBCELoss(gen.backend),
		opt:     opt,
	}, nil
}

// TrainOnBatch updates the generator so the discriminator's scores for
// generated images move toward targets, shaped [N, 1].
func (a *Adversarial) TrainOnBatch(latent Latent, targets *tensor.Tensor) (Metrics, error) {
	gcfg := a.gen.cfg
	if err := latent.validate(gcfg.LatentDim, gcfg.Start, gcfg.Target); err != nil {
		return Metrics{}, fmt.Errorf("adversarial train: %w", err)
	}
	if err := checkLabels(targets, latent.BatchSize()); err != nil {
		return Metrics{}, fmt.Errorf("adversarial train: %w", err)
	}

	restore := nn.Freeze(a.disc.Parameters())
	defer restore()
	if a.disc.Training() {
		a.disc.SetTraining(false)
		defer a.disc.SetTraining(true)
	}

	tape := a.backend.Tape()
	tape.Clear()
	tape.StartRecording()
	predictions := a.disc.Forward(a.gen.Forward(latent))
	loss := a.loss.Forward(predictions, targets)
	grads := a.backend.Backward(loss)
	tape.StopRecording()
	tape.Clear()

	params := a.gen.Parameters()
	nn.AssignGrads(params, grads)
	a.opt.Step(grads)
	a.opt.ZeroGrad()

	accuracy, err := nn.BinaryAccuracy(predictions, targets)
	if err != nil {
		return Metrics{}, fmt.Errorf("adversarial train: %w", err)
	}
	return Metrics{Loss: loss.Item(), Accuracy: accuracy}, nil
}

// Parameters returns the parameters the composite optimizer updates.
func (a *Adversarial) Parameters() []*nn.Parameter {
	return a.gen.Parameters()
}
