package model

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/born-gan/internal/autodiff"
	"github.com/born-ml/born-gan/internal/nn"
	"github.com/born-ml/born-gan/internal/optim"
	"github.com/born-ml/born-gan/internal/tensor"
)

// DiscriminatorConfig describes the discriminator architecture and its
// optimizer.
type DiscriminatorConfig struct {
	Input       Size
	Filters     int
	DenseUnits  int
	Dropout     bool
	DropoutRate float32
	BatchNorm   bool
	Optimizer   optim.Config
}

// Discriminator is a residual image classifier producing, per image, the
// probability that it was generated.
//
// Layout: 1×1 fromRGB, then residual blocks each followed by ×2 average
// pooling while both sides are above 4 and even, then flatten, a hidden
// dense layer, optional dropout, a single-unit dense layer and a sigmoid.
type Discriminator struct {
	cfg      DiscriminatorConfig
	backend  *autodiff.Backend
	net      *nn.Sequential
	loss     *nn.BCELoss
	opt      optim.Optimizer
	training bool
}

// NewDiscriminator builds and compiles a discriminator. A nil rng
// initialises weights from the package-level source.
func NewDiscriminator(cfg DiscriminatorConfig, backend *autodiff.Backend, rng *rand.Rand) (*Discriminator, error) {
	if cfg.Input.Height <= 0 || cfg.Input.Width <= 0 {
		return nil, fmt.Errorf("discriminator: input size %v must be positive", cfg.Input)
	}
	if cfg.Filters <= 0 || cfg.DenseUnits <= 0 {
		return nil, fmt.Errorf("discriminator: filters %d and dense units %d must be positive",
			cfg.Filters, cfg.DenseUnits)
	}

	net := nn.NewSequential(
		nn.NewConv2D(ImageChannels, cfg.Filters, 1, backend, rng),
		nn.NewLeakyReLU(leakySlope, backend),
	)

	h, w := cfg.Input.Height, cfg.Input.Width
	for h > 4 && w > 4 && h%2 == 0 && w%2 == 0 {
		net.Add(residualBlock(cfg, backend, rng))
		net.Add(nn.NewAvgPool2D(2, backend))
		h, w = h/2, w/2
	}

	net.Add(nn.NewFlatten(backend))
	net.Add(nn.NewLinear(cfg.Filters*h*w, cfg.DenseUnits, backend, rng))
	net.Add(nn.NewLeakyReLU(leakySlope, backend))
	if cfg.Dropout {
		net.Add(nn.NewDropout(cfg.DropoutRate, backend, rng))
	}
	net.Add(nn.NewLinear(cfg.DenseUnits, 1, backend, rng))
	net.Add(nn.NewSigmoid(backend))

	opt, err := optim.New(cfg.Optimizer, net.Parameters())
	if err != nil {
		return nil, fmt.Errorf("discriminator: %w", err)
	}

	return &Discriminator{
		cfg:      cfg,
		backend:  backend,
		net:      net,
		loss:     nn.NewBCELoss(backend),
		opt:      opt,
		training: true,
	}, nil
}

func residualBlock(cfg DiscriminatorConfig, backend *autodiff.Backend, rng *rand.Rand) *nn.Residual {
	body := nn.NewSequential()
	for range 2 {
		body.Add(nn.NewConv2D(cfg.Filters, cfg.Filters, 3, backend, rng))
		if cfg.BatchNorm {
			body.Add(nn.NewBatchNorm(cfg.Filters, backend))
		}
		body.Add(nn.NewLeakyReLU(leakySlope, backend))
	}
	return nn.NewResidual(body, nil, backend)
}

// Config returns the architecture the discriminator was built with.
func (d *Discriminator) Config() DiscriminatorConfig {
	return d.cfg
}

// Forward runs the network in its current mode and returns [N, 1]
// probabilities. Operations are recorded when the tape is recording.
func (d *Discriminator) Forward(images *tensor.Tensor) *tensor.Tensor {
	return d.net.Forward(images)
}

// SetTraining switches dropout and batch normalisation between training
// and inference behaviour.
func (d *Discriminator) SetTraining(training bool) {
	d.training = training
	nn.SetTraining(d.net, training)
}

// Training reports the current mode.
func (d *Discriminator) Training() bool {
	return d.training
}

// Predict scores images in inference mode without recording anything.
func (d *Discriminator) Predict(images *tensor.Tensor) (*tensor.Tensor, error) {
	if err := d.checkImages(images); err != nil {
		return nil, fmt.Errorf("discriminator predict: %w", err)
	}

	if d.training {
		d.SetTraining(false)
		defer d.SetTraining(true)
	}
	if d.backend.Tape().IsRecording() {
		d.backend.Tape().StopRecording()
		defer d.backend.Tape().StartRecording()
	}
	return d.net.Forward(images), nil
}

// TrainOnBatch performs one optimizer step on images against labels of
// shape [N, 1]. The returned loss and accuracy describe the predictions
// made before the update.
func (d *Discriminator) TrainOnBatch(images, labels *tensor.Tensor) (Metrics, error) {
	if err := d.checkImages(images); err != nil {
		return Metrics{}, fmt.Errorf("discriminator train: %w", err)
	}
	if err := checkLabels(labels, images.Dim(0)); err != nil {
		return Metrics{}, fmt.Errorf("discriminator train: %w", err)
	}

	tape := d.backend.Tape()
	tape.Clear()
	tape.StartRecording()
	predictions := d.net.Forward(images)
	loss := d.loss.Forward(predictions, labels)
	grads := d.backend.Backward(loss)
	tape.StopRecording()
	tape.Clear()

	params := d.net.Parameters()
	nn.AssignGrads(params, grads)
	d.opt.Step(grads)
	d.opt.ZeroGrad()

	accuracy, err := nn.BinaryAccuracy(predictions, labels)
	if err != nil {
		return Metrics{}, fmt.Errorf("discriminator train: %w", err)
	}
	return Metrics{Loss: loss.Item(), Accuracy: accuracy}, nil
}

// Parameters returns every discriminator parameter.
func (d *Discriminator) Parameters() []*nn.Parameter {
	return d.net.Parameters()
}

// Summary renders the layer table logged at startup.
func (d *Discriminator) Summary() string {
	return nn.FormatSummary(fmt.Sprintf("discriminator %v", d.cfg.Input), nn.Summary(d.net))
}

func (d *Discriminator) checkImages(images *tensor.Tensor) error {
	if images == nil {
		return fmt.Errorf("%w: nil images", ErrShapeMismatch)
	}
	shape := images.Shape()
	if len(shape) != 4 || shape[1] != ImageChannels || shape[2] != d.cfg.Input.Height || shape[3] != d.cfg.Input.Width {
		return fmt.Errorf("%w: images %v, want [N %d %d %d]", ErrShapeMismatch,
			shape, ImageChannels, d.cfg.Input.Height, d.cfg.Input.Width)
	}
	return nil
}

func checkLabels(labels *tensor.Tensor, n int) error {
	if labels == nil || !labels.Shape().Equal(tensor.Shape{n, 1}) {
		var got tensor.Shape
		if labels != nil {
			got = labels.Shape()
		}
		return fmt.Errorf("%w: labels %v, want [%d 1]", ErrShapeMismatch, got, n)
	}
	return nil
}
