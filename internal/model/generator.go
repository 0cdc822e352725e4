package model

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/born-gan/internal/autodiff"
	"github.com/born-ml/born-gan/internal/nn"
	"github.com/born-ml/born-gan/internal/tensor"
)

// ImageChannels is the number of colour channels produced and consumed.
const ImageChannels = 3

// leakySlope is the negative slope of every LeakyReLU in both networks.
const leakySlope = 0.2

// GeneratorConfig describes the generator architecture.
type GeneratorConfig struct {
	LatentDim   int
	Channels    int
	StyleLayers int
	Start       Size
	Target      Size
}

// Generator is a skip generator.
//
// The latent codes pass through StyleLayers 1×1 mapping convolutions, then
// a start block at the start resolution and one block per doubling
// (nearest upsample followed by two 3×3 convolutions). Every block has its
// own 1×1 toRGB projection; the RGB outputs are summed, each partial sum
// upsampled to the next resolution. Per-channel scaled pixel noise is added
// before the final tanh.
type Generator struct {
	cfg     GeneratorConfig
	backend *autodiff.Backend

	mapping  *nn.Sequential
	blocks   []*nn.Sequential
	toRGB    []*nn.Conv2D
	upsample *nn.Upsample
	noise    *nn.Parameter // [ImageChannels], per-channel noise strength
	tanh     *nn.Tanh
}

// NewGenerator builds a generator. A nil rng initialises weights from the
// package-level source.
func NewGenerator(cfg GeneratorConfig, backend *autodiff.Backend, rng *rand.Rand) (*Generator, error) {
	if cfg.LatentDim <= 0 || cfg.Channels <= 0 || cfg.StyleLayers < 0 {
		return nil, fmt.Errorf("generator: latent dim %d and channels %d must be positive",
			cfg.LatentDim, cfg.Channels)
	}
	doublings, err := Doublings(cfg.Start, cfg.Target)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	g := &Generator{
		cfg:      cfg,
		backend:  backend,
		mapping:  nn.NewSequential(),
		upsample: nn.NewUpsample(2, backend),
		noise:    nn.NewParameter("noise_strength", tensor.Zeros(tensor.Shape{ImageChannels})),
		tanh:     nn.NewTanh(backend),
	}

	for range cfg.StyleLayers {
		g.mapping.Add(nn.NewConv2D(cfg.LatentDim, cfg.LatentDim, 1, backend, rng))
		g.mapping.Add(nn.NewLeakyReLU(leakySlope, backend))
	}

	in := cfg.LatentDim
	for i := 0; i <= doublings; i++ {
		block := nn.NewSequential()
		if i > 0 {
			block.Add(nn.NewUpsample(2, backend))
		}
		block.Add(nn.NewConv2D(in, cfg.Channels, 3, backend, rng))
		block.Add(nn.NewLeakyReLU(leakySlope, backend))
		block.Add(nn.NewConv2D(cfg.Channels, cfg.Channels, 3, backend, rng))
		block.Add(nn.NewLeakyReLU(leakySlope, backend))
		g.blocks = append(g.blocks, block)
		g.toRGB = append(g.toRGB, nn.NewConv2D(cfg.Channels, ImageChannels, 1, backend, rng))
		in = cfg.Channels
	}

	return g, nil
}

// Config returns the architecture the generator was built with.
func (g *Generator) Config() GeneratorConfig {
	return g.cfg
}

// Forward maps a latent batch to images of shape
// [N, ImageChannels, Target.Height, Target.Width] with values in (-1, 1).
//
// Operations are recorded when the backend's tape is recording, which is
// how the adversarial composite differentiates through the generator.
func (g *Generator) Forward(latent Latent) *tensor.Tensor {
	x := g.mapping.Forward(latent.Codes)

	var rgb *tensor.Tensor
	for i, block := range g.blocks {
		x = block.Forward(x)
		out := g.toRGB[i].Forward(x)
		if rgb == nil {
			rgb = out
			continue
		}
		rgb = g.backend.Add(g.upsample.Forward(rgb), out)
	}

	rgb = g.backend.AddNoise(rgb, latent.Noise, g.noise.Tensor())
	return g.tanh.Forward(rgb)
}

// Predict runs the generator in inference mode after validating the
// latent shapes.
func (g *Generator) Predict(latent Latent) (*tensor.Tensor, error) {
	if err := latent.validate(g.cfg.LatentDim, g.cfg.Start, g.cfg.Target); err != nil {
		return nil, fmt.Errorf("generator predict: %w", err)
	}
	if g.backend.Tape().IsRecording() {
		g.backend.Tape().StopRecording()
		defer g.backend.Tape().StartRecording()
	}
	return g.Forward(latent), nil
}

// Parameters returns every generator parameter.
func (g *Generator) Parameters() []*nn.Parameter {
	params := g.mapping.Parameters()
	for i, block := range g.blocks {
		params = append(params, block.Parameters()...)
		params = append(params, g.toRGB[i].Parameters()...)
	}
	return append(params, g.noise)
}

// Summary renders the layer table logged at startup.
func (g *Generator) Summary() string {
	var layers []nn.LayerSummary
	for _, l := range nn.Summary(g.mapping) {
		l.Path = "mapping." + l.Path
		layers = append(layers, l)
	}
	for i, block := range g.blocks {
		for _, l := range nn.Summary(block) {
			l.Path = fmt.Sprintf("block%d.%s", i, l.Path)
			layers = append(layers, l)
		}
		layers = append(layers, nn.LayerSummary{
			Path:   fmt.Sprintf("rgb%d", i),
			Layer:  g.toRGB[i].String(),
			Params: nn.CountParameters(g.toRGB[i].Parameters()),
		})
	}
	layers = append(layers, nn.LayerSummary{
		Path:   "noise",
		Layer:  fmt.Sprintf("NoiseInjection(%d)", ImageChannels),
		Params: ImageChannels,
	}, nn.LayerSummary{Path: "out", Layer: g.tanh.String()})
	return nn.FormatSummary(fmt.Sprintf("generator %v -> %v", g.cfg.Start, g.cfg.Target), layers)
}
