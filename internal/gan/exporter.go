package gan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/born-ml/born-gan/internal/imaging"
	"github.com/born-ml/born-gan/internal/tensor"
)

// ImageExporter writes generated samples as PNG files into one run
// directory, named {step}_{i}_{score:.2f}.png.
type ImageExporter struct {
	dir string
}

// NewImageExporter creates the run directory. Missing parents are created;
// the directory itself must not exist yet, so two runs never share one.
func NewImageExporter(dir string) (*ImageExporter, error) {
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return nil, fmt.Errorf("create output root: %w", err)
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create run directory: %w", err)
	}
	return &ImageExporter{dir: dir}, nil
}

// Dir returns the run directory.
func (e *ImageExporter) Dir() string {
	return e.dir
}

// FileName returns the file name used for sample i of a step.
func FileName(step, i int, score float32) string {
	return fmt.Sprintf("%d_%d_%.2f.png", step, i, score)
}

// Export writes one file per image. images is [N, 3, H, W] and scores
// holds N values.
func (e *ImageExporter) Export(step int, images, scores *tensor.Tensor) error {
	shape := images.Shape()
	if len(shape) != 4 || shape[1] != imaging.Channels {
		return fmt.Errorf("export: images must be [N %d H W], got %v", imaging.Channels, shape)
	}
	n, h, w := shape[0], shape[2], shape[3]
	if scores.NumElements() != n {
		return fmt.Errorf("export: %w: %d images, %d scores", ErrBatchMismatch, n, scores.NumElements())
	}

	for i := range n {
		img, err := imaging.FromCHW(images.Sample(i).Data(), h, w)
		if err != nil {
			return fmt.Errorf("export step %d image %d: %w", step, i, err)
		}
		path := filepath.Join(e.dir, FileName(step, i, scores.Data()[i]))
		if err := imaging.SavePNG(path, img); err != nil {
			return fmt.Errorf("export step %d image %d: %w", step, i, err)
		}
	}
	return nil
}
