package gan

import (
	"fmt"

	"github.com/born-ml/born-gan/internal/tensor"
)

// Label values. The generator's target is RealLabel.
const (
	RealLabel      float32 = 0
	GeneratedLabel float32 = 1
)

// Labels returns an [n, 1] tensor filled with value.
func Labels(n int, value float32) *tensor.Tensor {
	return tensor.Full(tensor.Shape{n, 1}, value)
}

// Combine concatenates the generated batch followed by the real batch,
// with their labels in the same order, so index i of the images matches
// index i of the labels.
func Combine(generated, realImages, generatedLabels, realLabels *tensor.Tensor) (images, labels *tensor.Tensor, err error) {
	if generated.Dim(0) != realImages.Dim(0) ||
		generated.Dim(0) != generatedLabels.Dim(0) || realImages.Dim(0) != realLabels.Dim(0) {
		return nil, nil, fmt.Errorf("combine: %w: images %d/%d, labels %d/%d", ErrBatchMismatch,
			generated.Dim(0), realImages.Dim(0), generatedLabels.Dim(0), realLabels.Dim(0))
	}

	images, err = tensor.Cat(generated, realImages)
	if err != nil {
		return nil, nil, fmt.Errorf("combine images: %w", err)
	}
	labels, err = tensor.Cat(generatedLabels, realLabels)
	if err != nil {
		return nil, nil, fmt.Errorf("combine labels: %w", err)
	}
	return images, labels, nil
}
