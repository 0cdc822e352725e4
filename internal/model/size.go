package model

import (
	"fmt"
)

// Size is an image resolution in pixels.
type Size struct {
	Height int `koanf:"height" yaml:"height"`
	Width  int `koanf:"width" yaml:"width"`
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Height, s.Width)
}

// Doublings returns k such that target = start × 2^k in both dimensions.
func Doublings(start, target Size) (int, error) {
	if start.Height <= 0 || start.Width <= 0 {
		return 0, fmt.Errorf("%w: start size %v must be positive", ErrIncompatibleSizes, start)
	}
	k := 0
	h, w := start.Height, start.Width
	for h < target.Height && w < target.Width {
		h, w = h*2, w*2
		k++
	}
	if h != target.Height || w != target.Width {
		return 0, fmt.Errorf("%w: %v is not %v times a power of two", ErrIncompatibleSizes, target, start)
	}
	return k, nil
}
