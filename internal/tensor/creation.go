package tensor

import (
	"fmt"
	"math/rand/v2"
)

// Zeros creates a tensor filled with zeros.
// Panics on an invalid shape, like the other must-style constructors.
func Zeros(shape Shape) *Tensor {
	t, err := New(shape)
	if err != nil {
		panic(fmt.Sprintf("tensor.Zeros: %v", err))
	}
	return t
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return Full(shape, 1)
}

// Full creates a tensor with every element set to value.
func Full(shape Shape, value float32) *Tensor {
	t := Zeros(shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// ZerosLike creates a zero tensor with the shape of t.
func ZerosLike(t *Tensor) *Tensor {
	return Zeros(t.shape)
}

// Randn creates a tensor with values drawn from N(0, 1).
//
// A nil rng uses the package-level source of math/rand/v2, which is safe
// for concurrent use and needs no seeding.
func Randn(shape Shape, rng *rand.Rand) *Tensor {
	t := Zeros(shape)
	for i := range t.data {
		if rng == nil {
			t.data[i] = float32(rand.NormFloat64())
		} else {
			t.data[i] = float32(rng.NormFloat64())
		}
	}
	return t
}

// Uniform creates a tensor with values drawn from U(low, high).
func Uniform(shape Shape, low, high float32, rng *rand.Rand) *Tensor {
	t := Zeros(shape)
	span := float64(high - low)
	for i := range t.data {
		var u float64
		if rng == nil {
			u = rand.Float64()
		} else {
			u = rng.Float64()
		}
		t.data[i] = low + float32(u*span)
	}
	return t
}

// Cat concatenates tensors along the first dimension.
//
// All inputs must agree on every other dimension. Order is preserved:
// the rows of tensors[0] come first.
func Cat(tensors ...*Tensor) (*Tensor, error) {
	if len(tensors) == 0 {
		return nil, fmt.Errorf("cat: no tensors")
	}
	first := tensors[0].shape
	if len(first) == 0 {
		return nil, fmt.Errorf("cat: scalar tensors cannot be concatenated")
	}

	rows := 0
	for i, t := range tensors {
		if len(t.shape) != len(first) || !Shape(t.shape[1:]).Equal(Shape(first[1:])) {
			return nil, fmt.Errorf("cat: tensor %d has shape %v, want [* %v]", i, t.shape, Shape(first[1:]))
		}
		rows += t.shape[0]
	}

	outShape := first.Clone()
	outShape[0] = rows
	out := Zeros(outShape)

	off := 0
	for _, t := range tensors {
		off += copy(out.data[off:], t.data)
	}
	return out, nil
}
