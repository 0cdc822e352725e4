package cpu

import (
	"fmt"

	"github.com/born-ml/born-gan/internal/parallel"
	"github.com/born-ml/born-gan/internal/tensor"
)

// MatMul performs matrix multiplication.
// For 2D tensors: (M, K) @ (K, N) -> (M, N).
func (cpu *Backend) MatMul(a, b *tensor.Tensor) *tensor.Tensor {
	m, k := dims2("matmul", a)
	kAlt, n := dims2("matmul", b)
	if k != kAlt {
		panic(fmt.Sprintf("matmul: shape mismatch [%d,%d] @ [%d,%d]", m, k, kAlt, n))
	}

	out := tensor.Zeros(tensor.Shape{m, n})
	c, ad, bd := out.Data(), a.Data(), b.Data()
	cpu.forRows(m, func(i int) {
		row := c[i*n : (i+1)*n]
		for p := 0; p < k; p++ {
			av := ad[i*k+p]
			if av == 0 {
				continue
			}
			brow := bd[p*n : (p+1)*n]
			for j := range row {
				row[j] += av * brow[j]
			}
		}
	})
	return out
}

// MatMulTransposeA computes a^T @ b for a (K, M) and b (K, N).
func (cpu *Backend) MatMulTransposeA(a, b *tensor.Tensor) *tensor.Tensor {
	k, m := dims2("matmul^T", a)
	kAlt, n := dims2("matmul^T", b)
	if k != kAlt {
		panic(fmt.Sprintf("matmul^T: shape mismatch [%d,%d]^T @ [%d,%d]", k, m, kAlt, n))
	}

	out := tensor.Zeros(tensor.Shape{m, n})
	c, ad, bd := out.Data(), a.Data(), b.Data()
	cpu.forRows(m, func(i int) {
		row := c[i*n : (i+1)*n]
		for p := 0; p < k; p++ {
			av := ad[p*m+i]
			if av == 0 {
				continue
			}
			brow := bd[p*n : (p+1)*n]
			for j := range row {
				row[j] += av * brow[j]
			}
		}
	})
	return out
}

// MatMulTransposeB computes a @ b^T for a (M, K) and b (N, K).
//
// This is the Linear layer forward: x @ W^T with W stored [out, in].
func (cpu *Backend) MatMulTransposeB(a, b *tensor.Tensor) *tensor.Tensor {
	m, k := dims2("matmul", a)
	n, kAlt := dims2("matmul", b)
	if k != kAlt {
		panic(fmt.Sprintf("matmul: shape mismatch [%d,%d] @ [%d,%d]^T", m, k, n, kAlt))
	}

	out := tensor.Zeros(tensor.Shape{m, n})
	c, ad, bd := out.Data(), a.Data(), b.Data()
	cpu.forRows(m, func(i int) {
		arow := ad[i*k : (i+1)*k]
		for j := 0; j < n; j++ {
			brow := bd[j*k : (j+1)*k]
			var s float32
			for p := range arow {
				s += arow[p] * brow[p]
			}
			c[i*n+j] = s
		}
	})
	return out
}

func (cpu *Backend) forRows(m int, f func(i int)) {
	parallel.For(m, f, cpu.parallel)
}

func dims2(op string, t *tensor.Tensor) (int, int) {
	if t.Rank() != 2 {
		panic(fmt.Sprintf("%s: only 2D tensors supported, got shape %v", op, t.Shape()))
	}
	return t.Dim(0), t.Dim(1)
}
