// Package backend selects the compute path used for the dot-product
// reduction in scoring.
//
// The CPU path is always available. An optional BLAS path loads a native
// library once per process via purego and offloads the multiply-accumulate
// step; it is the same algorithm, so the two paths must agree within a
// small numeric tolerance. Any BLAS initialization or mid-batch failure
// downgrades silently to the CPU path, never a user-visible error.
package backend

import (
	"log/slog"
	"sync"

	"github.com/beebytez/hivesearch/internal/vector"
)

// Backend scores a batch of piece vectors against one query vector.
type Backend interface {
	// Name identifies the backend ("cpu" or "blas").
	Name() string
	// Score writes dot(query, pieces[i]) into out[i] for every i.
	// out must have the same length as pieces. A non-nil error means the
	// batch produced no usable scores and the caller should fall back.
	Score(query vector.Sparse, pieces []vector.Sparse, out []float64) error
}

// Mode names accepted by Select.
const (
	ModeAuto = "auto"
	ModeCPU  = "cpu"
	ModeBLAS = "blas"
)

var (
	probeOnce sync.Once
	probed    Backend
	probedOK  bool
)

// CPU is the thread-pool scoring path; it never fails.
type CPU struct{}

// Name implements Backend.
func (CPU) Name() string { return "cpu" }

// Score implements Backend using the sparse merge-walk dot product.
func (CPU) Score(query vector.Sparse, pieces []vector.Sparse, out []float64) error {
	for i, p := range pieces {
		out[i] = vector.Dot(query, p)
	}
	return nil
}

// BLAS returns the bulk backend if a native BLAS library could be loaded.
// The capability probe runs once per process.
func BLAS() (Backend, bool) {
	probeOnce.Do(func() {
		probed, probedOK = probeBLAS()
		if probedOK {
			slog.Debug("blas backend available")
		} else {
			slog.Debug("blas backend unavailable, using cpu")
		}
	})
	return probed, probedOK
}

// Select picks the backend for one query. mode is "auto", "cpu", or
// "blas"; under "auto" the bulk path is only worth its call overhead once
// the corpus is large enough.
func Select(mode string, pieceCount, threshold int) Backend {
	switch mode {
	case ModeCPU:
		return CPU{}
	case ModeBLAS:
		if b, ok := BLAS(); ok {
			return b
		}
		return CPU{}
	default:
		if pieceCount >= threshold {
			if b, ok := BLAS(); ok {
				return b
			}
		}
		return CPU{}
	}
}
