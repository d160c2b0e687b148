//go:build darwin || linux

package backend

import (
	"fmt"
	"math"
	"runtime"

	"github.com/ebitengine/purego"

	"github.com/beebytez/hivesearch/internal/vector"
)

// blasBackend offloads the multiply-accumulate reduction to cblas_ddot.
// Index intersection stays on the Go side: the gathered weight pairs are
// handed to BLAS as two contiguous arrays.
type blasBackend struct {
	ddot func(n int32, x *float64, incx int32, y *float64, incy int32) float64
}

// Name implements Backend.
func (b *blasBackend) Name() string { return "blas" }

// Score implements Backend. A panic anywhere in the native call path is
// converted into an error so the caller can fall back to the CPU path for
// this query.
func (b *blasBackend) Score(query vector.Sparse, pieces []vector.Sparse, out []float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("blas scoring failed: %v", r)
		}
	}()

	ax := make([]float64, 0, 256)
	bx := make([]float64, 0, 256)
	for i, p := range pieces {
		ax, bx = vector.Intersect(query, p, ax, bx)
		if len(ax) == 0 {
			out[i] = 0
			continue
		}
		out[i] = b.ddot(int32(len(ax)), &ax[0], 1, &bx[0], 1)
	}
	return nil
}

// probeBLAS tries to load a native BLAS library and resolve cblas_ddot.
// Returns false when no library can be loaded or the smoke test fails.
func probeBLAS() (Backend, bool) {
	for _, path := range blasLibraries() {
		if b, ok := loadBLAS(path); ok {
			return b, true
		}
	}
	return nil, false
}

// loadBLAS opens one candidate library and verifies the symbol with a
// known dot product. RegisterLibFunc panics on a missing symbol, hence the
// recover.
func loadBLAS(path string) (b Backend, ok bool) {
	defer func() {
		if recover() != nil {
			b, ok = nil, false
		}
	}()

	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, false
	}

	var ddot func(n int32, x *float64, incx int32, y *float64, incy int32) float64
	purego.RegisterLibFunc(&ddot, lib, "cblas_ddot")

	// Smoke test: 1*3 + 2*4 = 11.
	x := []float64{1, 2}
	y := []float64{3, 4}
	got := ddot(2, &x[0], 1, &y[0], 1)
	if math.Abs(got-11) > 1e-9 {
		return nil, false
	}

	return &blasBackend{ddot: ddot}, true
}

// blasLibraries lists candidate library paths per platform. Accelerate
// ships with macOS; on Linux any installed CBLAS-compatible library works.
func blasLibraries() []string {
	if runtime.GOOS == "darwin" {
		return []string{
			"/System/Library/Frameworks/Accelerate.framework/Accelerate",
		}
	}
	return []string{
		"libopenblas.so.0",
		"libopenblas.so",
		"libcblas.so.3",
		"libcblas.so",
	}
}
