//go:build !darwin && !linux

package backend

// probeBLAS reports no bulk backend on platforms without dlopen support;
// scoring always runs on the CPU path there.
func probeBLAS() (Backend, bool) {
	return nil, false
}
