// Package sysinfo derives diagnostic and resource-tuning values from the
// host environment. Nothing here changes index output: it only derives a
// worker count and feeds startup diagnostics to the CLI drivers.
package sysinfo

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
	"github.com/pbnjay/memory"
)

// Tunings holds the derived resource parameters for one run.
type Tunings struct {
	NumCPU      int
	Workers     int
	HasAVX2     bool
	TotalRAMMiB uint64
}

// Tuning inspects the host and returns a populated Tunings. workerHint, if
// positive, is honored as an explicit override (e.g. from a future CLI
// flag); otherwise a worker count is derived from NumCPU and
// cpuid.CPU.ThreadsPerCore. Either way the result is capped at NumCPU.
func Tuning(workerHint int) Tunings {
	nCPU := runtime.NumCPU()
	if nCPU < 1 {
		nCPU = 1
	}

	workers := workerHint
	if workers < 1 {
		workers = nCPU
		if cpuid.CPU.ThreadsPerCore > 1 {
			cores := nCPU / cpuid.CPU.ThreadsPerCore
			if cores > 0 {
				workers = cores
			}
		}
	}
	if workers > nCPU {
		workers = nCPU
	}

	return Tunings{
		NumCPU:      nCPU,
		Workers:     workers,
		HasAVX2:     cpuid.CPU.Supports(cpuid.AVX2),
		TotalRAMMiB: memory.TotalMemory() / (1024 * 1024),
	}
}
