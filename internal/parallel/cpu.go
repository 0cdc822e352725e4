package parallel

import (
	"github.com/klauspost/cpuid/v2"
)

// CPUInfo describes the host processor for startup logging.
type CPUInfo struct {
	Brand          string
	PhysicalCores  int
	LogicalCores   int
	AVX2           bool
	AVX512         bool
	FMA3           bool
	CacheLineBytes int
}

// DetectCPU reads the processor description from cpuid.
func DetectCPU() CPUInfo {
	return CPUInfo{
		Brand:          cpuid.CPU.BrandName,
		PhysicalCores:  cpuid.CPU.PhysicalCores,
		LogicalCores:   cpuid.CPU.LogicalCores,
		AVX2:           cpuid.CPU.Supports(cpuid.AVX2),
		AVX512:         cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512DQ),
		FMA3:           cpuid.CPU.Supports(cpuid.FMA3),
		CacheLineBytes: cpuid.CPU.CacheLine,
	}
}
