package blasflow

import (
	"golang.org/x/sys/cpu"
)

// CPUFeatures tracks the instruction set extensions that matter for the
// native kernels' blocking choices.
type CPUFeatures struct {
	HasAVX     bool
	HasAVX2    bool
	HasAVX512F bool
	HasFMA     bool
	HasNEON    bool
}

// Global CPU feature detection
var cpuFeatures CPUFeatures

// gemmBlock is the tile width used by the blocked GEMM kernels. Wider
// vector units keep larger tiles hot, so detection widens it.
var gemmBlock = DefaultGemmBlock

func init() {
	detectCPUFeatures()
}

// detectCPUFeatures populates the global cpuFeatures struct and derives
// the GEMM blocking from it.
func detectCPUFeatures() {
	cpuFeatures = CPUFeatures{
		HasAVX:     cpu.X86.HasAVX,
		HasAVX2:    cpu.X86.HasAVX2,
		HasAVX512F: cpu.X86.HasAVX512F,
		HasFMA:     cpu.X86.HasFMA,
		HasNEON:    cpu.ARM64.HasASIMD,
	}

	switch {
	case cpuFeatures.HasAVX512F:
		gemmBlock = DefaultGemmBlock * 2
	case cpuFeatures.HasAVX2 && cpuFeatures.HasFMA:
		gemmBlock = DefaultGemmBlock
	case cpuFeatures.HasNEON:
		gemmBlock = DefaultGemmBlock
	default:
		gemmBlock = DefaultGemmBlock / 2
	}
}

// Features returns the detected CPU features.
func Features() CPUFeatures {
	return cpuFeatures
}
