package engine

import "runtime"

// Config mirrors the foreign-callable surface's cpu_vdf_config_t.
// ProofThreads, FastMode, and AVX512 are carried for interface parity
// but, like the original single-threaded reference implementation,
// are not currently branched on anywhere in the worker loop - the
// squaring itself is sequential by design and cannot be parallelized.
type Config struct {
	NumThreads    int
	ProofThreads  int
	FastMode      bool
	AVX512        bool
	EnableLogging bool
	SegmentSize   uint64
}

// DefaultSegmentSize is the checkpoint interval used when a Config is
// constructed with NewConfig and never overridden.
const DefaultSegmentSize = 65536

// NewConfig returns a Config filled with the spec's documented
// defaults.
func NewConfig() Config {
	threads := runtime.NumCPU()
	if threads <= 0 {
		threads = 4
	}
	proofThreads := threads / 2
	if proofThreads < 1 {
		proofThreads = 1
	}
	return Config{
		NumThreads:    threads,
		ProofThreads:  proofThreads,
		FastMode:      true,
		AVX512:        false,
		EnableLogging: false,
		SegmentSize:   DefaultSegmentSize,
	}
}
