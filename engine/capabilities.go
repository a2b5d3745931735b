package engine

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sys/cpu"
)

// Capabilities reports the instruction-set features and concurrency
// limits available to this process, standing in for the foreign
// surface's get_capabilities.
type Capabilities struct {
	AVX2    bool
	AVX512  bool
	BMI2    bool
	ADX     bool
	Cores   int
	Threads int
}

// Capabilities reports the host's feature flags and this Engine's
// configured thread counts.
func (e *Engine) Capabilities() Capabilities {
	e.mu.Lock()
	threads := e.cfg.NumThreads
	e.mu.Unlock()

	var c Capabilities
	c.Cores = runtime.NumCPU()
	c.Threads = threads
	if cpu.X86.HasAVX2 {
		c.AVX2 = true
	}
	if cpu.X86.HasAVX512F {
		c.AVX512 = true
	}
	if cpu.X86.HasBMI2 {
		c.BMI2 = true
	}
	if cpu.X86.HasADX {
		c.ADX = true
	}
	return c
}

// version is the module's own version string, standing in for the
// foreign surface's get_version.
const version = "1.0.0"

// Version returns the module's version string.
func Version() string {
	return version
}

// Benchmark runs a short, throwaway computation of testIterations
// squarings using a fixed internal test challenge and returns the
// observed iterations per second, or -1 on failure.
func Benchmark(cfg Config, testIterations uint64) float64 {
	if testIterations == 0 {
		return -1
	}
	e := NewEngine(cfg, nil)
	var testChallenge [32]byte
	for i := range testChallenge {
		testChallenge[i] = byte(i)
	}
	if err := e.Start(testChallenge, noForm, testIterations, 512); err != nil {
		return -1
	}
	if err := e.WaitCompletion(context.Background(), 0); err != nil {
		return -1
	}
	status := e.Status()
	if status.Phase != PhaseCompleted || status.ElapsedMS <= 0 {
		return -1
	}
	return float64(testIterations) * float64(time.Second.Milliseconds()) / float64(status.ElapsedMS)
}

// SelfTest exercises one full round trip - start, wait, prove,
// verify - and reports any failure as an error rather than a bool,
// standing in for the foreign surface's self_test.
func (e *Engine) SelfTest() error {
	eng := NewEngine(NewConfig(), e.logger)
	var challenge [32]byte
	for i := range challenge {
		challenge[i] = byte(0x5a)
	}
	const t = uint64(256)
	if err := eng.Start(challenge, noForm, t, 256); err != nil {
		return err
	}
	if err := eng.WaitCompletion(context.Background(), 10*time.Second); err != nil {
		return err
	}
	if eng.Status().Phase != PhaseCompleted {
		return kalaerrSelfTestFailed()
	}
	blob, err := eng.GenerateProof(0)
	if err != nil {
		return err
	}
	d, err := discriminantForSelfTest(challenge)
	if err != nil {
		return err
	}
	if !VerifyProof(d, noForm, blob, t, 0) {
		return kalaerrSelfTestFailed()
	}
	return nil
}
