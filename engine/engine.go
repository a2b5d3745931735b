// Package engine drives the long-running, sequential class-group
// squaring that makes this module a verifiable delay function: one
// worker goroutine per Engine, cooperative cancellation, periodic
// checkpoints with streaming segment proofs, and progress/completion
// callbacks.
package engine

import (
	"context"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/enigmarikki/kala/bigint"
	"github.com/enigmarikki/kala/classgroup"
	"github.com/enigmarikki/kala/discriminant"
	"github.com/enigmarikki/kala/hash32"
	"github.com/enigmarikki/kala/kalaerr"
	"github.com/enigmarikki/kala/proof"
	"go.uber.org/zap"
)

// ProgressCallback is invoked from the worker goroutine; it must not
// block, since the worker's cancellation latency depends on it
// returning promptly.
type ProgressCallback func(tCur, t uint64)

// CompletionCallback is invoked exactly once, from the worker
// goroutine, when the run reaches a terminal phase.
type CompletionCallback func(success bool, tCur uint64)

// CheckpointRecord is one entry in an Engine's checkpoint list: the
// form observed at iteration T, and the serialized proof blob for the
// segment ending there (the sentinel blob for the t=0 record).
type CheckpointRecord struct {
	T    uint64
	Form classgroup.Form
	Blob []byte
}

// Engine owns one VDF computation: its discriminant, its current and
// final forms, its checkpoint list, and the single worker goroutine
// doing the squaring. The zero value is not usable; construct with
// NewEngine. An *Engine must not be copied - copy the pointer.
type Engine struct {
	logger *zap.Logger
	hash   hash32.Func

	mu               sync.Mutex
	cfg              Config
	d                *big.Int
	l                *big.Int
	f0               classgroup.Form
	fFinal           classgroup.Form
	checkpoints      []CheckpointRecord
	progressCB       ProgressCallback
	completionCB     CompletionCallback
	updateIntervalMS int64
	startTime        time.Time
	done             chan struct{}

	tCur       atomic.Uint64
	target     atomic.Uint64
	phase      atomic.Int32
	shouldStop atomic.Bool
	ips        atomic.Uint64
}

// NewEngine creates an Engine in phase Idle. logger may be nil.
func NewEngine(cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		logger:           logger,
		hash:             hash32.Default,
		cfg:              cfg,
		updateIntervalMS: 1000,
	}
	e.phase.Store(int32(PhaseIdle))
	return e
}

// Close releases an Engine that is not currently computing. It is a
// no-op beyond that guard - Go's GC owns every allocation the Engine
// holds - kept for external-interface parity (the foreign surface's
// destroy()).
func (e *Engine) Close() error {
	if Phase(e.phase.Load()) == PhaseComputing {
		return kalaerr.New(kalaerr.AlreadyRunning, "input-validation", "cannot close an Engine while computing")
	}
	return nil
}

// SetCallbacks installs the progress/completion callbacks and the
// progress-callback throttling interval. Rejected while computing.
func (e *Engine) SetCallbacks(progress ProgressCallback, completion CompletionCallback, updateIntervalMS int64) error {
	if Phase(e.phase.Load()) == PhaseComputing {
		return kalaerr.New(kalaerr.AlreadyRunning, "input-validation", "cannot change callbacks while computing")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.progressCB = progress
	e.completionCB = completion
	if updateIntervalMS > 0 {
		e.updateIntervalMS = updateIntervalMS
	}
	return nil
}

// SetThreadCount updates Config.NumThreads/ProofThreads. These fields
// are reserved for interface parity; the squaring loop is and remains
// single-threaded.
func (e *Engine) SetThreadCount(numThreads, proofThreads int) error {
	if Phase(e.phase.Load()) == PhaseComputing {
		return kalaerr.New(kalaerr.AlreadyRunning, "input-validation", "cannot change thread count while computing")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg.NumThreads = numThreads
	e.cfg.ProofThreads = proofThreads
	return nil
}

// SetOptimizations updates Config.FastMode/AVX512. Reserved for
// interface parity; no code path currently branches on either flag.
func (e *Engine) SetOptimizations(fastMode, avx512 bool) error {
	if Phase(e.phase.Load()) == PhaseComputing {
		return kalaerr.New(kalaerr.AlreadyRunning, "input-validation", "cannot change optimizations while computing")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg.FastMode = fastMode
	e.cfg.AVX512 = avx512
	return nil
}

// SetSegmentSize updates the checkpoint interval; 0 disables
// checkpoints entirely.
func (e *Engine) SetSegmentSize(segmentSize uint64) error {
	if Phase(e.phase.Load()) == PhaseComputing {
		return kalaerr.New(kalaerr.AlreadyRunning, "input-validation", "cannot change segment size while computing")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg.SegmentSize = segmentSize
	return nil
}

// Start begins a computation from a 32-byte challenge, deriving D
// via Discriminant.FromChallenge. initialForm may be the zero Form,
// in which case f0 = generator(D).
func (e *Engine) Start(challenge [32]byte, initialForm classgroup.Form, t uint64, discBits uint) error {
	d, err := discriminant.FromChallenge(challenge, discBits, e.hash)
	if err != nil {
		return err
	}
	return e.start(d, initialForm, t)
}

// StartWithDiscriminant begins a computation from an explicit
// unsigned big-endian discriminant magnitude, rejecting it outright
// (InvalidDiscriminant) if it is not negative and congruent to 1 mod
// 4 once negated - no silent adjustment is performed.
func (e *Engine) StartWithDiscriminant(dMagnitudeBytes []byte, initialForm classgroup.Form, t uint64) error {
	d, err := discriminant.ImportUnsigned(dMagnitudeBytes)
	if err != nil {
		return err
	}
	return e.start(d, initialForm, t)
}

func (e *Engine) start(d *big.Int, initialForm classgroup.Form, t uint64) error {
	if t == 0 {
		return kalaerr.New(kalaerr.InvalidParameters, "input-validation", "T must be positive")
	}
	for {
		cur := Phase(e.phase.Load())
		if cur == PhaseComputing {
			return kalaerr.New(kalaerr.AlreadyRunning, "input-validation", "engine is already computing")
		}
		if e.phase.CompareAndSwap(int32(cur), int32(PhaseComputing)) {
			break
		}
	}

	f0 := initialForm
	if f0.A == nil {
		f0 = classgroup.Generator(d)
	} else if err := f0.CheckValid(d); err != nil {
		e.phase.Store(int32(PhaseError))
		return err
	}

	e.mu.Lock()
	e.d = d
	e.l = classgroup.Bound(d)
	e.f0 = f0
	e.fFinal = classgroup.Form{}
	e.checkpoints = nil
	e.startTime = time.Now()
	e.done = make(chan struct{})
	e.mu.Unlock()

	e.tCur.Store(0)
	e.target.Store(t)
	e.shouldStop.Store(false)
	e.ips.Store(0)

	e.logger.Info("engine computation starting",
		zap.Uint64("target_iterations", t),
		zap.Int("discriminant_bits", d.BitLen()))

	go e.run()
	return nil
}

// Stop requests cancellation and blocks until the worker has
// observed it and exited.
func (e *Engine) Stop() {
	if Phase(e.phase.Load()) != PhaseComputing {
		return
	}
	e.shouldStop.Store(true)
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()
	if done != nil {
		<-done
	}
}

// WaitCompletion blocks until the run reaches a terminal phase, ctx
// is cancelled, or timeout elapses (timeout <= 0 means no timeout).
func (e *Engine) WaitCompletion(ctx context.Context, timeout time.Duration) error {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()
	if done == nil {
		return nil
	}

	if timeout <= 0 {
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return kalaerr.New(kalaerr.ComputationFailed, "input-validation", "wait_completion timed out")
	}
}

// IsComplete reports whether the run has reached any terminal phase
// (Completed, Stopped, or Error).
func (e *Engine) IsComplete() bool {
	switch Phase(e.phase.Load()) {
	case PhaseCompleted, PhaseStopped, PhaseError:
		return true
	default:
		return false
	}
}

// Status returns a non-blocking snapshot of the run's progress.
func (e *Engine) Status() Status {
	phase := Phase(e.phase.Load())
	tCur := e.tCur.Load()
	t := e.target.Load()

	var percent float64
	if t > 0 {
		percent = 100 * float64(tCur) / float64(t)
	}

	e.mu.Lock()
	elapsed := time.Since(e.startTime)
	hasProof := phase == PhaseCompleted
	e.mu.Unlock()

	return Status{
		TCur:          tCur,
		T:             t,
		Phase:         phase,
		Percent:       percent,
		IPS:           e.ips.Load(),
		ElapsedMS:     elapsed.Milliseconds(),
		HasProofReady: hasProof,
	}
}

// ResultForm returns the final form's fixed-size wire shape once the
// run has Completed, mirroring the foreign surface's get_result_form.
// It fails for a coordinate wider than 256 bytes. The final proof blob
// from GenerateProof does not carry the result form; with checkpoints
// enabled, the last CheckpointRecord's Form is the result form.
func (e *Engine) ResultForm() (classgroup.Wire, error) {
	if Phase(e.phase.Load()) != PhaseCompleted {
		return classgroup.Wire{}, kalaerr.New(kalaerr.NotInitialized, "input-validation", "no completed result form available")
	}
	e.mu.Lock()
	final := e.fFinal
	e.mu.Unlock()
	return final.ToWire()
}

// GenerateProof produces the full-run Wesolowski proof blob for a
// completed run.
func (e *Engine) GenerateProof(recursionLevel byte) ([]byte, error) {
	if Phase(e.phase.Load()) != PhaseCompleted {
		return nil, kalaerr.New(kalaerr.NotInitialized, "input-validation", "cannot generate a proof before completion")
	}
	e.mu.Lock()
	d, l, f0, fFinal, t := e.d, e.l, e.f0, e.fFinal, e.target.Load()
	e.mu.Unlock()

	p := proof.NewProver(e.hash)
	r := classgroup.NewReducer()
	fp, err := p.Finalize(r, f0, fFinal, t, d, l, recursionLevel)
	if err != nil {
		return nil, err
	}
	return proof.EncodeFinal(fp), nil
}

// FreeProof is a no-op kept for external-interface parity; Go's
// garbage collector owns every proof blob this module returns.
func FreeProof([]byte) {}

// FreeCheckpointProof is the checkpoint analog of FreeProof.
func FreeCheckpointProof([]byte) {}

// CheckpointCount returns the number of recorded checkpoints.
func (e *Engine) CheckpointCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.checkpoints)
}

// CheckpointProofs returns the checkpoint records with iteration in
// [startT, endT] (inclusive), in increasing iteration order.
func (e *Engine) CheckpointProofs(startT, endT uint64) []CheckpointRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]CheckpointRecord, 0, len(e.checkpoints))
	for _, cp := range e.checkpoints {
		if cp.T >= startT && cp.T <= endT {
			out = append(out, cp)
		}
	}
	return out
}

// VerifyProof checks a final proof blob against an explicit
// discriminant magnitude.
func VerifyProof(dMagnitudeBytes []byte, initialForm classgroup.Form, blob []byte, t uint64, recursionLevel byte) bool {
	v := proof.NewVerifier(nil)
	return v.Verify(dMagnitudeBytes, initialForm, blob, t, recursionLevel)
}

// VerifyProofWithChallenge checks a final proof blob against a
// 32-byte challenge and discriminant bit length instead of an
// explicit discriminant.
func VerifyProofWithChallenge(challenge [32]byte, discBits uint, initialForm classgroup.Form, blob []byte, t uint64, recursionLevel byte) bool {
	d, err := discriminant.FromChallenge(challenge, discBits, nil)
	if err != nil {
		return false
	}
	return VerifyProof(bigint.ExportUnsigned(d, 0), initialForm, blob, t, recursionLevel)
}

// CreateDiscriminant derives and serializes |D| (unsigned big-endian)
// the way the Engine itself would for the given challenge.
func CreateDiscriminant(challenge [32]byte, discBits uint) ([]byte, error) {
	d, err := discriminant.FromChallenge(challenge, discBits, nil)
	if err != nil {
		return nil, err
	}
	return bigint.ExportUnsigned(d, int((discBits+7)/8)), nil
}
