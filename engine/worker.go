package engine

import (
	"time"

	"github.com/enigmarikki/kala/classgroup"
	"github.com/enigmarikki/kala/proof"
	"go.uber.org/zap"
)

// batchSize is the number of squarings the worker performs between
// should_stop checks at the outer level; should_stop is additionally
// checked once per inner iteration, so cancellation latency is always
// at most one squaring regardless of batchSize.
const batchSize = 1000

// run is the Engine's single worker goroutine: sequential class-group
// squaring from f0 to f0^(2^T), with periodic checkpoints and
// progress/completion callbacks. Exactly one run() executes at a
// time per Engine.
func (e *Engine) run() {
	e.mu.Lock()
	d, l, f0 := e.d, e.l, e.f0
	segmentSize := e.cfg.SegmentSize
	done := e.done
	e.mu.Unlock()

	checkpointsEnabled := segmentSize > 0
	prover := proof.NewProver(e.hash)
	reducer := classgroup.NewReducer()

	current := f0
	lastCheckpoint := f0
	var lastCheckpointT uint64

	if checkpointsEnabled {
		e.recordCheckpoint(CheckpointRecord{T: 0, Form: f0, Blob: proof.SentinelBlob()})
	}

	target := e.target.Load()
	lastUpdate := time.Now()
	finalPhase := PhaseCompleted

	for e.tCur.Load() < target && !e.shouldStop.Load() {
		steps := batchSize
		if remaining := target - e.tCur.Load(); remaining < uint64(steps) {
			steps = int(remaining)
		}

		batchStart := time.Now()
		stepsDone := 0
		for i := 0; i < steps; i++ {
			if e.shouldStop.Load() {
				break
			}
			stepsDone++
			next, err := reducer.Square(current, d, l)
			if err != nil {
				e.logger.Error("worker squaring failed", zap.Error(err))
				finalPhase = PhaseError
				e.finish(finalPhase, current, done)
				return
			}
			current = next
			tCur := e.tCur.Add(1)

			if checkpointsEnabled && (tCur%segmentSize == 0 || tCur == target) {
				deltaT := tCur - lastCheckpointT
				cp, err := prover.Segment(reducer, lastCheckpoint, current, deltaT, tCur, d, l)
				if err != nil {
					e.logger.Error("checkpoint proof generation failed", zap.Error(err))
					finalPhase = PhaseError
					e.finish(finalPhase, current, done)
					return
				}
				e.recordCheckpoint(CheckpointRecord{T: tCur, Form: current, Blob: proof.EncodeCheckpoint(cp)})
				lastCheckpoint = current
				lastCheckpointT = tCur
			}
		}

		elapsedBatch := time.Since(batchStart)
		if elapsedBatch > 0 && stepsDone > 0 {
			e.ips.Store(uint64(float64(stepsDone) * float64(time.Second) / float64(elapsedBatch)))
		}

		if time.Since(lastUpdate).Milliseconds() >= e.updateIntervalMS {
			e.mu.Lock()
			cb := e.progressCB
			e.mu.Unlock()
			if cb != nil {
				cb(e.tCur.Load(), target)
			}
			lastUpdate = time.Now()
		}
	}

	if e.shouldStop.Load() && e.tCur.Load() < target {
		finalPhase = PhaseStopped
	}
	e.finish(finalPhase, current, done)
}

// recordCheckpoint appends a checkpoint under the Engine mutex. The
// worker otherwise takes the mutex only briefly: to read its run
// parameters at start, to read the progress callback, and to publish
// f_final.
func (e *Engine) recordCheckpoint(cp CheckpointRecord) {
	e.mu.Lock()
	e.checkpoints = append(e.checkpoints, cp)
	e.mu.Unlock()
}

// finish publishes f_final, transitions phase, invokes the completion
// callback outside the mutex, and closes the done channel exactly
// once, unblocking every WaitCompletion caller.
func (e *Engine) finish(phase Phase, final classgroup.Form, done chan struct{}) {
	e.mu.Lock()
	e.fFinal = final
	cb := e.completionCB
	e.mu.Unlock()

	e.phase.Store(int32(phase))
	tCur := e.tCur.Load()

	e.logger.Info("engine computation finished",
		zap.String("phase", phase.String()),
		zap.Uint64("iterations", tCur))

	if cb != nil {
		cb(phase == PhaseCompleted, tCur)
	}
	close(done)
}
