package engine

import (
	"context"
	"testing"
	"time"

	"github.com/enigmarikki/kala/bigint"
	"github.com/enigmarikki/kala/classgroup"
	"github.com/enigmarikki/kala/discriminant"
	"github.com/stretchr/testify/require"
)

func testChallenge(seed byte) [32]byte {
	var c [32]byte
	for i := range c {
		c[i] = seed + byte(i)
	}
	return c
}

func runToCompletion(t *testing.T, e *Engine, challenge [32]byte, target uint64, discBits uint) {
	require.NoError(t, e.Start(challenge, classgroup.Form{}, target, discBits))
	require.NoError(t, e.WaitCompletion(context.Background(), 10*time.Second))
}

func TestStartRejectsZeroT(t *testing.T) {
	e := NewEngine(NewConfig(), nil)
	err := e.Start(testChallenge(1), classgroup.Form{}, 0, 64)
	require.Error(t, err)
}

func TestStartRejectsTooSmallDiscriminant(t *testing.T) {
	e := NewEngine(NewConfig(), nil)
	err := e.Start(testChallenge(1), classgroup.Form{}, 10, 32)
	require.Error(t, err)
}

func TestAlreadyRunningRejectsConcurrentStart(t *testing.T) {
	cfg := NewConfig()
	cfg.SegmentSize = 0
	e := NewEngine(cfg, nil)
	require.NoError(t, e.Start(testChallenge(1), classgroup.Form{}, 5000, 64))
	defer e.Stop()

	err := e.Start(testChallenge(2), classgroup.Form{}, 10, 64)
	require.Error(t, err)
}

func TestRunToCompletionAndVerify(t *testing.T) {
	cfg := NewConfig()
	cfg.SegmentSize = 0
	e := NewEngine(cfg, nil)
	challenge := testChallenge(3)
	const T = uint64(50)

	runToCompletion(t, e, challenge, T, 64)

	status := e.Status()
	require.Equal(t, PhaseCompleted, status.Phase)
	require.Equal(t, T, status.TCur)
	require.True(t, status.HasProofReady)

	_, err := e.ResultForm()
	require.NoError(t, err)

	blob, err := e.GenerateProof(0)
	require.NoError(t, err)

	d, err := discriminant.FromChallenge(challenge, 64, nil)
	require.NoError(t, err)
	dBytes := bigint.ExportUnsigned(d, 0)

	require.True(t, VerifyProof(dBytes, classgroup.Form{}, blob, T, 0))
	require.True(t, VerifyProofWithChallenge(challenge, 64, classgroup.Form{}, blob, T, 0))
}

func TestResultFormRejectedBeforeCompletion(t *testing.T) {
	e := NewEngine(NewConfig(), nil)
	_, err := e.ResultForm()
	require.Error(t, err)
}

func TestGenerateProofRejectedBeforeCompletion(t *testing.T) {
	e := NewEngine(NewConfig(), nil)
	_, err := e.GenerateProof(0)
	require.Error(t, err)
}

func TestStopCancelsRun(t *testing.T) {
	cfg := NewConfig()
	cfg.SegmentSize = 0
	e := NewEngine(cfg, nil)
	require.NoError(t, e.Start(testChallenge(4), classgroup.Form{}, 50_000_000, 64))

	e.Stop()
	status := e.Status()
	require.Equal(t, PhaseStopped, status.Phase)
	require.Less(t, status.TCur, uint64(50_000_000))
}

func TestCheckpointCountMatchesSegmentSize(t *testing.T) {
	cfg := NewConfig()
	cfg.SegmentSize = 10
	e := NewEngine(cfg, nil)

	runToCompletion(t, e, testChallenge(5), 37, 64)

	// sentinel(t=0) + checkpoints at 10, 20, 30, and the final at 37.
	require.Equal(t, 5, e.CheckpointCount())

	cps := e.CheckpointProofs(0, 37)
	require.Len(t, cps, 5)
	require.Equal(t, uint64(0), cps[0].T)
	require.Equal(t, uint64(37), cps[len(cps)-1].T)
}

func TestCheckpointCountNoDoubleCountWhenTIsMultiple(t *testing.T) {
	cfg := NewConfig()
	cfg.SegmentSize = 10
	e := NewEngine(cfg, nil)

	runToCompletion(t, e, testChallenge(6), 40, 64)

	// sentinel(t=0) + checkpoints at 10, 20, 30, 40 - the final checkpoint
	// at t=40 coincides with a segment boundary and must not be recorded twice.
	require.Equal(t, 5, e.CheckpointCount())
}

func TestCheckpointsDisabledWhenSegmentSizeZero(t *testing.T) {
	cfg := NewConfig()
	cfg.SegmentSize = 0
	e := NewEngine(cfg, nil)

	runToCompletion(t, e, testChallenge(7), 30, 64)
	require.Equal(t, 0, e.CheckpointCount())
}

func TestSetSegmentSizeRejectedWhileComputing(t *testing.T) {
	cfg := NewConfig()
	cfg.SegmentSize = 0
	e := NewEngine(cfg, nil)
	require.NoError(t, e.Start(testChallenge(8), classgroup.Form{}, 5_000_000, 64))
	defer e.Stop()

	require.Error(t, e.SetSegmentSize(1000))
}

func TestProgressCallbackInvoked(t *testing.T) {
	cfg := NewConfig()
	cfg.SegmentSize = 0
	e := NewEngine(cfg, nil)

	calls := 0
	require.NoError(t, e.SetCallbacks(func(tCur, t uint64) { calls++ }, nil, 1))
	runToCompletion(t, e, testChallenge(9), 5000, 64)
	require.Greater(t, calls, 0)
}

func TestCompletionCallbackInvokedOnce(t *testing.T) {
	cfg := NewConfig()
	cfg.SegmentSize = 0
	e := NewEngine(cfg, nil)

	var successes, calls int
	require.NoError(t, e.SetCallbacks(nil, func(success bool, tCur uint64) {
		calls++
		if success {
			successes++
		}
	}, 0))
	runToCompletion(t, e, testChallenge(10), 500, 64)
	require.Equal(t, 1, calls)
	require.Equal(t, 1, successes)
}

func TestStartWithDiscriminantRejectsBadMagnitude(t *testing.T) {
	e := NewEngine(NewConfig(), nil)
	err := e.StartWithDiscriminant([]byte{0}, classgroup.Form{}, 10)
	require.Error(t, err)
}

// TestRunToCompletionAtSpecSizedDiscriminant exercises a full
// run-and-verify cycle at a 256-bit Discriminant-generated D, one of
// the sizes the Prover/Verifier law is stated over (256/512/1024
// bits), rather than only the MinBits=64 toy size the other engine
// tests use for speed.
func TestRunToCompletionAtSpecSizedDiscriminant(t *testing.T) {
	cfg := NewConfig()
	cfg.SegmentSize = 0
	e := NewEngine(cfg, nil)
	challenge := testChallenge(20)
	const T = uint64(25)

	runToCompletion(t, e, challenge, T, 256)

	require.Equal(t, PhaseCompleted, e.Status().Phase)

	blob, err := e.GenerateProof(0)
	require.NoError(t, err)

	d, err := discriminant.FromChallenge(challenge, 256, nil)
	require.NoError(t, err)
	dBytes := bigint.ExportUnsigned(d, 0)

	require.True(t, VerifyProof(dBytes, classgroup.Form{}, blob, T, 0))
}

func TestSelfTest(t *testing.T) {
	e := NewEngine(NewConfig(), nil)
	require.NoError(t, e.SelfTest())
}

func TestCapabilitiesReportsThreadsAndCores(t *testing.T) {
	e := NewEngine(NewConfig(), nil)
	c := e.Capabilities()
	require.Greater(t, c.Cores, 0)
	require.Greater(t, c.Threads, 0)
}

func TestBenchmarkReportsPositiveRate(t *testing.T) {
	rate := Benchmark(NewConfig(), 2000)
	require.Greater(t, rate, 0.0)
}
