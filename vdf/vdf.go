// Package vdf is the thin, synchronous convenience wrapper around
// engine.Engine/proof.Prover/proof.Verifier: run a full computation to
// completion and hand back its Wesolowski proof in one call, the way
// a short-lived CLI invocation or a test harness wants to use this
// module without touching the Engine's asynchronous state machine
// directly.
package vdf

import (
	"context"

	"github.com/enigmarikki/kala/classgroup"
	"github.com/enigmarikki/kala/engine"
)

// DefaultDiscriminantBits is the class-group size used by
// WesolowskiSolve/WesolowskiVerify when no explicit size is needed.
const DefaultDiscriminantBits = 2048

// WesolowskiSolve runs the VDF to completion for T squarings under
// challenge and returns its Wesolowski proof blob (the final-proof
// wire format of proof.EncodeFinal).
func WesolowskiSolve(challenge [32]byte, t uint64) ([]byte, error) {
	return Solve(challenge, t, DefaultDiscriminantBits)
}

// WesolowskiVerify verifies a proof blob produced by WesolowskiSolve
// against the same challenge and T.
func WesolowskiVerify(challenge [32]byte, t uint64, proofBlob []byte) bool {
	return Verify(challenge, DefaultDiscriminantBits, t, proofBlob)
}

// Solve runs the VDF to completion for T squarings on a discBits-bit
// discriminant derived from challenge, then generates the final
// proof at recursion level 0.
func Solve(challenge [32]byte, t uint64, discBits uint) ([]byte, error) {
	e := engine.NewEngine(engine.NewConfig(), nil)
	if err := e.SetSegmentSize(0); err != nil {
		return nil, err
	}
	if err := e.Start(challenge, classgroup.Form{}, t, discBits); err != nil {
		return nil, err
	}
	if err := e.WaitCompletion(context.Background(), 0); err != nil {
		return nil, err
	}
	return e.GenerateProof(0)
}

// Verify checks a proof blob produced by Solve.
func Verify(challenge [32]byte, discBits uint, t uint64, proofBlob []byte) bool {
	return engine.VerifyProofWithChallenge(challenge, discBits, classgroup.Form{}, proofBlob, t, 0)
}
