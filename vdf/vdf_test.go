package vdf_test

import (
	"testing"

	"github.com/enigmarikki/kala/vdf"
	"golang.org/x/crypto/sha3"
)

func getChallenge(seed string) [32]byte {
	return sha3.Sum256([]byte(seed))
}

func TestProveVerify(t *testing.T) {
	challenge := getChallenge("TestProveVerify")
	proofBlob, err := vdf.WesolowskiSolve(challenge, 2000)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if !vdf.WesolowskiVerify(challenge, 2000, proofBlob) {
		t.Fatalf("verification failed")
	}
}

func TestProveVerifyChained(t *testing.T) {
	const t0 = uint64(200)
	challenge := getChallenge("TestProveVerifyChained")

	for i := 0; i < 10; i++ {
		proofBlob, err := vdf.WesolowskiSolve(challenge, t0)
		if err != nil {
			t.Fatalf("iteration %d: solve failed: %v", i, err)
		}
		if !vdf.WesolowskiVerify(challenge, t0, proofBlob) {
			t.Fatalf("iteration %d: verification failed", i)
		}
		challenge = sha3.Sum256(proofBlob)
	}
}

func TestVerifyRejectsWrongT(t *testing.T) {
	challenge := getChallenge("TestVerifyRejectsWrongT")
	proofBlob, err := vdf.WesolowskiSolve(challenge, 500)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if vdf.WesolowskiVerify(challenge, 501, proofBlob) {
		t.Fatalf("verification should fail against a mismatched T")
	}
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	challenge := getChallenge("TestVerifyRejectsTamperedProof")
	proofBlob, err := vdf.WesolowskiSolve(challenge, 500)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	tampered := append([]byte(nil), proofBlob...)
	tampered[len(tampered)-1] ^= 0xff
	if vdf.WesolowskiVerify(challenge, 500, tampered) {
		t.Fatalf("verification should fail against a tampered proof")
	}
}
