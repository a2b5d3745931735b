package proof

import (
	"encoding/binary"
	"math/big"

	"github.com/enigmarikki/kala/bigint"
	"github.com/enigmarikki/kala/classgroup"
	"github.com/enigmarikki/kala/hash32"
	"github.com/enigmarikki/kala/kalaerr"
)

// challengeBit is the bit forced on the Fiat-Shamir hash output so
// the resulting prime l is always >= 2^263.
const challengeBit = 263

// Prover generates Wesolowski proofs for a full run and for
// individual checkpoint segments.
type Prover struct {
	hash hash32.Func
}

// NewProver builds a Prover around the given Hash32 collaborator,
// defaulting to hash32.Default when h is nil.
func NewProver(h hash32.Func) *Prover {
	return &Prover{hash: hash32.OrDefault(h)}
}

// Challenge derives the Fiat-Shamir prime l from the statement (D,
// x, y, T), per the spec's four-step recipe: serialize, hash, set bit
// 263, then take the next prime at or above the result.
func (p *Prover) Challenge(x, y classgroup.Form, t uint64, d *big.Int) *big.Int {
	msg := serializeStatement(x, y, t, d)
	h := p.hash(msg)
	seed := bigint.ImportUnsigned(h[:])
	seed.SetBit(seed, challengeBit, 1)
	return bigint.NextPrime(seed)
}

func serializeStatement(x, y classgroup.Form, t uint64, d *big.Int) []byte {
	var buf []byte
	buf = append(buf, new(big.Int).Abs(d).Bytes()...)
	buf = append(buf, new(big.Int).Abs(x.A).Bytes()...)
	buf = append(buf, new(big.Int).Abs(x.B).Bytes()...)
	buf = append(buf, new(big.Int).Abs(x.C).Bytes()...)
	buf = append(buf, new(big.Int).Abs(y.A).Bytes()...)
	buf = append(buf, new(big.Int).Abs(y.B).Bytes()...)
	buf = append(buf, new(big.Int).Abs(y.C).Bytes()...)
	var tBuf [8]byte
	binary.BigEndian.PutUint64(tBuf[:], t)
	buf = append(buf, tBuf[:]...)
	return buf
}

// Segment computes the Wesolowski segment proof between two
// checkpoints: x at iteration t-Δt, y at iteration t, over Δt
// squarings in the class group of discriminant d.
func (p *Prover) Segment(r *classgroup.Reducer, x, y classgroup.Form, deltaT uint64, t uint64, d, l *big.Int) (CheckpointProof, error) {
	if deltaT == 0 {
		return CheckpointProof{}, kalaerr.New(kalaerr.InvalidParameters, "input-validation",
			"segment length must be positive")
	}
	challenge := p.Challenge(x, y, deltaT, d)

	pow2 := new(big.Int).Lsh(big.NewInt(1), uint(deltaT))
	q := bigint.FloorDivision(pow2, challenge)

	pi, err := classgroup.FastPow(r, x, d, l, q)
	if err != nil {
		return CheckpointProof{}, kalaerr.Wrap(err, kalaerr.ProofGenerationFailed, "algebraic",
			"segment proof exponentiation failed")
	}

	return CheckpointProof{T: t, Checkpoint: y, Pi: pi, L: challenge}, nil
}

// Finalize computes the full-run Wesolowski proof for y = x^(2^T).
func (p *Prover) Finalize(r *classgroup.Reducer, x, y classgroup.Form, t uint64, d, l *big.Int, recursionLevel byte) (FinalProof, error) {
	if t == 0 {
		return FinalProof{}, kalaerr.New(kalaerr.InvalidParameters, "input-validation",
			"T must be positive")
	}
	challenge := p.Challenge(x, y, t, d)

	pow2 := new(big.Int).Lsh(big.NewInt(1), uint(t))
	q := bigint.FloorDivision(pow2, challenge)

	pi, err := classgroup.FastPow(r, x, d, l, q)
	if err != nil {
		return FinalProof{}, kalaerr.Wrap(err, kalaerr.ProofGenerationFailed, "algebraic",
			"final proof exponentiation failed")
	}

	return FinalProof{RecursionLevel: recursionLevel, T: t, L: challenge, Pi: pi}, nil
}
