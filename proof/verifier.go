package proof

import (
	"math/big"

	"github.com/enigmarikki/kala/bigint"
	"github.com/enigmarikki/kala/classgroup"
	"github.com/enigmarikki/kala/hash32"
	"github.com/enigmarikki/kala/kalaerr"
)

// Verifier checks Wesolowski final and checkpoint proofs.
type Verifier struct {
	prover *Prover
}

// NewVerifier builds a Verifier using the given Hash32 collaborator
// (must match the Prover's, defaults to hash32.Default when nil).
func NewVerifier(h hash32.Func) *Verifier {
	return &Verifier{prover: NewProver(h)}
}

// Verify checks a final proof blob against the claimed T and
// recursion level, recomputing y by T sequential squarings of x
// (generator(d) when x is the zero value). Never panics on malformed
// input; returns false instead.
func (v *Verifier) Verify(dBytes []byte, x classgroup.Form, blob []byte, tClaimed uint64, recursionClaimed byte) bool {
	p, err := DecodeFinal(blob)
	if err != nil {
		return false
	}
	if p.RecursionLevel != recursionClaimed || p.T != tClaimed {
		return false
	}

	d := new(big.Int).Neg(bigint.ImportUnsigned(dBytes))
	if x.A == nil {
		x = classgroup.Generator(d)
	}

	l := classgroup.Bound(d)
	r := classgroup.NewReducer()

	y, err := repeatedSquare(r, x, d, l, p.T)
	if err != nil {
		return false
	}

	challenge := v.prover.Challenge(x, y, p.T, d)
	if challenge.Cmp(p.L) != 0 {
		return false
	}

	return checkEquation(r, p.Pi, x, y, d, l, p.T, challenge)
}

// VerifyCheckpoint checks a single segment/checkpoint proof: x is the
// previous checkpoint form, deltaT is the iteration distance to this
// checkpoint.
func (v *Verifier) VerifyCheckpoint(x classgroup.Form, blob []byte, deltaT uint64, d, l *big.Int) bool {
	cp, err := DecodeCheckpoint(blob)
	if err != nil {
		return false
	}

	r := classgroup.NewReducer()
	challenge := v.prover.Challenge(x, cp.Checkpoint, deltaT, d)
	if challenge.Cmp(cp.L) != 0 {
		return false
	}

	return checkEquation(r, cp.Pi, x, cp.Checkpoint, d, l, deltaT, challenge)
}

// checkEquation verifies pi^l * x^r == y via r = 2^t mod l and
// compose(pi^l, x^r) compared coordinate-wise to y.
func checkEquation(r *classgroup.Reducer, pi, x, y classgroup.Form, d, l *big.Int, t uint64, challenge *big.Int) bool {
	pow2 := new(big.Int).Lsh(big.NewInt(1), uint(t))
	rem := new(big.Int).Mod(pow2, challenge)

	piL, err := classgroup.FastPow(r, pi, d, l, challenge)
	if err != nil {
		return false
	}
	xr, err := classgroup.FastPow(r, x, d, l, rem)
	if err != nil {
		return false
	}
	lhs, err := r.Compose(piL, xr, d, l)
	if err != nil {
		return false
	}
	return lhs.Equal(y)
}

// repeatedSquare applies Square t times starting from x.
func repeatedSquare(r *classgroup.Reducer, x classgroup.Form, d, l *big.Int, t uint64) (classgroup.Form, error) {
	cur := x
	for i := uint64(0); i < t; i++ {
		next, err := r.Square(cur, d, l)
		if err != nil {
			return classgroup.Form{}, kalaerr.Wrap(err, kalaerr.VerificationFailed, "algebraic",
				"verifier recomputation of y failed")
		}
		cur = next
	}
	return cur, nil
}
