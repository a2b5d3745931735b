package proof

import (
	"math/big"
	"testing"

	"github.com/enigmarikki/kala/bigint"
	"github.com/enigmarikki/kala/classgroup"
	"github.com/enigmarikki/kala/discriminant"
	"github.com/stretchr/testify/require"
)

var discriminantM23 = big.NewInt(-23)

func squareNTimes(t *testing.T, r *classgroup.Reducer, x classgroup.Form, d, l *big.Int, n uint64) classgroup.Form {
	cur := x
	for i := uint64(0); i < n; i++ {
		next, err := r.Square(cur, d, l)
		require.NoError(t, err)
		cur = next
	}
	return cur
}

func TestFinalizeThenVerify(t *testing.T) {
	d := discriminantM23
	l := classgroup.Bound(d)
	r := classgroup.NewReducer()
	x := classgroup.Generator(d)
	const T = uint64(37)

	y := squareNTimes(t, r, x, d, l, T)

	prover := NewProver(nil)
	fp, err := prover.Finalize(r, x, y, T, d, l, 0)
	require.NoError(t, err)

	blob := EncodeFinal(fp)
	dBytes := bigint.ExportUnsigned(d, 0)

	verifier := NewVerifier(nil)
	require.True(t, verifier.Verify(dBytes, classgroup.Form{}, blob, T, 0))
}

func TestVerifyRejectsWrongT(t *testing.T) {
	d := discriminantM23
	l := classgroup.Bound(d)
	r := classgroup.NewReducer()
	x := classgroup.Generator(d)
	const T = uint64(20)

	y := squareNTimes(t, r, x, d, l, T)
	prover := NewProver(nil)
	fp, err := prover.Finalize(r, x, y, T, d, l, 0)
	require.NoError(t, err)

	blob := EncodeFinal(fp)
	dBytes := bigint.ExportUnsigned(d, 0)
	verifier := NewVerifier(nil)
	require.False(t, verifier.Verify(dBytes, classgroup.Form{}, blob, T+1, 0))
}

func TestVerifyRejectsWrongRecursionLevel(t *testing.T) {
	d := discriminantM23
	l := classgroup.Bound(d)
	r := classgroup.NewReducer()
	x := classgroup.Generator(d)
	const T = uint64(20)

	y := squareNTimes(t, r, x, d, l, T)
	prover := NewProver(nil)
	fp, err := prover.Finalize(r, x, y, T, d, l, 1)
	require.NoError(t, err)

	blob := EncodeFinal(fp)
	dBytes := bigint.ExportUnsigned(d, 0)
	verifier := NewVerifier(nil)
	require.False(t, verifier.Verify(dBytes, classgroup.Form{}, blob, T, 0))
}

func TestVerifyRejectsTamperedPi(t *testing.T) {
	d := discriminantM23
	l := classgroup.Bound(d)
	r := classgroup.NewReducer()
	x := classgroup.Generator(d)
	const T = uint64(20)

	y := squareNTimes(t, r, x, d, l, T)
	prover := NewProver(nil)
	fp, err := prover.Finalize(r, x, y, T, d, l, 0)
	require.NoError(t, err)

	fp.Pi.B.Add(fp.Pi.B, big.NewInt(1))
	blob := EncodeFinal(fp)
	dBytes := bigint.ExportUnsigned(d, 0)
	verifier := NewVerifier(nil)
	require.False(t, verifier.Verify(dBytes, classgroup.Form{}, blob, T, 0))
}

func TestSegmentThenVerifyCheckpoint(t *testing.T) {
	d := discriminantM23
	l := classgroup.Bound(d)
	r := classgroup.NewReducer()
	x := classgroup.Generator(d)
	const deltaT = uint64(15)

	y := squareNTimes(t, r, x, d, l, deltaT)

	prover := NewProver(nil)
	cp, err := prover.Segment(r, x, y, deltaT, deltaT, d, l)
	require.NoError(t, err)

	blob := EncodeCheckpoint(cp)
	verifier := NewVerifier(nil)
	require.True(t, verifier.VerifyCheckpoint(x, blob, deltaT, d, l))
}

func TestSegmentRejectsZeroDelta(t *testing.T) {
	d := discriminantM23
	l := classgroup.Bound(d)
	r := classgroup.NewReducer()
	x := classgroup.Generator(d)

	_, err := NewProver(nil).Segment(r, x, x, 0, 0, d, l)
	require.Error(t, err)
}

func TestFinalizeRejectsZeroT(t *testing.T) {
	d := discriminantM23
	l := classgroup.Bound(d)
	r := classgroup.NewReducer()
	x := classgroup.Generator(d)

	_, err := NewProver(nil).Finalize(r, x, x, 0, d, l, 0)
	require.Error(t, err)
}

// TestFinalizeThenVerifyAtSpecSizedDiscriminant exercises the
// Prover/Verifier law over a Discriminant-generated D at one of the
// sizes the law is stated over (256/512/1024 bits), rather than only
// the fixed class-number-3 toy discriminant the other tests in this
// file use for speed.
func TestFinalizeThenVerifyAtSpecSizedDiscriminant(t *testing.T) {
	d, err := discriminant.Generate([]byte("spec-sized-discriminant-seed"), 256, nil)
	require.NoError(t, err)
	l := classgroup.Bound(d)
	r := classgroup.NewReducer()
	x := classgroup.Generator(d)
	const T = uint64(25)

	y := squareNTimes(t, r, x, d, l, T)

	prover := NewProver(nil)
	fp, err := prover.Finalize(r, x, y, T, d, l, 0)
	require.NoError(t, err)

	blob := EncodeFinal(fp)
	dBytes := bigint.ExportUnsigned(d, 0)

	verifier := NewVerifier(nil)
	require.True(t, verifier.Verify(dBytes, classgroup.Form{}, blob, T, 0))
}

func TestChallengeDeterministic(t *testing.T) {
	d := discriminantM23
	x := classgroup.Generator(d)
	p := NewProver(nil)
	a := p.Challenge(x, x, 10, d)
	b := p.Challenge(x, x, 10, d)
	require.Equal(t, a, b)
}
