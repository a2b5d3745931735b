// Package discriminant derives the negative fundamental discriminant
// D that fixes the class group an Engine run operates in, from a
// 32-byte seed and a requested bit length.
package discriminant

import (
	"encoding/binary"
	"math/big"

	"github.com/enigmarikki/kala/bigint"
	"github.com/enigmarikki/kala/hash32"
	"github.com/enigmarikki/kala/kalaerr"
)

// MinBits is the smallest discriminant size this module accepts.
// Anything smaller is rejected outright rather than silently widened.
const MinBits = 64

// Generate derives a negative discriminant D with |D| of exactly
// sizeBits bits, D ≡ 1 (mod 4), and |D| prime, deterministically from
// seed. h defaults to hash32.Default when nil.
//
// Algorithm: expand the seed into a sizeBits-bit candidate magnitude
// with the top bit set, force it to 3 (mod 4) so that its negation is
// 1 (mod 4), then step by 4 until the candidate is prime.
func Generate(seed []byte, sizeBits uint, h hash32.Func) (*big.Int, error) {
	if sizeBits < MinBits {
		return nil, kalaerr.New(kalaerr.InvalidParameters, "input-validation",
			"discriminant size below minimum bit length")
	}
	h = hash32.OrDefault(h)

	byteLen := int((sizeBits + 7) / 8)
	raw := hash32.Expand(h, seed, byteLen)
	candidate := new(big.Int).SetBytes(raw)
	// keep only the leading sizeBits bits of the expanded material when
	// sizeBits is not a whole number of bytes.
	candidate.Rsh(candidate, uint(byteLen*8)-sizeBits)

	// force the top bit of the requested width so |D| is exactly
	// sizeBits bits, not merely at most sizeBits bits.
	candidate.SetBit(candidate, int(sizeBits)-1, 1)

	// force candidate ≡ 3 (mod 4): subtract (candidate mod 4), add 3.
	rem := new(big.Int).Mod(candidate, big.NewInt(4))
	candidate.Sub(candidate, rem)
	candidate.Add(candidate, big.NewInt(3))

	four := big.NewInt(4)
	for !bigint.IsProbablyPrime(candidate) {
		candidate.Add(candidate, four)
	}

	return new(big.Int).Neg(candidate), nil
}

// FromChallenge derives D the way an Engine does from a 32-byte
// challenge: only the first 4 bytes, read big-endian, seed Generate -
// the remaining 28 challenge bytes are not consulted, matching the
// original foreign surface's create_discriminant/start_computation.
func FromChallenge(challenge [32]byte, sizeBits uint, h hash32.Func) (*big.Int, error) {
	prefix := binary.BigEndian.Uint32(challenge[:4])
	seed := make([]byte, 4)
	binary.BigEndian.PutUint32(seed, prefix)
	return Generate(seed, sizeBits, h)
}

// Validate checks D < 0 and D ≡ 1 (mod 4) without attempting any
// adjustment - the redesigned behavior rejects non-conforming
// discriminants outright instead of silently patching them up.
func Validate(d *big.Int) error {
	if d.Sign() >= 0 {
		return kalaerr.New(kalaerr.InvalidDiscriminant, "algebraic",
			"discriminant must be strictly negative")
	}
	mod := new(big.Int).Mod(d, big.NewInt(4))
	if mod.Cmp(big.NewInt(1)) != 0 {
		return kalaerr.New(kalaerr.InvalidDiscriminant, "algebraic",
			"discriminant must be congruent to 1 mod 4")
	}
	return nil
}

// ImportUnsigned parses a discriminant from the unsigned big-endian
// magnitude |D| (the Engine's start_with_discriminant wire shape),
// negates it, and validates the result.
func ImportUnsigned(buf []byte) (*big.Int, error) {
	mag := bigint.ImportUnsigned(buf)
	if mag.Sign() == 0 {
		return nil, kalaerr.New(kalaerr.InvalidDiscriminant, "algebraic",
			"discriminant magnitude must be non-zero")
	}
	d := new(big.Int).Neg(mag)
	if err := Validate(d); err != nil {
		return nil, err
	}
	return d, nil
}
