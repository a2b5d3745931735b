// Package bigint supplies the arbitrary-precision helpers that the
// class-group arithmetic needs on top of math/big: floor division, a
// GCD that tolerates zero/negative inputs, modular equation solving,
// an integer 4th root, and a next-prime search. Forms and discriminants
// are plain *big.Int throughout the rest of this module; this package
// does not introduce a wrapper type, it only adds the operations
// math/big is missing.
package bigint

import "math/big"

var (
	one  = big.NewInt(1)
	two  = big.NewInt(2)
	four = big.NewInt(4)
)

// MillerRabinRounds is the number of rounds used everywhere this
// module needs a primality test (Discriminant generation, next-prime
// search for Fiat-Shamir challenges).
const MillerRabinRounds = 25

// FloorDivision returns floor(x / y), unlike big.Int.Quo which
// truncates toward zero. The class-group reduction and composition
// formulas are stated in terms of floor division.
func FloorDivision(x, y *big.Int) *big.Int {
	var r big.Int
	q, _ := new(big.Int).QuoRem(x, y, &r)
	if (r.Sign() > 0 && y.Sign() < 0) || (r.Sign() < 0 && y.Sign() > 0) {
		q.Sub(q, one)
	}
	return q
}

// GCD returns gcd(|a|, |b|), tolerating zero inputs in either
// position (math/big's GCD panics unless both operands are positive).
func GCD(a, b *big.Int) *big.Int {
	if a.Sign() == 0 {
		return new(big.Int).Abs(b)
	}
	if b.Sign() == 0 {
		return new(big.Int).Abs(a)
	}
	return new(big.Int).GCD(nil, nil, new(big.Int).Abs(a), new(big.Int).Abs(b))
}

// ExtendedGCD returns r, s, t such that r = gcd(a, b) = a*s + b*t.
func ExtendedGCD(a, b *big.Int) (r, s, t *big.Int) {
	r0, r1 := new(big.Int).Set(a), new(big.Int).Set(b)
	s0, s1 := big.NewInt(1), big.NewInt(0)
	t0, t1 := big.NewInt(0), big.NewInt(1)

	if r0.Cmp(r1) > 0 {
		r0, r1 = r1, r0
		s0, s1, t0, t1 = t0, t1, s0, s1
	}

	for r1.Sign() > 0 {
		var rem big.Int
		q, _ := new(big.Int).DivMod(r0, r1, &rem)
		r0, r1 = r1, &rem
		s0, s1 = s1, new(big.Int).Sub(s0, new(big.Int).Mul(q, s1))
		t0, t1 = t1, new(big.Int).Sub(t0, new(big.Int).Mul(q, t1))
	}
	return r0, s0, t0
}

// SolveMod solves a*x == b (mod m) for x, returning one solution s
// and the step t such that every solution is s + k*t for integer k.
// solvable is false when no solution exists.
func SolveMod(a, b, m *big.Int) (s, t *big.Int, solvable bool) {
	g, d, _ := ExtendedGCD(a, m)
	if g.Sign() == 0 {
		return nil, nil, false
	}

	var r big.Int
	q, _ := new(big.Int).QuoRem(b, g, &r)
	if r.Sign() != 0 {
		return nil, nil, false
	}

	q.Mul(q, d)
	s = new(big.Int).Mod(q, m)
	t = FloorDivision(m, g)
	return s, t, true
}

// FourthRoot returns floor(|x|^(1/4)) via Newton's method seeded from
// the bit length, then corrected by linear search - x is at most a
// few thousand bits here, so the correction loop runs a handful of
// times at most.
func FourthRoot(x *big.Int) *big.Int {
	abs := new(big.Int).Abs(x)
	if abs.Sign() == 0 {
		return big.NewInt(0)
	}

	guess := new(big.Int).Lsh(one, uint(abs.BitLen()/4+1))
	for {
		// next = (3*guess + x/guess^3) / 4
		g3 := new(big.Int).Exp(guess, big.NewInt(3), nil)
		next := new(big.Int).Mul(guess, big.NewInt(3))
		next.Add(next, FloorDivision(abs, g3))
		next = FloorDivision(next, four)
		if next.Cmp(guess) >= 0 {
			break
		}
		guess = next
	}

	for new(big.Int).Exp(guess, big.NewInt(4), nil).Cmp(abs) > 0 {
		guess.Sub(guess, one)
	}
	next := new(big.Int).Add(guess, one)
	for new(big.Int).Exp(next, big.NewInt(4), nil).Cmp(abs) <= 0 {
		guess.Set(next)
		next.Add(next, one)
	}
	return guess
}

// ISqrt returns floor(|x|^(1/2)), via math/big's native Sqrt - unlike
// FourthRoot, the standard library already implements this one
// directly, so there is no Newton's-method loop to hand-roll here.
func ISqrt(x *big.Int) *big.Int {
	return new(big.Int).Sqrt(new(big.Int).Abs(x))
}

// IsProbablyPrime runs the module-wide Miller-Rabin round count.
func IsProbablyPrime(n *big.Int) bool {
	return n.ProbablyPrime(MillerRabinRounds)
}

// NextPrime returns the smallest prime >= n, forcing n odd first and
// then stepping by two.
func NextPrime(n *big.Int) *big.Int {
	cand := new(big.Int).Set(n)
	if cand.Cmp(two) < 0 {
		return big.NewInt(2)
	}
	if cand.Bit(0) == 0 {
		cand.Add(cand, one)
	}
	for !IsProbablyPrime(cand) {
		cand.Add(cand, two)
	}
	return cand
}

// ImportUnsigned parses buf as an unsigned big-endian magnitude.
func ImportUnsigned(buf []byte) *big.Int {
	return new(big.Int).SetBytes(buf)
}

// ExportUnsigned returns the unsigned big-endian magnitude of x,
// padded on the left with zero bytes to at least minLen.
func ExportUnsigned(x *big.Int, minLen int) []byte {
	raw := new(big.Int).Abs(x).Bytes()
	if len(raw) >= minLen {
		return raw
	}
	buf := make([]byte, minLen)
	copy(buf[minLen-len(raw):], raw)
	return buf
}
