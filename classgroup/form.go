// Package classgroup implements arithmetic on reduced binary
// quadratic forms of a fixed negative discriminant: reduction,
// doubling (NUDUPL), composition (NUCOMP), validity checking, and the
// principal generator. This is the class group a VDF's repeated
// squaring runs in.
package classgroup

import (
	"math/big"

	"github.com/enigmarikki/kala/bigint"
	"github.com/enigmarikki/kala/kalaerr"
)

// Form is a binary quadratic form ax^2+bxy+cy^2. The zero value is
// not a valid form; construct with New or Generator.
type Form struct {
	A, B, C *big.Int
}

// New builds a form from its three coefficients without reducing or
// validating it.
func New(a, b, c *big.Int) Form {
	return Form{A: new(big.Int).Set(a), B: new(big.Int).Set(b), C: new(big.Int).Set(c)}
}

// Clone returns an independent copy.
func (f Form) Clone() Form {
	return New(f.A, f.B, f.C)
}

// Discriminant returns b^2 - 4ac.
func (f Form) Discriminant() *big.Int {
	d := new(big.Int).Mul(f.B, f.B)
	ac4 := new(big.Int).Mul(f.A, f.C)
	ac4.Mul(ac4, big.NewInt(4))
	return d.Sub(d, ac4)
}

// Valid reports whether f satisfies b^2-4ac = D, a > 0, c > 0 - the
// spec's validity_check.
func (f Form) Valid(d *big.Int) bool {
	if f.A.Sign() <= 0 || f.C.Sign() <= 0 {
		return false
	}
	return f.Discriminant().Cmp(d) == 0
}

// CheckValid is Valid translated into the module's error taxonomy.
func (f Form) CheckValid(d *big.Int) error {
	if !f.Valid(d) {
		return kalaerr.New(kalaerr.InvalidForm, "algebraic", "form is not valid for the given discriminant")
	}
	return nil
}

// Reduced reports whether f already satisfies -a < b <= a <= c, with
// the b >= 0 tie-break when a == c.
func (f Form) Reduced() bool {
	negA := new(big.Int).Neg(f.A)
	if f.B.Cmp(negA) <= 0 || f.B.Cmp(f.A) > 0 {
		return false
	}
	if f.A.Cmp(f.C) > 0 {
		return false
	}
	if f.A.Cmp(f.C) == 0 && f.B.Sign() < 0 {
		return false
	}
	return true
}

// Equal compares two already-reduced forms coordinate-wise.
func (f Form) Equal(g Form) bool {
	return f.A.Cmp(g.A) == 0 && f.B.Cmp(g.B) == 0 && f.C.Cmp(g.C) == 0
}

// Generator returns the unique reduced principal form for d: a = 1,
// b = 1, c = (1-d)/4.
func Generator(d *big.Int) Form {
	a := big.NewInt(1)
	b := big.NewInt(1)
	c := fromAB(a, b, d)
	return Form{A: a, B: b, C: c}
}

// fromAB completes a form from a, b and the target discriminant:
// c = (b^2 - d) / 4a.
func fromAB(a, b, d *big.Int) *big.Int {
	z := new(big.Int).Mul(b, b)
	z.Sub(z, d)
	return bigint.FloorDivision(z, new(big.Int).Mul(a, big.NewInt(4)))
}

// Bound computes L = floor(|D|^(1/4)), the reduction bound the spec
// threads through NUCOMP/NUDUPL.
func Bound(d *big.Int) *big.Int {
	return bigint.FourthRoot(d)
}

// wireCoordBytes is the fixed per-coordinate width of a Wire form, big
// enough for discriminants up to about 2048 bits.
const wireCoordBytes = 256

// Wire is the fixed-size external-interface shape of a Form: each
// coordinate's unsigned magnitude, big-endian, left-padded into 256
// bytes, plus its true byte length. Unlike the source C ABI this
// struct reports every coordinate's length instead of truncating all
// three down to their single largest magnitude - see LegacyDataSize
// for callers that still need that old, lossy behavior.
type Wire struct {
	A, B, C             [wireCoordBytes]byte
	ASize, BSize, CSize int
}

// LegacyDataSize reproduces the original foreign surface's single
// truncated data_size field: the largest of the three coordinate
// lengths, discarding the other two. New code should read
// ASize/BSize/CSize instead.
func (w Wire) LegacyDataSize() int {
	n := w.ASize
	if w.BSize > n {
		n = w.BSize
	}
	if w.CSize > n {
		n = w.CSize
	}
	return n
}

// ToWire packs f into its fixed-size wire shape, rejecting any
// coordinate whose magnitude does not fit in 256 bytes (about a
// 2048-bit discriminant) - larger forms must travel over the
// length-prefixed Codec path instead.
func (f Form) ToWire() (Wire, error) {
	var w Wire
	var err error
	if w.ASize, err = packCoord(&w.A, f.A); err != nil {
		return Wire{}, err
	}
	if w.BSize, err = packCoord(&w.B, f.B); err != nil {
		return Wire{}, err
	}
	if w.CSize, err = packCoord(&w.C, f.C); err != nil {
		return Wire{}, err
	}
	return w, nil
}

func packCoord(dst *[wireCoordBytes]byte, x *big.Int) (int, error) {
	raw := new(big.Int).Abs(x).Bytes()
	if len(raw) > wireCoordBytes {
		return 0, kalaerr.New(kalaerr.InvalidForm, "codec",
			"form coordinate exceeds the fixed wire width; use the Codec path instead")
	}
	copy(dst[wireCoordBytes-len(raw):], raw)
	return len(raw), nil
}
