package classgroup

import "math/big"

// windowBits is the fixed window width for FastPow's exponentiation
// ladder - math/big.Int.Exp uses the same fixed-window strategy
// internally for ordinary modular exponentiation; this mirrors that
// choice for class-group composition, where no NAF/windowed ladder
// exists yet anywhere in this codebase's lineage to ground against.
const windowBits = 4

// FastPow computes f^e in the class group of discriminant d using a
// left-to-right fixed-window ladder over a shared Reducer, reducing
// allocation churn relative to naive square-and-multiply. e must be
// non-negative.
func FastPow(r *Reducer, f Form, d, l *big.Int, e *big.Int) (Form, error) {
	if e.Sign() < 0 {
		return Form{}, errNegativeExponent
	}
	if e.Sign() == 0 {
		return Generator(d), nil
	}

	windowCount := 1 << windowBits
	table := make([]Form, windowCount)
	table[0] = Generator(d)
	table[1] = f.Clone()
	for i := 2; i < windowCount; i++ {
		var err error
		table[i], err = r.Compose(table[i-1], f, d, l)
		if err != nil {
			return Form{}, err
		}
	}

	bits := e.BitLen()
	nwindows := (bits + windowBits - 1) / windowBits

	result := table[windowAt(e, (nwindows-1)*windowBits)]
	for wi := nwindows - 2; wi >= 0; wi-- {
		for b := 0; b < windowBits; b++ {
			squared, err := r.Square(result, d, l)
			if err != nil {
				return Form{}, err
			}
			result = squared
		}
		w := windowAt(e, wi*windowBits)
		if w != 0 {
			composed, err := r.Compose(result, table[w], d, l)
			if err != nil {
				return Form{}, err
			}
			result = composed
		}
	}
	return result, nil
}

// windowAt extracts the windowBits-wide window of e starting at bit
// offset. big.Int.Bit returns 0 for any index at or beyond BitLen,
// so windows straddling the top of e are zero-padded automatically.
func windowAt(e *big.Int, offset int) int {
	w := 0
	for i := windowBits - 1; i >= 0; i-- {
		w <<= 1
		w |= int(e.Bit(offset + i))
	}
	return w
}

var errNegativeExponent = classgroupError("fast_pow: negative exponent")

type classgroupError string

func (e classgroupError) Error() string { return string(e) }
