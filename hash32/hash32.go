// Package hash32 defines the pluggable 32-byte hash collaborator used
// by discriminant generation and Fiat-Shamir challenge derivation. The
// compiled hash primitive is explicitly a pluggable, out-of-scope
// collaborator; this package only fixes the interface and ships one
// concrete default.
package hash32

import "golang.org/x/crypto/sha3"

// Func hashes an arbitrary-length message to 32 bytes.
type Func func(msg []byte) [32]byte

// Default is sha3-256, matching the hash already used for VDF
// challenge derivation elsewhere in this codebase's lineage.
func Default(msg []byte) [32]byte {
	return sha3.Sum256(msg)
}

// OrDefault returns f if non-nil, else Default.
func OrDefault(f Func) Func {
	if f == nil {
		return Default
	}
	return f
}

// Expand stretches seed into at least n bytes of pseudorandom
// material by hashing seed concatenated with a growing big-endian
// counter suffix, matching the entropy-expansion shape used by this
// codebase's discriminant generator: each block is Hash32(seed ||
// counter), counters starting at zero and incrementing by one.
func Expand(h Func, seed []byte, n int) []byte {
	out := make([]byte, 0, n+len(h(nil)))
	var counter uint16
	buf := make([]byte, len(seed)+2)
	copy(buf, seed)
	for len(out) < n {
		buf[len(seed)] = byte(counter >> 8)
		buf[len(seed)+1] = byte(counter)
		block := h(buf)
		out = append(out, block[:]...)
		counter++
	}
	return out[:n]
}
