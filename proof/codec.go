// Package proof implements the Wesolowski prover, verifier, and the
// bit-exact wire codec for final and checkpoint proof blobs.
package proof

import (
	"encoding/binary"
	"math/big"

	"github.com/enigmarikki/kala/bigint"
	"github.com/enigmarikki/kala/classgroup"
	"github.com/enigmarikki/kala/kalaerr"
)

// Wire version bytes.
const (
	VersionFinal      byte = 0x02
	VersionCheckpoint byte = 0x03
	VersionSentinel   byte = 0x04
)

// FinalProof is the full-run Wesolowski proof.
type FinalProof struct {
	RecursionLevel byte
	T              uint64
	L              *big.Int
	Pi             classgroup.Form
}

// CheckpointProof is a segment proof between two checkpoints.
type CheckpointProof struct {
	T          uint64
	Checkpoint classgroup.Form
	Pi         classgroup.Form
	L          *big.Int
}

func errTruncated() error {
	return kalaerr.New(kalaerr.InvalidParameters, "codec", "proof blob is truncated")
}

func writeLen8(buf []byte, x *big.Int) []byte {
	raw := new(big.Int).Abs(x).Bytes()
	buf = append(buf, byte(len(raw)))
	return append(buf, raw...)
}

func writeLen16(buf []byte, x *big.Int) []byte {
	raw := new(big.Int).Abs(x).Bytes()
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(raw)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, raw...)
}

func readLen8(blob []byte, off int) (*big.Int, int, error) {
	if off+1 > len(blob) {
		return nil, 0, errTruncated()
	}
	n := int(blob[off])
	off++
	if off+n > len(blob) {
		return nil, 0, errTruncated()
	}
	return bigint.ImportUnsigned(blob[off : off+n]), off + n, nil
}

func readLen16(blob []byte, off int) (*big.Int, int, error) {
	if off+2 > len(blob) {
		return nil, 0, errTruncated()
	}
	n := int(binary.BigEndian.Uint16(blob[off : off+2]))
	off += 2
	if off+n > len(blob) {
		return nil, 0, errTruncated()
	}
	return bigint.ImportUnsigned(blob[off : off+n]), off + n, nil
}

// EncodeFinal serializes a final proof per the spec's §6 layout:
// version, recursion_level, T (8 BE), len8(l), len16(π.a), len16(π.b),
// len16(π.c).
func EncodeFinal(p FinalProof) []byte {
	buf := make([]byte, 0, 64)
	buf = append(buf, VersionFinal, p.RecursionLevel)
	var tBuf [8]byte
	binary.BigEndian.PutUint64(tBuf[:], p.T)
	buf = append(buf, tBuf[:]...)
	buf = writeLen8(buf, p.L)
	buf = writeLen16(buf, p.Pi.A)
	buf = writeLen16(buf, p.Pi.B)
	buf = writeLen16(buf, p.Pi.C)
	return buf
}

// DecodeFinal parses a final proof blob, rejecting truncation or a
// wrong version byte without leaving any partial state.
func DecodeFinal(blob []byte) (FinalProof, error) {
	if len(blob) < 10 {
		return FinalProof{}, errTruncated()
	}
	if blob[0] != VersionFinal {
		return FinalProof{}, kalaerr.New(kalaerr.InvalidParameters, "codec",
			"final proof blob has unexpected version byte")
	}
	recursion := blob[1]
	t := binary.BigEndian.Uint64(blob[2:10])

	off := 10
	l, off, err := readLen8(blob, off)
	if err != nil {
		return FinalProof{}, err
	}
	a, off, err := readLen16(blob, off)
	if err != nil {
		return FinalProof{}, err
	}
	b, off, err := readLen16(blob, off)
	if err != nil {
		return FinalProof{}, err
	}
	c, _, err := readLen16(blob, off)
	if err != nil {
		return FinalProof{}, err
	}

	return FinalProof{
		RecursionLevel: recursion,
		T:              t,
		L:              l,
		Pi:             classgroup.New(a, b, c),
	}, nil
}

// EncodeCheckpoint serializes a segment/checkpoint proof per §6:
// version, t (8 BE), len16(cp.a/b/c), len16(π.a/b/c), len8(l).
func EncodeCheckpoint(p CheckpointProof) []byte {
	buf := make([]byte, 0, 96)
	buf = append(buf, VersionCheckpoint)
	var tBuf [8]byte
	binary.BigEndian.PutUint64(tBuf[:], p.T)
	buf = append(buf, tBuf[:]...)
	buf = writeLen16(buf, p.Checkpoint.A)
	buf = writeLen16(buf, p.Checkpoint.B)
	buf = writeLen16(buf, p.Checkpoint.C)
	buf = writeLen16(buf, p.Pi.A)
	buf = writeLen16(buf, p.Pi.B)
	buf = writeLen16(buf, p.Pi.C)
	buf = writeLen8(buf, p.L)
	return buf
}

// DecodeCheckpoint parses a segment/checkpoint proof blob.
func DecodeCheckpoint(blob []byte) (CheckpointProof, error) {
	if len(blob) < 9 {
		return CheckpointProof{}, errTruncated()
	}
	if blob[0] != VersionCheckpoint {
		return CheckpointProof{}, kalaerr.New(kalaerr.InvalidParameters, "codec",
			"checkpoint proof blob has unexpected version byte")
	}
	t := binary.BigEndian.Uint64(blob[1:9])

	off := 9
	cpA, off, err := readLen16(blob, off)
	if err != nil {
		return CheckpointProof{}, err
	}
	cpB, off, err := readLen16(blob, off)
	if err != nil {
		return CheckpointProof{}, err
	}
	cpC, off, err := readLen16(blob, off)
	if err != nil {
		return CheckpointProof{}, err
	}
	piA, off, err := readLen16(blob, off)
	if err != nil {
		return CheckpointProof{}, err
	}
	piB, off, err := readLen16(blob, off)
	if err != nil {
		return CheckpointProof{}, err
	}
	piC, off, err := readLen16(blob, off)
	if err != nil {
		return CheckpointProof{}, err
	}
	l, _, err := readLen8(blob, off)
	if err != nil {
		return CheckpointProof{}, err
	}

	return CheckpointProof{
		T:          t,
		Checkpoint: classgroup.New(cpA, cpB, cpC),
		Pi:         classgroup.New(piA, piB, piC),
		L:          l,
	}, nil
}

// SentinelBlob is the single-byte sentinel carried by the t=0
// checkpoint record; its form travels out-of-band.
func SentinelBlob() []byte {
	return []byte{VersionSentinel}
}

// IsSentinel reports whether blob is the sentinel initial-checkpoint
// marker.
func IsSentinel(blob []byte) bool {
	return len(blob) == 1 && blob[0] == VersionSentinel
}
