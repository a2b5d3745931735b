package proof

import (
	"math/big"
	"testing"

	"github.com/enigmarikki/kala/classgroup"
	"github.com/stretchr/testify/require"
)

func sampleForm() classgroup.Form {
	return classgroup.New(big.NewInt(2), big.NewInt(1), big.NewInt(3))
}

func TestEncodeDecodeFinalRoundTrip(t *testing.T) {
	p := FinalProof{
		RecursionLevel: 3,
		T:              123456,
		L:              big.NewInt(987654321),
		Pi:             sampleForm(),
	}
	blob := EncodeFinal(p)
	require.Equal(t, VersionFinal, blob[0])

	got, err := DecodeFinal(blob)
	require.NoError(t, err)
	require.Equal(t, p.RecursionLevel, got.RecursionLevel)
	require.Equal(t, p.T, got.T)
	require.Equal(t, p.L, got.L)
	require.True(t, p.Pi.Equal(got.Pi))
}

func TestEncodeDecodeCheckpointRoundTrip(t *testing.T) {
	p := CheckpointProof{
		T:          65536,
		Checkpoint: sampleForm(),
		Pi:         classgroup.New(big.NewInt(5), big.NewInt(-1), big.NewInt(7)),
		L:          big.NewInt(42424242),
	}
	blob := EncodeCheckpoint(p)
	require.Equal(t, VersionCheckpoint, blob[0])

	got, err := DecodeCheckpoint(blob)
	require.NoError(t, err)
	require.Equal(t, p.T, got.T)
	require.Equal(t, p.L, got.L)
	require.True(t, p.Checkpoint.Equal(got.Checkpoint))
	require.True(t, p.Pi.Equal(got.Pi))
}

func TestDecodeFinalRejectsTruncation(t *testing.T) {
	_, err := DecodeFinal([]byte{VersionFinal, 0, 0, 0})
	require.Error(t, err)
}

func TestDecodeFinalRejectsWrongVersion(t *testing.T) {
	p := FinalProof{T: 10, L: big.NewInt(7), Pi: sampleForm()}
	blob := EncodeFinal(p)
	blob[0] = VersionCheckpoint
	_, err := DecodeFinal(blob)
	require.Error(t, err)
}

func TestDecodeCheckpointRejectsTruncation(t *testing.T) {
	_, err := DecodeCheckpoint([]byte{VersionCheckpoint, 0, 0})
	require.Error(t, err)
}

func TestSentinelBlob(t *testing.T) {
	blob := SentinelBlob()
	require.True(t, IsSentinel(blob))
	require.False(t, IsSentinel([]byte{VersionFinal}))
	require.False(t, IsSentinel(EncodeFinal(FinalProof{L: big.NewInt(1), Pi: sampleForm()})))
}
