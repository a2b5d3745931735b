package hash32

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrDefault(t *testing.T) {
	require.NotNil(t, OrDefault(nil))
	a := OrDefault(nil)([]byte("x"))
	b := Default([]byte("x"))
	require.Equal(t, b, a)

	called := false
	custom := func(msg []byte) [32]byte { called = true; return [32]byte{} }
	OrDefault(custom)([]byte("x"))
	require.True(t, called)
}

func TestExpandLength(t *testing.T) {
	out := Expand(Default, []byte("seed"), 100)
	require.Len(t, out, 100)
}

func TestExpandDeterministic(t *testing.T) {
	a := Expand(Default, []byte("seed"), 64)
	b := Expand(Default, []byte("seed"), 64)
	require.Equal(t, a, b)
}

func TestExpandDiffersBySeed(t *testing.T) {
	a := Expand(Default, []byte("seed-a"), 32)
	b := Expand(Default, []byte("seed-b"), 32)
	require.NotEqual(t, a, b)
}

func TestExpandPrefixStable(t *testing.T) {
	short := Expand(Default, []byte("seed"), 32)
	long := Expand(Default, []byte("seed"), 64)
	require.Equal(t, short, long[:32])
}
