package claimcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateShape(t *testing.T) {
	code, err := Generate()
	require.NoError(t, err)
	require.Len(t, code, Length+1)
	require.Equal(t, byte('-'), code[group])
	for _, r := range strings.ReplaceAll(code, "-", "") {
		require.True(t, strings.ContainsRune(alphabet, r), "unexpected symbol %q", r)
	}
}

func TestGenerateDoesNotRepeat(t *testing.T) {
	seen := make(map[string]struct{}, 2000)
	for i := 0; i < 2000; i++ {
		code, err := Generate()
		require.NoError(t, err)
		_, dup := seen[code]
		require.False(t, dup, "duplicate code %s", code)
		seen[code] = struct{}{}
	}
}

func TestNormalize(t *testing.T) {
	require.Equal(t, "7KQ2M-XD94A", Normalize("7kq2m-xd94a"))
	require.Equal(t, "7KQ2M-XD94A", Normalize(" 7KQ2M XD94A "))
	require.Equal(t, "10000-11111", Normalize("IOOOO-LLLLL"))
	require.Equal(t, "ABC123", Normalize("abc123"))

	code, err := Generate()
	require.NoError(t, err)
	require.Equal(t, code, Normalize(code))
}
