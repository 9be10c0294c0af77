package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTempIDShape(t *testing.T) {
	id := TempID()
	require.True(t, strings.HasPrefix(id, "temp-"))
	require.Len(t, strings.SplitN(id, "-", 3), 3)
}

func TestTempIDUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := TempID()
		_, dup := seen[id]
		require.False(t, dup, "duplicate temp id %s", id)
		seen[id] = struct{}{}
	}
}

func TestSonyflakeGeneratorProducesDistinctIDs(t *testing.T) {
	gen, err := NewSonyflakeGenerator(1)
	require.NoError(t, err)

	a, err := gen.NextID()
	require.NoError(t, err)
	b, err := gen.NextID()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestUUIDGenerator(t *testing.T) {
	gen := NewUUIDGenerator()
	id, err := gen.NextID()
	require.NoError(t, err)
	require.NotEmpty(t, id)
}
