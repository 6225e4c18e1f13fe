package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)
	for range 20 {
		require.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestWeightedIndex(t *testing.T) {
	rng := New(7)

	t.Run("skips zero weights", func(t *testing.T) {
		for range 500 {
			idx := WeightedIndex(rng, []int{0, 3, 0, 1})
			assert.Contains(t, []int{1, 3}, idx)
		}
	})

	t.Run("no positive weights", func(t *testing.T) {
		assert.Equal(t, -1, WeightedIndex(rng, []int{0, 0}))
		assert.Equal(t, -1, WeightedIndex(rng, nil))
	})

	t.Run("roughly proportional", func(t *testing.T) {
		counts := make([]int, 2)
		for range 30000 {
			counts[WeightedIndex(rng, []int{100, 50})]++
		}
		ratio := float64(counts[0]) / float64(counts[1])
		assert.InDelta(t, 2.0, ratio, 0.2)
	})
}

func TestIntRange(t *testing.T) {
	rng := New(1)
	seen := make(map[int]bool)
	for range 2000 {
		n := IntRange(rng, 6, 10)
		require.GreaterOrEqual(t, n, 6)
		require.LessOrEqual(t, n, 10)
		seen[n] = true
	}
	assert.Len(t, seen, 5)
	assert.Equal(t, 3, IntRange(rng, 3, 3))
}
