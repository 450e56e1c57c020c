package suggest

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPoolHasNoDuplicates(t *testing.T) {
	pool := Default()
	assert.Equal(t, len(DefaultPrompts), pool.Len())

	seen := map[string]bool{}
	for i := 0; i < pool.Len(); i++ {
		p, ok := pool.At(i)
		require.True(t, ok)
		assert.False(t, seen[p], "duplicate prompt %q", p)
		seen[p] = true
	}
}

func TestNewPoolDropsDuplicates(t *testing.T) {
	pool := NewPool([]string{"a", "b", "a", "", "c"})
	assert.Equal(t, 3, pool.Len())
	p, _ := pool.At(2)
	assert.Equal(t, "c", p)
}

func TestSampleIsSubsetWithoutReplacement(t *testing.T) {
	pool := Default()
	rng := rand.New(rand.NewPCG(1, 2))

	for _, width := range []int{3, 4} {
		for i := 0; i < 50; i++ {
			choices, err := pool.Sample(width, rng)
			require.NoError(t, err)
			assert.Len(t, choices, width)

			seen := map[string]bool{}
			for _, c := range choices {
				assert.True(t, pool.Contains(c))
				assert.False(t, seen[c])
				seen[c] = true
			}
		}
	}
}

func TestSampleSessionsMayDiffer(t *testing.T) {
	pool := Default()
	rng := rand.New(rand.NewPCG(42, 7))

	first, err := pool.Sample(4, rng)
	require.NoError(t, err)

	differs := false
	for i := 0; i < 20 && !differs; i++ {
		next, err := pool.Sample(4, rng)
		require.NoError(t, err)
		differs = !assert.ObjectsAreEqual(first, next)
	}
	assert.True(t, differs)
}

func TestSampleRejectsBadSize(t *testing.T) {
	pool := NewPool([]string{"a", "b"})
	_, err := pool.Sample(3, nil)
	assert.Error(t, err)
	_, err = pool.Sample(0, nil)
	assert.Error(t, err)
}

func TestValidWidth(t *testing.T) {
	assert.True(t, ValidWidth(3))
	assert.True(t, ValidWidth(4))
	assert.False(t, ValidWidth(5))
}
