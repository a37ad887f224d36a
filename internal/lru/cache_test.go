package lru

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCache(t *testing.T) {
	_, err := NewCache(0, 1024, nil)
	assert.True(t, errors.Is(err, ErrInvalidSharding))

	_, err = NewCache(8, 4, nil)
	assert.True(t, errors.Is(err, ErrIllegalCapacity))
}

func TestCache_Add(t *testing.T) {
	t.Run("just add with no eviction", func(t *testing.T) {
		evicted := 0
		onEvict := func(k uint64, v []byte) {
			evicted++
		}

		c, err := NewCache(2, 1024, onEvict)
		require.NoError(t, err)

		for i := 0; i < 100; i += 5 {
			c.Add(uint64(i), []byte(fmt.Sprintf("Value %d", i)))
		}

		for i := 0; i < 100; i += 5 {
			v, ok := c.Get(uint64(i))
			require.True(t, ok)
			require.NotNil(t, v)
			assert.Exactly(t, []byte(fmt.Sprintf("Value %d", i)), v)
		}

		require.Equal(t, 0, evicted)
		assert.Equal(t, 20, c.Count())
		assert.Len(t, c.Keys(), 20)
	})

	t.Run("add with eviction keeps the most recently used values", func(t *testing.T) {
		var evicted []uint64
		onEvict := func(k uint64, v []byte) {
			evicted = append(evicted, k)
		}

		// each value is 8 bytes, the single shard fits 4 of them
		c, err := NewCache(1, 32, onEvict)
		require.NoError(t, err)

		for i := 0; i < 4; i++ {
			assert.False(t, c.Add(uint64(i), []byte(fmt.Sprintf("value-%02d", i)[:8])))
		}

		_, ok := c.Get(0)
		require.True(t, ok)

		assert.True(t, c.Add(4, []byte("value-04")))
		assert.True(t, c.Add(5, []byte("value-05")))

		assert.Equal(t, []uint64{1, 2}, evicted)
		assert.Equal(t, 4, c.Count())
		assert.ElementsMatch(t, []uint64{0, 3, 4, 5}, c.Keys())
	})

	t.Run("remove and purge", func(t *testing.T) {
		c, err := NewCache(4, 1024, nil)
		require.NoError(t, err)

		for i := 0; i < 10; i++ {
			c.Add(uint64(i), []byte("v"))
		}

		c.Remove(3)
		_, ok := c.Get(3)
		assert.False(t, ok)
		assert.Equal(t, 9, c.Count())

		c.Purge()
		assert.Equal(t, 0, c.Count())
		assert.Empty(t, c.Keys())
	})

	t.Run("stats count hits and misses", func(t *testing.T) {
		c, err := NewCache(2, 1024, nil)
		require.NoError(t, err)

		c.Add(1, []byte("one"))
		c.Get(1)
		c.Get(1)
		c.Get(2)

		assert.Equal(t, Stats{Hits: 2, Misses: 1, Count: 1}, c.Stats())
	})
}

func TestNullCache(t *testing.T) {
	var c Cacher = NullCache{}
	assert.False(t, c.Add(1, []byte("v")))
	_, ok := c.Get(1)
	assert.False(t, ok)
	c.Remove(1)
	c.Purge()
}
