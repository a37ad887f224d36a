// Package lru is a sharded, byte bounded LRU cache keyed by uint64 hashes.
package lru

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

var ErrIllegalCapacity = errors.New("illegal lru cache capacity")
var ErrInvalidSharding = errors.New("invalid sharding")

type OnEvict func(k uint64, v []byte)

// Cacher is implemented by Cache and NullCache.
type Cacher interface {
	Add(key uint64, value []byte) bool
	Get(key uint64) ([]byte, bool)
	Remove(key uint64)
	Purge()
}

type Stats struct {
	Hits   uint64
	Misses uint64
	Count  int
}

type Cache struct {
	maxBytes uint64
	capacity uint64
	shards   []*lruShard
	hits     uint64
	misses   uint64
}

func NewCache(shards int, maxTotalBytes uint64, onEvict OnEvict) (*Cache, error) {
	if shards < 1 {
		return nil, ErrInvalidSharding
	}

	if maxTotalBytes < uint64(shards) {
		return nil, errors.Wrapf(ErrIllegalCapacity, "%d bytes for %d shards", maxTotalBytes, shards)
	}

	c := Cache{
		maxBytes: maxTotalBytes,
		capacity: uint64(shards),
		shards:   make([]*lruShard, shards),
	}

	shardMaxBytes := maxTotalBytes / c.capacity
	for i := range c.shards {
		c.shards[i] = newLruShard(shardMaxBytes, onEvict)
	}

	return &c, nil
}

// Add value to cache under key and returns true if eviction happened
func (c *Cache) Add(key uint64, value []byte) bool {
	return c.getShard(key).add(key, value)
}

func (c *Cache) Get(key uint64) ([]byte, bool) {
	v, ok := c.getShard(key).get(key)
	if ok {
		atomic.AddUint64(&c.hits, 1)
	} else {
		atomic.AddUint64(&c.misses, 1)
	}

	return v, ok
}

func (c *Cache) Remove(key uint64) {
	c.getShard(key).remove(key)
}

func (c *Cache) Purge() {
	var wg sync.WaitGroup

	wg.Add(len(c.shards))
	for i := range c.shards {
		go func(i int) {
			defer wg.Done()
			c.shards[i].purge()
		}(i)
	}

	wg.Wait()
}

func (c *Cache) Count() int {
	var count int
	for i := range c.shards {
		count += c.shards[i].len()
	}
	return count
}

func (c *Cache) Keys() []uint64 {
	keys := make([]uint64, 0, c.Count())
	for i := range c.shards {
		keys = append(keys, c.shards[i].keys()...)
	}

	return keys
}

func (c *Cache) Stats() Stats {
	return Stats{
		Hits:   atomic.LoadUint64(&c.hits),
		Misses: atomic.LoadUint64(&c.misses),
		Count:  c.Count(),
	}
}

func (c *Cache) getShard(key uint64) *lruShard {
	bs := make([]byte, 8)
	binary.LittleEndian.PutUint64(bs, key)
	hash := xxhash.Sum64(bs)
	return c.shards[hash%c.capacity]
}
