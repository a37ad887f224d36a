package lru

// NullCache stores nothing. It stands in for Cache when caching is off.
type NullCache struct{}

func (NullCache) Add(uint64, []byte) bool { return false }

func (NullCache) Get(uint64) ([]byte, bool) { return nil, false }

func (NullCache) Remove(uint64) {}

func (NullCache) Purge() {}
