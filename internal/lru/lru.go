package lru

import (
	"container/list"
	"sync"
)

type lruShard struct {
	mu         sync.Mutex
	totalBytes uint64
	maxBytes   uint64
	evictList  *list.List
	elems      map[uint64]*list.Element
	onEvict    OnEvict
}

func newLruShard(maxBytes uint64, onEvict OnEvict) *lruShard {
	return &lruShard{
		maxBytes:  maxBytes,
		evictList: list.New(),
		elems:     make(map[uint64]*list.Element),
		onEvict:   onEvict,
	}
}

type entry struct {
	key   uint64
	value []byte
}

func (ls *lruShard) get(key uint64) ([]byte, bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	elem, ok := ls.elems[key]
	if !ok {
		return nil, false
	}

	ls.evictList.MoveToFront(elem)
	return elem.Value.(*entry).value, true
}

// add stores value under key and reports whether anything was evicted
// to make room for it. A value larger than the shard is not stored.
func (ls *lruShard) add(key uint64, value []byte) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	size := uint64(len(value))
	if size > ls.maxBytes {
		return false
	}

	if elem, ok := ls.elems[key]; ok {
		ls.evictList.MoveToFront(elem)
		ls.totalBytes -= uint64(len(elem.Value.(*entry).value))
		elem.Value.(*entry).value = value
		ls.totalBytes += size
		return ls.shrinkUnderLock(elem)
	}

	var evicted bool
	for ls.totalBytes+size > ls.maxBytes {
		if !ls.evictOldestUnderLock() {
			break
		}
		evicted = true
	}

	elem := ls.evictList.PushFront(&entry{key: key, value: value})
	ls.elems[key] = elem
	ls.totalBytes += size

	return evicted
}

// shrinkUnderLock evicts old entries other than keep until the shard fits.
func (ls *lruShard) shrinkUnderLock(keep *list.Element) bool {
	var evicted bool
	for ls.totalBytes > ls.maxBytes {
		oldest := ls.evictList.Back()
		if oldest == nil || oldest == keep {
			break
		}
		ls.evictUnderLock(oldest)
		evicted = true
	}
	return evicted
}

func (ls *lruShard) evictOldestUnderLock() bool {
	elem := ls.evictList.Back()
	if elem == nil {
		return false
	}

	ls.evictUnderLock(elem)
	return true
}

func (ls *lruShard) evictUnderLock(elem *list.Element) {
	k, v := ls.removeElementUnderLock(elem)
	if ls.onEvict != nil {
		ls.onEvict(k, v)
	}
}

func (ls *lruShard) purge() {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.elems = make(map[uint64]*list.Element)
	ls.totalBytes = 0
	ls.evictList.Init()
}

func (ls *lruShard) remove(key uint64) ([]byte, bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	elem, ok := ls.elems[key]
	if !ok {
		return nil, false
	}

	_, value := ls.removeElementUnderLock(elem)
	return value, true
}

func (ls *lruShard) removeElementUnderLock(elem *list.Element) (uint64, []byte) {
	ls.evictList.Remove(elem)

	kv := elem.Value.(*entry)
	delete(ls.elems, kv.key)
	ls.totalBytes -= uint64(len(kv.value))
	return kv.key, kv.value
}

func (ls *lruShard) len() int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return len(ls.elems)
}

func (ls *lruShard) keys() []uint64 {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	keys := make([]uint64, 0, len(ls.elems))
	for k := range ls.elems {
		keys = append(keys, k)
	}
	return keys
}
