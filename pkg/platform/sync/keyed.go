package sync

import (
	"hash/maphash"
	"sync"
)

const shardCount = 64

// KeyedMutex serializes work on the same key while unrelated keys mostly
// proceed in parallel. Keys share one of a fixed set of shards, so two
// different keys may occasionally wait on each other.
type KeyedMutex struct {
	seed   maphash.Seed
	shards [shardCount]sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{seed: maphash.MakeSeed()}
}

// Lock blocks until key's shard is free and returns the matching unlock.
func (m *KeyedMutex) Lock(key string) (unlock func()) {
	mu := &m.shards[m.shardFor(key)]
	mu.Lock()
	return mu.Unlock
}

func (m *KeyedMutex) shardFor(key string) int {
	return int(maphash.String(m.seed, key) % shardCount)
}
