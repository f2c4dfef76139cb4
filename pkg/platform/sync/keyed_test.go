package sync

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSameKeySerializes(t *testing.T) {
	m := NewKeyedMutex()
	counter := 0

	var wg sync.WaitGroup
	for range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock("Aadhaar Card|123456789012")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()
	assert.Equal(t, 200, counter)
}

func TestKeyedMutexShardIsStablePerKey(t *testing.T) {
	m := NewKeyedMutex()
	assert.Equal(t, m.shardFor("PAN Card|ABCDE1234F"), m.shardFor("PAN Card|ABCDE1234F"))

	seen := map[int]bool{}
	for i := range 1000 {
		seen[m.shardFor(string(rune('a'+i%26))+string(rune(i)))] = true
	}
	assert.Greater(t, len(seen), shardCount/2)
}

func TestKeyedMutexUnlockReleases(t *testing.T) {
	m := NewKeyedMutex()
	m.Lock("k")()
	m.Lock("k")()
	m.Lock("")()
}
