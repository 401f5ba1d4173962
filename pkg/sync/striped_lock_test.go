package sync

import (
	"crypto/ed25519"
	base "sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripedLock_HappyPath(t *testing.T) {
	workerCount := 64
	operationCount := 1000

	l := NewStripedLock(4)

	keys := make([]ed25519.PublicKey, workerCount)
	for i := range keys {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = pub
	}

	var wg base.WaitGroup
	startChan := make(chan struct{})
	data := make([]int, workerCount)

	for i := 0; i < workerCount; i++ {
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func(workerID int) {
				defer wg.Done()
				<-startChan

				for k := 0; k < operationCount; k++ {
					mu := l.Get(keys[workerID])
					mu.Lock()
					data[workerID]++
					mu.Unlock()
				}
			}(i)
		}
	}

	close(startChan)
	wg.Wait()

	for _, val := range data {
		assert.EqualValues(t, 4*operationCount, val)
	}
}

func TestStripedLock_Consistency(t *testing.T) {
	l := NewStripedLock(16)

	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	mu := l.Get(pub)
	for i := 0; i < 100; i++ {
		assert.True(t, mu == l.Get(append([]byte{}, pub...)))
	}
}
