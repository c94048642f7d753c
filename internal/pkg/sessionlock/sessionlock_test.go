package sessionlock_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/darkroot-games/warband-api/internal/pkg/sessionlock"
)

func TestAcquireSerializesSameKey(t *testing.T) {
	locks := sessionlock.New()

	const workers = 16
	counter := 0

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			unlock := locks.Acquire("session_1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestAcquireIndependentKeys(t *testing.T) {
	locks := sessionlock.New()

	unlockA := locks.Acquire("session_a")
	// A held; B must still be acquirable without blocking.
	done := make(chan struct{})
	go func() {
		unlockB := locks.Acquire("session_b")
		unlockB()
		close(done)
	}()
	<-done
	unlockA()
}
