package service

import (
	"sync"
	"testing"
)

func TestChannelLocksSerializeSameChannel(t *testing.T) {
	locks := newChannelLocks()

	const workers = 32
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(100)
			counter++
			unlock()
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Fatalf("lost updates: got %d, want %d", counter, workers)
	}
}

func TestChannelLocksEntriesReleased(t *testing.T) {
	locks := newChannelLocks()

	unlock := locks.Lock(7)
	locks.mu.Lock()
	if len(locks.entries) != 1 {
		locks.mu.Unlock()
		t.Fatalf("expected one live entry, got %d", len(locks.entries))
	}
	locks.mu.Unlock()

	unlock()

	locks.mu.Lock()
	defer locks.mu.Unlock()
	if len(locks.entries) != 0 {
		t.Fatalf("entry leaked after release: %d", len(locks.entries))
	}
}

func TestChannelLocksIndependentChannels(t *testing.T) {
	locks := newChannelLocks()

	unlockA := locks.Lock(1)
	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock(2)
		unlockB()
		close(done)
	}()
	<-done
	unlockA()
}
