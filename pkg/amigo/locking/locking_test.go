package locking

import (
	"sync"
	"testing"
)

func TestLockSerializesSameKey(t *testing.T) {
	locks := New()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				locks.Lock("GROUP1")
				counter++
				locks.Unlock("GROUP1")
			}
		}()
	}
	wg.Wait()

	if counter != 5000 {
		t.Errorf("counter = %d, want 5000", counter)
	}
}

func TestDifferentKeysUseDifferentMutexes(t *testing.T) {
	locks := New()

	locks.Lock("A")
	done := make(chan struct{})
	go func() {
		// Must not block on A's mutex.
		locks.Lock("B")
		locks.Unlock("B")
		close(done)
	}()
	<-done
	locks.Unlock("A")
}

func TestLockIsReusableAfterUnlock(t *testing.T) {
	locks := New()
	for i := 0; i < 3; i++ {
		locks.Lock("X")
		locks.Unlock("X")
	}
}
