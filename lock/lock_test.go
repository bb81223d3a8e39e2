package lock

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAcquireRelease(t *testing.T) {
	l := New()
	l.Acquire()
	l.Release()

	l.AcquireExclusive()
	l.ReleaseExclusive()
}

func TestAcquireAllNoDeadlock(t *testing.T) {
	// Scenario 7: acquire-all(ls) concurrently with any permutation of the
	// same ls never deadlocks.
	const n = 10
	locks := make([]*RWLock, n)
	for i := range locks {
		locks[i] = New()
	}

	var wg sync.WaitGroup
	done := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(seed)))
			perm := r.Perm(n)
			shuffled := make([]*RWLock, n)
			for j, p := range perm {
				shuffled[j] = locks[p]
			}
			release := AcquireAll(true, shuffled...)
			time.Sleep(time.Millisecond)
			release()
			done <- struct{}{}
		}(i)
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("AcquireAll deadlocked")
	}
	assert.Len(t, done, n)
}

func TestAcquireAllDedupsAndIgnoresNil(t *testing.T) {
	a := New()
	b := New()
	release := AcquireAll(true, a, nil, a, b)
	release()
}
