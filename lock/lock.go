// Package lock provides an asymmetric reader/writer lock with deadlock-free
// bulk acquisition, used to guard node and queue state across the graph.
package lock

import (
	"sort"
	"sync"
	"sync/atomic"
)

var idSeq atomic.Uint64

// RWLock is an asymmetric lock: writers exclude readers and other writers,
// readers may overlap with other readers. Cancellation of a blocked
// acquire is not supported; callers are expected to size their critical
// sections accordingly.
type RWLock struct {
	mu sync.RWMutex
	id uint64 // creation order, used to canonicalize AcquireAll
}

// New returns a ready-to-use RWLock.
func New() *RWLock {
	return &RWLock{id: idSeq.Add(1)}
}

// Acquire takes the lock in shared (reader) mode.
func (l *RWLock) Acquire() { l.mu.RLock() }

// Release releases a shared acquisition.
func (l *RWLock) Release() { l.mu.RUnlock() }

// AcquireExclusive takes the lock in exclusive (writer) mode.
func (l *RWLock) AcquireExclusive() { l.mu.Lock() }

// ReleaseExclusive releases an exclusive acquisition.
func (l *RWLock) ReleaseExclusive() { l.mu.Unlock() }

// AcquireAll acquires every lock in locks in a canonical order (by creation
// id, not argument order), so concurrent callers acquiring overlapping sets
// in arbitrary order never deadlock. It returns a release func that
// releases LIFO. nil and duplicate locks are ignored.
func AcquireAll(exclusive bool, locks ...*RWLock) (release func()) {
	ordered := canonicalize(locks)
	for _, l := range ordered {
		if exclusive {
			l.AcquireExclusive()
		} else {
			l.Acquire()
		}
	}
	return func() {
		for i := len(ordered) - 1; i >= 0; i-- {
			if exclusive {
				ordered[i].ReleaseExclusive()
			} else {
				ordered[i].Release()
			}
		}
	}
}

func canonicalize(locks []*RWLock) []*RWLock {
	seen := make(map[*RWLock]struct{}, len(locks))
	out := make([]*RWLock, 0, len(locks))
	for _, l := range locks {
		if l == nil {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
