package task

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
)

// Locker serializes read-modify-write cycles per task id. Entries live only
// while someone holds or waits for them.
type Locker struct {
	locks *xsync.Map[string, *lockEntry]
}

type lockEntry struct {
	mu   sync.Mutex
	refs int // guarded by the map bucket in Compute
}

func NewLocker() *Locker {
	return &Locker{locks: xsync.NewMap[string, *lockEntry]()}
}

// Lock blocks until the task lock is held and returns its release func.
func (l *Locker) Lock(taskID string) func() {
	e, _ := l.locks.Compute(taskID, func(e *lockEntry, loaded bool) (*lockEntry, xsync.ComputeOp) {
		if !loaded {
			e = &lockEntry{}
		}
		e.refs++
		return e, xsync.UpdateOp
	})
	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.locks.Compute(taskID, func(e *lockEntry, loaded bool) (*lockEntry, xsync.ComputeOp) {
			e.refs--
			if e.refs == 0 {
				return e, xsync.DeleteOp
			}
			return e, xsync.UpdateOp
		})
	}
}

// Len reports how many task ids currently have a lock entry.
func (l *Locker) Len() int {
	return l.locks.Size()
}
