package commands

import (
	"sync"

	"foodcourt/internal/core/domain/model/kernel"
)

// OrderLocks serializes command handling per order within this process.
// Two concurrent commands for the same order run one after the other; commands
// for different orders do not contend. Cross-process safety comes from the
// database's conditional writes, this lock only prevents wasted conflicting
// transactions.
type OrderLocks struct {
	mu    sync.Mutex
	locks map[string]*orderLock
}

type orderLock struct {
	mu   sync.Mutex
	refs int
}

// NewOrderLocks creates an empty lock registry.
func NewOrderLocks() *OrderLocks {
	return &OrderLocks{locks: make(map[string]*orderLock)}
}

// Lock acquires the per-order lock and returns its release function.
// Lock entries are reference-counted and removed when unused, so the registry
// does not grow with the total number of orders ever seen.
func (l *OrderLocks) Lock(orderID kernel.UUID) (unlock func()) {
	key := orderID.String()

	l.mu.Lock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &orderLock{}
		l.locks[key] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
