package memory

import (
	"sync"

	"campusnest/internal/app/policies"
)

// UnitLockRegistry hands out one mutex per unit id, so the check-then-write
// sequence for a unit is serialized without blocking unrelated units. Locks
// are created lazily and never collected; the registry grows with the number
// of distinct units seen by this process.
type UnitLockRegistry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewUnitLockRegistry() *UnitLockRegistry {
	return &UnitLockRegistry{locks: make(map[string]*sync.Mutex)}
}

func (r *UnitLockRegistry) LockUnit(unitID string) (release func()) {
	r.mu.Lock()
	lock, ok := r.locks[unitID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[unitID] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

var _ policies.UnitLocker = (*UnitLockRegistry)(nil)
