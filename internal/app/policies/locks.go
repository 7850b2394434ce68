package policies

import (
	"context"
	"sync"
)

type lockScopeKey struct{}

// lockScope collects lock releases acquired inside one command dispatch so
// they can be run after the surrounding transaction commits.
type lockScope struct {
	mu       sync.Mutex
	releases []func()
}

func (s *lockScope) add(release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releases = append(s.releases, release)
}

func (s *lockScope) close() {
	s.mu.Lock()
	releases := s.releases
	s.releases = nil
	s.mu.Unlock()
	for i := len(releases) - 1; i >= 0; i-- {
		releases[i]()
	}
}

// WithLockScope opens a lock scope on the context. Locks taken through
// HoldUnitLock under this context stay held until the returned close func
// runs.
func WithLockScope(ctx context.Context) (context.Context, func()) {
	scope := &lockScope{}
	return context.WithValue(ctx, lockScopeKey{}, scope), scope.close
}

// HoldUnitLock takes the per-unit lock. When the context carries a lock
// scope, the scope owns the release and the returned func is a no-op; the
// lock then outlives the handler and covers the commit that follows it.
// Without a scope the caller releases directly.
func HoldUnitLock(ctx context.Context, locks UnitLocker, unitID string) func() {
	release := locks.LockUnit(unitID)
	if scope, ok := ctx.Value(lockScopeKey{}).(*lockScope); ok {
		scope.add(release)
		return func() {}
	}
	return release
}
