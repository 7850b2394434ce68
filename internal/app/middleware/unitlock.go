package middleware

import (
	"context"

	"campusnest/internal/app/commands"
	"campusnest/internal/app/policies"
)

// UnitLock opens a lock scope around the wrapped bus. Per-unit locks taken by
// handlers through policies.HoldUnitLock are released here, after the inner
// Transaction middleware has committed, so a competing approval cannot enter
// the check-then-write sequence between a handler returning and its commit.
func UnitLock() CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			ctx, release := policies.WithLockScope(ctx)
			defer release()
			return nextFn(ctx, cmd)
		})
	}
}
