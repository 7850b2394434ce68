package middleware

import (
	"context"

	"campusnest/internal/app/commands"
	"campusnest/internal/app/outbox"
)

// OutboxFlush delivers buffered event records after the command (and its unit
// of work) has committed. A flush failure is reported to the caller only when
// the store itself breaks; dispatcher delivery failures stay inside the
// outbox implementation, never rolling back the transition that produced
// them.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := nextFn(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
