package realtime

import (
	"context"
	"log/slog"
	"time"
)

const (
	relayMinBackoff = time.Second
	relayMaxBackoff = 30 * time.Second
)

// retry calls run until ctx is done. Each failure waits before the next
// attempt, doubling the wait up to maxWait; a run that ended cleanly while
// ctx is still live resets the wait.
func retry(ctx context.Context, logger *slog.Logger, run func(context.Context) error, minWait, maxWait time.Duration) {
	wait := minWait
	for ctx.Err() == nil {
		err := run(ctx)
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			wait = minWait
		} else {
			logger.Warn("Push relay interrupted, retrying", "error", err, "backoff", wait)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		if err != nil {
			wait = min(wait*2, maxWait)
		}
	}
}

// RelayUntilDone keeps Relay running, resubscribing with backoff whenever the
// subscription drops, until ctx is done.
func (p *RedisPublisher) RelayUntilDone(ctx context.Context, hub *Hub) {
	retry(ctx, p.logger, func(ctx context.Context) error {
		return p.Relay(ctx, hub)
	}, relayMinBackoff, relayMaxBackoff)
}
