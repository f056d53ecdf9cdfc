package clinicsync

import (
	"context"
	"time"
)

// Clock is the time source of the orchestrator. Tests replace it to run
// backoff waits instantly.
type Clock interface {
	Now() time.Time
	// Sleep waits for d or until ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Connectivity reports whether the remote side is reachable.
type Connectivity interface {
	Online(ctx context.Context) bool
}

// Pinger is implemented by remote stores.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingProbe is a Connectivity that pings the remote backend with a timeout.
type PingProbe struct {
	Target  Pinger
	Timeout time.Duration
}

func (p PingProbe) Online(ctx context.Context) bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Target.Ping(ctx) == nil
}

// AlwaysOnline is a Connectivity for in-process backends.
type AlwaysOnline struct{}

func (AlwaysOnline) Online(context.Context) bool { return true }
