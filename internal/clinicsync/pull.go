package clinicsync

import (
	"context"
	"fmt"

	"github.com/harentsoaR/dentist-sync/internal/merge"
)

// Pull fetches the remote record and merges it into the local snapshot.
//
// Without connectivity or a session Pull does nothing and returns nil. A
// remote record that is not newer than the local snapshot is ignored unless
// force is set. Concurrent pulls with the same force flag share one run.
//
// If ctx ends first Pull returns ctx.Err(); the run itself goes on for the
// other callers.
func (o *Orchestrator) Pull(ctx context.Context, force bool) error {
	key := "pull"
	if force {
		key = "pull-force"
	}
	runCtx := context.WithoutCancel(ctx)
	res := o.pulls.DoChan(key, func() (any, error) {
		return nil, o.pull(runCtx, force)
	})
	select {
	case r := <-res:
		return r.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) pull(ctx context.Context, force bool) error {
	if !o.ready(ctx) {
		o.metrics.pulls.WithLabelValues("skipped").Inc()
		return nil
	}

	o.setStatus(StatusSyncing, nil)
	remote, err := o.remote.Load(ctx)
	if err != nil {
		o.metrics.pulls.WithLabelValues("error").Inc()
		o.setStatus(StatusError, err)
		return fmt.Errorf("%w: %w", ErrPullFailed, err)
	}
	if remote == nil {
		o.metrics.pulls.WithLabelValues("absent").Inc()
		o.setStatus(StatusSynced, nil)
		return nil
	}

	prefs, err := o.local.DevicePrefs(ctx)
	if err != nil {
		o.logger.Printf("WARNING: could not read device preferences: %v", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	local := o.snap
	var localStamp int64
	if local != nil {
		localStamp = local.LastUpdated
	}
	if !force && remote.LastUpdated <= localStamp {
		o.metrics.pulls.WithLabelValues("stale").Inc()
		o.metrics.synced(o.clock.Now())
		o.setStatus(StatusSynced, nil)
		return nil
	}

	merged := prefs.ApplyTo(merge.Merge(local, remote))
	if err := o.local.Save(ctx, merged); err != nil {
		o.metrics.pulls.WithLabelValues("error").Inc()
		o.setStatus(StatusError, err)
		return fmt.Errorf("save merged snapshot: %w", err)
	}
	o.snap = merged
	o.logger.Printf("Merged remote snapshot (remote=%d local=%d force=%t)", remote.LastUpdated, localStamp, force)

	o.metrics.pulls.WithLabelValues("merged").Inc()
	o.metrics.synced(o.clock.Now())
	o.setStatus(StatusSynced, nil)
	return nil
}
