package clinicsync

import (
	"context"
	"fmt"

	"github.com/harentsoaR/dentist-sync/internal/models"
)

// pushRequest is the next remote write: the newest snapshot offered so far
// and everyone waiting for it.
type pushRequest struct {
	snap    *models.Snapshot
	waiters []chan error
}

// Push writes snap to the remote and waits for the outcome. Pushes that
// arrive while another is running are coalesced: only the newest snapshot is
// written next, and its outcome is reported to all of them.
//
// If ctx ends first Push returns ctx.Err(); the write itself goes on.
func (o *Orchestrator) Push(ctx context.Context, snap *models.Snapshot) error {
	done := o.enqueue(snap)
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) enqueue(snap *models.Snapshot) <-chan error {
	done := make(chan error, 1)

	o.pushMu.Lock()
	defer o.pushMu.Unlock()
	if o.bg.Err() != nil {
		done <- ErrClosed
		return done
	}
	if o.pending == nil {
		o.pending = &pushRequest{}
	}
	if o.pending.snap == nil || snap.LastUpdated >= o.pending.snap.LastUpdated {
		o.pending.snap = snap
	}
	o.pending.waiters = append(o.pending.waiters, done)
	if !o.pushing {
		o.pushing = true
		o.wg.Add(1)
		go o.drain()
	}
	return done
}

// drain runs queued pushes one at a time until the queue is empty.
func (o *Orchestrator) drain() {
	defer o.wg.Done()
	for {
		o.pushMu.Lock()
		req := o.pending
		o.pending = nil
		if req == nil {
			o.pushing = false
			o.pushMu.Unlock()
			return
		}
		o.pushMu.Unlock()

		err := o.push(req)
		if err != nil {
			o.logger.Printf("Push of lastUpdated=%d failed: %v", req.snap.LastUpdated, err)
		}
		for _, w := range req.waiters {
			w <- err
		}
	}
}

// takeNewer removes and returns the pending request when its snapshot is at
// least as new as snap.
func (o *Orchestrator) takeNewer(snap *models.Snapshot) *pushRequest {
	o.pushMu.Lock()
	defer o.pushMu.Unlock()
	p := o.pending
	if p == nil || p.snap.LastUpdated < snap.LastUpdated {
		return nil
	}
	o.pending = nil
	return p
}

// push checks the preconditions and writes req.snap with exponential
// backoff: after failed attempt n it waits 2^n * baseBackoff. A newer
// snapshot queued during a wait replaces req.snap for the remaining
// attempts, and its waiters join req.
func (o *Orchestrator) push(req *pushRequest) error {
	snap := req.snap
	if !o.ready(o.bg) {
		o.setStatus(StatusOffline, nil)
		o.metrics.pushes.WithLabelValues("offline").Inc()
		return ErrOffline
	}

	o.setStatus(StatusSyncing, nil)
	start := o.clock.Now()
	defer func() {
		o.metrics.pushDuration.Observe(o.clock.Now().Sub(start).Seconds())
	}()

	// The write is never cancelled once started; only the waits between
	// attempts stop on Close.
	writeCtx := context.WithoutCancel(o.bg)
	for attempt := 1; ; attempt++ {
		err := o.remote.Save(writeCtx, snap)
		if err == nil {
			o.metrics.pushAttempts.WithLabelValues("ok").Inc()
			o.metrics.pushes.WithLabelValues("synced").Inc()
			o.metrics.synced(o.clock.Now())
			o.setStatus(StatusSynced, nil)
			return nil
		}
		o.metrics.pushAttempts.WithLabelValues("error").Inc()

		if attempt >= o.maxAttempts {
			o.metrics.pushes.WithLabelValues("failed").Inc()
			o.setStatus(StatusError, err)
			return fmt.Errorf("%w after %d attempts: %w", ErrPushFailed, attempt, err)
		}

		wait := (1 << attempt) * o.baseBackoff
		o.logger.Printf("Push attempt %d/%d failed, retrying in %s: %v", attempt, o.maxAttempts, wait, err)
		if serr := o.clock.Sleep(o.bg, wait); serr != nil {
			o.metrics.pushes.WithLabelValues("failed").Inc()
			o.setStatus(StatusError, err)
			return fmt.Errorf("%w: stopped after %d attempts: %w", ErrPushFailed, attempt, err)
		}
		if newer := o.takeNewer(snap); newer != nil {
			o.logger.Printf("Push of lastUpdated=%d superseded by lastUpdated=%d", snap.LastUpdated, newer.snap.LastUpdated)
			snap = newer.snap
			req.snap = snap
			req.waiters = append(req.waiters, newer.waiters...)
		}
	}
}
