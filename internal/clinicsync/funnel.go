package clinicsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/harentsoaR/dentist-sync/internal/merge"
	"github.com/harentsoaR/dentist-sync/internal/models"
)

// Transform derives the next snapshot from the current one. It receives a
// private copy and may modify it. Returning an error aborts the mutation.
type Transform func(cur *models.Snapshot) (*models.Snapshot, error)

// ErrNilSnapshot is returned when a transform produces no snapshot.
var ErrNilSnapshot = errors.New("transform returned nil snapshot")

// commit runs fn on a copy of the snapshot under the state lock, stamps the
// result and saves it locally. The in-memory snapshot is replaced only after
// the save succeeded.
func (o *Orchestrator) commit(ctx context.Context, fn Transform) (*models.Snapshot, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	cur := o.snap.Clone()
	if cur == nil {
		cur = &models.Snapshot{Settings: models.DefaultSettings()}
	}
	next, err := fn(cur)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, ErrNilSnapshot
	}
	stamped := *next
	stamped.LastUpdated = o.clock.Now().UnixMilli()

	if err := o.local.Save(ctx, &stamped); err != nil {
		return nil, fmt.Errorf("save local snapshot: %w", err)
	}
	o.snap = &stamped
	return &stamped, nil
}

// Apply commits fn locally and schedules a push without waiting for it. The
// push outcome is only visible through the status.
func (o *Orchestrator) Apply(ctx context.Context, fn Transform) (*models.Snapshot, error) {
	next, err := o.commit(ctx, fn)
	if err != nil {
		return nil, err
	}
	o.metrics.mutations.WithLabelValues("async").Inc()
	o.enqueue(next)
	return next, nil
}

// ApplyAndWait commits fn locally and waits for the push. When the push
// fails the committed snapshot is kept and returned along with the error.
func (o *Orchestrator) ApplyAndWait(ctx context.Context, fn Transform) (*models.Snapshot, error) {
	next, err := o.commit(ctx, fn)
	if err != nil {
		return nil, err
	}
	o.metrics.mutations.WithLabelValues("await").Inc()
	return next, o.Push(ctx, next)
}

// Restore makes an imported backup the current snapshot: as is when replace
// is set, otherwise merged into the current one.
func (o *Orchestrator) Restore(ctx context.Context, imported *models.Snapshot, replace bool) (*models.Snapshot, error) {
	if !imported.Initialized() {
		return nil, errors.New("restore: backup has no clinic")
	}
	return o.ApplyAndWait(ctx, func(cur *models.Snapshot) (*models.Snapshot, error) {
		if replace {
			return imported, nil
		}
		return merge.Merge(cur, imported), nil
	})
}
