package authcore

import (
	"context"
	"errors"
)

// RunCleanup drains up to max orphans left behind by failed saga
// compensations and finishes their deletion. An orphan whose row is already
// gone counts as resolved; one whose delete fails again goes back on the
// queue. Safe to run concurrently and on a timer.
func (e *Engine) RunCleanup(ctx context.Context, max int) (resolved int, err error) {
	if max <= 0 {
		max = 64
	}
	orphans, err := e.orphans.Drain(ctx, max)
	if err != nil {
		return 0, ErrInternal
	}

	for _, o := range orphans {
		var derr error
		switch o.Kind {
		case "identity":
			derr = e.identities.Delete(ctx, o.ID)
		case "profile":
			derr = e.profiles.Delete(ctx, o.ID)
		default:
			// Unknown kind, nothing can resolve it. Drop with an audit
			// record instead of requeueing forever.
			e.emitAudit(ctx, EventCleanupResolved, o.ID, "", false,
				errors.New("unknown orphan kind"), map[string]string{"kind": o.Kind})
			continue
		}

		if derr != nil && !errors.Is(derr, ErrStoreNotFound) {
			if qerr := e.orphans.Enqueue(ctx, o.Kind, o.ID); qerr != nil {
				e.emitAudit(ctx, EventCleanupResolved, o.ID, "", false, qerr,
					map[string]string{"kind": o.Kind, "requeue": "failed"})
			}
			continue
		}

		resolved++
		e.metricInc(MetricOrphanResolved)
		e.emitAudit(ctx, EventCleanupResolved, o.ID, "", true, nil,
			map[string]string{"kind": o.Kind})
	}
	return resolved, nil
}

// OrphanBacklog reports how many orphans await the next cleanup pass.
func (e *Engine) OrphanBacklog(ctx context.Context) (int64, error) {
	n, err := e.orphans.Len(ctx)
	if err != nil {
		return 0, ErrInternal
	}
	return n, nil
}
