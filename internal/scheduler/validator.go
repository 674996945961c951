package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/itsdrike/rickchurch-go/internal/canvasclient"
	"github.com/itsdrike/rickchurch-go/internal/diff"
	"github.com/itsdrike/rickchurch-go/internal/pixel"
)

// Validator confirms a submitted unit by consulting the freshest pixel
// value available, trading off between waiting for the refresh loop's
// next snapshot and issuing a rate-limited point query (spec §4.G).
type Validator struct {
	store           *Store
	canvas          *canvasclient.Client
	refreshInterval time.Duration
}

// NewValidator builds a Validator against store, using canvas for
// single-pixel fallback reads, aware of the refresh loop's interval.
func NewValidator(store *Store, canvas *canvasclient.Client, refreshInterval time.Duration) *Validator {
	return &Validator{store: store, canvas: canvas, refreshInterval: refreshInterval}
}

// errNoSnapshot is returned internally when no snapshot has been
// committed yet; it is not a scheduler sentinel because it can only
// happen before the refresh loop's first tick. The HTTP adapter has no
// case for it and answers with a 500 internal error, not a 503.
var errNoSnapshot = errors.New("scheduler: no canvas snapshot available yet")

// Submit validates and, on success, commits a user's submission of unit.
func (v *Validator) Submit(ctx context.Context, userID int64, u diff.Unit) error {
	submitTime := time.Now()

	a, ok := v.store.AssignmentFor(userID)
	if !ok {
		return ErrUnknownTask
	}
	if a.Unit != u {
		return ErrNotYourTask
	}

	deadline := submitTime.Add(v.store.LeaseDuration())
	deadlineCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	rgb, err := v.getFastestPixel(deadlineCtx, u.Coord.X, u.Coord.Y, submitTime)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return err
	}
	if rgb != u.RGB {
		return ErrUnverified
	}
	return v.store.Submit(userID, u)
}

// getFastestPixel is the latency-optimized freshness oracle from spec
// §4.G: if the held snapshot already postdates submitTime, it's used
// directly; otherwise the validator estimates the wait for the next
// scheduled refresh versus a single-pixel fetch and takes whichever is
// faster, preferring the snapshot when both are immediate.
func (v *Validator) getFastestPixel(ctx context.Context, x, y int, submitTime time.Time) (pixel.RGB, error) {
	snap, snapTime := v.store.Snapshot()
	if !snapTime.Before(submitTime) {
		if snap == nil {
			return pixel.RGB{}, errNoSnapshot
		}
		return snap.At(x, y), nil
	}

	tSnapshot := time.Until(snapTime.Add(v.refreshInterval))
	if tSnapshot < 0 {
		tSnapshot = 0
	}
	tPixel := v.canvas.PixelWaitTime()

	if tPixel < tSnapshot {
		rgb, err := v.canvas.GetPixel(ctx, x, y)
		if err == nil {
			return rgb, nil
		}
		// Single-pixel fetch failed: fall back to waiting for the
		// snapshot rather than failing the whole validation outright.
	}
	return v.waitForSnapshot(ctx, x, y, tSnapshot)
}

func (v *Validator) waitForSnapshot(ctx context.Context, x, y int, wait time.Duration) (pixel.RGB, error) {
	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return pixel.RGB{}, ctx.Err()
		}
	}
	snap, _ := v.store.Snapshot()
	if snap == nil {
		return pixel.RGB{}, errNoSnapshot
	}
	return snap.At(x, y), nil
}
