package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/itsdrike/rickchurch-go/internal/canvasclient"
	"github.com/itsdrike/rickchurch-go/internal/diff"
	"github.com/itsdrike/rickchurch-go/internal/project"
)

// RefreshLoop is the single long-running driver described in spec §4.F: it
// reloads projects, refreshes the canvas snapshot, recomputes the diff,
// and reconciles the Task Store, sleeping refreshInterval between
// iterations.
type RefreshLoop struct {
	store      *Store
	repository project.Repository
	canvas     *canvasclient.Client
	interval   time.Duration
	logger     zerolog.Logger
}

// NewRefreshLoop wires the loop's dependencies.
func NewRefreshLoop(store *Store, repository project.Repository, canvas *canvasclient.Client, interval time.Duration) *RefreshLoop {
	return &RefreshLoop{
		store:      store,
		repository: repository,
		canvas:     canvas,
		interval:   interval,
		logger:     log.With().Str("component", "refresh_loop").Logger(),
	}
}

// Run blocks, ticking every interval until ctx is canceled. It is the sole
// writer of the Task Store's snapshot.
func (l *RefreshLoop) Run(ctx context.Context) {
	for {
		l.tick(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.interval):
		}
	}
}

// tick runs a single reload/refresh/reconcile cycle. On a canvas fetch
// failure it logs and leaves the last-known-good snapshot in place,
// matching spec's "keep last snapshot" mandate.
func (l *RefreshLoop) tick(ctx context.Context) {
	projects, err := l.repository.ListProjects(ctx)
	if err != nil {
		l.logger.Error().Err(err).Msg("failed to list projects, skipping this refresh")
		return
	}

	snapshot, err := l.canvas.GetCanvas(ctx)
	if err != nil {
		l.logger.Warn().Err(err).Msg("failed to refresh canvas snapshot, keeping last known snapshot")
		return
	}

	units := diff.ComputeUnits(projects, snapshot)
	l.store.Reconcile(snapshot, units)

	stats := l.store.Stats()
	l.logger.Debug().
		Int("projects", len(projects)).
		Int("open", stats.Open).
		Int("assigned", stats.Assigned).
		Msg("reconciled task store")
}
