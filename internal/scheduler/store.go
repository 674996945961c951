// Package scheduler holds the task scheduler: the in-memory store that
// tracks open and assigned work units with bounded leases, the refresh
// loop that keeps it reconciled against the canvas, and the submission
// validator that confirms a claimed pixel actually landed.
package scheduler

import (
	"math/rand"
	"sync"
	"time"

	"github.com/itsdrike/rickchurch-go/internal/canvasclient"
	"github.com/itsdrike/rickchurch-go/internal/diff"
)

// Assignment is a single user's current lease on a unit.
type Assignment struct {
	Unit      diff.Unit
	LeasedAt  time.Time
	ExpiresAt time.Time
}

// Store is the single-process, concurrency-safe task store described in
// spec §4.E. All fields are guarded by mu; no I/O or channel send ever
// happens while mu is held.
type Store struct {
	mu       sync.Mutex
	open     map[diff.Unit]struct{}
	assigned map[int64]Assignment
	reverse  map[diff.Unit]int64

	snapshot     *canvasclient.Snapshot
	snapshotTime time.Time

	leaseDuration time.Duration
	rng           *rand.Rand
}

// NewStore builds an empty Store with the given lease duration
// (TASK_PENDING_DELAY in spec §6).
func NewStore(leaseDuration time.Duration) *Store {
	return &Store{
		open:          make(map[diff.Unit]struct{}),
		assigned:      make(map[int64]Assignment),
		reverse:       make(map[diff.Unit]int64),
		leaseDuration: leaseDuration,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Assign implements spec's `assign(user_id)`: picks a unit from open
// uniformly at random, moves it to assigned[user], and arms a reclaim
// timer for lease_duration from now.
func (s *Store) Assign(userID int64) (diff.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assigned[userID]; ok {
		return diff.Unit{}, ErrAlreadyAssigned
	}
	if len(s.open) == 0 {
		return diff.Unit{}, ErrNoTasksAvailable
	}

	// Uniform random selection from the open set.
	idx := s.rng.Intn(len(s.open))
	var picked diff.Unit
	i := 0
	for u := range s.open {
		if i == idx {
			picked = u
			break
		}
		i++
	}

	now := time.Now()
	expiresAt := now.Add(s.leaseDuration)
	delete(s.open, picked)
	s.assigned[userID] = Assignment{Unit: picked, LeasedAt: now, ExpiresAt: expiresAt}
	s.reverse[picked] = userID

	time.AfterFunc(s.leaseDuration, func() { s.reclaim(userID, picked) })

	return picked, nil
}

// reclaim is the timer callback armed by Assign. It carries the unit it
// was armed with and is idempotent: if the user has since submitted or
// been reassigned to a different unit, it no-ops.
func (s *Store) reclaim(userID int64, unit diff.Unit) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.assigned[userID]
	if !ok || a.Unit != unit {
		return
	}
	delete(s.assigned, userID)
	delete(s.reverse, unit)
	s.open[unit] = struct{}{}
}

// Submit implements spec's `submit(user_id, unit)`. It does not return the
// unit to open — the caller (the submission validator) only calls this
// after confirming the pixel landed on the live canvas.
func (s *Store) Submit(userID int64, unit diff.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, ok := s.reverse[unit]
	if !ok {
		return ErrUnknownTask
	}
	if owner != userID {
		return ErrNotYourTask
	}
	delete(s.assigned, userID)
	delete(s.reverse, unit)
	return nil
}

// AssignmentFor returns the user's current assignment, if any.
func (s *Store) AssignmentFor(userID int64) (Assignment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assigned[userID]
	return a, ok
}

// Reconcile is called by the refresh loop after each canvas snapshot
// refresh. It atomically updates the held snapshot and reconciles open /
// assigned against newUnits:
//   - units tracked but no longer in newUnits are dropped (from open, or
//     by severing the assignment — the user learns at submit time via
//     ErrUnknownTask);
//   - units in newUnits but not yet tracked are added to open;
//   - units tracked in both are left untouched, preserving assignments
//     across reconciles.
func (s *Store) Reconcile(snapshot *canvasclient.Snapshot, newUnits map[diff.Unit]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = snapshot
	s.snapshotTime = time.Now()

	for u := range s.open {
		if _, ok := newUnits[u]; !ok {
			delete(s.open, u)
		}
	}
	for u, owner := range s.reverse {
		if _, ok := newUnits[u]; !ok {
			delete(s.reverse, u)
			delete(s.assigned, owner)
		}
	}
	for u := range newUnits {
		_, inOpen := s.open[u]
		_, inAssigned := s.reverse[u]
		if !inOpen && !inAssigned {
			s.open[u] = struct{}{}
		}
	}
}

// Snapshot returns the most recently committed canvas snapshot and the
// monotonic time it was committed at.
func (s *Store) Snapshot() (*canvasclient.Snapshot, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot, s.snapshotTime
}

// LeaseDuration returns the configured lease duration.
func (s *Store) LeaseDuration() time.Duration {
	return s.leaseDuration
}

// Stats is a point-in-time view of store occupancy, used by the /healthz
// endpoint.
type Stats struct {
	Open     int
	Assigned int
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{Open: len(s.open), Assigned: len(s.assigned)}
}
