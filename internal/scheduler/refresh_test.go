package scheduler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/itsdrike/rickchurch-go/internal/canvasclient"
	"github.com/itsdrike/rickchurch-go/internal/pixel"
	"github.com/itsdrike/rickchurch-go/internal/project"
)

func TestRefreshLoopTickReconciles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"width":4,"height":4,"pixels":["000000","000000","000000","000000","000000","000000","000000","000000","000000","000000","000000","000000","000000","000000","000000","000000"]}`))
	}))
	defer srv.Close()

	repo := project.NewMemoryRepository()
	img := &pixel.Grid{Width: 1, Height: 1, Pixels: []pixel.RGB{{R: 0xff}}}
	repo.Put(project.Project{Name: "p", X: 1, Y: 1, Priority: 1, Image: img})

	store := NewStore(time.Second)
	client := canvasclient.NewClient(srv.URL, "tok", 100, 10)
	loop := NewRefreshLoop(store, repo, client, time.Second)

	loop.tick(context.Background())

	stats := store.Stats()
	if stats.Open != 1 {
		t.Fatalf("open = %d, want 1 after first reconcile", stats.Open)
	}

	snap, snapTime := store.Snapshot()
	if snap == nil || snap.Width != 4 {
		t.Fatalf("snapshot not committed correctly: %+v", snap)
	}
	if snapTime.IsZero() {
		t.Fatal("snapshot time should be set after a successful tick")
	}
}

func TestRefreshLoopKeepsLastSnapshotOnFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"width":2,"height":2,"pixels":["000000","000000","000000","000000"]}`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	repo := project.NewMemoryRepository()
	store := NewStore(time.Second)
	client := canvasclient.NewClient(srv.URL, "tok", 100, 10)
	loop := NewRefreshLoop(store, repo, client, time.Second)

	loop.tick(context.Background())
	firstSnap, firstTime := store.Snapshot()
	if firstSnap == nil {
		t.Fatal("expected a snapshot after the first successful tick")
	}

	loop.tick(context.Background())
	secondSnap, secondTime := store.Snapshot()
	if secondSnap != firstSnap {
		t.Fatal("a failed refresh must keep the last-known-good snapshot")
	}
	if !secondTime.Equal(firstTime) {
		t.Fatal("snapshot time must not advance on a failed refresh")
	}
}
