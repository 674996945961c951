package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/itsdrike/rickchurch-go/internal/auth"
	"github.com/itsdrike/rickchurch-go/internal/canvasclient"
	"github.com/itsdrike/rickchurch-go/internal/diff"
	"github.com/itsdrike/rickchurch-go/internal/pixel"
	"github.com/itsdrike/rickchurch-go/internal/project"
	"github.com/itsdrike/rickchurch-go/internal/scheduler"
)

type fakeOAuth struct {
	user auth.DiscordUser
	err  error
}

func (f *fakeOAuth) AuthCodeURL(state string) string { return "https://discord.com/authorize?state=" + state }
func (f *fakeOAuth) Exchange(ctx context.Context, code string) (auth.DiscordUser, error) {
	return f.user, f.err
}

type fakeMods struct{ ids map[int64]struct{} }

func (f fakeMods) Contains(id int64) bool { _, ok := f.ids[id]; return ok }

func newTestServer(t *testing.T) (*Server, *auth.MemoryUserRepository, *auth.Signer) {
	t.Helper()
	store := scheduler.NewStore(time.Minute)
	canvas := canvasclient.NewClient("http://unused.invalid", "tok", 1000, 10)
	validator := scheduler.NewValidator(store, canvas, time.Second)
	users := auth.NewMemoryUserRepository()
	signer := auth.NewSigner("test-secret")

	s := &Server{
		Store:      store,
		Validator:  validator,
		Projects:   project.NewMemoryRepository(),
		Users:      users,
		Signer:     signer,
		Authorizer: auth.NewAuthorizer(signer, users),
		OAuth:      &fakeOAuth{user: auth.DiscordUser{ID: "5", Username: "tester"}},
		Moderators: fakeMods{ids: map[int64]struct{}{99: {}}},
		DevAuth:    true,
	}
	return s, users, signer
}

func TestHealthzNoAuth(t *testing.T) {
	s, _, _ := newTestServer(t)
	r := NewRouter(s)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestGetTaskRequiresAuth(t *testing.T) {
	s, _, _ := newTestServer(t)
	r := NewRouter(s)

	req := httptest.NewRequest(http.MethodGet, "/task", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestGetTaskNoTasksAvailable(t *testing.T) {
	s, users, signer := newTestServer(t)
	users.Put(auth.User{UserID: 1, KeySalt: "salt"})
	token, _ := signer.Issue(1, "salt")

	r := NewRouter(s)
	req := httptest.NewRequest(http.MethodGet, "/task", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 (no tasks available)", rec.Code)
	}
}

func TestGetTaskAssignsFromOpenUnit(t *testing.T) {
	s, users, signer := newTestServer(t)
	users.Put(auth.User{UserID: 1, KeySalt: "salt"})
	token, _ := signer.Issue(1, "salt")

	snap := &canvasclient.Snapshot{Width: 5, Height: 5, Pixels: make([]pixel.RGB, 25), FetchedAt: time.Now()}
	u := diff.Unit{Coord: pixel.Coord{X: 3, Y: 3}, RGB: pixel.RGB{R: 0xff}, Project: "p"}
	s.Store.Reconcile(snap, map[diff.Unit]struct{}{u: {}})

	r := NewRouter(s)
	req := httptest.NewRequest(http.MethodGet, "/task", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["rgb"] != "ff0000" {
		t.Fatalf("body = %+v, want rgb=ff0000", body)
	}
}

func TestUpsertProjectRequiresModerator(t *testing.T) {
	s, users, signer := newTestServer(t)
	users.Put(auth.User{UserID: 1, KeySalt: "salt"})
	token, _ := signer.Issue(1, "salt")

	r := NewRouter(s)
	body := strings.NewReader(`{"name":"p","x":0,"y":0,"priority":1,"image":"not-checked"}`)
	req := httptest.NewRequest(http.MethodPost, "/projects", body)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for a non-moderator", rec.Code)
	}
}

func TestOAuthCallbackIssuesToken(t *testing.T) {
	s, _, _ := newTestServer(t)
	r := NewRouter(s)

	req := httptest.NewRequest(http.MethodGet, "/oauth_callback?code=abc", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["message"] == "" {
		t.Fatal("expected a non-empty token in the response")
	}
}
