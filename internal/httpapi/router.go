// Package httpapi glues the scheduler, project repository and auth
// package to an HTTP surface via chi, matching spec §4.H.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/itsdrike/rickchurch-go/internal/auth"
	"github.com/itsdrike/rickchurch-go/internal/project"
	"github.com/itsdrike/rickchurch-go/internal/scheduler"
	"github.com/itsdrike/rickchurch-go/internal/util"
)

// Server holds every dependency the HTTP adapter needs to serve requests.
type Server struct {
	Store      *scheduler.Store
	Validator  *scheduler.Validator
	Projects   project.Repository
	Users      auth.UserRepository
	Signer     *auth.Signer
	Authorizer *auth.Authorizer
	OAuth      DiscordExchanger
	Moderators ModeratorSeed
	DevAuth    bool
}

// DiscordExchanger is the subset of *auth.DiscordOAuth the router depends
// on, narrowed for testability against a fake.
type DiscordExchanger interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (auth.DiscordUser, error)
}

// ModeratorSeed reports whether a Discord user ID is in the seed list
// (moderators.Set satisfies this).
type ModeratorSeed interface {
	Contains(userID int64) bool
}

// NewRouter builds the chi.Router exposing every route from spec §4.H.
func NewRouter(s *Server) chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/oauth/login", s.handleOAuthLogin)
	r.Get("/oauth_callback", s.handleOAuthCallback)

	if s.DevAuth {
		r.Post("/auth/token", s.handleDevToken)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.Authorizer.Middleware)

		r.Get("/task", s.handleGetTask)
		r.Post("/task", s.handleSubmitTask)
		r.Get("/projects", s.handleListProjects)
		r.Post("/projects", s.handleUpsertProject)
		r.Delete("/projects/{name}", s.handleDeleteProject)
		r.Post("/users/{id}/ban", s.handleBanUser)
		r.Post("/users/{id}/mod", s.handleModUser)
	})

	return r
}

// requestID stamps every request with a UUID correlation ID under chi's
// own context key, so middleware.Logger and middleware.GetReqID pick it
// up without change, in place of chi's default incrementing counter.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := util.NewRequestID()
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
