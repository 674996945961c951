package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// State mirrors original_source/rickchurch/models.py:AuthState — the outcome
// of attempting to authorize a request, ordered from "no credentials
// presented" to "fully authorized moderator".
type State int

const (
	StateNoToken State = iota
	StateBadHeader
	StateInvalidToken
	StateBanned
	StateUser
	StateModerator
)

// Result is the outcome of Authorizer.Authorize.
type Result struct {
	State  State
	UserID int64
}

// Authorizer resolves a raw Authorization header into a Result, matching
// original_source/rickchurch/auth.py:authorized.
type Authorizer struct {
	signer *Signer
	users  UserRepository
}

// NewAuthorizer wires the JWT signer and user repository needed to fully
// resolve a bearer token.
func NewAuthorizer(signer *Signer, users UserRepository) *Authorizer {
	return &Authorizer{signer: signer, users: users}
}

// Authorize inspects the raw "Authorization" header value (may be empty).
func (a *Authorizer) Authorize(ctx context.Context, authorization string) (Result, error) {
	if authorization == "" {
		return Result{State: StateNoToken}, nil
	}

	scheme, token, ok := strings.Cut(authorization, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return Result{State: StateBadHeader}, nil
	}

	claims, err := a.signer.Verify(token)
	if err != nil {
		return Result{State: StateInvalidToken}, nil
	}

	user, found, err := a.users.Get(ctx, claims.UserID)
	if err != nil {
		return Result{}, err
	}
	if !found || user.KeySalt != claims.Salt {
		return Result{State: StateInvalidToken}, nil
	}
	if user.IsBanned {
		return Result{State: StateBanned, UserID: user.UserID}, nil
	}
	if user.IsMod {
		return Result{State: StateModerator, UserID: user.UserID}, nil
	}
	return Result{State: StateUser, UserID: user.UserID}, nil
}

// ErrUnauthorized is raised by RequireUser/RequireModerator when a request
// does not meet the minimum authorization level.
var ErrUnauthorized = errors.New("auth: unauthorized")

type contextKey int

const resultContextKey contextKey = 0

// Middleware authorizes every request and stashes the Result in context,
// regardless of outcome; handlers decide what access level they require.
func (a *Authorizer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result, err := a.Authorize(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			http.Error(w, "internal authorization error", http.StatusInternalServerError)
			return
		}
		ctx := context.WithValue(r.Context(), resultContextKey, result)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext retrieves the Result stashed by Middleware.
func FromContext(ctx context.Context) (Result, bool) {
	result, ok := ctx.Value(resultContextKey).(Result)
	return result, ok
}

// RequireUser returns the request's UserID, failing any state below
// StateUser (no/bad/invalid token, or banned).
func RequireUser(ctx context.Context) (int64, error) {
	result, ok := FromContext(ctx)
	if !ok || result.State < StateUser {
		return 0, ErrUnauthorized
	}
	return result.UserID, nil
}

// RequireModerator returns the request's UserID, failing unless the caller
// is a moderator.
func RequireModerator(ctx context.Context) (int64, error) {
	result, ok := FromContext(ctx)
	if !ok || result.State < StateModerator {
		return 0, ErrUnauthorized
	}
	return result.UserID, nil
}
