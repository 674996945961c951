package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/itsdrike/rickchurch-go/internal/auth"
	"github.com/itsdrike/rickchurch-go/internal/diff"
	"github.com/itsdrike/rickchurch-go/internal/pixel"
	"github.com/itsdrike/rickchurch-go/internal/project"
	"github.com/itsdrike/rickchurch-go/internal/scheduler"
)

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	stats := s.Store.Stats()
	ok(map[string]any{
		"status":   "ok",
		"open":     stats.Open,
		"assigned": stats.Assigned,
	}).write(w)
}

func (s *Server) handleOAuthLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.OAuth.AuthCodeURL(""), http.StatusFound)
}

func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		badRequest("missing_code", "oauth_callback requires a code query parameter").write(w)
		return
	}

	discordUser, err := s.OAuth.Exchange(r.Context(), code)
	if err != nil {
		log.Error().Err(err).Msg("discord oauth exchange failed")
		internalErr("oauth_exchange_failed", "could not exchange authorization code").write(w)
		return
	}

	userID, err := strconv.ParseInt(discordUser.ID, 10, 64)
	if err != nil {
		internalErr("bad_discord_id", "discord returned a non-numeric user id").write(w)
		return
	}

	isMod := s.Moderators.Contains(userID)
	salt, err := s.Users.ResetToken(r.Context(), userID, discordUser.Username, isMod)
	if err != nil {
		if errors.Is(err, auth.ErrBanned) {
			unauthorized("banned", "this account has been banned").write(w)
			return
		}
		internalErr("token_reset_failed", "could not mint a session token").write(w)
		return
	}

	token, err := s.Signer.Issue(userID, salt)
	if err != nil {
		internalErr("token_sign_failed", "could not sign session token").write(w)
		return
	}
	ok(map[string]string{"message": token}).write(w)
}

func (s *Server) handleDevToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID int64 `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest("bad_body", "expected {\"user_id\": int}").write(w)
		return
	}
	salt, err := s.Users.ResetToken(r.Context(), body.UserID, "dev", s.Moderators.Contains(body.UserID))
	if err != nil {
		internalErr("token_reset_failed", err.Error()).write(w)
		return
	}
	token, err := s.Signer.Issue(body.UserID, salt)
	if err != nil {
		internalErr("token_sign_failed", err.Error()).write(w)
		return
	}
	ok(map[string]string{"message": token}).write(w)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r.Context())
	if err != nil {
		unauthorized("unauthorized", "a valid bearer token is required").write(w)
		return
	}

	unit, err := s.Store.Assign(userID)
	if err != nil {
		writeSchedulerError(w, err)
		return
	}
	ok(taskView(unit)).write(w)
}

type submitBody struct {
	X   int    `json:"x"`
	Y   int    `json:"y"`
	RGB string `json:"rgb"`
}

func (s *Server) handleSubmitTask(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r.Context())
	if err != nil {
		unauthorized("unauthorized", "a valid bearer token is required").write(w)
		return
	}

	var body submitBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest("bad_body", "expected {\"x\":int,\"y\":int,\"rgb\":\"RRGGBB\"}").write(w)
		return
	}
	rgb, err := pixel.ParseHex(body.RGB)
	if err != nil {
		unprocessable("bad_rgb", "rgb must be a 6-digit hex string").write(w)
		return
	}

	assignment, ok2 := s.Store.AssignmentFor(userID)
	if !ok2 {
		conflict("unknown_task", "you have no active assignment").write(w)
		return
	}
	if assignment.Unit.Coord.X != body.X || assignment.Unit.Coord.Y != body.Y || assignment.Unit.RGB != rgb {
		conflict("not_your_task", "submission does not match your current assignment").write(w)
		return
	}

	if err := s.Validator.Submit(r.Context(), userID, assignment.Unit); err != nil {
		writeSchedulerError(w, err)
		return
	}
	ok(map[string]string{"message": "submitted"}).write(w)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.Projects.ListProjects(r.Context())
	if err != nil {
		internalErr("list_projects_failed", err.Error()).write(w)
		return
	}
	views := make([]map[string]any, 0, len(projects))
	for _, p := range projects {
		views = append(views, map[string]any{
			"name":     p.Name,
			"x":        p.X,
			"y":        p.Y,
			"priority": p.Priority,
		})
	}
	ok(views).write(w)
}

func (s *Server) handleUpsertProject(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireModerator(r.Context()); err != nil {
		forbidden("forbidden", "moderator access required").write(w)
		return
	}

	var d project.Details
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		badRequest("bad_body", "expected a ProjectDetails JSON body").write(w)
		return
	}
	if d.Name == "" || d.Image == "" {
		badRequest("bad_body", "name and image are required").write(w)
		return
	}
	if _, err := pixel.DecodeBase64PNG(d.Image); err != nil {
		unprocessable("bad_image", "image must be a base64-encoded PNG").write(w)
		return
	}
	if err := s.Projects.Upsert(r.Context(), d); err != nil {
		internalErr("upsert_failed", err.Error()).write(w)
		return
	}
	created(map[string]string{"message": "project saved"}).write(w)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireModerator(r.Context()); err != nil {
		forbidden("forbidden", "moderator access required").write(w)
		return
	}
	name := chi.URLParam(r, "name")
	exists, err := s.Projects.Exists(r.Context(), name)
	if err != nil {
		internalErr("exists_check_failed", err.Error()).write(w)
		return
	}
	if !exists {
		notFound("no_such_project", "no project with that name").write(w)
		return
	}
	if err := s.Projects.Delete(r.Context(), name); err != nil {
		internalErr("delete_failed", err.Error()).write(w)
		return
	}
	ok(map[string]string{"message": "project deleted"}).write(w)
}

func (s *Server) handleBanUser(w http.ResponseWriter, r *http.Request) {
	s.toggleUserFlag(w, r, func(ctx context.Context, id int64) error {
		return s.Users.SetBanned(ctx, id, true)
	})
}

func (s *Server) handleModUser(w http.ResponseWriter, r *http.Request) {
	s.toggleUserFlag(w, r, func(ctx context.Context, id int64) error {
		return s.Users.SetMod(ctx, id, true)
	})
}

func (s *Server) toggleUserFlag(w http.ResponseWriter, r *http.Request, apply func(context.Context, int64) error) {
	if _, err := auth.RequireModerator(r.Context()); err != nil {
		forbidden("forbidden", "moderator access required").write(w)
		return
	}
	targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		unprocessable("bad_id", "id must be an integer user id").write(w)
		return
	}
	if err := apply(r.Context(), targetID); err != nil {
		internalErr("update_failed", err.Error()).write(w)
		return
	}
	ok(map[string]string{"message": "updated"}).write(w)
}

func taskView(u diff.Unit) map[string]any {
	return map[string]any{
		"x":   u.Coord.X,
		"y":   u.Coord.Y,
		"rgb": u.RGB.Hex(),
	}
}

func writeSchedulerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scheduler.ErrAlreadyAssigned):
		conflict("already_assigned", err.Error()).write(w)
	case errors.Is(err, scheduler.ErrNoTasksAvailable):
		conflict("no_tasks_available", err.Error()).write(w)
	case errors.Is(err, scheduler.ErrUnknownTask):
		conflict("unknown_task", err.Error()).write(w)
	case errors.Is(err, scheduler.ErrNotYourTask):
		conflict("not_your_task", err.Error()).write(w)
	case errors.Is(err, scheduler.ErrUnverified):
		conflict("unverified", err.Error()).write(w)
	case errors.Is(err, scheduler.ErrTimeout):
		w.Header().Set("Retry-After", "1")
		conflict("timeout", err.Error()).write(w)
	default:
		internalErr("internal_error", err.Error()).write(w)
	}
}
