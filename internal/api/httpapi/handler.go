// Package httpapi exposes the boardflow services over an HTTP/JSON API.
package httpapi

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/boardflow/internal/auth/session"
	boardservice "github.com/louisbranch/boardflow/internal/board/service"
	"github.com/louisbranch/boardflow/internal/platform/errors/i18n"
	"github.com/louisbranch/boardflow/internal/platform/requestctx"
	"github.com/louisbranch/boardflow/internal/storage"
	workspaceservice "github.com/louisbranch/boardflow/internal/workspace/service"
)

// Handler serves the HTTP/JSON API.
type Handler struct {
	workspaces *workspaceservice.Service
	board      *boardservice.Service
	users      storage.UserStore
	sessions   session.Config
	clock      func() time.Time
}

// Config defines the dependencies for the HTTP handler.
type Config struct {
	Workspaces *workspaceservice.Service
	Board      *boardservice.Service
	Users      storage.UserStore
	Sessions   session.Config
}

// NewHandler assembles the API routes.
func NewHandler(cfg Config) http.Handler {
	h := &Handler{
		workspaces: cfg.Workspaces,
		board:      cfg.Board,
		users:      cfg.Users,
		sessions:   cfg.Sessions,
		clock:      time.Now,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/workspaces", h.createWorkspace)
	mux.HandleFunc("GET /v1/workspaces", h.listWorkspaces)
	mux.HandleFunc("GET /v1/workspaces/{id}", h.getWorkspace)
	mux.HandleFunc("PATCH /v1/workspaces/{id}", h.updateWorkspace)
	mux.HandleFunc("DELETE /v1/workspaces/{id}", h.deleteWorkspace)
	mux.HandleFunc("GET /v1/workspaces/{id}/info", h.workspaceInfo)
	mux.HandleFunc("GET /v1/workspaces/{id}/analytics", h.workspaceAnalytics)
	mux.HandleFunc("POST /v1/workspaces/{id}/join", h.joinWorkspace)
	mux.HandleFunc("POST /v1/workspaces/{id}/invite-code/reset", h.resetInviteCode)
	mux.HandleFunc("GET /v1/workspaces/{id}/members", h.listMembers)
	mux.HandleFunc("PATCH /v1/members/{id}", h.updateMember)
	mux.HandleFunc("DELETE /v1/members/{id}", h.deleteMember)

	mux.HandleFunc("POST /v1/projects", h.createProject)
	mux.HandleFunc("GET /v1/workspaces/{id}/projects", h.listProjects)
	mux.HandleFunc("GET /v1/projects/{id}", h.getProject)
	mux.HandleFunc("PATCH /v1/projects/{id}", h.updateProject)
	mux.HandleFunc("DELETE /v1/projects/{id}", h.deleteProject)

	mux.HandleFunc("POST /v1/tasks", h.createTask)
	mux.HandleFunc("GET /v1/workspaces/{id}/tasks", h.listTasks)
	mux.HandleFunc("GET /v1/tasks/{id}", h.getTask)
	mux.HandleFunc("PATCH /v1/tasks/{id}", h.updateTask)
	mux.HandleFunc("DELETE /v1/tasks/{id}", h.deleteTask)
	mux.HandleFunc("POST /v1/tasks/{id}/move", h.moveTask)
	mux.HandleFunc("POST /v1/tasks/reorder", h.reorderTasks)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return h.withLocale(h.withSession(mux))
}

// withSession verifies the bearer token and stores the caller identity in
// the request context. The health endpoint stays open.
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}

		token := bearerToken(r)
		claims, err := session.Verify(token, h.sessions)
		if err != nil {
			writeError(w, r, err)
			return
		}

		// Mirror the identity provider's profile so member listings can
		// show names. Failures only degrade listings.
		if h.users != nil {
			now := h.clock().UTC()
			if err := h.users.UpsertUser(r.Context(), storage.User{
				ID:        claims.UserID,
				Name:      claims.UserName,
				Email:     claims.UserEmail,
				CreatedAt: now,
				UpdatedAt: now,
			}); err != nil {
				log.Printf("upsert session user: %v", err)
			}
		}

		ctx := requestctx.WithUserID(r.Context(), claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withLocale resolves the response locale from Accept-Language.
func (h *Handler) withLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := i18n.MatchLocale(r.Header.Get("Accept-Language"))
		ctx := requestctx.WithLocale(r.Context(), locale)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return ""
	}
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
