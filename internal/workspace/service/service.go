// Package service implements workspace operations with membership-based
// authorization.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/boardflow/internal/platform/errors"
	"github.com/louisbranch/boardflow/internal/platform/id"
	"github.com/louisbranch/boardflow/internal/platform/requestctx"
	"github.com/louisbranch/boardflow/internal/storage"
	"github.com/louisbranch/boardflow/internal/telemetry"
	"github.com/louisbranch/boardflow/internal/workspace"
)

// Storage is the persistence surface the workspace service needs.
type Storage interface {
	storage.WorkspaceStore
	storage.MemberStore
	storage.UserStore
}

// Service implements workspace and membership operations.
type Service struct {
	store       Storage
	telemetry   *telemetry.Emitter
	clock       func() time.Time
	idGenerator func() (string, error)
}

// NewService creates a workspace service.
func NewService(store Storage, emitter *telemetry.Emitter) *Service {
	return &Service{
		store:       store,
		telemetry:   emitter,
		clock:       time.Now,
		idGenerator: id.NewID,
	}
}

// CreateInput holds the fields for creating a workspace.
type CreateInput struct {
	Name     string
	ImageURL string
}

// Create makes a workspace with the caller as its first admin.
func (s *Service) Create(ctx context.Context, input CreateInput) (workspace.Workspace, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return workspace.Workspace{}, err
	}

	ws, err := workspace.CreateWorkspace(workspace.CreateWorkspaceInput{
		Name:      input.Name,
		ImageURL:  input.ImageURL,
		CreatorID: userID,
	}, s.clock, s.idGenerator)
	if err != nil {
		return workspace.Workspace{}, err
	}

	admin, err := workspace.CreateMember(workspace.CreateMemberInput{
		WorkspaceID: ws.ID,
		UserID:      userID,
		Role:        workspace.RoleAdmin,
	}, s.clock, s.idGenerator)
	if err != nil {
		return workspace.Workspace{}, err
	}

	if err := s.store.CreateWorkspace(ctx, ws, admin); err != nil {
		return workspace.Workspace{}, apperrors.Wrap(apperrors.CodeStoreFailure, "create workspace", err)
	}

	_ = s.telemetry.Emit(ctx, storage.TelemetryEvent{
		Name:        telemetry.EventWorkspaceCreated,
		WorkspaceID: ws.ID,
		ActorID:     userID,
	})
	return ws, nil
}

// Get returns a workspace the caller belongs to.
func (s *Service) Get(ctx context.Context, workspaceID string) (workspace.Workspace, error) {
	if _, err := s.requireMember(ctx, workspaceID); err != nil {
		return workspace.Workspace{}, err
	}
	ws, err := s.store.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return workspace.Workspace{}, mapStoreError(err, "get workspace")
	}
	return ws, nil
}

// List returns the workspaces the caller belongs to.
func (s *Service) List(ctx context.Context) ([]workspace.Workspace, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	workspaces, err := s.store.ListWorkspacesForUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreFailure, "list workspaces", err)
	}
	return workspaces, nil
}

// UpdateInput holds the mutable workspace fields.
type UpdateInput struct {
	WorkspaceID string
	Name        string
	ImageURL    string
}

// Update rewrites a workspace's name and image. Admin only.
func (s *Service) Update(ctx context.Context, input UpdateInput) (workspace.Workspace, error) {
	if _, err := s.requireAdmin(ctx, input.WorkspaceID); err != nil {
		return workspace.Workspace{}, err
	}

	ws, err := s.store.GetWorkspace(ctx, input.WorkspaceID)
	if err != nil {
		return workspace.Workspace{}, mapStoreError(err, "get workspace")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return workspace.Workspace{}, apperrors.New(apperrors.CodeWorkspaceNameEmpty, "workspace name is required")
	}
	ws.Name = name
	ws.ImageURL = strings.TrimSpace(input.ImageURL)
	ws.UpdatedAt = s.clock().UTC()

	if err := s.store.UpdateWorkspace(ctx, ws); err != nil {
		return workspace.Workspace{}, mapStoreError(err, "update workspace")
	}
	return ws, nil
}

// Delete removes a workspace and everything under it. Admin only.
func (s *Service) Delete(ctx context.Context, workspaceID string) error {
	if _, err := s.requireAdmin(ctx, workspaceID); err != nil {
		return err
	}
	if err := s.store.DeleteWorkspace(ctx, workspaceID); err != nil {
		return mapStoreError(err, "delete workspace")
	}
	return nil
}

// ResetInviteCode rotates the workspace's invite code. Admin only.
func (s *Service) ResetInviteCode(ctx context.Context, workspaceID string) (workspace.Workspace, error) {
	if _, err := s.requireAdmin(ctx, workspaceID); err != nil {
		return workspace.Workspace{}, err
	}

	ws, err := s.store.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return workspace.Workspace{}, mapStoreError(err, "get workspace")
	}

	code, err := workspace.NewInviteCode()
	if err != nil {
		return workspace.Workspace{}, fmt.Errorf("generate invite code: %w", err)
	}
	ws.InviteCode = code
	ws.UpdatedAt = s.clock().UTC()

	if err := s.store.UpdateWorkspace(ctx, ws); err != nil {
		return workspace.Workspace{}, mapStoreError(err, "update workspace")
	}
	return ws, nil
}

// PublicInfo is the subset of workspace fields visible to non-members.
type PublicInfo struct {
	ID       string
	Name     string
	ImageURL string
}

// Info returns the workspace fields shown on the join page. No membership
// is required.
func (s *Service) Info(ctx context.Context, workspaceID string) (PublicInfo, error) {
	if _, err := callerID(ctx); err != nil {
		return PublicInfo{}, err
	}
	ws, err := s.store.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return PublicInfo{}, mapStoreError(err, "get workspace")
	}
	return PublicInfo{ID: ws.ID, Name: ws.Name, ImageURL: ws.ImageURL}, nil
}

// Analytics aggregates a workspace's activity counts for its members.
func (s *Service) Analytics(ctx context.Context, workspaceID string) (storage.Analytics, error) {
	if _, err := s.requireMember(ctx, workspaceID); err != nil {
		return storage.Analytics{}, err
	}
	analytics, err := s.store.WorkspaceAnalytics(ctx, workspaceID, s.clock().UTC())
	if err != nil {
		return storage.Analytics{}, mapStoreError(err, "workspace analytics")
	}
	return analytics, nil
}

// callerID returns the authenticated user ID from the request context.
func callerID(ctx context.Context) (string, error) {
	userID := requestctx.UserIDFromContext(ctx)
	if strings.TrimSpace(userID) == "" {
		return "", apperrors.New(apperrors.CodeUnauthenticated, "authentication required")
	}
	return userID, nil
}

// requireMember resolves the caller's membership in the workspace.
func (s *Service) requireMember(ctx context.Context, workspaceID string) (workspace.Member, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return workspace.Member{}, err
	}
	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		return workspace.Member{}, apperrors.New(apperrors.CodeNotFound, "workspace id is required")
	}
	member, err := s.store.GetMemberByUser(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return workspace.Member{}, apperrors.New(apperrors.CodeWorkspaceNotMember, "caller is not a workspace member")
		}
		return workspace.Member{}, apperrors.Wrap(apperrors.CodeStoreFailure, "get membership", err)
	}
	return member, nil
}

// requireAdmin resolves the caller's membership and demands the admin role.
func (s *Service) requireAdmin(ctx context.Context, workspaceID string) (workspace.Member, error) {
	member, err := s.requireMember(ctx, workspaceID)
	if err != nil {
		return workspace.Member{}, err
	}
	if member.Role != workspace.RoleAdmin {
		return workspace.Member{}, apperrors.New(apperrors.CodeWorkspaceAdminRequired, "admin role required")
	}
	return member, nil
}

// mapStoreError converts storage sentinels to application errors.
func mapStoreError(err error, op string) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.New(apperrors.CodeNotFound, "resource not found")
	case errors.Is(err, storage.ErrAlreadyExists):
		return apperrors.New(apperrors.CodeAlreadyMember, "already a workspace member")
	case errors.Is(err, storage.ErrLastAdmin):
		return apperrors.New(apperrors.CodeLastAdmin, "cannot demote the only admin")
	case errors.Is(err, storage.ErrLastMember):
		return apperrors.New(apperrors.CodeLastMember, "cannot remove the only member")
	default:
		return apperrors.Wrap(apperrors.CodeStoreFailure, op, err)
	}
}
