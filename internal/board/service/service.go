// Package service implements project and task operations, including the
// board's position-based ordering.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/louisbranch/boardflow/internal/board"
	apperrors "github.com/louisbranch/boardflow/internal/platform/errors"
	"github.com/louisbranch/boardflow/internal/platform/id"
	"github.com/louisbranch/boardflow/internal/platform/requestctx"
	"github.com/louisbranch/boardflow/internal/storage"
	"github.com/louisbranch/boardflow/internal/telemetry"
	"github.com/louisbranch/boardflow/internal/workspace"
)

// Storage is the persistence surface the board service needs.
type Storage interface {
	storage.MemberStore
	storage.ProjectStore
	storage.TaskStore
}

// Service implements project and task operations.
type Service struct {
	store       Storage
	telemetry   *telemetry.Emitter
	clock       func() time.Time
	idGenerator func() (string, error)
}

// NewService creates a board service.
func NewService(store Storage, emitter *telemetry.Emitter) *Service {
	return &Service{
		store:       store,
		telemetry:   emitter,
		clock:       time.Now,
		idGenerator: id.NewID,
	}
}

// CreateProjectInput holds the fields for creating a project.
type CreateProjectInput struct {
	WorkspaceID string
	Name        string
	ImageURL    string
}

// CreateProject makes a project in a workspace the caller belongs to.
func (s *Service) CreateProject(ctx context.Context, input CreateProjectInput) (board.Project, error) {
	if _, err := s.requireMember(ctx, input.WorkspaceID); err != nil {
		return board.Project{}, err
	}

	project, err := board.CreateProject(board.CreateProjectInput{
		WorkspaceID: input.WorkspaceID,
		Name:        input.Name,
		ImageURL:    input.ImageURL,
	}, s.clock, s.idGenerator)
	if err != nil {
		return board.Project{}, err
	}

	if err := s.store.CreateProject(ctx, project); err != nil {
		return board.Project{}, mapStoreError(err, "create project")
	}
	return project, nil
}

// GetProject returns a project in a workspace the caller belongs to.
func (s *Service) GetProject(ctx context.Context, projectID string) (board.Project, error) {
	project, err := s.memberProject(ctx, projectID)
	if err != nil {
		return board.Project{}, err
	}
	return project, nil
}

// ListProjects returns a workspace's projects.
func (s *Service) ListProjects(ctx context.Context, workspaceID string) ([]board.Project, error) {
	if _, err := s.requireMember(ctx, workspaceID); err != nil {
		return nil, err
	}
	projects, err := s.store.ListProjects(ctx, workspaceID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreFailure, "list projects", err)
	}
	return projects, nil
}

// UpdateProjectInput holds the mutable project fields.
type UpdateProjectInput struct {
	ProjectID string
	Name      string
	ImageURL  string
}

// UpdateProject rewrites a project's name and image.
func (s *Service) UpdateProject(ctx context.Context, input UpdateProjectInput) (board.Project, error) {
	project, err := s.memberProject(ctx, input.ProjectID)
	if err != nil {
		return board.Project{}, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return board.Project{}, apperrors.New(apperrors.CodeProjectNameEmpty, "project name is required")
	}
	project.Name = name
	project.ImageURL = strings.TrimSpace(input.ImageURL)
	project.UpdatedAt = s.clock().UTC()

	if err := s.store.UpdateProject(ctx, project); err != nil {
		return board.Project{}, mapStoreError(err, "update project")
	}
	return project, nil
}

// DeleteProject removes a project and its tasks. Requires admin rights.
func (s *Service) DeleteProject(ctx context.Context, projectID string) error {
	project, err := s.memberProject(ctx, projectID)
	if err != nil {
		return err
	}
	if _, err := s.requireAdmin(ctx, project.WorkspaceID); err != nil {
		return err
	}
	if err := s.store.DeleteProject(ctx, projectID); err != nil {
		return mapStoreError(err, "delete project")
	}
	return nil
}

// memberProject loads a project and checks the caller belongs to its
// workspace.
func (s *Service) memberProject(ctx context.Context, projectID string) (board.Project, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return board.Project{}, apperrors.New(apperrors.CodeNotFound, "project id is required")
	}
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return board.Project{}, mapStoreError(err, "get project")
	}
	if _, err := s.requireMember(ctx, project.WorkspaceID); err != nil {
		return board.Project{}, err
	}
	return project, nil
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

// requireAdmin resolves the caller's membership and checks the admin role.
func (s *Service) requireAdmin(ctx context.Context, workspaceID string) (workspace.Member, error) {
	member, err := s.requireMember(ctx, workspaceID)
	if err != nil {
		return workspace.Member{}, err
	}
	if member.Role != workspace.RoleAdmin {
		return workspace.Member{}, apperrors.New(apperrors.CodeWorkspaceAdminRequired, "caller is not a workspace admin")
	}
	return member, nil
}

// mapStoreError converts storage sentinels to application errors.
func mapStoreError(err error, op string) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.New(apperrors.CodeNotFound, "resource not found")
	case errors.Is(err, storage.ErrAlreadyExists):
		return apperrors.Wrap(apperrors.CodeStoreFailure, op, err)
	default:
		return apperrors.Wrap(apperrors.CodeStoreFailure, op, err)
	}
}
