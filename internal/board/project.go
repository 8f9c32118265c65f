// Package board holds the work-tracking entities inside a workspace:
// projects and the tasks that flow across their statuses.
package board

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/boardflow/internal/platform/errors"
	"github.com/louisbranch/boardflow/internal/platform/id"
)

// Project groups tasks within a workspace.
type Project struct {
	ID          string
	WorkspaceID string
	Name        string
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateProjectInput describes the metadata needed to create a project.
type CreateProjectInput struct {
	WorkspaceID string
	Name        string
	ImageURL    string
}

// CreateProject builds a project with a generated ID and timestamps.
func CreateProject(input CreateProjectInput, now func() time.Time, idGenerator func() (string, error)) (Project, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.WorkspaceID = strings.TrimSpace(input.WorkspaceID)
	input.Name = strings.TrimSpace(input.Name)
	if input.WorkspaceID == "" {
		return Project{}, apperrors.New(apperrors.CodeNotFound, "workspace id is required")
	}
	if input.Name == "" {
		return Project{}, apperrors.New(apperrors.CodeProjectNameEmpty, "project name is required")
	}

	projectID, err := idGenerator()
	if err != nil {
		return Project{}, fmt.Errorf("generate project id: %w", err)
	}

	createdAt := now().UTC()
	return Project{
		ID:          projectID,
		WorkspaceID: input.WorkspaceID,
		Name:        input.Name,
		ImageURL:    strings.TrimSpace(input.ImageURL),
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}
