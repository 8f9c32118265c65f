package board

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/boardflow/internal/platform/errors"
	"github.com/louisbranch/boardflow/internal/platform/id"
)

// Status represents a task's column on the board.
type Status int

const (
	// StatusUnspecified represents an invalid status.
	StatusUnspecified Status = iota
	// StatusBacklog holds unscheduled work.
	StatusBacklog
	// StatusTodo holds scheduled but unstarted work.
	StatusTodo
	// StatusInProgress holds active work.
	StatusInProgress
	// StatusInReview holds work awaiting review.
	StatusInReview
	// StatusDone holds finished work.
	StatusDone
)

// Statuses lists every valid status in board order.
var Statuses = []Status{StatusBacklog, StatusTodo, StatusInProgress, StatusInReview, StatusDone}

// Task is a unit of work positioned within a project column.
type Task struct {
	ID          string
	WorkspaceID string
	ProjectID   string
	Name        string
	Description string
	AssigneeID  string
	Status      Status
	// Position orders the task among siblings sharing its project and
	// status. Lower positions sort first.
	Position  int
	DueDate   time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateTaskInput describes the metadata needed to create a task.
type CreateTaskInput struct {
	WorkspaceID string
	ProjectID   string
	Name        string
	Description string
	AssigneeID  string
	Status      Status
	Position    int
	DueDate     time.Time
}

// CreateTask builds a task with a generated ID and timestamps.
func CreateTask(input CreateTaskInput, now func() time.Time, idGenerator func() (string, error)) (Task, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.WorkspaceID = strings.TrimSpace(input.WorkspaceID)
	input.ProjectID = strings.TrimSpace(input.ProjectID)
	input.Name = strings.TrimSpace(input.Name)
	if input.WorkspaceID == "" {
		return Task{}, apperrors.New(apperrors.CodeNotFound, "workspace id is required")
	}
	if input.ProjectID == "" {
		return Task{}, apperrors.New(apperrors.CodeNotFound, "project id is required")
	}
	if input.Name == "" {
		return Task{}, apperrors.New(apperrors.CodeTaskNameEmpty, "task name is required")
	}
	if !ValidStatus(input.Status) {
		return Task{}, apperrors.WithMetadata(apperrors.CodeTaskInvalidStatus,
			"invalid task status",
			map[string]string{"Status": StatusLabel(input.Status)})
	}
	if input.Position < 0 {
		return Task{}, apperrors.New(apperrors.CodeTaskInvalidPosition, "task position must not be negative")
	}

	taskID, err := idGenerator()
	if err != nil {
		return Task{}, fmt.Errorf("generate task id: %w", err)
	}

	createdAt := now().UTC()
	return Task{
		ID:          taskID,
		WorkspaceID: input.WorkspaceID,
		ProjectID:   input.ProjectID,
		Name:        input.Name,
		Description: strings.TrimSpace(input.Description),
		AssigneeID:  strings.TrimSpace(input.AssigneeID),
		Status:      input.Status,
		Position:    input.Position,
		DueDate:     input.DueDate,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}

// ValidStatus reports whether the status is one of the board columns.
func ValidStatus(status Status) bool {
	return status >= StatusBacklog && status <= StatusDone
}

// StatusLabel returns the string label for a status.
func StatusLabel(status Status) string {
	switch status {
	case StatusBacklog:
		return "BACKLOG"
	case StatusTodo:
		return "TODO"
	case StatusInProgress:
		return "IN_PROGRESS"
	case StatusInReview:
		return "IN_REVIEW"
	case StatusDone:
		return "DONE"
	default:
		return "UNSPECIFIED"
	}
}

// StatusFromLabel converts a status label to a Status value.
func StatusFromLabel(label string) Status {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "BACKLOG":
		return StatusBacklog
	case "TODO":
		return StatusTodo
	case "IN_PROGRESS":
		return StatusInProgress
	case "IN_REVIEW":
		return StatusInReview
	case "DONE":
		return StatusDone
	default:
		return StatusUnspecified
	}
}
