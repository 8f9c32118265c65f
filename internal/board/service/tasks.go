package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/louisbranch/boardflow/internal/board"
	"github.com/louisbranch/boardflow/internal/board/filter"
	"github.com/louisbranch/boardflow/internal/board/ordering"
	apperrors "github.com/louisbranch/boardflow/internal/platform/errors"
	"github.com/louisbranch/boardflow/internal/platform/pagination"
	"github.com/louisbranch/boardflow/internal/storage"
	"github.com/louisbranch/boardflow/internal/telemetry"
)

var taskPageSizes = pagination.PageSizeConfig{Default: 50, Max: 200}

// CreateTaskInput holds the fields for creating a task.
type CreateTaskInput struct {
	ProjectID   string
	Name        string
	Description string
	AssigneeID  string
	Status      board.Status
	DueDate     time.Time
}

// CreateTask makes a task at the end of its column.
func (s *Service) CreateTask(ctx context.Context, input CreateTaskInput) (board.Task, error) {
	project, err := s.memberProject(ctx, input.ProjectID)
	if err != nil {
		return board.Task{}, err
	}
	if !board.ValidStatus(input.Status) {
		return board.Task{}, apperrors.New(apperrors.CodeTaskInvalidStatus, "invalid task status")
	}
	if err := s.checkAssignee(ctx, project.WorkspaceID, input.AssigneeID); err != nil {
		return board.Task{}, err
	}

	column, err := s.store.ListColumn(ctx, project.ID, input.Status)
	if err != nil {
		return board.Task{}, apperrors.Wrap(apperrors.CodeStoreFailure, "list column", err)
	}

	task, err := board.CreateTask(board.CreateTaskInput{
		WorkspaceID: project.WorkspaceID,
		ProjectID:   project.ID,
		Name:        input.Name,
		Description: input.Description,
		AssigneeID:  input.AssigneeID,
		Status:      input.Status,
		Position:    ordering.PositionForIndex(len(column)),
		DueDate:     input.DueDate,
	}, s.clock, s.idGenerator)
	if err != nil {
		return board.Task{}, err
	}

	if err := s.store.CreateTask(ctx, task); err != nil {
		return board.Task{}, mapStoreError(err, "create task")
	}
	return task, nil
}

// GetTask returns a task in a workspace the caller belongs to.
func (s *Service) GetTask(ctx context.Context, taskID string) (board.Task, error) {
	return s.memberTask(ctx, taskID)
}

// ListTasksInput describes a filtered task listing.
type ListTasksInput struct {
	WorkspaceID string
	Filter      string
	PageSize    int
	PageToken   string
}

// ListTasks returns a filtered page of workspace tasks ordered by position.
func (s *Service) ListTasks(ctx context.Context, input ListTasksInput) ([]board.Task, string, error) {
	if _, err := s.requireMember(ctx, input.WorkspaceID); err != nil {
		return nil, "", err
	}

	condition, err := filter.ParseTaskFilter(input.Filter)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeFilterInvalid, "invalid task filter", err)
	}

	cursor, err := pagination.DecodeToken(input.PageToken)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodePageTokenInvalid, "invalid page token", err)
	}

	tasks, nextCursor, err := s.store.ListTasks(ctx, storage.TaskQuery{
		WorkspaceID: input.WorkspaceID,
		Condition:   condition,
		PageSize:    pagination.ClampPageSize(input.PageSize, taskPageSizes),
		Cursor:      cursor,
	})
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeStoreFailure, "list tasks", err)
	}
	return tasks, pagination.EncodeToken(nextCursor), nil
}

// UpdateTaskInput holds the mutable task fields. A ProjectID different from
// the task's current project moves the task between projects.
type UpdateTaskInput struct {
	TaskID      string
	ProjectID   string
	Name        string
	Description string
	AssigneeID  string
	Status      board.Status
	DueDate     time.Time
}

// UpdateTask rewrites a task's fields. Changing the status or the project
// appends the task to the end of the destination column.
func (s *Service) UpdateTask(ctx context.Context, input UpdateTaskInput) (board.Task, error) {
	task, err := s.memberTask(ctx, input.TaskID)
	if err != nil {
		return board.Task{}, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return board.Task{}, apperrors.New(apperrors.CodeTaskNameEmpty, "task name is required")
	}
	if !board.ValidStatus(input.Status) {
		return board.Task{}, apperrors.New(apperrors.CodeTaskInvalidStatus, "invalid task status")
	}
	if err := s.checkAssignee(ctx, task.WorkspaceID, input.AssigneeID); err != nil {
		return board.Task{}, err
	}

	projectID := strings.TrimSpace(input.ProjectID)
	projectChanged := projectID != "" && projectID != task.ProjectID
	if projectChanged {
		project, err := s.store.GetProject(ctx, projectID)
		if err != nil {
			return board.Task{}, mapStoreError(err, "get project")
		}
		if project.WorkspaceID != task.WorkspaceID {
			return board.Task{}, apperrors.New(apperrors.CodeCrossWorkspaceMove, "destination project belongs to another workspace")
		}
	}

	if projectChanged || input.Status != task.Status {
		destination := task.ProjectID
		if projectChanged {
			destination = projectID
		}
		column, err := s.store.ListColumn(ctx, destination, input.Status)
		if err != nil {
			return board.Task{}, apperrors.Wrap(apperrors.CodeStoreFailure, "list column", err)
		}
		task.Position = ordering.PositionForIndex(len(column))
	}

	if projectChanged {
		task.ProjectID = projectID
	}
	task.Name = name
	task.Description = strings.TrimSpace(input.Description)
	task.AssigneeID = strings.TrimSpace(input.AssigneeID)
	task.Status = input.Status
	task.DueDate = input.DueDate
	task.UpdatedAt = s.clock().UTC()

	if err := s.store.UpdateTask(ctx, task); err != nil {
		return board.Task{}, mapStoreError(err, "update task")
	}
	return task, nil
}

// DeleteTask removes one task. Requires admin rights.
func (s *Service) DeleteTask(ctx context.Context, taskID string) error {
	task, err := s.memberTask(ctx, taskID)
	if err != nil {
		return err
	}
	if _, err := s.requireAdmin(ctx, task.WorkspaceID); err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, taskID); err != nil {
		return mapStoreError(err, "delete task")
	}
	return nil
}

// MoveInput describes a drag of one task to a column index.
type MoveInput struct {
	TaskID   string
	ToStatus board.Status
	ToIndex  int
}

// Move places a task at a new column index and persists the minimal set of
// sibling rewrites in one transaction.
func (s *Service) Move(ctx context.Context, input MoveInput) ([]ordering.Placement, error) {
	task, err := s.memberTask(ctx, input.TaskID)
	if err != nil {
		return nil, err
	}
	if !board.ValidStatus(input.ToStatus) {
		return nil, apperrors.New(apperrors.CodeTaskInvalidStatus, "invalid task status")
	}

	source, err := s.store.ListColumn(ctx, task.ProjectID, task.Status)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreFailure, "list column", err)
	}
	destination := source
	if input.ToStatus != task.Status {
		destination, err = s.store.ListColumn(ctx, task.ProjectID, input.ToStatus)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeStoreFailure, "list column", err)
		}
	}

	placements, err := ordering.Move(ordering.MoveInput{
		TaskID:     task.ID,
		FromStatus: task.Status,
		ToStatus:   input.ToStatus,
		ToIndex:    input.ToIndex,
		From:       taskRefs(source),
		To:         taskRefs(withoutTask(destination, task.ID)),
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.ReorderTasks(ctx, placements, s.clock().UTC()); err != nil {
		return nil, mapStoreError(err, "reorder tasks")
	}

	actor, _ := callerID(ctx)
	_ = s.telemetry.Emit(ctx, storage.TelemetryEvent{
		Name:        telemetry.EventTaskMoved,
		WorkspaceID: task.WorkspaceID,
		ActorID:     actor,
		Metadata: map[string]string{
			"task_id": task.ID,
			"status":  board.StatusLabel(input.ToStatus),
		},
	})
	return placements, nil
}

// ReorderEntry is one client-computed placement in a bulk reorder.
type ReorderEntry struct {
	TaskID   string
	Status   board.Status
	Position int
}

// Reorder applies a batch of client-computed placements atomically. Every
// task must belong to the same workspace as the first entry.
func (s *Service) Reorder(ctx context.Context, entries []ReorderEntry) error {
	if len(entries) == 0 {
		return apperrors.New(apperrors.CodeReorderEmpty, "reorder batch is empty")
	}

	for _, entry := range entries {
		if !board.ValidStatus(entry.Status) {
			return apperrors.New(apperrors.CodeTaskInvalidStatus, "invalid task status")
		}
		if entry.Position < 0 {
			return apperrors.New(apperrors.CodeTaskInvalidPosition, "task position must not be negative")
		}
	}

	// Per-task failures are held back until the membership check has passed
	// so callers outside the workspace cannot probe task IDs.
	placements := make([]ordering.Placement, 0, len(entries))
	workspaceID := ""
	var deferred error
	for _, entry := range entries {
		task, err := s.store.GetTask(ctx, strings.TrimSpace(entry.TaskID))
		if err != nil {
			if deferred == nil {
				deferred = mapStoreError(err, "get task")
			}
			continue
		}
		if workspaceID == "" {
			workspaceID = task.WorkspaceID
		} else if task.WorkspaceID != workspaceID && deferred == nil {
			deferred = apperrors.New(apperrors.CodeCrossWorkspaceMove, "tasks span multiple workspaces")
		}

		position := entry.Position
		if position > ordering.MaxPosition {
			position = ordering.MaxPosition
		}
		placements = append(placements, ordering.Placement{
			ID:       task.ID,
			Status:   entry.Status,
			Position: position,
		})
	}
	if workspaceID == "" {
		return deferred
	}

	if _, err := s.requireMember(ctx, workspaceID); err != nil {
		return err
	}
	if deferred != nil {
		return deferred
	}

	if err := s.store.ReorderTasks(ctx, placements, s.clock().UTC()); err != nil {
		return mapStoreError(err, "reorder tasks")
	}

	actor, _ := callerID(ctx)
	_ = s.telemetry.Emit(ctx, storage.TelemetryEvent{
		Name:        telemetry.EventTasksReordered,
		WorkspaceID: workspaceID,
		ActorID:     actor,
	})
	return nil
}

// memberTask loads a task and checks the caller belongs to its workspace.
func (s *Service) memberTask(ctx context.Context, taskID string) (board.Task, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return board.Task{}, apperrors.New(apperrors.CodeNotFound, "task id is required")
	}
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return board.Task{}, mapStoreError(err, "get task")
	}
	if _, err := s.requireMember(ctx, task.WorkspaceID); err != nil {
		return board.Task{}, err
	}
	return task, nil
}

// checkAssignee verifies the assignee, when set, belongs to the workspace.
func (s *Service) checkAssignee(ctx context.Context, workspaceID, assigneeID string) error {
	assigneeID = strings.TrimSpace(assigneeID)
	if assigneeID == "" {
		return nil
	}
	if _, err := s.store.GetMemberByUser(ctx, workspaceID, assigneeID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.New(apperrors.CodeInvalidAssignee, "assignee is not a workspace member")
		}
		return apperrors.Wrap(apperrors.CodeStoreFailure, "get assignee membership", err)
	}
	return nil
}

func taskRefs(tasks []board.Task) []ordering.TaskRef {
	refs := make([]ordering.TaskRef, 0, len(tasks))
	for _, task := range tasks {
		refs = append(refs, ordering.TaskRef{ID: task.ID, Position: task.Position})
	}
	return refs
}

func withoutTask(tasks []board.Task, id string) []board.Task {
	out := make([]board.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.ID != id {
			out = append(out, task)
		}
	}
	return out
}
