package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/boardflow/internal/board"
	"github.com/louisbranch/boardflow/internal/board/ordering"
	"github.com/louisbranch/boardflow/internal/storage"
)

const taskColumns = `id, workspace_id, project_id, name, description, assignee_id,
       status, position, due_date, created_at, updated_at`

// CreateTask inserts one task row.
func (s *Store) CreateTask(ctx context.Context, task board.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	taskID := strings.TrimSpace(task.ID)
	if taskID == "" {
		return fmt.Errorf("task id is required")
	}
	if strings.TrimSpace(task.WorkspaceID) == "" {
		return fmt.Errorf("workspace id is required")
	}
	if strings.TrimSpace(task.ProjectID) == "" {
		return fmt.Errorf("project id is required")
	}
	if strings.TrimSpace(task.Name) == "" {
		return fmt.Errorf("task name is required")
	}
	if !board.ValidStatus(task.Status) {
		return fmt.Errorf("invalid task status")
	}

	var dueDate int64
	if !task.DueDate.IsZero() {
		dueDate = toMillis(task.DueDate)
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO tasks (`+taskColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		taskID,
		strings.TrimSpace(task.WorkspaceID),
		strings.TrimSpace(task.ProjectID),
		strings.TrimSpace(task.Name),
		strings.TrimSpace(task.Description),
		strings.TrimSpace(task.AssigneeID),
		int(task.Status),
		task.Position,
		dueDate,
		toMillis(task.CreatedAt),
		toMillis(task.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// GetTask returns one task by ID.
func (s *Store) GetTask(ctx context.Context, id string) (board.Task, error) {
	if err := ctx.Err(); err != nil {
		return board.Task{}, err
	}
	if err := s.ready(); err != nil {
		return board.Task{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return board.Task{}, fmt.Errorf("task id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`,
		id,
	)
	return scanTask(row)
}

// ListTasks returns a filtered page of workspace tasks ordered by position
// with an id tie-break.
func (s *Store) ListTasks(ctx context.Context, query storage.TaskQuery) ([]board.Task, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if err := s.ready(); err != nil {
		return nil, "", err
	}
	workspaceID := strings.TrimSpace(query.WorkspaceID)
	if workspaceID == "" {
		return nil, "", fmt.Errorf("workspace id is required")
	}
	if query.PageSize <= 0 {
		return nil, "", fmt.Errorf("page size must be greater than zero")
	}

	sqlQuery := `SELECT ` + taskColumns + ` FROM tasks WHERE workspace_id = ?`
	params := []any{workspaceID}

	if query.Condition.Clause != "" {
		sqlQuery += " AND (" + query.Condition.Clause + ")"
		params = append(params, query.Condition.Params...)
	}

	if query.Cursor != "" {
		position, id, err := parseTaskCursor(query.Cursor)
		if err != nil {
			return nil, "", err
		}
		sqlQuery += " AND (position > ? OR (position = ? AND id > ?))"
		params = append(params, position, position, id)
	}

	sqlQuery += " ORDER BY position ASC, id ASC LIMIT ?"
	params = append(params, query.PageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, sqlQuery, params...)
	if err != nil {
		return nil, "", fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]board.Task, 0, query.PageSize)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, "", fmt.Errorf("list tasks: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("list tasks: %w", err)
	}

	var nextCursor string
	if len(tasks) > query.PageSize {
		last := tasks[query.PageSize-1]
		nextCursor = formatTaskCursor(last.Position, last.ID)
		tasks = tasks[:query.PageSize]
	}
	return tasks, nextCursor, nil
}

// ListColumn returns a project column's tasks ordered by position.
func (s *Store) ListColumn(ctx context.Context, projectID string, status board.Status) ([]board.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("project id is required")
	}
	if !board.ValidStatus(status) {
		return nil, fmt.Errorf("invalid task status")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+taskColumns+`
		   FROM tasks
		  WHERE project_id = ? AND status = ?
		  ORDER BY position ASC, id ASC`,
		projectID,
		int(status),
	)
	if err != nil {
		return nil, fmt.Errorf("list column: %w", err)
	}
	defer rows.Close()

	var tasks []board.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("list column: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list column: %w", err)
	}
	return tasks, nil
}

// UpdateTask rewrites the task's mutable fields.
func (s *Store) UpdateTask(ctx context.Context, task board.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	taskID := strings.TrimSpace(task.ID)
	if taskID == "" {
		return fmt.Errorf("task id is required")
	}
	if strings.TrimSpace(task.Name) == "" {
		return fmt.Errorf("task name is required")
	}
	if !board.ValidStatus(task.Status) {
		return fmt.Errorf("invalid task status")
	}

	var dueDate int64
	if !task.DueDate.IsZero() {
		dueDate = toMillis(task.DueDate)
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE tasks
		    SET name = ?, description = ?, assignee_id = ?,
		        status = ?, position = ?, due_date = ?, updated_at = ?
		  WHERE id = ?`,
		strings.TrimSpace(task.Name),
		strings.TrimSpace(task.Description),
		strings.TrimSpace(task.AssigneeID),
		int(task.Status),
		task.Position,
		dueDate,
		toMillis(task.UpdatedAt),
		taskID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteTask removes one task row.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("task id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ReorderTasks applies the placements in one transaction. Any unknown task
// ID rolls back the whole batch.
func (s *Store) ReorderTasks(ctx context.Context, placements []ordering.Placement, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if len(placements) == 0 {
		return nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder tasks: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, placement := range placements {
		if strings.TrimSpace(placement.ID) == "" {
			return fmt.Errorf("placement task id is required")
		}
		if !board.ValidStatus(placement.Status) {
			return fmt.Errorf("invalid placement status")
		}
		result, err := tx.ExecContext(
			ctx,
			`UPDATE tasks SET status = ?, position = ?, updated_at = ? WHERE id = ?`,
			int(placement.Status),
			placement.Position,
			toMillis(updatedAt),
			placement.ID,
		)
		if err != nil {
			return fmt.Errorf("reorder task %s: %w", placement.ID, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("reorder task %s: %w", placement.ID, err)
		}
		if affected == 0 {
			return storage.ErrNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder tasks: %w", err)
	}
	return nil
}

func formatTaskCursor(position int, id string) string {
	return strconv.Itoa(position) + ":" + id
}

func parseTaskCursor(cursor string) (int, string, error) {
	positionPart, id, ok := strings.Cut(cursor, ":")
	if !ok || id == "" {
		return 0, "", fmt.Errorf("malformed task cursor")
	}
	position, err := strconv.Atoi(positionPart)
	if err != nil {
		return 0, "", fmt.Errorf("malformed task cursor: %w", err)
	}
	return position, id, nil
}

func scanTask(row rowScanner) (board.Task, error) {
	var task board.Task
	var status int
	var dueDate, createdAt, updatedAt int64
	err := row.Scan(
		&task.ID,
		&task.WorkspaceID,
		&task.ProjectID,
		&task.Name,
		&task.Description,
		&task.AssigneeID,
		&status,
		&task.Position,
		&dueDate,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return board.Task{}, storage.ErrNotFound
		}
		return board.Task{}, fmt.Errorf("scan task: %w", err)
	}
	task.Status = board.Status(status)
	if dueDate > 0 {
		task.DueDate = fromMillis(dueDate)
	}
	task.CreatedAt = fromMillis(createdAt)
	task.UpdatedAt = fromMillis(updatedAt)
	return task, nil
}
