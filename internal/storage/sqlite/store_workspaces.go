package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/boardflow/internal/board"
	"github.com/louisbranch/boardflow/internal/storage"
	"github.com/louisbranch/boardflow/internal/workspace"
)

// CreateWorkspace creates the workspace and its first admin membership in
// one transaction.
func (s *Store) CreateWorkspace(ctx context.Context, ws workspace.Workspace, admin workspace.Member) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	workspaceID := strings.TrimSpace(ws.ID)
	if workspaceID == "" {
		return fmt.Errorf("workspace id is required")
	}
	if strings.TrimSpace(ws.Name) == "" {
		return fmt.Errorf("workspace name is required")
	}
	if strings.TrimSpace(admin.ID) == "" {
		return fmt.Errorf("admin member id is required")
	}
	if admin.WorkspaceID != workspaceID {
		return fmt.Errorf("admin member workspace mismatch")
	}
	if admin.Role != workspace.RoleAdmin {
		return fmt.Errorf("first member must be an admin")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create workspace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO workspaces (id, name, image_url, invite_code, creator_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		workspaceID,
		strings.TrimSpace(ws.Name),
		strings.TrimSpace(ws.ImageURL),
		strings.TrimSpace(ws.InviteCode),
		strings.TrimSpace(ws.CreatorID),
		toMillis(ws.CreatedAt),
		toMillis(ws.UpdatedAt),
	); err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create workspace: %w", err)
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO members (id, workspace_id, user_id, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(admin.ID),
		workspaceID,
		strings.TrimSpace(admin.UserID),
		int(admin.Role),
		toMillis(admin.CreatedAt),
		toMillis(admin.UpdatedAt),
	); err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create admin member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create workspace: %w", err)
	}
	return nil
}

// GetWorkspace returns one workspace by ID.
func (s *Store) GetWorkspace(ctx context.Context, id string) (workspace.Workspace, error) {
	if err := ctx.Err(); err != nil {
		return workspace.Workspace{}, err
	}
	if err := s.ready(); err != nil {
		return workspace.Workspace{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return workspace.Workspace{}, fmt.Errorf("workspace id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, image_url, invite_code, creator_id, created_at, updated_at
		   FROM workspaces
		  WHERE id = ?`,
		id,
	)
	return scanWorkspace(row)
}

// ListWorkspacesForUser returns the workspaces the user belongs to, oldest
// membership first.
func (s *Store) ListWorkspacesForUser(ctx context.Context, userID string) ([]workspace.Workspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT w.id, w.name, w.image_url, w.invite_code, w.creator_id, w.created_at, w.updated_at
		   FROM workspaces w
		   JOIN members m ON m.workspace_id = w.id
		  WHERE m.user_id = ?
		  ORDER BY m.created_at ASC, w.id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer rows.Close()

	var workspaces []workspace.Workspace
	for rows.Next() {
		ws, err := scanWorkspace(rows)
		if err != nil {
			return nil, fmt.Errorf("list workspaces: %w", err)
		}
		workspaces = append(workspaces, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	return workspaces, nil
}

// UpdateWorkspace rewrites the workspace's mutable fields.
func (s *Store) UpdateWorkspace(ctx context.Context, ws workspace.Workspace) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	workspaceID := strings.TrimSpace(ws.ID)
	if workspaceID == "" {
		return fmt.Errorf("workspace id is required")
	}
	if strings.TrimSpace(ws.Name) == "" {
		return fmt.Errorf("workspace name is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE workspaces
		    SET name = ?, image_url = ?, invite_code = ?, updated_at = ?
		  WHERE id = ?`,
		strings.TrimSpace(ws.Name),
		strings.TrimSpace(ws.ImageURL),
		strings.TrimSpace(ws.InviteCode),
		toMillis(ws.UpdatedAt),
		workspaceID,
	)
	if err != nil {
		return fmt.Errorf("update workspace: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update workspace: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteWorkspace removes the workspace and everything under it.
func (s *Store) DeleteWorkspace(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("workspace id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete workspace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		`DELETE FROM tasks WHERE workspace_id = ?`,
		`DELETE FROM projects WHERE workspace_id = ?`,
		`DELETE FROM members WHERE workspace_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("delete workspace children: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM workspaces WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete workspace: %w", err)
	}
	return nil
}

// WorkspaceAnalytics aggregates activity counts for one workspace.
func (s *Store) WorkspaceAnalytics(ctx context.Context, id string, now time.Time) (storage.Analytics, error) {
	if err := ctx.Err(); err != nil {
		return storage.Analytics{}, err
	}
	if err := s.ready(); err != nil {
		return storage.Analytics{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.Analytics{}, fmt.Errorf("workspace id is required")
	}

	var exists int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT 1 FROM workspaces WHERE id = ?`, id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Analytics{}, storage.ErrNotFound
		}
		return storage.Analytics{}, fmt.Errorf("workspace analytics: %w", err)
	}

	analytics := storage.Analytics{TasksByStatus: make(map[board.Status]int)}

	if err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT
		   (SELECT COUNT(*) FROM projects WHERE workspace_id = ?),
		   (SELECT COUNT(*) FROM members WHERE workspace_id = ?),
		   (SELECT COUNT(*) FROM tasks WHERE workspace_id = ?),
		   (SELECT COUNT(*) FROM tasks WHERE workspace_id = ? AND assignee_id != ''),
		   (SELECT COUNT(*) FROM tasks WHERE workspace_id = ? AND status = ?),
		   (SELECT COUNT(*) FROM tasks WHERE workspace_id = ? AND status != ? AND due_date > 0 AND due_date < ?)`,
		id, id, id, id,
		id, int(board.StatusDone),
		id, int(board.StatusDone), toMillis(now),
	).Scan(
		&analytics.ProjectCount,
		&analytics.MemberCount,
		&analytics.TaskCount,
		&analytics.AssignedTaskCount,
		&analytics.CompletedTaskCount,
		&analytics.OverdueTaskCount,
	); err != nil {
		return storage.Analytics{}, fmt.Errorf("workspace analytics: %w", err)
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT status, COUNT(*) FROM tasks WHERE workspace_id = ? GROUP BY status`,
		id,
	)
	if err != nil {
		return storage.Analytics{}, fmt.Errorf("workspace analytics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status, count int
		if err := rows.Scan(&status, &count); err != nil {
			return storage.Analytics{}, fmt.Errorf("workspace analytics: %w", err)
		}
		analytics.TasksByStatus[board.Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		return storage.Analytics{}, fmt.Errorf("workspace analytics: %w", err)
	}
	return analytics, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkspace(row rowScanner) (workspace.Workspace, error) {
	var ws workspace.Workspace
	var createdAt, updatedAt int64
	err := row.Scan(
		&ws.ID,
		&ws.Name,
		&ws.ImageURL,
		&ws.InviteCode,
		&ws.CreatorID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return workspace.Workspace{}, storage.ErrNotFound
		}
		return workspace.Workspace{}, fmt.Errorf("scan workspace: %w", err)
	}
	ws.CreatedAt = fromMillis(createdAt)
	ws.UpdatedAt = fromMillis(updatedAt)
	return ws, nil
}
