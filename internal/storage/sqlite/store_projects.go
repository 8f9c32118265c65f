package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/boardflow/internal/board"
	"github.com/louisbranch/boardflow/internal/storage"
)

// CreateProject inserts one project row.
func (s *Store) CreateProject(ctx context.Context, project board.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	projectID := strings.TrimSpace(project.ID)
	if projectID == "" {
		return fmt.Errorf("project id is required")
	}
	if strings.TrimSpace(project.WorkspaceID) == "" {
		return fmt.Errorf("workspace id is required")
	}
	if strings.TrimSpace(project.Name) == "" {
		return fmt.Errorf("project name is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO projects (id, workspace_id, name, image_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		projectID,
		strings.TrimSpace(project.WorkspaceID),
		strings.TrimSpace(project.Name),
		strings.TrimSpace(project.ImageURL),
		toMillis(project.CreatedAt),
		toMillis(project.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// GetProject returns one project by ID.
func (s *Store) GetProject(ctx context.Context, id string) (board.Project, error) {
	if err := ctx.Err(); err != nil {
		return board.Project{}, err
	}
	if err := s.ready(); err != nil {
		return board.Project{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return board.Project{}, fmt.Errorf("project id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, workspace_id, name, image_url, created_at, updated_at
		   FROM projects
		  WHERE id = ?`,
		id,
	)
	return scanProject(row)
}

// ListProjects returns the workspace's projects, oldest first.
func (s *Store) ListProjects(ctx context.Context, workspaceID string) ([]board.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		return nil, fmt.Errorf("workspace id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, workspace_id, name, image_url, created_at, updated_at
		   FROM projects
		  WHERE workspace_id = ?
		  ORDER BY created_at ASC, id ASC`,
		workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []board.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// UpdateProject rewrites the project's mutable fields.
func (s *Store) UpdateProject(ctx context.Context, project board.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	projectID := strings.TrimSpace(project.ID)
	if projectID == "" {
		return fmt.Errorf("project id is required")
	}
	if strings.TrimSpace(project.Name) == "" {
		return fmt.Errorf("project name is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE projects SET name = ?, image_url = ?, updated_at = ? WHERE id = ?`,
		strings.TrimSpace(project.Name),
		strings.TrimSpace(project.ImageURL),
		toMillis(project.UpdatedAt),
		projectID,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteProject removes the project and its tasks.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("project id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete project: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("delete project tasks: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete project: %w", err)
	}
	return nil
}

func scanProject(row rowScanner) (board.Project, error) {
	var project board.Project
	var createdAt, updatedAt int64
	err := row.Scan(
		&project.ID,
		&project.WorkspaceID,
		&project.Name,
		&project.ImageURL,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return board.Project{}, storage.ErrNotFound
		}
		return board.Project{}, fmt.Errorf("scan project: %w", err)
	}
	project.CreatedAt = fromMillis(createdAt)
	project.UpdatedAt = fromMillis(updatedAt)
	return project, nil
}
