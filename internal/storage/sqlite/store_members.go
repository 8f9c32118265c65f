package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/boardflow/internal/storage"
	"github.com/louisbranch/boardflow/internal/workspace"
)

// CreateMember adds a membership row.
func (s *Store) CreateMember(ctx context.Context, member workspace.Member) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	memberID := strings.TrimSpace(member.ID)
	if memberID == "" {
		return fmt.Errorf("member id is required")
	}
	if strings.TrimSpace(member.WorkspaceID) == "" {
		return fmt.Errorf("workspace id is required")
	}
	if strings.TrimSpace(member.UserID) == "" {
		return fmt.Errorf("user id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO members (id, workspace_id, user_id, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		memberID,
		strings.TrimSpace(member.WorkspaceID),
		strings.TrimSpace(member.UserID),
		int(member.Role),
		toMillis(member.CreatedAt),
		toMillis(member.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create member: %w", err)
	}
	return nil
}

// GetMember returns one membership by ID.
func (s *Store) GetMember(ctx context.Context, id string) (workspace.Member, error) {
	if err := ctx.Err(); err != nil {
		return workspace.Member{}, err
	}
	if err := s.ready(); err != nil {
		return workspace.Member{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return workspace.Member{}, fmt.Errorf("member id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, workspace_id, user_id, role, created_at, updated_at
		   FROM members
		  WHERE id = ?`,
		id,
	)
	return scanMember(row)
}

// GetMemberByUser returns the user's membership in the workspace.
func (s *Store) GetMemberByUser(ctx context.Context, workspaceID, userID string) (workspace.Member, error) {
	if err := ctx.Err(); err != nil {
		return workspace.Member{}, err
	}
	if err := s.ready(); err != nil {
		return workspace.Member{}, err
	}
	workspaceID = strings.TrimSpace(workspaceID)
	userID = strings.TrimSpace(userID)
	if workspaceID == "" {
		return workspace.Member{}, fmt.Errorf("workspace id is required")
	}
	if userID == "" {
		return workspace.Member{}, fmt.Errorf("user id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, workspace_id, user_id, role, created_at, updated_at
		   FROM members
		  WHERE workspace_id = ? AND user_id = ?`,
		workspaceID,
		userID,
	)
	return scanMember(row)
}

// ListMembers returns the workspace's memberships joined with user profiles.
func (s *Store) ListMembers(ctx context.Context, workspaceID string) ([]storage.MemberWithUser, error) {
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
		`SELECT m.id, m.workspace_id, m.user_id, m.role, m.created_at, m.updated_at,
		        COALESCE(u.name, ''), COALESCE(u.email, '')
		   FROM members m
		   LEFT JOIN users u ON u.id = m.user_id
		  WHERE m.workspace_id = ?
		  ORDER BY m.created_at ASC, m.id ASC`,
		workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []storage.MemberWithUser
	for rows.Next() {
		var member storage.MemberWithUser
		var role int
		var createdAt, updatedAt int64
		if err := rows.Scan(
			&member.ID,
			&member.WorkspaceID,
			&member.UserID,
			&role,
			&createdAt,
			&updatedAt,
			&member.UserName,
			&member.UserEmail,
		); err != nil {
			return nil, fmt.Errorf("list members: %w", err)
		}
		member.Role = workspace.Role(role)
		member.CreatedAt = fromMillis(createdAt)
		member.UpdatedAt = fromMillis(updatedAt)
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// UpdateMemberRole changes a membership's role. The admin count is checked
// after the write so concurrent demotions cannot race past the guard.
func (s *Store) UpdateMemberRole(ctx context.Context, id string, role workspace.Role, updatedAt time.Time) (workspace.Member, error) {
	if err := ctx.Err(); err != nil {
		return workspace.Member{}, err
	}
	if err := s.ready(); err != nil {
		return workspace.Member{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return workspace.Member{}, fmt.Errorf("member id is required")
	}
	if role != workspace.RoleAdmin && role != workspace.RoleMember {
		return workspace.Member{}, fmt.Errorf("invalid member role")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return workspace.Member{}, fmt.Errorf("begin update member role: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	member, err := scanMember(tx.QueryRowContext(
		ctx,
		`SELECT id, workspace_id, user_id, role, created_at, updated_at
		   FROM members
		  WHERE id = ?`,
		id,
	))
	if err != nil {
		return workspace.Member{}, err
	}

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE members SET role = ?, updated_at = ? WHERE id = ?`,
		int(role),
		toMillis(updatedAt),
		id,
	); err != nil {
		return workspace.Member{}, fmt.Errorf("update member role: %w", err)
	}

	var adminCount int
	if err := tx.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM members WHERE workspace_id = ? AND role = ?`,
		member.WorkspaceID,
		int(workspace.RoleAdmin),
	).Scan(&adminCount); err != nil {
		return workspace.Member{}, fmt.Errorf("count admins: %w", err)
	}
	if adminCount == 0 {
		return workspace.Member{}, storage.ErrLastAdmin
	}

	if err := tx.Commit(); err != nil {
		return workspace.Member{}, fmt.Errorf("commit update member role: %w", err)
	}

	member.Role = role
	member.UpdatedAt = updatedAt.UTC()
	return member, nil
}

// DeleteMember removes a membership. The remaining counts are checked after
// the delete so concurrent removals cannot race past the guards.
func (s *Store) DeleteMember(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("member id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete member: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	member, err := scanMember(tx.QueryRowContext(
		ctx,
		`SELECT id, workspace_id, user_id, role, created_at, updated_at
		   FROM members
		  WHERE id = ?`,
		id,
	))
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete member: %w", err)
	}

	var remaining, admins int
	if err := tx.QueryRowContext(
		ctx,
		`SELECT COUNT(*),
		        COUNT(CASE WHEN role = ? THEN 1 END)
		   FROM members
		  WHERE workspace_id = ?`,
		int(workspace.RoleAdmin),
		member.WorkspaceID,
	).Scan(&remaining, &admins); err != nil {
		return fmt.Errorf("count members: %w", err)
	}
	if remaining == 0 {
		return storage.ErrLastMember
	}
	if admins == 0 {
		return storage.ErrLastAdmin
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete member: %w", err)
	}
	return nil
}

func scanMember(row rowScanner) (workspace.Member, error) {
	var member workspace.Member
	var role int
	var createdAt, updatedAt int64
	err := row.Scan(
		&member.ID,
		&member.WorkspaceID,
		&member.UserID,
		&role,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return workspace.Member{}, storage.ErrNotFound
		}
		return workspace.Member{}, fmt.Errorf("scan member: %w", err)
	}
	member.Role = workspace.Role(role)
	member.CreatedAt = fromMillis(createdAt)
	member.UpdatedAt = fromMillis(updatedAt)
	return member, nil
}
