package workspace

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/boardflow/internal/platform/errors"
	"github.com/louisbranch/boardflow/internal/platform/id"
)

// Role represents a member's rights within a workspace.
type Role int

const (
	// RoleUnspecified represents an invalid role.
	RoleUnspecified Role = iota
	// RoleAdmin can mutate workspace settings and other memberships.
	RoleAdmin
	// RoleMember can read and mutate projects and tasks.
	RoleMember
)

// Member binds a user to a workspace with a role.
type Member struct {
	ID          string
	WorkspaceID string
	UserID      string
	Role        Role
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateMemberInput describes the metadata needed to create a membership.
type CreateMemberInput struct {
	WorkspaceID string
	UserID      string
	Role        Role
}

// CreateMember builds a membership row with a generated ID and timestamps.
func CreateMember(input CreateMemberInput, now func() time.Time, idGenerator func() (string, error)) (Member, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.WorkspaceID = strings.TrimSpace(input.WorkspaceID)
	input.UserID = strings.TrimSpace(input.UserID)
	if input.WorkspaceID == "" {
		return Member{}, apperrors.New(apperrors.CodeNotFound, "workspace id is required")
	}
	if input.UserID == "" {
		return Member{}, apperrors.New(apperrors.CodeNotFound, "user id is required")
	}
	if input.Role != RoleAdmin && input.Role != RoleMember {
		return Member{}, apperrors.WithMetadata(apperrors.CodeMemberInvalidRole,
			"invalid member role",
			map[string]string{"Role": RoleLabel(input.Role)})
	}

	memberID, err := idGenerator()
	if err != nil {
		return Member{}, fmt.Errorf("generate member id: %w", err)
	}

	createdAt := now().UTC()
	return Member{
		ID:          memberID,
		WorkspaceID: input.WorkspaceID,
		UserID:      input.UserID,
		Role:        input.Role,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}

// RoleLabel returns the string label for a role.
func RoleLabel(role Role) string {
	switch role {
	case RoleAdmin:
		return "ADMIN"
	case RoleMember:
		return "MEMBER"
	default:
		return "UNSPECIFIED"
	}
}

// RoleFromLabel converts a role label to a Role value.
func RoleFromLabel(label string) Role {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "ADMIN":
		return RoleAdmin
	case "MEMBER":
		return RoleMember
	default:
		return RoleUnspecified
	}
}
