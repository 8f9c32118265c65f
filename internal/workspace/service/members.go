package service

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/louisbranch/boardflow/internal/platform/errors"
	"github.com/louisbranch/boardflow/internal/storage"
	"github.com/louisbranch/boardflow/internal/telemetry"
	"github.com/louisbranch/boardflow/internal/workspace"
)

// Join adds the caller to a workspace using its invite code.
func (s *Service) Join(ctx context.Context, workspaceID, inviteCode string) (workspace.Member, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return workspace.Member{}, err
	}
	workspaceID = strings.TrimSpace(workspaceID)
	inviteCode = strings.TrimSpace(inviteCode)
	if workspaceID == "" {
		return workspace.Member{}, apperrors.New(apperrors.CodeNotFound, "workspace id is required")
	}

	ws, err := s.store.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return workspace.Member{}, mapStoreError(err, "get workspace")
	}
	if inviteCode == "" || inviteCode != ws.InviteCode {
		return workspace.Member{}, apperrors.New(apperrors.CodeInviteCodeInvalid, "invalid invite code")
	}

	member, err := workspace.CreateMember(workspace.CreateMemberInput{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        workspace.RoleMember,
	}, s.clock, s.idGenerator)
	if err != nil {
		return workspace.Member{}, err
	}

	// The unique (workspace_id, user_id) index resolves concurrent joins.
	if err := s.store.CreateMember(ctx, member); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return workspace.Member{}, apperrors.New(apperrors.CodeAlreadyMember, "already a workspace member")
		}
		return workspace.Member{}, apperrors.Wrap(apperrors.CodeStoreFailure, "create member", err)
	}

	_ = s.telemetry.Emit(ctx, storage.TelemetryEvent{
		Name:        telemetry.EventWorkspaceJoined,
		WorkspaceID: workspaceID,
		ActorID:     userID,
	})
	return member, nil
}

// ListMembers returns the workspace's memberships with user profiles.
func (s *Service) ListMembers(ctx context.Context, workspaceID string) ([]storage.MemberWithUser, error) {
	if _, err := s.requireMember(ctx, workspaceID); err != nil {
		return nil, err
	}
	members, err := s.store.ListMembers(ctx, workspaceID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreFailure, "list members", err)
	}
	return members, nil
}

// ChangeRole sets a membership's role. Admin only.
func (s *Service) ChangeRole(ctx context.Context, memberID string, role workspace.Role) (workspace.Member, error) {
	if role != workspace.RoleAdmin && role != workspace.RoleMember {
		return workspace.Member{}, apperrors.New(apperrors.CodeMemberInvalidRole, "invalid member role")
	}
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return workspace.Member{}, apperrors.New(apperrors.CodeNotFound, "member id is required")
	}

	target, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return workspace.Member{}, mapStoreError(err, "get member")
	}
	actor, err := s.requireAdmin(ctx, target.WorkspaceID)
	if err != nil {
		return workspace.Member{}, err
	}

	updated, err := s.store.UpdateMemberRole(ctx, memberID, role, s.clock().UTC())
	if err != nil {
		return workspace.Member{}, mapStoreError(err, "update member role")
	}

	_ = s.telemetry.Emit(ctx, storage.TelemetryEvent{
		Name:        telemetry.EventMemberRoleSet,
		WorkspaceID: target.WorkspaceID,
		ActorID:     actor.UserID,
		Metadata: map[string]string{
			"member_id": memberID,
			"role":      workspace.RoleLabel(role),
		},
	})
	return updated, nil
}

// RemoveMember deletes a membership. Admins can remove anyone; a member can
// remove only itself.
func (s *Service) RemoveMember(ctx context.Context, memberID string) error {
	userID, err := callerID(ctx)
	if err != nil {
		return err
	}
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return apperrors.New(apperrors.CodeNotFound, "member id is required")
	}

	target, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return mapStoreError(err, "get member")
	}

	if target.UserID != userID {
		if _, err := s.requireAdmin(ctx, target.WorkspaceID); err != nil {
			return err
		}
	} else if _, err := s.requireMember(ctx, target.WorkspaceID); err != nil {
		return err
	}

	if err := s.store.DeleteMember(ctx, memberID); err != nil {
		return mapStoreError(err, "delete member")
	}

	_ = s.telemetry.Emit(ctx, storage.TelemetryEvent{
		Name:        telemetry.EventMemberRemoved,
		WorkspaceID: target.WorkspaceID,
		ActorID:     userID,
		Metadata:    map[string]string{"member_id": memberID},
	})
	return nil
}
