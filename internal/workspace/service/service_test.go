package service

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/louisbranch/boardflow/internal/platform/errors"
	"github.com/louisbranch/boardflow/internal/platform/requestctx"
	"github.com/louisbranch/boardflow/internal/storage"
	"github.com/louisbranch/boardflow/internal/workspace"
)

// fakeStore is an in-memory Storage implementation mimicking the SQLite
// store's invariant guards.
type fakeStore struct {
	workspaces map[string]workspace.Workspace
	members    map[string]workspace.Member
	users      map[string]storage.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		workspaces: make(map[string]workspace.Workspace),
		members:    make(map[string]workspace.Member),
		users:      make(map[string]storage.User),
	}
}

func (f *fakeStore) CreateWorkspace(_ context.Context, ws workspace.Workspace, admin workspace.Member) error {
	if _, ok := f.workspaces[ws.ID]; ok {
		return storage.ErrAlreadyExists
	}
	f.workspaces[ws.ID] = ws
	f.members[admin.ID] = admin
	return nil
}

func (f *fakeStore) GetWorkspace(_ context.Context, id string) (workspace.Workspace, error) {
	ws, ok := f.workspaces[id]
	if !ok {
		return workspace.Workspace{}, storage.ErrNotFound
	}
	return ws, nil
}

func (f *fakeStore) ListWorkspacesForUser(_ context.Context, userID string) ([]workspace.Workspace, error) {
	var out []workspace.Workspace
	for _, member := range f.members {
		if member.UserID == userID {
			if ws, ok := f.workspaces[member.WorkspaceID]; ok {
				out = append(out, ws)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateWorkspace(_ context.Context, ws workspace.Workspace) error {
	if _, ok := f.workspaces[ws.ID]; !ok {
		return storage.ErrNotFound
	}
	f.workspaces[ws.ID] = ws
	return nil
}

func (f *fakeStore) DeleteWorkspace(_ context.Context, id string) error {
	if _, ok := f.workspaces[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.workspaces, id)
	for memberID, member := range f.members {
		if member.WorkspaceID == id {
			delete(f.members, memberID)
		}
	}
	return nil
}

func (f *fakeStore) WorkspaceAnalytics(_ context.Context, id string, _ time.Time) (storage.Analytics, error) {
	if _, ok := f.workspaces[id]; !ok {
		return storage.Analytics{}, storage.ErrNotFound
	}
	return storage.Analytics{MemberCount: f.memberCount(id)}, nil
}

func (f *fakeStore) CreateMember(_ context.Context, member workspace.Member) error {
	for _, existing := range f.members {
		if existing.WorkspaceID == member.WorkspaceID && existing.UserID == member.UserID {
			return storage.ErrAlreadyExists
		}
	}
	f.members[member.ID] = member
	return nil
}

func (f *fakeStore) GetMember(_ context.Context, id string) (workspace.Member, error) {
	member, ok := f.members[id]
	if !ok {
		return workspace.Member{}, storage.ErrNotFound
	}
	return member, nil
}

func (f *fakeStore) GetMemberByUser(_ context.Context, workspaceID, userID string) (workspace.Member, error) {
	for _, member := range f.members {
		if member.WorkspaceID == workspaceID && member.UserID == userID {
			return member, nil
		}
	}
	return workspace.Member{}, storage.ErrNotFound
}

func (f *fakeStore) ListMembers(_ context.Context, workspaceID string) ([]storage.MemberWithUser, error) {
	var out []storage.MemberWithUser
	for _, member := range f.members {
		if member.WorkspaceID == workspaceID {
			entry := storage.MemberWithUser{Member: member}
			if user, ok := f.users[member.UserID]; ok {
				entry.UserName = user.Name
				entry.UserEmail = user.Email
			}
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateMemberRole(_ context.Context, id string, role workspace.Role, updatedAt time.Time) (workspace.Member, error) {
	member, ok := f.members[id]
	if !ok {
		return workspace.Member{}, storage.ErrNotFound
	}
	if member.Role == workspace.RoleAdmin && role != workspace.RoleAdmin &&
		f.adminCount(member.WorkspaceID) == 1 {
		return workspace.Member{}, storage.ErrLastAdmin
	}
	member.Role = role
	member.UpdatedAt = updatedAt
	f.members[id] = member
	return member, nil
}

func (f *fakeStore) DeleteMember(_ context.Context, id string) error {
	member, ok := f.members[id]
	if !ok {
		return storage.ErrNotFound
	}
	if f.memberCount(member.WorkspaceID) == 1 {
		return storage.ErrLastMember
	}
	if member.Role == workspace.RoleAdmin && f.adminCount(member.WorkspaceID) == 1 {
		return storage.ErrLastAdmin
	}
	delete(f.members, id)
	return nil
}

func (f *fakeStore) UpsertUser(_ context.Context, user storage.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, id string) (storage.User, error) {
	user, ok := f.users[id]
	if !ok {
		return storage.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (f *fakeStore) memberCount(workspaceID string) int {
	count := 0
	for _, member := range f.members {
		if member.WorkspaceID == workspaceID {
			count++
		}
	}
	return count
}

func (f *fakeStore) adminCount(workspaceID string) int {
	count := 0
	for _, member := range f.members {
		if member.WorkspaceID == workspaceID && member.Role == workspace.RoleAdmin {
			count++
		}
	}
	return count
}

func newTestService(store *fakeStore) *Service {
	svc := NewService(store, nil)
	svc.clock = func() time.Time {
		return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func asUser(userID string) context.Context {
	return requestctx.WithUserID(context.Background(), userID)
}

func mustCreateWorkspace(t *testing.T, svc *Service, ctx context.Context, name string) workspace.Workspace {
	t.Helper()
	ws, err := svc.Create(ctx, CreateInput{Name: name})
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	return ws
}

func TestCreateRequiresAuth(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeStore())
	_, err := svc.Create(context.Background(), CreateInput{Name: "Team"})
	if apperrors.GetCode(err) != apperrors.CodeUnauthenticated {
		t.Fatalf("error code = %s, want %s", apperrors.GetCode(err), apperrors.CodeUnauthenticated)
	}
}

func TestCreateMakesCallerAdmin(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := newTestService(store)
	ws := mustCreateWorkspace(t, svc, asUser("user-1"), "Team")

	member, err := store.GetMemberByUser(context.Background(), ws.ID, "user-1")
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if member.Role != workspace.RoleAdmin {
		t.Fatalf("role = %v, want admin", member.Role)
	}
	if len(ws.InviteCode) != workspace.InviteCodeLength {
		t.Fatalf("invite code = %q", ws.InviteCode)
	}
}

func TestGetRequiresMembership(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeStore())
	ws := mustCreateWorkspace(t, svc, asUser("user-1"), "Team")

	_, err := svc.Get(asUser("stranger"), ws.ID)
	if apperrors.GetCode(err) != apperrors.CodeWorkspaceNotMember {
		t.Fatalf("error code = %s, want %s", apperrors.GetCode(err), apperrors.CodeWorkspaceNotMember)
	}
}

func TestJoinWithInviteCode(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeStore())
	ws := mustCreateWorkspace(t, svc, asUser("user-1"), "Team")

	member, err := svc.Join(asUser("user-2"), ws.ID, ws.InviteCode)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if member.Role != workspace.RoleMember {
		t.Fatalf("role = %v, want member", member.Role)
	}
}

func TestJoinRejectsWrongCode(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeStore())
	ws := mustCreateWorkspace(t, svc, asUser("user-1"), "Team")

	_, err := svc.Join(asUser("user-2"), ws.ID, "WRONG123")
	if apperrors.GetCode(err) != apperrors.CodeInviteCodeInvalid {
		t.Fatalf("error code = %s, want %s", apperrors.GetCode(err), apperrors.CodeInviteCodeInvalid)
	}
}

func TestJoinRejectsUnknownWorkspace(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeStore())
	_, err := svc.Join(asUser("user-2"), "ghost", "CODE1234")
	if apperrors.GetCode(err) != apperrors.CodeNotFound {
		t.Fatalf("error code = %s, want %s", apperrors.GetCode(err), apperrors.CodeNotFound)
	}
}

func TestJoinRejectsExistingMember(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeStore())
	ws := mustCreateWorkspace(t, svc, asUser("user-1"), "Team")

	_, err := svc.Join(asUser("user-1"), ws.ID, ws.InviteCode)
	if apperrors.GetCode(err) != apperrors.CodeAlreadyMember {
		t.Fatalf("error code = %s, want %s", apperrors.GetCode(err), apperrors.CodeAlreadyMember)
	}
}

func TestChangeRoleRequiresAdmin(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := newTestService(store)
	ws := mustCreateWorkspace(t, svc, asUser("user-1"), "Team")
	member, err := svc.Join(asUser("user-2"), ws.ID, ws.InviteCode)
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	_, err = svc.ChangeRole(asUser("user-2"), member.ID, workspace.RoleAdmin)
	if apperrors.GetCode(err) != apperrors.CodeWorkspaceAdminRequired {
		t.Fatalf("error code = %s, want %s", apperrors.GetCode(err), apperrors.CodeWorkspaceAdminRequired)
	}
}

func TestChangeRoleGuardsLastAdmin(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := newTestService(store)
	ws := mustCreateWorkspace(t, svc, asUser("user-1"), "Team")
	if _, err := svc.Join(asUser("user-2"), ws.ID, ws.InviteCode); err != nil {
		t.Fatalf("join: %v", err)
	}
	admin, err := store.GetMemberByUser(context.Background(), ws.ID, "user-1")
	if err != nil {
		t.Fatalf("get admin: %v", err)
	}

	_, err = svc.ChangeRole(asUser("user-1"), admin.ID, workspace.RoleMember)
	if apperrors.GetCode(err) != apperrors.CodeLastAdmin {
		t.Fatalf("error code = %s, want %s", apperrors.GetCode(err), apperrors.CodeLastAdmin)
	}
}

func TestChangeRolePromotesMember(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeStore())
	ws := mustCreateWorkspace(t, svc, asUser("user-1"), "Team")
	member, err := svc.Join(asUser("user-2"), ws.ID, ws.InviteCode)
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	updated, err := svc.ChangeRole(asUser("user-1"), member.ID, workspace.RoleAdmin)
	if err != nil {
		t.Fatalf("change role: %v", err)
	}
	if updated.Role != workspace.RoleAdmin {
		t.Fatalf("role = %v, want admin", updated.Role)
	}
}

func TestRemoveMemberSelfRemoval(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := newTestService(store)
	ws := mustCreateWorkspace(t, svc, asUser("user-1"), "Team")
	member, err := svc.Join(asUser("user-2"), ws.ID, ws.InviteCode)
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := svc.RemoveMember(asUser("user-2"), member.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	if _, err := store.GetMember(context.Background(), member.ID); err == nil {
		t.Fatal("expected member to be gone")
	}
}

func TestRemoveMemberOtherRequiresAdmin(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := newTestService(store)
	ws := mustCreateWorkspace(t, svc, asUser("user-1"), "Team")
	if _, err := svc.Join(asUser("user-2"), ws.ID, ws.InviteCode); err != nil {
		t.Fatalf("join: %v", err)
	}
	admin, err := store.GetMemberByUser(context.Background(), ws.ID, "user-1")
	if err != nil {
		t.Fatalf("get admin: %v", err)
	}

	err = svc.RemoveMember(asUser("user-2"), admin.ID)
	if apperrors.GetCode(err) != apperrors.CodeWorkspaceAdminRequired {
		t.Fatalf("error code = %s, want %s", apperrors.GetCode(err), apperrors.CodeWorkspaceAdminRequired)
	}
}

func TestRemoveMemberGuardsLastMember(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := newTestService(store)
	ws := mustCreateWorkspace(t, svc, asUser("user-1"), "Team")
	admin, err := store.GetMemberByUser(context.Background(), ws.ID, "user-1")
	if err != nil {
		t.Fatalf("get admin: %v", err)
	}

	err = svc.RemoveMember(asUser("user-1"), admin.ID)
	if apperrors.GetCode(err) != apperrors.CodeLastMember {
		t.Fatalf("error code = %s, want %s", apperrors.GetCode(err), apperrors.CodeLastMember)
	}
}

func TestUpdateRequiresAdmin(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeStore())
	ws := mustCreateWorkspace(t, svc, asUser("user-1"), "Team")
	if _, err := svc.Join(asUser("user-2"), ws.ID, ws.InviteCode); err != nil {
		t.Fatalf("join: %v", err)
	}

	_, err := svc.Update(asUser("user-2"), UpdateInput{WorkspaceID: ws.ID, Name: "Renamed"})
	if apperrors.GetCode(err) != apperrors.CodeWorkspaceAdminRequired {
		t.Fatalf("error code = %s, want %s", apperrors.GetCode(err), apperrors.CodeWorkspaceAdminRequired)
	}
}

func TestResetInviteCodeRotates(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeStore())
	ws := mustCreateWorkspace(t, svc, asUser("user-1"), "Team")

	updated, err := svc.ResetInviteCode(asUser("user-1"), ws.ID)
	if err != nil {
		t.Fatalf("reset invite code: %v", err)
	}
	if updated.InviteCode == ws.InviteCode {
		t.Fatal("expected a new invite code")
	}
	if len(updated.InviteCode) != workspace.InviteCodeLength {
		t.Fatalf("invite code length = %d", len(updated.InviteCode))
	}
}

func TestJoinRejectsStaleInviteCode(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeStore())
	ws := mustCreateWorkspace(t, svc, asUser("user-1"), "Team")

	if _, err := svc.ResetInviteCode(asUser("user-1"), ws.ID); err != nil {
		t.Fatalf("reset invite code: %v", err)
	}

	_, err := svc.Join(asUser("user-2"), ws.ID, ws.InviteCode)
	if apperrors.GetCode(err) != apperrors.CodeInviteCodeInvalid {
		t.Fatalf("error code = %s, want %s", apperrors.GetCode(err), apperrors.CodeInviteCodeInvalid)
	}
}

func TestInfoVisibleToNonMembers(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeStore())
	ws := mustCreateWorkspace(t, svc, asUser("user-1"), "Team")

	info, err := svc.Info(asUser("stranger"), ws.ID)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.Name != "Team" {
		t.Fatalf("name = %q", info.Name)
	}
}

func TestAnalyticsRequiresMembership(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeStore())
	ws := mustCreateWorkspace(t, svc, asUser("user-1"), "Team")

	if _, err := svc.Analytics(asUser("user-1"), ws.ID); err != nil {
		t.Fatalf("analytics: %v", err)
	}
	_, err := svc.Analytics(asUser("stranger"), ws.ID)
	if apperrors.GetCode(err) != apperrors.CodeWorkspaceNotMember {
		t.Fatalf("error code = %s, want %s", apperrors.GetCode(err), apperrors.CodeWorkspaceNotMember)
	}
}
