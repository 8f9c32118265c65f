// Package storage defines the persistence contracts for boardflow along
// with the row types shared by implementations.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/boardflow/internal/board"
	"github.com/louisbranch/boardflow/internal/board/filter"
	"github.com/louisbranch/boardflow/internal/board/ordering"
	"github.com/louisbranch/boardflow/internal/workspace"
)

// Sentinel errors returned by store implementations.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrLastAdmin indicates a mutation would leave a multi-member
	// workspace without an admin.
	ErrLastAdmin = errors.New("last admin")
	// ErrLastMember indicates a mutation would remove the only member
	// of a workspace.
	ErrLastMember = errors.New("last member")
)

// User is an identity row mirrored from the identity provider.
type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MemberWithUser joins a membership with its user's profile fields.
type MemberWithUser struct {
	workspace.Member
	UserName  string
	UserEmail string
}

// Analytics aggregates workspace activity counts.
type Analytics struct {
	ProjectCount       int
	MemberCount        int
	TaskCount          int
	AssignedTaskCount  int
	CompletedTaskCount int
	OverdueTaskCount   int
	TasksByStatus      map[board.Status]int
}

// TaskQuery describes a paged, filtered task listing within a workspace.
type TaskQuery struct {
	WorkspaceID string
	Condition   filter.SQLCondition
	PageSize    int
	// Cursor is the decoded keyset cursor from the previous page, empty
	// for the first page.
	Cursor string
}

// TelemetryEvent records a domain action for later analysis.
type TelemetryEvent struct {
	ID          string
	Name        string
	WorkspaceID string
	ActorID     string
	Metadata    map[string]string
	CreatedAt   time.Time
}

// UserStore persists identity rows.
type UserStore interface {
	// UpsertUser creates the user or refreshes its profile fields.
	UpsertUser(ctx context.Context, user User) error
	// GetUser returns the user or ErrNotFound.
	GetUser(ctx context.Context, id string) (User, error)
}

// WorkspaceStore persists workspaces.
type WorkspaceStore interface {
	// CreateWorkspace creates the workspace and its first admin
	// membership atomically.
	CreateWorkspace(ctx context.Context, ws workspace.Workspace, admin workspace.Member) error
	// GetWorkspace returns the workspace or ErrNotFound.
	GetWorkspace(ctx context.Context, id string) (workspace.Workspace, error)
	// ListWorkspacesForUser returns the workspaces the user belongs to.
	ListWorkspacesForUser(ctx context.Context, userID string) ([]workspace.Workspace, error)
	// UpdateWorkspace rewrites the workspace's mutable fields.
	UpdateWorkspace(ctx context.Context, ws workspace.Workspace) error
	// DeleteWorkspace removes the workspace and everything under it.
	DeleteWorkspace(ctx context.Context, id string) error
	// WorkspaceAnalytics aggregates activity counts, using now to
	// decide which due dates count as overdue.
	WorkspaceAnalytics(ctx context.Context, id string, now time.Time) (Analytics, error)
}

// MemberStore persists workspace memberships.
type MemberStore interface {
	// CreateMember adds a membership, returning ErrAlreadyExists when
	// the user already belongs to the workspace.
	CreateMember(ctx context.Context, member workspace.Member) error
	// GetMember returns the membership or ErrNotFound.
	GetMember(ctx context.Context, id string) (workspace.Member, error)
	// GetMemberByUser returns the user's membership in the workspace or
	// ErrNotFound.
	GetMemberByUser(ctx context.Context, workspaceID, userID string) (workspace.Member, error)
	// ListMembers returns the workspace's memberships joined with user
	// profiles, oldest first.
	ListMembers(ctx context.Context, workspaceID string) ([]MemberWithUser, error)
	// UpdateMemberRole changes a membership's role, returning
	// ErrLastAdmin when the change would leave no admin.
	UpdateMemberRole(ctx context.Context, id string, role workspace.Role, updatedAt time.Time) (workspace.Member, error)
	// DeleteMember removes a membership, returning ErrLastMember when
	// it is the workspace's only membership and ErrLastAdmin when it is
	// the only admin of a workspace that still has other members.
	DeleteMember(ctx context.Context, id string) error
}

// ProjectStore persists projects.
type ProjectStore interface {
	CreateProject(ctx context.Context, project board.Project) error
	// GetProject returns the project or ErrNotFound.
	GetProject(ctx context.Context, id string) (board.Project, error)
	// ListProjects returns the workspace's projects, oldest first.
	ListProjects(ctx context.Context, workspaceID string) ([]board.Project, error)
	UpdateProject(ctx context.Context, project board.Project) error
	// DeleteProject removes the project and its tasks.
	DeleteProject(ctx context.Context, id string) error
}

// TaskStore persists tasks.
type TaskStore interface {
	CreateTask(ctx context.Context, task board.Task) error
	// GetTask returns the task or ErrNotFound.
	GetTask(ctx context.Context, id string) (board.Task, error)
	// ListTasks returns a filtered page of workspace tasks ordered by
	// position with the next keyset cursor, empty when exhausted.
	ListTasks(ctx context.Context, query TaskQuery) ([]board.Task, string, error)
	// ListColumn returns a project column's tasks ordered by position.
	ListColumn(ctx context.Context, projectID string, status board.Status) ([]board.Task, error)
	UpdateTask(ctx context.Context, task board.Task) error
	DeleteTask(ctx context.Context, id string) error
	// ReorderTasks applies the placements in one transaction. Any
	// unknown task ID fails the whole batch.
	ReorderTasks(ctx context.Context, placements []ordering.Placement, updatedAt time.Time) error
}

// TelemetryStore persists telemetry events.
type TelemetryStore interface {
	AppendEvent(ctx context.Context, event TelemetryEvent) error
	// ListEvents returns a workspace's events, newest first.
	ListEvents(ctx context.Context, workspaceID string, limit int) ([]TelemetryEvent, error)
}

// Store aggregates every persistence contract boardflow needs.
type Store interface {
	UserStore
	WorkspaceStore
	MemberStore
	ProjectStore
	TaskStore
	TelemetryStore

	Close() error
}
