// Package seed populates a local database with demo fixtures: a
// workspace with a small team, two projects, and tasks spread across
// the board columns.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/louisbranch/boardflow/internal/board"
	"github.com/louisbranch/boardflow/internal/board/ordering"
	"github.com/louisbranch/boardflow/internal/storage"
	"github.com/louisbranch/boardflow/internal/storage/sqlite"
	"github.com/louisbranch/boardflow/internal/workspace"
)

const demoWorkspaceID = "demoworkspacedemoworkspace"

// Config holds seeding options.
type Config struct {
	DBPath  string
	Verbose bool
	Out     io.Writer
}

type taskFixture struct {
	name        string
	description string
	assignee    string
	status      board.Status
	dueIn       time.Duration
}

// Run writes the demo fixtures into the database at cfg.DBPath.
func Run(ctx context.Context, cfg Config) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	now := time.Now().UTC()

	// Re-runs against the same file are a no-op.
	if _, err := store.GetWorkspace(ctx, demoWorkspaceID); err == nil {
		logf(cfg, "demo workspace already seeded, skipping")
		return nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("check demo workspace: %w", err)
	}

	users := []storage.User{
		{ID: "demo-ada", Name: "Ada Lovelace", Email: "ada@example.com", CreatedAt: now, UpdatedAt: now},
		{ID: "demo-grace", Name: "Grace Hopper", Email: "grace@example.com", CreatedAt: now, UpdatedAt: now},
		{ID: "demo-alan", Name: "Alan Turing", Email: "alan@example.com", CreatedAt: now, UpdatedAt: now},
	}
	for _, user := range users {
		if err := store.UpsertUser(ctx, user); err != nil {
			return fmt.Errorf("seed user %s: %w", user.ID, err)
		}
	}

	ws, err := workspace.CreateWorkspace(workspace.CreateWorkspaceInput{
		Name:      "Acme Studio",
		CreatorID: "demo-ada",
	}, func() time.Time { return now }, func() (string, error) { return demoWorkspaceID, nil })
	if err != nil {
		return fmt.Errorf("build workspace: %w", err)
	}
	admin, err := workspace.CreateMember(workspace.CreateMemberInput{
		WorkspaceID: ws.ID,
		UserID:      "demo-ada",
		Role:        workspace.RoleAdmin,
	}, func() time.Time { return now }, nil)
	if err != nil {
		return fmt.Errorf("build admin member: %w", err)
	}
	if err := store.CreateWorkspace(ctx, ws, admin); err != nil {
		return fmt.Errorf("seed workspace: %w", err)
	}
	logf(cfg, "workspace %s (invite code %s)", ws.Name, ws.InviteCode)

	for _, userID := range []string{"demo-grace", "demo-alan"} {
		member, err := workspace.CreateMember(workspace.CreateMemberInput{
			WorkspaceID: ws.ID,
			UserID:      userID,
			Role:        workspace.RoleMember,
		}, func() time.Time { return now }, nil)
		if err != nil {
			return fmt.Errorf("build member %s: %w", userID, err)
		}
		if err := store.CreateMember(ctx, member); err != nil {
			return fmt.Errorf("seed member %s: %w", userID, err)
		}
	}

	fixtures := map[string][]taskFixture{
		"Website Redesign": {
			{name: "Audit current pages", assignee: "demo-grace", status: board.StatusDone, dueIn: -72 * time.Hour},
			{name: "Draft new information architecture", assignee: "demo-ada", status: board.StatusInReview, dueIn: 24 * time.Hour},
			{name: "Build component library", description: "Buttons, forms, and cards first.", assignee: "demo-alan", status: board.StatusInProgress, dueIn: 96 * time.Hour},
			{name: "Rewrite landing page copy", status: board.StatusTodo, dueIn: 168 * time.Hour},
			{name: "Migrate blog posts", status: board.StatusBacklog},
			{name: "Set up analytics", status: board.StatusBacklog},
		},
		"Mobile App": {
			{name: "Prototype onboarding flow", assignee: "demo-grace", status: board.StatusInProgress, dueIn: 48 * time.Hour},
			{name: "Choose push notification provider", status: board.StatusTodo, dueIn: -24 * time.Hour},
			{name: "Offline mode spike", status: board.StatusBacklog},
		},
	}

	for projectName, tasks := range fixtures {
		project, err := board.CreateProject(board.CreateProjectInput{
			WorkspaceID: ws.ID,
			Name:        projectName,
		}, func() time.Time { return now }, nil)
		if err != nil {
			return fmt.Errorf("build project %s: %w", projectName, err)
		}
		if err := store.CreateProject(ctx, project); err != nil {
			return fmt.Errorf("seed project %s: %w", projectName, err)
		}
		logf(cfg, "project %s", project.Name)

		columnDepth := make(map[board.Status]int)
		for _, fixture := range tasks {
			input := board.CreateTaskInput{
				WorkspaceID: ws.ID,
				ProjectID:   project.ID,
				Name:        fixture.name,
				Description: fixture.description,
				AssigneeID:  fixture.assignee,
				Status:      fixture.status,
				Position:    ordering.PositionForIndex(columnDepth[fixture.status]),
			}
			if fixture.dueIn != 0 {
				input.DueDate = now.Add(fixture.dueIn)
			}
			task, err := board.CreateTask(input, func() time.Time { return now }, nil)
			if err != nil {
				return fmt.Errorf("build task %s: %w", fixture.name, err)
			}
			if err := store.CreateTask(ctx, task); err != nil {
				return fmt.Errorf("seed task %s: %w", fixture.name, err)
			}
			columnDepth[fixture.status]++
			logf(cfg, "  task %s [%s]", task.Name, board.StatusLabel(task.Status))
		}
	}

	return nil
}

func logf(cfg Config, format string, args ...any) {
	if !cfg.Verbose || cfg.Out == nil {
		return
	}
	fmt.Fprintf(cfg.Out, format+"\n", args...)
}
