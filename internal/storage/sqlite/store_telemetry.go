package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/louisbranch/boardflow/internal/storage"
)

// AppendEvent inserts one telemetry event row.
func (s *Store) AppendEvent(ctx context.Context, event storage.TelemetryEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	eventID := strings.TrimSpace(event.ID)
	if eventID == "" {
		return fmt.Errorf("event id is required")
	}
	if strings.TrimSpace(event.Name) == "" {
		return fmt.Errorf("event name is required")
	}

	metadata := "{}"
	if len(event.Metadata) > 0 {
		raw, err := json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("encode event metadata: %w", err)
		}
		metadata = string(raw)
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO telemetry_events (id, name, workspace_id, actor_id, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		eventID,
		strings.TrimSpace(event.Name),
		strings.TrimSpace(event.WorkspaceID),
		strings.TrimSpace(event.ActorID),
		metadata,
		toMillis(event.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// ListEvents returns a workspace's events, newest first.
func (s *Store) ListEvents(ctx context.Context, workspaceID string, limit int) ([]storage.TelemetryEvent, error) {
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
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, name, workspace_id, actor_id, metadata, created_at
		   FROM telemetry_events
		  WHERE workspace_id = ?
		  ORDER BY created_at DESC, id DESC
		  LIMIT ?`,
		workspaceID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []storage.TelemetryEvent
	for rows.Next() {
		var event storage.TelemetryEvent
		var metadata string
		var createdAt int64
		if err := rows.Scan(
			&event.ID,
			&event.Name,
			&event.WorkspaceID,
			&event.ActorID,
			&metadata,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		if metadata != "" && metadata != "{}" {
			if err := json.Unmarshal([]byte(metadata), &event.Metadata); err != nil {
				return nil, fmt.Errorf("decode event metadata: %w", err)
			}
		}
		event.CreatedAt = fromMillis(createdAt)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}
