// Package telemetry records domain events for later analysis.
package telemetry

import (
	"context"
	"time"

	"github.com/louisbranch/boardflow/internal/platform/id"
	"github.com/louisbranch/boardflow/internal/storage"
)

// Event names emitted by the services.
const (
	EventWorkspaceCreated = "workspace.created"
	EventWorkspaceJoined  = "workspace.joined"
	EventMemberRoleSet    = "member.role_set"
	EventMemberRemoved    = "member.removed"
	EventTaskMoved        = "task.moved"
	EventTasksReordered   = "tasks.reordered"
)

// Emitter records telemetry events.
type Emitter struct {
	store       storage.TelemetryStore
	clock       func() time.Time
	idGenerator func() (string, error)
}

// NewEmitter creates a new telemetry emitter.
func NewEmitter(store storage.TelemetryStore) *Emitter {
	return &Emitter{store: store, clock: time.Now, idGenerator: id.NewID}
}

// Emit records a telemetry event. It is a no-op when the store is nil.
func (e *Emitter) Emit(ctx context.Context, evt storage.TelemetryEvent) error {
	if e == nil || e.store == nil {
		return nil
	}
	if evt.ID == "" {
		gen := e.idGenerator
		if gen == nil {
			gen = id.NewID
		}
		eventID, err := gen()
		if err != nil {
			return err
		}
		evt.ID = eventID
	}
	if evt.CreatedAt.IsZero() {
		if e.clock == nil {
			evt.CreatedAt = time.Now().UTC()
		} else {
			evt.CreatedAt = e.clock().UTC()
		}
	}
	return e.store.AppendEvent(ctx, evt)
}
