// Package ordering computes board positions for tasks. Positions are spaced
// integers so a single move usually rewrites only a handful of rows.
package ordering

import (
	"github.com/louisbranch/boardflow/internal/board"
	apperrors "github.com/louisbranch/boardflow/internal/platform/errors"
)

const (
	// Stride is the spacing between consecutive sibling positions.
	Stride = 1000
	// MaxPosition is the ceiling a computed position is clamped to.
	MaxPosition = 1_000_000
)

// TaskRef is a task's identity and stored position within a column.
type TaskRef struct {
	ID       string
	Position int
}

// Placement is a position assignment the store must persist.
type Placement struct {
	ID       string
	Status   board.Status
	Position int
}

// MoveInput describes a drag of one task to a new column index.
//
// To holds the destination column's tasks in stored order, without the moved
// task. From holds the source column's tasks in stored order, including the
// moved task. For a move within one column both slices describe the same
// column: To must still exclude the moved task.
type MoveInput struct {
	TaskID     string
	FromStatus board.Status
	ToStatus   board.Status
	ToIndex    int
	From       []TaskRef
	To         []TaskRef
}

// PositionForIndex returns the position for a task at the given zero-based
// column index, clamped to MaxPosition.
func PositionForIndex(index int) int {
	position := (index + 1) * Stride
	if position > MaxPosition {
		return MaxPosition
	}
	return position
}

// Move computes the minimal set of placements for a task move. The moved
// task is always included; siblings appear only when their stored position
// differs from the position their new index implies.
func Move(input MoveInput) ([]Placement, error) {
	if input.TaskID == "" {
		return nil, apperrors.New(apperrors.CodeNotFound, "task id is required")
	}
	if !board.ValidStatus(input.FromStatus) || !board.ValidStatus(input.ToStatus) {
		return nil, apperrors.New(apperrors.CodeTaskInvalidStatus, "invalid task status")
	}
	if input.ToIndex < 0 {
		return nil, apperrors.New(apperrors.CodeTaskInvalidPosition, "destination index must not be negative")
	}

	moved, found := findTask(input.From, input.TaskID)
	if !found {
		return nil, apperrors.New(apperrors.CodeNotFound, "task is not in the source column")
	}
	for _, ref := range input.To {
		if ref.ID == input.TaskID {
			return nil, apperrors.New(apperrors.CodeTaskInvalidPosition, "destination column already contains the task")
		}
	}

	destination := insertAt(input.To, moved, input.ToIndex)

	var placements []Placement
	for index, ref := range destination {
		implied := PositionForIndex(index)
		if ref.ID == input.TaskID {
			placements = append(placements, Placement{
				ID:       ref.ID,
				Status:   input.ToStatus,
				Position: implied,
			})
			continue
		}
		if ref.Position != implied {
			placements = append(placements, Placement{
				ID:       ref.ID,
				Status:   input.ToStatus,
				Position: implied,
			})
		}
	}

	if input.FromStatus != input.ToStatus {
		remaining := removeTask(input.From, input.TaskID)
		for index, ref := range remaining {
			implied := PositionForIndex(index)
			if ref.Position != implied {
				placements = append(placements, Placement{
					ID:       ref.ID,
					Status:   input.FromStatus,
					Position: implied,
				})
			}
		}
	}

	return placements, nil
}

func findTask(refs []TaskRef, id string) (TaskRef, bool) {
	for _, ref := range refs {
		if ref.ID == id {
			return ref, true
		}
	}
	return TaskRef{}, false
}

func removeTask(refs []TaskRef, id string) []TaskRef {
	out := make([]TaskRef, 0, len(refs))
	for _, ref := range refs {
		if ref.ID != id {
			out = append(out, ref)
		}
	}
	return out
}

func insertAt(refs []TaskRef, task TaskRef, index int) []TaskRef {
	if index > len(refs) {
		index = len(refs)
	}
	out := make([]TaskRef, 0, len(refs)+1)
	out = append(out, refs[:index]...)
	out = append(out, task)
	out = append(out, refs[index:]...)
	return out
}
