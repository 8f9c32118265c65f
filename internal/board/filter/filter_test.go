package filter

import (
	"testing"
	"time"
)

func TestParseTaskFilterEmpty(t *testing.T) {
	t.Parallel()

	cond, err := ParseTaskFilter("   ")
	if err != nil {
		t.Fatalf("parse empty filter: %v", err)
	}
	if cond.Clause != "" || len(cond.Params) != 0 {
		t.Fatalf("expected empty condition, got %+v", cond)
	}
}

func TestParseTaskFilterEquality(t *testing.T) {
	t.Parallel()

	cond, err := ParseTaskFilter(`project_id = "proj-1"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "project_id = ?" {
		t.Fatalf("clause = %q", cond.Clause)
	}
	if len(cond.Params) != 1 || cond.Params[0] != "proj-1" {
		t.Fatalf("params = %+v", cond.Params)
	}
}

func TestParseTaskFilterStatusLabel(t *testing.T) {
	t.Parallel()

	cond, err := ParseTaskFilter(`status = "IN_PROGRESS"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "status = ?" {
		t.Fatalf("clause = %q", cond.Clause)
	}
	if len(cond.Params) != 1 || cond.Params[0] != int64(3) {
		t.Fatalf("params = %+v, want stored status value", cond.Params)
	}
}

func TestParseTaskFilterUnknownStatus(t *testing.T) {
	t.Parallel()

	if _, err := ParseTaskFilter(`status = "ARCHIVED"`); err == nil {
		t.Fatal("expected error for unknown status label")
	}
}

func TestParseTaskFilterConjunction(t *testing.T) {
	t.Parallel()

	cond, err := ParseTaskFilter(`project_id = "proj-1" AND assignee_id != "user-2"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "(project_id = ? AND assignee_id != ?)" {
		t.Fatalf("clause = %q", cond.Clause)
	}
	if len(cond.Params) != 2 {
		t.Fatalf("params = %+v", cond.Params)
	}
}

func TestParseTaskFilterDueDate(t *testing.T) {
	t.Parallel()

	cond, err := ParseTaskFilter(`due_date < timestamp("2026-04-01T00:00:00Z")`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "due_date < ?" {
		t.Fatalf("clause = %q", cond.Clause)
	}
	want := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	if len(cond.Params) != 1 || cond.Params[0] != want {
		t.Fatalf("params = %+v, want unix millis %d", cond.Params, want)
	}
}

func TestParseTaskFilterUnknownField(t *testing.T) {
	t.Parallel()

	if _, err := ParseTaskFilter(`priority = "high"`); err == nil {
		t.Fatal("expected error for undeclared field")
	}
}
