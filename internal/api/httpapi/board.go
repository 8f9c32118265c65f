package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/louisbranch/boardflow/internal/board"
	boardservice "github.com/louisbranch/boardflow/internal/board/service"
	apperrors "github.com/louisbranch/boardflow/internal/platform/errors"
)

type projectPayload struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	Name        string `json:"name"`
	ImageURL    string `json:"image_url,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type taskPayload struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	ProjectID   string `json:"project_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	AssigneeID  string `json:"assignee_id,omitempty"`
	Status      string `json:"status"`
	Position    int    `json:"position"`
	DueDate     string `json:"due_date,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func projectToPayload(project board.Project) projectPayload {
	return projectPayload{
		ID:          project.ID,
		WorkspaceID: project.WorkspaceID,
		Name:        project.Name,
		ImageURL:    project.ImageURL,
		CreatedAt:   project.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   project.UpdatedAt.Format(time.RFC3339),
	}
}

func taskToPayload(task board.Task) taskPayload {
	payload := taskPayload{
		ID:          task.ID,
		WorkspaceID: task.WorkspaceID,
		ProjectID:   task.ProjectID,
		Name:        task.Name,
		Description: task.Description,
		AssigneeID:  task.AssigneeID,
		Status:      board.StatusLabel(task.Status),
		Position:    task.Position,
		CreatedAt:   task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.Format(time.RFC3339),
	}
	if !task.DueDate.IsZero() {
		payload.DueDate = task.DueDate.Format(time.RFC3339)
	}
	return payload
}

// parseDueDate accepts an optional RFC3339 due date.
func parseDueDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	dueDate, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperrors.Wrap(apperrors.CodeTaskInvalidDueDate, "invalid due date", err)
	}
	return dueDate.UTC(), nil
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		WorkspaceID string `json:"workspace_id"`
		Name        string `json:"name"`
		ImageURL    string `json:"image_url"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	project, err := h.board.CreateProject(r.Context(), boardservice.CreateProjectInput{
		WorkspaceID: body.WorkspaceID,
		Name:        body.Name,
		ImageURL:    body.ImageURL,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, projectToPayload(project))
}

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.board.ListProjects(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	payload := struct {
		Projects []projectPayload `json:"projects"`
	}{Projects: make([]projectPayload, 0, len(projects))}
	for _, project := range projects {
		payload.Projects = append(payload.Projects, projectToPayload(project))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) getProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.board.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projectToPayload(project))
}

func (h *Handler) updateProject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		ImageURL string `json:"image_url"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	project, err := h.board.UpdateProject(r.Context(), boardservice.UpdateProjectInput{
		ProjectID: r.PathValue("id"),
		Name:      body.Name,
		ImageURL:  body.ImageURL,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projectToPayload(project))
}

func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.board.DeleteProject(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProjectID   string `json:"project_id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		AssigneeID  string `json:"assignee_id"`
		Status      string `json:"status"`
		DueDate     string `json:"due_date"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	dueDate, err := parseDueDate(body.DueDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.board.CreateTask(r.Context(), boardservice.CreateTaskInput{
		ProjectID:   body.ProjectID,
		Name:        body.Name,
		Description: body.Description,
		AssigneeID:  body.AssigneeID,
		Status:      board.StatusFromLabel(body.Status),
		DueDate:     dueDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, taskToPayload(task))
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	pageSize := 0
	if raw := query.Get("page_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, apperrors.New(apperrors.CodePageTokenInvalid, "invalid page size"))
			return
		}
		pageSize = parsed
	}

	tasks, nextToken, err := h.board.ListTasks(r.Context(), boardservice.ListTasksInput{
		WorkspaceID: r.PathValue("id"),
		Filter:      query.Get("filter"),
		PageSize:    pageSize,
		PageToken:   query.Get("page_token"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	payload := struct {
		Tasks         []taskPayload `json:"tasks"`
		NextPageToken string        `json:"next_page_token,omitempty"`
	}{Tasks: make([]taskPayload, 0, len(tasks)), NextPageToken: nextToken}
	for _, task := range tasks {
		payload.Tasks = append(payload.Tasks, taskToPayload(task))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.board.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, taskToPayload(task))
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProjectID   string `json:"project_id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		AssigneeID  string `json:"assignee_id"`
		Status      string `json:"status"`
		DueDate     string `json:"due_date"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	dueDate, err := parseDueDate(body.DueDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.board.UpdateTask(r.Context(), boardservice.UpdateTaskInput{
		TaskID:      r.PathValue("id"),
		ProjectID:   body.ProjectID,
		Name:        body.Name,
		Description: body.Description,
		AssigneeID:  body.AssigneeID,
		Status:      board.StatusFromLabel(body.Status),
		DueDate:     dueDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, taskToPayload(task))
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.board.DeleteTask(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) moveTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
		Index  int    `json:"index"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	placements, err := h.board.Move(r.Context(), boardservice.MoveInput{
		TaskID:   r.PathValue("id"),
		ToStatus: board.StatusFromLabel(body.Status),
		ToIndex:  body.Index,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	payload := struct {
		Placements []placementPayload `json:"placements"`
	}{Placements: make([]placementPayload, 0, len(placements))}
	for _, placement := range placements {
		payload.Placements = append(payload.Placements, placementPayload{
			TaskID:   placement.ID,
			Status:   board.StatusLabel(placement.Status),
			Position: placement.Position,
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

type placementPayload struct {
	TaskID   string `json:"task_id"`
	Status   string `json:"status"`
	Position int    `json:"position"`
}

func (h *Handler) reorderTasks(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tasks []placementPayload `json:"tasks"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	entries := make([]boardservice.ReorderEntry, 0, len(body.Tasks))
	for _, entry := range body.Tasks {
		entries = append(entries, boardservice.ReorderEntry{
			TaskID:   entry.TaskID,
			Status:   board.StatusFromLabel(entry.Status),
			Position: entry.Position,
		})
	}

	if err := h.board.Reorder(r.Context(), entries); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
