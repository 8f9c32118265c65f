package httpapi

import (
	"net/http"
	"time"

	"github.com/louisbranch/boardflow/internal/board"
	"github.com/louisbranch/boardflow/internal/storage"
	"github.com/louisbranch/boardflow/internal/workspace"
	workspaceservice "github.com/louisbranch/boardflow/internal/workspace/service"
)

type workspacePayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ImageURL   string `json:"image_url,omitempty"`
	InviteCode string `json:"invite_code"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type memberPayload struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func workspaceToPayload(ws workspace.Workspace) workspacePayload {
	return workspacePayload{
		ID:         ws.ID,
		Name:       ws.Name,
		ImageURL:   ws.ImageURL,
		InviteCode: ws.InviteCode,
		CreatedAt:  ws.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  ws.UpdatedAt.Format(time.RFC3339),
	}
}

func memberToPayload(member workspace.Member) memberPayload {
	return memberPayload{
		ID:          member.ID,
		WorkspaceID: member.WorkspaceID,
		UserID:      member.UserID,
		Role:        workspace.RoleLabel(member.Role),
		CreatedAt:   member.CreatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) createWorkspace(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		ImageURL string `json:"image_url"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	ws, err := h.workspaces.Create(r.Context(), workspaceservice.CreateInput{
		Name:     body.Name,
		ImageURL: body.ImageURL,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, workspaceToPayload(ws))
}

func (h *Handler) listWorkspaces(w http.ResponseWriter, r *http.Request) {
	workspaces, err := h.workspaces.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	payload := struct {
		Workspaces []workspacePayload `json:"workspaces"`
	}{Workspaces: make([]workspacePayload, 0, len(workspaces))}
	for _, ws := range workspaces {
		payload.Workspaces = append(payload.Workspaces, workspaceToPayload(ws))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) getWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, err := h.workspaces.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workspaceToPayload(ws))
}

func (h *Handler) updateWorkspace(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		ImageURL string `json:"image_url"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	ws, err := h.workspaces.Update(r.Context(), workspaceservice.UpdateInput{
		WorkspaceID: r.PathValue("id"),
		Name:        body.Name,
		ImageURL:    body.ImageURL,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workspaceToPayload(ws))
}

func (h *Handler) deleteWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := h.workspaces.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) workspaceInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.workspaces.Info(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		ImageURL string `json:"image_url,omitempty"`
	}{ID: info.ID, Name: info.Name, ImageURL: info.ImageURL})
}

func (h *Handler) workspaceAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.workspaces.Analytics(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	byStatus := make(map[string]int, len(analytics.TasksByStatus))
	for status, count := range analytics.TasksByStatus {
		byStatus[board.StatusLabel(status)] = count
	}
	writeJSON(w, http.StatusOK, struct {
		ProjectCount       int            `json:"project_count"`
		MemberCount        int            `json:"member_count"`
		TaskCount          int            `json:"task_count"`
		AssignedTaskCount  int            `json:"assigned_task_count"`
		CompletedTaskCount int            `json:"completed_task_count"`
		OverdueTaskCount   int            `json:"overdue_task_count"`
		TasksByStatus      map[string]int `json:"tasks_by_status"`
	}{
		ProjectCount:       analytics.ProjectCount,
		MemberCount:        analytics.MemberCount,
		TaskCount:          analytics.TaskCount,
		AssignedTaskCount:  analytics.AssignedTaskCount,
		CompletedTaskCount: analytics.CompletedTaskCount,
		OverdueTaskCount:   analytics.OverdueTaskCount,
		TasksByStatus:      byStatus,
	})
}

func (h *Handler) joinWorkspace(w http.ResponseWriter, r *http.Request) {
	var body struct {
		InviteCode string `json:"invite_code"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	member, err := h.workspaces.Join(r.Context(), r.PathValue("id"), body.InviteCode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, memberToPayload(member))
}

func (h *Handler) resetInviteCode(w http.ResponseWriter, r *http.Request) {
	ws, err := h.workspaces.ResetInviteCode(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workspaceToPayload(ws))
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.workspaces.ListMembers(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	payload := struct {
		Members []memberPayload `json:"members"`
	}{Members: make([]memberPayload, 0, len(members))}
	for _, member := range members {
		payload.Members = append(payload.Members, memberWithUserToPayload(member))
	}
	writeJSON(w, http.StatusOK, payload)
}

func memberWithUserToPayload(member storage.MemberWithUser) memberPayload {
	payload := memberToPayload(member.Member)
	payload.Name = member.UserName
	payload.Email = member.UserEmail
	return payload
}

func (h *Handler) updateMember(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Role string `json:"role"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	member, err := h.workspaces.ChangeRole(r.Context(), r.PathValue("id"), workspace.RoleFromLabel(body.Role))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, memberToPayload(member))
}

func (h *Handler) deleteMember(w http.ResponseWriter, r *http.Request) {
	if err := h.workspaces.RemoveMember(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
