package httpapi_test

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/boardflow/internal/api/httpapi"
	"github.com/louisbranch/boardflow/internal/auth/session"
	boardservice "github.com/louisbranch/boardflow/internal/board/service"
	"github.com/louisbranch/boardflow/internal/storage/sqlite"
	"github.com/louisbranch/boardflow/internal/telemetry"
	workspaceservice "github.com/louisbranch/boardflow/internal/workspace/service"
)

const (
	testIssuer   = "boardflow-id"
	testAudience = "boardflow"
)

type testAPI struct {
	handler http.Handler
	signKey ed25519.PrivateKey
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "boardflow.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	emitter := telemetry.NewEmitter(store)
	handler := httpapi.NewHandler(httpapi.Config{
		Workspaces: workspaceservice.NewService(store, emitter),
		Board:      boardservice.NewService(store, emitter),
		Users:      store,
		Sessions: session.Config{
			Issuer:   testIssuer,
			Audience: testAudience,
			Key:      pub,
		},
	})
	return &testAPI{handler: handler, signKey: priv}
}

// token mints a short-lived session token for the given user.
func (api *testAPI) token(t *testing.T, userID, name, email string) string {
	t.Helper()

	header, err := json.Marshal(map[string]any{"alg": "EdDSA", "typ": "JWT"})
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}
	payload, err := json.Marshal(map[string]any{
		"iss":   testIssuer,
		"aud":   testAudience,
		"sub":   userID,
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
		"name":  name,
		"email": email,
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	signingInput := base64.RawURLEncoding.EncodeToString(header) + "." + base64.RawURLEncoding.EncodeToString(payload)
	signature := ed25519.Sign(api.signKey, []byte(signingInput))
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(signature)
}

func (api *testAPI) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestHealthzOpen(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for healthz without a token, got %d", rec.Code)
	}
}

func TestSessionRequired(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/v1/workspaces", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}
	var envelope errorEnvelope
	decodeInto(t, rec, &envelope)
	if envelope.Error.Code != "UNAUTHENTICATED" {
		t.Fatalf("expected UNAUTHENTICATED code, got %s", envelope.Error.Code)
	}
}

func TestWorkspaceLifecycle(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	token := api.token(t, "user-ada", "Ada", "ada@example.com")

	rec := api.do(t, http.MethodPost, "/v1/workspaces", token, map[string]any{"name": "Atelier"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create workspace: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var ws struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		InviteCode string `json:"invite_code"`
	}
	decodeInto(t, rec, &ws)
	if ws.ID == "" || ws.InviteCode == "" {
		t.Fatal("expected workspace id and invite code to be set")
	}

	rec = api.do(t, http.MethodGet, "/v1/workspaces", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list workspaces: expected 200, got %d", rec.Code)
	}
	var listed struct {
		Workspaces []struct {
			ID string `json:"id"`
		} `json:"workspaces"`
	}
	decodeInto(t, rec, &listed)
	if len(listed.Workspaces) != 1 || listed.Workspaces[0].ID != ws.ID {
		t.Fatalf("expected the created workspace in the listing, got %+v", listed)
	}

	rec = api.do(t, http.MethodPatch, "/v1/workspaces/"+ws.ID, token, map[string]any{"name": "Atelier 2"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update workspace: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated struct {
		Name string `json:"name"`
	}
	decodeInto(t, rec, &updated)
	if updated.Name != "Atelier 2" {
		t.Fatalf("expected renamed workspace, got %s", updated.Name)
	}

	rec = api.do(t, http.MethodGet, "/v1/workspaces/"+ws.ID+"/members", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list members: expected 200, got %d", rec.Code)
	}
	var members struct {
		Members []struct {
			UserID string `json:"user_id"`
			Role   string `json:"role"`
			Name   string `json:"name"`
		} `json:"members"`
	}
	decodeInto(t, rec, &members)
	if len(members.Members) != 1 {
		t.Fatalf("expected one member, got %d", len(members.Members))
	}
	if members.Members[0].Role != "ADMIN" {
		t.Fatalf("expected creator to be ADMIN, got %s", members.Members[0].Role)
	}
	if members.Members[0].Name != "Ada" {
		t.Fatalf("expected profile name mirrored from the session, got %q", members.Members[0].Name)
	}

	rec = api.do(t, http.MethodPost, "/v1/workspaces/"+ws.ID+"/invite-code/reset", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset invite code: expected 200, got %d", rec.Code)
	}
	var rotated struct {
		InviteCode string `json:"invite_code"`
	}
	decodeInto(t, rec, &rotated)
	if rotated.InviteCode == ws.InviteCode {
		t.Fatal("expected invite code to change after reset")
	}
}

func TestJoinWorkspace(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	adaToken := api.token(t, "user-ada", "Ada", "ada@example.com")
	graceToken := api.token(t, "user-grace", "Grace", "grace@example.com")

	rec := api.do(t, http.MethodPost, "/v1/workspaces", adaToken, map[string]any{"name": "Atelier"})
	var ws struct {
		ID         string `json:"id"`
		InviteCode string `json:"invite_code"`
	}
	decodeInto(t, rec, &ws)

	rec = api.do(t, http.MethodGet, "/v1/workspaces/"+ws.ID+"/info", graceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("workspace info should be visible pre-join, got %d", rec.Code)
	}

	rec = api.do(t, http.MethodPost, "/v1/workspaces/"+ws.ID+"/join", graceToken, map[string]any{"invite_code": "WRONGCOD"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("join with wrong code: expected 400, got %d", rec.Code)
	}
	var envelope errorEnvelope
	decodeInto(t, rec, &envelope)
	if envelope.Error.Code != "INVITE_CODE_INVALID" {
		t.Fatalf("expected INVITE_CODE_INVALID, got %s", envelope.Error.Code)
	}

	rec = api.do(t, http.MethodPost, "/v1/workspaces/"+ws.ID+"/join", graceToken, map[string]any{"invite_code": ws.InviteCode})
	if rec.Code != http.StatusCreated {
		t.Fatalf("join: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var member struct {
		Role   string `json:"role"`
		UserID string `json:"user_id"`
	}
	decodeInto(t, rec, &member)
	if member.Role != "MEMBER" || member.UserID != "user-grace" {
		t.Fatalf("expected grace to join as MEMBER, got %+v", member)
	}

	rec = api.do(t, http.MethodPost, "/v1/workspaces/"+ws.ID+"/join", graceToken, map[string]any{"invite_code": ws.InviteCode})
	if rec.Code != http.StatusConflict {
		t.Fatalf("second join: expected 409, got %d", rec.Code)
	}
	decodeInto(t, rec, &envelope)
	if envelope.Error.Code != "ALREADY_MEMBER" {
		t.Fatalf("expected ALREADY_MEMBER, got %s", envelope.Error.Code)
	}
}

func TestLastAdminGuard(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	token := api.token(t, "user-ada", "Ada", "ada@example.com")

	rec := api.do(t, http.MethodPost, "/v1/workspaces", token, map[string]any{"name": "Atelier"})
	var ws struct {
		ID string `json:"id"`
	}
	decodeInto(t, rec, &ws)

	rec = api.do(t, http.MethodGet, "/v1/workspaces/"+ws.ID+"/members", token, nil)
	var members struct {
		Members []struct {
			ID string `json:"id"`
		} `json:"members"`
	}
	decodeInto(t, rec, &members)
	if len(members.Members) != 1 {
		t.Fatalf("expected one member, got %d", len(members.Members))
	}

	rec = api.do(t, http.MethodPatch, "/v1/members/"+members.Members[0].ID, token, map[string]any{"role": "MEMBER"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("demote sole admin: expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope errorEnvelope
	decodeInto(t, rec, &envelope)
	if envelope.Error.Code != "LAST_ADMIN" {
		t.Fatalf("expected LAST_ADMIN, got %s", envelope.Error.Code)
	}

	rec = api.do(t, http.MethodDelete, "/v1/members/"+members.Members[0].ID, token, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("remove sole member: expected 409, got %d", rec.Code)
	}
	decodeInto(t, rec, &envelope)
	if envelope.Error.Code != "LAST_MEMBER" {
		t.Fatalf("expected LAST_MEMBER, got %s", envelope.Error.Code)
	}
}

func TestTaskBoardFlow(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	token := api.token(t, "user-ada", "Ada", "ada@example.com")

	rec := api.do(t, http.MethodPost, "/v1/workspaces", token, map[string]any{"name": "Atelier"})
	var ws struct {
		ID string `json:"id"`
	}
	decodeInto(t, rec, &ws)

	rec = api.do(t, http.MethodPost, "/v1/projects", token, map[string]any{
		"workspace_id": ws.ID,
		"name":         "Launch",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var project struct {
		ID string `json:"id"`
	}
	decodeInto(t, rec, &project)

	var taskIDs []string
	for _, name := range []string{"Design", "Build", "Ship"} {
		rec = api.do(t, http.MethodPost, "/v1/tasks", token, map[string]any{
			"project_id": project.ID,
			"name":       name,
			"status":     "BACKLOG",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create task %s: expected 201, got %d: %s", name, rec.Code, rec.Body.String())
		}
		var task struct {
			ID       string `json:"id"`
			Position int    `json:"position"`
		}
		decodeInto(t, rec, &task)
		taskIDs = append(taskIDs, task.ID)
		if want := len(taskIDs) * 1000; task.Position != want {
			t.Fatalf("task %s: expected position %d, got %d", name, want, task.Position)
		}
	}

	rec = api.do(t, http.MethodPost, "/v1/tasks/"+taskIDs[0]+"/move", token, map[string]any{
		"status": "TODO",
		"index":  0,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("move task: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var moved struct {
		Placements []struct {
			TaskID   string `json:"task_id"`
			Status   string `json:"status"`
			Position int    `json:"position"`
		} `json:"placements"`
	}
	decodeInto(t, rec, &moved)
	found := false
	for _, placement := range moved.Placements {
		if placement.TaskID == taskIDs[0] {
			found = true
			if placement.Status != "TODO" || placement.Position != 1000 {
				t.Fatalf("expected moved task at TODO position 1000, got %+v", placement)
			}
		}
	}
	if !found {
		t.Fatal("expected moved task in the placement diff")
	}

	rec = api.do(t, http.MethodGet, "/v1/workspaces/"+ws.ID+"/tasks?filter="+`status+%3D+%22TODO%22`, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("filtered list: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var filtered struct {
		Tasks []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"tasks"`
	}
	decodeInto(t, rec, &filtered)
	if len(filtered.Tasks) != 1 || filtered.Tasks[0].ID != taskIDs[0] {
		t.Fatalf("expected only the moved task under TODO, got %+v", filtered.Tasks)
	}

	rec = api.do(t, http.MethodGet, "/v1/workspaces/"+ws.ID+"/tasks?page_size=2", token, nil)
	var page struct {
		Tasks []struct {
			ID string `json:"id"`
		} `json:"tasks"`
		NextPageToken string `json:"next_page_token"`
	}
	decodeInto(t, rec, &page)
	if len(page.Tasks) != 2 || page.NextPageToken == "" {
		t.Fatalf("expected a full first page with a next token, got %+v", page)
	}
	rec = api.do(t, http.MethodGet, "/v1/workspaces/"+ws.ID+"/tasks?page_size=2&page_token="+page.NextPageToken, token, nil)
	var rest struct {
		Tasks []struct {
			ID string `json:"id"`
		} `json:"tasks"`
		NextPageToken string `json:"next_page_token"`
	}
	decodeInto(t, rec, &rest)
	if len(rest.Tasks) != 1 || rest.NextPageToken != "" {
		t.Fatalf("expected the final page to drain, got %+v", rest)
	}
}

func TestNonMemberForbidden(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	adaToken := api.token(t, "user-ada", "Ada", "ada@example.com")
	graceToken := api.token(t, "user-grace", "Grace", "grace@example.com")

	rec := api.do(t, http.MethodPost, "/v1/workspaces", adaToken, map[string]any{"name": "Atelier"})
	var ws struct {
		ID string `json:"id"`
	}
	decodeInto(t, rec, &ws)

	rec = api.do(t, http.MethodGet, "/v1/workspaces/"+ws.ID, graceToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a non-member, got %d", rec.Code)
	}
	var envelope errorEnvelope
	decodeInto(t, rec, &envelope)
	if envelope.Error.Code != "WORKSPACE_NOT_MEMBER" {
		t.Fatalf("expected WORKSPACE_NOT_MEMBER, got %s", envelope.Error.Code)
	}
}

func TestErrorLocalization(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	adaToken := api.token(t, "user-ada", "Ada", "ada@example.com")
	graceToken := api.token(t, "user-grace", "Grace", "grace@example.com")

	rec := api.do(t, http.MethodPost, "/v1/workspaces", adaToken, map[string]any{"name": "Atelier"})
	var ws struct {
		ID string `json:"id"`
	}
	decodeInto(t, rec, &ws)

	req := httptest.NewRequest(http.MethodPost, "/v1/workspaces/"+ws.ID+"/join",
		bytes.NewReader([]byte(`{"invite_code":"WRONGCOD"}`)))
	req.Header.Set("Authorization", "Bearer "+graceToken)
	req.Header.Set("Accept-Language", "ru-RU")
	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var envelope errorEnvelope
	decodeInto(t, rec, &envelope)
	if envelope.Error.Message != "неверный код приглашения" {
		t.Fatalf("expected the ru-RU message, got %q", envelope.Error.Message)
	}
}

func TestMalformedBody(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	token := api.token(t, "user-ada", "Ada", "ada@example.com")

	req := httptest.NewRequest(http.MethodPost, "/v1/workspaces", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
	var envelope errorEnvelope
	decodeInto(t, rec, &envelope)
	if envelope.Error.Code != "MALFORMED_BODY" {
		t.Fatalf("expected MALFORMED_BODY, got %s", envelope.Error.Code)
	}
}

func TestInvalidDueDateRejected(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	token := api.token(t, "user-ada", "Ada", "ada@example.com")

	rec := api.do(t, http.MethodPost, "/v1/workspaces", token, map[string]any{"name": "Atelier"})
	var ws struct {
		ID string `json:"id"`
	}
	decodeInto(t, rec, &ws)

	rec = api.do(t, http.MethodPost, "/v1/projects", token, map[string]any{
		"workspace_id": ws.ID,
		"name":         "Launch",
	})
	var project struct {
		ID string `json:"id"`
	}
	decodeInto(t, rec, &project)

	rec = api.do(t, http.MethodPost, "/v1/tasks", token, map[string]any{
		"project_id": project.ID,
		"name":       "Design",
		"status":     "BACKLOG",
		"due_date":   "next tuesday",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad due date, got %d", rec.Code)
	}
	var envelope errorEnvelope
	decodeInto(t, rec, &envelope)
	if envelope.Error.Code != "TASK_INVALID_DUE_DATE" {
		t.Fatalf("expected TASK_INVALID_DUE_DATE, got %s", envelope.Error.Code)
	}
}
