package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/workroom.space/internal/services/provisioner/domain"
)

// stubRemote implements every remote provider with canned success, with
// optional failure hooks for the steps a test wants to break.
type stubRemote struct {
	chatErr  error
	filesErr error
}

func (s *stubRemote) EnsureGroup(context.Context, string) error { return nil }
func (s *stubRemote) EnsureUser(context.Context, string) error { return nil }
func (s *stubRemote) AddUserToGroup(context.Context, string, string) error { return nil }
func (s *stubRemote) RemoveUserFromGroup(context.Context, string, string) error {
	return nil
}

func (s *stubRemote) EnsureFolder(_ context.Context, name string) (domain.FolderInfo, error) {
	if s.filesErr != nil {
		return domain.FolderInfo{}, s.filesErr
	}
	return domain.FolderInfo{URL: "https://cloud/files/" + name, Path: "/" + name}, nil
}

func (s *stubRemote) EnsureSubfolder(context.Context, string, string) error { return nil }
func (s *stubRemote) ShareWithGroup(context.Context, string, string, int) error {
	return nil
}
func (s *stubRemote) PutBrief(context.Context, string) error { return nil }

func (s *stubRemote) EnsureRoom(context.Context, string, []string) (domain.ChatRoom, error) {
	if s.chatErr != nil {
		return domain.ChatRoom{}, s.chatErr
	}
	return domain.ChatRoom{Token: "t1", URL: "https://cloud/call/t1"}, nil
}
func (s *stubRemote) PostWelcome(context.Context, string) error { return nil }

func (s *stubRemote) EnsureCalendar(_ context.Context, slug string, _ string) (string, error) {
	return "https://cloud/calendars/" + slug, nil
}
func (s *stubRemote) AddKickoffEvent(context.Context, string, string, time.Time) error {
	return nil
}

func (s *stubRemote) CreateBoard(context.Context, string) (domain.BoardRef, error) {
	return domain.BoardRef{ID: 1, URL: "https://cloud/boards/1"}, nil
}
func (s *stubRemote) CreateStack(context.Context, int64, string) (int64, error) { return 1, nil }
func (s *stubRemote) CreateCard(context.Context, int64, int64, string) error { return nil }

func (s *stubRemote) Notify(context.Context, string, string, string) error { return nil }

type stubMailer struct{}

func (stubMailer) Send(context.Context, []string, string, string) error { return nil }

type stubRegistry struct {
	projects map[string]domain.Project
}

func (s *stubRegistry) GetProject(_ context.Context, projectID string) (domain.Project, bool, error) {
	project, ok := s.projects[projectID]
	return project, ok, nil
}

func (s *stubRegistry) ListAcceptedAssignments(context.Context, string) ([]domain.Assignment, error) {
	return nil, nil
}

func (s *stubRegistry) UpsertWorkspace(context.Context, domain.WorkspaceRecord) error {
	return nil
}

func newTestHandler(t *testing.T, remote *stubRemote, registry *stubRegistry) *Handler {
	t.Helper()
	if remote == nil {
		remote = &stubRemote{}
	}
	if registry == nil {
		registry = &stubRegistry{projects: map[string]domain.Project{}}
	}
	service := domain.NewService(domain.Dependencies{
		Identity: remote,
		Files:    remote,
		Chat:     remote,
		Calendar: remote,
		Board:    remote,
		Notifier: remote,
		Mailer:   stubMailer{},
		Registry: registry,
		Logf:     t.Logf,
	})
	handler := NewHandler(service)
	handler.logf = t.Logf
	return handler
}

func postAction(t *testing.T, handler *Handler, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	var decoded map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, decoded
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, nil, nil)
	handler.clock = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }

	rec, body := postAction(t, handler, `{"action":"health-check"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok response, got %v", body)
	}
	if body["ts"] != "2026-08-30T12:00:00Z" {
		t.Fatalf("unexpected timestamp %v", body["ts"])
	}
	if body["correlationId"] == "" || body["correlationId"] == nil {
		t.Fatal("expected correlation id")
	}
}

func TestInvalidJSON(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, nil, nil)

	rec, body := postAction(t, handler, `{"action":`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body["code"] != "INVALID_JSON" {
		t.Fatalf("expected INVALID_JSON, got %v", body["code"])
	}
	if body["ok"] != false {
		t.Fatalf("expected ok=false, got %v", body)
	}
}

func TestUnknownAction(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, nil, nil)

	rec, body := postAction(t, handler, `{"action":"reboot"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body["code"] != "UNKNOWN_ACTION" {
		t.Fatalf("expected UNKNOWN_ACTION, got %v", body["code"])
	}
}

func TestProjectStart(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, nil, nil)

	payload := `{
		"action": "project-start",
		"projectId": "p1",
		"projectTitle": "Website Redesign",
		"members": {"client": ["c@x.com"], "resources": ["r1@x.com"]}
	}`
	rec, body := postAction(t, handler, payload, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	nextcloud, ok := body["nextcloud"].(map[string]any)
	if !ok {
		t.Fatalf("expected nextcloud payload, got %v", body)
	}
	if nextcloud["filesUrl"] == "" || nextcloud["filesUrl"] == nil {
		t.Fatalf("expected files url, got %v", nextcloud)
	}
	if nextcloud["chatUrl"] != "https://cloud/call/t1" {
		t.Fatalf("expected chat url, got %v", nextcloud["chatUrl"])
	}
}

func TestProjectStartChatFailureNullsChatURL(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, &stubRemote{chatErr: errors.New("talk down")}, nil)

	payload := `{
		"action": "project-start",
		"projectId": "p1",
		"projectTitle": "Website Redesign",
		"members": {"client": ["c@x.com"], "resources": ["r1@x.com"]}
	}`
	rec, body := postAction(t, handler, payload, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("optional failure must keep 200, got %d", rec.Code)
	}
	nextcloud := body["nextcloud"].(map[string]any)
	if nextcloud["chatUrl"] != nil {
		t.Fatalf("expected null chatUrl, got %v", nextcloud["chatUrl"])
	}
	if nextcloud["filesUrl"] == nil {
		t.Fatal("filesUrl must survive optional failure")
	}
}

func TestProjectStartMandatoryFailure(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, &stubRemote{filesErr: errors.New("webdav down")}, nil)

	payload := `{
		"action": "project-start",
		"projectId": "p1",
		"projectTitle": "Website Redesign",
		"members": {"client": ["c@x.com"], "resources": ["r1@x.com"]}
	}`
	rec, body := postAction(t, handler, payload, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body["code"] != "UNEXPECTED_ERROR" {
		t.Fatalf("expected UNEXPECTED_ERROR, got %v", body["code"])
	}
}

func TestProjectStartMissingFields(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, nil, nil)

	rec, body := postAction(t, handler, `{"action":"project-start","projectTitle":"X"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body["code"] != "INVALID_INPUT" {
		t.Fatalf("expected INVALID_INPUT, got %v", body["code"])
	}
}

func TestUserSwap(t *testing.T) {
	t.Parallel()

	registry := &stubRegistry{projects: map[string]domain.Project{
		"p1": {ID: "p1", Title: "Website Redesign", ClientEmail: "c@x.com"},
	}}
	handler := newTestHandler(t, nil, registry)

	payload := `{"action":"user-swap","projectId":"p1","from":"old@x.com","to":"new@x.com","role":"resource"}`
	rec, body := postAction(t, handler, payload, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body["ok"] != true {
		t.Fatalf("expected ok response, got %v", body)
	}
}

func TestUserSwapUnknownProject(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, nil, nil)

	payload := `{"action":"user-swap","projectId":"ghost","from":"a@x.com","to":"b@x.com","role":"client"}`
	rec, body := postAction(t, handler, payload, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if body["code"] != "PROJECT_NOT_FOUND" {
		t.Fatalf("expected PROJECT_NOT_FOUND, got %v", body["code"])
	}
}

func TestUserSwapInvalidRole(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, nil, nil)

	payload := `{"action":"user-swap","projectId":"p1","from":"a@x.com","to":"b@x.com","role":"manager"}`
	rec, body := postAction(t, handler, payload, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body["code"] != "INVALID_INPUT" {
		t.Fatalf("expected INVALID_INPUT, got %v", body["code"])
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, nil, nil)

	req := httptest.NewRequest("OPTIONS", "/", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("expected wildcard CORS origin")
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "POST") {
		t.Fatal("expected POST in allowed methods")
	}
}

func TestCorrelationIDsAreUnique(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, nil, nil)

	_, first := postAction(t, handler, `{"action":"health-check"}`, nil)
	_, second := postAction(t, handler, `{"action":"health-check"}`, nil)
	if first["correlationId"] == second["correlationId"] {
		t.Fatalf("expected unique correlation ids, both %v", first["correlationId"])
	}
}
