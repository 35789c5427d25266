package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskManagement/internal/config"
	"taskManagement/internal/testutil"
	"taskManagement/repository"
)

const testSecret = "test-secret"

// newTestServer wires a Server against a fresh in-memory database and returns
// its router for httptest-driven requests.
func newTestServer(t *testing.T, name string) http.Handler {
	t.Helper()
	d := testutil.OpenInMemoryDB(t, name)
	s := &Server{
		Users: repository.NewUserRepository(d),
		Tasks: repository.NewTaskRepository(d),
		Cfg: &config.Config{
			Auth: config.AuthConfig{JWTSecret: testSecret, TokenTTL: time.Hour},
		},
	}
	return s.Router()
}

// do performs one JSON request against the router and decodes the response body.
func do(t *testing.T, h http.Handler, method, path, token string, body any) (int, map[string]json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	r := httptest.NewRequest(method, path, &buf)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	out := map[string]json.RawMessage{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w.Code, out
}

func login(t *testing.T, h http.Handler, username, password string) string {
	t.Helper()
	code, body := do(t, h, http.MethodPost, "/api/login", "", map[string]string{
		"username": username, "password": password,
	})
	if code != http.StatusOK {
		t.Fatalf("login %s: code=%d body=%v", username, code, body)
	}
	var token string
	if err := json.Unmarshal(body["access_token"], &token); err != nil || token == "" {
		t.Fatalf("login %s: missing access_token: %v", username, err)
	}
	return token
}

func register(t *testing.T, h http.Handler, username, password string) {
	t.Helper()
	code, body := do(t, h, http.MethodPost, "/api/register", "", map[string]string{
		"username": username, "password": password,
	})
	if code != http.StatusCreated {
		t.Fatalf("register %s: code=%d body=%v", username, code, body)
	}
}

type taskJSON struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Priority    int     `json:"priority"`
	DueDate     *string `json:"due_date"`
	Completed   bool    `json:"completed"`
}

func listTasks(t *testing.T, h http.Handler, token string) []taskJSON {
	t.Helper()
	code, body := do(t, h, http.MethodGet, "/api/tasks", token, nil)
	if code != http.StatusOK {
		t.Fatalf("list tasks: code=%d body=%v", code, body)
	}
	var tasks []taskJSON
	if err := json.Unmarshal(body["tasks"], &tasks); err != nil {
		t.Fatalf("decode tasks: %v", err)
	}
	return tasks
}

func TestRegisterLoginCreateList(t *testing.T) {
	h := newTestServer(t, "httpflow")

	register(t, h, "alice", "pw1")
	token := login(t, h, "alice", "pw1")

	code, _ := do(t, h, http.MethodPost, "/api/tasks", token, map[string]any{
		"title":    "Buy milk",
		"due_date": "2024-06-01 10:00:00",
	})
	if code != http.StatusCreated {
		t.Fatalf("create task: code=%d", code)
	}

	tasks := listTasks(t, h, token)
	if len(tasks) != 1 {
		t.Fatalf("expected one task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.Title != "Buy milk" || got.Completed || got.Priority != 0 {
		t.Fatalf("unexpected task: %+v", got)
	}
	if got.DueDate == nil || *got.DueDate != "2024-06-01 10:00:00" {
		t.Fatalf("due date mismatch: %+v", got.DueDate)
	}
	if got.Description != nil {
		t.Fatalf("expected null description, got %q", *got.Description)
	}
}

func TestRegister_Validation(t *testing.T) {
	h := newTestServer(t, "httpregister")

	// Missing fields
	code, _ := do(t, h, http.MethodPost, "/api/register", "", map[string]string{"username": "alice"})
	if code != http.StatusBadRequest {
		t.Fatalf("missing password: code=%d", code)
	}

	// Duplicate username maps to 400, matching the documented contract
	register(t, h, "alice", "pw1")
	code, _ = do(t, h, http.MethodPost, "/api/register", "", map[string]string{
		"username": "alice", "password": "pw2",
	})
	if code != http.StatusBadRequest {
		t.Fatalf("duplicate username: code=%d", code)
	}
}

func TestLogin_Errors(t *testing.T) {
	h := newTestServer(t, "httplogin")
	register(t, h, "alice", "pw1")

	code, _ := do(t, h, http.MethodPost, "/api/login", "", map[string]string{"username": "alice"})
	if code != http.StatusBadRequest {
		t.Fatalf("missing password: code=%d", code)
	}
	code, _ = do(t, h, http.MethodPost, "/api/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	if code != http.StatusUnauthorized {
		t.Fatalf("wrong password: code=%d", code)
	}
	code, _ = do(t, h, http.MethodPost, "/api/login", "", map[string]string{
		"username": "nobody", "password": "pw1",
	})
	if code != http.StatusUnauthorized {
		t.Fatalf("unknown user: code=%d", code)
	}
}

func TestLogout_AcknowledgesButKeepsTokenValid(t *testing.T) {
	h := newTestServer(t, "httplogout")
	register(t, h, "alice", "pw1")
	token := login(t, h, "alice", "pw1")

	code, _ := do(t, h, http.MethodPost, "/api/logout", token, nil)
	if code != http.StatusOK {
		t.Fatalf("logout: code=%d", code)
	}
	// Stateless tokens: the same token still works after logout.
	if tasks := listTasks(t, h, token); tasks == nil {
		t.Fatalf("token rejected after logout")
	}

	code, _ = do(t, h, http.MethodPost, "/api/logout", "", nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("logout without token: code=%d", code)
	}
}

func TestCreateTask_Validation(t *testing.T) {
	h := newTestServer(t, "httpcreate")
	register(t, h, "alice", "pw1")
	token := login(t, h, "alice", "pw1")

	code, _ := do(t, h, http.MethodPost, "/api/tasks", token, map[string]any{"description": "no title"})
	if code != http.StatusBadRequest {
		t.Fatalf("missing title: code=%d", code)
	}
	code, _ = do(t, h, http.MethodPost, "/api/tasks", token, map[string]any{
		"title": "x", "due_date": "2024/01/01",
	})
	if code != http.StatusBadRequest {
		t.Fatalf("malformed due date: code=%d", code)
	}
	code, _ = do(t, h, http.MethodPost, "/api/tasks", token, map[string]any{
		"title": "x", "priority": 5,
	})
	if code != http.StatusBadRequest {
		t.Fatalf("out-of-range priority: code=%d", code)
	}
	code, _ = do(t, h, http.MethodPost, "/api/tasks", "", map[string]any{"title": "x"})
	if code != http.StatusUnauthorized {
		t.Fatalf("no token: code=%d", code)
	}
	if tasks := listTasks(t, h, token); len(tasks) != 0 {
		t.Fatalf("rejected creates persisted: %+v", tasks)
	}
}

func TestListTasks_ScopedToOwner(t *testing.T) {
	h := newTestServer(t, "httpscope")
	register(t, h, "alice", "pw1")
	register(t, h, "bob", "pw2")
	aliceTok := login(t, h, "alice", "pw1")
	bobTok := login(t, h, "bob", "pw2")

	code, _ := do(t, h, http.MethodPost, "/api/tasks", aliceTok, map[string]any{"title": "alice's"})
	if code != http.StatusCreated {
		t.Fatalf("create: code=%d", code)
	}

	if tasks := listTasks(t, h, aliceTok); len(tasks) != 1 {
		t.Fatalf("owner list: %+v", tasks)
	}
	if tasks := listTasks(t, h, bobTok); len(tasks) != 0 {
		t.Fatalf("non-owner list leaked tasks: %+v", tasks)
	}
}

func TestUpdateTask(t *testing.T) {
	h := newTestServer(t, "httpupdate")
	register(t, h, "alice", "pw1")
	register(t, h, "bob", "pw2")
	aliceTok := login(t, h, "alice", "pw1")
	bobTok := login(t, h, "bob", "pw2")

	code, _ := do(t, h, http.MethodPost, "/api/tasks", aliceTok, map[string]any{"title": "original"})
	if code != http.StatusCreated {
		t.Fatalf("create: code=%d", code)
	}
	id := listTasks(t, h, aliceTok)[0].ID

	// Partial update changes only named fields.
	code, _ = do(t, h, http.MethodPut, "/api/tasks/1", aliceTok, map[string]any{
		"title": "renamed", "priority": 2,
	})
	if code != http.StatusOK {
		t.Fatalf("update: code=%d", code)
	}
	got := listTasks(t, h, aliceTok)[0]
	if got.Title != "renamed" || got.Priority != 2 || got.DueDate != nil {
		t.Fatalf("unexpected task after update: %+v", got)
	}

	// Empty patch leaves everything unchanged.
	code, _ = do(t, h, http.MethodPut, "/api/tasks/1", aliceTok, map[string]any{})
	if code != http.StatusOK {
		t.Fatalf("empty patch: code=%d", code)
	}
	if g := listTasks(t, h, aliceTok)[0]; g.Title != "renamed" || g.Priority != 2 {
		t.Fatalf("empty patch mutated task: %+v", g)
	}

	// A malformed due_date rejects the whole patch; title stays untouched.
	code, _ = do(t, h, http.MethodPut, "/api/tasks/1", aliceTok, map[string]any{
		"title": "should-not-apply", "due_date": "2024/01/01",
	})
	if code != http.StatusBadRequest {
		t.Fatalf("malformed due date: code=%d", code)
	}
	if g := listTasks(t, h, aliceTok)[0]; g.Title != "renamed" || g.DueDate != nil {
		t.Fatalf("rejected patch partially applied: %+v", g)
	}

	// Present-but-empty title is rejected.
	code, _ = do(t, h, http.MethodPut, "/api/tasks/1", aliceTok, map[string]any{"title": ""})
	if code != http.StatusBadRequest {
		t.Fatalf("empty title: code=%d", code)
	}

	// Unknown id and another user's id both yield 404.
	code, _ = do(t, h, http.MethodPut, "/api/tasks/999", aliceTok, map[string]any{"title": "x"})
	if code != http.StatusNotFound {
		t.Fatalf("unknown id: code=%d", code)
	}
	code, _ = do(t, h, http.MethodPut, "/api/tasks/1", bobTok, map[string]any{"title": "stolen"})
	if code != http.StatusNotFound {
		t.Fatalf("cross-user update: code=%d", code)
	}
	if g := listTasks(t, h, aliceTok)[0]; g.ID != id || g.Title != "renamed" {
		t.Fatalf("cross-user update mutated task: %+v", g)
	}
}

func TestDeleteTask(t *testing.T) {
	h := newTestServer(t, "httpdelete")
	register(t, h, "alice", "pw1")
	register(t, h, "bob", "pw2")
	aliceTok := login(t, h, "alice", "pw1")
	bobTok := login(t, h, "bob", "pw2")

	code, _ := do(t, h, http.MethodPost, "/api/tasks", aliceTok, map[string]any{"title": "doomed"})
	if code != http.StatusCreated {
		t.Fatalf("create: code=%d", code)
	}

	// Another user cannot delete it.
	code, _ = do(t, h, http.MethodDelete, "/api/tasks/1", bobTok, nil)
	if code != http.StatusNotFound {
		t.Fatalf("cross-user delete: code=%d", code)
	}

	code, _ = do(t, h, http.MethodDelete, "/api/tasks/1", aliceTok, nil)
	if code != http.StatusOK {
		t.Fatalf("delete: code=%d", code)
	}
	// Second delete of an already-deleted id also reports not found.
	code, _ = do(t, h, http.MethodDelete, "/api/tasks/1", aliceTok, nil)
	if code != http.StatusNotFound {
		t.Fatalf("second delete: code=%d", code)
	}
	code, _ = do(t, h, http.MethodDelete, "/api/tasks/999", aliceTok, nil)
	if code != http.StatusNotFound {
		t.Fatalf("unknown id delete: code=%d", code)
	}
}

func TestAuth_RejectsBadTokens(t *testing.T) {
	h := newTestServer(t, "httpauth")
	register(t, h, "alice", "pw1")

	wrongSecret := testutil.SessionToken(t, "other-secret", 1)
	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": wrongSecret,
	} {
		code, _ := do(t, h, http.MethodGet, "/api/tasks", token, nil)
		if code != http.StatusUnauthorized {
			t.Fatalf("%s: code=%d", name, code)
		}
	}
}
