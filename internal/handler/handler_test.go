package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/plankhq/plank/internal/model"
	"github.com/plankhq/plank/internal/service"
	"github.com/plankhq/plank/internal/store"
)

// handlerEnv wires the handlers under test onto a bare chi router, with no
// auth middleware in front. Origin and credential behavior is covered by the
// server package tests.
type handlerEnv struct {
	store  *store.Store
	router chi.Router
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	st, err := store.Open(store.Options{})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authSvc := service.NewAuthService(st, "handler-test-secret", "", logger)

	authH := NewAuthHandler(st, authSvc, "https://id.example.com/authorize")
	taskH := NewTaskHandler(st)
	commentH := NewCommentHandler(st)
	bugH := NewBugHandler(st)
	apptH := NewAppointmentHandler(st)
	meetingH := NewMeetingHandler(st)
	keyH := NewAPIKeyHandler(st)
	settingsH := NewSettingsHandler(st)

	r := chi.NewRouter()
	r.Post("/api/auth/oauth", authH.OAuth)
	r.Post("/api/auth/email/validate", authH.ValidateEmail)
	r.Post("/api/auth/email/exists", authH.EmailExists)
	r.Get("/api/tasks/{id}/comments", taskH.ListComments)
	r.Post("/api/tasks/{id}/comments", taskH.CreateComment)
	r.Get("/api/comments/{id}", commentH.Get)
	r.Delete("/api/comments/{id}", commentH.Delete)
	r.Get("/api/bugs", bugH.List)
	r.Post("/api/bugs", bugH.Create)
	r.Post("/api/appointments", apptH.Create)
	r.Get("/api/meetings", meetingH.List)
	r.Post("/api/meetings", meetingH.Create)
	r.Put("/api/meetings/{id}", meetingH.Update)
	r.Post("/api/keys", keyH.Create)
	r.Delete("/api/keys/{id}", keyH.Revoke)
	r.Get("/api/settings", settingsH.GetAll)
	r.Put("/api/settings", settingsH.Put)

	return &handlerEnv{store: st, router: r}
}

func (e *handlerEnv) do(t *testing.T, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
		body = buf
	}
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *handlerEnv) decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v; body = %s", err, rr.Body.String())
	}
}

func (e *handlerEnv) seedProject(t *testing.T) *model.Project {
	t.Helper()
	p := &model.Project{Name: "handler tests"}
	if err := e.store.CreateProject(context.Background(), p); err != nil {
		t.Fatalf("seedProject: %v", err)
	}
	return p
}

func (e *handlerEnv) seedUser(t *testing.T, email string) *model.User {
	t.Helper()
	hash, err := store.HashPassword("irrelevant-password")
	if err != nil {
		t.Fatalf("seedUser: hash password: %v", err)
	}
	u := &model.User{
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := e.store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seedUser: %v", err)
	}
	return u
}

// ---------------------------------------------------------------------------
// Auth helper routes
// ---------------------------------------------------------------------------

func TestValidateEmail(t *testing.T) {
	env := newHandlerEnv(t)

	tests := []struct {
		email string
		valid bool
	}{
		{"dev@example.com", true},
		{"Dev Name <dev@example.com>", true},
		{"not-an-email", false},
		{"@example.com", false},
	}

	for _, tt := range tests {
		rr := env.do(t, "POST", "/api/auth/email/validate", map[string]string{"email": tt.email})
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, body = %s", tt.email, rr.Code, rr.Body.String())
		}
		var resp struct {
			Valid bool `json:"valid"`
		}
		env.decode(t, rr, &resp)
		if resp.Valid != tt.valid {
			t.Errorf("%s: valid = %v, want %v", tt.email, resp.Valid, tt.valid)
		}
	}
}

func TestEmailExists(t *testing.T) {
	env := newHandlerEnv(t)
	env.seedUser(t, "taken@example.com")

	rr := env.do(t, "POST", "/api/auth/email/exists", map[string]string{"email": "taken@example.com"})
	var resp struct {
		Exists bool `json:"exists"`
	}
	env.decode(t, rr, &resp)
	if !resp.Exists {
		t.Error("expected exists=true for a registered address")
	}

	rr = env.do(t, "POST", "/api/auth/email/exists", map[string]string{"email": "free@example.com"})
	env.decode(t, rr, &resp)
	if resp.Exists {
		t.Error("expected exists=false for an unregistered address")
	}
}

func TestOAuthTrigger(t *testing.T) {
	env := newHandlerEnv(t)

	rr := env.do(t, "POST", "/api/auth/oauth", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		AuthorizationURL string `json:"authorization_url"`
		State            string `json:"state"`
	}
	env.decode(t, rr, &resp)
	if resp.AuthorizationURL != "https://id.example.com/authorize" {
		t.Errorf("authorization_url = %q", resp.AuthorizationURL)
	}
	if resp.State == "" {
		t.Error("expected a non-empty state parameter")
	}

	// Each trigger must produce a fresh state.
	rr = env.do(t, "POST", "/api/auth/oauth", nil)
	var second struct {
		State string `json:"state"`
	}
	env.decode(t, rr, &second)
	if second.State == resp.State {
		t.Error("state must differ between requests")
	}
}

func TestOAuthUnconfigured(t *testing.T) {
	env := newHandlerEnv(t)

	st := env.store
	h := NewAuthHandler(st, nil, "")
	rr := httptest.NewRecorder()
	h.OAuth(rr, httptest.NewRequest("POST", "/api/auth/oauth", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

// ---------------------------------------------------------------------------
// Comments
// ---------------------------------------------------------------------------

func TestCommentFlow(t *testing.T) {
	env := newHandlerEnv(t)
	p := env.seedProject(t)
	author := env.seedUser(t, "author@example.com")

	task := &model.Task{ProjectID: p.ID, Title: "discuss me"}
	if err := env.store.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	taskPath := "/api/tasks/" + strconv.FormatInt(task.ID, 10) + "/comments"

	rr := env.do(t, "POST", taskPath, map[string]interface{}{
		"author_user_id": author.ID,
		"body":           "first comment",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create comment: status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var created model.Comment
	env.decode(t, rr, &created)

	// Empty body is rejected.
	rr = env.do(t, "POST", taskPath, map[string]interface{}{
		"author_user_id": author.ID,
		"body":           "",
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("empty body: status = %d, want 400", rr.Code)
	}

	// Comments on a missing task 404.
	rr = env.do(t, "POST", "/api/tasks/9999/comments", map[string]interface{}{
		"author_user_id": author.ID,
		"body":           "orphan",
	})
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing task: status = %d, want 404", rr.Code)
	}

	rr = env.do(t, "GET", taskPath, nil)
	var list struct {
		Resource []model.Comment `json:"resource"`
		Meta     struct {
			Count int `json:"count"`
		} `json:"meta"`
	}
	env.decode(t, rr, &list)
	if list.Meta.Count != 1 {
		t.Fatalf("count = %d, want 1", list.Meta.Count)
	}

	commentPath := "/api/comments/" + strconv.FormatInt(created.ID, 10)
	rr = env.do(t, "DELETE", commentPath, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete comment: status = %d", rr.Code)
	}
	rr = env.do(t, "GET", commentPath, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("deleted comment: status = %d, want 404", rr.Code)
	}
}

// ---------------------------------------------------------------------------
// Bugs
// ---------------------------------------------------------------------------

func TestBugListProjectFilter(t *testing.T) {
	env := newHandlerEnv(t)
	p1 := env.seedProject(t)
	p2 := &model.Project{Name: "other"}
	if err := env.store.CreateProject(context.Background(), p2); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	for _, pid := range []int64{p1.ID, p1.ID, p2.ID} {
		b := &model.Bug{ProjectID: pid, Title: "crash"}
		if err := env.store.CreateBug(context.Background(), b); err != nil {
			t.Fatalf("CreateBug: %v", err)
		}
	}

	var list struct {
		Meta struct {
			Count int `json:"count"`
		} `json:"meta"`
	}

	rr := env.do(t, "GET", "/api/bugs", nil)
	env.decode(t, rr, &list)
	if list.Meta.Count != 3 {
		t.Errorf("unfiltered count = %d, want 3", list.Meta.Count)
	}

	rr = env.do(t, "GET", "/api/bugs?project_id="+strconv.FormatInt(p1.ID, 10), nil)
	env.decode(t, rr, &list)
	if list.Meta.Count != 2 {
		t.Errorf("filtered count = %d, want 2", list.Meta.Count)
	}
}

func TestBugCreateDefaults(t *testing.T) {
	env := newHandlerEnv(t)
	p := env.seedProject(t)

	rr := env.do(t, "POST", "/api/bugs", map[string]interface{}{
		"project_id": p.ID,
		"title":      "flaky save",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var b model.Bug
	env.decode(t, rr, &b)
	if b.Status != model.BugOpen {
		t.Errorf("status = %q, want %q", b.Status, model.BugOpen)
	}
	if b.Severity != "normal" {
		t.Errorf("severity = %q, want normal", b.Severity)
	}
}

// ---------------------------------------------------------------------------
// Appointments
// ---------------------------------------------------------------------------

func TestAppointmentValidation(t *testing.T) {
	env := newHandlerEnv(t)
	u := env.seedUser(t, "cal@example.com")

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	// Ends before starts.
	rr := env.do(t, "POST", "/api/appointments", map[string]interface{}{
		"user_id":   u.ID,
		"title":     "backwards",
		"starts_at": end,
		"ends_at":   start,
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("backwards interval: status = %d, want 400", rr.Code)
	}

	// Missing times.
	rr = env.do(t, "POST", "/api/appointments", map[string]interface{}{
		"user_id": u.ID,
		"title":   "timeless",
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing times: status = %d, want 400", rr.Code)
	}

	rr = env.do(t, "POST", "/api/appointments", map[string]interface{}{
		"user_id":   u.ID,
		"title":     "dentist",
		"location":  "downtown",
		"starts_at": start,
		"ends_at":   end,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("valid: status = %d, body = %s", rr.Code, rr.Body.String())
	}
}

// ---------------------------------------------------------------------------
// Meetings
// ---------------------------------------------------------------------------

func TestMeetingListRequiresProjectID(t *testing.T) {
	env := newHandlerEnv(t)

	rr := env.do(t, "GET", "/api/meetings", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestMeetingAttendeesOverHTTP(t *testing.T) {
	env := newHandlerEnv(t)
	p := env.seedProject(t)
	a := env.seedUser(t, "a@example.com")
	b := env.seedUser(t, "b@example.com")

	when := time.Date(2026, 4, 1, 15, 0, 0, 0, time.UTC)
	rr := env.do(t, "POST", "/api/meetings", map[string]interface{}{
		"project_id":   p.ID,
		"title":        "kickoff",
		"scheduled_at": when,
		"attendees":    []int64{a.ID, b.ID},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var m model.Meeting
	env.decode(t, rr, &m)
	if len(m.Attendees) != 2 {
		t.Fatalf("attendees = %v, want 2 entries", m.Attendees)
	}

	// Update replaces the attendee list.
	rr = env.do(t, "PUT", "/api/meetings/"+strconv.FormatInt(m.ID, 10), map[string]interface{}{
		"title":        "kickoff",
		"scheduled_at": when,
		"attendees":    []int64{b.ID},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body = %s", rr.Code, rr.Body.String())
	}
	env.decode(t, rr, &m)
	if len(m.Attendees) != 1 || m.Attendees[0] != b.ID {
		t.Errorf("attendees after update = %v", m.Attendees)
	}
}

// ---------------------------------------------------------------------------
// API keys
// ---------------------------------------------------------------------------

func TestAPIKeyCreateAndRevoke(t *testing.T) {
	env := newHandlerEnv(t)

	rr := env.do(t, "POST", "/api/keys", map[string]interface{}{"label": "ci"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var created struct {
		ID        int64  `json:"id"`
		Key       string `json:"api_key"`
		KeyPrefix string `json:"key_prefix"`
	}
	env.decode(t, rr, &created)
	if len(created.Key) != len("plank_")+64 {
		t.Errorf("key length = %d", len(created.Key))
	}
	if created.KeyPrefix != created.Key[:14] {
		t.Errorf("key_prefix = %q does not match key start", created.KeyPrefix)
	}

	rr = env.do(t, "DELETE", "/api/keys/"+strconv.FormatInt(created.ID, 10), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("revoke: status = %d", rr.Code)
	}

	keys, err := env.store.ListAPIKeys(context.Background())
	if err != nil || len(keys) != 1 {
		t.Fatalf("ListAPIKeys: %v (%d keys)", err, len(keys))
	}
	if keys[0].IsActive {
		t.Error("key still active after revoke")
	}
}

func TestAPIKeyCreateUnknownOwner(t *testing.T) {
	env := newHandlerEnv(t)

	owner := int64(4242)
	rr := env.do(t, "POST", "/api/keys", map[string]interface{}{
		"label":         "orphan",
		"owner_user_id": owner,
	})
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

func TestSettingsPut(t *testing.T) {
	env := newHandlerEnv(t)

	rr := env.do(t, "PUT", "/api/settings", map[string]string{})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("empty map: status = %d, want 400", rr.Code)
	}

	rr = env.do(t, "PUT", "/api/settings", map[string]string{
		"ui.theme":          "dark",
		"telemetry.enabled": "false",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("put: status = %d, body = %s", rr.Code, rr.Body.String())
	}

	rr = env.do(t, "GET", "/api/settings", nil)
	var settings map[string]string
	env.decode(t, rr, &settings)
	if settings["ui.theme"] != "dark" {
		t.Errorf("ui.theme = %q, want dark", settings["ui.theme"])
	}
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func TestWriteStoreErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", store.ErrNotFound, http.StatusNotFound},
		{"unique violation", errString("UNIQUE constraint failed: users.email"), http.StatusConflict},
		{"foreign key", errString("FOREIGN KEY constraint failed"), http.StatusBadRequest},
		{"anything else", errString("disk I/O error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeStoreError(rr, tt.err, "op failed")
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
			var resp model.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error.Code != tt.want {
				t.Errorf("error code = %d, want %d", resp.Error.Code, tt.want)
			}
		})
	}
}

type errString string

func (e errString) Error() string { return string(e) }
