package openapi

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestGenerateCoversRESTSurface(t *testing.T) {
	doc := Generate()

	if doc.OpenAPI != "3.1.0" {
		t.Fatalf("expected OpenAPI 3.1.0, got %s", doc.OpenAPI)
	}

	wantPaths := []string{
		"/health",
		"/api/auth/signup",
		"/api/auth/login",
		"/api/auth/oauth",
		"/api/auth/email/validate",
		"/api/auth/email/exists",
		"/api/projects",
		"/api/projects/{id}",
		"/api/projects/{id}/tasks",
		"/api/projects/{id}/snapshot",
		"/api/snapshots/{cid}",
		"/api/tasks",
		"/api/tasks/{id}/comments",
		"/api/comments/{id}",
		"/api/bugs",
		"/api/appointments",
		"/api/meetings",
		"/api/users",
		"/api/keys",
		"/api/keys/{id}",
		"/api/settings",
	}
	for _, p := range wantPaths {
		if doc.Paths.Find(p) == nil {
			t.Errorf("missing path %s", p)
		}
	}

	for _, schema := range []string{"Project", "Task", "Bug", "Meeting", "ErrorResponse", "LoginResponse"} {
		if doc.Components.Schemas[schema] == nil {
			t.Errorf("missing component schema %s", schema)
		}
	}
}

func TestGenerateMarshalsToJSON(t *testing.T) {
	data, err := json.Marshal(Generate())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"Plank API"`) {
		t.Fatal("expected document title in JSON output")
	}
}

func TestUserSchemaHidesPasswordHash(t *testing.T) {
	doc := Generate()
	user := doc.Components.Schemas["User"]
	if user == nil {
		t.Fatal("missing User schema")
	}
	if _, ok := user.Value.Properties["password_hash"]; ok {
		t.Fatal("User schema must not expose password_hash")
	}
}
