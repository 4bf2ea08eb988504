package mcp

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/plankhq/plank/internal/model"
	"github.com/plankhq/plank/internal/store"
)

func newTestMCP(t *testing.T) (*MCPServer, *store.Store) {
	t.Helper()
	st, err := store.Open(store.Options{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewMCPServer(st, logger), st
}

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("expected tool result content")
	}
	text, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestHandleCreateAndListProjects(t *testing.T) {
	s, _ := newTestMCP(t)
	ctx := context.Background()

	result, err := s.handleCreateProject(ctx, toolRequest(map[string]interface{}{
		"name":        "agent project",
		"description": "created over MCP",
	}))
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}

	result, err = s.handleListProjects(ctx, toolRequest(nil))
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if !strings.Contains(resultText(t, result), "agent project") {
		t.Fatalf("expected created project in listing, got %s", resultText(t, result))
	}
}

func TestHandleCreateTaskRequiresProject(t *testing.T) {
	s, _ := newTestMCP(t)

	result, err := s.handleCreateTask(context.Background(), toolRequest(map[string]interface{}{
		"project_id": float64(999),
		"title":      "orphan",
	}))
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for missing project")
	}
}

func TestHandleUpdateTaskStatus(t *testing.T) {
	s, st := newTestMCP(t)
	ctx := context.Background()

	p := &model.Project{Name: "statusflow"}
	if err := st.CreateProject(ctx, p); err != nil {
		t.Fatalf("create project: %v", err)
	}
	task := &model.Task{ProjectID: p.ID, Title: "move me"}
	if err := st.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	result, err := s.handleUpdateTaskStatus(ctx, toolRequest(map[string]interface{}{
		"task_id": float64(task.ID),
		"status":  "doing",
	}))
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}

	got, err := st.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Status != model.TaskDoing {
		t.Fatalf("expected status doing, got %q", got.Status)
	}

	result, err = s.handleUpdateTaskStatus(ctx, toolRequest(map[string]interface{}{
		"task_id": float64(task.ID),
		"status":  "shipped",
	}))
	if err != nil {
		t.Fatalf("update with bad status: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for invalid status")
	}
}

func TestToolErrorIsNotProtocolError(t *testing.T) {
	result, err := toolError("something went %s", "sideways")
	if err != nil {
		t.Fatalf("toolError must not return a protocol error, got %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError on tool result")
	}
}
