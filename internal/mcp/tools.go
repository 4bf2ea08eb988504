package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/plankhq/plank/internal/model"
)

// registerTools registers all Plank MCP tools on the given server.
func (s *MCPServer) registerTools(srv *server.MCPServer) {

	// ----- Read tools -----

	srv.AddTool(
		mcp.NewTool("plank_list_projects",
			mcp.WithDescription(
				"List all projects with their status and description. Use this first "+
					"to discover project IDs before working with tasks or bugs.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		s.handleListProjects,
	)

	srv.AddTool(
		mcp.NewTool("plank_list_tasks",
			mcp.WithDescription(
				"List the tasks of a project, highest priority first. Returns each "+
					"task's ID, title, status (todo/doing/done), priority, and due date.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithNumber("project_id",
				mcp.Required(),
				mcp.Description("ID of the project to list tasks for"),
			),
		),
		s.handleListTasks,
	)

	srv.AddTool(
		mcp.NewTool("plank_list_bugs",
			mcp.WithDescription(
				"List the bugs filed against a project, newest first, including "+
					"severity and open/closed status.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithNumber("project_id",
				mcp.Required(),
				mcp.Description("ID of the project to list bugs for"),
			),
		),
		s.handleListBugs,
	)

	// ----- Mutating tools -----

	srv.AddTool(
		mcp.NewTool("plank_create_project",
			mcp.WithDescription(
				"Create a new project. Returns the created project including its ID.",
			),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Project name"),
			),
			mcp.WithString("description",
				mcp.Description("Optional project description"),
			),
		),
		s.handleCreateProject,
	)

	srv.AddTool(
		mcp.NewTool("plank_create_task",
			mcp.WithDescription(
				"Create a task in a project. New tasks start in the todo status "+
					"unless another valid status is given.",
			),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithNumber("project_id",
				mcp.Required(),
				mcp.Description("ID of the project the task belongs to"),
			),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Task title"),
			),
			mcp.WithString("description",
				mcp.Description("Optional task description"),
			),
			mcp.WithNumber("priority",
				mcp.Description("Priority, higher sorts first (default 0)"),
			),
		),
		s.handleCreateTask,
	)

	srv.AddTool(
		mcp.NewTool("plank_update_task_status",
			mcp.WithDescription(
				"Move a task to a new status. Valid statuses: todo, doing, done.",
			),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithNumber("task_id",
				mcp.Required(),
				mcp.Description("ID of the task to update"),
			),
			mcp.WithString("status",
				mcp.Required(),
				mcp.Description("New status: todo, doing, or done"),
			),
		),
		s.handleUpdateTaskStatus,
	)

	srv.AddTool(
		mcp.NewTool("plank_report_bug",
			mcp.WithDescription(
				"File a bug against a project. Returns the created bug including its ID.",
			),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithNumber("project_id",
				mcp.Required(),
				mcp.Description("ID of the project the bug is filed against"),
			),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Short bug summary"),
			),
			mcp.WithString("description",
				mcp.Description("Steps to reproduce and expected behavior"),
			),
			mcp.WithString("severity",
				mcp.Description("Severity: low, normal, high, or critical (default normal)"),
			),
		),
		s.handleReportBug,
	)
}

// =========================================================================
// Tool handlers
// =========================================================================

func (s *MCPServer) handleListProjects(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return toolError("Failed to list projects: %v", err)
	}
	return successJSON(projects)
}

func (s *MCPServer) handleListTasks(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	projectID, err := requireInt(request, "project_id")
	if err != nil {
		return toolError("%v", err)
	}
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return toolError("Project %d not found", projectID)
	}

	tasks, err := s.store.ListTasksByProject(ctx, projectID)
	if err != nil {
		return toolError("Failed to list tasks: %v", err)
	}
	return successJSON(tasks)
}

func (s *MCPServer) handleListBugs(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	projectID, err := requireInt(request, "project_id")
	if err != nil {
		return toolError("%v", err)
	}
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return toolError("Project %d not found", projectID)
	}

	bugs, err := s.store.ListBugsByProject(ctx, projectID)
	if err != nil {
		return toolError("Failed to list bugs: %v", err)
	}
	return successJSON(bugs)
}

func (s *MCPServer) handleCreateProject(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	name, err := requireString(request, "name")
	if err != nil {
		return toolError("%v", err)
	}

	p := &model.Project{
		Name:        name,
		Description: optionalString(request, "description"),
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return toolError("Failed to create project: %v", err)
	}
	return successJSON(p)
}

func (s *MCPServer) handleCreateTask(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	projectID, err := requireInt(request, "project_id")
	if err != nil {
		return toolError("%v", err)
	}
	title, err := requireString(request, "title")
	if err != nil {
		return toolError("%v", err)
	}
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return toolError("Project %d not found", projectID)
	}

	t := &model.Task{
		ProjectID:   projectID,
		Title:       title,
		Description: optionalString(request, "description"),
		Priority:    optionalInt(request, "priority", 0),
	}
	if err := s.store.CreateTask(ctx, t); err != nil {
		return toolError("Failed to create task: %v", err)
	}
	return successJSON(t)
}

func (s *MCPServer) handleUpdateTaskStatus(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	taskID, err := requireInt(request, "task_id")
	if err != nil {
		return toolError("%v", err)
	}
	status, err := requireString(request, "status")
	if err != nil {
		return toolError("%v", err)
	}
	if !model.ValidTaskStatus(status) {
		return toolError("Invalid status %q: must be todo, doing, or done", status)
	}

	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return toolError("Task %d not found", taskID)
	}
	t.Status = status
	if err := s.store.UpdateTask(ctx, t); err != nil {
		return toolError("Failed to update task: %v", err)
	}
	return successJSON(t)
}

func (s *MCPServer) handleReportBug(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	projectID, err := requireInt(request, "project_id")
	if err != nil {
		return toolError("%v", err)
	}
	title, err := requireString(request, "title")
	if err != nil {
		return toolError("%v", err)
	}
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return toolError("Project %d not found", projectID)
	}

	b := &model.Bug{
		ProjectID:   projectID,
		Title:       title,
		Description: optionalString(request, "description"),
		Severity:    optionalString(request, "severity"),
	}
	if err := s.store.CreateBug(ctx, b); err != nil {
		return toolError("Failed to report bug: %v", err)
	}
	return successJSON(b)
}
