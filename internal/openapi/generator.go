// Package openapi generates the OpenAPI 3.1 document for Plank's REST API,
// served at /openapi.json.
package openapi

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// Generate builds the OpenAPI document for the full REST surface.
func Generate() *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "Plank API",
			Description: "REST API for the Plank project tracker daemon.",
			Version:     "1.0.0",
		},
		Servers: openapi3.Servers{
			{URL: "/"},
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{}
	doc.Components = &components

	doc.Components.SecuritySchemes["apiKey"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type: "apiKey",
			In:   "header",
			Name: "X-API-Key",
		},
	}
	doc.Components.SecuritySchemes["bearerAuth"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	doc.Security = openapi3.SecurityRequirements{
		{"apiKey": {}},
		{"bearerAuth": {}},
	}

	doc.Paths = openapi3.NewPaths()

	registerSchemas(doc)

	// Public routes
	doc.Paths.Set("/health", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"system"},
			Summary:     "Liveness probe",
			OperationID: "get_health",
			Security:    &openapi3.SecurityRequirements{},
			Responses:   newResponses("200", "Process is running", objectRef("Status")),
		},
	})
	doc.Paths.Set("/api/auth/signup", &openapi3.PathItem{
		Post: publicPost("auth", "signup", "Create a user account and issue an API key", "SignupRequest", "SignupResponse"),
	})
	doc.Paths.Set("/api/auth/login", &openapi3.PathItem{
		Post: publicPost("auth", "login", "Verify a password and issue a session token", "LoginRequest", "LoginResponse"),
	})
	doc.Paths.Set("/api/auth/oauth", &openapi3.PathItem{
		Post: publicPost("auth", "oauth", "Return the configured OAuth provider's authorization URL", "EmptyObject", "OAuthResponse"),
	})
	doc.Paths.Set("/api/auth/email/validate", &openapi3.PathItem{
		Post: publicPost("auth", "email_validate", "Check whether a string is a well-formed email address", "EmailRequest", "EmailCheckResponse"),
	})
	doc.Paths.Set("/api/auth/email/exists", &openapi3.PathItem{
		Post: publicPost("auth", "email_exists", "Check whether an account exists for an email address", "EmailRequest", "EmailCheckResponse"),
	})

	// Authenticated resources
	crudPaths(doc, "projects", "Project")
	doc.Paths.Set("/api/projects/{id}/tasks", &openapi3.PathItem{
		Get: listOperation("projects", "project tasks", "get_project_tasks", idParams(), listRef("Task")),
	})
	doc.Paths.Set("/api/projects/{id}/snapshot", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"projects"},
			Summary:     "Export a project snapshot",
			Description: "Serializes the project with its tasks, comments, bugs, and meetings into a content-addressed blob.",
			OperationID: "create_project_snapshot",
			Parameters:  idParams(),
			Responses:   newResponses("201", "Snapshot stored", objectRef("SnapshotResponse")),
		},
	})
	doc.Paths.Set("/api/snapshots/{cid}", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"projects"},
			Summary:     "Fetch a snapshot blob by CID",
			OperationID: "get_snapshot",
			Parameters: openapi3.Parameters{
				{Value: openapi3.NewPathParameter("cid").WithSchema(openapi3.NewStringSchema())},
			},
			Responses: newResponses("200", "Snapshot blob", objectRef("EmptyObject")),
		},
	})

	crudPaths(doc, "tasks", "Task")
	doc.Paths.Set("/api/tasks/{id}/comments", &openapi3.PathItem{
		Get:  listOperation("tasks", "task comments", "get_task_comments", idParams(), listRef("Comment")),
		Post: createOperation("tasks", "comment", "create_task_comment", idParams(), "CommentRequest", "Comment"),
	})
	doc.Paths.Set("/api/comments/{id}", &openapi3.PathItem{
		Get:    getOperation("comments", "comment", "get_comment", "Comment"),
		Delete: deleteOperation("comments", "comment", "delete_comment"),
	})

	crudPaths(doc, "bugs", "Bug")
	crudPaths(doc, "appointments", "Appointment")
	crudPaths(doc, "meetings", "Meeting")

	doc.Paths.Set("/api/users", &openapi3.PathItem{
		Get: listOperation("users", "users", "get_users", nil, listRef("User")),
	})
	doc.Paths.Set("/api/users/{id}", &openapi3.PathItem{
		Get: getOperation("users", "user", "get_user", "User"),
	})

	doc.Paths.Set("/api/keys", &openapi3.PathItem{
		Get:  listOperation("keys", "API keys", "get_keys", nil, listRef("APIKey")),
		Post: createOperation("keys", "API key", "create_key", nil, "CreateKeyRequest", "CreateKeyResponse"),
	})
	doc.Paths.Set("/api/keys/{id}", &openapi3.PathItem{
		Delete: deleteOperation("keys", "API key", "revoke_key"),
	})

	doc.Paths.Set("/api/settings", &openapi3.PathItem{
		Get: listOperation("settings", "settings", "get_settings", nil, objectRef("EmptyObject")),
		Put: &openapi3.Operation{
			Tags:        []string{"settings"},
			Summary:     "Upsert settings",
			OperationID: "put_settings",
			RequestBody: jsonBody("Settings to upsert", "EmptyObject"),
			Responses:   newResponses("200", "All settings after the update", objectRef("EmptyObject")),
		},
	})

	return doc
}

// crudPaths registers the standard list/create and get/update/delete paths
// for a resource.
func crudPaths(doc *openapi3.T, name, schemaName string) {
	base := "/api/" + name
	doc.Paths.Set(base, &openapi3.PathItem{
		Get:  listOperation(name, name, "get_"+name, nil, listRef(schemaName)),
		Post: createOperation(name, schemaName, "create_"+name, nil, schemaName+"Request", schemaName),
	})
	doc.Paths.Set(base+"/{id}", &openapi3.PathItem{
		Get:    getOperation(name, schemaName, "get_one_"+name, schemaName),
		Put:    updateOperation(name, schemaName, "update_"+name, schemaName),
		Delete: deleteOperation(name, schemaName, "delete_"+name),
	})
}

func idParams() openapi3.Parameters {
	return openapi3.Parameters{
		{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewInt64Schema())},
	}
}

func objectRef(schemaName string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+schemaName, nil)
}

// listRef wraps a schema in the standard list envelope.
func listRef(schemaName string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"resource": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type:  &openapi3.Types{"array"},
						Items: objectRef(schemaName),
					},
				},
				"meta": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type: &openapi3.Types{"object"},
						Properties: openapi3.Schemas{
							"count": &openapi3.SchemaRef{Value: openapi3.NewIntegerSchema()},
						},
					},
				},
			},
		},
	}
}

func jsonBody(description, schemaName string) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Description: description,
			Required:    true,
			Content:     openapi3.NewContentWithJSONSchemaRef(objectRef(schemaName)),
		},
	}
}

func publicPost(tag, name, summary, reqSchema, respSchema string) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{tag},
		Summary:     summary,
		OperationID: "post_" + name,
		Security:    &openapi3.SecurityRequirements{},
		RequestBody: jsonBody(summary, reqSchema),
		Responses:   newResponses("200", summary, objectRef(respSchema)),
	}
}

func listOperation(tag, what, opID string, params openapi3.Parameters, schema *openapi3.SchemaRef) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{tag},
		Summary:     fmt.Sprintf("List %s", what),
		OperationID: opID,
		Parameters:  params,
		Responses:   newResponses("200", fmt.Sprintf("List of %s", what), schema),
	}
}

func getOperation(tag, what, opID, schemaName string) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{tag},
		Summary:     fmt.Sprintf("Get one %s", what),
		OperationID: opID,
		Parameters:  idParams(),
		Responses:   newResponses("200", what, objectRef(schemaName)),
	}
}

func createOperation(tag, what, opID string, params openapi3.Parameters, reqSchema, respSchema string) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{tag},
		Summary:     fmt.Sprintf("Create a %s", what),
		OperationID: opID,
		Parameters:  params,
		RequestBody: jsonBody(fmt.Sprintf("%s to create", what), reqSchema),
		Responses:   newResponses("201", fmt.Sprintf("Created %s", what), objectRef(respSchema)),
	}
}

func updateOperation(tag, what, opID, schemaName string) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{tag},
		Summary:     fmt.Sprintf("Update a %s", what),
		OperationID: opID,
		Parameters:  idParams(),
		RequestBody: jsonBody(fmt.Sprintf("%s fields to apply", what), schemaName+"Request"),
		Responses:   newResponses("200", fmt.Sprintf("Updated %s", what), objectRef(schemaName)),
	}
}

func deleteOperation(tag, what, opID string) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{tag},
		Summary:     fmt.Sprintf("Delete a %s", what),
		OperationID: opID,
		Parameters:  idParams(),
		Responses:   newResponses("200", fmt.Sprintf("%s deleted", what), objectRef("Status")),
	}
}

func newResponses(statusCode, description string, schema *openapi3.SchemaRef) *openapi3.Responses {
	responses := openapi3.NewResponses()

	successDesc := description
	responses.Set(statusCode, &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &successDesc,
			Content:     openapi3.NewContentWithJSONSchemaRef(schema),
		},
	})

	errorRef := objectRef("ErrorResponse")
	for code, desc := range map[string]string{
		"400": "Bad request",
		"401": "Missing credential",
		"403": "Invalid credential",
		"404": "Not found",
	} {
		d := desc
		responses.Set(code, &openapi3.ResponseRef{
			Value: &openapi3.Response{
				Description: &d,
				Content:     openapi3.NewContentWithJSONSchemaRef(errorRef),
			},
		})
	}
	return responses
}
