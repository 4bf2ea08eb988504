package openapi

import "github.com/getkin/kin-openapi/openapi3"

// registerSchemas populates doc.Components.Schemas with the entity and
// envelope schemas referenced by the path operations.
func registerSchemas(doc *openapi3.T) {
	str := func() *openapi3.SchemaRef { return &openapi3.SchemaRef{Value: openapi3.NewStringSchema()} }
	i64 := func() *openapi3.SchemaRef { return &openapi3.SchemaRef{Value: openapi3.NewInt64Schema()} }
	boolean := func() *openapi3.SchemaRef { return &openapi3.SchemaRef{Value: openapi3.NewBoolSchema()} }
	dateTime := func() *openapi3.SchemaRef { return &openapi3.SchemaRef{Value: openapi3.NewDateTimeSchema()} }

	object := func(props openapi3.Schemas) *openapi3.SchemaRef {
		return &openapi3.SchemaRef{Value: &openapi3.Schema{
			Type:       &openapi3.Types{"object"},
			Properties: props,
		}}
	}

	s := doc.Components.Schemas

	s["ErrorResponse"] = object(openapi3.Schemas{
		"error": object(openapi3.Schemas{
			"code":    {Value: openapi3.NewIntegerSchema()},
			"message": str(),
			"context": object(nil),
		}),
	})
	s["Status"] = object(openapi3.Schemas{
		"status":  str(),
		"success": boolean(),
		"message": str(),
	})
	s["EmptyObject"] = object(nil)

	s["User"] = object(openapi3.Schemas{
		"id":            i64(),
		"email":         str(),
		"name":          str(),
		"is_active":     boolean(),
		"last_login_at": dateTime(),
		"created_at":    dateTime(),
		"updated_at":    dateTime(),
	})
	s["APIKey"] = object(openapi3.Schemas{
		"id":            i64(),
		"key_prefix":    str(),
		"label":         str(),
		"owner_user_id": i64(),
		"is_active":     boolean(),
		"created_at":    dateTime(),
		"last_used_at":  dateTime(),
	})
	s["Project"] = object(openapi3.Schemas{
		"id":            i64(),
		"name":          str(),
		"description":   str(),
		"status":        str(),
		"owner_user_id": i64(),
		"created_at":    dateTime(),
		"updated_at":    dateTime(),
	})
	s["Task"] = object(openapi3.Schemas{
		"id":               i64(),
		"project_id":       i64(),
		"title":            str(),
		"description":      str(),
		"status":           str(),
		"priority":         {Value: openapi3.NewIntegerSchema()},
		"assignee_user_id": i64(),
		"due_at":           dateTime(),
		"created_at":       dateTime(),
		"updated_at":       dateTime(),
	})
	s["Comment"] = object(openapi3.Schemas{
		"id":             i64(),
		"task_id":        i64(),
		"author_user_id": i64(),
		"body":           str(),
		"created_at":     dateTime(),
	})
	s["Bug"] = object(openapi3.Schemas{
		"id":               i64(),
		"project_id":       i64(),
		"title":            str(),
		"description":      str(),
		"severity":         str(),
		"status":           str(),
		"reporter_user_id": i64(),
		"created_at":       dateTime(),
		"updated_at":       dateTime(),
	})
	s["Appointment"] = object(openapi3.Schemas{
		"id":         i64(),
		"user_id":    i64(),
		"title":      str(),
		"location":   str(),
		"starts_at":  dateTime(),
		"ends_at":    dateTime(),
		"created_at": dateTime(),
		"updated_at": dateTime(),
	})
	s["Meeting"] = object(openapi3.Schemas{
		"id":           i64(),
		"project_id":   i64(),
		"title":        str(),
		"agenda":       str(),
		"scheduled_at": dateTime(),
		"attendees": {Value: &openapi3.Schema{
			Type:  &openapi3.Types{"array"},
			Items: i64(),
		}},
		"created_at": dateTime(),
		"updated_at": dateTime(),
	})

	// Request payloads
	s["ProjectRequest"] = object(openapi3.Schemas{
		"name":          str(),
		"description":   str(),
		"status":        str(),
		"owner_user_id": i64(),
	})
	s["TaskRequest"] = object(openapi3.Schemas{
		"project_id":       i64(),
		"title":            str(),
		"description":      str(),
		"status":           str(),
		"priority":         {Value: openapi3.NewIntegerSchema()},
		"assignee_user_id": i64(),
		"due_at":           dateTime(),
	})
	s["CommentRequest"] = object(openapi3.Schemas{
		"author_user_id": i64(),
		"body":           str(),
	})
	s["BugRequest"] = object(openapi3.Schemas{
		"project_id":       i64(),
		"title":            str(),
		"description":      str(),
		"severity":         str(),
		"status":           str(),
		"reporter_user_id": i64(),
	})
	s["AppointmentRequest"] = object(openapi3.Schemas{
		"user_id":   i64(),
		"title":     str(),
		"location":  str(),
		"starts_at": dateTime(),
		"ends_at":   dateTime(),
	})
	s["MeetingRequest"] = object(openapi3.Schemas{
		"project_id":   i64(),
		"title":        str(),
		"agenda":       str(),
		"scheduled_at": dateTime(),
		"attendees": {Value: &openapi3.Schema{
			Type:  &openapi3.Types{"array"},
			Items: i64(),
		}},
	})

	s["SignupRequest"] = object(openapi3.Schemas{
		"email":    str(),
		"password": str(),
		"name":     str(),
	})
	s["SignupResponse"] = object(openapi3.Schemas{
		"user":    objectRef("User"),
		"api_key": str(),
	})
	s["LoginRequest"] = object(openapi3.Schemas{
		"email":    str(),
		"password": str(),
	})
	s["LoginResponse"] = object(openapi3.Schemas{
		"session_token": str(),
		"token_type":    str(),
		"expires_in":    {Value: openapi3.NewIntegerSchema()},
		"user_id":       i64(),
		"email":         str(),
		"name":          str(),
	})
	s["OAuthResponse"] = object(openapi3.Schemas{
		"authorization_url": str(),
		"state":             str(),
	})
	s["EmailRequest"] = object(openapi3.Schemas{
		"email": str(),
	})
	s["EmailCheckResponse"] = object(openapi3.Schemas{
		"email":  str(),
		"valid":  boolean(),
		"exists": boolean(),
	})
	s["CreateKeyRequest"] = object(openapi3.Schemas{
		"label":         str(),
		"owner_user_id": i64(),
	})
	s["CreateKeyResponse"] = object(openapi3.Schemas{
		"id":         i64(),
		"api_key":    str(),
		"key_prefix": str(),
		"label":      str(),
		"is_active":  boolean(),
		"created_at": dateTime(),
	})
	s["SnapshotResponse"] = object(openapi3.Schemas{
		"cid":        str(),
		"size_bytes": {Value: openapi3.NewIntegerSchema()},
		"project_id": i64(),
	})
}
