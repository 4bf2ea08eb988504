package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/plankhq/plank/internal/handler"
)

// route is one entry in the declarative routing table. Public routes skip
// the authentication middleware.
type route struct {
	method  string
	pattern string
	public  bool
	handler http.HandlerFunc
}

// routes builds the full routing table. Adding an entry here is the only
// way a handler becomes reachable.
func (s *Server) routes() []route {
	authH := handler.NewAuthHandler(s.store, s.authSvc, s.cfg.OAuthAuthorizeURL)
	projectH := handler.NewProjectHandler(s.store)
	taskH := handler.NewTaskHandler(s.store)
	commentH := handler.NewCommentHandler(s.store)
	bugH := handler.NewBugHandler(s.store)
	apptH := handler.NewAppointmentHandler(s.store)
	meetingH := handler.NewMeetingHandler(s.store)
	userH := handler.NewUserHandler(s.store)
	keyH := handler.NewAPIKeyHandler(s.store)
	settingsH := handler.NewSettingsHandler(s.store)
	snapshotH := handler.NewSnapshotHandler(s.store, s.objects)

	return []route{
		// Public surface. Everything not listed here requires a credential
		// from non-trusted origins.
		{"GET", "/health", true, s.handleHealth},
		{"POST", "/api/auth/signup", true, authH.Signup},
		{"POST", "/api/auth/login", true, authH.Login},
		{"POST", "/api/auth/oauth", true, authH.OAuth},
		{"POST", "/api/auth/email/validate", true, authH.ValidateEmail},
		{"POST", "/api/auth/email/exists", true, authH.EmailExists},
		// The API description rides the same unauthenticated tier as the
		// health check: clients need it to discover the auth surface before
		// they hold a credential.
		{"GET", "/openapi.json", true, s.handleOpenAPI},

		// Projects
		{"GET", "/api/projects", false, projectH.List},
		{"POST", "/api/projects", false, projectH.Create},
		{"GET", "/api/projects/{id}", false, projectH.Get},
		{"PUT", "/api/projects/{id}", false, projectH.Update},
		{"DELETE", "/api/projects/{id}", false, projectH.Delete},
		{"GET", "/api/projects/{id}/tasks", false, projectH.ListTasks},
		{"POST", "/api/projects/{id}/snapshot", false, snapshotH.Create},
		{"GET", "/api/snapshots/{cid}", false, snapshotH.Get},

		// Tasks and comments
		{"GET", "/api/tasks", false, taskH.List},
		{"POST", "/api/tasks", false, taskH.Create},
		{"GET", "/api/tasks/{id}", false, taskH.Get},
		{"PUT", "/api/tasks/{id}", false, taskH.Update},
		{"DELETE", "/api/tasks/{id}", false, taskH.Delete},
		{"GET", "/api/tasks/{id}/comments", false, taskH.ListComments},
		{"POST", "/api/tasks/{id}/comments", false, taskH.CreateComment},
		{"GET", "/api/comments/{id}", false, commentH.Get},
		{"DELETE", "/api/comments/{id}", false, commentH.Delete},

		// Bugs
		{"GET", "/api/bugs", false, bugH.List},
		{"POST", "/api/bugs", false, bugH.Create},
		{"GET", "/api/bugs/{id}", false, bugH.Get},
		{"PUT", "/api/bugs/{id}", false, bugH.Update},
		{"DELETE", "/api/bugs/{id}", false, bugH.Delete},

		// Appointments
		{"GET", "/api/appointments", false, apptH.List},
		{"POST", "/api/appointments", false, apptH.Create},
		{"GET", "/api/appointments/{id}", false, apptH.Get},
		{"PUT", "/api/appointments/{id}", false, apptH.Update},
		{"DELETE", "/api/appointments/{id}", false, apptH.Delete},

		// Meetings
		{"GET", "/api/meetings", false, meetingH.List},
		{"POST", "/api/meetings", false, meetingH.Create},
		{"GET", "/api/meetings/{id}", false, meetingH.Get},
		{"PUT", "/api/meetings/{id}", false, meetingH.Update},
		{"DELETE", "/api/meetings/{id}", false, meetingH.Delete},

		// Users, keys, settings
		{"GET", "/api/users", false, userH.List},
		{"GET", "/api/users/{id}", false, userH.Get},
		{"GET", "/api/keys", false, keyH.List},
		{"POST", "/api/keys", false, keyH.Create},
		{"DELETE", "/api/keys/{id}", false, keyH.Revoke},
		{"GET", "/api/settings", false, settingsH.GetAll},
		{"PUT", "/api/settings", false, settingsH.Put},
	}
}

// isAuthRoute reports whether a public pattern belongs to the credential
// surface, which gets its own tighter rate limit.
func isAuthRoute(pattern string) bool {
	return strings.HasPrefix(pattern, "/api/auth/")
}

// routeShape normalizes a pattern for ambiguity detection: every placeholder
// collapses to {}, so "/api/projects/{id}" and "/api/projects/{projectId}"
// have the same shape.
func routeShape(method, pattern string) string {
	segments := strings.Split(pattern, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			segments[i] = "{}"
		}
	}
	return method + " " + strings.Join(segments, "/")
}

// validateRoutes panics if two routes collide on method + normalized shape.
// A collision is a programming error that must fail at startup, not at
// dispatch time.
func validateRoutes(routes []route) {
	seen := make(map[string]string, len(routes))
	for _, rt := range routes {
		shape := routeShape(rt.method, rt.pattern)
		if prev, dup := seen[shape]; dup {
			panic(fmt.Sprintf("ambiguous routes: %s %s collides with %s %s",
				rt.method, rt.pattern, rt.method, prev))
		}
		seen[shape] = rt.pattern
	}
}
