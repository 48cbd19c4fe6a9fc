package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"collabtask/internal/auth"
	"collabtask/internal/config"
	"collabtask/internal/logging"
	"collabtask/internal/repository/memory"
	"collabtask/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	t      *testing.T
	router http.Handler
	token  string
}

func newClient(t *testing.T, authRequired bool) *client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	repos := server.MemoryRepositories(memory.New())
	return &client{t: t, router: server.NewEngine(repos, tokens, authRequired, logging.Discard())}
}

func (c *client) do(method, path string, body interface{}) (int, map[string]interface{}) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp := httptest.NewRecorder()
	c.router.ServeHTTP(resp, req)

	out := map[string]interface{}{}
	if resp.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	}
	return resp.Code, out
}

func (c *client) signup(email, name string) string {
	c.t.Helper()
	code, body := c.do("POST", "/signup", gin.H{"email": email, "password": "pw", "name": name})
	require.Equal(c.t, http.StatusCreated, code, body)
	c.token = body["token"].(string)
	return body["userID"].(string)
}

func list(body map[string]interface{}, key string) []interface{} {
	items, _ := body[key].([]interface{})
	return items
}

func TestHealthz(t *testing.T) {
	c := newClient(t, true)
	code, body := c.do("GET", "/healthz", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	c := newClient(t, true)
	code, body := c.do("GET", "/users", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Authorization header is required", body["error"])
}

func TestOptionalAuthAcceptsAnonymousRequests(t *testing.T) {
	c := newClient(t, false)
	code, body := c.do("GET", "/users", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, list(body, "users"))
}

func TestCollaborationFlow(t *testing.T) {
	c := newClient(t, true)

	alice := c.signup("a@x.com", "Alice")

	code, body := c.do("POST", "/login", gin.H{"email": "a@x.com", "password": "pw"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, alice, body["userID"])

	// Unknown members are reported and nothing is created.
	ghost := uuid.NewString()
	code, body = c.do("POST", "/create_project", gin.H{"title": "T", "description": "D", "ownerID": alice, "members": []string{ghost}})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Some member IDs are invalid.", body["error"])
	assert.Equal(t, []interface{}{ghost}, body["invalidMembers"])

	code, body = c.do("POST", "/create_project", gin.H{"title": "T", "description": "D", "ownerID": alice, "members": []string{}})
	require.Equal(t, http.StatusCreated, code, body)
	projectID := body["projectID"].(string)
	assert.Equal(t, []interface{}{alice}, body["members"])

	code, body = c.do("GET", "/get_projects?userID="+alice, nil)
	require.Equal(t, http.StatusOK, code)
	projects := list(body, "projects")
	require.Len(t, projects, 1)
	assert.Equal(t, "T", projects[0].(map[string]interface{})["title"])

	code, body = c.do("GET", "/get_projects?projectID="+projectID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, projectID, body["project"].(map[string]interface{})["projectID"])
	profiles := list(body, "memberProfiles")
	require.Len(t, profiles, 1)
	assert.Equal(t, "Alice", profiles[0].(map[string]interface{})["name"])

	code, body = c.do("POST", "/create_task", gin.H{
		"projectID":   projectID,
		"title":       "Fix bug",
		"description": "desc",
		"dueDate":     "2025-01-01",
		"priority":    "High",
		"assignedTo":  alice,
	})
	require.Equal(t, http.StatusCreated, code, body)
	taskID := body["taskID"].(string)
	assert.Equal(t, "To Do", body["status"])

	code, body = c.do("GET", "/get_tasks?projectID="+projectID, nil)
	require.Equal(t, http.StatusOK, code)
	tasks := list(body, "tasks")
	require.Len(t, tasks, 1)
	task := tasks[0].(map[string]interface{})
	assert.Equal(t, "High", task["priority"])
	assert.Equal(t, alice, task["assignedTo"])
	assert.Equal(t, "Alice", task["assignedUsername"])
	assert.Equal(t, "2025-01-01", task["dueDate"])

	code, body = c.do("PUT", "/update_task/"+taskID, gin.H{
		"title":            "Fix bug",
		"description":      "desc",
		"status":           "Done",
		"dueDate":          "2025-01-01",
		"priority":         "High",
		"assignedUsername": "Alice",
	})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Done", body["status"])

	code, body = c.do("POST", "/tasks/"+taskID+"/move", gin.H{"direction": 1})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, body["error"])

	code, _ = c.do("POST", "/tasks/"+taskID+"/move", gin.H{"direction": -1})
	assert.Equal(t, http.StatusOK, code)

	code, body = c.do("POST", "/add_comment", gin.H{"taskID": taskID, "message": "on it"})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, alice, body["userID"])

	code, body = c.do("POST", "/tasks/"+taskID+"/tasklist", gin.H{"title": "write test"})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, taskID, body["taskID"])

	code, body = c.do("GET", "/tasks/"+taskID+"/tasklist", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, list(body, "subtasks"), 1)

	code, body = c.do("GET", "/get_project_overview?projectID="+projectID, nil)
	require.Equal(t, http.StatusOK, code)
	summaries := list(body, "tasks")
	require.Len(t, summaries, 1)
	assert.Equal(t, float64(1), summaries[0].(map[string]interface{})["commentCount"])

	code, _ = c.do("DELETE", "/delete_task/"+taskID, nil)
	assert.Equal(t, http.StatusOK, code)
	code, body = c.do("DELETE", "/delete_task/"+taskID, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Task not found", body["error"])

	code, body = c.do("GET", "/get_tasks?projectID="+projectID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, list(body, "tasks"))

	code, body = c.do("GET", "/get_comments?taskID="+taskID, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Task not found", body["error"])
}

func TestProjectMembershipRoutes(t *testing.T) {
	c := newClient(t, true)
	bob := c.signup("b@x.com", "Bob")
	alice := c.signup("a@x.com", "Alice")

	code, body := c.do("POST", "/create_project", gin.H{"title": "T", "description": "D"})
	require.Equal(t, http.StatusCreated, code, body)
	projectID := body["projectID"].(string)
	assert.Equal(t, alice, body["ownerID"])

	code, body = c.do("POST", "/projects/"+projectID+"/members", gin.H{"userID": bob})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, []interface{}{alice, bob}, body["members"])

	code, _ = c.do("DELETE", "/projects/"+projectID+"/members/"+alice, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = c.do("PUT", "/update_project", gin.H{"projectID": projectID, "title": "Renamed"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Renamed", body["title"])

	code, body = c.do("PUT", "/users/"+bob, gin.H{"name": "Robert"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.NotEmpty(t, body["error"])

	code, body = c.do("GET", "/get_tasks", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, body["error"])
}

func TestServerHandlerAppliesCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c := newClient(t, true)
	s := &server.Server{
		Engine: c.router.(*gin.Engine),
		Config: &config.Config{CORSOrigins: []string{"http://localhost:5173"}},
	}

	req := httptest.NewRequest("OPTIONS", "/signup", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp := httptest.NewRecorder()
	s.Handler().ServeHTTP(resp, req)

	assert.Equal(t, "http://localhost:5173", resp.Header().Get("Access-Control-Allow-Origin"))
}

func TestSignedInCallerCannotActAsAnotherUser(t *testing.T) {
	c := newClient(t, true)
	bob := c.signup("b@x.com", "Bob")
	alice := c.signup("a@x.com", "Alice")

	code, body := c.do("POST", "/create_project", gin.H{"title": "T", "description": "D", "ownerID": bob})
	assert.Equal(t, http.StatusForbidden, code)
	assert.NotEmpty(t, body["error"])

	code, body = c.do("GET", "/get_projects?userID="+bob, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, list(body, "projects"))

	code, body = c.do("POST", "/create_project", gin.H{"title": "T", "description": "D", "members": []string{bob}})
	require.Equal(t, http.StatusCreated, code, body)
	projectID := body["projectID"].(string)

	code, body = c.do("POST", "/create_task", gin.H{"projectID": projectID, "title": "Fix bug"})
	require.Equal(t, http.StatusCreated, code, body)
	taskID := body["taskID"].(string)

	code, body = c.do("POST", "/add_comment", gin.H{"taskID": taskID, "userID": bob, "message": "as bob"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.NotEmpty(t, body["error"])

	code, body = c.do("POST", "/add_comment", gin.H{"taskID": taskID, "message": "as me"})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, alice, body["userID"])

	code, body = c.do("GET", "/get_comments?taskID="+taskID, nil)
	require.Equal(t, http.StatusOK, code)
	comments := list(body, "comments")
	require.Len(t, comments, 1)
	assert.Equal(t, "Alice", comments[0].(map[string]interface{})["username"])
}

func TestAnonymousProjectNeedsOwner(t *testing.T) {
	c := newClient(t, false)

	code, body := c.do("POST", "/create_project", gin.H{"title": "T", "description": "D"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Project owner does not exist", body["error"])
}

func TestSubtaskRoutes(t *testing.T) {
	c := newClient(t, true)
	c.signup("b@x.com", "Bob")
	c.signup("a@x.com", "Alice")

	code, body := c.do("POST", "/create_project", gin.H{"title": "T", "description": "D"})
	require.Equal(t, http.StatusCreated, code, body)
	code, body = c.do("POST", "/create_task", gin.H{"projectID": body["projectID"], "title": "Release"})
	require.Equal(t, http.StatusCreated, code, body)
	taskID := body["taskID"].(string)

	code, body = c.do("POST", "/create_subtask", gin.H{
		"taskID":           taskID,
		"title":            "changelog",
		"priority":         "High",
		"dueDate":          "2025-03-01",
		"assignedUsername": "Bob",
	})
	require.Equal(t, http.StatusCreated, code, body)
	subtaskID := body["subtaskID"].(string)
	assert.Equal(t, "To Do", body["status"])
	assert.Equal(t, "Bob", body["assignedUsername"])

	code, body = c.do("POST", "/create_subtask", gin.H{"taskID": taskID, "title": "x", "assignedUsername": "Nobody"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Assigned user not found", body["error"])

	code, body = c.do("PUT", "/update_subtask/"+subtaskID, gin.H{"status": "Done"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Done", body["status"])
	assert.Equal(t, "changelog", body["title"])
	assert.Equal(t, "2025-03-01", body["dueDate"])

	code, body = c.do("GET", "/get_subtasks/"+taskID, nil)
	require.Equal(t, http.StatusOK, code)
	subtasks := list(body, "subtasks")
	require.Len(t, subtasks, 1)
	assert.Equal(t, "Done", subtasks[0].(map[string]interface{})["status"])

	code, _ = c.do("DELETE", "/delete_subtask/"+subtaskID, nil)
	assert.Equal(t, http.StatusOK, code)
	code, body = c.do("DELETE", "/delete_subtask/"+subtaskID, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Subtask not found", body["error"])

	code, body = c.do("GET", "/get_subtasks/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Task not found", body["error"])
}

func TestInit_RefusesDefaultSecretInRelease(t *testing.T) {
	cfg := &config.Config{
		GinMode:       "release",
		JWTSecret:     config.DefaultJWTSecret,
		StorageDriver: config.StorageDriverMemory,
	}
	_, err := server.Init(cfg, logging.Discard())
	assert.ErrorIs(t, err, config.ErrDefaultJWTSecret)

	cfg.GinMode = gin.TestMode
	s, err := server.Init(cfg, logging.Discard())
	require.NoError(t, err)
	assert.Nil(t, s.DB)
	assert.NotNil(t, s.Engine)
}
