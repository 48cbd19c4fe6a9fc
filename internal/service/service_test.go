package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"collabtask/internal/auth"
	"collabtask/internal/logging"
	"collabtask/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

// fakeClock advances one second per reading so creation order is stable.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type testEnv struct {
	store    *memory.Store
	identity *IdentityService
	projects *ProjectService
	tasks    *TaskService
	queries  *QueryService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.New()
	log := logging.Discard()
	clock := &fakeClock{t: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}

	env := &testEnv{
		store:    store,
		identity: NewIdentityService(store.Users(), auth.NewTokenManager("test-secret", time.Hour), log),
		projects: NewProjectService(store.Projects(), store.Users(), log),
		tasks:    NewTaskService(store.Tasks(), store.Projects(), store.Users(), store.Comments(), store.Subtasks(), log),
		queries:  NewQueryService(store.Projects(), store.Tasks(), store.Users(), store.Comments()),
	}
	env.identity.now = clock.Now
	env.projects.now = clock.Now
	env.tasks.now = clock.Now
	return env
}

func (e *testEnv) signup(t *testing.T, email, name string) string {
	t.Helper()
	res, err := e.identity.Signup(context.Background(), SignupInput{Email: email, Password: "pw", Name: name})
	require.NoError(t, err)
	return res.UserID
}

func (e *testEnv) project(t *testing.T, ownerID string, members ...string) *ProjectView {
	t.Helper()
	p, err := e.projects.CreateProject(context.Background(), "", CreateProjectInput{
		Title:       "T",
		Description: "D",
		OwnerID:     ownerID,
		Members:     members,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) task(t *testing.T, projectID, title string) *TaskView {
	t.Helper()
	task, err := e.tasks.CreateTask(context.Background(), CreateTaskInput{ProjectID: projectID, Title: title})
	require.NoError(t, err)
	return task
}
