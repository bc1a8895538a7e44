package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub-api/internal/domain"
)

func taskRequest() TaskRequest {
	return TaskRequest{
		Title:       "Write report",
		Description: "Quarterly numbers",
		Status:      "pending",
		Priority:    "high",
	}
}

func TestCreateTaskEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	user, token := f.registerUser(t, "alice", "alice@example.com")

	rr := f.do(t, http.MethodPost, "/api/task/create-task", token, taskRequest())
	require.Equal(t, http.StatusCreated, rr.Code)

	task := decodeBody[domain.Task](t, rr)
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, user.ID, task.OwnerID)
	assert.NotEqual(t, uuid.Nil, task.ID)
}

func TestCreateTaskEndpoint_Invalid(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	_, token := f.registerUser(t, "alice", "alice@example.com")

	tests := []struct {
		name   string
		mutate func(*TaskRequest)
	}{
		{name: "missing title", mutate: func(r *TaskRequest) { r.Title = "" }},
		{name: "bad status", mutate: func(r *TaskRequest) { r.Status = "done" }},
		{name: "bad priority", mutate: func(r *TaskRequest) { r.Priority = "urgent" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := taskRequest()
			tc.mutate(&req)
			rr := f.do(t, http.MethodPost, "/api/task/create-task", token, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestTaskEndpoints_Unauthenticated(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	rr := f.do(t, http.MethodGet, "/api/task/getall-task", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/task/create-task", "", taskRequest())
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGetTaskEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	_, token := f.registerUser(t, "alice", "alice@example.com")
	_, strangerToken := f.registerUser(t, "mallory", "mallory@example.com")

	created := decodeBody[domain.Task](t,
		f.do(t, http.MethodPost, "/api/task/create-task", token, taskRequest()))

	rr := f.do(t, http.MethodGet, "/api/task/getTask-byId/"+created.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	// Another user's task reads as missing.
	rr = f.do(t, http.MethodGet, "/api/task/getTask-byId/"+created.ID.String(), strangerToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(t, http.MethodGet, "/api/task/getTask-byId/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListTasksEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	_, token := f.registerUser(t, "alice", "alice@example.com")

	for i := 0; i < 3; i++ {
		rr := f.do(t, http.MethodPost, "/api/task/create-task", token, taskRequest())
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := f.do(t, http.MethodGet, "/api/task/getall-task", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[[]domain.Task](t, rr), 3)
}

func TestUpdateTaskEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	_, token := f.registerUser(t, "alice", "alice@example.com")

	created := decodeBody[domain.Task](t,
		f.do(t, http.MethodPost, "/api/task/create-task", token, taskRequest()))

	update := taskRequest()
	update.Status = "completed"
	update.Title = "Write report v2"

	rr := f.do(t, http.MethodPut, "/api/task/update-task/"+created.ID.String(), token, update)
	require.Equal(t, http.StatusOK, rr.Code)

	updated := decodeBody[domain.Task](t, rr)
	assert.Equal(t, domain.TaskCompleted, updated.Status)
	assert.Equal(t, "Write report v2", updated.Title)
}

func TestUpdateTaskEndpoint_Missing(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	_, token := f.registerUser(t, "alice", "alice@example.com")

	rr := f.do(t, http.MethodPut, "/api/task/update-task/"+uuid.NewString(), token, taskRequest())
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteTaskEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	_, token := f.registerUser(t, "alice", "alice@example.com")

	created := decodeBody[domain.Task](t,
		f.do(t, http.MethodPost, "/api/task/create-task", token, taskRequest()))

	rr := f.do(t, http.MethodDelete, "/api/task/delete-task/"+created.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, http.MethodGet, "/api/task/getTask-byId/"+created.ID.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
