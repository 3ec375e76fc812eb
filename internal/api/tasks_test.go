package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"taskboard/internal/database"
	"taskboard/internal/relay"
	"taskboard/internal/types"
)

func TestValidTaskStatus(t *testing.T) {
	assert.True(t, validTaskStatus(types.TaskStatusTodo))
	assert.True(t, validTaskStatus(types.TaskStatusInProgress))
	assert.True(t, validTaskStatus(types.TaskStatusDone))
	assert.False(t, validTaskStatus("Blocked"))
	assert.False(t, validTaskStatus(""))
}

func TestTaskChanges(t *testing.T) {
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	old := database.Task{
		Title:       "write docs",
		Description: "first pass",
		Status:      types.TaskStatusTodo,
	}
	updated := database.Task{
		Title:       "write docs",
		Description: "second pass",
		Status:      types.TaskStatusInProgress,
		AssigneeId:  2,
		Assignee:    &database.User{Id: 2, Username: "bob"},
		DueDate:     due,
	}

	changes := taskChanges(old, updated)
	assert.ElementsMatch(t, []relay.FieldChange{
		{Field: "description", Old: "first pass", New: "second pass"},
		{Field: "status", Old: types.TaskStatusTodo, New: types.TaskStatusInProgress},
		{Field: "assignee", Old: "", New: "bob"},
		{Field: "due_date", Old: "", New: due.Format(time.RFC3339)},
	}, changes)
}

func TestTaskChanges_NoChange(t *testing.T) {
	task := database.Task{Title: "write docs", Status: types.TaskStatusTodo}
	assert.Empty(t, taskChanges(task, task))
}

func TestCreateTask(t *testing.T) {
	db := &database.MockTaskboardRepository{}
	app := newTestApp(t, db)

	db.On("GetProjectByExternalId", "p1").Return(database.Project{Id: 5, ExternalId: "p1", OwnerId: 1}, nil)
	db.On("IsProjectMember", 1, 5).Return(true)
	db.On("CreateTask", mock.MatchedBy(func(p database.CreateTaskParams) bool {
		return p.ProjectId == 5 && p.Title == "write docs" &&
			p.Status == types.TaskStatusTodo && p.CreatorId == 1
	})).Return(database.Task{
		Id:        10,
		ProjectId: 5,
		Title:     "write docs",
		Status:    types.TaskStatusTodo,
		CreatorId: 1,
		Creator:   database.User{Id: 1, Username: "alice"},
	}, nil)
	db.On("GetAccountById", 1).Return(database.User{Id: 1, Username: "alice"}, nil)

	rr := httptest.NewRecorder()
	// status defaults when omitted
	req := authedRequest(t, http.MethodPost, "/api/projects/p1/tasks", 1, CreateTaskRequest{Title: "write docs"})
	req.SetPathValue("id", "p1")

	app.createTask(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var task types.Task
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&task))
	assert.Equal(t, 10, task.Id)
	assert.Equal(t, types.TaskStatusTodo, task.Status)
	db.AssertExpectations(t)
}

func TestCreateTask_ActorLookupFailure(t *testing.T) {
	db := &database.MockTaskboardRepository{}
	app := newTestApp(t, db)

	buf := &bytes.Buffer{}
	app.log.SetOutput(buf)

	db.On("GetProjectByExternalId", "p1").Return(database.Project{Id: 5, ExternalId: "p1"}, nil)
	db.On("IsProjectMember", 1, 5).Return(true)
	db.On("CreateTask", mock.Anything).Return(database.Task{
		Id:         10,
		ProjectId:  5,
		Title:      "write docs",
		Status:     types.TaskStatusTodo,
		CreatorId:  1,
		AssigneeId: 2,
		Assignee:   &database.User{Id: 2, Username: "bob"},
	}, nil)
	db.On("IsProjectMember", 2, 5).Return(true)
	db.On("GetAccountById", 1).Return(database.User{}, errors.New("connection refused"))

	rr := httptest.NewRecorder()
	req := authedRequest(t, http.MethodPost, "/api/projects/p1/tasks", 1, CreateTaskRequest{
		Title:      "write docs",
		AssigneeId: 2,
	})
	req.SetPathValue("id", "p1")

	app.createTask(rr, req)

	// the committed mutation still succeeds; the skipped fan-out is logged
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, buf.String(), "lookup actor for fan-out")
	db.AssertNotCalled(t, "CreateNotification", mock.Anything)
}

func TestCreateTask_InvalidStatus(t *testing.T) {
	db := &database.MockTaskboardRepository{}
	app := newTestApp(t, db)

	db.On("GetProjectByExternalId", "p1").Return(database.Project{Id: 5, ExternalId: "p1"}, nil)
	db.On("IsProjectMember", 1, 5).Return(true)

	rr := httptest.NewRecorder()
	req := authedRequest(t, http.MethodPost, "/api/projects/p1/tasks", 1, CreateTaskRequest{
		Title:  "write docs",
		Status: "Blocked",
	})
	req.SetPathValue("id", "p1")

	app.createTask(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	db.AssertNotCalled(t, "CreateTask", mock.Anything)
}

func TestCreateTask_AssigneeNotMember(t *testing.T) {
	db := &database.MockTaskboardRepository{}
	app := newTestApp(t, db)

	db.On("GetProjectByExternalId", "p1").Return(database.Project{Id: 5, ExternalId: "p1"}, nil)
	db.On("IsProjectMember", 1, 5).Return(true)
	db.On("IsProjectMember", 7, 5).Return(false)

	rr := httptest.NewRecorder()
	req := authedRequest(t, http.MethodPost, "/api/projects/p1/tasks", 1, CreateTaskRequest{
		Title:      "write docs",
		AssigneeId: 7,
	})
	req.SetPathValue("id", "p1")

	app.createTask(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	db.AssertNotCalled(t, "CreateTask", mock.Anything)
}

func TestUpdateTask_CompletionNotifiesCreator(t *testing.T) {
	db := &database.MockTaskboardRepository{}
	app := newTestApp(t, db)

	db.On("GetTaskById", 10).Return(database.Task{
		Id:        10,
		ProjectId: 5,
		Title:     "write docs",
		Status:    types.TaskStatusInProgress,
		CreatorId: 2,
		Creator:   database.User{Id: 2, Username: "bob"},
	}, nil)
	db.On("GetProjectById", 5).Return(database.Project{Id: 5, ExternalId: "p1", OwnerId: 2}, nil)
	db.On("IsProjectMember", 1, 5).Return(true)
	db.On("UpdateTask", mock.MatchedBy(func(p database.UpdateTaskParams) bool {
		return p.TaskId == 10 && p.Status == types.TaskStatusDone
	})).Return(database.Task{
		Id:        10,
		ProjectId: 5,
		Title:     "write docs",
		Status:    types.TaskStatusDone,
		CreatorId: 2,
		Creator:   database.User{Id: 2, Username: "bob"},
	}, nil)
	db.On("GetAccountById", 1).Return(database.User{Id: 1, Username: "alice"}, nil)
	db.On("CreateNotification", mock.MatchedBy(func(p database.CreateNotificationParams) bool {
		return p.Type == types.NotificationTaskCompleted && p.RecipientId == 2 && p.TaskId == 10
	})).Return(database.Notification{Id: 3}, nil)

	rr := httptest.NewRecorder()
	req := authedRequest(t, http.MethodPut, "/api/tasks/10", 1, UpdateTaskRequest{
		Title:  "write docs",
		Status: types.TaskStatusDone,
	})
	req.SetPathValue("id", "10")

	app.updateTask(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	db.AssertExpectations(t)
}

func TestDeleteTask_Forbidden(t *testing.T) {
	db := &database.MockTaskboardRepository{}
	app := newTestApp(t, db)

	// requester is a member but neither the creator nor the project owner
	db.On("GetTaskById", 10).Return(database.Task{Id: 10, ProjectId: 5, CreatorId: 2}, nil)
	db.On("GetProjectById", 5).Return(database.Project{Id: 5, ExternalId: "p1", OwnerId: 3}, nil)
	db.On("IsProjectMember", 4, 5).Return(true)

	rr := httptest.NewRecorder()
	req := authedRequest(t, http.MethodDelete, "/api/tasks/10", 4, nil)
	req.SetPathValue("id", "10")

	app.deleteTask(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	db.AssertNotCalled(t, "DeleteTask", mock.Anything)
}

func TestDeleteTask(t *testing.T) {
	db := &database.MockTaskboardRepository{}
	app := newTestApp(t, db)

	db.On("GetTaskById", 10).Return(database.Task{Id: 10, ProjectId: 5, Title: "write docs", CreatorId: 1}, nil)
	db.On("GetProjectById", 5).Return(database.Project{Id: 5, ExternalId: "p1", OwnerId: 3}, nil)
	db.On("IsProjectMember", 1, 5).Return(true)
	db.On("DeleteTask", 10).Return(nil)
	db.On("GetAccountById", 1).Return(database.User{Id: 1, Username: "alice"}, nil)

	rr := httptest.NewRecorder()
	req := authedRequest(t, http.MethodDelete, "/api/tasks/10", 1, nil)
	req.SetPathValue("id", "10")

	app.deleteTask(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	db.AssertExpectations(t)
}

func TestCreateComment(t *testing.T) {
	db := &database.MockTaskboardRepository{}
	app := newTestApp(t, db)

	db.On("GetTaskById", 10).Return(database.Task{
		Id:        10,
		ProjectId: 5,
		Title:     "write docs",
		CreatorId: 2,
		Creator:   database.User{Id: 2, Username: "bob"},
	}, nil)
	db.On("GetProjectById", 5).Return(database.Project{Id: 5, ExternalId: "p1", OwnerId: 2}, nil)
	db.On("IsProjectMember", 1, 5).Return(true)
	db.On("CreateComment", mock.MatchedBy(func(p database.CreateCommentParams) bool {
		return p.TaskId == 10 && p.AuthorId == 1 && p.Content == "looks good"
	})).Return(database.Comment{
		Id:       4,
		TaskId:   10,
		AuthorId: 1,
		Author:   database.User{Id: 1, Username: "alice"},
		Content:  "looks good",
	}, nil)
	db.On("CreateNotification", mock.MatchedBy(func(p database.CreateNotificationParams) bool {
		return p.Type == types.NotificationTaskCommented && p.RecipientId == 2 && p.CommentId == 4
	})).Return(database.Notification{Id: 3}, nil)

	rr := httptest.NewRecorder()
	req := authedRequest(t, http.MethodPost, "/api/tasks/10/comments", 1, CreateCommentRequest{Content: "looks good"})
	req.SetPathValue("id", "10")

	app.createComment(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var comment types.Comment
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&comment))
	assert.Equal(t, 4, comment.Id)
	db.AssertExpectations(t)
}
