package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"taskboard/internal/database"
	"taskboard/internal/relay"
	"taskboard/internal/types"
)

type CreateTaskRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	Status      string    `json:"status"`
	AssigneeId  int       `json:"assignee_id"`
	DueDate     time.Time `json:"due_date"`
}

type UpdateTaskRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	Status      string    `json:"status" validate:"required"`
	AssigneeId  int       `json:"assignee_id"`
	DueDate     time.Time `json:"due_date"`
}

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}

func validTaskStatus(status string) bool {
	switch status {
	case types.TaskStatusTodo, types.TaskStatusInProgress, types.TaskStatusDone:
		return true
	}
	return false
}

// taskFromPath resolves the {id} path segment to a task plus its project, and
// verifies the requester is a member of that project.
func (s *TaskboardApp) taskFromPath(r *http.Request, userId int) (database.Task, database.Project, *ApiError) {
	taskId, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return database.Task{}, database.Project{}, NewBadRequestError()
	}

	task, err := s.db.GetTaskById(taskId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.Task{}, database.Project{}, NewNotFoundError()
		}
		return database.Task{}, database.Project{}, NewInternalServerError(err)
	}

	project, err := s.db.GetProjectById(task.ProjectId)
	if err != nil {
		return database.Task{}, database.Project{}, NewInternalServerError(err)
	}

	if !s.db.IsProjectMember(userId, project.Id) {
		return database.Task{}, database.Project{}, NewForbiddenError()
	}

	return task, project, nil
}

func (s *TaskboardApp) listTasks(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	project, apiErr := s.projectFromPath(r)
	if apiErr != nil {
		s.writeJson(w, apiErr.StatusCode, apiErr)
		return
	}

	if !s.db.IsProjectMember(userId, project.Id) {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbTasks, err := s.db.ListTasksForProject(project.Id)
	if err != nil {
		s.log.Println("list tasks:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	tasks := make([]types.Task, 0, len(dbTasks))
	for _, t := range dbTasks {
		tasks = append(tasks, toTask(t))
	}

	s.writeJson(w, http.StatusOK, tasks)
}

func (s *TaskboardApp) createTask(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	project, apiErr := s.projectFromPath(r)
	if apiErr != nil {
		s.writeJson(w, apiErr.StatusCode, apiErr)
		return
	}

	if !s.db.IsProjectMember(userId, project.Id) {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.validate.Struct(req); err != nil {
		errResp := NewValidationError(err.Error())
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Status == "" {
		req.Status = types.TaskStatusTodo
	}
	if !validTaskStatus(req.Status) {
		errResp := NewValidationError("invalid task status")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.AssigneeId != 0 && !s.db.IsProjectMember(req.AssigneeId, project.Id) {
		errResp := NewValidationError("assignee is not a member of this project")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	newTask, err := s.db.CreateTask(database.CreateTaskParams{
		ProjectId:   project.Id,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		AssigneeId:  req.AssigneeId,
		CreatorId:   userId,
		DueDate:     req.DueDate,
	})
	if err != nil {
		s.log.Println("create task:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	actor, err := s.db.GetAccountById(userId)
	if err != nil {
		s.log.Println("lookup actor for fan-out:", err)
	} else {
		s.ingress.TaskCreated("", toUser(actor), project.ExternalId, toTask(newTask))
	}

	s.writeJson(w, http.StatusCreated, toTask(newTask))
}

func (s *TaskboardApp) getTask(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	task, _, apiErr := s.taskFromPath(r, userId)
	if apiErr != nil {
		s.writeJson(w, apiErr.StatusCode, apiErr)
		return
	}

	s.writeJson(w, http.StatusOK, toTask(task))
}

func (s *TaskboardApp) updateTask(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	task, project, apiErr := s.taskFromPath(r, userId)
	if apiErr != nil {
		s.writeJson(w, apiErr.StatusCode, apiErr)
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.validate.Struct(req); err != nil {
		errResp := NewValidationError(err.Error())
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !validTaskStatus(req.Status) {
		errResp := NewValidationError("invalid task status")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.AssigneeId != 0 && !s.db.IsProjectMember(req.AssigneeId, project.Id) {
		errResp := NewValidationError("assignee is not a member of this project")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	updated, err := s.db.UpdateTask(database.UpdateTaskParams{
		TaskId:      task.Id,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		AssigneeId:  req.AssigneeId,
		DueDate:     req.DueDate,
	})
	if err != nil {
		s.log.Println("update task:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	actor, err := s.db.GetAccountById(userId)
	if err != nil {
		s.log.Println("lookup actor for fan-out:", err)
	} else {
		s.ingress.TaskUpdated("", toUser(actor), project.ExternalId, toTask(updated), taskChanges(task, updated))
	}

	s.writeJson(w, http.StatusOK, toTask(updated))
}

func (s *TaskboardApp) deleteTask(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	task, project, apiErr := s.taskFromPath(r, userId)
	if apiErr != nil {
		s.writeJson(w, apiErr.StatusCode, apiErr)
		return
	}

	// only the task's creator or the project owner may delete it
	if task.CreatorId != userId && project.OwnerId != userId {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.DeleteTask(task.Id); err != nil {
		s.log.Println("delete task:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	actor, err := s.db.GetAccountById(userId)
	if err != nil {
		s.log.Println("lookup actor for fan-out:", err)
	} else {
		s.ingress.TaskDeleted("", toUser(actor), project.ExternalId, task.Id, task.Title)
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *TaskboardApp) createComment(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	task, project, apiErr := s.taskFromPath(r, userId)
	if apiErr != nil {
		s.writeJson(w, apiErr.StatusCode, apiErr)
		return
	}

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.validate.Struct(req); err != nil {
		errResp := NewValidationError(err.Error())
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	comment, err := s.db.CreateComment(database.CreateCommentParams{
		TaskId:   task.Id,
		AuthorId: userId,
		Content:  req.Content,
	})
	if err != nil {
		s.log.Println("create comment:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.ingress.CommentAdded("", toUser(comment.Author), project.ExternalId, toTask(task), toComment(comment))

	s.writeJson(w, http.StatusCreated, toComment(comment))
}

// taskChanges computes the field-level delta between two task snapshots for
// the room broadcast and the notification rules.
func taskChanges(old, updated database.Task) []relay.FieldChange {
	var changes []relay.FieldChange

	if old.Title != updated.Title {
		changes = append(changes, relay.FieldChange{Field: "title", Old: old.Title, New: updated.Title})
	}
	if old.Description != updated.Description {
		changes = append(changes, relay.FieldChange{Field: "description", Old: old.Description, New: updated.Description})
	}
	if old.Status != updated.Status {
		changes = append(changes, relay.FieldChange{Field: "status", Old: old.Status, New: updated.Status})
	}
	if old.AssigneeId != updated.AssigneeId {
		changes = append(changes, relay.FieldChange{
			Field: "assignee",
			Old:   assigneeName(old),
			New:   assigneeName(updated),
		})
	}
	if !old.DueDate.Equal(updated.DueDate) {
		changes = append(changes, relay.FieldChange{
			Field: "due_date",
			Old:   timeString(old.DueDate),
			New:   timeString(updated.DueDate),
		})
	}

	return changes
}

func assigneeName(t database.Task) string {
	if t.Assignee == nil {
		return ""
	}
	return t.Assignee.Username
}

func timeString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
