package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/teris-io/shortid"

	"taskboard/internal/database"
	"taskboard/internal/types"
)

type CreateProjectRequest struct {
	Name        string    `json:"name" validate:"required,max=100"`
	Description string    `json:"description" validate:"max=500"`
	Deadline    time.Time `json:"deadline"`
}

type UpdateProjectRequest struct {
	Name        string    `json:"name" validate:"required,max=100"`
	Description string    `json:"description" validate:"max=500"`
	Deadline    time.Time `json:"deadline"`
}

type JoinProjectRequest struct {
	InviteCode string `json:"invite_code" validate:"required"`
}

func generateShortId() (string, error) {
	return shortid.Generate()
}

// generateInviteCode produces the shareable join code. Codes are uppercased
// so they can be read back over voice or chat without ambiguity.
func generateInviteCode() (string, error) {
	sid, err := shortid.Generate()
	if err != nil {
		return "", err
	}

	return strings.ToUpper(sid), nil
}

// projectFromPath resolves the {id} path segment to a project.
func (s *TaskboardApp) projectFromPath(r *http.Request) (database.Project, *ApiError) {
	externalId := r.PathValue("id")
	if externalId == "" {
		return database.Project{}, NewBadRequestError()
	}

	project, err := s.db.GetProjectByExternalId(externalId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.Project{}, NewNotFoundError()
		}
		return database.Project{}, NewInternalServerError(err)
	}

	return project, nil
}

func (s *TaskboardApp) createProject(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req CreateProjectRequest
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

	sid, err := generateShortId()
	if err != nil {
		s.log.Println("generate short id:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	inviteCode, err := generateInviteCode()
	if err != nil {
		s.log.Println("generate invite code:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	newProject, err := s.db.CreateProject(database.CreateProjectParams{
		Name:        req.Name,
		Description: req.Description,
		Deadline:    req.Deadline,
		OwnerId:     userId,
		ExternalId:  sid,
		InviteCode:  inviteCode,
	})
	if err != nil {
		s.log.Println("create project:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, toProject(newProject))
}

func (s *TaskboardApp) listProjects(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbProjects, err := s.db.ListProjectsForAccount(userId)
	if err != nil {
		s.log.Println("list projects:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	projects := make([]types.Project, 0, len(dbProjects))
	for _, p := range dbProjects {
		projects = append(projects, toProject(p))
	}

	s.writeJson(w, http.StatusOK, projects)
}

func (s *TaskboardApp) getProject(w http.ResponseWriter, r *http.Request) {
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

	members, err := s.db.ListProjectMembers(project.Id)
	if err != nil {
		s.log.Println("list project members:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	project.Members = members

	s.writeJson(w, http.StatusOK, toProject(project))
}

func (s *TaskboardApp) updateProject(w http.ResponseWriter, r *http.Request) {
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

	if project.OwnerId != userId {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req UpdateProjectRequest
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

	updated, err := s.db.UpdateProject(database.UpdateProjectParams{
		ProjectId:   project.Id,
		Name:        req.Name,
		Description: req.Description,
		Deadline:    req.Deadline,
	})
	if err != nil {
		s.log.Println("update project:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	actor, err := s.db.GetAccountById(userId)
	if err != nil {
		s.log.Println("lookup actor for fan-out:", err)
	} else {
		if members, err := s.db.ListProjectMembers(project.Id); err != nil {
			s.log.Println("list members for fan-out:", err)
		} else {
			updated.Members = members
		}
		s.ingress.ProjectUpdated("", toUser(actor), toProject(updated))
	}

	s.writeJson(w, http.StatusOK, toProject(updated))
}

func (s *TaskboardApp) deleteProject(w http.ResponseWriter, r *http.Request) {
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

	if project.OwnerId != userId {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.DeleteProject(project.Id); err != nil {
		s.log.Println("delete project:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *TaskboardApp) joinProject(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req JoinProjectRequest
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

	project, err := s.db.GetProjectByInviteCode(strings.ToUpper(req.InviteCode))
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if s.db.IsProjectMember(userId, project.Id) {
		errResp := NewConflictError("already a member of this project")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.AddProjectMember(userId, project.Id); err != nil {
		s.log.Println("add project member:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	actor, err := s.db.GetAccountById(userId)
	if err != nil {
		s.log.Println("lookup actor for fan-out:", err)
	} else {
		s.ingress.MemberJoined(toUser(actor), toProject(project))
	}

	s.writeJson(w, http.StatusOK, toProject(project))
}

func (s *TaskboardApp) leaveProject(w http.ResponseWriter, r *http.Request) {
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

	// owners cannot walk away from their own project
	if project.OwnerId == userId {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !s.db.IsProjectMember(userId, project.Id) {
		errResp := NewNotFoundError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.RemoveProjectMember(userId, project.Id); err != nil {
		s.log.Println("remove project member:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	actor, err := s.db.GetAccountById(userId)
	if err != nil {
		s.log.Println("lookup actor for fan-out:", err)
	} else {
		s.ingress.MemberLeft(toUser(actor), toProject(project))
	}

	s.writeJson(w, http.StatusNoContent, nil)
}
