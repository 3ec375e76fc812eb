package database

import (
	"github.com/stretchr/testify/mock"
)

type MockTaskboardRepository struct {
	mock.Mock
}

func (m *MockTaskboardRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockTaskboardRepository) CreateAccount(params CreateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockTaskboardRepository) UpdateAccount(params UpdateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockTaskboardRepository) GetAccountById(accountId int) (User, error) {
	args := m.Called(accountId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockTaskboardRepository) GetAccountByEmail(email string) (User, error) {
	args := m.Called(email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockTaskboardRepository) GetAccountByUsername(username string) (User, error) {
	args := m.Called(username)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockTaskboardRepository) CreateProject(params CreateProjectParams) (Project, error) {
	args := m.Called(params)
	return args.Get(0).(Project), args.Error(1)
}
func (m *MockTaskboardRepository) GetProjectById(projectId int) (Project, error) {
	args := m.Called(projectId)
	return args.Get(0).(Project), args.Error(1)
}
func (m *MockTaskboardRepository) GetProjectByExternalId(externalId string) (Project, error) {
	args := m.Called(externalId)
	return args.Get(0).(Project), args.Error(1)
}
func (m *MockTaskboardRepository) GetProjectByInviteCode(inviteCode string) (Project, error) {
	args := m.Called(inviteCode)
	return args.Get(0).(Project), args.Error(1)
}
func (m *MockTaskboardRepository) ListProjectsForAccount(accountId int) ([]Project, error) {
	args := m.Called(accountId)
	return args.Get(0).([]Project), args.Error(1)
}
func (m *MockTaskboardRepository) ListProjectMembers(projectId int) ([]User, error) {
	args := m.Called(projectId)
	return args.Get(0).([]User), args.Error(1)
}
func (m *MockTaskboardRepository) IsProjectMember(accountId, projectId int) bool {
	args := m.Called(accountId, projectId)
	return args.Bool(0)
}
func (m *MockTaskboardRepository) AddProjectMember(accountId, projectId int) error {
	args := m.Called(accountId, projectId)
	return args.Error(0)
}
func (m *MockTaskboardRepository) RemoveProjectMember(accountId, projectId int) error {
	args := m.Called(accountId, projectId)
	return args.Error(0)
}
func (m *MockTaskboardRepository) UpdateProject(params UpdateProjectParams) (Project, error) {
	args := m.Called(params)
	return args.Get(0).(Project), args.Error(1)
}
func (m *MockTaskboardRepository) DeleteProject(projectId int) error {
	args := m.Called(projectId)
	return args.Error(0)
}
func (m *MockTaskboardRepository) CreateTask(params CreateTaskParams) (Task, error) {
	args := m.Called(params)
	return args.Get(0).(Task), args.Error(1)
}
func (m *MockTaskboardRepository) GetTaskById(taskId int) (Task, error) {
	args := m.Called(taskId)
	return args.Get(0).(Task), args.Error(1)
}
func (m *MockTaskboardRepository) ListTasksForProject(projectId int) ([]Task, error) {
	args := m.Called(projectId)
	return args.Get(0).([]Task), args.Error(1)
}
func (m *MockTaskboardRepository) UpdateTask(params UpdateTaskParams) (Task, error) {
	args := m.Called(params)
	return args.Get(0).(Task), args.Error(1)
}
func (m *MockTaskboardRepository) DeleteTask(taskId int) error {
	args := m.Called(taskId)
	return args.Error(0)
}
func (m *MockTaskboardRepository) CreateComment(params CreateCommentParams) (Comment, error) {
	args := m.Called(params)
	return args.Get(0).(Comment), args.Error(1)
}
func (m *MockTaskboardRepository) ListCommentsForTask(taskId int) ([]Comment, error) {
	args := m.Called(taskId)
	return args.Get(0).([]Comment), args.Error(1)
}
func (m *MockTaskboardRepository) CreateNotification(params CreateNotificationParams) (Notification, error) {
	args := m.Called(params)
	return args.Get(0).(Notification), args.Error(1)
}
func (m *MockTaskboardRepository) ListNotifications(accountId, limit, offset int) ([]Notification, error) {
	args := m.Called(accountId, limit, offset)
	return args.Get(0).([]Notification), args.Error(1)
}
func (m *MockTaskboardRepository) CountUnreadNotifications(accountId int) (int, error) {
	args := m.Called(accountId)
	return args.Int(0), args.Error(1)
}
func (m *MockTaskboardRepository) MarkNotificationRead(notificationId, accountId int) (Notification, error) {
	args := m.Called(notificationId, accountId)
	return args.Get(0).(Notification), args.Error(1)
}
func (m *MockTaskboardRepository) MarkAllNotificationsRead(accountId int) error {
	args := m.Called(accountId)
	return args.Error(0)
}
func (m *MockTaskboardRepository) DeleteNotification(notificationId, accountId int) error {
	args := m.Called(notificationId, accountId)
	return args.Error(0)
}
