package database

type TaskboardRepository interface {
	Ping() error
	CreateAccount(params CreateAccountParams) (User, error)
	UpdateAccount(params UpdateAccountParams) (User, error)
	GetAccountById(accountId int) (User, error)
	GetAccountByEmail(email string) (User, error)
	GetAccountByUsername(username string) (User, error)
	CreateProject(params CreateProjectParams) (Project, error)
	GetProjectById(projectId int) (Project, error)
	GetProjectByExternalId(externalId string) (Project, error)
	GetProjectByInviteCode(inviteCode string) (Project, error)
	ListProjectsForAccount(accountId int) ([]Project, error)
	ListProjectMembers(projectId int) ([]User, error)
	IsProjectMember(accountId, projectId int) bool
	AddProjectMember(accountId, projectId int) error
	RemoveProjectMember(accountId, projectId int) error
	UpdateProject(params UpdateProjectParams) (Project, error)
	DeleteProject(projectId int) error
	CreateTask(params CreateTaskParams) (Task, error)
	GetTaskById(taskId int) (Task, error)
	ListTasksForProject(projectId int) ([]Task, error)
	UpdateTask(params UpdateTaskParams) (Task, error)
	DeleteTask(taskId int) error
	CreateComment(params CreateCommentParams) (Comment, error)
	ListCommentsForTask(taskId int) ([]Comment, error)
	CreateNotification(params CreateNotificationParams) (Notification, error)
	ListNotifications(accountId, limit, offset int) ([]Notification, error)
	CountUnreadNotifications(accountId int) (int, error)
	MarkNotificationRead(notificationId, accountId int) (Notification, error)
	MarkAllNotificationsRead(accountId int) error
	DeleteNotification(notificationId, accountId int) error
}
