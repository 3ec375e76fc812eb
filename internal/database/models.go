package database

import "time"

type User struct {
	Id           int
	Username     string
	EmailAddress string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Project struct {
	Id          int
	ExternalId  string
	Name        string
	Description string
	Deadline    time.Time
	OwnerId     int
	Owner       User
	InviteCode  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Members     []User
}

type Task struct {
	Id          int
	ProjectId   int
	Title       string
	Description string
	Status      string
	AssigneeId  int
	CreatorId   int
	DueDate     time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Assignee and Creator are filled in by queries that join accounts.
	// Assignee is nil for unassigned tasks.
	Assignee *User
	Creator  User
	Comments []Comment
}

type Comment struct {
	Id        int
	TaskId    int
	AuthorId  int
	Author    User
	Content   string
	CreatedAt time.Time
}

type Notification struct {
	Id          int
	RecipientId int
	SenderId    int
	Sender      User
	Type        string
	Title       string
	Message     string
	ProjectId   int
	TaskId      int
	CommentId   int
	Read        bool
	ReadAt      time.Time
	CreatedAt   time.Time
}

type CreateAccountParams struct {
	Username     string
	EmailAddress string
	PasswordHash string
}

type UpdateAccountParams struct {
	UserId       int
	Username     string
	PasswordHash string
}

type CreateProjectParams struct {
	Name        string
	Description string
	Deadline    time.Time
	OwnerId     int
	ExternalId  string
	InviteCode  string
}

type UpdateProjectParams struct {
	ProjectId   int
	Name        string
	Description string
	Deadline    time.Time
}

type CreateTaskParams struct {
	ProjectId   int
	Title       string
	Description string
	Status      string
	AssigneeId  int
	CreatorId   int
	DueDate     time.Time
}

type UpdateTaskParams struct {
	TaskId      int
	Title       string
	Description string
	Status      string
	AssigneeId  int
	DueDate     time.Time
}

type CreateCommentParams struct {
	TaskId   int
	AuthorId int
	Content  string
}

type CreateNotificationParams struct {
	RecipientId int
	SenderId    int
	Type        string
	Title       string
	Message     string
	ProjectId   int
	TaskId      int
	CommentId   int
}
