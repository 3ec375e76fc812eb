package types

import (
	"time"
)

type User struct {
	Id           int       `json:"id"`
	Username     string    `json:"username"`
	EmailAddress string    `json:"email_address,omitempty"`
	Password     string    `json:"-"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

type Project struct {
	Id          int       `json:"id"`
	ExternalId  string    `json:"external_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Deadline    time.Time `json:"deadline,omitempty"`
	Owner       User      `json:"owner"`
	Members     []User    `json:"members"`
	InviteCode  string    `json:"invite_code,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

type Task struct {
	Id          int       `json:"id"`
	ProjectId   int       `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Assignee    *User     `json:"assignee,omitempty"`
	Creator     User      `json:"creator"`
	DueDate     time.Time `json:"due_date,omitempty"`
	Comments    []Comment `json:"comments,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

type Comment struct {
	Id        int       `json:"id"`
	TaskId    int       `json:"task_id"`
	Author    User      `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Notification struct {
	Id        int        `json:"id"`
	Recipient User       `json:"recipient"`
	Sender    User       `json:"sender"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	ProjectId int        `json:"project_id,omitempty"`
	TaskId    int        `json:"task_id,omitempty"`
	CommentId int        `json:"comment_id,omitempty"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Task status values accepted by the API and stored verbatim.
const (
	TaskStatusTodo       = "To Do"
	TaskStatusInProgress = "In Progress"
	TaskStatusDone       = "Done"
)

// Notification type tags.
const (
	NotificationTaskAssigned   = "task_assigned"
	NotificationTaskUpdated    = "task_updated"
	NotificationTaskCompleted  = "task_completed"
	NotificationTaskCommented  = "task_commented"
	NotificationProjectJoined  = "project_joined"
	NotificationProjectUpdated = "project_updated"
)
