package relay

import (
	"encoding/json"
	"strings"
	"time"

	"taskboard/internal/types"
)

// Event names pushed to clients.
const (
	EventTaskCreated     = "taskCreated"
	EventTaskUpdated     = "taskUpdated"
	EventTaskDeleted     = "taskDeleted"
	EventCommentAdded    = "commentAdded"
	EventOnlineMembers   = "onlineMembers"
	EventUserActivity    = "userActivity"
	EventProjectUpdated  = "projectUpdated"
	EventMemberJoined    = "memberJoined"
	EventMemberLeft      = "memberLeft"
	EventNewNotification = "newNotification"
)

// Event names accepted from clients. Task events arrive here when the client
// relays a mutation it already completed over the REST API; the relay
// rebroadcasts them to the rest of the room.
const (
	clientJoinProject  = "joinProject"
	clientLeaveProject = "leaveProject"
	clientUserActivity = "userActivity"
	clientTaskCreated  = "taskCreated"
	clientTaskUpdated  = "taskUpdated"
	clientTaskDeleted  = "taskDeleted"
)

const projectRoomPrefix = "project_"

// ProjectRoom returns the room key for a project's collaboration room.
// Personal channels have no room key: they are the per-user connection sets
// the registry maintains.
func ProjectRoom(projectId string) string {
	return projectRoomPrefix + projectId
}

// IsProjectRoom reports whether key names a collaboration room.
func IsProjectRoom(key string) bool {
	return strings.HasPrefix(key, projectRoomPrefix)
}

type Identity struct {
	UserId   int    `json:"user_id"`
	Username string `json:"username"`
}

// Event is the envelope for every message pushed to a client.
type Event struct {
	Name      string    `json:"event"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEvent(name string, payload any) *Event {
	return &Event{Name: name, Payload: payload, Timestamp: Now()}
}

// ClientEvent is the envelope for every message read from a client.
type ClientEvent struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// Member is one entry in a presence snapshot.
type Member struct {
	UserId   int    `json:"user_id"`
	Username string `json:"username"`
}

// FieldChange is one entry of an old-to-new delta attached to an update event.
type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

type joinProjectData struct {
	ProjectId string `json:"project_id"`
}

type userActivityData struct {
	ProjectId string `json:"project_id"`
	Activity  string `json:"activity"`
}

type taskCreatedData struct {
	ProjectId string     `json:"project_id"`
	Task      types.Task `json:"task"`
}

type taskUpdatedData struct {
	ProjectId string        `json:"project_id"`
	Task      types.Task    `json:"task"`
	Changes   []FieldChange `json:"changes,omitempty"`
}

type taskDeletedData struct {
	ProjectId string `json:"project_id"`
	TaskId    int    `json:"task_id"`
	TaskTitle string `json:"task_title"`
}

// TaskDeletedPayload is broadcast to a project room when a task is removed.
type TaskDeletedPayload struct {
	TaskId    int    `json:"task_id"`
	TaskTitle string `json:"task_title"`
	DeletedBy int    `json:"deleted_by"`
}

// TaskUpdatedPayload carries the updated task plus the delta that produced it.
type TaskUpdatedPayload struct {
	Task    types.Task    `json:"task"`
	Changes []FieldChange `json:"changes,omitempty"`
}

// CommentAddedPayload is broadcast to a project room on a new task comment.
type CommentAddedPayload struct {
	TaskId  int           `json:"task_id"`
	Comment types.Comment `json:"comment"`
}

// UserActivityPayload relays transient activity (typing etc.) to a room.
type UserActivityPayload struct {
	User     Member `json:"user"`
	Activity string `json:"activity"`
}

// MembershipPayload is broadcast when a user joins or leaves a project.
type MembershipPayload struct {
	ProjectId string     `json:"project_id"`
	User      types.User `json:"user"`
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
