package relay

import (
	"encoding/json"
	"fmt"
	"log"

	"taskboard/internal/database"
	"taskboard/internal/stats"
	"taskboard/internal/types"
)

// Ingress is the seam between the business layer and the relay. Each entry
// point translates one committed mutation into a room broadcast and/or a
// personal-channel notification. Callers invoke it strictly after the
// mutation is persisted: nothing here can fail the business operation, and
// failures are logged and contained.
type Ingress struct {
	log   *log.Logger
	relay *Relay
	db    database.TaskboardRepository
	stats stats.StatsProvider
}

func NewIngress(logger *log.Logger, r *Relay, db database.TaskboardRepository, sp stats.StatsProvider) *Ingress {
	ing := &Ingress{
		log:   logger,
		relay: r,
		db:    db,
		stats: sp,
	}

	sp.RegisterMetric("NotificationsCreated")

	// Client-originated events route through a fixed dispatch table built
	// once at wiring time.
	r.handle(clientJoinProject, ing.handleJoinProject)
	r.handle(clientLeaveProject, ing.handleLeaveProject)
	r.handle(clientUserActivity, ing.handleUserActivity)
	r.handle(clientTaskCreated, ing.handleTaskCreated)
	r.handle(clientTaskUpdated, ing.handleTaskUpdated)
	r.handle(clientTaskDeleted, ing.handleTaskDeleted)

	return ing
}

func (i *Ingress) handleJoinProject(c *Conn, data json.RawMessage) {
	var d joinProjectData
	if err := json.Unmarshal(data, &d); err != nil || d.ProjectId == "" {
		i.log.Printf("invalid joinProject event from %q", c.id)
		return
	}

	if err := i.relay.Join(ProjectRoom(d.ProjectId), c.id); err != nil {
		i.log.Printf("join room for project %q: %v", d.ProjectId, err)
	}
}

func (i *Ingress) handleLeaveProject(c *Conn, data json.RawMessage) {
	var d joinProjectData
	if err := json.Unmarshal(data, &d); err != nil || d.ProjectId == "" {
		i.log.Printf("invalid leaveProject event from %q", c.id)
		return
	}

	i.relay.Leave(ProjectRoom(d.ProjectId), c.id)
}

func (i *Ingress) handleUserActivity(c *Conn, data json.RawMessage) {
	var d userActivityData
	if err := json.Unmarshal(data, &d); err != nil || d.ProjectId == "" {
		return
	}

	i.UserActivity(c.id, c.user, d.ProjectId, d.Activity)
}

func (i *Ingress) handleTaskCreated(c *Conn, data json.RawMessage) {
	var d taskCreatedData
	if err := json.Unmarshal(data, &d); err != nil || d.ProjectId == "" {
		return
	}

	// Relay only: the REST create path already produced the notifications.
	i.relay.BroadcastToRoom(ProjectRoom(d.ProjectId), EventTaskCreated, d.Task, c.id)
}

func (i *Ingress) handleTaskUpdated(c *Conn, data json.RawMessage) {
	var d taskUpdatedData
	if err := json.Unmarshal(data, &d); err != nil || d.ProjectId == "" {
		return
	}

	// Relay only: the REST update path already produced the notifications.
	i.relay.BroadcastToRoom(ProjectRoom(d.ProjectId), EventTaskUpdated,
		TaskUpdatedPayload{Task: d.Task, Changes: d.Changes}, c.id)
}

func (i *Ingress) handleTaskDeleted(c *Conn, data json.RawMessage) {
	var d taskDeletedData
	if err := json.Unmarshal(data, &d); err != nil || d.ProjectId == "" {
		return
	}

	i.TaskDeleted(c.id, identityUser(c.user), d.ProjectId, d.TaskId, d.TaskTitle)
}

// TaskCreated broadcasts the new task to the project room, minus the actor's
// own connection, and notifies the assignee if one was set at creation.
func (i *Ingress) TaskCreated(excludeConnId string, actor types.User, projectId string, task types.Task) {
	i.relay.BroadcastToRoom(ProjectRoom(projectId), EventTaskCreated, task, excludeConnId)

	if task.Assignee != nil {
		i.notify(actor, task.Assignee.Id, types.NotificationTaskAssigned,
			"New Task Assigned",
			fmt.Sprintf("You have been assigned to task: %q", task.Title),
			task.ProjectId, task.Id, 0)
	}
}

// TaskUpdated broadcasts the updated task plus its field delta, then fans out
// notifications: a reassignment notifies the new assignee, a transition to
// done notifies the creator, and any other change notifies assignee and
// creator. Recipients are deduplicated across rules, so a creator who is also
// the assignee receives exactly one notification per mutation.
func (i *Ingress) TaskUpdated(excludeConnId string, actor types.User, projectId string, task types.Task, changes []FieldChange) {
	i.relay.BroadcastToRoom(ProjectRoom(projectId), EventTaskUpdated,
		TaskUpdatedPayload{Task: task, Changes: changes}, excludeConnId)

	type pending struct {
		ntype, title, message string
	}

	queue := make(map[int]pending)
	add := func(recipientId int, p pending) {
		if recipientId == 0 {
			return
		}
		if _, ok := queue[recipientId]; ok {
			return
		}
		queue[recipientId] = p
	}

	if newAssignee, ok := changedTo(changes, "assignee"); ok && newAssignee != "" && task.Assignee != nil {
		add(task.Assignee.Id, pending{
			ntype:   types.NotificationTaskAssigned,
			title:   "New Task Assigned",
			message: fmt.Sprintf("You have been assigned to task: %q", task.Title),
		})
	}

	if newStatus, ok := changedTo(changes, "status"); ok && newStatus == types.TaskStatusDone {
		add(task.Creator.Id, pending{
			ntype:   types.NotificationTaskCompleted,
			title:   "Task Completed",
			message: fmt.Sprintf("Task %q has been completed", task.Title),
		})
	} else {
		updated := pending{
			ntype:   types.NotificationTaskUpdated,
			title:   "Task Updated",
			message: fmt.Sprintf("Task %q has been updated", task.Title),
		}
		if task.Assignee != nil {
			add(task.Assignee.Id, updated)
		}
		add(task.Creator.Id, updated)
	}

	for recipientId, p := range queue {
		i.notify(actor, recipientId, p.ntype, p.title, p.message, task.ProjectId, task.Id, 0)
	}
}

// TaskDeleted broadcasts the deletion to the project room, minus the actor.
func (i *Ingress) TaskDeleted(excludeConnId string, actor types.User, projectId string, taskId int, taskTitle string) {
	i.relay.BroadcastToRoom(ProjectRoom(projectId), EventTaskDeleted, TaskDeletedPayload{
		TaskId:    taskId,
		TaskTitle: taskTitle,
		DeletedBy: actor.Id,
	}, excludeConnId)
}

// CommentAdded broadcasts the new comment to the project room and notifies
// the task's assignee and creator, deduplicated by recipient.
func (i *Ingress) CommentAdded(excludeConnId string, actor types.User, projectId string, task types.Task, comment types.Comment) {
	i.relay.BroadcastToRoom(ProjectRoom(projectId), EventCommentAdded, CommentAddedPayload{
		TaskId:  task.Id,
		Comment: comment,
	}, excludeConnId)

	recipients := make(map[int]struct{})
	if task.Assignee != nil {
		recipients[task.Assignee.Id] = struct{}{}
	}
	recipients[task.Creator.Id] = struct{}{}

	for recipientId := range recipients {
		i.notify(actor, recipientId, types.NotificationTaskCommented,
			"New Comment",
			fmt.Sprintf("New comment on task: %q", task.Title),
			task.ProjectId, task.Id, comment.Id)
	}
}

// MemberJoined broadcasts the new membership to the project room and notifies
// the project owner.
func (i *Ingress) MemberJoined(actor types.User, project types.Project) {
	i.relay.BroadcastToRoom(ProjectRoom(project.ExternalId), EventMemberJoined, MembershipPayload{
		ProjectId: project.ExternalId,
		User:      actor,
	}, "")

	i.notify(actor, project.Owner.Id, types.NotificationProjectJoined,
		"New Team Member",
		fmt.Sprintf("%s joined your project: %q", actor.Username, project.Name),
		project.Id, 0, 0)
}

// MemberLeft broadcasts the departed membership to the project room.
func (i *Ingress) MemberLeft(actor types.User, project types.Project) {
	i.relay.BroadcastToRoom(ProjectRoom(project.ExternalId), EventMemberLeft, MembershipPayload{
		ProjectId: project.ExternalId,
		User:      actor,
	}, "")
}

// ProjectUpdated broadcasts the updated project to its room and notifies
// every member carried on the project snapshot. The actor is suppressed by
// the usual self-notification rule.
func (i *Ingress) ProjectUpdated(excludeConnId string, actor types.User, project types.Project) {
	i.relay.BroadcastToRoom(ProjectRoom(project.ExternalId), EventProjectUpdated, project, excludeConnId)

	for _, member := range project.Members {
		i.notify(actor, member.Id, types.NotificationProjectUpdated,
			"Project Updated",
			fmt.Sprintf("Project %q has been updated", project.Name),
			project.Id, 0, 0)
	}
}

// UserActivity relays transient activity (typing etc.) to the rest of the
// room. Nothing is persisted.
func (i *Ingress) UserActivity(excludeConnId string, actor Identity, projectId, activity string) {
	i.relay.BroadcastToRoom(ProjectRoom(projectId), EventUserActivity, UserActivityPayload{
		User:     Member{UserId: actor.UserId, Username: actor.Username},
		Activity: activity,
	}, excludeConnId)
}

// notify persists a notification record and pushes a live copy to the
// recipient's personal channel. A notification is never produced when
// recipient and sender are the same identity. Store or delivery failure is
// logged and contained: the mutation that triggered it already committed.
func (i *Ingress) notify(sender types.User, recipientId int, ntype, title, message string, projectId, taskId, commentId int) {
	if recipientId == 0 || recipientId == sender.Id {
		return
	}

	record, err := i.db.CreateNotification(database.CreateNotificationParams{
		RecipientId: recipientId,
		SenderId:    sender.Id,
		Type:        ntype,
		Title:       title,
		Message:     message,
		ProjectId:   projectId,
		TaskId:      taskId,
		CommentId:   commentId,
	})
	if err != nil {
		i.log.Printf("create notification for user %d: %v", recipientId, err)
		return
	}

	i.stats.Incr("NotificationsCreated")

	i.relay.SendToUser(recipientId, EventNewNotification, types.Notification{
		Id:        record.Id,
		Recipient: types.User{Id: recipientId},
		Sender:    types.User{Id: sender.Id, Username: sender.Username},
		Type:      ntype,
		Title:     title,
		Message:   message,
		ProjectId: projectId,
		TaskId:    taskId,
		CommentId: commentId,
		CreatedAt: record.CreatedAt,
	})
}

func changedTo(changes []FieldChange, field string) (string, bool) {
	for _, ch := range changes {
		if ch.Field == field {
			return ch.New, true
		}
	}

	return "", false
}

func identityUser(id Identity) types.User {
	return types.User{Id: id.UserId, Username: id.Username}
}
