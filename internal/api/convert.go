package api

import (
	"taskboard/internal/database"
	"taskboard/internal/types"
)

func toUser(u database.User) types.User {
	return types.User{
		Id:           u.Id,
		Username:     u.Username,
		EmailAddress: u.EmailAddress,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func toProject(p database.Project) types.Project {
	project := types.Project{
		Id:          p.Id,
		ExternalId:  p.ExternalId,
		Name:        p.Name,
		Description: p.Description,
		Deadline:    p.Deadline,
		Owner:       types.User{Id: p.OwnerId, Username: p.Owner.Username},
		InviteCode:  p.InviteCode,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}

	for _, m := range p.Members {
		project.Members = append(project.Members, toUser(m))
	}

	return project
}

func toTask(t database.Task) types.Task {
	task := types.Task{
		Id:          t.Id,
		ProjectId:   t.ProjectId,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Creator:     types.User{Id: t.CreatorId, Username: t.Creator.Username},
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}

	if t.Assignee != nil {
		task.Assignee = &types.User{Id: t.Assignee.Id, Username: t.Assignee.Username}
	}

	for _, c := range t.Comments {
		task.Comments = append(task.Comments, toComment(c))
	}

	return task
}

func toComment(c database.Comment) types.Comment {
	return types.Comment{
		Id:        c.Id,
		TaskId:    c.TaskId,
		Author:    types.User{Id: c.AuthorId, Username: c.Author.Username},
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

func toNotification(n database.Notification) types.Notification {
	notification := types.Notification{
		Id:        n.Id,
		Recipient: types.User{Id: n.RecipientId},
		Sender:    types.User{Id: n.SenderId, Username: n.Sender.Username},
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		ProjectId: n.ProjectId,
		TaskId:    n.TaskId,
		CommentId: n.CommentId,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}

	if !n.ReadAt.IsZero() {
		readAt := n.ReadAt
		notification.ReadAt = &readAt
	}

	return notification
}
