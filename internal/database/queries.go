package database

import (
	"database/sql"
	"fmt"
	"time"
)

const (
	addMemberQuery = "INSERT INTO project_members (account_id, project_id, created_at) VALUES ($1, $2, $3)"

	taskSelect = "SELECT t.id, t.project_id, t.title, t.description, t.status, t.assignee_id, t.creator_id, " +
		"t.due_date, t.created_at, t.updated_at, asg.username, cr.username " +
		"FROM tasks t " +
		"LEFT JOIN accounts asg ON t.assignee_id = asg.id " +
		"JOIN accounts cr ON t.creator_id = cr.id"
)

// nullInt maps the zero id to SQL NULL so optional references stay unset.
func nullInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func (db *PgTaskboardRepository) CreateAccount(params CreateAccountParams) (User, error) {
	res := db.conn.QueryRow(
		"INSERT INTO accounts (username, email, password_hash, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $4) RETURNING id, username, email",
		params.Username,
		params.EmailAddress,
		params.PasswordHash,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
	)

	return u, err
}

func (db *PgTaskboardRepository) UpdateAccount(params UpdateAccountParams) (User, error) {
	res := db.conn.QueryRow(
		"UPDATE accounts SET username = $2, password_hash = $3, updated_at = $4 "+
			"WHERE id = $1 RETURNING id, username, email",
		params.UserId,
		params.Username,
		params.PasswordHash,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
	)

	return u, err
}

func (db *PgTaskboardRepository) GetAccountById(accountId int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email FROM accounts WHERE id = $1 LIMIT 1",
		accountId,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.EmailAddress,
	)

	return user, err
}

func (db *PgTaskboardRepository) GetAccountByEmail(email string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, password_hash FROM accounts WHERE email = $1 LIMIT 1",
		email,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.EmailAddress,
		&user.PasswordHash,
	)

	return user, err
}

func (db *PgTaskboardRepository) GetAccountByUsername(username string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email FROM accounts WHERE username = $1 LIMIT 1",
		username,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.EmailAddress,
	)

	return user, err
}

// CreateProject inserts the project and enrolls the owner as its first member
// in a single transaction.
func (db *PgTaskboardRepository) CreateProject(params CreateProjectParams) (Project, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return Project{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res := tx.QueryRow(
		"INSERT INTO projects (external_id, name, description, deadline, owner_id, invite_code, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $7) "+
			"RETURNING id, external_id, name, description, owner_id, invite_code, created_at, updated_at",
		params.ExternalId,
		params.Name,
		params.Description,
		nullTime(params.Deadline),
		params.OwnerId,
		params.InviteCode,
		time.Now().UTC(),
	)

	var project Project
	err = res.Scan(
		&project.Id,
		&project.ExternalId,
		&project.Name,
		&project.Description,
		&project.OwnerId,
		&project.InviteCode,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return Project{}, err
	}
	project.Deadline = params.Deadline

	_, err = tx.Exec(addMemberQuery, params.OwnerId, project.Id, time.Now().UTC())
	if err != nil {
		return Project{}, err
	}

	if err = tx.Commit(); err != nil {
		return Project{}, err
	}

	return project, err
}

func (db *PgTaskboardRepository) getProject(where string, arg any) (Project, error) {
	row := db.conn.QueryRow(
		"SELECT p.id, p.external_id, p.name, p.description, p.deadline, p.owner_id, p.invite_code, "+
			"p.created_at, p.updated_at, a.username "+
			"FROM projects p JOIN accounts a ON p.owner_id = a.id "+
			"WHERE "+where+" LIMIT 1",
		arg,
	)

	var (
		project  Project
		deadline sql.NullTime
	)
	err := row.Scan(
		&project.Id,
		&project.ExternalId,
		&project.Name,
		&project.Description,
		&deadline,
		&project.OwnerId,
		&project.InviteCode,
		&project.CreatedAt,
		&project.UpdatedAt,
		&project.Owner.Username,
	)
	if err != nil {
		return Project{}, err
	}

	project.Deadline = deadline.Time
	project.Owner.Id = project.OwnerId

	return project, nil
}

func (db *PgTaskboardRepository) GetProjectById(projectId int) (Project, error) {
	return db.getProject("p.id = $1", projectId)
}

func (db *PgTaskboardRepository) GetProjectByExternalId(externalId string) (Project, error) {
	return db.getProject("p.external_id = $1", externalId)
}

func (db *PgTaskboardRepository) GetProjectByInviteCode(inviteCode string) (Project, error) {
	return db.getProject("p.invite_code = $1", inviteCode)
}

func (db *PgTaskboardRepository) ListProjectsForAccount(accountId int) ([]Project, error) {
	rows, err := db.conn.Query(
		"SELECT p.id, p.external_id, p.name, p.description, p.deadline, p.owner_id, p.created_at, p.updated_at "+
			"FROM project_members m JOIN projects p ON p.id = m.project_id "+
			"WHERE m.account_id = $1 ORDER BY p.created_at",
		accountId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects = make([]Project, 0)
	for rows.Next() {
		var (
			project  Project
			deadline sql.NullTime
		)
		if err = rows.Scan(
			&project.Id,
			&project.ExternalId,
			&project.Name,
			&project.Description,
			&deadline,
			&project.OwnerId,
			&project.CreatedAt,
			&project.UpdatedAt,
		); err != nil {
			break
		}

		project.Deadline = deadline.Time
		projects = append(projects, project)
	}

	return projects, err
}

func (db *PgTaskboardRepository) ListProjectMembers(projectId int) ([]User, error) {
	rows, err := db.conn.Query(
		"SELECT a.id, a.username, a.email FROM project_members m "+
			"JOIN accounts a ON m.account_id = a.id WHERE m.project_id = $1 ORDER BY a.id",
		projectId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members = make([]User, 0)
	for rows.Next() {
		var member User
		if err = rows.Scan(&member.Id, &member.Username, &member.EmailAddress); err != nil {
			break
		}

		members = append(members, member)
	}

	return members, err
}

func (db *PgTaskboardRepository) IsProjectMember(accountId, projectId int) bool {
	res := db.conn.QueryRow(
		"SELECT id FROM project_members WHERE account_id = $1 AND project_id = $2 LIMIT 1",
		accountId,
		projectId,
	)

	var id int
	return res.Scan(&id) == nil
}

func (db *PgTaskboardRepository) AddProjectMember(accountId, projectId int) error {
	_, err := db.conn.Exec(addMemberQuery, accountId, projectId, time.Now().UTC())

	return err
}

func (db *PgTaskboardRepository) RemoveProjectMember(accountId, projectId int) error {
	_, err := db.conn.Exec(
		"DELETE FROM project_members WHERE account_id = $1 AND project_id = $2",
		accountId,
		projectId,
	)

	return err
}

func (db *PgTaskboardRepository) UpdateProject(params UpdateProjectParams) (Project, error) {
	res := db.conn.QueryRow(
		"UPDATE projects SET name = $2, description = $3, deadline = $4, updated_at = $5 "+
			"WHERE id = $1 RETURNING id, external_id, name, description, owner_id, created_at, updated_at",
		params.ProjectId,
		params.Name,
		params.Description,
		nullTime(params.Deadline),
		time.Now().UTC(),
	)

	var project Project
	err := res.Scan(
		&project.Id,
		&project.ExternalId,
		&project.Name,
		&project.Description,
		&project.OwnerId,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	project.Deadline = params.Deadline

	return project, err
}

// DeleteProject removes the project and everything that hangs off it.
func (db *PgTaskboardRepository) DeleteProject(projectId int) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.Exec("DELETE FROM notifications WHERE project_id = $1", projectId)
	if err != nil {
		return err
	}

	_, err = tx.Exec(
		"DELETE FROM task_comments WHERE task_id IN (SELECT id FROM tasks WHERE project_id = $1)",
		projectId,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec("DELETE FROM tasks WHERE project_id = $1", projectId)
	if err != nil {
		return err
	}

	_, err = tx.Exec("DELETE FROM project_members WHERE project_id = $1", projectId)
	if err != nil {
		return err
	}

	_, err = tx.Exec("DELETE FROM projects WHERE id = $1", projectId)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (db *PgTaskboardRepository) CreateTask(params CreateTaskParams) (Task, error) {
	res := db.conn.QueryRow(
		"INSERT INTO tasks (project_id, title, description, status, assignee_id, creator_id, due_date, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8) RETURNING id",
		params.ProjectId,
		params.Title,
		params.Description,
		params.Status,
		nullInt(params.AssigneeId),
		params.CreatorId,
		nullTime(params.DueDate),
		time.Now().UTC(),
	)

	var taskId int
	if err := res.Scan(&taskId); err != nil {
		return Task{}, err
	}

	return db.GetTaskById(taskId)
}

func (db *PgTaskboardRepository) GetTaskById(taskId int) (Task, error) {
	row := db.conn.QueryRow(taskSelect+" WHERE t.id = $1 LIMIT 1", taskId)

	task, err := scanTask(row)
	if err != nil {
		return Task{}, err
	}

	task.Comments, err = db.ListCommentsForTask(task.Id)

	return task, err
}

func (db *PgTaskboardRepository) ListTasksForProject(projectId int) ([]Task, error) {
	rows, err := db.conn.Query(taskSelect+" WHERE t.project_id = $1 ORDER BY t.created_at", projectId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks = make([]Task, 0)
	for rows.Next() {
		var task Task
		if task, err = scanTask(rows); err != nil {
			break
		}

		tasks = append(tasks, task)
	}

	return tasks, err
}

func (db *PgTaskboardRepository) UpdateTask(params UpdateTaskParams) (Task, error) {
	res, err := db.conn.Exec(
		"UPDATE tasks SET title = $2, description = $3, status = $4, assignee_id = $5, due_date = $6, updated_at = $7 "+
			"WHERE id = $1",
		params.TaskId,
		params.Title,
		params.Description,
		params.Status,
		nullInt(params.AssigneeId),
		nullTime(params.DueDate),
		time.Now().UTC(),
	)
	if err != nil {
		return Task{}, err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Task{}, sql.ErrNoRows
	}

	return db.GetTaskById(params.TaskId)
}

func (db *PgTaskboardRepository) DeleteTask(taskId int) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.Exec("DELETE FROM task_comments WHERE task_id = $1", taskId)
	if err != nil {
		return err
	}

	_, err = tx.Exec("DELETE FROM tasks WHERE id = $1", taskId)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (db *PgTaskboardRepository) CreateComment(params CreateCommentParams) (Comment, error) {
	res := db.conn.QueryRow(
		"INSERT INTO task_comments (task_id, author_id, content, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING id, task_id, author_id, content, created_at",
		params.TaskId,
		params.AuthorId,
		params.Content,
		time.Now().UTC(),
	)

	var comment Comment
	err := res.Scan(
		&comment.Id,
		&comment.TaskId,
		&comment.AuthorId,
		&comment.Content,
		&comment.CreatedAt,
	)
	if err != nil {
		return Comment{}, err
	}

	comment.Author, err = db.GetAccountById(comment.AuthorId)

	return comment, err
}

func (db *PgTaskboardRepository) ListCommentsForTask(taskId int) ([]Comment, error) {
	rows, err := db.conn.Query(
		"SELECT c.id, c.task_id, c.author_id, a.username, c.content, c.created_at "+
			"FROM task_comments c JOIN accounts a ON c.author_id = a.id "+
			"WHERE c.task_id = $1 ORDER BY c.created_at",
		taskId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments = make([]Comment, 0)
	for rows.Next() {
		var comment Comment
		if err = rows.Scan(
			&comment.Id,
			&comment.TaskId,
			&comment.AuthorId,
			&comment.Author.Username,
			&comment.Content,
			&comment.CreatedAt,
		); err != nil {
			break
		}

		comment.Author.Id = comment.AuthorId
		comments = append(comments, comment)
	}

	return comments, err
}

func (db *PgTaskboardRepository) CreateNotification(params CreateNotificationParams) (Notification, error) {
	res := db.conn.QueryRow(
		"INSERT INTO notifications (recipient_id, sender_id, type, title, message, project_id, task_id, comment_id, read, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, $9) RETURNING id, created_at",
		params.RecipientId,
		params.SenderId,
		params.Type,
		params.Title,
		params.Message,
		nullInt(params.ProjectId),
		nullInt(params.TaskId),
		nullInt(params.CommentId),
		time.Now().UTC(),
	)

	notification := Notification{
		RecipientId: params.RecipientId,
		SenderId:    params.SenderId,
		Type:        params.Type,
		Title:       params.Title,
		Message:     params.Message,
		ProjectId:   params.ProjectId,
		TaskId:      params.TaskId,
		CommentId:   params.CommentId,
	}
	err := res.Scan(&notification.Id, &notification.CreatedAt)

	return notification, err
}

func (db *PgTaskboardRepository) ListNotifications(accountId, limit, offset int) ([]Notification, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.conn.Query(
		"SELECT n.id, n.recipient_id, n.sender_id, s.username, n.type, n.title, n.message, "+
			"n.project_id, n.task_id, n.comment_id, n.read, n.read_at, n.created_at "+
			"FROM notifications n JOIN accounts s ON n.sender_id = s.id "+
			"WHERE n.recipient_id = $1 ORDER BY n.created_at DESC LIMIT $2 OFFSET $3",
		accountId,
		limit,
		offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications = make([]Notification, 0, limit)
	for rows.Next() {
		var (
			notification Notification
			projectId    sql.NullInt64
			taskId       sql.NullInt64
			commentId    sql.NullInt64
			readAt       sql.NullTime
		)
		if err = rows.Scan(
			&notification.Id,
			&notification.RecipientId,
			&notification.SenderId,
			&notification.Sender.Username,
			&notification.Type,
			&notification.Title,
			&notification.Message,
			&projectId,
			&taskId,
			&commentId,
			&notification.Read,
			&readAt,
			&notification.CreatedAt,
		); err != nil {
			break
		}

		notification.Sender.Id = notification.SenderId
		notification.ProjectId = int(projectId.Int64)
		notification.TaskId = int(taskId.Int64)
		notification.CommentId = int(commentId.Int64)
		notification.ReadAt = readAt.Time
		notifications = append(notifications, notification)
	}

	return notifications, err
}

func (db *PgTaskboardRepository) CountUnreadNotifications(accountId int) (int, error) {
	row := db.conn.QueryRow(
		"SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND read = FALSE",
		accountId,
	)

	var count int
	err := row.Scan(&count)

	return count, err
}

func (db *PgTaskboardRepository) MarkNotificationRead(notificationId, accountId int) (Notification, error) {
	res := db.conn.QueryRow(
		"UPDATE notifications SET read = TRUE, read_at = $3 "+
			"WHERE id = $1 AND recipient_id = $2 "+
			"RETURNING id, recipient_id, sender_id, type, title, message, read, read_at, created_at",
		notificationId,
		accountId,
		time.Now().UTC(),
	)

	var notification Notification
	err := res.Scan(
		&notification.Id,
		&notification.RecipientId,
		&notification.SenderId,
		&notification.Type,
		&notification.Title,
		&notification.Message,
		&notification.Read,
		&notification.ReadAt,
		&notification.CreatedAt,
	)

	return notification, err
}

func (db *PgTaskboardRepository) MarkAllNotificationsRead(accountId int) error {
	_, err := db.conn.Exec(
		"UPDATE notifications SET read = TRUE, read_at = $2 WHERE recipient_id = $1 AND read = FALSE",
		accountId,
		time.Now().UTC(),
	)

	return err
}

func (db *PgTaskboardRepository) DeleteNotification(notificationId, accountId int) error {
	res, err := db.conn.Exec(
		"DELETE FROM notifications WHERE id = $1 AND recipient_id = $2",
		notificationId,
		accountId,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("notification %d not found", notificationId)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var (
		task             Task
		assigneeId       sql.NullInt64
		assigneeUsername sql.NullString
		dueDate          sql.NullTime
	)

	err := row.Scan(
		&task.Id,
		&task.ProjectId,
		&task.Title,
		&task.Description,
		&task.Status,
		&assigneeId,
		&task.CreatorId,
		&dueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
		&assigneeUsername,
		&task.Creator.Username,
	)
	if err != nil {
		return Task{}, err
	}

	task.DueDate = dueDate.Time
	task.Creator.Id = task.CreatorId
	if assigneeId.Valid {
		task.AssigneeId = int(assigneeId.Int64)
		task.Assignee = &User{Id: task.AssigneeId, Username: assigneeUsername.String}
	}

	return task, nil
}
