package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"taskboard/internal/database"
	"taskboard/internal/types"
)

func TestListNotifications(t *testing.T) {
	db := &database.MockTaskboardRepository{}
	app := newTestApp(t, db)

	db.On("ListNotifications", 1, 10, 20).Return([]database.Notification{
		{
			Id:          7,
			RecipientId: 1,
			SenderId:    2,
			Sender:      database.User{Id: 2, Username: "bob"},
			Type:        types.NotificationTaskAssigned,
			Title:       "New Task Assigned",
			CreatedAt:   time.Now().UTC(),
		},
	}, nil)
	db.On("CountUnreadNotifications", 1).Return(3, nil)

	rr := httptest.NewRecorder()
	req := authedRequest(t, http.MethodGet, "/api/notifications?limit=10&offset=20", 1, nil)

	app.listNotifications(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp NotificationListResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Len(t, resp.Notifications, 1)
	assert.Equal(t, 3, resp.UnreadCount)
	assert.Equal(t, "bob", resp.Notifications[0].Sender.Username)
}

func TestListNotifications_BadPaging(t *testing.T) {
	db := &database.MockTaskboardRepository{}
	app := newTestApp(t, db)

	rr := httptest.NewRecorder()
	req := authedRequest(t, http.MethodGet, "/api/notifications?limit=abc", 1, nil)

	app.listNotifications(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	db.AssertNotCalled(t, "ListNotifications", mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkNotificationRead(t *testing.T) {
	db := &database.MockTaskboardRepository{}
	app := newTestApp(t, db)

	readAt := time.Now().UTC()
	db.On("MarkNotificationRead", 7, 1).Return(database.Notification{
		Id:          7,
		RecipientId: 1,
		Read:        true,
		ReadAt:      readAt,
	}, nil)

	rr := httptest.NewRecorder()
	req := authedRequest(t, http.MethodPut, "/api/notifications/7/read", 1, nil)
	req.SetPathValue("id", "7")

	app.markNotificationRead(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var notification types.Notification
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&notification))
	assert.True(t, notification.Read)
	assert.NotNil(t, notification.ReadAt)
}

func TestMarkNotificationRead_NotFound(t *testing.T) {
	db := &database.MockTaskboardRepository{}
	app := newTestApp(t, db)

	// ids belonging to other recipients look like missing rows
	db.On("MarkNotificationRead", 7, 2).Return(database.Notification{}, sql.ErrNoRows)

	rr := httptest.NewRecorder()
	req := authedRequest(t, http.MethodPut, "/api/notifications/7/read", 2, nil)
	req.SetPathValue("id", "7")

	app.markNotificationRead(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	db := &database.MockTaskboardRepository{}
	app := newTestApp(t, db)

	db.On("MarkAllNotificationsRead", 1).Return(nil)

	rr := httptest.NewRecorder()
	req := authedRequest(t, http.MethodPut, "/api/notifications/read-all", 1, nil)

	app.markAllNotificationsRead(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	db.AssertExpectations(t)
}

func TestDeleteNotification(t *testing.T) {
	db := &database.MockTaskboardRepository{}
	app := newTestApp(t, db)

	db.On("DeleteNotification", 7, 1).Return(nil)

	rr := httptest.NewRecorder()
	req := authedRequest(t, http.MethodDelete, "/api/notifications/7", 1, nil)
	req.SetPathValue("id", "7")

	app.deleteNotification(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	db.AssertExpectations(t)
}
