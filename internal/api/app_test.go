package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"taskboard/internal/config"
	"taskboard/internal/database"
	"taskboard/internal/relay"
	"taskboard/internal/stats"
	"taskboard/internal/testutil"
)

func TestNewTaskboardApp_Routes(t *testing.T) {
	ms := &stats.MockStatsUpdater{}
	ms.On("RegisterMetric", mock.Anything).Return()

	logger := testutil.TestLogger(t)
	rl := relay.NewRelay(logger, ms)
	db := &database.MockTaskboardRepository{}
	ing := relay.NewIngress(logger, rl, db, ms)

	mux := http.NewServeMux()
	app := NewTaskboardApp(mux, logger, rl, ing, db, ms, &config.Config{
		ServerAddr: "localhost:8000",
		SigningKey: []byte("test-signing-key"),
	})
	assert.NotNil(t, app)

	tcases := []struct {
		method  string
		path    string
		pattern string
	}{
		{http.MethodPost, "/api/auth/register", "POST /api/auth/register"},
		{http.MethodPost, "/api/auth/login", "POST /api/auth/login"},
		{http.MethodGet, "/api/projects", "GET /api/projects"},
		{http.MethodPost, "/api/projects/join", "POST /api/projects/join"},
		{http.MethodGet, "/api/projects/p1", "GET /api/projects/{id}"},
		{http.MethodDelete, "/api/projects/p1/members/me", "DELETE /api/projects/{id}/members/me"},
		{http.MethodPost, "/api/projects/p1/tasks", "POST /api/projects/{id}/tasks"},
		{http.MethodPut, "/api/tasks/10", "PUT /api/tasks/{id}"},
		{http.MethodPost, "/api/tasks/10/comments", "POST /api/tasks/{id}/comments"},
		{http.MethodGet, "/api/notifications", "GET /api/notifications"},
		{http.MethodPut, "/api/notifications/read-all", "PUT /api/notifications/read-all"},
		{http.MethodPut, "/api/notifications/7/read", "PUT /api/notifications/{id}/read"},
		{http.MethodGet, "/api/health", "GET /api/health"},
		{http.MethodGet, "/ws", "GET /ws"},
	}

	for _, tc := range tcases {
		t.Run(tc.pattern, func(t *testing.T) {
			handler, pattern := mux.Handler(&http.Request{
				URL:    &url.URL{Path: tc.path},
				Method: tc.method,
			})
			assert.NotNil(t, handler, "expected a handler for %s %s", tc.method, tc.path)
			assert.Equal(t, tc.pattern, pattern)
		})
	}
}

func TestHealth(t *testing.T) {
	db := &database.MockTaskboardRepository{}
	app := newTestApp(t, db)

	db.On("Ping").Return(nil).Once()

	rr := httptest.NewRecorder()
	app.health(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])

	db.On("Ping").Return(errors.New("connection refused"))

	rr = httptest.NewRecorder()
	app.health(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
