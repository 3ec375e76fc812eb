package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/handlers"

	"taskboard/internal/config"
	"taskboard/internal/database"
	"taskboard/internal/relay"
	"taskboard/internal/stats"
)

type TaskboardApp struct {
	log            *log.Logger
	db             database.TaskboardRepository
	srv            *http.Server
	relay          *relay.Relay
	ingress        *relay.Ingress
	stats          stats.StatsProvider
	validate       *validator.Validate
	signingKey     []byte
	allowedOrigins []string
}

func NewTaskboardApp(mux *http.ServeMux, logger *log.Logger, rl *relay.Relay, ing *relay.Ingress,
	db database.TaskboardRepository, sp stats.StatsProvider, cfg *config.Config) *TaskboardApp {
	s := &TaskboardApp{
		log:            logger,
		db:             db,
		relay:          rl,
		ingress:        ing,
		stats:          sp,
		validate:       validator.New(),
		signingKey:     cfg.SigningKey,
		allowedOrigins: cfg.AllowedOrigins,
	}

	mux.HandleFunc("POST /api/auth/register", s.createAccount)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("GET /api/auth/session", s.authMiddleware(s.session))
	mux.Handle("GET /api/auth/logout", s.authMiddleware(s.logout))
	mux.Handle("/api/account", s.authMiddleware(s.account))
	mux.Handle("POST /api/projects", s.authMiddleware(s.createProject))
	mux.Handle("GET /api/projects", s.authMiddleware(s.listProjects))
	mux.Handle("POST /api/projects/join", s.authMiddleware(s.joinProject))
	mux.Handle("GET /api/projects/{id}", s.authMiddleware(s.getProject))
	mux.Handle("PUT /api/projects/{id}", s.authMiddleware(s.updateProject))
	mux.Handle("DELETE /api/projects/{id}", s.authMiddleware(s.deleteProject))
	mux.Handle("DELETE /api/projects/{id}/members/me", s.authMiddleware(s.leaveProject))
	mux.Handle("GET /api/projects/{id}/tasks", s.authMiddleware(s.listTasks))
	mux.Handle("POST /api/projects/{id}/tasks", s.authMiddleware(s.createTask))
	mux.Handle("GET /api/tasks/{id}", s.authMiddleware(s.getTask))
	mux.Handle("PUT /api/tasks/{id}", s.authMiddleware(s.updateTask))
	mux.Handle("DELETE /api/tasks/{id}", s.authMiddleware(s.deleteTask))
	mux.Handle("POST /api/tasks/{id}/comments", s.authMiddleware(s.createComment))
	mux.Handle("GET /api/notifications", s.authMiddleware(s.listNotifications))
	mux.Handle("PUT /api/notifications/read-all", s.authMiddleware(s.markAllNotificationsRead))
	mux.Handle("PUT /api/notifications/{id}/read", s.authMiddleware(s.markNotificationRead))
	mux.Handle("DELETE /api/notifications/{id}", s.authMiddleware(s.deleteNotification))
	mux.HandleFunc("GET /api/health", s.health)
	mux.Handle("GET /ws", s.authMiddleware(s.serveWs))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.srv = srv
	return s
}

func (s *TaskboardApp) Start() error {
	s.log.Printf("starting server on %s\n", s.srv.Addr)
	return s.srv.ListenAndServe()
}

func (s *TaskboardApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}

func (s *TaskboardApp) health(w http.ResponseWriter, _ *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.log.Println("health check:", err)
		s.writeJson(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	s.writeJson(w, http.StatusOK, map[string]string{"status": "ok"})
}
