package httpserver

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"taskManagement/internal/auth"
	"taskManagement/internal/config"
	"taskManagement/repository"
)

// Server bundles dependencies and implements the HTTP+JSON API.
type Server struct {
	Users *repository.UserRepository
	Tasks *repository.TaskRepository
	Cfg   *config.Config
}

// Router builds the API router: public identity routes, bearer-protected task
// routes, and JSON bodies for router-level 404/405.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	protected := api.PathPrefix("/").Subrouter()
	protected.Use(auth.Middleware(s.Cfg.Auth.JWTSecret))
	protected.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	protected.HandleFunc("/tasks", s.handleCreateTask).Methods(http.MethodPost)
	protected.HandleFunc("/tasks", s.handleListTasks).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/{id:[0-9]+}", s.handleUpdateTask).Methods(http.MethodPut)
	protected.HandleFunc("/tasks/{id:[0-9]+}", s.handleDeleteTask).Methods(http.MethodDelete)

	// Access log + panic recovery around the whole router.
	return handlers.RecoveryHandler()(handlers.LoggingHandler(os.Stdout, r))
}

// Start starts the HTTP server on the configured address and returns a shutdown function.
func Start(cfg *config.Config, users *repository.UserRepository, tasks *repository.TaskRepository) (func(context.Context) error, error) {
	if cfg == nil {
		panic("config is required")
	}

	addr := cfg.HTTP.Address
	if addr == "" {
		addr = ":8080"
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	s := &Server{Users: users, Tasks: tasks, Cfg: cfg}
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() { _ = srv.Serve(lis) }()

	return func(ctx context.Context) error {
		return srv.Shutdown(ctx)
	}, nil
}
