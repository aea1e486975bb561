package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Tomlord1122/todo-lists/internal/auth"
	"github.com/Tomlord1122/todo-lists/internal/database"
	"github.com/Tomlord1122/todo-lists/internal/flash"
	"github.com/Tomlord1122/todo-lists/internal/metrics"
	"github.com/Tomlord1122/todo-lists/internal/service"
	"github.com/Tomlord1122/todo-lists/internal/web"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Lists     service.ListService
	Tasks     service.TaskService
	Dashboard service.DashboardService
	DB        database.Service
	Flash     flash.Store
	Tokens    *auth.Tokens
	Metrics   *metrics.Metrics
	Views     *web.Renderer

	AllowedOrigins []string
}

type Server struct {
	port int
	Deps
}

func NewServer(port int, deps Deps) *http.Server {
	appServer := &Server{port: port, Deps: deps}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", appServer.port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
