package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Tomlord1122/todo-lists/internal/auth"
	"github.com/Tomlord1122/todo-lists/internal/domain"
	"github.com/Tomlord1122/todo-lists/internal/flash"
	"github.com/Tomlord1122/todo-lists/internal/logger"
	"github.com/Tomlord1122/todo-lists/internal/service"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(s.Metrics.Middleware)

	origins := s.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"https://*", "http://*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(methodOverride)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})
	r.Get("/health", s.healthHandler)
	r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	r.Get("/login", s.loginHandler)

	r.Group(func(r chi.Router) {
		r.Use(s.Tokens.Middleware(s.unauthenticated))

		r.Get("/dashboard", s.dashboardHandler)

		r.Route("/lists", func(r chi.Router) {
			r.Get("/", s.getListsHandler)
			r.Post("/", s.createListHandler)
			r.Put("/{id}", s.updateListHandler)
			r.Delete("/{id}", s.deleteListHandler)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", s.getTasksHandler)
			r.Post("/", s.createTaskHandler)
			r.Put("/{id}", s.updateTaskHandler)
			r.Delete("/{id}", s.deleteTaskHandler)
		})
	})

	return r
}

// methodOverride lets HTML forms, which can only POST, reach PUT and DELETE
// routes through a _method field or the X-HTTP-Method-Override header.
func methodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			m := r.Header.Get("X-HTTP-Method-Override")
			if m == "" && !isJSONRequest(r) {
				m = r.PostFormValue("_method")
			}
			switch m = strings.ToUpper(m); m {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthStats := s.DB.Health()
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}

// loginHandler exchanges a token issued by the auth system for a browser cookie.
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if _, err := s.Tokens.Parse(token); err != nil {
		s.unauthenticated(w, r)
		return
	}
	s.Tokens.SetCookie(w, token)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) unauthenticated(w http.ResponseWriter, r *http.Request) {
	if wantsHTML(r) {
		s.renderError(w, r, http.StatusUnauthorized, "Please sign in to continue.")
		return
	}
	respondWithError(w, http.StatusUnauthorized, "Unauthenticated.")
}

func (s *Server) forbidden(w http.ResponseWriter, r *http.Request) {
	if wantsHTML(r) {
		s.renderError(w, r, http.StatusForbidden, "This action is unauthorized.")
		return
	}
	respondWithError(w, http.StatusForbidden, "This action is unauthorized.")
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	data := struct {
		Status  int
		Message string
	}{status, msg}
	if err := s.Views.Render(w, status, "error.html", data); err != nil {
		logger.Error("render error page", "error", err)
		http.Error(w, msg, status)
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if err := s.Views.Render(w, status, name, data); err != nil {
		logger.Error("render page", "page", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// redirectWithFlash stores the message for the next rendered response and
// sends the client back to the collection page.
func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, to string, f flash.Flash) {
	if !f.Empty() {
		if err := s.Flash.Put(w, r, f); err != nil {
			logger.Warn("store flash", "error", err)
		}
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) flash.Flash {
	f, err := s.Flash.Pop(w, r)
	if err != nil {
		logger.Warn("load flash", "error", err)
	}
	if !f.Empty() {
		logger.Debug("flash delivered", "path", r.URL.Path, "user_id", currentUser(r))
	}
	return f
}

func currentUser(r *http.Request) uint {
	id, _ := auth.UserID(r.Context())
	return id
}

// mutationFailed answers a create, update or delete that the service
// rejected. Validation failures are handed to rerender so an HTML form can be
// shown again with its errors.
func (s *Server) mutationFailed(w http.ResponseWriter, r *http.Request, resource, action, back string, err error, rerender func(*service.ValidationError)) {
	var verr *service.ValidationError
	var rerr *requestError
	switch {
	case errors.As(err, &rerr):
		s.Metrics.Mutation(resource, action, "invalid")
		respondWithError(w, rerr.status, rerr.msg)
	case errors.As(err, &verr):
		s.Metrics.Mutation(resource, action, "invalid")
		if wantsHTML(r) && rerender != nil {
			rerender(verr)
			return
		}
		respondWithJSON(w, http.StatusUnprocessableEntity, validationPayload(verr))
	case errors.Is(err, domain.ErrForbidden):
		s.Metrics.Mutation(resource, action, "forbidden")
		s.forbidden(w, r)
	default:
		s.Metrics.Mutation(resource, action, "error")
		logger.With("resource", resource, "action", action, "user_id", currentUser(r)).
			Warn("mutation failed", "error", err)
		if wantsHTML(r) {
			s.redirectWithFlash(w, r, back, flash.Failure(userMessage(err)))
			return
		}
		respondWithError(w, http.StatusInternalServerError, userMessage(err))
	}
}

// userMessage hides the cause of a failure from the client.
func userMessage(err error) string {
	if !errors.Is(err, service.ErrPersistence) {
		logger.Error("unexpected service error", "error", err)
	}
	return "Something went wrong, please try again."
}
