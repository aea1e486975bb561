package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Tomlord1122/todo-lists/internal/domain"
	"github.com/Tomlord1122/todo-lists/internal/flash"
	"github.com/Tomlord1122/todo-lists/internal/service"
	"github.com/Tomlord1122/todo-lists/internal/web"
)

func (s *Server) getTasksHandler(w http.ResponseWriter, r *http.Request) {
	q, filters := taskQuery(r.URL.Query())
	userID := currentUser(r)

	tasks, err := s.Tasks.GetTasks(r.Context(), userID, q)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, userMessage(err))
		return
	}
	lists, err := s.Lists.GetLists(r.Context(), userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, userMessage(err))
		return
	}
	fl := s.popFlash(w, r)

	if wantsHTML(r) {
		page := web.NewTasksPage(tasks, lists, filters, web.FormFromQuery(r.URL.Query()), fl)
		s.render(w, r, http.StatusOK, "tasks.html", page)
		return
	}

	options := make([]service.TaskListRef, 0, len(lists))
	for _, l := range lists {
		options = append(options, service.TaskListRef{ID: l.ID, Title: l.Title})
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"tasks":   tasks,
		"lists":   options,
		"filters": filters,
		"flash":   fl,
	})
}

func (s *Server) createTaskHandler(w http.ResponseWriter, r *http.Request) {
	in, err := decodeTaskInput(r)
	if err == nil {
		_, err = s.Tasks.CreateTask(r.Context(), currentUser(r), in)
	}
	if err != nil {
		s.mutationFailed(w, r, "task", "create", "/tasks", err, s.rerenderTasks(w, r, web.CreateForm(), in))
		return
	}
	s.Metrics.Mutation("task", "create", "ok")
	s.redirectWithFlash(w, r, "/tasks", flash.Success("Task created successfully"))
}

func (s *Server) updateTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID provided")
		return
	}

	in, err := decodeTaskInput(r)
	if err == nil {
		_, err = s.Tasks.UpdateTask(r.Context(), currentUser(r), id, in)
	}
	if err != nil {
		s.mutationFailed(w, r, "task", "update", "/tasks", err, s.rerenderTasks(w, r, web.EditForm(id), in))
		return
	}
	s.Metrics.Mutation("task", "update", "ok")
	s.redirectWithFlash(w, r, "/tasks", flash.Success("Task updated successfully"))
}

func (s *Server) deleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID provided")
		return
	}

	if err := s.Tasks.DeleteTask(r.Context(), currentUser(r), id); err != nil {
		s.mutationFailed(w, r, "task", "delete", "/tasks", err, nil)
		return
	}
	s.Metrics.Mutation("task", "delete", "ok")
	s.redirectWithFlash(w, r, "/tasks", flash.Success("Task deleted successfully"))
}

// rerenderTasks shows the task page again, for the query the form was posted
// with, carrying the submitted values and errors.
func (s *Server) rerenderTasks(w http.ResponseWriter, r *http.Request, form web.FormState, in service.TaskInput) func(*service.ValidationError) {
	return func(verr *service.ValidationError) {
		q, filters := taskQuery(r.URL.Query())
		userID := currentUser(r)

		tasks, err := s.Tasks.GetTasks(r.Context(), userID, q)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, userMessage(err))
			return
		}
		lists, err := s.Lists.GetLists(r.Context(), userID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, userMessage(err))
			return
		}

		page := web.NewTasksPage(tasks, lists, filters, web.CreateForm(), flash.Flash{})
		page.Form = form
		page.Values = web.TaskFormValues{Title: in.Title, ListID: in.ListID}
		if in.Description != nil {
			page.Values.Description = *in.Description
		}
		if in.DueDate != nil {
			page.Values.DueDate = *in.DueDate
		}
		if in.IsCompleted != nil {
			page.Values.IsCompleted = *in.IsCompleted
		}
		page.Errors = verr.Fields
		s.render(w, r, http.StatusUnprocessableEntity, "tasks.html", page)
	}
}

// taskQuery reads search, filter and page. The filter is normalised so the
// page echoes back what was actually applied.
func taskQuery(v url.Values) (service.TaskQuery, web.Filters) {
	search := strings.TrimSpace(v.Get("search"))
	filter := string(domain.ParseCompletionFilter(v.Get("filter")))
	page, err := strconv.Atoi(v.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	return service.TaskQuery{Search: search, Filter: filter, Page: page},
		web.Filters{Search: search, Filter: filter}
}

func decodeTaskInput(r *http.Request) (service.TaskInput, error) {
	var in service.TaskInput
	if isJSONRequest(r) {
		err := decodeJSON(r, &in)
		return in, err
	}
	if err := r.ParseForm(); err != nil {
		return in, badRequest("Request body could not be parsed")
	}
	in.Title = r.PostForm.Get("title")
	in.Description = formString(r, "description")
	in.DueDate = formString(r, "due_date")
	in.IsCompleted = formBool(r, "is_completed")

	if raw := strings.TrimSpace(r.PostForm.Get("list_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return in, &service.ValidationError{Fields: map[string]string{
				"list_id": "The list id field must be an integer.",
			}}
		}
		in.ListID = uint(id)
	}
	return in, nil
}
