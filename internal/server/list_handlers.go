package server

import (
	"net/http"

	"github.com/Tomlord1122/todo-lists/internal/flash"
	"github.com/Tomlord1122/todo-lists/internal/service"
	"github.com/Tomlord1122/todo-lists/internal/web"
)

func (s *Server) getListsHandler(w http.ResponseWriter, r *http.Request) {
	lists, err := s.Lists.GetLists(r.Context(), currentUser(r))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, userMessage(err))
		return
	}
	fl := s.popFlash(w, r)

	if wantsHTML(r) {
		s.render(w, r, http.StatusOK, "lists.html", web.NewListsPage(lists, web.FormFromQuery(r.URL.Query()), fl))
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"lists": lists, "flash": fl})
}

func (s *Server) createListHandler(w http.ResponseWriter, r *http.Request) {
	in, err := decodeListInput(r)
	if err == nil {
		_, err = s.Lists.CreateList(r.Context(), currentUser(r), in)
	}
	if err != nil {
		s.mutationFailed(w, r, "list", "create", "/lists", err, s.rerenderLists(w, r, web.CreateForm(), in))
		return
	}
	s.Metrics.Mutation("list", "create", "ok")
	s.redirectWithFlash(w, r, "/lists", flash.Success("List created successfully"))
}

func (s *Server) updateListHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid list ID provided")
		return
	}

	in, err := decodeListInput(r)
	if err == nil {
		_, err = s.Lists.UpdateList(r.Context(), currentUser(r), id, in)
	}
	if err != nil {
		s.mutationFailed(w, r, "list", "update", "/lists", err, s.rerenderLists(w, r, web.EditForm(id), in))
		return
	}
	s.Metrics.Mutation("list", "update", "ok")
	s.redirectWithFlash(w, r, "/lists", flash.Success("List updated successfully"))
}

func (s *Server) deleteListHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid list ID provided")
		return
	}

	if err := s.Lists.DeleteList(r.Context(), currentUser(r), id); err != nil {
		s.mutationFailed(w, r, "list", "delete", "/lists", err, nil)
		return
	}
	s.Metrics.Mutation("list", "delete", "ok")
	s.redirectWithFlash(w, r, "/lists", flash.Success("List deleted successfully"))
}

// rerenderLists shows the list page again with the submitted values and errors.
func (s *Server) rerenderLists(w http.ResponseWriter, r *http.Request, form web.FormState, in service.ListInput) func(*service.ValidationError) {
	return func(verr *service.ValidationError) {
		lists, err := s.Lists.GetLists(r.Context(), currentUser(r))
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, userMessage(err))
			return
		}
		page := web.NewListsPage(lists, web.CreateForm(), flash.Flash{})
		page.Form = form
		page.Values = web.ListFormValues{Title: in.Title}
		if in.Description != nil {
			page.Values.Description = *in.Description
		}
		page.Errors = verr.Fields
		s.render(w, r, http.StatusUnprocessableEntity, "lists.html", page)
	}
}

func decodeListInput(r *http.Request) (service.ListInput, error) {
	var in service.ListInput
	if isJSONRequest(r) {
		err := decodeJSON(r, &in)
		return in, err
	}
	if err := r.ParseForm(); err != nil {
		return in, badRequest("Request body could not be parsed")
	}
	in.Title = r.PostForm.Get("title")
	in.Description = formString(r, "description")
	return in, nil
}
