package server

import (
	"net/http"

	"github.com/Tomlord1122/todo-lists/internal/web"
)

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Dashboard.GetStats(r.Context(), currentUser(r))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, userMessage(err))
		return
	}
	fl := s.popFlash(w, r)

	if wantsHTML(r) {
		s.render(w, r, http.StatusOK, "dashboard.html", &web.DashboardPage{Stats: stats, Flash: fl})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"stats": stats, "flash": fl})
}
