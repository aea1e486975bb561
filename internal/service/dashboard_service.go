package service

import (
	"context"

	"github.com/Tomlord1122/todo-lists/internal/logger"
	"github.com/Tomlord1122/todo-lists/internal/repository"
)

// StatsResponse holds the dashboard counters for one user.
type StatsResponse struct {
	TotalLists      int64 `json:"total_lists"`
	TotalTasks      int64 `json:"total_tasks"`
	CompletedTasks  int64 `json:"completed_tasks"`
	IncompleteTasks int64 `json:"incomplete_tasks"`
}

// DashboardService computes the per-user dashboard summary.
type DashboardService interface {
	GetStats(ctx context.Context, userID uint) (*StatsResponse, error)
}

type dashboardService struct {
	lists repository.ListRepository
}

// NewDashboardService creates a DashboardService reading through lists.
func NewDashboardService(lists repository.ListRepository) DashboardService {
	return &dashboardService{lists: lists}
}

func (s *dashboardService) GetStats(ctx context.Context, userID uint) (*StatsResponse, error) {
	st, err := s.lists.Stats(ctx, userID)
	if err != nil {
		logger.Error("fetch stats", "user_id", userID, "error", err)
		return nil, ErrPersistence
	}
	return &StatsResponse{
		TotalLists:      st.TotalLists,
		TotalTasks:      st.TotalTasks,
		CompletedTasks:  st.CompletedTasks,
		IncompleteTasks: st.IncompleteTasks,
	}, nil
}
