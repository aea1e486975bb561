package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Tomlord1122/todo-lists/internal/domain"
	"github.com/Tomlord1122/todo-lists/internal/logger"
	"github.com/Tomlord1122/todo-lists/internal/repository"
)

// ListInput is the field set accepted by create and update.
// A nil Description leaves the stored value alone; an empty one clears it.
// In JSON an explicit "description": null also clears it.
type ListInput struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
}

func (in *ListInput) UnmarshalJSON(b []byte) error {
	type plain ListInput
	return decodeInput(b, (*plain)(in), map[string]**string{
		"description": &in.Description,
	})
}

// ListResponse is the representation of a List returned by the service.
// TasksCount is only populated by GetLists.
type ListResponse struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	TasksCount  int64   `json:"tasks_count"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// ListService defines the operations for managing a user's lists.
type ListService interface {
	GetLists(ctx context.Context, userID uint) ([]ListResponse, error)
	CreateList(ctx context.Context, userID uint, in ListInput) (*ListResponse, error)
	UpdateList(ctx context.Context, userID, id uint, in ListInput) (*ListResponse, error)
	// DeleteList removes the list and, through the cascade, all of its tasks.
	DeleteList(ctx context.Context, userID, id uint) error
}

// listService implements ListService on top of a ListRepository.
type listService struct {
	repo repository.ListRepository
}

// NewListService creates a ListService backed by repo.
func NewListService(repo repository.ListRepository) ListService {
	return &listService{repo: repo}
}

// GetLists returns the caller's lists in creation order, each with its task count.
func (s *listService) GetLists(ctx context.Context, userID uint) ([]ListResponse, error) {
	lists, err := s.repo.AllForUser(ctx, userID)
	if err != nil {
		logger.Error("fetch lists", "user_id", userID, "error", err)
		return nil, ErrPersistence
	}

	out := make([]ListResponse, 0, len(lists))
	for i := range lists {
		out = append(out, toListResponse(&lists[i]))
	}
	return out, nil
}

// CreateList validates the input and stores a new list owned by userID.
func (s *listService) CreateList(ctx context.Context, userID uint, in ListInput) (*ListResponse, error) {
	// 1. Validation
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	// 2. Prepare domain model
	description, _ := blankToNil(in.Description)
	list := &domain.List{
		UserID:      userID,
		Title:       in.Title,
		Description: description,
	}
	// 3. Save; the store fills in ID and timestamps
	if err := s.repo.Create(ctx, list); err != nil {
		logger.Error("create list", "user_id", userID, "error", err)
		return nil, ErrPersistence
	}

	// 4. Convert to a response DTO
	resp := toListResponse(list)
	return &resp, nil
}

// UpdateList replaces the title and, when supplied, the description.
// Ownership is checked before the input is validated.
func (s *listService) UpdateList(ctx context.Context, userID, id uint, in ListInput) (*ListResponse, error) {
	// 1. Ownership
	list, err := s.authorize(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	// 2. Validation
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	// 3. Apply changes and save
	list.Title = in.Title
	if description, supplied := blankToNil(in.Description); supplied {
		list.Description = description
	}

	if err := s.repo.Update(ctx, list); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrForbidden
		}
		logger.Error("update list", "user_id", userID, "list_id", id, "error", err)
		return nil, ErrPersistence
	}

	list.UpdatedAt = time.Now()
	resp := toListResponse(list)
	return &resp, nil
}

// DeleteList checks ownership, then deletes.
func (s *listService) DeleteList(ctx context.Context, userID, id uint) error {
	if _, err := s.authorize(ctx, userID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrForbidden
		}
		logger.Error("delete list", "user_id", userID, "list_id", id, "error", err)
		return ErrPersistence
	}
	return nil
}

// authorize loads the list if userID owns it. Missing and foreign lists are
// indistinguishable to the caller.
func (s *listService) authorize(ctx context.Context, userID, id uint) (*domain.List, error) {
	list, err := s.repo.FindForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrForbidden
		}
		logger.Error("load list", "user_id", userID, "list_id", id, "error", err)
		return nil, ErrPersistence
	}
	return list, nil
}

// toListResponse formats timestamps as RFC 3339.
func toListResponse(l *domain.List) ListResponse {
	return ListResponse{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		TasksCount:  l.TasksCount,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   l.UpdatedAt.Format(time.RFC3339),
	}
}
