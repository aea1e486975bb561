package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Tomlord1122/todo-lists/internal/domain"
)

// ListRepository defines the data operations for lists. Every lookup is
// scoped to an owner; a list owned by someone else is reported as not found.
type ListRepository interface {
	Create(ctx context.Context, list *domain.List) error
	FindForUser(ctx context.Context, id, userID uint) (*domain.List, error)
	AllForUser(ctx context.Context, userID uint) ([]domain.List, error)
	Update(ctx context.Context, list *domain.List) error
	Delete(ctx context.Context, id, userID uint) error
	Stats(ctx context.Context, userID uint) (domain.Stats, error)
}

// gormListRepository implements ListRepository using GORM.
type gormListRepository struct {
	db *gorm.DB
}

// NewGormListRepository creates a new GORM list repository.
func NewGormListRepository(db *gorm.DB) ListRepository {
	return &gormListRepository{db: db}
}

// Create adds a new list; GORM fills in the ID and timestamps.
func (r *gormListRepository) Create(ctx context.Context, list *domain.List) error {
	return r.db.WithContext(ctx).Omit("Tasks").Create(list).Error
}

// FindForUser loads a list only if userID owns it.
func (r *gormListRepository) FindForUser(ctx context.Context, id, userID uint) (*domain.List, error) {
	var list domain.List
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&list).Error
	if err != nil {
		return nil, translate(err)
	}
	return &list, nil
}

// AllForUser returns the user's lists in creation order with their task counts.
func (r *gormListRepository) AllForUser(ctx context.Context, userID uint) ([]domain.List, error) {
	var lists []domain.List
	err := r.db.WithContext(ctx).
		Model(&domain.List{}).
		Select("lists.*, (SELECT COUNT(*) FROM tasks WHERE tasks.list_id = lists.id) AS tasks_count").
		Where("lists.user_id = ?", userID).
		Order("lists.id ASC").
		Find(&lists).Error
	if err != nil {
		return nil, err
	}
	return lists, nil
}

// Update overwrites title and description of a list the owner already holds.
func (r *gormListRepository) Update(ctx context.Context, list *domain.List) error {
	result := r.db.WithContext(ctx).
		Model(&domain.List{}).
		Where("id = ? AND user_id = ?", list.ID, list.UserID).
		Updates(map[string]any{
			"title":       list.Title,
			"description": list.Description,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the list; the foreign key cascade removes its tasks in the
// same statement.
func (r *gormListRepository) Delete(ctx context.Context, id, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.List{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Stats counts the user's lists and their tasks by completion.
func (r *gormListRepository) Stats(ctx context.Context, userID uint) (domain.Stats, error) {
	var row struct {
		TotalLists     int64
		TotalTasks     int64
		CompletedTasks int64
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM lists WHERE user_id = @user) AS total_lists,
			COUNT(t.id) AS total_tasks,
			COUNT(t.id) FILTER (WHERE t.is_completed) AS completed_tasks
		FROM lists l
		LEFT JOIN tasks t ON t.list_id = l.id
		WHERE l.user_id = @user`,
		map[string]any{"user": userID},
	).Scan(&row).Error
	if err != nil {
		return domain.Stats{}, fmt.Errorf("query stats: %w", err)
	}

	return domain.Stats{
		TotalLists:      row.TotalLists,
		TotalTasks:      row.TotalTasks,
		CompletedTasks:  row.CompletedTasks,
		IncompleteTasks: row.TotalTasks - row.CompletedTasks,
	}, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}
