package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Tomlord1122/todo-lists/internal/domain"
)

const pgForeignKeyViolation = "23503"

// TaskQuery selects one page of a user's tasks.
type TaskQuery struct {
	UserID uint
	Search string
	Filter domain.CompletionFilter
	Offset int
	Limit  int
}

// TaskRepository defines the data operations for tasks. Ownership is
// resolved through the task's list on every call.
type TaskRepository interface {
	Create(ctx context.Context, userID uint, task *domain.Task) error
	FindForUser(ctx context.Context, id, userID uint) (*domain.Task, error)
	Page(ctx context.Context, q TaskQuery) ([]domain.Task, int64, error)
	Update(ctx context.Context, userID uint, task *domain.Task) error
	Delete(ctx context.Context, id, userID uint) error
}

// gormTaskRepository implements TaskRepository using GORM.
type gormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GORM task repository.
func NewGormTaskRepository(db *gorm.DB) TaskRepository {
	return &gormTaskRepository{db: db}
}

// Create inserts the task after confirming its list belongs to userID.
func (r *gormTaskRepository) Create(ctx context.Context, userID uint, task *domain.Task) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureListOwned(tx, task.ListID, userID); err != nil {
			return err
		}
		return tx.Omit("List").Create(task).Error
	})
	return translateTaskWrite(err)
}

// FindForUser loads a task with its list, joined through lists.user_id.
func (r *gormTaskRepository) FindForUser(ctx context.Context, id, userID uint) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).
		Scopes(ownedBy(userID)).
		Select("tasks.*").
		Preload("List").
		Where("tasks.id = ?", id).
		First(&task).Error
	if err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

// Page counts and fetches inside one repeatable-read snapshot, so the rows of
// a page always agree with the total reported next to them.
func (r *gormTaskRepository) Page(ctx context.Context, q TaskQuery) ([]domain.Task, int64, error) {
	var (
		tasks []domain.Task
		total int64
	)
	filters := func(db *gorm.DB) *gorm.DB {
		db = db.Scopes(ownedBy(q.UserID))
		switch q.Filter {
		case domain.FilterCompleted:
			db = db.Where("tasks.is_completed = ?", true)
		case domain.FilterIncomplete:
			db = db.Where("tasks.is_completed = ?", false)
		}
		if s := strings.TrimSpace(q.Search); s != "" {
			db = db.Where("tasks.title ILIKE ?", "%"+escapeLike(s)+"%")
		}
		return db
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Count every match for the paginator
		if err := tx.Model(&domain.Task{}).Scopes(filters).Count(&total).Error; err != nil {
			return err
		}
		if total == 0 {
			return nil
		}
		// 2. Fetch the requested window with each task's list id and title
		return tx.Scopes(filters).
			Select("tasks.*").
			Preload("List", func(db *gorm.DB) *gorm.DB {
				return db.Select("id", "title")
			}).
			Order("tasks.id ASC").
			Offset(q.Offset).
			Limit(q.Limit).
			Find(&tasks).Error
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// Update writes every column of the task. The WHERE clause re-checks that the
// current list is owned by userID; the target list is checked in the same
// transaction.
func (r *gormTaskRepository) Update(ctx context.Context, userID uint, task *domain.Task) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureListOwned(tx, task.ListID, userID); err != nil {
			return err
		}
		result := tx.Model(&domain.Task{}).
			Where("id = ? AND list_id IN (?)", task.ID, ownedListIDs(tx, userID)).
			Updates(map[string]any{
				"title":        task.Title,
				"description":  task.Description,
				"is_completed": task.IsCompleted,
				"due_date":     task.DueDate,
				"list_id":      task.ListID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	return translateTaskWrite(err)
}

// Delete removes a task whose list belongs to userID.
func (r *gormTaskRepository) Delete(ctx context.Context, id, userID uint) error {
	db := r.db.WithContext(ctx)
	result := db.
		Where("id = ? AND list_id IN (?)", id, ownedListIDs(db, userID)).
		Delete(&domain.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ownedBy restricts a tasks query to rows whose list belongs to userID.
func ownedBy(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN lists ON lists.id = tasks.list_id").
			Where("lists.user_id = ?", userID)
	}
}

func ownedListIDs(db *gorm.DB, userID uint) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&domain.List{}).
		Select("id").
		Where("user_id = ?", userID)
}

func ensureListOwned(tx *gorm.DB, listID, userID uint) error {
	var n int64
	err := tx.Model(&domain.List{}).
		Where("id = ? AND user_id = ?", listID, userID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrListNotOwned
	}
	return nil
}

// translateTaskWrite maps a foreign key violation (the list vanished between
// the ownership check and the write) onto ErrListNotOwned.
func translateTaskWrite(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return domain.ErrListNotOwned
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in user input match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
