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

const dateLayout = "2006-01-02"

// TaskInput is the field set accepted by create and update.
// Nil optional fields leave stored values alone on update; empty strings
// and explicit JSON nulls clear them.
type TaskInput struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	ListID      uint    `json:"list_id" validate:"required"`
	IsCompleted *bool   `json:"is_completed"`
}

// UnmarshalJSON maps an explicit null description or due_date to a clear.
func (in *TaskInput) UnmarshalJSON(b []byte) error {
	type plain TaskInput
	return decodeInput(b, (*plain)(in), map[string]**string{
		"description": &in.Description,
		"due_date":    &in.DueDate,
	})
}

// TaskQuery is the caller-facing query for the task index.
type TaskQuery struct {
	Search string
	Filter string
	Page   int
}

// TaskListRef is the id and title of the list a task belongs to.
type TaskListRef struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

// TaskResponse is the representation of a Task returned by the service.
// DueDate is formatted as YYYY-MM-DD.
type TaskResponse struct {
	ID          uint        `json:"id"`
	Title       string      `json:"title"`
	Description *string     `json:"description"`
	IsCompleted bool        `json:"is_completed"`
	DueDate     *string     `json:"due_date"`
	ListID      uint        `json:"list_id"`
	List        TaskListRef `json:"list"`
	CreatedAt   string      `json:"created_at"`
	UpdatedAt   string      `json:"updated_at"`
}

// TaskPage is one page of tasks plus its paginator metadata.
type TaskPage struct {
	Data []TaskResponse `json:"data"`
	Pagination
}

// TaskService defines the operations for managing tasks. Every write
// re-checks that the caller owns the task's list.
type TaskService interface {
	GetTasks(ctx context.Context, userID uint, q TaskQuery) (*TaskPage, error)
	CreateTask(ctx context.Context, userID uint, in TaskInput) (*TaskResponse, error)
	UpdateTask(ctx context.Context, userID, id uint, in TaskInput) (*TaskResponse, error)
	DeleteTask(ctx context.Context, userID, id uint) error
}

// taskService implements TaskService. It needs the list repository to check
// the target list of every write.
type taskService struct {
	tasks   repository.TaskRepository
	lists   repository.ListRepository
	perPage int
}

// NewTaskService creates a TaskService. perPage falls back to 10 when not positive.
func NewTaskService(tasks repository.TaskRepository, lists repository.ListRepository, perPage int) TaskService {
	if perPage <= 0 {
		perPage = 10
	}
	return &taskService{tasks: tasks, lists: lists, perPage: perPage}
}

// GetTasks returns one page of the caller's tasks in creation order, narrowed by
// the optional search and completion filter. Pages below 1 read as page 1.
func (s *taskService) GetTasks(ctx context.Context, userID uint, q TaskQuery) (*TaskPage, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}

	tasks, total, err := s.tasks.Page(ctx, repository.TaskQuery{
		UserID: userID,
		Search: q.Search,
		Filter: domain.ParseCompletionFilter(q.Filter),
		Offset: pageOffset(page, s.perPage),
		Limit:  s.perPage,
	})
	if err != nil {
		logger.Error("fetch tasks", "user_id", userID, "error", err)
		return nil, ErrPersistence
	}

	out := &TaskPage{
		Data:       make([]TaskResponse, 0, len(tasks)),
		Pagination: Paginate(total, page, s.perPage),
	}
	for i := range tasks {
		out.Data = append(out.Data, toTaskResponse(&tasks[i]))
	}
	return out, nil
}

// CreateTask stores a new task in one of the caller's lists.
func (s *taskService) CreateTask(ctx context.Context, userID uint, in TaskInput) (*TaskResponse, error) {
	// 1. Validation, including ownership of the target list
	if err := in.validate(); err != nil {
		return nil, err
	}
	list, err := s.authorizeList(ctx, userID, in.ListID)
	if err != nil {
		return nil, err
	}

	// 2. Prepare domain model
	task := &domain.Task{ListID: in.ListID, Title: in.Title}
	applyOptional(task, in)

	// 3. Save; the repository re-checks the list owner in the same transaction
	if err := s.tasks.Create(ctx, userID, task); err != nil {
		return nil, s.writeError(err, "create task", userID, 0)
	}

	// 4. Convert to a response DTO
	task.List = list
	resp := toTaskResponse(task)
	return &resp, nil
}

// UpdateTask replaces a task's fields and may move it to another owned list.
func (s *taskService) UpdateTask(ctx context.Context, userID, id uint, in TaskInput) (*TaskResponse, error) {
	// 1. Load the task through the caller's lists
	task, err := s.tasks.FindForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrForbidden
		}
		logger.Error("load task", "user_id", userID, "task_id", id, "error", err)
		return nil, ErrPersistence
	}

	// 2. Validation, including ownership of the destination list
	if err := in.validate(); err != nil {
		return nil, err
	}
	list, err := s.authorizeList(ctx, userID, in.ListID)
	if err != nil {
		return nil, err
	}

	// 3. Apply changes and save
	task.Title = in.Title
	task.ListID = in.ListID
	applyOptional(task, in)

	if err := s.tasks.Update(ctx, userID, task); err != nil {
		return nil, s.writeError(err, "update task", userID, id)
	}

	task.List = list
	task.UpdatedAt = time.Now()
	resp := toTaskResponse(task)
	return &resp, nil
}

// DeleteTask removes a task the caller owns.
func (s *taskService) DeleteTask(ctx context.Context, userID, id uint) error {
	if _, err := s.tasks.FindForUser(ctx, id, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrForbidden
		}
		logger.Error("load task", "user_id", userID, "task_id", id, "error", err)
		return ErrPersistence
	}

	if err := s.tasks.Delete(ctx, id, userID); err != nil {
		return s.writeError(err, "delete task", userID, id)
	}
	return nil
}

// authorizeList checks that the target list of a task write belongs to userID.
func (s *taskService) authorizeList(ctx context.Context, userID, listID uint) (*domain.List, error) {
	list, err := s.lists.FindForUser(ctx, listID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, invalidListError()
		}
		logger.Error("load list", "user_id", userID, "list_id", listID, "error", err)
		return nil, ErrPersistence
	}
	return list, nil
}

// writeError maps repository write failures onto what the caller may see.
func (s *taskService) writeError(err error, op string, userID, taskID uint) error {
	switch {
	case errors.Is(err, domain.ErrListNotOwned):
		return invalidListError()
	case errors.Is(err, domain.ErrNotFound):
		return domain.ErrForbidden
	}
	logger.Error(op, "user_id", userID, "task_id", taskID, "error", err)
	return ErrPersistence
}

func invalidListError() error {
	return fieldError("list_id", "The selected list id is invalid.")
}

// validate trims the input in place and checks it. The due date is parsed
// here rather than by tag so that a supplied blank value stays distinguishable
// from an omitted one.
func (in *TaskInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	err := validateStruct(*in)
	if err != nil && !isValidationError(err) {
		return err
	}
	if due, _ := blankToNil(in.DueDate); due != nil {
		if _, perr := time.Parse(dateLayout, *due); perr != nil {
			verr, _ := err.(*ValidationError)
			if verr == nil {
				verr = &ValidationError{Fields: map[string]string{}}
			}
			verr.Fields["due_date"] = "The due date field must be a valid date."
			return verr
		}
	}
	return err
}

// applyOptional copies the optional fields the caller supplied onto task.
// DueDate has already passed validation.
func applyOptional(task *domain.Task, in TaskInput) {
	if description, supplied := blankToNil(in.Description); supplied {
		task.Description = description
	}
	if due, supplied := blankToNil(in.DueDate); supplied {
		task.DueDate = nil
		if due != nil {
			t, _ := time.Parse(dateLayout, *due)
			task.DueDate = &t
		}
	}
	if in.IsCompleted != nil {
		task.IsCompleted = *in.IsCompleted
	}
}

func toTaskResponse(t *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		ListID:      t.ListID,
		List:        TaskListRef{ID: t.ListID},
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
	if t.DueDate != nil {
		d := t.DueDate.Format(dateLayout)
		resp.DueDate = &d
	}
	if t.List != nil {
		resp.List.Title = t.List.Title
	}
	return resp
}
