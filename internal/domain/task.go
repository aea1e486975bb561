package domain

import "time"

// Task is one to-do item. It belongs to exactly one List.
type Task struct {
	ID          uint   `gorm:"primaryKey"`
	ListID      uint   `gorm:"not null;index"`
	Title       string `gorm:"size:255;not null"`
	Description *string
	IsCompleted bool       `gorm:"not null;default:false"`
	DueDate     *time.Time `gorm:"type:date"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	List *List `gorm:"foreignKey:ListID"`
}

func (Task) TableName() string { return "tasks" }

// CompletionFilter restricts a task query by completion flag.
type CompletionFilter string

const (
	FilterAll        CompletionFilter = "all"
	FilterCompleted  CompletionFilter = "completed"
	FilterIncomplete CompletionFilter = "incomplete"
)

// ParseCompletionFilter maps user input onto a known filter. Anything
// unrecognised means no restriction.
func ParseCompletionFilter(s string) CompletionFilter {
	switch CompletionFilter(s) {
	case FilterCompleted:
		return FilterCompleted
	case FilterIncomplete:
		return FilterIncomplete
	default:
		return FilterAll
	}
}

// Stats aggregates a user's lists and tasks for the dashboard.
type Stats struct {
	TotalLists      int64
	TotalTasks      int64
	CompletedTasks  int64
	IncompleteTasks int64
}
