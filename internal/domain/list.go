package domain

import "time"

// List is a named collection of tasks owned by a single user.
type List struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"not null;index"`
	Title       string `gorm:"size:255;not null"`
	// NULL when the user left it blank.
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// TasksCount is filled by read queries only; there is no such column.
	TasksCount int64 `gorm:"->;-:migration"`

	Tasks []Task `gorm:"foreignKey:ListID;constraint:OnDelete:CASCADE"`
}

func (List) TableName() string { return "lists" }
