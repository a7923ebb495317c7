package task

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTitleLength is the maximum number of characters in a task title.
const MaxTitleLength = 200

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultPriority is assigned when no priority is given.
const DefaultPriority = PriorityMedium

var priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Priorities returns every valid priority in display order.
func Priorities() []Priority {
	return append([]Priority(nil), priorities...)
}

// ParsePriority converts s into a Priority. An empty string yields DefaultPriority.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return DefaultPriority, nil
	}
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPriority, s)
	}
	return p, nil
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Label returns the human readable name of p.
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	}
	return string(p)
}

// Status is the progress state of a task.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// DefaultStatus is assigned when no status is given.
const DefaultStatus = StatusOpen

var statuses = []Status{StatusOpen, StatusInProgress, StatusDone}

// Statuses returns every valid status in display order.
func Statuses() []Status {
	return append([]Status(nil), statuses...)
}

// ParseStatus converts s into a Status. An empty string yields DefaultStatus.
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return DefaultStatus, nil
	}
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Label returns the human readable name of s.
func (s Status) Label() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusInProgress:
		return "In progress"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

var (
	// ErrUnknownPriority is returned for values outside the priority set.
	ErrUnknownPriority = errors.New("unknown priority")
	// ErrUnknownStatus is returned for values outside the status set.
	ErrUnknownStatus = errors.New("unknown status")
	// ErrTitleRequired is returned for a blank title.
	ErrTitleRequired = errors.New("title is required")
	// ErrTitleTooLong is returned for titles over MaxTitleLength characters.
	ErrTitleTooLong = fmt.Errorf("title must be at most %d characters", MaxTitleLength)
	// ErrOwnerRequired is returned for a task without an owner.
	ErrOwnerRequired = errors.New("owner is required")
)

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OwnerID     string    `gorm:"type:varchar(36);not null;index" json:"owner_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Priority    Priority  `gorm:"size:20;not null" json:"priority"`
	Status      Status    `gorm:"size:20;not null;index" json:"status"`
	DueDate     *Date     `json:"due_date,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

// Validate checks the invariants every stored task must satisfy.
func (t *Task) Validate() error {
	if t.OwnerID == "" {
		return ErrOwnerRequired
	}
	title := strings.TrimSpace(t.Title)
	if title == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPriority, t.Priority)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, t.Status)
	}
	return nil
}

// Done reports whether the task is completed.
func (t *Task) Done() bool {
	return t.Status == StatusDone
}

func (t Task) String() string {
	return fmt.Sprintf("%s (%s)", t.Title, t.Status.Label())
}
