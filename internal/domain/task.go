package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the three-valued task state. There is no enforced
// transition order: an update may set any status.
type TaskStatus string

// Task statuses.
const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
)

// TaskPriority is the task's priority level.
type TaskPriority string

// Task priorities.
const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Task validation errors.
var (
	ErrEmptyTaskID       = errors.New("task ID cannot be empty")
	ErrEmptyTaskTitle    = errors.New("task title cannot be empty")
	ErrInvalidTaskStatus = errors.New("invalid task status")
	ErrInvalidPriority   = errors.New("invalid task priority")
)

// Task is a unit of work owned by one user, optionally shared with
// collaborators.
type Task struct {
	ID            uuid.UUID    `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Status        TaskStatus   `json:"status"`
	Priority      TaskPriority `json:"priority"`
	DueDate       *time.Time   `json:"due_date,omitempty"`
	OwnerID       uuid.UUID    `json:"owner_id"`
	Collaborators []uuid.UUID  `json:"collaborators"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// NewTask creates a task owned by the given user.
func NewTask(
	title, description string,
	status TaskStatus,
	priority TaskPriority,
	dueDate *time.Time,
	ownerID uuid.UUID,
) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		DueDate:     dueDate,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}
	switch t.Status {
	case TaskPending, TaskInProgress, TaskCompleted:
	default:
		return ErrInvalidTaskStatus
	}
	switch t.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return ErrInvalidPriority
	}
	if t.OwnerID == uuid.Nil {
		return ErrEmptyOwnerID
	}
	return nil
}

// AccessibleBy reports whether the given user owns the task or is listed
// as a collaborator.
func (t *Task) AccessibleBy(userID uuid.UUID) bool {
	if t.OwnerID == userID {
		return true
	}
	for _, c := range t.Collaborators {
		if c == userID {
			return true
		}
	}
	return false
}
