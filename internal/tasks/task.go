package tasks

import "time"

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority maps spoken priority words to a Priority, defaulting to medium.
func ParsePriority(s string) Priority {
	switch Priority(s) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return Priority(s)
	default:
		return PriorityMedium
	}
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Task is one user-tracked to-do item. The ID addresses the task only while
// it is pending; after completion it is kept as a historical field.
type Task struct {
	ID        int        `json:"id"`
	Text      string     `json:"text"`
	Priority  Priority   `json:"priority"`
	Status    Status     `json:"status"`
	Created   time.Time  `json:"created"`
	DueDate   string     `json:"due_date,omitempty"`
	Completed *time.Time `json:"completed_date,omitempty"`
}
