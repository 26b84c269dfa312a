package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusTodo  TaskStatus = "todo"
	StatusDoing TaskStatus = "doing"
	StatusDone  TaskStatus = "done"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is the central entity. ProjectID and CreatedAt are immutable after
// creation; StartDate and EndDate are maintained exclusively by the
// workflow engine.
type Task struct {
	ID            primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	ProjectID     string              `json:"projectId" bson:"projectId"`
	Title         string              `json:"title" bson:"title"`
	Description   string              `json:"description" bson:"description"`
	Priority      TaskPriority        `json:"priority" bson:"priority"`
	Status        TaskStatus          `json:"status" bson:"status"`
	EstimatedTime float64             `json:"estimatedTime" bson:"estimatedTime"`
	WorkedHours   float64             `json:"workedHours" bson:"workedHours"`
	AssignedTo    *primitive.ObjectID `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	CreatedAt     time.Time           `json:"createdAt" bson:"createdAt"`
	StartDate     *time.Time          `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate       *time.Time          `json:"endDate,omitempty" bson:"endDate,omitempty"`
}

// Validate checks the field constraints of a task.
func (t *Task) Validate() error {
	if t.Title == "" {
		return fmt.Errorf("task title is required")
	}
	if t.ProjectID == "" {
		return fmt.Errorf("task project ID is required")
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("invalid task status: %s", t.Status)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("invalid task priority: %s", t.Priority)
	}
	if t.EstimatedTime < 0 {
		return fmt.Errorf("estimated time must not be negative")
	}
	if t.WorkedHours < 0 {
		return fmt.Errorf("worked hours must not be negative")
	}
	return nil
}
