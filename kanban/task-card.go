package kanban

import (
	"time"

	"managme-project/backend/models"
	"managme-project/backend/workflow"
)

// Card is the derived presentation of a task on the board: everything a
// renderer needs, computed from the task, the available users and now.
type Card struct {
	Task             models.Task `json:"task"`
	ShortDescription string      `json:"shortDescription"`
	PriorityLabel    string      `json:"priorityLabel"`
	StatusLabel      string      `json:"statusLabel"`
	AssignedUserName string      `json:"assignedUserName"`
	CanAssign        bool        `json:"canAssign"`
	CreatedAtLabel   string      `json:"createdAtLabel"`
	StartDateLabel   string      `json:"startDateLabel"`
	EndDateLabel     string      `json:"endDateLabel"`
	TimeInStatus     string      `json:"timeInStatus"`
}

var priorityLabels = map[models.TaskPriority]string{
	models.PriorityLow:    "Low",
	models.PriorityMedium: "Medium",
	models.PriorityHigh:   "High",
}

var statusLabels = map[models.TaskStatus]string{
	models.StatusTodo:  "To Do",
	models.StatusDoing: "In Progress",
	models.StatusDone:  "Done",
}

// NewCard derives the card for a task. availableUsers is the assignable
// user list used to resolve the assignee's display name; viewer decides
// whether an unassigned card offers the inline assign control.
func NewCard(task models.Task, availableUsers []models.User, viewer *models.User, now time.Time) Card {
	card := Card{
		Task:             task,
		ShortDescription: ShortDescription(task.Description),
		PriorityLabel:    priorityLabels[task.Priority],
		StatusLabel:      statusLabels[task.Status],
		CreatedAtLabel:   FormatDate(&task.CreatedAt),
		StartDateLabel:   FormatDate(task.StartDate),
		EndDateLabel:     FormatDate(task.EndDate),
		TimeInStatus:     workflow.TimeInStatus(task, now),
	}

	if task.AssignedTo != nil {
		for i := range availableUsers {
			if availableUsers[i].ID == *task.AssignedTo {
				card.AssignedUserName = availableUsers[i].DisplayName()
				break
			}
		}
		if card.AssignedUserName == "" {
			card.AssignedUserName = "Unknown user"
		}
	} else {
		card.AssignedUserName = "Unassigned"
		card.CanAssign = workflow.CanWrite(viewer)
	}
	return card
}

// ShortDescription truncates a description longer than 100 characters to
// its first 97 plus an ellipsis.
func ShortDescription(description string) string {
	runes := []rune(description)
	if len(runes) <= 100 {
		return description
	}
	return string(runes[:97]) + "..."
}

// FormatDate renders an absolute timestamp, or "Not specified" for a
// date that was never set.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "Not specified"
	}
	return t.Format("2006-01-02 15:04:05")
}
