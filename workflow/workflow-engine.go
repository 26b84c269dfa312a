package workflow

import (
	"errors"
	"fmt"
	"time"

	"managme-project/backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrInvalidStatus is returned for a target status outside the
	// todo/doing/done enum.
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrHoursNotEditable is returned when worked hours are edited on a
	// task that is not in progress.
	ErrHoursNotEditable = errors.New("worked hours can only be updated while the task is in progress")

	// ErrNegativeHours is returned for a negative worked-hours value.
	ErrNegativeHours = errors.New("worked hours must not be negative")
)

// CanWrite is the permission gate consulted before every mutation.
// Unauthenticated requests and guest accounts are read-only; every other
// role has full write access. The store's access-control layer remains
// the authoritative enforcer.
func CanWrite(user *models.User) bool {
	if user == nil {
		return false
	}
	return user.Role != models.RoleGuest
}

// ApplyStatusChange computes the task value resulting from a transition
// to target at the given time. The input task is never mutated.
//
// Timestamp rules:
//   - entering doing sets StartDate only if it was never set, so a task
//     re-opened from done keeps its original start
//   - entering done sets EndDate, synthesizing StartDate for a direct
//     todo -> done move so elapsed time stays computable
//   - returning to todo resets the task: both dates are cleared
//   - leaving done always clears EndDate, keeping EndDate set exactly
//     for done tasks
func ApplyStatusChange(task models.Task, target models.TaskStatus, now time.Time) (models.Task, error) {
	if !target.IsValid() {
		return task, fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}

	updated := task
	switch target {
	case models.StatusTodo:
		updated.Status = models.StatusTodo
		updated.StartDate = nil
		updated.EndDate = nil
	case models.StatusDoing:
		updated.Status = models.StatusDoing
		if updated.StartDate == nil {
			start := now
			updated.StartDate = &start
		}
		updated.EndDate = nil
	case models.StatusDone:
		updated.Status = models.StatusDone
		if updated.StartDate == nil {
			start := now
			updated.StartDate = &start
		}
		end := now
		updated.EndDate = &end
	}
	return updated, nil
}

// AssignUser sets the assignee on a copy of the task. Assigning someone
// to a task that is still in todo starts the work: the task moves to
// doing with the usual StartDate rule. Tasks already in doing or done
// only change their assignee.
func AssignUser(task models.Task, userID primitive.ObjectID, now time.Time) (models.Task, error) {
	updated := task
	updated.AssignedTo = &userID
	if updated.Status == models.StatusTodo {
		return ApplyStatusChange(updated, models.StatusDoing, now)
	}
	return updated, nil
}

// NextStatus returns the status one column to the right, or false when
// the task is already done and cannot move further.
func NextStatus(current models.TaskStatus) (models.TaskStatus, bool) {
	switch current {
	case models.StatusTodo:
		return models.StatusDoing, true
	case models.StatusDoing:
		return models.StatusDone, true
	}
	return current, false
}

// SetWorkedHours replaces the accumulated worked hours on a copy of the
// task. The value is an absolute replacement, not a delta, and is only
// editable while the task is in progress.
func SetWorkedHours(task models.Task, hours float64) (models.Task, error) {
	if hours < 0 {
		return task, ErrNegativeHours
	}
	if task.Status != models.StatusDoing {
		return task, ErrHoursNotEditable
	}
	updated := task
	updated.WorkedHours = hours
	return updated, nil
}

// TimeInStatus derives how long the task has been in its current state,
// formatted for display. Missing timestamps yield "Unknown" rather than
// an error so a malformed stored task still renders.
func TimeInStatus(task models.Task, now time.Time) string {
	switch task.Status {
	case models.StatusTodo:
		if task.CreatedAt.IsZero() {
			return "Unknown"
		}
		return formatDays(now.Sub(task.CreatedAt))
	case models.StatusDoing:
		if task.StartDate == nil {
			return "Unknown"
		}
		return formatDays(now.Sub(*task.StartDate))
	case models.StatusDone:
		if task.StartDate == nil || task.EndDate == nil {
			return "Unknown"
		}
		return formatDaysHours(task.EndDate.Sub(*task.StartDate))
	}
	return "Unknown"
}

func formatDays(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%d days", days)
	}
	return "Today"
}

func formatDaysHours(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	return fmt.Sprintf("%d hours", hours)
}
