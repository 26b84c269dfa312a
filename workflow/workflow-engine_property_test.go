package workflow

import (
	"testing"
	"time"

	"managme-project/backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"pgregory.net/rapid"
)

// TestProperty_DateInvariantsUnderRandomTransitions verifies that after
// any sequence of valid transitions and assignments:
//   - the status is always one of the three board columns
//   - EndDate is set exactly when the task is done
//   - StartDate is set whenever EndDate is set
func TestProperty_DateInvariantsUnderRandomTransitions(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		task := models.Task{
			ID:        primitive.NewObjectID(),
			ProjectID: "project-1",
			Title:     "T1",
			Priority:  models.PriorityMedium,
			Status:    models.StatusTodo,
			CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		now := task.CreatedAt

		n := rapid.IntRange(1, 30).Draw(rt, "num_ops")
		for i := 0; i < n; i++ {
			now = now.Add(time.Duration(rapid.IntRange(1, 48).Draw(rt, "hours")) * time.Hour)

			var err error
			if rapid.Bool().Draw(rt, "assign") {
				task, err = AssignUser(task, primitive.NewObjectID(), now)
			} else {
				target := rapid.SampledFrom([]models.TaskStatus{
					models.StatusTodo, models.StatusDoing, models.StatusDone,
				}).Draw(rt, "target")
				task, err = ApplyStatusChange(task, target, now)
			}
			if err != nil {
				rt.Fatalf("transition failed: %v", err)
			}

			if !task.Status.IsValid() {
				rt.Fatalf("invalid status %q", task.Status)
			}
			if (task.EndDate != nil) != (task.Status == models.StatusDone) {
				rt.Fatalf("EndDate %v does not match status %q", task.EndDate, task.Status)
			}
			if task.EndDate != nil && task.StartDate == nil {
				rt.Fatal("EndDate set without StartDate")
			}
			if task.Status == models.StatusTodo && task.StartDate != nil {
				rt.Fatal("StartDate survived a reset to todo")
			}
		}
	})
}

// TestProperty_StartDateIsFirstEntryIntoDoing verifies that once set,
// StartDate never moves unless the task is reset to todo.
func TestProperty_StartDateIsFirstEntryIntoDoing(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		task := models.Task{
			ID:        primitive.NewObjectID(),
			ProjectID: "project-1",
			Title:     "T1",
			Priority:  models.PriorityLow,
			Status:    models.StatusTodo,
			CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		now := task.CreatedAt
		var firstStart *time.Time

		n := rapid.IntRange(1, 30).Draw(rt, "num_ops")
		for i := 0; i < n; i++ {
			now = now.Add(time.Hour)
			target := rapid.SampledFrom([]models.TaskStatus{
				models.StatusTodo, models.StatusDoing, models.StatusDone,
			}).Draw(rt, "target")

			task, _ = ApplyStatusChange(task, target, now)

			if target == models.StatusTodo {
				firstStart = nil
				continue
			}
			if firstStart == nil {
				firstStart = task.StartDate
				continue
			}
			if task.StartDate == nil || !task.StartDate.Equal(*firstStart) {
				rt.Fatalf("StartDate moved from %v to %v without a reset", firstStart, task.StartDate)
			}
		}
	})
}
