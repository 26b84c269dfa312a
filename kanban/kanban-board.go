// Package kanban partitions tasks into workflow columns and translates
// board interactions (drag and drop, the move-right control) into status
// changes.
package kanban

import (
	"context"
	"errors"

	"managme-project/backend/models"
	"managme-project/backend/workflow"
)

// PermissionDeniedMessage is the user-visible denial shown whenever the
// permission gate blocks a board action. Read-only callers get the same
// wording on every mutation path.
const PermissionDeniedMessage = "You do not have permission to perform this action. Guest accounts are read-only."

// ErrPermissionDenied is returned when the permission gate rejects a
// board action.
var ErrPermissionDenied = errors.New(PermissionDeniedMessage)

var columnOrder = []models.TaskStatus{models.StatusTodo, models.StatusDoing, models.StatusDone}

var columnLabels = map[models.TaskStatus]string{
	models.StatusTodo:  "To Do",
	models.StatusDoing: "In Progress",
	models.StatusDone:  "Done",
}

// Column is one board column with its tasks in input order.
type Column struct {
	Status models.TaskStatus `json:"status"`
	Label  string            `json:"label"`
	Count  int               `json:"count"`
	Tasks  []models.Task     `json:"tasks"`
}

// Board holds the three columns in todo, doing, done order.
type Board struct {
	Columns []Column `json:"columns"`
}

// GroupByStatus partitions tasks into the three columns. The partition is
// stable: tasks keep their input order inside each column, and every task
// lands in exactly the column matching its status.
func GroupByStatus(tasks []models.Task) Board {
	grouped := make(map[models.TaskStatus][]models.Task, len(columnOrder))
	for _, task := range tasks {
		grouped[task.Status] = append(grouped[task.Status], task)
	}

	board := Board{Columns: make([]Column, 0, len(columnOrder))}
	for _, status := range columnOrder {
		board.Columns = append(board.Columns, Column{
			Status: status,
			Label:  columnLabels[status],
			Count:  len(grouped[status]),
			Tasks:  grouped[status],
		})
	}
	return board
}

// TaskMover applies a status change to a stored task. It is implemented
// by the task service; the controller itself keeps no copy of task state
// beyond the transient drag payload.
type TaskMover interface {
	ChangeTaskStatus(ctx context.Context, taskID string, status models.TaskStatus) (*models.Task, error)
}

// Controller manages the drag lifecycle of a board. It mirrors one
// user's in-flight drag, not shared server state.
type Controller struct {
	mover TaskMover

	draggedTaskID  string
	dragOverColumn models.TaskStatus
	hasDragOver    bool
}

func NewController(mover TaskMover) *Controller {
	return &Controller{mover: mover}
}

// DragStart records the dragged task. Read-only users cannot pick up a
// card at all.
func (c *Controller) DragStart(user *models.User, task models.Task) bool {
	if !workflow.CanWrite(user) {
		return false
	}
	c.draggedTaskID = task.ID.Hex()
	return true
}

// DragOver marks a column as the current drop target. Highlighting only,
// no state change.
func (c *Controller) DragOver(column models.TaskStatus) {
	c.dragOverColumn = column
	c.hasDragOver = true
}

// DragLeave clears the drop-target marker.
func (c *Controller) DragLeave() {
	c.hasDragOver = false
}

// DragOverColumn reports the current drop target, if any.
func (c *Controller) DragOverColumn() (models.TaskStatus, bool) {
	return c.dragOverColumn, c.hasDragOver
}

// Drop completes a drag onto a column. The permission gate runs first: a
// denial clears the drag state and mutates nothing. The drop-target
// marker is cleared unconditionally, success or failure.
func (c *Controller) Drop(ctx context.Context, user *models.User, column models.TaskStatus) (*models.Task, error) {
	defer func() {
		c.hasDragOver = false
		c.draggedTaskID = ""
	}()

	if !workflow.CanWrite(user) {
		return nil, ErrPermissionDenied
	}
	if c.draggedTaskID == "" {
		return nil, nil
	}
	return c.mover.ChangeTaskStatus(ctx, c.draggedTaskID, column)
}

// MoveRight advances a task one column forward: todo to doing, doing to
// done. Done tasks have nowhere to go and the call is a no-op.
func (c *Controller) MoveRight(ctx context.Context, user *models.User, task models.Task) (*models.Task, error) {
	if !workflow.CanWrite(user) {
		return nil, ErrPermissionDenied
	}
	next, ok := workflow.NextStatus(task.Status)
	if !ok {
		return nil, nil
	}
	return c.mover.ChangeTaskStatus(ctx, task.ID.Hex(), next)
}
