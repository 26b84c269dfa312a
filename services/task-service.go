package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"managme-project/backend/logging"
	"managme-project/backend/models"
	"managme-project/backend/workflow"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrTaskNotFound distinguishes a missing task from a transport failure
// so handlers can answer 404 instead of 500.
var ErrTaskNotFound = errors.New("task not found")

type TaskService struct {
	tasksCollection *mongo.Collection
	usersCollection *mongo.Collection
	notifier        *Notifier
}

func NewTaskService(tasksCollection, usersCollection *mongo.Collection, notifier *Notifier) *TaskService {
	return &TaskService{
		tasksCollection: tasksCollection,
		usersCollection: usersCollection,
		notifier:        notifier,
	}
}

// CreateTask stores a new task. Status defaults to todo and CreatedAt is
// set here; an assignee given at creation goes through the same
// auto-transition as a later assignment.
func (s *TaskService) CreateTask(ctx context.Context, task models.Task) (*models.Task, error) {
	task.ID = primitive.NewObjectID()
	task.CreatedAt = time.Now()
	task.StartDate = nil
	task.EndDate = nil
	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	if task.Status != models.StatusTodo {
		return nil, fmt.Errorf("new tasks must start in %q status", models.StatusTodo)
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	if task.AssignedTo != nil {
		assigneeID := *task.AssignedTo
		if err := s.checkAssignable(ctx, assigneeID); err != nil {
			return nil, err
		}
		updated, err := workflow.AssignUser(task, assigneeID, time.Now())
		if err != nil {
			return nil, err
		}
		task = updated
	}

	if _, err := s.tasksCollection.InsertOne(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %v", err)
	}
	return &task, nil
}

// GetTasksByProject returns the tasks of one project.
func (s *TaskService) GetTasksByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	cursor, err := s.tasksCollection.Find(ctx, bson.M{"projectId": projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	defer cursor.Close(ctx)

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}
	return tasks, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, taskID primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := s.tasksCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %v", err)
	}
	return &task, nil
}

// TaskUpdate carries the editable fields of a task. Nil fields are left
// unchanged; ProjectID and CreatedAt are immutable and not represented.
type TaskUpdate struct {
	Title         *string              `json:"title,omitempty"`
	Description   *string              `json:"description,omitempty"`
	Priority      *models.TaskPriority `json:"priority,omitempty"`
	EstimatedTime *float64             `json:"estimatedTime,omitempty"`
	AssignedTo    *string              `json:"assignedTo,omitempty"`
	Status        *models.TaskStatus   `json:"status,omitempty"`
}

// UpdateTask applies a partial edit. A status change in the payload goes
// through the workflow engine so the edit form, the board and the
// explicit status endpoint all agree on timestamp side effects.
func (s *TaskService) UpdateTask(ctx context.Context, taskID primitive.ObjectID, update TaskUpdate) (*models.Task, error) {
	task, err := s.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	updated := *task
	if update.Title != nil {
		updated.Title = *update.Title
	}
	if update.Description != nil {
		updated.Description = *update.Description
	}
	if update.Priority != nil {
		updated.Priority = *update.Priority
	}
	if update.EstimatedTime != nil {
		updated.EstimatedTime = *update.EstimatedTime
	}
	if update.AssignedTo != nil {
		assigneeID, err := primitive.ObjectIDFromHex(*update.AssignedTo)
		if err != nil {
			return nil, fmt.Errorf("invalid assignee ID format: %v", err)
		}
		if err := s.checkAssignable(ctx, assigneeID); err != nil {
			return nil, err
		}
		updated, err = workflow.AssignUser(updated, assigneeID, time.Now())
		if err != nil {
			return nil, err
		}
	}
	if update.Status != nil && *update.Status != updated.Status {
		updated, err = workflow.ApplyStatusChange(updated, *update.Status, time.Now())
		if err != nil {
			return nil, err
		}
	}
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	return s.persist(ctx, &updated)
}

// DeleteTask removes a task unconditionally.
func (s *TaskService) DeleteTask(ctx context.Context, taskID primitive.ObjectID) error {
	result, err := s.tasksCollection.DeleteOne(ctx, bson.M{"_id": taskID})
	if err != nil {
		return fmt.Errorf("failed to delete task: %v", err)
	}
	if result.DeletedCount == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// ChangeTaskStatus moves a task to the target column via the workflow
// engine and persists the result. Implements kanban.TaskMover.
func (s *TaskService) ChangeTaskStatus(ctx context.Context, taskID string, status models.TaskStatus) (*models.Task, error) {
	taskObjectID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, fmt.Errorf("invalid task ID format: %v", err)
	}
	task, err := s.GetTaskByID(ctx, taskObjectID)
	if err != nil {
		return nil, err
	}

	updated, err := workflow.ApplyStatusChange(*task, status, time.Now())
	if err != nil {
		return nil, err
	}

	persisted, err := s.persist(ctx, &updated)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.TaskStatusChanged(persisted)
	}
	return persisted, nil
}

// AssignUser assigns a task to a user. Only developers and devops may be
// assigned; a todo task starts automatically.
func (s *TaskService) AssignUser(ctx context.Context, taskID, userID primitive.ObjectID) (*models.Task, error) {
	task, err := s.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAssignable(ctx, userID); err != nil {
		return nil, err
	}

	updated, err := workflow.AssignUser(*task, userID, time.Now())
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, &updated)
}

// SetWorkedHours replaces the worked hours of an in-progress task.
func (s *TaskService) SetWorkedHours(ctx context.Context, taskID primitive.ObjectID, hours float64) (*models.Task, error) {
	task, err := s.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	updated, err := workflow.SetWorkedHours(*task, hours)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, &updated)
}

// DeleteTasksByProject removes every task of a project, when the project
// itself is deleted.
func (s *TaskService) DeleteTasksByProject(ctx context.Context, projectID string) (int64, error) {
	result, err := s.tasksCollection.DeleteMany(ctx, bson.M{"projectId": projectID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks for project %s: %v", projectID, err)
	}
	return result.DeletedCount, nil
}

func (s *TaskService) checkAssignable(ctx context.Context, userID primitive.ObjectID) error {
	var user models.User
	err := s.usersCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("assignee not found")
	}
	if err != nil {
		return fmt.Errorf("failed to look up assignee: %v", err)
	}
	if !user.Role.CanBeAssigned() {
		return fmt.Errorf("user %s cannot be assigned tasks: role %s is not developer or devops", userID.Hex(), user.Role)
	}
	return nil
}

// persist writes the mutable fields of a task back to the store and
// returns the stored value. Dates are written even when nil so a cleared
// StartDate/EndDate clears the stored field.
func (s *TaskService) persist(ctx context.Context, task *models.Task) (*models.Task, error) {
	update := bson.M{"$set": bson.M{
		"title":         task.Title,
		"description":   task.Description,
		"priority":      task.Priority,
		"status":        task.Status,
		"estimatedTime": task.EstimatedTime,
		"workedHours":   task.WorkedHours,
		"assignedTo":    task.AssignedTo,
		"startDate":     task.StartDate,
		"endDate":       task.EndDate,
	}}
	result, err := s.tasksCollection.UpdateOne(ctx, bson.M{"_id": task.ID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %v", err)
	}
	if result.MatchedCount == 0 {
		logging.Logger.Warnf("Event ID: TASK_UPDATE_LOST, Description: Task %s disappeared before update was applied", task.ID.Hex())
		return nil, ErrTaskNotFound
	}
	return task, nil
}
