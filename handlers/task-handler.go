package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"managme-project/backend/kanban"
	"managme-project/backend/logging"
	"managme-project/backend/middleware"
	"managme-project/backend/models"
	"managme-project/backend/services"
	"managme-project/backend/workflow"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskStore is the slice of the task service the HTTP surface needs.
type TaskStore interface {
	CreateTask(ctx context.Context, task models.Task) (*models.Task, error)
	GetTasksByProject(ctx context.Context, projectID string) ([]models.Task, error)
	GetTaskByID(ctx context.Context, taskID primitive.ObjectID) (*models.Task, error)
	UpdateTask(ctx context.Context, taskID primitive.ObjectID, update services.TaskUpdate) (*models.Task, error)
	DeleteTask(ctx context.Context, taskID primitive.ObjectID) error
	ChangeTaskStatus(ctx context.Context, taskID string, status models.TaskStatus) (*models.Task, error)
	AssignUser(ctx context.Context, taskID, userID primitive.ObjectID) (*models.Task, error)
	SetWorkedHours(ctx context.Context, taskID primitive.ObjectID, hours float64) (*models.Task, error)
}

// UserDirectory lists the users needed to compose the board.
type UserDirectory interface {
	GetAssignableUsers(ctx context.Context) ([]models.User, error)
}

type TaskHandler struct {
	taskService TaskStore
	userService UserDirectory
}

func NewTaskHandler(taskService TaskStore, userService UserDirectory) *TaskHandler {
	return &TaskHandler{taskService: taskService, userService: userService}
}

// requireWrite runs the permission gate for a mutating request. On
// denial it answers 403 with the read-only message and returns nil.
func requireWrite(w http.ResponseWriter, r *http.Request) *models.User {
	user := middleware.CurrentUser(r)
	if !workflow.CanWrite(user) {
		http.Error(w, kanban.PermissionDeniedMessage, http.StatusForbidden)
		return nil
	}
	return user
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	if requireWrite(w, r) == nil {
		return
	}

	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	createdTask, err := h.taskService.CreateTask(r.Context(), task)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(createdTask)
}

func (h *TaskHandler) GetTasksByProject(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	projectID := vars["projectId"]
	if projectID == "" {
		http.Error(w, "Missing project ID", http.StatusBadRequest)
		return
	}

	tasks, err := h.taskService.GetTasksByProject(r.Context(), projectID)
	if err != nil {
		logging.Logger.Errorf("Event ID: TASK_LIST_FAILED, Description: Failed to fetch tasks for project %s: %v", projectID, err)
		// A broken store renders as an empty board, not a broken page.
		tasks = []models.Task{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tasks)
}

type boardColumn struct {
	Status models.TaskStatus `json:"status"`
	Label  string            `json:"label"`
	Count  int               `json:"count"`
	Cards  []kanban.Card     `json:"cards"`
}

// GetKanbanBoard returns the three columns of a project's board, each
// task already derived into its card presentation.
func (h *TaskHandler) GetKanbanBoard(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	projectID := vars["projectId"]
	if projectID == "" {
		http.Error(w, "Missing project ID", http.StatusBadRequest)
		return
	}

	tasks, err := h.taskService.GetTasksByProject(r.Context(), projectID)
	if err != nil {
		logging.Logger.Errorf("Event ID: BOARD_LIST_FAILED, Description: Failed to fetch tasks for project %s: %v", projectID, err)
		tasks = []models.Task{}
	}

	availableUsers, err := h.userService.GetAssignableUsers(r.Context())
	if err != nil {
		logging.Logger.Errorf("Event ID: BOARD_USERS_FAILED, Description: Failed to fetch assignable users: %v", err)
		availableUsers = []models.User{}
	}

	viewer := middleware.CurrentUser(r)
	now := time.Now()
	board := kanban.GroupByStatus(tasks)

	columns := make([]boardColumn, 0, len(board.Columns))
	for _, col := range board.Columns {
		cards := make([]kanban.Card, 0, len(col.Tasks))
		for _, task := range col.Tasks {
			cards = append(cards, kanban.NewCard(task, availableUsers, viewer, now))
		}
		columns = append(columns, boardColumn{
			Status: col.Status,
			Label:  col.Label,
			Count:  col.Count,
			Cards:  cards,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"columns":        columns,
		"availableUsers": availableUsers,
	})
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	taskID, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.GetTaskByID(r.Context(), taskID)
	if errors.Is(err, services.ErrTaskNotFound) {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	if requireWrite(w, r) == nil {
		return
	}
	taskID, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	var update services.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	updatedTask, err := h.taskService.UpdateTask(r.Context(), taskID, update)
	if errors.Is(err, services.ErrTaskNotFound) {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updatedTask)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if requireWrite(w, r) == nil {
		return
	}
	taskID, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	err := h.taskService.DeleteTask(r.Context(), taskID)
	if errors.Is(err, services.ErrTaskNotFound) {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "Task deleted successfully"}`))
}

// ChangeTaskStatus is the explicit status-change entry point used by the
// edit form's status field and by clients without drag and drop.
func (h *TaskHandler) ChangeTaskStatus(w http.ResponseWriter, r *http.Request) {
	if requireWrite(w, r) == nil {
		return
	}

	var request struct {
		TaskID string            `json:"taskId"`
		Status models.TaskStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	updatedTask, err := h.taskService.ChangeTaskStatus(r.Context(), request.TaskID, request.Status)
	if err != nil {
		writeTaskMutationError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updatedTask)
}

// DropTask completes a drag-and-drop: the client reports the dragged
// task and the column it was dropped on. The drag lifecycle runs through
// the board controller so drop semantics match every other entry point.
func (h *TaskHandler) DropTask(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)

	var request struct {
		TaskID string            `json:"taskId"`
		Column models.TaskStatus `json:"column"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	taskObjectID, err := primitive.ObjectIDFromHex(request.TaskID)
	if err != nil {
		http.Error(w, "Invalid task ID format", http.StatusBadRequest)
		return
	}
	task, err := h.taskService.GetTaskByID(r.Context(), taskObjectID)
	if errors.Is(err, services.ErrTaskNotFound) {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// One controller per request: the drag payload arrives complete in
	// the drop request, there is no cross-request drag state to keep.
	controller := kanban.NewController(h.taskService)
	controller.DragStart(user, *task)
	controller.DragOver(request.Column)

	updatedTask, err := controller.Drop(r.Context(), user, request.Column)
	if errors.Is(err, kanban.ErrPermissionDenied) {
		http.Error(w, kanban.PermissionDeniedMessage, http.StatusForbidden)
		return
	}
	if err != nil {
		writeTaskMutationError(w, err)
		return
	}
	if updatedTask == nil {
		// Nothing was dragged: the drop is a no-op.
		updatedTask = task
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updatedTask)
}

// MoveTaskRight advances a task one column forward; done tasks stay put.
func (h *TaskHandler) MoveTaskRight(w http.ResponseWriter, r *http.Request) {
	user := requireWrite(w, r)
	if user == nil {
		return
	}
	taskID, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.GetTaskByID(r.Context(), taskID)
	if errors.Is(err, services.ErrTaskNotFound) {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	controller := kanban.NewController(h.taskService)
	updatedTask, err := controller.MoveRight(r.Context(), user, *task)
	if err != nil {
		writeTaskMutationError(w, err)
		return
	}
	if updatedTask == nil {
		updatedTask = task
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updatedTask)
}

func (h *TaskHandler) AssignUser(w http.ResponseWriter, r *http.Request) {
	if requireWrite(w, r) == nil {
		return
	}
	taskID, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	var request struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	userObjectID, err := primitive.ObjectIDFromHex(request.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID format", http.StatusBadRequest)
		return
	}

	updatedTask, err := h.taskService.AssignUser(r.Context(), taskID, userObjectID)
	if err != nil {
		writeTaskMutationError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updatedTask)
}

func (h *TaskHandler) SetWorkedHours(w http.ResponseWriter, r *http.Request) {
	if requireWrite(w, r) == nil {
		return
	}
	taskID, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	var request struct {
		WorkedHours float64 `json:"workedHours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	updatedTask, err := h.taskService.SetWorkedHours(r.Context(), taskID, request.WorkedHours)
	if err != nil {
		writeTaskMutationError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updatedTask)
}

func taskIDFromRequest(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	vars := mux.Vars(r)
	taskID, err := primitive.ObjectIDFromHex(vars["taskID"])
	if err != nil {
		http.Error(w, "Invalid task ID format", http.StatusBadRequest)
		return primitive.NilObjectID, false
	}
	return taskID, true
}

func writeTaskMutationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		http.Error(w, "Task not found", http.StatusNotFound)
	case errors.Is(err, workflow.ErrInvalidStatus),
		errors.Is(err, workflow.ErrHoursNotEditable),
		errors.Is(err, workflow.ErrNegativeHours):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
