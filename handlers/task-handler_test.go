package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"managme-project/backend/kanban"
	"managme-project/backend/models"
	"managme-project/backend/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// failingTaskStore errors on every operation, standing in for a broken
// persistence layer.
type failingTaskStore struct{}

func (s *failingTaskStore) CreateTask(ctx context.Context, task models.Task) (*models.Task, error) {
	return nil, fmt.Errorf("store unavailable")
}

func (s *failingTaskStore) GetTasksByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	return nil, fmt.Errorf("store unavailable")
}

func (s *failingTaskStore) GetTaskByID(ctx context.Context, taskID primitive.ObjectID) (*models.Task, error) {
	return nil, fmt.Errorf("store unavailable")
}

func (s *failingTaskStore) UpdateTask(ctx context.Context, taskID primitive.ObjectID, update services.TaskUpdate) (*models.Task, error) {
	return nil, fmt.Errorf("store unavailable")
}

func (s *failingTaskStore) DeleteTask(ctx context.Context, taskID primitive.ObjectID) error {
	return fmt.Errorf("store unavailable")
}

func (s *failingTaskStore) ChangeTaskStatus(ctx context.Context, taskID string, status models.TaskStatus) (*models.Task, error) {
	return nil, fmt.Errorf("store unavailable")
}

func (s *failingTaskStore) AssignUser(ctx context.Context, taskID, userID primitive.ObjectID) (*models.Task, error) {
	return nil, fmt.Errorf("store unavailable")
}

func (s *failingTaskStore) SetWorkedHours(ctx context.Context, taskID primitive.ObjectID, hours float64) (*models.Task, error) {
	return nil, fmt.Errorf("store unavailable")
}

// stubTaskStore serves a fixed task list.
type stubTaskStore struct {
	failingTaskStore
	tasks []models.Task
}

func (s *stubTaskStore) GetTasksByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	return s.tasks, nil
}

type stubUserDirectory struct {
	users []models.User
	err   error
}

func (d *stubUserDirectory) GetAssignableUsers(ctx context.Context) ([]models.User, error) {
	return d.users, d.err
}

type boardResponse struct {
	Columns []struct {
		Status models.TaskStatus `json:"status"`
		Label  string            `json:"label"`
		Count  int               `json:"count"`
		Cards  []kanban.Card     `json:"cards"`
	} `json:"columns"`
	AvailableUsers []models.User `json:"availableUsers"`
}

func projectRequest(t *testing.T, path string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, path, nil)
	return mux.SetURLVars(r, map[string]string{"projectId": "p1"})
}

func TestGetTasksByProject_StoreFailureRendersEmptyList(t *testing.T) {
	h := NewTaskHandler(&failingTaskStore{}, &stubUserDirectory{})

	w := httptest.NewRecorder()
	h.GetTasksByProject(w, projectRequest(t, "/api/tasks/project/p1"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var tasks []models.Task
	if err := json.NewDecoder(w.Body).Decode(&tasks); err != nil {
		t.Fatalf("response is not a task list: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("got %d tasks from a broken store, want 0", len(tasks))
	}
}

func TestGetKanbanBoard_StoreFailureRendersEmptyBoard(t *testing.T) {
	h := NewTaskHandler(&failingTaskStore{}, &stubUserDirectory{err: fmt.Errorf("store unavailable")})

	w := httptest.NewRecorder()
	h.GetKanbanBoard(w, projectRequest(t, "/api/tasks/project/p1/board"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var board boardResponse
	if err := json.NewDecoder(w.Body).Decode(&board); err != nil {
		t.Fatalf("response is not a board: %v", err)
	}
	if len(board.Columns) != 3 {
		t.Fatalf("got %d columns, want 3", len(board.Columns))
	}
	for _, col := range board.Columns {
		if col.Count != 0 || len(col.Cards) != 0 {
			t.Errorf("column %s not empty: count=%d cards=%d", col.Status, col.Count, len(col.Cards))
		}
	}
}

func TestGetKanbanBoard_ComposesCardsAndUsers(t *testing.T) {
	userID := primitive.NewObjectID()
	start := time.Now().Add(-2 * time.Hour)
	store := &stubTaskStore{tasks: []models.Task{
		{ID: primitive.NewObjectID(), Title: "a", Status: models.StatusTodo, Priority: models.PriorityLow, CreatedAt: start},
		{ID: primitive.NewObjectID(), Title: "b", Status: models.StatusDoing, Priority: models.PriorityHigh, CreatedAt: start, StartDate: &start, AssignedTo: &userID},
	}}
	directory := &stubUserDirectory{users: []models.User{
		{ID: userID, FirstName: "Ana", LastName: "Kovač", Role: models.RoleDeveloper},
	}}
	h := NewTaskHandler(store, directory)

	w := httptest.NewRecorder()
	h.GetKanbanBoard(w, projectRequest(t, "/api/tasks/project/p1/board"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var board boardResponse
	if err := json.NewDecoder(w.Body).Decode(&board); err != nil {
		t.Fatalf("response is not a board: %v", err)
	}

	if len(board.AvailableUsers) != 1 || board.AvailableUsers[0].FirstName != "Ana" {
		t.Errorf("availableUsers = %+v, want the assignable user list", board.AvailableUsers)
	}

	counts := map[models.TaskStatus]int{}
	for _, col := range board.Columns {
		counts[col.Status] = col.Count
	}
	if counts[models.StatusTodo] != 1 || counts[models.StatusDoing] != 1 || counts[models.StatusDone] != 0 {
		t.Errorf("column counts = %v", counts)
	}

	for _, col := range board.Columns {
		if col.Status != models.StatusDoing {
			continue
		}
		if len(col.Cards) != 1 {
			t.Fatalf("doing column has %d cards, want 1", len(col.Cards))
		}
		if col.Cards[0].AssignedUserName != "Ana Kovač" {
			t.Errorf("AssignedUserName = %q", col.Cards[0].AssignedUserName)
		}
	}
}
