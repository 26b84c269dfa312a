package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"managme-project/backend/logging"
	"managme-project/backend/models"

	"github.com/sony/gobreaker"
)

// Notifier pushes task events to the external notifications service.
// Deliveries are best effort: a failure is logged and never fails the
// mutation that triggered it.
type Notifier struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	baseURL    string
}

func NewNotifier(httpClient *http.Client, breaker *gobreaker.CircuitBreaker, baseURL string) *Notifier {
	return &Notifier{
		httpClient: httpClient,
		breaker:    breaker,
		baseURL:    baseURL,
	}
}

// TaskStatusChanged announces that a task moved to a new column.
func (n *Notifier) TaskStatusChanged(task *models.Task) {
	if n.baseURL == "" {
		return
	}

	payload := map[string]string{
		"taskId":  task.ID.Hex(),
		"title":   task.Title,
		"status":  string(task.Status),
		"message": fmt.Sprintf("Task %q moved to %s", task.Title, task.Status),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_MARSHAL_FAILED, Description: Failed to encode notification payload: %v", err)
		return
	}

	_, err = n.breaker.Execute(func() (interface{}, error) {
		resp, err := n.httpClient.Post(n.baseURL+"/api/notifications", "application/json", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("notifications service returned %s", resp.Status)
		}
		return nil, nil
	})
	if err != nil {
		logging.Logger.Warnf("Event ID: NOTIFICATION_SEND_FAILED, Description: Failed to notify status change for task %s: %v", task.ID.Hex(), err)
	}
}
