package handlers

import (
	"encoding/json"
	"net/http"

	"managme-project/backend/logging"
	"managme-project/backend/middleware"
	"managme-project/backend/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.GetAllUsers(r.Context())
	if err != nil {
		logging.Logger.Errorf("Event ID: USER_LIST_FAILED, Description: Failed to fetch users: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}

// GetAssignableUsers returns the users eligible as task assignees, for
// the assignment dropdowns.
func (h *UserHandler) GetAssignableUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.GetAssignableUsers(r.Context())
	if err != nil {
		logging.Logger.Errorf("Event ID: ASSIGNABLE_USER_LIST_FAILED, Description: Failed to fetch assignable users: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}

// GetCurrentUser returns the profile of the authenticated user.
func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)
	if user == nil {
		http.Error(w, "No active session", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// UpdateProfile edits the authenticated user's own name fields.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)
	if user == nil {
		http.Error(w, "No active session", http.StatusUnauthorized)
		return
	}

	var request struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	updated, err := h.userService.UpdateProfile(r.Context(), user.ID, request.FirstName, request.LastName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}
