package models

import "testing"

func TestTaskValidate(t *testing.T) {
	valid := Task{
		ProjectID: "p1",
		Title:     "T1",
		Priority:  PriorityLow,
		Status:    StatusTodo,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid task rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Task)
	}{
		{"missing title", func(task *Task) { task.Title = "" }},
		{"missing project", func(task *Task) { task.ProjectID = "" }},
		{"bad status", func(task *Task) { task.Status = "archived" }},
		{"bad priority", func(task *Task) { task.Priority = "urgent" }},
		{"negative estimate", func(task *Task) { task.EstimatedTime = -1 }},
		{"negative worked hours", func(task *Task) { task.WorkedHours = -0.5 }},
	}
	for _, tt := range tests {
		task := valid
		tt.mutate(&task)
		if err := task.Validate(); err == nil {
			t.Errorf("%s: Validate accepted an invalid task", tt.name)
		}
	}
}

func TestUserRoleCanBeAssigned(t *testing.T) {
	assignable := map[UserRole]bool{
		RoleAdmin:     false,
		RoleDeveloper: true,
		RoleDevOps:    true,
		RoleGuest:     false,
	}
	for role, want := range assignable {
		if got := role.CanBeAssigned(); got != want {
			t.Errorf("CanBeAssigned(%s) = %v, want %v", role, got, want)
		}
	}
}
