package models

import "testing"

func TestNewGuestProfile(t *testing.T) {
	tests := []struct {
		email         string
		wantFirstName string
	}{
		{"ana@example.com", "ana"},
		{"@example.com", "User"},
		{"", "User"},
		{"no-at-sign", "no-at-sign"},
	}

	for _, tt := range tests {
		got := NewGuestProfile(tt.email)
		if got.Role != RoleGuest {
			t.Errorf("NewGuestProfile(%q).Role = %s, want guest", tt.email, got.Role)
		}
		if got.Email != tt.email {
			t.Errorf("NewGuestProfile(%q).Email = %q", tt.email, got.Email)
		}
		if got.FirstName != tt.wantFirstName {
			t.Errorf("NewGuestProfile(%q).FirstName = %q, want %q", tt.email, got.FirstName, tt.wantFirstName)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		first, last string
		want        string
	}{
		{"Ana", "Kovač", "Ana Kovač"},
		{"Ana", "", "Ana"},
		{"", "Kovač", "Kovač"},
		{"", "", ""},
	}

	for _, tt := range tests {
		u := &User{FirstName: tt.first, LastName: tt.last}
		if got := u.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%q, %q) = %q, want %q", tt.first, tt.last, got, tt.want)
		}
	}
}
