package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleDeveloper UserRole = "developer"
	RoleDevOps    UserRole = "devops"
	RoleGuest     UserRole = "guest"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDeveloper, RoleDevOps, RoleGuest:
		return true
	}
	return false
}

// CanBeAssigned reports whether users with this role are eligible
// assignees for tasks. Only developers and devops do task work.
func (r UserRole) CanBeAssigned() bool {
	return r == RoleDeveloper || r == RoleDevOps
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Role      UserRole           `bson:"role" json:"role"`
}

// NewGuestProfile builds the minimal read-only profile used when a
// valid session has no stored profile row. The first name falls back to
// the local part of the email address.
func NewGuestProfile(email string) *User {
	firstName := email
	if at := strings.Index(email, "@"); at >= 0 {
		firstName = email[:at]
	}
	if firstName == "" {
		firstName = "User"
	}
	return &User{
		FirstName: firstName,
		Email:     email,
		Role:      RoleGuest,
	}
}

// DisplayName is the user's name as shown on task cards.
func (u *User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	return name
}
