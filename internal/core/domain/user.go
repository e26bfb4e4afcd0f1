package domain

import "time"

const (
	RoleAdmin             = "admin"
	RoleUser              = "user"
	RoleDepartmentOfficer = "department_officer"
	RoleFieldWorker       = "field_worker"
)

const (
	UserActive   = "active"
	UserInactive = "inactive"
)

// ValidRole reports whether role is one the server stores.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleUser, RoleDepartmentOfficer, RoleFieldWorker:
		return true
	}
	return false
}

// ValidUserStatus reports whether status is active or inactive.
func ValidUserStatus(status string) bool {
	return status == UserActive || status == UserInactive
}

// User models a staff account of the portal.
type User struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	Role           string     `json:"role"`
	Department     string     `json:"department,omitempty"`
	Avatar         string     `json:"avatar,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Bio            string     `json:"bio,omitempty"`
	Status         string     `json:"status"`
	LastLogin      *time.Time `json:"lastLogin,omitempty"`
	IssuesAssigned int        `json:"issuesAssigned"`
	IssuesResolved int        `json:"issuesResolved"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Profile is the reduced view of a user returned by the auth endpoints.
type Profile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
		Avatar:     u.Avatar,
	}
}

// UserPatch carries the profile fields an update may change.
type UserPatch struct {
	Name       *string
	Email      *string
	Phone      *string
	Department *string
	Bio        *string
}

func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Department == nil && p.Bio == nil
}

// UserFilter narrows a user listing. Empty fields do not filter.
type UserFilter struct {
	Role       string
	Status     string
	Department string
	// Search is a case-insensitive match on name, email or department.
	Search string
}
