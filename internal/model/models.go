package model

import (
	"time"

	"github.com/agalitsyn/secret"
)

type ID = uint

type Role string

const (
	RoleUnknown Role = ""
	RoleUser    Role = "user"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities for display: high sorts before medium, medium before low.
func (p Priority) Rank() (int, bool) {
	switch p {
	case PriorityHigh:
		return 0, true
	case PriorityMedium:
		return 1, true
	case PriorityLow:
		return 2, true
	default:
		return 0, false
	}
}

func (p Priority) Valid() bool {
	_, ok := p.Rank()
	return ok
}

type TaskAssignee struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
}

type Task struct {
	ID        ID        `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	// DueDate is the raw calendar date sent by the backend.
	DueDate   string `json:"dueDate"`
	Completed bool   `json:"completed"`

	AssignedTo *TaskAssignee `json:"assignedTo,omitempty"`
}

type User struct {
	ID ID `json:"id"`

	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Username   string `json:"username"`
	Password   string `json:"password,omitempty"`
	Department string `json:"department"`
	Role       Role   `json:"role"`
}

func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

type Analytics struct {
	EmployeeID     ID     `json:"employeeId"`
	Username       string `json:"username"`
	Department     string `json:"department"`
	CompletedTasks int    `json:"completedTasks"`
	TotalTasks     int    `json:"totalTasks"`
}

// CompletionRate is the completed share in percent, 0 for users without tasks.
func (a Analytics) CompletionRate() int {
	if a.TotalTasks <= 0 {
		return 0
	}
	return a.CompletedTasks * 100 / a.TotalTasks
}

// Session is an authenticated browser session. Role stays RoleUnknown until the
// backend profile has been resolved; ClaimedRole is what the credential says.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`

	UserID      ID     `json:"userId"`
	Username    string `json:"username"`
	Role        Role   `json:"role"`
	ClaimedRole Role   `json:"claimedRole"`

	AccessToken secret.String `json:"accessToken"`
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
