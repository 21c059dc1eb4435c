package domain

import "time"

// Status of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Permission level granted to a non-owner through a share entry.
type Permission string

const (
	PermissionView  Permission = "view"
	PermissionEdit  Permission = "edit"
	PermissionAdmin Permission = "admin"
)

// ValidStatus reports whether s is a known task status.
func ValidStatus(s Status) bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusDone
}

// ValidPriority reports whether p is a known task priority.
func ValidPriority(p Priority) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// ValidPermission reports whether p is a known share permission.
func ValidPermission(p Permission) bool {
	return p == PermissionView || p == PermissionEdit || p == PermissionAdmin
}

// Share grants one user one permission level on a task.
// A user appears at most once in a task's share list.
type Share struct {
	UserID     string
	Permission Permission
}

// Task is the domain entity for a task. OwnerID is immutable after creation.
// Shares are ordered by when the share was first created.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     *time.Time
	Tags        []string
	OwnerID     string
	Shares      []Share
	IsDeleted   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ShareFor returns the share entry for userID, if any.
func (t Task) ShareFor(userID string) (Share, bool) {
	for _, s := range t.Shares {
		if s.UserID == userID {
			return s, true
		}
	}
	return Share{}, false
}
