// Package access decides what an acting user may do with a task.
// The owner holds implicit admin; everyone else gets the level of their
// share entry, or no access at all.
package access

import "github.com/vikram-2101/Advance-Task-Manager-App/internal/domain"

// Level is the effective access a user has on one task.
type Level int

const (
	None Level = iota
	View
	Edit
	Admin
)

// Resolve computes the effective level of userID on t.
func Resolve(t domain.Task, userID string) Level {
	if t.OwnerID == userID {
		return Admin
	}
	share, ok := t.ShareFor(userID)
	if !ok {
		return None
	}
	switch share.Permission {
	case domain.PermissionAdmin:
		return Admin
	case domain.PermissionEdit:
		return Edit
	default:
		return View
	}
}

// CanRead reports whether userID may read t: owner or any share entry.
func CanRead(t domain.Task, userID string) bool {
	return Resolve(t, userID) >= View
}

// CanEdit reports whether userID may update t's fields: owner, or a share
// with edit or admin permission.
func CanEdit(t domain.Task, userID string) bool {
	return Resolve(t, userID) >= Edit
}

// IsOwner reports whether userID owns t. Delete, share and unshare are
// owner-only; a shared admin permission does not grant them.
func IsOwner(t domain.Task, userID string) bool {
	return t.OwnerID == userID
}
