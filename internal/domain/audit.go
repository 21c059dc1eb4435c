package domain

import "time"

// Action recorded by an audit entry.
type Action string

const (
	ActionCreate       Action = "CREATE"
	ActionUpdate       Action = "UPDATE"
	ActionDelete       Action = "DELETE"
	ActionLogin        Action = "LOGIN"
	ActionLoginFailure Action = "LOGIN_FAILURE"
)

// Entity types an audit entry can refer to.
const (
	EntityTask = "TASK"
	EntityUser = "USER"
)

// FieldChange is one field's old and new value in an update diff.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// AuditEntry records one state-changing action. Entries past the retention
// window are purged by the storage layer and must never be returned.
type AuditEntry struct {
	ID         string
	Action     Action
	EntityType string
	EntityID   string
	UserID     string
	Changes    map[string]any
	Metadata   map[string]any
	CreatedAt  time.Time
}
