package domain

import "time"

// AuditChannel is the log channel used for business audit entries.
const AuditChannel = "audit"

// AuditEntry is an immutable audit trail line.
type AuditEntry struct {
	ID         int64
	Channel    string
	Message    string
	ModelClass string
	ModelCode  string
	Data       map[string]any
	CreatedAt  time.Time
}
