package schema

import (
	"time"

	"gorm.io/datatypes"
)

// AuditEvent represents the audit_events table - the append-only trail of templates,
// assets, payment requests and holders. Rows are never updated.
type AuditEvent struct {
	// ID is a ULID so events sort by creation time
	ID          string         `gorm:"column:id;primaryKey;type:text"`
	SubjectType string         `gorm:"column:subject_type;not null;type:text;index:idx_audit_events_subject,priority:1"`
	SubjectID   uint64         `gorm:"column:subject_id;not null;index:idx_audit_events_subject,priority:2"`
	Actor       string         `gorm:"column:actor;not null;type:text"`
	Action      string         `gorm:"column:action;not null;type:text"`
	Message     string         `gorm:"column:message;type:text"`
	Meta        datatypes.JSON `gorm:"column:meta"`
	CreatedAt   time.Time      `gorm:"column:created_at;not null"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
