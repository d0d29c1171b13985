package entities

import "time"

type AuditEventType string

const (
	AuditEventChange   AuditEventType = "change"
	AuditEventOrder    AuditEventType = "order"
	AuditEventLowStock AuditEventType = "low_stock"
	AuditEventSession  AuditEventType = "session"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Topic       string         `gorm:"index;size:50" json:"topic,omitempty"` // e.g. "books-changed"
	Action      string         `gorm:"size:100" json:"action"`               // e.g. "order_placed"
	Description string         `gorm:"size:500" json:"description"`
	EntityID    string         `gorm:"index;size:64" json:"entity_id,omitempty"`
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"` // JSON for extra data
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
