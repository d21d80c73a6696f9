package models

import "time"

type SubmissionAction string

const (
	ActionCreate SubmissionAction = "create"
	ActionUpdate SubmissionAction = "update"
	ActionDelete SubmissionAction = "delete"
)

// SubmissionRecord is one write attempt against the remote invoice store.
type SubmissionRecord struct {
	ID          int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Operator    string           `gorm:"size:255;index;not null" json:"operator"`
	Action      SubmissionAction `gorm:"size:16;not null" json:"action"`
	InvoiceID   string           `gorm:"size:64;index" json:"invoice_id,omitempty"`
	InvoiceNo   string           `gorm:"size:100" json:"invoice_no,omitempty"`
	Total       string           `gorm:"type:varchar(32)" json:"total,omitempty"`
	Success     bool             `gorm:"not null" json:"success"`
	Error       *string          `gorm:"type:text" json:"error,omitempty"`
	FailedField StringArray      `gorm:"type:jsonb" json:"failed_fields,omitempty"`
	CreatedAt   time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
}

func (SubmissionRecord) TableName() string {
	return "invoice_submissions"
}
