package models

import (
	"time"
)

// AuditLog records one mutation applied by the engine
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Actor     string    `gorm:"size:100;not null;default:system" json:"actor"` // caller identity supplied by the outer layer, "system" for jobs
	Action    string    `gorm:"size:50;not null;index" json:"action"`          // CREATE, GENERATE, EXTEND, PAY, LAPSE, CANCEL, DELETE, SWEEP
	Entity    string    `gorm:"size:50;not null" json:"entity"`                // Obligation, Installment
	EntityID  uint      `gorm:"index" json:"entity_id"`
	Details   string    `gorm:"type:text" json:"details"`
	IPAddress string    `gorm:"size:45" json:"ip_address"`
	UserAgent string    `gorm:"size:255" json:"user_agent"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// Audit action constants
const (
	AuditActionCreate   = "CREATE"
	AuditActionGenerate = "GENERATE"
	AuditActionExtend   = "EXTEND"
	AuditActionPay      = "PAY"
	AuditActionLapse    = "LAPSE"
	AuditActionCancel   = "CANCEL"
	AuditActionNote     = "NOTE"
	AuditActionDelete   = "DELETE"
	AuditActionSweep    = "SWEEP"
)

// Audit entity constants
const (
	AuditEntityObligation  = "Obligation"
	AuditEntityInstallment = "Installment"
)
