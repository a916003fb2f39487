package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// Installment is one dated payment unit of an obligation
type Installment struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	ObligationID      uint            `gorm:"not null;uniqueIndex:idx_installments_obligation_number,priority:1" json:"obligation_id"`
	InstallmentNumber int             `gorm:"not null;uniqueIndex:idx_installments_obligation_number,priority:2" json:"installment_number"`
	DueDate           time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	Amount            decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status            string          `gorm:"size:20;default:pending;not null;index" json:"status"`
	PaidDate          *time.Time      `gorm:"type:date" json:"paid_date"`
	PaymentNotes      *string         `gorm:"type:text" json:"payment_notes"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Installment
func (Installment) TableName() string {
	return "installments"
}

// MayPay returns true if the installment can be marked paid
func (i *Installment) MayPay() bool {
	return i.Status == StatusPending || i.Status == StatusOverdue
}

// MayLapse returns true if the installment can be marked overdue
func (i *Installment) MayLapse() bool {
	return i.Status == StatusPending
}

// MayCancel returns true if the installment can be cancelled
func (i *Installment) MayCancel() bool {
	return i.Status == StatusPending || i.Status == StatusOverdue
}

// IsTerminal returns true for paid and cancelled installments
func (i *Installment) IsTerminal() bool {
	return i.Status == StatusPaid || i.Status == StatusCancelled
}

// IsExpired returns true if a pending installment is past its due date.
// An installment due today is not yet expired.
func (i *Installment) IsExpired(today time.Time) bool {
	return i.Status == StatusPending && i.DueDate.Before(today)
}

// OverdueDays returns the number of whole days past due for unpaid installments
func (i *Installment) OverdueDays(today time.Time) int {
	if i.Status != StatusPending && i.Status != StatusOverdue {
		return 0
	}
	if !i.DueDate.Before(today) {
		return 0
	}
	return int(today.Sub(i.DueDate).Hours() / 24)
}

// InstallmentResponse is the JSON response format for installments
type InstallmentResponse struct {
	ID                uint            `json:"id"`
	ObligationID      uint            `json:"obligation_id"`
	InstallmentNumber int             `json:"installment_number"`
	DueDate           string          `json:"due_date"`
	Amount            decimal.Decimal `json:"amount"`
	Status            string          `json:"status"`
	PaidDate          *string         `json:"paid_date"`
	PaymentNotes      *string         `json:"payment_notes"`
}

// ToResponse converts Installment to InstallmentResponse
func (i *Installment) ToResponse() InstallmentResponse {
	resp := InstallmentResponse{
		ID:                i.ID,
		ObligationID:      i.ObligationID,
		InstallmentNumber: i.InstallmentNumber,
		DueDate:           i.DueDate.Format(DateLayout),
		Amount:            i.Amount,
		Status:            i.Status,
		PaymentNotes:      i.PaymentNotes,
	}
	if i.PaidDate != nil {
		formatted := i.PaidDate.Format(DateLayout)
		resp.PaidDate = &formatted
	}
	return resp
}
