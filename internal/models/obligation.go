package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-obligations/internal/schedule"
)

// Obligation is a schedulable financial commitment: a bill, a cost or a profit-share settlement
type Obligation struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	GUID            string           `gorm:"size:36;uniqueIndex;not null" json:"guid"`
	Kind            string           `gorm:"size:30;not null;index" json:"kind"`
	Description     *string          `gorm:"type:text" json:"description"`
	TotalAmount     *decimal.Decimal `gorm:"type:decimal(15,2)" json:"total_amount"`
	RecurringAmount *decimal.Decimal `gorm:"type:decimal(15,2)" json:"recurring_amount"`

	// Finite (interval) schedule
	InstallmentCount *int       `json:"installment_count"`
	IntervalDays     *int       `json:"interval_days"`
	FirstDueDate     *time.Time `gorm:"type:date" json:"first_due_date"`

	// Recurring (calendar month) schedule
	DueDay     *int            `json:"due_day"`
	StartMonth *schedule.Month `gorm:"type:varchar(7)" json:"start_month"`
	EndMonth   *schedule.Month `gorm:"type:varchar(7)" json:"end_month"`

	Status      string     `gorm:"size:20;default:pending;not null;index" json:"status"`
	Notes       *string    `gorm:"type:text" json:"notes"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Associations
	Installments []Installment `gorm:"foreignKey:ObligationID;constraint:OnDelete:CASCADE" json:"installments,omitempty"`
}

// TableName specifies the table name for Obligation
func (Obligation) TableName() string {
	return "obligations"
}

// Obligation kind constants
const (
	KindBillReceivable = "bill_receivable"
	KindBillPayable    = "bill_payable"
	KindCostFixed      = "cost_fixed"
	KindCostVariable   = "cost_variable"
	KindProfitShare    = "profit_share"
)

// Obligation status constants (shared with installments)
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusOverdue   = "overdue"
	StatusCancelled = "cancelled"
)

// IsValidKind reports whether kind is a known obligation kind
func IsValidKind(kind string) bool {
	switch kind {
	case KindBillReceivable, KindBillPayable, KindCostFixed, KindCostVariable, KindProfitShare:
		return true
	}
	return false
}

// KindIsRecurring reports whether the kind is scheduled per calendar month
// with a fixed recurring amount. Every other kind uses a finite interval schedule.
func KindIsRecurring(kind string) bool {
	return kind == KindCostFixed
}

// IsRecurring returns true if the obligation uses a calendar-month schedule
func (o *Obligation) IsRecurring() bool {
	return KindIsRecurring(o.Kind)
}

// IsOpenEnded returns true for recurring schedules without an end month
func (o *Obligation) IsOpenEnded() bool {
	return o.IsRecurring() && o.EndMonth == nil
}

// IsCancelled returns true if the obligation was voided
func (o *Obligation) IsCancelled() bool {
	return o.Status == StatusCancelled
}

// MayCancel returns true if the obligation can be cancelled
func (o *Obligation) MayCancel() bool {
	return o.Status == StatusPending || o.Status == StatusOverdue
}

// MonthlySeries returns the calendar-month series of a recurring obligation
func (o *Obligation) MonthlySeries() schedule.MonthlySeries {
	series := schedule.MonthlySeries{End: o.EndMonth}
	if o.StartMonth != nil {
		series.Start = *o.StartMonth
	}
	if o.DueDay != nil {
		series.DueDay = *o.DueDay
	}
	return series
}

// ObligationResponse is the JSON response format for obligations
type ObligationResponse struct {
	ID               uint                  `json:"id"`
	GUID             string                `json:"guid"`
	Kind             string                `json:"kind"`
	Status           string                `json:"status"`
	Description      *string               `json:"description"`
	TotalAmount      *decimal.Decimal      `json:"total_amount,omitempty"`
	RecurringAmount  *decimal.Decimal      `json:"recurring_amount,omitempty"`
	InstallmentCount *int                  `json:"installment_count,omitempty"`
	IntervalDays     *int                  `json:"interval_days,omitempty"`
	FirstDueDate     *string               `json:"first_due_date,omitempty"`
	DueDay           *int                  `json:"due_day,omitempty"`
	StartMonth       *schedule.Month       `json:"start_month,omitempty"`
	EndMonth         *schedule.Month       `json:"end_month,omitempty"`
	OpenEnded        bool                  `json:"open_ended"`
	Notes            *string               `json:"notes"`
	PaidAmount       decimal.Decimal       `json:"paid_amount"`
	OutstandingTotal decimal.Decimal       `json:"outstanding_amount"`
	CancelledAt      *time.Time            `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
	Installments     []InstallmentResponse `json:"installments,omitempty"`
}

// ToResponse converts Obligation to ObligationResponse
func (o *Obligation) ToResponse() ObligationResponse {
	resp := ObligationResponse{
		ID:               o.ID,
		GUID:             o.GUID,
		Kind:             o.Kind,
		Status:           o.Status,
		Description:      o.Description,
		TotalAmount:      o.TotalAmount,
		RecurringAmount:  o.RecurringAmount,
		InstallmentCount: o.InstallmentCount,
		IntervalDays:     o.IntervalDays,
		DueDay:           o.DueDay,
		StartMonth:       o.StartMonth,
		EndMonth:         o.EndMonth,
		OpenEnded:        o.IsOpenEnded(),
		Notes:            o.Notes,
		PaidAmount:       decimal.Zero,
		OutstandingTotal: decimal.Zero,
		CancelledAt:      o.CancelledAt,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}

	if o.FirstDueDate != nil {
		formatted := o.FirstDueDate.Format(DateLayout)
		resp.FirstDueDate = &formatted
	}

	for i := range o.Installments {
		inst := &o.Installments[i]
		switch inst.Status {
		case StatusPaid:
			resp.PaidAmount = resp.PaidAmount.Add(inst.Amount)
		case StatusPending, StatusOverdue:
			resp.OutstandingTotal = resp.OutstandingTotal.Add(inst.Amount)
		}
		resp.Installments = append(resp.Installments, inst.ToResponse())
	}

	return resp
}

// Bill is the external source record a profit-sharing obligation is derived from
type Bill struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}
