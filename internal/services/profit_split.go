package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-obligations/internal/models"
	"github.com/sjperalta/fintera-obligations/internal/schedule"
)

var two = decimal.NewFromInt(2)

// ProfitSplit is the division of a bill's profit between the owner and a partner
type ProfitSplit struct {
	Bill         decimal.Decimal `json:"bill"`
	Expenses     decimal.Decimal `json:"expenses"`
	Extras       decimal.Decimal `json:"extras"`
	Profit       decimal.Decimal `json:"profit"`
	PartnerShare decimal.Decimal `json:"partner_share"`
	OwnShare     decimal.Decimal `json:"own_share"`
}

// Unprofitable reports whether expenses exceeded the bill
func (p ProfitSplit) Unprofitable() bool {
	return p.Profit.IsNegative()
}

// ComputeProfitSplit splits bill - expenses in halves and adds extras to the partner.
// An odd cent goes to the partner half, so PartnerShare + OwnShare = Profit + extras.
// Negative profits are split the same way and surfaced through Unprofitable.
// Figures finer than a cent are rejected, as they are by the installment split.
func ComputeProfitSplit(bill, expenses, extras decimal.Decimal) (ProfitSplit, error) {
	for name, v := range map[string]decimal.Decimal{"bill_amount": bill, "expenses": expenses, "extras": extras} {
		if !v.Shift(schedule.CurrencyPlaces).IsInteger() {
			return ProfitSplit{}, fmt.Errorf("%w: %s %s has more than %d decimal places", ErrInvalidSchedule, name, v, schedule.CurrencyPlaces)
		}
	}
	bill = bill.Round(schedule.CurrencyPlaces)
	expenses = expenses.Round(schedule.CurrencyPlaces)
	extras = extras.Round(schedule.CurrencyPlaces)

	profit := bill.Sub(expenses)
	partnerHalf := profit.Div(two).RoundCeil(schedule.CurrencyPlaces)

	return ProfitSplit{
		Bill:         bill,
		Expenses:     expenses,
		Extras:       extras,
		Profit:       profit,
		PartnerShare: partnerHalf.Add(extras),
		OwnShare:     profit.Sub(partnerHalf),
	}, nil
}

// CreateProfitShareInput describes a partner settlement derived from a bill
type CreateProfitShareInput struct {
	Bill             models.Bill
	Expenses         decimal.Decimal
	Extras           decimal.Decimal
	InstallmentCount int
	IntervalDays     int
	FirstDueDate     time.Time
	Notes            *string
	// Generate materializes the installments right after creation
	Generate bool
}

// ProfitShareService creates profit_share obligations from bills
type ProfitShareService struct {
	obligations *ObligationService
	generator   *InstallmentGenerator
}

// NewProfitShareService creates a new profit share service
func NewProfitShareService(obligations *ObligationService, generator *InstallmentGenerator) *ProfitShareService {
	return &ProfitShareService{obligations: obligations, generator: generator}
}

// CreateFromBill computes the split and records the partner share as a profit_share obligation
func (s *ProfitShareService) CreateFromBill(ctx context.Context, input CreateProfitShareInput, now time.Time) (*models.Obligation, ProfitSplit, error) {
	split, err := ComputeProfitSplit(input.Bill.Amount, input.Expenses, input.Extras)
	if err != nil {
		return nil, split, err
	}
	if split.PartnerShare.IsZero() {
		return nil, split, fmt.Errorf("%w: partner share is zero", ErrInvalidSchedule)
	}

	partnerShare := split.PartnerShare
	count := input.InstallmentCount
	interval := input.IntervalDays
	first := input.FirstDueDate

	var description *string
	if input.Bill.Description != "" {
		description = &input.Bill.Description
	}

	obligation, err := s.obligations.Create(ctx, CreateObligationInput{
		Kind:             models.KindProfitShare,
		Description:      description,
		Notes:            input.Notes,
		TotalAmount:      &partnerShare,
		InstallmentCount: &count,
		IntervalDays:     &interval,
		FirstDueDate:     &first,
	})
	if err != nil {
		return nil, split, err
	}

	if input.Generate {
		obligation, err = s.generator.Generate(ctx, obligation.ID, now)
		if err != nil {
			return nil, split, err
		}
	}
	return obligation, split, nil
}
