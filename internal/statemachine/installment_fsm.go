package statemachine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"github.com/sjperalta/fintera-obligations/internal/models"
)

// ErrIllegalTransition is returned when a status change is not allowed from the current state
var ErrIllegalTransition = errors.New("transición de estado inválida")

// Installment events
const (
	EventPay    = "pay"
	EventLapse  = "lapse"
	EventCancel = "cancel"
)

// InstallmentFSM wraps an installment with its state machine
type InstallmentFSM struct {
	installment *models.Installment
	fsm         *fsm.FSM
}

// NewInstallmentFSM creates a new installment state machine.
// paid and cancelled have no outgoing events.
func NewInstallmentFSM(installment *models.Installment) *InstallmentFSM {
	ifsm := &InstallmentFSM{
		installment: installment,
	}

	ifsm.fsm = fsm.NewFSM(
		installment.Status,
		fsm.Events{
			// pending/overdue → paid
			{Name: EventPay, Src: []string{models.StatusPending, models.StatusOverdue}, Dst: models.StatusPaid},

			// pending → overdue
			{Name: EventLapse, Src: []string{models.StatusPending}, Dst: models.StatusOverdue},

			// pending/overdue → cancelled
			{Name: EventCancel, Src: []string{models.StatusPending, models.StatusOverdue}, Dst: models.StatusCancelled},
		},
		fsm.Callbacks{},
	)

	return ifsm
}

// Pay transitions the installment to paid and records the payment
func (i *InstallmentFSM) Pay(ctx context.Context, paidDate time.Time, notes *string) error {
	if !i.installment.MayPay() {
		return i.illegal("paid")
	}

	if err := i.fire(ctx, EventPay); err != nil {
		return err
	}

	i.installment.PaidDate = &paidDate
	if notes != nil {
		i.installment.PaymentNotes = notes
	}
	return nil
}

// Lapse transitions a pending installment to overdue
func (i *InstallmentFSM) Lapse(ctx context.Context) error {
	if !i.installment.MayLapse() {
		return i.illegal("overdue")
	}
	return i.fire(ctx, EventLapse)
}

// Cancel transitions the installment to cancelled
func (i *InstallmentFSM) Cancel(ctx context.Context) error {
	if !i.installment.MayCancel() {
		return i.illegal("cancelled")
	}
	return i.fire(ctx, EventCancel)
}

// Current returns the current state
func (i *InstallmentFSM) Current() string {
	return i.fsm.Current()
}

// Can checks if a transition is possible
func (i *InstallmentFSM) Can(event string) bool {
	return i.fsm.Can(event)
}

func (i *InstallmentFSM) fire(ctx context.Context, event string) error {
	if err := i.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("%w: installment %d: %v", ErrIllegalTransition, i.installment.ID, err)
	}
	i.installment.Status = i.fsm.Current()
	return nil
}

func (i *InstallmentFSM) illegal(target string) error {
	return fmt.Errorf("%w: installment %d cannot go from %s to %s", ErrIllegalTransition, i.installment.ID, i.installment.Status, target)
}
