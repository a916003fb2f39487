package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/sjperalta/fintera-obligations/internal/models"
)

// Obligation events
const (
	EventSettle = "settle"
	EventResume = "resume"
)

// eventFor maps a target obligation status to the event that reaches it
var eventFor = map[string]string{
	models.StatusPaid:      EventSettle,
	models.StatusOverdue:   EventLapse,
	models.StatusPending:   EventResume,
	models.StatusCancelled: EventCancel,
}

// ObligationFSM wraps an obligation with its state machine.
// The target status normally comes from aggregating installments; the machine
// guarantees that neither cancelled nor paid is ever left.
type ObligationFSM struct {
	obligation *models.Obligation
	fsm        *fsm.FSM
}

// NewObligationFSM creates a new obligation state machine
func NewObligationFSM(obligation *models.Obligation) *ObligationFSM {
	ofsm := &ObligationFSM{
		obligation: obligation,
	}

	ofsm.fsm = fsm.NewFSM(
		obligation.Status,
		fsm.Events{
			// pending/overdue → paid (every active installment paid)
			{Name: EventSettle, Src: []string{models.StatusPending, models.StatusOverdue}, Dst: models.StatusPaid},

			// pending → overdue
			{Name: EventLapse, Src: []string{models.StatusPending}, Dst: models.StatusOverdue},

			// overdue → pending (overdue installments paid or cancelled)
			{Name: EventResume, Src: []string{models.StatusOverdue}, Dst: models.StatusPending},

			// pending/overdue → cancelled
			{Name: EventCancel, Src: []string{models.StatusPending, models.StatusOverdue}, Dst: models.StatusCancelled},
		},
		fsm.Callbacks{},
	)

	return ofsm
}

// Apply moves the obligation to target. It reports whether the status changed;
// a target equal to the current status is a no-op.
func (o *ObligationFSM) Apply(ctx context.Context, target string) (bool, error) {
	if target == o.fsm.Current() {
		return false, nil
	}

	event, ok := eventFor[target]
	if !ok {
		return false, fmt.Errorf("%w: unknown obligation status %q", ErrIllegalTransition, target)
	}

	if !o.fsm.Can(event) {
		return false, fmt.Errorf("%w: obligation %d cannot go from %s to %s", ErrIllegalTransition, o.obligation.ID, o.obligation.Status, target)
	}

	if err := o.fsm.Event(ctx, event); err != nil {
		return false, fmt.Errorf("%w: obligation %d: %v", ErrIllegalTransition, o.obligation.ID, err)
	}

	o.obligation.Status = o.fsm.Current()
	return true, nil
}

// Cancel voids the obligation
func (o *ObligationFSM) Cancel(ctx context.Context) error {
	if !o.obligation.MayCancel() {
		return fmt.Errorf("%w: obligation %d cannot be cancelled in state %s", ErrIllegalTransition, o.obligation.ID, o.obligation.Status)
	}
	_, err := o.Apply(ctx, models.StatusCancelled)
	return err
}

// Current returns the current state
func (o *ObligationFSM) Current() string {
	return o.fsm.Current()
}

// Can checks if a transition is possible
func (o *ObligationFSM) Can(event string) bool {
	return o.fsm.Can(event)
}
