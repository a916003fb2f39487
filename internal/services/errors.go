package services

import (
	"errors"

	"github.com/sjperalta/fintera-obligations/internal/statemachine"
	"gorm.io/gorm"
)

// Common service errors
var (
	ErrNotFound            = errors.New("registro no encontrado")
	ErrInvalidSchedule     = errors.New("calendario de pagos inválido")
	ErrAlreadyGenerated    = errors.New("las cuotas de esta obligación ya fueron generadas")
	ErrIllegalTransition   = statemachine.ErrIllegalTransition
	ErrPrematureTransition = errors.New("la cuota aún no ha vencido")
	ErrInvalidPaymentDate  = errors.New("fecha de pago inválida")
)

// translateNotFound maps the storage not-found error to ErrNotFound
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
