package services

import (
	"context"

	"github.com/sjperalta/fintera-obligations/internal/config"
	"github.com/sjperalta/fintera-obligations/internal/jobs"
	"github.com/sjperalta/fintera-obligations/internal/repository"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Obligation  *ObligationService
	Generator   *InstallmentGenerator
	Installment *InstallmentService
	Aggregator  *StatusAggregator
	Sweep       *OverdueSweepService
	ProfitShare *ProfitShareService
	Audit       *AuditService
	Export      *ExportService
	Job         *JobService

	db *gorm.DB
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, cfg *config.Config, db *gorm.DB) *Services {
	auditSvc := NewAuditService(db)
	aggregator := NewStatusAggregator(repos.Obligation)

	obligationSvc := NewObligationService(repos.Obligation, auditSvc)
	generator := NewInstallmentGenerator(repos.Obligation, repos.Installment, aggregator, auditSvc, cfg.RecurringHorizonMonths)
	installmentSvc := NewInstallmentService(repos.Installment, repos.Obligation, aggregator, auditSvc)

	svcs := &Services{
		Obligation:  obligationSvc,
		Generator:   generator,
		Installment: installmentSvc,
		Aggregator:  aggregator,
		Sweep:       NewOverdueSweepService(repos.Obligation, installmentSvc, aggregator, auditSvc),
		ProfitShare: NewProfitShareService(obligationSvc, generator),
		Audit:       auditSvc,
		Export:      NewExportService(obligationSvc),
		db:          db,
	}
	if worker != nil {
		svcs.Job = NewJobService(worker)
	}
	return svcs
}

// Ping checks the database connection. Without a database there is nothing to check.
func (s *Services) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
