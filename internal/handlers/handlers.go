package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-obligations/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health      *HealthHandler
	Obligation  *ObligationHandler
	Installment *InstallmentHandler
	ProfitShare *ProfitShareHandler
	Sweep       *SweepHandler
	Audit       *AuditHandler
	Job         *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:      NewHealthHandler(svcs.Ping),
		Obligation:  NewObligationHandler(svcs.Obligation, svcs.Generator, svcs.Aggregator, svcs.Export),
		Installment: NewInstallmentHandler(svcs.Installment),
		ProfitShare: NewProfitShareHandler(svcs.ProfitShare),
		Sweep:       NewSweepHandler(svcs.Sweep, svcs.Generator),
		Audit:       NewAuditHandler(svcs.Audit),
		Job:         NewJobHandler(svcs.Job),
	}
}

// RegisterRoutes mounts the API under v1
func (h *Handlers) RegisterRoutes(v1 *gin.RouterGroup) {
	v1.GET("/health", h.Health.Index)

	obligations := v1.Group("/obligations")
	{
		obligations.GET("", h.Obligation.Index)
		obligations.POST("", h.Obligation.Create)
		obligations.GET("/:obligation_id", h.Obligation.Show)
		obligations.DELETE("/:obligation_id", h.Obligation.Delete)
		obligations.POST("/:obligation_id/cancel", h.Obligation.Cancel)
		obligations.POST("/:obligation_id/generate", h.Obligation.Generate)
		obligations.POST("/:obligation_id/extend", h.Obligation.Extend)
		obligations.POST("/:obligation_id/recompute", h.Obligation.Recompute)
		obligations.GET("/:obligation_id/export", h.Obligation.Export)
		obligations.GET("/:obligation_id/installments", h.Installment.IndexByObligation)
	}

	v1.GET("/installments/:installment_id", h.Installment.Show)
	v1.PATCH("/installments/:installment_id", h.Installment.Update)

	v1.POST("/profit_split", h.ProfitShare.Split)
	v1.POST("/profit_shares", h.ProfitShare.Create)

	v1.POST("/sweeps/overdue", h.Sweep.Overdue)
	v1.POST("/sweeps/extend", h.Sweep.Extend)

	v1.GET("/audits", h.Audit.Index)
	v1.GET("/jobs/status", h.Job.Status)
}
