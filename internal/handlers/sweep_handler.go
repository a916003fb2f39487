package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-obligations/internal/services"
)

type SweepHandler struct {
	sweepService *services.OverdueSweepService
	generator    *services.InstallmentGenerator
}

func NewSweepHandler(sweepService *services.OverdueSweepService, generator *services.InstallmentGenerator) *SweepHandler {
	return &SweepHandler{sweepService: sweepService, generator: generator}
}

// @Summary Run Overdue Sweep
// @Description Marks every pending installment due before today as overdue. Running it twice changes nothing.
// @Tags Jobs
// @Produce json
// @Success 200 {object} services.SweepResult
// @Router /sweeps/overdue [post]
func (h *SweepHandler) Overdue(c *gin.Context) {
	result, err := h.sweepService.Run(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Extend Recurring Schedules
// @Description Appends installments up to the horizon for every open-ended recurring obligation
// @Tags Jobs
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /sweeps/extend [post]
func (h *SweepHandler) Extend(c *gin.Context) {
	added, err := h.generator.ExtendAll(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added})
}
