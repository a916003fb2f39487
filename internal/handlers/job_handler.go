package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-obligations/internal/services"
)

type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobSvc *services.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobSvc,
	}
}

// Status returns the current worker status
// @Summary Get background job status
// @Description Worker counters plus the next and last run of each cron schedule
// @Tags Jobs
// @Produce json
// @Success 200 {object} services.JobStatus
// @Failure 503 {object} map[string]string
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	if h.jobService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "El worker no está disponible"})
		return
	}
	c.JSON(http.StatusOK, h.jobService.Status())
}
