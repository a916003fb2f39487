package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-obligations/internal/models"
	"github.com/sjperalta/fintera-obligations/internal/repository"
	"github.com/sjperalta/fintera-obligations/internal/schedule"
	"github.com/sjperalta/fintera-obligations/internal/services"
)

type ObligationHandler struct {
	obligationService *services.ObligationService
	generator         *services.InstallmentGenerator
	aggregator        *services.StatusAggregator
	exportService     *services.ExportService
}

func NewObligationHandler(
	obligationService *services.ObligationService,
	generator *services.InstallmentGenerator,
	aggregator *services.StatusAggregator,
	exportService *services.ExportService,
) *ObligationHandler {
	return &ObligationHandler{
		obligationService: obligationService,
		generator:         generator,
		aggregator:        aggregator,
		exportService:     exportService,
	}
}

// CreateObligationRequest is the body of POST /obligations, flat or nested under "obligation"
type CreateObligationRequest struct {
	Kind        string  `json:"kind" example:"bill_receivable"`
	Description *string `json:"description"`
	Notes       *string `json:"notes"`

	TotalAmount      *decimal.Decimal `json:"total_amount" swaggertype:"string" example:"450.00"`
	InstallmentCount *int             `json:"installment_count" example:"3"`
	IntervalDays     *int             `json:"interval_days" example:"30"`
	FirstDueDate     *string          `json:"first_due_date" example:"2025-01-01"`

	RecurringAmount *decimal.Decimal `json:"recurring_amount" swaggertype:"string"`
	DueDay          *int             `json:"due_day"`
	StartMonth      *schedule.Month  `json:"start_month" swaggertype:"string" example:"2025-01"`
	EndMonth        *schedule.Month  `json:"end_month" swaggertype:"string"`

	// Generate materializes the installments in the same request
	Generate bool `json:"generate"`
}

// @Summary Create Obligation
// @Description Creates a pending obligation. With generate=true its installments are materialized as well.
// @Tags Obligations
// @Accept json
// @Produce json
// @Param obligation body CreateObligationRequest true "Obligation"
// @Success 201 {object} models.ObligationResponse
// @Failure 400 {object} map[string]string
// @Router /obligations [post]
func (h *ObligationHandler) Create(c *gin.Context) {
	var req CreateObligationRequest
	if err := BindNestedOrFlat(c, "obligation", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Kind == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El tipo de obligación es requerido"})
		return
	}

	firstDue, err := parseDate(req.FirstDueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	obligation, err := h.obligationService.Create(ctx, services.CreateObligationInput{
		Kind:             req.Kind,
		Description:      req.Description,
		Notes:            req.Notes,
		TotalAmount:      req.TotalAmount,
		InstallmentCount: req.InstallmentCount,
		IntervalDays:     req.IntervalDays,
		FirstDueDate:     firstDue,
		RecurringAmount:  req.RecurringAmount,
		DueDay:           req.DueDay,
		StartMonth:       req.StartMonth,
		EndMonth:         req.EndMonth,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if req.Generate {
		obligation, err = h.generator.Generate(ctx, obligation.ID, time.Now())
		if err != nil {
			respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusCreated, obligation.ToResponse())
}

// @Summary List Obligations
// @Description Get a paginated list of obligations
// @Tags Obligations
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param kind query string false "Filter by kind"
// @Param status query string false "Filter by status"
// @Param search query string false "Search description, notes or guid"
// @Param sort query string false "Sort as field-direction, e.g. created_at-desc"
// @Success 200 {object} map[string]interface{}
// @Router /obligations [get]
func (h *ObligationHandler) Index(c *gin.Context) {
	query := &repository.ObligationQuery{
		ListQuery: repository.NewListQuery(),
		Kind:      c.Query("kind"),
		Status:    c.Query("status"),
	}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PerPage < 1 {
		query.PerPage = 20
	}
	query.Search = c.Query("search")
	query.Filters["start_date"] = c.Query("start_date")
	query.Filters["end_date"] = c.Query("end_date")
	query.Filters["guid"] = c.Query("guid")

	// Parse sort parameter (format: field-direction)
	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	obligations, total, err := h.obligationService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.ObligationResponse, 0, len(obligations))
	for i := range obligations {
		responses = append(responses, obligations[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"obligations": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Obligation
// @Tags Obligations
// @Produce json
// @Param obligation_id path int true "Obligation ID"
// @Success 200 {object} models.ObligationResponse
// @Failure 404 {object} map[string]string
// @Router /obligations/{obligation_id} [get]
func (h *ObligationHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "obligation_id")
	if !ok {
		return
	}
	obligation, err := h.obligationService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, obligation.ToResponse())
}

// @Summary Delete Obligation
// @Description Removes the obligation together with all of its installments
// @Tags Obligations
// @Param obligation_id path int true "Obligation ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /obligations/{obligation_id} [delete]
func (h *ObligationHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "obligation_id")
	if !ok {
		return
	}
	if err := h.obligationService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Obligación eliminada"})
}

// @Summary Cancel Obligation
// @Description Voids the obligation and every pending or overdue installment
// @Tags Obligations
// @Produce json
// @Param obligation_id path int true "Obligation ID"
// @Success 200 {object} models.ObligationResponse
// @Failure 422 {object} map[string]string
// @Router /obligations/{obligation_id}/cancel [post]
func (h *ObligationHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "obligation_id")
	if !ok {
		return
	}
	obligation, err := h.obligationService.Cancel(c.Request.Context(), id, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, obligation.ToResponse())
}

// @Summary Generate Installments
// @Description Materializes the installment schedule. Fails with 409 when it already exists.
// @Tags Obligations
// @Produce json
// @Param obligation_id path int true "Obligation ID"
// @Success 201 {object} models.ObligationResponse
// @Failure 409 {object} map[string]string
// @Router /obligations/{obligation_id}/generate [post]
func (h *ObligationHandler) Generate(c *gin.Context) {
	id, ok := paramID(c, "obligation_id")
	if !ok {
		return
	}
	obligation, err := h.generator.Generate(c.Request.Context(), id, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, obligation.ToResponse())
}

// @Summary Extend Recurring Schedule
// @Description Appends the months between the last installment and the generation horizon
// @Tags Obligations
// @Produce json
// @Param obligation_id path int true "Obligation ID"
// @Success 200 {object} map[string]interface{}
// @Router /obligations/{obligation_id}/extend [post]
func (h *ObligationHandler) Extend(c *gin.Context) {
	id, ok := paramID(c, "obligation_id")
	if !ok {
		return
	}
	added, err := h.generator.Extend(c.Request.Context(), id, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added})
}

// @Summary Recompute Status
// @Description Re-derives the obligation status from its installments
// @Tags Obligations
// @Produce json
// @Param obligation_id path int true "Obligation ID"
// @Success 200 {object} map[string]interface{}
// @Router /obligations/{obligation_id}/recompute [post]
func (h *ObligationHandler) Recompute(c *gin.Context) {
	id, ok := paramID(c, "obligation_id")
	if !ok {
		return
	}
	obligation, err := h.aggregator.Recompute(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": obligation.ID, "status": obligation.Status})
}

// @Summary Export Schedule
// @Description Downloads the installment schedule as csv, xlsx or pdf
// @Tags Obligations
// @Produce octet-stream
// @Param obligation_id path int true "Obligation ID"
// @Param format query string false "csv, xlsx or pdf" default(xlsx)
// @Success 200 {file} file
// @Router /obligations/{obligation_id}/export [get]
func (h *ObligationHandler) Export(c *gin.Context) {
	id, ok := paramID(c, "obligation_id")
	if !ok {
		return
	}
	format := c.DefaultQuery("format", "xlsx")
	switch format {
	case "csv", "xlsx", "pdf":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Formato no soportado"})
		return
	}

	data, filename, err := h.exportService.Export(c.Request.Context(), id, format)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, contentTypes[format], data)
}

var contentTypes = map[string]string{
	"csv":  "text/csv",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"pdf":  "application/pdf",
}
