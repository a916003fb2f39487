package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-obligations/internal/models"
	"github.com/sjperalta/fintera-obligations/internal/services"
)

type InstallmentHandler struct {
	installmentService *services.InstallmentService
}

func NewInstallmentHandler(installmentService *services.InstallmentService) *InstallmentHandler {
	return &InstallmentHandler{installmentService: installmentService}
}

// UpdateInstallmentRequest is the body of PATCH /installments/{id}
type UpdateInstallmentRequest struct {
	Status       *string `json:"status" example:"paid"`
	PaidDate     *string `json:"paid_date" example:"2025-01-02"`
	PaymentNotes *string `json:"payment_notes"`
}

// @Summary List Installments
// @Description Lists the installments of an obligation ordered by number
// @Tags Installments
// @Produce json
// @Param obligation_id path int true "Obligation ID"
// @Success 200 {object} map[string]interface{}
// @Router /obligations/{obligation_id}/installments [get]
func (h *InstallmentHandler) IndexByObligation(c *gin.Context) {
	id, ok := paramID(c, "obligation_id")
	if !ok {
		return
	}
	installments, err := h.installmentService.ListByObligation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.InstallmentResponse, 0, len(installments))
	for i := range installments {
		responses = append(responses, installments[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"installments": responses})
}

// @Summary Get Installment
// @Tags Installments
// @Produce json
// @Param installment_id path int true "Installment ID"
// @Success 200 {object} models.InstallmentResponse
// @Router /installments/{installment_id} [get]
func (h *InstallmentHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "installment_id")
	if !ok {
		return
	}
	installment, err := h.installmentService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, installment.ToResponse())
}

// @Summary Update Installment
// @Description Moves an installment to paid, overdue or cancelled, or edits its payment notes
// @Tags Installments
// @Accept json
// @Produce json
// @Param installment_id path int true "Installment ID"
// @Param installment body UpdateInstallmentRequest true "Changes"
// @Success 200 {object} models.InstallmentResponse
// @Failure 422 {object} map[string]string
// @Router /installments/{installment_id} [patch]
func (h *InstallmentHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "installment_id")
	if !ok {
		return
	}

	var req UpdateInstallmentRequest
	if err := BindNestedOrFlat(c, "installment", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	paidDate, err := parseDate(req.PaidDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	installment, err := h.installmentService.Update(c.Request.Context(), id, services.UpdateInstallmentInput{
		Status:       req.Status,
		PaidDate:     paidDate,
		PaymentNotes: req.PaymentNotes,
	}, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, installment.ToResponse())
}
