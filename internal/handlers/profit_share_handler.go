package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-obligations/internal/models"
	"github.com/sjperalta/fintera-obligations/internal/services"
)

type ProfitShareHandler struct {
	profitShareService *services.ProfitShareService
}

func NewProfitShareHandler(profitShareService *services.ProfitShareService) *ProfitShareHandler {
	return &ProfitShareHandler{profitShareService: profitShareService}
}

// ProfitSplitRequest carries the figures of a bill to split
type ProfitSplitRequest struct {
	BillAmount decimal.Decimal `json:"bill_amount" swaggertype:"string" example:"1000.00"`
	Expenses   decimal.Decimal `json:"expenses" swaggertype:"string" example:"200.00"`
	Extras     decimal.Decimal `json:"extras" swaggertype:"string" example:"50.00"`
}

// CreateProfitShareRequest records the partner share of a bill as an obligation
type CreateProfitShareRequest struct {
	ProfitSplitRequest
	Description      string  `json:"description"`
	Notes            *string `json:"notes"`
	InstallmentCount int     `json:"installment_count" example:"1"`
	IntervalDays     int     `json:"interval_days" example:"30"`
	FirstDueDate     *string `json:"first_due_date" example:"2025-01-31"`
	Generate         bool    `json:"generate"`
}

// @Summary Compute Profit Split
// @Description Splits bill minus expenses in halves; extras go to the partner
// @Tags Profit Share
// @Accept json
// @Produce json
// @Param split body ProfitSplitRequest true "Bill figures"
// @Success 200 {object} map[string]interface{}
// @Router /profit_split [post]
func (h *ProfitShareHandler) Split(c *gin.Context) {
	var req ProfitSplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	split, err := services.ComputeProfitSplit(req.BillAmount, req.Expenses, req.Extras)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"split": split, "unprofitable": split.Unprofitable()})
}

// @Summary Create Profit Share
// @Description Computes the split of a bill and stores the partner share as a profit_share obligation
// @Tags Profit Share
// @Accept json
// @Produce json
// @Param profit_share body CreateProfitShareRequest true "Bill and schedule"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /profit_shares [post]
func (h *ProfitShareHandler) Create(c *gin.Context) {
	var req CreateProfitShareRequest
	if err := BindNestedOrFlat(c, "profit_share", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	firstDue, err := parseDate(req.FirstDueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if firstDue == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La fecha del primer vencimiento es requerida"})
		return
	}

	obligation, split, err := h.profitShareService.CreateFromBill(c.Request.Context(), services.CreateProfitShareInput{
		Bill:             models.Bill{Amount: req.BillAmount, Description: req.Description},
		Expenses:         req.Expenses,
		Extras:           req.Extras,
		InstallmentCount: req.InstallmentCount,
		IntervalDays:     req.IntervalDays,
		FirstDueDate:     *firstDue,
		Notes:            req.Notes,
		Generate:         req.Generate,
	}, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"split":        split,
		"unprofitable": split.Unprofitable(),
		"obligation":   obligation.ToResponse(),
	})
}
