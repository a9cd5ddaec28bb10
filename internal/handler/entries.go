package handler

import (
	"net/http"

	"sheetpos/internal/dto"
	"sheetpos/internal/service"

	"github.com/gin-gonic/gin"
)

type EntriesHandler struct{ svc service.EntryService }

func NewEntriesHandler(svc service.EntryService) *EntriesHandler { return &EntriesHandler{svc: svc} }

// Sale godoc
// @Summary      Record a sale
// @Description  Appends a row to the Sales sheet and queues an audit record. Revenue is unit price × quantity − discount.
// @Tags         entries
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.SaleRequest true "Sale line"
// @Success      201  {object} dto.EntryResponse
// @Failure      422  {object} apierror.ValidationError
// @Failure      502  {object} apierror.APIError
// @Router       /v1/sales [post]
func (h *EntriesHandler) Sale(c *gin.Context) {
	var req dto.SaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordSale(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Purchase godoc
// @Summary      Record a stock purchase
// @Description  Appends a row to the Purchases sheet; unit cost is derived from the line total.
// @Tags         entries
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.PurchaseRequest true "Purchase line"
// @Success      201  {object} dto.EntryResponse
// @Failure      422  {object} apierror.ValidationError
// @Failure      502  {object} apierror.APIError
// @Router       /v1/purchases [post]
func (h *EntriesHandler) Purchase(c *gin.Context) {
	var req dto.PurchaseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordPurchase(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Expense godoc
// @Summary      Record an expense
// @Tags         entries
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ExpenseRequest true "Expense"
// @Success      201  {object} dto.EntryResponse
// @Failure      422  {object} apierror.ValidationError
// @Failure      502  {object} apierror.APIError
// @Router       /v1/expenses [post]
func (h *EntriesHandler) Expense(c *gin.Context) {
	var req dto.ExpenseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordExpense(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
