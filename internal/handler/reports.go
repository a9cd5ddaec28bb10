package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"sheetpos/internal/apierror"
	"sheetpos/internal/dto"
	"sheetpos/internal/ledger"
	"sheetpos/internal/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler { return &ReportsHandler{svc: svc} }

// Cashflow godoc
// @Summary      Cashflow ledger
// @Description  Income and expense entries from Sales, Purchases and Expenses, newest first, with totals and running balance.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        legacy_fold query bool false "Fold the running balance in display order"
// @Success      200  {object} dto.CashflowResponse
// @Failure      502  {object} apierror.APIError
// @Router       /v1/cashflow [get]
func (h *ReportsHandler) Cashflow(c *gin.Context) {
	var q dto.CashflowQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid query: "+err.Error()))
		return
	}
	resp, err := h.svc.Cashflow(c.Request.Context(), ledger.Options{LegacyFold: q.LegacyFold})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportCashflow streams the ledger as an xlsx download. The workbook is
// rendered into memory first so an upstream failure still yields a JSON error.
//
// @Summary      Export the cashflow ledger
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        legacy_fold query bool false "Fold the running balance in display order"
// @Success      200  {file} file
// @Failure      502  {object} apierror.APIError
// @Router       /v1/cashflow/export [get]
func (h *ReportsHandler) ExportCashflow(c *gin.Context) {
	var q dto.CashflowQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid query: "+err.Error()))
		return
	}
	var buf bytes.Buffer
	if err := h.svc.ExportCashflow(c.Request.Context(), ledger.Options{LegacyFold: q.LegacyFold}, &buf); err != nil {
		respondError(c, err)
		return
	}
	filename := fmt.Sprintf("cashflow-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Movements godoc
// @Summary      Inventory movement ledger
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} dto.MovementsResponse
// @Failure      502  {object} apierror.APIError
// @Router       /v1/inventory/movements [get]
func (h *ReportsHandler) Movements(c *gin.Context) {
	resp, err := h.svc.Movements(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Stock godoc
// @Summary      Stock levels
// @Description  On-hand quantity per product from purchases minus sales.
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        low query bool false "Only products at or below their reorder level"
// @Success      200  {object} dto.StockResponse
// @Failure      502  {object} apierror.APIError
// @Router       /v1/inventory/stock [get]
func (h *ReportsHandler) Stock(c *gin.Context) {
	var q dto.StockQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid query: "+err.Error()))
		return
	}
	resp, err := h.svc.StockLevels(c.Request.Context(), q.Low)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Audit godoc
// @Summary      Audit trail
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} dto.AuditResponse
// @Failure      403  {object} apierror.APIError
// @Failure      502  {object} apierror.APIError
// @Router       /v1/audit [get]
func (h *ReportsHandler) Audit(c *gin.Context) {
	resp, err := h.svc.Audit(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Suppliers godoc
// @Summary      Supplier performance
// @Tags         suppliers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} dto.SuppliersResponse
// @Failure      403  {object} apierror.APIError
// @Failure      502  {object} apierror.APIError
// @Router       /v1/suppliers/performance [get]
func (h *ReportsHandler) Suppliers(c *gin.Context) {
	resp, err := h.svc.Suppliers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Sheet godoc
// @Summary      Raw sheet values
// @Description  Returns the raw values of a known sheet.
// @Tags         sheets
// @Produce      json
// @Security     BearerAuth
// @Param        sheet path string true "Sheet name"
// @Success      200  {object} dto.SheetResponse
// @Failure      404  {object} apierror.APIError
// @Failure      502  {object} apierror.APIError
// @Router       /v1/sheets/{sheet} [get]
func (h *ReportsHandler) Sheet(c *gin.Context) {
	resp, err := h.svc.Sheet(c.Request.Context(), c.Param("sheet"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
