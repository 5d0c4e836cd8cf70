package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salon-billing-api/internal/application/service"
	"github.com/sangkips/salon-billing-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salon-billing-api/internal/presentation/http/dto/response"
)

// ReportHandler serves spreadsheet downloads
type ReportHandler struct {
	exportService *service.ExportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(exportService *service.ExportService) *ReportHandler {
	return &ReportHandler{exportService: exportService}
}

// ExportInvoices downloads the invoices matching the list filters
func (h *ReportHandler) ExportInvoices(c *gin.Context) {
	var filter request.InvoiceFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	file, err := h.exportService.ExportInvoices(c.Request.Context(), invoiceFilter(&filter))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// ExportCustomers downloads every customer
func (h *ReportHandler) ExportCustomers(c *gin.Context) {
	file, err := h.exportService.ExportCustomers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// ExportInvoiceItems downloads the line items of one invoice
func (h *ReportHandler) ExportInvoiceItems(c *gin.Context) {
	id, ok := paramUUID(c, "id", "invoice")
	if !ok {
		return
	}

	file, err := h.exportService.ExportInvoiceItems(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// ExportAttendance downloads the attendance sheet for a date range
func (h *ReportHandler) ExportAttendance(c *gin.Context) {
	h.exportRange(c, h.exportService.ExportAttendance)
}

// ExportSales downloads the sales sheet for a date range
func (h *ReportHandler) ExportSales(c *gin.Context) {
	h.exportRange(c, h.exportService.ExportSales)
}

// ExportProfitLoss downloads the profit and loss sheet for a date range
func (h *ReportHandler) ExportProfitLoss(c *gin.Context) {
	h.exportRange(c, h.exportService.ExportProfitLoss)
}

func (h *ReportHandler) exportRange(c *gin.Context, render func(ctx context.Context, startDate, endDate string) (*service.ExportFile, error)) {
	var req request.DateRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	file, err := render(c.Request.Context(), req.StartDate, req.EndDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
