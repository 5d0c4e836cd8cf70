package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/salon-billing-api/internal/application/service"
	"github.com/sangkips/salon-billing-api/internal/presentation/http/dto/response"
)

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// GetStatus returns the current printer connection status.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	status := h.printerService.GetStatus(c.Request.Context())
	response.OK(c, "Printer status retrieved", status)
}

// GetReceipt returns the receipt of an invoice without printing it.
func (h *PrinterHandler) GetReceipt(c *gin.Context) {
	id, ok := paramUUID(c, "id", "invoice")
	if !ok {
		return
	}

	receipt, _, err := h.printerService.RenderInvoiceReceipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt generated", gin.H{
		"receipt": receipt,
	})
}

// PrintReceipt prints the receipt of an invoice.
func (h *PrinterHandler) PrintReceipt(c *gin.Context) {
	id, ok := paramUUID(c, "id", "invoice")
	if !ok {
		return
	}

	receipt, err := h.printerService.PrintInvoiceReceipt(c.Request.Context(), id)
	if err != nil {
		// If receipt was built but printing failed, return receipt with warning
		if receipt != nil {
			response.OK(c, "Receipt generated but printing failed", gin.H{
				"receipt": receipt,
				"warning": err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt printed successfully", gin.H{
		"receipt": receipt,
	})
}
