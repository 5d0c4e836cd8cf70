package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/application/service"
	"github.com/sangkips/salon-billing-api/internal/domain/billing"
	"github.com/sangkips/salon-billing-api/internal/domain/enum"
	"github.com/sangkips/salon-billing-api/internal/presentation/http/dto/request"
	"github.com/sangkips/salon-billing-api/internal/presentation/http/dto/response"
)

// BillingHandler exposes the checkout desk over HTTP
type BillingHandler struct {
	billingService *service.BillingService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService *service.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// session resolves the authenticated user and the :id session parameter
func (h *BillingHandler) session(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := requireUser(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	sessionID, ok := paramUUID(c, "id", "session")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return userID, sessionID, true
}

func (h *BillingHandler) respond(c *gin.Context, message string, v *billing.View, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, message, v)
}

// OpenSession starts a billing session for the current user
func (h *BillingHandler) OpenSession(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	v, err := h.billingService.OpenSession(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Billing session opened", v)
}

// GetSession returns the session with its cart and totals
func (h *BillingHandler) GetSession(c *gin.Context) {
	userID, sessionID, ok := h.session(c)
	if !ok {
		return
	}

	v, err := h.billingService.GetSession(userID, sessionID)
	h.respond(c, "Billing session retrieved", v, err)
}

// CloseSession discards the session
func (h *BillingHandler) CloseSession(c *gin.Context) {
	userID, sessionID, ok := h.session(c)
	if !ok {
		return
	}

	if err := h.billingService.CloseSession(userID, sessionID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// AddItem adds one unit of a service or product to the cart
func (h *BillingHandler) AddItem(c *gin.Context) {
	userID, sessionID, ok := h.session(c)
	if !ok {
		return
	}

	var req request.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	kind, err := enum.ParseItemKind(req.ItemType)
	if err != nil {
		response.BadRequest(c, "item_type must be service or product")
		return
	}

	v, err := h.billingService.AddItem(c.Request.Context(), userID, sessionID, kind, req.ItemID)
	h.respond(c, "Item added", v, err)
}

// SetQuantity changes a cart line quantity
func (h *BillingHandler) SetQuantity(c *gin.Context) {
	userID, sessionID, ok := h.session(c)
	if !ok {
		return
	}
	index, ok := paramIndex(c, "index")
	if !ok {
		return
	}

	var req request.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	v, err := h.billingService.SetQuantity(c.Request.Context(), userID, sessionID, index, req.Quantity)
	h.respond(c, "Quantity updated", v, err)
}

// RemoveLine deletes a cart line
func (h *BillingHandler) RemoveLine(c *gin.Context) {
	userID, sessionID, ok := h.session(c)
	if !ok {
		return
	}
	index, ok := paramIndex(c, "index")
	if !ok {
		return
	}

	v, err := h.billingService.RemoveLine(c.Request.Context(), userID, sessionID, index)
	h.respond(c, "Item removed", v, err)
}

// ClearCart empties the cart
func (h *BillingHandler) ClearCart(c *gin.Context) {
	userID, sessionID, ok := h.session(c)
	if !ok {
		return
	}

	v, err := h.billingService.ClearCart(c.Request.Context(), userID, sessionID)
	h.respond(c, "Cart cleared", v, err)
}

// SetTax replaces the GST configuration
func (h *BillingHandler) SetTax(c *gin.Context) {
	userID, sessionID, ok := h.session(c)
	if !ok {
		return
	}

	var req request.SetTaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	v, err := h.billingService.SetTax(c.Request.Context(), userID, sessionID, billing.TaxConfig{
		GSTEnabled:    req.GSTEnabled,
		GSTPercentage: req.GSTPercentage,
	})
	h.respond(c, "Tax updated", v, err)
}

// SetDiscount replaces the flat discount
func (h *BillingHandler) SetDiscount(c *gin.Context) {
	userID, sessionID, ok := h.session(c)
	if !ok {
		return
	}

	var req request.SetDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	v, err := h.billingService.SetDiscount(c.Request.Context(), userID, sessionID, req.Discount)
	h.respond(c, "Discount updated", v, err)
}

// SelectCustomer selects the customer of the next checkout
func (h *BillingHandler) SelectCustomer(c *gin.Context) {
	userID, sessionID, ok := h.session(c)
	if !ok {
		return
	}

	var req request.SelectCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	v, err := h.billingService.SelectCustomer(c.Request.Context(), userID, sessionID, req.CustomerID)
	h.respond(c, "Customer selected", v, err)
}

// ClearCustomer deselects the customer
func (h *BillingHandler) ClearCustomer(c *gin.Context) {
	userID, sessionID, ok := h.session(c)
	if !ok {
		return
	}

	v, err := h.billingService.ClearCustomer(c.Request.Context(), userID, sessionID)
	h.respond(c, "Customer cleared", v, err)
}

// Checkout creates the invoice from the cart
func (h *BillingHandler) Checkout(c *gin.Context) {
	userID, sessionID, ok := h.session(c)
	if !ok {
		return
	}

	out, err := h.billingService.Checkout(c.Request.Context(), userID, sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created", out)
}

// RecordPayment records a payment against the pending invoice
func (h *BillingHandler) RecordPayment(c *gin.Context) {
	userID, sessionID, ok := h.session(c)
	if !ok {
		return
	}

	var req request.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	out, err := h.billingService.RecordPayment(c.Request.Context(), userID, sessionID, service.RecordPaymentInput{
		Method: req.PaymentMethod,
		Amount: req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Payment recorded", out)
}

// PayLater leaves the pending invoice unpaid
func (h *BillingHandler) PayLater(c *gin.Context) {
	userID, sessionID, ok := h.session(c)
	if !ok {
		return
	}

	v, err := h.billingService.PayLater(c.Request.Context(), userID, sessionID)
	h.respond(c, "Invoice saved as pending", v, err)
}
