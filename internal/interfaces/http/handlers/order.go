package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/pkg/pdf"
)

// OrderHandler handles order history and invoice endpoints
type OrderHandler struct {
	ledger order.Ledger
	pdf    *pdf.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(ledger order.Ledger, pdfService *pdf.Service) *OrderHandler {
	return &OrderHandler{ledger: ledger, pdf: pdfService}
}

// ListOrders handles GET /orders?email=
func (h *OrderHandler) ListOrders(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	orders, err := h.ledger.ListByEmail(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders})
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := parseUintParam(c, "id")
	if err != nil {
		respondBindError(c, err)
		return
	}

	o, err := h.ledger.GetByID(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": o})
}

// DownloadInvoice handles GET /orders/:id/invoice
func (h *OrderHandler) DownloadInvoice(c *gin.Context) {
	orderID, err := parseUintParam(c, "id")
	if err != nil {
		respondBindError(c, err)
		return
	}

	o, err := h.ledger.GetByID(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	buf, err := h.pdf.GenerateInvoice(o)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("invoice-%06d.pdf", o.ID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
