package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/wishlist"
)

// WishlistHandler handles wishlist endpoints
type WishlistHandler struct {
	service *wishlist.Service
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(db *gorm.DB) *WishlistHandler {
	return &WishlistHandler{service: wishlist.NewService(wishlist.NewStore(db), product.NewService(db))}
}

// Toggle handles POST /wishlist/toggle
func (h *WishlistHandler) Toggle(c *gin.Context) {
	var req wishlist.ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.service.Toggle(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": resp.Message, "data": resp})
}

// List handles GET /wishlist?email=
func (h *WishlistHandler) List(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	items, err := h.service.List(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// Contains handles GET /wishlist/contains?email=&product_id=
func (h *WishlistHandler) Contains(c *gin.Context) {
	email := c.Query("email")
	productID, err := strconv.ParseUint(c.Query("product_id"), 10, 32)
	if email == "" || err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and product_id are required"})
		return
	}

	in, err := h.service.Contains(c.Request.Context(), email, uint(productID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_in_wishlist": in})
}
