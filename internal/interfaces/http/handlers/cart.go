package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

// CartHandler handles cart endpoints. Carts are identified by the
// client-generated cart code, never by user identity.
type CartHandler struct {
	service *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(db *gorm.DB, redisClient *redis.Client) *CartHandler {
	store := cart.NewStore(db)
	catalog := product.NewService(db)
	return &CartHandler{service: cart.NewService(store, catalog, redisClient)}
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.service.AddItem(c.Request.Context(), req.CartCode, req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item added to cart", "data": resp})
}

// UpdateItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	itemID, err := parseUintParam(c, "id")
	if err != nil {
		respondBindError(c, err)
		return
	}

	var req cart.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.service.UpdateItemQuantity(c.Request.Context(), itemID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart item updated", "data": resp})
}

// RemoveItem handles DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	itemID, err := parseUintParam(c, "id")
	if err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.service.RemoveItem(c.Request.Context(), itemID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart item removed"})
}

// GetCart handles GET /cart/:code
func (h *CartHandler) GetCart(c *gin.Context) {
	resp, err := h.service.GetCart(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// GetCartStat handles GET /cart/:code/stat
func (h *CartHandler) GetCartStat(c *gin.Context) {
	stat, err := h.service.GetCartStat(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stat})
}

// ProductInCart handles GET /cart/:code/contains?product_id=
func (h *CartHandler) ProductInCart(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Query("product_id"), 10, 32)
	if err != nil {
		respondBindError(c, err)
		return
	}

	in, err := h.service.ProductInCart(c.Request.Context(), c.Param("code"), uint(productID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_in_cart": in})
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	return uint(v), err
}
