package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"github.com/your-org/storefront-backend/internal/pkg/payment"
	"github.com/your-org/storefront-backend/internal/pkg/pdf"
)

// SetupRoutes wires all API routes under the given group
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client,
	cfg *config.Config, logger *logrus.Logger) {

	cartStore := cart.NewStore(db)
	ledger := order.NewLedger(db)
	gateway := payment.NewStripeClient(cfg)
	mailer := email.NewService(cfg, logger)
	checkoutService := checkout.NewService(cartStore, ledger, gateway, cfg, mailer, logger)

	setupCatalogRoutes(rg, db)
	setupCartRoutes(rg, db, redisClient)
	setupCheckoutRoutes(rg, checkoutService)
	setupOrderRoutes(rg, ledger, cfg)
	setupUserRoutes(rg, db)
}

func setupCatalogRoutes(rg *gin.RouterGroup, db *gorm.DB) {
	productHandler := handlers.NewProductHandler(db)
	reviewHandler := handlers.NewReviewHandler(db)
	wishlistHandler := handlers.NewWishlistHandler(db)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.ListProducts)
		products.GET("/search", productHandler.SearchProducts)
		products.GET("/:slug", productHandler.GetProduct)
		products.POST("", productHandler.CreateProduct)
	}

	categories := rg.Group("/categories")
	{
		categories.GET("", productHandler.ListCategories)
		categories.GET("/:slug", productHandler.GetCategory)
		categories.POST("", productHandler.CreateCategory)
	}

	reviews := rg.Group("/reviews")
	{
		reviews.POST("", reviewHandler.CreateReview)
		reviews.PUT("/:id", reviewHandler.UpdateReview)
		reviews.DELETE("/:id", reviewHandler.DeleteReview)
	}

	wishlist := rg.Group("/wishlist")
	{
		wishlist.POST("/toggle", wishlistHandler.Toggle)
		wishlist.GET("", wishlistHandler.List)
		wishlist.GET("/contains", wishlistHandler.Contains)
	}
}

func setupCartRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client) {
	cartHandler := handlers.NewCartHandler(db, redisClient)

	carts := rg.Group("/cart")
	{
		carts.POST("/items", cartHandler.AddItem)
		carts.PUT("/items/:id", cartHandler.UpdateItem)
		carts.DELETE("/items/:id", cartHandler.RemoveItem)
		carts.GET("/:code", cartHandler.GetCart)
		carts.GET("/:code/stat", cartHandler.GetCartStat)
		carts.GET("/:code/contains", cartHandler.ProductInCart)
	}
}

func setupCheckoutRoutes(rg *gin.RouterGroup, service *checkout.Service) {
	checkoutHandler := handlers.NewCheckoutHandler(service)

	rg.POST("/checkout/session", checkoutHandler.CreateSession)
	rg.POST("/webhooks/payment", checkoutHandler.Webhook)
}

func setupOrderRoutes(rg *gin.RouterGroup, ledger order.Ledger, cfg *config.Config) {
	orderHandler := handlers.NewOrderHandler(ledger, pdf.NewService(cfg))

	orders := rg.Group("/orders")
	{
		orders.GET("", orderHandler.ListOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/:id/invoice", orderHandler.DownloadInvoice)
	}
}

func setupUserRoutes(rg *gin.RouterGroup, db *gorm.DB) {
	userHandler := handlers.NewUserHandler(db)

	users := rg.Group("/users")
	{
		users.POST("", userHandler.CreateUser)
		users.GET("/exists", userHandler.UserExists)
	}

	addresses := rg.Group("/addresses")
	{
		addresses.PUT("", userHandler.SaveAddress)
		addresses.GET("", userHandler.GetAddress)
	}
}
