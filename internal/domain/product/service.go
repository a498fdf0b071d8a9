// internal/domain/product/service.go
package product

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"github.com/your-org/storefront-backend/internal/pkg/slug"
)

// Service handles catalog business logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new catalog service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateProductRequest represents a product create request
type CreateProductRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	Price       int64  `json:"price" binding:"required,min=1"`
	Featured    bool   `json:"featured"`
	Image       string `json:"image"`
	CategoryID  *uint  `json:"category_id"`
}

// CreateCategoryRequest represents a category create request
type CreateCategoryRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Image string `json:"image"`
}

// GetProduct retrieves a product by ID
func (s *Service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	var prod Product
	err := s.db.WithContext(ctx).First(&prod, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.KindNotFound, "product not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to retrieve product", err)
	}
	return &prod, nil
}

// GetProductBySlug retrieves a product by its slug, with category and rating
func (s *Service) GetProductBySlug(ctx context.Context, productSlug string) (*Product, error) {
	var prod Product
	err := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Rating").
		Where("slug = ?", productSlug).
		First(&prod).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.KindNotFound, "product not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to retrieve product", err)
	}
	return &prod, nil
}

// ListFeaturedProducts returns the featured product listing
func (s *Service) ListFeaturedProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	err := s.db.WithContext(ctx).
		Where("featured = ?", true).
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to list products", err)
	}
	return products, nil
}

// ListCategories returns all categories
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := s.db.WithContext(ctx).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to list categories", err)
	}
	return categories, nil
}

// GetCategoryBySlug retrieves a category with its products
func (s *Service) GetCategoryBySlug(ctx context.Context, categorySlug string) (*Category, error) {
	var category Category
	err := s.db.WithContext(ctx).
		Preload("Products").
		Where("slug = ?", categorySlug).
		First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.KindNotFound, "category not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to retrieve category", err)
	}
	return &category, nil
}

// SearchProducts searches products by substring over name, description
// and category name
func (s *Service) SearchProducts(ctx context.Context, query string) ([]Product, error) {
	if query == "" {
		return nil, apperrors.New(apperrors.KindValidation, "no query provided")
	}

	pattern := "%" + query + "%"
	var products []Product
	err := s.db.WithContext(ctx).
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Where("products.name ILIKE ? OR products.description ILIKE ? OR categories.name ILIKE ?",
			pattern, pattern, pattern).
		Find(&products).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "product search failed", err)
	}
	return products, nil
}

// CreateProduct creates a product with a de-duplicated slug
func (s *Service) CreateProduct(ctx context.Context, req *CreateProductRequest) (*Product, error) {
	prod := Product{
		Name:        req.Name,
		Slug:        s.uniqueSlug(ctx, &Product{}, req.Name),
		Description: req.Description,
		Price:       req.Price,
		Featured:    req.Featured,
		Image:       req.Image,
		CategoryID:  req.CategoryID,
	}

	if err := s.db.WithContext(ctx).Create(&prod).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to create product", err)
	}
	return &prod, nil
}

// CreateCategory creates a category with a de-duplicated slug
func (s *Service) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*Category, error) {
	category := Category{
		Name:  req.Name,
		Slug:  s.uniqueSlug(ctx, &Category{}, req.Name),
		Image: req.Image,
	}

	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to create category", err)
	}
	return &category, nil
}

// uniqueSlug slugifies name and appends -1, -2, ... while the candidate
// collides with an existing row of the given model
func (s *Service) uniqueSlug(ctx context.Context, model interface{}, name string) string {
	return slug.MakeUnique(name, func(candidate string) bool {
		var count int64
		s.db.WithContext(ctx).Model(model).Where("slug = ?", candidate).Count(&count)
		return count > 0
	})
}
