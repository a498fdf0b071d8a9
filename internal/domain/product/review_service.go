// internal/domain/product/review_service.go
package product

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
)

// ReviewService handles review business logic
type ReviewService struct {
	db *gorm.DB
}

// NewReviewService creates a new review service
func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// CreateReviewRequest represents an add-review request
type CreateReviewRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	UserID    uint   `json:"user_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment" binding:"required"`
}

// UpdateReviewRequest represents an update-review request
type UpdateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required"`
}

// CreateReview adds a review to a product. A user may review a product
// once; repeated submissions are rejected as a conflict.
func (s *ReviewService) CreateReview(ctx context.Context, req *CreateReviewRequest) (*Review, error) {
	var prod Product
	if err := s.db.WithContext(ctx).First(&prod, req.ProductID).Error; err != nil {
		return nil, apperrors.New(apperrors.KindNotFound, "product not found")
	}

	var existing Review
	err := s.db.WithContext(ctx).
		Where("product_id = ? AND user_id = ?", req.ProductID, req.UserID).
		First(&existing).Error
	if err == nil {
		return nil, apperrors.New(apperrors.KindConflict, "you have already reviewed this product")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to check existing review", err)
	}

	review := Review{
		ProductID: req.ProductID,
		UserID:    req.UserID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	}

	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		// A concurrent submission can slip past the pre-check and land
		// on the unique (product, user) index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.New(apperrors.KindConflict, "you have already reviewed this product")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to create review", err)
	}

	// Explicit post-write step. The rating aggregate is never updated
	// anywhere else.
	if err := s.RecalcRating(ctx, req.ProductID); err != nil {
		return nil, err
	}

	return &review, nil
}

// UpdateReview updates the rating and comment of a user's review
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID uint, req *UpdateReviewRequest) (*Review, error) {
	var review Review
	err := s.db.WithContext(ctx).First(&review, reviewID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.KindNotFound, "review not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to retrieve review", err)
	}

	review.Rating = req.Rating
	review.Comment = strings.TrimSpace(req.Comment)
	if err := s.db.WithContext(ctx).Save(&review).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to update review", err)
	}

	if err := s.RecalcRating(ctx, review.ProductID); err != nil {
		return nil, err
	}

	return &review, nil
}

// DeleteReview removes a review
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID uint) error {
	var review Review
	err := s.db.WithContext(ctx).First(&review, reviewID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.New(apperrors.KindNotFound, "review not found")
	}
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to retrieve review", err)
	}

	if err := s.db.WithContext(ctx).Delete(&review).Error; err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to delete review", err)
	}

	return s.RecalcRating(ctx, review.ProductID)
}

// RecalcRating recomputes the aggregated rating for a product from its
// reviews and upserts the Rating row
func (s *ReviewService) RecalcRating(ctx context.Context, productID uint) error {
	var agg struct {
		Average float64
		Total   int64
	}
	err := s.db.WithContext(ctx).Model(&Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS total").
		Where("product_id = ?", productID).
		Scan(&agg).Error
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to aggregate reviews", err)
	}

	var rating Rating
	err = s.db.WithContext(ctx).Where("product_id = ?", productID).First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rating = Rating{ProductID: productID}
	} else if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to load product rating", err)
	}

	rating.AverageRating = agg.Average
	rating.TotalReviews = int(agg.Total)

	if err := s.db.WithContext(ctx).Save(&rating).Error; err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to save product rating", err)
	}
	return nil
}
